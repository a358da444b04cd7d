// Package notify turns order and commission status events into customer and
// affiliate emails.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/handshakeadmin/DYOROfficial-sub002/internal/affiliates"
	kafkax "github.com/handshakeadmin/DYOROfficial-sub002/internal/kafka"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/mailer"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/orders"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/redisx"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/users"
)

// Directory resolves event subjects to mail recipients.
type Directory interface {
	GetProfileByID(ctx context.Context, id string) (users.Profile, error)
	GetAffiliateCode(ctx context.Context, id string) (affiliates.Code, error)
}

// Accounts looks up the auth provider's record for a user. Used when the
// profile row carries no email.
type Accounts interface {
	GetUserByID(ctx context.Context, id string) (users.Identity, error)
}

type Service struct {
	Directory Directory
	Accounts  Accounts // optional
	Mailer    mailer.Service
	Cache     redisx.Cache
	Log       *zap.Logger

	Name     string // dedup namespace
	From     string
	FromName string
	SiteURL  string
}

// Handle is the consumer entry point for both status topics. Unknown event
// types are acknowledged and skipped.
func (s *Service) Handle(ctx context.Context, m kafkago.Message) error {
	env, err := kafkax.UnmarshalEnvelope(m.Value)
	if err != nil {
		s.Log.Warn("dropping malformed event", zap.Int64("offset", m.Offset), zap.Error(err))
		return nil
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, s.Name, env.EventID)
	if _, err := s.Cache.Get(ctx, dkey); err == nil {
		return nil
	} else if !errors.Is(err, redisx.ErrMiss) {
		s.Log.Warn("dedup lookup failed", zap.Error(err))
	}

	switch env.EventType {
	case orders.EventOrderStatusUpdated:
		err = s.orderStatus(ctx, env)
	case affiliates.EventCommissionStatusUpdated:
		err = s.commissionStatus(ctx, env)
	default:
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.Cache.Set(ctx, dkey, "1", redisx.TTLDedup); err != nil {
		s.Log.Warn("dedup mark failed", zap.String("event_id", env.EventID), zap.Error(err))
	}
	return nil
}

func (s *Service) orderStatus(ctx context.Context, env kafkax.Envelope) error {
	p, err := kafkax.UnwrapPayload[orders.StatusUpdatedPayload](env.Payload)
	if err != nil {
		s.Log.Warn("dropping order event", zap.String("event_id", env.EventID), zap.Error(err))
		return nil
	}
	subject, body, ok := orderMessage(p, s.SiteURL)
	if !ok || p.UserID == "" {
		return nil
	}

	prof, err := s.Directory.GetProfileByID(ctx, p.UserID)
	if err != nil && !errors.Is(err, users.ErrNotFound) {
		return fmt.Errorf("lookup customer %s: %w", p.UserID, err)
	}
	if prof.Email == "" && s.Accounts != nil {
		acct, err := s.Accounts.GetUserByID(ctx, p.UserID)
		if err != nil && !errors.Is(err, users.ErrNotFound) {
			return fmt.Errorf("lookup account %s: %w", p.UserID, err)
		}
		prof.Email = acct.Email
	}
	if prof.Email == "" {
		s.Log.Info("no recipient for order update", zap.String("order_id", p.OrderID))
		return nil
	}

	greeting := "Hi,"
	if n := prof.FullName(); n != "" {
		greeting = "Hi " + n + ","
	}
	return s.send(ctx, prof.Email, subject, greeting+"\n\n"+body)
}

func (s *Service) commissionStatus(ctx context.Context, env kafkax.Envelope) error {
	p, err := kafkax.UnwrapPayload[affiliates.CommissionUpdatedPayload](env.Payload)
	if err != nil {
		s.Log.Warn("dropping commission event", zap.String("event_id", env.EventID), zap.Error(err))
		return nil
	}
	subject, body, ok := commissionMessage(p, s.SiteURL)
	if !ok {
		return nil
	}

	code, err := s.Directory.GetAffiliateCode(ctx, p.AffiliateCodeID)
	if errors.Is(err, affiliates.ErrNotFound) || (err == nil && code.AffiliateEmail == "") {
		s.Log.Info("no recipient for commission update", zap.String("commission_id", p.CommissionID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("lookup affiliate %s: %w", p.AffiliateCodeID, err)
	}

	greeting := "Hi,"
	if n := strings.TrimSpace(code.AffiliateName); n != "" {
		greeting = "Hi " + n + ","
	}
	return s.send(ctx, code.AffiliateEmail, subject, greeting+"\n\n"+body)
}

func (s *Service) send(ctx context.Context, to, subject, body string) error {
	err := s.Mailer.Send(ctx, mailer.Email{
		FromName: s.FromName,
		From:     s.From,
		To:       []string{to},
		Subject:  subject,
		TextBody: body,
	})
	if err != nil {
		return fmt.Errorf("send %q: %w", subject, err)
	}
	s.Log.Info("notification sent", zap.String("subject", subject))
	return nil
}
