// Package mailer sends transactional notification emails.
package mailer

import "context"

type Service interface {
	Send(ctx context.Context, e Email) error
}

type Email struct {
	FromName string
	From     string
	To       []string
	Subject  string
	TextBody string
}
