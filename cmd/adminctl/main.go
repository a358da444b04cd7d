// Command adminctl performs operator tasks that have no HTTP surface:
// toggling the admin flag on profiles and registering affiliate codes.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/handshakeadmin/DYOROfficial-sub002/internal/affiliates"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/config"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/postgres"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/users"
)

// operatorStore is the write surface adminctl needs.
type operatorStore interface {
	SetAdmin(ctx context.Context, userID string, admin bool) error
	CreateCode(ctx context.Context, n affiliates.NewCode) (affiliates.Code, error)
}

type opener func(ctx context.Context) (operatorStore, func(), error)

type pgStore struct {
	*users.Repo
	codes *affiliates.Repo
}

func (s pgStore) CreateCode(ctx context.Context, n affiliates.NewCode) (affiliates.Code, error) {
	return s.codes.CreateCode(ctx, n)
}

func openPostgres(ctx context.Context) (operatorStore, func(), error) {
	cfg := config.Load()
	if cfg.Backend.PostgresDSN == "" {
		return nil, nil, errors.New("POSTGRES_DSN is not set")
	}
	db, err := postgres.Connect(ctx, cfg.Backend.PostgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect: %w", err)
	}
	return pgStore{Repo: &users.Repo{DB: db}, codes: &affiliates.Repo{DB: db}}, db.Close, nil
}

func main() {
	_ = godotenv.Load()
	if err := newRootCmd(openPostgres).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(open opener) *cobra.Command {
	root := &cobra.Command{
		Use:          "adminctl",
		Short:        "Storefront operator tasks",
		SilenceUsage: true,
	}

	withStore := func(fn func(cmd *cobra.Command, s operatorStore, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			s, closeFn, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			return fn(cmd, s, args)
		}
	}

	setAdmin := func(admin bool) func(*cobra.Command, operatorStore, []string) error {
		return func(cmd *cobra.Command, s operatorStore, args []string) error {
			err := s.SetAdmin(cmd.Context(), args[0], admin)
			if errors.Is(err, users.ErrNotFound) {
				return fmt.Errorf("no profile with id %s", args[0])
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s admin=%t\n", args[0], admin)
			return nil
		}
	}

	root.AddCommand(&cobra.Command{
		Use:   "grant-admin <user-id>",
		Short: "Give a profile access to the admin area",
		Args:  cobra.ExactArgs(1),
		RunE:  withStore(setAdmin(true)),
	})
	root.AddCommand(&cobra.Command{
		Use:   "revoke-admin <user-id>",
		Short: "Remove a profile's admin access",
		Args:  cobra.ExactArgs(1),
		RunE:  withStore(setAdmin(false)),
	})

	affiliate := &cobra.Command{Use: "affiliate", Short: "Manage affiliate codes"}
	var n affiliates.NewCode
	add := &cobra.Command{
		Use:   "add",
		Short: "Register an affiliate discount code",
		Args:  cobra.NoArgs,
		PreRunE: func(*cobra.Command, []string) error {
			return n.Validate()
		},
		RunE: withStore(func(cmd *cobra.Command, s operatorStore, _ []string) error {
			c, err := s.CreateCode(cmd.Context(), n)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s) for %s\n", c.Code, c.ID, c.AffiliateEmail)
			return nil
		}),
	}
	add.Flags().StringVar(&n.Code, "code", "", "discount code")
	add.Flags().StringVar(&n.Email, "email", "", "affiliate email")
	add.Flags().StringVar(&n.Name, "name", "", "affiliate display name")
	_ = add.MarkFlagRequired("code")
	_ = add.MarkFlagRequired("email")
	_ = add.MarkFlagRequired("name")
	affiliate.AddCommand(add)
	root.AddCommand(affiliate)

	return root
}
