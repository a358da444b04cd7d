package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/handshakeadmin/DYOROfficial-sub002/internal/listing"
)

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) GetProfileByID(ctx context.Context, id string) (Profile, error) {
	var (
		p                  Profile
		email, first, last *string
	)
	err := r.DB.QueryRow(ctx, `
		SELECT id, email, first_name, last_name, COALESCE(is_admin, false)
		FROM profiles WHERE id::text = $1`, id).
		Scan(&p.ID, &email, &first, &last, &p.IsAdmin)
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, err
	}
	p.Email, p.FirstName, p.LastName = listing.Text(email), listing.Text(first), listing.Text(last)
	return p, nil
}

// SetAdmin flips the admin flag; used by operator tooling only.
func (r *Repo) SetAdmin(ctx context.Context, id string, admin bool) error {
	ct, err := r.DB.Exec(ctx, `UPDATE profiles SET is_admin = $2 WHERE id::text = $1`, id, admin)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
