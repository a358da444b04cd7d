package affiliates

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/handshakeadmin/DYOROfficial-sub002/internal/listing"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/postgres"
)

type Repo struct{ DB *pgxpool.Pool }

const codeColumns = `id::text, code, affiliate_email, COALESCE(affiliate_name, ''), is_affiliate`

func scanCode(row pgx.Row) (Code, error) {
	var c Code
	err := row.Scan(&c.ID, &c.Code, &c.AffiliateEmail, &c.AffiliateName, &c.IsAffiliate)
	if errors.Is(err, pgx.ErrNoRows) {
		return Code{}, ErrNotFound
	}
	return c, err
}

// FindByEmail returns the affiliate-flagged code registered to email.
func (r *Repo) FindByEmail(ctx context.Context, email string) (Code, error) {
	return scanCode(r.DB.QueryRow(ctx, `
		SELECT `+codeColumns+` FROM discount_codes
		WHERE lower(affiliate_email) = lower($1) AND is_affiliate = true
		ORDER BY created_at LIMIT 1`, strings.TrimSpace(email)))
}

func (r *Repo) GetCode(ctx context.Context, id string) (Code, error) {
	return scanCode(r.DB.QueryRow(ctx, `SELECT `+codeColumns+` FROM discount_codes WHERE id::text = $1`, id))
}

func (r *Repo) CreateCode(ctx context.Context, n NewCode) (Code, error) {
	return scanCode(r.DB.QueryRow(ctx, `
		INSERT INTO discount_codes (code, affiliate_email, affiliate_name, is_affiliate)
		VALUES (upper($1), lower($2), $3, true)
		RETURNING `+codeColumns, n.Code, n.Email, n.Name))
}

const commissionColumns = `id::text, affiliate_code_id::text, order_id::text, revenue::float8,
	commission::float8, status, notes, created_at, updated_at`

func scanCommission(row pgx.Row, extra ...any) (Commission, error) {
	var c Commission
	var status string
	dst := []any{&c.ID, &c.AffiliateCodeID, &c.OrderID, &c.Revenue, &c.Amount,
		&status, &c.Notes, &c.CreatedAt, &c.UpdatedAt}
	if err := row.Scan(append(dst, extra...)...); err != nil {
		return Commission{}, err
	}
	c.Status = Status(status)
	return c, nil
}

func (q Query) where() *postgres.Where {
	w := &postgres.Where{}
	w.AddIf(q.AffiliateCodeID != "", "affiliate_code_id::text = ?", q.AffiliateCodeID)
	w.AddIf(q.Status != "", "status = ?", string(q.Status))
	if q.Search != "" {
		like := postgres.Like(q.Search)
		w.Add("(order_id::text ILIKE ? OR notes ILIKE ?)", like, like)
	}
	rg := q.Range()
	w.AddIf(rg.From != nil, "created_at >= ?", rg.From)
	w.AddIf(rg.To != nil, "created_at <= ?", rg.To)
	return w
}

func (r *Repo) QueryCommissions(ctx context.Context, q Query) (listing.Page[Commission], error) {
	p := q.Pagination()
	w := q.where()
	sql := `SELECT ` + commissionColumns + `, COUNT(*) OVER() FROM commissions` + w.SQL() +
		` ORDER BY created_at DESC LIMIT ` + w.Next(p.Limit) + ` OFFSET ` + w.Next(p.Offset())

	rows, err := r.DB.Query(ctx, sql, w.Args()...)
	if err != nil {
		return listing.Page[Commission]{}, err
	}
	defer rows.Close()

	out := listing.Page[Commission]{Items: []Commission{}, Pagination: p}
	for rows.Next() {
		var total int
		c, err := scanCommission(rows, &total)
		if err != nil {
			return listing.Page[Commission]{}, err
		}
		out.Items = append(out.Items, c)
		out.Total = total
	}
	if err := rows.Err(); err != nil {
		return listing.Page[Commission]{}, err
	}
	if len(out.Items) == 0 && p.Offset() > 0 {
		cw := q.where()
		if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM commissions`+cw.SQL(), cw.Args()...).Scan(&out.Total); err != nil {
			return listing.Page[Commission]{}, err
		}
	}
	return out, nil
}

const updateCommissionSQL = `
		UPDATE commissions SET status = $2, notes = COALESCE($3, notes), updated_at = now()
		WHERE id::text = $1
		RETURNING ` + commissionColumns

func (r *Repo) UpdateCommissionStatus(ctx context.Context, id string, u CommissionUpdate) (Commission, error) {
	c, err := scanCommission(r.DB.QueryRow(ctx, updateCommissionSQL, id, string(u.Status), u.Notes))
	if errors.Is(err, pgx.ErrNoRows) {
		return Commission{}, ErrNotFound
	}
	return c, err
}

func (r *Repo) Summary(ctx context.Context, affiliateCodeID string) (Summary, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT status, SUM(revenue)::float8, SUM(commission)::float8
		FROM commissions WHERE affiliate_code_id::text = $1 GROUP BY status`, affiliateCodeID)
	if err != nil {
		return Summary{}, err
	}
	defer rows.Close()

	var s Summary
	for rows.Next() {
		var c Commission
		var status string
		if err := rows.Scan(&status, &c.Revenue, &c.Amount); err != nil {
			return Summary{}, err
		}
		c.Status = Status(status)
		s = s.Add(c)
	}
	return s, rows.Err()
}
