package orders

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/handshakeadmin/DYOROfficial-sub002/internal/listing"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/postgres"
)

type Repo struct{ DB *pgxpool.Pool }

const recordColumns = `id::text, order_number, user_id::text, total::float8, status, payment_status,
	tracking_number, tracking_carrier, notes, created_at, updated_at`

func scanRecord(row pgx.Row, extra ...any) (Record, error) {
	var r Record
	var status string
	dst := []any{
		&r.ID, &r.OrderNumber, &r.UserID, &r.Total, &status, &r.PaymentStatus,
		&r.TrackingNumber, &r.TrackingCarrier, &r.Notes, &r.CreatedAt, &r.UpdatedAt,
	}
	if err := row.Scan(append(dst, extra...)...); err != nil {
		return Record{}, err
	}
	r.Status = Status(status)
	return r, nil
}

func (q Query) where() *postgres.Where {
	w := &postgres.Where{}
	w.AddIf(q.UserID != "", "user_id::text = ?", q.UserID)
	w.AddIf(q.Status != "", "status = ?", string(q.Status))
	if q.Search != "" {
		like := postgres.Like(q.Search)
		w.Add("(order_number ILIKE ? OR tracking_number ILIKE ?)", like, like)
	}
	rg := q.Range()
	w.AddIf(rg.From != nil, "created_at >= ?", rg.From)
	w.AddIf(rg.To != nil, "created_at <= ?", rg.To)
	return w
}

// Query returns one page newest-first. The exact total rides along on every
// row via a window count.
func (r *Repo) Query(ctx context.Context, q Query) (listing.Page[Record], error) {
	p := q.Pagination()
	w := q.where()
	sql := `SELECT ` + recordColumns + `, COUNT(*) OVER() FROM orders` + w.SQL() +
		` ORDER BY created_at DESC LIMIT ` + w.Next(p.Limit) + ` OFFSET ` + w.Next(p.Offset())

	rows, err := r.DB.Query(ctx, sql, w.Args()...)
	if err != nil {
		return listing.Page[Record]{}, err
	}
	defer rows.Close()

	out := listing.Page[Record]{Items: []Record{}, Pagination: p}
	for rows.Next() {
		var total int
		rec, err := scanRecord(rows, &total)
		if err != nil {
			return listing.Page[Record]{}, err
		}
		out.Items = append(out.Items, rec)
		out.Total = total
	}
	if err := rows.Err(); err != nil {
		return listing.Page[Record]{}, err
	}

	// Past the last page the window count has no row to ride on.
	if len(out.Items) == 0 && p.Offset() > 0 {
		cw := q.where()
		if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM orders`+cw.SQL(), cw.Args()...).Scan(&out.Total); err != nil {
			return listing.Page[Record]{}, err
		}
	}
	return out, nil
}

// Ids are compared as text so a malformed id is a miss rather than a uuid
// cast error.
const (
	getSQL          = `SELECT ` + recordColumns + ` FROM orders WHERE id::text = $1`
	updateStatusSQL = `
		UPDATE orders SET
			status = $2,
			tracking_number = COALESCE($3, tracking_number),
			tracking_carrier = COALESCE($4, tracking_carrier),
			notes = COALESCE($5, notes),
			updated_at = now()
		WHERE id::text = $1
		RETURNING ` + recordColumns
)

func (r *Repo) Get(ctx context.Context, id string) (Record, error) {
	rec, err := scanRecord(r.DB.QueryRow(ctx, getSQL, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return rec, err
}

// UpdateStatus writes u and returns the stored row. Optional fields left nil
// keep their current value.
func (r *Repo) UpdateStatus(ctx context.Context, id string, u StatusUpdate) (Record, error) {
	rec, err := scanRecord(r.DB.QueryRow(ctx, updateStatusSQL,
		id, string(u.Status), u.TrackingNumber, u.Carrier, u.Notes))
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return rec, err
}

func (r *Repo) StatusCounts(ctx context.Context) (map[Status]int, error) {
	rows, err := r.DB.Query(ctx, `SELECT status, COUNT(*) FROM orders GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[Status]int, len(Statuses))
	for _, s := range Statuses {
		out[s] = 0
	}
	for rows.Next() {
		var s string
		var n int
		if err := rows.Scan(&s, &n); err != nil {
			return nil, err
		}
		out[Status(s)] = n
	}
	return out, rows.Err()
}
