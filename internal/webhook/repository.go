package webhook

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Execer is the part of *pgxpool.Pool the repository uses.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository records processed deliveries in webhook_events.
type Repository struct {
	db Execer
}

func NewRepository(db Execer) *Repository {
	return &Repository{db: db}
}

var _ EventStore = (*Repository)(nil)

// Record inserts the event; a duplicate event id is reported as seen.
func (r *Repository) Record(ctx context.Context, e Event) (bool, error) {
	const q = `
INSERT INTO webhook_events (shop_domain, topic, event_id, payload_hash, processed_at)
VALUES ($1, $2, $3, $4, NOW())
`
	if _, err := r.db.Exec(ctx, q, e.ShopDomain, e.Topic, e.ID, e.PayloadHash); err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if ok := errors.As(err, &pgErr); ok {
		return pgErr.Code == "23505"
	}
	return false
}
