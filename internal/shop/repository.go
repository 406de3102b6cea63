package shop

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrNotFound = errors.New("shop not found")

// DB is the part of *pgxpool.Pool the repository uses.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type Repository struct {
	db DB
}

func NewRepository(db DB) *Repository {
	return &Repository{db: db}
}

const shopColumns = `id, shop_domain, access_token, scopes, status, installed_at`

func (r *Repository) Upsert(ctx context.Context, domain, accessToken, scopes string) (*Shop, error) {
	const q = `
INSERT INTO shops (shop_domain, access_token, scopes, status)
VALUES ($1, $2, $3, 'active')
ON CONFLICT (shop_domain) DO UPDATE SET
  access_token = EXCLUDED.access_token,
  scopes = EXCLUDED.scopes,
  status = 'active',
  updated_at = now()
RETURNING ` + shopColumns
	return scanShop(r.db.QueryRow(ctx, q, domain, accessToken, scopes))
}

func (r *Repository) FindByDomain(ctx context.Context, domain string) (*Shop, error) {
	const q = `SELECT ` + shopColumns + ` FROM shops WHERE shop_domain = $1`
	s, err := scanShop(r.db.QueryRow(ctx, q, domain))
	if err != nil {
		return nil, fmt.Errorf("find shop %s: %w", domain, err)
	}
	return s, nil
}

// DeleteByDomain removes the shop; ErrNotFound when it was not installed.
func (r *Repository) DeleteByDomain(ctx context.Context, domain string) error {
	const q = `DELETE FROM shops WHERE shop_domain = $1`
	tag, err := r.db.Exec(ctx, q, domain)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete shop %s: %w", domain, ErrNotFound)
	}
	return nil
}

// TokenFor returns the stored access token of an active shop.
func (r *Repository) TokenFor(ctx context.Context, domain string) (string, error) {
	s, err := r.FindByDomain(ctx, domain)
	if err != nil {
		return "", err
	}
	if s.Status != "active" {
		return "", fmt.Errorf("shop %s is %s: %w", domain, s.Status, ErrNotFound)
	}
	return s.AccessToken, nil
}

func scanShop(row pgx.Row) (*Shop, error) {
	s := &Shop{}
	if err := row.Scan(&s.ID, &s.Domain, &s.AccessToken, &s.Scopes, &s.Status, &s.InstalledAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s, nil
}
