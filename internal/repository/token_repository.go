package repository

import (
	"context"
	"database/sql"
	"log/slog"
)

// TokenRepository persists the single long-lived page token. The table holds
// at most one row (fixed id = 1).
type TokenRepository interface {
	Save(ctx context.Context, pageToken string) error
	Get(ctx context.Context) (string, error)
}

type tokenRepository struct {
	db *sql.DB
}

func NewTokenRepository(db *sql.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Save(ctx context.Context, pageToken string) error {
	query := `INSERT INTO tokens (id, page_token, updated_at) VALUES (1, $1, now())
		ON CONFLICT (id) DO UPDATE SET page_token = EXCLUDED.page_token, updated_at = now()`

	if _, err := r.db.ExecContext(ctx, query, pageToken); err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *tokenRepository) Get(ctx context.Context) (string, error) {
	query := `SELECT page_token FROM tokens WHERE id = 1`

	var token string
	if err := r.db.QueryRowContext(ctx, query).Scan(&token); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		slog.Info(err.Error())
		return "", err
	}
	return token, nil
}
