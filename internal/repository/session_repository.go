package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/thisnaeem/artigma/internal/model"
)

type SessionRepository interface {
	Create(ctx context.Context, session *model.Session) error
	FindByToken(ctx context.Context, token string) (*model.Session, error)
	// DeleteByToken is idempotent: deleting an unknown token is not an error.
	DeleteByToken(ctx context.Context, token string) error
}

type postgresSessionRepository struct {
	db *sqlx.DB
}

func NewPostgresSessionRepository(db *sqlx.DB) SessionRepository {
	return &postgresSessionRepository{db: db}
}

func (r *postgresSessionRepository) Create(ctx context.Context, session *model.Session) error {
	query := `INSERT INTO sessions (token, user_id, expires_at) VALUES ($1, $2, $3) RETURNING id, created_at`
	row := r.db.QueryRowxContext(ctx, query, session.Token, session.UserID, session.ExpiresAt)
	return row.Scan(&session.ID, &session.CreatedAt)
}

func (r *postgresSessionRepository) FindByToken(ctx context.Context, token string) (*model.Session, error) {
	var session model.Session
	query := `SELECT id, token, user_id, expires_at, created_at FROM sessions WHERE token = $1`
	err := r.db.GetContext(ctx, &session, query, token)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &session, nil
}

func (r *postgresSessionRepository) DeleteByToken(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	return err
}
