package repository_test

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/thisnaeem/artigma/internal/model"
	repo "github.com/thisnaeem/artigma/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func TestPostgresSessionRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	r := repo.NewPostgresSessionRepository(sqlxDB)

	id := uuid.New()
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO sessions (token, user_id, expires_at) VALUES ($1, $2, $3) RETURNING id, created_at`)).
		WithArgs("tok", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(id, now))

	session := &model.Session{Token: "tok", UserID: uuid.New(), ExpiresAt: now.Add(time.Hour)}
	err = r.Create(context.Background(), session)
	require.NoError(t, err)
	require.Equal(t, id, session.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSessionRepository_FindByToken_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	r := repo.NewPostgresSessionRepository(sqlxDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, token, user_id, expires_at, created_at FROM sessions WHERE token = $1`)).
		WithArgs("missing").WillReturnError(sql.ErrNoRows)

	_, err = r.FindByToken(context.Background(), "missing")
	require.ErrorIs(t, err, repo.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSessionRepository_DeleteByToken_Idempotent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	r := repo.NewPostgresSessionRepository(sqlxDB)

	// deleting an unknown token affects zero rows and is still fine
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM sessions WHERE token = $1`)).
		WithArgs("unknown").WillReturnResult(sqlmock.NewResult(0, 0))

	err = r.DeleteByToken(context.Background(), "unknown")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
