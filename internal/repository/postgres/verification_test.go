package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/lumera/contacts-service/pkg/errors"
)

func newTokenTestFixture(t *testing.T) (*VerificationTokenRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	repo := NewVerificationTokenRepository(mock)
	return repo, mock
}

func TestVerificationTokenRepository_Create(t *testing.T) {
	repo, mock := newTokenTestFixture(t)
	defer mock.Close()

	expiresAt := time.Now().UTC().Add(24 * time.Hour)

	mock.ExpectExec("INSERT INTO verification_tokens").
		WithArgs("c-1234", "hash-abc", expiresAt, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), "c-1234", "hash-abc", expiresAt)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerificationTokenRepository_GetByHash_Success(t *testing.T) {
	repo, mock := newTokenTestFixture(t)
	defer mock.Close()

	now := time.Now().UTC().Truncate(time.Microsecond)
	rows := pgxmock.NewRows([]string{"id", "contact_id", "token_hash", "expires_at", "created_at", "consumed_at"}).
		AddRow("t-1", "c-1234", "hash-abc", now.Add(24*time.Hour), now, (*time.Time)(nil))

	mock.ExpectQuery("SELECT .+ FROM verification_tokens WHERE token_hash =").
		WithArgs("hash-abc").
		WillReturnRows(rows)

	got, err := repo.GetByHash(context.Background(), "hash-abc")
	require.NoError(t, err)
	assert.Equal(t, "c-1234", got.ContactID)
	assert.Nil(t, got.ConsumedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerificationTokenRepository_GetByHash_NotFound(t *testing.T) {
	repo, mock := newTokenTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM verification_tokens WHERE token_hash =").
		WithArgs("unknown").
		WillReturnError(pgx.ErrNoRows)

	got, err := repo.GetByHash(context.Background(), "unknown")
	assert.Nil(t, got)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerificationTokenRepository_Consume_Success(t *testing.T) {
	repo, mock := newTokenTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("UPDATE verification_tokens SET consumed_at =").
		WithArgs(pgxmock.AnyArg(), "hash-abc").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.Consume(context.Background(), "hash-abc")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerificationTokenRepository_Consume_AlreadyUsed(t *testing.T) {
	repo, mock := newTokenTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("UPDATE verification_tokens SET consumed_at =").
		WithArgs(pgxmock.AnyArg(), "hash-abc").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Consume(context.Background(), "hash-abc")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrTokenExpired), "expected ErrTokenExpired, got: %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerificationTokenRepository_DeleteByContactID(t *testing.T) {
	repo, mock := newTokenTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM verification_tokens WHERE contact_id =").
		WithArgs("c-1234").
		WillReturnResult(pgxmock.NewResult("DELETE", 2))

	err := repo.DeleteByContactID(context.Background(), "c-1234")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
