package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	apperrors "github.com/lumera/contacts-service/pkg/errors"

	"github.com/lumera/contacts-service/internal/domain"
)

// VerificationTokenRepository implements repository.VerificationTokenRepository
// using PostgreSQL.
type VerificationTokenRepository struct {
	db DB
}

// NewVerificationTokenRepository creates a new PostgreSQL-backed verification
// token repository.
func NewVerificationTokenRepository(db DB) *VerificationTokenRepository {
	return &VerificationTokenRepository{db: db}
}

// Create stores a new verification token hash for a contact.
func (r *VerificationTokenRepository) Create(ctx context.Context, contactID, tokenHash string, expiresAt time.Time) error {
	query := `
		INSERT INTO verification_tokens (contact_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4)`

	_, err := r.db.Exec(ctx, query, contactID, tokenHash, expiresAt, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert verification token: %w", err)
	}

	return nil
}

// GetByHash retrieves a verification token record by its hash.
func (r *VerificationTokenRepository) GetByHash(ctx context.Context, tokenHash string) (*domain.VerificationToken, error) {
	query := `
		SELECT id, contact_id, token_hash, expires_at, created_at, consumed_at
		FROM verification_tokens
		WHERE token_hash = $1`

	var vt domain.VerificationToken
	err := r.db.QueryRow(ctx, query, tokenHash).Scan(
		&vt.ID,
		&vt.ContactID,
		&vt.TokenHash,
		&vt.ExpiresAt,
		&vt.CreatedAt,
		&vt.ConsumedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan verification token: %w", err)
	}

	return &vt, nil
}

// Consume marks a token as used. Consuming an already-used token is an error.
func (r *VerificationTokenRepository) Consume(ctx context.Context, tokenHash string) error {
	query := `UPDATE verification_tokens SET consumed_at = $1 WHERE token_hash = $2 AND consumed_at IS NULL`

	ct, err := r.db.Exec(ctx, query, time.Now().UTC(), tokenHash)
	if err != nil {
		return fmt.Errorf("consume verification token: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.TokenExpired("verification token already used or unknown")
	}

	return nil
}

// DeleteByContactID removes all tokens issued for the given contact.
func (r *VerificationTokenRepository) DeleteByContactID(ctx context.Context, contactID string) error {
	query := `DELETE FROM verification_tokens WHERE contact_id = $1`

	_, err := r.db.Exec(ctx, query, contactID)
	if err != nil {
		return fmt.Errorf("delete verification tokens: %w", err)
	}

	return nil
}
