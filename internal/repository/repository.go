package repository

import (
	"context"
	"time"

	"github.com/lumera/contacts-service/internal/domain"
)

// ContactFilter narrows and pages List results.
type ContactFilter struct {
	// LastName filters by exact last name match when non-empty.
	LastName string
	Limit    int
	Offset   int
}

// ContactRepository defines the interface for contact persistence operations.
type ContactRepository interface {
	// Create inserts a new contact into the store.
	Create(ctx context.Context, contact *domain.Contact) error

	// GetByID retrieves a contact by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Contact, error)

	// GetByEmail retrieves a contact by its email address.
	GetByEmail(ctx context.Context, email string) (*domain.Contact, error)

	// List returns a page of contacts matching the filter, newest first.
	List(ctx context.Context, filter ContactFilter) ([]domain.Contact, error)

	// Count returns the number of contacts matching the filter.
	Count(ctx context.Context, filter ContactFilter) (int64, error)

	// Update modifies an existing contact in the store.
	Update(ctx context.Context, contact *domain.Contact) error

	// Delete removes a contact from the store by its identifier.
	Delete(ctx context.Context, id string) error
}

// VerificationTokenRepository defines the interface for email verification
// token persistence operations.
type VerificationTokenRepository interface {
	// Create stores a new verification token hash for a contact.
	Create(ctx context.Context, contactID, tokenHash string, expiresAt time.Time) error

	// GetByHash retrieves a verification token record by its hash.
	GetByHash(ctx context.Context, tokenHash string) (*domain.VerificationToken, error)

	// Consume marks a token as used. It fails if the token was already consumed.
	Consume(ctx context.Context, tokenHash string) error

	// DeleteByContactID removes all tokens issued for the given contact.
	DeleteByContactID(ctx context.Context, contactID string) error
}
