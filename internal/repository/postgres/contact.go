package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	apperrors "github.com/lumera/contacts-service/pkg/errors"

	"github.com/lumera/contacts-service/internal/domain"
	"github.com/lumera/contacts-service/internal/repository"
)

const contactColumns = `id, first_name, middle_initial, last_name,
		email_address, is_email_verified,
		address1, address2, city, state, zip, is_address_valid,
		created_at, updated_at`

// ContactRepository implements repository.ContactRepository using PostgreSQL.
type ContactRepository struct {
	db DB
}

// NewContactRepository creates a new PostgreSQL-backed contact repository.
func NewContactRepository(db DB) *ContactRepository {
	return &ContactRepository{db: db}
}

// Create inserts a new contact into the database.
func (r *ContactRepository) Create(ctx context.Context, c *domain.Contact) error {
	query := `
		INSERT INTO contacts (id, first_name, middle_initial, last_name, email_address, is_email_verified, address1, address2, city, state, zip, is_address_valid, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := r.db.Exec(ctx, query,
		c.ID,
		c.Name.FirstName,
		c.Name.MiddleInitial,
		c.Name.LastName,
		c.EmailContactInfo.EmailAddress,
		c.EmailContactInfo.IsEmailVerified,
		c.PostalContactInfo.Address.Address1,
		c.PostalContactInfo.Address.Address2,
		c.PostalContactInfo.Address.City,
		c.PostalContactInfo.Address.State,
		c.PostalContactInfo.Address.Zip,
		c.PostalContactInfo.IsAddressValid,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("contact", "email", c.EmailContactInfo.EmailAddress)
		}
		return fmt.Errorf("insert contact: %w", err)
	}

	return nil
}

// GetByID retrieves a contact by its ID.
func (r *ContactRepository) GetByID(ctx context.Context, id string) (*domain.Contact, error) {
	query := fmt.Sprintf(`SELECT %s FROM contacts WHERE id = $1`, contactColumns)
	return r.scanContact(ctx, query, id)
}

// GetByEmail retrieves a contact by its email address.
func (r *ContactRepository) GetByEmail(ctx context.Context, email string) (*domain.Contact, error) {
	query := fmt.Sprintf(`SELECT %s FROM contacts WHERE email_address = $1`, contactColumns)
	return r.scanContact(ctx, query, email)
}

// List returns a page of contacts matching the filter, newest first.
func (r *ContactRepository) List(ctx context.Context, filter repository.ContactFilter) ([]domain.Contact, error) {
	query := fmt.Sprintf(`SELECT %s FROM contacts`, contactColumns)
	args := []any{}

	if filter.LastName != "" {
		query += ` WHERE last_name = $1`
		args = append(args, filter.LastName)
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []domain.Contact
	for rows.Next() {
		var c domain.Contact
		if err := scanContactRow(rows, &c); err != nil {
			return nil, fmt.Errorf("scan contact row: %w", err)
		}
		contacts = append(contacts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contact rows: %w", err)
	}

	if contacts == nil {
		contacts = []domain.Contact{}
	}

	return contacts, nil
}

// Count returns the number of contacts matching the filter.
func (r *ContactRepository) Count(ctx context.Context, filter repository.ContactFilter) (int64, error) {
	query := `SELECT COUNT(*) FROM contacts`
	args := []any{}

	if filter.LastName != "" {
		query += ` WHERE last_name = $1`
		args = append(args, filter.LastName)
	}

	var total int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count contacts: %w", err)
	}

	return total, nil
}

// Update modifies an existing contact in the database.
func (r *ContactRepository) Update(ctx context.Context, c *domain.Contact) error {
	c.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE contacts
		SET first_name = $1, middle_initial = $2, last_name = $3,
		    email_address = $4, is_email_verified = $5,
		    address1 = $6, address2 = $7, city = $8, state = $9, zip = $10, is_address_valid = $11,
		    updated_at = $12
		WHERE id = $13`

	ct, err := r.db.Exec(ctx, query,
		c.Name.FirstName,
		c.Name.MiddleInitial,
		c.Name.LastName,
		c.EmailContactInfo.EmailAddress,
		c.EmailContactInfo.IsEmailVerified,
		c.PostalContactInfo.Address.Address1,
		c.PostalContactInfo.Address.Address2,
		c.PostalContactInfo.Address.City,
		c.PostalContactInfo.Address.State,
		c.PostalContactInfo.Address.Zip,
		c.PostalContactInfo.IsAddressValid,
		c.UpdatedAt,
		c.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("contact", "email", c.EmailContactInfo.EmailAddress)
		}
		return fmt.Errorf("update contact: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("contact", c.ID)
	}

	return nil
}

// Delete removes a contact from the database by its ID.
func (r *ContactRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM contacts WHERE id = $1`

	ct, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("contact", id)
	}

	return nil
}

// scanContact executes a query expected to return a single contact row.
func (r *ContactRepository) scanContact(ctx context.Context, query string, args ...any) (*domain.Contact, error) {
	var c domain.Contact

	if err := scanContactRow(r.db.QueryRow(ctx, query, args...), &c); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan contact: %w", err)
	}

	return &c, nil
}

// scanContactRow maps one row in contactColumns order onto the nested struct.
func scanContactRow(row pgx.Row, c *domain.Contact) error {
	return row.Scan(
		&c.ID,
		&c.Name.FirstName,
		&c.Name.MiddleInitial,
		&c.Name.LastName,
		&c.EmailContactInfo.EmailAddress,
		&c.EmailContactInfo.IsEmailVerified,
		&c.PostalContactInfo.Address.Address1,
		&c.PostalContactInfo.Address.Address2,
		&c.PostalContactInfo.Address.City,
		&c.PostalContactInfo.Address.State,
		&c.PostalContactInfo.Address.Zip,
		&c.PostalContactInfo.IsAddressValid,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
