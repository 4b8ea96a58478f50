package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/lumera/contacts-service/pkg/errors"

	"github.com/lumera/contacts-service/internal/domain"
	"github.com/lumera/contacts-service/internal/repository"
)

// verificationTokenTTL is how long an email verification token stays valid.
const verificationTokenTTL = 24 * time.Hour

// verificationTokenBytes is the entropy of a raw verification token.
const verificationTokenBytes = 32

// defaultListLimit pages List results when the caller asks for nothing.
const defaultListLimit = 20

// maxListLimit caps a single List page.
const maxListLimit = 100

// EventPublisher publishes contact domain events.
type EventPublisher interface {
	PublishContactCreated(ctx context.Context, contact *domain.Contact) error
	PublishContactUpdated(ctx context.Context, contact *domain.Contact) error
	PublishContactDeleted(ctx context.Context, contactID string) error
	PublishAddressChanged(ctx context.Context, contactID string, address domain.PostalAddress) error
	PublishVerificationRequested(ctx context.Context, contactID, email, token string) error
	PublishEmailVerified(ctx context.Context, contactID, email string) error
}

// ContactCache caches contact records by ID. Get returns (nil, nil) on a miss.
type ContactCache interface {
	Get(ctx context.Context, id string) (*domain.Contact, error)
	Set(ctx context.Context, contact *domain.Contact) error
	Delete(ctx context.Context, id string) error
}

// AddressVerifier checks whether a postal address is deliverable.
type AddressVerifier interface {
	Verify(ctx context.Context, address domain.PostalAddress) (bool, error)
}

// ContactService implements the business logic for contact operations.
type ContactService struct {
	contactRepo repository.ContactRepository
	tokenRepo   repository.VerificationTokenRepository
	cache       ContactCache
	events      EventPublisher
	verifier    AddressVerifier
	logger      *slog.Logger
}

// NewContactService creates a new contact service.
func NewContactService(
	contactRepo repository.ContactRepository,
	tokenRepo repository.VerificationTokenRepository,
	cache ContactCache,
	events EventPublisher,
	verifier AddressVerifier,
	logger *slog.Logger,
) *ContactService {
	return &ContactService{
		contactRepo: contactRepo,
		tokenRepo:   tokenRepo,
		cache:       cache,
		events:      events,
		verifier:    verifier,
		logger:      logger,
	}
}

// --- Input types ---

// CreateContactInput holds the parameters for creating a new contact.
type CreateContactInput struct {
	FirstName     string
	MiddleInitial *string
	LastName      string
	EmailAddress  string
	Address1      string
	Address2      string
	City          string
	State         string
	Zip           string
}

// UpdateContactInput holds the parameters for a partial contact update. Nil
// fields are left untouched. ClearMiddleInitial removes the middle initial;
// it wins over MiddleInitial when both are set.
type UpdateContactInput struct {
	FirstName          *string
	MiddleInitial      *string
	ClearMiddleInitial bool
	LastName           *string
	EmailAddress       *string
	Address1           *string
	Address2           *string
	City               *string
	State              *string
	Zip                *string
}

// ListContactsInput narrows and pages ListContacts results.
type ListContactsInput struct {
	LastName string
	Limit    int
	Offset   int
}

// --- Contact Operations ---

// CreateContact creates a new contact. A new contact always starts with an
// unverified email and an unvalidated address; verification and validation
// run after the fact.
func (s *ContactService) CreateContact(ctx context.Context, input CreateContactInput) (*domain.Contact, error) {
	if input.FirstName == "" {
		return nil, apperrors.InvalidInput("first name is required")
	}
	if input.LastName == "" {
		return nil, apperrors.InvalidInput("last name is required")
	}
	if err := validateMiddleInitial(input.MiddleInitial); err != nil {
		return nil, err
	}
	if input.EmailAddress == "" {
		return nil, apperrors.InvalidInput("email address is required")
	}
	if input.Address1 == "" {
		return nil, apperrors.InvalidInput("address line 1 is required")
	}
	if input.City == "" {
		return nil, apperrors.InvalidInput("city is required")
	}
	if input.State == "" {
		return nil, apperrors.InvalidInput("state is required")
	}
	if input.Zip == "" {
		return nil, apperrors.InvalidInput("zip is required")
	}

	now := time.Now().UTC()
	contact := &domain.Contact{
		ID: uuid.New().String(),
		Name: domain.PersonalName{
			FirstName:     input.FirstName,
			MiddleInitial: input.MiddleInitial,
			LastName:      input.LastName,
		},
		EmailContactInfo: domain.EmailContactInfo{
			EmailAddress:    input.EmailAddress,
			IsEmailVerified: false,
		},
		PostalContactInfo: domain.PostalContactInfo{
			Address: domain.PostalAddress{
				Address1: input.Address1,
				Address2: input.Address2,
				City:     input.City,
				State:    input.State,
				Zip:      input.Zip,
			},
			IsAddressValid: false,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.contactRepo.Create(ctx, contact); err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}

	// Publish events (non-blocking on failure).
	if err := s.events.PublishContactCreated(ctx, contact); err != nil {
		s.logEventFailure(ctx, "contact.created", contact.ID, err)
	}
	if err := s.events.PublishAddressChanged(ctx, contact.ID, contact.PostalContactInfo.Address); err != nil {
		s.logEventFailure(ctx, "contact.address_changed", contact.ID, err)
	}

	s.logger.InfoContext(ctx, "contact created",
		slog.String("contact_id", contact.ID),
		slog.String("email", contact.EmailContactInfo.EmailAddress),
	)

	return contact, nil
}

// GetContact retrieves a contact by ID, reading through the cache.
func (s *ContactService) GetContact(ctx context.Context, id string) (*domain.Contact, error) {
	cached, err := s.cache.Get(ctx, id)
	if err != nil {
		s.logger.WarnContext(ctx, "contact cache read failed",
			slog.String("contact_id", id),
			slog.String("error", err.Error()),
		)
	}
	if cached != nil {
		return cached, nil
	}

	contact, err := s.contactRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get contact: %w", err)
	}

	if err := s.cache.Set(ctx, contact); err != nil {
		s.logger.WarnContext(ctx, "contact cache write failed",
			slog.String("contact_id", id),
			slog.String("error", err.Error()),
		)
	}

	return contact, nil
}

// ListContacts returns a page of contacts and the total count of matches.
func (s *ContactService) ListContacts(ctx context.Context, input ListContactsInput) ([]domain.Contact, int64, error) {
	if input.Limit <= 0 {
		input.Limit = defaultListLimit
	}
	if input.Limit > maxListLimit {
		input.Limit = maxListLimit
	}
	if input.Offset < 0 {
		input.Offset = 0
	}

	filter := repository.ContactFilter{
		LastName: input.LastName,
		Limit:    input.Limit,
		Offset:   input.Offset,
	}

	contacts, err := s.contactRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list contacts: %w", err)
	}

	total, err := s.contactRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count contacts: %w", err)
	}

	return contacts, total, nil
}

// UpdateContact applies a partial update. Changing the email address resets
// IsEmailVerified and invalidates outstanding verification tokens; changing
// any address field resets IsAddressValid and queues a re-validation.
func (s *ContactService) UpdateContact(ctx context.Context, id string, input UpdateContactInput) (*domain.Contact, error) {
	contact, err := s.contactRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get contact for update: %w", err)
	}

	if input.FirstName != nil {
		if *input.FirstName == "" {
			return nil, apperrors.InvalidInput("first name must not be empty")
		}
		contact.Name.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		if *input.LastName == "" {
			return nil, apperrors.InvalidInput("last name must not be empty")
		}
		contact.Name.LastName = *input.LastName
	}
	if input.ClearMiddleInitial {
		contact.Name.MiddleInitial = nil
	} else if input.MiddleInitial != nil {
		if err := validateMiddleInitial(input.MiddleInitial); err != nil {
			return nil, err
		}
		contact.Name.MiddleInitial = input.MiddleInitial
	}

	emailChanged := false
	if input.EmailAddress != nil {
		if *input.EmailAddress == "" {
			return nil, apperrors.InvalidInput("email address must not be empty")
		}
		if *input.EmailAddress != contact.EmailContactInfo.EmailAddress {
			contact.EmailContactInfo.EmailAddress = *input.EmailAddress
			contact.EmailContactInfo.IsEmailVerified = false
			emailChanged = true
		}
	}

	oldAddress := contact.PostalContactInfo.Address
	if input.Address1 != nil {
		if *input.Address1 == "" {
			return nil, apperrors.InvalidInput("address line 1 must not be empty")
		}
		contact.PostalContactInfo.Address.Address1 = *input.Address1
	}
	if input.Address2 != nil {
		contact.PostalContactInfo.Address.Address2 = *input.Address2
	}
	if input.City != nil {
		if *input.City == "" {
			return nil, apperrors.InvalidInput("city must not be empty")
		}
		contact.PostalContactInfo.Address.City = *input.City
	}
	if input.State != nil {
		if *input.State == "" {
			return nil, apperrors.InvalidInput("state must not be empty")
		}
		contact.PostalContactInfo.Address.State = *input.State
	}
	if input.Zip != nil {
		if *input.Zip == "" {
			return nil, apperrors.InvalidInput("zip must not be empty")
		}
		contact.PostalContactInfo.Address.Zip = *input.Zip
	}

	addressChanged := contact.PostalContactInfo.Address != oldAddress
	if addressChanged {
		contact.PostalContactInfo.IsAddressValid = false
	}

	if err := s.contactRepo.Update(ctx, contact); err != nil {
		return nil, fmt.Errorf("update contact: %w", err)
	}

	if emailChanged {
		if err := s.tokenRepo.DeleteByContactID(ctx, contact.ID); err != nil {
			s.logger.ErrorContext(ctx, "failed to invalidate verification tokens after email change",
				slog.String("contact_id", contact.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.evict(ctx, contact.ID)

	if err := s.events.PublishContactUpdated(ctx, contact); err != nil {
		s.logEventFailure(ctx, "contact.updated", contact.ID, err)
	}
	if addressChanged {
		if err := s.events.PublishAddressChanged(ctx, contact.ID, contact.PostalContactInfo.Address); err != nil {
			s.logEventFailure(ctx, "contact.address_changed", contact.ID, err)
		}
	}

	s.logger.InfoContext(ctx, "contact updated",
		slog.String("contact_id", contact.ID),
		slog.Bool("email_changed", emailChanged),
		slog.Bool("address_changed", addressChanged),
	)

	return contact, nil
}

// DeleteContact removes a contact and its verification tokens.
func (s *ContactService) DeleteContact(ctx context.Context, id string) error {
	if err := s.contactRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}

	if err := s.tokenRepo.DeleteByContactID(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to delete verification tokens",
			slog.String("contact_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.evict(ctx, id)

	if err := s.events.PublishContactDeleted(ctx, id); err != nil {
		s.logEventFailure(ctx, "contact.deleted", id, err)
	}

	s.logger.InfoContext(ctx, "contact deleted",
		slog.String("contact_id", id),
	)

	return nil
}

// --- Email Verification ---

// RequestEmailVerification issues a one-time verification token for the
// contact's current email address and publishes an event so the notification
// pipeline can deliver it. The raw token is returned; only its hash is stored.
func (s *ContactService) RequestEmailVerification(ctx context.Context, contactID string) (string, error) {
	contact, err := s.contactRepo.GetByID(ctx, contactID)
	if err != nil {
		return "", fmt.Errorf("get contact for verification: %w", err)
	}

	if contact.EmailContactInfo.IsEmailVerified {
		return "", apperrors.Conflict("email address is already verified")
	}

	token, err := newVerificationToken()
	if err != nil {
		return "", fmt.Errorf("generate verification token: %w", err)
	}

	expiresAt := time.Now().UTC().Add(verificationTokenTTL)
	if err := s.tokenRepo.Create(ctx, contact.ID, hashToken(token), expiresAt); err != nil {
		return "", fmt.Errorf("store verification token: %w", err)
	}

	if err := s.events.PublishVerificationRequested(ctx, contact.ID, contact.EmailContactInfo.EmailAddress, token); err != nil {
		s.logEventFailure(ctx, "contact.email_verification_requested", contact.ID, err)
	}

	s.logger.InfoContext(ctx, "email verification requested",
		slog.String("contact_id", contact.ID),
		slog.String("email", contact.EmailContactInfo.EmailAddress),
	)

	return token, nil
}

// ConfirmEmail consumes a verification token and marks the contact's email
// address as verified.
func (s *ContactService) ConfirmEmail(ctx context.Context, rawToken string) (*domain.Contact, error) {
	if rawToken == "" {
		return nil, apperrors.InvalidInput("verification token is required")
	}

	tokenHash := hashToken(rawToken)
	stored, err := s.tokenRepo.GetByHash(ctx, tokenHash)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid verification token")
	}

	if stored.ConsumedAt != nil {
		return nil, apperrors.TokenExpired("verification token already used")
	}
	if time.Now().UTC().After(stored.ExpiresAt) {
		return nil, apperrors.TokenExpired("verification token has expired")
	}

	if err := s.tokenRepo.Consume(ctx, tokenHash); err != nil {
		return nil, fmt.Errorf("consume verification token: %w", err)
	}

	contact, err := s.contactRepo.GetByID(ctx, stored.ContactID)
	if err != nil {
		return nil, fmt.Errorf("get contact for email confirmation: %w", err)
	}

	if !contact.EmailContactInfo.IsEmailVerified {
		contact.EmailContactInfo.IsEmailVerified = true
		if err := s.contactRepo.Update(ctx, contact); err != nil {
			return nil, fmt.Errorf("mark email verified: %w", err)
		}

		s.evict(ctx, contact.ID)

		if err := s.events.PublishEmailVerified(ctx, contact.ID, contact.EmailContactInfo.EmailAddress); err != nil {
			s.logEventFailure(ctx, "contact.email_verified", contact.ID, err)
		}
	}

	s.logger.InfoContext(ctx, "email verified",
		slog.String("contact_id", contact.ID),
	)

	return contact, nil
}

// --- Address Validation ---

// ValidateAddress checks the contact's current address against the external
// provider and records the verdict. When the provider is unavailable the
// validation status is left untouched and the error is returned.
func (s *ContactService) ValidateAddress(ctx context.Context, contactID string) (*domain.Contact, error) {
	contact, err := s.contactRepo.GetByID(ctx, contactID)
	if err != nil {
		return nil, fmt.Errorf("get contact for address validation: %w", err)
	}

	valid, err := s.verifier.Verify(ctx, contact.PostalContactInfo.Address)
	if err != nil {
		return nil, fmt.Errorf("verify address: %w", err)
	}

	return s.ApplyAddressValidation(ctx, contactID, valid)
}

// ApplyAddressValidation records an address validation verdict for a contact.
// It is a no-op when the stored status already matches.
func (s *ContactService) ApplyAddressValidation(ctx context.Context, contactID string, valid bool) (*domain.Contact, error) {
	contact, err := s.contactRepo.GetByID(ctx, contactID)
	if err != nil {
		return nil, fmt.Errorf("get contact for validation result: %w", err)
	}

	if contact.PostalContactInfo.IsAddressValid == valid {
		return contact, nil
	}

	contact.PostalContactInfo.IsAddressValid = valid
	if err := s.contactRepo.Update(ctx, contact); err != nil {
		return nil, fmt.Errorf("record address validation: %w", err)
	}

	s.evict(ctx, contact.ID)

	s.logger.InfoContext(ctx, "address validation recorded",
		slog.String("contact_id", contact.ID),
		slog.Bool("is_address_valid", valid),
	)

	return contact, nil
}

// --- Helpers ---

func (s *ContactService) evict(ctx context.Context, contactID string) {
	if err := s.cache.Delete(ctx, contactID); err != nil {
		s.logger.WarnContext(ctx, "contact cache eviction failed",
			slog.String("contact_id", contactID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *ContactService) logEventFailure(ctx context.Context, eventType, contactID string, err error) {
	s.logger.ErrorContext(ctx, "failed to publish event",
		slog.String("event_type", eventType),
		slog.String("contact_id", contactID),
		slog.String("error", err.Error()),
	)
}

// validateMiddleInitial rejects an empty-string middle initial. Absence is
// expressed by omitting the field, never by a blank value.
func validateMiddleInitial(mi *string) error {
	if mi != nil && strings.TrimSpace(*mi) == "" {
		return apperrors.InvalidInput("middle initial must be omitted when absent, not empty")
	}
	return nil
}

// newVerificationToken returns a random hex token.
func newVerificationToken() (string, error) {
	buf := make([]byte, verificationTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// hashToken returns the SHA256 hex digest of the given token string.
func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}
