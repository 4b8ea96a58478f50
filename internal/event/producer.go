package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/lumera/contacts-service/pkg/kafka"

	"github.com/lumera/contacts-service/internal/domain"
)

// Kafka topic constants for contact domain events.
const (
	TopicContactCreated        = "crm.contact.created"
	TopicContactUpdated        = "crm.contact.updated"
	TopicContactDeleted        = "crm.contact.deleted"
	TopicAddressChanged        = "crm.contact.address_changed"
	TopicVerificationRequested = "crm.contact.email_verification_requested"
	TopicEmailVerified         = "crm.contact.email_verified"
)

// Aggregate type constant.
const AggregateTypeContact = "contact"

// Source identifier for events originating from the contacts service.
const SourceContactsService = "contacts-service"

// ContactData is the payload for contact.created and contact.updated events.
type ContactData struct {
	ID              string  `json:"id"`
	FirstName       string  `json:"first_name"`
	MiddleInitial   *string `json:"middle_initial,omitempty"`
	LastName        string  `json:"last_name"`
	EmailAddress    string  `json:"email_address"`
	IsEmailVerified bool    `json:"is_email_verified"`
}

// ContactDeletedData is the payload for a contact.deleted event.
type ContactDeletedData struct {
	ID string `json:"id"`
}

// AddressChangedData is the payload for a contact.address_changed event. The
// address validation worker consumes it to re-check the new address.
type AddressChangedData struct {
	ContactID string               `json:"contact_id"`
	Address   domain.PostalAddress `json:"address"`
}

// VerificationRequestedData is the payload for a
// contact.email_verification_requested event. The notification service
// delivers the token to the contact's email address.
type VerificationRequestedData struct {
	ContactID    string `json:"contact_id"`
	EmailAddress string `json:"email_address"`
	Token        string `json:"token"`
}

// EmailVerifiedData is the payload for a contact.email_verified event.
type EmailVerifiedData struct {
	ContactID    string `json:"contact_id"`
	EmailAddress string `json:"email_address"`
}

// Producer publishes contact domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the contacts service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

func contactData(c *domain.Contact) ContactData {
	return ContactData{
		ID:              c.ID,
		FirstName:       c.Name.FirstName,
		MiddleInitial:   c.Name.MiddleInitial,
		LastName:        c.Name.LastName,
		EmailAddress:    c.EmailContactInfo.EmailAddress,
		IsEmailVerified: c.EmailContactInfo.IsEmailVerified,
	}
}

// PublishContactCreated publishes a contact.created event.
func (p *Producer) PublishContactCreated(ctx context.Context, contact *domain.Contact) error {
	return p.publish(ctx, TopicContactCreated, contact.ID, contactData(contact))
}

// PublishContactUpdated publishes a contact.updated event.
func (p *Producer) PublishContactUpdated(ctx context.Context, contact *domain.Contact) error {
	return p.publish(ctx, TopicContactUpdated, contact.ID, contactData(contact))
}

// PublishContactDeleted publishes a contact.deleted event.
func (p *Producer) PublishContactDeleted(ctx context.Context, contactID string) error {
	return p.publish(ctx, TopicContactDeleted, contactID, ContactDeletedData{ID: contactID})
}

// PublishAddressChanged publishes a contact.address_changed event carrying the
// new address so the validation worker can re-check it.
func (p *Producer) PublishAddressChanged(ctx context.Context, contactID string, address domain.PostalAddress) error {
	return p.publish(ctx, TopicAddressChanged, contactID, AddressChangedData{
		ContactID: contactID,
		Address:   address,
	})
}

// PublishVerificationRequested publishes a contact.email_verification_requested
// event. The raw token travels only inside the event payload.
func (p *Producer) PublishVerificationRequested(ctx context.Context, contactID, email, token string) error {
	return p.publish(ctx, TopicVerificationRequested, contactID, VerificationRequestedData{
		ContactID:    contactID,
		EmailAddress: email,
		Token:        token,
	})
}

// PublishEmailVerified publishes a contact.email_verified event.
func (p *Producer) PublishEmailVerified(ctx context.Context, contactID, email string) error {
	return p.publish(ctx, TopicEmailVerified, contactID, EmailVerifiedData{
		ContactID:    contactID,
		EmailAddress: email,
	})
}

func (p *Producer) publish(ctx context.Context, topic, contactID string, data any) error {
	event, err := pkgkafka.NewEvent(topic, contactID, AggregateTypeContact, SourceContactsService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published contact event",
		slog.String("topic", topic),
		slog.String("contact_id", contactID),
	)

	return nil
}
