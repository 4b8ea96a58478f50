package event

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/lumera/contacts-service/pkg/errors"
	pkgkafka "github.com/lumera/contacts-service/pkg/kafka"

	"github.com/lumera/contacts-service/internal/addrcheck"
	"github.com/lumera/contacts-service/internal/domain"
)

// idempotencyTTL bounds how long processed event IDs are remembered.
const idempotencyTTL = 24 * time.Hour

// AddressValidator triggers validation of a contact's current address.
type AddressValidator interface {
	ValidateAddress(ctx context.Context, contactID string) (*domain.Contact, error)
}

// AddressValidationWorker consumes contact.address_changed events and runs
// the external address check for each affected contact. The consumer group
// makes the check asynchronous: API writes never wait on the provider.
type AddressValidationWorker struct {
	consumer *pkgkafka.Consumer
	logger   *slog.Logger
}

// NewAddressValidationWorker creates a worker consuming from the
// address_changed topic with the given group ID.
func NewAddressValidationWorker(brokers []string, groupID string, validator AddressValidator, logger *slog.Logger) *AddressValidationWorker {
	w := &AddressValidationWorker{logger: logger}

	store := pkgkafka.NewMemoryIdempotencyStore(idempotencyTTL)
	handler := pkgkafka.IdempotentHandler(store, w.handle(validator), logger)

	w.consumer = pkgkafka.NewConsumer(pkgkafka.ConsumerConfig{
		Brokers: brokers,
		GroupID: groupID,
		Topic:   TopicAddressChanged,
	}, handler, logger)

	return w
}

// Run consumes until ctx is canceled.
func (w *AddressValidationWorker) Run(ctx context.Context) error {
	return w.consumer.Start(ctx)
}

// Close shuts the underlying consumer down.
func (w *AddressValidationWorker) Close() error {
	return w.consumer.Close()
}

func (w *AddressValidationWorker) handle(validator AddressValidator) pkgkafka.Handler {
	return func(ctx context.Context, event *pkgkafka.Event) error {
		var data AddressChangedData
		if err := event.UnmarshalData(&data); err != nil {
			return fmt.Errorf("unmarshal address_changed payload: %w", err)
		}

		_, err := validator.ValidateAddress(ctx, data.ContactID)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, apperrors.ErrNotFound):
			// The contact was deleted before the event was consumed.
			w.logger.InfoContext(ctx, "skipping address validation for missing contact",
				slog.String("contact_id", data.ContactID),
			)
			return nil
		case errors.Is(err, addrcheck.ErrUnavailable):
			// Returning the error makes the consumer retry, and eventually
			// skip, without touching the stored validation status.
			return err
		default:
			return err
		}
	}
}
