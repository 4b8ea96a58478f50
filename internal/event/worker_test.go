package event

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/lumera/contacts-service/pkg/errors"
	pkgkafka "github.com/lumera/contacts-service/pkg/kafka"

	"github.com/lumera/contacts-service/internal/addrcheck"
	"github.com/lumera/contacts-service/internal/domain"
)

type mockValidator struct {
	mock.Mock
}

func (m *mockValidator) ValidateAddress(ctx context.Context, contactID string) (*domain.Contact, error) {
	args := m.Called(ctx, contactID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Contact), args.Error(1)
}

func newTestWorker(validator AddressValidator) *AddressValidationWorker {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewAddressValidationWorker([]string{"localhost:9092"}, "contacts-addrcheck-test", validator, logger)
}

func addressChangedEvent(t *testing.T, contactID string) *pkgkafka.Event {
	t.Helper()
	event, err := pkgkafka.NewEvent(TopicAddressChanged, contactID, AggregateTypeContact, SourceContactsService, AddressChangedData{
		ContactID: contactID,
		Address: domain.PostalAddress{
			Address1: "123 Main St",
			City:     "Springfield",
			State:    "IL",
			Zip:      "62704",
		},
	})
	require.NoError(t, err)
	return event
}

func TestWorkerHandle_ValidatesContact(t *testing.T) {
	validator := new(mockValidator)
	w := newTestWorker(validator)
	defer w.Close()

	validator.On("ValidateAddress", mock.Anything, "c-1").Return(&domain.Contact{ID: "c-1"}, nil)

	err := w.handle(validator)(context.Background(), addressChangedEvent(t, "c-1"))
	assert.NoError(t, err)
	validator.AssertExpectations(t)
}

func TestWorkerHandle_MissingContactIsSkipped(t *testing.T) {
	validator := new(mockValidator)
	w := newTestWorker(validator)
	defer w.Close()

	validator.On("ValidateAddress", mock.Anything, "c-gone").Return(nil, apperrors.ErrNotFound)

	err := w.handle(validator)(context.Background(), addressChangedEvent(t, "c-gone"))
	assert.NoError(t, err)
}

func TestWorkerHandle_ProviderOutagePropagates(t *testing.T) {
	validator := new(mockValidator)
	w := newTestWorker(validator)
	defer w.Close()

	validator.On("ValidateAddress", mock.Anything, "c-1").Return(nil, addrcheck.ErrUnavailable)

	err := w.handle(validator)(context.Background(), addressChangedEvent(t, "c-1"))
	assert.ErrorIs(t, err, addrcheck.ErrUnavailable)
}

func TestWorkerHandle_BadPayload(t *testing.T) {
	validator := new(mockValidator)
	w := newTestWorker(validator)
	defer w.Close()

	event := &pkgkafka.Event{EventType: TopicAddressChanged, Data: []byte("{not json")}

	err := w.handle(validator)(context.Background(), event)
	assert.Error(t, err)
	validator.AssertNotCalled(t, "ValidateAddress", mock.Anything, mock.Anything)
}
