package kafka

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type contactCreatedData struct {
	ContactID string `json:"contact_id"`
	Email     string `json:"email"`
}

func TestNewEvent(t *testing.T) {
	data := contactCreatedData{ContactID: "c-1", Email: "jane@example.com"}

	event, err := NewEvent("crm.contact.created", "c-1", "contact", "contacts-service", data)
	require.NoError(t, err)

	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, "crm.contact.created", event.EventType)
	assert.Equal(t, "c-1", event.AggregateID)
	assert.Equal(t, "contact", event.AggregateType)
	assert.Equal(t, 1, event.Version)
	assert.Equal(t, "contacts-service", event.Source)
	assert.WithinDuration(t, time.Now().UTC(), event.Timestamp, time.Second)
}

func TestEvent_MarshalRoundTrip(t *testing.T) {
	event, err := NewEvent("crm.contact.updated", "c-2", "contact", "contacts-service",
		contactCreatedData{ContactID: "c-2", Email: "joe@example.com"})
	require.NoError(t, err)
	event.WithCorrelationID("corr-1").WithMetadata("origin", "api")

	raw, err := event.Marshal()
	require.NoError(t, err)

	decoded, err := UnmarshalEvent(raw)
	require.NoError(t, err)

	assert.Equal(t, event.EventID, decoded.EventID)
	assert.Equal(t, "corr-1", decoded.CorrelationID)
	assert.Equal(t, "api", decoded.Metadata["origin"])

	var data contactCreatedData
	require.NoError(t, decoded.UnmarshalData(&data))
	assert.Equal(t, "joe@example.com", data.Email)
}

func TestUnmarshalEvent_BadPayload(t *testing.T) {
	_, err := UnmarshalEvent([]byte("{not json"))
	assert.Error(t, err)
}

func TestTopic(t *testing.T) {
	assert.Equal(t, "crm.contact.created", Topic("contact", "created"))
}
