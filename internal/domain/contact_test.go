package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersonalName_MiddleInitialOptional(t *testing.T) {
	without := PersonalName{FirstName: "Jane", LastName: "Doe"}
	assert.Nil(t, without.MiddleInitial)

	mi := "Q"
	with := PersonalName{FirstName: "John", MiddleInitial: &mi, LastName: "Public"}
	require.NotNil(t, with.MiddleInitial)
	assert.Equal(t, "Q", *with.MiddleInitial)

	// Absence must not be conflated with an empty string.
	empty := ""
	degenerate := PersonalName{FirstName: "X", MiddleInitial: &empty, LastName: "Y"}
	assert.NotEqual(t, without.MiddleInitial, degenerate.MiddleInitial)
}

func TestPersonalName_MiddleInitialOmittedFromJSON(t *testing.T) {
	data, err := json.Marshal(PersonalName{FirstName: "Jane", LastName: "Doe"})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "middle_initial")

	var decoded PersonalName
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Nil(t, decoded.MiddleInitial)
}

func TestContact_NestedComposition(t *testing.T) {
	contact := Contact{
		ID: "b3c7a9e2-0000-0000-0000-000000000001",
		Name: PersonalName{
			FirstName: "Jane",
			LastName:  "Doe",
		},
		EmailContactInfo: EmailContactInfo{
			EmailAddress:    "jane@example.com",
			IsEmailVerified: false,
		},
		PostalContactInfo: PostalContactInfo{
			Address: PostalAddress{
				Address1: "123 Main St",
				Address2: "",
				City:     "Springfield",
				State:    "IL",
				Zip:      "62704",
			},
			IsAddressValid: false,
		},
	}

	assert.Equal(t, "Jane", contact.Name.FirstName)
	assert.Nil(t, contact.Name.MiddleInitial)
	assert.Equal(t, "Springfield", contact.PostalContactInfo.Address.City)
	assert.False(t, contact.EmailContactInfo.IsEmailVerified)
	assert.False(t, contact.PostalContactInfo.IsAddressValid)
}

func TestContact_JSONRoundTrip(t *testing.T) {
	mi := "R"
	original := Contact{
		ID: "b3c7a9e2-0000-0000-0000-000000000002",
		Name: PersonalName{
			FirstName:     "Ada",
			MiddleInitial: &mi,
			LastName:      "Lovelace",
		},
		EmailContactInfo: EmailContactInfo{
			EmailAddress:    "ada@example.com",
			IsEmailVerified: true,
		},
		PostalContactInfo: PostalContactInfo{
			Address: PostalAddress{
				Address1: "12 St James Sq",
				City:     "London",
				State:    "LDN",
				Zip:      "SW1Y",
			},
			IsAddressValid: true,
		},
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded Contact
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original, decoded)
}
