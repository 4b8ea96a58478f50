package domain

import (
	"time"
)

// PersonalName groups the parts of a person's name that change together.
// MiddleInitial is a pointer so that absence is distinguishable from an
// empty string.
type PersonalName struct {
	FirstName     string  `json:"first_name"`
	MiddleInitial *string `json:"middle_initial,omitempty"`
	LastName      string  `json:"last_name"`
}

// EmailContactInfo pairs an email address with its verification status.
// The two fields move together: a new address is always unverified.
type EmailContactInfo struct {
	EmailAddress    string `json:"email_address"`
	IsEmailVerified bool   `json:"is_email_verified"`
}

// PostalAddress is a mailing address. It carries no validity flag; validation
// status lives on PostalContactInfo so the raw address stays a plain value.
type PostalAddress struct {
	Address1 string `json:"address1"`
	Address2 string `json:"address2,omitempty"`
	City     string `json:"city"`
	State    string `json:"state"`
	Zip      string `json:"zip"`
}

// PostalContactInfo pairs a postal address with its validation status.
type PostalContactInfo struct {
	Address        PostalAddress `json:"address"`
	IsAddressValid bool          `json:"is_address_valid"`
}

// Contact is the top-level aggregate: a name plus email and postal contact
// details, each a cohesive sub-record rather than a flat field list.
type Contact struct {
	ID                string            `json:"id"`
	Name              PersonalName      `json:"name"`
	EmailContactInfo  EmailContactInfo  `json:"email_contact_info"`
	PostalContactInfo PostalContactInfo `json:"postal_contact_info"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// VerificationToken is a stored one-time token for confirming ownership of a
// contact's email address. Only the SHA-256 hash of the token is persisted.
type VerificationToken struct {
	ID         string     `json:"id"`
	ContactID  string     `json:"contact_id"`
	TokenHash  string     `json:"-"`
	ExpiresAt  time.Time  `json:"expires_at"`
	CreatedAt  time.Time  `json:"created_at"`
	ConsumedAt *time.Time `json:"consumed_at,omitempty"`
}
