package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/lumera/contacts-service/pkg/errors"
	"github.com/lumera/contacts-service/pkg/httputil"
	"github.com/lumera/contacts-service/pkg/pagination"
	"github.com/lumera/contacts-service/pkg/validator"

	"github.com/lumera/contacts-service/internal/addrcheck"
	"github.com/lumera/contacts-service/internal/service"
)

// ContactHandler handles HTTP requests for contact endpoints.
type ContactHandler struct {
	service *service.ContactService
	logger  *slog.Logger
}

// NewContactHandler creates a new contact HTTP handler.
func NewContactHandler(svc *service.ContactService, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{service: svc, logger: logger}
}

// --- Request DTOs ---

// CreateContactRequest is the JSON request body for creating a contact.
type CreateContactRequest struct {
	FirstName     string  `json:"first_name" validate:"required,min=1,max=100"`
	MiddleInitial *string `json:"middle_initial" validate:"omitempty,min=1,max=10"`
	LastName      string  `json:"last_name" validate:"required,min=1,max=100"`
	EmailAddress  string  `json:"email_address" validate:"required,email,max=255"`
	Address1      string  `json:"address1" validate:"required,min=1,max=500"`
	Address2      string  `json:"address2" validate:"omitempty,max=500"`
	City          string  `json:"city" validate:"required,min=1,max=100"`
	State         string  `json:"state" validate:"required,min=1,max=100"`
	Zip           string  `json:"zip" validate:"required,min=1,max=20"`
}

// UpdateContactRequest is the JSON request body for a partial contact update.
// Omitted fields stay untouched; clear_middle_initial removes the initial.
type UpdateContactRequest struct {
	FirstName          *string `json:"first_name" validate:"omitempty,min=1,max=100"`
	MiddleInitial      *string `json:"middle_initial" validate:"omitempty,min=1,max=10"`
	ClearMiddleInitial bool    `json:"clear_middle_initial"`
	LastName           *string `json:"last_name" validate:"omitempty,min=1,max=100"`
	EmailAddress       *string `json:"email_address" validate:"omitempty,email,max=255"`
	Address1           *string `json:"address1" validate:"omitempty,min=1,max=500"`
	Address2           *string `json:"address2" validate:"omitempty,max=500"`
	City               *string `json:"city" validate:"omitempty,min=1,max=100"`
	State              *string `json:"state" validate:"omitempty,min=1,max=100"`
	Zip                *string `json:"zip" validate:"omitempty,min=1,max=20"`
}

// ConfirmEmailRequest is the JSON request body for confirming an email address.
type ConfirmEmailRequest struct {
	Token string `json:"token" validate:"required"`
}

// --- Handlers ---

// Create handles POST /api/v1/contacts
func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body: "+err.Error()), h.logger)
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	contact, err := h.service.CreateContact(r.Context(), service.CreateContactInput{
		FirstName:     req.FirstName,
		MiddleInitial: req.MiddleInitial,
		LastName:      req.LastName,
		EmailAddress:  req.EmailAddress,
		Address1:      req.Address1,
		Address2:      req.Address2,
		City:          req.City,
		State:         req.State,
		Zip:           req.Zip,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: contact})
}

// Get handles GET /api/v1/contacts/{id}
func (h *ContactHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	contact, err := h.service.GetContact(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: contact})
}

// List handles GET /api/v1/contacts
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)

	contacts, total, err := h.service.ListContacts(r.Context(), service.ListContactsInput{
		LastName: r.URL.Query().Get("last_name"),
		Limit:    params.PerPage,
		Offset:   params.Offset,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	result := pagination.NewResult(contacts, int(total), params)
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

// Update handles PATCH /api/v1/contacts/{id}
func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req UpdateContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body: "+err.Error()), h.logger)
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	contact, err := h.service.UpdateContact(r.Context(), id.String(), service.UpdateContactInput{
		FirstName:          req.FirstName,
		MiddleInitial:      req.MiddleInitial,
		ClearMiddleInitial: req.ClearMiddleInitial,
		LastName:           req.LastName,
		EmailAddress:       req.EmailAddress,
		Address1:           req.Address1,
		Address2:           req.Address2,
		City:               req.City,
		State:              req.State,
		Zip:                req.Zip,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: contact})
}

// Delete handles DELETE /api/v1/contacts/{id}
func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteContact(r.Context(), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: map[string]string{"id": id.String(), "status": "deleted"},
	})
}

// RequestVerification handles POST /api/v1/contacts/{id}/verification-requests
// The token is delivered out of band; the response never contains it.
func (h *ContactHandler) RequestVerification(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if _, err := h.service.RequestEmailVerification(r.Context(), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusAccepted, httputil.Response{
		Data: map[string]string{"contact_id": id.String(), "status": "verification_requested"},
	})
}

// ConfirmEmail handles POST /api/v1/verifications/confirm
// The endpoint is public: the bearer of a valid token is the proof.
func (h *ContactHandler) ConfirmEmail(w http.ResponseWriter, r *http.Request) {
	var req ConfirmEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body: "+err.Error()), h.logger)
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	contact, err := h.service.ConfirmEmail(r.Context(), req.Token)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: contact})
}

// ValidateAddress handles POST /api/v1/contacts/{id}/address-validations
func (h *ContactHandler) ValidateAddress(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	contact, err := h.service.ValidateAddress(r.Context(), id.String())
	if err != nil {
		if errors.Is(err, addrcheck.ErrUnavailable) {
			httputil.WriteError(w, r, &apperrors.AppError{
				Code:    "VERIFICATION_UNAVAILABLE",
				Message: "address verification is temporarily unavailable",
				Status:  http.StatusServiceUnavailable,
				Err:     apperrors.ErrServiceUnavail,
			}, h.logger)
			return
		}
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: contact})
}
