package addrcheck

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumera/contacts-service/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func springfieldAddress() domain.PostalAddress {
	return domain.PostalAddress{
		Address1: "123 Main St",
		City:     "Springfield",
		State:    "IL",
		Zip:      "62704",
	}
}

func TestVerify_Deliverable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/addresses/verify", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req verifyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Springfield", req.City)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(verifyResponse{Deliverable: true})
	}))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL, APIKey: "test-key"}, testLogger())

	valid, err := client.Verify(context.Background(), springfieldAddress())
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestVerify_Undeliverable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(verifyResponse{Deliverable: false})
	}))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL}, testLogger())

	valid, err := client.Verify(context.Background(), springfieldAddress())
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestVerify_ClientErrorIsNotUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL}, testLogger())

	_, err := client.Verify(context.Background(), springfieldAddress())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnavailable)
}

func TestVerify_ServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	cfg := Config{BaseURL: srv.URL}
	client := New(cfg, testLogger())

	_, err := client.Verify(context.Background(), springfieldAddress())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestVerify_UnreachableProviderIsUnavailable(t *testing.T) {
	client := New(Config{BaseURL: "http://127.0.0.1:1", Timeout: 0}, testLogger())

	_, err := client.Verify(context.Background(), springfieldAddress())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
}
