package provider

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func tokenServer(t *testing.T, exchanges *int, failures int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.Form.Get("grant_type"))
		assert.Equal(t, "client-1", r.Form.Get("client_id"))

		*exchanges++
		if *exchanges <= failures {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok-123",
			"token_type":   "Bearer",
			"expires_in":   3600,
			"scope":        "open-api",
		})
	}))
}

func TestTokenCachedUntilMargin(t *testing.T) {
	exchanges := 0
	srv := tokenServer(t, &exchanges, 0)
	defer srv.Close()

	now := time.Date(2026, 7, 10, 12, 0, 0, 0, time.UTC)
	ts := &TokenSource{
		HTTP:         srv.Client(),
		TokenURL:     srv.URL,
		ClientID:     "client-1",
		ClientSecret: "secret",
		Scope:        "open-api",
		Retry:        RetryPolicy{MaxAttempts: 1},
		Logger:       discardLogger(),
		Now:          func() time.Time { return now },
	}

	tok, err := ts.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-123", tok)
	assert.Equal(t, 1, exchanges)

	// Still inside expires_in minus the 300s margin: cache hit.
	now = now.Add(3600*time.Second - 301*time.Second)
	_, err = ts.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, exchanges)

	// Past the margin: refresh.
	now = now.Add(2 * time.Second)
	_, err = ts.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, exchanges)
}

func TestTokenRetriesRateLimit(t *testing.T) {
	exchanges := 0
	srv := tokenServer(t, &exchanges, 2)
	defer srv.Close()

	ts := &TokenSource{
		HTTP:         srv.Client(),
		TokenURL:     srv.URL,
		ClientID:     "client-1",
		ClientSecret: "secret",
		Retry: RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, Sleep: func(context.Context, time.Duration) error {
			return nil
		}},
		Logger: discardLogger(),
	}

	tok, err := ts.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-123", tok)
	assert.Equal(t, 3, exchanges)
}

func TestTokenMissingCredentialsFatal(t *testing.T) {
	ts := &TokenSource{TokenURL: "http://localhost:0", Logger: discardLogger()}
	_, err := ts.Token(context.Background())
	assert.ErrorIs(t, err, ErrMissingCredentials)
}
