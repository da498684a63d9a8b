package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// DefaultTokenMargin is subtracted from the provider-declared token TTL so a
// token is refreshed before it can expire mid-request.
const DefaultTokenMargin = 300 * time.Second

// TokenSource performs the OAuth2 client-credentials exchange against the
// inventory provider and caches the single resulting bearer token. The cache
// is one entry, overwritten on each refresh, guarded by a mutex so a refresh
// racing concurrent requests happens once.
type TokenSource struct {
	HTTP         *http.Client
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scope        string
	Margin       time.Duration
	Retry        RetryPolicy
	Logger       *slog.Logger
	Now          func() time.Time

	mu     sync.Mutex
	token  string
	expiry time.Time
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope"`
}

// Token returns the cached bearer token, refreshing it when the safety
// margin has been reached. Missing credentials surface immediately as a
// configuration error, never retried.
func (t *TokenSource) Token(ctx context.Context) (string, error) {
	if t.ClientID == "" || t.ClientSecret == "" {
		return "", ErrMissingCredentials
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if t.token != "" && now.Before(t.expiry) {
		return t.token, nil
	}

	var resp tokenResponse
	err := t.Retry.Do(ctx, func() error {
		return t.exchange(ctx, &resp)
	})
	if err != nil {
		return "", fmt.Errorf("provider: token exchange failed: %w", err)
	}

	margin := t.Margin
	if margin <= 0 {
		margin = DefaultTokenMargin
	}
	t.token = resp.AccessToken
	t.expiry = t.now().Add(time.Duration(resp.ExpiresIn)*time.Second - margin)
	if t.Logger != nil {
		t.Logger.Debug("provider token refreshed", "expires_in", resp.ExpiresIn, "scope", resp.Scope)
	}
	return t.token, nil
}

func (t *TokenSource) exchange(ctx context.Context, out *tokenResponse) error {
	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {t.ClientID},
		"client_secret": {t.ClientSecret},
	}
	if t.Scope != "" {
		form.Set("scope", t.Scope)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := t.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &APIError{StatusCode: resp.StatusCode, Body: string(snippet)}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (t *TokenSource) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}
