package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrBadCredentials is returned when the provider refuses the password.
var ErrBadCredentials = errors.New("Invalid email or password")

// Session is a successful password sign-in.
type Session struct {
	AccessToken string
	ExpiresAt   time.Time
}

// PasswordClient signs staff in with the provider's password grant:
//
//	POST {base}/auth/v1/token?grant_type=password
//	apikey: <anon key>
//	{"email": …, "password": …}
type PasswordClient struct {
	base    string
	anonKey string
	http    *http.Client
	now     func() time.Time
}

func NewPasswordClient(baseURL, anonKey string, timeout time.Duration) *PasswordClient {
	return &PasswordClient{
		base:    strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		http:    &http.Client{Timeout: timeout},
		now:     time.Now,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// SignIn exchanges e-mail and password for an access token.
func (c *PasswordClient) SignIn(ctx context.Context, email, password string) (*Session, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.base+"/auth/v1/token?grant_type=password", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.anonKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth provider: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrBadCredentials
	case resp.StatusCode >= 300:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("auth provider: status %d: %s", resp.StatusCode, snippet)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("auth provider: decode: %w", err)
	}
	if tr.AccessToken == "" {
		return nil, errors.New("auth provider: empty access token")
	}
	if tr.ExpiresIn <= 0 {
		tr.ExpiresIn = 3600
	}
	return &Session{
		AccessToken: tr.AccessToken,
		ExpiresAt:   c.now().Add(time.Duration(tr.ExpiresIn) * time.Second),
	}, nil
}
