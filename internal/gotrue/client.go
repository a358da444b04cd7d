// Package gotrue talks to the hosted auth provider's REST API.
package gotrue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/handshakeadmin/DYOROfficial-sub002/internal/users"
)

var (
	ErrInvalidSession = errors.New("invalid or expired session")
	ErrNoServiceKey   = errors.New("service role key not configured")
)

type Client struct {
	BaseURL string
	AnonKey string
	// ServiceKey unlocks the admin API. Server-side only.
	ServiceKey string
	HTTP       *http.Client
}

func New(baseURL, anonKey string) *Client {
	return &Client{
		BaseURL: baseURL,
		AnonKey: anonKey,
		HTTP:    &http.Client{Timeout: 5 * time.Second},
	}
}

// GetUser exchanges an access token for the identity it belongs to.
func (c *Client) GetUser(ctx context.Context, accessToken string) (users.Identity, error) {
	if accessToken == "" {
		return users.Identity{}, ErrInvalidSession
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/auth/v1/user", nil)
	if err != nil {
		return users.Identity{}, err
	}
	req.Header.Set("apikey", c.AnonKey)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return users.Identity{}, fmt.Errorf("auth get user: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return users.Identity{}, ErrInvalidSession
	case resp.StatusCode != http.StatusOK:
		return users.Identity{}, statusErr("get user", resp)
	}

	var id users.Identity
	if err := json.NewDecoder(resp.Body).Decode(&id); err != nil {
		return users.Identity{}, fmt.Errorf("auth get user: decode: %w", err)
	}
	if id.ID == "" {
		return users.Identity{}, ErrInvalidSession
	}
	return id, nil
}

// GetUserByID reads an account through the admin API. It needs ServiceKey.
// An unknown id yields users.ErrNotFound.
func (c *Client) GetUserByID(ctx context.Context, id string) (users.Identity, error) {
	if c.ServiceKey == "" {
		return users.Identity{}, ErrNoServiceKey
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/auth/v1/admin/users/"+url.PathEscape(id), nil)
	if err != nil {
		return users.Identity{}, err
	}
	req.Header.Set("apikey", c.ServiceKey)
	req.Header.Set("Authorization", "Bearer "+c.ServiceKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return users.Identity{}, fmt.Errorf("auth admin get user: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return users.Identity{}, users.ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return users.Identity{}, statusErr("admin get user", resp)
	}
	var out users.Identity
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return users.Identity{}, fmt.Errorf("auth admin get user: decode: %w", err)
	}
	return out, nil
}

// SendMagicLink asks the provider to email a one-time sign-in link. Accounts
// are never created here.
func (c *Client) SendMagicLink(ctx context.Context, email, redirectTo string) error {
	body, _ := json.Marshal(map[string]any{"email": email, "create_user": false})
	u := c.BaseURL + "/auth/v1/otp"
	if redirectTo != "" {
		u += "?redirect_to=" + url.QueryEscape(redirectTo)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.AnonKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("auth otp: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return statusErr("otp", resp)
	}
	return nil
}

func statusErr(op string, resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("auth %s: status %d: %s", op, resp.StatusCode, bytes.TrimSpace(b))
}
