package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"company-manager/core/reconcile"
)

// User is the profile returned by a successful login.
type User struct {
	Name  string `json:"nome"`
	Email string `json:"email"`
	Type  string `json:"type_user"`
}

type loginResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	User    User   `json:"user"`
}

// Login authenticates with the portal. The session cookie it sets is kept
// in the client's jar. remember asks the portal for a long-lived session.
func (c *Client) Login(ctx context.Context, email, password string, remember bool) (*User, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	var query url.Values
	if remember {
		query = url.Values{"remember": {"true"}}
	}

	var resp loginResponse
	err := c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/api/login",
		query:       query,
		body:        strings.NewReader(form.Encode()),
		contentType: "application/x-www-form-urlencoded",
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	if c.SessionToken() == "" {
		return nil, fmt.Errorf("login failed: portal did not set the %s cookie", c.cfg.SessionCookie)
	}
	return &resp.User, nil
}

// Logout ends the portal session.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, request{method: http.MethodPost, path: "/api/logout"}, nil); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	return nil
}

// EnsureSession logs in with the configured credentials when the client
// holds no session cookie yet.
func (c *Client) EnsureSession(ctx context.Context) error {
	if c.SessionToken() != "" || !c.cfg.HasCredentials() {
		return nil
	}
	_, err := c.Login(ctx, c.cfg.Username, c.cfg.Password, false)
	return err
}

// ActiveCompany returns the company currently selected for this session,
// or nil when none is selected.
func (c *Client) ActiveCompany(ctx context.Context) (*reconcile.Company, error) {
	var w wireCompany
	err := c.do(ctx, request{method: http.MethodGet, path: "/api/configuracoes/empresa-ativa"}, &w)
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active company: %w", err)
	}

	company, err := w.record()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return &company, nil
}

type selectResponse struct {
	Message string       `json:"message"`
	Company *wireCompany `json:"empresa"`
}

// SelectCompany makes the company with the given id active for this session.
func (c *Client) SelectCompany(ctx context.Context, id string) (*reconcile.Company, error) {
	body, err := jsonBody(map[string]string{"empresa_id": id})
	if err != nil {
		return nil, err
	}

	var resp selectResponse
	err = c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/api/configuracoes/selecionar-empresa",
		body:        body,
		contentType: "application/json",
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("failed to select company %s: %w", id, err)
	}
	if resp.Company == nil {
		return nil, fmt.Errorf("%w: empresa missing", ErrMalformedResponse)
	}

	company, err := resp.Company.record()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return &company, nil
}

// ClearSelection removes the active company for this session.
func (c *Client) ClearSelection(ctx context.Context) error {
	if err := c.do(ctx, request{method: http.MethodDelete, path: "/api/configuracoes/selecionar-empresa"}, nil); err != nil {
		return fmt.Errorf("failed to clear company selection: %w", err)
	}
	return nil
}
