package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Eshhar121/ecommerce-frontend/internal/auth"
)

// Credentials are posted to the login endpoint.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupRequest is posted to the signup endpoint.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// MessageResponse is the common {"message": "..."} acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// LoginResult is the raw login acknowledgement. Callers must not derive
// identity from it; the session re-fetches the current user instead.
type LoginResult struct {
	Message string         `json:"message"`
	Body    map[string]any `json:"-"`
}

// Me fetches the identity bound to the visitor's backend cookie.
func (c *Client) Me(ctx context.Context) (*auth.Identity, error) {
	var body []byte
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &body); err != nil {
		if IsStatus(err, http.StatusUnauthorized) || IsStatus(err, http.StatusForbidden) {
			return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
		}
		return nil, err
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrInvalidIdentity)
	}
	return c.identity.Decode(body)
}

// Login posts credentials. On success the backend sets its session cookie
// in this client's jar.
func (c *Client) Login(ctx context.Context, creds Credentials) (*LoginResult, error) {
	if creds.Email == "" || creds.Password == "" {
		return nil, errors.New("email and password are required")
	}

	var body map[string]any
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, creds, &body); err != nil {
		return nil, err
	}

	result := &LoginResult{Body: body}
	if msg, ok := body["message"].(string); ok {
		result.Message = msg
	}
	return result, nil
}

// Logout asks the backend to end its session.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
}

// Signup registers a new account.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.do(ctx, http.MethodPost, "/auth/signup", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyEmail confirms an address with the token from the verification mail.
func (c *Client) VerifyEmail(ctx context.Context, token string) (*MessageResponse, error) {
	if token == "" {
		return nil, errors.New("verification token is required")
	}
	var out MessageResponse
	if err := c.do(ctx, http.MethodGet, "/auth/verify-email/"+url.PathEscape(token), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ForgotPassword requests a reset mail for email.
func (c *Client) ForgotPassword(ctx context.Context, email string) (*MessageResponse, error) {
	var out MessageResponse
	body := map[string]string{"email": email}
	if err := c.do(ctx, http.MethodPost, "/auth/forgot-password", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResetPassword sets a new password using a reset token.
func (c *Client) ResetPassword(ctx context.Context, token, password string) (*MessageResponse, error) {
	if token == "" {
		return nil, errors.New("reset token is required")
	}
	var out MessageResponse
	body := map[string]string{"password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/reset-password/"+url.PathEscape(token), nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// BecomePublisher submits the publisher application for the current user.
func (c *Client) BecomePublisher(ctx context.Context) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.do(ctx, http.MethodPost, "/user/become-publisher", nil, map[string]any{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
