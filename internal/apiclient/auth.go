package apiclient

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sgeneral-iua/portal-sg/internal/models"
)

// Login exchanges credentials for an API token and user profile
func (c *Client) Login(ctx context.Context, username, password string) (*models.LoginResponse, error) {
	var out models.LoginResponse
	in := models.LoginRequest{Username: username, Password: password}
	if err := c.doJSON(ctx, "login", http.MethodPost, "/api/auth/login", "", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates a portal account. The API's answer is passed through as-is.
func (c *Client) Register(ctx context.Context, in models.RegisterRequest) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.doJSON(ctx, "register", http.MethodPost, "/api/users/register", "", in, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ForgotPassword asks the API to send a reset link for the identifier
func (c *Client) ForgotPassword(ctx context.Context, identifier string) error {
	in := models.ForgotPasswordRequest{Identifier: identifier}
	return c.doJSON(ctx, "forgot_password", http.MethodPost, "/api/auth/forgot-password", "", in, nil)
}

// ResetPassword sets a new password using a reset token
func (c *Client) ResetPassword(ctx context.Context, in models.ResetPasswordPayload) error {
	return c.doJSON(ctx, "reset_password", http.MethodPost, "/api/auth/reset-password", "", in, nil)
}
