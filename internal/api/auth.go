package api

import (
	"context"
	"fmt"
	"net/http"
)

type emailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type verifyOTPRequest struct {
	Email    string `json:"email" validate:"required,email"`
	OTP      string `json:"otp" validate:"required,numeric"`
	FullName string `json:"fullName,omitempty"`
	Password string `json:"password,omitempty"`
}

type verifyResetRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,numeric"`
}

type resetPasswordRequest struct {
	Password string `json:"password" validate:"required"`
	Token    string `json:"token" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest is the body of POST /auth/register
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ProfileUpdate holds the editable profile fields; empty fields are omitted
type ProfileUpdate struct {
	FullName string `json:"fullName,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

// SendOTP emails a sign-up code and returns the server confirmation
func (c *Client) SendOTP(ctx context.Context, email string) (string, error) {
	req := emailRequest{Email: email}
	if err := validatePayload(req); err != nil {
		return "", err
	}
	msg, err := c.do(ctx, http.MethodPost, "/auth/send-otp", nil, req, nil)
	if err != nil {
		return "", fmt.Errorf("send otp: %w", err)
	}
	return msg, nil
}

// VerifyOTP completes sign-up. fullName and password are only sent when set.
func (c *Client) VerifyOTP(ctx context.Context, email, otp, fullName, password string) (*User, error) {
	req := verifyOTPRequest{Email: email, OTP: otp, FullName: fullName, Password: password}
	if err := validatePayload(req); err != nil {
		return nil, err
	}
	var data userData
	if _, err := c.do(ctx, http.MethodPost, "/auth/verify-otp", nil, req, &data); err != nil {
		return nil, fmt.Errorf("verify otp: %w", err)
	}
	return data.User, nil
}

// SendResetOTP emails a password reset code
func (c *Client) SendResetOTP(ctx context.Context, email string) (string, error) {
	req := emailRequest{Email: email}
	if err := validatePayload(req); err != nil {
		return "", err
	}
	msg, err := c.do(ctx, http.MethodPost, "/auth/forgot-password/send-otp", nil, req, nil)
	if err != nil {
		return "", fmt.Errorf("send reset otp: %w", err)
	}
	return msg, nil
}

// VerifyResetOTP exchanges a reset code for a one-time reset token
func (c *Client) VerifyResetOTP(ctx context.Context, email, otp string) (string, error) {
	req := verifyResetRequest{Email: email, OTP: otp}
	if err := validatePayload(req); err != nil {
		return "", err
	}
	var data struct {
		ResetToken string `json:"resetToken"`
	}
	if _, err := c.do(ctx, http.MethodPost, "/auth/forgot-password/verify-otp", nil, req, &data); err != nil {
		return "", fmt.Errorf("verify reset otp: %w", err)
	}
	if data.ResetToken == "" {
		return "", fmt.Errorf("verify reset otp: response carried no reset token")
	}
	return data.ResetToken, nil
}

// ResetPassword sets a new password with a token from VerifyResetOTP. The
// server signs the user in on success.
func (c *Client) ResetPassword(ctx context.Context, password, token string) (*User, error) {
	req := resetPasswordRequest{Password: password, Token: token}
	if err := validatePayload(req); err != nil {
		return nil, err
	}
	var data userData
	if _, err := c.do(ctx, http.MethodPost, "/auth/forgot-password/reset", nil, req, &data); err != nil {
		return nil, fmt.Errorf("reset password: %w", err)
	}
	return data.User, nil
}

// Login authenticates with email and password; the session lives in cookies
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	req := loginRequest{Email: email, Password: password}
	if err := validatePayload(req); err != nil {
		return nil, err
	}
	var data userData
	if _, err := c.do(ctx, http.MethodPost, "/auth/login", nil, req, &data); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return data.User, nil
}

// Register creates an account directly
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	if err := validatePayload(req); err != nil {
		return nil, err
	}
	var data userData
	if _, err := c.do(ctx, http.MethodPost, "/auth/register", nil, req, &data); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return data.User, nil
}

// Profile returns the signed-in user
func (c *Client) Profile(ctx context.Context) (*User, error) {
	var data userData
	if _, err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &data); err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return data.User, nil
}

// UpdateProfile patches the signed-in user's profile
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (*User, error) {
	var data userData
	if _, err := c.do(ctx, http.MethodPatch, "/auth/update-profile", nil, update, &data); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return data.User, nil
}

// Logout forgets the session locally. The backend has no logout endpoint;
// dropping the cookies is all the web client ever did.
func (c *Client) Logout() {
	c.ClearCookies()
}

// OAuthURL returns the browser URL that starts a social login
func (c *Client) OAuthURL(provider string) (string, error) {
	switch provider {
	case "google", "facebook":
		return c.baseURL + "/auth/" + provider, nil
	default:
		return "", fmt.Errorf("%w: unsupported provider %q", ErrValidation, provider)
	}
}
