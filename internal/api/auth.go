package api

import (
	"context"
	"net/http"
)

// SignUp はアカウントを作成する。
// POST /auth/signup
func (c *Client) SignUp(ctx context.Context, req SignUpRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.Do(ctx, http.MethodPost, "/auth/signup", req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, backendFailure(resp.Response, "Registration failed. Please try again.")
	}
	return &resp, nil
}

// SignIn はメールアドレスとパスワードでサインインする。
// 成功時のレスポンスには必ずtokenとuserが含まれる。
// セッションへの保存は呼び出し元が行う。
// POST /auth/signin
func (c *Client) SignIn(ctx context.Context, creds Credentials) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.Do(ctx, http.MethodPost, "/auth/signin", creds, &resp); err != nil {
		return nil, err
	}
	if !resp.Success || resp.Token == "" || resp.User == nil {
		return nil, backendFailure(resp.Response, "Login failed. Please check your credentials.")
	}
	return &resp, nil
}

// RequestOTP はワンタイムパスワードの送信を要求する。
// POST /auth/request-otp
func (c *Client) RequestOTP(ctx context.Context, email string) (*Response, error) {
	return c.postSimple(ctx, "/auth/request-otp", map[string]string{"email": email})
}

// VerifyOTP はワンタイムパスワードを検証する。
// POST /auth/verify-otp
func (c *Client) VerifyOTP(ctx context.Context, email, otp string) (*AuthResponse, error) {
	var resp AuthResponse
	body := map[string]string{"email": email, "otp": otp}
	if err := c.Do(ctx, http.MethodPost, "/auth/verify-otp", body, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, backendFailure(resp.Response, "Verification failed.")
	}
	return &resp, nil
}

// ForgotPassword はパスワード再設定用のOTP送信を要求する。
// POST /auth/forgot-password
func (c *Client) ForgotPassword(ctx context.Context, email string) (*Response, error) {
	return c.postSimple(ctx, "/auth/forgot-password", map[string]string{"email": email})
}

// ResetPassword はOTPを使ってパスワードを再設定する。
// POST /auth/reset-password
func (c *Client) ResetPassword(ctx context.Context, email, otp, newPassword string) (*Response, error) {
	return c.postSimple(ctx, "/auth/reset-password", map[string]string{
		"email":       email,
		"otp":         otp,
		"newPassword": newPassword,
	})
}

func (c *Client) postSimple(ctx context.Context, endpoint string, body any) (*Response, error) {
	var resp Response
	if err := c.Do(ctx, http.MethodPost, endpoint, body, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, backendFailure(resp, "Request failed.")
	}
	return &resp, nil
}

// backendFailure はHTTP 2xxでsuccess=falseが返された場合のエラーを生成する。
func backendFailure(resp Response, fallback string) *APIError {
	msg := resp.Message
	if msg == "" {
		msg = fallback
	}
	return &APIError{StatusCode: http.StatusOK, Message: msg}
}
