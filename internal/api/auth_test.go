package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/hitoshi/manabi/internal/model"
)

func TestSignIn_Success(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/auth/signin" {
			t.Errorf("request = %s %s, want POST /api/auth/signin", r.Method, r.URL.Path)
		}
		var creds Credentials
		json.NewDecoder(r.Body).Decode(&creds)
		if creds.Email != "t@x.io" || creds.Password != "secret1" {
			t.Errorf("credentials = %+v", creds)
		}
		w.Write([]byte(`{"success":true,"token":"T1","user":{"id":"u1","name":"Tanaka","email":"t@x.io","role":"teacher"}}`))
	}, "")

	resp, err := c.SignIn(context.Background(), Credentials{Email: "t@x.io", Password: "secret1"})
	if err != nil {
		t.Fatalf("SignIn returned error: %v", err)
	}
	if resp.Token != "T1" {
		t.Errorf("Token = %q, want T1", resp.Token)
	}
	if resp.User == nil || resp.User.Role != model.RoleTeacher || resp.User.ID != "u1" {
		t.Errorf("User = %+v", resp.User)
	}
}

func TestSignIn_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{
			name:    "認証失敗",
			status:  http.StatusUnauthorized,
			body:    `{"success":false,"message":"Invalid credentials"}`,
			wantMsg: "Invalid credentials",
		},
		{
			name:    "success=false",
			status:  http.StatusOK,
			body:    `{"success":false,"message":"Account not verified"}`,
			wantMsg: "Account not verified",
		},
		{
			name:    "トークンなし",
			status:  http.StatusOK,
			body:    `{"success":true,"user":{"id":"u1","role":"student"}}`,
			wantMsg: "Login failed. Please check your credentials.",
		},
		{
			name:    "ユーザーなし",
			status:  http.StatusOK,
			body:    `{"success":true,"token":"T"}`,
			wantMsg: "Login failed. Please check your credentials.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}, "")

			resp, err := c.SignIn(context.Background(), Credentials{Email: "a@b.c", Password: "x"})
			if err == nil {
				t.Fatalf("SignIn はエラーを返すべき: %+v", resp)
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("error = %q, want %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestSignUp_SendsRole(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/signup" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)
		if req["role"] != "student" {
			t.Errorf("role = %v, want student", req["role"])
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"success":true,"message":"Registered"}`))
	}, "")

	resp, err := c.SignUp(context.Background(), SignUpRequest{Email: "a@b.c", Password: "secret1", Role: model.RoleStudent})
	if err != nil {
		t.Fatalf("SignUp returned error: %v", err)
	}
	if resp.Message != "Registered" {
		t.Errorf("Message = %q", resp.Message)
	}
}

func TestResetPassword_Body(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/reset-password" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		if req["email"] != "a@b.c" || req["otp"] != "123456" || req["newPassword"] != "newsecret" {
			t.Errorf("body = %v", req)
		}
		w.Write([]byte(`{"success":true,"message":"Password reset"}`))
	}, "")

	resp, err := c.ResetPassword(context.Background(), "a@b.c", "123456", "newsecret")
	if err != nil {
		t.Fatalf("ResetPassword returned error: %v", err)
	}
	if resp.Message != "Password reset" {
		t.Errorf("Message = %q", resp.Message)
	}
}

func TestForgotPassword_FailureMessage(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"success":false,"message":"User not found"}`))
	}, "")

	_, err := c.ForgotPassword(context.Background(), "nobody@b.c")
	if err == nil || err.Error() != "User not found" {
		t.Errorf("error = %v, want User not found", err)
	}
}

func TestVerifyOTP(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/verify-otp" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"success":true,"message":"Verified"}`))
	}, "")

	resp, err := c.VerifyOTP(context.Background(), "a@b.c", "111111")
	if err != nil {
		t.Fatalf("VerifyOTP returned error: %v", err)
	}
	if !resp.Success {
		t.Error("Success = false")
	}
}

func TestRequestOTP(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/auth/request-otp" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "a@b.c" {
			t.Errorf("email = %q", body["email"])
		}
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"success":false,"message":"Please wait before requesting another code"}`))
	}, "")

	_, err := c.RequestOTP(context.Background(), "a@b.c")
	if !IsAPIError(err) {
		t.Fatalf("error = %v, want APIError", err)
	}
	if got := Message(err, ""); got != "Please wait before requesting another code" {
		t.Errorf("Message = %q", got)
	}
}
