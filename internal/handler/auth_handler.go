package handler

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/hitoshi/manabi/internal/api"
	"github.com/hitoshi/manabi/internal/form"
	"github.com/hitoshi/manabi/internal/guard"
	"github.com/hitoshi/manabi/internal/model"
	"github.com/hitoshi/manabi/internal/view"
)

// AuthHandler はログイン・登録・パスワード再設定・ログアウトのハンドラー。
type AuthHandler struct {
	pages
	store    SessionStore
	backend  AuthAPI
	recorder AuthRecorder
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(store SessionStore, backend AuthAPI, renderer *view.Renderer, recorder AuthRecorder, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		pages:    pages{renderer: renderer, logger: logger},
		store:    store,
		backend:  backend,
		recorder: recorder,
	}
}

// Home はトップページを表示する。
// GET /
func (h *AuthHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, view.PageHome, "", nil, "")
}

// LoginPage はログインフォームを表示する。
// GET /login
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, view.PageLogin, "Sign In", view.LoginData{}, "")
}

// Login はサインインしてセッションを保存し、Roleのホームへ遷移する。
// POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Invalid form submission.")
		return
	}

	f := form.LoginFromValues(r.PostForm)
	if err := form.Validate(f); err != nil {
		h.formInvalid(w, r, err, view.PageLogin, "Sign In", func(ve *model.ValidationError) any {
			return view.LoginData{Email: f.Email, Errors: ve}
		})
		return
	}

	resp, err := h.backend.SignIn(r.Context(), api.Credentials{Email: f.Email, Password: f.Password})
	if err != nil {
		h.recorder.RecordLogin(false)
		h.logger.Info("sign in failed",
			slog.String("email", f.Email),
			slog.String("error", err.Error()),
		)
		h.render(w, r, failureStatus(err), view.PageLogin, "Sign In",
			view.LoginData{Email: f.Email},
			api.Message(err, unreachableMessage),
		)
		return
	}

	// 永続化に失敗してもメモリ上のセッションは更新済みのため、遷移は継続する
	if err := h.store.Set(r.Context(), *resp.User, resp.Token); err != nil {
		h.logger.Error("failed to persist session", slog.String("error", err.Error()))
	}
	h.recorder.RecordLogin(true)

	redirect(w, r, guard.HomePath(resp.User.Role))
}

// RegisterPage はアカウント登録フォームを表示する。
// GET /register
func (h *AuthHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	data := view.RegisterData{Form: form.Register{Role: string(model.RoleStudent)}}
	h.render(w, r, http.StatusOK, view.PageRegister, "Sign Up", data, "")
}

// Register はアカウントを登録し、ログイン画面へ遷移する。
// POST /register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Invalid form submission.")
		return
	}

	f := form.RegisterFromValues(r.PostForm)
	redisplay := f
	redisplay.Password = ""

	if err := form.Validate(f); err != nil {
		h.formInvalid(w, r, err, view.PageRegister, "Sign Up", func(ve *model.ValidationError) any {
			return view.RegisterData{Form: redisplay, Errors: ve}
		})
		return
	}

	_, err := h.backend.SignUp(r.Context(), api.SignUpRequest{
		Name:     f.Name,
		Email:    f.Email,
		Password: f.Password,
		Phone:    f.Phone,
		Role:     model.Role(f.Role),
	})
	if err != nil {
		h.render(w, r, failureStatus(err), view.PageRegister, "Sign Up",
			view.RegisterData{Form: redisplay},
			api.Message(err, unreachableMessage),
		)
		return
	}

	redirect(w, r, verifyEmailPath(f.Email, "registered"))
}

// VerifyEmailPage はメールアドレス確認フォームを表示する。
// GET /verify-email?email=
func (h *AuthHandler) VerifyEmailPage(w http.ResponseWriter, r *http.Request) {
	data := view.VerifyEmailData{Email: r.URL.Query().Get("email")}
	h.render(w, r, http.StatusOK, view.PageVerifyEmail, "Verify Email", data, "")
}

// VerifyEmail は登録時に送信されたOTPを検証する。
// step=resend の場合はOTPを再送する。
// POST /verify-email
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Invalid form submission.")
		return
	}

	if r.PostForm.Get("step") == "resend" {
		h.resendCode(w, r, r.PostForm)
		return
	}

	f := form.VerifyEmailFromValues(r.PostForm)
	if err := form.Validate(f); err != nil {
		h.formInvalid(w, r, err, view.PageVerifyEmail, "Verify Email", func(ve *model.ValidationError) any {
			return view.VerifyEmailData{Email: f.Email, Errors: ve}
		})
		return
	}

	if _, err := h.backend.VerifyOTP(r.Context(), f.Email, f.OTP); err != nil {
		h.logger.Info("email verification failed",
			slog.String("email", f.Email),
			slog.String("error", err.Error()),
		)
		h.render(w, r, failureStatus(err), view.PageVerifyEmail, "Verify Email",
			view.VerifyEmailData{Email: f.Email},
			api.Message(err, unreachableMessage),
		)
		return
	}

	redirect(w, r, "/login?notice=email-verified")
}

func (h *AuthHandler) resendCode(w http.ResponseWriter, r *http.Request, v url.Values) {
	f := form.ForgotPasswordFromValues(v)
	if err := form.Validate(f); err != nil {
		h.formInvalid(w, r, err, view.PageVerifyEmail, "Verify Email", func(ve *model.ValidationError) any {
			return view.VerifyEmailData{Email: f.Email, Errors: ve}
		})
		return
	}

	resp, err := h.backend.RequestOTP(r.Context(), f.Email)
	if err != nil {
		h.render(w, r, failureStatus(err), view.PageVerifyEmail, "Verify Email",
			view.VerifyEmailData{Email: f.Email},
			api.Message(err, unreachableMessage),
		)
		return
	}

	notice := resp.Message
	if notice == "" {
		notice = "We sent a new verification code to your email."
	}
	h.renderPage(w, r, http.StatusOK, view.PageVerifyEmail, view.Page{
		Title:  "Verify Email",
		Notice: notice,
		Data:   view.VerifyEmailData{Email: f.Email},
	})
}

func verifyEmailPath(email, notice string) string {
	v := url.Values{}
	v.Set("email", email)
	v.Set("notice", notice)
	return "/verify-email?" + v.Encode()
}

// ResetPasswordPage はパスワード再設定フォームを表示する。
// GET /reset-password
func (h *AuthHandler) ResetPasswordPage(w http.ResponseWriter, r *http.Request) {
	data := view.ResetPasswordData{Email: r.URL.Query().Get("email")}
	h.render(w, r, http.StatusOK, view.PageResetPassword, "Reset Password", data, "")
}

// ResetPassword はパスワード再設定の2段階（コード送信・再設定）を処理する。
// POST /reset-password
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Invalid form submission.")
		return
	}

	if r.PostForm.Get("step") == "reset" {
		h.resetWithCode(w, r, r.PostForm)
		return
	}
	h.requestCode(w, r, r.PostForm)
}

func (h *AuthHandler) requestCode(w http.ResponseWriter, r *http.Request, v url.Values) {
	f := form.ForgotPasswordFromValues(v)
	if err := form.Validate(f); err != nil {
		h.formInvalid(w, r, err, view.PageResetPassword, "Reset Password", func(ve *model.ValidationError) any {
			return view.ResetPasswordData{Email: f.Email, Errors: ve}
		})
		return
	}

	resp, err := h.backend.ForgotPassword(r.Context(), f.Email)
	if err != nil {
		h.render(w, r, failureStatus(err), view.PageResetPassword, "Reset Password",
			view.ResetPasswordData{Email: f.Email},
			api.Message(err, unreachableMessage),
		)
		return
	}

	notice := resp.Message
	if notice == "" {
		notice = "We sent a verification code to your email."
	}
	h.renderPage(w, r, http.StatusOK, view.PageResetPassword, view.Page{
		Title:  "Reset Password",
		Notice: notice,
		Data:   view.ResetPasswordData{Email: f.Email, CodeSent: true},
	})
}

func (h *AuthHandler) resetWithCode(w http.ResponseWriter, r *http.Request, v url.Values) {
	f := form.ResetPasswordFromValues(v)
	if err := form.Validate(f); err != nil {
		h.formInvalid(w, r, err, view.PageResetPassword, "Reset Password", func(ve *model.ValidationError) any {
			return view.ResetPasswordData{Email: f.Email, CodeSent: true, Errors: ve}
		})
		return
	}

	if _, err := h.backend.ResetPassword(r.Context(), f.Email, f.OTP, f.NewPassword); err != nil {
		h.render(w, r, failureStatus(err), view.PageResetPassword, "Reset Password",
			view.ResetPasswordData{Email: f.Email, CodeSent: true},
			api.Message(err, unreachableMessage),
		)
		return
	}

	redirect(w, r, "/login?notice=password-reset")
}

// Logout はセッションを破棄してログイン画面へ遷移する。
// バックエンドへの通知は行わない。
// POST /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Clear(r.Context()); err != nil {
		h.logger.Error("failed to clear persisted session", slog.String("error", err.Error()))
	}
	h.recorder.RecordLogout()

	redirect(w, r, "/login?notice=logged-out")
}
