// Package handler は画面のHTTPハンドラーを提供する。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/manabi/internal/api"
	"github.com/hitoshi/manabi/internal/middleware"
	"github.com/hitoshi/manabi/internal/model"
	"github.com/hitoshi/manabi/internal/session"
	"github.com/hitoshi/manabi/internal/view"
)

// SessionStore はハンドラーが必要とするセッションストアのインターフェース。
// session.Storeが実装する。
type SessionStore interface {
	Snapshot() session.Snapshot
	Set(ctx context.Context, identity model.Identity, token string) error
	Clear(ctx context.Context) error
}

// AuthAPI は認証系エンドポイントのインターフェース。api.Clientが実装する。
type AuthAPI interface {
	SignIn(ctx context.Context, creds api.Credentials) (*api.AuthResponse, error)
	SignUp(ctx context.Context, req api.SignUpRequest) (*api.AuthResponse, error)
	RequestOTP(ctx context.Context, email string) (*api.Response, error)
	VerifyOTP(ctx context.Context, email, otp string) (*api.AuthResponse, error)
	ForgotPassword(ctx context.Context, email string) (*api.Response, error)
	ResetPassword(ctx context.Context, email, otp, newPassword string) (*api.Response, error)
}

// LearningAPI は認証が必要なエンドポイントのインターフェース。api.Clientが実装する。
type LearningAPI interface {
	Profile(ctx context.Context) (*model.Identity, error)
	StudentDashboard(ctx context.Context) (*api.StudentDashboard, error)
	ListCourses(ctx context.Context) ([]model.Course, error)
	ProtectedCourses(ctx context.Context) ([]model.Course, error)
	GetCourse(ctx context.Context, id string) (*model.Course, error)
	Enroll(ctx context.Context, id string) (*api.Response, error)
}

// TeacherAPI は講師向けエンドポイントのインターフェース。api.Clientが実装する。
type TeacherAPI interface {
	TeacherDashboard(ctx context.Context) (*api.TeacherDashboard, error)
}

// AuthRecorder はログイン・ログアウトを記録する。metrics.Collectorが実装する。
type AuthRecorder interface {
	RecordLogin(success bool)
	RecordLogout()
}

// unreachableMessage はバックエンドに到達できなかった場合の表示メッセージ。
const unreachableMessage = "Unable to reach the server. Please try again."

// pages は共通の描画データを組み立てて画面を描画する。
type pages struct {
	renderer *view.Renderer
	logger   *slog.Logger
}

// render は画面を描画する。
func (p pages) render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any, errMsg string) {
	p.renderPage(w, r, status, name, view.Page{Title: title, Data: data, Error: errMsg})
}

// renderPage はPageの共通項目を埋めて描画する。
// セッション・CSRFトークンはリクエストのコンテキスト、通知は未指定ならクエリの通知キーから埋める。
func (p pages) renderPage(w http.ResponseWriter, r *http.Request, status int, name string, page view.Page) {
	page.Session = middleware.SnapshotFromContext(r.Context())
	page.CSRFToken = middleware.CSRFToken(r.Context())
	page.CurrentPath = r.URL.Path
	if page.Notice == "" {
		page.Notice = view.Notice(r.URL.Query().Get("notice"))
	}

	if err := p.renderer.Render(w, status, name, page); err != nil {
		p.logger.Error("failed to render page",
			slog.String("page", name),
			slog.String("error", err.Error()),
		)
		p.renderError(w, r, http.StatusInternalServerError, "Something went wrong. Please try again later.")
	}
}

// renderBackendError はバックエンド呼び出しの失敗をインライン表示して画面を描画する。
// 401の場合は再ログインの案内も表示する。セッションは変更しない。
func (p pages) renderBackendError(w http.ResponseWriter, r *http.Request, status int, name, title string, data any, err error) {
	p.renderPage(w, r, status, name, view.Page{
		Title:       title,
		Data:        data,
		Error:       api.Message(err, unreachableMessage),
		SignInAgain: api.IsUnauthorized(err),
	})
}

// renderError はエラー画面を描画する。middleware.ErrorWriterとしても使う。
func (p pages) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	p.renderer.RenderError(w, r, status, message,
		middleware.SnapshotFromContext(r.Context()),
		middleware.CSRFToken(r.Context()),
	)
}

// notFound は404画面を描画する。
func (p pages) notFound(w http.ResponseWriter, r *http.Request) {
	p.renderError(w, r, http.StatusNotFound, "The page you are looking for does not exist.")
}

// formInvalid は検証エラーをフォームにインライン表示する。
// 検証処理そのものが失敗した場合は500とする。
func (p pages) formInvalid(w http.ResponseWriter, r *http.Request, err error, name, title string, data func(*model.ValidationError) any) {
	var ve *model.ValidationError
	if !errors.As(err, &ve) {
		p.logger.Error("failed to validate form", slog.String("error", err.Error()))
		p.renderError(w, r, http.StatusInternalServerError, "Something went wrong. Please try again later.")
		return
	}
	p.render(w, r, http.StatusUnprocessableEntity, name, title, data(ve), "")
}

// failureStatus はバックエンド呼び出しが失敗した場合の応答ステータスを返す。
// バックエンドが失敗を返した場合は422、到達できなかった場合は502とする。
func failureStatus(err error) int {
	if api.IsAPIError(err) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadGateway
}

// redirect は303 See Otherでリダイレクトする。
func redirect(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusSeeOther)
}
