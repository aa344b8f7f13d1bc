// Package view はサーバー描画の画面テンプレートと描画処理を提供する。
// テンプレートはバイナリに埋め込み、起動時に一度だけパースする。
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/manabi/internal/model"
	"github.com/hitoshi/manabi/internal/security"
	"github.com/hitoshi/manabi/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

// 画面テンプレート名。
const (
	PageHome             = "home"
	PageLogin            = "login"
	PageRegister         = "register"
	PageResetPassword    = "reset_password"
	PageVerifyEmail      = "verify_email"
	PageStudentDashboard = "dashboard_student"
	PageTeacherOverview  = "dashboard_teacher"
	PageAdminOverview    = "dashboard_admin"
	PageProfile          = "profile"
	PageCourses          = "courses"
	PageCourseDetail     = "course_detail"
	PageTeacherDashboard = "teacher_dashboard"
	PageUploadContent    = "upload_content"
	PageManageContent    = "manage_content"
	PageAdminCourses     = "admin_courses"
	PageNotFound         = "not_found"
	PageError            = "error"
)

var pageNames = []string{
	PageHome, PageLogin, PageRegister, PageResetPassword, PageVerifyEmail,
	PageStudentDashboard, PageTeacherOverview, PageAdminOverview,
	PageProfile, PageCourses, PageCourseDetail,
	PageTeacherDashboard, PageUploadContent, PageManageContent, PageAdminCourses,
	PageNotFound, PageError,
}

// Page はすべての画面に共通の描画データ。
type Page struct {
	Title       string
	Session     session.Snapshot
	Nav         []NavItem
	CSRFToken   string
	CurrentPath string
	Notice      string
	Error       string
	// SignInAgain はバックエンドがトークンを拒否した場合に再ログインの案内を表示する。
	SignInAgain bool
	Data        any
}

// Renderer は画面を描画する。
type Renderer struct {
	pages  map[string]*template.Template
	logger *slog.Logger
}

// New はテンプレートをパースしてRendererを生成する。
func New(sanitizer security.Sanitizer, logger *slog.Logger) (*Renderer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	funcs := template.FuncMap{
		"sanitize":   sanitizer.SanitizeHTML,
		"excerpt":    security.Excerpt,
		"fieldError": fieldError,
		"hasError":   hasError,
		"title":      titleCase,
		"roleLabel":  func(r model.Role) string { return r.Label() },
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		pages[name] = t
	}

	return &Renderer{pages: pages, logger: logger}, nil
}

// Render は画面を描画してステータスコードとともに書き込む。
// テンプレートの実行に失敗した場合は何も書き込まずにエラーを返す。
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, p Page) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	if p.Nav == nil {
		p.Nav = Navigation(p.Session, p.CurrentPath)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", p); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// RenderError はエラー画面を描画する。
// エラー画面自体の描画に失敗した場合はテキストで応答する。
func (r *Renderer) RenderError(w http.ResponseWriter, req *http.Request, status int, message string, snap session.Snapshot, csrfToken string) {
	p := Page{
		Title:       http.StatusText(status),
		Session:     snap,
		CSRFToken:   csrfToken,
		CurrentPath: req.URL.Path,
		Data:        ErrorData{Status: status, Message: message},
	}
	name := PageError
	if status == http.StatusNotFound {
		name = PageNotFound
	}
	if err := r.Render(w, status, name, p); err != nil {
		r.logger.Error("failed to render error page",
			slog.String("path", req.URL.Path),
			slog.String("error", err.Error()),
		)
		http.Error(w, message, status)
	}
}

func fieldError(err *model.ValidationError, field string) string {
	if err == nil {
		return ""
	}
	return err.Message(field)
}

func hasError(err *model.ValidationError) bool {
	return err != nil && len(err.Fields) > 0
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
