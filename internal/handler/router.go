package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/hitoshi/manabi/internal/catalog"
	"github.com/hitoshi/manabi/internal/guard"
	"github.com/hitoshi/manabi/internal/metrics"
	"github.com/hitoshi/manabi/internal/middleware"
	"github.com/hitoshi/manabi/internal/view"
)

// Backend はバックエンドAPIのうち画面が利用するエンドポイント。api.Clientが実装する。
type Backend interface {
	AuthAPI
	LearningAPI
	TeacherAPI
}

// HealthChecker はセッションストレージへの疎通を確認する。
// storage.PostgresStorageが実装する。
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	Store    SessionStore
	Backend  Backend
	Catalog  *catalog.Store
	Renderer *view.Renderer
	Logger   *slog.Logger

	// Metrics はnilの場合は記録しない。
	Metrics metrics.MetricsCollector
	// MetricsHandler は /metrics で公開するハンドラー。nilの場合は公開しない。
	MetricsHandler http.Handler

	RateLimiter *middleware.RateLimiter
	CSRF        middleware.CSRFConfig

	// StorageDriver は /health で報告するストレージの実装名。
	StorageDriver string
	// StorageCheck はnilでなければ /health のたびに呼び出す。
	StorageCheck HealthChecker
}

// NewRouter は全画面のルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RealIP → Recovery → Session → Logging → SecurityHeaders → CSRF
//
// 各画面ルートは登録時にルートテーブルの要件でガードし、遷移のたびに判定する。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	recorder := deps.Metrics
	if recorder == nil {
		recorder = metrics.Nop{}
	}

	p := pages{renderer: deps.Renderer, logger: logger}
	csrfConfig := deps.CSRF
	if csrfConfig.ErrorWriter == nil {
		csrfConfig.ErrorWriter = p.renderError
	}

	authHandler := NewAuthHandler(deps.Store, deps.Backend, deps.Renderer, recorder, logger)
	dashboardHandler := NewDashboardHandler(deps.Backend, deps.Catalog, deps.Renderer, logger)
	courseHandler := NewCourseHandler(deps.Backend, deps.Renderer, logger)
	teacherHandler := NewTeacherHandler(deps.Backend, deps.Catalog, deps.Renderer, logger)
	adminHandler := NewAdminHandler(deps.Catalog, deps.Renderer, logger)

	// gate はルートテーブルに登録されたパターンの要件でガードする
	gate := func(pattern string) func(http.Handler) http.Handler {
		return middleware.NewGuardMiddleware(pattern, guard.RequirementFor(pattern), recorder, logger)
	}

	authLimit := func(next http.Handler) http.Handler { return next }
	if deps.RateLimiter != nil {
		authLimit = deps.RateLimiter.AuthMiddleware()
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewRecoveryMiddleware(logger, p.renderError))

	// --- 運用エンドポイント ---
	r.Get("/health", healthHandler(deps.StorageDriver, deps.StorageCheck, logger))
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.Store))
		r.Use(middleware.NewLoggingMiddleware(logger))
		r.Use(middleware.NewSecurityHeadersMiddleware())
		r.Use(middleware.NewCSRFMiddleware(csrfConfig))

		// --- 公開ルート ---
		r.With(gate("/")).Get("/", authHandler.Home)
		r.With(gate("/login"), authLimit).Get("/login", authHandler.LoginPage)
		r.With(gate("/login"), authLimit).Post("/login", authHandler.Login)
		r.With(gate("/register"), authLimit).Get("/register", authHandler.RegisterPage)
		r.With(gate("/register"), authLimit).Post("/register", authHandler.Register)
		r.With(gate("/reset-password"), authLimit).Get("/reset-password", authHandler.ResetPasswordPage)
		r.With(gate("/reset-password"), authLimit).Post("/reset-password", authHandler.ResetPassword)
		r.With(gate("/verify-email"), authLimit).Get("/verify-email", authHandler.VerifyEmailPage)
		r.With(gate("/verify-email"), authLimit).Post("/verify-email", authHandler.VerifyEmail)

		// --- 認証済みルート ---
		r.With(gate("/logout")).Post("/logout", authHandler.Logout)
		r.With(gate("/dashboard")).Get("/dashboard", dashboardHandler.Dashboard)
		r.With(gate("/profile")).Get("/profile", dashboardHandler.Profile)
		r.With(gate("/courses")).Get("/courses", courseHandler.List)
		r.With(gate("/courses/{id}")).Get("/courses/{id}", courseHandler.Detail)
		r.With(gate("/courses/{id}/enroll")).Post("/courses/{id}/enroll", courseHandler.Enroll)

		// --- 講師 ---
		r.With(gate("/teacher-dashboard")).Get("/teacher-dashboard", teacherHandler.Dashboard)
		r.With(gate("/upload-content")).Get("/upload-content", teacherHandler.UploadPage)
		r.With(gate("/upload-content")).Post("/upload-content", teacherHandler.Upload)
		r.Route("/manage-course-content", func(r chi.Router) {
			r.Use(gate("/manage-course-content"))
			r.Get("/", teacherHandler.ManageContent)
			r.Post("/{courseID}/content/{contentID}/toggle", teacherHandler.ToggleContent)
			r.Post("/{courseID}/content/{contentID}/delete", teacherHandler.DeleteContent)
		})

		// --- 管理者 ---
		r.Route("/admin-courses", func(r chi.Router) {
			r.Use(gate("/admin-courses"))
			r.Get("/", adminHandler.Courses)
			r.Post("/", adminHandler.Create)
			r.Post("/{id}", adminHandler.Update)
			r.Post("/{id}/toggle", adminHandler.Toggle)
			r.Post("/{id}/delete", adminHandler.Delete)
		})

		r.NotFound(p.notFound)
	})

	return r
}

// healthCheckTimeout はストレージの疎通確認の上限時間。
const healthCheckTimeout = 2 * time.Second

// healthHandler はプロセスの稼働確認用のハンドラーを返す。
// checkがnilでなければストレージへの疎通も確認し、失敗時は503を返す。
// バックエンドへの疎通は確認しない。
func healthHandler(driver string, check HealthChecker, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, body := http.StatusOK, "ok"
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
			defer cancel()
			if err := check.Ping(ctx); err != nil {
				logger.Warn("storage health check failed",
					slog.String("storage", driver),
					slog.String("error", err.Error()),
				)
				status, body = http.StatusServiceUnavailable, "unavailable"
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":  body,
			"storage": driver,
		})
	}
}
