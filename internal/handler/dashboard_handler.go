package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/manabi/internal/api"
	"github.com/hitoshi/manabi/internal/catalog"
	"github.com/hitoshi/manabi/internal/middleware"
	"github.com/hitoshi/manabi/internal/model"
	"github.com/hitoshi/manabi/internal/session"
	"github.com/hitoshi/manabi/internal/view"
)

// recentContentLimit はダッシュボードに表示する最近の教材の件数。
const recentContentLimit = 5

// dashboard はRoleごとのダッシュボードの描画内容。
type dashboard struct {
	page  string
	title string
	data  any
	err   error
}

// dashboardBuilder はRoleごとのダッシュボードを組み立てる。
type dashboardBuilder func(r *http.Request) dashboard

// DashboardHandler は /dashboard と /profile のハンドラー。
type DashboardHandler struct {
	pages
	backend  LearningAPI
	catalog  *catalog.Store
	builders map[model.Role]dashboardBuilder
	now      func() time.Time
}

// NewDashboardHandler はDashboardHandlerを生成する。
func NewDashboardHandler(backend LearningAPI, cat *catalog.Store, renderer *view.Renderer, logger *slog.Logger) *DashboardHandler {
	h := &DashboardHandler{
		pages:   pages{renderer: renderer, logger: logger},
		backend: backend,
		catalog: cat,
		now:     time.Now,
	}
	h.builders = map[model.Role]dashboardBuilder{
		model.RoleStudent: h.studentDashboard,
		model.RoleTeacher: h.teacherOverview,
		model.RoleAdmin:   h.adminOverview,
	}
	return h
}

// Dashboard はセッションのRoleに応じたダッシュボードを表示する。
// 未知のRoleは受講者として扱う。
// GET /dashboard
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	role := middleware.SnapshotFromContext(r.Context()).Role()
	build, ok := h.builders[role]
	if !ok {
		build = h.builders[model.RoleStudent]
	}

	d := build(r)
	if d.err != nil {
		h.renderBackendError(w, r, http.StatusOK, d.page, d.title, d.data, d.err)
		return
	}
	h.render(w, r, http.StatusOK, d.page, d.title, d.data, "")
}

func (h *DashboardHandler) studentDashboard(r *http.Request) dashboard {
	d := dashboard{page: view.PageStudentDashboard, title: "Dashboard"}

	res, err := h.backend.StudentDashboard(r.Context())
	if err != nil {
		h.logger.Warn("failed to load student dashboard", slog.String("error", err.Error()))
		d.data = view.StudentDashboardData{}
		d.err = err
		return d
	}

	progress := make(map[string]int, len(res.Progress))
	for _, p := range res.Progress {
		progress[p.CourseID] = p.Percent
	}
	d.data = view.StudentDashboardData{Dashboard: *res, Progress: progress}
	return d
}

func (h *DashboardHandler) teacherOverview(_ *http.Request) dashboard {
	courses := h.catalog.ListCourses()
	return dashboard{
		page:  view.PageTeacherOverview,
		title: "Dashboard",
		data: view.TeacherOverviewData{
			Totals:        catalog.Summarize(courses),
			RecentContent: h.catalog.RecentContent(recentContentLimit),
		},
	}
}

func (h *DashboardHandler) adminOverview(_ *http.Request) dashboard {
	courses := h.catalog.ListCourses()
	data := view.AdminOverviewData{
		Totals:  catalog.Summarize(courses),
		Courses: courses,
	}
	for _, c := range courses {
		if c.Published {
			data.Published++
		} else {
			data.Drafts++
		}
	}
	return dashboard{page: view.PageAdminOverview, title: "Dashboard", data: data}
}

// Profile はセッション情報・トークンのクレーム・バックエンドのプロフィールを表示する。
// バックエンドの取得に失敗した場合もエラーをインライン表示し、セッションは変更しない。
// GET /profile
func (h *DashboardHandler) Profile(w http.ResponseWriter, r *http.Request) {
	snap := middleware.SnapshotFromContext(r.Context())

	data := view.ProfileData{Identity: snap.Identity}
	data.Claims, data.HasClaims = session.ParseClaims(snap.Token)
	data.Expired = data.Claims.Expired(h.now())

	remote, err := h.backend.Profile(r.Context())
	if err != nil {
		h.logger.Warn("failed to load profile",
			slog.String("user_id", snap.UserID()),
			slog.String("error", err.Error()),
		)
		data.LoadError = api.Message(err, unreachableMessage)
	} else {
		data.Remote = remote
	}

	h.renderPage(w, r, http.StatusOK, view.PageProfile, view.Page{
		Title:       "Profile",
		Data:        data,
		SignInAgain: api.IsUnauthorized(err),
	})
}
