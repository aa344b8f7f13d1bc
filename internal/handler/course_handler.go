package handler

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/manabi/internal/catalog"
	"github.com/hitoshi/manabi/internal/middleware"
	"github.com/hitoshi/manabi/internal/model"
	"github.com/hitoshi/manabi/internal/view"
)

// roleBlurbs はコース詳細画面にRoleごとに表示する案内文。
var roleBlurbs = map[model.Role]string{
	model.RoleStudent: "As a student, you can enroll in courses and access learning materials.",
	model.RoleTeacher: "As a teacher, you can manage course content and track student progress.",
	model.RoleAdmin:   "As an administrator, you can publish, edit and remove courses.",
}

// CourseHandler はコース一覧・詳細・受講登録のハンドラー。
type CourseHandler struct {
	pages
	backend LearningAPI
}

// NewCourseHandler はCourseHandlerを生成する。
func NewCourseHandler(backend LearningAPI, renderer *view.Renderer, logger *slog.Logger) *CourseHandler {
	return &CourseHandler{
		pages:   pages{renderer: renderer, logger: logger},
		backend: backend,
	}
}

// List はコース一覧を表示する。検索・カテゴリ・難易度の絞り込みは取得後に行う。
// GET /courses?search=&category=&level=
func (h *CourseHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := catalog.Query{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		Level:    q.Get("level"),
	}
	data := view.CoursesData{
		Query:      query,
		Categories: catalog.Categories(),
		Levels:     levelOptions(),
		CanEnroll:  middleware.SnapshotFromContext(r.Context()).Role() == model.RoleStudent,
	}

	courses, err := h.courses(r)
	if err != nil {
		h.logger.Warn("failed to load courses", slog.String("error", err.Error()))
		h.renderBackendError(w, r, http.StatusOK, view.PageCourses, "Courses", data, err)
		return
	}

	data.Total = len(courses)
	data.Courses = catalog.Filter(courses, query)
	h.render(w, r, http.StatusOK, view.PageCourses, "Courses", data, "")
}

// courses はログインユーザー向けのコース一覧を取得する。
// 取得できない場合は公開カタログを取得し、両方失敗した場合は公開カタログのエラーを返す。
func (h *CourseHandler) courses(r *http.Request) ([]model.Course, error) {
	courses, err := h.backend.ProtectedCourses(r.Context())
	if err == nil {
		return courses, nil
	}
	h.logger.Info("protected course list unavailable, using public catalog",
		slog.String("error", err.Error()),
	)
	return h.backend.ListCourses(r.Context())
}

// Detail はコース詳細を表示する。
// 取得に失敗した場合もコースIDとRoleごとの案内文は表示する。
// GET /courses/{id}
func (h *CourseHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	data := h.detailData(r, id)

	course, err := h.backend.GetCourse(r.Context(), id)
	if err != nil {
		h.logger.Warn("failed to load course",
			slog.String("course_id", id),
			slog.String("error", err.Error()),
		)
		h.renderBackendError(w, r, http.StatusOK, view.PageCourseDetail, "Course Details", data, err)
		return
	}

	data.Course = course
	if course.IsEnrolled {
		data.CanEnroll = false
	}
	h.render(w, r, http.StatusOK, view.PageCourseDetail, course.Title, data, "")
}

// Enroll は受講者をコースに登録する。
// POST /courses/{id}/enroll
func (h *CourseHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := h.backend.Enroll(r.Context(), id); err != nil {
		h.logger.Warn("failed to enroll",
			slog.String("course_id", id),
			slog.String("user_id", middleware.UserIDFromContext(r.Context())),
			slog.String("error", err.Error()),
		)
		h.renderBackendError(w, r, failureStatus(err), view.PageCourseDetail, "Course Details",
			h.detailData(r, id), err)
		return
	}

	redirect(w, r, "/courses/"+url.PathEscape(id)+"?notice=enrolled")
}

func (h *CourseHandler) detailData(r *http.Request, id string) view.CourseDetailData {
	role := middleware.SnapshotFromContext(r.Context()).Role()
	return view.CourseDetailData{
		CourseID:  id,
		RoleBlurb: roleBlurbs[role],
		CanEnroll: role == model.RoleStudent,
	}
}

func levelOptions() []string {
	opts := []string{catalog.FilterAll}
	for _, l := range model.Levels() {
		opts = append(opts, string(l))
	}
	return opts
}
