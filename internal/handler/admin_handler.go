package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/manabi/internal/catalog"
	"github.com/hitoshi/manabi/internal/form"
	"github.com/hitoshi/manabi/internal/model"
	"github.com/hitoshi/manabi/internal/view"
)

// AdminHandler はコース管理画面のハンドラー。
type AdminHandler struct {
	pages
	catalog *catalog.Store
}

// NewAdminHandler はAdminHandlerを生成する。
func NewAdminHandler(cat *catalog.Store, renderer *view.Renderer, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		pages:   pages{renderer: renderer, logger: logger},
		catalog: cat,
	}
}

// Courses はコース一覧と作成・編集フォームを表示する。
// GET /admin-courses?new=1 または ?edit=ID
func (h *AdminHandler) Courses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data := h.coursesData()

	switch {
	case q.Get("edit") != "":
		c, err := h.catalog.GetCourse(q.Get("edit"))
		if err != nil {
			h.notFound(w, r)
			return
		}
		data.Form = form.CourseFromModel(c)
		data.FormShown = true
		data.EditingID = c.ID
	case q.Get("new") != "":
		data.Form = form.Course{Category: "programming", Level: string(model.LevelBeginner)}
		data.FormShown = true
	}

	h.render(w, r, http.StatusOK, view.PageAdminCourses, "Course Management", data, "")
}

// Create はコースを下書きとして作成する。
// POST /admin-courses
func (h *AdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	f, ok := h.parseCourse(w, r, "")
	if !ok {
		return
	}

	c := h.catalog.CreateCourse(f.Input())
	h.logger.Info("course created", slog.String("course_id", c.ID))
	redirect(w, r, "/admin-courses?notice=course-created")
}

// Update はコースを更新する。
// POST /admin-courses/{id}
func (h *AdminHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	f, ok := h.parseCourse(w, r, id)
	if !ok {
		return
	}

	if _, err := h.catalog.UpdateCourse(id, f.Input()); err != nil {
		h.courseError(w, r, err)
		return
	}
	redirect(w, r, "/admin-courses?notice=course-updated")
}

// Toggle はコースの公開状態を切り替える。
// POST /admin-courses/{id}/toggle
func (h *AdminHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	if _, err := h.catalog.TogglePublish(chi.URLParam(r, "id")); err != nil {
		h.courseError(w, r, err)
		return
	}
	redirect(w, r, "/admin-courses?notice=course-toggled")
}

// Delete はコースと教材を削除する。
// POST /admin-courses/{id}/delete
func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteCourse(chi.URLParam(r, "id")); err != nil {
		h.courseError(w, r, err)
		return
	}
	redirect(w, r, "/admin-courses?notice=course-deleted")
}

// parseCourse はフォームを読み取って検証する。
// 検証エラーの場合はフォームを再表示してokにfalseを返す。
func (h *AdminHandler) parseCourse(w http.ResponseWriter, r *http.Request, editingID string) (form.Course, bool) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Invalid form submission.")
		return form.Course{}, false
	}

	f := form.CourseFromValues(r.PostForm)
	if err := form.Validate(f); err != nil {
		h.formInvalid(w, r, err, view.PageAdminCourses, "Course Management", func(ve *model.ValidationError) any {
			data := h.coursesData()
			data.Form = f
			data.FormShown = true
			data.EditingID = editingID
			data.Errors = ve
			return data
		})
		return form.Course{}, false
	}
	return f, true
}

func (h *AdminHandler) courseError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, model.ErrNotFound) {
		h.notFound(w, r)
		return
	}
	h.logger.Error("failed to update course", slog.String("error", err.Error()))
	h.renderError(w, r, http.StatusInternalServerError, "Something went wrong. Please try again later.")
}

func (h *AdminHandler) coursesData() view.AdminCoursesData {
	return view.AdminCoursesData{
		Courses:    h.catalog.ListCourses(),
		Categories: catalog.Categories()[1:],
		Levels:     model.Levels(),
	}
}
