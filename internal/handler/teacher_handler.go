package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/manabi/internal/catalog"
	"github.com/hitoshi/manabi/internal/form"
	"github.com/hitoshi/manabi/internal/model"
	"github.com/hitoshi/manabi/internal/view"
)

// maxUploadMemory はmultipartフォームをメモリに保持する上限。
// 超過分は一時ファイルに退避される。
const maxUploadMemory = 32 << 20

// TeacherHandler は講師向け画面のハンドラー。
// ダッシュボードはバックエンドから取得し、教材の操作はシミュレーションカタログに対して行う。
type TeacherHandler struct {
	pages
	backend TeacherAPI
	catalog *catalog.Store
}

// NewTeacherHandler はTeacherHandlerを生成する。
func NewTeacherHandler(backend TeacherAPI, cat *catalog.Store, renderer *view.Renderer, logger *slog.Logger) *TeacherHandler {
	return &TeacherHandler{
		pages:   pages{renderer: renderer, logger: logger},
		backend: backend,
		catalog: cat,
	}
}

// Dashboard は講師ダッシュボードを表示する。
// バックエンドから取得できない場合はエラーをインライン表示し、ローカルカタログの内容を表示する。
// GET /teacher-dashboard
func (h *TeacherHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	res, err := h.backend.TeacherDashboard(r.Context())
	if err != nil {
		h.logger.Warn("failed to load teacher dashboard, falling back to local catalog",
			slog.String("error", err.Error()),
		)
		courses := h.catalog.ListCourses()
		data := view.TeacherDashboardData{
			Totals:        catalog.Summarize(courses),
			Courses:       courses,
			RecentContent: h.catalog.RecentContent(recentContentLimit),
			FromCatalog:   true,
		}
		h.renderBackendError(w, r, http.StatusOK, view.PageTeacherDashboard, "Teacher Dashboard", data, err)
		return
	}

	totals := catalog.Summarize(res.Courses)
	if res.TotalStudents > 0 {
		totals.Students = res.TotalStudents
	}
	data := view.TeacherDashboardData{
		Totals:        totals,
		Courses:       res.Courses,
		RecentContent: res.RecentContent,
	}
	h.render(w, r, http.StatusOK, view.PageTeacherDashboard, "Teacher Dashboard", data, "")
}

// UploadPage は教材登録フォームを表示する。
// GET /upload-content?course=ID
func (h *TeacherHandler) UploadPage(w http.ResponseWriter, r *http.Request) {
	data := h.uploadData(form.Content{
		CourseID: r.URL.Query().Get("course"),
		Kind:     string(model.KindVideo),
	}, nil)
	h.render(w, r, http.StatusOK, view.PageUploadContent, "Upload Content", data, "")
}

// Upload は教材のメタデータを検証してカタログに追加する。
// ファイル本体は保存せず、ファイル名とサイズのみを扱う。
// POST /upload-content
func (h *TeacherHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		h.renderError(w, r, http.StatusBadRequest, "Invalid form submission.")
		return
	}

	var fileName string
	var fileSize int64
	if file, header, err := r.FormFile("file"); err == nil {
		fileName, fileSize = header.Filename, header.Size
		file.Close()
	} else if !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		h.logger.Warn("failed to read uploaded file", slog.String("error", err.Error()))
	}

	f := form.ContentFromValues(r.PostForm, fileName, fileSize)
	if err := form.Validate(f); err != nil {
		h.formInvalid(w, r, err, view.PageUploadContent, "Upload Content", func(ve *model.ValidationError) any {
			return h.uploadData(f, ve)
		})
		return
	}

	item, err := h.catalog.AddContent(f.CourseID, f.Input())
	if errors.Is(err, model.ErrNotFound) {
		ve := model.NewValidationError(model.FieldError{Field: "course", Message: "Please select a course"})
		h.render(w, r, http.StatusUnprocessableEntity, view.PageUploadContent, "Upload Content", h.uploadData(f, ve), "")
		return
	}
	if err != nil {
		h.logger.Error("failed to add content", slog.String("error", err.Error()))
		h.renderError(w, r, http.StatusInternalServerError, "Something went wrong. Please try again later.")
		return
	}

	h.logger.Info("content added",
		slog.String("course_id", f.CourseID),
		slog.String("content_id", item.ID),
		slog.String("file", fileName),
	)
	redirect(w, r, manageContentPath(f.CourseID, "content-added"))
}

func (h *TeacherHandler) uploadData(f form.Content, ve *model.ValidationError) view.UploadContentData {
	return view.UploadContentData{
		Form:    f,
		Courses: h.catalog.ListCourses(),
		Kinds:   model.ContentKinds(),
		Errors:  ve,
	}
}

// ManageContent はコースの教材一覧を表示する。
// courseが未指定の場合は先頭のコースを表示する。
// GET /manage-course-content?course=ID&search=
func (h *TeacherHandler) ManageContent(w http.ResponseWriter, r *http.Request) {
	courses := h.catalog.ListCourses()
	courseID := r.URL.Query().Get("course")
	if courseID == "" && len(courses) > 0 {
		courseID = courses[0].ID
	}

	course, err := h.catalog.GetCourse(courseID)
	if err != nil {
		h.notFound(w, r)
		return
	}
	items, err := h.catalog.ListContent(courseID)
	if err != nil {
		h.notFound(w, r)
		return
	}

	search := r.URL.Query().Get("search")
	data := view.ManageContentData{
		Course:  course,
		Courses: courses,
		Items:   catalog.FilterContent(items, search),
		Total:   len(items),
		Search:  search,
		Counts:  catalog.CountByKind(items),
	}
	h.render(w, r, http.StatusOK, view.PageManageContent, course.Title, data, "")
}

// ToggleContent は教材の公開状態を切り替える。
// POST /manage-course-content/{courseID}/content/{contentID}/toggle
func (h *TeacherHandler) ToggleContent(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseID")
	if _, err := h.catalog.ToggleContentPublish(courseID, chi.URLParam(r, "contentID")); err != nil {
		h.notFound(w, r)
		return
	}
	redirect(w, r, manageContentPath(courseID, "content-toggled"))
}

// DeleteContent は教材を削除する。
// POST /manage-course-content/{courseID}/content/{contentID}/delete
func (h *TeacherHandler) DeleteContent(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseID")
	if err := h.catalog.DeleteContent(courseID, chi.URLParam(r, "contentID")); err != nil {
		h.notFound(w, r)
		return
	}
	redirect(w, r, manageContentPath(courseID, "content-deleted"))
}

func manageContentPath(courseID, notice string) string {
	v := url.Values{}
	v.Set("course", courseID)
	v.Set("notice", notice)
	return "/manage-course-content?" + v.Encode()
}
