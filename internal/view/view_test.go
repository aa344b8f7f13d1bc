package view

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/manabi/internal/api"
	"github.com/hitoshi/manabi/internal/catalog"
	"github.com/hitoshi/manabi/internal/form"
	"github.com/hitoshi/manabi/internal/model"
	"github.com/hitoshi/manabi/internal/security"
	"github.com/hitoshi/manabi/internal/session"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New(security.NewSanitizer(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("Newでエラー: %v", err)
	}
	return r
}

func snapshotFor(role model.Role) session.Snapshot {
	return session.Snapshot{
		Identity: &model.Identity{ID: "u1", Name: "Taro", Email: "taro@example.com", Role: role},
		Token:    "tok",
	}
}

func render(t *testing.T, r *Renderer, name string, p Page) string {
	t.Helper()
	rec := httptest.NewRecorder()
	if err := r.Render(rec, http.StatusOK, name, p); err != nil {
		t.Fatalf("Render(%s)でエラー: %v", name, err)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	return rec.Body.String()
}

func TestRender_AllPages(t *testing.T) {
	r := newTestRenderer(t)
	courses := catalog.SeedCourses()
	content := catalog.SeedContent()
	totals := catalog.Summarize(courses)

	tests := []struct {
		name string
		snap session.Snapshot
		data any
		want string
	}{
		{PageHome, session.Snapshot{}, nil, "Learn anything"},
		{PageLogin, session.Snapshot{}, LoginData{Email: "a@example.com"}, `value="a@example.com"`},
		{PageRegister, session.Snapshot{}, RegisterData{Form: form.Register{Role: "teacher"}}, `value="teacher" selected`},
		{PageResetPassword, session.Snapshot{}, ResetPasswordData{}, "Send code"},
		{PageStudentDashboard, snapshotFor(model.RoleStudent), StudentDashboardData{
			Dashboard: api.StudentDashboard{EnrolledCourses: courses[:1], CompletedLessons: 3},
			Progress:  map[string]int{"1": 40},
		}, "Progress: 40%"},
		{PageTeacherOverview, snapshotFor(model.RoleTeacher), TeacherOverviewData{Totals: totals, RecentContent: content}, "Teacher overview"},
		{PageAdminOverview, snapshotFor(model.RoleAdmin), AdminOverviewData{Totals: totals, Published: 1, Drafts: 1, Courses: courses}, "Administration"},
		{PageProfile, snapshotFor(model.RoleStudent), ProfileData{Identity: &model.Identity{Name: "Taro", Email: "taro@example.com", Role: model.RoleStudent}}, "taro@example.com"},
		{PageCourses, snapshotFor(model.RoleStudent), CoursesData{
			Courses: courses, Total: len(courses), Categories: catalog.Categories(),
			Levels: []string{"all", "beginner"}, CanEnroll: true,
		}, "Introduction to React"},
		{PageCourseDetail, snapshotFor(model.RoleStudent), CourseDetailData{CourseID: "9"}, "Course Details - 9"},
		{PageTeacherDashboard, snapshotFor(model.RoleTeacher), TeacherDashboardData{Totals: totals, Courses: courses, RecentContent: content}, "Manage Content"},
		{PageUploadContent, snapshotFor(model.RoleTeacher), UploadContentData{Courses: courses, Kinds: model.ContentKinds(), Form: form.Content{Kind: "pdf"}}, `value="pdf" selected`},
		{PageManageContent, snapshotFor(model.RoleTeacher), ManageContentData{
			Course: courses[0], Courses: courses, Items: content[:3], Total: 3,
			Counts: catalog.CountByKind(content[:3]),
		}, "Components Quiz"},
		{PageAdminCourses, snapshotFor(model.RoleAdmin), AdminCoursesData{
			Courses: courses, FormShown: true, Categories: catalog.Categories()[1:], Levels: model.Levels(),
		}, "Create Course"},
		{PageNotFound, session.Snapshot{}, nil, "404 - Page Not Found"},
		{PageError, session.Snapshot{}, ErrorData{Status: 500, Message: "boom"}, "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := render(t, r, tt.name, Page{Title: "T", Session: tt.snap, Data: tt.data, CSRFToken: "csrf-value"})
			if !strings.Contains(body, tt.want) {
				t.Errorf("本文に %q が含まれていない:\n%s", tt.want, body)
			}
		})
	}
}

func TestRender_UnknownPage(t *testing.T) {
	r := newTestRenderer(t)
	rec := httptest.NewRecorder()
	if err := r.Render(rec, http.StatusOK, "nope", Page{}); err == nil {
		t.Fatal("未知の画面でエラーが返されなかった")
	}
	if rec.Body.Len() != 0 {
		t.Error("エラー時に本文が書き込まれた")
	}
}

func TestRender_LayoutShowsSessionAndLogoutForm(t *testing.T) {
	r := newTestRenderer(t)
	body := render(t, r, PageHome, Page{Session: snapshotFor(model.RoleStudent), CSRFToken: "csrf-value", CurrentPath: "/"})

	for _, want := range []string{`action="/logout"`, `value="csrf-value"`, "T Taro (student)"} {
		if !strings.Contains(body, want) {
			t.Errorf("本文に %q が含まれていない", want)
		}
	}
	if strings.Contains(body, `href="/login"`) {
		t.Error("ログイン中にSign Inリンクが表示された")
	}
}

func TestRender_AnonymousLayout(t *testing.T) {
	r := newTestRenderer(t)
	body := render(t, r, PageHome, Page{CurrentPath: "/login"})

	if strings.Contains(body, `action="/logout"`) {
		t.Error("未ログインでログアウトフォームが表示された")
	}
	if !strings.Contains(body, `<a href="/login" class="active">Sign In</a>`) {
		t.Error("現在のページのリンクがactiveになっていない")
	}
}

func TestRender_NoticeAndErrorBanners(t *testing.T) {
	r := newTestRenderer(t)
	body := render(t, r, PageHome, Page{Notice: Notice("logged-out"), Error: "Invalid token"})

	if !strings.Contains(body, "You have been signed out.") {
		t.Error("通知が表示されていない")
	}
	if !strings.Contains(body, `role="alert">Invalid token`) {
		t.Error("エラーが表示されていない")
	}
}

func TestRender_EscapesBackendText(t *testing.T) {
	r := newTestRenderer(t)
	courses := []model.Course{{ID: "1", Title: "<script>alert(1)</script>", Description: "<p>ok</p><script>x</script>"}}
	body := render(t, r, PageCourseDetail, Page{
		Session: snapshotFor(model.RoleStudent),
		Data:    CourseDetailData{Course: &courses[0], CourseID: "1"},
	})

	if strings.Contains(body, "<script>alert(1)</script>") {
		t.Error("タイトルがエスケープされていない")
	}
	if strings.Contains(body, "<script>x</script>") {
		t.Error("説明文のscriptタグが除去されていない")
	}
	if !strings.Contains(body, "<p>ok</p>") {
		t.Error("許可タグが残っていない")
	}
}

func TestRender_FieldErrors(t *testing.T) {
	r := newTestRenderer(t)
	errs := model.NewValidationError(model.FieldError{Field: "email", Message: "Email is required"})
	body := render(t, r, PageLogin, Page{Data: LoginData{Errors: errs}})

	if !strings.Contains(body, `<span class="field-error">Email is required</span>`) {
		t.Errorf("フィールドエラーが表示されていない:\n%s", body)
	}
}

func TestRenderError(t *testing.T) {
	r := newTestRenderer(t)

	t.Run("404はnot_found画面", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/missing", nil)
		r.RenderError(rec, req, http.StatusNotFound, "not found", session.Snapshot{}, "")

		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "404 - Page Not Found") {
			t.Error("404画面が描画されていない")
		}
	})

	t.Run("その他はerror画面", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		r.RenderError(rec, req, http.StatusBadGateway, "backend unavailable", session.Snapshot{}, "")

		if rec.Code != http.StatusBadGateway {
			t.Errorf("status = %d, want 502", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "backend unavailable") {
			t.Error("メッセージが表示されていない")
		}
	})
}

func TestNavigation(t *testing.T) {
	tests := []struct {
		name string
		snap session.Snapshot
		want []string
	}{
		{"未ログイン", session.Snapshot{}, []string{"/", "/login", "/register"}},
		{"受講者", snapshotFor(model.RoleStudent), []string{"/dashboard", "/courses"}},
		{"講師", snapshotFor(model.RoleTeacher), []string{"/teacher-dashboard", "/upload-content", "/courses"}},
		{"管理者", snapshotFor(model.RoleAdmin), []string{"/dashboard", "/admin-courses", "/courses"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := Navigation(tt.snap, "/courses")
			if len(items) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(items), len(tt.want))
			}
			for i, item := range items {
				if item.Path != tt.want[i] {
					t.Errorf("items[%d].Path = %q, want %q", i, item.Path, tt.want[i])
				}
				if item.Active != (item.Path == "/courses") {
					t.Errorf("items[%d].Active = %v", i, item.Active)
				}
			}
		})
	}
}

func TestNotice_UnknownKey(t *testing.T) {
	if got := Notice("<script>"); got != "" {
		t.Errorf("Notice = %q, want empty", got)
	}
}
