package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/manabi/internal/api"
	"github.com/hitoshi/manabi/internal/catalog"
	"github.com/hitoshi/manabi/internal/model"
	"github.com/hitoshi/manabi/internal/security"
	"github.com/hitoshi/manabi/internal/session"
	"github.com/hitoshi/manabi/internal/storage"
	"github.com/hitoshi/manabi/internal/view"
)

// --- モック定義 ---

type mockBackend struct {
	signInFn           func(ctx context.Context, creds api.Credentials) (*api.AuthResponse, error)
	signUpFn           func(ctx context.Context, req api.SignUpRequest) (*api.AuthResponse, error)
	requestOTPFn       func(ctx context.Context, email string) (*api.Response, error)
	verifyOTPFn        func(ctx context.Context, email, otp string) (*api.AuthResponse, error)
	forgotPasswordFn   func(ctx context.Context, email string) (*api.Response, error)
	resetPasswordFn    func(ctx context.Context, email, otp, newPassword string) (*api.Response, error)
	profileFn          func(ctx context.Context) (*model.Identity, error)
	studentDashboardFn func(ctx context.Context) (*api.StudentDashboard, error)
	listCoursesFn      func(ctx context.Context) ([]model.Course, error)
	protectedCoursesFn func(ctx context.Context) ([]model.Course, error)
	getCourseFn        func(ctx context.Context, id string) (*model.Course, error)
	enrollFn           func(ctx context.Context, id string) (*api.Response, error)
	teacherDashboardFn func(ctx context.Context) (*api.TeacherDashboard, error)

	signInCalls int
}

func (m *mockBackend) SignIn(ctx context.Context, creds api.Credentials) (*api.AuthResponse, error) {
	m.signInCalls++
	if m.signInFn != nil {
		return m.signInFn(ctx, creds)
	}
	return nil, &api.APIError{StatusCode: http.StatusUnauthorized, Message: "Invalid credentials"}
}

func (m *mockBackend) SignUp(ctx context.Context, req api.SignUpRequest) (*api.AuthResponse, error) {
	if m.signUpFn != nil {
		return m.signUpFn(ctx, req)
	}
	return &api.AuthResponse{Response: api.Response{Success: true}}, nil
}

func (m *mockBackend) RequestOTP(ctx context.Context, email string) (*api.Response, error) {
	if m.requestOTPFn != nil {
		return m.requestOTPFn(ctx, email)
	}
	return &api.Response{Success: true}, nil
}

func (m *mockBackend) VerifyOTP(ctx context.Context, email, otp string) (*api.AuthResponse, error) {
	if m.verifyOTPFn != nil {
		return m.verifyOTPFn(ctx, email, otp)
	}
	return &api.AuthResponse{Response: api.Response{Success: true}}, nil
}

func (m *mockBackend) ForgotPassword(ctx context.Context, email string) (*api.Response, error) {
	if m.forgotPasswordFn != nil {
		return m.forgotPasswordFn(ctx, email)
	}
	return &api.Response{Success: true}, nil
}

func (m *mockBackend) ResetPassword(ctx context.Context, email, otp, newPassword string) (*api.Response, error) {
	if m.resetPasswordFn != nil {
		return m.resetPasswordFn(ctx, email, otp, newPassword)
	}
	return &api.Response{Success: true}, nil
}

func (m *mockBackend) Profile(ctx context.Context) (*model.Identity, error) {
	if m.profileFn != nil {
		return m.profileFn(ctx)
	}
	return &model.Identity{}, nil
}

func (m *mockBackend) StudentDashboard(ctx context.Context) (*api.StudentDashboard, error) {
	if m.studentDashboardFn != nil {
		return m.studentDashboardFn(ctx)
	}
	return &api.StudentDashboard{}, nil
}

func (m *mockBackend) ListCourses(ctx context.Context) ([]model.Course, error) {
	if m.listCoursesFn != nil {
		return m.listCoursesFn(ctx)
	}
	return catalog.SeedCourses(), nil
}

func (m *mockBackend) ProtectedCourses(ctx context.Context) ([]model.Course, error) {
	if m.protectedCoursesFn != nil {
		return m.protectedCoursesFn(ctx)
	}
	return catalog.SeedCourses(), nil
}

func (m *mockBackend) GetCourse(ctx context.Context, id string) (*model.Course, error) {
	if m.getCourseFn != nil {
		return m.getCourseFn(ctx, id)
	}
	for _, c := range catalog.SeedCourses() {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, &api.APIError{StatusCode: http.StatusNotFound, Message: "Course not found"}
}

func (m *mockBackend) Enroll(ctx context.Context, id string) (*api.Response, error) {
	if m.enrollFn != nil {
		return m.enrollFn(ctx, id)
	}
	return &api.Response{Success: true}, nil
}

func (m *mockBackend) TeacherDashboard(ctx context.Context) (*api.TeacherDashboard, error) {
	if m.teacherDashboardFn != nil {
		return m.teacherDashboardFn(ctx)
	}
	return &api.TeacherDashboard{Courses: catalog.SeedCourses()}, nil
}

type mockMetrics struct {
	loginSuccess int
	loginFailure int
	logouts      int
	decisions    map[string]int
}

func (m *mockMetrics) RecordAPIRequest(string, string, int, time.Duration) {}

func (m *mockMetrics) RecordGuardDecision(route, outcome string) {
	if m.decisions == nil {
		m.decisions = make(map[string]int)
	}
	m.decisions[route+" "+outcome]++
}

func (m *mockMetrics) RecordLogin(success bool) {
	if success {
		m.loginSuccess++
	} else {
		m.loginFailure++
	}
}

func (m *mockMetrics) RecordLogout() { m.logouts++ }

// --- テスト環境 ---

const testCSRFToken = "test-csrf-token"

type testEnv struct {
	router  http.Handler
	store   *session.Store
	backend *mockBackend
	catalog *catalog.Store
	metrics *mockMetrics
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := newTestLogger()

	store, err := session.New(context.Background(), storage.NewMemoryStorage(), logger)
	if err != nil {
		t.Fatalf("session.Newでエラー: %v", err)
	}
	renderer, err := view.New(security.NewSanitizer(), logger)
	if err != nil {
		t.Fatalf("view.Newでエラー: %v", err)
	}

	env := &testEnv{
		store:   store,
		backend: &mockBackend{},
		catalog: catalog.New(logger),
		metrics: &mockMetrics{},
	}
	env.router = NewRouter(&RouterDeps{
		Store:         store,
		Backend:       env.backend,
		Catalog:       env.catalog,
		Renderer:      renderer,
		Logger:        logger,
		Metrics:       env.metrics,
		StorageDriver: "memory",
	})
	return env
}

// loginAs はroleのユーザーでセッションを直接設定する。
func (e *testEnv) loginAs(t *testing.T, role model.Role) {
	t.Helper()
	identity := model.Identity{ID: "user-" + string(role), Name: "Test " + string(role), Email: string(role) + "@example.com", Role: role}
	if err := e.store.Set(context.Background(), identity, "token-"+string(role)); err != nil {
		t.Fatalf("Setでエラー: %v", err)
	}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) get(path string) *httptest.ResponseRecorder {
	return e.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (e *testEnv) post(path string, v url.Values) *httptest.ResponseRecorder {
	return e.do(newFormRequest(path, v))
}

// newFormRequest はCSRFトークン付きのフォーム送信リクエストを生成する。
func newFormRequest(path string, v url.Values) *http.Request {
	if v == nil {
		v = url.Values{}
	}
	v.Set("csrf_token", testCSRFToken)
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(v.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: testCSRFToken})
	return req
}

func assertRedirect(t *testing.T, rec *httptest.ResponseRecorder, want string) {
	t.Helper()
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303 (body: %s)", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Location"); got != want {
		t.Errorf("Location = %q, want %q", got, want)
	}
}

func assertBodyContains(t *testing.T, rec *httptest.ResponseRecorder, wants ...string) {
	t.Helper()
	body := rec.Body.String()
	for _, want := range wants {
		if !strings.Contains(body, want) {
			t.Errorf("本文に %q が含まれていない", want)
		}
	}
}
