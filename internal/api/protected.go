package api

import (
	"context"
	"net/http"

	"github.com/hitoshi/manabi/internal/model"
)

// Profile はログインユーザーのプロフィールを取得する。
// GET /protected/profile
func (c *Client) Profile(ctx context.Context) (*model.Identity, error) {
	var resp DataResponse[struct {
		User model.Identity `json:"user"`
	}]
	if err := c.Do(ctx, http.MethodGet, "/protected/profile", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data.User, nil
}

// StudentDashboard は受講者ダッシュボードのデータを取得する。
// GET /protected/student/dashboard
func (c *Client) StudentDashboard(ctx context.Context) (*StudentDashboard, error) {
	var resp DataResponse[StudentDashboard]
	if err := c.Do(ctx, http.MethodGet, "/protected/student/dashboard", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// TeacherDashboard は講師ダッシュボードのデータを取得する。
// GET /protected/teacher/dashboard
func (c *Client) TeacherDashboard(ctx context.Context) (*TeacherDashboard, error) {
	var resp DataResponse[TeacherDashboard]
	if err := c.Do(ctx, http.MethodGet, "/protected/teacher/dashboard", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// ProtectedCourses は認証済みユーザー向けのコース一覧を取得する。
// GET /protected/courses
func (c *Client) ProtectedCourses(ctx context.Context) ([]model.Course, error) {
	return c.getCourses(ctx, "/protected/courses")
}
