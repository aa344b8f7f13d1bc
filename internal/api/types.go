package api

import (
	"github.com/hitoshi/manabi/internal/model"
)

// Response はバックエンドの共通レスポンス形式。
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// AuthResponse は認証系エンドポイントのレスポンス。
type AuthResponse struct {
	Response
	Token string          `json:"token,omitempty"`
	User  *model.Identity `json:"user,omitempty"`
}

// DataResponse はリソース系エンドポイントのレスポンス。
type DataResponse[T any] struct {
	Response
	Data T `json:"data"`
}

// Credentials はサインインの入力値。
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUpRequest はサインアップの入力値。
type SignUpRequest struct {
	Name     string     `json:"name,omitempty"`
	Email    string     `json:"email"`
	Password string     `json:"password"`
	Phone    string     `json:"phone,omitempty"`
	Role     model.Role `json:"role"`
}

// CourseProgress は受講者ダッシュボードの進捗情報。
type CourseProgress struct {
	CourseID string `json:"courseId"`
	Title    string `json:"title"`
	Percent  int    `json:"progress"`
}

// StudentDashboard は受講者ダッシュボードのデータ。
type StudentDashboard struct {
	EnrolledCourses  []model.Course   `json:"enrolledCourses"`
	Progress         []CourseProgress `json:"progress"`
	CompletedLessons int              `json:"completedLessons"`
	Certificates     int              `json:"certificates"`
}

// TeacherDashboard は講師ダッシュボードのデータ。
type TeacherDashboard struct {
	Courses       []model.Course      `json:"courses"`
	RecentContent []model.ContentItem `json:"recentContent"`
	TotalStudents int                 `json:"totalStudents"`
}
