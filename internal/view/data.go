package view

import (
	"github.com/hitoshi/manabi/internal/api"
	"github.com/hitoshi/manabi/internal/catalog"
	"github.com/hitoshi/manabi/internal/form"
	"github.com/hitoshi/manabi/internal/model"
	"github.com/hitoshi/manabi/internal/session"
)

// ErrorData はエラー画面のデータ。
type ErrorData struct {
	Status  int
	Message string
}

// LoginData はログイン画面のデータ。
type LoginData struct {
	Email  string
	Errors *model.ValidationError
}

// RegisterData はアカウント登録画面のデータ。
type RegisterData struct {
	Form   form.Register
	Errors *model.ValidationError
}

// VerifyEmailData はメールアドレス確認画面のデータ。
type VerifyEmailData struct {
	Email  string
	Errors *model.ValidationError
}

// ResetPasswordData はパスワード再設定画面のデータ。
// CodeSentがtrueの場合はOTPと新しいパスワードの入力欄を表示する。
type ResetPasswordData struct {
	Email    string
	CodeSent bool
	Errors   *model.ValidationError
}

// StudentDashboardData は受講者ダッシュボードのデータ。
type StudentDashboardData struct {
	Dashboard api.StudentDashboard
	Progress  map[string]int
}

// TeacherOverviewData は講師向けダッシュボード概要のデータ。
type TeacherOverviewData struct {
	Totals        catalog.Totals
	RecentContent []model.ContentItem
}

// AdminOverviewData は管理者ダッシュボードのデータ。
type AdminOverviewData struct {
	Totals    catalog.Totals
	Published int
	Drafts    int
	Courses   []model.Course
}

// ProfileData はプロフィール画面のデータ。
type ProfileData struct {
	Identity  *model.Identity
	Claims    session.TokenClaims
	HasClaims bool
	Expired   bool
	Remote    *model.Identity
	LoadError string
}

// CoursesData はコース一覧画面のデータ。
type CoursesData struct {
	Courses    []model.Course
	Total      int
	Query      catalog.Query
	Categories []string
	Levels     []string
	CanEnroll  bool
}

// CourseDetailData はコース詳細画面のデータ。
type CourseDetailData struct {
	Course    *model.Course
	CourseID  string
	RoleBlurb string
	CanEnroll bool
}

// TeacherDashboardData は講師ダッシュボードのデータ。
// FromCatalogがtrueの場合はバックエンドの代わりにローカルカタログを表示している。
type TeacherDashboardData struct {
	Totals        catalog.Totals
	Courses       []model.Course
	RecentContent []model.ContentItem
	FromCatalog   bool
}

// UploadContentData は教材登録画面のデータ。
type UploadContentData struct {
	Form    form.Content
	Courses []model.Course
	Kinds   []model.ContentKind
	Errors  *model.ValidationError
}

// ManageContentData はコース教材管理画面のデータ。
type ManageContentData struct {
	Course  model.Course
	Courses []model.Course
	Items   []model.ContentItem
	Total   int
	Search  string
	Counts  map[model.ContentKind]int
}

// AdminCoursesData はコース管理画面のデータ。
// EditingIDが空でFormShownがtrueの場合は新規作成フォームを表示する。
type AdminCoursesData struct {
	Courses    []model.Course
	Form       form.Course
	FormShown  bool
	EditingID  string
	Errors     *model.ValidationError
	Categories []string
	Levels     []model.Level
}

// Count は指定種別の教材数を返す。
func (d ManageContentData) Count(kind string) int {
	return d.Counts[model.ContentKind(kind)]
}
