package guard

import (
	"github.com/hitoshi/manabi/internal/model"
)

// Route はパスパターンとアクセス要件の組。
// パターンはchiの書式で、{name} は1セグメントに一致する。
type Route struct {
	Pattern     string
	Requirement Requirement
}

// Routes はアプリケーションのルートテーブルを返す。
func Routes() []Route {
	return []Route{
		{Pattern: "/", Requirement: Public},
		{Pattern: "/login", Requirement: Public},
		{Pattern: "/register", Requirement: Public},
		{Pattern: "/reset-password", Requirement: Public},
		{Pattern: "/verify-email", Requirement: Public},
		{Pattern: "/logout", Requirement: AnyAuthenticated},
		{Pattern: "/dashboard", Requirement: AnyAuthenticated},
		{Pattern: "/profile", Requirement: AnyAuthenticated},
		{Pattern: "/courses", Requirement: AnyAuthenticated},
		{Pattern: "/courses/{id}", Requirement: AnyAuthenticated},
		{Pattern: "/courses/{id}/enroll", Requirement: RolesOnly(model.RoleStudent)},
		{Pattern: "/teacher-dashboard", Requirement: RolesOnly(model.RoleTeacher)},
		{Pattern: "/upload-content", Requirement: RolesOnly(model.RoleTeacher)},
		{Pattern: "/manage-course-content", Requirement: RolesOnly(model.RoleTeacher)},
		{Pattern: "/admin-courses", Requirement: RolesOnly(model.RoleAdmin)},
	}
}

// RequirementFor はパターンに登録された要件を返す。
// 未登録のパターンにはAnyAuthenticatedを返す。
func RequirementFor(pattern string) Requirement {
	for _, r := range Routes() {
		if r.Pattern == pattern {
			return r.Requirement
		}
	}
	return AnyAuthenticated
}
