package view

import (
	"github.com/hitoshi/manabi/internal/model"
	"github.com/hitoshi/manabi/internal/session"
)

// NavItem はヘッダーのナビゲーションリンク。
type NavItem struct {
	Label  string
	Path   string
	Active bool
}

// Navigation はセッションのRoleに応じたヘッダーのリンクを返す。
// 各Roleにはそのロールがアクセスできるページのみを並べる。
func Navigation(snap session.Snapshot, current string) []NavItem {
	var items []NavItem
	if !snap.IsAuthenticated() {
		items = []NavItem{
			{Label: "Home", Path: "/"},
			{Label: "Sign In", Path: "/login"},
			{Label: "Sign Up", Path: "/register"},
		}
	} else {
		switch snap.Role() {
		case model.RoleTeacher:
			items = []NavItem{
				{Label: "Teacher Dashboard", Path: "/teacher-dashboard"},
				{Label: "Upload Content", Path: "/upload-content"},
				{Label: "Courses", Path: "/courses"},
			}
		case model.RoleAdmin:
			items = []NavItem{
				{Label: "Dashboard", Path: "/dashboard"},
				{Label: "Manage Courses", Path: "/admin-courses"},
				{Label: "Courses", Path: "/courses"},
			}
		default:
			items = []NavItem{
				{Label: "Dashboard", Path: "/dashboard"},
				{Label: "Courses", Path: "/courses"},
			}
		}
	}

	for i := range items {
		items[i].Active = items[i].Path == current
	}
	return items
}

// notices はリダイレクト後に表示するメッセージ。
// クエリ文字列の値をそのまま表示しないよう、キーで引く。
var notices = map[string]string{
	"registered":      "Registration successful! Please check your email for verification OTP.",
	"password-reset":  "Your password has been reset. Please sign in with your new password.",
	"email-verified":  "Your email has been verified. Please sign in.",
	"logged-out":      "You have been signed out.",
	"enrolled":        "You are now enrolled in this course.",
	"course-created":  "Course created as a draft.",
	"course-updated":  "Course updated.",
	"course-deleted":  "Course deleted.",
	"course-toggled":  "Course publication status updated.",
	"content-added":   "Content added as a draft.",
	"content-toggled": "Content publication status updated.",
	"content-deleted": "Content deleted.",
}

// Notice はキーに対応するメッセージを返す。未知のキーは空文字列。
func Notice(key string) string {
	return notices[key]
}
