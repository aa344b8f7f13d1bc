// Package guard はルートごとのアクセス要件と、セッション状態に基づく遷移判定を提供する。
// 判定は純粋関数であり、I/Oやセッションの変更を行わない。
package guard

import (
	"slices"

	"github.com/hitoshi/manabi/internal/metrics"
	"github.com/hitoshi/manabi/internal/model"
	"github.com/hitoshi/manabi/internal/session"
)

// LoginPath は未認証時のリダイレクト先。
const LoginPath = "/login"

// Requirement はルートのアクセス要件。
// Rolesが空の場合、認証済みであればRoleを問わない。
type Requirement struct {
	Authenticated bool
	Roles         []model.Role
}

// Public は誰でもアクセスできるルートの要件。
var Public = Requirement{}

// AnyAuthenticated は認証済みであればアクセスできるルートの要件。
var AnyAuthenticated = Requirement{Authenticated: true}

// RolesOnly は指定Roleの認証済みユーザーのみアクセスできるルートの要件。
func RolesOnly(roles ...model.Role) Requirement {
	return Requirement{Authenticated: true, Roles: roles}
}

// Permits はroleのユーザー（認証済み）がこの要件を満たすかを返す。
func (r Requirement) Permits(role model.Role) bool {
	return len(r.Roles) == 0 || slices.Contains(r.Roles, role)
}

// Decision はガードの判定結果。
// Allowedがfalseの場合、Redirectに遷移先のパスが入る。
type Decision struct {
	Allowed  bool
	Redirect string
	Outcome  string
}

// Decide はセッション状態とルート要件から遷移を判定する。
//
//  1. 認証が必要で未認証なら /login へ（元のパスは保持しない）
//  2. Roleが指定されていて含まれないなら、そのRoleのホームへ
//  3. それ以外は許可
func Decide(snap session.Snapshot, req Requirement) Decision {
	if !req.Authenticated {
		return Decision{Allowed: true, Outcome: metrics.OutcomeAllow}
	}
	if !snap.IsAuthenticated() {
		return Decision{Redirect: LoginPath, Outcome: metrics.OutcomeLogin}
	}
	if !req.Permits(snap.Role()) {
		return Decision{Redirect: HomePath(snap.Role()), Outcome: metrics.OutcomeRoleFallback}
	}
	return Decision{Allowed: true, Outcome: metrics.OutcomeAllow}
}

// HomePath はRoleごとのホーム画面のパスを返す。
// ログイン成功後の遷移先と、Role不一致時のリダイレクト先に使う。
// 各Roleのホームはそのロール自身がアクセスできるルートでなければならない。
func HomePath(role model.Role) string {
	if role == model.RoleTeacher {
		return "/teacher-dashboard"
	}
	return "/dashboard"
}
