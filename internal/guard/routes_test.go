package guard

import (
	"slices"
	"testing"

	"github.com/hitoshi/manabi/internal/model"
)

func TestRequirementFor(t *testing.T) {
	if got := RequirementFor("/admin-courses"); !slices.Equal(got.Roles, []model.Role{model.RoleAdmin}) {
		t.Errorf("RequirementFor(/admin-courses) = %+v", got)
	}
	if got := RequirementFor("/unregistered"); !got.Authenticated || len(got.Roles) != 0 {
		t.Errorf("未登録パターンは AnyAuthenticated であるべき: %+v", got)
	}
}

func TestRequirement_Permits(t *testing.T) {
	if !AnyAuthenticated.Permits(model.RoleAdmin) {
		t.Error("AnyAuthenticated は全Roleを許可すべき")
	}
	req := RolesOnly(model.RoleTeacher, model.RoleAdmin)
	if !req.Permits(model.RoleAdmin) || req.Permits(model.RoleStudent) {
		t.Errorf("RolesOnly(teacher, admin).Permits の結果が不正")
	}
}

func TestRoutes_PatternsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, r := range Routes() {
		if seen[r.Pattern] {
			t.Errorf("パターン %q が重複している", r.Pattern)
		}
		seen[r.Pattern] = true
	}
}
