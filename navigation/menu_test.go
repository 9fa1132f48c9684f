package navigation_test

import (
	"testing"

	"github.com/jrsteele09/go-admin-client/authapi"
	"github.com/jrsteele09/go-admin-client/navigation"
	"github.com/jrsteele09/go-admin-client/users"
	"github.com/stretchr/testify/require"
)

func user(roles ...users.RoleRef) *users.Summary {
	return &users.Summary{ID: "1", Username: "jdoe", Roles: roles}
}

func TestFilter_DefaultMenu(t *testing.T) {
	tests := []struct {
		name  string
		user  *users.Summary
		paths []string
	}{
		{
			name:  "nil user sees nothing",
			user:  nil,
			paths: []string{},
		},
		{
			name:  "user without roles sees unrestricted items only",
			user:  user(),
			paths: []string{"/"},
		},
		{
			name:  "employee sees attendance under HR",
			user:  user(users.NewRoleRef("employee")),
			paths: []string{"/", authapi.RouteAttendance},
		},
		{
			name:  "permission alone opens an item",
			user:  user(users.NewRoleRef("support_agent", "hierarchy.view")),
			paths: []string{"/", authapi.RouteHierarchy, authapi.RouteTickets},
		},
		{
			name:  "admin without permissions.manage misses that child",
			user:  user(users.NewRoleRef("admin")),
			paths: []string{"/", authapi.RouteEmployees, authapi.RouteRoles},
		},
		{
			name:  "role names match case-insensitively",
			user:  user(users.NewRoleRef("ACCOUNTANT")),
			paths: []string{"/", authapi.RouteFinance},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			visible := navigation.Filter(navigation.DefaultMenu(), tt.user)
			require.Equal(t, tt.paths, navigation.Paths(visible))
		})
	}
}

func TestFilter_SuperAdminSeesEverything(t *testing.T) {
	menu := navigation.DefaultMenu()
	visible := navigation.Filter(menu, user(users.NewRoleRef("super_admin")))
	require.Equal(t, menu, visible)
}

func TestFilter_HidesParentWithoutVisibleChildren(t *testing.T) {
	menu := []navigation.Item{
		{
			Title: "Reports",
			Children: []navigation.Item{
				{Title: "Payroll", Path: "/reports/payroll/", Roles: []users.RoleType{users.RoleAccountant}},
			},
		},
		{Title: "Home", Path: "/"},
	}

	visible := navigation.Filter(menu, user(users.NewRoleRef("hr_staff")))
	require.Len(t, visible, 1)
	require.Equal(t, "Home", visible[0].Title)

	// the input keeps its children
	require.Len(t, menu[0].Children, 1)
}

func TestItem_Visible(t *testing.T) {
	item := navigation.Item{Title: "Tickets", Roles: []users.RoleType{users.RoleSupportAgent}, Permissions: []string{"tickets.view"}}

	require.False(t, item.Visible(nil))
	require.False(t, item.Visible(user(users.NewRoleRef("employee"))))
	require.True(t, item.Visible(user(users.NewRoleRef("support_agent"))))
	require.True(t, item.Visible(user(users.NewRoleRef("employee", "tickets.view"))))
}
