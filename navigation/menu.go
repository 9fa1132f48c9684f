// Package navigation decides which platform modules a user may see.
//
// Filtering here only shapes the menu. The backend enforces access on every
// endpoint, so a hidden item is a convenience and not a permission check.
package navigation

import (
	"github.com/jrsteele09/go-admin-client/authapi"
	"github.com/jrsteele09/go-admin-client/users"
	"github.com/samber/lo"
)

// Item is one entry in the platform menu
type Item struct {
	Title       string           `json:"title"`
	Path        string           `json:"path,omitempty"`
	Roles       []users.RoleType `json:"roles,omitempty"`
	Permissions []string         `json:"permissions,omitempty"`
	Children    []Item           `json:"children,omitempty"`
}

// Visible reports whether u may see the item itself, ignoring its children
func (i Item) Visible(u *users.Summary) bool {
	if u == nil {
		return false
	}
	if u.IsSuperAdmin() {
		return true
	}
	if len(i.Roles) == 0 && len(i.Permissions) == 0 {
		return true
	}
	return u.HasRole(i.Roles...) || u.HasPermission(i.Permissions...)
}

// Filter returns the items u may see. Parents whose children are all hidden
// are dropped as well; the input is never modified.
func Filter(items []Item, u *users.Summary) []Item {
	if u == nil {
		return nil
	}
	return lo.FilterMap(items, func(item Item, _ int) (Item, bool) {
		if !item.Visible(u) {
			return Item{}, false
		}
		if len(item.Children) == 0 {
			return item, true
		}
		item.Children = Filter(item.Children, u)
		return item, len(item.Children) > 0
	})
}

// Paths flattens the visible leaf paths, mostly for logging and the CLI
func Paths(items []Item) []string {
	return lo.FlatMap(items, func(item Item, _ int) []string {
		if len(item.Children) > 0 {
			return Paths(item.Children)
		}
		if item.Path == "" {
			return nil
		}
		return []string{item.Path}
	})
}

// DefaultMenu describes the platform modules and who may open them
func DefaultMenu() []Item {
	return []Item{
		{Title: "Dashboard", Path: "/"},
		{Title: "Hierarchy", Path: authapi.RouteHierarchy, Permissions: []string{"hierarchy.view"}},
		{
			Title: "HR",
			Roles: []users.RoleType{users.RoleAdmin, users.RoleHRManager, users.RoleHRStaff, users.RoleEmployee},
			Children: []Item{
				{Title: "Employees", Path: authapi.RouteEmployees, Roles: []users.RoleType{users.RoleAdmin, users.RoleHRManager, users.RoleHRStaff}},
				{Title: "Attendance", Path: authapi.RouteAttendance, Roles: []users.RoleType{users.RoleHRManager, users.RoleHRStaff, users.RoleEmployee}, Permissions: []string{"attendance.view"}},
			},
		},
		{
			Title: "CRM",
			Roles: []users.RoleType{users.RoleCRMManager, users.RoleSalesExecutive},
			Children: []Item{
				{Title: "Customers", Path: authapi.RouteCustomers},
				{Title: "Enquiries", Path: authapi.RouteEnquiries, Roles: []users.RoleType{users.RoleCRMManager, users.RoleSalesExecutive, users.RoleFranchiseManager}},
			},
		},
		{Title: "Franchise Enquiries", Path: authapi.RouteEnquiries, Roles: []users.RoleType{users.RoleFranchiseManager}},
		{Title: "Support Tickets", Path: authapi.RouteTickets, Roles: []users.RoleType{users.RoleSupportAgent}, Permissions: []string{"tickets.view"}},
		{Title: "Finance", Path: authapi.RouteFinance, Roles: []users.RoleType{users.RoleAccountant}, Permissions: []string{"finance.view"}},
		{
			Title: "Access Control",
			Roles: []users.RoleType{users.RoleAdmin},
			Children: []Item{
				{Title: "Roles", Path: authapi.RouteRoles},
				{Title: "Permissions", Path: authapi.RoutePermissions, Permissions: []string{"permissions.manage"}},
			},
		},
	}
}
