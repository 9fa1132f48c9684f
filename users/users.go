package users

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jrsteele09/go-admin-client/internal/utils"
	"github.com/samber/lo"
)

// RoleType names a platform role as the backend reports it
type RoleType string

const (
	// Platform-wide roles
	RoleSuperAdmin RoleType = "super_admin" // Sees and manages every module
	RoleAdmin      RoleType = "admin"       // Manages roles and users

	// Module roles
	RoleHRManager        RoleType = "hr_manager"
	RoleHRStaff          RoleType = "hr_staff"
	RoleCRMManager       RoleType = "crm_manager"
	RoleSalesExecutive   RoleType = "sales_executive"
	RoleFranchiseManager RoleType = "franchise_manager"
	RoleSupportAgent     RoleType = "support_agent"
	RoleAccountant       RoleType = "accountant"
	RoleEmployee         RoleType = "employee"
)

// ID is a user identifier. The backend sends it as a number or a string.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*id = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("user id: %w", err)
		}
		*id = ID(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("user id: %w", err)
		}
		*id = ID(n.String())
	}
	return nil
}

// RoleRef is the canonical role shape. Roles arrive either as a bare name or as
// {name, permissions}; both decode into this struct and nothing downstream
// looks at the wire form.
type RoleRef struct {
	Name        string   `json:"name"`
	Permissions []string `json:"permissions,omitempty"`
}

// NewRoleRef trims the name and permissions and drops duplicate permissions
func NewRoleRef(name string, permissions ...string) RoleRef {
	perms := lo.Uniq(lo.FilterMap(permissions, func(p string, _ int) (string, bool) {
		p = strings.TrimSpace(p)
		return p, p != ""
	}))
	if len(perms) == 0 {
		perms = nil
	}
	return RoleRef{Name: strings.TrimSpace(name), Permissions: perms}
}

func (r *RoleRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = RoleRef{}
		return nil
	}

	if data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return fmt.Errorf("role: %w", err)
		}
		*r = NewRoleRef(name)
		return nil
	}

	var raw struct {
		Name        string `json:"name"`
		Role        string `json:"role"`
		Permissions []any  `json:"permissions"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("role: %w", err)
	}
	name := raw.Name
	if name == "" {
		name = raw.Role
	}
	*r = NewRoleRef(name, utils.ToStringSlice(raw.Permissions)...)
	return nil
}

// Is reports whether the role has the given name, ignoring case
func (r RoleRef) Is(role RoleType) bool {
	return strings.EqualFold(r.Name, string(role))
}

// Summary is the read-only user snapshot cached next to the session credential.
// It is only reconciled with the server on an explicit profile fetch.
type Summary struct {
	ID       ID        `json:"id"`
	Username string    `json:"username,omitempty"`
	FullName string    `json:"full_name,omitempty"`
	Email    string    `json:"email,omitempty"`
	Roles    []RoleRef `json:"roles,omitempty"`
}

func (s *Summary) UnmarshalJSON(data []byte) error {
	type summary Summary
	var raw struct {
		summary
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*s = Summary(raw.summary)
	if s.FullName == "" {
		s.FullName = strings.TrimSpace(raw.FirstName + " " + raw.LastName)
	}
	s.Roles = lo.Filter(s.Roles, func(r RoleRef, _ int) bool {
		return r.Name != ""
	})
	return nil
}

// RoleNames returns the names of the user's roles
func (s *Summary) RoleNames() []string {
	if s == nil {
		return nil
	}
	return lo.Map(s.Roles, func(r RoleRef, _ int) string { return r.Name })
}

// Permissions returns the union of the permissions granted by every role
func (s *Summary) Permissions() []string {
	if s == nil {
		return nil
	}
	return lo.Uniq(lo.FlatMap(s.Roles, func(r RoleRef, _ int) []string { return r.Permissions }))
}

// HasRole reports whether the user holds any of the given roles
func (s *Summary) HasRole(roles ...RoleType) bool {
	if s == nil {
		return false
	}
	return lo.SomeBy(s.Roles, func(r RoleRef) bool {
		return lo.SomeBy(roles, r.Is)
	})
}

// HasPermission reports whether any role grants any of the given permissions
func (s *Summary) HasPermission(permissions ...string) bool {
	return len(lo.Intersect(s.Permissions(), permissions)) > 0
}

// IsSuperAdmin returns true if the user has platform-wide privileges
func (s *Summary) IsSuperAdmin() bool {
	return s.HasRole(RoleSuperAdmin)
}
