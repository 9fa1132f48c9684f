package users_test

import (
	"encoding/json"
	"testing"

	"github.com/jrsteele09/go-admin-client/users"
	"github.com/stretchr/testify/require"
)

func TestRoleRef_Normalisation(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want users.RoleRef
	}{
		{
			name: "bare string",
			raw:  `"hr_manager"`,
			want: users.RoleRef{Name: "hr_manager"},
		},
		{
			name: "object with permissions",
			raw:  `{"name":"accountant","permissions":["finance.view"," finance.edit ","finance.view"]}`,
			want: users.RoleRef{Name: "accountant", Permissions: []string{"finance.view", "finance.edit"}},
		},
		{
			name: "object using role key",
			raw:  `{"role":"support_agent"}`,
			want: users.RoleRef{Name: "support_agent"},
		},
		{
			name: "non string permissions are dropped",
			raw:  `{"name":"crm_manager","permissions":["crm.view",7,null,""]}`,
			want: users.RoleRef{Name: "crm_manager", Permissions: []string{"crm.view"}},
		},
		{
			name: "null",
			raw:  `null`,
			want: users.RoleRef{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got users.RoleRef
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &got))
			require.Equal(t, tt.want, got)
		})
	}
}

func TestRoleRef_EncodesObjectForm(t *testing.T) {
	var r users.RoleRef
	require.NoError(t, json.Unmarshal([]byte(`"admin"`), &r))

	b, err := json.Marshal(r)
	require.NoError(t, err)
	require.JSONEq(t, `{"name":"admin"}`, string(b))
}

func TestSummary_Decode(t *testing.T) {
	raw := `{
		"id": 42,
		"username": "jdoe",
		"first_name": "Jane",
		"last_name": "Doe",
		"email": "jane@example.com",
		"roles": ["employee", {"name": "hr_staff", "permissions": ["attendance.view"]}, ""]
	}`

	var s users.Summary
	require.NoError(t, json.Unmarshal([]byte(raw), &s))

	require.Equal(t, users.ID("42"), s.ID)
	require.Equal(t, "Jane Doe", s.FullName)
	require.Equal(t, []string{"employee", "hr_staff"}, s.RoleNames())
	require.Equal(t, []string{"attendance.view"}, s.Permissions())
}

func TestSummary_DecodeKeepsFullName(t *testing.T) {
	var s users.Summary
	require.NoError(t, json.Unmarshal([]byte(`{"id":"u-1","full_name":"Sam Smith","first_name":"X"}`), &s))
	require.Equal(t, users.ID("u-1"), s.ID)
	require.Equal(t, "Sam Smith", s.FullName)
}

func TestSummary_Predicates(t *testing.T) {
	s := &users.Summary{
		Roles: []users.RoleRef{
			users.NewRoleRef("HR_Manager", "attendance.view", "attendance.edit"),
			users.NewRoleRef("accountant", "finance.view", "attendance.view"),
		},
	}

	require.True(t, s.HasRole(users.RoleHRManager))
	require.True(t, s.HasRole(users.RoleSupportAgent, users.RoleAccountant))
	require.False(t, s.HasRole(users.RoleSuperAdmin))
	require.False(t, s.IsSuperAdmin())

	require.True(t, s.HasPermission("finance.view"))
	require.False(t, s.HasPermission("tickets.view"))
	require.ElementsMatch(t, []string{"attendance.view", "attendance.edit", "finance.view"}, s.Permissions())

	var nilUser *users.Summary
	require.False(t, nilUser.HasRole(users.RoleEmployee))
	require.False(t, nilUser.HasPermission("finance.view"))
}

func TestSummary_RoundTrip(t *testing.T) {
	in := users.Summary{
		ID:       "7",
		Username: "ops",
		Roles:    []users.RoleRef{users.NewRoleRef("super_admin")},
	}
	b, err := json.Marshal(in)
	require.NoError(t, err)

	var out users.Summary
	require.NoError(t, json.Unmarshal(b, &out))
	require.Equal(t, in, out)
	require.True(t, out.IsSuperAdmin())
}
