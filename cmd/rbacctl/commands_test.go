package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/drimsoft/planifika-admin/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestMatrixCmd(t *testing.T) {
	out, err := execute(t, "matrix")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, len(auth.AllPermissions())+1)
	assert.Equal(t, []string{"PERMISSION", "SUPER_ADMIN", "ADMIN_DRIMSOFT", "ADMIN_ORG", "MANAGER", "MEMBER", "VIEWER"}, strings.Fields(lines[0]))

	rows := make(map[string][]string)
	for _, line := range lines[1:] {
		fields := strings.Fields(line)
		rows[fields[0]] = fields[1:]
	}
	assert.Equal(t, []string{"x", "-", "-", "-", "-", "-"}, rows["system:security"])
	assert.Equal(t, []string{"x", "x", "x", "x", "x", "x"}, rows["project:read"])
	assert.Equal(t, []string{"x", "-", "x", "-", "-", "-"}, rows["org:manage_users"])
}

func TestCheckCmd(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    string
		denied  bool
		wantErr bool
	}{
		{name: "allowed", args: []string{"check", "admin_org", "project:delete"}, want: "allowed"},
		{name: "missing permission", args: []string{"check", "admin_drimsoft", "system:database"}, want: "denied (missing_permission)", denied: true},
		{name: "role checked first", args: []string{"check", "manager", "reports:read", "--require-role", "super_admin"}, want: "denied (role_mismatch)", denied: true},
		{name: "role only", args: []string{"check", "viewer", "--require-role", "viewer"}, want: "allowed"},
		{name: "empty requirement", args: []string{"check", "viewer"}, want: "allowed"},
		{name: "unknown role", args: []string{"check", "owner", "org:read"}, wantErr: true},
		{name: "unknown permission", args: []string{"check", "viewer", "org:archive"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			switch {
			case tt.wantErr:
				require.Error(t, err)
				assert.False(t, errors.Is(err, errDenied))
			case tt.denied:
				assert.True(t, errors.Is(err, errDenied))
				assert.Equal(t, tt.want, strings.TrimSpace(out))
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.want, strings.TrimSpace(out))
			}
		})
	}
}

func TestRolesCmd(t *testing.T) {
	t.Run("table", func(t *testing.T) {
		out, err := execute(t, "roles")
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 7)
		assert.True(t, strings.HasPrefix(lines[1], "super_admin"))
		assert.True(t, strings.HasPrefix(lines[6], "viewer"))
	})

	t.Run("json", func(t *testing.T) {
		out, err := execute(t, "roles", "--json")
		require.NoError(t, err)

		var rows []roleRow
		require.NoError(t, json.Unmarshal([]byte(out), &rows))
		require.Len(t, rows, 6)
		assert.Equal(t, auth.RoleAdminDrimsoft, rows[1].Role)
		assert.Equal(t, auth.PermissionsFor(auth.RoleAdminDrimsoft), rows[1].Permissions)
	})
}

func TestPermissionsCmd(t *testing.T) {
	t.Run("whole catalog", func(t *testing.T) {
		out, err := execute(t, "permissions")
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(out), "\n")
		assert.Len(t, lines, len(auth.AllPermissions())+1)
	})

	t.Run("one resource", func(t *testing.T) {
		out, err := execute(t, "permissions", "--resource", "audit")
		require.NoError(t, err)
		assert.Contains(t, out, "audit:read")
		assert.Contains(t, out, "Export the audit log")
		assert.NotContains(t, out, "user:read")
	})

	t.Run("unknown resource", func(t *testing.T) {
		_, err := execute(t, "permissions", "--resource", "billing")
		assert.Error(t, err)
	})
}
