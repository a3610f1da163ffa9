package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-sis-api/internal/models"
)

func TestAccessTableStudentBlockedOnStaffRoutes(t *testing.T) {
	table, err := NewAccessTable(DefaultAccessRules("/api/v1"))
	require.NoError(t, err)

	blocked := []string{
		"/api/v1/staff",
		"/api/v1/staff/9f2c1a34",
		"/api/v1/students/bulk-delete",
		"/api/v1/students/upload",
		"/api/v1/students/template",
		"/api/v1/students/9f2c1a34/approval",
		"/api/v1/grades",
		"/api/v1/grades/upload",
		"/api/v1/grades/template",
		"/api/v1/offerings",
		"/api/v1/offerings/seed",
		"/api/v1/checklists",
		"/api/v1/terms",
	}
	for _, path := range blocked {
		assert.False(t, table.Allowed(path, models.RoleStudent), "student reached %s", path)
	}
}

func TestAccessTableStudentAllowedOnOwnRecords(t *testing.T) {
	table, err := NewAccessTable(DefaultAccessRules("/api/v1"))
	require.NoError(t, err)

	allowed := []string{
		"/api/v1/students/9f2c1a34/grades/summary",
		"/api/v1/students/9f2c1a34/transcript",
		"/api/v1/students/9f2c1a34",
		"/api/v1/announcements",
		"/api/v1/events",
		"/api/v1/news",
		"/api/v1/dashboard",
	}
	for _, path := range allowed {
		assert.True(t, table.Allowed(path, models.RoleStudent), "student blocked from %s", path)
	}
}

func TestAccessTableFirstMatchWins(t *testing.T) {
	// The summary rule sits above the broader approval rule; ordering, not
	// specificity, decides which one fires.
	table, err := NewAccessTable([]AccessRule{
		{Pattern: `/api/v1/students/[^/]+/grades/summary`, Roles: []models.UserRole{models.RoleStudent}},
		{Pattern: `/api/v1/students`, Roles: []models.UserRole{models.RoleAdmin}},
	})
	require.NoError(t, err)

	assert.True(t, table.Allowed("/api/v1/students/abc/grades/summary", models.RoleStudent))
	assert.False(t, table.Allowed("/api/v1/students/abc", models.RoleStudent))
	assert.True(t, table.Allowed("/api/v1/students/abc", models.RoleAdmin))
}

func TestAccessTableUnmatchedPathFallsThrough(t *testing.T) {
	table, err := NewAccessTable(DefaultAccessRules("/api/v1"))
	require.NoError(t, err)

	// Paths outside the table pass; per-route checks still guard them.
	assert.True(t, table.Allowed("/api/v1/cron/rate-limits/cleanup", models.RoleStudent))
}

func TestAccessTableEveryStaffRoleReachesGrades(t *testing.T) {
	table, err := NewAccessTable(DefaultAccessRules("/api/v1"))
	require.NoError(t, err)

	for _, role := range []models.UserRole{models.RoleSuperUser, models.RoleAdmin, models.RoleRegistrar, models.RoleFaculty} {
		assert.True(t, table.Allowed("/api/v1/grades", role), "%s blocked from grades", role)
	}
	assert.False(t, table.Allowed("/api/v1/staff", models.RoleRegistrar))
	assert.False(t, table.Allowed("/api/v1/staff", models.RoleFaculty))
}

func TestAccessTableFollowsServingPrefix(t *testing.T) {
	// The table must be compiled from the same prefix the routes mount at;
	// rules for a different prefix never match and everything falls through.
	prefix := "/campus/api"
	table, err := NewAccessTable(DefaultAccessRules(prefix))
	require.NoError(t, err)

	assert.False(t, table.Allowed(prefix+"/grades", models.RoleStudent))
	assert.False(t, table.Allowed(prefix+"/staff", models.RoleStudent))
	assert.True(t, table.Allowed(prefix+"/dashboard", models.RoleStudent))

	mismatched, err := NewAccessTable(DefaultAccessRules("/api/v1"))
	require.NoError(t, err)
	assert.True(t, mismatched.Allowed(prefix+"/grades", models.RoleStudent))
	assert.True(t, mismatched.Allowed(prefix+"/staff", models.RoleStudent))
}

func TestNewAccessTableRejectsBadPattern(t *testing.T) {
	_, err := NewAccessTable([]AccessRule{{Pattern: `/api/v1/[`, Roles: nil}})
	require.Error(t, err)
}
