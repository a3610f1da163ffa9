package middleware

import (
	"context"
	"regexp"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-sis-api/internal/models"
	appErrors "github.com/noah-isme/campus-sis-api/pkg/errors"
	"github.com/noah-isme/campus-sis-api/pkg/response"
)

// AccessRule pairs a path pattern with the roles allowed through it.
type AccessRule struct {
	Pattern string
	Roles   []models.UserRole
}

type compiledRule struct {
	re    *regexp.Regexp
	roles map[models.UserRole]struct{}
}

// AccessTable matches request paths against an ordered rule list with
// first-match semantics. A path matching no rule passes through; per-route
// RBAC still applies behind it.
type AccessTable struct {
	rules []compiledRule
}

// NewAccessTable compiles the rule list. Patterns anchor implicitly at the
// start of the path.
func NewAccessTable(rules []AccessRule) (*AccessTable, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for _, rule := range rules {
		re, err := regexp.Compile("^" + rule.Pattern)
		if err != nil {
			return nil, err
		}
		roles := make(map[models.UserRole]struct{}, len(rule.Roles))
		for _, role := range rule.Roles {
			roles[role] = struct{}{}
		}
		compiled = append(compiled, compiledRule{re: re, roles: roles})
	}
	return &AccessTable{rules: compiled}, nil
}

// Allowed reports whether the role may reach the path. The first matching
// rule decides; later rules are never consulted.
func (t *AccessTable) Allowed(path string, role models.UserRole) bool {
	for _, rule := range t.rules {
		if rule.re.MatchString(path) {
			_, ok := rule.roles[role]
			return ok
		}
	}
	return true
}

// DefaultAccessRules is the portal's ordered path-pattern table. Patterns
// are matched in order against the full request path; the first match
// decides.
func DefaultAccessRules(prefix string) []AccessRule {
	staff := []models.UserRole{models.RoleSuperUser, models.RoleAdmin, models.RoleRegistrar, models.RoleFaculty}
	registrars := []models.UserRole{models.RoleSuperUser, models.RoleAdmin, models.RoleRegistrar}
	admins := []models.UserRole{models.RoleSuperUser, models.RoleAdmin}
	everyone := append(append([]models.UserRole{}, staff...), models.RoleStudent)

	return []AccessRule{
		{Pattern: prefix + `/staff`, Roles: admins},
		{Pattern: prefix + `/students/bulk-delete`, Roles: admins},
		{Pattern: prefix + `/students/upload`, Roles: registrars},
		{Pattern: prefix + `/students/template`, Roles: registrars},
		{Pattern: prefix + `/students/[^/]+/grades/summary`, Roles: everyone},
		{Pattern: prefix + `/students/[^/]+/transcript`, Roles: everyone},
		{Pattern: prefix + `/students/[^/]+/approval`, Roles: staff},
		{Pattern: prefix + `/students`, Roles: everyone},
		{Pattern: prefix + `/grades/upload`, Roles: registrars},
		{Pattern: prefix + `/grades/template`, Roles: registrars},
		{Pattern: prefix + `/grades`, Roles: staff},
		{Pattern: prefix + `/offerings`, Roles: registrars},
		{Pattern: prefix + `/checklists`, Roles: registrars},
		{Pattern: prefix + `/terms`, Roles: staff},
		{Pattern: prefix + `/announcements`, Roles: everyone},
		{Pattern: prefix + `/events`, Roles: everyone},
		{Pattern: prefix + `/news`, Roles: everyone},
		{Pattern: prefix + `/dashboard`, Roles: everyone},
	}
}

type approvalChecker interface {
	ApprovalStatus(ctx context.Context, id string) (*models.ApprovalStatus, error)
}

// Access gates requests behind the path-pattern table and, for students,
// behind account approval. Runs after JWT.
func Access(table *AccessTable, approvals approvalChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := CurrentClaims(c)
		if claims == nil {
			response.ErrorWithMeta(c, appErrors.ErrUnauthorized, map[string]interface{}{"redirect": "/sign-in"})
			c.Abort()
			return
		}

		if claims.Role == models.RoleStudent {
			status, err := approvals.ApprovalStatus(c.Request.Context(), claims.UserID)
			if err != nil {
				response.Error(c, err)
				c.Abort()
				return
			}
			if !status.IsApproved {
				response.ErrorWithMeta(c, appErrors.ErrPendingApproval,
					map[string]interface{}{"redirect": "/pending-approval"})
				c.Abort()
				return
			}
		}

		if !table.Allowed(c.Request.URL.Path, claims.Role) {
			response.ErrorWithMeta(c, appErrors.ErrForbidden,
				map[string]interface{}{"redirect": "/"})
			c.Abort()
			return
		}

		c.Next()
	}
}
