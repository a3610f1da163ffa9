package models

import "time"

// UserRole is the closed set of portal roles. Session claims carrying any
// other value are rejected at the decoding boundary.
type UserRole string

const (
	RoleSuperUser UserRole = "SUPERUSER"
	RoleAdmin     UserRole = "ADMIN"
	RoleRegistrar UserRole = "REGISTRAR"
	RoleFaculty   UserRole = "FACULTY"
	RoleStudent   UserRole = "STUDENT"
)

// ValidRole reports whether the value belongs to the role enumeration.
func ValidRole(r UserRole) bool {
	switch r {
	case RoleSuperUser, RoleAdmin, RoleRegistrar, RoleFaculty, RoleStudent:
		return true
	}
	return false
}

// StaffRoles are the roles assignable to staff accounts.
var StaffRoles = []UserRole{RoleSuperUser, RoleAdmin, RoleRegistrar, RoleFaculty}

// StaffUser mirrors an administrator, registrar or faculty account. The
// identity provider owns the credentials; this row carries the local
// profile and role tag.
type StaffUser struct {
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	Username  string    `db:"username" json:"username"`
	FullName  string    `db:"full_name" json:"full_name"`
	Phone     string    `db:"phone" json:"phone"`
	Role      UserRole  `db:"role" json:"role"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// StaffFilter captures filtering criteria for listing staff users.
type StaffFilter struct {
	Role     *UserRole
	Active   *bool
	Search   string
	Page     int
	PageSize int
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}

// NewPagination derives the pagination block, computing total pages as the
// ceiling of count over size.
func NewPagination(page, size, total int) *Pagination {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = 10
	}
	pages := total / size
	if total%size != 0 {
		pages++
	}
	return &Pagination{Page: page, PageSize: size, TotalCount: total, TotalPages: pages}
}
