package models

import "time"

// StudentStatus classifies the enrollment standing of a student.
type StudentStatus string

const (
	StudentStatusRegular     StudentStatus = "REGULAR"
	StudentStatusIrregular   StudentStatus = "IRREGULAR"
	StudentStatusTransferee  StudentStatus = "TRANSFEREE"
	StudentStatusReturnee    StudentStatus = "RETURNEE"
	StudentStatusGraduated   StudentStatus = "GRADUATED"
	StudentStatusLeaveOfAbs  StudentStatus = "LOA"
	StudentStatusWithdrawn   StudentStatus = "WITHDRAWN"
)

// Student represents a learner registered in the portal. The id is shared
// with the identity-provider account; deleting the row also deletes the
// provider account.
type Student struct {
	ID            string        `db:"id" json:"id"`
	StudentNumber string        `db:"student_number" json:"student_number"`
	Username      string        `db:"username" json:"username"`
	Email         string        `db:"email" json:"email"`
	FirstName     string        `db:"first_name" json:"first_name"`
	MiddleName    string        `db:"middle_name" json:"middle_name"`
	LastName      string        `db:"last_name" json:"last_name"`
	Phone         string        `db:"phone" json:"phone"`
	Address       string        `db:"address" json:"address"`
	Course        string        `db:"course" json:"course"`
	Major         string        `db:"major" json:"major"`
	YearLevel     int           `db:"year_level" json:"year_level"`
	Status        StudentStatus `db:"status" json:"status"`
	IsApproved    bool          `db:"is_approved" json:"is_approved"`
	IsPasswordSet bool          `db:"is_password_set" json:"is_password_set"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}

// StudentFilter encapsulates search parameters for listing students.
type StudentFilter struct {
	Search     string
	Course     string
	YearLevel  int
	IsApproved *bool
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

// ApprovalStatus is the probe payload used by the access gate and the
// pending-approval page.
type ApprovalStatus struct {
	StudentID     string `json:"student_id"`
	IsApproved    bool   `json:"is_approved"`
	IsPasswordSet bool   `json:"is_password_set"`
}

// BulkOutcome reports the result of one item in a best-effort bulk
// operation. Prior successes stay committed when later items fail.
type BulkOutcome struct {
	Ref     string `json:"ref"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// BulkSummary aggregates the per-item outcomes of a bulk operation.
type BulkSummary struct {
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Outcomes  []BulkOutcome `json:"outcomes"`
}
