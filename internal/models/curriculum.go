package models

import "time"

// CurriculumChecklist is one canonical required course for a
// (course, major, year level, semester) combination. Static reference data
// seeded once per curriculum revision.
type CurriculumChecklist struct {
	ID          string    `db:"id" json:"id"`
	Course      string    `db:"course" json:"course"`
	Major       string    `db:"major" json:"major"`
	YearLevel   int       `db:"year_level" json:"year_level"`
	Semester    Semester  `db:"semester" json:"semester"`
	CourseCode  string    `db:"course_code" json:"course_code"`
	CourseTitle string    `db:"course_title" json:"course_title"`
	CreditUnit  float64   `db:"credit_unit" json:"credit_unit"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ChecklistFilter scopes checklist queries.
type ChecklistFilter struct {
	Course    string
	Major     string
	YearLevel int
	Semester  Semester
	Page      int
	PageSize  int
}

// SubjectOffering activates a checklist entry for a specific academic term.
// ViaOverride marks petitioned offerings seeded outside the row's own
// semester.
type SubjectOffering struct {
	ID           string    `db:"id" json:"id"`
	ChecklistID  string    `db:"checklist_id" json:"checklist_id"`
	AcademicYear string    `db:"academic_year" json:"academic_year"`
	Semester     Semester  `db:"semester" json:"semester"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	ViaOverride  bool      `db:"via_override" json:"via_override"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// OfferingDetail joins an offering with its checklist row for listings.
type OfferingDetail struct {
	SubjectOffering
	Course      string  `db:"course" json:"course"`
	Major       string  `db:"major" json:"major"`
	YearLevel   int     `db:"year_level" json:"year_level"`
	CourseCode  string  `db:"course_code" json:"course_code"`
	CourseTitle string  `db:"course_title" json:"course_title"`
	CreditUnit  float64 `db:"credit_unit" json:"credit_unit"`
}

// SeedReport summarises one seeding run.
type SeedReport struct {
	AcademicYear    string   `json:"academic_year"`
	Semester        Semester `json:"semester"`
	Offered         int      `json:"offered"`
	OfferedOverride int      `json:"offered_via_override"`
	AlreadyExists   int      `json:"already_exists"`
	Skipped         int      `json:"skipped"`
}
