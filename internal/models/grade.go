package models

import "time"

// Semester enumerates academic terms within a school year.
type Semester string

const (
	SemesterFirst  Semester = "FIRST"
	SemesterSecond Semester = "SECOND"
	SemesterSummer Semester = "SUMMER"
)

// ValidSemester reports whether the value is a known term.
func ValidSemester(s Semester) bool {
	switch s {
	case SemesterFirst, SemesterSecond, SemesterSummer:
		return true
	}
	return false
}

// Grade status codes carried in the grade column alongside numeric values.
const (
	GradeIncomplete = "INC"
	GradeDropped    = "DRP"
)

// Grade is one course attempt for a student. The grade column holds either
// a numeric string ("1.75") or a status code (INC/DRP). A re-exam value,
// when present, supersedes the primary grade everywhere it is read.
type Grade struct {
	ID            string    `db:"id" json:"id"`
	StudentID     string    `db:"student_id" json:"student_id"`
	CourseCode    string    `db:"course_code" json:"course_code"`
	CourseTitle   string    `db:"course_title" json:"course_title"`
	CreditUnit    float64   `db:"credit_unit" json:"credit_unit"`
	Grade         string    `db:"grade" json:"grade"`
	ReExam        *string   `db:"re_exam" json:"re_exam,omitempty"`
	Remarks       string    `db:"remarks" json:"remarks"`
	Instructor    string    `db:"instructor" json:"instructor"`
	AcademicYear  string    `db:"academic_year" json:"academic_year"`
	Semester      Semester  `db:"semester" json:"semester"`
	AttemptNumber int       `db:"attempt_number" json:"attempt_number"`
	RetakeOf      *string   `db:"retake_of" json:"retake_of,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// EffectiveGrade returns the re-exam value when present, else the primary
// grade.
func (g Grade) EffectiveGrade() string {
	if g.ReExam != nil && *g.ReExam != "" {
		return *g.ReExam
	}
	return g.Grade
}

// GradeFilter scopes grade listings.
type GradeFilter struct {
	StudentID    string
	AcademicYear string
	Semester     Semester
	CourseCode   string
	Page         int
	PageSize     int
}

// GradeSummary is the previous-semester GPA/credit aggregation for one
// student. GPA is formatted to two decimals; "0.00" with zero enrolled
// credits.
type GradeSummary struct {
	StudentID       string   `json:"student_id"`
	AcademicYear    string   `json:"academic_year"`
	Semester        Semester `json:"semester"`
	GPA             string   `json:"gpa"`
	CreditsEnrolled float64  `json:"credits_enrolled"`
	CreditsEarned   float64  `json:"credits_earned"`
	Courses         int      `json:"courses"`
}

// TranscriptTerm groups grade rows under one academic term for print views.
type TranscriptTerm struct {
	AcademicYear string   `json:"academic_year"`
	Semester     Semester `json:"semester"`
	Grades       []Grade  `json:"grades"`
}

// Transcript is the full year→semester grouping for a student.
type Transcript struct {
	StudentID     string           `json:"student_id"`
	StudentNumber string           `json:"student_number"`
	StudentName   string           `json:"student_name"`
	Course        string           `json:"course"`
	Major         string           `json:"major"`
	Terms         []TranscriptTerm `json:"terms"`
}
