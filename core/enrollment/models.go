package enrollment

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/coursework/core"
)

var (
	// errors
	ErrNotFound    = core.NewError(core.KindNotFound, "not_found", "enrollment", "enrollment not found")
	ErrNotEnrolled = core.NewError(core.KindNotFound, "not_enrolled", "enrollment", "student is not enrolled in this course")
	ErrExists      = core.NewError(core.KindConflict, "already_enrolled", "enrollment", "student is already enrolled in this course")
)

// Enrollment links one student to one course and carries the derived progress.
type Enrollment struct {
	ID          string    `json:"id"`
	StudentID   string    `json:"student_id"`
	CourseID    string    `json:"course_id"`
	Progress    int       `json:"progress"` // 0..100
	Version     int       `json:"-"`
	EnrolledAt  time.Time `json:"enrolled_at"` // UTC
	CompletedAt null.Time `json:"completed_at"`
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

// IsCompleted reports whether the student ever reached 100%, even if progress later dropped.
func (e Enrollment) IsCompleted() bool {
	return e.CompletedAt.Valid
}

// NewEnrollment contains information needed to enroll a student.
type NewEnrollment struct {
	StudentID string `json:"student_id" validate:"required"`
	CourseID  string `json:"course_id" validate:"required"`
}

// Orderings are the fields enrollments can be sorted by.
var Orderings = map[string]bool{
	"enrolled_at": true, "updated_at": true, "progress": true, "student_id": true, "course_id": true,
}

// QueryFilter narrows Repository.QueryEnrollments. Empty fields match everything.
type QueryFilter struct {
	StudentID string
	CourseID  string
}
