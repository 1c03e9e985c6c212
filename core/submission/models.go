package submission

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/coursework/core"
	"github.com/trezcool/coursework/core/progress"
)

var (
	// errors
	ErrNotFound        = core.NewError(core.KindNotFound, "not_found", "submission", "submission not found")
	ErrEmptySubmission = core.NewError(core.KindInvalidInput, "empty_submission", "content", "a submission needs content or a file reference")
	ErrDeadlinePassed  = core.NewError(core.KindDeadlinePassed, "deadline_passed", "assignment", "the assignment deadline has passed")
	ErrInvalidGrade    = core.NewError(core.KindInvalidInput, "invalid_grade", "grade", "grade must be a whole number between 0 and 100")
)

type (
	// Submission is the live work of a student for an assignment. There is at most one per pair.
	Submission struct {
		ID           string      `json:"id"`
		StudentID    string      `json:"student_id"`
		AssignmentID string      `json:"assignment_id"`
		Content      string      `json:"content"`
		FileRef      string      `json:"file_ref"`
		Grade        null.Int    `json:"grade"`
		Feedback     null.String `json:"feedback"`
		GradedBy     null.String `json:"graded_by"`
		GradedAt     null.Time   `json:"graded_at"`
		SubmittedAt  time.Time   `json:"submitted_at"` // UTC
	}

	// Grade is one entry of the grade history of a (student, assignment) pair.
	Grade struct {
		ID           string    `json:"id"`
		SubmissionID string    `json:"submission_id"`
		StudentID    string    `json:"student_id"`
		AssignmentID string    `json:"assignment_id"`
		Grade        int       `json:"grade"`
		Feedback     string    `json:"feedback"`
		GradedBy     string    `json:"graded_by"`
		GradedAt     time.Time `json:"graded_at"` // UTC
	}

	NewSubmission struct {
		Content string `json:"content"`
		FileRef string `json:"file_ref" validate:"omitempty,max=1024,fileref"`
	}

	GradeSubmission struct {
		Grade    *float64 `json:"grade"`
		Feedback string   `json:"feedback" validate:"max=10000"`
	}

	SubmitResult struct {
		SubmissionID string          `json:"submission_id"`
		Submission   Submission      `json:"submission"`
		Progress     progress.Result `json:"progress"`
	}

	// Detail is a student's live submission, if any, with the full grade history.
	Detail struct {
		Submission *Submission `json:"submission"`
		Grades     []Grade     `json:"grades"`
	}
)

// IsEmpty reports whether ns carries neither content nor a file reference.
func (ns NewSubmission) IsEmpty() bool {
	return core.CleanString(ns.Content) == "" && core.CleanString(ns.FileRef) == ""
}

// IntegralGrade returns the grade as an int if it is a whole number in [0, 100].
func (gs GradeSubmission) IntegralGrade() (int, bool) {
	if gs.Grade == nil {
		return 0, false
	}
	g := *gs.Grade
	if g < 0 || g > 100 || g != float64(int(g)) {
		return 0, false
	}
	return int(g), true
}
