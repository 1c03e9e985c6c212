package progress

import (
	"math"

	"github.com/volatiletech/null/v8"
)

// Result is what every mutating operation reports about the enrollment it touched.
type Result struct {
	EnrollmentID     string    `json:"enrollment_id"`
	CourseID         string    `json:"course_id"`
	PreviousProgress int       `json:"previous_progress"`
	Progress         int       `json:"progress"`
	CompletedItems   int       `json:"completed_items"`
	TotalItems       int       `json:"total_items"`
	CompletedAt      null.Time `json:"completed_at"`
	// JustCompleted is true when this recompute set CompletedAt for the first time.
	JustCompleted bool `json:"just_completed"`
}

// Snapshot is a computed, not yet persisted, progress value.
type Snapshot struct {
	CompletedItems int
	TotalItems     int
	Progress       int
}

// Percentage returns round(100 * completed / total) clamped to [0, 100], or 0 for an empty course.
func Percentage(completed, total int) int {
	if total <= 0 {
		return 0
	}
	pct := int(math.Round(100 * float64(completed) / float64(total)))
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
