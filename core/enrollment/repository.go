package enrollment

import (
	"context"

	"github.com/trezcool/coursework/core"
)

// Repository is the Enrollment Store.
type Repository interface {
	CreateEnrollment(ctx context.Context, enr Enrollment, exec ...core.DBExecutor) (Enrollment, error)
	GetEnrollment(ctx context.Context, id string, exec ...core.DBExecutor) (Enrollment, error)
	FindEnrollment(ctx context.Context, studentID, courseID string, exec ...core.DBExecutor) (Enrollment, error)
	QueryEnrollments(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Enrollment, error)

	// LockEnrollment loads the enrollment of student in course and holds an exclusive lock on it
	// until exec's transaction ends. Returns ErrNotFound when there is none.
	LockEnrollment(ctx context.Context, studentID, courseID string, exec core.DBTransactor) (Enrollment, error)
	// LockEnrollmentByID is LockEnrollment by enrollment id.
	LockEnrollmentByID(ctx context.Context, id string, exec core.DBTransactor) (Enrollment, error)

	// UpdateProgress writes enr's progress and completed-at if its version is still the stored one,
	// and bumps the version. Returns core.ErrTxConflict when the row moved on.
	UpdateProgress(ctx context.Context, enr Enrollment, exec ...core.DBExecutor) (Enrollment, error)
}
