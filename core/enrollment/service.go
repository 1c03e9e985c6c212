package enrollment

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/coursework/core"
)

// Service exposes the enrollment flows the engine owns: reading and development seeding.
// Production enrollments are created by the external enrollment flow.
type Service interface {
	Enroll(ctx context.Context, ne NewEnrollment) (Enrollment, error)
	Get(ctx context.Context, id string) (Enrollment, error)
	Find(ctx context.Context, studentID, courseID string) (Enrollment, error)
	// Query lists enrollments matching filter, by enrollment date unless ordering is given.
	Query(ctx context.Context, filter *QueryFilter, ordering ...core.DBOrdering) ([]Enrollment, error)
}

type service struct {
	repo     Repository
	validate *validator.Validate
}

var _ Service = (*service)(nil) // interface compliance check

func NewService(repo Repository, validate *validator.Validate) Service {
	return &service{repo: repo, validate: validate}
}

func (svc *service) Enroll(ctx context.Context, ne NewEnrollment) (Enrollment, error) {
	if err := ne.Validate(svc.validate); err != nil {
		return Enrollment{}, err
	}
	now := core.Now()
	return svc.repo.CreateEnrollment(ctx, Enrollment{
		StudentID:  ne.StudentID,
		CourseID:   ne.CourseID,
		EnrolledAt: now,
		UpdatedAt:  now,
	})
}

func (svc *service) Get(ctx context.Context, id string) (Enrollment, error) {
	return svc.repo.GetEnrollment(ctx, id)
}

func (svc *service) Find(ctx context.Context, studentID, courseID string) (Enrollment, error) {
	return svc.repo.FindEnrollment(ctx, studentID, courseID)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering ...core.DBOrdering) ([]Enrollment, error) {
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "enrolled_at", Ascending: true}}
	}
	for _, ord := range ordering {
		if !Orderings[ord.Field] {
			return nil, core.NewValidationError(nil, core.FieldError{Field: "ordering", Error: "cannot order by " + ord.Field})
		}
	}
	return svc.repo.QueryEnrollments(ctx, filter, ordering)
}
