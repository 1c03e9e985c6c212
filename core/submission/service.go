package submission

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/coursework/core"
	"github.com/trezcool/coursework/core/course"
	"github.com/trezcool/coursework/core/progress"
)

type (
	Repository interface {
		progress.SubmissionCounter

		// UpsertSubmission replaces the live submission of the pair, resetting its current grade.
		UpsertSubmission(ctx context.Context, sub Submission, exec ...core.DBExecutor) (Submission, error)
		GetSubmission(ctx context.Context, id string, exec ...core.DBExecutor) (Submission, error)
		FindSubmission(ctx context.Context, studentID, assignmentID string, exec ...core.DBExecutor) (Submission, error)
		// DeleteSubmission reports whether a row was deleted.
		DeleteSubmission(ctx context.Context, studentID, assignmentID string, exec ...core.DBExecutor) (bool, error)
		// GradeSubmission sets the current grade of the submission and appends g to the history.
		GradeSubmission(ctx context.Context, g Grade, exec ...core.DBExecutor) (Submission, error)
		QueryGrades(ctx context.Context, studentID, assignmentID string, exec ...core.DBExecutor) ([]Grade, error)
	}

	// Service is the Submission Manager.
	Service interface {
		Submit(ctx context.Context, actor core.Actor, assignmentID string, ns NewSubmission) (SubmitResult, error)
		Delete(ctx context.Context, actor core.Actor, assignmentID string) (progress.Result, error)
		Grade(ctx context.Context, actor core.Actor, submissionID string, gs GradeSubmission) (Submission, error)
		// Get returns the submission of studentID (the actor when empty) with its grade history.
		Get(ctx context.Context, actor core.Actor, assignmentID, studentID string) (Detail, error)
	}

	service struct {
		repo     Repository
		courses  course.Reader
		agg      *progress.Aggregator
		validate *validator.Validate
	}
)

var _ Service = (*service)(nil) // interface compliance check

func NewService(repo Repository, courses course.Reader, agg *progress.Aggregator, validate *validator.Validate) Service {
	return &service{repo: repo, courses: courses, agg: agg, validate: validate}
}

func (svc *service) Submit(ctx context.Context, actor core.Actor, assignmentID string, ns NewSubmission) (SubmitResult, error) {
	if err := ns.Validate(svc.validate); err != nil {
		return SubmitResult{}, err
	}
	asg, err := svc.courses.GetAssignment(ctx, assignmentID)
	if err != nil {
		return SubmitResult{}, err
	}
	if asg.DeadlinePassed(core.Now()) {
		return SubmitResult{}, ErrDeadlinePassed.WithDetail("deadline was " + asg.Deadline.Format(time.RFC3339))
	}

	var (
		sub Submission
		res progress.Result
	)
	err = svc.agg.WithinTx(ctx, func(tx core.DBTransactor) error {
		enr, err := svc.agg.Lock(ctx, actor.ID, asg.CourseID, tx)
		if err != nil {
			return err
		}
		sub, err = svc.repo.UpsertSubmission(ctx, Submission{
			StudentID:    actor.ID,
			AssignmentID: asg.ID,
			Content:      ns.Content,
			FileRef:      ns.FileRef,
			SubmittedAt:  core.Now(),
		}, tx)
		if err != nil {
			return err
		}
		res, err = svc.agg.RecomputeLocked(ctx, enr, sub.SubmittedAt, tx)
		return err
	})
	if err != nil {
		return SubmitResult{}, err
	}

	svc.agg.AfterCommit(ctx, actor, res)
	return SubmitResult{SubmissionID: sub.ID, Submission: sub, Progress: res}, nil
}

func (svc *service) Delete(ctx context.Context, actor core.Actor, assignmentID string) (progress.Result, error) {
	asg, err := svc.courses.GetAssignment(ctx, assignmentID)
	if err != nil {
		return progress.Result{}, err
	}
	if asg.DeadlinePassed(core.Now()) {
		return progress.Result{}, ErrDeadlinePassed.WithDetail("deadline was " + asg.Deadline.Format(time.RFC3339))
	}

	var res progress.Result
	err = svc.agg.WithinTx(ctx, func(tx core.DBTransactor) error {
		enr, err := svc.agg.Lock(ctx, actor.ID, asg.CourseID, tx)
		if err != nil {
			return err
		}
		deleted, err := svc.repo.DeleteSubmission(ctx, actor.ID, asg.ID, tx)
		if err != nil {
			return err
		}
		if !deleted {
			return ErrNotFound
		}
		res, err = svc.agg.RecomputeLocked(ctx, enr, core.Now(), tx)
		return err
	})
	if err != nil {
		return progress.Result{}, err
	}
	return res, nil
}

func (svc *service) Grade(ctx context.Context, actor core.Actor, submissionID string, gs GradeSubmission) (Submission, error) {
	if !(actor.IsTeacher() || actor.IsAdmin()) {
		return Submission{}, core.ErrForbidden
	}
	if err := gs.Validate(svc.validate); err != nil {
		return Submission{}, err
	}
	grade, _ := gs.IntegralGrade()

	var sub Submission
	err := svc.agg.WithinTx(ctx, func(tx core.DBTransactor) error {
		current, err := svc.repo.GetSubmission(ctx, submissionID, tx)
		if err != nil {
			return err
		}
		if err = svc.checkManager(ctx, actor, current.AssignmentID, tx); err != nil {
			return err
		}
		sub, err = svc.repo.GradeSubmission(ctx, Grade{
			SubmissionID: current.ID,
			StudentID:    current.StudentID,
			AssignmentID: current.AssignmentID,
			Grade:        grade,
			Feedback:     gs.Feedback,
			GradedBy:     actor.ID,
			GradedAt:     core.Now(),
		}, tx)
		return err
	})
	if err != nil {
		return Submission{}, err
	}
	return sub, nil
}

func (svc *service) Get(ctx context.Context, actor core.Actor, assignmentID, studentID string) (Detail, error) {
	asg, err := svc.courses.GetAssignment(ctx, assignmentID)
	if err != nil {
		return Detail{}, err
	}
	studentID = core.CleanString(studentID)
	if studentID == "" {
		studentID = actor.ID
	}
	if studentID != actor.ID {
		if err = svc.checkManager(ctx, actor, asg.ID); err != nil {
			return Detail{}, err
		}
	}

	var detail Detail
	sub, err := svc.repo.FindSubmission(ctx, studentID, asg.ID)
	switch {
	case err == nil:
		detail.Submission = &sub
	case !errors.Is(err, ErrNotFound):
		return Detail{}, err
	}
	if detail.Grades, err = svc.repo.QueryGrades(ctx, studentID, asg.ID); err != nil {
		return Detail{}, err
	}
	if detail.Submission == nil && len(detail.Grades) == 0 {
		return Detail{}, ErrNotFound
	}
	return detail, nil
}

// checkManager fails with core.ErrForbidden unless actor is the instructor of the assignment's course or an admin.
func (svc *service) checkManager(ctx context.Context, actor core.Actor, assignmentID string, exec ...core.DBExecutor) error {
	asg, err := svc.courses.GetAssignment(ctx, assignmentID, exec...)
	if err != nil {
		return err
	}
	crs, err := svc.courses.GetCourse(ctx, asg.CourseID, exec...)
	if err != nil {
		return err
	}
	if !course.CanManage(actor, crs) {
		return core.ErrForbidden
	}
	return nil
}
