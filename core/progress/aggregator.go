package progress

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/coursework/core"
	"github.com/trezcool/coursework/core/course"
	"github.com/trezcool/coursework/core/enrollment"
)

const courseCompletedTemplate = "course_completed"

type (
	LessonCounter interface {
		// CountCompletedLessons counts the distinct lessons among lessonIDs that student marked complete.
		CountCompletedLessons(ctx context.Context, studentID string, lessonIDs []string, exec ...core.DBExecutor) (int, error)
	}

	QuizCounter interface {
		// CountPassedQuizzes counts the distinct quizzes among quizIDs with at least one attempt
		// of student scoring at or above the quiz's passing score.
		CountPassedQuizzes(ctx context.Context, studentID string, quizIDs []string, exec ...core.DBExecutor) (int, error)
	}

	SubmissionCounter interface {
		// CountSubmittedAssignments counts the assignments among assignmentIDs with a live submission of student.
		CountSubmittedAssignments(ctx context.Context, studentID string, assignmentIDs []string, exec ...core.DBExecutor) (int, error)
	}

	Deps struct {
		DB          core.DB
		Courses     course.Reader
		Enrollments enrollment.Repository
		Lessons     LessonCounter
		Quizzes     QuizCounter
		Submissions SubmissionCounter
		Mail        core.EmailService
		Logger      core.Logger
		Conf        *core.Config
	}

	// Aggregator reconciles a student's completion facts into the progress of their enrollment.
	Aggregator struct {
		db          core.DB
		courses     course.Reader
		enrollments enrollment.Repository
		lessons     LessonCounter
		quizzes     QuizCounter
		submissions SubmissionCounter
		mail        core.EmailService
		logger      core.Logger
		maxAttempts int
	}
)

func NewAggregator(deps Deps) *Aggregator {
	maxAttempts := 1
	if deps.Conf != nil && deps.Conf.Progress.MaxTxAttempts > 0 {
		maxAttempts = deps.Conf.Progress.MaxTxAttempts
	}
	return &Aggregator{
		db:          deps.DB,
		courses:     deps.Courses,
		enrollments: deps.Enrollments,
		lessons:     deps.Lessons,
		quizzes:     deps.Quizzes,
		submissions: deps.Submissions,
		mail:        deps.Mail,
		logger:      deps.Logger,
		maxAttempts: maxAttempts,
	}
}

// WithinTx runs fn in a transaction, rerunning it on optimistic version conflicts.
func (agg *Aggregator) WithinTx(ctx context.Context, fn func(tx core.DBTransactor) error) error {
	return core.WithinTx(ctx, agg.db, agg.maxAttempts, fn)
}

// Lock takes the exclusive lock on the enrollment of student in course for the rest of tx.
// It must run before the triggering fact is mutated.
func (agg *Aggregator) Lock(ctx context.Context, studentID, courseID string, tx core.DBTransactor) (enrollment.Enrollment, error) {
	enr, err := agg.enrollments.LockEnrollment(ctx, studentID, courseID, tx)
	if err != nil {
		if errors.Is(err, enrollment.ErrNotFound) {
			return enrollment.Enrollment{}, enrollment.ErrNotEnrolled
		}
		return enrollment.Enrollment{}, err
	}
	return enr, nil
}

// Compute derives the progress of enr from the stored facts without writing anything.
func (agg *Aggregator) Compute(ctx context.Context, enr enrollment.Enrollment, exec ...core.DBExecutor) (Snapshot, error) {
	structure, err := agg.courses.GetStructure(ctx, enr.CourseID, exec...)
	if err != nil {
		return Snapshot{}, errors.Wrap(err, "reading course structure")
	}
	items := structure.Items()

	lessons, err := agg.lessons.CountCompletedLessons(ctx, enr.StudentID, items.LessonIDs, exec...)
	if err != nil {
		return Snapshot{}, errors.Wrap(err, "counting completed lessons")
	}
	quizzes, err := agg.quizzes.CountPassedQuizzes(ctx, enr.StudentID, items.QuizIDs, exec...)
	if err != nil {
		return Snapshot{}, errors.Wrap(err, "counting passed quizzes")
	}
	assignments, err := agg.submissions.CountSubmittedAssignments(ctx, enr.StudentID, items.AssignmentIDs, exec...)
	if err != nil {
		return Snapshot{}, errors.Wrap(err, "counting submitted assignments")
	}

	completed := lessons + quizzes + assignments
	total := items.Total()
	return Snapshot{
		CompletedItems: completed,
		TotalItems:     total,
		Progress:       Percentage(completed, total),
	}, nil
}

// RecomputeLocked recomputes and persists the progress of enr, which must have been locked in tx.
// at is the time of the fact that triggered the recompute. CompletedAt is set to it
// the first time progress reaches 100 and is never cleared.
func (agg *Aggregator) RecomputeLocked(ctx context.Context, enr enrollment.Enrollment, at time.Time, tx core.DBTransactor) (Result, error) {
	snap, err := agg.Compute(ctx, enr, tx)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		EnrollmentID:     enr.ID,
		CourseID:         enr.CourseID,
		PreviousProgress: enr.Progress,
		Progress:         snap.Progress,
		CompletedItems:   snap.CompletedItems,
		TotalItems:       snap.TotalItems,
	}

	at = at.UTC()
	enr.Progress = snap.Progress
	enr.UpdatedAt = at
	if snap.Progress == 100 && !enr.CompletedAt.Valid {
		enr.CompletedAt.SetValid(at)
		res.JustCompleted = true
	}

	if _, err = agg.enrollments.UpdateProgress(ctx, enr, tx); err != nil {
		return Result{}, errors.Wrap(err, "persisting progress")
	}
	res.CompletedAt = enr.CompletedAt
	return res, nil
}

// Recompute locks the enrollment by id and recomputes it in its own transaction.
func (agg *Aggregator) Recompute(ctx context.Context, enrollmentID string) (Result, error) {
	var res Result
	err := agg.WithinTx(ctx, func(tx core.DBTransactor) error {
		enr, err := agg.enrollments.LockEnrollmentByID(ctx, enrollmentID, tx)
		if err != nil {
			return err
		}
		res, err = agg.RecomputeLocked(ctx, enr, core.Now(), tx)
		return err
	})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

// AfterCommit runs the side effects of a committed recompute. It never fails the operation.
func (agg *Aggregator) AfterCommit(ctx context.Context, actor core.Actor, res Result) {
	if !res.JustCompleted {
		return
	}
	agg.logger.Info(
		fmt.Sprintf("enrollment %s completed", res.EnrollmentID),
		map[string]interface{}{"course_id": res.CourseID, "completed_at": res.CompletedAt.Time},
		actor,
	)
	if actor.Email == "" || agg.mail == nil {
		return
	}

	crs, err := agg.courses.GetCourse(ctx, res.CourseID)
	if err != nil {
		agg.logger.Error("reading completed course", err, actor)
		return
	}
	agg.mail.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: actor.Name, Address: actor.Email}},
		Subject:      fmt.Sprintf("You completed %s", crs.Title),
		TemplateName: courseCompletedTemplate,
		TemplateData: map[string]interface{}{
			"StudentName": actor.Name,
			"CourseID":    crs.ID,
			"CourseTitle": crs.Title,
		},
	})
}
