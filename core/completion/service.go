package completion

import (
	"context"
	"time"

	"github.com/trezcool/coursework/core"
	"github.com/trezcool/coursework/core/course"
	"github.com/trezcool/coursework/core/progress"
)

var (
	// errors
	ErrInvalidContentType = core.NewError(core.KindInvalidInput, "invalid_content_type", "lesson", "quiz and assignment lessons are completed through their own trackers")
	ErrNotCompleted       = core.NewError(core.KindNotFound, "not_completed", "lesson", "lesson is not marked complete")
	ErrIrreversible       = core.NewError(core.KindForbidden, "irreversible", "lesson", "completion of a lesson carrying an assignment cannot be undone")
)

type (
	LessonCompletion struct {
		StudentID   string    `json:"student_id"`
		LessonID    string    `json:"lesson_id"`
		CompletedAt time.Time `json:"completed_at"` // UTC
	}

	Repository interface {
		progress.LessonCounter

		// CreateCompletion inserts c unless the (student, lesson) pair is already complete.
		// Reports whether a row was inserted.
		CreateCompletion(ctx context.Context, c LessonCompletion, exec ...core.DBExecutor) (bool, error)
		// DeleteCompletion reports whether a row was deleted.
		DeleteCompletion(ctx context.Context, studentID, lessonID string, exec ...core.DBExecutor) (bool, error)
	}

	// Service is the Completion Tracker for video and text lessons.
	Service interface {
		MarkComplete(ctx context.Context, actor core.Actor, lessonID string) (progress.Result, error)
		UnmarkComplete(ctx context.Context, actor core.Actor, lessonID string) (progress.Result, error)
	}

	service struct {
		repo    Repository
		courses course.Reader
		agg     *progress.Aggregator
	}
)

var _ Service = (*service)(nil) // interface compliance check

func NewService(repo Repository, courses course.Reader, agg *progress.Aggregator) Service {
	return &service{repo: repo, courses: courses, agg: agg}
}

func (svc *service) MarkComplete(ctx context.Context, actor core.Actor, lessonID string) (progress.Result, error) {
	lesson, err := svc.courses.GetLesson(ctx, lessonID)
	if err != nil {
		return progress.Result{}, err
	}
	switch lesson.ContentType {
	case course.ContentVideo, course.ContentText:
	case course.ContentQuiz, course.ContentAssignment:
		return progress.Result{}, ErrInvalidContentType.WithDetail(lesson.ContentType.String())
	default:
		return progress.Result{}, ErrInvalidContentType.WithDetail("unknown content type")
	}

	var res progress.Result
	err = svc.agg.WithinTx(ctx, func(tx core.DBTransactor) error {
		enr, err := svc.agg.Lock(ctx, actor.ID, lesson.CourseID, tx)
		if err != nil {
			return err
		}
		// a repeated mark is a no-op but still reports the current progress
		now := core.Now()
		if _, err = svc.repo.CreateCompletion(ctx, LessonCompletion{
			StudentID:   actor.ID,
			LessonID:    lesson.ID,
			CompletedAt: now,
		}, tx); err != nil {
			return err
		}
		res, err = svc.agg.RecomputeLocked(ctx, enr, now, tx)
		return err
	})
	if err != nil {
		return progress.Result{}, err
	}

	svc.agg.AfterCommit(ctx, actor, res)
	return res, nil
}

func (svc *service) UnmarkComplete(ctx context.Context, actor core.Actor, lessonID string) (progress.Result, error) {
	lesson, err := svc.courses.GetLesson(ctx, lessonID)
	if err != nil {
		return progress.Result{}, err
	}
	if !lesson.ContentType.DirectlyCompletable() {
		return progress.Result{}, ErrInvalidContentType.WithDetail(lesson.ContentType.String())
	}

	var res progress.Result
	err = svc.agg.WithinTx(ctx, func(tx core.DBTransactor) error {
		enr, err := svc.agg.Lock(ctx, actor.ID, lesson.CourseID, tx)
		if err != nil {
			return err
		}
		if lesson.HasAssignment {
			// only checked for completed lessons: a missing completion reports NotCompleted first
			completed, err := svc.repo.CountCompletedLessons(ctx, actor.ID, []string{lesson.ID}, tx)
			if err != nil {
				return err
			}
			if completed == 0 {
				return ErrNotCompleted
			}
			return ErrIrreversible
		}
		deleted, err := svc.repo.DeleteCompletion(ctx, actor.ID, lesson.ID, tx)
		if err != nil {
			return err
		}
		if !deleted {
			return ErrNotCompleted
		}
		res, err = svc.agg.RecomputeLocked(ctx, enr, core.Now(), tx)
		return err
	})
	if err != nil {
		return progress.Result{}, err
	}
	return res, nil
}
