package quiz

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/coursework/core"
	"github.com/trezcool/coursework/core/course"
	"github.com/trezcool/coursework/core/progress"
)

type (
	Repository interface {
		progress.QuizCounter

		CountAttempts(ctx context.Context, studentID, quizID string, exec ...core.DBExecutor) (int, error)
		CreateAttempt(ctx context.Context, att Attempt, exec ...core.DBExecutor) (Attempt, error)
		// QueryAttempts returns the attempts of student on quiz, newest first.
		QueryAttempts(ctx context.Context, studentID, quizID string, exec ...core.DBExecutor) ([]Attempt, error)
	}

	// Service is the Quiz Grader.
	Service interface {
		Submit(ctx context.Context, actor core.Actor, quizID string, na NewAttempt) (SubmitResult, error)
		// Results lists the attempts of studentID (the actor when empty), newest first.
		Results(ctx context.Context, actor core.Actor, quizID, studentID string) ([]Attempt, error)
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

func (svc *service) Submit(ctx context.Context, actor core.Actor, quizID string, na NewAttempt) (SubmitResult, error) {
	if err := na.Validate(svc.validate); err != nil {
		return SubmitResult{}, err
	}
	q, err := svc.courses.GetQuiz(ctx, quizID)
	if err != nil {
		return SubmitResult{}, err
	}
	earned, total, err := Grade(q, na.Answers)
	if err != nil {
		return SubmitResult{}, err
	}
	score := Score(earned, total)

	var (
		att Attempt
		res progress.Result
	)
	err = svc.agg.WithinTx(ctx, func(tx core.DBTransactor) error {
		enr, err := svc.agg.Lock(ctx, actor.ID, q.CourseID, tx)
		if err != nil {
			return err
		}

		// numbering is race free: the enrollment lock serializes attempts of the same student
		count, err := svc.repo.CountAttempts(ctx, actor.ID, q.ID, tx)
		if err != nil {
			return err
		}
		if q.MaxAttempts.Valid && count >= q.MaxAttempts.Int {
			return ErrMaxAttemptsReached
		}

		att, err = svc.repo.CreateAttempt(ctx, Attempt{
			StudentID:    actor.ID,
			QuizID:       q.ID,
			AttemptNo:    count + 1,
			Score:        score,
			EarnedPoints: earned,
			TotalPoints:  total,
			Passed:       score >= q.PassingScore,
			Answers:      na.Answers,
			CompletedAt:  core.Now(),
		}, tx)
		if err != nil {
			return err
		}

		res, err = svc.agg.RecomputeLocked(ctx, enr, att.CompletedAt, tx)
		return err
	})
	if err != nil {
		return SubmitResult{}, err
	}

	svc.agg.AfterCommit(ctx, actor, res)
	return SubmitResult{
		AttemptID: att.ID,
		AttemptNo: att.AttemptNo,
		Score:     att.Score,
		Passed:    att.Passed,
		Progress:  res,
	}, nil
}

func (svc *service) Results(ctx context.Context, actor core.Actor, quizID, studentID string) ([]Attempt, error) {
	q, err := svc.courses.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	studentID = core.CleanString(studentID)
	if studentID == "" {
		studentID = actor.ID
	}
	if studentID != actor.ID {
		crs, err := svc.courses.GetCourse(ctx, q.CourseID)
		if err != nil {
			return nil, err
		}
		if !course.CanManage(actor, crs) {
			return nil, core.ErrForbidden
		}
	}
	return svc.repo.QueryAttempts(ctx, studentID, q.ID)
}
