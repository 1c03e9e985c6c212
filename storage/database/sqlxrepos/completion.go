package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/coursework/core"
	"github.com/trezcool/coursework/core/completion"
)

type completionRepository struct {
	repository
}

var _ completion.Repository = (*completionRepository)(nil) // interface compliance check

func NewCompletionRepository(exec core.DBExecutor) *completionRepository {
	return &completionRepository{repository{exec: exec}}
}

func (repo completionRepository) CreateCompletion(ctx context.Context, c completion.LessonCompletion, exec ...core.DBExecutor) (bool, error) {
	n, err := execute(ctx, repo.getExec(exec),
		`INSERT INTO lesson_completions (student_id, lesson_id, completed_at) VALUES (?, ?, ?)
		ON CONFLICT (student_id, lesson_id) DO NOTHING`,
		c.StudentID, c.LessonID, c.CompletedAt.UTC())
	if err != nil {
		return false, errors.Wrap(err, "inserting lesson completion")
	}
	return n > 0, nil
}

func (repo completionRepository) DeleteCompletion(ctx context.Context, studentID, lessonID string, exec ...core.DBExecutor) (bool, error) {
	n, err := execute(ctx, repo.getExec(exec),
		`DELETE FROM lesson_completions WHERE student_id = ? AND lesson_id = ?`, studentID, lessonID)
	if err != nil {
		return false, errors.Wrap(err, "deleting lesson completion")
	}
	return n > 0, nil
}

func (repo completionRepository) CountCompletedLessons(ctx context.Context, studentID string, lessonIDs []string, exec ...core.DBExecutor) (int, error) {
	n, err := countIn(ctx, repo.getExec(exec),
		`SELECT COUNT(DISTINCT lesson_id) FROM lesson_completions WHERE student_id = ? AND lesson_id IN (?)`,
		studentID, lessonIDs)
	return n, errors.Wrap(err, "counting lesson completions")
}
