package sqlxrepos

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/coursework/core"
	"github.com/trezcool/coursework/core/quiz"
)

type quizRepository struct {
	repository
}

var _ quiz.Repository = (*quizRepository)(nil) // interface compliance check

func NewQuizRepository(exec core.DBExecutor) *quizRepository {
	return &quizRepository{repository{exec: exec}}
}

type attemptRow struct {
	ID           string    `db:"id"`
	StudentID    string    `db:"student_id"`
	QuizID       string    `db:"quiz_id"`
	AttemptNo    int       `db:"attempt_no"`
	Score        int       `db:"score"`
	EarnedPoints int       `db:"earned_points"`
	TotalPoints  int       `db:"total_points"`
	Passed       bool      `db:"passed"`
	Answers      string    `db:"answers"` // JSON
	CompletedAt  time.Time `db:"completed_at"`
}

func (repo quizRepository) boil(att quiz.Attempt) (attemptRow, error) {
	answers := att.Answers
	if answers == nil {
		answers = []quiz.Answer{}
	}
	data, err := json.Marshal(answers)
	if err != nil {
		return attemptRow{}, errors.Wrap(err, "encoding answers")
	}
	return attemptRow{
		ID:           att.ID,
		StudentID:    att.StudentID,
		QuizID:       att.QuizID,
		AttemptNo:    att.AttemptNo,
		Score:        att.Score,
		EarnedPoints: att.EarnedPoints,
		TotalPoints:  att.TotalPoints,
		Passed:       att.Passed,
		Answers:      string(data),
		CompletedAt:  att.CompletedAt.UTC(),
	}, nil
}

func (repo quizRepository) unboil(row attemptRow) (quiz.Attempt, error) {
	var answers []quiz.Answer
	if err := json.Unmarshal([]byte(row.Answers), &answers); err != nil {
		return quiz.Attempt{}, errors.Wrapf(err, "decoding answers of attempt %s", row.ID)
	}
	return quiz.Attempt{
		ID:           row.ID,
		StudentID:    row.StudentID,
		QuizID:       row.QuizID,
		AttemptNo:    row.AttemptNo,
		Score:        row.Score,
		EarnedPoints: row.EarnedPoints,
		TotalPoints:  row.TotalPoints,
		Passed:       row.Passed,
		Answers:      answers,
		CompletedAt:  row.CompletedAt.UTC(),
	}, nil
}

func (repo quizRepository) CountAttempts(ctx context.Context, studentID, quizID string, exec ...core.DBExecutor) (int, error) {
	var n int
	err := get(ctx, repo.getExec(exec), &n,
		`SELECT COUNT(*) FROM quiz_attempts WHERE student_id = ? AND quiz_id = ?`, studentID, quizID)
	return n, errors.Wrap(err, "counting quiz attempts")
}

func (repo quizRepository) CreateAttempt(ctx context.Context, att quiz.Attempt, exec ...core.DBExecutor) (quiz.Attempt, error) {
	att.ID = uuid.New().String()
	row, err := repo.boil(att)
	if err != nil {
		return quiz.Attempt{}, err
	}
	_, err = execute(ctx, repo.getExec(exec),
		`INSERT INTO quiz_attempts
		(id, student_id, quiz_id, attempt_no, score, earned_points, total_points, passed, answers, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.ID, row.StudentID, row.QuizID, row.AttemptNo, row.Score,
		row.EarnedPoints, row.TotalPoints, row.Passed, row.Answers, row.CompletedAt)
	if err != nil {
		if isUniqueViolation(err) {
			// another transaction numbered the same attempt
			return quiz.Attempt{}, core.ErrTxConflict
		}
		return quiz.Attempt{}, errors.Wrap(err, "inserting quiz attempt")
	}
	return repo.unboil(row)
}

func (repo quizRepository) QueryAttempts(ctx context.Context, studentID, quizID string, exec ...core.DBExecutor) ([]quiz.Attempt, error) {
	var rows []attemptRow
	err := selectAll(ctx, repo.getExec(exec), &rows,
		`SELECT id, student_id, quiz_id, attempt_no, score, earned_points, total_points, passed, answers, completed_at
		FROM quiz_attempts WHERE student_id = ? AND quiz_id = ? ORDER BY attempt_no DESC`, studentID, quizID)
	if err != nil {
		return nil, errors.Wrap(err, "querying quiz attempts")
	}
	attempts := make([]quiz.Attempt, 0, len(rows))
	for _, r := range rows {
		att, err := repo.unboil(r)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, att)
	}
	return attempts, nil
}

func (repo quizRepository) CountPassedQuizzes(ctx context.Context, studentID string, quizIDs []string, exec ...core.DBExecutor) (int, error) {
	n, err := countIn(ctx, repo.getExec(exec),
		`SELECT COUNT(DISTINCT a.quiz_id) FROM quiz_attempts a JOIN quizzes q ON q.id = a.quiz_id
		WHERE a.student_id = ? AND a.quiz_id IN (?) AND a.score >= q.passing_score`,
		studentID, quizIDs)
	return n, errors.Wrap(err, "counting passed quizzes")
}
