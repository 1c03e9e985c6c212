package quiz

import (
	"time"

	"github.com/trezcool/coursework/core"
	"github.com/trezcool/coursework/core/progress"
)

var (
	// errors
	ErrMalformedAnswers   = core.NewError(core.KindInvalidInput, "malformed_answers", "answers", "answer set does not match the quiz")
	ErrMaxAttemptsReached = core.NewError(core.KindForbidden, "max_attempts_reached", "quiz", "no attempts left for this quiz")
)

type (
	// Answer is a student's answer to one question. Multiple choice questions take Option,
	// true/false questions take Value.
	Answer struct {
		QuestionID string  `json:"question_id" validate:"required"`
		Option     *string `json:"option,omitempty"`
		Value      *bool   `json:"value,omitempty"`
	}

	// Attempt is one graded submission of a quiz. Attempts are never updated or deleted.
	Attempt struct {
		ID           string    `json:"id"`
		StudentID    string    `json:"student_id"`
		QuizID       string    `json:"quiz_id"`
		AttemptNo    int       `json:"attempt_no"` // 1-based, per student and quiz
		Score        int       `json:"score"`      // 0..100
		EarnedPoints int       `json:"earned_points"`
		TotalPoints  int       `json:"total_points"`
		Passed       bool      `json:"passed"`
		Answers      []Answer  `json:"answers"`
		CompletedAt  time.Time `json:"completed_at"` // UTC
	}

	NewAttempt struct {
		Answers []Answer `json:"answers" validate:"dive"`
	}

	SubmitResult struct {
		AttemptID string          `json:"attempt_id"`
		AttemptNo int             `json:"attempt_no"`
		Score     int             `json:"score"`
		Passed    bool            `json:"passed"`
		Progress  progress.Result `json:"progress"`
	}
)
