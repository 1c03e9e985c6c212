package quiz

import (
	"math"

	"github.com/trezcool/coursework/core/course"
)

// Grade checks answers against the quiz's key. Each exact match earns its question's points;
// unanswered questions earn nothing. A malformed answer set fails as a whole.
func Grade(q course.Quiz, answers []Answer) (earned, total int, err error) {
	questions := make(map[string]course.Question, len(q.Questions))
	for _, qn := range q.Questions {
		questions[qn.ID] = qn
		total += qn.Points
	}

	seen := make(map[string]bool, len(answers))
	for _, ans := range answers {
		qn, ok := questions[ans.QuestionID]
		if !ok {
			return 0, 0, ErrMalformedAnswers.WithDetail("unknown question " + ans.QuestionID)
		}
		if seen[ans.QuestionID] {
			return 0, 0, ErrMalformedAnswers.WithDetail("question " + ans.QuestionID + " answered twice")
		}
		seen[ans.QuestionID] = true

		switch qn.Kind {
		case course.MultipleChoice:
			if ans.Option == nil || ans.Value != nil {
				return 0, 0, ErrMalformedAnswers.WithDetail("question " + ans.QuestionID + " expects an option")
			}
			if qn.CorrectOption.Valid && *ans.Option == qn.CorrectOption.String {
				earned += qn.Points
			}
		case course.TrueFalse:
			if ans.Value == nil || ans.Option != nil {
				return 0, 0, ErrMalformedAnswers.WithDetail("question " + ans.QuestionID + " expects true or false")
			}
			if qn.CorrectBool.Valid && *ans.Value == qn.CorrectBool.Bool {
				earned += qn.Points
			}
		default:
			return 0, 0, ErrMalformedAnswers.WithDetail("question " + ans.QuestionID + " has an unknown kind")
		}
	}
	return earned, total, nil
}

// Score returns round(100 * earned / total), or 0 when the quiz carries no points.
func Score(earned, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(earned) / float64(total)))
}
