package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/coursework/core"
	"github.com/trezcool/coursework/core/course"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestGrade(t *testing.T) {
	q := course.Quiz{Questions: []course.Question{
		{ID: "mc", Kind: course.MultipleChoice, Points: 3, CorrectOption: null.StringFrom("b")},
		{ID: "tf", Kind: course.TrueFalse, Points: 1, CorrectBool: null.BoolFrom(false)},
	}}

	tests := []struct {
		name       string
		answers    []Answer
		wantEarned int
		wantErr    bool
	}{
		{name: "no answers", answers: nil, wantEarned: 0},
		{name: "all right", answers: []Answer{{QuestionID: "mc", Option: strPtr("b")}, {QuestionID: "tf", Value: boolPtr(false)}}, wantEarned: 4},
		{name: "all wrong", answers: []Answer{{QuestionID: "mc", Option: strPtr("a")}, {QuestionID: "tf", Value: boolPtr(true)}}, wantEarned: 0},
		{name: "exact match only", answers: []Answer{{QuestionID: "mc", Option: strPtr("B")}}, wantEarned: 0},
		{name: "partial", answers: []Answer{{QuestionID: "mc", Option: strPtr("b")}}, wantEarned: 3},
		{name: "unknown question", answers: []Answer{{QuestionID: "lol", Option: strPtr("b")}}, wantErr: true},
		{name: "duplicate question", answers: []Answer{{QuestionID: "tf", Value: boolPtr(false)}, {QuestionID: "tf", Value: boolPtr(false)}}, wantErr: true},
		{name: "bool for multiple choice", answers: []Answer{{QuestionID: "mc", Value: boolPtr(true)}}, wantErr: true},
		{name: "option for true/false", answers: []Answer{{QuestionID: "tf", Option: strPtr("false")}}, wantErr: true},
		{name: "both shapes", answers: []Answer{{QuestionID: "tf", Option: strPtr("x"), Value: boolPtr(false)}}, wantErr: true},
		{name: "empty answer", answers: []Answer{{QuestionID: "tf"}}, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			earned, total, err := Grade(q, tc.answers)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrMalformedAnswers)
				assert.Equal(t, core.KindInvalidInput, core.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantEarned, earned)
			assert.Equal(t, 4, total)
		})
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		earned, total, want int
	}{
		{0, 0, 0},
		{0, 20, 0},
		{9, 20, 45},
		{15, 20, 75},
		{20, 20, 100},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Score(tc.earned, tc.total), "Score(%d, %d)", tc.earned, tc.total)
	}
}
