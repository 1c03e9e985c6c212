package submission

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGradeSubmission_IntegralGrade(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	tests := []struct {
		name  string
		grade *float64
		want  int
		ok    bool
	}{
		{"missing", nil, 0, false},
		{"zero", f(0), 0, true},
		{"hundred", f(100), 100, true},
		{"whole", f(87), 87, true},
		{"fraction", f(87.5), 0, false},
		{"negative", f(-1), 0, false},
		{"above range", f(101), 0, false},
		{"NaN", f(math.NaN()), 0, false},
		{"infinity", f(math.Inf(1)), 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := GradeSubmission{Grade: tc.grade}.IntegralGrade()
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNewSubmission_IsEmpty(t *testing.T) {
	assert.True(t, NewSubmission{}.IsEmpty())
	assert.True(t, NewSubmission{Content: " \n\t", FileRef: "  "}.IsEmpty())
	assert.False(t, NewSubmission{Content: "essay"}.IsEmpty())
	assert.False(t, NewSubmission{FileRef: "uploads/essay.pdf"}.IsEmpty())
}
