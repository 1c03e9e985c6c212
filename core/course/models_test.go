package course

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/coursework/core"
)

func TestContentType(t *testing.T) {
	tests := []struct {
		name        string
		ct          ContentType
		str         string
		completable bool
	}{
		{"video", ContentVideo, "video", true},
		{"text", ContentText, "text", true},
		{"quiz", ContentQuiz, "quiz", false},
		{"assignment", ContentAssignment, "assignment", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.str, tc.ct.String())
			assert.Equal(t, tc.completable, tc.ct.DirectlyCompletable())

			parsed, err := ParseContentType(tc.str)
			require.NoError(t, err)
			assert.Equal(t, tc.ct, parsed)

			var scanned ContentType
			require.NoError(t, scanned.Scan([]byte(tc.str)))
			assert.Equal(t, tc.ct, scanned)

			val, err := tc.ct.Value()
			require.NoError(t, err)
			assert.Equal(t, tc.str, val)
		})
	}

	t.Run("invalid", func(t *testing.T) {
		_, err := ParseContentType("podcast")
		assert.Error(t, err)

		var ct ContentType
		assert.Error(t, ct.Scan("podcast"))
		assert.Error(t, ct.Scan(42))
		assert.False(t, ct.Valid())
		assert.False(t, ct.DirectlyCompletable())

		_, err = ct.Value()
		assert.Error(t, err)
	})

	t.Run("json", func(t *testing.T) {
		data, err := json.Marshal(Lesson{ID: "l1", ContentType: ContentQuiz})
		require.NoError(t, err)
		assert.Contains(t, string(data), `"content_type":"quiz"`)

		var l Lesson
		require.NoError(t, json.Unmarshal(data, &l))
		assert.Equal(t, ContentQuiz, l.ContentType)

		assert.Error(t, json.Unmarshal([]byte(`{"content_type":"podcast"}`), &l))
	})
}

func TestStructure_Items(t *testing.T) {
	s := Structure{
		Modules: []Module{
			{ID: "m1", Lessons: []Lesson{
				{ID: "l1", ContentType: ContentVideo},
				{ID: "l2", ContentType: ContentText},
				{ID: "l3", ContentType: ContentQuiz},
			}},
			{ID: "m2", Lessons: []Lesson{
				{ID: "l4", ContentType: ContentAssignment},
				{ID: "l5", ContentType: ContentVideo},
			}},
			{ID: "m3"},
		},
		Quizzes:     []Quiz{{ID: "q1", LessonID: "l3"}},
		Assignments: []Assignment{{ID: "a1", LessonID: "l4"}, {ID: "a2", LessonID: "l5"}},
	}

	items := s.Items()
	assert.Equal(t, []string{"l1", "l2", "l5"}, items.LessonIDs)
	assert.Equal(t, []string{"q1"}, items.QuizIDs)
	assert.Equal(t, []string{"a1", "a2"}, items.AssignmentIDs)
	assert.Equal(t, 6, items.Total())

	assert.Zero(t, Structure{}.Items().Total())
}

func TestQuiz_TotalPoints(t *testing.T) {
	q := Quiz{Questions: []Question{{Points: 2}, {Points: 3}, {Points: 1}}}
	assert.Equal(t, 6, q.TotalPoints())
	assert.Zero(t, Quiz{}.TotalPoints())
}

func TestAssignment_DeadlinePassed(t *testing.T) {
	deadline := time.Date(2021, 1, 10, 12, 0, 0, 0, time.UTC)
	a := Assignment{Deadline: deadline}

	assert.False(t, a.DeadlinePassed(deadline.Add(-time.Second)))
	assert.False(t, a.DeadlinePassed(deadline))
	assert.True(t, a.DeadlinePassed(deadline.Add(time.Nanosecond)))
}

func TestCanManage(t *testing.T) {
	crs := Course{ID: "c1", InstructorID: "teacher-1"}

	tests := []struct {
		name  string
		actor core.Actor
		want  bool
	}{
		{"instructor", core.Actor{ID: "teacher-1", Roles: []string{core.RoleTeacher}}, true},
		{"other teacher", core.Actor{ID: "teacher-2", Roles: []string{core.RoleTeacher}}, false},
		{"admin", core.Actor{ID: "admin-1", Roles: []string{core.RoleAdminPrincipal}}, true},
		{"student", core.Actor{ID: "student-1", Roles: []string{core.RoleStudent}}, false},
		{"anonymous", core.Actor{}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanManage(tc.actor, crs))
		})
	}
	assert.False(t, CanManage(core.Actor{}, Course{}))
}
