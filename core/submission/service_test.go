package submission_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/coursework/core"
	"github.com/trezcool/coursework/core/course"
	"github.com/trezcool/coursework/core/enrollment"
	"github.com/trezcool/coursework/core/submission"
	"github.com/trezcool/coursework/storage/database/dbtest"
)

var (
	student    = core.Actor{ID: "student-1", Roles: []string{core.RoleStudent}}
	instructor = core.Actor{ID: "teacher-1", Roles: []string{core.RoleTeacher}}
	colleague  = core.Actor{ID: "teacher-2", Roles: []string{core.RoleTeacher}}
	admin      = core.Actor{ID: "admin-1", Roles: []string{core.RoleAdminOwner}}
)

func grade(v float64) submission.GradeSubmission {
	return submission.GradeSubmission{Grade: &v, Feedback: "ok"}
}

func setup(t *testing.T, deadline time.Time) (*dbtest.Services, dbtest.Scenario) {
	t.Helper()
	conf := dbtest.Config(t)
	db := dbtest.PrepareDB(t, conf)
	svcs := dbtest.NewServices(t, conf, db)
	scn := dbtest.NewScenario(t, db, instructor.ID, deadline)
	dbtest.Enroll(t, db, student.ID, scn.Course.ID)
	return svcs, scn
}

func TestService_Submit(t *testing.T) {
	svcs, scn := setup(t, time.Now().Add(time.Hour))
	ctx := context.Background()

	tests := []struct {
		name         string
		actor        core.Actor
		assignmentID string
		ns           submission.NewSubmission
		wantErr      error
	}{
		{name: "empty", actor: student, assignmentID: scn.Assignment.ID, ns: submission.NewSubmission{Content: "  "}, wantErr: submission.ErrEmptySubmission},
		{name: "unknown assignment", actor: student, assignmentID: "nope", ns: submission.NewSubmission{Content: "x"}, wantErr: course.ErrAssignmentNotFound},
		{name: "not enrolled", actor: colleague, assignmentID: scn.Assignment.ID, ns: submission.NewSubmission{Content: "x"}, wantErr: enrollment.ErrNotEnrolled},
		{name: "content", actor: student, assignmentID: scn.Assignment.ID, ns: submission.NewSubmission{Content: "essay"}},
		{name: "file", actor: student, assignmentID: scn.Assignment.ID, ns: submission.NewSubmission{FileRef: "https://files.test/essay.pdf"}},
		{name: "both", actor: student, assignmentID: scn.Assignment.ID, ns: submission.NewSubmission{Content: "essay", FileRef: "uploads/essay.pdf"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := svcs.Submission.Submit(ctx, tc.actor, tc.assignmentID, tc.ns)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, res.SubmissionID, res.Submission.ID)
			assert.Equal(t, tc.ns.Content, res.Submission.Content)
			assert.Equal(t, 25, res.Progress.Progress)
		})
	}

	t.Run("bad file reference", func(t *testing.T) {
		_, err := svcs.Submission.Submit(ctx, student, scn.Assignment.ID, submission.NewSubmission{FileRef: "not a ref"})
		assert.Error(t, err)
		assert.Equal(t, core.KindInvalidInput, core.KindOf(err))
	})

	var n int
	require.NoError(t, svcs.DB.Get(&n, `SELECT COUNT(*) FROM submissions`))
	assert.Equal(t, 1, n, "one live submission per student and assignment")
}

func TestService_Resubmit_ResetsGrade(t *testing.T) {
	svcs, scn := setup(t, time.Now().Add(time.Hour))
	ctx := context.Background()

	first, err := svcs.Submission.Submit(ctx, student, scn.Assignment.ID, submission.NewSubmission{Content: "draft"})
	require.NoError(t, err)
	graded, err := svcs.Submission.Grade(ctx, instructor, first.SubmissionID, grade(40))
	require.NoError(t, err)
	assert.Equal(t, 40, graded.Grade.Int)

	second, err := svcs.Submission.Submit(ctx, student, scn.Assignment.ID, submission.NewSubmission{Content: "final"})
	require.NoError(t, err)
	assert.Equal(t, first.SubmissionID, second.SubmissionID)
	assert.Equal(t, "final", second.Submission.Content)
	assert.False(t, second.Submission.Grade.Valid)
	assert.False(t, second.Submission.Feedback.Valid)
	assert.False(t, second.Submission.GradedBy.Valid)
	assert.False(t, second.Submission.GradedAt.Valid)

	detail, err := svcs.Submission.Get(ctx, student, scn.Assignment.ID, "")
	require.NoError(t, err)
	require.NotNil(t, detail.Submission)
	assert.Equal(t, "final", detail.Submission.Content)
	require.Len(t, detail.Grades, 1, "grade history survives resubmission")
	assert.Equal(t, 40, detail.Grades[0].Grade)
	assert.Equal(t, instructor.ID, detail.Grades[0].GradedBy)
}

func TestService_Submit_AfterDeadline(t *testing.T) {
	deadline := time.Date(2021, 1, 10, 12, 0, 0, 0, time.UTC)
	svcs, scn := setup(t, deadline)
	ctx := context.Background()

	defer func() { core.NowFunc = time.Now }()
	core.NowFunc = func() time.Time { return deadline.Add(-time.Hour) }

	first, err := svcs.Submission.Submit(ctx, student, scn.Assignment.ID, submission.NewSubmission{Content: "essay"})
	require.NoError(t, err)
	_, err = svcs.Submission.Grade(ctx, instructor, first.SubmissionID, grade(80))
	require.NoError(t, err)

	// the deadline itself is still on time
	core.NowFunc = func() time.Time { return deadline }
	_, err = svcs.Submission.Submit(ctx, student, scn.Assignment.ID, submission.NewSubmission{Content: "essay v2"})
	require.NoError(t, err)
	_, err = svcs.Submission.Grade(ctx, instructor, first.SubmissionID, grade(85))
	require.NoError(t, err)

	core.NowFunc = func() time.Time { return deadline.Add(24 * time.Hour) }
	res, err := svcs.Submission.Submit(ctx, student, scn.Assignment.ID, submission.NewSubmission{Content: "rewritten after deadline"})
	assert.ErrorIs(t, err, submission.ErrDeadlinePassed)
	assert.Equal(t, core.KindDeadlinePassed, core.KindOf(err))
	assert.Zero(t, res)

	detail, err := svcs.Submission.Get(ctx, student, scn.Assignment.ID, "")
	require.NoError(t, err)
	require.NotNil(t, detail.Submission)
	assert.Equal(t, "essay v2", detail.Submission.Content)
	require.True(t, detail.Submission.Grade.Valid, "late resubmission must not reset the grade")
	assert.Equal(t, 85, detail.Submission.Grade.Int)
}

func TestService_Delete(t *testing.T) {
	t.Run("before deadline", func(t *testing.T) {
		svcs, scn := setup(t, time.Now().Add(time.Hour))
		ctx := context.Background()

		_, err := svcs.Submission.Delete(ctx, student, scn.Assignment.ID)
		assert.ErrorIs(t, err, submission.ErrNotFound)

		_, err = svcs.Submission.Submit(ctx, student, scn.Assignment.ID, submission.NewSubmission{Content: "x"})
		require.NoError(t, err)

		res, err := svcs.Submission.Delete(ctx, student, scn.Assignment.ID)
		require.NoError(t, err)
		assert.Equal(t, 25, res.PreviousProgress)
		assert.Equal(t, 0, res.Progress)

		_, err = svcs.Submission.Delete(ctx, student, scn.Assignment.ID)
		assert.ErrorIs(t, err, submission.ErrNotFound)
	})

	t.Run("after deadline", func(t *testing.T) {
		deadline := time.Date(2021, 1, 10, 12, 0, 0, 0, time.UTC)
		svcs, scn := setup(t, deadline)
		ctx := context.Background()

		defer func() { core.NowFunc = time.Now }()
		core.NowFunc = func() time.Time { return deadline.Add(-time.Minute) }

		_, err := svcs.Submission.Submit(ctx, student, scn.Assignment.ID, submission.NewSubmission{Content: "x"})
		require.NoError(t, err)

		core.NowFunc = func() time.Time { return deadline.Add(time.Second) }
		res, err := svcs.Submission.Delete(ctx, student, scn.Assignment.ID)
		assert.ErrorIs(t, err, submission.ErrDeadlinePassed)
		assert.Equal(t, core.KindDeadlinePassed, core.KindOf(err))
		assert.Zero(t, res)

		detail, err := svcs.Submission.Get(ctx, student, scn.Assignment.ID, "")
		require.NoError(t, err)
		assert.NotNil(t, detail.Submission, "late deletion must not remove anything")

		// the deadline itself still allows deletion
		core.NowFunc = func() time.Time { return deadline }
		res, err = svcs.Submission.Delete(ctx, student, scn.Assignment.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, res.Progress)
	})
}

func TestService_Grade(t *testing.T) {
	svcs, scn := setup(t, time.Now().Add(time.Hour))
	ctx := context.Background()

	sub, err := svcs.Submission.Submit(ctx, student, scn.Assignment.ID, submission.NewSubmission{Content: "essay"})
	require.NoError(t, err)

	tests := []struct {
		name     string
		actor    core.Actor
		subID    string
		gs       submission.GradeSubmission
		wantErr  error
		wantKind core.ErrorKind
	}{
		{name: "student", actor: student, subID: sub.SubmissionID, gs: grade(90), wantErr: core.ErrForbidden, wantKind: core.KindForbidden},
		{name: "other instructor", actor: colleague, subID: sub.SubmissionID, gs: grade(90), wantErr: core.ErrForbidden, wantKind: core.KindForbidden},
		{name: "fractional grade", actor: instructor, subID: sub.SubmissionID, gs: grade(90.5), wantErr: submission.ErrInvalidGrade, wantKind: core.KindInvalidInput},
		{name: "negative grade", actor: instructor, subID: sub.SubmissionID, gs: grade(-5), wantErr: submission.ErrInvalidGrade, wantKind: core.KindInvalidInput},
		{name: "grade above 100", actor: instructor, subID: sub.SubmissionID, gs: grade(101), wantErr: submission.ErrInvalidGrade, wantKind: core.KindInvalidInput},
		{name: "missing grade", actor: instructor, subID: sub.SubmissionID, gs: submission.GradeSubmission{}, wantErr: submission.ErrInvalidGrade, wantKind: core.KindInvalidInput},
		{name: "unknown submission", actor: instructor, subID: "nope", gs: grade(90), wantErr: submission.ErrNotFound, wantKind: core.KindNotFound},
		{name: "instructor", actor: instructor, subID: sub.SubmissionID, gs: grade(90)},
		{name: "admin", actor: admin, subID: sub.SubmissionID, gs: grade(95)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			graded, err := svcs.Submission.Grade(ctx, tc.actor, tc.subID, tc.gs)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Equal(t, tc.wantKind, core.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int(*tc.gs.Grade), graded.Grade.Int)
			assert.Equal(t, "ok", graded.Feedback.String)
			assert.Equal(t, tc.actor.ID, graded.GradedBy.String)
			assert.True(t, graded.GradedAt.Valid)
		})
	}

	detail, err := svcs.Submission.Get(ctx, instructor, scn.Assignment.ID, student.ID)
	require.NoError(t, err)
	require.Len(t, detail.Grades, 2)

	// grading never moves progress
	enr, err := svcs.Enrollments.FindEnrollment(ctx, student.ID, scn.Course.ID)
	require.NoError(t, err)
	assert.Equal(t, 25, enr.Progress)
}

func TestService_Get(t *testing.T) {
	svcs, scn := setup(t, time.Now().Add(time.Hour))
	ctx := context.Background()

	_, err := svcs.Submission.Get(ctx, student, scn.Assignment.ID, "")
	assert.ErrorIs(t, err, submission.ErrNotFound)

	_, err = svcs.Submission.Submit(ctx, student, scn.Assignment.ID, submission.NewSubmission{Content: "essay"})
	require.NoError(t, err)

	tests := []struct {
		name      string
		actor     core.Actor
		studentID string
		wantErr   error
	}{
		{name: "own", actor: student},
		{name: "course instructor", actor: instructor, studentID: student.ID},
		{name: "admin", actor: admin, studentID: student.ID},
		{name: "other instructor", actor: colleague, studentID: student.ID, wantErr: core.ErrForbidden},
		{name: "other student", actor: core.Actor{ID: "student-2"}, studentID: student.ID, wantErr: core.ErrForbidden},
		{name: "unknown assignment", actor: student, wantErr: course.ErrAssignmentNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			asgID := scn.Assignment.ID
			if tc.name == "unknown assignment" {
				asgID = "nope"
			}
			detail, err := svcs.Submission.Get(ctx, tc.actor, asgID, tc.studentID)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, detail.Submission)
			assert.Equal(t, "essay", detail.Submission.Content)
			assert.Empty(t, detail.Grades)
		})
	}
}
