package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/coursework/core"
	"github.com/trezcool/coursework/core/submission"
)

type submissionRepository struct {
	repository
}

var _ submission.Repository = (*submissionRepository)(nil) // interface compliance check

func NewSubmissionRepository(exec core.DBExecutor) *submissionRepository {
	return &submissionRepository{repository{exec: exec}}
}

type (
	submissionRow struct {
		ID           string      `db:"id"`
		StudentID    string      `db:"student_id"`
		AssignmentID string      `db:"assignment_id"`
		Content      string      `db:"content"`
		FileRef      string      `db:"file_ref"`
		Grade        null.Int    `db:"grade"`
		Feedback     null.String `db:"feedback"`
		GradedBy     null.String `db:"graded_by"`
		GradedAt     null.Time   `db:"graded_at"`
		SubmittedAt  time.Time   `db:"submitted_at"`
	}

	gradeRow struct {
		ID           string    `db:"id"`
		SubmissionID string    `db:"submission_id"`
		StudentID    string    `db:"student_id"`
		AssignmentID string    `db:"assignment_id"`
		Grade        int       `db:"grade"`
		Feedback     string    `db:"feedback"`
		GradedBy     string    `db:"graded_by"`
		GradedAt     time.Time `db:"graded_at"`
	}
)

func (r submissionRow) unboil() submission.Submission {
	sub := submission.Submission{
		ID:           r.ID,
		StudentID:    r.StudentID,
		AssignmentID: r.AssignmentID,
		Content:      r.Content,
		FileRef:      r.FileRef,
		Grade:        r.Grade,
		Feedback:     r.Feedback,
		GradedBy:     r.GradedBy,
		SubmittedAt:  r.SubmittedAt.UTC(),
	}
	if r.GradedAt.Valid {
		sub.GradedAt = null.TimeFrom(r.GradedAt.Time.UTC())
	}
	return sub
}

func (r gradeRow) unboil() submission.Grade {
	return submission.Grade{
		ID:           r.ID,
		SubmissionID: r.SubmissionID,
		StudentID:    r.StudentID,
		AssignmentID: r.AssignmentID,
		Grade:        r.Grade,
		Feedback:     r.Feedback,
		GradedBy:     r.GradedBy,
		GradedAt:     r.GradedAt.UTC(),
	}
}

const submissionColumns = `id, student_id, assignment_id, content, file_ref, grade, feedback, graded_by, graded_at, submitted_at`

func (repo submissionRepository) UpsertSubmission(ctx context.Context, sub submission.Submission, exec ...core.DBExecutor) (submission.Submission, error) {
	exe := repo.getExec(exec)
	// a resubmission keeps its id and drops the current grade; grade history stays in submission_grades
	_, err := execute(ctx, exe,
		`INSERT INTO submissions (id, student_id, assignment_id, content, file_ref, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (student_id, assignment_id) DO UPDATE SET
			content = excluded.content,
			file_ref = excluded.file_ref,
			submitted_at = excluded.submitted_at,
			grade = NULL,
			feedback = NULL,
			graded_by = NULL,
			graded_at = NULL`,
		uuid.New().String(), sub.StudentID, sub.AssignmentID, sub.Content, sub.FileRef, sub.SubmittedAt.UTC())
	if err != nil {
		return submission.Submission{}, errors.Wrap(err, "upserting submission")
	}
	return repo.FindSubmission(ctx, sub.StudentID, sub.AssignmentID, exe)
}

func (repo submissionRepository) GetSubmission(ctx context.Context, id string, exec ...core.DBExecutor) (submission.Submission, error) {
	var row submissionRow
	if err := get(ctx, repo.getExec(exec), &row, `SELECT `+submissionColumns+` FROM submissions WHERE id = ?`, id); err != nil {
		return submission.Submission{}, trapNoRowsErr(err, submission.ErrNotFound, "getting submission")
	}
	return row.unboil(), nil
}

func (repo submissionRepository) FindSubmission(ctx context.Context, studentID, assignmentID string, exec ...core.DBExecutor) (submission.Submission, error) {
	var row submissionRow
	err := get(ctx, repo.getExec(exec), &row,
		`SELECT `+submissionColumns+` FROM submissions WHERE student_id = ? AND assignment_id = ?`, studentID, assignmentID)
	if err != nil {
		return submission.Submission{}, trapNoRowsErr(err, submission.ErrNotFound, "finding submission")
	}
	return row.unboil(), nil
}

func (repo submissionRepository) DeleteSubmission(ctx context.Context, studentID, assignmentID string, exec ...core.DBExecutor) (bool, error) {
	n, err := execute(ctx, repo.getExec(exec),
		`DELETE FROM submissions WHERE student_id = ? AND assignment_id = ?`, studentID, assignmentID)
	if err != nil {
		return false, errors.Wrap(err, "deleting submission")
	}
	return n > 0, nil
}

func (repo submissionRepository) GradeSubmission(ctx context.Context, g submission.Grade, exec ...core.DBExecutor) (submission.Submission, error) {
	exe := repo.getExec(exec)
	gradedAt := g.GradedAt.UTC()

	n, err := execute(ctx, exe,
		`UPDATE submissions SET grade = ?, feedback = ?, graded_by = ?, graded_at = ? WHERE id = ?`,
		g.Grade, g.Feedback, g.GradedBy, gradedAt, g.SubmissionID)
	if err != nil {
		return submission.Submission{}, errors.Wrap(err, "grading submission")
	}
	if n == 0 {
		return submission.Submission{}, submission.ErrNotFound
	}

	_, err = execute(ctx, exe,
		`INSERT INTO submission_grades
		(id, submission_id, student_id, assignment_id, grade, feedback, graded_by, graded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), g.SubmissionID, g.StudentID, g.AssignmentID, g.Grade, g.Feedback, g.GradedBy, gradedAt)
	if err != nil {
		return submission.Submission{}, errors.Wrap(err, "recording grade history")
	}
	return repo.GetSubmission(ctx, g.SubmissionID, exe)
}

func (repo submissionRepository) QueryGrades(ctx context.Context, studentID, assignmentID string, exec ...core.DBExecutor) ([]submission.Grade, error) {
	var rows []gradeRow
	err := selectAll(ctx, repo.getExec(exec), &rows,
		`SELECT id, submission_id, student_id, assignment_id, grade, feedback, graded_by, graded_at
		FROM submission_grades WHERE student_id = ? AND assignment_id = ? ORDER BY graded_at DESC, id`,
		studentID, assignmentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying grade history")
	}
	grades := make([]submission.Grade, 0, len(rows))
	for _, r := range rows {
		grades = append(grades, r.unboil())
	}
	return grades, nil
}

func (repo submissionRepository) CountSubmittedAssignments(ctx context.Context, studentID string, assignmentIDs []string, exec ...core.DBExecutor) (int, error) {
	n, err := countIn(ctx, repo.getExec(exec),
		`SELECT COUNT(DISTINCT assignment_id) FROM submissions WHERE student_id = ? AND assignment_id IN (?)`,
		studentID, assignmentIDs)
	return n, errors.Wrap(err, "counting submissions")
}
