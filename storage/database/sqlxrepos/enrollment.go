package sqlxrepos

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/coursework/core"
	"github.com/trezcool/coursework/core/enrollment"
)

type enrollmentRepository struct {
	repository
}

var _ enrollment.Repository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(exec core.DBExecutor) *enrollmentRepository {
	return &enrollmentRepository{repository{exec: exec}}
}

type enrollmentRow struct {
	ID          string    `db:"id"`
	StudentID   string    `db:"student_id"`
	CourseID    string    `db:"course_id"`
	Progress    int       `db:"progress"`
	Version     int       `db:"version"`
	EnrolledAt  time.Time `db:"enrolled_at"`
	CompletedAt null.Time `db:"completed_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (repo enrollmentRepository) boil(enr enrollment.Enrollment) enrollmentRow {
	row := enrollmentRow{
		ID:         enr.ID,
		StudentID:  enr.StudentID,
		CourseID:   enr.CourseID,
		Progress:   enr.Progress,
		Version:    enr.Version,
		EnrolledAt: enr.EnrolledAt.UTC(),
		UpdatedAt:  enr.UpdatedAt.UTC(),
	}
	if enr.CompletedAt.Valid {
		row.CompletedAt = null.TimeFrom(enr.CompletedAt.Time.UTC())
	}
	return row
}

func (repo enrollmentRepository) unboil(row enrollmentRow) enrollment.Enrollment {
	enr := enrollment.Enrollment{
		ID:         row.ID,
		StudentID:  row.StudentID,
		CourseID:   row.CourseID,
		Progress:   row.Progress,
		Version:    row.Version,
		EnrolledAt: row.EnrolledAt.UTC(),
		UpdatedAt:  row.UpdatedAt.UTC(),
	}
	if row.CompletedAt.Valid {
		enr.CompletedAt = null.TimeFrom(row.CompletedAt.Time.UTC())
	}
	return enr
}

const enrollmentColumns = `id, student_id, course_id, progress, version, enrolled_at, completed_at, updated_at`

func (repo enrollmentRepository) CreateEnrollment(ctx context.Context, enr enrollment.Enrollment, exec ...core.DBExecutor) (enrollment.Enrollment, error) {
	enr.ID = uuid.New().String()
	row := repo.boil(enr)
	_, err := execute(ctx, repo.getExec(exec),
		`INSERT INTO enrollments (`+enrollmentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		row.ID, row.StudentID, row.CourseID, row.Progress, row.Version, row.EnrolledAt, row.CompletedAt, row.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return enrollment.Enrollment{}, enrollment.ErrExists
		}
		return enrollment.Enrollment{}, errors.Wrap(err, "inserting enrollment")
	}
	return repo.unboil(row), nil
}

func (repo enrollmentRepository) GetEnrollment(ctx context.Context, id string, exec ...core.DBExecutor) (enrollment.Enrollment, error) {
	var row enrollmentRow
	if err := get(ctx, repo.getExec(exec), &row, `SELECT `+enrollmentColumns+` FROM enrollments WHERE id = ?`, id); err != nil {
		return enrollment.Enrollment{}, trapNoRowsErr(err, enrollment.ErrNotFound, "getting enrollment")
	}
	return repo.unboil(row), nil
}

func (repo enrollmentRepository) FindEnrollment(ctx context.Context, studentID, courseID string, exec ...core.DBExecutor) (enrollment.Enrollment, error) {
	var row enrollmentRow
	err := get(ctx, repo.getExec(exec), &row,
		`SELECT `+enrollmentColumns+` FROM enrollments WHERE student_id = ? AND course_id = ?`, studentID, courseID)
	if err != nil {
		return enrollment.Enrollment{}, trapNoRowsErr(err, enrollment.ErrNotFound, "finding enrollment")
	}
	return repo.unboil(row), nil
}

func (repo enrollmentRepository) QueryEnrollments(ctx context.Context, filter *enrollment.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]enrollment.Enrollment, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter != nil {
		if filter.StudentID != "" {
			where = append(where, "student_id = ?")
			args = append(args, filter.StudentID)
		}
		if filter.CourseID != "" {
			where = append(where, "course_id = ?")
			args = append(args, filter.CourseID)
		}
	}

	q := `SELECT ` + enrollmentColumns + ` FROM enrollments`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	if len(ordering) > 0 {
		orderList := make([]string, 0, len(ordering)+1)
		for _, ord := range ordering {
			if !enrollment.Orderings[ord.Field] {
				return nil, errors.Errorf("cannot order enrollments by %q", ord.Field)
			}
			orderList = append(orderList, ord.String())
		}
		orderList = append(orderList, "id ASC")
		q += " ORDER BY " + strings.Join(orderList, ", ")
	}

	var rows []enrollmentRow
	if err := selectAll(ctx, repo.getExec(exec), &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying enrollments")
	}
	enrs := make([]enrollment.Enrollment, 0, len(rows))
	for _, r := range rows {
		enrs = append(enrs, repo.unboil(r))
	}
	return enrs, nil
}

// forUpdate returns the row lock clause of exe's engine. SQLite transactions already
// hold the database write lock (BEGIN IMMEDIATE) and rely on the version check.
func forUpdate(exe core.DBExecutor) string {
	if exe.DriverName() == core.DriverPostgres {
		return " FOR UPDATE"
	}
	return ""
}

func (repo enrollmentRepository) LockEnrollment(ctx context.Context, studentID, courseID string, exec core.DBTransactor) (enrollment.Enrollment, error) {
	var row enrollmentRow
	err := get(ctx, exec, &row,
		`SELECT `+enrollmentColumns+` FROM enrollments WHERE student_id = ? AND course_id = ?`+forUpdate(exec),
		studentID, courseID)
	if err != nil {
		return enrollment.Enrollment{}, trapNoRowsErr(err, enrollment.ErrNotFound, "locking enrollment")
	}
	return repo.unboil(row), nil
}

func (repo enrollmentRepository) LockEnrollmentByID(ctx context.Context, id string, exec core.DBTransactor) (enrollment.Enrollment, error) {
	var row enrollmentRow
	err := get(ctx, exec, &row, `SELECT `+enrollmentColumns+` FROM enrollments WHERE id = ?`+forUpdate(exec), id)
	if err != nil {
		return enrollment.Enrollment{}, trapNoRowsErr(err, enrollment.ErrNotFound, "locking enrollment")
	}
	return repo.unboil(row), nil
}

func (repo enrollmentRepository) UpdateProgress(ctx context.Context, enr enrollment.Enrollment, exec ...core.DBExecutor) (enrollment.Enrollment, error) {
	row := repo.boil(enr)
	n, err := execute(ctx, repo.getExec(exec),
		`UPDATE enrollments SET progress = ?, completed_at = ?, updated_at = ?, version = version + 1
		WHERE id = ? AND version = ?`,
		row.Progress, row.CompletedAt, row.UpdatedAt, row.ID, row.Version)
	if err != nil {
		return enrollment.Enrollment{}, errors.Wrap(err, "updating enrollment progress")
	}
	if n == 0 {
		return enrollment.Enrollment{}, core.ErrTxConflict
	}
	row.Version++
	return repo.unboil(row), nil
}
