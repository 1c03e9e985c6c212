package sqlxrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/coursework/core"
	"github.com/trezcool/coursework/core/course"
)

type courseReader struct {
	repository
}

var _ course.Reader = (*courseReader)(nil) // interface compliance check

func NewCourseReader(exec core.DBExecutor) *courseReader {
	return &courseReader{repository{exec: exec}}
}

type (
	courseRow struct {
		ID           string `db:"id"`
		Title        string `db:"title"`
		InstructorID string `db:"instructor_id"`
	}

	moduleRow struct {
		ID       string `db:"id"`
		CourseID string `db:"course_id"`
		Title    string `db:"title"`
		Position int    `db:"position"`
	}

	lessonRow struct {
		ID            string             `db:"id"`
		ModuleID      string             `db:"module_id"`
		CourseID      string             `db:"course_id"`
		Title         string             `db:"title"`
		ContentType   course.ContentType `db:"content_type"`
		Position      int                `db:"position"`
		HasAssignment bool               `db:"has_assignment"`
	}

	quizRow struct {
		ID           string   `db:"id"`
		LessonID     string   `db:"lesson_id"`
		CourseID     string   `db:"course_id"`
		Title        string   `db:"title"`
		PassingScore int      `db:"passing_score"`
		TimeLimit    null.Int `db:"time_limit_sec"`
		MaxAttempts  null.Int `db:"max_attempts"`
	}

	questionRow struct {
		ID            string      `db:"id"`
		QuizID        string      `db:"quiz_id"`
		Kind          string      `db:"kind"`
		Prompt        string      `db:"prompt"`
		Points        int         `db:"points"`
		CorrectOption null.String `db:"correct_option"`
		CorrectBool   null.Bool   `db:"correct_bool"`
		Position      int         `db:"position"`
	}

	assignmentRow struct {
		ID       string    `db:"id"`
		LessonID string    `db:"lesson_id"`
		CourseID string    `db:"course_id"`
		Title    string    `db:"title"`
		Deadline time.Time `db:"deadline"`
	}
)

func (r courseRow) unboil() course.Course {
	return course.Course{ID: r.ID, Title: r.Title, InstructorID: r.InstructorID}
}

func (r lessonRow) unboil() course.Lesson {
	return course.Lesson{
		ID:            r.ID,
		ModuleID:      r.ModuleID,
		CourseID:      r.CourseID,
		Title:         r.Title,
		ContentType:   r.ContentType,
		Position:      r.Position,
		HasAssignment: r.HasAssignment,
	}
}

func (r quizRow) unboil() course.Quiz {
	return course.Quiz{
		ID:           r.ID,
		LessonID:     r.LessonID,
		CourseID:     r.CourseID,
		Title:        r.Title,
		PassingScore: r.PassingScore,
		TimeLimit:    r.TimeLimit,
		MaxAttempts:  r.MaxAttempts,
	}
}

func (r questionRow) unboil() course.Question {
	return course.Question{
		ID:            r.ID,
		QuizID:        r.QuizID,
		Kind:          course.QuestionKind(r.Kind),
		Prompt:        r.Prompt,
		Points:        r.Points,
		CorrectOption: r.CorrectOption,
		CorrectBool:   r.CorrectBool,
		Position:      r.Position,
	}
}

func (r assignmentRow) unboil() course.Assignment {
	return course.Assignment{
		ID:       r.ID,
		LessonID: r.LessonID,
		CourseID: r.CourseID,
		Title:    r.Title,
		Deadline: r.Deadline.UTC(),
	}
}

const (
	lessonColumns = `l.id, l.module_id, m.course_id, l.title, l.content_type, l.position,
		EXISTS (SELECT 1 FROM assignments a WHERE a.lesson_id = l.id) AS has_assignment`
	quizColumns       = `q.id, q.lesson_id, m.course_id, q.title, q.passing_score, q.time_limit_sec, q.max_attempts`
	assignmentColumns = `a.id, a.lesson_id, m.course_id, a.title, a.deadline`
)

func (repo courseReader) GetCourse(ctx context.Context, courseID string, exec ...core.DBExecutor) (course.Course, error) {
	var row courseRow
	err := get(ctx, repo.getExec(exec), &row, `SELECT id, title, instructor_id FROM courses WHERE id = ?`, courseID)
	if err != nil {
		return course.Course{}, trapNoRowsErr(err, course.ErrCourseNotFound, "getting course")
	}
	return row.unboil(), nil
}

func (repo courseReader) GetStructure(ctx context.Context, courseID string, exec ...core.DBExecutor) (course.Structure, error) {
	exe := repo.getExec(exec)

	crs, err := repo.GetCourse(ctx, courseID, exe)
	if err != nil {
		return course.Structure{}, err
	}

	var modRows []moduleRow
	err = selectAll(ctx, exe, &modRows,
		`SELECT id, course_id, title, position FROM modules WHERE course_id = ? ORDER BY position, id`, courseID)
	if err != nil {
		return course.Structure{}, errors.Wrap(err, "querying modules")
	}

	var lessonRows []lessonRow
	err = selectAll(ctx, exe, &lessonRows,
		`SELECT `+lessonColumns+` FROM lessons l JOIN modules m ON m.id = l.module_id
		WHERE m.course_id = ? ORDER BY m.position, m.id, l.position, l.id`, courseID)
	if err != nil {
		return course.Structure{}, errors.Wrap(err, "querying lessons")
	}

	var quizRows []quizRow
	err = selectAll(ctx, exe, &quizRows,
		`SELECT `+quizColumns+` FROM quizzes q
		JOIN lessons l ON l.id = q.lesson_id JOIN modules m ON m.id = l.module_id
		WHERE m.course_id = ? ORDER BY m.position, l.position, q.id`, courseID)
	if err != nil {
		return course.Structure{}, errors.Wrap(err, "querying quizzes")
	}

	var asgRows []assignmentRow
	err = selectAll(ctx, exe, &asgRows,
		`SELECT `+assignmentColumns+` FROM assignments a
		JOIN lessons l ON l.id = a.lesson_id JOIN modules m ON m.id = l.module_id
		WHERE m.course_id = ? ORDER BY m.position, l.position, a.id`, courseID)
	if err != nil {
		return course.Structure{}, errors.Wrap(err, "querying assignments")
	}

	structure := course.Structure{
		Course:      crs,
		Modules:     make([]course.Module, 0, len(modRows)),
		Quizzes:     make([]course.Quiz, 0, len(quizRows)),
		Assignments: make([]course.Assignment, 0, len(asgRows)),
	}
	modIdx := make(map[string]int, len(modRows))
	for i, r := range modRows {
		modIdx[r.ID] = i
		structure.Modules = append(structure.Modules, course.Module{
			ID:       r.ID,
			CourseID: r.CourseID,
			Title:    r.Title,
			Position: r.Position,
		})
	}
	for _, r := range lessonRows {
		i := modIdx[r.ModuleID]
		structure.Modules[i].Lessons = append(structure.Modules[i].Lessons, r.unboil())
	}
	for _, r := range quizRows {
		structure.Quizzes = append(structure.Quizzes, r.unboil())
	}
	for _, r := range asgRows {
		structure.Assignments = append(structure.Assignments, r.unboil())
	}
	return structure, nil
}

func (repo courseReader) GetLesson(ctx context.Context, lessonID string, exec ...core.DBExecutor) (course.Lesson, error) {
	var row lessonRow
	err := get(ctx, repo.getExec(exec), &row,
		`SELECT `+lessonColumns+` FROM lessons l JOIN modules m ON m.id = l.module_id WHERE l.id = ?`, lessonID)
	if err != nil {
		return course.Lesson{}, trapNoRowsErr(err, course.ErrLessonNotFound, "getting lesson")
	}
	return row.unboil(), nil
}

func (repo courseReader) GetQuiz(ctx context.Context, quizID string, exec ...core.DBExecutor) (course.Quiz, error) {
	exe := repo.getExec(exec)

	var row quizRow
	err := get(ctx, exe, &row,
		`SELECT `+quizColumns+` FROM quizzes q
		JOIN lessons l ON l.id = q.lesson_id JOIN modules m ON m.id = l.module_id
		WHERE q.id = ?`, quizID)
	if err != nil {
		return course.Quiz{}, trapNoRowsErr(err, course.ErrQuizNotFound, "getting quiz")
	}

	var qnRows []questionRow
	err = selectAll(ctx, exe, &qnRows,
		`SELECT id, quiz_id, kind, prompt, points, correct_option, correct_bool, position
		FROM quiz_questions WHERE quiz_id = ? ORDER BY position, id`, quizID)
	if err != nil {
		return course.Quiz{}, errors.Wrap(err, "querying quiz questions")
	}

	q := row.unboil()
	q.Questions = make([]course.Question, 0, len(qnRows))
	for _, r := range qnRows {
		q.Questions = append(q.Questions, r.unboil())
	}
	return q, nil
}

func (repo courseReader) GetAssignment(ctx context.Context, assignmentID string, exec ...core.DBExecutor) (course.Assignment, error) {
	var row assignmentRow
	err := get(ctx, repo.getExec(exec), &row,
		`SELECT `+assignmentColumns+` FROM assignments a
		JOIN lessons l ON l.id = a.lesson_id JOIN modules m ON m.id = l.module_id
		WHERE a.id = ?`, assignmentID)
	if err != nil {
		return course.Assignment{}, trapNoRowsErr(err, course.ErrAssignmentNotFound, "getting assignment")
	}
	return row.unboil(), nil
}
