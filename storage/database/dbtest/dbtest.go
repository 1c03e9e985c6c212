// Package dbtest prepares migrated SQLite databases and course fixtures for tests.
package dbtest

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/coursework/core"
	"github.com/trezcool/coursework/core/course"
	"github.com/trezcool/coursework/core/enrollment"
	"github.com/trezcool/coursework/storage/database"
)

// Config returns a test configuration pointing at a fresh SQLite file in t's temp dir.
func Config(t *testing.T) *core.Config {
	t.Helper()
	return &core.Config{
		AppName:         "Coursework",
		Env:             "TEST",
		TestMode:        true,
		SecretKey:       "test-secret",
		FrontendBaseURL: "http://localhost:3000",
		Server: core.ServerConfig{
			RequestTimeout:     5 * time.Second,
			JWTExpirationDelta: time.Hour,
		},
		Database: core.DatabaseConfig{
			Engine: core.DriverSQLite,
			Path:   filepath.Join(t.TempDir(), "coursework.db"),
		},
		Progress: core.ProgressConfig{MaxTxAttempts: 3},
	}
}

// PrepareDB opens and migrates the database of conf, closing it when t ends.
func PrepareDB(t *testing.T, conf *core.Config) *sqlx.DB {
	t.Helper()
	db, err := database.Open(conf)
	if err != nil {
		t.Fatalf("database.Open() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(db, "up"); err != nil {
		t.Fatalf("database.Migrate() failed: %v", err)
	}
	return db
}

func mustExec(t *testing.T, db *sqlx.DB, query string, args ...interface{}) {
	t.Helper()
	if _, err := db.Exec(db.Rebind(query), args...); err != nil {
		t.Fatalf("%s failed: %v", query, err)
	}
}

func newID() string {
	return uuid.New().String()
}

func CreateCourse(t *testing.T, db *sqlx.DB, title, instructorID string) course.Course {
	t.Helper()
	crs := course.Course{ID: newID(), Title: title, InstructorID: instructorID}
	mustExec(t, db, `INSERT INTO courses (id, title, instructor_id, created_at) VALUES (?, ?, ?, ?)`,
		crs.ID, crs.Title, crs.InstructorID, core.Now())
	return crs
}

func CreateModule(t *testing.T, db *sqlx.DB, courseID, title string, position int) course.Module {
	t.Helper()
	mod := course.Module{ID: newID(), CourseID: courseID, Title: title, Position: position}
	mustExec(t, db, `INSERT INTO modules (id, course_id, title, position) VALUES (?, ?, ?, ?)`,
		mod.ID, mod.CourseID, mod.Title, mod.Position)
	return mod
}

func CreateLesson(t *testing.T, db *sqlx.DB, mod course.Module, title string, ct course.ContentType, position int) course.Lesson {
	t.Helper()
	lesson := course.Lesson{
		ID:          newID(),
		ModuleID:    mod.ID,
		CourseID:    mod.CourseID,
		Title:       title,
		ContentType: ct,
		Position:    position,
	}
	mustExec(t, db, `INSERT INTO lessons (id, module_id, title, content_type, position) VALUES (?, ?, ?, ?, ?)`,
		lesson.ID, lesson.ModuleID, lesson.Title, lesson.ContentType, lesson.Position)
	return lesson
}

// MultipleChoice returns a question whose correct answer is option.
func MultipleChoice(points int, option string) course.Question {
	return course.Question{Kind: course.MultipleChoice, Points: points, CorrectOption: null.StringFrom(option)}
}

// TrueFalse returns a question whose correct answer is value.
func TrueFalse(points int, value bool) course.Question {
	return course.Question{Kind: course.TrueFalse, Points: points, CorrectBool: null.BoolFrom(value)}
}

func CreateQuiz(t *testing.T, db *sqlx.DB, lesson course.Lesson, passingScore int, maxAttempts null.Int, questions ...course.Question) course.Quiz {
	t.Helper()
	q := course.Quiz{
		ID:           newID(),
		LessonID:     lesson.ID,
		CourseID:     lesson.CourseID,
		Title:        lesson.Title,
		PassingScore: passingScore,
		MaxAttempts:  maxAttempts,
	}
	mustExec(t, db, `INSERT INTO quizzes (id, lesson_id, title, passing_score, max_attempts) VALUES (?, ?, ?, ?, ?)`,
		q.ID, q.LessonID, q.Title, q.PassingScore, q.MaxAttempts)

	for i, qn := range questions {
		qn.ID = newID()
		qn.QuizID = q.ID
		qn.Position = i + 1
		mustExec(t, db, `INSERT INTO quiz_questions (id, quiz_id, kind, prompt, points, correct_option, correct_bool, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			qn.ID, qn.QuizID, string(qn.Kind), qn.Prompt, qn.Points, qn.CorrectOption, qn.CorrectBool, qn.Position)
		q.Questions = append(q.Questions, qn)
	}
	return q
}

func CreateAssignment(t *testing.T, db *sqlx.DB, lesson course.Lesson, deadline time.Time) course.Assignment {
	t.Helper()
	asg := course.Assignment{
		ID:       newID(),
		LessonID: lesson.ID,
		CourseID: lesson.CourseID,
		Title:    lesson.Title,
		Deadline: deadline.UTC(),
	}
	mustExec(t, db, `INSERT INTO assignments (id, lesson_id, title, deadline) VALUES (?, ?, ?, ?)`,
		asg.ID, asg.LessonID, asg.Title, asg.Deadline)
	return asg
}

func Enroll(t *testing.T, db *sqlx.DB, studentID, courseID string) enrollment.Enrollment {
	t.Helper()
	now := core.Now()
	enr := enrollment.Enrollment{
		ID:         newID(),
		StudentID:  studentID,
		CourseID:   courseID,
		EnrolledAt: now,
		UpdatedAt:  now,
	}
	mustExec(t, db, `INSERT INTO enrollments (id, student_id, course_id, progress, version, enrolled_at, updated_at)
		VALUES (?, ?, ?, 0, 0, ?, ?)`,
		enr.ID, enr.StudentID, enr.CourseID, enr.EnrolledAt, enr.UpdatedAt)
	return enr
}

// Scenario is a course of 2 video lessons, 1 quiz passing at 60 and 1 assignment.
// The quiz is worth 20 points: 9 (multiple choice "b"), 6 (true) and 5 (false),
// so that answering the first question only scores 45 and the first two score 75.
type Scenario struct {
	Course           course.Course
	Module           course.Module
	LessonA          course.Lesson
	LessonB          course.Lesson
	QuizLesson       course.Lesson
	Quiz             course.Quiz
	AssignmentLesson course.Lesson
	Assignment       course.Assignment
}

func NewScenario(t *testing.T, db *sqlx.DB, instructorID string, deadline time.Time) Scenario {
	t.Helper()
	var s Scenario
	s.Course = CreateCourse(t, db, "Intro to Go", instructorID)
	s.Module = CreateModule(t, db, s.Course.ID, "Basics", 1)
	s.LessonA = CreateLesson(t, db, s.Module, "Lesson A", course.ContentVideo, 1)
	s.LessonB = CreateLesson(t, db, s.Module, "Lesson B", course.ContentVideo, 2)
	s.QuizLesson = CreateLesson(t, db, s.Module, "Quiz", course.ContentQuiz, 3)
	s.Quiz = CreateQuiz(t, db, s.QuizLesson, 60, null.Int{},
		MultipleChoice(9, "b"),
		TrueFalse(6, true),
		TrueFalse(5, false),
	)
	s.AssignmentLesson = CreateLesson(t, db, s.Module, "Assignment", course.ContentAssignment, 4)
	s.Assignment = CreateAssignment(t, db, s.AssignmentLesson, deadline)
	return s
}
