package course

import (
	"context"

	"github.com/trezcool/coursework/core"
)

// Reader gives read-only access to course topology. The engine never writes it.
type Reader interface {
	GetCourse(ctx context.Context, courseID string, exec ...core.DBExecutor) (Course, error)
	GetStructure(ctx context.Context, courseID string, exec ...core.DBExecutor) (Structure, error)
	GetLesson(ctx context.Context, lessonID string, exec ...core.DBExecutor) (Lesson, error)
	// GetQuiz returns the quiz with its questions, in position order.
	GetQuiz(ctx context.Context, quizID string, exec ...core.DBExecutor) (Quiz, error)
	GetAssignment(ctx context.Context, assignmentID string, exec ...core.DBExecutor) (Assignment, error)
}

// CanManage reports whether actor may read other students' work and grade it for the course.
func CanManage(actor core.Actor, crs Course) bool {
	return actor.IsAdmin() || (actor.ID != "" && actor.ID == crs.InstructorID)
}
