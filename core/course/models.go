package course

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/coursework/core"
)

var (
	// errors
	ErrCourseNotFound     = core.NewError(core.KindNotFound, "not_found", "course", "course not found")
	ErrLessonNotFound     = core.NewError(core.KindNotFound, "not_found", "lesson", "lesson not found")
	ErrQuizNotFound       = core.NewError(core.KindNotFound, "not_found", "quiz", "quiz not found")
	ErrAssignmentNotFound = core.NewError(core.KindNotFound, "not_found", "assignment", "assignment not found")
)

// ContentType is the closed set of lesson kinds. Each kind is completed through a different tracker.
type ContentType uint8

const (
	ContentVideo ContentType = iota + 1
	ContentText
	ContentQuiz
	ContentAssignment
)

var contentTypeNames = map[ContentType]string{
	ContentVideo:      "video",
	ContentText:       "text",
	ContentQuiz:       "quiz",
	ContentAssignment: "assignment",
}

func ParseContentType(s string) (ContentType, error) {
	for ct, name := range contentTypeNames {
		if name == s {
			return ct, nil
		}
	}
	return 0, errors.Errorf("unknown content type %q", s)
}

func (ct ContentType) String() string {
	if name, ok := contentTypeNames[ct]; ok {
		return name
	}
	return "invalid"
}

func (ct ContentType) Valid() bool {
	_, ok := contentTypeNames[ct]
	return ok
}

// DirectlyCompletable reports whether a student marks lessons of this kind complete themselves.
// Quiz and assignment lessons are completed through their quiz attempts and submissions.
func (ct ContentType) DirectlyCompletable() bool {
	switch ct {
	case ContentVideo, ContentText:
		return true
	case ContentQuiz, ContentAssignment:
		return false
	}
	return false
}

func (ct ContentType) MarshalJSON() ([]byte, error) {
	if !ct.Valid() {
		return nil, errors.Errorf("invalid content type %d", ct)
	}
	return json.Marshal(ct.String())
}

func (ct *ContentType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseContentType(s)
	if err != nil {
		return err
	}
	*ct = parsed
	return nil
}

// Scan implements sql.Scanner.
func (ct *ContentType) Scan(src interface{}) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return errors.Errorf("cannot scan %T into ContentType", src)
	}
	parsed, err := ParseContentType(s)
	if err != nil {
		return err
	}
	*ct = parsed
	return nil
}

// Value implements driver.Valuer.
func (ct ContentType) Value() (driver.Value, error) {
	if !ct.Valid() {
		return nil, errors.Errorf("invalid content type %d", ct)
	}
	return ct.String(), nil
}

// QuestionKind tells how a question's answer is shaped.
type QuestionKind string

const (
	MultipleChoice QuestionKind = "multiple_choice"
	TrueFalse      QuestionKind = "true_false"
)

type (
	Course struct {
		ID           string `json:"id"`
		Title        string `json:"title"`
		InstructorID string `json:"instructor_id"`
	}

	Module struct {
		ID       string   `json:"id"`
		CourseID string   `json:"course_id"`
		Title    string   `json:"title"`
		Position int      `json:"position"`
		Lessons  []Lesson `json:"lessons"`
	}

	Lesson struct {
		ID          string      `json:"id"`
		ModuleID    string      `json:"module_id"`
		CourseID    string      `json:"course_id"`
		Title       string      `json:"title"`
		ContentType ContentType `json:"content_type"`
		Position    int         `json:"position"`

		// HasAssignment is true when an assignment hangs off this lesson, whatever its own content type.
		HasAssignment bool `json:"has_assignment"`
	}

	Quiz struct {
		ID           string     `json:"id"`
		LessonID     string     `json:"lesson_id"`
		CourseID     string     `json:"course_id"`
		Title        string     `json:"title"`
		PassingScore int        `json:"passing_score"`
		TimeLimit    null.Int   `json:"time_limit_sec"`
		MaxAttempts  null.Int   `json:"max_attempts"`
		Questions    []Question `json:"questions,omitempty"`
	}

	Question struct {
		ID            string       `json:"id"`
		QuizID        string       `json:"quiz_id"`
		Kind          QuestionKind `json:"kind"`
		Prompt        string       `json:"prompt"`
		Points        int          `json:"points"`
		CorrectOption null.String  `json:"-"`
		CorrectBool   null.Bool    `json:"-"`
		Position      int          `json:"position"`
	}

	Assignment struct {
		ID       string    `json:"id"`
		LessonID string    `json:"lesson_id"`
		CourseID string    `json:"course_id"`
		Title    string    `json:"title"`
		Deadline time.Time `json:"deadline"` // UTC
	}

	// Structure is the full topology of a course.
	Structure struct {
		Course      Course       `json:"course"`
		Modules     []Module     `json:"modules"`
		Quizzes     []Quiz       `json:"quizzes"`
		Assignments []Assignment `json:"assignments"`
	}

	// Items lists the ids of every completable item of a course, grouped by tracker.
	Items struct {
		LessonIDs     []string // video and text lessons
		QuizIDs       []string
		AssignmentIDs []string
	}
)

// TotalPoints is the sum of the points of all of the quiz's questions.
func (q Quiz) TotalPoints() int {
	var total int
	for _, qn := range q.Questions {
		total += qn.Points
	}
	return total
}

// DeadlinePassed reports whether now is strictly after the assignment's deadline.
func (a Assignment) DeadlinePassed(now time.Time) bool {
	return now.After(a.Deadline)
}

// Items extracts the completable items of the structure.
func (s Structure) Items() Items {
	var items Items
	for _, m := range s.Modules {
		for _, l := range m.Lessons {
			if l.ContentType.DirectlyCompletable() {
				items.LessonIDs = append(items.LessonIDs, l.ID)
			}
		}
	}
	for _, q := range s.Quizzes {
		items.QuizIDs = append(items.QuizIDs, q.ID)
	}
	for _, a := range s.Assignments {
		items.AssignmentIDs = append(items.AssignmentIDs, a.ID)
	}
	return items
}

func (i Items) Total() int {
	return len(i.LessonIDs) + len(i.QuizIDs) + len(i.AssignmentIDs)
}
