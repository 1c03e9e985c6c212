package dbtest

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"github.com/trezcool/coursework/core"
	"github.com/trezcool/coursework/core/completion"
	"github.com/trezcool/coursework/core/course"
	"github.com/trezcool/coursework/core/enrollment"
	"github.com/trezcool/coursework/core/progress"
	"github.com/trezcool/coursework/core/quiz"
	"github.com/trezcool/coursework/core/submission"
	appfs "github.com/trezcool/coursework/fs"
	"github.com/trezcool/coursework/services/email"
	"github.com/trezcool/coursework/services/logger"
	"github.com/trezcool/coursework/storage/database/sqlxrepos"
)

// Services is the engine wired on a test database, with silent logging and a synchronous mail mock.
type Services struct {
	Conf     *core.Config
	DB       *sqlx.DB
	Validate *validator.Validate
	Logger   core.Logger
	Mail     core.EmailService

	Courses     course.Reader
	Enrollments enrollment.Repository
	Aggregator  *progress.Aggregator
	Enrollment  enrollment.Service
	Completion  completion.Service
	Quiz        quiz.Service
	Submission  submission.Service
}

func NewServices(t *testing.T, conf *core.Config, db *sqlx.DB) *Services {
	t.Helper()

	if err := core.ParseEmailTemplates(appfs.FS, appfs.EmailTemplatesDir, conf); err != nil {
		t.Fatalf("core.ParseEmailTemplates() failed: %v", err)
	}
	emailsvc.ResetSentMessages()

	validate := validator.New()
	core.InitValidators(validate, core.NewTranslator())
	log := logsvc.NewTestLogger(conf)
	mail := emailsvc.NewConsoleServiceMock(conf, log)

	courses := sqlxrepos.NewCourseReader(db)
	enrollments := sqlxrepos.NewEnrollmentRepository(db)
	completions := sqlxrepos.NewCompletionRepository(db)
	quizzes := sqlxrepos.NewQuizRepository(db)
	submissions := sqlxrepos.NewSubmissionRepository(db)

	agg := progress.NewAggregator(progress.Deps{
		DB:          db,
		Courses:     courses,
		Enrollments: enrollments,
		Lessons:     completions,
		Quizzes:     quizzes,
		Submissions: submissions,
		Mail:        mail,
		Logger:      log,
		Conf:        conf,
	})

	return &Services{
		Conf:        conf,
		DB:          db,
		Validate:    validate,
		Logger:      log,
		Mail:        mail,
		Courses:     courses,
		Enrollments: enrollments,
		Aggregator:  agg,
		Enrollment:  enrollment.NewService(enrollments, validate),
		Completion:  completion.NewService(completions, courses, agg),
		Quiz:        quiz.NewService(quizzes, courses, agg, validate),
		Submission:  submission.NewService(submissions, courses, agg, validate),
	}
}
