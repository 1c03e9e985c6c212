package main

import (
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/coursework/core"
	"github.com/trezcool/coursework/core/enrollment"
	"github.com/trezcool/coursework/core/progress"
	appfs "github.com/trezcool/coursework/fs"
	emailsvc "github.com/trezcool/coursework/services/email"
	logsvc "github.com/trezcool/coursework/services/logger"
	"github.com/trezcool/coursework/storage/database"
	"github.com/trezcool/coursework/storage/database/sqlxrepos"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal("opening database", err)
	}
	defer func() { _ = db.Close() }()

	if err = core.ParseEmailTemplates(appfs.FS, appfs.EmailTemplatesDir, conf); err != nil {
		logger.Fatal("parsing email templates", err)
	}

	validate := validator.New()
	core.InitValidators(validate, core.NewTranslator())

	courses := sqlxrepos.NewCourseReader(db)
	enrollments := sqlxrepos.NewEnrollmentRepository(db)
	completions := sqlxrepos.NewCompletionRepository(db)
	quizzes := sqlxrepos.NewQuizRepository(db)
	submissions := sqlxrepos.NewSubmissionRepository(db)

	// start CLI
	cli := commandLine{
		db:     db,
		enrSvc: enrollment.NewService(enrollments, validate),
		agg: progress.NewAggregator(progress.Deps{
			DB:          db,
			Courses:     courses,
			Enrollments: enrollments,
			Lessons:     completions,
			Quizzes:     quizzes,
			Submissions: submissions,
			Mail:        emailsvc.NewConsoleService(conf, logger),
			Logger:      logger,
			Conf:        conf,
		}),
		in:  os.Stdin,
		out: os.Stdout,
	}
	if err = cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error("command failed", err)
		}
		_ = db.Close()
		os.Exit(1)
	}
}
