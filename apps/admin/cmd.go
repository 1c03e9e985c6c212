package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/trezcool/coursework/core/enrollment"
	"github.com/trezcool/coursework/core/progress"
)

var (
	isTerminalFunc = term.IsTerminal // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db     *sqlx.DB
	enrSvc enrollment.Service
	agg    *progress.Aggregator
	in     io.Reader
	out    io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a goose command against the embedded migrations")
	fmt.Fprintln(cli.out, "  enroll -student ID -course ID - enroll a student in a course")
	fmt.Fprintln(cli.out, "  recompute -enrollment ID - recompute the progress of an enrollment")
	fmt.Fprintln(cli.out, "  reconcile [-course ID] [-apply] [-yes] - report (and fix) stored progress that drifted")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	enrollCmd := flag.NewFlagSet("enroll", flag.ContinueOnError)
	enrollCmd.SetOutput(cli.out)
	enrollStudent := enrollCmd.String("student", "", "The student's user id.")
	enrollCourse := enrollCmd.String("course", "", "The course id.")

	recomputeCmd := flag.NewFlagSet("recompute", flag.ContinueOnError)
	recomputeCmd.SetOutput(cli.out)
	recomputeEnrollment := recomputeCmd.String("enrollment", "", "The enrollment id.")

	reconcileCmd := flag.NewFlagSet("reconcile", flag.ContinueOnError)
	reconcileCmd.SetOutput(cli.out)
	reconcileCourse := reconcileCmd.String("course", "", "Only check the enrollments of this course.")
	reconcileApply := reconcileCmd.Bool("apply", false, "Recompute the drifted enrollments.")
	reconcileYes := reconcileCmd.Bool("yes", false, "Do not ask for confirmation before applying.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	case "enroll":
		if err := enrollCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		err := vala.BeginValidation().Validate(
			vala.StringNotEmpty(*enrollStudent, "student"),
			vala.StringNotEmpty(*enrollCourse, "course"),
		).Check()
		if err != nil {
			enrollCmd.Usage()
			return errHelp
		}
		return cli.enroll(ctx, *enrollStudent, *enrollCourse)

	case "recompute":
		if err := recomputeCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		err := vala.BeginValidation().Validate(
			vala.StringNotEmpty(*recomputeEnrollment, "enrollment"),
		).Check()
		if err != nil {
			recomputeCmd.Usage()
			return errHelp
		}
		return cli.recompute(ctx, *recomputeEnrollment)

	case "reconcile":
		if err := reconcileCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *reconcileApply && !*reconcileYes && !isTerminalFunc(int(os.Stdin.Fd())) {
			return errNotTerminal
		}
		return cli.reconcile(ctx, *reconcileCourse, *reconcileApply, *reconcileYes)

	default:
		cli.printUsage()
		return errHelp
	}
}
