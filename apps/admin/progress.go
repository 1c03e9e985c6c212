package main

import (
	"bufio"
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/coursework/core"
	"github.com/trezcool/coursework/core/enrollment"
)

var (
	errNotTerminal = errors.New("refusing to apply without -yes: stdin is not a terminal")
	errAborted     = errors.New("aborted")
)

func (cli *commandLine) enroll(ctx context.Context, studentID, courseID string) error {
	enr, err := cli.enrSvc.Enroll(ctx, enrollment.NewEnrollment{StudentID: studentID, CourseID: courseID})
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "enrolled %s in %s: %s\n", enr.StudentID, enr.CourseID, enr.ID)
	return nil
}

func (cli *commandLine) recompute(ctx context.Context, enrollmentID string) error {
	res, err := cli.agg.Recompute(ctx, enrollmentID)
	if err != nil {
		return err
	}
	enr, err := cli.enrSvc.Get(ctx, enrollmentID)
	if err != nil {
		return err
	}
	cli.agg.AfterCommit(ctx, core.Actor{ID: enr.StudentID}, res)
	fmt.Fprintf(cli.out, "%s: %d%% -> %d%% (%d/%d items)\n",
		res.EnrollmentID, res.PreviousProgress, res.Progress, res.CompletedItems, res.TotalItems)
	return nil
}

func reportLine(enr enrollment.Enrollment, progress int, completed bool) string {
	return fmt.Sprintf("%s student=%s course=%s progress=%d completed=%t\n",
		enr.ID, enr.StudentID, enr.CourseID, progress, completed)
}

func (cli *commandLine) reconcile(ctx context.Context, courseID string, apply, yes bool) error {
	enrs, err := cli.enrSvc.Query(ctx, &enrollment.QueryFilter{CourseID: courseID})
	if err != nil {
		return err
	}

	var (
		drifts        []enrollment.Enrollment
		stored, fresh []string
	)
	for _, enr := range enrs {
		snap, err := cli.agg.Compute(ctx, enr)
		if err != nil {
			return errors.Wrapf(err, "computing enrollment %s", enr.ID)
		}
		completed := enr.IsCompleted() || snap.Progress == 100
		if snap.Progress == enr.Progress && completed == enr.IsCompleted() {
			continue
		}
		drifts = append(drifts, enr)
		stored = append(stored, reportLine(enr, enr.Progress, enr.IsCompleted()))
		fresh = append(fresh, reportLine(enr, snap.Progress, completed))
	}

	if len(drifts) == 0 {
		fmt.Fprintf(cli.out, "%d enrollments checked, no drift\n", len(enrs))
		return nil
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        stored,
		B:        fresh,
		FromFile: "stored",
		ToFile:   "recomputed",
		Context:  0,
	})
	if err != nil {
		return errors.Wrap(err, "building drift report")
	}
	fmt.Fprint(cli.out, diff)
	fmt.Fprintf(cli.out, "%d enrollments checked, %d drifted\n", len(enrs), len(drifts))

	if !apply {
		return nil
	}
	if !yes {
		fmt.Fprintf(cli.out, "Recompute %d enrollments? [y/N]: ", len(drifts))
		answer, err := bufio.NewReader(cli.in).ReadString('\n')
		if err != nil && answer == "" {
			return errAborted
		}
		if a := core.CleanString(answer, true); a != "y" && a != "yes" {
			return errAborted
		}
	}

	for _, enr := range drifts {
		res, err := cli.agg.Recompute(ctx, enr.ID)
		if err != nil {
			return errors.Wrapf(err, "recomputing enrollment %s", enr.ID)
		}
		cli.agg.AfterCommit(ctx, core.Actor{ID: enr.StudentID}, res)
		fmt.Fprintf(cli.out, "%s: %d%% -> %d%%\n", res.EnrollmentID, res.PreviousProgress, res.Progress)
	}
	return nil
}
