package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/Hexmon/e-dossier-sub006/core/performance"
)

func (cli *commandLine) academics(ocID string, semester int) error {
	view, err := cli.perfSvc.GetAcademicSemesterView(context.Background(), ocID, semester)
	if err != nil {
		return err
	}
	if !cli.useTable() {
		return cli.writeJSON(view)
	}

	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Semester %d (branch %s)\n", view.Semester, view.BranchTag)
	fmt.Fprintln(w, "CODE\tSUBJECT\tTHEORY\tPRACTICAL")
	for _, subj := range view.Subjects {
		theory, practical := "-", "-"
		if subj.IncludeTheory && subj.Theory != nil {
			theory = formatMarks(subj.Theory.Total)
		}
		if subj.IncludePractical && subj.Practical != nil {
			practical = formatMarks(subj.Practical.Total)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", subj.Subject.Code, subj.Subject.Name, theory, practical)
	}
	return w.Flush()
}

func (cli *commandLine) spr(ocID string, semester int) error {
	view, err := cli.perfSvc.GetSprView(context.Background(), ocID, semester)
	if err != nil {
		return err
	}
	return cli.printSpr(view)
}

func (cli *commandLine) printSpr(view performance.SprView) error {
	if !cli.useTable() {
		return cli.writeJSON(view)
	}

	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Semester %d\n", view.Semester)
	fmt.Fprintln(w, "SUBJECT\tMAX\tSCORED\tREMARKS")
	for _, row := range view.Rows {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", row.SubjectLabel, row.MaxMarks, formatMarks(row.MarksScored), row.Remarks)
	}
	remarks := view.PerformanceReportRemarks
	fmt.Fprintf(w, "\nPl Cdr:\t%s\nDy Cdr:\t%s\nCdr:\t%s\n",
		remarks.PlatoonCommanderRemarks, remarks.DeputyCommanderRemarks, remarks.CommanderRemarks)
	return w.Flush()
}

func (cli *commandLine) fpr(ocID string) error {
	view, err := cli.perfSvc.GetFprView(context.Background(), ocID)
	if err != nil {
		return err
	}
	if !cli.useTable() {
		return cli.writeJSON(view)
	}

	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	header := []string{"SUBJECT", "MAX"}
	for _, sem := range performance.Semesters() {
		header = append(header, "S"+strconv.Itoa(sem))
	}
	header = append(header, "SCORED")
	fmt.Fprintln(w, strings.Join(header, "\t"))
	for _, row := range view.Rows {
		cols := []string{row.SubjectLabel, strconv.Itoa(row.MaxMarks)}
		for _, marks := range row.MarksBySemester {
			cols = append(cols, formatMarks(marks))
		}
		cols = append(cols, formatMarks(row.MarksScored))
		fmt.Fprintln(w, strings.Join(cols, "\t"))
	}
	return w.Flush()
}

func (cli *commandLine) writeJSON(v interface{}) error {
	enc := json.NewEncoder(cli.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatMarks(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
