package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/Hexmon/e-dossier-sub006/core"
	"github.com/Hexmon/e-dossier-sub006/core/performance"
)

var (
	isTerminalFunc = term.IsTerminal // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db      *sql.DB
	driver  string
	perfSvc *performance.Service
	out     io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS...] - run a goose migration command (up, down, status, ...)")
	fmt.Println("  academics -oc ID -semester N - print the reconciled academic subjects of a semester")
	fmt.Println("  spr -oc ID -semester N - print a semester performance report")
	fmt.Println("  fpr -oc ID - print the final performance report")
	fmt.Println("  setspr -oc ID -semester N -actor ID [-cdr X] [-remark KEY=TEXT]... [-pc TEXT] [-dc TEXT] [-cdr-remarks TEXT]")
	fmt.Println("         - update a semester performance report")
}

// remarksFlag collects repeated -remark KEY=TEXT flags.
type remarksFlag map[performance.SubjectKey]string

func (f remarksFlag) String() string {
	pairs := make([]string, 0, len(f))
	for k, v := range f {
		pairs = append(pairs, string(k)+"="+v)
	}
	return strings.Join(pairs, ",")
}

func (f remarksFlag) Set(value string) error {
	parts := strings.SplitN(value, "=", 2)
	if len(parts) != 2 || core.CleanString(parts[0]) == "" {
		return fmt.Errorf("remark must be of form KEY=TEXT (got '%s')", value)
	}
	f[performance.SubjectKey(core.CleanString(parts[0], true))] = parts[1]
	return nil
}

// visited lists the flags explicitly set on the command line.
func visited(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	academicsCmd := flag.NewFlagSet("academics", flag.ContinueOnError)
	academicsOC := academicsCmd.String("oc", "", "The officer cadet's ID.")
	academicsSemester := academicsCmd.Int("semester", 0, "The semester (1-6).")

	sprCmd := flag.NewFlagSet("spr", flag.ContinueOnError)
	sprOC := sprCmd.String("oc", "", "The officer cadet's ID.")
	sprSemester := sprCmd.Int("semester", 0, "The semester (1-6).")

	fprCmd := flag.NewFlagSet("fpr", flag.ContinueOnError)
	fprOC := fprCmd.String("oc", "", "The officer cadet's ID.")

	setSprCmd := flag.NewFlagSet("setspr", flag.ContinueOnError)
	setSprOC := setSprCmd.String("oc", "", "The officer cadet's ID.")
	setSprSemester := setSprCmd.Int("semester", 0, "The semester (1-6).")
	setSprActor := setSprCmd.String("actor", "", "The ID of the user making the change.")
	setSprCdr := setSprCmd.Float64("cdr", 0, "The commander's marks (0-25).")
	setSprRemarks := remarksFlag{}
	setSprCmd.Var(setSprRemarks, "remark", "A subject remark as KEY=TEXT. May be repeated.")
	setSprPC := setSprCmd.String("pc", "", "The platoon commander's remarks.")
	setSprDC := setSprCmd.String("dc", "", "The deputy commander's remarks.")
	setSprCdrRemarks := setSprCmd.String("cdr-remarks", "", "The commander's remarks.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "academics":
		if err := academicsCmd.Parse(args[2:]); err != nil {
			return err
		}
		if core.CleanString(*academicsOC) == "" {
			academicsCmd.Usage()
			return errHelp
		}
		return cli.academics(core.CleanString(*academicsOC), *academicsSemester)
	case "spr":
		if err := sprCmd.Parse(args[2:]); err != nil {
			return err
		}
		if core.CleanString(*sprOC) == "" {
			sprCmd.Usage()
			return errHelp
		}
		return cli.spr(core.CleanString(*sprOC), *sprSemester)
	case "fpr":
		if err := fprCmd.Parse(args[2:]); err != nil {
			return err
		}
		if core.CleanString(*fprOC) == "" {
			fprCmd.Usage()
			return errHelp
		}
		return cli.fpr(core.CleanString(*fprOC))
	case "setspr":
		if err := setSprCmd.Parse(args[2:]); err != nil {
			return err
		}
		in := setSprInput{
			OCID:     core.CleanString(*setSprOC),
			ActorID:  core.CleanString(*setSprActor),
			Semester: *setSprSemester,
		}
		set := visited(setSprCmd)
		if set["cdr"] {
			in.Update.CdrMarks = setSprCdr
		}
		if len(setSprRemarks) > 0 {
			in.Update.SubjectRemarks = setSprRemarks
		}
		if set["pc"] {
			in.Update.PlatoonCommanderRemarks = setSprPC
		}
		if set["dc"] {
			in.Update.DeputyCommanderRemarks = setSprDC
		}
		if set["cdr-remarks"] {
			in.Update.CommanderRemarks = setSprCdrRemarks
		}
		if in.OCID == "" || in.Update.IsEmpty() {
			setSprCmd.Usage()
			return errHelp
		}
		return cli.setSpr(in)
	default:
		cli.printUsage()
		return errHelp
	}
}

// useTable reports whether stdout is an interactive terminal.
func (cli *commandLine) useTable() bool {
	return isTerminalFunc(int(os.Stdout.Fd()))
}
