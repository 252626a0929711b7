package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/hocphi/core"
	"github.com/trezcool/hocphi/core/student"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	svc student.Service
	out io.Writer
}

// run executes args (program name included).
func (cli *commandLine) run(args []string) error {
	root := cli.rootCmd()
	if len(args) < 2 {
		_ = root.Usage()
		return errHelp
	}
	root.SetArgs(args[1:])
	return root.ExecuteContext(context.Background())
}

func (cli *commandLine) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Manage the tuition spreadsheet from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(cli.out)
	root.SetErr(cli.out)

	root.AddCommand(
		cli.classesCmd(),
		cli.listCmd(),
		cli.addCmd(),
		cli.payCmd(),
		cli.collectCmd(),
		cli.deleteCmd(),
	)
	return root
}

func (cli *commandLine) table() *tabwriter.Writer {
	return tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
}

// rowArg parses a 1-based row argument.
func rowArg(arg string) (int, error) {
	row, err := strconv.Atoi(arg)
	if err != nil {
		return 0, core.NewValidationError(nil, core.FieldError{Field: "row", Error: fmt.Sprintf("%q is not a row number", arg)})
	}
	return row, nil
}

func (cli *commandLine) classesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classes",
		Short: "List the classes with this month's payments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			overviews, err := cli.svc.Overview(cmd.Context())
			if err != nil {
				return err
			}
			w := cli.table()
			_, _ = fmt.Fprintln(w, "CLASS\tSTUDENTS\tPAID\tCOLLECTED")
			for _, ov := range overviews {
				_, _ = fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", ov.Class, ov.Students, ov.Paid, ov.Collected)
			}
			return w.Flush()
		},
	}
}

func (cli *commandLine) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list CLASS",
		Short: "List the students of a class",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			roster, err := cli.svc.ListClass(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			w := cli.table()
			_, _ = fmt.Fprintln(w, "ROW\tNAME\tPARENT\tPHONE\tPAID MONTHS")
			for _, s := range roster.Students {
				var paid int
				for _, slot := range s.Months {
					if slot.Status == student.StatusPaid {
						paid++
					}
				}
				_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\n", s.RowID, s.Name, s.ParentName, s.ParentPhone, paid)
			}
			return w.Flush()
		},
	}
}
