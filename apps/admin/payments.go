package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/trezcool/hocphi/core"
	"github.com/trezcool/hocphi/core/student"
)

func (cli *commandLine) payCmd() *cobra.Command {
	var amount, otherMonth string
	cmd := &cobra.Command{
		Use:   "pay CLASS ROW MONTH",
		Short: "Record the payment of a month",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			row, err := rowArg(args[1])
			if err != nil {
				return err
			}
			month, err := strconv.Atoi(args[2])
			if err != nil || student.MonthLabel(month) == "" {
				return core.NewValidationError(nil, core.FieldError{Field: "month", Error: fmt.Sprintf("%q is not a month (1-12)", args[2])})
			}
			us := student.UpdateStudent{Class: args[0], MonthsPaid: month, PaidAmount: amount, OtherMonth: otherMonth}
			if err = cli.svc.Update(cmd.Context(), row, us); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cli.out, "recorded %s for row %d of %s\n", student.MonthLabel(month), row, args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&amount, "amount", "", "amount paid")
	cmd.Flags().StringVar(&otherMonth, "other-month", "", "status written to every month before the payment")
	return cmd
}

func (cli *commandLine) collectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "collect CLASS ROW",
		Short: "Show the fees of a student",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			row, err := rowArg(args[1])
			if err != nil {
				return err
			}
			summary, err := cli.svc.Collect(cmd.Context(), args[0], row)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cli.out, "%s (%s, row %d)\n", summary.StudentName, summary.Class, summary.RowID)
			w := cli.table()
			_, _ = fmt.Fprintln(w, "MONTH\tSTATUS\tDATE\tAMOUNT")
			for _, e := range summary.Entries {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Label, e.Status, e.Date, e.Amount)
			}
			return w.Flush()
		},
	}
}
