package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/hocphi/core/student"
)

var errNotConfirmed = errors.New("deletion not confirmed: pass --yes")

func (cli *commandLine) addCmd() *cobra.Command {
	var id student.Identity
	cmd := &cobra.Command{
		Use:   "add CLASS NAME",
		Short: "Append a student to a class",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id.Name = args[1]
			row, err := cli.svc.Add(cmd.Context(), student.NewStudent{Identity: id, Class: args[0]})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cli.out, "added %q to %s at row %d\n", id.Name, args[0], row)
			return nil
		},
	}
	cmd.Flags().StringVar(&id.ParentName, "parent-name", "", "parent's name")
	cmd.Flags().StringVar(&id.ParentPhone, "parent-phone", "", "parent's phone number")
	cmd.Flags().StringVar(&id.ParentEmail, "parent-email", "", "parent's email, receipts are sent to it")
	cmd.Flags().StringVar(&id.Note, "note", "", "free text note")
	return cmd
}

func (cli *commandLine) deleteCmd() *cobra.Command {
	var confirmed bool
	cmd := &cobra.Command{
		Use:   "delete CLASS ROW",
		Short: "Delete the row of a student",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			row, err := rowArg(args[1])
			if err != nil {
				return err
			}
			if !confirmed {
				return errNotConfirmed
			}
			if err = cli.svc.Delete(cmd.Context(), args[0], row); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cli.out, "deleted row %d of %s\n", row, args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&confirmed, "yes", false, "confirm the deletion")
	return cmd
}
