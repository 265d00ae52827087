package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newIDsCommand(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "ids <schema>",
		Short: "Print the element ids generated for a form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := a.controller(cmd, args[0])
			if err != nil {
				return err
			}
			ids := ctrl.State().IDSchema
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), ids)
			}
			for _, id := range ids.IDs() {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the id tree as JSON")
	return cmd
}
