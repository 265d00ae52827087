package main

import (
	"github.com/spf13/cobra"
)

func newDefaultsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "defaults <schema>",
		Short: "Print the form document with schema defaults applied",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := a.controller(cmd, args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), ctrl.State().FormData)
		},
	}
}
