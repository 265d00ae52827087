package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formengine/pkg/validation"
)

var errInvalid = errors.New("form data is invalid")

type validateReport struct {
	Valid  bool                    `json:"valid"`
	Errors []validation.FieldError `json:"errors,omitempty"`
}

func newValidateCommand(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "validate <schema>",
		Short: "Validate form data against a schema",
		Long: `Submits the form built from the schema and --data and prints the flattened
errors, one "path: message" per line. Exits non-zero when the data is invalid.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := a.controller(cmd, args[0])
			if err != nil {
				return err
			}
			state, err := ctrl.Submit(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				if err := writeJSON(out, validateReport{Valid: state.Valid(), Errors: state.Errors}); err != nil {
					return err
				}
			} else if state.Valid() {
				fmt.Fprintln(out, "valid")
			} else {
				for _, fieldErr := range state.Errors {
					fmt.Fprintln(out, fieldErr.Stack)
				}
			}
			if !state.Valid() {
				return fmt.Errorf("%w: %d error(s)", errInvalid, len(state.Errors))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}
