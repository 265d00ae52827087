package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formengine/pkg/validation"
)

func newLintCommand(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "lint <schema>",
		Short: "Check a schema for structural problems",
		Long: `Reports required names missing from properties, arrays with both items forms,
unresolvable references and constraints such as invalid patterns.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, err := a.orchestrator(cmd)
			if err != nil {
				return err
			}
			req, err := a.request(args[0])
			if err != nil {
				return err
			}
			props, err := orch.Props(cmd.Context(), req)
			if err != nil {
				return err
			}
			report := validation.CheckSchema(cmd.Context(), props.Schema)
			out := cmd.OutOrStdout()
			if asJSON {
				if err := writeJSON(out, report); err != nil {
					return err
				}
			} else if report.Valid {
				fmt.Fprintln(out, "ok")
			} else {
				for _, issue := range report.Issues {
					fmt.Fprintf(out, "%s: %s\n", issueLocation(issue), issue.Message)
				}
			}
			if !report.Valid {
				return fmt.Errorf("schema has %d issue(s)", len(report.Issues))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func issueLocation(issue validation.SchemaIssue) string {
	if issue.Path != "" {
		return issue.Path
	}
	return "#"
}
