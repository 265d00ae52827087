package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formengine/pkg/renderers/tui"
)

func newFillCommand(a *app) *cobra.Command {
	var (
		format      string
		output      string
		maxAttempts int
	)
	cmd := &cobra.Command{
		Use:   "fill <schema>",
		Short: "Fill a form interactively in the terminal",
		Long: `Prompts for every field, submits the form and prints the submitted document.
Invalid fields are asked again until the form validates or the attempts run
out.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch tui.OutputFormat(format) {
			case tui.OutputFormatJSON, tui.OutputFormatFormURLEncoded, tui.OutputFormatPrettyText:
			default:
				return fmt.Errorf("fill: unknown format %q", format)
			}
			ctrl, err := a.controller(cmd, args[0])
			if err != nil {
				return err
			}
			driver := a.driver
			if driver == nil {
				driver = tui.NewSurveyDriver(cmd.ErrOrStderr())
			}
			host := tui.New(
				tui.WithPromptDriver(driver),
				tui.WithOutputFormat(tui.OutputFormat(format)),
				tui.WithMaxAttempts(maxAttempts),
				tui.WithLogger(a.logger),
				tui.WithTheme(tui.Theme{ErrorPrefix: "! "}),
			)
			_, payload, err := host.Fill(cmd.Context(), ctrl)
			if err != nil {
				return fmt.Errorf("fill: %w", err)
			}
			return writeOutput(cmd.OutOrStdout(), output, payload)
		},
	}
	cmd.Flags().StringVar(&format, "format", string(tui.OutputFormatJSON), "output format: json, form or pretty")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().IntVar(&maxAttempts, "max-attempts", 3, "submit attempts before giving up")
	return cmd
}
