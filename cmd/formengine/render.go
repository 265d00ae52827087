package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-formengine/internal/watch"
	"github.com/goliatone/go-formengine/pkg/render"
)

type renderFlags struct {
	format      string
	output      string
	watch       bool
	validate    bool
	title       string
	action      string
	method      string
	submitLabel string
}

func newRenderCommand(a *app) *cobra.Command {
	f := &renderFlags{}
	cmd := &cobra.Command{
		Use:   "render <schema>",
		Short: "Render a form as HTML or JSON",
		Long: `Renders the form tree for a schema. --format json emits the tree itself for
hosts that draw their own widgets. --watch re-renders whenever one of the
input documents changes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := renderOnce(cmd, a, f, args[0]); err != nil {
				return err
			}
			if !f.watch {
				return nil
			}
			return watchAndRender(cmd, a, f, args[0])
		},
	}
	cmd.Flags().StringVar(&f.format, "format", "html", "output format: html or json")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&f.watch, "watch", false, "re-render when an input document changes")
	cmd.Flags().BoolVar(&f.validate, "validate", false, "validate before rendering so errors show inline")
	cmd.Flags().StringVar(&f.title, "title", "", "form title")
	cmd.Flags().StringVar(&f.action, "action", "", "form action URL")
	cmd.Flags().StringVar(&f.method, "method", "", "form method (default post)")
	cmd.Flags().StringVar(&f.submitLabel, "submit-label", "", "submit button caption")
	return cmd
}

func renderOnce(cmd *cobra.Command, a *app, f *renderFlags, schemaPath string) error {
	orch, err := a.orchestrator(cmd)
	if err != nil {
		return err
	}
	req, err := a.request(schemaPath)
	if err != nil {
		return err
	}
	req.Renderer = f.format
	req.Validate = f.validate
	req.RenderOptions = render.Options{
		Title:       f.title,
		Action:      f.action,
		Method:      f.method,
		SubmitLabel: f.submitLabel,
	}
	output, _, err := orch.Generate(cmd.Context(), req)
	if err != nil {
		return err
	}
	return writeOutput(cmd.OutOrStdout(), f.output, output)
}

func watchAndRender(cmd *cobra.Command, a *app, f *renderFlags, schemaPath string) error {
	paths := a.watchedPaths(schemaPath)
	if len(paths) == 0 {
		return fmt.Errorf("render: --watch needs local files")
	}
	watcher, err := watch.New(paths, watch.WithLogger(a.logger))
	if err != nil {
		return err
	}
	a.logger.Info("watching for changes", zap.Strings("paths", paths))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return watcher.Run(ctx, func(path string) {
		a.logger.Info("re-rendering", zap.String("changed", path))
		if err := renderOnce(cmd, a, f, schemaPath); err != nil {
			a.logger.Error("render failed", zap.Error(err))
		}
	})
}
