package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	internalloader "github.com/goliatone/go-formengine/internal/jsonschema/loader"
	"github.com/goliatone/go-formengine/internal/logging"
	"github.com/goliatone/go-formengine/pkg/form"
	"github.com/goliatone/go-formengine/pkg/jsonschema"
	"github.com/goliatone/go-formengine/pkg/orchestrator"
	"github.com/goliatone/go-formengine/pkg/renderers/tui"
	"github.com/goliatone/go-formengine/pkg/schema"
)

const httpTimeout = 10 * time.Second

// app carries the global flags and the logger shared by every command.
type app struct {
	verbose      bool
	configPath   string
	idPrefix     string
	liveValidate bool
	noValidate   bool
	uiPath       string
	dataPath     string
	presetPath   string
	allowHTTP    bool

	logger *zap.Logger
	driver tui.PromptDriver
}

func newRootCommand() *cobra.Command {
	return buildRootCommand(&app{})
}

// buildRootCommand builds the command tree around a. A preset logger skips
// the production logger setup.
func buildRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "formengine",
		Short: "Render, validate and fill JSON Schema forms",
		Long: `formengine turns a JSON Schema (plus an optional uiSchema and form data)
into a form. Documents may be JSON or YAML. References to other documents are
bundled; references into the schema's own definitions are resolved at render
time.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.logger != nil {
				return nil
			}
			logger, err := logging.New(a.verbose)
			if err != nil {
				return err
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVar(&a.configPath, "config", "", "controller config file (YAML or JSON)")
	flags.StringVar(&a.idPrefix, "id-prefix", "", "root id prefix (default \"root\")")
	flags.BoolVar(&a.liveValidate, "live-validate", false, "validate on every change")
	flags.BoolVar(&a.noValidate, "no-validate", false, "skip validation, including on submit")
	flags.StringVar(&a.uiPath, "ui", "", "uiSchema document")
	flags.StringVar(&a.dataPath, "data", "", "initial form data document")
	flags.StringVar(&a.presetPath, "preset", "", "preset document applied to the loaded schema")
	flags.BoolVar(&a.allowHTTP, "allow-http", false, "allow http(s) documents and references")

	root.AddCommand(
		newRenderCommand(a),
		newValidateCommand(a),
		newDefaultsCommand(a),
		newIDsCommand(a),
		newFillCommand(a),
		newLintCommand(a),
	)
	return root
}

// config merges the config file with explicitly set flags.
func (a *app) config(cmd *cobra.Command) (form.Config, error) {
	cfg := form.DefaultConfig()
	if a.configPath != "" {
		loaded, err := form.LoadConfigFile(a.configPath)
		if err != nil {
			return form.Config{}, err
		}
		cfg = loaded
	}
	flags := cmd.Flags()
	if flags.Changed("id-prefix") {
		cfg.IDPrefix = a.idPrefix
	}
	if flags.Changed("live-validate") {
		cfg.LiveValidate = a.liveValidate
	}
	if flags.Changed("no-validate") {
		cfg.NoValidate = a.noValidate
	}
	return cfg, nil
}

func (a *app) orchestrator(cmd *cobra.Command) (*orchestrator.Orchestrator, error) {
	cfg, err := a.config(cmd)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("controller config",
		zap.Bool("liveValidate", cfg.LiveValidate),
		zap.Bool("noValidate", cfg.NoValidate),
		zap.String("idPrefix", cfg.IDPrefix),
	)

	options := []orchestrator.Option{
		orchestrator.WithLogger(a.logger),
		orchestrator.WithLoader(internalloader.New(jsonschema.LoaderOptions{
			AllowHTTPFallback: a.allowHTTP,
			RequestTimeout:    httpTimeout,
		})),
		orchestrator.WithBundleOptions(jsonschema.BundleOptions{AllowHTTPRefs: a.allowHTTP}),
		orchestrator.WithFormOptions(form.WithConfig(cfg)),
	}
	if a.presetPath != "" {
		preset, err := loadPreset(a.presetPath)
		if err != nil {
			return nil, err
		}
		options = append(options, orchestrator.WithSchemaTransformer(preset))
	}
	return orchestrator.New(options...), nil
}

func (a *app) request(schemaPath string) (orchestrator.Request, error) {
	req := orchestrator.Request{}
	var err error
	if req.Schema, err = schema.SourceFor(schemaPath); err != nil {
		return req, err
	}
	if a.uiPath != "" {
		if req.UiSchema, err = schema.SourceFor(a.uiPath); err != nil {
			return req, err
		}
	}
	if a.dataPath != "" {
		if req.FormData, err = schema.SourceFor(a.dataPath); err != nil {
			return req, err
		}
	}
	return req, nil
}

// controller loads the documents for schemaPath and builds a controller.
func (a *app) controller(cmd *cobra.Command, schemaPath string, opts ...form.Option) (*form.Controller, error) {
	orch, err := a.orchestrator(cmd)
	if err != nil {
		return nil, err
	}
	req, err := a.request(schemaPath)
	if err != nil {
		return nil, err
	}
	return orch.Controller(cmd.Context(), req, opts...)
}

// watchedPaths lists the local documents a command depends on.
func (a *app) watchedPaths(schemaPath string) []string {
	var out []string
	for _, path := range []string{schemaPath, a.uiPath, a.dataPath, a.presetPath, a.configPath} {
		if path == "" {
			continue
		}
		if src, err := schema.SourceFor(path); err == nil && src.Kind() == schema.SourceKindFile {
			out = append(out, path)
		}
	}
	return out
}

func loadPreset(path string) (*orchestrator.PresetTransformer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read preset: %w", err)
	}
	return orchestrator.NewPresetTransformer(data)
}
