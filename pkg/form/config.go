package form

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the controller flags. It loads from YAML or JSON so hosts and
// the CLI can keep them next to the schema.
type Config struct {
	// NoValidate suppresses all validation, including on submit.
	NoValidate bool `yaml:"noValidate" json:"noValidate"`
	// LiveValidate validates on every change instead of only on submit.
	LiveValidate bool `yaml:"liveValidate" json:"liveValidate"`
	// Disabled turns every change into a no-op.
	Disabled bool `yaml:"disabled" json:"disabled"`
	// SafeRenderCompletion keeps rendering the fields after one that panics.
	SafeRenderCompletion bool `yaml:"safeRenderCompletion" json:"safeRenderCompletion"`
	// IDPrefix seeds the root id. Empty means "root".
	IDPrefix string `yaml:"idPrefix" json:"idPrefix"`
	// ShowErrorList prepends the error summary to rendered trees.
	ShowErrorList *bool `yaml:"showErrorList,omitempty" json:"showErrorList,omitempty"`
}

// DefaultConfig returns the flags used when none are supplied.
func DefaultConfig() Config {
	show := true
	return Config{SafeRenderCompletion: true, ShowErrorList: &show}
}

func (c Config) showErrorList() bool {
	return c.ShowErrorList == nil || *c.ShowErrorList
}

// LoadConfig decodes a config document. Unset keys keep DefaultConfig values.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	data, err := io.ReadAll(r)
	if err != nil {
		return Config{}, fmt.Errorf("form: read config: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("form: decode config: %w", err)
	}
	return cfg, nil
}

// LoadConfigFile reads a config document from path.
func LoadConfigFile(path string) (Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("form: open config %q: %w", path, err)
	}
	defer file.Close()
	return LoadConfig(file)
}
