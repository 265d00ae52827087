package form

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		live      bool
		safe      bool
		showList  bool
		idPrefix  string
		wantError bool
	}{
		{name: "empty keeps defaults", input: "  \n", safe: true, showList: true},
		{name: "yaml", input: "liveValidate: true\nidPrefix: signup\nshowErrorList: false\n", live: true, safe: true, idPrefix: "signup"},
		{name: "json", input: `{"safeRenderCompletion": false, "liveValidate": true}`, live: true, showList: true},
		{name: "malformed", input: "liveValidate: [", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(strings.NewReader(tt.input))
			if tt.wantError {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadConfig: %v", err)
			}
			if cfg.LiveValidate != tt.live || cfg.SafeRenderCompletion != tt.safe ||
				cfg.showErrorList() != tt.showList || cfg.IDPrefix != tt.idPrefix {
				t.Fatalf("unexpected config: %+v", cfg)
			}
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "form.yaml")
	if err := os.WriteFile(path, []byte("noValidate: true\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile: %v", err)
	}
	if !cfg.NoValidate {
		t.Fatalf("noValidate not loaded: %+v", cfg)
	}
	if _, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
