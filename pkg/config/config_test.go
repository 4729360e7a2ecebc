package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mlindner/waterhub/pkg/hub"
)

const validYAML = `
hub:
  user: operator@example.com
  password: secret
  api_key: key123
  api_secret: sec456
  region: Staging
log_level: debug
analysis:
  days_back: 14
`

func TestParseValidConfig(t *testing.T) {
	cfg, err := Parse([]byte(validYAML))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.Hub.User != "operator@example.com" || cfg.Hub.Region != "Staging" {
		t.Errorf("Unexpected hub section: %+v", cfg.Hub)
	}
	if cfg.LogLevel != "debug" || cfg.Analysis.DaysBack != 14 {
		t.Errorf("Unexpected settings: %+v", cfg)
	}

	cred := cfg.Credential()
	if cred.Region != hub.RegionStaging || cred.APISecret != "sec456" {
		t.Errorf("Unexpected credential: %+v", cred)
	}
	if err := cred.Validate(); err != nil {
		t.Errorf("Converted credential must validate: %v", err)
	}
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
hub:
  user: u
  password: p
  api_key: k
  region: Global
`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected default log level info, got %q", cfg.LogLevel)
	}
	if cfg.Analysis.DaysBack != 7 {
		t.Errorf("Expected default 7 days back, got %d", cfg.Analysis.DaysBack)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "missing api key",
			yaml: "hub:\n  user: u\n  password: p\n  region: Global\n",
			want: "APIKey is required",
		},
		{
			name: "bad region",
			yaml: "hub:\n  user: u\n  password: p\n  api_key: k\n  region: Mars\n",
			want: "Region must be one of",
		},
		{
			name: "bad log level",
			yaml: "hub:\n  user: u\n  password: p\n  api_key: k\n  region: Global\nlog_level: loud\n",
			want: "LogLevel must be one of",
		},
		{
			name: "days back out of range",
			yaml: "hub:\n  user: u\n  password: p\n  api_key: k\n  region: Global\nanalysis:\n  days_back: 1000\n",
			want: "DaysBack",
		},
		{
			name: "not yaml",
			yaml: "{{{",
			want: "parse config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("Expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected %q in error, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "waterhub.yaml")
	if err := os.WriteFile(path, []byte(validYAML), 0o600); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Hub.APIKey != "key123" {
		t.Errorf("Unexpected config: %+v", cfg)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected an error for a missing file")
	}
}
