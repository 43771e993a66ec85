package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gyeh/chargeflow/internal/resolve"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFromFile_Valid(t *testing.T) {
	path := writeConfig(t, "provider_types:\n  - Physician\n  - ' Nurse Practitioner '\ncredential_tokens: [MD, rn]\nfuzzy_threshold: 0.9\n")

	var c Config
	if err := c.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	want := resolve.MatchConfig{
		ProviderTypes:  []string{"physician", "nurse practitioner"},
		StopTokens:     []string{"md", "rn"},
		FuzzyThreshold: 0.9,
	}
	if diff := cmp.Diff(want, c.MatchConfig()); diff != "" {
		t.Errorf("MatchConfig mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFromFile_EmptyDefaults(t *testing.T) {
	path := writeConfig(t, "provider_types: []\n")

	var c Config
	if err := c.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if diff := cmp.Diff(resolve.DefaultMatchConfig(), c.MatchConfig()); diff != "" {
		t.Errorf("expected defaults (-want +got):\n%s", diff)
	}
}

func TestLoadFromFile_BadThreshold(t *testing.T) {
	path := writeConfig(t, "fuzzy_threshold: 1.5\n")

	var c Config
	if err := c.LoadFromFile(path); err == nil {
		t.Fatal("expected error for threshold above 1")
	}
}

func TestLoadFromFile_MultiWordToken(t *testing.T) {
	path := writeConfig(t, "credential_tokens: ['md phd']\n")

	var c Config
	if err := c.LoadFromFile(path); err == nil {
		t.Fatal("expected error for multi-word token")
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	var c Config
	if err := c.LoadFromFile("/nonexistent/config.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("CHARGEFLOW_CUSTOMER_KEY", "ck")
	t.Setenv("CHARGEFLOW_TIMEOUT_SECONDS", "15")
	t.Setenv("CHARGEFLOW_PORT", "9000")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.CustomerKey != "ck" || c.Port != "9000" {
		t.Errorf("env not applied: %+v", c)
	}
	if c.Timeout().Seconds() != 15 {
		t.Errorf("Timeout = %v, want 15s", c.Timeout())
	}
	if c.LogFormat != "text" || c.OutputDir != "output" {
		t.Errorf("defaults not applied: log=%q out=%q", c.LogFormat, c.OutputDir)
	}
}

func TestValidateForRun(t *testing.T) {
	file := writeConfig(t, "x")
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"ok", Config{FilePath: file, CustomerKey: "k", User: "u", Password: "p"}, false},
		{"no file", Config{CustomerKey: "k", User: "u", Password: "p"}, true},
		{"missing file", Config{FilePath: file + ".nope", CustomerKey: "k", User: "u", Password: "p"}, true},
		{"no creds", Config{FilePath: file}, true},
		{"record without dsn", Config{FilePath: file, CustomerKey: "k", User: "u", Password: "p", Record: true}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.ValidateForRun()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateForRun() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
