package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"

	"taskboard/config"
)

func writeConfig(t *testing.T, dir, data string) string {
	t.Helper()
	path := filepath.Join(dir, "taskboard.yaml")
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestReadConfigMissingDefaultFile(t *testing.T) {
	t.Setenv(config.KeyPort, "")
	v := viper.New()
	if err := readConfig(v, "", t.TempDir()); err != nil {
		t.Fatalf("expected missing default file to be ignored, got %v", err)
	}
	if v.GetString(config.KeyPort) != "8080" {
		t.Fatalf("expected defaults, got port %q", v.GetString(config.KeyPort))
	}
}

func TestReadConfigMalformedDefaultFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "backend_base_url: [unterminated\n")

	if err := readConfig(viper.New(), "", dir); err == nil {
		t.Fatalf("expected parse error for malformed taskboard.yaml")
	}
}

func TestReadConfigMissingExplicitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.yaml")
	if err := readConfig(viper.New(), path); err == nil {
		t.Fatalf("expected error for missing --config file")
	}
}

func TestReadConfigDefaultFile(t *testing.T) {
	t.Setenv(config.KeyBackendBaseURL, "")
	dir := t.TempDir()
	writeConfig(t, dir, "backend_base_url: https://file.example.com/api\n")

	v := viper.New()
	if err := readConfig(v, "", dir); err != nil {
		t.Fatalf("read config: %v", err)
	}
	if got := v.GetString(config.KeyBackendBaseURL); got != "https://file.example.com/api" {
		t.Fatalf("unexpected base url: %q", got)
	}
}
