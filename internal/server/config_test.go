package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/iwvelando/project-finance/pkg/constants"
)

func TestLoadConfigDefaultsWhenMissing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Address != constants.DefaultServerAddress {
		t.Fatalf("expected default address, got %s", cfg.Address)
	}
	if cfg.UploadSizeBytes() != constants.DefaultMaxUploadSizeBytes {
		t.Fatalf("expected default max upload size, got %d", cfg.UploadSizeBytes())
	}
	if cfg.ReadTimeoutDuration() != DefaultReadTimeout {
		t.Fatalf("expected default read timeout, got %s", cfg.ReadTimeoutDuration())
	}
	if cfg.Logging.Level != "" || cfg.Logging.Format != "" || cfg.Logging.OutputFile != "" {
		t.Fatalf("expected empty logging defaults, got %+v", cfg.Logging)
	}
	if cfg.Snapshots.Backend != "file" || cfg.Snapshots.Directory != constants.DefaultSnapshotDir {
		t.Fatalf("expected file snapshot defaults, got %+v", cfg.Snapshots)
	}
}

func TestLoadConfigEmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Address != constants.DefaultServerAddress {
		t.Fatalf("expected default address, got %s", cfg.Address)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server-config.yaml")

	contents := []byte(`address: 127.0.0.1:9000
maxUploadSize: 2M
readTimeout: 30s
logging:
  level: debug
  format: console
  outputFile: /tmp/server.log
snapshots:
  backend: postgres
  databaseURL: postgres://localhost/finance
`)
	if err := os.WriteFile(path, contents, 0600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Address != "127.0.0.1:9000" {
		t.Fatalf("expected address override, got %s", cfg.Address)
	}
	if cfg.UploadSizeBytes() != 2*1024*1024 {
		t.Fatalf("expected max upload override, got %d", cfg.UploadSizeBytes())
	}
	if cfg.ReadTimeoutDuration() != 30*time.Second {
		t.Fatalf("expected read timeout 30s, got %s", cfg.ReadTimeoutDuration())
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected logging level debug, got %s", cfg.Logging.Level)
	}
	if cfg.Logging.OutputFile != "/tmp/server.log" {
		t.Fatalf("expected logging outputFile /tmp/server.log, got %s", cfg.Logging.OutputFile)
	}
	if cfg.Snapshots.Backend != "postgres" {
		t.Fatalf("expected postgres snapshot backend, got %s", cfg.Snapshots.Backend)
	}
	if cfg.Snapshots.DatabaseURL != "postgres://localhost/finance" {
		t.Fatalf("expected database URL override, got %s", cfg.Snapshots.DatabaseURL)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := map[string]string{
		"bad size":    "maxUploadSize: invalid",
		"bad timeout": "readTimeout: soon",
		"bad yaml":    "address: [",
	}

	for name, contents := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			if err := os.WriteFile(path, []byte(contents), 0600); err != nil {
				t.Fatalf("failed to write temp config: %v", err)
			}
			if _, err := LoadConfig(path); err == nil {
				t.Fatal("expected error but got nil")
			}
		})
	}
}

func TestSetUploadSizeBytes(t *testing.T) {
	cfg, _ := LoadConfig("")
	cfg.SetUploadSizeBytes(4096)
	if cfg.UploadSizeBytes() != 4096 || cfg.MaxUploadSize != "4096" {
		t.Fatalf("SetUploadSizeBytes(4096) = %d/%s", cfg.UploadSizeBytes(), cfg.MaxUploadSize)
	}
	cfg.SetUploadSizeBytes(0)
	if cfg.UploadSizeBytes() != 4096 {
		t.Fatalf("SetUploadSizeBytes(0) should be ignored, got %d", cfg.UploadSizeBytes())
	}
}

func TestParseSize(t *testing.T) {
	tests := map[string]int64{
		"":          constants.DefaultMaxUploadSizeBytes,
		"1024":      1024,
		"512b":      512,
		"256K":      256 * 1024,
		"1m":        1024 * 1024,
		"3MB":       3 * 1024 * 1024,
		"2G":        2 * 1024 * 1024 * 1024,
		"  4096   ": 4096,
	}

	for input, expected := range tests {
		got, err := ParseSize(input)
		if err != nil {
			t.Fatalf("ParseSize(%q) returned error: %v", input, err)
		}
		if got != expected {
			t.Fatalf("ParseSize(%q) = %d, expected %d", input, got, expected)
		}
	}

	for _, input := range []string{"1TB", "abc", "K", "99999999999999999G"} {
		if _, err := ParseSize(input); err == nil {
			t.Fatalf("ParseSize(%q) expected error", input)
		}
	}
}
