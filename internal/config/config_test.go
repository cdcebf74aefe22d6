package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if len(cfg.Outputs) == 0 {
		t.Fatalf("expected defaults to configure at least one output")
	}
	if cfg.BlockerTimeout() != time.Second {
		t.Fatalf("expected default blocker timeout of 1s, got %v", cfg.BlockerTimeout())
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadFromPath(filepath.Join(dir, "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("expected default log_level info, got %q", cfg.LogLevel)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("# empty\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Gaps.Inner != 8 {
		t.Fatalf("expected default inner gap 8, got %d", cfg.Gaps.Inner)
	}
}

func TestLoadFromPath_PartialFileKeepsOtherDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := strings.Join([]string{
		"log_level: debug",
		"gaps:",
		"  outer: 12",
		"  inner: 4",
		"",
	}, "\n")
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "debug" || cfg.Gaps.Outer != 12 || cfg.Gaps.Inner != 4 {
		t.Fatalf("expected overrides applied, got %+v", cfg)
	}
	if len(cfg.Workspaces) != 4 {
		t.Fatalf("expected default workspaces preserved, got %v", cfg.Workspaces)
	}
}

func TestLoadFromPath_UnknownFieldRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("no_such_field: 1\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := LoadFromPath(path); err == nil {
		t.Fatalf("expected unknown field to be rejected")
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"bad log level", func(c *Config) { c.LogLevel = "chatty" }, "log_level"},
		{"negative outer gap", func(c *Config) { c.Gaps.Outer = -1 }, "gaps.outer"},
		{"negative inner gap", func(c *Config) { c.Gaps.Inner = -2 }, "gaps.inner"},
		{"no workspaces", func(c *Config) { c.Workspaces = nil }, "workspaces"},
		{"duplicate workspace", func(c *Config) { c.Workspaces = []string{"a", "a"} }, "workspaces[1]"},
		{"negative blocker timeout", func(c *Config) { c.BlockerTimeoutMS = -5 }, "blocker_timeout_ms"},
		{"no outputs", func(c *Config) { c.Outputs = nil }, "outputs"},
		{"zero size output", func(c *Config) { c.Outputs[0].Width = 0 }, "outputs[0]"},
		{"duplicate output", func(c *Config) {
			c.Outputs = append(c.Outputs, c.Outputs[0])
		}, "outputs[1].name"},
		{"empty binding", func(c *Config) { c.Bindings["lock"] = " " }, "bindings.lock"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected validation error")
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if verr.Path != tt.path {
				t.Errorf("expected path %q, got %q", tt.path, verr.Path)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.LogLevel = "warning"
	cfg.Outputs[0].Name = "X11-test"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.LogLevel != "warning" {
		t.Fatalf("expected log_level warning, got %q", loaded.LogLevel)
	}
	if loaded.Outputs[0].Name != "X11-test" {
		t.Fatalf("expected output name X11-test, got %q", loaded.Outputs[0].Name)
	}
}

func TestBlockerTimeout_Fallback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BlockerTimeoutMS = 0
	if cfg.BlockerTimeout() != time.Second {
		t.Fatalf("expected fallback to 1s, got %v", cfg.BlockerTimeout())
	}
	cfg.BlockerTimeoutMS = 250
	if cfg.BlockerTimeout() != 250*time.Millisecond {
		t.Fatalf("expected 250ms, got %v", cfg.BlockerTimeout())
	}
}
