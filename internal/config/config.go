package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// GapsConfig sets the padding around and between tiled panes, in logical
// pixels.
type GapsConfig struct {
	Outer int `yaml:"outer"`
	Inner int `yaml:"inner"`
}

// OutputConfig describes one output the compositor should bring up. The
// nested X11 backend opens one host window per entry.
type OutputConfig struct {
	Name   string  `yaml:"name"`
	X      int     `yaml:"x"`
	Y      int     `yaml:"y"`
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
	Scale  float64 `yaml:"scale,omitempty"`
}

// Config is the daemon configuration.
type Config struct {
	Socket           string            `yaml:"socket,omitempty"`
	LogLevel         string            `yaml:"log_level"`
	Gaps             GapsConfig        `yaml:"gaps"`
	Workspaces       []string          `yaml:"workspaces"`
	BlockerTimeoutMS int               `yaml:"blocker_timeout_ms"`
	Outputs          []OutputConfig    `yaml:"outputs"`
	Bindings         map[string]string `yaml:"bindings,omitempty"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Gaps: GapsConfig{
			Outer: 0,
			Inner: 8,
		},
		Workspaces:       []string{"1", "2", "3", "4"},
		BlockerTimeoutMS: 1000,
		Outputs: []OutputConfig{
			{Name: "X11-1", Width: 1280, Height: 800, Scale: 1.0},
		},
		Bindings: map[string]string{
			"switch-workspace-1": "Mod4-1",
			"switch-workspace-2": "Mod4-2",
			"switch-workspace-3": "Mod4-3",
			"switch-workspace-4": "Mod4-4",
			"lock":               "Mod4-Escape",
			"quit":               "Mod4-Shift-q",
		},
	}
}

// BlockerTimeout returns the configured blocker deadline as a duration.
func (c *Config) BlockerTimeout() time.Duration {
	if c == nil || c.BlockerTimeoutMS <= 0 {
		return time.Second
	}
	return time.Duration(c.BlockerTimeoutMS) * time.Millisecond
}

// Validate checks the configuration for values the daemon cannot run with.
func (c *Config) Validate() error {
	if c.LogLevel != "debug" && c.LogLevel != "info" && c.LogLevel != "warning" && c.LogLevel != "error" {
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	if c.Gaps.Outer < 0 {
		return &ValidationError{Path: "gaps.outer", Err: fmt.Errorf("outer gap must be >= 0")}
	}
	if c.Gaps.Inner < 0 {
		return &ValidationError{Path: "gaps.inner", Err: fmt.Errorf("inner gap must be >= 0")}
	}
	if len(c.Workspaces) == 0 {
		return &ValidationError{Path: "workspaces", Err: fmt.Errorf("workspaces must not be empty")}
	}
	seenWorkspaces := make(map[string]struct{}, len(c.Workspaces))
	for i, name := range c.Workspaces {
		if strings.TrimSpace(name) == "" {
			return &ValidationError{Path: fmt.Sprintf("workspaces[%d]", i), Err: fmt.Errorf("workspace name must not be empty")}
		}
		if _, dup := seenWorkspaces[name]; dup {
			return &ValidationError{Path: fmt.Sprintf("workspaces[%d]", i), Err: fmt.Errorf("duplicate workspace name %q", name)}
		}
		seenWorkspaces[name] = struct{}{}
	}
	if c.BlockerTimeoutMS < 0 {
		return &ValidationError{Path: "blocker_timeout_ms", Err: fmt.Errorf("blocker_timeout_ms must be >= 0")}
	}
	if len(c.Outputs) == 0 {
		return &ValidationError{Path: "outputs", Err: fmt.Errorf("outputs must not be empty")}
	}
	seenOutputs := make(map[string]struct{}, len(c.Outputs))
	for i, out := range c.Outputs {
		path := fmt.Sprintf("outputs[%d]", i)
		if strings.TrimSpace(out.Name) == "" {
			return &ValidationError{Path: path + ".name", Err: fmt.Errorf("output name must not be empty")}
		}
		if _, dup := seenOutputs[out.Name]; dup {
			return &ValidationError{Path: path + ".name", Err: fmt.Errorf("duplicate output name %q", out.Name)}
		}
		seenOutputs[out.Name] = struct{}{}
		if out.Width <= 0 || out.Height <= 0 {
			return &ValidationError{Path: path, Err: fmt.Errorf("output size must be positive, got %dx%d", out.Width, out.Height)}
		}
		if out.Scale < 0 {
			return &ValidationError{Path: path + ".scale", Err: fmt.Errorf("scale must be >= 0")}
		}
	}
	for action, combo := range c.Bindings {
		if strings.TrimSpace(combo) == "" {
			return &ValidationError{Path: "bindings." + action, Err: fmt.Errorf("binding must not be empty")}
		}
	}

	if warnings := c.validationWarnings(); len(warnings) > 0 {
		for _, w := range warnings {
			fmt.Fprintln(os.Stderr, "warning:", w)
		}
	}

	return nil
}

func (c *Config) validationWarnings() []string {
	if c == nil {
		return nil
	}

	var warnings []string

	// A pane pair cannot shrink below its combined minimum, so outputs
	// narrower than that can never host a resizable vertical pair.
	for _, out := range c.Outputs {
		if out.Width > 0 && out.Width < 720 {
			warnings = append(warnings, fmt.Sprintf("output %q is narrower than 720px; side-by-side panes cannot be resized on it", out.Name))
		}
	}
	if c.Gaps.Inner == 0 {
		warnings = append(warnings, "gaps.inner is 0; pane boundaries have no pointer area and mouse resizing is unavailable")
	}

	return warnings
}

// ValidationError reports an invalid configuration value with its YAML path.
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }
