package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/1broseidon/waytile/internal/config"
)

func runInit(args []string) int {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Where to write the config (default: ~/.config/waytile/config.yaml)")
	force := fs.Bool("force", false, "Overwrite an existing config file")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: waytile init [--path PATH] [--force]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Interactively write a starter configuration file.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	target := *path
	if target == "" {
		var err error
		target, err = config.DefaultConfigPath()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}
	if _, err := os.Stat(target); err == nil && !*force {
		fmt.Fprintf(os.Stderr, "%s already exists (use --force to overwrite)\n", target)
		return 1
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		// No TTY: write the defaults without prompting.
		cfg := config.DefaultConfig()
		if err := cfg.Save(target); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Printf("wrote %s\n", target)
		return 0
	}

	cfg, err := promptConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := cfg.Save(target); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("wrote %s\n", target)
	return 0
}

// promptConfig walks the user through the starter settings and returns a
// validated config.
func promptConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()

	outputName := "X11-1"
	outputSize := "1280x800"
	workspaces := strings.Join(cfg.Workspaces, ",")
	innerGap := strconv.Itoa(cfg.Gaps.Inner)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Output name").
				Description("Name of the first output the daemon brings up.").
				Value(&outputName).
				Validate(notEmpty),
			huh.NewInput().
				Title("Output size").
				Description("WIDTHxHEIGHT in pixels. Outputs narrower than 720px cannot host resizable side-by-side panes.").
				Value(&outputSize).
				Validate(validSize),
			huh.NewInput().
				Title("Workspaces").
				Description("Comma-separated workspace names.").
				Value(&workspaces).
				Validate(notEmpty),
			huh.NewInput().
				Title("Inner gap").
				Description("Pixels between adjacent panes. The gap is also the pointer area for mouse resizing.").
				Value(&innerGap).
				Validate(validGap),
		),
	)
	if err := form.Run(); err != nil {
		return nil, err
	}

	width, height, _ := parseSize(outputSize)
	cfg.Outputs = []config.OutputConfig{{Name: outputName, Width: width, Height: height, Scale: 1.0}}

	cfg.Workspaces = cfg.Workspaces[:0]
	for _, name := range strings.Split(workspaces, ",") {
		if name = strings.TrimSpace(name); name != "" {
			cfg.Workspaces = append(cfg.Workspaces, name)
		}
	}

	cfg.Gaps.Inner, _ = strconv.Atoi(innerGap)

	// Rebuild workspace bindings to match the chosen workspace count.
	cfg.Bindings = map[string]string{
		"lock": "Mod4-Escape",
		"quit": "Mod4-Shift-q",
	}
	for i := range cfg.Workspaces {
		if i >= 9 {
			break
		}
		cfg.Bindings[fmt.Sprintf("switch-workspace-%d", i+1)] = fmt.Sprintf("Mod4-%d", i+1)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func notEmpty(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("must not be empty")
	}
	return nil
}

func validSize(s string) error {
	_, _, err := parseSize(s)
	return err
}

func validGap(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return fmt.Errorf("must be a non-negative integer")
	}
	return nil
}

func parseSize(s string) (int, int, error) {
	parts := strings.SplitN(strings.TrimSpace(s), "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected WIDTHxHEIGHT")
	}
	width, err := strconv.Atoi(parts[0])
	if err != nil || width <= 0 {
		return 0, 0, fmt.Errorf("invalid width %q", parts[0])
	}
	height, err := strconv.Atoi(parts[1])
	if err != nil || height <= 0 {
		return 0, 0, fmt.Errorf("invalid height %q", parts[1])
	}
	return width, height, nil
}
