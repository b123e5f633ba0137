// Package hookctl implements the hookctl command line: offline expression
// evaluation, config validation and listing of configured build actions.
package hookctl

import (
	"fmt"
	"io"
	"os"
	"strings"

	"buildhook/internal/config"
	"buildhook/internal/env"
	"buildhook/internal/events"
	"buildhook/internal/script"
	"buildhook/internal/status"
	"buildhook/internal/uvars"
)

// Main returns an exit code (0 for success, non-zero on error) for use by cmd/hookctl.
func Main() int { return MainWithArgs(os.Args[1:]) }

// MainWithArgs runs the command tree with args. No arguments print usage and exit 2.
func MainWithArgs(args []string) int { return run(args, os.Stdout, os.Stderr) }

func run(args []string, stdout, stderr io.Writer) int {
	root := buildRootCmd()
	root.SetOut(stdout)
	root.SetErr(stderr)
	if len(args) == 0 {
		_ = root.Usage()
		return 2
	}
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, err.Error())
		return 1
	}
	return 0
}

// loadOptional loads path, or returns an empty config when path is "".
func loadOptional(path string) (config.Config, error) {
	if path == "" {
		return config.Config{}, nil
	}
	return config.Load(path)
}

// newEngine builds an offline evaluator over cfg. No build is running, so the
// status of every action reads as not started.
func newEngine(cfg config.Config, postProcessing bool) *script.Engine {
	return script.NewEngine(script.EngineConfig{
		Events:         events.NewStore(cfg.Events, cfg.IsEnabled()),
		Status:         status.NewTracker(),
		Vars:           uvars.New(),
		Properties:     env.NewHost(cfg.Properties),
		PostProcessing: postProcessing || cfg.PostProcessing,
	})
}

// parseDefinition splits "name=value" or "name:project=value".
func parseDefinition(s string) (name, project, value string, err error) {
	i := strings.IndexByte(s, '=')
	if i <= 0 {
		return "", "", "", fmt.Errorf("invalid definition %q: want name[:project]=value", s)
	}
	name, value = strings.TrimSpace(s[:i]), s[i+1:]
	if j := strings.IndexByte(name, ':'); j >= 0 {
		name, project = strings.TrimSpace(name[:j]), strings.TrimSpace(name[j+1:])
	}
	if name == "" {
		return "", "", "", fmt.Errorf("invalid definition %q: empty name", s)
	}
	return name, project, value, nil
}

func describe(e events.Event) string {
	var b strings.Builder
	b.WriteString(e.Label())
	if !e.Enabled {
		b.WriteString(" (disabled)")
	}
	if e.IgnoreIfBuildFailed {
		b.WriteString(" [skip on failed build]")
	}
	for _, r := range e.ExecutionOrder {
		fmt.Fprintf(&b, " %s:%s", r.Project, r.Order)
	}
	if e.Match != "" {
		fmt.Fprintf(&b, " match=%q", e.Match)
	}
	if len(e.Codes) > 0 {
		mode := "blacklist"
		if e.Whitelist {
			mode = "whitelist"
		}
		fmt.Fprintf(&b, " %s=%s", mode, strings.Join(e.Codes, ","))
	}
	return b.String()
}
