package coretools

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/clokai/clok/pkg/registry"
)

func runCommandTool(opts Options) registry.Definition {
	return registry.Definition{
		Name:        "run_command",
		Description: "Execute a shell command in the workspace.",
		Class:       registry.ClassCommand,
		Parameters: []registry.Parameter{
			{Name: "cmd", Type: "string", Description: "Command to execute", Required: true},
			{Name: "timeout", Type: "number", Description: "Timeout in seconds (optional)", Required: false},
		},
		Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			cmdline := stringArg(args, "cmd", "command")
			if cmdline == "" {
				return nil, fmt.Errorf("cmd is required")
			}

			// An explicit timeout argument may tighten the class bound,
			// never extend it.
			if explicit := durationSecondsArg(args, "timeout", 0); explicit > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, explicit)
				defer cancel()
			}

			cmd := exec.CommandContext(ctx, "sh", "-c", cmdline)
			cmd.Dir = opts.WorkspaceRoot

			start := time.Now()
			output, err := cmd.CombinedOutput()
			duration := time.Since(start)

			exitCode := 0
			if err != nil {
				if exitErr, ok := err.(*exec.ExitError); ok {
					exitCode = exitErr.ExitCode()
				} else if ctx.Err() != nil {
					return nil, fmt.Errorf("command %q timed out", cmdline)
				} else {
					return nil, fmt.Errorf("error running command %q: %w", cmdline, err)
				}
			}

			return map[string]interface{}{
				"output":      string(output),
				"exit_code":   exitCode,
				"duration_ms": duration.Milliseconds(),
			}, nil
		},
	}
}
