package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/clokai/clok/internal/config"
	"github.com/clokai/clok/internal/logger"
	"github.com/clokai/clok/internal/metrics"
	"github.com/clokai/clok/pkg/coretools"
	"github.com/clokai/clok/pkg/engine"
	"github.com/clokai/clok/pkg/executor"
	"github.com/clokai/clok/pkg/registry"
	"github.com/clokai/clok/pkg/tracking"
	"github.com/clokai/clok/pkg/validator"
	"github.com/clokai/clok/pkg/workspace"
)

var showStats bool

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Execute the tool calls found in a file or on stdin",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(args)
		if err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		lg, err := logger.New(cfg.Logging)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer lg.Close()

		eng, cleanup, err := buildEngine(cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		session := eng.NewSession(cmd.Context())

		if cfg.Watcher.Enabled {
			watcher, err := workspace.NewWatcher(workspace.Config{
				Root:     cfg.WorkspaceRoot,
				Settle:   time.Duration(cfg.Watcher.SettleMs) * time.Millisecond,
				OnChange: session.History().InvalidateSearches,
			})
			if err == nil && watcher.Start() == nil {
				defer watcher.Stop()
			}
		}

		rep, err := session.Process(cmd.Context(), text)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, line := range rep.SummaryLines() {
			fmt.Fprintln(out, line)
		}
		fmt.Fprintf(out, "\n%d total: %d admitted, %d rejected, %d succeeded, %d failed\n",
			rep.Counts.Total, rep.Counts.Admitted, rep.Counts.Rejected,
			rep.Counts.Succeeded, rep.Counts.Failed)

		if showStats {
			printStats(out, session)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&showStats, "stats", false, "print per-tool statistics after the run")
	rootCmd.AddCommand(runCmd)
}

func readInput(args []string) (string, error) {
	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("failed to read input file: %w", err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.NewLoader(cfgFile).Load()
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	return cfg, nil
}

// buildEngine assembles the registry, tracking, and engine from the
// configuration. The cleanup closes the tracking store.
func buildEngine(cfg *config.Config) (*engine.Engine, func(), error) {
	reg := registry.New()
	if err := coretools.Register(reg, coretools.Options{WorkspaceRoot: cfg.WorkspaceRoot}); err != nil {
		return nil, nil, err
	}

	engineCfg := engine.Config{
		Registry: reg,
		Validation: validator.Config{
			Enabled:                cfg.Validation.Enabled,
			BlockEmptyArgs:         cfg.Validation.BlockEmptyArgs,
			MaxConsecutiveSameTool: cfg.Validation.MaxConsecutiveSameTool,
			PreventRedundantSearch: cfg.Validation.PreventRedundantSearch,
		},
		Executor: executor.Config{
			Workers: cfg.Executor.Workers,
			Timeouts: executor.Timeouts{
				Command: secondsToDuration(cfg.Executor.CommandTimeoutSeconds),
				Read:    secondsToDuration(cfg.Executor.ReadTimeoutSeconds),
				Write:   secondsToDuration(cfg.Executor.WriteTimeoutSeconds),
				Search:  secondsToDuration(cfg.Executor.SearchTimeoutSeconds),
			},
		},
		Metrics: metrics.New(),
	}

	cleanup := func() {}
	if cfg.Tracking.Enabled {
		store, err := tracking.Open(cfg.Tracking.DBPath)
		if err != nil {
			return nil, nil, err
		}
		engineCfg.Tracker = store
		cleanup = func() { store.Close() }
	}

	eng, err := engine.New(engineCfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return eng, cleanup, nil
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func printStats(out io.Writer, session *engine.Session) {
	fmt.Fprintln(out, "\nPer-tool statistics:")
	for name, s := range session.Monitor().Snapshot() {
		fmt.Fprintf(out, "  %s: %d calls (%d ok, %d errors, %d cached), total %s\n",
			name, s.Calls, s.Successes, s.Errors, s.CachedServes, s.DurationTotal)
	}
}
