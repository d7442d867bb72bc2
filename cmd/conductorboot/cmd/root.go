// Package cmd provides the CLI commands for conductorboot.
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	cerrors "github.com/Aman-CERP/conductorboot/internal/errors"
	"github.com/Aman-CERP/conductorboot/internal/logging"
	"github.com/Aman-CERP/conductorboot/internal/profiling"
	"github.com/Aman-CERP/conductorboot/pkg/version"
)

// Debug logging flag
var (
	debugMode      bool
	loggingCleanup func()
)

// Profiling flags
var (
	profileOpts    profiling.Options
	profileSession *profiling.Session
)

// NewRootCmd creates the root command for the conductorboot CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "conductorboot",
		Short: "Resolve the runtime modules of a workflow orchestration server",
		Long: `conductorboot decides which implementation modules a workflow
orchestration server assembles at startup: the storage backend bundle,
the search index module, the HTTP API pair and any extension modules.

For the MEMORY backend it also starts an embedded index engine.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("conductorboot version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.conductor/logs/")
	cmd.PersistentFlags().StringVar(&profileOpts.CPU, "profile-cpu", "", "Write CPU profile to file")
	cmd.PersistentFlags().StringVar(&profileOpts.Heap, "profile-mem", "", "Write memory profile to file")
	cmd.PersistentFlags().StringVar(&profileOpts.Trace, "profile-trace", "", "Write execution trace to file")

	cmd.PersistentPreRunE = startProfilingAndLogging
	cmd.PersistentPostRunE = stopProfilingAndLogging

	cmd.AddCommand(newResolveCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// startProfilingAndLogging installs the debug file logger and starts
// profiling when the flags ask for them.
func startProfilingAndLogging(_ *cobra.Command, _ []string) error {
	if debugMode {
		logger, cleanup, err := logging.Setup(logging.DebugConfig())
		if err != nil {
			return fmt.Errorf("failed to setup debug logging: %w", err)
		}
		loggingCleanup = cleanup
		slog.SetDefault(logger)
		slog.Info("Debug logging enabled",
			slog.String("log_file", logging.DefaultLogPath()),
			slog.String("version", version.Version))
	}

	if profileOpts.Enabled() {
		session, err := profiling.Start(profileOpts)
		if err != nil {
			return err
		}
		profileSession = session
	}

	return nil
}

func stopProfilingAndLogging(_ *cobra.Command, _ []string) error {
	var err error
	if profileSession != nil {
		err = profileSession.Stop()
		profileSession = nil
	}

	if loggingCleanup != nil {
		slog.Info("Debug logging stopped")
		loggingCleanup()
		loggingCleanup = nil
	}

	return err
}

// commandLogger returns the logger for a command run: the debug file
// logger under --debug, otherwise JSON to stderr at the configured level.
func commandLogger(cmd *cobra.Command, level string) *slog.Logger {
	if debugMode {
		return slog.Default()
	}
	return logging.New(level, cmd.ErrOrStderr())
}

// Execute runs the root command and prints any error for the terminal.
func Execute() error {
	return execute(NewRootCmd(), os.Stderr)
}

func execute(root *cobra.Command, stderr io.Writer) error {
	err := root.Execute()
	if err != nil {
		_, _ = fmt.Fprint(stderr, cerrors.FormatForCLI(err))
	}
	return err
}
