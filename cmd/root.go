/*
Copyright © 2025 3 Leaps <info@3leaps.com>
*/
package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/fulmenhq/scansort/pkg/buildinfo"
	"github.com/fulmenhq/scansort/pkg/exitcode"
	"github.com/fulmenhq/scansort/pkg/logger"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// newRootCommand creates a fresh root command instance.
// This factory pattern allows tests to create isolated command trees without shared state.
func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scansort",
		Short: "Interleave separately scanned front and back pages",
		Long: `Scansort puts pages from a two-pass duplex scan back into document order.

The front sides (pages 1, 3, 5, ...) and the back sides (pages 2, 4, 6, ...)
are scanned as two batches into two directories. Scansort numbers each batch,
lets you review the proposed file -> page mapping in an editor, and copies or
moves the files to sequentially named output files.

Examples:
   scansort sort ./scans --front lside --back rside
   scansort sort ./scans --front lside --back rside --missing 10,12
   scansort plan ./scans --front lside --back rside --format json
   scansort version`,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			initializeLogger(cmd)
		},
	}

	// Add global flags
	cmd.PersistentFlags().String("log-level", "info", "Set log level (trace|debug|info|warn|error)")
	cmd.PersistentFlags().Bool("json", false, "Output logs in JSON format")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	cmd.PersistentFlags().Bool("no-op", false, "Show what would happen without touching any file")

	cmd.Version = buildinfo.Version()
	cmd.SetVersionTemplate("scansort {{.Version}}\n")

	return cmd
}

// registerSubcommands adds all subcommands to the root command.
func registerSubcommands(cmd *cobra.Command) {
	cmd.AddCommand(newSortCommand())
	cmd.AddCommand(newPlanCommand())
	cmd.AddCommand(newVersionCommand())
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCommand()

func init() {
	registerSubcommands(rootCmd)
}

// Execute runs the root command and exits with the code matching the
// returned error. This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		code := exitcode.FromError(err)
		logger.Error("Command execution failed", logger.Err(err), logger.Int("exit_code", code))
		os.Exit(code)
	}
}

// initializeLogger sets up the logger based on command flags
func initializeLogger(cmd *cobra.Command) {
	logLevelStr, _ := cmd.Flags().GetString("log-level")
	jsonLogs, _ := cmd.Flags().GetBool("json")
	noColor, _ := cmd.Flags().GetBool("no-color")
	noOp, _ := cmd.Flags().GetBool("no-op")

	logLevel, ok := logger.ParseLevel(logLevelStr)

	config := logger.Config{
		Level:     logLevel,
		UseColor:  !noColor,
		JSON:      jsonLogs,
		Component: "scansort",
		NoOp:      noOp,
		Fields:    []logger.Field{logger.String("run_id", uuid.NewString())},
	}

	if err := logger.Initialize(config); err != nil {
		if _, writeErr := os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n"); writeErr != nil {
			_ = writeErr
		}
		os.Exit(exitcode.ConfigError)
	}
	if !ok {
		logger.Warn("Unknown log level, using info", logger.String("log_level", logLevelStr))
	}
}
