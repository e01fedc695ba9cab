// Package cli provides the command-line interface of memoprop.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/sarchlab/memoprop/config"
	"github.com/sarchlab/memoprop/logging"
	"github.com/spf13/cobra"
)

// env is what every subcommand gets once the root command has loaded the
// configuration.
type env struct {
	cfg    config.Config
	logger zerolog.Logger
}

func newRootCmd() *cobra.Command {
	e := &env{logger: zerolog.Nop()}

	rootCmd := &cobra.Command{
		Use:   "memoprop",
		Short: "memoprop demonstrates and inspects memoized attributes.",
		Long: `memoprop demonstrates memoized attributes on sample owners, ` +
			`records how they are accessed, and serves a monitor showing ` +
			`their cache hits and misses.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return e.load(cmd)
		},
	}

	rootCmd.PersistentFlags().String("env-file", "",
		"Read settings from this file instead of .env")
	rootCmd.PersistentFlags().String("log-level", "",
		"Log level (debug, info, warn, error); overrides "+config.EnvLogLevel)
	rootCmd.PersistentFlags().Bool("no-color", false,
		"Disable colored log output")

	rootCmd.AddCommand(
		newDemoCmd(e),
		newInspectCmd(e),
		newServeCmd(e),
		newVersionCmd(),
	)

	return rootCmd
}

func (e *env) load(cmd *cobra.Command) error {
	envFile, _ := cmd.Flags().GetString("env-file")

	var envFiles []string
	if envFile != "" {
		envFiles = append(envFiles, envFile)
	}

	cfg, err := config.Load(envFiles...)
	if err != nil {
		return err
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}

	noColor, _ := cmd.Flags().GetBool("no-color")

	logger, err := logging.NewConsole(cfg.LogLevel, cmd.ErrOrStderr(), noColor)
	if err != nil {
		return err
	}

	e.cfg = cfg
	e.logger = logger

	return nil
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	if err := newRootCmd().Execute(); err != nil {
		return 1
	}

	return 0
}
