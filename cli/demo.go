package cli

import (
	"fmt"

	"github.com/sarchlab/memoprop"
	"github.com/sarchlab/memoprop/datarecording"
	"github.com/sarchlab/memoprop/examples/deepthought"
	"github.com/sarchlab/memoprop/hooking"
	"github.com/sarchlab/memoprop/tracing"
	"github.com/spf13/cobra"
)

func newDemoCmd(e *env) *cobra.Command {
	demoCmd := &cobra.Command{
		Use:   "demo",
		Short: "Read, overwrite and delete a memoized answer step by step.",
		Long: `demo reads the answer of a DeepThought computer twice, tries to ` +
			`overwrite and delete it, reads it again, and finally reads the ` +
			`answer of a second computer, printing the number of getter ` +
			`calls after each read.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.runDemo(cmd)
		},
	}

	demoCmd.Flags().Bool("settable", false, "Allow overwriting the answer")
	demoCmd.Flags().Bool("deletable", true, "Allow deleting the answer")
	demoCmd.Flags().String("scope", memoprop.ScopeInstance.String(),
		"Cache per instance or per class (instance, class)")
	demoCmd.Flags().String("record", "",
		"Record access events into this SQLite database (without extension)")

	return demoCmd
}

func (e *env) runDemo(cmd *cobra.Command) error {
	opts := deepthought.DefaultOptions()
	opts.Settable, _ = cmd.Flags().GetBool("settable")
	opts.Deletable, _ = cmd.Flags().GetBool("deletable")

	scopeName, _ := cmd.Flags().GetString("scope")

	scope, err := memoprop.ParseScope(scopeName)
	if err != nil {
		return err
	}

	opts.Scope = scope

	recordPath := e.cfg.RecordPath
	if cmd.Flags().Changed("record") {
		recordPath, _ = cmd.Flags().GetString("record")
	}

	hooks := []hooking.Hook{tracing.NewLogTracer(e.logger)}

	var (
		recorder datarecording.DataRecorder
		dbTracer *tracing.DBTracer
	)

	if recordPath != "" {
		recorder, err = datarecording.Open(recordPath)
		if err != nil {
			return err
		}
		defer recorder.Close()

		dbTracer = tracing.NewDBTracer(recorder)
		hooks = append(hooks, dbTracer)
	}

	oracle := deepthought.NewOracle()
	answer := deepthought.NewAnswer(opts, oracle, hooks...)

	e.logger.Info().
		Bool("settable", opts.Settable).
		Bool("deletable", opts.Deletable).
		Str("scope", opts.Scope.String()).
		Msg("running demo")

	if err := deepthought.Run(cmd.OutOrStdout(), answer, oracle); err != nil {
		return err
	}

	if dbTracer != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "recorded %d access events to %s\n",
			dbTracer.NumRecords(), recordPath+datarecording.FileExt)
	}

	return nil
}
