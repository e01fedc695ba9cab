package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/sarchlab/memoprop/datarecording"
	"github.com/sarchlab/memoprop/tracing"
	"github.com/spf13/cobra"
)

func newInspectCmd(e *env) *cobra.Command {
	inspectCmd := &cobra.Command{
		Use:   "inspect PATH",
		Short: "List the access events recorded in a database.",
		Long: "`inspect PATH` prints the access events that `demo --record` " +
			"wrote into the SQLite database at PATH.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.runInspect(cmd, args[0])
		},
	}

	inspectCmd.Flags().String("attr", "", "Only show events of this attribute")
	inspectCmd.Flags().Int("limit", 0, "Show at most this many events")

	return inspectCmd
}

func (e *env) runInspect(cmd *cobra.Command, path string) error {
	attr, _ := cmd.Flags().GetString("attr")
	limit, _ := cmd.Flags().GetInt("limit")

	reader, err := datarecording.OpenReader(path)
	if err != nil {
		return err
	}
	defer reader.Close()

	records, total, err := tracing.ReadAccessRecords(cmd.Context(), reader,
		tracing.AccessFilter{Attr: attr, Limit: limit})
	if err != nil {
		return err
	}

	e.logger.Debug().Str("path", path).Int("total", total).Msg("read events")

	out := cmd.OutOrStdout()
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "TIME\tATTR\tSCOPE\tPOS\tFILL\tOWNER\tERROR")

	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\t%s\t%s\n",
			time.Unix(0, r.Time).Format(time.RFC3339Nano),
			r.Attr, r.Scope, r.Pos, r.Fill, r.Owner, r.Err)
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "%d of %d events\n", len(records), total)

	return nil
}
