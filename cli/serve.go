package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/pkg/browser"
	"github.com/sarchlab/memoprop"
	"github.com/sarchlab/memoprop/examples/deepthought"
	"github.com/sarchlab/memoprop/monitoring"
	"github.com/sarchlab/memoprop/tracing"
	"github.com/spf13/cobra"
)

const numComputers = 4

func newServeCmd(e *env) *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Keep reading memoized answers and monitor them over HTTP.",
		Long: `serve keeps reading and deleting the answers of a few DeepThought ` +
			`computers, once with a per-instance cache and once with a ` +
			`per-class cache, while a web server reports the hits, misses ` +
			`and fills of both attributes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.runServe(cmd)
		},
	}

	serveCmd.Flags().Int("port", 0, "Port of the monitor, 0 for a random one")
	serveCmd.Flags().Bool("open", false, "Open the monitor in a browser")
	serveCmd.Flags().Int("rounds", 0, "Stop after this many rounds, 0 for never")
	serveCmd.Flags().Duration("interval", 500*time.Millisecond,
		"Pause between rounds")

	return serveCmd
}

type workload struct {
	computers []*deepthought.DeepThought
	answers   []*memoprop.Accessor[*deepthought.DeepThought, int]
	counters  []*tracing.CountTracer
}

func newWorkload(e *env, m *monitoring.Monitor) *workload {
	w := &workload{}

	for i := 0; i < numComputers; i++ {
		w.computers = append(w.computers,
			deepthought.New(fmt.Sprintf("dt%d", i+1)))
	}

	instance := deepthought.DefaultOptions()

	class := deepthought.DefaultOptions()
	class.Name = "shared_answer"
	class.Scope = memoprop.ScopeClass

	for _, opts := range []deepthought.Options{instance, class} {
		answer := deepthought.NewAnswer(opts, deepthought.NewOracle(),
			tracing.NewLogTracer(e.logger))

		w.answers = append(w.answers, answer)
		w.counters = append(w.counters, m.RegisterAccessor(answer))
	}

	return w
}

// round reads every answer from one computer and, every third round, drops
// the cached values so that the next read recomputes them.
func (w *workload) round(i int) error {
	dt := w.computers[i%len(w.computers)]

	for _, answer := range w.answers {
		if _, err := answer.Get(dt); err != nil {
			return err
		}

		if i%3 == 2 {
			if err := answer.Delete(dt); err != nil {
				return err
			}
		}
	}

	return nil
}

func (e *env) runServe(cmd *cobra.Command) error {
	port := e.cfg.MonitorPort
	if cmd.Flags().Changed("port") {
		port, _ = cmd.Flags().GetInt("port")
	}

	open, _ := cmd.Flags().GetBool("open")
	rounds, _ := cmd.Flags().GetInt("rounds")
	interval, _ := cmd.Flags().GetDuration("interval")

	m := monitoring.NewMonitor().WithLogger(e.logger).WithPortNumber(port)
	w := newWorkload(e, m)

	url, err := m.StartServer()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Monitoring memoized attributes with %s\n", url)

	if open {
		if err := browser.OpenURL(url); err != nil {
			e.logger.Warn().Err(err).Msg("cannot open browser")
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	err = w.run(ctx, m, rounds, interval)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if shutdownErr := m.Shutdown(shutdownCtx); shutdownErr != nil && err == nil {
		err = shutdownErr
	}

	for i, answer := range w.answers {
		s := w.counters[i].Stats()
		fmt.Fprintf(out, "%s (%s): %d hits, %d fills, %d clears\n",
			answer.Name(), answer.Scope(), s.Hits, s.Fills, s.Clears)
	}

	return err
}

func (w *workload) run(
	ctx context.Context,
	m *monitoring.Monitor,
	rounds int,
	interval time.Duration,
) error {
	var bar *monitoring.ProgressBar
	if rounds > 0 {
		bar = m.CreateProgressBar("rounds", uint64(rounds))
		defer m.CompleteProgressBar(bar)
	}

	for i := 0; rounds == 0 || i < rounds; i++ {
		if bar != nil {
			bar.IncrementInProgress(1)
		}

		if err := w.round(i); err != nil {
			return err
		}

		if bar != nil {
			bar.MoveInProgressToFinished(1)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}

	return nil
}
