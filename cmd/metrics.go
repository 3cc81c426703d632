package cmd

import (
	"fmt"
	"sort"

	"conductor/internal/strategy"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// newMetricsCmd creates the Cobra command that prints the coordinator's
// counters after a discovery round. In one-shot mode the request counters are
// zero unless a task ran in the same process; the command is mainly useful
// for inspecting cache and pool state.
func newMetricsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "Show coordinator, cache and pool statistics",
		Args:  cobra.NoArgs,
		RunE:  runMetrics,
	}
}

func runMetrics(cmd *cobra.Command, args []string) error {
	cfg, err := loadCLIConfig()
	if err != nil {
		return err
	}

	coordinator, session, err := newCoordinator(cmd.Context(), cfg, newExecRunner(defaultRunnerCommand))
	if err != nil {
		return err
	}
	defer session.Close()
	defer coordinator.Shutdown()

	snap := coordinator.Metrics()
	out := cmd.OutOrStdout()

	t := createTable(out)
	t.AppendHeader(header("METRIC", "VALUE"))
	t.AppendRows([]table.Row{
		{"Total requests", snap.TotalRequests},
		{"Successful", snap.SuccessfulRequests},
		{"Failed", snap.FailedRequests},
		{"Avg execution", fmt.Sprintf("%.0fms", snap.AvgExecutionMS)},
		{"Analysis cache", fmt.Sprintf("%d/%d (%.0f%% hit)",
			snap.AnalysisCache.Size, snap.AnalysisCache.Capacity, snap.AnalysisCache.HitRate*100)},
		{"Strategy cache", fmt.Sprintf("%d/%d (%.0f%% hit)",
			snap.StrategyCache.Size, snap.StrategyCache.Capacity, snap.StrategyCache.HitRate*100)},
		{"Pool", fmt.Sprintf("%d idle, %d active, %d created",
			snap.Pool.Idle, snap.Pool.Active, snap.Pool.Created)},
	})
	t.Render()

	if len(snap.Patterns) == 0 {
		return nil
	}

	patterns := make([]strategy.Pattern, 0, len(snap.Patterns))
	for p := range snap.Patterns {
		patterns = append(patterns, p)
	}
	sort.Slice(patterns, func(i, j int) bool { return patterns[i] < patterns[j] })

	fmt.Fprintln(out)
	pt := createTable(out)
	pt.AppendHeader(header("PATTERN", "TOTAL", "SUCCESSES", "SUCCESS EMA", "TIME EMA"))
	for _, p := range patterns {
		stats := snap.Patterns[p]
		pt.AppendRow(table.Row{
			string(p),
			stats.Total,
			stats.Successes,
			fmt.Sprintf("%.2f", stats.SuccessRateEMA),
			fmt.Sprintf("%.0fms", stats.TimeEMAMS),
		})
	}
	pt.Render()
	return nil
}
