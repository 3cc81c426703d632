package cmd

import (
	"fmt"
	"strings"

	"conductor/internal/analyzer"
	"conductor/internal/capability"
	"conductor/internal/strategy"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// newAnalyzeCmd creates the Cobra command for the dry-run path: it explains
// what execute would do without dispatching anything.
func newAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <task>",
		Short: "Show the analysis and pattern recommendation for a task",
		Long: `Analyzes the task and prints the derived task type, complexity,
required capabilities and the recommended execution pattern. Nothing is
dispatched and no providers are installed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAnalyze,
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")

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

	analysis, recommendation := coordinator.AnalyzeOnly(text)

	out := cmd.OutOrStdout()
	printAnalysis(cmd, analysis)
	fmt.Fprintln(out)
	printRecommendation(cmd, recommendation)
	return nil
}

func printAnalysis(cmd *cobra.Command, a analyzer.TaskAnalysis) {
	t := createTable(cmd.OutOrStdout())
	t.AppendHeader(header("ANALYSIS", "VALUE"))
	t.AppendRows([]table.Row{
		{"Task type", string(a.TaskType)},
		{"Complexity", fmt.Sprintf("%s (level %d)", a.Complexity, a.Complexity.Level())},
		{"Capabilities", joinCategories(a.RequiredCapabilities)},
		{"Estimated steps", a.EstimatedSteps},
		{"Parallelizable", a.Parallelizable},
		{"Needs iteration", a.RequiresIteration},
		{"Needs human input", a.RequiresHumanInput},
		{"Confidence", fmt.Sprintf("%.2f", a.Confidence)},
	})
	t.Render()
}

func printRecommendation(cmd *cobra.Command, r strategy.Recommendation) {
	fallbacks := make([]string, 0, len(r.Fallbacks))
	for _, p := range r.Fallbacks {
		fallbacks = append(fallbacks, string(p))
	}

	t := createTable(cmd.OutOrStdout())
	t.AppendHeader(header("RECOMMENDATION", "VALUE"))
	t.AppendRows([]table.Row{
		{"Pattern", string(r.Pattern)},
		{"Reasoning", truncate(r.Reasoning, 100)},
		{"Providers", strings.Join(r.RequiredProviders, ", ")},
		{"Estimated time", fmt.Sprintf("%ds", r.EstimatedSeconds)},
		{"Confidence", fmt.Sprintf("%.2f", r.Confidence)},
		{"Fallbacks", strings.Join(fallbacks, ", ")},
	})
	t.Render()
}

func joinCategories(set capability.Set) string {
	names := make([]string, 0, len(set))
	for _, c := range set.Sorted() {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}
