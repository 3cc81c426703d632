package cmd

import (
	"fmt"
	"strings"
	"time"

	"conductor/internal/orchestrator"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	executeRunnerCommand string
	executeModel         string
	executeDeadlineS     int
	executeQualityFloor  string
)

// newExecuteCmd creates the Cobra command that runs one task end to end.
func newExecuteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "execute <task>",
		Short: "Execute a natural-language task",
		Long: `Analyzes the task, ensures capable providers are available (installing
missing ones when possible), selects an execution pattern and runs it through
the configured model command. The result is printed to stdout followed by an
execution summary.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runExecute,
	}

	cmd.Flags().StringVar(&executeRunnerCommand, "runner", defaultRunnerCommand,
		"model command roles are run through (prompt on stdin, answer on stdout)")
	cmd.Flags().StringVarP(&executeModel, "model", "m", "",
		"model backend hint passed through to the runner")
	cmd.Flags().IntVar(&executeDeadlineS, "deadline", 0,
		"per-request deadline in seconds (overrides the configured default)")
	cmd.Flags().StringVar(&executeQualityFloor, "quality-floor", "",
		"evaluator-optimizer stop verdict (poor, fair, good, excellent)")
	return cmd
}

func runExecute(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")

	cfg, err := loadCLIConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	coordinator, session, err := newCoordinator(ctx, cfg, newExecRunner(executeRunnerCommand))
	if err != nil {
		return err
	}
	defer session.Close()
	defer coordinator.Shutdown()

	var s *spinner.Spinner
	if !rootQuiet {
		s = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		s.Suffix = " Executing task..."
		s.Start()
	}

	record, err := coordinator.Execute(ctx, text, &orchestrator.Preferences{
		LLMProvider:  executeModel,
		DeadlineS:    executeDeadlineS,
		QualityFloor: executeQualityFloor,
	})
	if s != nil {
		s.Stop()
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, record.Result)
	if !rootQuiet {
		fmt.Fprintln(out)
		printExecutionSummary(cmd, record)
	}
	return nil
}

func printExecutionSummary(cmd *cobra.Command, record orchestrator.ExecutionRecord) {
	t := createTable(cmd.OutOrStdout())
	t.AppendHeader(header("FIELD", "VALUE"))
	t.AppendRows([]table.Row{
		{"Request", record.ID},
		{"Pattern", string(record.Recommendation.Pattern)},
		{"Confidence", fmt.Sprintf("%.2f", record.Recommendation.Confidence)},
		{"Roles", strings.Join(record.RolesUsed, ", ")},
		{"Providers", strings.Join(record.ProvidersUsed, ", ")},
		{"Elapsed", fmt.Sprintf("%dms", record.ElapsedMS())},
	})
	t.Render()
}
