package cmd

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

// newCapabilitiesCmd creates the Cobra command that lists known providers and
// role specializations after a discovery round.
func newCapabilitiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "capabilities",
		Short: "List known providers and what they can do",
		Args:  cobra.NoArgs,
		RunE:  runCapabilities,
	}
}

func runCapabilities(cmd *cobra.Command, args []string) error {
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

	out := cmd.OutOrStdout()
	providers := coordinator.Providers()
	if len(providers) == 0 {
		fmt.Fprintf(out, "%s\n", text.FgYellow.Sprint("No providers found"))
		return nil
	}

	t := createTable(out)
	t.AppendHeader(header("PROVIDER", "STATUS", "CAPABILITIES", "TOOLS", "PRIORITY"))
	for _, p := range providers {
		t.AppendRow(table.Row{
			p.Name,
			string(p.Status),
			truncate(joinCategories(p.Capabilities), 60),
			len(p.Tools),
			fmt.Sprintf("%.2f", p.PriorityScore),
		})
	}
	t.Render()

	summary := coordinator.Capabilities()
	fmt.Fprintf(out, "\n%s %s\n",
		text.FgHiBlue.Sprint("Specializations:"),
		strings.Join(summary.Specializations, ", "))
	covered := make([]string, 0, len(summary.CoveredCategories))
	for _, c := range summary.CoveredCategories {
		covered = append(covered, string(c))
	}
	fmt.Fprintf(out, "%s %s\n",
		text.FgHiBlue.Sprint("Covered categories:"),
		strings.Join(covered, ", "))
	return nil
}
