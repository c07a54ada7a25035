package commands

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"go.trai.ch/matrix/internal/core/domain"
	"go.trai.ch/matrix/internal/ui/style"
)

func (c *CLI) newPlanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan [groups...]",
		Short: "Print the jobs an event would dispatch without running them",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, event := workflowFlags(cmd)
			plan, err := c.app.Plan(path, event, args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "%d job(s) for %s\n", len(plan.Jobs), event)
			_, _ = fmt.Fprintln(out, planTable(plan))
			return nil
		},
	}
}

func planTable(plan *domain.Plan) string {
	rows := make([][]string, 0, len(plan.Jobs))
	for _, j := range plan.Jobs {
		steps := make([]string, 0, len(j.Steps))
		for _, s := range j.Steps {
			steps = append(steps, s.DisplayName())
		}
		rows = append(rows, []string{
			j.Name,
			j.RunsOn,
			envString(j.Env),
			strings.Join(steps, "\n"),
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(style.Slate)).
		Headers(style.Key("JOB"), style.Key("RUNS ON"), style.Key("ENV"), style.Key("STEPS")).
		Rows(rows...).
		String()
}

func envString(env map[string]string) string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+env[k])
	}
	return strings.Join(pairs, "\n")
}
