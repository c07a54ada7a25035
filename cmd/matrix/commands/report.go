package commands

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"go.trai.ch/matrix/internal/core/domain"
	"go.trai.ch/matrix/internal/ui/style"
	"go.trai.ch/zerr"
)

func (c *CLI) newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <path>",
		Short: "Summarize a run report written by run --report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := c.app.Report(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return zerr.Wrap(err, "failed to encode report")
				}
				return nil
			}

			_, _ = fmt.Fprintf(out, "Run %s of %s (%s): %s\n", report.RunID, report.Workflow, report.Event, report.Status)
			_, _ = fmt.Fprintln(out, reportTable(report))
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "Print the raw report")
	return cmd
}

func reportTable(report *domain.RunReport) string {
	rows := make([][]string, 0, len(report.Jobs))
	for _, j := range report.Jobs {
		failed := ""
		for _, s := range j.Steps {
			if s.Status == domain.StatusFailed {
				switch {
				case s.Signal != "":
					failed = fmt.Sprintf("%s (signal: %s)", s.Name, s.Signal)
				case s.ExitCode != 0:
					failed = fmt.Sprintf("%s (exit %d)", s.Name, s.ExitCode)
				default:
					failed = s.Name
				}
				break
			}
		}
		rows = append(rows, []string{
			j.Name,
			string(j.Status),
			(time.Duration(j.DurationMS) * time.Millisecond).String(),
			failed,
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(style.Slate)).
		Headers(style.Key("JOB"), style.Key("STATUS"), style.Key("DURATION"), style.Key("FAILED STEP")).
		Rows(rows...).
		String()
}
