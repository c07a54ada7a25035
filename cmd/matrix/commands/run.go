package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/matrix/internal/app"
	"go.trai.ch/zerr"
)

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [groups...]",
		Short: "Dispatch the jobs of the workflow",
		Long: "Expands every job group of the workflow over its matrix and runs the\n" +
			"resulting jobs concurrently. Positional arguments restrict the run to\n" +
			"the named job groups.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, event := workflowFlags(cmd)
			parallel, _ := cmd.Flags().GetInt("parallel")
			anyRunner, _ := cmd.Flags().GetBool("any-runner")
			keep, _ := cmd.Flags().GetBool("keep-workspace")
			report, _ := cmd.Flags().GetString("report")
			journal, _ := cmd.Flags().GetString("journal")
			source, _ := cmd.Flags().GetString("source")
			output, _ := cmd.Flags().GetString("output")

			switch output {
			case "auto", "linear", "plain":
			default:
				return zerr.With(zerr.New("invalid output mode"), "output", output)
			}

			_, err := c.app.Run(cmd.Context(), app.RunOptions{
				WorkflowPath:  path,
				Event:         event,
				Groups:        args,
				Parallelism:   parallel,
				AnyRunner:     anyRunner,
				KeepWorkspace: keep,
				SourceDir:     source,
				ReportPath:    report,
				JournalPath:   journal,
				Output:        output,
				Stdout:        cmd.OutOrStdout(),
				Stderr:        cmd.ErrOrStderr(),
			})
			return err
		},
	}
	cmd.Flags().IntP("parallel", "j", 0, "Maximum number of jobs to run at once (default: number of CPUs)")
	cmd.Flags().Bool("any-runner", false, "Run jobs whatever runs-on label they request")
	cmd.Flags().Bool("keep-workspace", false, "Keep job workspaces after the run")
	cmd.Flags().String("report", "", "Write a JSON run report to this path")
	cmd.Flags().String("journal", "", "Write a progress journal of jobs and steps to this path")
	cmd.Flags().String("source", "", "Source tree copied by checkout (default: working directory)")
	cmd.Flags().StringP("output", "o", "auto", "Output mode: auto, linear or plain")
	return cmd
}
