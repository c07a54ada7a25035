package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/matrix/internal/core/domain"
	"go.trai.ch/matrix/internal/ui/output"
	"go.trai.ch/matrix/internal/ui/style"
	"go.trai.ch/zerr"
)

func (c *CLI) newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the workflow for structural and matrix problems",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := workflowFlags(cmd)
			findings, err := c.app.Validate(path)
			if err != nil {
				return err
			}

			out := output.New(cmd.OutOrStdout())
			for _, f := range findings {
				icon := out.String(style.Warning).Foreground(out.Color(string(style.Yellow)))
				if f.Severity == domain.SeverityError {
					icon = out.String(style.Cross).Foreground(out.Color(string(style.Red)))
				}
				_, _ = fmt.Fprintf(out, "%s %s\n", icon, f)
			}

			if findings.HasErrors() {
				return zerr.With(domain.ErrInvalidWorkflow, "errors", len(findings.Errors()))
			}
			check := out.String(style.Check).Foreground(out.Color(string(style.Green)))
			_, _ = fmt.Fprintf(out, "%s %s is valid\n", check, path)
			return nil
		},
	}
}
