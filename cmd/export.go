package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/meridian-legal/docaudit/internal/report"
)

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export <run-id>",
	Short: "Export a stored run's report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return err
		}
		if run.Report == nil {
			return eris.Errorf("run %s has no report (status %s)", run.ID, run.Status)
		}

		switch exportFormat {
		case "xlsx":
			out := exportOut
			if out == "" {
				out = run.ID + ".xlsx"
			}
			if err := report.WriteXLSX(run.Report, out); err != nil {
				return err
			}
			zap.L().Info("workbook written", zap.String("path", out))
			return nil
		case "markdown", "md":
			if exportOut != "" {
				return os.WriteFile(exportOut, []byte(report.Markdown(run.Report)), 0o644)
			}
			_, err := os.Stdout.WriteString(report.Markdown(run.Report))
			return err
		default:
			return eris.Errorf("unknown export format %q", exportFormat)
		}
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "xlsx", "export format: xlsx or markdown")
	exportCmd.Flags().StringVarP(&exportOut, "out", "O", "", "output path (default derived from run ID)")
	rootCmd.AddCommand(exportCmd)
}
