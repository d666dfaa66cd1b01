package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/meridian-legal/docaudit/internal/model"
	"github.com/meridian-legal/docaudit/internal/store"
)

var (
	runsStatus   string
	runsCaseType string
	runsLimit    int
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect stored audit runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		runs, err := st.ListRuns(ctx, store.RunFilter{
			Status:   model.RunStatus(runsStatus),
			CaseType: runsCaseType,
			Limit:    runsLimit,
		})
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tFILE\tCASE\tSTATUS\tSCORE\tCREATED")
		for _, r := range runs {
			score := "-"
			if r.Report != nil {
				score = fmt.Sprintf("%.2f", r.Report.QualityScore)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				r.ID, r.FileName, r.CaseType, r.Status, score, r.CreatedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

var runsGetCmd = &cobra.Command{
	Use:   "get <run-id>",
	Short: "Print one stored run as JSON",
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

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	},
}

func init() {
	runsListCmd.Flags().StringVar(&runsStatus, "status", "", "filter by status")
	runsListCmd.Flags().StringVar(&runsCaseType, "case-type", "", "filter by case type")
	runsListCmd.Flags().IntVar(&runsLimit, "limit", 50, "maximum rows")
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsGetCmd)
	rootCmd.AddCommand(runsCmd)
}
