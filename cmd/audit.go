package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/meridian-legal/docaudit/internal/ingest"
	"github.com/meridian-legal/docaudit/internal/model"
	"github.com/meridian-legal/docaudit/internal/pipeline"
	"github.com/meridian-legal/docaudit/internal/report"
	"github.com/meridian-legal/docaudit/internal/store"
	"github.com/meridian-legal/docaudit/pkg/extraction"
)

var (
	auditCaseType string
	auditFormat   string
	auditXLSXPath string
	auditNoStore  bool
)

var auditCmd = &cobra.Command{
	Use:   "audit <file.pdf>",
	Short: "Audit a scanned case file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		path := args[0]

		source := ingest.NewPDFSource(path, cfg.Ingest)
		pages, err := source.Pages(ctx)
		if err != nil {
			return eris.Wrap(err, "read case file")
		}

		claude := extraction.NewClaude(cfg.Anthropic)
		p, err := pipeline.New(cfg, claude, nil)
		if err != nil {
			return err
		}

		runID := uuid.NewString()
		var st store.Store
		if !auditNoStore {
			st, err = initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()
			if _, err := st.CreateRun(ctx, runID, filepath.Base(path), auditCaseType); err != nil {
				return err
			}
			if err := st.UpdateRunStatus(ctx, runID, model.RunStatusRunning); err != nil {
				return err
			}
		}

		rep, err := p.Run(ctx, pages, auditCaseType)
		if err != nil {
			if st != nil {
				if ferr := st.UpdateRunStatus(ctx, runID, model.RunStatusFailed); ferr != nil {
					zap.L().Warn("mark run failed", zap.Error(ferr))
				}
			}
			return eris.Wrap(err, "audit run")
		}
		rep.RunID = runID

		if st != nil {
			if err := st.CompleteRun(ctx, runID, rep); err != nil {
				return err
			}
		}

		if auditXLSXPath != "" {
			if err := report.WriteXLSX(rep, auditXLSXPath); err != nil {
				return err
			}
			zap.L().Info("workbook written", zap.String("path", auditXLSXPath))
		}

		return printReport(rep, auditFormat)
	},
}

func printReport(rep *model.AuditReport, format string) error {
	switch format {
	case "markdown", "md":
		fmt.Print(report.Markdown(rep))
		return nil
	case "json", "":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	default:
		return eris.Errorf("unknown output format %q", format)
	}
}

func init() {
	auditCmd.Flags().StringVar(&auditCaseType, "case-type", "", "case type for completeness checks (h1b, perm, greencard)")
	auditCmd.Flags().StringVarP(&auditFormat, "output", "o", "json", "output format: json or markdown")
	auditCmd.Flags().StringVar(&auditXLSXPath, "xlsx", "", "also write an Excel workbook to this path")
	auditCmd.Flags().BoolVar(&auditNoStore, "no-store", false, "do not persist the run")
	rootCmd.AddCommand(auditCmd)
}
