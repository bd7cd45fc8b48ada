package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/recruit-cli/internal/ingest"
	"github.com/sells-group/recruit-cli/internal/source"
)

var (
	ingestFile   string
	ingestSource string
	ingestDryRun bool
	ingestOutput string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest an applicant export into the MASTER table",
	Long: `Fetches an applicant export (local path, http(s) or ftp URL), maps each row
through the adapter for the given source, and upserts the candidates.

Examples:
  # Parse only, print the mapped records
  recruit-cli ingest --file applicants.csv --source indeed --dry-run

  # Full ingestion from an FTP drop
  recruit-cli ingest --file ftp://drops.example.com/handshake.csv --source handshake

  # Bulk onboarding spreadsheet, summary to a file
  recruit-cli ingest --file onboarding.xlsx --source bulkonboarding --output summary.json`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		client, err := initAirtable()
		if err != nil {
			return err
		}

		p := ingest.NewPipeline(client, cfg)
		records, parsed, err := p.Process(ctx, ingestFile, ingestSource)
		if err != nil {
			return eris.Wrap(err, "ingest: process")
		}

		if ingestDryRun {
			return writeJSON(ingestOutput, records)
		}

		rl, err := initRunlog(ctx)
		if err != nil {
			return err
		}
		defer rl.Close() //nolint:errcheck

		adapter, err := source.For(ingestSource)
		if err != nil {
			return err
		}
		run, err := rl.CreateRun(ctx, ingestFile, adapter.Source())
		if err != nil {
			return err
		}

		uploader := &ingest.Uploader{
			Client:     client,
			Table:      cfg.Airtable.MasterTable,
			BatchSize:  cfg.Ingest.BatchSize,
			BatchPause: time.Duration(cfg.Ingest.BatchPauseMS) * time.Millisecond,
			RunID:      run.ID,
			Sink:       rl,
		}

		summary, err := uploader.Upload(ctx, records)
		if err != nil {
			if failErr := rl.FailRun(ctx, run.ID, err); failErr != nil {
				zap.L().Error("run not marked failed", zap.Error(failErr))
			}
			return eris.Wrap(err, "ingest: upload")
		}
		summary.ParsedRows = parsed

		if err := rl.CompleteRun(ctx, run.ID, summary); err != nil {
			zap.L().Error("run not marked complete", zap.Error(err))
		}

		return writeJSON(ingestOutput, summary)
	},
}

// writeJSON pretty-prints v to stdout, or to path when given.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return eris.Wrap(err, "ingest: marshal output")
	}
	if path == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "ingest: write %s", path)
	}
	zap.L().Info("wrote output", zap.String("path", path))
	return nil
}

func init() {
	ingestCmd.Flags().StringVar(&ingestFile, "file", "", "applicant export: local path, http(s) or ftp URL (required)")
	ingestCmd.Flags().StringVar(&ingestSource, "source", "", fmt.Sprintf("source type: %s (required)", strings.Join(source.Names(), ", ")))
	ingestCmd.Flags().BoolVar(&ingestDryRun, "dry-run", false, "parse and map only; do not write to the store")
	ingestCmd.Flags().StringVar(&ingestOutput, "output", "", "write the summary JSON to this file instead of stdout")
	_ = ingestCmd.MarkFlagRequired("file")
	_ = ingestCmd.MarkFlagRequired("source")
	rootCmd.AddCommand(ingestCmd)
}
