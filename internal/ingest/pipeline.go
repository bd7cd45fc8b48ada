// Package ingest orchestrates one applicant-file ingestion: fetch the file,
// parse rows, map them through a source adapter, and upsert the results into
// the MASTER table.
package ingest

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/recruit-cli/internal/config"
	"github.com/sells-group/recruit-cli/internal/fetcher"
	"github.com/sells-group/recruit-cli/internal/model"
	"github.com/sells-group/recruit-cli/internal/office"
	"github.com/sells-group/recruit-cli/internal/resilience"
	"github.com/sells-group/recruit-cli/internal/source"
	"github.com/sells-group/recruit-cli/pkg/airtable"
)

// Pipeline turns one applicant export into canonical candidate records.
type Pipeline struct {
	client airtable.Client
	cfg    *config.Config
}

// NewPipeline creates a pipeline over the given record-store client.
func NewPipeline(client airtable.Client, cfg *config.Config) *Pipeline {
	return &Pipeline{client: client, cfg: cfg}
}

// Process fetches and parses the file at path, then maps every row through
// the adapter for sourceName. The office cache is fetched concurrently with
// the file since neither depends on the other. Rows the adapter rejects are
// dropped with a warning; an unknown source is a hard error. The second
// return value is the number of rows parsed from the file, dropped rows
// included.
func (p *Pipeline) Process(ctx context.Context, path, sourceName string) ([]model.CandidateRecord, int, error) {
	adapter, err := source.For(sourceName)
	if err != nil {
		return nil, 0, err
	}

	var rows []map[string]string
	var offices *office.Cache

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = p.readRows(gCtx, path)
		return err
	})
	g.Go(func() error {
		var err error
		offices, err = resilience.DoVal(gCtx, retryConfig("office", "fetch"), func(ctx context.Context) (*office.Cache, error) {
			return office.Fetch(ctx, p.client,
				p.cfg.Airtable.OfficeTable,
				p.cfg.Airtable.ListingLocationField,
				p.cfg.Airtable.NoOfficeRecordID,
			)
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	zap.L().Info("parsed file",
		zap.String("file", path),
		zap.String("source", sourceName),
		zap.Int("rows", len(rows)),
		zap.Int("offices", offices.Len()),
	)

	records := make([]model.CandidateRecord, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		rec, ok := adapter.Map(row, offices)
		if !ok {
			skipped++
			continue
		}
		records = append(records, *rec)
	}
	if skipped > 0 {
		zap.L().Warn("skipped unmappable rows",
			zap.String("source", sourceName),
			zap.Int("skipped", skipped),
		)
	}

	return records, len(rows), nil
}

// readRows fetches path (local, http(s) or ftp) and parses it by extension.
// Spreadsheets need a seekable file on disk, so remote ones are staged in a
// temp file first.
func (p *Pipeline) readRows(ctx context.Context, path string) ([]map[string]string, error) {
	opts := fetcher.Options{
		FTPTimeout: time.Duration(p.cfg.Ingest.FTPTimeout) * time.Second,
	}

	ext := strings.ToLower(filepath.Ext(strings.SplitN(path, "?", 2)[0]))
	if ext == ".xlsx" {
		localPath := path
		if isRemote(path) {
			staged, cleanup, err := stageRemote(ctx, path, opts)
			if err != nil {
				return nil, err
			}
			defer cleanup()
			localPath = staged
		}
		return fetcher.ReadXLSXRows(localPath, fetcher.XLSXOptions{})
	}

	rc, err := fetcher.Open(ctx, path, opts)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return fetcher.ReadCSVRows(rc, fetcher.CSVOptions{Encoding: p.cfg.Ingest.CSVEncoding})
}

func isRemote(path string) bool {
	return strings.HasPrefix(path, "http://") ||
		strings.HasPrefix(path, "https://") ||
		strings.HasPrefix(path, "ftp://")
}

// stageRemote downloads a remote file into a temp file and returns its path
// plus a cleanup func.
func stageRemote(ctx context.Context, path string, opts fetcher.Options) (string, func(), error) {
	rc, err := fetcher.Open(ctx, path, opts)
	if err != nil {
		return "", nil, err
	}
	defer rc.Close()

	tmp, err := os.CreateTemp("", "ingest-*.xlsx")
	if err != nil {
		return "", nil, eris.Wrap(err, "ingest: create temp file")
	}
	if _, err := io.Copy(tmp, rc); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", nil, eris.Wrap(err, "ingest: stage remote file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", nil, eris.Wrap(err, "ingest: close temp file")
	}
	return tmp.Name(), func() { os.Remove(tmp.Name()) }, nil
}

func retryConfig(service, operation string) resilience.RetryConfig {
	cfg := resilience.DefaultRetryConfig()
	cfg.OnRetry = resilience.RetryLogger(service, operation)
	return cfg
}
