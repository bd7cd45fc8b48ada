// Package fetcher retrieves and parses candidate export files. Job boards
// deliver exports as local uploads, HTTP links, or FTP drops, in CSV or XLSX.
package fetcher

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Options configures file retrieval.
type Options struct {
	// HTTPTimeout bounds each HTTP request. Default 30s.
	HTTPTimeout time.Duration
	// FTPTimeout bounds the FTP dial. Default 30s.
	FTPTimeout time.Duration
}

// Open resolves a file reference to a reader. ftp:// and http(s):// URLs are
// downloaded; anything else is treated as a local path. The caller must
// close the returned reader.
func Open(ctx context.Context, path string, opts Options) (io.ReadCloser, error) {
	switch {
	case strings.HasPrefix(path, "ftp://"):
		return NewFTPFetcher(FTPOptions{Timeout: opts.FTPTimeout}).Download(ctx, path)
	case strings.HasPrefix(path, "http://"), strings.HasPrefix(path, "https://"):
		return NewHTTPFetcher(HTTPOptions{Timeout: opts.HTTPTimeout}).Download(ctx, path)
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "fetcher: open %s", path)
		}
		return f, nil
	}
}
