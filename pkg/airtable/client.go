// Package airtable is a minimal Airtable REST client covering the operations
// the ingest pipeline needs: paged select with filter formulas, create, and
// update with typecast.
package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Client defines the Airtable operations used by this application.
type Client interface {
	// Select fetches one page of records. The returned offset token is
	// non-empty when more pages remain.
	Select(ctx context.Context, table string, opts SelectOptions) ([]Record, string, error)
	// SelectAll follows offset tokens until the table is exhausted.
	SelectAll(ctx context.Context, table string, opts SelectOptions) ([]Record, error)
	// FindFirst returns the first record matching the formula, or nil.
	FindFirst(ctx context.Context, table string, f Formula) (*Record, error)
	// Create inserts a new record.
	Create(ctx context.Context, table string, fields map[string]any, typecast bool) (*Record, error)
	// Update modifies fields on an existing record.
	Update(ctx context.Context, table, recordID string, fields map[string]any, typecast bool) (*Record, error)
}

// SelectOptions narrows a select call.
type SelectOptions struct {
	Formula    Formula
	Fields     []string
	PageSize   int
	MaxRecords int
	Offset     string
}

// Option configures the Airtable client.
type Option func(*httpClient)

// WithBaseURL sets a custom API base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit overrides the default Airtable rate limit (5 req/s).
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		} else {
			c.limiter = nil
		}
	}
}

type httpClient struct {
	apiKey  string
	baseID  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates an Airtable client for one base. By default, API calls
// are throttled to 5 req/s (Airtable's per-base rate limit).
func NewClient(apiKey, baseID string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseID:  baseID,
		baseURL: "https://api.airtable.com/v0",
		limiter: rate.NewLimiter(5, 1),
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// wait blocks until the rate limiter allows one event, or ctx is cancelled.
func (c *httpClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

func (c *httpClient) tableURL(table string) string {
	return fmt.Sprintf("%s/%s/%s", c.baseURL, url.PathEscape(c.baseID), url.PathEscape(table))
}

// retryableStatusCode returns true if the HTTP status code should trigger a retry.
func retryableStatusCode(code int) bool {
	return code == http.StatusTooManyRequests ||
		code == http.StatusInternalServerError ||
		code == http.StatusBadGateway ||
		code == http.StatusServiceUnavailable
}

// retryDo executes an HTTP request with exponential backoff retries on
// transient failures (429, 500, 502, 503). Returns the response body and
// status code on success, or the last error after exhausting retries.
func (c *httpClient) retryDo(ctx context.Context, req *http.Request) ([]byte, int, error) {
	const maxAttempts = 3
	backoff := 1 * time.Second

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.wait(ctx); err != nil {
			return nil, 0, eris.Wrap(err, "airtable: rate limit")
		}

		retryReq := req.Clone(ctx)
		if req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, 0, eris.Wrap(err, "airtable: rewind request body")
			}
			retryReq.Body = body
		}

		resp, err := c.http.Do(retryReq)
		if err != nil {
			lastErr = err
			if attempt < maxAttempts {
				select {
				case <-ctx.Done():
					return nil, 0, ctx.Err()
				case <-time.After(backoff):
				}
				backoff *= 2
				continue
			}
			return nil, 0, lastErr
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return nil, resp.StatusCode, eris.Wrap(readErr, "airtable: read response body")
		}

		if retryableStatusCode(resp.StatusCode) && attempt < maxAttempts {
			lastErr = eris.Errorf("airtable: status %d: %s", resp.StatusCode, string(body))
			select {
			case <-ctx.Done():
				return nil, 0, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			continue
		}

		return body, resp.StatusCode, nil
	}

	return nil, 0, lastErr
}

func (c *httpClient) do(ctx context.Context, method, reqURL string, payload any) ([]byte, error) {
	var bodyReader io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, eris.Wrap(err, "airtable: marshal request")
		}
		bodyReader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return nil, eris.Wrap(err, "airtable: create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	body, statusCode, err := c.retryDo(ctx, req)
	if err != nil {
		return nil, eris.Wrap(err, "airtable: request failed")
	}
	if statusCode < 200 || statusCode >= 300 {
		return nil, eris.Errorf("airtable: unexpected status %d: %s", statusCode, string(body))
	}
	return body, nil
}

type selectResponse struct {
	Records []Record `json:"records"`
	Offset  string   `json:"offset"`
}

func (c *httpClient) Select(ctx context.Context, table string, opts SelectOptions) ([]Record, string, error) {
	q := url.Values{}
	if !opts.Formula.IsZero() {
		q.Set("filterByFormula", opts.Formula.String())
	}
	if opts.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(opts.PageSize))
	}
	if opts.MaxRecords > 0 {
		q.Set("maxRecords", strconv.Itoa(opts.MaxRecords))
	}
	if opts.Offset != "" {
		q.Set("offset", opts.Offset)
	}
	for _, f := range opts.Fields {
		q.Add("fields[]", f)
	}

	reqURL := c.tableURL(table)
	if encoded := q.Encode(); encoded != "" {
		reqURL += "?" + encoded
	}

	body, err := c.do(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, "", eris.Wrap(err, fmt.Sprintf("airtable: select %s", table))
	}

	var resp selectResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, "", eris.Wrap(err, "airtable: unmarshal select response")
	}
	return resp.Records, resp.Offset, nil
}

func (c *httpClient) SelectAll(ctx context.Context, table string, opts SelectOptions) ([]Record, error) {
	if opts.PageSize == 0 {
		opts.PageSize = 100
	}

	var all []Record
	for {
		page, offset, err := c.Select(ctx, table, opts)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if offset == "" {
			return all, nil
		}
		opts.Offset = offset
	}
}

func (c *httpClient) FindFirst(ctx context.Context, table string, f Formula) (*Record, error) {
	records, _, err := c.Select(ctx, table, SelectOptions{Formula: f, MaxRecords: 1})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

type mutateRequest struct {
	Fields   map[string]any `json:"fields"`
	Typecast bool           `json:"typecast,omitempty"`
}

func (c *httpClient) Create(ctx context.Context, table string, fields map[string]any, typecast bool) (*Record, error) {
	body, err := c.do(ctx, http.MethodPost, c.tableURL(table), mutateRequest{Fields: fields, Typecast: typecast})
	if err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("airtable: create in %s", table))
	}

	var rec Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, eris.Wrap(err, "airtable: unmarshal created record")
	}
	return &rec, nil
}

func (c *httpClient) Update(ctx context.Context, table, recordID string, fields map[string]any, typecast bool) (*Record, error) {
	reqURL := c.tableURL(table) + "/" + url.PathEscape(recordID)
	body, err := c.do(ctx, http.MethodPatch, reqURL, mutateRequest{Fields: fields, Typecast: typecast})
	if err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("airtable: update %s in %s", recordID, table))
	}

	var rec Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, eris.Wrap(err, "airtable: unmarshal updated record")
	}
	return &rec, nil
}
