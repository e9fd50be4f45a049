package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/marcosvidal/carniceria-go/interfaces"
	"github.com/marcosvidal/carniceria-go/internal"
)

const (
	// DefaultTimeout for HTTP requests
	DefaultTimeout = 10 * time.Second
	// ComponentName for logging
	ComponentName = internal.ComponentStore
)

// HTTPClient interface for dependency injection and testing
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is the primary Store implementation: a REST client against the
// hosted row-level tables (PostgREST wire shape). It never retries on its
// own; retry policy lives above the Store.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient HTTPClient
	conns      *semaphore.Weighted
	timeout    time.Duration
	logger     *internal.Logger
}

// Config holds the configuration for the REST store client
type Config struct {
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	MaxConnections int
	HTTPClient     HTTPClient
	Logger         *internal.Logger
}

// NewClient creates a new REST store client
func NewClient(config Config) *Client {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	maxConns := config.MaxConnections
	if maxConns <= 0 || maxConns > internal.MaxStoreConnections {
		// Hard cap: a past incident exhausted host file descriptors.
		maxConns = internal.MaxStoreConnections
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxConnsPerHost:     maxConns,
				MaxIdleConnsPerHost: maxConns,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	logger := config.Logger
	if logger == nil {
		logger = internal.GetLogger()
	}

	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		apiKey:     config.APIKey,
		httpClient: httpClient,
		conns:      semaphore.NewWeighted(int64(maxConns)),
		timeout:    timeout,
		logger:     logger,
	}
}

// Name identifies the backend for logging.
func (c *Client) Name() string {
	return "rest:" + c.baseURL
}

// Close releases client resources.
func (c *Client) Close() error {
	if hc, ok := c.httpClient.(*http.Client); ok {
		if t, ok := hc.Transport.(*http.Transport); ok {
			t.CloseIdleConnections()
		}
	}
	return nil
}

// Select returns the rows matching the query.
func (c *Client) Select(ctx context.Context, table string, query interfaces.Query) ([]interfaces.Row, error) {
	values := url.Values{}
	for _, filter := range query.Filters {
		op, err := restOperator(filter.Op)
		if err != nil {
			return nil, interfaces.NewStoreError(interfaces.StoreErrUnknown, "select", table, err)
		}
		values.Add(filter.Column, fmt.Sprintf("%s.%v", op, filter.Value))
	}
	if len(query.OrderBy) > 0 {
		parts := make([]string, 0, len(query.OrderBy))
		for _, order := range query.OrderBy {
			direction := "asc"
			if order.Desc {
				direction = "desc"
			}
			parts = append(parts, order.Column+"."+direction)
		}
		values.Set("order", strings.Join(parts, ","))
	}
	if query.Limit > 0 {
		values.Set("limit", fmt.Sprintf("%d", query.Limit))
	}

	body, _, err := c.do(ctx, http.MethodGet, table, values, nil)
	if err != nil {
		return nil, err
	}

	rows := make([]interfaces.Row, 0)
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, interfaces.NewStoreError(interfaces.StoreErrUnknown, "select", table,
			fmt.Errorf("malformed response: %w", err))
	}
	return rows, nil
}

// Insert stores a new row; the backend assigns id and created_at.
func (c *Client) Insert(ctx context.Context, table string, row interfaces.Row) (interfaces.Row, error) {
	payload, err := json.Marshal(row)
	if err != nil {
		return nil, interfaces.NewStoreError(interfaces.StoreErrUnknown, "insert", table, err)
	}

	body, _, err := c.do(ctx, http.MethodPost, table, nil, payload)
	if err != nil {
		return nil, err
	}

	var rows []interfaces.Row
	if err := json.Unmarshal(body, &rows); err != nil || len(rows) == 0 {
		return nil, interfaces.NewStoreError(interfaces.StoreErrUnknown, "insert", table,
			fmt.Errorf("backend returned no representation"))
	}
	return rows[0], nil
}

// Update applies a column patch to the row with the given id. An empty
// representation means no row matched; that is not an error here.
func (c *Client) Update(ctx context.Context, table string, id string, patch interfaces.Row) (bool, error) {
	payload, err := json.Marshal(patch)
	if err != nil {
		return false, interfaces.NewStoreError(interfaces.StoreErrUnknown, "update", table, err)
	}

	values := url.Values{}
	values.Set("id", "eq."+id)

	body, _, err := c.do(ctx, http.MethodPatch, table, values, payload)
	if err != nil {
		return false, err
	}

	var rows []interfaces.Row
	if err := json.Unmarshal(body, &rows); err != nil {
		return false, interfaces.NewStoreError(interfaces.StoreErrUnknown, "update", table,
			fmt.Errorf("malformed response: %w", err))
	}
	return len(rows) > 0, nil
}

// Delete removes the row with the given id.
func (c *Client) Delete(ctx context.Context, table string, id string) (bool, error) {
	values := url.Values{}
	values.Set("id", "eq."+id)

	body, _, err := c.do(ctx, http.MethodDelete, table, values, nil)
	if err != nil {
		return false, err
	}

	var rows []interfaces.Row
	if err := json.Unmarshal(body, &rows); err != nil {
		return false, interfaces.NewStoreError(interfaces.StoreErrUnknown, "delete", table,
			fmt.Errorf("malformed response: %w", err))
	}
	return len(rows) > 0, nil
}

// Probe checks connectivity and that every accounting table answers with its
// expected columns. The three tables are probed concurrently.
func (c *Client) Probe(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)

	for _, table := range internal.AccountingTables {
		table := table
		group.Go(func() error {
			values := url.Values{}
			values.Set("select", strings.Join(probeColumns(table), ","))
			values.Set("limit", "1")
			_, _, err := c.do(ctx, http.MethodGet, table, values, nil)
			return err
		})
	}

	return group.Wait()
}

func probeColumns(table string) []string {
	switch table {
	case internal.TableDailyIncome:
		return []string{"id", "date", "amount", "category", "description", "payment_method", "created_at"}
	case internal.TableDailyExpenses:
		return []string{"id", "date", "amount", "category", "description", "supplier", "payment_method", "created_at"}
	case internal.TableCategories:
		return []string{"id", "name", "kind", "color", "icon", "active", "created_at"}
	default:
		return []string{"id"}
	}
}

// do performs one bounded HTTP round-trip and maps the outcome onto the
// store error taxonomy.
func (c *Client) do(ctx context.Context, method, table string, values url.Values, payload []byte) ([]byte, int, error) {
	op := strings.ToLower(method)

	// Connection acquisition blocks until a slot frees or the caller's
	// deadline expires; exhaustion is a connectivity failure, not a hang.
	if err := c.conns.Acquire(ctx, 1); err != nil {
		return nil, 0, interfaces.NewStoreError(interfaces.StoreErrConnectivity, op, table,
			fmt.Errorf("connection pool exhausted: %w", err))
	}
	defer c.conns.Release(1)

	endpoint := c.baseURL + "/rest/v1/" + table
	if len(values) > 0 {
		endpoint += "?" + values.Encode()
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, 0, interfaces.NewStoreError(interfaces.StoreErrUnknown, op, table, err)
	}

	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method == http.MethodPost || method == http.MethodPatch || method == http.MethodDelete {
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, interfaces.NewStoreError(interfaces.StoreErrConnectivity, op, table, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, interfaces.NewStoreError(interfaces.StoreErrConnectivity, op, table, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, resp.StatusCode, nil
	}

	return nil, resp.StatusCode, c.mapHTTPError(op, table, resp.StatusCode, body)
}

// restError is the error envelope the hosted backend returns.
type restError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *Client) mapHTTPError(op, table string, status int, body []byte) error {
	var re restError
	_ = json.Unmarshal(body, &re)

	detail := re.Message
	if detail == "" {
		detail = strings.TrimSpace(string(body))
	}
	err := fmt.Errorf("http %d: %s", status, detail)

	switch {
	case status == http.StatusConflict || re.Code == "23505":
		return interfaces.NewStoreError(interfaces.StoreErrConstraintViolation, op, table, err)
	case status == http.StatusNotFound:
		// PostgREST answers 404 for an unknown table.
		return interfaces.NewStoreError(interfaces.StoreErrSchemaMismatch, op, table, err)
	case re.Code == "42703" || re.Code == "42P01":
		// Undefined column / undefined table.
		return interfaces.NewStoreError(interfaces.StoreErrSchemaMismatch, op, table, err)
	case status == http.StatusRequestTimeout || status >= 500:
		return interfaces.NewStoreError(interfaces.StoreErrConnectivity, op, table, err)
	default:
		return interfaces.NewStoreError(interfaces.StoreErrUnknown, op, table, err)
	}
}

func restOperator(op interfaces.FilterOp) (string, error) {
	switch op {
	case interfaces.OpEq:
		return "eq", nil
	case interfaces.OpGte:
		return "gte", nil
	case interfaces.OpLte:
		return "lte", nil
	case interfaces.OpLike:
		return "like", nil
	default:
		return "", fmt.Errorf("unsupported filter op %q", op)
	}
}
