package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yildizm/loglens/internal/logger"
)

const (
	// DefaultBaseURL is where the analysis backend listens by default
	DefaultBaseURL = "http://localhost:8000"

	requestIDHeader = "X-Request-ID"
)

// Client talks to the log analysis backend. It holds no session state:
// the backend itself remembers the most recent upload.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	log     *logger.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. nil is ignored.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets a whole-request timeout; zero keeps transport defaults.
// The timeout is applied to a copy, so a shared client is left untouched.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.http
		hc.Timeout = d
		c.http = &hc
	}
}

// WithLogger attaches a logger
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// NewClient creates a client for the backend at baseURL
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL: u,
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the backend address
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// UploadLog uploads a log file and returns the backend's analysis
func (c *Client) UploadLog(ctx context.Context, file LogFile) (*AnalysisResult, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", file.Name)
	if err != nil {
		return nil, newTransportError(OpUpload, err)
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, newTransportError(OpUpload, err)
	}
	if err := mw.Close(); err != nil {
		return nil, newTransportError(OpUpload, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/upload"), &body)
	if err != nil {
		return nil, newTransportError(OpUpload, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var result AnalysisResult
	if err := c.do(req, OpUpload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// FetchSummary returns the summary report for the most recent upload
func (c *Client) FetchSummary(ctx context.Context) (*SummaryReport, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/summary"), http.NoBody)
	if err != nil {
		return nil, newTransportError(OpSummary, err)
	}

	var report SummaryReport
	if err := c.do(req, OpSummary, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// SubmitQuery asks a question about the most recent upload
func (c *Client) SubmitQuery(ctx context.Context, text string) (*QueryResponse, error) {
	payload, err := json.Marshal(QueryRequest{Query: text})
	if err != nil {
		return nil, newTransportError(OpQuery, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/query"), bytes.NewReader(payload))
	if err != nil {
		return nil, newTransportError(OpQuery, err)
	}
	req.Header.Set("Content-Type", "application/json")

	var resp QueryResponse
	if err := c.do(req, OpQuery, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) endpoint(path string) string {
	return c.baseURL.JoinPath(path).String()
}

// do sends req and decodes a 2xx JSON body into out
func (c *Client) do(req *http.Request, op Op, out any) error {
	requestID := uuid.NewString()
	req.Header.Set(requestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		apiErr := newTransportError(op, err)
		c.log.Warn("request failed", logger.F("op", op), logger.F("request_id", requestID), logger.Error(apiErr.Cause))
		return apiErr
	}
	defer func() { _ = resp.Body.Close() }()

	c.log.Debug("response received",
		logger.F("op", op),
		logger.F("request_id", requestID),
		logger.F("status", resp.StatusCode),
		logger.Duration(time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := c.handleErrorResponse(resp, op)
		c.log.Warn("backend returned error", logger.F("request_id", requestID), logger.F("detail", apiErr.Detail()))
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return newDecodeError(op, err)
	}
	return nil
}

func (c *Client) handleErrorResponse(resp *http.Response, op Op) *Error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil || len(body) == 0 {
		return newServerError(op, resp.StatusCode, "")
	}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return newServerError(op, resp.StatusCode, "")
	}
	return newServerError(op, resp.StatusCode, strings.TrimSpace(eb.Detail))
}
