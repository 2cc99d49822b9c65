// Package apiclient talks to the remote Secretaría API. It never retries; every
// failure is reported to the caller, which decides what the user sees.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/sgeneral-iua/portal-sg/internal/logging"
	"github.com/sgeneral-iua/portal-sg/internal/models"
	"github.com/sgeneral-iua/portal-sg/internal/observability"
	"github.com/sgeneral-iua/portal-sg/internal/utils"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const serviceName = "sg_api"

// Client is a thin JSON/multipart wrapper over the Secretaría API
type Client struct {
	baseURL string
	http    *http.Client
	logger  *logging.SafeLogger
}

// New creates a client for baseURL. A missing base URL is a configuration
// error and is reported immediately.
func New(baseURL string, httpClient *http.Client, logger *logging.SafeLogger) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, ErrMissingBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: baseURL,
		http:    httpClient,
		logger:  logger.Named("apiclient"),
	}, nil
}

type request struct {
	op          string
	method      string
	path        string
	token       string
	body        io.Reader
	contentType string
	accept      string
}

// do sends the request and returns the response body for 2xx answers. Any
// other status becomes an *Error.
func (c *Client) do(ctx context.Context, r request) (*http.Response, []byte, error) {
	ctx, span := utils.TraceExternalService(ctx, serviceName, r.op)
	defer span.End()
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, r.body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s request: %w", r.op, err)
	}
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if r.accept != "" {
		req.Header.Set("Accept", r.accept)
	} else {
		req.Header.Set("Accept", "application/json")
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := c.http.Do(req)
	observability.RemoteAPIDuration.WithLabelValues(r.op).Observe(time.Since(start).Seconds())
	if err != nil {
		observability.RemoteAPICalls.WithLabelValues(r.op, "network_error").Inc()
		utils.RecordErrorInSpan(span, err, map[string]interface{}{"service.operation": r.op})
		c.logger.Warn("remote API call failed",
			zap.String("operation", r.op),
			zap.String("path", r.path),
			zap.Error(err))
		return nil, nil, fmt.Errorf("%s: %w", r.op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		observability.RemoteAPICalls.WithLabelValues(r.op, "read_error").Inc()
		utils.RecordErrorInSpan(span, err, nil)
		return nil, nil, fmt.Errorf("read %s response: %w", r.op, err)
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	observability.RemoteAPICalls.WithLabelValues(r.op, fmt.Sprint(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newError(resp.StatusCode, body)
		utils.RecordErrorInSpan(span, apiErr, map[string]interface{}{"http.status_code": resp.StatusCode})
		c.logger.Debug("remote API returned error",
			zap.String("operation", r.op),
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message))
		return resp, body, apiErr
	}

	return resp, body, nil
}

// doJSON marshals in (when non-nil) and decodes the answer into out (when
// non-nil). Empty and null bodies leave out untouched.
func (c *Client) doJSON(ctx context.Context, op, method, path, token string, in, out interface{}) error {
	r := request{op: op, method: method, path: path, token: token}
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode %s payload: %w", op, err)
		}
		r.body = bytes.NewReader(payload)
		r.contentType = "application/json"
	}

	_, body, err := c.do(ctx, r)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return nil
}

// doBlob fetches a binary payload along with the server-provided file name
func (c *Client) doBlob(ctx context.Context, op, method, path, token string) (*models.FileBlob, error) {
	resp, body, err := c.do(ctx, request{op: op, method: method, path: path, token: token, accept: "*/*"})
	if err != nil {
		return nil, err
	}
	return &models.FileBlob{
		FileName:    fileNameFromDisposition(resp.Header.Get("Content-Disposition")),
		ContentType: resp.Header.Get("Content-Type"),
		Content:     body,
	}, nil
}

// fileNameFromDisposition extracts filename (or filename*) from a
// Content-Disposition header. Returns "" when absent or malformed.
func fileNameFromDisposition(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(params["filename"])
}
