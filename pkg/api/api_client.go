/*
Copyright 2026 Nscale.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package api

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/unikorn-cloud/issuetracker-apitest/pkg/metrics"

	"sigs.k8s.io/controller-runtime/pkg/log"
)

var (
	// ErrUnsupportedMethod is returned for methods the issue tracker never serves.
	ErrUnsupportedMethod = errors.New("unsupported method")
)

//go:generate mockgen -source=api_client.go -destination=mock/interfaces.go -package=mock

// HTTPDoer sends HTTP requests, *http.Client satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Check is one request and the status code it must produce to pass.
type Check struct {
	// Name is the human readable name printed in progress output.
	Name string
	// Method is one of GET, POST, PUT or DELETE.
	Method string
	// Endpoint is relative to the session base URL and may carry a query.
	Endpoint string
	// ExpectedStatus is the only status code that passes the check.
	ExpectedStatus int
	// Body is JSON encoded for POST and PUT requests when not nil.
	Body any
	// Headers override or extend the default headers.
	Headers map[string]string
}

// Result is the outcome of a check.
type Result struct {
	// Success is true iff the backend returned the expected status code.
	Success bool
	// StatusCode is the status returned by the backend, 0 when no response arrived.
	StatusCode int
	// Body is the decoded JSON object of a successful response, never nil.
	Body map[string]any
	// Items holds the elements of a successful JSON array response.
	Items []any
}

// Len returns the number of items of an array response, or of keys of an
// object response.
func (r Result) Len() int {
	if r.Items != nil {
		return len(r.Items)
	}

	return len(r.Body)
}

func failedResult(statusCode int) Result {
	return Result{
		StatusCode: statusCode,
		Body:       map[string]any{},
	}
}

type APIClient struct {
	session *Session
	client  HTTPDoer
	config  *TestConfig
	metrics *metrics.Metrics
	out     io.Writer
}

// NewAPIClientWithConfig returns a client that reports progress to out and
// records every check into the session and metrics.
func NewAPIClientWithConfig(config *TestConfig, session *Session, out io.Writer, metrics *metrics.Metrics) *APIClient {
	if out == nil {
		out = io.Discard
	}

	return &APIClient{
		session: session,
		client: &http.Client{
			Timeout: config.RequestTimeout,
		},
		config:  config,
		metrics: metrics,
		out:     out,
	}
}

// SetHTTPClient replaces the transport.
func (c *APIClient) SetHTTPClient(client HTTPDoer) {
	c.client = client
}

func (c *APIClient) Session() *Session {
	return c.session
}

// URL joins the session base URL and an endpoint.
func (c *APIClient) URL(endpoint string) string {
	return c.session.BaseURL + "/" + strings.TrimPrefix(endpoint, "/")
}

// RunTest executes a check. Every call counts as a test run, and as a pass
// only when the status code matches. Failures of any kind are reported in
// the result, never returned or raised.
func (c *APIClient) RunTest(ctx context.Context, check Check) Result {
	fullURL := c.URL(check.Endpoint)

	c.session.TestsRun++

	fmt.Fprintf(c.out, "\n🔍 Testing %s...\n", check.Name)
	fmt.Fprintf(c.out, "   URL: %s\n", fullURL)

	start := time.Now()
	resp, respBody, err := c.doRequest(ctx, check.Method, fullURL, check.Body, check.Headers)
	duration := time.Since(start)

	if err != nil {
		fmt.Fprintf(c.out, "❌ Failed - Error: %v\n", err)
		c.recordCheck(check, metrics.ResultError, duration)

		return failedResult(0)
	}

	if resp.StatusCode != check.ExpectedStatus {
		fmt.Fprintf(c.out, "❌ Failed - Expected %d, got %d\n", check.ExpectedStatus, resp.StatusCode)
		c.printErrorDetail(respBody)
		c.recordCheck(check, metrics.ResultFail, duration)

		return failedResult(resp.StatusCode)
	}

	c.session.TestsPassed++

	fmt.Fprintf(c.out, "✅ Passed - Status: %d\n", resp.StatusCode)
	c.recordCheck(check, metrics.ResultPass, duration)

	body, items := decodeBody(respBody)

	return Result{
		Success:    true,
		StatusCode: resp.StatusCode,
		Body:       body,
		Items:      items,
	}
}

func (c *APIClient) recordCheck(check Check, result metrics.Result, duration time.Duration) {
	if c.metrics != nil {
		c.metrics.RecordCheck(check.Name, check.Method, result, duration)
	}
}

// printErrorDetail prints a JSON error body compactly, anything else verbatim.
func (c *APIClient) printErrorDetail(body []byte) {
	var compact bytes.Buffer

	if err := json.Compact(&compact, body); err == nil {
		fmt.Fprintf(c.out, "   Error: %s\n", compact.String())
		return
	}

	fmt.Fprintf(c.out, "   Response: %s\n", string(body))
}

// decodeBody decodes a JSON object or array, anything else decodes as empty.
// Numbers are kept as json.Number so large identifiers survive intact.
func decodeBody(raw []byte) (map[string]any, []any) {
	body := map[string]any{}

	if len(bytes.TrimSpace(raw)) == 0 {
		return body, nil
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	var decoded any
	if err := decoder.Decode(&decoded); err != nil {
		return body, nil
	}

	if decoder.More() {
		return body, nil
	}

	switch value := decoded.(type) {
	case map[string]any:
		return value, nil
	case []any:
		return body, value
	}

	return body, nil
}

// generateTraceID creates a new W3C trace ID.
// A fresh trace per request lets a failed check be found in the backend logs.
func generateTraceID() string {
	bytes := make([]byte, 16)
	_, _ = rand.Read(bytes)

	return hex.EncodeToString(bytes)
}

// generateSpanID creates a new W3C span ID.
func generateSpanID() string {
	bytes := make([]byte, 8)
	_, _ = rand.Read(bytes)

	return hex.EncodeToString(bytes)
}

// createTraceParent creates a W3C traceparent header value.
func createTraceParent() string {
	return fmt.Sprintf("00-%s-%s-01", generateTraceID(), generateSpanID())
}

// extractTraceID extracts the trace ID from a traceparent header value.
func extractTraceID(traceParent string) string {
	parts := strings.Split(traceParent, "-")
	if len(parts) >= 2 {
		return parts[1]
	}

	return traceParent
}

func newRequestBody(method string, body any) (io.Reader, error) {
	switch method {
	case http.MethodGet, http.MethodDelete:
		return nil, nil
	case http.MethodPost, http.MethodPut:
		if body == nil {
			return nil, nil
		}

		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}

		return bytes.NewReader(data), nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnsupportedMethod, method)
}

//nolint:cyclop
func (c *APIClient) doRequest(ctx context.Context, method, fullURL string, body any, headers map[string]string) (*http.Response, []byte, error) {
	log := log.FromContext(ctx)

	reqBody, err := newRequestBody(method, body)
	if err != nil {
		return nil, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return nil, nil, fmt.Errorf("creating request: %w", err)
	}

	// Add W3C Trace Context headers
	traceParent := createTraceParent()
	req.Header.Set("Traceparent", traceParent)
	req.Header.Set("Tracestate", "test-automation=issuetracker-apitest")
	req.Header.Set("Content-Type", "application/json")

	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	duration := time.Since(start)

	if err != nil {
		log.Error(err, "http request failed", "method", method, "url", fullURL, "duration", duration, "traceID", extractTraceID(traceParent))
		return nil, nil, fmt.Errorf("http request failed: %w", err)
	}

	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error(err, "reading response body", "method", method, "url", fullURL, "status", resp.StatusCode, "traceID", extractTraceID(traceParent))
		return nil, nil, fmt.Errorf("reading response body: %w", err)
	}

	if c.config.LogRequests {
		log.Info("request complete", "method", method, "url", fullURL, "status", resp.StatusCode, "duration", duration, "traceID", extractTraceID(traceParent))
	}

	if c.config.LogResponses && len(respBody) > 0 {
		log.Info("response body", "method", method, "url", fullURL, "body", string(respBody))
	}

	return resp, respBody, nil
}
