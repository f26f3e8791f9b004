package restclient

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

	"golang.org/x/time/rate"

	"github.com/edumate/edumate-orchestrator/internal/core/domain"
	"github.com/edumate/edumate-orchestrator/internal/infrastructure/resilience"
)

const maxResponseBytes = 8 << 20

type Options struct {
	// Service prefixes operation names in errors, logs and breaker keys.
	Service    string
	Timeout    time.Duration
	Executor   *resilience.Executor
	Limiter    *rate.Limiter
	HTTPClient *http.Client
}

// Client issues requests against one backend service. GETs and requests
// flagged Idempotent go through the resilience executor; the rest are sent
// exactly once.
type Client struct {
	service    string
	baseURL    string
	httpClient *http.Client
	executor   *resilience.Executor
	limiter    *rate.Limiter
}

func New(baseURL string, opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	service := strings.TrimSpace(opts.Service)
	if service == "" {
		service = "remote"
	}
	return &Client{
		service:    service,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		executor:   opts.Executor,
		limiter:    opts.Limiter,
	}
}

type Request struct {
	Operation string
	Method    string
	Path      string
	Query     url.Values
	JSON      any
	Form      *Multipart

	// Idempotent marks a non-GET call the remote treats as safe to repeat.
	// Only GETs and idempotent calls are retried; everything else is sent once.
	Idempotent bool
}

func (r Request) retryable() bool {
	return r.Method == http.MethodGet || r.Idempotent
}

type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

func (r *Response) Empty() bool {
	return r == nil || len(bytes.TrimSpace(r.Body)) == 0
}

// Do sends req and maps failures onto domain error kinds.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	op := c.operation(req.Operation)

	payload, contentType, err := req.encode()
	if err != nil {
		return nil, fmt.Errorf("%s: encode request: %w", op, err)
	}

	send := func(ctx context.Context) (*Response, error) {
		return c.send(ctx, req, payload, contentType)
	}

	var resp *Response
	if req.retryable() {
		resp, err = resilience.Call(ctx, c.executor, op, send, Classify)
	} else {
		resp, err = send(ctx)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s: %w", op, ctxErr)
		}
		return nil, mapError(op, err)
	}
	return resp, nil
}

// DoJSON sends req and decodes a JSON body into out. An empty body leaves out untouched.
func (c *Client) DoJSON(ctx context.Context, req Request, out any) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	if out == nil || resp.Empty() {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return domain.WrapError(domain.ErrServer, c.operation(req.Operation), fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func (c *Client) operation(name string) string {
	return c.service + "." + name
}

func (c *Client) send(ctx context.Context, req Request, payload []byte, contentType string) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", "application/json, text/plain;q=0.9")
	if session, ok := domain.SessionFromContext(ctx); ok && session.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+session.Token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, newHTTPStatusError(c.operation(req.Operation), resp)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        data,
	}, nil
}

func (r Request) encode() ([]byte, string, error) {
	switch {
	case r.Form != nil:
		return r.Form.encode()
	case r.JSON != nil:
		body, err := json.Marshal(r.JSON)
		if err != nil {
			return nil, "", err
		}
		return body, "application/json", nil
	default:
		return nil, "", nil
	}
}
