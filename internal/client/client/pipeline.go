package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/clouddrive/internal/common"
	"github.com/dmitrijs2005/clouddrive/internal/logging"
	"github.com/google/uuid"
)

const (
	ContentTypeJSON = "application/json"
	ContentTypeForm = "application/x-www-form-urlencoded"
)

// Doer is the transport. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ResponseType tells the pipeline how the caller intends to consume a body.
type ResponseType int

const (
	ResponseJSON ResponseType = iota
	ResponseBinary
)

// Request describes one call to the remote service. Path is relative to the
// pipeline's base URL. An empty ContentType means the pipeline default.
type Request struct {
	Method       string
	Path         string
	Query        url.Values
	Body         io.Reader
	ContentType  string
	ResponseType ResponseType
}

// Response is a fully read response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals a JSON body into v. An empty body leaves v untouched.
func (r *Response) Decode(v any) error {
	if r == nil || len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// RequestInterceptor runs right before a request is transmitted. It cannot
// fail: anything it cannot do it must log and skip.
type RequestInterceptor func(ctx context.Context, req *http.Request)

// ResponseInterceptor runs after a call completes and before the caller sees
// the outcome. err is a *StatusError for non-2xx responses and the raw
// transport error when no response was received (resp is nil then).
type ResponseInterceptor func(ctx context.Context, resp *Response, err error) (*Response, error)

// Pipeline is the single choke point for calls to the remote service.
// It is safe for concurrent use once built.
type Pipeline struct {
	baseURL     *url.URL
	doer        Doer
	logger      logging.Logger
	contentType string
	onRequest   []RequestInterceptor
	onResponse  []ResponseInterceptor
}

type Option func(*Pipeline)

func WithDoer(d Doer) Option {
	return func(p *Pipeline) { p.doer = d }
}

func WithLogger(l logging.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithContentType changes the default content type of request bodies.
func WithContentType(ct string) Option {
	return func(p *Pipeline) { p.contentType = ct }
}

// WithRequestInterceptor appends a request stage. Stages run in the order
// they were added.
func WithRequestInterceptor(ic RequestInterceptor) Option {
	return func(p *Pipeline) { p.onRequest = append(p.onRequest, ic) }
}

// WithResponseInterceptor appends a response stage. Stages run in the order
// they were added.
func WithResponseInterceptor(ic ResponseInterceptor) Option {
	return func(p *Pipeline) { p.onResponse = append(p.onResponse, ic) }
}

func NewPipeline(baseURL string, opts ...Option) (*Pipeline, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}

	p := &Pipeline{
		baseURL:     u,
		doer:        http.DefaultClient,
		logger:      logging.NewNop(),
		contentType: ContentTypeJSON,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// BaseURL returns the address of the remote service.
func (p *Pipeline) BaseURL() string {
	return p.baseURL.String()
}

// Do sends r through the request stages, the transport and the response
// stages, in that order. The returned error is whatever the last response
// stage produced.
func (p *Pipeline) Do(ctx context.Context, r Request) (*Response, error) {
	httpReq, err := p.newHTTPRequest(ctx, r)
	if err != nil {
		return nil, err
	}

	for _, ic := range p.onRequest {
		ic(ctx, httpReq)
	}

	log := p.logger.With(
		"request_id", httpReq.Header.Get(common.RequestIDHeaderName),
		"method", httpReq.Method,
		"path", httpReq.URL.Path,
	)

	resp, err := p.roundTrip(httpReq)
	if err != nil {
		log.Debug(ctx, "request failed", "error", err.Error())
	} else {
		log.Debug(ctx, "response received", "status", resp.StatusCode)
	}

	for _, ic := range p.onResponse {
		resp, err = ic(ctx, resp, err)
	}
	return resp, err
}

// DoJSON is Do followed by decoding the body into out (skipped when out is nil).
func (p *Pipeline) DoJSON(ctx context.Context, r Request, out any) error {
	resp, err := p.Do(ctx, r)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return resp.Decode(out)
}

func (p *Pipeline) newHTTPRequest(ctx context.Context, r Request) (*http.Request, error) {
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	u := p.baseURL.JoinPath(r.Path)
	if len(r.Query) > 0 {
		u.RawQuery = r.Query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), r.Body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	if r.Body != nil {
		ct := r.ContentType
		if ct == "" {
			ct = p.contentType
		}
		req.Header.Set("Content-Type", ct)
	}

	switch r.ResponseType {
	case ResponseBinary:
		req.Header.Set("Accept", "application/octet-stream, */*")
	default:
		req.Header.Set("Accept", ContentTypeJSON)
	}

	req.Header.Set(common.RequestIDHeaderName, uuid.NewString())
	return req, nil
}

// roundTrip returns the raw transport error, or a *StatusError alongside the
// response for non-2xx statuses.
func (p *Pipeline) roundTrip(req *http.Request) (*Response, error) {
	httpResp, err := p.doer.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	resp := &Response{StatusCode: httpResp.StatusCode, Header: httpResp.Header, Body: body}
	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return resp, newStatusError(httpResp.StatusCode, body)
	}
	return resp, nil
}
