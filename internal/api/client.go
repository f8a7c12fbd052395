package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/hubofallthings/hat-cli/internal/debug"
	"github.com/hubofallthings/hat-cli/internal/validation"
)

const (
	DefaultTimeout            = 30 * time.Second
	DefaultPostConnectTimeout = 35 * time.Second
	DefaultPostReadTimeout    = 35 * time.Second
	DefaultAPIVersion         = "v2.6"
	DefaultScheme             = "https"
)

// Verb is the kind of exchange. VerbUpload is a multipart POST.
type Verb string

const (
	VerbGet    Verb = http.MethodGet
	VerbPost   Verb = http.MethodPost
	VerbPut    Verb = http.MethodPut
	VerbDelete Verb = http.MethodDelete
	VerbUpload Verb = "UPLOAD"
)

func (v Verb) method() string {
	if v == VerbUpload {
		return http.MethodPost
	}
	return string(v)
}

// BodyShape selects how an accepted response body is read.
type BodyShape int

const (
	ExpectJSON BodyShape = iota
	ExpectString
)

// Param is one query parameter. A nil Value is skipped; slice values repeat
// the key once per element.
type Param struct {
	Key   string
	Value any
}

// Params keeps query parameters in the order they were given.
type Params []Param

// Request describes one exchange. Headers apply to this exchange only.
type Request struct {
	Verb        Verb
	URL         string
	Query       Params
	Body        []byte
	ContentType string
	// UploadName is the multipart file name for VerbUpload.
	UploadName string
	Headers    map[string]string
	Expect     BodyShape
}

// Timeouts bounds connection setup and waiting for the response.
type Timeouts struct {
	Connect time.Duration
	Read    time.Duration
}

// DeliveryMode controls what happens with successful responses that have no
// obvious callback.
type DeliveryMode int

const (
	// DeliverAll routes a 401 with an accepted status to onFailure and runs the
	// decoder on empty bodies, so every call ends in exactly one callback.
	DeliverAll DeliveryMode = iota
	// DeliverCompat matches older HAT clients: an accepted 401 or an accepted
	// response without a body invokes no callback at all.
	DeliverCompat
)

// Client issues exchanges against HAT domains and owns delivery settings for
// the services built on it.
//
// A Client holds no per-request state; headers, tokens and domains are passed
// on every call, so one Client can serve concurrent calls for different users.
type Client struct {
	HTTP         *http.Client
	PostTimeouts Timeouts
	Scheme       string
	APIVersion   string
	UserAgent    string
	// SuccessStatus decides which statuses produce a Success. Nil means 2xx.
	SuccessStatus func(status int) bool
	Delivery      DeliveryMode
	// Dispatcher runs callbacks. Nil means Inline.
	Dispatcher Dispatcher

	skipDomainValidation bool
	postOnce             sync.Once
	postHTTP             *http.Client
}

// Compile-time interface implementation check
var _ Exchanger = (*Client)(nil)

var validateDomain = validation.ValidateDomain

// New creates a HAT API client.
func New() *Client {
	baseTransport, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		baseTransport = &http.Transport{}
	}
	transport := baseTransport.Clone()
	if transport.TLSClientConfig == nil {
		transport.TLSClientConfig = &tls.Config{}
	} else {
		transport.TLSClientConfig = transport.TLSClientConfig.Clone()
	}
	transport.TLSClientConfig.MinVersion = tls.VersionTLS12
	transport.TLSClientConfig.InsecureSkipVerify = false

	// Allow plain-http local HATs when HAT_TESTING=1 is set (integration tests)
	testMode := os.Getenv("HAT_TESTING") == "1"
	scheme := DefaultScheme
	if testMode {
		scheme = "http"
	}

	return &Client{
		HTTP: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: transport,
		},
		PostTimeouts: Timeouts{
			Connect: DefaultPostConnectTimeout,
			Read:    DefaultPostReadTimeout,
		},
		Scheme:               scheme,
		APIVersion:           DefaultAPIVersion,
		skipDomainValidation: testMode,
	}
}

// newTestClient creates a client for an httptest server: plain http, no
// domain validation. It returns the domain (host:port) to call with.
func newTestClient(serverURL string) (*Client, string) {
	c := New()
	c.Scheme = "http"
	c.skipDomainValidation = true
	return c, strings.TrimPrefix(serverURL, "http://")
}

// apiURL builds <scheme>://<domain>/api/<version>/<resource><suffix>.
func (c *Client) apiURL(domain, resource, suffix string) (string, error) {
	resource = strings.TrimPrefix(resource, "/")
	return c.rootURL(domain, "/api/"+c.apiVersion()+"/"+resource+suffix)
}

// rootURL builds <scheme>://<domain><path> for endpoints outside /api.
func (c *Client) rootURL(domain, path string) (string, error) {
	domain = strings.TrimSpace(domain)
	if !c.skipDomainValidation {
		if err := validateDomain(domain); err != nil {
			return "", fmt.Errorf("invalid HAT domain: %w", err)
		}
	} else if domain == "" {
		return "", errors.New("HAT domain cannot be empty")
	}
	if path != "" && path[0] != '/' {
		path = "/" + path
	}
	scheme := c.Scheme
	if scheme == "" {
		scheme = DefaultScheme
	}
	return fmt.Sprintf("%s://%s%s", scheme, domain, path), nil
}

func (c *Client) apiVersion() string {
	if c.APIVersion == "" {
		return DefaultAPIVersion
	}
	return c.APIVersion
}

func (c *Client) accepts(status int) bool {
	if c.SuccessStatus != nil {
		return c.SuccessStatus(status)
	}
	return status >= 200 && status < 300
}

// httpFor returns the http.Client for a verb; POST gets its own connect and
// read timeouts.
func (c *Client) httpFor(verb Verb) *http.Client {
	base := c.HTTP
	if base == nil {
		base = http.DefaultClient
	}
	if verb != VerbPost {
		return base
	}
	c.postOnce.Do(func() {
		c.postHTTP = withTimeouts(base, c.PostTimeouts)
	})
	return c.postHTTP
}

func (t Timeouts) withDefaults() Timeouts {
	if t.Connect <= 0 {
		t.Connect = DefaultPostConnectTimeout
	}
	if t.Read <= 0 {
		t.Read = DefaultPostReadTimeout
	}
	return t
}

func withTimeouts(base *http.Client, t Timeouts) *http.Client {
	t = t.withDefaults()
	client := &http.Client{
		Transport:     base.Transport,
		CheckRedirect: base.CheckRedirect,
		Jar:           base.Jar,
		Timeout:       t.Connect + t.Read,
	}
	rt := base.Transport
	if rt == nil {
		rt = http.DefaultTransport
	}
	if tr, ok := rt.(*http.Transport); ok {
		tr = tr.Clone()
		dialer := &net.Dialer{Timeout: t.Connect, KeepAlive: 30 * time.Second}
		tr.DialContext = dialer.DialContext
		tr.TLSHandshakeTimeout = t.Connect
		tr.ResponseHeaderTimeout = t.Read
		client.Transport = tr
	}
	return client
}

// Exchange performs one exchange in its own goroutine. Exactly one Result is
// sent on the returned channel, which is then closed.
func (c *Client) Exchange(ctx context.Context, req Request) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		out <- c.exchange(ctx, req)
	}()
	return out
}

func (c *Client) exchange(ctx context.Context, req Request) Result {
	method := req.Verb.method()
	if strings.TrimSpace(req.URL) == "" {
		return Failure{Cause: &TransportError{Method: method, Err: errors.New("URL cannot be empty")}}
	}

	reqCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	httpReq, err := c.newHTTPRequest(reqCtx, req)
	if err != nil {
		return Failure{Cause: &TransportError{Method: method, URL: req.URL, Err: err}}
	}
	reqURL := httpReq.URL.String()

	start := time.Now()
	resp, err := c.httpFor(req.Verb).Do(httpReq)
	if err != nil {
		if debug.IsEnabled(ctx) {
			slog.Debug("exchange failed", "method", method, "url", reqURL, "error", err)
		}
		return Failure{Cause: &TransportError{Method: method, URL: reqURL, Err: err}}
	}
	var raw []byte
	if req.Verb == VerbPost {
		raw, err = readBodyWithin(resp.Body, c.PostTimeouts.withDefaults().Read, cancel)
	} else {
		raw, err = io.ReadAll(resp.Body)
	}
	_ = resp.Body.Close()
	if err != nil {
		return Failure{
			StatusCode: resp.StatusCode,
			Cause:      &TransportError{Method: method, URL: reqURL, Err: fmt.Errorf("failed to read response: %w", err)},
		}
	}
	if debug.IsEnabled(ctx) {
		slog.Debug("exchange complete", "method", method, "url", reqURL, "status", resp.StatusCode, "duration", time.Since(start))
	}

	if !c.accepts(resp.StatusCode) {
		return Failure{
			StatusCode: resp.StatusCode,
			Body:       string(raw),
			Cause: &HTTPError{
				StatusCode: resp.StatusCode,
				Body:       string(raw),
				RequestID:  requestIDFromHeader(resp.Header),
			},
		}
	}

	token := tokenFromHeader(resp.Header)
	if req.Expect == ExpectString {
		return Success{StatusCode: resp.StatusCode, Body: StringBody(raw), Token: token}
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Success{StatusCode: resp.StatusCode, Token: token}
	}
	var check json.RawMessage
	if err := json.Unmarshal(trimmed, &check); err != nil {
		return Failure{
			StatusCode: resp.StatusCode,
			Body:       string(raw),
			Cause:      &DecodeError{StatusCode: resp.StatusCode, Err: err},
		}
	}
	return Success{StatusCode: resp.StatusCode, Body: JSONBody(trimmed), Token: token}
}

// readBodyWithin reads body, canceling the request if it takes longer than
// limit. The transport's header timeout does not cover the body.
func readBodyWithin(body io.Reader, limit time.Duration, cancel context.CancelFunc) ([]byte, error) {
	var expired atomic.Bool
	timer := time.AfterFunc(limit, func() {
		expired.Store(true)
		cancel()
	})
	raw, err := io.ReadAll(body)
	timer.Stop()
	if err != nil && expired.Load() {
		return nil, fmt.Errorf("no response body within %s: %w", limit, context.DeadlineExceeded)
	}
	return raw, err
}

func (c *Client) newHTTPRequest(ctx context.Context, req Request) (*http.Request, error) {
	target := req.URL
	if req.Verb == VerbGet || req.Verb == VerbDelete {
		target = appendQuery(target, req.Query)
	}

	body := req.Body
	contentType := req.ContentType
	if req.Verb == VerbUpload {
		var err error
		body, contentType, err = multipartBody(req.UploadName, req.Body)
		if err != nil {
			return nil, err
		}
	}

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Verb.method(), target, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if req.Expect == ExpectJSON {
		httpReq.Header.Set("Accept", "application/json")
	}
	if c.UserAgent != "" {
		httpReq.Header.Set("User-Agent", c.UserAgent)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("X-Request-Id", uuid.NewString())
	for name, value := range req.Headers {
		httpReq.Header.Set(name, value)
	}
	return httpReq, nil
}

// appendQuery adds params to rawURL in order, keeping any existing query.
func appendQuery(rawURL string, params Params) string {
	var parts []string
	for _, p := range params {
		if p.Key == "" {
			continue
		}
		for _, v := range paramValues(p.Value) {
			parts = append(parts, url.QueryEscape(p.Key)+"="+url.QueryEscape(v))
		}
	}
	if len(parts) == 0 {
		return rawURL
	}
	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
	}
	return rawURL + sep + strings.Join(parts, "&")
}

func paramValues(v any) []string {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		return []string{val}
	case *string:
		if val == nil {
			return nil
		}
		return []string{*val}
	case []string:
		return val
	case []int:
		out := make([]string, len(val))
		for i, n := range val {
			out[i] = fmt.Sprint(n)
		}
		return out
	case []any:
		var out []string
		for _, item := range val {
			out = append(out, paramValues(item)...)
		}
		return out
	case fmt.Stringer:
		return []string{val.String()}
	default:
		return []string{fmt.Sprint(val)}
	}
}

func multipartBody(name string, content []byte) ([]byte, string, error) {
	if name == "" {
		name = "file"
	}
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file %s: %w", name, err)
	}
	if _, err := part.Write(content); err != nil {
		return nil, "", fmt.Errorf("failed to write file content %s: %w", name, err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}
	return body.Bytes(), writer.FormDataContentType(), nil
}

func requestIDFromHeader(header http.Header) string {
	if header == nil {
		return ""
	}
	return header.Get("X-Request-Id")
}

// authHeaders is the header set every authenticated HAT call sends.
func authHeaders(token string) map[string]string {
	return map[string]string{"x-auth-token": token}
}
