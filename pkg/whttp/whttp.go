package whttp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"github.com/sw33tLie/upgradefeed/internal/utils"
)

const userAgent = "upgradefeed/1.0 (+https://github.com/sw33tLie/upgradefeed)"

type WHTTPHeader struct {
	Name  string
	Value string
}

type WHTTPReq struct {
	URL     string
	Method  string
	Headers []WHTTPHeader
}

type WHTTPRes struct {
	StatusCode int
	Body       []byte
}

// ClientOptions configures the shared HTTP client.
type ClientOptions struct {
	Timeout  time.Duration
	RetryMax int
	Proxy    string
}

// NewClient builds a retryablehttp client. RetryMax defaults to 0, so a
// failed request is attempted once. The last response is always handed back
// to the caller, never swallowed by the retry loop.
func NewClient(opts ClientOptions) (*retryablehttp.Client, error) {
	client := retryablehttp.NewClient()
	client.RetryMax = opts.RetryMax
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 5 * time.Second
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	client.Logger = leveledLogger{utils.Log}

	if opts.Timeout > 0 {
		client.HTTPClient.Timeout = opts.Timeout
	}

	if opts.Proxy != "" {
		proxyURL, err := url.Parse(opts.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy %q: %w", opts.Proxy, err)
		}
		if transport, ok := client.HTTPClient.Transport.(*http.Transport); ok {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}
	return client, nil
}

func SendHTTPRequest(ctx context.Context, wReq *WHTTPReq, client *retryablehttp.Client) (*WHTTPRes, error) {
	if client == nil {
		var err error
		if client, err = NewClient(ClientOptions{}); err != nil {
			return nil, err
		}
	}

	method := wReq.Method
	if method == "" {
		method = http.MethodGet
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, wReq.URL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	for _, h := range wReq.Headers {
		req.Header.Set(h.Name, h.Value)
	}

	// With PassthroughErrorHandler a retryable status comes back as both a
	// response and an error; the status is judged by the caller.
	resp, err := client.Do(req)
	if resp == nil {
		if err == nil {
			err = fmt.Errorf("no response from %s", wReq.URL)
		}
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return &WHTTPRes{StatusCode: resp.StatusCode, Body: body}, nil
}

// leveledLogger routes retryablehttp's logging through logrus.
type leveledLogger struct {
	log *logrus.Logger
}

func (l leveledLogger) fields(keysAndValues []interface{}) logrus.Fields {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return fields
}

func (l leveledLogger) Error(msg string, kv ...interface{}) {
	l.log.WithFields(l.fields(kv)).Error(msg)
}

func (l leveledLogger) Warn(msg string, kv ...interface{}) {
	l.log.WithFields(l.fields(kv)).Warn(msg)
}

func (l leveledLogger) Info(msg string, kv ...interface{}) {
	l.log.WithFields(l.fields(kv)).Debug(msg)
}

func (l leveledLogger) Debug(msg string, kv ...interface{}) {
	l.log.WithFields(l.fields(kv)).Debug(msg)
}
