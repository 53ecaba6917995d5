package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"github.com/sw33tLie/upgradefeed/internal/utils"
	"github.com/sw33tLie/upgradefeed/pkg/upgrades"
	"github.com/sw33tLie/upgradefeed/pkg/whttp"
)

// Static reads a JSON document served as a static file. Every load appends
// a cache-busting t=<unix millis> parameter.
type Static struct {
	URL    string
	Client *retryablehttp.Client

	// now is replaced in tests.
	now func() time.Time
}

func (s *Static) Name() string { return "static" }

func (s *Static) Load(ctx context.Context) ([]upgrades.Upgrade, error) {
	u, err := url.Parse(s.URL)
	if err != nil {
		return nil, &DataLoadError{Source: s.Name(), Op: "parse url", Err: err}
	}
	now := time.Now
	if s.now != nil {
		now = s.now
	}
	q := u.Query()
	q.Set("t", strconv.FormatInt(now().UnixMilli(), 10))
	u.RawQuery = q.Encode()

	return fetch(ctx, s.Name(), s.Client, &whttp.WHTTPReq{Method: http.MethodGet, URL: u.String()})
}

// REST reads rows of a hosted table through its REST gateway, selecting
// the payload column ordered by timestamp descending.
type REST struct {
	BaseURL string
	Table   string
	APIKey  string
	Client  *retryablehttp.Client
}

func (r *REST) Name() string { return "rest" }

func (r *REST) Load(ctx context.Context) ([]upgrades.Upgrade, error) {
	table := r.Table
	if table == "" {
		table = "upgrades"
	}
	endpoint := fmt.Sprintf("%s/rest/v1/%s?select=payload&order=timestamp.desc",
		strings.TrimRight(r.BaseURL, "/"), url.PathEscape(table))

	req := &whttp.WHTTPReq{Method: http.MethodGet, URL: endpoint}
	if r.APIKey != "" {
		req.Headers = []whttp.WHTTPHeader{
			{Name: "apikey", Value: r.APIKey},
			{Name: "Authorization", Value: "Bearer " + r.APIKey},
		}
	}
	return fetch(ctx, r.Name(), r.Client, req)
}

func fetch(ctx context.Context, name string, client *retryablehttp.Client, req *whttp.WHTTPReq) ([]upgrades.Upgrade, error) {
	start := time.Now()
	res, err := whttp.SendHTTPRequest(ctx, req, client)
	if err != nil {
		return nil, &DataLoadError{Source: name, Op: "fetch", Err: err}
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &DataLoadError{
			Source:     name,
			Op:         "fetch",
			StatusCode: res.StatusCode,
			Err:        fmt.Errorf("unexpected status %d", res.StatusCode),
		}
	}

	items, err := Decode(res.Body)
	if err != nil {
		return nil, &DataLoadError{Source: name, Op: "decode", Err: err}
	}

	utils.Log.WithFields(logrus.Fields{
		"source":  name,
		"count":   len(items),
		"latency": time.Since(start),
	}).Info("Fetched upgrades")
	return items, nil
}

var _ Loader = (*Static)(nil)
var _ Loader = (*REST)(nil)
