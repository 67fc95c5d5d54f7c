// Package transport wraps outbound HTTP with provider default headers and a
// classification step that turns transport status codes into domain errors
// before the payload reaches normalization.
package transport

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/unigit/unigit/app"
)

// Doer can execute http request.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

const maxResponseSize = 1024 * 1024 * 30

// Transport executes requests through a Doer, applying default headers and
// classifying response statuses: 401 becomes app.ErrUnauthorized, 404
// app.ErrNotFound, 403/429 app.ErrRateLimit. 200 and any other status pass
// through unchanged.
type Transport struct {
	doer    Doer
	headers map[string]string

	// confirmRateLimit additionally checks the X-RateLimit-Remaining header
	// before classifying 403/429 as a rate limit.
	confirmRateLimit bool
}

// New creates a Transport with the given default headers.
// confirmRateLimit enables the remaining-quota header check on 403/429.
func New(doer Doer, headers map[string]string, confirmRateLimit bool) *Transport {
	return &Transport{
		doer:             doer,
		headers:          headers,
		confirmRateLimit: confirmRateLimit,
	}
}

// Do executes the request. Default headers are applied unless the request
// already sets them. The response body is untouched on passthrough statuses;
// on classified statuses it is drained and closed.
func (t *Transport) Do(req *http.Request) (*http.Response, error) {
	for k, v := range t.headers {
		if req.Header.Get(k) == "" {
			req.Header.Set(k, v)
		}
	}

	resp, err := t.doer.Do(req)
	if err != nil {
		return nil, &app.RequestError{Op: req.Method + " " + req.URL.Host + req.URL.Path, Err: err}
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		discard(resp)
		return nil, app.ErrUnauthorized
	case http.StatusNotFound:
		discard(resp)
		return nil, app.ErrNotFound
	case http.StatusForbidden, http.StatusTooManyRequests:
		if t.confirmRateLimit && resp.Header.Get("X-RateLimit-Remaining") != "0" {
			return resp, nil
		}
		discard(resp)
		return nil, app.ErrRateLimit
	default:
		return resp, nil
	}
}

// Get executes a GET request against rawURL with the given query values and
// extra headers, and returns the response body.
func (t *Transport) Get(ctx context.Context, rawURL string, query url.Values, header http.Header) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &app.URLParseError{Raw: rawURL, Err: err}
	}
	if len(query) > 0 {
		q := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Set(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &app.URLParseError{Raw: u.String(), Err: err}
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}

	resp, err := t.Do(req)
	if err != nil {
		return nil, err
	}
	// Always drain before close to allow connection reuse.
	defer func() {
		_, _ = io.CopyN(io.Discard, resp.Body, 1024)
		resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &app.RequestError{Op: "GET " + u.Host + u.Path, Err: err}
	}

	return body, nil
}

// NewHTTPClient builds the pooled http client adapters share. proxyURL may
// be empty, or an http, https or socks5 URL; it applies to this client only.
func NewHTTPClient(proxyURL string, timeout time.Duration) (*http.Client, error) {
	client := &http.Client{Timeout: timeout}
	if proxyURL == "" {
		return client, nil
	}

	u, err := url.Parse(proxyURL)
	if err != nil {
		return nil, &app.URLParseError{Raw: proxyURL, Err: err}
	}
	client.Transport = &http.Transport{Proxy: http.ProxyURL(u)}

	return client, nil
}

func discard(resp *http.Response) {
	_, _ = io.CopyN(io.Discard, resp.Body, 1024)
	resp.Body.Close()
}
