package transport

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unigit/unigit/app"
	"github.com/unigit/unigit/mock"
)

func TestTransportStatusClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name             string
		status           int
		headers          []http.Header
		confirmRateLimit bool
		wantErr          error
		wantPassthrough  bool
	}{
		{
			name:            "200 passes through",
			status:          http.StatusOK,
			wantPassthrough: true,
		},
		{
			name:    "401 is unauthorized",
			status:  http.StatusUnauthorized,
			wantErr: app.ErrUnauthorized,
		},
		{
			name:    "404 is not found",
			status:  http.StatusNotFound,
			wantErr: app.ErrNotFound,
		},
		{
			name:    "403 is rate limit",
			status:  http.StatusForbidden,
			wantErr: app.ErrRateLimit,
		},
		{
			name:    "429 is rate limit",
			status:  http.StatusTooManyRequests,
			wantErr: app.ErrRateLimit,
		},
		{
			name:             "403 with quota remaining passes through",
			status:           http.StatusForbidden,
			headers:          []http.Header{{"X-Ratelimit-Remaining": []string{"42"}}},
			confirmRateLimit: true,
			wantPassthrough:  true,
		},
		{
			name:             "403 with quota exhausted is rate limit",
			status:           http.StatusForbidden,
			headers:          []http.Header{{"X-Ratelimit-Remaining": []string{"0"}}},
			confirmRateLimit: true,
			wantErr:          app.ErrRateLimit,
		},
		{
			name:            "500 passes through",
			status:          http.StatusInternalServerError,
			wantPassthrough: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doer := &mock.HTTPDoer{
				Statuses: []int{tt.status},
				Bodies:   [][]byte{[]byte(`{}`)},
				Headers:  tt.headers,
			}
			tr := New(doer, nil, tt.confirmRateLimit)

			req, err := http.NewRequest(http.MethodGet, "https://fake/endpoint", nil)
			require.NoError(t, err)

			resp, err := tr.Do(req)
			if tt.wantPassthrough {
				require.NoError(t, err)
				assert.Equal(t, tt.status, resp.StatusCode)
				resp.Body.Close()
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, resp)
		})
	}
}

func TestTransportDefaultHeaders(t *testing.T) {
	t.Parallel()

	doer := &mock.HTTPDoer{Statuses: []int{http.StatusOK}, Bodies: [][]byte{[]byte(`{}`)}}
	tr := New(doer, map[string]string{
		"Accept":     "application/json",
		"User-Agent": "unigit",
	}, false)

	_, err := tr.Get(context.Background(), "https://fake/user", nil, http.Header{
		"Accept": []string{"text/html"},
	})
	require.NoError(t, err)

	require.Len(t, doer.Responses, 1)
	req := doer.Responses[0].Request
	assert.Equal(t, "text/html", req.Header.Get("Accept"))
	assert.Equal(t, "unigit", req.Header.Get("User-Agent"))
}

func TestTransportGetMergesQuery(t *testing.T) {
	t.Parallel()

	doer := &mock.HTTPDoer{Statuses: []int{http.StatusOK}, Bodies: [][]byte{[]byte(`[]`)}}
	tr := New(doer, nil, false)

	q := map[string][]string{"per_page": {"30"}, "page": {"2"}}
	body, err := tr.Get(context.Background(), "https://fake/repos?sort=pushed", q, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), body)

	req := doer.Responses[0].Request
	assert.Equal(t, "pushed", req.URL.Query().Get("sort"))
	assert.Equal(t, "30", req.URL.Query().Get("per_page"))
	assert.Equal(t, "2", req.URL.Query().Get("page"))
}

func TestNewHTTPClient(t *testing.T) {
	t.Parallel()

	client, err := NewHTTPClient("", 10*time.Second)
	require.NoError(t, err)
	assert.Nil(t, client.Transport)

	client, err = NewHTTPClient("socks5://127.0.0.1:1080", 10*time.Second)
	require.NoError(t, err)
	assert.NotNil(t, client.Transport)

	_, err = NewHTTPClient("://bad-proxy", 10*time.Second)
	require.Error(t, err)
	var upe *app.URLParseError
	assert.ErrorAs(t, err, &upe)
}
