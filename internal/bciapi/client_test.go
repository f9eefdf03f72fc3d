package bciapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiayuqiu/sisi-mcp/internal/contract"
	"github.com/jiayuqiu/sisi-mcp/schema"
)

// TestSign checks the signature over ASCII-sorted params with trailing key.
func TestSign(t *testing.T) {
	for name, tc := range map[string]struct {
		params map[string]string
		appKey string
		want   string
	}{
		"sorted pair": {
			params: map[string]string{"b": "2", "a": "1"},
			appKey: "secret",
			// md5("a=1&b=2&key=secret")
			want: "9f565ccd686cfa5dc3b06b3a89e4e3ad",
		},
		"empty params": {
			params: map[string]string{},
			appKey: "secret",
			// md5("key=secret")
			want: "80353f06772f9b5c80204f40d0d34fda",
		},
	} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, Sign(tc.params, tc.appKey))
		})
	}
}

// TestSignOrderIndependent confirms map insertion order does not change the digest.
func TestSignOrderIndependent(t *testing.T) {
	first := Sign(map[string]string{"appId": "x", "nonce": "n", "client": "c"}, "k")
	second := Sign(map[string]string{"client": "c", "appId": "x", "nonce": "n"}, "k")
	assert.Equal(t, first, second)
}

func newTestClient(baseURL string) *Client {
	cfg := &contract.Config{
		BCIBaseURL: baseURL,
		BCIAppID:   "app-1",
		BCIAppKey:  "key-1",
		BCIClient:  "sisi",
	}
	c := New(cfg)
	c.now = func() time.Time { return time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC) }
	c.nonce = func() string { return "fixed-nonce" }
	return c
}

// TestFetchWindowSignsRequest verifies headers, query params, and the signature
// actually sent over the wire.
func TestFetchWindowSignsRequest(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		_, _ = w.Write([]byte(`{"code":0,"data":[{"pipe_name":"曼德海峡","date_id":20250601,"ship_cnt":42}]}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	rows, err := client.FetchWindow(context.Background(),
		time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, schema.SeriesRow{PipeName: "曼德海峡", DateID: 20250601, ShipCnt: 42}, rows[0])

	require.NotNil(t, got)
	assert.Equal(t, "/openapi/metrics", got.URL.Path)
	assert.Equal(t, "sisi", got.URL.Query().Get("client"))
	assert.Equal(t, "20250601", got.URL.Query().Get("startDay"))
	assert.Equal(t, "20250630", got.URL.Query().Get("endDay"))
	assert.Equal(t, "app-1", got.Header.Get("appId"))
	assert.Equal(t, "fixed-nonce", got.Header.Get("nonce"))

	timestamp := got.Header.Get("timestamp")
	require.NotEmpty(t, timestamp)
	wantSign := Sign(map[string]string{
		"appId":     "app-1",
		"client":    "sisi",
		"endDay":    "20250630",
		"nonce":     "fixed-nonce",
		"startDay":  "20250601",
		"timestamp": timestamp,
	}, "key-1")
	assert.Equal(t, wantSign, got.Header.Get("sign"))
}

// TestFetchWindowErrors maps upstream failures onto the sentinel errors.
func TestFetchWindowErrors(t *testing.T) {
	for name, tc := range map[string]struct {
		status  int
		body    string
		wantErr error
	}{
		"http error":      {status: http.StatusBadGateway, body: `{}`, wantErr: schema.ErrUpstreamService},
		"service code":    {status: http.StatusOK, body: `{"code":401,"message":"bad sign"}`, wantErr: schema.ErrUpstreamService},
		"malformed json":  {status: http.StatusOK, body: `{"code":0,"data":`, wantErr: schema.ErrMalformedUpstreamResponse},
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			client := newTestClient(srv.URL)
			_, err := client.FetchWindow(context.Background(), time.Now(), time.Now())
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

// TestFetchWindowNoBaseURL rejects fetches when the endpoint is unconfigured.
func TestFetchWindowNoBaseURL(t *testing.T) {
	client := newTestClient("")
	_, err := client.FetchWindow(context.Background(), time.Now(), time.Now())
	assert.ErrorIs(t, err, schema.ErrUpstreamService)
}
