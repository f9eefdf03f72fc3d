// Package bciapi pulls daily ship-count observations from the BCI openapi
// metrics endpoint using its MD5-signed request scheme.
package bciapi

import (
	"context"
	"crypto/md5"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jiayuqiu/sisi-mcp/internal/contract"
	"github.com/jiayuqiu/sisi-mcp/schema"
)

// Client fetches metric rows from the BCI openapi.
type Client struct {
	baseURL    string
	appID      string
	appKey     string
	client     string
	httpClient *http.Client

	// now and nonce are swappable for deterministic signature tests.
	now   func() time.Time
	nonce func() string
}

// New returns a Client from validated config.
func New(cfg *contract.Config) *Client {
	return &Client{
		baseURL:    cfg.BCIBaseURL,
		appID:      cfg.BCIAppID,
		appKey:     cfg.BCIAppKey,
		client:     cfg.BCIClient,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		now:        time.Now,
		nonce:      randomNonce,
	}
}

// randomNonce returns a 16-byte hex nonce.
func randomNonce() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

// Sign computes the request signature: the lowercase MD5 hex digest of the
// ASCII-sorted "k1=v1&k2=v2...&key=<secret>" parameter string.
func Sign(params map[string]string, appKey string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(k)
		sb.WriteString("=")
		sb.WriteString(params[k])
		sb.WriteString("&")
	}
	sb.WriteString("key=")
	sb.WriteString(appKey)

	digest := md5.Sum([]byte(sb.String()))
	return hex.EncodeToString(digest[:])
}

// metricRow is the wire format of one observation.
type metricRow struct {
	PipeName string  `json:"pipe_name"`
	DateID   int     `json:"date_id"`
	ShipCnt  float64 `json:"ship_cnt"`
}

// metricsResponse is the wire format of the metrics endpoint.
type metricsResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    []metricRow `json:"data"`
}

// FetchWindow pulls the channel's observations for [start, end] inclusive.
func (c *Client) FetchWindow(ctx context.Context, start, end time.Time) ([]schema.SeriesRow, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("%w: BCI base URL is not configured", schema.ErrUpstreamService)
	}

	startDay := strconv.Itoa(schema.TimeToDateID(start))
	endDay := strconv.Itoa(schema.TimeToDateID(end))
	timestamp := strconv.FormatInt(c.now().UnixMilli(), 10)
	nonce := c.nonce()

	signed := map[string]string{
		"appId":     c.appID,
		"client":    c.client,
		"endDay":    endDay,
		"nonce":     nonce,
		"startDay":  startDay,
		"timestamp": timestamp,
	}
	sign := Sign(signed, c.appKey)

	query := url.Values{}
	query.Set("client", c.client)
	query.Set("startDay", startDay)
	query.Set("endDay", endDay)

	endpoint := strings.TrimSuffix(c.baseURL, "/") + "/openapi/metrics?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build BCI request: %w", err)
	}
	req.Header.Set("appId", c.appID)
	req.Header.Set("timestamp", timestamp)
	req.Header.Set("nonce", nonce)
	req.Header.Set("sign", sign)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", schema.ErrUpstreamService, err)
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", schema.ErrUpstreamService, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d from BCI openapi", schema.ErrUpstreamService, resp.StatusCode)
	}

	var parsed metricsResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", schema.ErrMalformedUpstreamResponse, err)
	}
	if parsed.Code != 0 {
		return nil, fmt.Errorf("%w: BCI code %d: %s", schema.ErrUpstreamService, parsed.Code, parsed.Message)
	}

	rows := make([]schema.SeriesRow, len(parsed.Data))
	for i, r := range parsed.Data {
		rows[i] = schema.SeriesRow{PipeName: r.PipeName, DateID: r.DateID, ShipCnt: r.ShipCnt}
	}
	return rows, nil
}
