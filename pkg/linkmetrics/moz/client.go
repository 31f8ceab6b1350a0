// Package moz provides a linkmetrics.Client implementation backed by the
// Moz Links API (legacy signed-request flavor).
package moz

import (
	"context"
	"crypto/hmac"
	"crypto/sha1" //nolint: gosec // the provider mandates HMAC-SHA1 signatures
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"domaincheck/pkg/linkmetrics"
	"domaincheck/pkg/metrics"
	"domaincheck/pkg/serrors"
)

// Client talks to the Moz REST API and fulfills the linkmetrics.Client
// interface. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	// now is swappable for tests; request expiry is derived from it.
	now func() time.Time
}

// New constructs a Client using the provided http.Client.
func New(httpClient *http.Client) *Client {
	return &Client{httpClient: httpClient, now: time.Now}
}

// signatureTTL is how far in the future signed requests expire.
const signatureTTL = 10 * time.Minute

// Signature computes the provider's request signature: HMAC-SHA1 over
// "accessID\nexpires", base64-encoded.
func Signature(accessID, expires, secretKey string) string {
	mac := hmac.New(sha1.New, []byte(secretKey))
	mac.Write([]byte(accessID + "\n" + expires))

	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// signedValues assembles the authentication query parameters for one call.
func (c *Client) signedValues(p linkmetrics.Params) url.Values {
	expires := strconv.FormatInt(c.now().Add(signatureTTL).Unix(), 10)

	return url.Values{
		"AccessID":  {p.AccessID},
		"Expires":   {expires},
		"Signature": {Signature(p.AccessID, expires, p.SecretKey)},
	}
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.MetricsRequestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.MetricsRequests.WithLabelValues("transport_error").Inc()

		return nil, fmt.Errorf("could not send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.MetricsRequests.WithLabelValues("transport_error").Inc()

		return nil, fmt.Errorf("could not read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		metrics.MetricsRequests.WithLabelValues("non_200").Inc()

		return nil, serrors.With(serrors.ErrUnavailable,
			"metrics API answered with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	metrics.MetricsRequests.WithLabelValues("ok").Inc()

	return body, nil
}

// URLMetrics fetches the bitmask-selected attribute columns for queryURL.
// The decoded response is returned as-is; unrecognized keys are the
// caller's concern (they are ignored by the code table).
func (c *Client) URLMetrics(ctx context.Context,
	p linkmetrics.Params,
	queryURL string,
	cols uint64) (map[string]any, error) {
	values := c.signedValues(p)
	values.Set("Cols", strconv.FormatUint(cols, 10))

	body, err := c.get(ctx, p.BaseURL+"url-metrics/"+url.PathEscape(queryURL)+"?"+values.Encode())
	if err != nil {
		return nil, err
	}

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("could not decode metrics response: %w", err)
	}

	return result, nil
}

// LastUpdate polls the provider's metadata endpoint for the timestamp of
// its most recent index refresh.
func (c *Client) LastUpdate(ctx context.Context, p linkmetrics.Params) (time.Time, error) {
	values := c.signedValues(p)

	body, err := c.get(ctx, p.BaseURL+"metadata/last_update.json?"+values.Encode())
	if err != nil {
		return time.Time{}, err
	}

	var resp struct {
		LastUpdate int64 `json:"last_update"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return time.Time{}, fmt.Errorf("could not decode last-update response: %w", err)
	}

	return time.Unix(resp.LastUpdate, 0).UTC(), nil
}

var _ linkmetrics.Client = (*Client)(nil)
