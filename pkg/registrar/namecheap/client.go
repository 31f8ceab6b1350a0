// Package namecheap provides a registrar.Client implementation backed by
// the Namecheap XML API.
package namecheap

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"domaincheck/pkg/logger"
	"domaincheck/pkg/metrics"
	"domaincheck/pkg/registrar"
	"domaincheck/pkg/serrors"

	"go.uber.org/zap"
)

// Options tune the transport-level retry behavior.
type Options struct {
	// Retries is how many times a failed connection attempt is repeated
	// before the error is propagated.
	Retries int
	// RetryDelay is the fixed pause between connection attempts.
	RetryDelay time.Duration
}

// Client talks to the Namecheap XML API and fulfills the registrar.Client
// interface. It is safe for concurrent use, though callers are expected to
// serialize requests through the registrar lease anyway.
type Client struct {
	httpClient *http.Client
	options    Options
}

// New constructs a Client using the provided http.Client. Zero option
// values fall back to 3 attempts with a 5 second pause, matching the
// provider's guidance for transient connection failures.
func New(httpClient *http.Client, options Options) *Client {
	if options.Retries <= 0 {
		options.Retries = 3
	}
	if options.RetryDelay <= 0 {
		options.RetryDelay = 5 * time.Second
	}

	return &Client{httpClient: httpClient, options: options}
}

// apiResponse mirrors the provider's XML envelope. The response is
// namespaced (http://api.namecheap.com/xml.response); encoding/xml matches
// local names, which is sufficient here.
type apiResponse struct {
	XMLName xml.Name   `xml:"ApiResponse"`
	Status  string     `xml:"Status,attr"`
	Errors  []apiError `xml:"Errors>Error"`

	CommandResponse struct {
		DomainCheckResults []domainCheckResult `xml:"DomainCheckResult"`
		Tlds               []tldEntry          `xml:"Tlds>Tld"`
	} `xml:"CommandResponse"`
}

type apiError struct {
	Number      string `xml:"Number,attr"`
	Description string `xml:",chardata"`
}

type domainCheckResult struct {
	Domain      string `xml:"Domain,attr"`
	Available   string `xml:"Available,attr"`
	ErrorNo     string `xml:"ErrorNo,attr"`
	Description string `xml:"Description,attr"`
}

type tldEntry struct {
	Name              string `xml:"Name,attr"`
	IsAPIRegisterable string `xml:"IsApiRegisterable,attr"`
	Type              string `xml:"Type,attr"`
	Description       string `xml:",chardata"`
}

// get issues one GET with the assembled query values, retrying transport
// failures per the client options.
func (c *Client) get(ctx context.Context, baseURL string, values url.Values) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < c.options.Retries; attempt++ {
		if attempt > 0 {
			logger.Warn(ctx, "registrar connection failed, retrying",
				zap.Int("attempt", attempt), zap.Error(lastErr))

			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("aborted while waiting to retry: %w", ctx.Err())
			case <-time.After(c.options.RetryDelay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"?"+values.Encode(), nil)
		if err != nil {
			return nil, fmt.Errorf("could not create request: %w", err)
		}

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		metrics.RegistrarRequestDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.RegistrarRequests.WithLabelValues("transport_error").Inc()
			lastErr = err

			continue
		}

		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			metrics.RegistrarRequests.WithLabelValues("transport_error").Inc()
			lastErr = err

			continue
		}

		if resp.StatusCode != http.StatusOK {
			metrics.RegistrarRequests.WithLabelValues("non_200").Inc()

			return nil, serrors.With(serrors.ErrUnavailable,
				"registrar answered with status %d", resp.StatusCode)
		}

		metrics.RegistrarRequests.WithLabelValues("ok").Inc()

		return body, nil
	}

	return nil, fmt.Errorf("registrar unreachable after %d attempts: %w", c.options.Retries, lastErr)
}

func baseValues(p registrar.Params) url.Values {
	return url.Values{
		"ApiUser":  {p.APIUser},
		"ApiKey":   {p.APIKey},
		"UserName": {p.Username},
		"ClientIp": {p.ClientIP},
	}
}

// CheckAvailability submits one comma-joined batch of domains and parses
// the heterogeneous response: per-domain results, batch-level errors, or
// both.
func (c *Client) CheckAvailability(ctx context.Context,
	p registrar.Params,
	domains []string) (*registrar.CheckResult, error) {
	values := baseValues(p)
	values.Set("Command", "namecheap.domains.check")
	values.Set("DomainList", strings.Join(domains, ","))

	body, err := c.get(ctx, p.BaseURL, values)
	if err != nil {
		return nil, err
	}

	var resp apiResponse
	if err := xml.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("could not parse registrar response: %w", err)
	}

	result := &registrar.CheckResult{}
	for _, dr := range resp.CommandResponse.DomainCheckResults {
		errorNo, _ := strconv.Atoi(dr.ErrorNo)
		result.Domains = append(result.Domains, registrar.DomainResult{
			Domain:      dr.Domain,
			Available:   dr.Available == "true",
			ErrorNo:     errorNo,
			Description: dr.Description,
		})
	}
	for _, er := range resp.Errors {
		number, _ := strconv.Atoi(er.Number)
		result.Errors = append(result.Errors, registrar.APIError{
			Number:      number,
			Description: strings.TrimSpace(er.Description),
		})
	}

	return result, nil
}

// TLDList fetches the provider's TLD list along with the raw body.
func (c *Client) TLDList(ctx context.Context, p registrar.Params) ([]registrar.TLDInfo, string, error) {
	values := baseValues(p)
	values.Set("Command", "namecheap.domains.gettldlist")

	body, err := c.get(ctx, p.BaseURL, values)
	if err != nil {
		return nil, "", err
	}

	var resp apiResponse
	if err := xml.Unmarshal(body, &resp); err != nil {
		return nil, string(body), fmt.Errorf("could not parse TLD list response: %w", err)
	}

	tlds := make([]registrar.TLDInfo, 0, len(resp.CommandResponse.Tlds))
	for _, tld := range resp.CommandResponse.Tlds {
		tlds = append(tlds, registrar.TLDInfo{
			Name:              tld.Name,
			IsAPIRegisterable: tld.IsAPIRegisterable == "true",
			Type:              tld.Type,
			Description:       strings.TrimSpace(tld.Description),
		})
	}

	return tlds, string(body), nil
}

var _ registrar.Client = (*Client)(nil)
