// Package geocoding resolves store addresses through the Google Geocoding API.
package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/nishat1/Instock/internal/core/domain"
	"github.com/nishat1/Instock/internal/pkg/metrics"
)

// DefaultBaseURL is the Google Geocoding JSON endpoint.
const DefaultBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"

// ErrNoResults is returned when the provider finds nothing for an address.
// It wraps domain.ErrInvalidRequest: the address, not the provider, is at fault.
var ErrNoResults = fmt.Errorf("%w: geocoding: no results", domain.ErrInvalidRequest)

// Client implements ports.Geocoder.
type Client struct {
	http    *fasthttp.Client
	baseURL string
	apiKey  string
	timeout time.Duration
}

// New creates a geocoding client. An empty baseURL selects DefaultBaseURL.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		http:    &fasthttp.Client{Name: "instock-geocoder"},
		baseURL: baseURL,
		apiKey:  apiKey,
		timeout: timeout,
	}
}

type geocodeResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		PlaceID  string `json:"place_id"`
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Geocode returns the position of the first result for address.
func (c *Client) Geocode(ctx context.Context, address string) (*domain.GeocodeResult, error) {
	res, err := c.geocode(ctx, address)
	outcome := "ok"
	switch {
	case errors.Is(err, ErrNoResults):
		outcome = "no_results"
	case err != nil:
		outcome = "error"
	}
	metrics.GeocodeRequests.WithLabelValues(outcome).Inc()
	return res, err
}

func (c *Client) geocode(ctx context.Context, address string) (*domain.GeocodeResult, error) {
	q := url.Values{}
	q.Set("address", address)
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}

	timeout := c.timeout
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left < timeout {
			timeout = left
		}
	}
	if timeout <= 0 {
		return nil, context.DeadlineExceeded
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + "?" + q.Encode())
	req.Header.SetMethod(fasthttp.MethodGet)

	if err := c.http.DoTimeout(req, resp, timeout); err != nil {
		return nil, fmt.Errorf("geocoding request: %w", err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("geocoding: HTTP %d", resp.StatusCode())
	}

	var body geocodeResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("geocoding: decode: %w", err)
	}

	switch body.Status {
	case "OK":
	case "ZERO_RESULTS":
		return nil, ErrNoResults
	default:
		return nil, fmt.Errorf("geocoding: %s: %s", body.Status, body.ErrorMessage)
	}
	if len(body.Results) == 0 {
		return nil, ErrNoResults
	}

	first := body.Results[0]
	loc := first.Geometry.Location
	if !(domain.Coordinate{Lat: loc.Lat, Lng: loc.Lng}).Valid() {
		return nil, fmt.Errorf("geocoding: %w", domain.ErrInvalidCoordinates)
	}
	return &domain.GeocodeResult{Lat: loc.Lat, Lng: loc.Lng, PlaceID: first.PlaceID}, nil
}
