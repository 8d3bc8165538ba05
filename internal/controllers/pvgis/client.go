// Package pvgis integrates with the PVGIS solar radiation API operated by
// the EU Joint Research Centre. It provides typed access to the hourly
// seriescalc data used by the day-average analysis, plus a passthrough for
// the remaining calculation endpoints.
package pvgis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

const (
	// BaseURLV52 and BaseURLV53 are the two API generations PVGIS serves.
	BaseURLV52 = "https://re.jrc.ec.europa.eu/api/v5_2"
	BaseURLV53 = "https://re.jrc.ec.europa.eu/api/v5_3"

	defaultTimeout = 30 * time.Second
)

// passthroughEndpoints are the PVGIS calculation tools exposed verbatim.
var passthroughEndpoints = map[string]bool{
	"PVcalc":       true,
	"SHScalc":      true,
	"MRcalc":       true,
	"DRcalc":       true,
	"seriescalc":   true,
	"tmy":          true,
	"printhorizon": true,
}

// IsKnownEndpoint reports whether name is a PVGIS endpoint this client will
// forward requests to.
func IsKnownEndpoint(name string) bool {
	return passthroughEndpoints[name]
}

// Client is an HTTP client for the PVGIS API. A circuit breaker guards the
// upstream: after repeated failures the breaker opens and calls fail fast
// with ErrKindUnavailable until the upstream recovers.
type Client struct {
	httpClient *http.Client
	baseV52    string
	baseV53    string
	breaker    *gobreaker.CircuitBreaker[[]byte]
	logger     *zap.SugaredLogger
}

// NewClient creates a PVGIS client. Empty base URLs fall back to the public
// API endpoints.
func NewClient(baseV52, baseV53 string, timeout time.Duration, logger *zap.SugaredLogger) *Client {
	if baseV52 == "" {
		baseV52 = BaseURLV52
	}
	if baseV53 == "" {
		baseV53 = BaseURLV53
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseV52:    baseV52,
		baseV53:    baseV53,
		logger:     logger,
	}
	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "pvgis",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warnf("pvgis circuit breaker %s: %v -> %v", name, from, to)
		},
	})
	return c
}

// Raw performs a GET against the named PVGIS endpoint and returns the
// response body. Parameters with empty values are omitted. All failures are
// reported as *UpstreamError.
func (c *Client) Raw(ctx context.Context, endpoint string, params url.Values, useV53 bool) ([]byte, error) {
	base := c.baseV52
	if useV53 {
		base = c.baseV53
	}

	clean := url.Values{}
	for k, vs := range params {
		for _, v := range vs {
			if v != "" {
				clean.Add(k, v)
			}
		}
	}

	reqURL := fmt.Sprintf("%s/%s?%s", base, endpoint, clean.Encode())
	c.logger.Infow("requesting pvgis endpoint", "endpoint", endpoint, "params", clean.Encode())

	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.doRequest(ctx, endpoint, reqURL)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &UpstreamError{Kind: ErrKindUnavailable, Endpoint: endpoint, Cause: err}
		}
		var ue *UpstreamError
		if errors.As(err, &ue) {
			return nil, ue
		}
		return nil, &UpstreamError{Kind: ErrKindTransport, Endpoint: endpoint, Cause: err}
	}

	// PVGIS signals some failures inside a 200 response.
	var probe struct {
		Message string `json:"message"`
	}
	if jerr := json.Unmarshal(body, &probe); jerr == nil && probe.Message != "" &&
		strings.Contains(strings.ToLower(probe.Message), "error") {
		return nil, &UpstreamError{
			Kind:     ErrKindDecode,
			Endpoint: endpoint,
			Cause:    fmt.Errorf("pvgis api error: %s", probe.Message),
		}
	}

	return body, nil
}

func (c *Client) doRequest(ctx context.Context, endpoint, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &UpstreamError{Kind: ErrKindTransport, Endpoint: endpoint, Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		kind := ErrKindTransport
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			kind = ErrKindTimeout
		}
		return nil, &UpstreamError{Kind: kind, Endpoint: endpoint, Cause: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &UpstreamError{Kind: ErrKindRateLimited, Endpoint: endpoint, StatusCode: resp.StatusCode}
	case resp.StatusCode == 529:
		return nil, &UpstreamError{Kind: ErrKindOverloaded, Endpoint: endpoint, StatusCode: resp.StatusCode}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &UpstreamError{Kind: ErrKindHTTP, Endpoint: endpoint, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{Kind: ErrKindTransport, Endpoint: endpoint, Cause: err}
	}
	return body, nil
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

// Series fetches hourly radiation records via seriescalc.
func (c *Client) Series(ctx context.Context, req SeriesRequest) (Metadata, []HourlyRecord, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(req.Latitude, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(req.Longitude, 'f', -1, 64))
	params.Set("startyear", strconv.Itoa(req.StartYear))
	params.Set("endyear", strconv.Itoa(req.EndYear))
	params.Set("angle", strconv.Itoa(req.Slope))
	params.Set("aspect", strconv.Itoa(req.Azimuth))
	params.Set("outputformat", "json")
	params.Set("browser", "0")

	body, err := c.Raw(ctx, "seriescalc", params, false)
	if err != nil {
		return Metadata{}, nil, err
	}

	var payload struct {
		Inputs struct {
			Location struct {
				Latitude  float64 `json:"latitude"`
				Longitude float64 `json:"longitude"`
				Elevation float64 `json:"elevation"`
			} `json:"location"`
			MeteoData struct {
				Source string `json:"source"`
			} `json:"meteo_data"`
			MountingSystem struct {
				Slope struct {
					Value int `json:"value"`
				} `json:"slope"`
				Azimuth struct {
					Value int `json:"value"`
				} `json:"azimuth"`
			} `json:"mounting_system"`
		} `json:"inputs"`
		Outputs struct {
			Hourly []HourlyRecord `json:"hourly"`
		} `json:"outputs"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return Metadata{}, nil, &UpstreamError{Kind: ErrKindDecode, Endpoint: "seriescalc", Cause: err}
	}

	meta := Metadata{
		Latitude:          payload.Inputs.Location.Latitude,
		Longitude:         payload.Inputs.Location.Longitude,
		Elevation:         payload.Inputs.Location.Elevation,
		RadiationDatabase: payload.Inputs.MeteoData.Source,
		Slope:             payload.Inputs.MountingSystem.Slope.Value,
		Azimuth:           payload.Inputs.MountingSystem.Azimuth.Value,
	}
	if meta.Latitude == 0 && meta.Longitude == 0 {
		meta.Latitude = req.Latitude
		meta.Longitude = req.Longitude
	}
	if meta.RadiationDatabase == "" {
		meta.RadiationDatabase = "Unknown"
	}

	c.logger.Infof("fetched %d hourly records from pvgis", len(payload.Outputs.Hourly))
	return meta, payload.Outputs.Hourly, nil
}
