package pvgis

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const seriesPayload = `{
	"inputs": {
		"location": {"latitude": 45.0, "longitude": 8.0, "elevation": 250.0},
		"meteo_data": {"source": "PVGIS-SARAH2"},
		"mounting_system": {"slope": {"value": 30}, "azimuth": {"value": 0}}
	},
	"outputs": {
		"hourly": [
			{"time": "20200621:1011", "G(i)": 850.5, "H_sun": 62.1, "T2m": 24.3, "WS10m": 2.1, "Int": 0.0},
			{"time": "20200621:1111", "G(i)": 910.2, "H_sun": 66.8, "T2m": 25.1, "WS10m": 2.4, "Int": 0.0}
		]
	}
}`

func newTestClient(serverURL string) *Client {
	return NewClient(serverURL, serverURL, 5*time.Second, zap.NewNop().Sugar())
}

func TestSeries(t *testing.T) {
	var gotQuery url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(seriesPayload))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	meta, records, err := client.Series(context.Background(), SeriesRequest{
		Latitude:  45.0,
		Longitude: 8.0,
		StartYear: 2020,
		EndYear:   2020,
		Slope:     30,
	})
	require.NoError(t, err)

	assert.Equal(t, "45", gotQuery.Get("lat"))
	assert.Equal(t, "2020", gotQuery.Get("startyear"))
	assert.Equal(t, "json", gotQuery.Get("outputformat"))

	assert.Equal(t, 45.0, meta.Latitude)
	assert.Equal(t, 250.0, meta.Elevation)
	assert.Equal(t, "PVGIS-SARAH2", meta.RadiationDatabase)
	assert.Equal(t, 30, meta.Slope)

	require.Len(t, records, 2)
	assert.Equal(t, "20200621:1011", records[0].Time)
	assert.Equal(t, 850.5, records[0].Irradiance)
	assert.Equal(t, 24.3, records[0].Temperature)
}

func TestRawRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Raw(context.Background(), "seriescalc", url.Values{}, false)

	var upstreamErr *UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, ErrKindRateLimited, upstreamErr.Kind)
	assert.Equal(t, http.StatusTooManyRequests, upstreamErr.StatusCode)
}

func TestRawOverloaded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(529)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Raw(context.Background(), "PVcalc", url.Values{}, false)

	var upstreamErr *UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, ErrKindOverloaded, upstreamErr.Kind)
}

func TestRawHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Raw(context.Background(), "PVcalc", url.Values{}, false)

	var upstreamErr *UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, ErrKindHTTP, upstreamErr.Kind)
	assert.Equal(t, http.StatusBadRequest, upstreamErr.StatusCode)
}

func TestRawEmbeddedErrorMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message": "Error: location over the sea"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Raw(context.Background(), "seriescalc", url.Values{}, false)

	var upstreamErr *UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, ErrKindDecode, upstreamErr.Kind)
}

func TestRawOmitsEmptyParams(t *testing.T) {
	var gotQuery url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	params := url.Values{}
	params.Set("lat", "45")
	params.Set("raddatabase", "")

	_, err := client.Raw(context.Background(), "PVcalc", params, false)
	require.NoError(t, err)

	assert.Equal(t, "45", gotQuery.Get("lat"))
	_, present := gotQuery["raddatabase"]
	assert.False(t, present)
}

func TestCircuitBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	for i := 0; i < 5; i++ {
		_, err := client.Raw(context.Background(), "seriescalc", url.Values{}, false)
		require.Error(t, err)
	}

	// The breaker is now open; the next call fails without reaching upstream.
	_, err := client.Raw(context.Background(), "seriescalc", url.Values{}, false)
	var upstreamErr *UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, ErrKindUnavailable, upstreamErr.Kind)
}

func TestRawTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, server.URL, 50*time.Millisecond, zap.NewNop().Sugar())
	_, err := client.Raw(context.Background(), "seriescalc", url.Values{}, false)

	var upstreamErr *UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, ErrKindTimeout, upstreamErr.Kind)
}

func TestRawUsesV53BaseURL(t *testing.T) {
	v52 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"api": "v5_2"}`))
	}))
	defer v52.Close()
	v53 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"api": "v5_3"}`))
	}))
	defer v53.Close()

	client := NewClient(v52.URL, v53.URL, 5*time.Second, zap.NewNop().Sugar())

	body, err := client.Raw(context.Background(), "PVcalc", url.Values{}, true)
	require.NoError(t, err)
	assert.Contains(t, string(body), "v5_3")

	body, err = client.Raw(context.Background(), "PVcalc", url.Values{}, false)
	require.NoError(t, err)
	assert.Contains(t, string(body), "v5_2")
}

func TestIsKnownEndpoint(t *testing.T) {
	assert.True(t, IsKnownEndpoint("seriescalc"))
	assert.True(t, IsKnownEndpoint("PVcalc"))
	assert.True(t, IsKnownEndpoint("tmy"))
	assert.False(t, IsKnownEndpoint("nonsense"))
	assert.False(t, IsKnownEndpoint(""))
}

func TestUpstreamErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &UpstreamError{Kind: ErrKindTransport, Endpoint: "seriescalc", Cause: cause}
	assert.ErrorIs(t, err, cause)
}
