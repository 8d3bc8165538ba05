package restserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/solarwx/solarwx/internal/controllers/pvgis"
	"github.com/solarwx/solarwx/internal/log"
	"github.com/solarwx/solarwx/pkg/config"
)

type testProvider struct{}

func (testProvider) LoadConfig() (*config.ConfigData, error) {
	return &config.ConfigData{}, nil
}

func (testProvider) GetHTTPConfig() (*config.HTTPData, error) {
	return &config.HTTPData{ListenAddr: "127.0.0.1", Port: 8080}, nil
}

func (testProvider) GetStorageConfig() (*config.StorageData, error) {
	return &config.StorageData{}, nil
}

func (testProvider) GetPVGISConfig() (*config.PVGISData, error) {
	return &config.PVGISData{}, nil
}

func (testProvider) GetSites() ([]config.SiteData, error) {
	return nil, nil
}

func (testProvider) IsReadOnly() bool { return true }
func (testProvider) Close() error     { return nil }

func TestMain(m *testing.M) {
	log.Init(false)
	os.Exit(m.Run())
}

// newTestServer builds the full router without binding a listener. The PVGIS
// controller is optional.
func newTestServer(t *testing.T, pvgisController *pvgis.Controller) *httptest.Server {
	t.Helper()

	var wg sync.WaitGroup
	ctrl, err := NewController(context.Background(), &wg, testProvider{}, pvgisController, zap.NewNop().Sugar())
	require.NoError(t, err)

	server := httptest.NewServer(ctrl.Server.Handler)
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

func TestJulianDayEndpoint(t *testing.T) {
	server := newTestServer(t, nil)

	resp := postJSON(t, server.URL+"/utils/julian-day", map[string]any{
		"year": 2000, "month": 1, "day": 1, "hour": 12,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body JulianDayResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, 2451545.0, body.JulianDate)
}

func TestJulianDayRejectsPreGregorianYear(t *testing.T) {
	server := newTestServer(t, nil)

	resp := postJSON(t, server.URL+"/utils/julian-day", map[string]any{
		"year": 1500, "month": 1, "day": 1,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestJulianDayRejectsImpossibleDate(t *testing.T) {
	server := newTestServer(t, nil)

	resp := postJSON(t, server.URL+"/utils/julian-day", map[string]any{
		"year": 2023, "month": 2, "day": 30,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPressureEndpoint(t *testing.T) {
	server := newTestServer(t, nil)

	resp := postJSON(t, server.URL+"/utils/pressure", map[string]any{
		"sea_level_pressure": 1013.25, "elevation_meters": 0,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body PressureResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, 1013.25, body.StationPressure)
}

func TestPressureEndpointRejectsZeroPressure(t *testing.T) {
	server := newTestServer(t, nil)

	resp := postJSON(t, server.URL+"/utils/pressure", map[string]any{
		"sea_level_pressure": 0, "elevation_meters": 100,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSolarPositionEndpoint(t *testing.T) {
	server := newTestServer(t, nil)

	resp := postJSON(t, server.URL+"/utils/solar-position", map[string]any{
		"year": 2025, "month": 6, "day": 21, "hour": 12,
		"latitude": 38.447, "longitude": 27.149,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body SolarPositionResponse
	decodeBody(t, resp, &body)
	assert.InDelta(t, 27.202, body.ZenithAngle, 0.05)
	assert.InDelta(t, 1.016257, body.EarthSunDistance, 0.001)
}

func TestSolarPositionBatchEndpoint(t *testing.T) {
	server := newTestServer(t, nil)

	resp := postJSON(t, server.URL+"/utils/solar-position/batch", map[string]any{
		"year": 2025, "month": 6, "day": 21,
		"latitude": 38.447, "longitude": 27.149,
		"hour_start": 6, "hour_end": 18, "hour_step": 6,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body []SolarPositionBatchEntry
	decodeBody(t, resp, &body)
	require.Len(t, body, 3)
	assert.Equal(t, 6, body[0].Hour)
	assert.Equal(t, 12, body[1].Hour)
	assert.Equal(t, 18, body[2].Hour)
	for _, entry := range body {
		assert.Greater(t, entry.Position.ZenithAngle, 0.0)
		assert.Less(t, entry.Position.ZenithAngle, 180.0)
	}
}

func TestSunEventsEndpoint(t *testing.T) {
	server := newTestServer(t, nil)

	resp := postJSON(t, server.URL+"/utils/sun-events", map[string]any{
		"year": 2025, "month": 6, "day": 21,
		"latitude": 47.6, "longitude": -122.33,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body SunEventsResponse
	decodeBody(t, resp, &body)
	assert.False(t, body.Polar)
	require.NotEmpty(t, body.Sunrise)
	require.NotEmpty(t, body.Sunset)

	rise, err := time.Parse(time.RFC3339, body.Sunrise)
	require.NoError(t, err)
	set, err := time.Parse(time.RFC3339, body.Sunset)
	require.NoError(t, err)
	assert.True(t, set.After(rise))
}

func TestSunEventsPolarDay(t *testing.T) {
	server := newTestServer(t, nil)

	resp := postJSON(t, server.URL+"/utils/sun-events", map[string]any{
		"year": 2025, "month": 6, "day": 21,
		"latitude": 80.0, "longitude": 15.0,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body SunEventsResponse
	decodeBody(t, resp, &body)
	assert.True(t, body.Polar)
	assert.Empty(t, body.Sunrise)
}

func birdModelBody() map[string]any {
	return map[string]any{
		"year": 2007, "month": 6, "day": 21, "hour": 17,
		"latitude": 40.0, "longitude": -75.0,
		"elevation_meters":   120.0,
		"sea_level_pressure": 1012.0,
		"albedo":             0.2,
		"ozone":              0.3,
		"water_vapor":        1.5,
		"aot500":             0.10,
		"aot380":             0.15,
	}
}

func TestBirdModelEndpoint(t *testing.T) {
	server := newTestServer(t, nil)

	resp := postJSON(t, server.URL+"/calculator/bird-model", birdModelBody())
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]float64
	decodeBody(t, resp, &body)

	assert.InDelta(t, 1001.59, body["total_horizontal"], 1.0)
	assert.InDelta(t, 879.87, body["direct_horizontal"], 1.0)
	assert.Equal(t, body["total_horizontal"], body["direct_horizontal"]+body["diffuse_horizontal"])
}

func TestBirdModelRejectsOutOfRangeAlbedo(t *testing.T) {
	server := newTestServer(t, nil)

	body := birdModelBody()
	body["albedo"] = 1.5
	resp := postJSON(t, server.URL+"/calculator/bird-model", body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBirdModelRejectsYearOutsideWindow(t *testing.T) {
	server := newTestServer(t, nil)

	body := birdModelBody()
	body["year"] = 1850
	resp := postJSON(t, server.URL+"/calculator/bird-model", body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBirdModelDayEndpoint(t *testing.T) {
	server := newTestServer(t, nil)

	body := birdModelBody()
	body["hour_start"] = 10
	body["hour_end"] = 14
	body["hour_step"] = 2
	resp := postJSON(t, server.URL+"/calculator/bird-model/day", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var results []map[string]any
	decodeBody(t, resp, &results)
	require.Len(t, results, 3)
	assert.Equal(t, 10.0, results[0]["hour"])
	assert.Equal(t, 14.0, results[2]["hour"])
}

func TestDayAverageWithoutPVGIS(t *testing.T) {
	server := newTestServer(t, nil)

	resp := postJSON(t, server.URL+"/pvgis/day-average", map[string]any{
		"latitude": 45.0, "longitude": 8.0, "month": 6, "day": 21,
	})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

const upstreamSeriesPayload = `{
	"inputs": {
		"location": {"latitude": 45.0, "longitude": 8.0, "elevation": 250.0},
		"meteo_data": {"source": "PVGIS-SARAH2"},
		"mounting_system": {"slope": {"value": 0}, "azimuth": {"value": 0}}
	},
	"outputs": {
		"hourly": [
			{"time": "20190621:1011", "G(i)": 800.0, "H_sun": 60.0, "T2m": 22.0, "WS10m": 2.0, "Int": 0.0},
			{"time": "20200621:1011", "G(i)": 900.0, "H_sun": 62.0, "T2m": 24.0, "WS10m": 3.0, "Int": 0.0}
		]
	}
}`

func newPVGISController(t *testing.T, upstreamURL string) *pvgis.Controller {
	t.Helper()

	var wg sync.WaitGroup
	client := pvgis.NewClient(upstreamURL, upstreamURL, 5*time.Second, zap.NewNop().Sugar())
	ctrl, err := pvgis.NewController(context.Background(), &wg, testProvider{}, client, nil, zap.NewNop().Sugar())
	require.NoError(t, err)
	return ctrl
}

func TestDayAverageEndToEnd(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(upstreamSeriesPayload))
	}))
	defer upstream.Close()

	server := newTestServer(t, newPVGISController(t, upstream.URL))

	resp := postJSON(t, server.URL+"/pvgis/day-average", map[string]any{
		"latitude": 45.0, "longitude": 8.0, "month": 6, "day": 21,
		"start_year": 2019, "end_year": 2020,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body pvgis.DayAverageResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, []int{2019, 2020}, body.YearsAnalyzed)
	require.Len(t, body.HourlyAverages, 24)
	assert.InDelta(t, 850.0, body.HourlyAverages[10].Irradiance, 1e-9)
	assert.Equal(t, 10, body.PeakHour)
}

func TestDayAverageUpstreamRateLimited(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer upstream.Close()

	server := newTestServer(t, newPVGISController(t, upstream.URL))

	resp := postJSON(t, server.URL+"/pvgis/day-average", map[string]any{
		"latitude": 45.0, "longitude": 8.0, "month": 6, "day": 21,
	})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestPassthroughEndpoint(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "45", r.URL.Query().Get("lat"))
		w.Write([]byte(`{"outputs": {"totals": {}}}`))
	}))
	defer upstream.Close()

	server := newTestServer(t, newPVGISController(t, upstream.URL))

	resp := postJSON(t, server.URL+"/pvgis/PVcalc", map[string]string{
		"lat": "45", "lon": "8", "peakpower": "1", "loss": "14",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	decodeBody(t, resp, &body)
	assert.Contains(t, body, "outputs")
}

func TestPassthroughUnknownEndpoint(t *testing.T) {
	server := newTestServer(t, newPVGISController(t, "http://127.0.0.1:0"))

	resp := postJSON(t, server.URL+"/pvgis/nonsense", map[string]string{})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t, nil)

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body HealthResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, "ok", body.Status)
	assert.NotEmpty(t, body.Version)
	assert.Empty(t, body.Database)
}

func TestResponsesCarryRequestID(t *testing.T) {
	server := newTestServer(t, nil)

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestMsgpackResponseFormat(t *testing.T) {
	server := newTestServer(t, nil)

	resp, err := http.Get(server.URL + "/health?format=msgpack")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/x-msgpack", resp.Header.Get("Content-Type"))
}
