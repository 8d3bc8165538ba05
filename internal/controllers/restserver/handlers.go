package restserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/solarwx/solarwx/internal/constants"
	"github.com/solarwx/solarwx/internal/controllers/pvgis"
	"github.com/solarwx/solarwx/internal/log"
	"github.com/solarwx/solarwx/pkg/bird"
	"github.com/solarwx/solarwx/pkg/julian"
	"github.com/solarwx/solarwx/pkg/pressure"
	"github.com/solarwx/solarwx/pkg/responseformat"
	"github.com/solarwx/solarwx/pkg/solarpos"
)

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	controller *Controller
	formatter  *responseformat.Formatter
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{
		controller: ctrl,
		formatter:  responseformat.NewFormatter(),
	}
}

// decode parses the request body into dst, answering 400 on malformed JSON.
func (h *Handlers) decode(w http.ResponseWriter, req *http.Request, dst any) bool {
	if err := json.NewDecoder(req.Body).Decode(dst); err != nil {
		h.writeError(w, req, fmt.Errorf("invalid request body: %v", err), http.StatusBadRequest)
		return false
	}
	return true
}

func (h *Handlers) writeError(w http.ResponseWriter, req *http.Request, err error, status int) {
	if status >= http.StatusInternalServerError {
		log.Errorf("request failed: %v", err)
	}
	h.formatter.WriteResponse(w, req, ErrorResponse{
		Error:     err.Error(),
		RequestID: requestID(req),
	}, status)
}

// JulianDay converts a UTC timestamp to a Julian Date
func (h *Handlers) JulianDay(w http.ResponseWriter, req *http.Request) {
	var r JulianDayRequest
	if !h.decode(w, req, &r) {
		return
	}
	if err := r.Validate(); err != nil {
		h.writeError(w, req, err, http.StatusBadRequest)
		return
	}

	jd, err := julian.Date(r.Month, r.Day, r.Year, r.Hour, r.Minute, r.Second)
	if err != nil {
		h.writeError(w, req, err, errorStatus(err))
		return
	}

	h.formatter.WriteResponse(w, req, JulianDayResponse{JulianDate: jd}, http.StatusOK)
}

// Pressure corrects sea-level pressure to station elevation
func (h *Handlers) Pressure(w http.ResponseWriter, req *http.Request) {
	var r PressureRequest
	if !h.decode(w, req, &r) {
		return
	}
	if err := r.Validate(); err != nil {
		h.writeError(w, req, err, http.StatusBadRequest)
		return
	}

	p, err := pressure.Station(r.SeaLevelPressure, r.ElevationMeters)
	if err != nil {
		h.writeError(w, req, err, errorStatus(err))
		return
	}

	h.formatter.WriteResponse(w, req, PressureResponse{StationPressure: p}, http.StatusOK)
}

// SolarPosition computes the sun's zenith angle and distance for one instant
func (h *Handlers) SolarPosition(w http.ResponseWriter, req *http.Request) {
	var r SolarPositionRequest
	if !h.decode(w, req, &r) {
		return
	}
	if err := r.Validate(); err != nil {
		h.writeError(w, req, err, http.StatusBadRequest)
		return
	}

	resp, err := computePosition(r)
	if err != nil {
		h.writeError(w, req, err, errorStatus(err))
		return
	}

	h.formatter.WriteResponse(w, req, resp, http.StatusOK)
}

func computePosition(r SolarPositionRequest) (SolarPositionResponse, error) {
	jd, err := julian.Date(r.Month, r.Day, r.Year, r.Hour, r.Minute, r.Second)
	if err != nil {
		return SolarPositionResponse{}, err
	}
	zenith, dist, err := solarpos.Position(jd, r.Longitude, r.Latitude)
	if err != nil {
		return SolarPositionResponse{}, err
	}
	return SolarPositionResponse{
		JulianDate:       jd,
		ZenithAngle:      zenith,
		EarthSunDistance: dist,
	}, nil
}

// SolarPositionBatch computes positions for a range of hours of one day
func (h *Handlers) SolarPositionBatch(w http.ResponseWriter, req *http.Request) {
	var r SolarPositionBatchRequest
	if !h.decode(w, req, &r) {
		return
	}
	r.Normalize()
	if err := r.Validate(); err != nil {
		h.writeError(w, req, err, http.StatusBadRequest)
		return
	}

	var entries []SolarPositionBatchEntry
	for hour := r.HourStart; hour <= r.HourEnd; hour += r.HourStep {
		hourReq := r.SolarPositionRequest
		hourReq.Hour = hour
		hourReq.Minute = 0
		hourReq.Second = 0

		pos, err := computePosition(hourReq)
		if err != nil {
			h.writeError(w, req, fmt.Errorf("hour %d: %w", hour, err), errorStatus(err))
			return
		}
		entries = append(entries, SolarPositionBatchEntry{Hour: hour, Position: pos})
	}

	h.formatter.WriteResponse(w, req, entries, http.StatusOK)
}

// SunEvents returns sunrise and sunset times for one date and location
func (h *Handlers) SunEvents(w http.ResponseWriter, req *http.Request) {
	var r SunEventsRequest
	if !h.decode(w, req, &r) {
		return
	}
	if err := r.Validate(); err != nil {
		h.writeError(w, req, err, http.StatusBadRequest)
		return
	}

	events := solarpos.RiseSet(r.Latitude, r.Longitude, r.Year, time.Month(r.Month), r.Day)

	resp := SunEventsResponse{Polar: events.Polar}
	if !events.Polar {
		resp.Sunrise = events.Rise.UTC().Format(time.RFC3339)
		resp.Sunset = events.Set.UTC().Format(time.RFC3339)
	}

	h.formatter.WriteResponse(w, req, resp, http.StatusOK)
}

// BirdModel runs the full clear-sky irradiance computation
func (h *Handlers) BirdModel(w http.ResponseWriter, req *http.Request) {
	var r BirdModelRequest
	if !h.decode(w, req, &r) {
		return
	}
	if err := r.Validate(); err != nil {
		h.writeError(w, req, err, http.StatusBadRequest)
		return
	}

	out, err := bird.Compute(r.toInputs())
	if err != nil {
		h.writeError(w, req, err, errorStatus(err))
		return
	}

	h.formatter.WriteResponse(w, req, out, http.StatusOK)
}

// BirdModelDay runs the clear-sky computation for a range of hours of one day
func (h *Handlers) BirdModelDay(w http.ResponseWriter, req *http.Request) {
	var r BirdModelDayRequest
	if !h.decode(w, req, &r) {
		return
	}
	r.Normalize()
	if err := r.Validate(); err != nil {
		h.writeError(w, req, err, http.StatusBadRequest)
		return
	}

	results, err := bird.DayProfile(r.toInputs(), r.HourStart, r.HourEnd, r.HourStep)
	if err != nil {
		h.writeError(w, req, err, errorStatus(err))
		return
	}

	h.formatter.WriteResponse(w, req, results, http.StatusOK)
}

// DayAverage serves the day-average analysis, preferring the cache when the
// request names a configured site
func (h *Handlers) DayAverage(w http.ResponseWriter, req *http.Request) {
	if h.controller.PVGIS == nil {
		h.writeError(w, req, fmt.Errorf("pvgis integration is not configured"), http.StatusServiceUnavailable)
		return
	}

	var r DayAverageRequest
	if !h.decode(w, req, &r) {
		return
	}
	r.Normalize()
	if err := r.Validate(); err != nil {
		h.writeError(w, req, err, http.StatusBadRequest)
		return
	}

	if r.Site != "" {
		payload, err := h.controller.PVGIS.CachedDayAverage(r.Site, r.Month, r.Day)
		if err == nil {
			h.formatter.WriteRawJSON(w, req, payload)
			return
		}
		if err != gorm.ErrRecordNotFound {
			log.Warnf("cache lookup failed for site %s: %v", r.Site, err)
		}
	}

	resp, err := h.controller.PVGIS.Client.DayAverage(req.Context(), pvgis.DayAverageRequest{
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		Month:     r.Month,
		Day:       r.Day,
		StartYear: r.StartYear,
		EndYear:   r.EndYear,
		Slope:     r.Slope,
		Azimuth:   r.Azimuth,
	})
	if err != nil {
		h.writeError(w, req, err, errorStatus(err))
		return
	}

	h.formatter.WriteResponse(w, req, resp, http.StatusOK)
}

// Passthrough forwards a request to one of the known PVGIS calculation
// endpoints. The body is a flat map of query parameters; empty values are
// omitted. The upstream API version can be selected with ?api_version=v5_3.
func (h *Handlers) Passthrough(w http.ResponseWriter, req *http.Request) {
	if h.controller.PVGIS == nil {
		h.writeError(w, req, fmt.Errorf("pvgis integration is not configured"), http.StatusServiceUnavailable)
		return
	}

	endpoint := mux.Vars(req)["endpoint"]
	if !pvgis.IsKnownEndpoint(endpoint) {
		h.writeError(w, req, fmt.Errorf("unknown pvgis endpoint: %s", endpoint), http.StatusNotFound)
		return
	}

	var params map[string]string
	if !h.decode(w, req, &params) {
		return
	}

	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	if values.Get("outputformat") == "" {
		values.Set("outputformat", "json")
	}

	useV53 := req.URL.Query().Get("api_version") == "v5_3"

	body, err := h.controller.PVGIS.Client.Raw(req.Context(), endpoint, values, useV53)
	if err != nil {
		h.writeError(w, req, err, errorStatus(err))
		return
	}

	h.formatter.WriteRawJSON(w, req, body)
}

// Health reports service liveness and database connectivity
func (h *Handlers) Health(w http.ResponseWriter, req *http.Request) {
	resp := HealthResponse{
		Status:  "ok",
		Version: constants.Version,
	}

	if h.controller.PVGIS != nil && h.controller.PVGIS.DB != nil {
		if err := h.controller.PVGIS.DB.Health(); err != nil {
			resp.Database = "unavailable"
		} else {
			resp.Database = "ok"
		}
	}

	h.formatter.WriteResponse(w, req, resp, http.StatusOK)
}
