package restserver

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/solarwx/solarwx/internal/controllers/pvgis"
	"github.com/solarwx/solarwx/pkg/bird"
	"github.com/solarwx/solarwx/pkg/numeric"
)

var validate = validator.New()

const (
	// The Gregorian calendar was adopted in October 1582; the first full
	// Gregorian year is the floor for date conversions.
	minGregorianYear = 1583
	maxYear          = 9999

	// The clear-sky model is only exercised within this window.
	minBirdYear = 1900
	maxBirdYear = 2100

	// Year coverage of the PVGIS hourly radiation databases.
	minPVGISYear = 2005
	maxPVGISYear = 2020

	defaultSolarConstant = 1367.0
)

// ErrorResponse is the JSON body returned for any failed request.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// TimestampRequest is a UTC civil timestamp, embedded by every request that
// names an instant in time.
type TimestampRequest struct {
	Year   int `json:"year" validate:"required"`
	Month  int `json:"month" validate:"required,min=1,max=12"`
	Day    int `json:"day" validate:"required,min=1,max=31"`
	Hour   int `json:"hour" validate:"min=0,max=23"`
	Minute int `json:"minute" validate:"min=0,max=59"`
	Second int `json:"second" validate:"min=0,max=59"`
}

// calendarValid rejects days that do not exist in the given month, like
// February 30th.
func (t TimestampRequest) calendarValid() error {
	lastDay := time.Date(t.Year, time.Month(t.Month), 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, 1, -1).Day()
	if t.Day > lastDay {
		return fmt.Errorf("day %d is out of range for %04d-%02d", t.Day, t.Year, t.Month)
	}
	return nil
}

func (t TimestampRequest) yearInRange(min, max int) error {
	if t.Year < min || t.Year > max {
		return fmt.Errorf("year must be between %d and %d, got %d", min, max, t.Year)
	}
	return nil
}

// JulianDayRequest asks for the Julian Date of a UTC timestamp.
type JulianDayRequest struct {
	TimestampRequest
}

func (r JulianDayRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return err
	}
	if err := r.yearInRange(minGregorianYear, maxYear); err != nil {
		return err
	}
	return r.calendarValid()
}

// JulianDayResponse carries the converted Julian Date.
type JulianDayResponse struct {
	JulianDate float64 `json:"julian_date"`
}

// PressureRequest asks for the station pressure at an elevation.
type PressureRequest struct {
	SeaLevelPressure float64 `json:"sea_level_pressure" validate:"required,gt=0,lte=1100"`
	ElevationMeters  float64 `json:"elevation_meters" validate:"gte=-500,lte=9000"`
}

func (r PressureRequest) Validate() error {
	return validate.Struct(r)
}

// PressureResponse carries the elevation-corrected pressure.
type PressureResponse struct {
	StationPressure float64 `json:"station_pressure"`
}

// SolarPositionRequest asks for the apparent position of the sun at a
// timestamp and location.
type SolarPositionRequest struct {
	TimestampRequest
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

func (r SolarPositionRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return err
	}
	if err := r.yearInRange(minGregorianYear, maxYear); err != nil {
		return err
	}
	return r.calendarValid()
}

// SolarPositionResponse carries one computed solar position.
type SolarPositionResponse struct {
	JulianDate       float64 `json:"julian_date"`
	ZenithAngle      float64 `json:"zenith_angle"`
	EarthSunDistance float64 `json:"earth_sun_distance"`
}

// SolarPositionBatchRequest asks for solar positions over a range of hours of
// one day. The embedded Hour field is ignored.
type SolarPositionBatchRequest struct {
	SolarPositionRequest
	HourStart int `json:"hour_start" validate:"min=0,max=23"`
	HourEnd   int `json:"hour_end" validate:"min=0,max=23"`
	HourStep  int `json:"hour_step" validate:"min=0,max=12"`
}

// Normalize applies the default full-day range when the hour fields are
// omitted entirely.
func (r *SolarPositionBatchRequest) Normalize() {
	if r.HourStart == 0 && r.HourEnd == 0 && r.HourStep == 0 {
		r.HourEnd = 23
	}
	if r.HourStep == 0 {
		r.HourStep = 1
	}
}

func (r SolarPositionBatchRequest) Validate() error {
	if err := r.SolarPositionRequest.Validate(); err != nil {
		return err
	}
	if r.HourEnd < r.HourStart {
		return fmt.Errorf("hour_end %d precedes hour_start %d", r.HourEnd, r.HourStart)
	}
	return nil
}

// SolarPositionBatchEntry is one hour's position in a batch response.
type SolarPositionBatchEntry struct {
	Hour     int                   `json:"hour"`
	Position SolarPositionResponse `json:"position"`
}

// SunEventsRequest asks for the sunrise and sunset times of one date.
type SunEventsRequest struct {
	TimestampRequest
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

func (r SunEventsRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return err
	}
	if err := r.yearInRange(minGregorianYear, maxYear); err != nil {
		return err
	}
	return r.calendarValid()
}

// SunEventsResponse carries the rise and set instants in UTC. Both are empty
// when the date falls inside a polar day or polar night.
type SunEventsResponse struct {
	Sunrise string `json:"sunrise,omitempty"`
	Sunset  string `json:"sunset,omitempty"`
	Polar   bool   `json:"polar"`
}

// BirdModelRequest holds the inputs of one clear-sky irradiance computation.
type BirdModelRequest struct {
	TimestampRequest
	Latitude         float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude        float64 `json:"longitude" validate:"gte=-180,lte=180"`
	ElevationMeters  float64 `json:"elevation_meters" validate:"gte=-500,lte=9000"`
	SeaLevelPressure float64 `json:"sea_level_pressure" validate:"required,gt=0,lte=1100"`
	SolarConstant    float64 `json:"solar_constant,omitempty" validate:"omitempty,gt=0,lte=1450"`
	Albedo           float64 `json:"albedo" validate:"gte=0,lte=1"`
	Ozone            float64 `json:"ozone" validate:"gte=0,lte=1"`
	WaterVapor       float64 `json:"water_vapor" validate:"gte=0,lte=10"`
	AOT500           float64 `json:"aot500" validate:"gte=0,lte=1"`
	AOT380           float64 `json:"aot380" validate:"gte=0,lte=1"`
}

func (r BirdModelRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return err
	}
	if err := r.yearInRange(minBirdYear, maxBirdYear); err != nil {
		return err
	}
	return r.calendarValid()
}

func (r BirdModelRequest) toInputs() bird.Inputs {
	sc := r.SolarConstant
	if sc == 0 {
		sc = defaultSolarConstant
	}
	return bird.Inputs{
		SolarConstant:   sc,
		Longitude:       r.Longitude,
		Latitude:        r.Latitude,
		Elevation:       r.ElevationMeters,
		Month:           r.Month,
		Day:             r.Day,
		Year:            r.Year,
		Hour:            r.Hour,
		Minute:          r.Minute,
		Second:          r.Second,
		StationPressure: r.SeaLevelPressure,
		Albedo:          r.Albedo,
		Ozone:           r.Ozone,
		WaterVapor:      r.WaterVapor,
		AOT500:          r.AOT500,
		AOT380:          r.AOT380,
	}
}

// BirdModelDayRequest asks for the hourly clear-sky profile of one day.
type BirdModelDayRequest struct {
	BirdModelRequest
	HourStart int `json:"hour_start" validate:"min=0,max=23"`
	HourEnd   int `json:"hour_end" validate:"min=0,max=23"`
	HourStep  int `json:"hour_step" validate:"min=0,max=12"`
}

// Normalize applies the default full-day range when the hour fields are
// omitted entirely.
func (r *BirdModelDayRequest) Normalize() {
	if r.HourStart == 0 && r.HourEnd == 0 && r.HourStep == 0 {
		r.HourEnd = 23
	}
	if r.HourStep == 0 {
		r.HourStep = 1
	}
}

func (r BirdModelDayRequest) Validate() error {
	if err := r.BirdModelRequest.Validate(); err != nil {
		return err
	}
	if r.HourEnd < r.HourStart {
		return fmt.Errorf("hour_end %d precedes hour_start %d", r.HourEnd, r.HourStart)
	}
	return nil
}

// DayAverageRequest asks for the day-average analysis of one calendar day at
// a location. Site optionally names a configured site whose cached analysis
// is served when available.
type DayAverageRequest struct {
	Site      string  `json:"site,omitempty"`
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
	Month     int     `json:"month" validate:"required,min=1,max=12"`
	Day       int     `json:"day" validate:"required,min=1,max=31"`
	StartYear int     `json:"start_year" validate:"omitempty,min=2005,max=2020"`
	EndYear   int     `json:"end_year" validate:"omitempty,min=2005,max=2020"`
	Slope     int     `json:"slope" validate:"min=0,max=90"`
	Azimuth   int     `json:"azimuth" validate:"min=-180,max=180"`
}

// Normalize fills in the default year range.
func (r *DayAverageRequest) Normalize() {
	if r.StartYear == 0 {
		r.StartYear = minPVGISYear
	}
	if r.EndYear == 0 {
		r.EndYear = maxPVGISYear
	}
}

func (r DayAverageRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return err
	}
	if r.EndYear < r.StartYear {
		return fmt.Errorf("end_year %d precedes start_year %d", r.EndYear, r.StartYear)
	}
	// Checked against a leap year so February 29th stays reachable.
	lastDay := time.Date(2020, time.Month(r.Month), 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, 1, -1).Day()
	if r.Day > lastDay {
		return fmt.Errorf("day %d is out of range for month %d", r.Day, r.Month)
	}
	return nil
}

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Database string `json:"database,omitempty"`
}

// errorStatus maps a computation or upstream failure to an HTTP status.
// Domain and overflow failures are caused by request values, so they map to
// 400; upstream failures map to gateway statuses; anything else is a 500.
func errorStatus(err error) int {
	var upstreamErr *pvgis.UpstreamError
	if errors.As(err, &upstreamErr) {
		if upstreamErr.Kind == pvgis.ErrKindTimeout {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	}

	var noData *pvgis.ErrNoData
	if errors.As(err, &noData) {
		return http.StatusNotFound
	}

	var domainErr *numeric.DomainError
	var overflowErr *numeric.OverflowError
	if errors.As(err, &domainErr) || errors.As(err, &overflowErr) {
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}
