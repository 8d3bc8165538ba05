package pvgis

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/stat"
)

// Aggregate computes the hourly averages of one calendar day from a set of
// hourly records spanning multiple years. The result always covers all 24
// hours; hours with no matching samples are zero-filled with SampleCount 0.
func Aggregate(req DayAverageRequest, meta Metadata, records []HourlyRecord) (*DayAverageResponse, error) {
	targetDate := fmt.Sprintf("%02d%02d", req.Month, req.Day)

	type samples struct {
		irr, sun, temp, wind, intensity []float64
	}
	hourly := make(map[int]*samples)
	years := make(map[int]bool)

	for _, rec := range records {
		// Upstream timestamps are "YYYYMMDD:HHMM".
		if len(rec.Time) < 11 {
			continue
		}
		if rec.Time[4:8] != targetDate {
			continue
		}
		year, err := strconv.Atoi(rec.Time[:4])
		if err != nil {
			continue
		}
		hour, err := strconv.Atoi(rec.Time[9:11])
		if err != nil || hour < 0 || hour > 23 {
			continue
		}

		years[year] = true
		s := hourly[hour]
		if s == nil {
			s = &samples{}
			hourly[hour] = s
		}
		s.irr = append(s.irr, rec.Irradiance)
		s.sun = append(s.sun, rec.SunHeight)
		s.temp = append(s.temp, rec.Temperature)
		s.wind = append(s.wind, rec.WindSpeed)
		s.intensity = append(s.intensity, rec.Intensity)
	}

	if len(hourly) == 0 {
		return nil, &ErrNoData{
			Month: req.Month, Day: req.Day,
			StartYear: req.StartYear, EndYear: req.EndYear,
		}
	}

	resp := &DayAverageResponse{
		Latitude:       meta.Latitude,
		Longitude:      meta.Longitude,
		Month:          req.Month,
		Day:            req.Day,
		HourlyAverages: make([]HourlyAverage, 0, 24),
	}

	for y := range years {
		resp.YearsAnalyzed = append(resp.YearsAnalyzed, y)
	}
	sort.Ints(resp.YearsAnalyzed)

	for hour := 0; hour < 24; hour++ {
		s := hourly[hour]
		if s == nil {
			resp.HourlyAverages = append(resp.HourlyAverages, HourlyAverage{Hour: hour})
			continue
		}

		avg := HourlyAverage{
			Hour:        hour,
			Irradiance:  stat.Mean(s.irr, nil),
			SunHeight:   stat.Mean(s.sun, nil),
			Temperature: stat.Mean(s.temp, nil),
			WindSpeed:   stat.Mean(s.wind, nil),
			Intensity:   stat.Mean(s.intensity, nil),
			SampleCount: len(s.irr),
		}
		resp.HourlyAverages = append(resp.HourlyAverages, avg)

		// Exact only because the sampling step is one hour.
		resp.DailyTotalEnergy += avg.Irradiance

		if avg.Irradiance > resp.PeakIrradiance {
			resp.PeakIrradiance = avg.Irradiance
			resp.PeakHour = hour
		}
	}

	return resp, nil
}

// DayAverage fetches the year range from the upstream service and aggregates
// the records for the requested calendar day.
func (c *Client) DayAverage(ctx context.Context, req DayAverageRequest) (*DayAverageResponse, error) {
	meta, records, err := c.Series(ctx, SeriesRequest{
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		StartYear: req.StartYear,
		EndYear:   req.EndYear,
		Slope:     req.Slope,
		Azimuth:   req.Azimuth,
	})
	if err != nil {
		return nil, err
	}
	return Aggregate(req, meta, records)
}
