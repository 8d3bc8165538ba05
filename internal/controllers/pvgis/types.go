package pvgis

// SeriesRequest describes a seriescalc fetch for hourly historical
// irradiance data.
type SeriesRequest struct {
	Latitude  float64
	Longitude float64
	StartYear int
	EndYear   int
	Slope     int
	Azimuth   int
}

// Metadata describes the location and database the upstream service actually
// used for a series response.
type Metadata struct {
	Latitude          float64 `json:"latitude"`
	Longitude         float64 `json:"longitude"`
	Elevation         float64 `json:"elevation"`
	RadiationDatabase string  `json:"radiation_database"`
	Slope             int     `json:"slope"`
	Azimuth           int     `json:"azimuth"`
}

// HourlyRecord is one hourly observation from the upstream series.
// Timestamps use the upstream "YYYYMMDD:HHMM" format.
type HourlyRecord struct {
	Time        string  `json:"time"`
	Irradiance  float64 `json:"G(i)"`   // global irradiance on the inclined plane, W/m²
	SunHeight   float64 `json:"H_sun"`  // degrees
	Temperature float64 `json:"T2m"`    // °C at 2 m
	WindSpeed   float64 `json:"WS10m"`  // m/s at 10 m
	Intensity   float64 `json:"Int"`
}

// DayAverageRequest asks for the hourly averages of one calendar day across
// a range of years.
type DayAverageRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Month     int     `json:"month"`
	Day       int     `json:"day"`
	StartYear int     `json:"start_year"`
	EndYear   int     `json:"end_year"`
	Slope     int     `json:"slope"`
	Azimuth   int     `json:"azimuth"`
}

// HourlyAverage is the mean of every field over all samples for one
// hour-of-day. Hours with no samples have zero values and SampleCount 0.
type HourlyAverage struct {
	Hour        int     `json:"hour"`
	Irradiance  float64 `json:"G_i"`
	SunHeight   float64 `json:"H_sun"`
	Temperature float64 `json:"T2m"`
	WindSpeed   float64 `json:"WS10m"`
	Intensity   float64 `json:"Int"`
	SampleCount int     `json:"sample_count"`
}

// DayAverageResponse is the full day-average analysis for one location and
// calendar day.
type DayAverageResponse struct {
	Latitude       float64         `json:"latitude"`
	Longitude      float64         `json:"longitude"`
	Month          int             `json:"month"`
	Day            int             `json:"day"`
	YearsAnalyzed  []int           `json:"years_analyzed"`
	HourlyAverages []HourlyAverage `json:"hourly_averages"`
	PeakHour       int             `json:"peak_hour"`
	PeakIrradiance float64         `json:"peak_irradiance"`
	// DailyTotalEnergy is the plain sum of the 24 hourly mean irradiances.
	// Dimensionally this is Wh/m² only because the sampling step is exactly
	// one hour; it is not a general energy integral.
	DailyTotalEnergy float64 `json:"daily_total_energy"`
}
