// Package julian converts Gregorian calendar dates to Julian Dates, the
// continuous day count used throughout the solar position and irradiance
// calculations.
package julian

import (
	"math"

	"github.com/solarwx/solarwx/pkg/numeric"
)

// J2000 is the Julian Date of the J2000.0 epoch (2000-01-01 12:00 UTC).
const J2000 = 2451545.0

// Date converts a Gregorian calendar date and UTC time of day to a Julian
// Date. It is defined for dates on or after 1582-10-15; earlier dates must be
// rejected by the caller before invoking this function.
func Date(month, day, year, hour, minute, second int) (float64, error) {
	m, d, y := month, day, year

	// Dates in January and February count as months 13 and 14 of the
	// previous astronomical year.
	if m < 3 {
		y--
		m += 12
	}

	// A is the century number, B the Gregorian leap-year correction.
	a := math.Floor(float64(y) / 100.0)
	b := 2 - a + math.Floor(a/4.0)

	// Julian Day Number at 00:00 UTC.
	jd := math.Floor(365.25*(float64(y)+4716)) +
		math.Floor(30.6001*(float64(m)+1)) +
		float64(d) + b - 1524.5

	jd += float64(hour)/24.0 + float64(minute)/1440.0 + float64(second)/86400.0

	if err := numeric.CheckFinite("julian date", jd); err != nil {
		return 0, err
	}
	return jd, nil
}

// CenturiesSinceJ2000 returns the number of Julian centuries between jd and
// the J2000.0 epoch.
func CenturiesSinceJ2000(jd float64) float64 {
	return (jd - J2000) / 36525.0
}
