package solarpos

import (
	"time"

	sunrise "github.com/nathan-osman/go-sunrise"
)

// SunEvents holds sunrise and sunset times (UTC) for one calendar day.
// Polar indicates that the sun never rises or never sets on that day, in
// which case Rise and Set are zero times.
type SunEvents struct {
	Rise  time.Time
	Set   time.Time
	Polar bool
}

// RiseSet returns the sunrise and sunset times for the given date at the
// given location (degrees, north/east positive).
func RiseSet(latitude, longitude float64, year int, month time.Month, day int) SunEvents {
	rise, set := sunrise.SunriseSunset(latitude, longitude, year, month, day)
	return SunEvents{
		Rise:  rise,
		Set:   set,
		Polar: rise.IsZero() && set.IsZero(),
	}
}
