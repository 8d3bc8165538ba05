// Package solarpos computes the apparent position of the sun for a given
// Julian Date and geographic location, using a classical low-precision solar
// ephemeris valid for roughly 1900-2100.
package solarpos

import (
	"math"

	"github.com/solarwx/solarwx/pkg/julian"
	"github.com/solarwx/solarwx/pkg/numeric"
)

func degToRad(deg float64) float64 { return deg * math.Pi / 180.0 }
func radToDeg(rad float64) float64 { return rad * 180.0 / math.Pi }

// clamp bounds v to [-1, 1] before inverse trig. Floating-point rounding can
// push the sine/cosine products marginally outside the interval at extreme
// latitudes or declinations near the poles.
func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

// Position returns the solar zenith angle (degrees) and the Earth-Sun
// distance (AU) at the given Julian Date for an observer at the given
// longitude (degrees, west negative) and latitude (degrees, north positive).
func Position(jd, longitude, latitude float64) (zenithDeg, distanceAU float64, err error) {
	t := julian.CenturiesSinceJ2000(jd)

	// Mean longitude and mean anomaly of the sun.
	l0 := 280.46645 + 36000.76983*t + 0.0003032*t*t
	m := 357.52910 + 35999.05030*t - 0.0001559*t*t - 0.00000048*t*t*t
	mRad := degToRad(m)

	// Orbital eccentricity and equation of center.
	e := 0.016708617 - 0.000042037*t - 0.0000001236*t*t
	c := (1.914600-0.004817*t-0.000014*t*t)*math.Sin(mRad) +
		(0.019993-0.000101*t)*math.Sin(2*mRad) +
		0.000290*math.Sin(3*mRad)

	lTrue := math.Mod(l0+c, 360.0)
	f := mRad + degToRad(c) // true anomaly
	r := 1.000001018 * (1 - e*e) / (1 + e*math.Cos(f))

	// Apparent sidereal time at Greenwich.
	sidereal := math.Mod(280.46061837+
		360.98564736629*(jd-julian.J2000)+
		0.000387933*t*t-
		t*t*t/38710000.0, 360.0)

	// Mean obliquity of the ecliptic (arcsecond polynomial, in degrees).
	obliquity := 23.0 + 26.0/60.0 + 21.448/3600.0 -
		46.8150/3600.0*t -
		0.00059/3600.0*t*t +
		0.001813/3600.0*t*t*t

	rightAscension := math.Atan2(math.Sin(degToRad(lTrue))*math.Cos(degToRad(obliquity)),
		math.Cos(degToRad(lTrue)))
	declination := math.Asin(clamp(math.Sin(degToRad(obliquity)) * math.Sin(degToRad(lTrue))))

	hourAngle := sidereal + longitude - radToDeg(rightAscension)

	sinElevation := math.Sin(degToRad(latitude))*math.Sin(declination) +
		math.Cos(degToRad(latitude))*math.Cos(declination)*math.Cos(degToRad(hourAngle))
	elevation := radToDeg(math.Asin(clamp(sinElevation)))

	zenithDeg = 90.0 - elevation
	distanceAU = r

	if ferr := numeric.CheckFinite("zenith angle", zenithDeg); ferr != nil {
		return 0, 0, ferr
	}
	if ferr := numeric.CheckFinite("earth-sun distance", distanceAU); ferr != nil {
		return 0, 0, ferr
	}
	return zenithDeg, distanceAU, nil
}
