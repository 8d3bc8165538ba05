// Package bird implements the Bird & Hulstrom (1981) clear-sky irradiance
// model. Given a place, a UTC instant, and a handful of atmospheric
// parameters, it estimates the direct, diffuse, and total solar power
// reaching a horizontal surface.
//
// All numeric literals in the transmittance chain are fixed constants of the
// published model and are reproduced exactly.
package bird

import (
	"math"

	"github.com/solarwx/solarwx/pkg/julian"
	"github.com/solarwx/solarwx/pkg/numeric"
	"github.com/solarwx/solarwx/pkg/pressure"
	"github.com/solarwx/solarwx/pkg/solarpos"
)

// horizonZenithDeg is the zenith angle at which the Kasten air-mass formula
// becomes undefined. At or beyond it the sun is below the horizon and the
// model reports zero irradiance.
const horizonZenithDeg = 93.885

// Inputs holds the parameters of one clear-sky computation. Values are not
// range-validated here; callers are expected to validate before invoking
// Compute.
type Inputs struct {
	SolarConstant   float64 // W/m², mean solar constant (~1367)
	Longitude       float64 // degrees, west negative
	Latitude        float64 // degrees, north positive
	Elevation       float64 // meters above sea level
	Month           int     // 1-12
	Day             int     // 1-31
	Year            int     // full year, UTC calendar
	Hour            int     // UTC hour, 0-23
	Minute          int     // 0-59
	Second          int     // 0-59
	StationPressure float64 // mbar, sea-level reported pressure
	Albedo          float64 // surface reflectivity, 0-1
	Ozone           float64 // total column ozone, atm-cm
	WaterVapor      float64 // precipitable water vapor, cm
	AOT500          float64 // aerosol optical depth at 500 nm
	AOT380          float64 // aerosol optical depth at 380 nm
}

// Outputs holds the results of one clear-sky computation.
type Outputs struct {
	JulianDate             float64 `json:"julian_date"`
	StationPressure        float64 `json:"station_pressure"`          // mbar, elevation-corrected
	EarthSunDistance       float64 `json:"earth_sun_distance"`        // AU
	ZenithAngle            float64 `json:"zenith_angle"`              // degrees
	AirMass                float64 `json:"air_mass"`                  // 0 when the sun is below the horizon
	CorrectedSolarConstant float64 `json:"corrected_solar_constant"`  // W/m², distance-adjusted
	DirectHorizontal       float64 `json:"direct_horizontal"`         // W/m²
	DiffuseHorizontal      float64 `json:"diffuse_horizontal"`        // W/m²
	TotalHorizontal        float64 `json:"total_horizontal"`          // W/m²
}

// Compute runs the full chain: Julian Date, station pressure, solar position,
// then the Bird & Hulstrom transmittance factors and irradiance combination.
// TotalHorizontal always equals DirectHorizontal + DiffuseHorizontal, since
// the diffuse component is derived as total minus direct.
func Compute(in Inputs) (Outputs, error) {
	jd, err := julian.Date(in.Month, in.Day, in.Year, in.Hour, in.Minute, in.Second)
	if err != nil {
		return Outputs{}, &numeric.ComputationError{Term: "julian date", Cause: err}
	}

	p, err := pressure.Station(in.StationPressure, in.Elevation)
	if err != nil {
		return Outputs{}, &numeric.ComputationError{Term: "station pressure", Cause: err}
	}

	zenith, r, err := solarpos.Position(jd, in.Longitude, in.Latitude)
	if err != nil {
		return Outputs{}, &numeric.ComputationError{Term: "solar position", Cause: err}
	}

	rsq := 1.0 / (r * r)

	out := Outputs{
		JulianDate:             jd,
		StationPressure:        p,
		EarthSunDistance:       r,
		ZenithAngle:            zenith,
		CorrectedSolarConstant: rsq * in.SolarConstant,
	}

	// Sun at or below the air-mass horizon: the formula's power term has a
	// non-positive base with a fractional exponent, so short-circuit to zero
	// irradiance rather than produce NaN.
	if zenith >= horizonZenithDeg {
		return out, nil
	}

	zRad := degToRad(zenith)

	// Relative and pressure-corrected air mass (Kasten).
	am := 1.0 / (math.Cos(zRad) + 0.15*math.Pow(93.885-zenith, -1.25))
	amp := am * p / 1013.0

	// Rayleigh scattering.
	tr := math.Exp(-0.0903 * math.Pow(amp, 0.84) * (1.0 + amp - math.Pow(amp, 1.01)))

	// Ozone absorption.
	ozm := in.Ozone * am
	toz := 1.0 - 0.1611*ozm*math.Pow(1.0+139.48*ozm, -0.3035) -
		0.002715*ozm/(1.0+0.044*ozm+0.0003*ozm*ozm)

	// Uniformly mixed gases.
	tm := math.Exp(-0.0127 * math.Pow(amp, 0.26))

	// Water vapor.
	wm := am * in.WaterVapor
	tw := 1.0 - 2.4959*wm/((1.0+math.Pow(79.034*wm, 0.6828))+6.385*wm)

	// Aerosols. 0.16 is 1-0.84, a fixed reflectance constant of the model.
	tau := 0.2758*in.AOT380 + 0.35*in.AOT500
	ta := math.Exp(-math.Pow(tau, 0.873) * (1.0 + tau - math.Pow(tau, 0.7088)) * math.Pow(am, 0.9108))
	taa := 1.0 - 0.1*(1.0-am+math.Pow(am, 1.06))*(1.0-ta)
	if taa == 0 {
		return Outputs{}, &numeric.ComputationError{
			Term:  "aerosol absorptance TAA",
			Cause: &numeric.DomainError{Quantity: "TAA", Value: taa},
		}
	}
	tas := ta / taa
	rs := 0.0685 + (1.0-0.84)*(1.0-tas)

	// Direct irradiance.
	id := rsq * in.SolarConstant * 0.9662 * tr * toz * tm * tw * ta
	idh := id * math.Cos(zRad)

	// Diffuse (sky-scattered) irradiance.
	diffuseDenom := 1.0 - am + math.Pow(am, 1.02)
	if diffuseDenom == 0 {
		return Outputs{}, &numeric.ComputationError{
			Term:  "diffuse scaling denominator",
			Cause: &numeric.DomainError{Quantity: "1 - AM + AM^1.02", Value: diffuseDenom},
		}
	}
	ias := 0.79 * in.SolarConstant * math.Cos(zRad) * toz * tm * tw * taa
	ias *= (0.5*(1.0-tr) + 0.85*(1.0-tas)) / diffuseDenom

	// Ground-sky multiple reflection and totals.
	albedoDenom := 1.0 - in.Albedo*rs
	if albedoDenom == 0 {
		return Outputs{}, &numeric.ComputationError{
			Term:  "albedo reflection denominator",
			Cause: &numeric.DomainError{Quantity: "1 - albedo*Rs", Value: albedoDenom},
		}
	}
	itot := (idh + ias) / albedoDenom
	idif := itot - idh

	for _, q := range []struct {
		name string
		v    float64
	}{
		{"air mass", am},
		{"direct horizontal irradiance", idh},
		{"total horizontal irradiance", itot},
	} {
		if err := numeric.CheckFinite(q.name, q.v); err != nil {
			return Outputs{}, &numeric.ComputationError{Term: q.name, Cause: err}
		}
	}

	out.AirMass = am
	out.DirectHorizontal = idh
	out.DiffuseHorizontal = idif
	out.TotalHorizontal = itot
	return out, nil
}

func degToRad(deg float64) float64 { return deg * math.Pi / 180.0 }
