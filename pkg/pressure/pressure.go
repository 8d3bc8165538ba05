// Package pressure converts sea-level atmospheric pressure readings to
// station pressure at a given elevation.
package pressure

import (
	"math"

	"github.com/solarwx/solarwx/pkg/numeric"
)

// Station converts a sea-level pressure (mbar) to the pressure at the given
// elevation (meters) using an exponential decay approximation. Negative
// elevations (below sea level) are valid and yield a pressure above the
// sea-level value.
func Station(seaLevelPressure, elevationM float64) (float64, error) {
	h := elevationM / 1000.0
	p := seaLevelPressure * math.Exp(-0.119*h-0.0013*h*h)

	if err := numeric.CheckFinite("station pressure", p); err != nil {
		return 0, err
	}
	return p, nil
}
