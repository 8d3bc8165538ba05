package bird

import (
	"fmt"

	"golang.org/x/sync/errgroup"
)

// HourlyResult pairs one hour of the day with its computed outputs.
type HourlyResult struct {
	Hour    int     `json:"hour"`
	Outputs Outputs `json:"outputs"`
}

// DayProfile computes the model for each hour in [hourStart, hourEnd] with
// the given step, holding everything but the hour fixed. Each hour is an
// independent pure computation, so the hours run concurrently; results are
// returned ordered by hour. Below-horizon hours carry zero irradiance.
func DayProfile(in Inputs, hourStart, hourEnd, hourStep int) ([]HourlyResult, error) {
	if hourStep < 1 {
		return nil, fmt.Errorf("hour step must be at least 1, got %d", hourStep)
	}
	if hourStart < 0 || hourEnd > 23 || hourStart > hourEnd {
		return nil, fmt.Errorf("invalid hour range %d-%d", hourStart, hourEnd)
	}

	var hours []int
	for h := hourStart; h <= hourEnd; h += hourStep {
		hours = append(hours, h)
	}

	results := make([]HourlyResult, len(hours))
	var g errgroup.Group
	for i, h := range hours {
		g.Go(func() error {
			hourInput := in
			hourInput.Hour = h
			hourInput.Minute = 0
			hourInput.Second = 0

			out, err := Compute(hourInput)
			if err != nil {
				return fmt.Errorf("hour %d: %w", h, err)
			}
			results[i] = HourlyResult{Hour: h, Outputs: out}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
