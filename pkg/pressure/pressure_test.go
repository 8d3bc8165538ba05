package pressure

import (
	"math"
	"testing"
)

func TestStation(t *testing.T) {
	tests := []struct {
		name      string
		seaLevel  float64
		elevation float64
		expected  float64
		epsilon   float64
	}{
		{
			name:     "sea level is identity",
			seaLevel: 1013.25, elevation: 0,
			expected: 1013.25, epsilon: 0,
		},
		{
			name:     "standard atmosphere at 500m",
			seaLevel: 1013.25, elevation: 500,
			expected: 954.41, epsilon: 0.5,
		},
		{
			name:     "1000m",
			seaLevel: 1013.25, elevation: 1000,
			expected: 898.6, epsilon: 1.0,
		},
		{
			name:     "below sea level raises pressure",
			seaLevel: 1013.25, elevation: -400,
			expected: 1063.0, epsilon: 1.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Station(tt.seaLevel, tt.elevation)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(p-tt.expected) > tt.epsilon {
				t.Errorf("Station(%g, %g) = %.2f, expected %.2f ±%.2f",
					tt.seaLevel, tt.elevation, p, tt.expected, tt.epsilon)
			}
		})
	}
}

func TestStationIdentityAtZeroElevation(t *testing.T) {
	for _, p := range []float64{1.0, 850.0, 1013.25, 1100.0} {
		got, err := Station(p, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != p {
			t.Errorf("Station(%g, 0) = %g, expected exact identity", p, got)
		}
	}
}

func TestStationBelowSeaLevelExceedsInput(t *testing.T) {
	p, err := Station(1013.25, -100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p <= 1013.25 {
		t.Errorf("Station below sea level = %g, expected > 1013.25", p)
	}
}
