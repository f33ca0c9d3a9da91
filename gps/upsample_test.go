package gps

import (
	"errors"
	"math"
	"testing"
)

func TestUpsamplePointCount(t *testing.T) {
	tests := []struct {
		name       string
		distances  []float64
		speed      float64
		frequency  float64
		wantPoints int
	}{
		// 10 lead-in + 2 segment starts + (5-1-1) + (10-1-1) interpolated + final
		{"one point per meter", []float64{5, 10}, 10, 10, 24},
		{"segments too short to interpolate", []float64{5, 10}, 10, 1, 13},
		{"single point", nil, 1, 10, 11},
		{"exactly two samples", []float64{2}, 1, 1, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := createTestTrajectory(t, tt.distances...)

			timed, err := raw.Upsample(tt.speed, tt.frequency)
			if err != nil {
				t.Fatalf("Failed to upsample: %v", err)
			}

			if timed.Len() != tt.wantPoints {
				t.Errorf("Expected %d points, got %d", tt.wantPoints, timed.Len())
			}
			if len(timed.Distances) != tt.wantPoints-1 {
				t.Errorf("Expected %d distances, got %d", tt.wantPoints-1, len(timed.Distances))
			}
			for i, d := range timed.Distances {
				if d != tt.speed/tt.frequency {
					t.Errorf("Distance %d: expected %f, got %f", i, tt.speed/tt.frequency, d)
					break
				}
			}
		})
	}
}

func TestUpsampleLeadInAndEndpoints(t *testing.T) {
	raw := createTestTrajectory(t, 5, 10)

	timed, err := raw.Upsample(10, 10)
	if err != nil {
		t.Fatalf("Failed to upsample: %v", err)
	}

	for i := 0; i < leadInSamples+1; i++ {
		if timed.Points[i] != raw.Points[0] {
			t.Errorf("Point %d should be the first route point", i)
		}
	}
	if timed.End() != raw.End() {
		t.Error("Last point should be the last route point")
	}

	// Second route point follows the first segment's interpolated samples
	if timed.Points[leadInSamples+4] != raw.Points[1] {
		t.Error("Second route point should follow three interpolated samples")
	}
}

func TestUpsampleInterpolatesLinearly(t *testing.T) {
	raw := createTestTrajectory(t, 4)

	timed, err := raw.Upsample(1, 1)
	if err != nil {
		t.Fatalf("Failed to upsample: %v", err)
	}

	from := raw.Points[0].Geodetic()
	to := raw.Points[1].Geodetic()
	// pointsNeeded = 3, so samples at 1/3 and 2/3 of the segment
	for j := 1; j <= 2; j++ {
		got := timed.Points[leadInSamples+j].Geodetic()
		wantLat := from.Latitude + float64(j)*(to.Latitude-from.Latitude)/3
		if math.Abs(got.Latitude-wantLat) > 1e-12 {
			t.Errorf("Sample %d: expected latitude %.12f, got %.12f", j, wantLat, got.Latitude)
		}
		if got.Longitude != from.Longitude {
			t.Errorf("Sample %d: expected longitude %f, got %f", j, from.Longitude, got.Longitude)
		}
	}
}

func TestUpsampleKeepsAltitudeOnFlatSegment(t *testing.T) {
	start := NewLocation(37.0, -122.0, 100)
	end := NewLocation(37.1, -122.0, 100)
	raw, err := NewTrajectory([]Location{start, end}, []float64{11000})
	if err != nil {
		t.Fatalf("Failed to create trajectory: %v", err)
	}

	timed, err := raw.Upsample(1000, 1)
	if err != nil {
		t.Fatalf("Failed to upsample: %v", err)
	}

	// pointsNeeded = 10, so sample 5 is the segment midpoint
	mid := timed.Points[leadInSamples+5]
	if mid.Altitude() != 100 {
		t.Errorf("Expected altitude 100 on a flat segment, got %f", mid.Altitude())
	}
	if want := 37.05; math.Abs(mid.Latitude()-want) > 1e-9 {
		t.Errorf("Expected latitude %.12f, got %.12f", want, mid.Latitude())
	}

	// The motion file position is the conversion of the interpolated geodetic point
	want := ToCartesian(mid.Latitude(), mid.Longitude(), 100)
	if mid.Cartesian() != want {
		t.Errorf("Expected ECEF %+v, got %+v", want, mid.Cartesian())
	}
}

func TestUpsampleDoesNotModifyReceiver(t *testing.T) {
	raw := createTestTrajectory(t, 5, 10)

	if _, err := raw.Upsample(1, 10); err != nil {
		t.Fatalf("Failed to upsample: %v", err)
	}

	if raw.Len() != 3 || len(raw.Distances) != 2 || raw.IsTimed() {
		t.Error("Upsample should leave the raw trajectory untouched")
	}
}

func TestUpsampleErrors(t *testing.T) {
	raw := createTestTrajectory(t, 5)

	if _, err := raw.Upsample(0, 10); !errors.Is(err, ErrInvalidSpeed) {
		t.Errorf("Expected ErrInvalidSpeed, got %v", err)
	}
	if _, err := raw.Upsample(1, 0); !errors.Is(err, ErrInvalidFrequency) {
		t.Errorf("Expected ErrInvalidFrequency, got %v", err)
	}

	timed, err := raw.Upsample(1, 10)
	if err != nil {
		t.Fatalf("Failed to upsample: %v", err)
	}
	if _, err := timed.Upsample(1, 10); !errors.Is(err, ErrAlreadyTimed) {
		t.Errorf("Expected ErrAlreadyTimed, got %v", err)
	}
}

func TestTrajectoryDuration(t *testing.T) {
	raw := createTestTrajectory(t, 5, 10)
	if raw.Duration() != 0 {
		t.Errorf("Raw trajectory should have no duration, got %f", raw.Duration())
	}

	timed, err := raw.Upsample(10, 10)
	if err != nil {
		t.Fatalf("Failed to upsample: %v", err)
	}
	if got := timed.Duration(); got < 2.29 || got > 2.31 {
		t.Errorf("Expected 2.3 seconds, got %f", got)
	}
}
