package gps

// leadInSamples is the number of copies of the first point placed ahead of the
// route so the receiver can lock before the trajectory starts moving
const leadInSamples = 10

// Upsample resamples a raw trajectory so consecutive points are one sample
// apart when travelling at speed (m/s) and sampled at frequency (Hz). The
// receiver is not modified. A trajectory can only be upsampled once.
func (t *Trajectory) Upsample(speed, frequency float64) (*Trajectory, error) {
	if t.timing != nil {
		return nil, ErrAlreadyTimed
	}
	if speed <= 0 {
		return nil, ErrInvalidSpeed
	}
	if frequency <= 0 {
		return nil, ErrInvalidFrequency
	}
	if len(t.Points) == 0 {
		return nil, ErrEmptyTrajectory
	}

	pointsPerMeter := frequency / speed

	points := make([]Location, 0, leadInSamples+len(t.Points))
	for i := 0; i < leadInSamples; i++ {
		points = append(points, t.Points[0])
	}

	for i := 0; i < len(t.Points)-1; i++ {
		start := t.Points[i]
		points = append(points, start)

		pointsNeeded := int(t.Distances[i]*pointsPerMeter) - 1
		if pointsNeeded <= 0 {
			continue
		}

		from := start.Geodetic()
		to := t.Points[i+1].Geodetic()
		latDelta := (to.Latitude - from.Latitude) / float64(pointsNeeded)
		lonDelta := (to.Longitude - from.Longitude) / float64(pointsNeeded)
		altDelta := (to.Altitude - from.Altitude) / float64(pointsNeeded)

		for j := 1; j < pointsNeeded; j++ {
			points = append(points, NewLocation(
				from.Latitude+float64(j)*latDelta,
				from.Longitude+float64(j)*lonDelta,
				from.Altitude+float64(j)*altDelta,
			))
		}
	}
	points = append(points, t.Points[len(t.Points)-1])

	step := speed / frequency
	distances := make([]float64, len(points)-1)
	for i := range distances {
		distances[i] = step
	}

	return &Trajectory{
		Points:    points,
		Distances: distances,
		timing:    &Timing{Speed: speed, Frequency: frequency},
	}, nil
}
