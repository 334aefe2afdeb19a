package pivot

// DOFBoundaries are the per-axis limits a holder may pivot within.
// For each axis min <= max is expected but not enforced; an axis with
// min > max contains no pose, which is a valid though degenerate state
// (e.g. an uncalibrated holder).
type DOFBoundaries struct {
	PitchMin  float64 `json:"pitchMin"`
	PitchMax  float64 `json:"pitchMax"`
	YawMin    float64 `json:"yawMin"`
	YawMax    float64 `json:"yawMax"`
	RollMin   float64 `json:"rollMin"`
	RollMax   float64 `json:"rollMax"`
	TransZMin float64 `json:"transZMin"`
	TransZMax float64 `json:"transZMax"`
}

// PoseInside returns true if every coordinate of p lies within the
// boundaries, inclusive on both ends.
func (b DOFBoundaries) PoseInside(p DOFPose) bool {
	return p.Pitch >= b.PitchMin && p.Pitch <= b.PitchMax &&
		p.Yaw >= b.YawMin && p.Yaw <= b.YawMax &&
		p.Roll >= b.RollMin && p.Roll <= b.RollMax &&
		p.TransZ >= b.TransZMin && p.TransZ <= b.TransZMax
}

// Clamp returns the pose inside the boundaries nearest to p, moving
// each coordinate independently.  Degenerate axes (min > max) collapse
// to the min.
func (b DOFBoundaries) Clamp(p DOFPose) DOFPose {
	return DOFPose{
		Pitch:  clamp(p.Pitch, b.PitchMin, b.PitchMax),
		Yaw:    clamp(p.Yaw, b.YawMin, b.YawMax),
		Roll:   clamp(p.Roll, b.RollMin, b.RollMax),
		TransZ: clamp(p.TransZ, b.TransZMin, b.TransZMax),
	}
}

func clamp(v, min, max float64) float64 {
	if v > max {
		v = max
	}
	if v < min {
		v = min
	}
	return v
}
