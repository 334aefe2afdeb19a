// Package util contains misc internal utilities.
package util

// Limiter is a min/max range for a single axis.  The zero value admits
// only zero.
type Limiter struct {
	Min float64 `yaml:"Min" json:"min"`
	Max float64 `yaml:"Max" json:"max"`
}

// Check returns true if v is within the limits, inclusive on both ends
func (l Limiter) Check(v float64) bool {
	return v >= l.Min && v <= l.Max
}

// Clamp returns v moved to the nearest value inside the limits
func (l Limiter) Clamp(v float64) float64 {
	if v > l.Max {
		v = l.Max
	}
	if v < l.Min {
		v = l.Min
	}
	return v
}
