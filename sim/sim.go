// Package sim provides a simulated pivoting holder for development and
// acceptance testing without hardware on the bench.
//
// The simulated holder clamps out-of-boundary targets to the nearest
// reachable pose rather than rejecting them, and it gates commands on
// readiness: SetTargetDOFPose returns pivot.ErrNotReady until both
// CurrentDOFPose and DOFBoundaries have been consulted at least once.
package sim

import (
	"sync"
	"time"

	"github.com/opensurg/pivotctl/pivot"
)

const (
	simServoPeriod    = 5 * time.Millisecond
	simServoPeriodSec = 5e-3

	// defaultRotRate is the simulated slew rate of the rotational axes, rad/s
	defaultRotRate = 0.5

	// defaultTransRate is the simulated insertion rate, length units/s
	defaultTransRate = 20.0
)

// Holder is a simulated pivoting holder.  It is safe for concurrent
// use.  Create one with NewHolder.
type Holder struct {
	pivot.Readiness

	mu     sync.Mutex
	bounds pivot.DOFBoundaries
	pose   pivot.DOFPose
	target pivot.DOFPose
	moving bool
	cancel chan struct{}

	rotRate, transRate float64
}

// NewHolder creates a simulated holder confined to the given
// boundaries, at rest at the clamped zero pose.
func NewHolder(bounds pivot.DOFBoundaries) *Holder {
	return &Holder{
		bounds:    bounds,
		pose:      bounds.Clamp(pivot.DOFPose{}),
		rotRate:   defaultRotRate,
		transRate: defaultTransRate,
	}
}

// SetRates overrides the simulated slew rates, radians and length units
// per second.  Tests use this to converge quickly.
func (h *Holder) SetRates(rot, trans float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rotRate = rot
	h.transRate = trans
}

// CurrentDOFPose returns the simulated pose.  It never fails; the first
// call arms the pose half of readiness.
func (h *Holder) CurrentDOFPose() (pivot.DOFPose, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.MarkPoseReady()
	return h.pose, nil
}

// DOFBoundaries returns the simulated boundaries.  It never fails; the
// first call arms the boundary half of readiness.
func (h *Holder) DOFBoundaries() (pivot.DOFBoundaries, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.MarkBoundariesReady()
	return h.bounds, nil
}

// SetTargetDOFPose begins moving toward the target and returns
// immediately.  Targets outside the boundaries are clamped.  Until the
// holder is ready the command is refused with pivot.ErrNotReady.
func (h *Holder) SetTargetDOFPose(target pivot.DOFPose) error {
	if !h.Ready() {
		return pivot.ErrNotReady
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil {
		close(h.cancel)
	}
	h.target = h.bounds.Clamp(target)
	h.moving = true
	h.cancel = make(chan struct{})
	go h.moveTo(h.target, h.cancel)
	return nil
}

// Stop halts the in-flight movement, if any; the holder holds its
// current pose.
func (h *Holder) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil {
		close(h.cancel)
		h.cancel = nil
	}
	h.moving = false
	return nil
}

// Moving returns true while the holder is converging on a target
func (h *Holder) Moving() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.moving
}

// moveTo steps every axis toward the target each servo period until all
// four have converged or the move is cancelled.
func (h *Holder) moveTo(target pivot.DOFPose, cancel chan struct{}) {
	tick := time.NewTicker(simServoPeriod)
	defer tick.Stop()
	for {
		select {
		case <-cancel:
			return
		case <-tick.C:
			h.mu.Lock()
			if h.cancel != cancel {
				// superseded or stopped between ticks
				h.mu.Unlock()
				return
			}
			rotStep := h.rotRate * simServoPeriodSec
			transStep := h.transRate * simServoPeriodSec
			h.pose.Pitch = step(h.pose.Pitch, target.Pitch, rotStep)
			h.pose.Yaw = step(h.pose.Yaw, target.Yaw, rotStep)
			h.pose.Roll = step(h.pose.Roll, target.Roll, rotStep)
			h.pose.TransZ = step(h.pose.TransZ, target.TransZ, transStep)
			done := h.pose == target
			if done && h.cancel == cancel {
				h.moving = false
				h.cancel = nil
			}
			h.mu.Unlock()
			if done {
				return
			}
		}
	}
}

// step moves cur toward want by at most delta, landing exactly on want
// at the end so convergence detection can use exact comparison
func step(cur, want, delta float64) float64 {
	switch {
	case cur < want:
		cur += delta
		if cur > want {
			cur = want
		}
	case cur > want:
		cur -= delta
		if cur < want {
			cur = want
		}
	}
	return cur
}

var _ pivot.Controller = (*Holder)(nil)
var _ pivot.ReadyChecker = (*Holder)(nil)
var _ pivot.Stopper = (*Holder)(nil)
