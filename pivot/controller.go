package pivot

import (
	"errors"
	"sync"
)

var (
	// ErrNotReady is returned by drivers that gate commands on
	// readiness when a command arrives before both an initial pose and
	// initial boundaries have been obtained
	ErrNotReady = errors.New("holder is not ready, no initial pose or boundaries yet")

	// ErrOutOfBounds is returned by reject-policy drivers for a target
	// pose outside the holder's boundaries
	ErrOutOfBounds = errors.New("target pose violates holder boundaries, aborted")

	// ErrNoData wraps read failures; the accompanying value must not be
	// consumed.  Drivers return it from CurrentDOFPose and DOFBoundaries
	// when the underlying read did not produce an answer.
	ErrNoData = errors.New("read failed, no data")
)

// Controller is the contract every pivoting holder backend satisfies.
//
// SetTargetDOFPose begins moving the mechanism toward the target and
// returns without waiting for convergence; there is no ordering
// guarantee between a command and the pose later observed through
// CurrentDOFPose.  Callers poll CurrentDOFPose, typically with
// DOFPose.CloseTo, to detect convergence.
//
// Each operation reports failure through its error; when the error is
// non-nil the returned value must not be consumed.  Read failures wrap
// ErrNoData.  Whether a target
// outside the boundaries is rejected or clamped is driver policy and
// documented per driver.
type Controller interface {
	// SetTargetDOFPose requests a move to the given pose
	SetTargetDOFPose(DOFPose) error

	// CurrentDOFPose returns the best current estimate of the pose
	CurrentDOFPose() (DOFPose, error)

	// DOFBoundaries returns the limits the holder may pivot within
	DOFBoundaries() (DOFBoundaries, error)
}

// Stopper is an optional capability to halt an in-flight movement where
// the target is held
type Stopper interface {
	Stop() error
}

// ReadyChecker reports whether a holder is safe to command.  Every
// driver satisfies it through an embedded Readiness.
type ReadyChecker interface {
	Ready() bool
}

// Readiness tracks whether a driver has obtained an initial pose and
// initial boundaries.  Both flags start false and only ever move to
// true; there is no reset for the lifetime of a driver, reconnection
// constructs a new one.  Drivers embed Readiness and mark each flag the
// first time the corresponding read succeeds.
//
// Readiness is safe for concurrent use, so a driver being polled over
// HTTP while its read loop marks flags needs no extra locking for it.
type Readiness struct {
	mu               sync.RWMutex
	pose, boundaries bool
}

// MarkPoseReady records that an initial pose has been obtained
func (r *Readiness) MarkPoseReady() {
	r.mu.Lock()
	r.pose = true
	r.mu.Unlock()
}

// MarkBoundariesReady records that initial boundaries have been obtained
func (r *Readiness) MarkBoundariesReady() {
	r.mu.Lock()
	r.boundaries = true
	r.mu.Unlock()
}

// Ready is true once both an initial pose and initial boundaries have
// been obtained.  Until then commands should not be issued.
func (r *Readiness) Ready() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pose && r.boundaries
}
