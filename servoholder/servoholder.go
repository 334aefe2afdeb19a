/*Package servoholder drives a pivoting holder built from Feetech STS
bus servos, one per degree of freedom, and enables more pleasant HTTP
control.

The geometry lives entirely in the calibration: each axis maps a raw
servo count range to an engineering unit range, radians for the
rotational axes and millimeters for the translation stage.  Boundaries
come from the calibration rather than the hardware.

Policy notes.  Targets outside the boundaries are clamped to the
nearest reachable pose rather than rejected; the bus servos hold no
notion of software limits, so clamping here is what keeps the scope
inside its cone.  Commands are refused with pivot.ErrNotReady until an
initial pose and initial boundaries have been read.
*/
package servoholder

import (
	"context"
	"fmt"
	"sync"

	"github.com/hipsterbrown/feetech-servo/feetech"

	"github.com/opensurg/pivotctl/pivot"
)

// Holder represents a bus servo driven holder
type Holder struct {
	pivot.Readiness

	bus   *feetech.Bus
	group *feetech.ServoGroup
	cal   Calibration

	mu   sync.Mutex
	last pivot.DOFPose
}

// New returns a new Holder speaking to servos on the given serial port
func New(port string, cal Calibration) (*Holder, error) {
	bus, err := feetech.NewBus(feetech.BusConfig{
		Port:     port,
		BaudRate: 1_000_000,
		Protocol: feetech.ProtocolSTS,
	})
	if err != nil {
		return nil, fmt.Errorf("open servo bus: %w", err)
	}
	group := feetech.NewServoGroupByIDs(bus, cal.IDs()...)
	return &Holder{bus: bus, group: group, cal: cal}, nil
}

// Enable enables torque on all servos
func (h *Holder) Enable() error {
	return h.group.EnableAll(context.Background())
}

// Disable disables torque on all servos
func (h *Holder) Disable() error {
	return h.group.DisableAll(context.Background())
}

// Close releases the serial port
func (h *Holder) Close() error {
	if h.bus == nil {
		return nil
	}
	return h.bus.Close()
}

// CurrentDOFPose reads the servo positions and converts them through
// the calibration.  The first successful read arms the pose half of
// readiness.
func (h *Holder) CurrentDOFPose() (pivot.DOFPose, error) {
	raw, err := h.group.Positions(context.Background())
	if err != nil {
		return pivot.DOFPose{}, fmt.Errorf("%w: read servo positions: %w", pivot.ErrNoData, err)
	}
	for _, id := range h.cal.IDs() {
		if _, ok := raw[id]; !ok {
			return pivot.DOFPose{}, fmt.Errorf("%w: servo %d missing from bus response", pivot.ErrNoData, id)
		}
	}
	pose := pivot.DOFPose{
		Pitch:  h.cal.Pitch.ToUnits(raw[h.cal.Pitch.ID]),
		Yaw:    h.cal.Yaw.ToUnits(raw[h.cal.Yaw.ID]),
		Roll:   h.cal.Roll.ToUnits(raw[h.cal.Roll.ID]),
		TransZ: h.cal.TransZ.ToUnits(raw[h.cal.TransZ.ID]),
	}
	h.mu.Lock()
	h.last = pose
	h.mu.Unlock()
	h.MarkPoseReady()
	return pose, nil
}

// DOFBoundaries returns the travel limits from the calibration.  The
// first call arms the boundary half of readiness.
func (h *Holder) DOFBoundaries() (pivot.DOFBoundaries, error) {
	h.MarkBoundariesReady()
	return h.cal.Boundaries(), nil
}

// SetTargetDOFPose commands the servos toward target.  Targets outside
// the boundaries are clamped to the nearest reachable pose.
func (h *Holder) SetTargetDOFPose(target pivot.DOFPose) error {
	if !h.Ready() {
		return pivot.ErrNotReady
	}
	target = h.cal.Boundaries().Clamp(target)
	positions := feetech.PositionMap{
		h.cal.Pitch.ID:  h.cal.Pitch.ToRaw(target.Pitch),
		h.cal.Yaw.ID:    h.cal.Yaw.ToRaw(target.Yaw),
		h.cal.Roll.ID:   h.cal.Roll.ToRaw(target.Roll),
		h.cal.TransZ.ID: h.cal.TransZ.ToRaw(target.TransZ),
	}
	if err := h.group.SetPositions(context.Background(), positions); err != nil {
		return fmt.Errorf("write servo positions: %w", err)
	}
	return nil
}

// Stop retargets the servos at the last pose read, halting motion
func (h *Holder) Stop() error {
	h.mu.Lock()
	pose := h.last
	h.mu.Unlock()
	if !h.Ready() {
		return pivot.ErrNotReady
	}
	return h.SetTargetDOFPose(pose)
}

var _ pivot.Controller = (*Holder)(nil)
var _ pivot.ReadyChecker = (*Holder)(nil)
var _ pivot.Stopper = (*Holder)(nil)
