/*Package pivot defines the control plane data model for pivoting
laparoscope holders and the contract their drivers satisfy.

A pivoting movement rotates an instrument about a fixed entry point
(pitch, yaw, roll) while optionally translating it along the insertion
axis (transZ).  The rotational values are radians.  The unit of transZ
is left to the driver; every driver in this repository uses millimeters.

The package is a passive data/interface layer.  It spawns no work and
holds no connections; those live in the driver packages (sim, endurolap,
feetech).
*/
package pivot

import (
	"fmt"
	"math"
)

// DOFPose is a pose across the four degrees of freedom of a pivoting
// mechanism.  It is a pure value; two poses are interchangeable when
// their fields are equal.  Exact comparison is the built-in == on the
// struct.  Comparisons involving NaN follow IEEE-754 and are otherwise
// unspecified.
type DOFPose struct {
	// Pitch is the rotation about the horizontal axis, vertical
	// movement in the image, radians
	Pitch float64 `json:"pitch"`

	// Yaw is the rotation about the vertical axis, horizontal movement
	// in the image, radians
	Yaw float64 `json:"yaw"`

	// Roll is the rotation about the instrument axis, rotational
	// movement in the image, radians
	Roll float64 `json:"roll"`

	// TransZ is the translation along the insertion axis, zoom,
	// driver-defined length unit
	TransZ float64 `json:"transZ"`
}

// String renders the pose for logs and diagnostics.  The format is
// stable in field order and labels; the number rendering is default
// formatting and not meant for round trip parsing.
func (p DOFPose) String() string {
	return fmt.Sprintf("pitch:%v yaw:%v roll:%v transZ:%v", p.Pitch, p.Yaw, p.Roll, p.TransZ)
}

// CloseTo compares two poses with tolerance.  The rotational distance
// is the Euclidean norm of the (pitch, yaw, roll) deltas and must be
// strictly below rotEps; the absolute transZ delta must be strictly
// below transZEps.  Both conditions must hold.  Because the comparisons
// are strict, epsilons of zero or below make CloseTo always false.
func (p DOFPose) CloseTo(other DOFPose, rotEps, transZEps float64) bool {
	dPitch := p.Pitch - other.Pitch
	dYaw := p.Yaw - other.Yaw
	dRoll := p.Roll - other.Roll
	rotDist := math.Sqrt(dPitch*dPitch + dYaw*dYaw + dRoll*dRoll)
	transZDist := math.Abs(p.TransZ - other.TransZ)
	return rotDist < rotEps && transZDist < transZEps
}
