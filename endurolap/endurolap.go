/*Package endurolap provides a driver for EnduroLap pivoting holder
controllers and enables more pleasant HTTP control.

The controller speaks a framed ASCII protocol over RS232 or a TCP
terminal server.  Each frame is $<body>*<crc> followed by a carriage
return, where the crc is four hex digits of CRC-16/XMODEM over the
body.  The bodies relevant to this driver:

	MOV,<pitch>,<yaw>,<roll>,<transZ>   begin a move, replies OK or ERR,<code>
	POS                                 replies POS,<pitch>,<yaw>,<roll>,<transZ>
	LIM                                 replies LIM,<pMin>,<pMax>,<yMin>,<yMax>,<rMin>,<rMax>,<zMin>,<zMax>
	STP                                 halt in place, replies OK

Angles are radians and transZ is millimeters.

Policy notes.  The driver rejects targets outside the holder's
boundaries with pivot.ErrOutOfBounds instead of clamping, and refuses
commands with pivot.ErrNotReady until an initial pose and initial
boundaries have been read.  The firmware accepts a limited command
rate; the driver throttles itself with a token bucket rather than
letting the firmware drop frames.
*/
package endurolap

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tarm/serial"
	"golang.org/x/time/rate"

	"github.com/opensurg/pivotctl/comm"
	"github.com/opensurg/pivotctl/pivot"
)

const (
	// cmdsPerSecond is the sustained command rate the firmware accepts
	cmdsPerSecond = 20

	// cmdBurst is the number of commands the firmware buffers
	cmdBurst = 5
)

// ErrFirmware is generated when the controller answers ERR,<code>
type ErrFirmware struct {
	Code int
}

func (e ErrFirmware) Error() string {
	var reason string
	switch e.Code {
	case 1:
		reason = "unknown command"
	case 2:
		reason = "target outside mechanical limits"
	case 3:
		reason = "holder not homed"
	case 9:
		reason = "checksum mismatch"
	default:
		reason = "unrecognized code"
	}
	return fmt.Sprintf("firmware error %d: %s", e.Code, reason)
}

// Holder represents an EnduroLap holder controller
type Holder struct {
	pivot.Readiness

	pool    *comm.Pool
	limiter *rate.Limiter
	timeout time.Duration

	mu         sync.Mutex
	bounds     pivot.DOFBoundaries
	haveBounds bool
}

// New returns a new Holder.  addr is a host:port for terminal server
// connections or a device path for RS232 when connectSerial is true.
func New(addr string, connectSerial bool) *Holder {
	var maker comm.CreationFunc
	if connectSerial {
		maker = comm.SerialConnMaker(&serial.Config{Name: addr, Baud: 115200})
	} else {
		maker = comm.BackingOffTCPConnMaker(addr, 3*time.Second)
	}
	return newHolder(maker)
}

func newHolder(maker comm.CreationFunc) *Holder {
	return &Holder{
		pool:    comm.NewPool(1, 30*time.Second, maker),
		limiter: rate.NewLimiter(rate.Limit(cmdsPerSecond), cmdBurst),
		timeout: 10 * time.Second,
	}
}

// writeRead sends one framed command and returns the response body
func (h *Holder) writeRead(cmd string) (string, error) {
	err := h.limiter.Wait(context.Background())
	if err != nil {
		return "", err
	}
	conn, err := h.pool.Get()
	if err != nil {
		return "", err
	}
	wrap := comm.NewTimeout(conn, h.timeout)

	msg := append(frame(cmd), Terminator)
	_, werr := wrap.Write(msg)
	if werr != nil {
		h.pool.Destroy(conn)
		return "", werr
	}
	raw, rerr := bufio.NewReader(wrap).ReadBytes(Terminator)
	h.pool.ReturnWithError(conn, rerr)
	if rerr != nil {
		return "", rerr
	}
	return unframe(bytes.TrimSuffix(raw, []byte{Terminator}))
}

// command sends a framed command and expects an OK response
func (h *Holder) command(cmd string) error {
	resp, err := h.writeRead(cmd)
	if err != nil {
		return err
	}
	return okOrErr(resp)
}

func okOrErr(resp string) error {
	if resp == "OK" {
		return nil
	}
	if strings.HasPrefix(resp, "ERR,") {
		code, err := strconv.Atoi(resp[4:])
		if err != nil {
			return fmt.Errorf("unintelligible error response %q", resp)
		}
		return ErrFirmware{Code: code}
	}
	return fmt.Errorf("expected OK, got %q", resp)
}

// parseFloats splits a response body after its tag into fields
func parseFloats(resp, tag string, n int) ([]float64, error) {
	if !strings.HasPrefix(resp, tag+",") {
		if err := okOrErr(resp); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("expected %s response, got %q", tag, resp)
	}
	pieces := strings.Split(resp, ",")[1:]
	if len(pieces) != n {
		return nil, fmt.Errorf("expected %d fields in %s response, got %d", n, tag, len(pieces))
	}
	out := make([]float64, n)
	for i, s := range pieces {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// CurrentDOFPose queries the holder for its pose.  The first successful
// read arms the pose half of readiness.  Failures wrap
// pivot.ErrNoData and the returned pose must not be consumed.
func (h *Holder) CurrentDOFPose() (pivot.DOFPose, error) {
	resp, err := h.writeRead("POS")
	if err != nil {
		return pivot.DOFPose{}, fmt.Errorf("%w: %w", pivot.ErrNoData, err)
	}
	f, err := parseFloats(resp, "POS", 4)
	if err != nil {
		return pivot.DOFPose{}, fmt.Errorf("%w: %w", pivot.ErrNoData, err)
	}
	h.MarkPoseReady()
	return pivot.DOFPose{Pitch: f[0], Yaw: f[1], Roll: f[2], TransZ: f[3]}, nil
}

// DOFBoundaries queries the holder for its limits.  The first
// successful read arms the boundary half of readiness; the limits are
// also cached for target validation.
func (h *Holder) DOFBoundaries() (pivot.DOFBoundaries, error) {
	resp, err := h.writeRead("LIM")
	if err != nil {
		return pivot.DOFBoundaries{}, fmt.Errorf("%w: %w", pivot.ErrNoData, err)
	}
	f, err := parseFloats(resp, "LIM", 8)
	if err != nil {
		return pivot.DOFBoundaries{}, fmt.Errorf("%w: %w", pivot.ErrNoData, err)
	}
	b := pivot.DOFBoundaries{
		PitchMin: f[0], PitchMax: f[1],
		YawMin: f[2], YawMax: f[3],
		RollMin: f[4], RollMax: f[5],
		TransZMin: f[6], TransZMax: f[7],
	}
	h.mu.Lock()
	h.bounds = b
	h.haveBounds = true
	h.mu.Unlock()
	h.MarkBoundariesReady()
	return b, nil
}

// SetTargetDOFPose commands a move.  The call returns once the firmware
// acknowledges; motion completes asynchronously and is observed through
// CurrentDOFPose.  Targets outside the boundaries are rejected with
// pivot.ErrOutOfBounds.
func (h *Holder) SetTargetDOFPose(target pivot.DOFPose) error {
	if !h.Ready() {
		return pivot.ErrNotReady
	}
	h.mu.Lock()
	bounds, have := h.bounds, h.haveBounds
	h.mu.Unlock()
	if have && !bounds.PoseInside(target) {
		return pivot.ErrOutOfBounds
	}
	cmd := fmt.Sprintf("MOV,%.6f,%.6f,%.6f,%.6f",
		target.Pitch, target.Yaw, target.Roll, target.TransZ)
	return h.command(cmd)
}

// Stop halts the holder in place; the current pose becomes the target
func (h *Holder) Stop() error {
	return h.command("STP")
}

var _ pivot.Controller = (*Holder)(nil)
var _ pivot.ReadyChecker = (*Holder)(nil)
var _ pivot.Stopper = (*Holder)(nil)
