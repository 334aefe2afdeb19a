package endurolap

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/opensurg/pivotctl/pivot"
)

// MockFirmware emulates an EnduroLap controller on an in-memory pipe.
// Writes are parsed as framed commands and replies are queued for the
// next Read.  Moves converge instantly.
type MockFirmware struct {
	mu     sync.Mutex
	in     bytes.Buffer
	out    bytes.Buffer
	pose   pivot.DOFPose
	bounds pivot.DOFBoundaries
}

// NewMockFirmware returns a mock with typical laparoscope holder limits
func NewMockFirmware() *MockFirmware {
	return &MockFirmware{
		bounds: pivot.DOFBoundaries{
			PitchMin: -1.2, PitchMax: 1.2,
			YawMin: -1.2, YawMax: 1.2,
			RollMin: -3.14, RollMax: 3.14,
			TransZMin: 0, TransZMax: 120,
		},
	}
}

// NewMock returns a Holder backed by a MockFirmware
func NewMock() *Holder {
	mock := NewMockFirmware()
	return newHolder(func() (io.ReadWriteCloser, error) { return mock, nil })
}

func (m *MockFirmware) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.in.Write(p)
	for {
		line, err := m.in.ReadBytes(Terminator)
		if err != nil {
			// partial frame, keep it buffered
			m.in.Write(line)
			break
		}
		m.respond(bytes.TrimSuffix(line, []byte{Terminator}))
	}
	return len(p), nil
}

func (m *MockFirmware) Read(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.out.Read(p)
}

// Close is a no-op for the mock
func (m *MockFirmware) Close() error {
	return nil
}

func (m *MockFirmware) reply(body string) {
	m.out.Write(frame(body))
	m.out.WriteByte(Terminator)
}

func (m *MockFirmware) respond(raw []byte) {
	body, err := unframe(raw)
	if err != nil {
		m.reply("ERR,9")
		return
	}
	switch {
	case body == "POS":
		m.reply(fmt.Sprintf("POS,%.6f,%.6f,%.6f,%.6f",
			m.pose.Pitch, m.pose.Yaw, m.pose.Roll, m.pose.TransZ))
	case body == "LIM":
		b := m.bounds
		m.reply(fmt.Sprintf("LIM,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f",
			b.PitchMin, b.PitchMax, b.YawMin, b.YawMax,
			b.RollMin, b.RollMax, b.TransZMin, b.TransZMax))
	case strings.HasPrefix(body, "MOV,"):
		pieces := strings.Split(body, ",")[1:]
		if len(pieces) != 4 {
			m.reply("ERR,1")
			return
		}
		var f [4]float64
		for i, s := range pieces {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				m.reply("ERR,1")
				return
			}
			f[i] = v
		}
		target := pivot.DOFPose{Pitch: f[0], Yaw: f[1], Roll: f[2], TransZ: f[3]}
		if !m.bounds.PoseInside(target) {
			m.reply("ERR,2")
			return
		}
		m.pose = target
		m.reply("OK")
	case body == "STP":
		m.reply("OK")
	default:
		m.reply("ERR,1")
	}
}
