package comm

import (
	"io"
	"time"

	"github.com/tarm/serial"
)

// BackingOffTCPConnMaker returns a CreationFunc which dials addr with
// the RemoteDevice backoff schedule
func BackingOffTCPConnMaker(addr string, timeout time.Duration) CreationFunc {
	return func() (io.ReadWriteCloser, error) {
		rd := NewRemoteDevice(addr, nil)
		err := rd.Open()
		if err != nil {
			return nil, err
		}
		return rd.Conn, nil
	}
}

// SerialConnMaker returns a CreationFunc which opens the serial port
// described by cfg
func SerialConnMaker(cfg *serial.Config) CreationFunc {
	return func() (io.ReadWriteCloser, error) {
		return serial.OpenPort(cfg)
	}
}

type deadliner interface {
	SetReadDeadline(time.Time) error
	SetWriteDeadline(time.Time) error
}

// timeoutRW refreshes the deadline on the underlying connection before
// every read and write, so pooled connections do not expire while idle
type timeoutRW struct {
	rw      io.ReadWriter
	timeout time.Duration
}

// NewTimeout wraps rw so each Read and Write gets a fresh deadline.
// ReadWriters without deadline support pass through unchanged.
func NewTimeout(rw io.ReadWriter, timeout time.Duration) io.ReadWriter {
	if _, ok := rw.(deadliner); !ok {
		return rw
	}
	return &timeoutRW{rw: rw, timeout: timeout}
}

func (t *timeoutRW) Read(p []byte) (int, error) {
	t.rw.(deadliner).SetReadDeadline(time.Now().Add(t.timeout))
	return t.rw.Read(p)
}

func (t *timeoutRW) Write(p []byte) (int, error) {
	t.rw.(deadliner).SetWriteDeadline(time.Now().Add(t.timeout))
	return t.rw.Write(p)
}

// ReturnWithError restores a connection to the pool, or destroys it if
// the last operation on it errored
func (p *Pool) ReturnWithError(rw io.ReadWriter, err error) {
	if err != nil {
		p.Destroy(rw)
		return
	}
	p.Put(rw)
}
