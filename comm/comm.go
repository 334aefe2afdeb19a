/*Package comm provides the transport link between driver packages and
holder hardware.

A RemoteDevice wraps one serial or TCP connection with
terminator-framed Send/Recv.  Drivers that want connection reuse
without holding a port open wrap a Pool around a CreationFunc instead
of talking to a RemoteDevice directly.
*/
package comm

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"io"

	"github.com/cenkalti/backoff"
	"github.com/tarm/serial"
)

var (
	// ErrNotConnected is generated when Send or Recv is called before Open
	ErrNotConnected = errors.New("conn is nil, not connected to remote")

	// ErrTerminatorNotFound is generated when the termination byte is not found in a response
	ErrTerminatorNotFound = errors.New("termination byte not found")
)

// RemoteDevice is one connection to a holder controller.  Addr is a
// host:port for TCP links or a device path for serial ones; Serial
// being non-nil selects the serial transport.  The terminator defaults
// to carriage return on both directions.
type RemoteDevice struct {
	Addr   string
	Serial *serial.Config
	Conn   io.ReadWriteCloser

	// Terminator frames both directions; zero means carriage return
	Terminator byte
}

// NewRemoteDevice creates a new RemoteDevice.  cfg may be nil for TCP
// devices.
func NewRemoteDevice(addr string, cfg *serial.Config) *RemoteDevice {
	return &RemoteDevice{Addr: addr, Serial: cfg}
}

func (rd *RemoteDevice) terminator() byte {
	if rd.Terminator == 0 {
		return '\r'
	}
	return rd.Terminator
}

// Open the connection, setting Conn.  Connection attempts are retried
// with exponential backoff; holder firmwares tend to wedge when
// connection thrashed.
func (rd *RemoteDevice) Open() error {
	wasTimeout := false
	op := func() error {
		err := rd.open()
		if err != nil {
			errS := strings.ToLower(err.Error())
			if strings.Contains(errS, "refused") {
				return err
			}
			wasTimeout = true
			return nil
		}
		return nil
	}

	// backoff ceases on a timeout so we don't wait forever; check
	// wasTimeout separately
	err := backoff.Retry(op, &backoff.ExponentialBackOff{
		InitialInterval:     25 * time.Millisecond,
		RandomizationFactor: 0.,
		Multiplier:          2.,
		MaxInterval:         1 * time.Second,
		MaxElapsedTime:      3 * time.Second,
		Clock:               backoff.SystemClock})
	if err == nil && !wasTimeout {
		return nil
	}
	if wasTimeout {
		return fmt.Errorf("connection timeout to %s", rd.Addr)
	}
	return err
}

func (rd *RemoteDevice) open() error {
	var (
		conn io.ReadWriteCloser
		err  error
	)
	if rd.Serial != nil {
		conn, err = serial.OpenPort(rd.Serial)
	} else {
		conn, err = TCPSetup(rd.Addr, 3*time.Second)
	}
	if err != nil {
		return err
	}
	rd.Conn = conn
	return nil
}

// Close the connection, nil-ing Conn
func (rd *RemoteDevice) Close() error {
	if rd.Conn == nil {
		return nil
	}
	err := rd.Conn.Close()
	if err == nil {
		rd.Conn = nil
	}
	return err
}

// Send writes data to the remote with the terminator appended
func (rd *RemoteDevice) Send(b []byte) error {
	if rd.Conn == nil {
		return ErrNotConnected
	}
	b = append(b, rd.terminator())
	_, err := rd.Conn.Write(b)
	return err
}

// Recv reads one response from the remote and strips the terminator
func (rd *RemoteDevice) Recv() ([]byte, error) {
	if rd.Conn == nil {
		return nil, ErrNotConnected
	}
	term := rd.terminator()
	buf, err := bufio.NewReader(rd.Conn).ReadBytes(term)
	if err != nil {
		return []byte{}, err
	}
	if bytes.HasSuffix(buf, []byte{term}) {
		return buf[:len(buf)-1], nil
	}
	return buf, ErrTerminatorNotFound
}

// SendRecv sends a command and returns the response
func (rd *RemoteDevice) SendRecv(b []byte) ([]byte, error) {
	err := rd.Send(b)
	if err != nil {
		return []byte{}, err
	}
	return rd.Recv()
}

// TCPSetup opens a new TCP connection and sets a timeout on connect, read, and write
func TCPSetup(addr string, timeout time.Duration) (net.Conn, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, err
	}
	deadline := time.Now().Add(timeout)
	conn.SetReadDeadline(deadline)
	conn.SetWriteDeadline(deadline)
	return conn, nil
}
