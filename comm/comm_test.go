package comm_test

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/opensurg/pivotctl/comm"
)

// rwc is an in-memory loopback: writes land in wrote, reads drain canned.
type rwc struct {
	wrote  bytes.Buffer
	canned bytes.Buffer
	closed bool
}

func (l *rwc) Read(p []byte) (int, error)  { return l.canned.Read(p) }
func (l *rwc) Write(p []byte) (int, error) { return l.wrote.Write(p) }
func (l *rwc) Close() error                { l.closed = true; return nil }

func TestRemoteDeviceFraming(t *testing.T) {
	lb := &rwc{}
	lb.canned.WriteString("PONG\r")
	rd := &comm.RemoteDevice{Conn: lb}

	resp, err := rd.SendRecv([]byte("PING"))
	if err != nil {
		t.Fatalf("SendRecv: %v", err)
	}
	if string(resp) != "PONG" {
		t.Errorf("response = %q, want PONG", resp)
	}
	if got := lb.wrote.String(); got != "PING\r" {
		t.Errorf("wire data = %q, want PING\\r", got)
	}
}

func TestRemoteDeviceNotConnected(t *testing.T) {
	rd := comm.NewRemoteDevice("localhost:9999", nil)
	if err := rd.Send([]byte("x")); err != comm.ErrNotConnected {
		t.Errorf("Send before Open: %v, want ErrNotConnected", err)
	}
	if _, err := rd.Recv(); err != comm.ErrNotConnected {
		t.Errorf("Recv before Open: %v, want ErrNotConnected", err)
	}
}

func TestRemoteDeviceCustomTerminator(t *testing.T) {
	lb := &rwc{}
	lb.canned.WriteString("OK\n")
	rd := &comm.RemoteDevice{Conn: lb, Terminator: '\n'}
	resp, err := rd.SendRecv([]byte("STP"))
	if err != nil {
		t.Fatalf("SendRecv: %v", err)
	}
	if string(resp) != "OK" {
		t.Errorf("response = %q, want OK", resp)
	}
}

func TestPoolReuse(t *testing.T) {
	made := 0
	maker := func() (io.ReadWriteCloser, error) {
		made++
		return &rwc{}, nil
	}
	pool := comm.NewPool(1, time.Minute, maker)
	c, err := pool.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	pool.Put(c)
	c2, err := pool.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if made != 1 {
		t.Errorf("maker called %d times, want 1", made)
	}
	if c2 != c {
		t.Error("connection was not reused")
	}
	pool.Put(c2)
	if pool.Size() != 1 {
		t.Errorf("Size = %d, want 1", pool.Size())
	}
}

func TestPoolDestroy(t *testing.T) {
	maker := func() (io.ReadWriteCloser, error) { return &rwc{}, nil }
	pool := comm.NewPool(2, time.Minute, maker)
	c, _ := pool.Get()
	pool.Destroy(c)
	if pool.Active() != 0 {
		t.Errorf("Active = %d after Destroy, want 0", pool.Active())
	}
	if !c.(*rwc).closed {
		t.Error("destroyed connection was not closed")
	}
}
