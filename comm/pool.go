package comm

import (
	"io"
	"sync"
	"time"
)

// CreationFunc returns a new connection to a device.  Use a closure to
// capture addresses and serial parameters.
type CreationFunc func() (io.ReadWriteCloser, error)

// Pool holds one or more connections to a device that are closed when
// not in use and re-opened as needed.  It is concurrent safe and must
// be created with NewPool.
type Pool struct {
	maxSize int                     // maximum number of connections, == cap(conns)
	onLease int                     // number of connections given out
	timeout time.Duration           // idle time after which all connections are freed
	conns   chan io.ReadWriteCloser // the circular buffer of connections
	timer   *time.Timer             // reclaims connections after the pool goes idle
	maker   CreationFunc

	reclaiming bool
	mu         sync.Mutex
}

// NewPool creates a Pool.  maxSize bounds the concurrent connections to
// the device; holder controllers commonly accept exactly one.
func NewPool(maxSize int, timeout time.Duration, maker CreationFunc) *Pool {
	p := &Pool{
		maxSize: maxSize,
		timeout: timeout,
		conns:   make(chan io.ReadWriteCloser, maxSize),
		timer:   time.NewTimer(timeout),
		maker:   maker,
	}
	p.timer.Stop() // nothing to reclaim yet
	return p
}

// Get retrieves a connection, blocking until one is available if all
// are leased out.  Return it with Put, or with Destroy if it has gone
// bad (e.g. all calls error).  A connection obtained alongside a
// non-nil error must not be returned to the pool.
func (p *Pool) Get() (io.ReadWriter, error) {
	p.timer.Stop()

	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.conns) > 0 {
		ret := <-p.conns
		p.onLease++
		return ret, nil
	}
	if p.onLease == p.maxSize {
		ret := <-p.conns
		p.onLease++
		return ret, nil
	}
	c, err := p.maker()
	if err == nil {
		p.onLease++
	}
	return c, err
}

// Put restores a connection to the pool.  It may be reused, or freed
// after the pool has sat idle for the timeout.
func (p *Pool) Put(rw io.ReadWriter) {
	rwc := rw.(io.ReadWriteCloser)
	p.conns <- rwc
	p.onLease--
	if len(p.conns) == p.maxSize {
		p.startReclaim()
	}
}

// Destroy immediately frees a connection instead of returning it
func (p *Pool) Destroy(rw io.ReadWriter) {
	rwc := rw.(io.ReadWriteCloser)
	rwc.Close()
	p.onLease--
}

// Size returns the number of connections in the pool or given out from it
func (p *Pool) Size() int {
	return len(p.conns) + p.onLease
}

// Active returns the number of connections currently given out
func (p *Pool) Active() int {
	return p.onLease
}

func (p *Pool) startReclaim() {
	defer func() { p.reclaiming = true }()
	if !p.reclaiming {
		p.timer.Reset(p.timeout)
		go func() {
			defer func() { p.reclaiming = false }()
			<-p.timer.C
			for {
				select {
				case closer := <-p.conns:
					closer.Close()
				default:
					return
				}
			}
		}()
	}
}
