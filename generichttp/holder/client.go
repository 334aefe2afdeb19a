package holder

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/opensurg/pivotctl/generichttp"
	"github.com/opensurg/pivotctl/pivot"
)

// Client talks to a holder served by this package and satisfies
// pivot.Controller, so callers (e.g. the jog TUI) need not care whether
// a holder is in-process or across the network.
type Client struct {
	baseURL string
	hc      *http.Client
}

// NewClient creates a client for the holder mounted at baseURL,
// e.g. http://localhost:8000/or/holder
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		hc:      &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *Client) getJSON(route string, into interface{}) error {
	resp, err := c.hc.Get(c.baseURL + route)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return statusErr(resp)
	}
	return json.NewDecoder(resp.Body).Decode(into)
}

func statusErr(resp *http.Response) error {
	buf := new(bytes.Buffer)
	buf.ReadFrom(resp.Body)
	return fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(buf.String()))
}

// SetTargetDOFPose commands the holder to the target pose
func (c *Client) SetTargetDOFPose(p pivot.DOFPose) error {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(p); err != nil {
		return err
	}
	resp, err := c.hc.Post(c.baseURL+"/pose", "application/json", buf)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusServiceUnavailable:
		return pivot.ErrNotReady
	case http.StatusBadRequest:
		return pivot.ErrOutOfBounds
	default:
		return statusErr(resp)
	}
}

// CurrentDOFPose returns the holder's current pose.  Failures wrap
// pivot.ErrNoData.
func (c *Client) CurrentDOFPose() (pivot.DOFPose, error) {
	var p pivot.DOFPose
	if err := c.getJSON("/pose", &p); err != nil {
		return p, fmt.Errorf("%w: %w", pivot.ErrNoData, err)
	}
	return p, nil
}

// DOFBoundaries returns the limits the holder may pivot within.
// Failures wrap pivot.ErrNoData.
func (c *Client) DOFBoundaries() (pivot.DOFBoundaries, error) {
	var b pivot.DOFBoundaries
	if err := c.getJSON("/boundaries", &b); err != nil {
		return b, fmt.Errorf("%w: %w", pivot.ErrNoData, err)
	}
	return b, nil
}

// Ready reports whether the holder is safe to command.  Transport
// errors read as not ready.
func (c *Client) Ready() bool {
	var b generichttp.BoolT
	if err := c.getJSON("/ready", &b); err != nil {
		return false
	}
	return b.Bool
}

// Stop halts an in-flight movement
func (c *Client) Stop() error {
	resp, err := c.hc.Post(c.baseURL+"/stop", "application/json", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return statusErr(resp)
	}
	return nil
}

var _ pivot.Controller = (*Client)(nil)
var _ pivot.ReadyChecker = (*Client)(nil)
var _ pivot.Stopper = (*Client)(nil)
