package holder

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"

	"github.com/opensurg/pivotctl/pivot"
)

// stub is a scriptable controller for exercising the HTTP layer.
type stub struct {
	pivot.Readiness
	pose    pivot.DOFPose
	bounds  pivot.DOFBoundaries
	target  pivot.DOFPose
	setErr  error
	stopped bool
}

func (s *stub) SetTargetDOFPose(p pivot.DOFPose) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.target = p
	return nil
}

func (s *stub) CurrentDOFPose() (pivot.DOFPose, error) { return s.pose, nil }

func (s *stub) DOFBoundaries() (pivot.DOFBoundaries, error) { return s.bounds, nil }

func (s *stub) Stop() error {
	s.stopped = true
	return nil
}

func newServer(s *stub) *httptest.Server {
	r := chi.NewRouter()
	NewHTTPHolderController(s).RT().Bind(r)
	return httptest.NewServer(r)
}

func postPose(t *testing.T, url string, p pivot.DOFPose) *http.Response {
	t.Helper()
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(p); err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(url+"/pose", "application/json", buf)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestGetPose(t *testing.T) {
	s := &stub{pose: pivot.DOFPose{Pitch: 0.25, TransZ: 12}}
	ts := newServer(s)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/pose")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var got pivot.DOFPose
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got != s.pose {
		t.Errorf("got %v, want %v", got, s.pose)
	}
}

func TestSetPose(t *testing.T) {
	s := &stub{}
	ts := newServer(s)
	defer ts.Close()

	want := pivot.DOFPose{Yaw: -0.5, TransZ: 3}
	resp := postPose(t, ts.URL, want)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d, want 200", resp.StatusCode)
	}
	if s.target != want {
		t.Errorf("driver received %v, want %v", s.target, want)
	}
}

func TestSetPoseErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{pivot.ErrNotReady, http.StatusServiceUnavailable},
		{pivot.ErrOutOfBounds, http.StatusBadRequest},
	}
	for _, tc := range cases {
		s := &stub{setErr: tc.err}
		ts := newServer(s)
		resp := postPose(t, ts.URL, pivot.DOFPose{})
		resp.Body.Close()
		ts.Close()
		if resp.StatusCode != tc.code {
			t.Errorf("%v: status %d, want %d", tc.err, resp.StatusCode, tc.code)
		}
	}
}

func TestGetBoundariesAndReady(t *testing.T) {
	s := &stub{bounds: pivot.DOFBoundaries{PitchMin: -1, PitchMax: 1, TransZMax: 40}}
	ts := newServer(s)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/boundaries")
	if err != nil {
		t.Fatal(err)
	}
	var got pivot.DOFBoundaries
	json.NewDecoder(resp.Body).Decode(&got)
	resp.Body.Close()
	if got != s.bounds {
		t.Errorf("boundaries = %v, want %v", got, s.bounds)
	}

	resp, err = http.Get(ts.URL + "/ready")
	if err != nil {
		t.Fatal(err)
	}
	var rdy struct {
		Bool bool `json:"bool"`
	}
	json.NewDecoder(resp.Body).Decode(&rdy)
	resp.Body.Close()
	if rdy.Bool {
		t.Error("fresh stub reported ready")
	}

	s.MarkPoseReady()
	s.MarkBoundariesReady()
	resp, _ = http.Get(ts.URL + "/ready")
	json.NewDecoder(resp.Body).Decode(&rdy)
	resp.Body.Close()
	if !rdy.Bool {
		t.Error("marked stub reported not ready")
	}
}

func TestStopCapability(t *testing.T) {
	s := &stub{}
	ts := newServer(s)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/stop", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d, want 200", resp.StatusCode)
	}
	if !s.stopped {
		t.Error("Stop did not reach the driver")
	}
}

func TestBoundaryMiddleware(t *testing.T) {
	s := &stub{bounds: pivot.DOFBoundaries{
		PitchMin: -1, PitchMax: 1,
		YawMin: -1, YawMax: 1,
		RollMin: -1, RollMax: 1,
		TransZMin: 0, TransZMax: 40,
	}}
	bm := BoundaryMiddleware{Ctl: s}
	r := chi.NewRouter()
	r.Use(bm.Check)
	NewHTTPHolderController(s).RT().Bind(r)
	ts := httptest.NewServer(r)
	defer ts.Close()

	resp := postPose(t, ts.URL, pivot.DOFPose{Pitch: 2})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("out-of-range command: status %d, want 400", resp.StatusCode)
	}
	if (s.target != pivot.DOFPose{}) {
		t.Error("rejected command still reached the driver")
	}

	resp = postPose(t, ts.URL, pivot.DOFPose{Pitch: 0.5, TransZ: 10})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("in-range command: status %d, want 200", resp.StatusCode)
	}

	// reads are never gated
	resp, err := http.Get(ts.URL + "/pose")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("read through middleware: status %d, want 200", resp.StatusCode)
	}
}

func TestBoundaryMiddlewareMounted(t *testing.T) {
	// the server mounts each node's routes under a prefix; the check
	// must still see pose commands there
	s := &stub{bounds: pivot.DOFBoundaries{
		PitchMin: -1, PitchMax: 1,
		YawMin: -1, YawMax: 1,
		RollMin: -1, RollMax: 1,
		TransZMin: 0, TransZMax: 40,
	}}
	bm := BoundaryMiddleware{Ctl: s}
	sub := chi.NewRouter()
	sub.Use(bm.Check)
	NewHTTPHolderController(s).RT().Bind(sub)
	root := chi.NewRouter()
	root.Mount("/or1/holder", sub)
	ts := httptest.NewServer(root)
	defer ts.Close()

	resp := postPose(t, ts.URL+"/or1/holder", pivot.DOFPose{Pitch: 2})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("out-of-range command: status %d, want 400", resp.StatusCode)
	}
	if (s.target != pivot.DOFPose{}) {
		t.Errorf("out-of-range command reached the driver: %v", s.target)
	}

	resp = postPose(t, ts.URL+"/or1/holder", pivot.DOFPose{Pitch: 0.5, TransZ: 5})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("in-range command: status %d, want 200", resp.StatusCode)
	}
}

func TestClientRoundTrip(t *testing.T) {
	s := &stub{
		pose:   pivot.DOFPose{Roll: 0.3},
		bounds: pivot.DOFBoundaries{RollMin: -1, RollMax: 1},
	}
	s.MarkPoseReady()
	s.MarkBoundariesReady()
	ts := newServer(s)
	defer ts.Close()

	c := NewClient(ts.URL)
	pose, err := c.CurrentDOFPose()
	if err != nil {
		t.Fatalf("CurrentDOFPose: %v", err)
	}
	if pose != s.pose {
		t.Errorf("pose = %v, want %v", pose, s.pose)
	}
	bounds, err := c.DOFBoundaries()
	if err != nil {
		t.Fatalf("DOFBoundaries: %v", err)
	}
	if bounds != s.bounds {
		t.Errorf("boundaries = %v, want %v", bounds, s.bounds)
	}
	if !c.Ready() {
		t.Error("Ready() = false, want true")
	}
	want := pivot.DOFPose{Roll: -0.2}
	if err := c.SetTargetDOFPose(want); err != nil {
		t.Fatalf("SetTargetDOFPose: %v", err)
	}
	if s.target != want {
		t.Errorf("target = %v, want %v", s.target, want)
	}
	if err := c.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if !s.stopped {
		t.Error("Stop did not reach the driver")
	}
}

func TestClientReadFailureWrapsNoData(t *testing.T) {
	s := &stub{}
	ts := newServer(s)
	ts.Close()

	c := NewClient(ts.URL)
	if _, err := c.CurrentDOFPose(); !errors.Is(err, pivot.ErrNoData) {
		t.Errorf("pose read: err = %v, want ErrNoData", err)
	}
	if _, err := c.DOFBoundaries(); !errors.Is(err, pivot.ErrNoData) {
		t.Errorf("boundary read: err = %v, want ErrNoData", err)
	}
}

func TestClientErrorMapping(t *testing.T) {
	s := &stub{setErr: pivot.ErrNotReady}
	ts := newServer(s)
	defer ts.Close()

	c := NewClient(ts.URL)
	if err := c.SetTargetDOFPose(pivot.DOFPose{}); err != pivot.ErrNotReady {
		t.Errorf("err = %v, want ErrNotReady", err)
	}
}
