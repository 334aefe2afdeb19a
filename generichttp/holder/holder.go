// Package holder provides an HTTP interface to pivoting holder
// controllers.  The wrapper binds the routes every controller supports
// and probes the concrete type for optional capabilities (stopping,
// readiness reporting), injecting their routes when present.
package holder

import (
	"encoding/json"
	"errors"
	"go/types"
	"net/http"

	"github.com/opensurg/pivotctl/generichttp"
	"github.com/opensurg/pivotctl/pivot"
)

// GetPose returns an HTTP handler func which returns the current pose
// of the holder as JSON
func GetPose(c pivot.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pose, err := c.CurrentDOFPose()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		err = json.NewEncoder(w).Encode(pose)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

// SetPose returns an HTTP handler func which commands the holder to a
// target pose parsed from the request body.  Not-ready holders answer
// 503 and boundary rejections 400; the driver's own policy decides
// whether out-of-boundary targets are rejected or clamped.
func SetPose(c pivot.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var pose pivot.DOFPose
		err := json.NewDecoder(r.Body).Decode(&pose)
		defer r.Body.Close()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		err = c.SetTargetDOFPose(pose)
		switch {
		case errors.Is(err, pivot.ErrNotReady):
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
		case errors.Is(err, pivot.ErrOutOfBounds):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case err != nil:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusOK)
		}
	}
}

// GetBoundaries returns an HTTP handler func which returns the limits
// the holder may pivot within as JSON
func GetBoundaries(c pivot.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := c.DOFBoundaries()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		err = json.NewEncoder(w).Encode(b)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

// GetReady returns an HTTP handler func which returns whether the
// holder is safe to command
func GetReady(rc pivot.ReadyChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hp := generichttp.HumanPayload{T: types.Bool, Bool: rc.Ready()}
		hp.EncodeAndRespond(w, r)
	}
}

// Stop returns an HTTP handler func which halts an in-flight movement
func Stop(s pivot.Stopper) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := s.Stop()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

// HTTPHolderController wraps a holder controller with HTTP
type HTTPHolderController struct {
	pivot.Controller

	RouteTable generichttp.RouteTable
}

// NewHTTPHolderController returns a new HTTP wrapper with the route
// table pre-configured, including routes for whichever optional
// capabilities the concrete type satisfies
func NewHTTPHolderController(c pivot.Controller) HTTPHolderController {
	w := HTTPHolderController{Controller: c}
	rt := generichttp.RouteTable{
		generichttp.MethodPath{Method: http.MethodGet, Path: "/pose"}:       GetPose(c),
		generichttp.MethodPath{Method: http.MethodPost, Path: "/pose"}:      SetPose(c),
		generichttp.MethodPath{Method: http.MethodGet, Path: "/boundaries"}: GetBoundaries(c),
		generichttp.MethodPath{Method: http.MethodGet, Path: "/pose/ws"}:    StreamPose(c),
	}
	if rc, ok := interface{}(c).(pivot.ReadyChecker); ok {
		rt[generichttp.MethodPath{Method: http.MethodGet, Path: "/ready"}] = GetReady(rc)
	}
	if stopper, ok := interface{}(c).(pivot.Stopper); ok {
		rt[generichttp.MethodPath{Method: http.MethodPost, Path: "/stop"}] = Stop(stopper)
	}
	w.RouteTable = rt
	return w
}

// RT satisfies the HTTPer interface
func (h HTTPHolderController) RT() generichttp.RouteTable {
	return h.RouteTable
}
