package holder

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/opensurg/pivotctl/pivot"
)

var errOutside = errors.New("target pose violates server imposed boundaries, aborted")

// BoundaryMiddleware imposes the holder's boundaries on incoming pose
// commands before they reach the driver.  Drivers enforce their own
// policy as well; checking here keeps clamp-policy drivers from
// silently altering a command the operator believed was in range.
type BoundaryMiddleware struct {
	// Ctl is the controller whose boundaries are enforced
	Ctl pivot.Controller
}

// Check verifies that a commanded pose lies within the boundaries and
// responds with StatusBadRequest if it does not; otherwise control
// flows to the next handler.  Requests other than pose commands pass
// through untouched, as do commands arriving before boundaries are
// known (the driver gates those on readiness).
func (b *BoundaryMiddleware) Check(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// suffix match so the check holds when the routes are mounted
		// under a node prefix
		if r.Method != http.MethodPost || !strings.HasSuffix(r.URL.Path, "/pose") {
			next.ServeHTTP(w, r)
			return
		}
		// downstream handlers want the body too; read it all here and
		// paste it back after
		bodyContent, _ := io.ReadAll(r.Body)
		defer r.Body.Close()
		r.Body = io.NopCloser(bytes.NewBuffer(bodyContent))

		var pose pivot.DOFPose
		err := json.NewDecoder(bytes.NewReader(bodyContent)).Decode(&pose)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		bounds, err := b.Ctl.DOFBoundaries()
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		if !bounds.PoseInside(pose) {
			http.Error(w, errOutside.Error(), http.StatusBadRequest)
			return
		}
		next.ServeHTTP(w, r)
	})
}
