package holder

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/opensurg/pivotctl/pivot"
)

var upgrader = websocket.Upgrader{
	// the server fronts lab networks, not browsers on the internet
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StreamPose returns an HTTP handler func which upgrades the connection
// to a websocket and streams the current pose as JSON at a fixed rate.
// The rate is set with the hz query parameter and defaults to 10.
// Streaming ends when the peer goes away or a pose read fails.
func StreamPose(c pivot.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hz := 10
		if s := r.URL.Query().Get("hz"); s != "" {
			v, err := strconv.Atoi(s)
			if err != nil || v < 1 || v > 100 {
				http.Error(w, "hz must be an integer in 1..100", http.StatusBadRequest)
				return
			}
			hz = v
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		tick := time.NewTicker(time.Second / time.Duration(hz))
		defer tick.Stop()
		for range tick.C {
			pose, err := c.CurrentDOFPose()
			if err != nil {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseInternalServerErr, err.Error()),
					time.Now().Add(time.Second))
				return
			}
			if err := conn.WriteJSON(pose); err != nil {
				return
			}
		}
	}
}
