package main

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/theckman/yacspin"

	"github.com/opensurg/pivotctl/endurolap"
	"github.com/opensurg/pivotctl/generichttp"
	"github.com/opensurg/pivotctl/generichttp/holder"
	"github.com/opensurg/pivotctl/pivot"
	"github.com/opensurg/pivotctl/server/middleware/locker"
	"github.com/opensurg/pivotctl/servoholder"
	"github.com/opensurg/pivotctl/sim"
	"github.com/opensurg/pivotctl/telemetry"
	"github.com/opensurg/pivotctl/util"
)

// Minmax holds a min and max value
type Minmax struct {
	Min float64 `yaml:"Min"`
	Max float64 `yaml:"Max"`
}

// MQTTSetup configures the optional pose telemetry stream.  An empty
// Broker disables it.
type MQTTSetup struct {
	// Broker is the broker URL, e.g. tcp://localhost:1883
	Broker string `yaml:"Broker"`

	// ClientID identifies this server to the broker
	ClientID string `yaml:"ClientID"`

	// Topic is the topic stem, the endpoint and /pose are appended
	Topic string `yaml:"Topic"`

	// IntervalMS is the publish period in milliseconds
	IntervalMS int `yaml:"IntervalMS"`
}

// ObjSetup holds the typical triplet of args for a New<holder> call.
// Serial is not always used, and need not be populated in the config file
// if not used.
type ObjSetup struct {
	// Addr holds the network or filesystem address of the remote device,
	// e.g. 192.168.100.123:2006 for a device connected to port 6
	// on a digi portserver, or /dev/ttyS4 for an RS232 device on a serial cable
	Addr string `yaml:"Addr"`

	// Endpoint is the full path the routes from this device will be served on
	// ex. Endpoint="/or1/holder" will produce routes of /or1/holder/pose, etc.
	Endpoint string `yaml:"Endpoint"`

	// Serial determines if the connection is serial/RS232 (True) or TCP (False)
	Serial bool `yaml:"Serial"`

	// Type is the "type" of the holder, e.g. sim
	Type string `yaml:"Type"`

	// Calibration is a path to an axis calibration file, servo holders only
	Calibration string `yaml:"Calibration"`

	// Boundaries gives the travel limits per axis, simulated holders only.
	// Keys are pitch, yaw, roll, transZ.
	Boundaries map[string]Minmax `yaml:"Boundaries"`
}

// Config is a struct that holds the initialization parameters for various
// HTTP adapted holders.  It is to be populated by a yaml/unmarshal call.
type Config struct {
	// Addr is the address to listen at
	Addr string `yaml:"Addr"`

	Mock bool `yaml:"Mock"`

	MQTT MQTTSetup `yaml:"MQTT"`

	// Nodes is the list of nodes to set up
	Nodes []ObjSetup `yaml:"Nodes"`
}

// boundariesFromConfig converts per axis limits from the config file
// into the boundary type the holders consume
func boundariesFromConfig(limits map[string]Minmax) pivot.DOFBoundaries {
	lims := map[string]util.Limiter{}
	for axis, mm := range limits {
		lims[strings.ToLower(axis)] = util.Limiter{Min: mm.Min, Max: mm.Max}
	}
	b := pivot.DOFBoundaries{}
	if l, ok := lims["pitch"]; ok {
		b.PitchMin, b.PitchMax = l.Min, l.Max
	}
	if l, ok := lims["yaw"]; ok {
		b.YawMin, b.YawMax = l.Min, l.Max
	}
	if l, ok := lims["roll"]; ok {
		b.RollMin, b.RollMax = l.Min, l.Max
	}
	if l, ok := lims["transz"]; ok {
		b.TransZMin, b.TransZMax = l.Min, l.Max
	}
	return b
}

// primeHolder reads the pose and boundaries until the holder reports
// ready, showing a spinner on the console.  Gives up after a while and
// leaves the holder to become ready on first client contact.
func primeHolder(ctl pivot.Controller, endpoint string) {
	spinner, err := yacspin.New(yacspin.Config{
		Frequency:     100 * time.Millisecond,
		CharSet:       yacspin.CharSets[59],
		Suffix:        " priming " + endpoint,
		StopCharacter: "OK",
	})
	if err == nil {
		spinner.Start()
		defer spinner.Stop()
	}
	deadline := time.Now().Add(15 * time.Second)
	for time.Now().Before(deadline) {
		_, perr := ctl.CurrentDOFPose()
		_, berr := ctl.DOFBoundaries()
		if perr == nil && berr == nil {
			return
		}
		time.Sleep(500 * time.Millisecond)
	}
	log.Printf("%s did not become ready during startup, continuing anyway", endpoint)
}

// BuildMux constructs the root router from the config, one submux per
// node.  The mux serves a special route, /endpoints, which returns all
// routes grouped by node as JSON.
func BuildMux(c Config) chi.Router {
	// make the root handler
	root := chi.NewRouter()
	root.Use(middleware.Logger)
	supergraph := map[string][]string{}

	// for every node specified, build a submux
	for _, node := range c.Nodes {
		var (
			ctl         pivot.Controller
			middlewares []func(http.Handler) http.Handler
		)
		typ := strings.ToLower(node.Type)
		switch typ {
		case "sim":
			ctl = sim.NewHolder(boundariesFromConfig(node.Boundaries))

		case "endurolap":
			var el *endurolap.Holder
			if c.Mock {
				el = endurolap.NewMock()
			} else {
				el = endurolap.New(node.Addr, node.Serial)
			}
			ctl = el
			// the firmware rejects out of range targets, bounce them
			// at the HTTP layer first for a friendlier error
			limiter := holder.BoundaryMiddleware{Ctl: el}
			middlewares = append(middlewares, limiter.Check)

		case "servo", "feetech":
			if c.Mock {
				log.Fatal("servo holder mock interface is not yet implemented")
			}
			cal, err := servoholder.LoadCalibration(node.Calibration)
			if err != nil {
				log.Fatal(err)
			}
			sh, err := servoholder.New(node.Addr, cal)
			if err != nil {
				log.Fatal(err)
			}
			if err := sh.Enable(); err != nil {
				log.Fatal(err)
			}
			ctl = sh

		default:
			log.Fatal("type ", typ, " not understood")
		}

		httper := holder.NewHTTPHolderController(ctl)

		// prepare the URL, "or1/holder" => "/or1/holder/*"
		hndlS := generichttp.SubMuxSanitize(node.Endpoint)
		stem := strings.TrimSuffix(hndlS, "/*")

		// add the endpoints to the graph
		supergraph[hndlS] = httper.RT().Endpoints()

		// add a lock interface for this node
		lock := locker.New()
		locker.Inject(httper, lock)

		// bind to the mux
		r := chi.NewRouter()
		r.Use(middlewares...)
		r.Use(lock.Check)
		httper.RT().Bind(r)
		root.Mount(hndlS, r)

		primeHolder(ctl, stem)

		if c.MQTT.Broker != "" {
			interval := time.Duration(c.MQTT.IntervalMS) * time.Millisecond
			if interval <= 0 {
				interval = time.Second
			}
			topic := strings.TrimSuffix(c.MQTT.Topic, "/") + stem
			clientID := c.MQTT.ClientID + "-" + strings.Trim(stem, "/")
			pub, err := telemetry.NewPublisher(c.MQTT.Broker, clientID, topic, interval)
			if err != nil {
				log.Printf("telemetry for %s disabled: %v", stem, err)
			} else {
				pub.Start(ctl)
			}
		}
	}
	root.Get("/endpoints", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		err := json.NewEncoder(w).Encode(supergraph)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
	return root
}
