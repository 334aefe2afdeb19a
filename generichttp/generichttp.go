// Package generichttp defines the plumbing shared by the HTTP adapters
// in its subdirectories: a route table keyed on method and path, JSON
// envelope types for scalars, and helpers to lift getter/setter
// functions into handlers.
package generichttp

import (
	"encoding/json"
	"fmt"
	"go/types"
	"net/http"
	"strings"

	"github.com/go-chi/chi"
)

// MethodPath is an HTTP method and URL path pair
type MethodPath struct {
	Method string
	Path   string
}

// RouteTable maps method/path pairs to handler funcs
type RouteTable map[MethodPath]http.HandlerFunc

// Bind attaches every route in the table to the router
func (rt RouteTable) Bind(r chi.Router) {
	for mp, handler := range rt {
		r.Method(mp.Method, mp.Path, handler)
	}
}

// Endpoints lists the routes in the table as "METHOD path" strings
func (rt RouteTable) Endpoints() []string {
	routes := make([]string, 0, len(rt))
	for mp := range rt {
		routes = append(routes, mp.Method+" "+mp.Path)
	}
	return routes
}

// HTTPer is a type which can yield its route table
type HTTPer interface {
	RT() RouteTable
}

// SubMuxSanitize prepares an endpoint for mounting as a submux,
// "or1/holder" => "/or1/holder/*"
func SubMuxSanitize(stem string) string {
	if !strings.HasPrefix(stem, "/") {
		stem = "/" + stem
	}
	stem = strings.TrimSuffix(stem, "/")
	if !strings.HasSuffix(stem, "/*") {
		stem = stem + "/*"
	}
	return stem
}

// FloatT is a struct with a single float64 field, used for JSON IO
type FloatT struct {
	F64 float64 `json:"f64"`
}

// IntT is a struct with a single int field, used for JSON IO
type IntT struct {
	Int int `json:"int"`
}

// StrT is a struct with a single string field, used for JSON IO
type StrT struct {
	Str string `json:"str"`
}

// BoolT is a struct with a single bool field, used for JSON IO
type BoolT struct {
	Bool bool `json:"bool"`
}

// HumanPayload is a struct that holds the various types of data that
// may be returned by a route and can encode itself as a JSON envelope
type HumanPayload struct {
	// T holds the type of data actually contained
	T types.BasicKind

	// Bool holds a boolean
	Bool bool

	// Int holds an int
	Int int

	// Float holds a float64
	Float float64

	// String holds a string
	String string
}

// EncodeAndRespond writes the payload to w as its JSON envelope
func (hp HumanPayload) EncodeAndRespond(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	var (
		obj interface{}
		err error
	)
	switch hp.T {
	case types.Bool:
		obj = BoolT{Bool: hp.Bool}
	case types.Int:
		obj = IntT{Int: hp.Int}
	case types.Float64:
		obj = FloatT{F64: hp.Float}
	case types.String:
		obj = StrT{Str: hp.String}
	default:
		err = fmt.Errorf("unknown payload kind %v", hp.T)
	}
	if err == nil {
		err = json.NewEncoder(w).Encode(obj)
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// GetFloat calls a float-getting function and returns the response
// as json {'f64': value}
func GetFloat(fcn func() (float64, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := fcn()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		hp := HumanPayload{T: types.Float64, Float: f}
		hp.EncodeAndRespond(w, r)
	}
}

// SetFloat parses a JSON input of {'f64': value} and calls fcn with it
func SetFloat(fcn func(float64) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f := FloatT{}
		err := json.NewDecoder(r.Body).Decode(&f)
		defer r.Body.Close()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		err = fcn(f.F64)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

// GetBool calls a bool-getting function and returns the response
// as json {'bool': value}
func GetBool(fcn func() (bool, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := fcn()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		hp := HumanPayload{T: types.Bool, Bool: b}
		hp.EncodeAndRespond(w, r)
	}
}

// SetBool parses a JSON input of {'bool': value} and calls fcn with it
func SetBool(fcn func(bool) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b := BoolT{}
		err := json.NewDecoder(r.Body).Decode(&b)
		defer r.Body.Close()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		err = fcn(b.Bool)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}
