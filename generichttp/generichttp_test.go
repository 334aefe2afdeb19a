package generichttp

import (
	"net/http"
	"testing"
)

func TestSubMuxSanitize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"or1/holder", "/or1/holder/*"},
		{"/or1/holder", "/or1/holder/*"},
		{"/or1/holder/", "/or1/holder/*"},
		{"/or1/holder/*", "/or1/holder/*"},
	}
	for _, tc := range cases {
		got := SubMuxSanitize(tc.in)
		if got != tc.want {
			t.Errorf("SubMuxSanitize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRouteTableEndpoints(t *testing.T) {
	rt := RouteTable{
		MethodPath{Method: http.MethodGet, Path: "/pose"}: func(w http.ResponseWriter, r *http.Request) {},
	}
	eps := rt.Endpoints()
	if len(eps) != 1 || eps[0] != "GET /pose" {
		t.Errorf("Endpoints() = %v, want [GET /pose]", eps)
	}
}
