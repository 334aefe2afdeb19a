package util_test

import (
	"testing"

	"github.com/opensurg/pivotctl/util"
)

func TestLimiterCheck(t *testing.T) {
	l := util.Limiter{Min: -1, Max: 2}
	cases := []struct {
		v    float64
		want bool
	}{
		{-1, true},
		{2, true},
		{0, true},
		{-1.01, false},
		{2.01, false},
	}
	for _, tc := range cases {
		if got := l.Check(tc.v); got != tc.want {
			t.Errorf("Check(%v) = %v, want %v", tc.v, got, tc.want)
		}
	}
}

func TestLimiterClamp(t *testing.T) {
	l := util.Limiter{Min: -1, Max: 2}
	if got := l.Clamp(5); got != 2 {
		t.Errorf("Clamp(5) = %v, want 2", got)
	}
	if got := l.Clamp(-5); got != -1 {
		t.Errorf("Clamp(-5) = %v, want -1", got)
	}
	if got := l.Clamp(0.5); got != 0.5 {
		t.Errorf("Clamp(0.5) = %v, want 0.5", got)
	}
}
