package servoholder

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func testAxis() AxisCalibration {
	return AxisCalibration{
		ID:      1,
		RawMin:  1024,
		RawMax:  3072,
		UnitMin: -1.0,
		UnitMax: 1.0,
	}
}

func TestToUnits(t *testing.T) {
	cal := testAxis()
	cases := []struct {
		raw  int
		want float64
	}{
		{1024, -1.0},
		{3072, 1.0},
		{2048, 0.0},
	}
	for _, c := range cases {
		got := cal.ToUnits(c.raw)
		if math.Abs(got-c.want) > 1e-9 {
			t.Errorf("ToUnits(%d) = %v, expected %v", c.raw, got, c.want)
		}
	}
}

func TestToRaw(t *testing.T) {
	cal := testAxis()
	cases := []struct {
		units float64
		want  int
	}{
		{-1.0, 1024},
		{1.0, 3072},
		{0.0, 2048},
	}
	for _, c := range cases {
		got := cal.ToRaw(c.units)
		if got != c.want {
			t.Errorf("ToRaw(%v) = %d, expected %d", c.units, got, c.want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	cal := testAxis()
	for raw := cal.RawMin; raw <= cal.RawMax; raw += 97 {
		back := cal.ToRaw(cal.ToUnits(raw))
		if back != raw {
			t.Errorf("round trip of %d came back as %d", raw, back)
		}
	}
}

func TestDegenerateRange(t *testing.T) {
	cal := AxisCalibration{RawMin: 500, RawMax: 500, UnitMin: 2, UnitMax: 2}
	if got := cal.ToUnits(123); got != 2 {
		t.Errorf("ToUnits on zero raw span = %v, expected 2", got)
	}
	if got := cal.ToRaw(99); got != 500 {
		t.Errorf("ToRaw on zero unit span = %d, expected 500", got)
	}
}

func TestReversedAxis(t *testing.T) {
	// mechanically inverted axis, raw grows as units shrink
	cal := AxisCalibration{RawMin: 0, RawMax: 4096, UnitMin: 1.0, UnitMax: -1.0}
	if got := cal.ToUnits(0); got != 1.0 {
		t.Errorf("ToUnits(0) = %v, expected 1", got)
	}
	if got := cal.ToUnits(4096); got != -1.0 {
		t.Errorf("ToUnits(4096) = %v, expected -1", got)
	}
}

func TestBoundariesOrdered(t *testing.T) {
	cal := Calibration{
		Pitch:  AxisCalibration{ID: 1, RawMin: 0, RawMax: 4096, UnitMin: -1.2, UnitMax: 1.2},
		Yaw:    AxisCalibration{ID: 2, RawMin: 0, RawMax: 4096, UnitMin: 1.2, UnitMax: -1.2},
		Roll:   AxisCalibration{ID: 3, RawMin: 0, RawMax: 4096, UnitMin: -3.14, UnitMax: 3.14},
		TransZ: AxisCalibration{ID: 4, RawMin: 0, RawMax: 4096, UnitMin: 0, UnitMax: 120},
	}
	b := cal.Boundaries()
	if b.YawMin != -1.2 || b.YawMax != 1.2 {
		t.Errorf("reversed yaw axis produced boundaries [%v, %v], expected [-1.2, 1.2]", b.YawMin, b.YawMax)
	}
	if b.TransZMin != 0 || b.TransZMax != 120 {
		t.Errorf("transZ boundaries [%v, %v], expected [0, 120]", b.TransZMin, b.TransZMax)
	}
}

func TestLoadCalibration(t *testing.T) {
	content := `{
		"pitch":  {"id": 1, "raw_min": 0, "raw_max": 4096, "unit_min": -1.2, "unit_max": 1.2},
		"yaw":    {"id": 2, "raw_min": 0, "raw_max": 4096, "unit_min": -1.2, "unit_max": 1.2},
		"roll":   {"id": 3, "raw_min": 0, "raw_max": 4096, "unit_min": -3.14, "unit_max": 3.14},
		"transZ": {"id": 4, "raw_min": 0, "raw_max": 4096, "unit_min": 0, "unit_max": 120}
	}`
	path := filepath.Join(t.TempDir(), "calibration.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	cal, err := LoadCalibration(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := cal.IDs(); len(got) != 4 || got[0] != 1 || got[3] != 4 {
		t.Errorf("IDs() = %v, expected [1 2 3 4]", got)
	}
	if cal.TransZ.UnitMax != 120 {
		t.Errorf("transZ unit max = %v, expected 120", cal.TransZ.UnitMax)
	}
}

func TestLoadCalibrationMissing(t *testing.T) {
	_, err := LoadCalibration(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Error("expected error loading a missing calibration file")
	}
}
