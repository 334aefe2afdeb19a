package servoholder

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/opensurg/pivotctl/pivot"
)

// AxisCalibration maps one servo's raw position counts to engineering
// units for the axis it actuates.
type AxisCalibration struct {
	// ID is the servo's bus ID
	ID int `json:"id"`

	// RawMin and RawMax are the servo counts at the axis travel ends
	RawMin int `json:"raw_min"`
	RawMax int `json:"raw_max"`

	// UnitMin and UnitMax are the engineering unit values at RawMin
	// and RawMax.  Radians for the rotational axes, millimeters for
	// the translation stage.
	UnitMin float64 `json:"unit_min"`
	UnitMax float64 `json:"unit_max"`
}

// ToUnits converts a raw servo position to engineering units
func (c AxisCalibration) ToUnits(raw int) float64 {
	span := float64(c.RawMax - c.RawMin)
	if span == 0 {
		return c.UnitMin
	}
	frac := float64(raw-c.RawMin) / span
	return c.UnitMin + frac*(c.UnitMax-c.UnitMin)
}

// ToRaw converts engineering units to a raw servo position
func (c AxisCalibration) ToRaw(units float64) int {
	span := c.UnitMax - c.UnitMin
	if span == 0 {
		return c.RawMin
	}
	frac := (units - c.UnitMin) / span
	return c.RawMin + int(frac*float64(c.RawMax-c.RawMin)+0.5)
}

// Calibration holds the axis calibrations for a four servo holder
type Calibration struct {
	Pitch  AxisCalibration `json:"pitch"`
	Yaw    AxisCalibration `json:"yaw"`
	Roll   AxisCalibration `json:"roll"`
	TransZ AxisCalibration `json:"transZ"`
}

// LoadCalibration loads a calibration from a JSON file
func LoadCalibration(path string) (Calibration, error) {
	var cal Calibration
	data, err := os.ReadFile(path)
	if err != nil {
		return cal, fmt.Errorf("read calibration file: %w", err)
	}
	if err := json.Unmarshal(data, &cal); err != nil {
		return cal, fmt.Errorf("parse calibration JSON: %w", err)
	}
	return cal, nil
}

// IDs returns the servo bus IDs in pitch, yaw, roll, transZ order
func (c Calibration) IDs() []int {
	return []int{c.Pitch.ID, c.Yaw.ID, c.Roll.ID, c.TransZ.ID}
}

// Boundaries returns the travel limits implied by the calibration
func (c Calibration) Boundaries() pivot.DOFBoundaries {
	lo := func(a AxisCalibration) float64 {
		if a.UnitMin < a.UnitMax {
			return a.UnitMin
		}
		return a.UnitMax
	}
	hi := func(a AxisCalibration) float64 {
		if a.UnitMax > a.UnitMin {
			return a.UnitMax
		}
		return a.UnitMin
	}
	return pivot.DOFBoundaries{
		PitchMin: lo(c.Pitch), PitchMax: hi(c.Pitch),
		YawMin: lo(c.Yaw), YawMax: hi(c.Yaw),
		RollMin: lo(c.Roll), RollMax: hi(c.Roll),
		TransZMin: lo(c.TransZ), TransZMax: hi(c.TransZ),
	}
}
