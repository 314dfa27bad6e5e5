package main

import (
	"github.com/pthm-cable/rescount/config"
)

// ParamSpec defines a single calibrated parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Starting value
}

// ParamVector holds the set of calibrated parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the calibrated parameter set, starting from the
// base config's values.
func NewParamVector(base *config.Config) *ParamVector {
	pv := &ParamVector{
		Specs: []ParamSpec{
			{Name: "outflow", Path: "resource.outflow", Min: 0.0005, Max: 0.25},
			// Applied to both x_diffuse and y_diffuse
			{Name: "diffuse", Path: "resource.x_diffuse", Min: 0.05, Max: 4.0},
		},
	}
	defaults := pv.ExtractFromConfig(base)
	for i := range pv.Specs {
		pv.Specs[i].Default = defaults[i]
	}
	return pv
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the starting values clamped into bounds.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return pv.Clamp(v)
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := v[i]
		if val < spec.Min {
			val = spec.Min
		}
		if val > spec.Max {
			val = spec.Max
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)

	cfg.Resource.Outflow = clamped[0]
	cfg.Resource.XDiffuse = clamped[1]
	cfg.Resource.YDiffuse = clamped[1]
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Resource.Outflow,
		cfg.Resource.XDiffuse,
	}
}
