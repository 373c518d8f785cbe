// Package config loads the optional tuning parameters for the validation
// CLI. Fields omitted from the JSON file retain their defaults, so partial
// configs are safe.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// maxFileSize caps the config file size (validation maps can be large; the
// config never should be).
const maxFileSize = 1 * 1024 * 1024 // 1MB

// Params is the root tuning configuration. All fields are optional; the
// Get* accessors provide the defaults.
type Params struct {
	// FacingAngleToleranceDeg is the angular tolerance, in degrees, the
	// traffic-light facing check accepts around a perfect perpendicular
	// alignment.
	FacingAngleToleranceDeg *float64 `json:"facing_angle_tolerance_deg,omitempty"`

	// ResultsFileName is the name of the annotated requirements document
	// written into the output directory.
	ResultsFileName *string `json:"results_file_name,omitempty"`
}

// Load reads a Params from a JSON file.
func Load(path string) (*Params, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("params file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat params file: %w", err)
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("params file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read params file: %w", err)
	}

	p := &Params{}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to parse params JSON: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	return p, nil
}

// Validate checks that the configured values are usable.
func (p *Params) Validate() error {
	if p.FacingAngleToleranceDeg != nil {
		v := *p.FacingAngleToleranceDeg
		if v <= 0 || v >= 90 {
			return fmt.Errorf("facing_angle_tolerance_deg must be in (0, 90), got %f", v)
		}
	}
	if p.ResultsFileName != nil && *p.ResultsFileName == "" {
		return fmt.Errorf("results_file_name must not be empty")
	}
	return nil
}

// GetFacingAngleToleranceDeg returns the facing tolerance or the default.
func (p *Params) GetFacingAngleToleranceDeg() float64 {
	if p == nil || p.FacingAngleToleranceDeg == nil {
		return 10.0
	}
	return *p.FacingAngleToleranceDeg
}

// GetResultsFileName returns the results file name or the default.
func (p *Params) GetResultsFileName() string {
	if p == nil || p.ResultsFileName == nil {
		return "lanelet2_validation_results.json"
	}
	return *p.ResultsFileName
}
