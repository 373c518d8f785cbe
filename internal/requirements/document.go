// Package requirements implements the validator dependency scheduler: it
// reads a requirements document declaring named validators with prerequisite
// relationships, computes an execution order, runs each validator against a
// map, and aggregates pass/fail results with severity accounting.
package requirements

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/banshee-data/lanelint/internal/validation"
)

// Prerequisite names a validator that must pass before its dependent runs.
// ForgiveWarnings lets a prerequisite that finished with only warnings still
// count as satisfied.
type Prerequisite struct {
	Name            string `json:"name"`
	ForgiveWarnings bool   `json:"forgive_warnings,omitempty"`
}

// ValidatorSpec declares one validator within a requirement. Passed and
// Issues start unset and are filled in by the scheduler.
type ValidatorSpec struct {
	Name          string             `json:"name"`
	Prerequisites []Prerequisite     `json:"prerequisites,omitempty"`
	Passed        *bool              `json:"passed,omitempty"`
	Issues        []validation.Issue `json:"issues,omitempty"`
}

// Requirement is an identified group of validators. It passes iff all of its
// validators pass.
type Requirement struct {
	ID         string           `json:"id"`
	Passed     *bool            `json:"passed,omitempty"`
	Validators []*ValidatorSpec `json:"validators"`
}

// Document is one requirements file. The scheduler annotates it in place
// with per-validator and per-requirement outcomes.
type Document struct {
	Requirements []*Requirement `json:"requirements"`
}

// Load reads a requirements document from a JSON file. This is the only hard
// failure in the scheduling pipeline: an unreadable requirements input aborts
// before any validation runs.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read requirements file: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse requirements file: %w", err)
	}
	for _, req := range doc.Requirements {
		if req.ID == "" {
			return nil, fmt.Errorf("requirements file contains a requirement without an id")
		}
		for _, v := range req.Validators {
			if v.Name == "" {
				return nil, fmt.Errorf("requirement %q contains a validator without a name", req.ID)
			}
		}
	}
	return &doc, nil
}

// Encode serializes the (possibly annotated) document as indented JSON.
func (d *Document) Encode() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}
