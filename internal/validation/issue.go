package validation

import (
	"fmt"

	"github.com/banshee-data/lanelint/internal/lanemap"
)

// Primitive identifies the kind of map element an issue points at.
type Primitive string

const (
	PrimitivePoint             Primitive = "point"
	PrimitiveLineString        Primitive = "linestring"
	PrimitivePolygon           Primitive = "polygon"
	PrimitiveLanelet           Primitive = "lanelet"
	PrimitiveRegulatoryElement Primitive = "regulatory_element"

	// PrimitiveGeneric marks issues that concern a requirement over
	// primitives rather than one concrete map element, such as the
	// synthetic issues the scheduler attaches to blocked validators.
	PrimitiveGeneric Primitive = "primitive"
)

// Issue is one finding emitted by a map check. Issues are immutable values;
// checks create them and everything downstream only reads them.
type Issue struct {
	Severity  Severity   `json:"severity"`
	Primitive Primitive  `json:"primitive"`
	ID        lanemap.ID `json:"id"`
	Message   string     `json:"message"`
}

// NewIssue builds an issue for a concrete map primitive.
func NewIssue(sev Severity, prim Primitive, id lanemap.ID, message string) Issue {
	return Issue{Severity: sev, Primitive: prim, ID: id, Message: message}
}

// String renders the issue the way the CLI prints it.
func (i Issue) String() string {
	return fmt.Sprintf("%s: %s (%s %d)", i.Severity, i.Message, i.Primitive, i.ID)
}

// CountBySeverity tallies issues per severity.
func CountBySeverity(issues []Issue) map[Severity]int {
	counts := make(map[Severity]int)
	for _, issue := range issues {
		counts[issue.Severity]++
	}
	return counts
}
