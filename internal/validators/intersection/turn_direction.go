// Package intersection validates intersection tagging. Every lanelet inside
// an intersection_area polygon must declare which way it turns.
package intersection

import (
	"fmt"

	"github.com/banshee-data/lanelint/internal/lanemap"
	"github.com/banshee-data/lanelint/internal/validation"
)

// TurnDirectionCheckName is the registered name of the turn-direction check.
const TurnDirectionCheckName = "mapping.intersection.turn_direction_tagging"

func init() {
	validation.Register(&TurnDirectionValidator{})
}

// TurnDirectionValidator checks that lanelets within intersection areas
// carry a valid turn_direction tag.
type TurnDirectionValidator struct{}

// Name implements validation.Validator.
func (v *TurnDirectionValidator) Name() string { return TurnDirectionCheckName }

var validTurnDirections = map[string]bool{
	"left":     true,
	"straight": true,
	"right":    true,
}

// Validate implements validation.Validator. For every polygon tagged as an
// intersection_area, lanelets whose bounds lie entirely inside the polygon's
// 2D bounding box must have a turn_direction of left, straight or right.
func (v *TurnDirectionValidator) Validate(m *lanemap.Map) []validation.Issue {
	var issues []validation.Issue

	for _, poly := range m.Polygons {
		if !poly.Attributes.Is(lanemap.KeyType, lanemap.TypeIntersectionArea) {
			continue
		}
		bbox, ok := lanemap.PolygonBoundingBox(poly)
		if !ok {
			continue
		}

		for _, lane := range m.Lanelets {
			if !lanemap.LaneletWithinBox(bbox, lane) {
				continue
			}

			if !lane.Attributes.Has(lanemap.KeyTurnDirection) {
				issues = append(issues, validation.NewIssue(
					validation.SeverityError, validation.PrimitiveLanelet, lane.ID,
					validation.IssueCodePrefix(TurnDirectionCheckName, 1,
						"this lanelet is missing a turn_direction tag")))
				continue
			}

			direction := lane.Attributes.Get(lanemap.KeyTurnDirection)
			if !validTurnDirections[direction] {
				issues = append(issues, validation.NewIssue(
					validation.SeverityError, validation.PrimitiveLanelet, lane.ID,
					validation.IssueCodePrefix(TurnDirectionCheckName, 2,
						fmt.Sprintf("invalid turn_direction tag found (%s)", direction))))
			}
		}
	}

	return issues
}
