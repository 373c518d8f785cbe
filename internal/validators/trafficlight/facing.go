// Package trafficlight validates traffic-light primitives. The facing check
// decides, for every red/yellow/green traffic-light linestring, whether its
// point ordering encodes the physically correct facing direction, using
// stop-line geometry and lanelet adjacency as ground truth.
package trafficlight

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/lanelint/internal/config"
	"github.com/banshee-data/lanelint/internal/lanemap"
	"github.com/banshee-data/lanelint/internal/validation"
)

// FacingCheckName is the registered name of the facing check.
const FacingCheckName = "mapping.traffic_light.correct_facing"

// defaultAngleToleranceDeg is the angular slack accepted around a perfect
// perpendicular alignment between light direction and approach direction.
const defaultAngleToleranceDeg = 10.0

func init() {
	validation.Register(NewFacingValidator())
}

// FacingValidator implements the traffic-light facing check.
type FacingValidator struct {
	angleToleranceDeg float64
}

// NewFacingValidator returns a FacingValidator with default tuning.
func NewFacingValidator() *FacingValidator {
	return &FacingValidator{angleToleranceDeg: defaultAngleToleranceDeg}
}

// Name implements validation.Validator.
func (v *FacingValidator) Name() string { return FacingCheckName }

// Configure implements validation.Configurable.
func (v *FacingValidator) Configure(params *config.Params) {
	v.angleToleranceDeg = params.GetFacingAngleToleranceDeg()
}

// judgment accumulates the evidence gathered for one traffic light across
// all regulatory elements referencing it during a single pass. The flags are
// decoded into at most one terminal issue per light once the pass completes.
type judgment struct {
	referenced  bool // some traffic_light regulatory element refers to this light
	hasStopLine bool // a stop line constrained this light's facing
	seenCorrect bool // at least one stop line judged the facing correct
	seenWrong   bool // at least one stop line judged the facing opposite
	degenerate  bool // geometry too degenerate to judge; already reported
}

// Validate implements validation.Validator.
//
// Pass one accumulates per-light judgments: for every traffic_light
// regulatory element, the light's direction vector is compared against the
// vector from the stop-line midpoint to the light midpoint. The sine of the
// angle between them is +1 when the point ordering is correct and -1 when the
// light is drawn the other way round; sines outside both tolerance bands mean
// the regulatory element does not constrain this light. Pass two decodes the
// judgments into terminal issues.
func (v *FacingValidator) Validate(m *lanemap.Map) []validation.Issue {
	var issues []validation.Issue
	tolerance := math.Sin(v.angleToleranceDeg * math.Pi / 180)

	judgments := make(map[lanemap.ID]*judgment)
	var lightOrder []lanemap.ID
	for _, ls := range m.LineStrings {
		if isRedYellowGreenTrafficLight(ls) {
			judgments[ls.ID] = &judgment{}
			lightOrder = append(lightOrder, ls.ID)
		}
	}

	for _, re := range m.RegulatoryElements {
		if !re.Attributes.Is(lanemap.KeySubtype, lanemap.SubtypeTrafficLight) {
			continue
		}
		stopLine := stopLineOf(m, re)
		referring := m.LaneletsReferring(re.ID)

		for _, lightID := range re.RoleMembers(lanemap.RoleRefers) {
			light, ok := m.LineString(lightID)
			if !ok || !isRedYellowGreenTrafficLight(light) {
				continue
			}
			j := judgments[light.ID]
			j.referenced = true

			if len(referring) == 0 {
				issues = append(issues, validation.NewIssue(
					validation.SeverityWarning, validation.PrimitiveLineString, light.ID,
					validation.IssueCodePrefix(FacingCheckName, 3,
						"regulatory element of traffic light must be referred by at least one lanelet")))
			} else if !stopLine.Empty() {
				issues = append(issues, v.checkStartingEdges(light.ID, referring, stopLine)...)
			}

			if stopLine.Empty() {
				// Decoded after the pass as a missing stop line unless
				// another regulatory element supplies one.
				continue
			}

			sine, sineIssues := facingSine(light, stopLine)
			if len(sineIssues) > 0 {
				issues = append(issues, sineIssues...)
				j.degenerate = true
				continue
			}

			switch {
			case math.Abs(sine-1) <= tolerance:
				j.hasStopLine = true
				j.seenCorrect = true
			case math.Abs(sine+1) <= tolerance:
				j.hasStopLine = true
				j.seenWrong = true
			}
			// Sines outside both bands: this regulatory element does not
			// constrain this light's facing.
		}
	}

	for _, id := range lightOrder {
		j := judgments[id]
		switch {
		case !j.referenced:
			issues = append(issues, validation.NewIssue(
				validation.SeverityError, validation.PrimitiveLineString, id,
				validation.IssueCodePrefix(FacingCheckName, 1,
					"traffic light is not referenced by any traffic light regulatory element")))
		case !j.hasStopLine && j.degenerate:
			// Already reported as a degenerate-geometry issue.
		case !j.hasStopLine:
			issues = append(issues, validation.NewIssue(
				validation.SeverityError, validation.PrimitiveLineString, id,
				validation.IssueCodePrefix(FacingCheckName, 2,
					"cannot find a corresponding stop line for this traffic light")))
		case j.seenWrong && !j.seenCorrect:
			issues = append(issues, validation.NewIssue(
				validation.SeverityError, validation.PrimitiveLineString, id,
				validation.IssueCodePrefix(FacingCheckName, 5,
					"the linestring direction seems to be opposite; the traffic light is facing away from its stop line")))
		case j.seenWrong && j.seenCorrect:
			issues = append(issues, validation.NewIssue(
				validation.SeverityWarning, validation.PrimitiveLineString, id,
				validation.IssueCodePrefix(FacingCheckName, 6,
					"the linestring direction has been judged as both correct and wrong; verify the facing manually")))
		}
		// seenCorrect only: the facing is fine, no issue.
	}

	return issues
}

// isRedYellowGreenTrafficLight reports whether the linestring is a standard
// three-aspect traffic light head.
func isRedYellowGreenTrafficLight(ls lanemap.LineString) bool {
	return ls.Attributes.Is(lanemap.KeyType, lanemap.TypeTrafficLight) &&
		ls.Attributes.Is(lanemap.KeySubtype, lanemap.SubtypeRedYellowGreen)
}

// stopLineOf returns the first ref_line member of the regulatory element
// tagged as a stop line, or the empty sentinel when there is none. Multiple
// stop lines on one element are not expected; the first one wins.
func stopLineOf(m *lanemap.Map, re lanemap.RegulatoryElement) lanemap.LineString {
	for _, id := range re.RoleMembers(lanemap.RoleRefLine) {
		ls, ok := m.LineString(id)
		if ok && ls.Attributes.Is(lanemap.KeyType, lanemap.TypeStopLine) {
			return ls
		}
	}
	return lanemap.LineString{}
}

// facingSine computes the signed sine between the light's direction vector
// and the vector from the stop-line midpoint to the light midpoint.
// Degenerate geometry (too few points, coincident midpoints) is reported as
// issues so that one malformed light never aborts the whole pass.
func facingSine(light, stopLine lanemap.LineString) (float64, []validation.Issue) {
	lightMid, err := lanemap.Midpoint(light)
	if err != nil {
		return 0, []validation.Issue{validation.NewIssue(
			validation.SeverityError, validation.PrimitiveLineString, light.ID,
			validation.IssueCodePrefix(FacingCheckName, 7, err.Error()))}
	}
	stopMid, err := lanemap.Midpoint(stopLine)
	if err != nil {
		return 0, []validation.Issue{validation.NewIssue(
			validation.SeverityError, validation.PrimitiveLineString, stopLine.ID,
			validation.IssueCodePrefix(FacingCheckName, 7, err.Error()))}
	}
	lightDir, err := lanemap.Direction(light)
	if err != nil {
		return 0, []validation.Issue{validation.NewIssue(
			validation.SeverityError, validation.PrimitiveLineString, light.ID,
			validation.IssueCodePrefix(FacingCheckName, 7, err.Error()))}
	}

	sine, err := lanemap.SineBetween2D(lightDir, r3.Sub(lightMid, stopMid))
	if err != nil {
		return 0, []validation.Issue{validation.NewIssue(
			validation.SeverityError, validation.PrimitiveLineString, light.ID,
			validation.IssueCodePrefix(FacingCheckName, 7,
				"cannot judge the facing of this traffic light: "+err.Error()))}
	}
	return sine, nil
}

// checkStartingEdges cross-checks that every lanelet referring to the same
// regulatory element approaches the stop line from a consistent direction.
// Each lanelet's starting edge is the left/right bound endpoint pair nearest
// the stop line; divergent edge directions among siblings mean the element
// also covers a lanelet travelling the other way, which makes the facing
// inherently ambiguous, so this is a Warning rather than an Error.
func (v *FacingValidator) checkStartingEdges(lightID lanemap.ID, lanelets []lanemap.Lanelet, stopLine lanemap.LineString) []validation.Issue {
	var issues []validation.Issue

	reference, ok := startingEdge(lanelets[0], stopLine)
	if !ok {
		return issues
	}
	for _, ll := range lanelets[1:] {
		edge, ok := startingEdge(ll, stopLine)
		if !ok {
			continue
		}
		cosine, err := lanemap.CosineBetween(reference, edge)
		if err != nil {
			// Zero-width starting edge; nothing to compare against.
			continue
		}
		if cosine < 0 {
			issues = append(issues, validation.NewIssue(
				validation.SeverityWarning, validation.PrimitiveLineString, lightID,
				validation.IssueCodePrefix(FacingCheckName, 4,
					"lanelets referring to this traffic light have divergent starting edges")))
		}
	}
	return issues
}

// startingEdge returns the left-to-right vector of the lanelet's bound
// endpoint pair nearest the reference line, trying both pairings of
// endpoints against the reference endpoints. The second return value is
// false when a bound has no points.
func startingEdge(ll lanemap.Lanelet, reference lanemap.LineString) (r3.Vec, bool) {
	if len(ll.LeftBound.Points) == 0 || len(ll.RightBound.Points) == 0 || len(reference.Points) == 0 {
		return r3.Vec{}, false
	}

	frontL := ll.LeftBound.Front().Vec()
	backL := ll.LeftBound.Back().Vec()
	frontR := ll.RightBound.Front().Vec()
	backR := ll.RightBound.Back().Vec()

	ref1 := reference.Front().Vec()
	ref2 := reference.Back().Vec()
	normSum := func(a, b r3.Vec) float64 {
		return r3.Norm(r3.Sub(a, ref1)) + r3.Norm(r3.Sub(b, ref2))
	}

	frontMin := math.Min(normSum(frontL, frontR), normSum(frontR, frontL))
	backMin := math.Min(normSum(backL, backR), normSum(backR, backL))

	if frontMin <= backMin {
		return r3.Sub(frontR, frontL), true
	}
	return r3.Sub(backR, backL), true
}
