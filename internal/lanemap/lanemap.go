// Package lanemap defines the in-memory lane map consumed by the validators:
// layered collections of points, linestrings, polygons, lanelets and
// regulatory elements, each carrying string-keyed attributes and a numeric
// identifier. The map is read-only for the duration of a validation pass.
package lanemap

import "sort"

// ID identifies a map primitive. Zero is reserved for "no primitive".
type ID int64

// InvalID is the id of primitives that do not exist (empty sentinels).
const InvalID ID = 0

// Attribute keys and values shared by the validators.
const (
	KeyType          = "type"
	KeySubtype       = "subtype"
	KeyTurnDirection = "turn_direction"

	TypeTrafficLight     = "traffic_light"
	TypeStopLine         = "stop_line"
	TypeIntersectionArea = "intersection_area"

	SubtypeTrafficLight   = "traffic_light"
	SubtypeRedYellowGreen = "red_yellow_green"
)

// Regulatory element parameter roles. Refers links the governed feature
// (e.g. the traffic light heads); RefLine links the reference line (e.g. the
// stop line drivers must halt at).
const (
	RoleRefers  = "refers"
	RoleRefLine = "ref_line"
)

// Attributes is the string-keyed tag set carried by every primitive.
type Attributes map[string]string

// Get returns the value for key, or the empty string when absent.
func (a Attributes) Get(key string) string { return a[key] }

// Has reports whether key is present.
func (a Attributes) Has(key string) bool {
	_, ok := a[key]
	return ok
}

// Is reports whether key is present with exactly the given value.
func (a Attributes) Is(key, value string) bool {
	v, ok := a[key]
	return ok && v == value
}

// Point is a single 3D map point.
type Point struct {
	ID ID
	X  float64
	Y  float64
	Z  float64
}

// LineString is an ordered sequence of points. Direction (start to end) is
// semantically meaningful: for traffic lights it encodes the facing.
type LineString struct {
	ID         ID
	Attributes Attributes
	Points     []Point
}

// Empty reports whether the linestring is the "no such linestring" sentinel.
func (ls LineString) Empty() bool { return ls.ID == InvalID && len(ls.Points) == 0 }

// Front returns the first point. Callers must check len(Points) first.
func (ls LineString) Front() Point { return ls.Points[0] }

// Back returns the last point. Callers must check len(Points) first.
func (ls LineString) Back() Point { return ls.Points[len(ls.Points)-1] }

// Polygon is a closed ring of points (the closing edge is implicit).
type Polygon struct {
	ID         ID
	Attributes Attributes
	Points     []Point
}

// Lanelet is an atomic drivable lane segment bounded by a left and right
// linestring. RegulatoryElements lists the ids of the regulatory elements
// governing this lanelet.
type Lanelet struct {
	ID                 ID
	Attributes         Attributes
	LeftBound          LineString
	RightBound         LineString
	RegulatoryElements []ID
}

// RegulatoryElement links lanelets to governing features via named roles.
// Parameters maps a role name to the linestring ids filling that role.
type RegulatoryElement struct {
	ID         ID
	Attributes Attributes
	Parameters map[string][]ID
}

// RoleMembers returns the linestring ids registered under role, in
// declaration order.
func (re RegulatoryElement) RoleMembers(role string) []ID {
	if re.Parameters == nil {
		return nil
	}
	return re.Parameters[role]
}

// Origin is the geographic reference the map's local coordinates were
// projected from. It is carried as metadata only; validators never use it.
type Origin struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

// Map is one loaded lane map. Layers are ordered by id after Normalize so
// that repeated traversals are deterministic.
type Map struct {
	Origin             *Origin
	LineStrings        []LineString
	Polygons           []Polygon
	Lanelets           []Lanelet
	RegulatoryElements []RegulatoryElement

	lineStringByID map[ID]int
	laneletByID    map[ID]int
	regElemByID    map[ID]int
}

// Normalize sorts every layer by id and rebuilds the lookup indexes. The
// document codec calls this on load; callers assembling a Map by hand must
// call it before validation.
func (m *Map) Normalize() {
	sort.Slice(m.LineStrings, func(i, j int) bool { return m.LineStrings[i].ID < m.LineStrings[j].ID })
	sort.Slice(m.Polygons, func(i, j int) bool { return m.Polygons[i].ID < m.Polygons[j].ID })
	sort.Slice(m.Lanelets, func(i, j int) bool { return m.Lanelets[i].ID < m.Lanelets[j].ID })
	sort.Slice(m.RegulatoryElements, func(i, j int) bool {
		return m.RegulatoryElements[i].ID < m.RegulatoryElements[j].ID
	})

	m.lineStringByID = make(map[ID]int, len(m.LineStrings))
	for i, ls := range m.LineStrings {
		m.lineStringByID[ls.ID] = i
	}
	m.laneletByID = make(map[ID]int, len(m.Lanelets))
	for i, ll := range m.Lanelets {
		m.laneletByID[ll.ID] = i
	}
	m.regElemByID = make(map[ID]int, len(m.RegulatoryElements))
	for i, re := range m.RegulatoryElements {
		m.regElemByID[re.ID] = i
	}
}

// LineString looks up a linestring by id.
func (m *Map) LineString(id ID) (LineString, bool) {
	i, ok := m.lineStringByID[id]
	if !ok {
		return LineString{}, false
	}
	return m.LineStrings[i], true
}

// Lanelet looks up a lanelet by id.
func (m *Map) Lanelet(id ID) (Lanelet, bool) {
	i, ok := m.laneletByID[id]
	if !ok {
		return Lanelet{}, false
	}
	return m.Lanelets[i], true
}

// RegulatoryElement looks up a regulatory element by id.
func (m *Map) RegulatoryElement(id ID) (RegulatoryElement, bool) {
	i, ok := m.regElemByID[id]
	if !ok {
		return RegulatoryElement{}, false
	}
	return m.RegulatoryElements[i], true
}

// LaneletsReferring returns every lanelet whose regulatory element list
// contains regElemID, in layer order.
func (m *Map) LaneletsReferring(regElemID ID) []Lanelet {
	var out []Lanelet
	for _, ll := range m.Lanelets {
		for _, id := range ll.RegulatoryElements {
			if id == regElemID {
				out = append(out, ll)
				break
			}
		}
	}
	return out
}
