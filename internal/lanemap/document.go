package lanemap

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// The map document is a plain JSON encoding of one lane map. Points live in
// their own layer and every other layer references them by id, mirroring the
// layered structure of the native map format without carrying its
// serialization. Linestrings referenced by lanelets and regulatory elements
// are likewise stored by id.

type documentPoint struct {
	ID ID      `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	Z  float64 `json:"z,omitempty"`
}

type documentLineString struct {
	ID         ID                `json:"id"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Points     []ID              `json:"points"`
}

type documentPolygon struct {
	ID         ID                `json:"id"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Points     []ID              `json:"points"`
}

type documentLanelet struct {
	ID                 ID                `json:"id"`
	Attributes         map[string]string `json:"attributes,omitempty"`
	LeftBound          ID                `json:"left_bound"`
	RightBound         ID                `json:"right_bound"`
	RegulatoryElements []ID              `json:"regulatory_elements,omitempty"`
}

type documentRegElem struct {
	ID         ID                `json:"id"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Parameters map[string][]ID   `json:"parameters,omitempty"`
}

type document struct {
	Origin             *Origin              `json:"origin,omitempty"`
	Points             []documentPoint      `json:"points"`
	LineStrings        []documentLineString `json:"linestrings"`
	Polygons           []documentPolygon    `json:"polygons,omitempty"`
	Lanelets           []documentLanelet    `json:"lanelets,omitempty"`
	RegulatoryElements []documentRegElem    `json:"regulatory_elements,omitempty"`
}

// Decode parses a map document from JSON, resolving all point and linestring
// references. Unknown references are errors: a map with dangling ids cannot
// be validated meaningfully.
func Decode(data []byte) (*Map, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse map document: %w", err)
	}

	points := make(map[ID]Point, len(doc.Points))
	for _, dp := range doc.Points {
		if _, dup := points[dp.ID]; dup {
			return nil, fmt.Errorf("duplicate point id %d in map document", dp.ID)
		}
		points[dp.ID] = Point{ID: dp.ID, X: dp.X, Y: dp.Y, Z: dp.Z}
	}

	resolvePoints := func(kind string, owner ID, ids []ID) ([]Point, error) {
		out := make([]Point, 0, len(ids))
		for _, id := range ids {
			p, ok := points[id]
			if !ok {
				return nil, fmt.Errorf("%s %d references unknown point %d", kind, owner, id)
			}
			out = append(out, p)
		}
		return out, nil
	}

	m := &Map{}
	for _, dls := range doc.LineStrings {
		pts, err := resolvePoints("linestring", dls.ID, dls.Points)
		if err != nil {
			return nil, err
		}
		m.LineStrings = append(m.LineStrings, LineString{
			ID:         dls.ID,
			Attributes: Attributes(dls.Attributes),
			Points:     pts,
		})
	}
	for _, dp := range doc.Polygons {
		pts, err := resolvePoints("polygon", dp.ID, dp.Points)
		if err != nil {
			return nil, err
		}
		m.Polygons = append(m.Polygons, Polygon{
			ID:         dp.ID,
			Attributes: Attributes(dp.Attributes),
			Points:     pts,
		})
	}

	lineStrings := make(map[ID]LineString, len(m.LineStrings))
	for _, ls := range m.LineStrings {
		lineStrings[ls.ID] = ls
	}
	for _, dll := range doc.Lanelets {
		left, ok := lineStrings[dll.LeftBound]
		if !ok {
			return nil, fmt.Errorf("lanelet %d references unknown left bound %d", dll.ID, dll.LeftBound)
		}
		right, ok := lineStrings[dll.RightBound]
		if !ok {
			return nil, fmt.Errorf("lanelet %d references unknown right bound %d", dll.ID, dll.RightBound)
		}
		m.Lanelets = append(m.Lanelets, Lanelet{
			ID:                 dll.ID,
			Attributes:         Attributes(dll.Attributes),
			LeftBound:          left,
			RightBound:         right,
			RegulatoryElements: dll.RegulatoryElements,
		})
	}
	for _, dre := range doc.RegulatoryElements {
		m.RegulatoryElements = append(m.RegulatoryElements, RegulatoryElement{
			ID:         dre.ID,
			Attributes: Attributes(dre.Attributes),
			Parameters: dre.Parameters,
		})
	}

	m.Origin = doc.Origin
	m.Normalize()
	return m, nil
}

// Encode serializes the map back to an indented JSON document. The point
// layer is reassembled from the points referenced by the other layers.
func Encode(m *Map) ([]byte, error) {
	doc := document{Origin: m.Origin}

	points := make(map[ID]Point)
	collect := func(pts []Point) []ID {
		ids := make([]ID, 0, len(pts))
		for _, p := range pts {
			points[p.ID] = p
			ids = append(ids, p.ID)
		}
		return ids
	}

	for _, ls := range m.LineStrings {
		doc.LineStrings = append(doc.LineStrings, documentLineString{
			ID:         ls.ID,
			Attributes: ls.Attributes,
			Points:     collect(ls.Points),
		})
	}
	for _, p := range m.Polygons {
		doc.Polygons = append(doc.Polygons, documentPolygon{
			ID:         p.ID,
			Attributes: p.Attributes,
			Points:     collect(p.Points),
		})
	}
	for _, ll := range m.Lanelets {
		collect(ll.LeftBound.Points)
		collect(ll.RightBound.Points)
		doc.Lanelets = append(doc.Lanelets, documentLanelet{
			ID:                 ll.ID,
			Attributes:         ll.Attributes,
			LeftBound:          ll.LeftBound.ID,
			RightBound:         ll.RightBound.ID,
			RegulatoryElements: ll.RegulatoryElements,
		})
	}
	for _, re := range m.RegulatoryElements {
		doc.RegulatoryElements = append(doc.RegulatoryElements, documentRegElem{
			ID:         re.ID,
			Attributes: re.Attributes,
			Parameters: re.Parameters,
		})
	}

	ids := make([]ID, 0, len(points))
	for id := range points {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		p := points[id]
		doc.Points = append(doc.Points, documentPoint{ID: p.ID, X: p.X, Y: p.Y, Z: p.Z})
	}

	return json.MarshalIndent(doc, "", "  ")
}

// Load reads and decodes a map document from a file.
func Load(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read map file: %w", err)
	}
	return Decode(data)
}

// Save encodes the map and writes it to a file.
func Save(m *Map, path string) error {
	data, err := Encode(m)
	if err != nil {
		return fmt.Errorf("failed to encode map document: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write map file: %w", err)
	}
	return nil
}
