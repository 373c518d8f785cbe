package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/lanelint/internal/lanemap"
)

func pt(id lanemap.ID, x, y float64) lanemap.Point {
	return lanemap.Point{ID: id, X: x, Y: y}
}

func sourceMap() *lanemap.Map {
	m := &lanemap.Map{
		LineStrings: []lanemap.LineString{
			{ID: 10, Points: []lanemap.Point{pt(1, 0, 0), pt(2, 0, 10)}},
			{ID: 11, Points: []lanemap.Point{pt(3, 5, 0), pt(4, 5, 10)}},
			{
				ID:         20,
				Attributes: lanemap.Attributes{lanemap.KeyType: lanemap.TypeStopLine},
				Points:     []lanemap.Point{pt(5, 0, 10), pt(6, 5, 10)},
			},
			{
				ID: 21,
				Attributes: lanemap.Attributes{
					lanemap.KeyType:    lanemap.TypeTrafficLight,
					lanemap.KeySubtype: lanemap.SubtypeRedYellowGreen,
				},
				Points: []lanemap.Point{pt(7, 0, 15), pt(8, 5, 15)},
			},
			{ID: 22, Points: []lanemap.Point{pt(9, 100, 100), pt(10, 110, 100)}},
		},
		Lanelets: []lanemap.Lanelet{
			{
				ID:                 30,
				LeftBound:          lanemap.LineString{ID: 10, Points: []lanemap.Point{pt(1, 0, 0), pt(2, 0, 10)}},
				RightBound:         lanemap.LineString{ID: 11, Points: []lanemap.Point{pt(3, 5, 0), pt(4, 5, 10)}},
				RegulatoryElements: []lanemap.ID{40},
			},
		},
		RegulatoryElements: []lanemap.RegulatoryElement{
			{
				ID:         40,
				Attributes: lanemap.Attributes{lanemap.KeySubtype: lanemap.SubtypeTrafficLight},
				Parameters: map[string][]lanemap.ID{
					lanemap.RoleRefers:  {21},
					lanemap.RoleRefLine: {20},
				},
			},
			{
				ID: 41,
				Parameters: map[string][]lanemap.ID{
					lanemap.RoleRefers: {22},
				},
			},
		},
	}
	m.Normalize()
	return m
}

func TestExtract(t *testing.T) {
	subset, err := extract(sourceMap(), 30, []lanemap.ID{21})
	require.NoError(t, err)

	require.Len(t, subset.Lanelets, 1)
	assert.Equal(t, lanemap.ID(30), subset.Lanelets[0].ID)

	require.Len(t, subset.RegulatoryElements, 1, "only elements referencing the wanted lights come along")
	assert.Equal(t, lanemap.ID(40), subset.RegulatoryElements[0].ID)

	var ids []lanemap.ID
	for _, ls := range subset.LineStrings {
		ids = append(ids, ls.ID)
	}
	assert.ElementsMatch(t, []lanemap.ID{10, 11, 20, 21}, ids)
}

func TestExtractNoLights(t *testing.T) {
	subset, err := extract(sourceMap(), 30, nil)
	require.NoError(t, err)

	assert.Empty(t, subset.RegulatoryElements)
	require.Len(t, subset.LineStrings, 2, "bounds only")
}

func TestExtractUnknownLightIgnored(t *testing.T) {
	// Light ids that match no regulatory element are skipped, not fatal.
	subset, err := extract(sourceMap(), 30, []lanemap.ID{999})
	require.NoError(t, err)

	assert.Empty(t, subset.RegulatoryElements)
	assert.Len(t, subset.LineStrings, 2, "only the lanelet bounds survive")
}

func TestExtractUnknownLanelet(t *testing.T) {
	_, err := extract(sourceMap(), 999, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lanelet 999 not found")
}

func TestParseIDList(t *testing.T) {
	tests := []struct {
		in      string
		want    []lanemap.ID
		wantErr bool
	}{
		{in: "", want: nil},
		{in: "  ", want: nil},
		{in: "21", want: []lanemap.ID{21}},
		{in: "21, 22,23", want: []lanemap.ID{21, 22, 23}},
		{in: "21,xyz", wantErr: true},
	}

	for _, tt := range tests {
		got, err := parseIDList(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}
