package geo

import (
	"errors"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSquareRing = orb.Ring{
	{-0.50, 39.00},
	{-0.49, 39.00},
	{-0.49, 39.01},
	{-0.50, 39.01},
	{-0.50, 39.00},
}

func TestParseGeometryEmpty(t *testing.T) {
	for _, raw := range []string{"", "   ", "\n\t", "null", "  null "} {
		_, err := ParseGeometry(raw)
		require.Error(t, err, "raw %q", raw)
		assert.ErrorIs(t, err, ErrEmpty)
	}
}

func TestParseGeometryLegacyAutoClose(t *testing.T) {
	open, err := ParseGeometry("-0.50,39.00 -0.49,39.00 -0.49,39.01 -0.50,39.01")
	require.NoError(t, err)
	closed, err := ParseGeometry("-0.50,39.00 -0.49,39.00 -0.49,39.01 -0.50,39.01 -0.50,39.00")
	require.NoError(t, err)

	assert.Equal(t, KindPolygon, open.Kind)
	require.Len(t, open.MultiPolygon, 1)
	assert.Equal(t, testSquareRing, open.MultiPolygon[0][0])
	assert.Equal(t, open.MultiPolygon, closed.MultiPolygon)
}

func TestParseGeometryLegacyLenient(t *testing.T) {
	raw := "  -0.50,39.00\n-0.49,39.00,12.5 garbage -0.49,abc 1.0 -0.49,39.01 ,, -0.50,39.01  "
	g, err := ParseGeometry(raw)
	require.NoError(t, err)
	assert.Equal(t, testSquareRing, g.MultiPolygon[0][0])
}

func TestParseGeometryLegacyMalformed(t *testing.T) {
	for _, raw := range []string{
		"-0.50,39.00 -0.49,39.00",
		"a,b c,d e,f g,h",
		"-0.50,39.00 -0.50,39.00 -0.50,39.00 -0.49,39.00",
		"NaN,1 2,Inf 3,4",
		"[[1,2],[3,4],[5,6]]",
	} {
		_, err := ParseGeometry(raw)
		require.Error(t, err, "raw %q", raw)
		assert.ErrorIs(t, err, ErrMalformed, "raw %q", raw)

		var geomErr *GeometryError
		require.True(t, errors.As(err, &geomErr))
		assert.Equal(t, "malformed", geomErr.KindName())
	}
}

func TestParseGeometryGeoJSONPolygon(t *testing.T) {
	raw := `{"type":"Polygon","coordinates":[[[-0.50,39.00],[-0.49,39.00],[-0.49,39.01],[-0.50,39.01]]]}`
	g, err := ParseGeometry(raw)
	require.NoError(t, err)
	assert.Equal(t, KindPolygon, g.Kind)
	require.Len(t, g.MultiPolygon, 1)
	assert.Equal(t, testSquareRing, g.MultiPolygon[0][0])

	legacy, err := ParseGeometry("-0.50,39.00 -0.49,39.00 -0.49,39.01 -0.50,39.01")
	require.NoError(t, err)
	assert.Equal(t, legacy.MultiPolygon, g.MultiPolygon)
}

func TestParseGeometryGeoJSONMultiPolygonWithHole(t *testing.T) {
	raw := `{
		"type": "MultiPolygon",
		"coordinates": [
			[
				[[0,0],[10,0],[10,10],[0,10],[0,0]],
				[[4,4],[6,4],[6,6],[4,6]]
			],
			[
				[[20,20],[21,20],[21,21]]
			]
		]
	}`
	g, err := ParseGeometry(raw)
	require.NoError(t, err)
	assert.Equal(t, KindMultiPolygon, g.Kind)
	require.Len(t, g.MultiPolygon, 2)
	require.Len(t, g.MultiPolygon[0], 2)
	assert.Len(t, g.MultiPolygon[0][1], 5)
	assert.Len(t, g.MultiPolygon[1][0], 4)
	assert.Equal(t, 5+5+4, g.NumPoints())
}

func TestParseGeometryGeoJSONDropsDegeneratePolygons(t *testing.T) {
	raw := `{"type":"MultiPolygon","coordinates":[[[[1,1],[1,1],[2,2]]],[[[0,0],[1,0],[1,1]]]]}`
	g, err := ParseGeometry(raw)
	require.NoError(t, err)
	require.Len(t, g.MultiPolygon, 1)
	assert.Equal(t, orb.Ring{{0, 0}, {1, 0}, {1, 1}, {0, 0}}, g.MultiPolygon[0][0])

	_, err = ParseGeometry(`{"type":"Polygon","coordinates":[[[1,1],[2,2]]]}`)
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = ParseGeometry(`{"type":"Polygon","coordinates":[]}`)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestParseGeometryGeoJSONUnsupported(t *testing.T) {
	for _, raw := range []string{
		`{"type":"Point","coordinates":[1,2]}`,
		`{"type":"LineString","coordinates":[[1,2],[3,4],[5,6]]}`,
		`{"type":"Feature","geometry":null,"properties":{}}`,
		`{"type":"polygon","coordinates":[[[0,0],[1,0],[1,1]]]}`,
	} {
		_, err := ParseGeometry(raw)
		assert.ErrorIs(t, err, ErrUnsupportedType, "raw %q", raw)
	}
}

func TestParseGeometryGeoJSONMalformed(t *testing.T) {
	for _, raw := range []string{
		`{"type":"Polygon","coordinates":[[[0,0],[1,0]`,
		`{"coordinates":[[[0,0],[1,0],[1,1]]]}`,
		`{"type":"Polygon","coordinates":"nope"}`,
	} {
		_, err := ParseGeometry(raw)
		assert.ErrorIs(t, err, ErrMalformed, "raw %q", raw)
	}
}

func TestParseGeometryDeterministic(t *testing.T) {
	for _, raw := range []string{
		"-3.7,40.4 -3.6,40.4 -3.6,40.5 -3.65,40.55 -3.7,40.5",
		`{"type":"MultiPolygon","coordinates":[[[[0,0],[3,0],[3,3],[0,3]]],[[[5,5],[6,5],[6,6]]]]}`,
	} {
		a, err := ParseGeometry(raw)
		require.NoError(t, err)
		b, err := ParseGeometry(raw)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	}
}

func TestParseGeometryDoesNotAliasInput(t *testing.T) {
	g, err := ParseGeometry("0,0 1,0 1,1 0,0")
	require.NoError(t, err)
	ring := g.MultiPolygon[0][0]
	ring[0] = orb.Point{9, 9}

	again, err := ParseGeometry("0,0 1,0 1,1 0,0")
	require.NoError(t, err)
	assert.Equal(t, orb.Point{0, 0}, again.MultiPolygon[0][0][0])
}
