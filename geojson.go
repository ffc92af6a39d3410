package sphere

import (
	"encoding/json"

	geojson "github.com/paulmach/go.geojson"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"github.com/denismitr/sphere/internal/vector"
)

var ErrBadGeoJSON = errors.New("geojson could not be decoded")
var ErrUnsupportedGeometry = errors.New("unsupported geojson geometry")
var ErrEmptyPolygon = errors.New("empty polygon has no geometry")

// FromGeoJSON decodes a GeoJSON Polygon or MultiPolygon geometry, or a
// Feature wrapping one, into a spherical polygon. Each ring's interior
// point is inferred from its vertex centroid, so rings larger than a
// hemisphere cannot be represented this way. Holes are not supported.
func FromGeoJSON(data []byte) (*Polygon, error) {
	if gjson.GetBytes(data, "type").String() == "Feature" {
		data = []byte(gjson.GetBytes(data, "geometry").Raw)
	}

	g, err := geojson.UnmarshalGeometry(data)
	if err != nil {
		return nil, errors.Wrap(ErrBadGeoJSON, err.Error())
	}

	var polys [][][][]float64
	switch {
	case g.IsPolygon():
		polys = [][][][]float64{g.Polygon}
	case g.IsMultiPolygon():
		polys = g.MultiPolygon
	default:
		return nil, errors.Wrapf(ErrUnsupportedGeometry, "type %s", g.Type)
	}

	p := &Polygon{}
	for _, coords := range polys {
		if len(coords) == 0 {
			return nil, errors.Wrap(ErrBadGeoJSON, "polygon without rings")
		}
		if len(coords) > 1 {
			return nil, errors.Wrap(ErrUnsupportedGeometry, "polygon holes")
		}

		verts := make([]vector.Vector, 0, len(coords[0]))
		for _, pos := range coords[0] {
			if len(pos) < 2 {
				return nil, errors.Wrap(ErrBadGeoJSON, "position needs lon and lat")
			}
			verts = append(verts, vector.FromLonLat(pos[0], pos[1]))
		}

		inside, err := inferInterior(verts)
		if err != nil {
			return nil, err
		}

		r, err := newRing(verts, inside, defaultTolerance)
		if err != nil {
			return nil, err
		}

		p.rings = append(p.rings, r)
	}

	return p, nil
}

// GeoJSON encodes the polygon as a GeoJSON Polygon geometry, or a
// MultiPolygon when it has several rings.
func (p *Polygon) GeoJSON() ([]byte, error) {
	if p.IsEmpty() {
		return nil, ErrEmptyPolygon
	}

	coords := make([][][][]float64, len(p.rings))
	for i, r := range p.rings {
		closed := make([][]float64, 0, len(r.verts)+1)
		for _, v := range r.verts {
			lon, lat := v.LonLat()
			closed = append(closed, []float64{lon, lat})
		}
		closed = append(closed, closed[0])

		coords[i] = [][][]float64{closed}
	}

	var g *geojson.Geometry
	if len(coords) == 1 {
		g = geojson.NewPolygonGeometry(coords[0])
	} else {
		g = geojson.NewMultiPolygonGeometry(coords...)
	}

	return json.Marshal(g)
}

func inferInterior(verts []vector.Vector) (vector.Vector, error) {
	verts = dropRepeats(verts, defaultTolerance)

	c := centroid(verts)
	if c.Norm() > 0 && separates(verts, c) {
		return c, nil
	}
	if c.Norm() > 0 && separates(verts, c.Neg()) {
		return c.Neg(), nil
	}

	return vector.Vector{}, ErrNoInteriorFound
}
