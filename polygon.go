package sphere

import (
	"math"

	"github.com/pkg/errors"

	"github.com/denismitr/sphere/internal/arc"
	"github.com/denismitr/sphere/internal/vector"
)

var ErrTooFewVertices = errors.New("a spherical polygon needs at least 3 distinct vertices")
var ErrInteriorNotInside = errors.New("interior point must not lie on the boundary")
var ErrSingleRingOnly = errors.New("operation is defined for single ring polygons only")
var ErrBadCone = errors.New("cone radius must be in (0, 90) degrees")

// nearAntipodal flags separations where a connecting minor arc is no
// longer well defined and parity tests have to route via a waypoint.
const nearAntipodal = math.Pi - 1e-6

// ring is one closed boundary on the sphere plus an interior point. The
// boundary alone describes two regions; the interior point picks one,
// which is what lets a ring cover more than a hemisphere.
type ring struct {
	verts  []vector.Vector
	inside vector.Vector
}

// Polygon is a region on the unit sphere bounded by great circle arcs.
// Boolean operations can leave it with several disjoint rings, so a
// polygon is a collection of them. The zero value is the empty region.
type Polygon struct {
	rings []ring
}

// NewPolygon builds a single ring polygon from lon/lat vertex pairs in
// degrees. The chain may repeat the first vertex at the end or not. The
// interior point picks the side of the boundary the polygon covers.
func NewPolygon(lonlat [][2]float64, interior [2]float64) (*Polygon, error) {
	verts := make([]vector.Vector, 0, len(lonlat))
	for _, p := range lonlat {
		verts = append(verts, vector.FromLonLat(p[0], p[1]))
	}

	return FromVectors(verts, vector.FromLonLat(interior[0], interior[1]))
}

// FromVectors builds a single ring polygon from unit vectors.
func FromVectors(verts []vector.Vector, interior vector.Vector) (*Polygon, error) {
	r, err := newRing(verts, interior, defaultTolerance)
	if err != nil {
		return nil, err
	}

	return &Polygon{rings: []ring{r}}, nil
}

// FromCone approximates the small circle of the given angular radius
// (degrees) around center lon/lat with a regular polygon: the point
// radius degrees away from the center swept around the center axis.
func FromCone(lon, lat, radius float64, opts ...Option) (*Polygon, error) {
	if radius <= 0 || radius >= 90 {
		return nil, errors.Wrapf(ErrBadCone, "got %f", radius)
	}

	cfg := newConfig(opts)
	center := vector.FromLonLat(lon, lat)

	start := center.RotateAround(perpendicularTo(center), radius*math.Pi/180)

	verts := make([]vector.Vector, cfg.ConeSteps)
	for i := 0; i < cfg.ConeSteps; i++ {
		verts[i] = start.RotateAround(center, 2*math.Pi*float64(i)/float64(cfg.ConeSteps))
	}

	return FromVectors(verts, center)
}

func newRing(verts []vector.Vector, inside vector.Vector, tol float64) (ring, error) {
	verts = dropRepeats(verts, tol)
	if len(verts) < 3 {
		return ring{}, errors.Wrapf(ErrTooFewVertices, "got %d", len(verts))
	}

	r := ring{verts: verts, inside: inside}
	if r.onBoundary(inside, tol) {
		return ring{}, ErrInteriorNotInside
	}

	return r, nil
}

func dropRepeats(verts []vector.Vector, tol float64) []vector.Vector {
	out := make([]vector.Vector, 0, len(verts))
	for _, v := range verts {
		if len(out) > 0 && v.Equals(out[len(out)-1], tol) {
			continue
		}
		out = append(out, v)
	}

	for len(out) > 1 && out[0].Equals(out[len(out)-1], tol) {
		out = out[:len(out)-1]
	}

	return out
}

// perpendicularTo returns a unit vector orthogonal to p.
func perpendicularTo(p vector.Vector) vector.Vector {
	axis := p.Cross(vector.Vector{Z: 1})
	if axis.Norm() < 1e-9 {
		axis = p.Cross(vector.Vector{X: 1})
	}
	return axis.Normalize()
}

// windingAround accumulates the azimuth of the ring vertices as seen
// from p. The total is ±2π when the boundary separates p from its
// antipode and 0 when it does not. Only meaningful for rings whose
// edges subtend less than π of azimuth each, which holds for the
// footprint scale rings the boolean machinery assembles.
func windingAround(verts []vector.Vector, p vector.Vector) float64 {
	e1 := perpendicularTo(p)
	e2 := p.Cross(e1)

	az := make([]float64, len(verts))
	for i, v := range verts {
		u := v.Sub(p.Scale(p.Dot(v)))
		az[i] = math.Atan2(u.Dot(e2), u.Dot(e1))
	}

	total := 0.0
	for i := range az {
		d := az[(i+1)%len(az)] - az[i]
		for d > math.Pi {
			d -= 2 * math.Pi
		}
		for d <= -math.Pi {
			d += 2 * math.Pi
		}
		total += d
	}

	return total
}

func (r ring) edge(i int) (vector.Vector, vector.Vector) {
	return r.verts[i], r.verts[(i+1)%len(r.verts)]
}

func (r ring) onBoundary(p vector.Vector, tol float64) bool {
	for i := range r.verts {
		a, b := r.edge(i)
		if arc.ContainsPoint(a, b, p, tol) {
			return true
		}
	}
	return false
}

// crossings counts the distinct points where the arc xy meets the ring
// boundary. A crossing landing on a shared vertex of two edges is
// counted once.
func (r ring) crossings(x, y vector.Vector) int {
	var pts []vector.Vector

	for i := range r.verts {
		a, b := r.edge(i)
		p, ok := arc.Intersection(a, b, x, y)
		if !ok {
			continue
		}

		dup := false
		for _, seen := range pts {
			if p.Equals(seen, 1e-9) {
				dup = true
				break
			}
		}
		if !dup {
			pts = append(pts, p)
		}
	}

	return len(pts)
}

// sameSide reports whether x and y are on the same side of the ring
// boundary: an even number of crossings separates them. Near antipodal
// pairs are routed through a waypoint off the boundary, since the minor
// arc between them is not well defined.
func (r ring) sameSide(x, y vector.Vector) bool {
	if x.Equals(y, defaultTolerance) {
		return true
	}

	if x.SeparationTo(y) > nearAntipodal {
		w := r.waypointOffBoundary(x)
		return (r.crossings(x, w)+r.crossings(w, y))%2 == 0
	}

	return r.crossings(x, y)%2 == 0
}

func (r ring) waypointOffBoundary(x vector.Vector) vector.Vector {
	w := perpendicularTo(x)
	for i := 0; i < 16; i++ {
		if !r.onBoundary(w, 1e-9) {
			return w
		}
		w = w.RotateAround(x, 0.37)
	}
	return w
}

// contains reports whether p is in the ring, boundary included.
func (r ring) contains(p vector.Vector, tol float64) bool {
	if r.onBoundary(p, tol) {
		return true
	}
	return r.containsStrict(p)
}

// containsStrict is the classic parity test: walk an arc from the
// interior point to p and count boundary crossings. An even count keeps
// p on the interior side.
func (r ring) containsStrict(p vector.Vector) bool {
	return r.sameSide(r.inside, p)
}

// area returns the ring's solid angle in steradians. Girard's theorem
// over the traversal gives the area of the region left of the boundary;
// a probe just left of the first edge decides whether that region is
// the one the interior point names.
func (r ring) area() float64 {
	n := len(r.verts)

	sum := 0.0
	for i := 0; i < n; i++ {
		prev := r.verts[(i-1+n)%n]
		next := r.verts[(i+1)%n]
		sum += arc.Angle(prev, r.verts[i], next)
	}

	left := sum - float64(n-2)*math.Pi

	a, b := r.edge(0)
	probe := arc.Midpoint(a, b).
		Add(a.Cross(b).Normalize().Scale(1e-7)).
		Normalize()

	if r.sameSide(r.inside, probe) {
		return left
	}
	return 4*math.Pi - left
}

func (r ring) perimeter() float64 {
	total := 0.0
	for i := range r.verts {
		a, b := r.edge(i)
		total += arc.Length(a, b)
	}
	return total
}

func (r ring) clone() ring {
	cp := ring{
		verts:  make([]vector.Vector, len(r.verts)),
		inside: r.inside,
	}
	copy(cp.verts, r.verts)
	return cp
}

// IsEmpty reports whether the polygon covers no region at all.
func (p *Polygon) IsEmpty() bool {
	return len(p.rings) == 0
}

func (p *Polygon) RingCount() int {
	return len(p.rings)
}

// Area returns the covered solid angle in steradians, in [0, 4π].
func (p *Polygon) Area() float64 {
	total := 0.0
	for _, r := range p.rings {
		total += r.area()
	}
	return total
}

// Perimeter returns the total boundary length in radians.
func (p *Polygon) Perimeter() float64 {
	total := 0.0
	for _, r := range p.rings {
		total += r.perimeter()
	}
	return total
}

// ContainsPoint reports whether the unit vector v falls inside the
// polygon. Boundary points count as contained.
func (p *Polygon) ContainsPoint(v vector.Vector) bool {
	for _, r := range p.rings {
		if r.contains(v, defaultTolerance) {
			return true
		}
	}
	return false
}

func (p *Polygon) ContainsLonLat(lon, lat float64) bool {
	return p.ContainsPoint(vector.FromLonLat(lon, lat))
}

func (p *Polygon) containsStrict(v vector.Vector) bool {
	for _, r := range p.rings {
		if r.containsStrict(v) {
			return true
		}
	}
	return false
}

// Vertices returns the lon/lat vertex chains of every ring, degrees,
// without the closing repeat.
func (p *Polygon) Vertices() [][][2]float64 {
	out := make([][][2]float64, len(p.rings))
	for i, r := range p.rings {
		out[i] = make([][2]float64, len(r.verts))
		for j, v := range r.verts {
			lon, lat := v.LonLat()
			out[i][j] = [2]float64{lon, lat}
		}
	}
	return out
}

// Clone returns a deep copy sharing no state with the original.
func (p *Polygon) Clone() *Polygon {
	cp := &Polygon{rings: make([]ring, len(p.rings))}
	for i, r := range p.rings {
		cp.rings[i] = r.clone()
	}
	return cp
}

// Invert returns the complement region: the same boundary with the
// interior point moved to the antipode, so outside becomes inside.
// Defined for single ring polygons.
func (p *Polygon) Invert() (*Polygon, error) {
	if len(p.rings) != 1 {
		return nil, errors.Wrapf(ErrSingleRingOnly, "polygon has %d rings", len(p.rings))
	}

	r := p.rings[0]
	verts := make([]vector.Vector, len(r.verts))
	copy(verts, r.verts)

	inv, err := newRing(verts, r.inside.Neg(), defaultTolerance)
	if err != nil {
		return nil, err
	}

	return &Polygon{rings: []ring{inv}}, nil
}
