package arc

import (
	"math"

	"github.com/pkg/errors"

	"github.com/denismitr/sphere/internal/vector"
)

var ErrAntipodalEndpoints = errors.New("arc endpoints are antipodal, path is undefined")
var ErrTooFewSteps = errors.New("interpolation requires at least two steps")

// degenerateTol bounds |a×b| below which two great circles are treated
// as coincident and no unique crossing exists.
const degenerateTol = 1e-14

// Length returns the length of the minor arc between a and b in radians.
func Length(a, b vector.Vector) float64 {
	return a.SeparationTo(b)
}

// Midpoint returns the point halfway along the minor arc ab.
func Midpoint(a, b vector.Vector) vector.Vector {
	return vector.Mid(a, b)
}

// Intersection returns the point where the minor arcs ab and cd cross.
// ok is false when the arcs do not cross, when either arc is degenerate,
// or when both arcs lie on the same great circle.
//
// The candidate crossing is T = (a×b)×(c×d): the point common to both
// great circles. T or -T is the answer exactly when the four
// triple-product side tests agree on a sign.
func Intersection(a, b, c, d vector.Vector) (vector.Vector, bool) {
	// shared endpoints short-circuit the sign tests, which go to zero there
	for _, p := range [...]vector.Vector{a, b} {
		for _, q := range [...]vector.Vector{c, d} {
			if p.Equals(q, degenerateTol) {
				return p, true
			}
		}
	}

	ab := a.Cross(b)
	cd := c.Cross(d)

	t := ab.Cross(cd)
	if t.Norm() < degenerateTol {
		return vector.Vector{}, false
	}
	t = t.Normalize()

	s1 := sign(vector.Triple(ab, a, t))
	s2 := sign(vector.Triple(ab, t, b))
	s3 := sign(vector.Triple(cd, c, t))
	s4 := sign(vector.Triple(cd, t, d))

	if s1 == 0 || s1 != s2 || s1 != s3 || s1 != s4 {
		return vector.Vector{}, false
	}

	return t.Scale(float64(s1)), true
}

// Intersects reports whether the minor arcs ab and cd cross.
func Intersects(a, b, c, d vector.Vector) bool {
	_, ok := Intersection(a, b, c, d)
	return ok
}

// ContainsPoint reports whether p lies on the minor arc ab within an
// angular tolerance in radians. Either endpoint is on the arc.
func ContainsPoint(a, b, p vector.Vector, tol float64) bool {
	return Length(a, p)+Length(p, b)-Length(a, b) <= tol
}

// Angle returns the interior spherical angle at b between the arcs ba
// and bc, in [0, 2π). The angle is measured counterclockwise from bc to
// ba as seen from outside the sphere above b.
func Angle(a, b, c vector.Vector) float64 {
	ta := b.Cross(a).Cross(b).Normalize()
	tc := b.Cross(c).Cross(b).Normalize()

	angle := math.Atan2(vector.Triple(b, tc, ta), ta.Dot(tc))
	if angle < 0 {
		angle += 2 * math.Pi
	}

	return angle
}

// Interpolate returns n points evenly spaced along the minor arc from a
// to b, endpoints included, via spherical linear interpolation. Nearly
// coincident endpoints fall back to chordal interpolation.
func Interpolate(a, b vector.Vector, n int) ([]vector.Vector, error) {
	if n < 2 {
		return nil, errors.Wrapf(ErrTooFewSteps, "got %d", n)
	}

	omega := a.SeparationTo(b)
	if math.Pi-omega < degenerateTol {
		return nil, ErrAntipodalEndpoints
	}

	points := make([]vector.Vector, n)
	points[0] = a
	points[n-1] = b

	if omega < degenerateTol {
		for i := 1; i < n-1; i++ {
			t := float64(i) / float64(n-1)
			points[i] = a.Scale(1 - t).Add(b.Scale(t)).Normalize()
		}
		return points, nil
	}

	sinOmega := math.Sin(omega)
	for i := 1; i < n-1; i++ {
		t := float64(i) / float64(n-1)
		points[i] = a.Scale(math.Sin((1-t)*omega) / sinOmega).
			Add(b.Scale(math.Sin(t*omega) / sinOmega)).
			Normalize()
	}

	return points, nil
}

func sign(x float64) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}
