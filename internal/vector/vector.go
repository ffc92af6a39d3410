package vector

import (
	"math"
)

// Vector is a cartesian point on (or direction from the center of) the unit
// sphere. Most operations assume unit length but do not enforce it.
type Vector struct {
	X, Y, Z float64
}

const degToRad = math.Pi / 180.0
const radToDeg = 180.0 / math.Pi

// FromLonLat converts celestial coordinates in degrees to a unit vector.
func FromLonLat(lon, lat float64) Vector {
	lonR := lon * degToRad
	latR := lat * degToRad

	cosLat := math.Cos(latR)

	return Vector{
		X: math.Cos(lonR) * cosLat,
		Y: math.Sin(lonR) * cosLat,
		Z: math.Sin(latR),
	}
}

// LonLat converts the vector back to degrees. Longitude is normalized
// to [0, 360). At the poles longitude degenerates and is reported as 0.
func (v Vector) LonLat() (lon, lat float64) {
	lat = math.Atan2(v.Z, math.Hypot(v.X, v.Y)) * radToDeg

	if v.X == 0 && v.Y == 0 {
		return 0, lat
	}

	lon = math.Atan2(v.Y, v.X) * radToDeg
	if lon < 0 {
		lon += 360
	}

	return lon, lat
}

func (v Vector) Add(o Vector) Vector {
	return Vector{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vector) Sub(o Vector) Vector {
	return Vector{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

func (v Vector) Scale(s float64) Vector {
	return Vector{v.X * s, v.Y * s, v.Z * s}
}

func (v Vector) Neg() Vector {
	return Vector{-v.X, -v.Y, -v.Z}
}

func (v Vector) Dot(o Vector) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

func (v Vector) Cross(o Vector) Vector {
	return Vector{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

// Triple returns a·(b×c), the signed volume of the parallelepiped spanned
// by the three vectors.
func Triple(a, b, c Vector) float64 {
	return a.Dot(b.Cross(c))
}

func (v Vector) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

// Normalize scales the vector to unit length. The zero vector stays zero.
func (v Vector) Normalize() Vector {
	n := v.Norm()
	if n == 0 {
		return Vector{}
	}

	return v.Scale(1 / n)
}

// SeparationTo returns the angular distance to o in radians. The
// atan2 form is stable near 0 and near π where acos of the dot
// product loses precision.
func (v Vector) SeparationTo(o Vector) float64 {
	return math.Atan2(v.Cross(o).Norm(), v.Dot(o))
}

// Equals reports whether the two vectors agree within an angular
// tolerance given in radians.
func (v Vector) Equals(o Vector, tol float64) bool {
	return v.SeparationTo(o) <= tol
}

// Mid returns the normalized midpoint of a and b. For antipodal inputs
// the midpoint is undefined and the zero vector is returned.
func Mid(a, b Vector) Vector {
	return a.Add(b).Normalize()
}

// RotateAround rotates v by angle radians around the given axis using the
// Rodrigues formula. The axis does not have to be normalized.
func (v Vector) RotateAround(axis Vector, angle float64) Vector {
	k := axis.Normalize()
	sinA := math.Sin(angle)
	cosA := math.Cos(angle)

	// v cosθ + (k×v) sinθ + k (k·v)(1−cosθ)
	return v.Scale(cosA).
		Add(k.Cross(v).Scale(sinA)).
		Add(k.Scale(k.Dot(v) * (1 - cosA)))
}
