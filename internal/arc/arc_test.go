package arc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/denismitr/sphere/internal/vector"
)

const tol = 1e-9

func ll(lon, lat float64) vector.Vector {
	return vector.FromLonLat(lon, lat)
}

func TestLength(t *testing.T) {
	tt := []struct {
		name string
		a, b vector.Vector
		want float64
	}{
		{"zero", ll(10, 10), ll(10, 10), 0},
		{"quarter equator", ll(0, 0), ll(90, 0), math.Pi / 2},
		{"pole to pole via equator point", ll(0, 90), ll(0, 0), math.Pi / 2},
		{"one degree", ll(0, 0), ll(1, 0), math.Pi / 180},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, Length(tc.a, tc.b), tol)
		})
	}
}

func TestIntersection(t *testing.T) {
	t.Run("equator and meridian cross", func(t *testing.T) {
		p, ok := Intersection(ll(-10, 0), ll(10, 0), ll(0, -10), ll(0, 10))
		require.True(t, ok)

		lon, lat := p.LonLat()
		assert.InDelta(t, 0.0, lon, tol)
		assert.InDelta(t, 0.0, lat, tol)
	})

	t.Run("arcs on crossing circles but not touching", func(t *testing.T) {
		_, ok := Intersection(ll(-10, 0), ll(10, 0), ll(0, 5), ll(0, 10))
		assert.False(t, ok)
	})

	t.Run("disjoint arcs", func(t *testing.T) {
		_, ok := Intersection(ll(0, 0), ll(10, 0), ll(50, 10), ll(60, 20))
		assert.False(t, ok)
	})

	t.Run("same great circle", func(t *testing.T) {
		_, ok := Intersection(ll(0, 0), ll(10, 0), ll(20, 0), ll(30, 0))
		assert.False(t, ok)
	})

	t.Run("degenerate arc", func(t *testing.T) {
		_, ok := Intersection(ll(5, 5), ll(5, 5), ll(0, -10), ll(0, 10))
		assert.False(t, ok)
	})

	t.Run("shared endpoint", func(t *testing.T) {
		p, ok := Intersection(ll(0, 0), ll(10, 0), ll(10, 0), ll(10, 10))
		require.True(t, ok)
		assert.True(t, p.Equals(ll(10, 0), tol))
	})

	t.Run("crossing on far side picks correct branch", func(t *testing.T) {
		// both arcs near lon 180 so the normalized candidate may come out
		// on either side of the sphere
		p, ok := Intersection(ll(170, 0), ll(190, 0), ll(180, -10), ll(180, 10))
		require.True(t, ok)

		lon, lat := p.LonLat()
		assert.InDelta(t, 180.0, lon, tol)
		assert.InDelta(t, 0.0, lat, tol)
	})
}

func TestIntersects_symmetry(t *testing.T) {
	a, b := ll(-10, -5), ll(10, 5)
	c, d := ll(-10, 5), ll(10, -5)

	assert.True(t, Intersects(a, b, c, d))
	assert.True(t, Intersects(c, d, a, b))
	assert.True(t, Intersects(b, a, d, c))
}

func TestContainsPoint(t *testing.T) {
	tt := []struct {
		name    string
		a, b, p vector.Vector
		want    bool
	}{
		{"midpoint", ll(0, 0), ll(10, 0), ll(5, 0), true},
		{"endpoint", ll(0, 0), ll(10, 0), ll(0, 0), true},
		{"beyond endpoint", ll(0, 0), ll(10, 0), ll(11, 0), false},
		{"off circle", ll(0, 0), ll(10, 0), ll(5, 1), false},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ContainsPoint(tc.a, tc.b, tc.p, 1e-11))
		})
	}
}

func TestAngle(t *testing.T) {
	t.Run("right angle at equator", func(t *testing.T) {
		got := Angle(ll(10, 0), ll(0, 0), ll(0, 10))
		assert.InDelta(t, math.Pi/2, got, tol)
	})

	t.Run("straight through", func(t *testing.T) {
		got := Angle(ll(-10, 0), ll(0, 0), ll(10, 0))
		assert.InDelta(t, math.Pi, got, tol)
	})

	t.Run("octant triangle has three right angles", func(t *testing.T) {
		a, b, c := ll(0, 0), ll(90, 0), ll(0, 90)
		sum := Angle(c, a, b) + Angle(a, b, c) + Angle(b, c, a)
		assert.InDelta(t, 3*math.Pi/2, sum, tol)
	})
}

func TestInterpolate(t *testing.T) {
	t.Run("endpoints and spacing", func(t *testing.T) {
		a, b := ll(0, 0), ll(90, 0)

		pts, err := Interpolate(a, b, 5)
		require.NoError(t, err)
		require.Len(t, pts, 5)

		assert.True(t, pts[0].Equals(a, tol))
		assert.True(t, pts[4].Equals(b, tol))

		for i, p := range pts {
			lon, lat := p.LonLat()
			assert.InDelta(t, float64(i)*22.5, lon, 1e-8)
			assert.InDelta(t, 0.0, lat, 1e-8)
			assert.InDelta(t, 1.0, p.Norm(), tol)
		}
	})

	t.Run("too few steps", func(t *testing.T) {
		_, err := Interpolate(ll(0, 0), ll(10, 0), 1)
		assert.ErrorIs(t, err, ErrTooFewSteps)
	})

	t.Run("antipodal endpoints", func(t *testing.T) {
		_, err := Interpolate(ll(0, 0), ll(180, 0), 4)
		assert.ErrorIs(t, err, ErrAntipodalEndpoints)
	})

	t.Run("coincident endpoints", func(t *testing.T) {
		pts, err := Interpolate(ll(30, 30), ll(30, 30), 3)
		require.NoError(t, err)
		for _, p := range pts {
			assert.True(t, p.Equals(ll(30, 30), tol))
		}
	})
}
