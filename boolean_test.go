package sphere_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/denismitr/sphere"
)

type booleanOpsSuite struct {
	suite.Suite

	a *sphere.Polygon // lon 0..10, lat 0..10
	b *sphere.Polygon // lon 5..15, lat 5..15
	c *sphere.Polygon // lon 40..50, lat 0..10, disjoint from a
}

func TestBooleanOpsSuite(t *testing.T) {
	suite.Run(t, &booleanOpsSuite{})
}

func (s *booleanOpsSuite) SetupTest() {
	s.a = square(0, 0, 10, 10)
	s.b = square(5, 5, 15, 15)
	s.c = square(40, 0, 50, 10)
}

func (s *booleanOpsSuite) TestUnion_overlapping() {
	u, err := sphere.Union(s.a, s.b)
	s.Require().NoError(err)
	s.Require().Equal(1, u.RingCount())

	s.True(u.ContainsLonLat(2, 2))
	s.True(u.ContainsLonLat(12, 12))
	s.True(u.ContainsLonLat(7, 7))
	s.False(u.ContainsLonLat(2, 12))

	s.Greater(u.Area(), s.a.Area())
	s.Greater(u.Area(), s.b.Area())
	s.Less(u.Area(), s.a.Area()+s.b.Area())
}

func (s *booleanOpsSuite) TestIntersection_overlapping() {
	in, err := sphere.Intersection(s.a, s.b)
	s.Require().NoError(err)
	s.Require().Equal(1, in.RingCount())

	s.True(in.ContainsLonLat(7, 7))
	s.False(in.ContainsLonLat(2, 2))
	s.False(in.ContainsLonLat(12, 12))

	s.Less(in.Area(), s.a.Area())
	s.Less(in.Area(), s.b.Area())
	s.Greater(in.Area(), 0.0)
}

func (s *booleanOpsSuite) TestInclusionExclusion() {
	u, err := sphere.Union(s.a, s.b)
	s.Require().NoError(err)
	in, err := sphere.Intersection(s.a, s.b)
	s.Require().NoError(err)

	s.InDelta(s.a.Area()+s.b.Area(), u.Area()+in.Area(), 1e-8)
}

func (s *booleanOpsSuite) TestDisjoint() {
	u, err := sphere.Union(s.a, s.c)
	s.Require().NoError(err)
	s.Equal(2, u.RingCount())
	s.InDelta(s.a.Area()+s.c.Area(), u.Area(), 1e-9)
	s.True(u.ContainsLonLat(5, 5))
	s.True(u.ContainsLonLat(45, 5))
	s.False(u.ContainsLonLat(25, 5))

	in, err := sphere.Intersection(s.a, s.c)
	s.Require().NoError(err)
	s.True(in.IsEmpty())
	s.Zero(in.Area())

	s.False(s.a.Intersects(s.c))
}

func (s *booleanOpsSuite) TestIdentical() {
	other := square(0, 0, 10, 10)

	u, err := sphere.Union(s.a, other)
	s.Require().NoError(err)
	s.InDelta(s.a.Area(), u.Area(), 1e-9)

	in, err := sphere.Intersection(s.a, other)
	s.Require().NoError(err)
	s.InDelta(s.a.Area(), in.Area(), 1e-9)

	overlap, err := s.a.Overlap(other)
	s.Require().NoError(err)
	s.InDelta(1.0, overlap, 1e-9)
}

func (s *booleanOpsSuite) TestNested() {
	outer := square(0, 0, 30, 30)
	inner := square(10, 10, 20, 20)

	u, err := sphere.Union(outer, inner)
	s.Require().NoError(err)
	s.InDelta(outer.Area(), u.Area(), 1e-9)

	in, err := sphere.Intersection(outer, inner)
	s.Require().NoError(err)
	s.InDelta(inner.Area(), in.Area(), 1e-9)
}

func (s *booleanOpsSuite) TestOverlapFraction() {
	overlap, err := s.a.Overlap(s.b)
	s.Require().NoError(err)
	s.Greater(overlap, 0.0)
	s.Less(overlap, 1.0)

	none, err := s.a.Overlap(s.c)
	s.Require().NoError(err)
	s.Zero(none)
}

func (s *booleanOpsSuite) TestIntersects() {
	s.True(s.a.Intersects(s.b))
	s.True(s.b.Intersects(s.a))
	s.False(s.a.Intersects(s.c))

	outer := square(0, 0, 30, 30)
	inner := square(10, 10, 20, 20)
	s.True(outer.Intersects(inner), "containment without boundary crossings")
	s.True(inner.Intersects(outer))
}

func (s *booleanOpsSuite) TestEmptyOperand() {
	var empty sphere.Polygon

	u, err := sphere.Union(s.a, &empty)
	s.Require().NoError(err)
	s.InDelta(s.a.Area(), u.Area(), 1e-12)

	in, err := sphere.Intersection(s.a, &empty)
	s.Require().NoError(err)
	s.True(in.IsEmpty())
}

func (s *booleanOpsSuite) TestMethodsMatchPackageFuncs() {
	u1, err := s.a.Union(s.b)
	s.Require().NoError(err)
	u2, err := sphere.Union(s.a, s.b)
	s.Require().NoError(err)
	s.InDelta(u2.Area(), u1.Area(), 1e-12)
}

func (s *booleanOpsSuite) TestWithLogDoesNotChangeResult() {
	quiet, err := sphere.Union(s.a, s.b)
	s.Require().NoError(err)
	loud, err := sphere.Union(s.a, s.b, sphere.WithLog())
	s.Require().NoError(err)
	s.InDelta(quiet.Area(), loud.Area(), 1e-12)
}

func TestMultiUnion(t *testing.T) {
	a := square(0, 0, 10, 10)
	b := square(5, 5, 15, 15)
	c := square(10, 10, 20, 20)

	u, err := sphere.MultiUnion(a, b, c)
	require.NoError(t, err)
	require.Equal(t, 1, u.RingCount())

	assert.True(t, u.ContainsLonLat(2, 2))
	assert.True(t, u.ContainsLonLat(18, 18))
	assert.Greater(t, u.Area(), a.Area()+c.Area())
	assert.Less(t, u.Area(), a.Area()+b.Area()+c.Area())
}

func TestMultiIntersection(t *testing.T) {
	a := square(0, 0, 20, 20)
	b := square(5, 5, 25, 25)
	c := square(10, 10, 30, 30)

	in, err := sphere.MultiIntersection(a, b, c)
	require.NoError(t, err)
	require.Equal(t, 1, in.RingCount())

	assert.True(t, in.ContainsLonLat(15, 15))
	assert.False(t, in.ContainsLonLat(7, 7))
	assert.Less(t, in.Area(), c.Area())
}

func TestMultiUnion_single(t *testing.T) {
	a := square(0, 0, 10, 10)

	u, err := sphere.MultiUnion(a)
	require.NoError(t, err)
	assert.InDelta(t, a.Area(), u.Area(), 1e-12)
}

func TestMultiIntersection_none(t *testing.T) {
	in, err := sphere.MultiIntersection()
	require.NoError(t, err)
	assert.True(t, in.IsEmpty())
}
