// Package graph computes boolean operations on spherical polygons by
// loading their boundaries into a shared edge graph, splitting edges at
// every crossing, discarding the edges that end up on the wrong side,
// and tracing what remains back into closed rings.
package graph

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/tidwall/btree"

	"github.com/denismitr/sphere/internal/arc"
	"github.com/denismitr/sphere/internal/vector"
)

var ErrTooFewVertices = errors.New("a ring needs at least 3 vertices")
var ErrOpenTrace = errors.New("edge trace did not close back on itself")

type Mode int

const (
	Union Mode = iota
	Intersection
)

// nodeQuantum is the coordinate grid used to merge nodes: vertices
// closer than this per component hash to the same node.
const nodeQuantum = 1e-8

// splitTol keeps edge splitting from producing slivers: a crossing this
// close (radians) to an existing node reuses that node instead.
const splitTol = 1e-10

// vertexOnEdgeTol decides when a node of one polygon sits on an edge of
// another, which forces a split there. Collinear overlapping boundaries
// reduce to shared edges this way.
const vertexOnEdgeTol = 1e-11

// probeOffset is how far (radians) the trim probes sit to either side
// of an edge when classifying it as region boundary or region interior.
const probeOffset = 1e-7

// Ring is one closed boundary chain of a source polygon. The chain is
// given open (first vertex not repeated) and Poly identifies which of
// the input polygons it belongs to.
type Ring struct {
	Verts []vector.Vector
	Poly  int
}

// Contains reports whether a point is inside input polygon poly. The
// caller owns the containment semantics.
type Contains func(poly int, p vector.Vector) bool

type node struct {
	id    uint64
	v     vector.Vector
	edges []*edge
}

type edge struct {
	a, b    *node
	sources map[int]struct{}
	removed bool
}

func (e *edge) other(n *node) *node {
	if n == e.a {
		return e.b
	}
	return e.a
}

func (e *edge) key() edgeKey {
	lo, hi := e.a.id, e.b.id
	if lo > hi {
		lo, hi = hi, lo
	}
	return edgeKey{lo, hi}
}

type edgeKey struct {
	lo, hi uint64
}

type indexItem struct {
	k edgeKey
	e *edge
}

func byEdgeKey(a, b interface{}) bool {
	ia := a.(*indexItem)
	ib := b.(*indexItem)

	if ia.k.lo != ib.k.lo {
		return ia.k.lo < ib.k.lo
	}
	return ia.k.hi < ib.k.hi
}

type graph struct {
	nodes map[uint64]*node
	index *btree.BTree
	edges []*edge
	polys int
	lg    zerolog.Logger
}

func newGraph(polys int, lg zerolog.Logger) *graph {
	return &graph{
		nodes: make(map[uint64]*node),
		index: btree.NewNonConcurrent(byEdgeKey),
		polys: polys,
		lg:    lg,
	}
}

func hashPoint(v vector.Vector) uint64 {
	bs := make([]byte, 24)
	binary.LittleEndian.PutUint64(bs[0:], uint64(int64(math.Round(v.X/nodeQuantum))))
	binary.LittleEndian.PutUint64(bs[8:], uint64(int64(math.Round(v.Y/nodeQuantum))))
	binary.LittleEndian.PutUint64(bs[16:], uint64(int64(math.Round(v.Z/nodeQuantum))))
	return xxhash.Sum64(bs)
}

func (g *graph) getNode(v vector.Vector) *node {
	id := hashPoint(v)
	if n, ok := g.nodes[id]; ok {
		return n
	}

	n := &node{id: id, v: v}
	g.nodes[id] = n
	return n
}

// addEdge merges with an existing edge between the same pair of nodes,
// so boundaries shared by two polygons become one edge with two sources.
func (g *graph) addEdge(a, b *node, sources map[int]struct{}) *edge {
	if a == b {
		return nil
	}

	probe := &edge{a: a, b: b}
	if found := g.index.Get(&indexItem{k: probe.key()}); found != nil {
		existing := found.(*indexItem).e
		for s := range sources {
			existing.sources[s] = struct{}{}
		}
		return existing
	}

	e := &edge{a: a, b: b, sources: make(map[int]struct{}, len(sources))}
	for s := range sources {
		e.sources[s] = struct{}{}
	}

	a.edges = append(a.edges, e)
	b.edges = append(b.edges, e)
	g.edges = append(g.edges, e)
	g.index.Set(&indexItem{k: e.key(), e: e})

	return e
}

func (g *graph) removeEdge(e *edge) {
	e.removed = true
	g.index.Delete(&indexItem{k: e.key()})
	e.a.edges = withoutEdge(e.a.edges, e)
	e.b.edges = withoutEdge(e.b.edges, e)
}

func withoutEdge(edges []*edge, e *edge) []*edge {
	result := edges[:0]
	for _, cur := range edges {
		if cur != e {
			result = append(result, cur)
		}
	}
	return result
}

func (g *graph) addRing(r Ring) error {
	if len(r.Verts) < 3 {
		return errors.Wrapf(ErrTooFewVertices, "got %d", len(r.Verts))
	}

	src := map[int]struct{}{r.Poly: {}}
	for i := range r.Verts {
		a := g.getNode(r.Verts[i])
		b := g.getNode(r.Verts[(i+1)%len(r.Verts)])
		g.addEdge(a, b, src)
	}

	return nil
}

// splitAtIntersections finds every crossing between edges of different
// source polygons and splits both edges there, until no crossings remain.
func (g *graph) splitAtIntersections() {
	for {
		if !g.splitOnePass() {
			return
		}
	}
}

func (g *graph) splitOnePass() bool {
	live := g.liveEdges()

	for i := 0; i < len(live); i++ {
		for j := i + 1; j < len(live); j++ {
			e1, e2 := live[i], live[j]
			if e1.removed || e2.removed {
				continue
			}
			if sharesNode(e1, e2) || sameSources(e1, e2) {
				continue
			}

			// a vertex of one boundary lying on the other forces a split
			// there, so collinear overlaps collapse into shared edges
			if g.splitAtVertex(e1, e2) || g.splitAtVertex(e2, e1) {
				return true
			}

			p, ok := arc.Intersection(e1.a.v, e1.b.v, e2.a.v, e2.b.v)
			if !ok {
				continue
			}
			if isEndpoint(p, e1) && isEndpoint(p, e2) {
				continue
			}

			n := g.getNode(p)

			split1 := g.splitEdge(e1, n)
			split2 := g.splitEdge(e2, n)
			if split1 || split2 {
				g.lg.Debug().
					Uint64("node", n.id).
					Msg("split edges at crossing")
				return true
			}
		}
	}

	return false
}

func (g *graph) liveEdges() []*edge {
	live := make([]*edge, 0, len(g.edges))
	for _, e := range g.edges {
		if !e.removed {
			live = append(live, e)
		}
	}
	return live
}

func sharesNode(e1, e2 *edge) bool {
	return e1.a == e2.a || e1.a == e2.b || e1.b == e2.a || e1.b == e2.b
}

func sameSources(e1, e2 *edge) bool {
	if len(e1.sources) != len(e2.sources) {
		return false
	}
	for s := range e1.sources {
		if _, ok := e2.sources[s]; !ok {
			return false
		}
	}
	return true
}

func isEndpoint(p vector.Vector, e *edge) bool {
	return p.Equals(e.a.v, splitTol) || p.Equals(e.b.v, splitTol)
}

func (g *graph) splitAtVertex(e, other *edge) bool {
	for _, n := range [...]*node{other.a, other.b} {
		if !arc.ContainsPoint(e.a.v, e.b.v, n.v, vertexOnEdgeTol) {
			continue
		}
		if g.splitEdge(e, n) {
			g.lg.Debug().
				Uint64("node", n.id).
				Msg("split edge at foreign vertex")
			return true
		}
	}
	return false
}

func (g *graph) splitEdge(e *edge, n *node) bool {
	if n == e.a || n == e.b {
		return false
	}
	if n.v.Equals(e.a.v, splitTol) || n.v.Equals(e.b.v, splitTol) {
		return false
	}

	g.removeEdge(e)
	g.addEdge(e.a, n, e.sources)
	g.addEdge(n, e.b, e.sources)
	return true
}

// trim keeps exactly the edges that bound the result region: probes
// just to the left and right of each edge must land on different sides
// of it, one in the region and one out. Edges interior to the region
// (both probes in) and edges fully outside it (both probes out) go,
// which also disposes of boundaries shared between input polygons.
func (g *graph) trim(mode Mode, contains Contains) {
	for _, e := range g.liveEdges() {
		mid := arc.Midpoint(e.a.v, e.b.v)
		normal := e.a.v.Cross(e.b.v).Normalize()

		left := mid.Add(normal.Scale(probeOffset)).Normalize()
		right := mid.Sub(normal.Scale(probeOffset)).Normalize()

		if g.inRegion(mode, contains, left) == g.inRegion(mode, contains, right) {
			g.lg.Debug().
				Uint64("a", e.a.id).
				Uint64("b", e.b.id).
				Msg("trimming edge")
			g.removeEdge(e)
		}
	}
}

func (g *graph) inRegion(mode Mode, contains Contains, p vector.Vector) bool {
	for poly := 0; poly < g.polys; poly++ {
		inside := contains(poly, p)
		if mode == Union && inside {
			return true
		}
		if mode == Intersection && !inside {
			return false
		}
	}
	return mode == Intersection
}

// trace walks the surviving edges into closed vertex rings. Rings that
// collapse below three distinct nodes are dropped.
func (g *graph) trace() ([][]vector.Vector, error) {
	used := make(map[*edge]struct{})
	var rings [][]vector.Vector

	var iterErr error
	g.index.Ascend(nil, func(i interface{}) bool {
		start := i.(*indexItem).e
		if _, ok := used[start]; ok {
			return true
		}

		ring, err := g.traceFrom(start, used)
		if err != nil {
			iterErr = err
			return false
		}

		if len(ring) >= 3 {
			rings = append(rings, ring)
		}
		return true
	})
	if iterErr != nil {
		return nil, iterErr
	}

	return rings, nil
}

func (g *graph) traceFrom(start *edge, used map[*edge]struct{}) ([]vector.Vector, error) {
	used[start] = struct{}{}

	first := start.a
	cur := start.b
	ring := []vector.Vector{first.v}

	for cur != first {
		ring = append(ring, cur.v)

		next := pickNext(cur, used)
		if next == nil {
			return nil, errors.Wrapf(ErrOpenTrace, "stuck at node %d after %d vertices", cur.id, len(ring))
		}

		used[next] = struct{}{}
		cur = next.other(cur)
	}

	g.lg.Debug().Int("vertices", len(ring)).Msg("traced ring")
	return ring, nil
}

func pickNext(n *node, used map[*edge]struct{}) *edge {
	for _, e := range n.edges {
		if e.removed {
			continue
		}
		if _, ok := used[e]; ok {
			continue
		}
		return e
	}
	return nil
}

// BooleanOp runs the full union or intersection pipeline over the rings
// of polys input polygons and returns the rings of the result.
func BooleanOp(mode Mode, polys int, rings []Ring, contains Contains, lg zerolog.Logger) ([][]vector.Vector, error) {
	g := newGraph(polys, lg)

	for _, r := range rings {
		if err := g.addRing(r); err != nil {
			return nil, err
		}
	}

	lg.Debug().
		Int("nodes", len(g.nodes)).
		Int("edges", g.index.Len()).
		Msg("graph built")

	g.splitAtIntersections()
	g.trim(mode, contains)

	return g.trace()
}
