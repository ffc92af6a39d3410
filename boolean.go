package sphere

import (
	"github.com/pkg/errors"

	"github.com/denismitr/sphere/internal/arc"
	"github.com/denismitr/sphere/internal/graph"
	"github.com/denismitr/sphere/internal/vector"
)

var ErrNoInteriorFound = errors.New("no valid interior point found for a result ring")

// Union returns the region covered by a or b.
func Union(a, b *Polygon, opts ...Option) (*Polygon, error) {
	return booleanOp(graph.Union, []*Polygon{a, b}, opts)
}

// Intersection returns the region covered by both a and b. The result
// is empty when they do not overlap.
func Intersection(a, b *Polygon, opts ...Option) (*Polygon, error) {
	return booleanOp(graph.Intersection, []*Polygon{a, b}, opts)
}

// MultiUnion returns the region covered by any of the polygons.
func MultiUnion(polys ...*Polygon) (*Polygon, error) {
	return booleanOp(graph.Union, polys, nil)
}

// MultiIntersection returns the region covered by every polygon.
func MultiIntersection(polys ...*Polygon) (*Polygon, error) {
	return booleanOp(graph.Intersection, polys, nil)
}

func (p *Polygon) Union(o *Polygon, opts ...Option) (*Polygon, error) {
	return Union(p, o, opts...)
}

func (p *Polygon) Intersection(o *Polygon, opts ...Option) (*Polygon, error) {
	return Intersection(p, o, opts...)
}

// Overlap returns the fraction of p covered by o, in [0, 1].
func (p *Polygon) Overlap(o *Polygon) (float64, error) {
	if p.IsEmpty() || o.IsEmpty() {
		return 0, nil
	}

	inter, err := Intersection(p, o)
	if err != nil {
		return 0, errors.Wrap(err, "overlap could not be computed")
	}
	if inter.IsEmpty() {
		return 0, nil
	}

	return inter.Area() / p.Area(), nil
}

// Intersects reports whether p and o share any region or boundary.
func (p *Polygon) Intersects(o *Polygon) bool {
	if p.IsEmpty() || o.IsEmpty() {
		return false
	}

	for _, rp := range p.rings {
		for _, ro := range o.rings {
			for i := range rp.verts {
				a := rp.verts[i]
				b := rp.verts[(i+1)%len(rp.verts)]
				for j := range ro.verts {
					c := ro.verts[j]
					d := ro.verts[(j+1)%len(ro.verts)]
					if arc.Intersects(a, b, c, d) {
						return true
					}
				}
			}
		}
	}

	// no boundary crossings: one may still lie fully inside the other
	for _, r := range o.rings {
		if p.containsStrict(r.inside) {
			return true
		}
	}
	for _, r := range p.rings {
		if o.containsStrict(r.inside) {
			return true
		}
	}

	return false
}

func booleanOp(mode graph.Mode, polys []*Polygon, opts []Option) (*Polygon, error) {
	cfg := newConfig(opts)
	lg := cfg.logger()

	inputs := make([]*Polygon, 0, len(polys))
	for _, p := range polys {
		if p == nil || p.IsEmpty() {
			if mode == graph.Intersection {
				return &Polygon{}, nil
			}
			continue
		}
		inputs = append(inputs, p)
	}

	switch len(inputs) {
	case 0:
		return &Polygon{}, nil
	case 1:
		return inputs[0].Clone(), nil
	}

	var rings []graph.Ring
	for i, p := range inputs {
		for _, r := range p.rings {
			rings = append(rings, graph.Ring{Verts: r.verts, Poly: i})
		}
	}

	contains := func(poly int, pt vector.Vector) bool {
		return inputs[poly].containsStrict(pt)
	}

	traced, err := graph.BooleanOp(mode, len(inputs), rings, contains, lg)
	if err != nil {
		return nil, errors.Wrap(err, "boolean operation failed")
	}

	result := &Polygon{}
	for _, verts := range traced {
		inside, err := pickInterior(mode, verts, inputs)
		if err != nil {
			return nil, err
		}

		r, err := newRing(verts, inside, cfg.Tolerance)
		if err != nil {
			return nil, errors.Wrap(err, "could not assemble a result ring")
		}

		result.rings = append(result.rings, r)
	}

	return result, nil
}

// pickInterior selects a point inside a traced ring that is consistent
// with the operation: inside some input for a union, inside every input
// for an intersection. The vertex centroid is tried first, then the
// interior points of the inputs.
func pickInterior(mode graph.Mode, verts []vector.Vector, inputs []*Polygon) (vector.Vector, error) {
	candidates := []vector.Vector{centroid(verts)}
	for _, p := range inputs {
		for _, r := range p.rings {
			candidates = append(candidates, r.inside)
		}
	}

	for _, cand := range candidates {
		if cand.Norm() == 0 {
			continue
		}
		if !separates(verts, cand) {
			continue
		}
		if modeConsistent(mode, cand, inputs) {
			return cand, nil
		}
	}

	return vector.Vector{}, ErrNoInteriorFound
}

func separates(verts []vector.Vector, p vector.Vector) bool {
	w := windingAround(verts, p)
	return w > 3 || w < -3 // |w| ≈ 2π when the ring separates p from its antipode
}

func modeConsistent(mode graph.Mode, cand vector.Vector, inputs []*Polygon) bool {
	for _, p := range inputs {
		inside := p.containsStrict(cand)
		if mode == graph.Intersection && !inside {
			return false
		}
		if mode == graph.Union && inside {
			return true
		}
	}

	return mode == graph.Intersection
}

func centroid(verts []vector.Vector) vector.Vector {
	var sum vector.Vector
	for _, v := range verts {
		sum = sum.Add(v)
	}
	return sum.Normalize()
}
