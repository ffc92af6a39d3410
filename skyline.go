package sphere

import (
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
	"github.com/tidwall/btree"
	"github.com/tidwall/gjson"

	"github.com/denismitr/sphere/internal/vector"
)

var ErrNoChips = errors.New("a skyline needs at least one chip footprint")
var ErrBadMetadata = errors.New("observation metadata is invalid")
var ErrSkyLineExists = errors.New("skyline already registered")
var ErrSkyLineNotFound = errors.New("skyline not found")
var ErrNotEnoughSkyLines = errors.New("at least two skylines are required")

// SkyLine is the outline of one observation on the sky: the union of
// the footprints of its individual chips. SkyLines are immutable, every
// operation returns a new value.
type SkyLine struct {
	Name      string
	Footprint *Polygon
	Chips     []*Polygon
}

func NewSkyLine(name string, chips ...*Polygon) (*SkyLine, error) {
	if len(chips) == 0 {
		return nil, ErrNoChips
	}

	foot, err := MultiUnion(chips...)
	if err != nil {
		return nil, errors.Wrapf(err, "could not combine %d chips of %s", len(chips), name)
	}

	return &SkyLine{
		Name:      name,
		Footprint: foot,
		Chips:     append([]*Polygon(nil), chips...),
	}, nil
}

// SkyLineFromJSON builds a skyline from an observation metadata
// document of the form {"chips": [{"corners": [[lon, lat], ...]}, ...]}
// with coordinates in degrees.
func SkyLineFromJSON(name string, data []byte) (*SkyLine, error) {
	chips := gjson.GetBytes(data, "chips")
	if !chips.Exists() || !chips.IsArray() {
		return nil, errors.Wrap(ErrBadMetadata, "chips array is missing")
	}

	var polys []*Polygon
	for i, chip := range chips.Array() {
		corners := chip.Get("corners")
		if !corners.IsArray() {
			return nil, errors.Wrapf(ErrBadMetadata, "chip %d has no corners", i)
		}

		var verts []vector.Vector
		for _, c := range corners.Array() {
			pos := c.Array()
			if len(pos) < 2 {
				return nil, errors.Wrapf(ErrBadMetadata, "chip %d corner needs lon and lat", i)
			}
			verts = append(verts, vector.FromLonLat(pos[0].Float(), pos[1].Float()))
		}

		inside, err := inferInterior(verts)
		if err != nil {
			return nil, errors.Wrapf(err, "chip %d", i)
		}

		poly, err := FromVectors(verts, inside)
		if err != nil {
			return nil, errors.Wrapf(err, "chip %d", i)
		}

		polys = append(polys, poly)
	}

	return NewSkyLine(name, polys...)
}

func (s *SkyLine) clone() *SkyLine {
	var cp SkyLine
	if err := copier.Copy(&cp, s); err != nil {
		panic("could not copy skyline: " + err.Error())
	}
	return &cp
}

// AddImage returns a new skyline covering this one and other, keeping
// this skyline's name. Step 6 of the matching workflow: fold an updated
// image into the reference outline.
func (s *SkyLine) AddImage(other *SkyLine) (*SkyLine, error) {
	foot, err := Union(s.Footprint, other.Footprint)
	if err != nil {
		return nil, errors.Wrapf(err, "could not add %s to %s", other.Name, s.Name)
	}

	cp := s.clone()
	cp.Footprint = foot
	cp.Chips = append(cp.Chips, other.Chips...)
	return cp, nil
}

// ComputeOverlap returns the fraction of this skyline's footprint that
// other covers, in [0, 1].
func (s *SkyLine) ComputeOverlap(other *SkyLine) (float64, error) {
	return s.Footprint.Overlap(other.Footprint)
}

// FindIntersection returns the sky region the two skylines share. The
// result is empty when they do not overlap.
func (s *SkyLine) FindIntersection(other *SkyLine) (*Polygon, error) {
	return Intersection(s.Footprint, other.Footprint)
}

// Within reports whether the position (degrees) falls on the footprint.
func (s *SkyLine) Within(lon, lat float64) bool {
	return s.Footprint.ContainsLonLat(lon, lat)
}

// MaxOverlapPair scans every pair and returns the one sharing the
// largest intersection area, or nils when no pair overlaps.
func MaxOverlapPair(lines []*SkyLine) (*SkyLine, *SkyLine, float64, error) {
	if len(lines) < 2 {
		return nil, nil, 0, errors.Wrapf(ErrNotEnoughSkyLines, "got %d", len(lines))
	}

	var bestA, bestB *SkyLine
	bestArea := 0.0

	for i := 0; i < len(lines); i++ {
		for j := i + 1; j < len(lines); j++ {
			inter, err := lines[i].FindIntersection(lines[j])
			if err != nil {
				return nil, nil, 0, errors.Wrapf(err, "%s vs %s", lines[i].Name, lines[j].Name)
			}
			if inter.IsEmpty() {
				continue
			}

			if area := inter.Area(); area > bestArea {
				bestA, bestB, bestArea = lines[i], lines[j], area
			}
		}
	}

	return bestA, bestB, bestArea, nil
}

// SkyLineSet is a registry of skylines ordered by name.
type SkyLineSet struct {
	t *btree.BTree
}

func bySkyLineName(a, b interface{}) bool {
	return a.(*SkyLine).Name < b.(*SkyLine).Name
}

func NewSkyLineSet() *SkyLineSet {
	return &SkyLineSet{t: btree.NewNonConcurrent(bySkyLineName)}
}

func (set *SkyLineSet) Add(s *SkyLine) error {
	if existing := set.t.Set(s); existing != nil {
		_ = set.t.Set(existing)
		return errors.Wrapf(ErrSkyLineExists, "name %s", s.Name)
	}
	return nil
}

func (set *SkyLineSet) Get(name string) (*SkyLine, error) {
	found := set.t.Get(&SkyLine{Name: name})
	if found == nil {
		return nil, errors.Wrapf(ErrSkyLineNotFound, "name %s", name)
	}
	return found.(*SkyLine), nil
}

func (set *SkyLineSet) Remove(name string) error {
	if removed := set.t.Delete(&SkyLine{Name: name}); removed == nil {
		return errors.Wrapf(ErrSkyLineNotFound, "name %s", name)
	}
	return nil
}

func (set *SkyLineSet) Len() int {
	return set.t.Len()
}

// Each visits the skylines in name order until fn returns false.
func (set *SkyLineSet) Each(fn func(s *SkyLine) bool) {
	set.t.Ascend(nil, func(i interface{}) bool {
		return fn(i.(*SkyLine))
	})
}
