// Package sphere implements polygons on the unit sphere: regions
// bounded by great circle arcs, with area and containment queries,
// graph based union and intersection, GeoJSON interchange, and skyline
// management of observation footprints.
//
// A polygon carries an interior point along with its boundary, so a
// boundary always describes two candidate regions and the point picks
// one. This makes regions larger than a hemisphere first class: the
// complement of a polygon is the same boundary with the antipodal
// interior point.
//
// All coordinates cross the public API as lon/lat degrees; areas are
// steradians and lengths radians.
package sphere
