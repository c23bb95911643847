// Package geometry holds the polyline used to accumulate pointer samples.
package geometry

import "math"

// Point is a 2-D position in device pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the Euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// Path is an ordered polyline. The first point is where the path started.
type Path struct {
	points []Point
}

// NewPath creates a path starting at the given point.
func NewPath(start Point) *Path {
	return &Path{points: []Point{start}}
}

// LineTo appends a point to the end of the path.
func (p *Path) LineTo(pt Point) {
	p.points = append(p.points, pt)
}

// Len returns the number of points.
func (p *Path) Len() int {
	return len(p.points)
}

// Points returns a copy of the points in insertion order.
func (p *Path) Points() []Point {
	out := make([]Point, len(p.points))
	copy(out, p.points)
	return out
}

// First returns the starting point. Paths are never empty.
func (p *Path) First() Point {
	return p.points[0]
}

// Last returns the most recently added point.
func (p *Path) Last() Point {
	return p.points[len(p.points)-1]
}

// Length returns the sum of all segment lengths.
func (p *Path) Length() float64 {
	total := 0.0
	for i := 1; i < len(p.points); i++ {
		total += p.points[i-1].Distance(p.points[i])
	}
	return total
}

// PointAt walks the path and returns the position at the given distance from
// the start. Distances outside [0, Length] are clamped to the endpoints.
func (p *Path) PointAt(distance float64) Point {
	if distance <= 0 {
		return p.First()
	}

	walked := 0.0
	for i := 1; i < len(p.points); i++ {
		from, to := p.points[i-1], p.points[i]
		seg := from.Distance(to)
		if seg == 0 {
			continue
		}
		if walked+seg >= distance {
			t := (distance - walked) / seg
			return Point{
				X: from.X + (to.X-from.X)*t,
				Y: from.Y + (to.Y-from.Y)*t,
			}
		}
		walked += seg
	}

	return p.Last()
}
