package main

import "math"

// Point is a position in the map's planar coordinate space. Headings and
// movements between nodes are carried as Points too.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Distance calculates Euclidean distance between two points
func (p Point) Distance(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Sub returns the vector from other to p
func (p Point) Sub(other Point) Point {
	return Point{X: p.X - other.X, Y: p.Y - other.Y}
}

// Dot calculates the dot product of two vectors
func (p Point) Dot(other Point) float64 {
	return p.X*other.X + p.Y*other.Y
}

// Cross calculates the z component of the cross product of two vectors
func (p Point) Cross(other Point) float64 {
	return p.X*other.Y - p.Y*other.X
}

// Magnitude returns the length of the vector
func (p Point) Magnitude() float64 {
	return math.Hypot(p.X, p.Y)
}

// Normalize returns the unit vector pointing the same way as p.
// ok is false for a zero-length vector, in which case p is returned unchanged.
func (p Point) Normalize() (unit Point, ok bool) {
	mag := p.Magnitude()
	if mag == 0 {
		return p, false
	}
	return Point{X: p.X / mag, Y: p.Y / mag}, true
}

// SignedAngle returns the angle in degrees needed to rotate v1 onto v2.
// Counter-clockwise rotation is positive.
func SignedAngle(v1, v2 Point) float64 {
	return math.Atan2(v1.Cross(v2), v1.Dot(v2)) * (180 / math.Pi)
}
