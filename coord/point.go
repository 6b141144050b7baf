package coord

import (
	"math"
)

// Point is a position in machine space, in millimeters.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

func (p Point) Equal(b Point) bool {
	return p.X == b.X && p.Y == b.Y
}

// Add will add the target values to p.
func (p Point) Add(target Point) Point {
	p.X += target.X
	p.Y += target.Y
	return p
}

// Sub will subtract the target values from p.
func (p Point) Sub(target Point) Point {
	p.X -= target.X
	p.Y -= target.Y
	return p
}

// Distance will return the 2D distance between p and the target.
func (p Point) Distance(target Point) float64 {
	return math.Hypot(target.X-p.X, target.Y-p.Y)
}

// Midpoint returns the arithmetic mean of a and b.
func Midpoint(a, b Point) Point {
	return Point{
		X: (a.X + b.X) / 2,
		Y: (a.Y + b.Y) / 2,
	}
}
