// Package core provides fundamental types and utilities shared by the game and
// the terminal platform. It contains no external dependencies (especially no
// Bubble Tea) to keep game logic pure and testable.
package core

// Point is a position on a surface. Units are decided by the owner: the snake
// game stores canvas units, the screen uses terminal cells.
type Point struct {
	X, Y int
}

// Add returns p translated by v scaled by step.
func (p Point) Add(v Vec, step int) Point {
	return Point{X: p.X + v.X*step, Y: p.Y + v.Y*step}
}

// Vec is a unit movement vector. The zero value means "not moving".
type Vec struct {
	X, Y int
}

// IsZero reports whether the vector has no movement.
func (v Vec) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// Rect represents an axis-aligned box, used for layout and hit testing.
type Rect struct {
	X, Y int // Top-left corner position
	W, H int // Width and height
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Contains returns true if the point (x, y) is inside this rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

