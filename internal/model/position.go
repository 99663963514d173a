package model

import "math"

// Position is a point in world space. The zero value is the world origin.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Equal reports whether two positions are bit-identical.
func (p Position) Equal(o Position) bool {
	return p.X == o.X && p.Y == o.Y && p.Z == o.Z
}

// Distance returns the Euclidean distance between p and o.
func (p Position) Distance(o Position) float64 {
	dx := p.X - o.X
	dy := p.Y - o.Y
	dz := p.Z - o.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
