package geom

import (
	"fmt"
	"sort"
)

// Point is an absolute map tile.
type Point struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

func (p Point) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }

// RelativePoint is an offset from a building origin.
type RelativePoint struct {
	DX int `json:"dx"`
	DY int `json:"dy"`
}

func Rel(dx, dy int) RelativePoint { return RelativePoint{DX: dx, DY: dy} }

func (r RelativePoint) String() string { return fmt.Sprintf("<%d,%d>", r.DX, r.DY) }

// Calculate returns the absolute tile for a building placed at origin.
func (r RelativePoint) Calculate(origin Point) Point {
	return Point{X: origin.X + r.DX, Y: origin.Y + r.DY}
}

// GridDistance is the step distance on the hex-shaped tile grid: moving along
// x, y or the (+1,+1) diagonal costs one step each.
func GridDistance(a, b Point) int {
	dx := b.X - a.X
	dy := b.Y - a.Y
	if (dx >= 0) == (dy >= 0) {
		return max(abs(dx), abs(dy))
	}
	return abs(dx) + abs(dy)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// PointSet is a read-only set of relative tiles.
type PointSet map[RelativePoint]struct{}

func NewPointSet(pts []RelativePoint) PointSet {
	s := make(PointSet, len(pts))
	for _, p := range pts {
		s[p] = struct{}{}
	}
	return s
}

func (s PointSet) Contains(p RelativePoint) bool {
	_, ok := s[p]
	return ok
}

// Intersect returns the members of s also present in o, sorted by (DY, DX).
func (s PointSet) Intersect(o PointSet) []RelativePoint {
	var out []RelativePoint
	for p := range s {
		if o.Contains(p) {
			out = append(out, p)
		}
	}
	SortRelative(out)
	return out
}

// SortRelative orders points row-major (DY, then DX).
func SortRelative(pts []RelativePoint) {
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].DY != pts[j].DY {
			return pts[i].DY < pts[j].DY
		}
		return pts[i].DX < pts[j].DX
	})
}
