// Package terrain is an in-memory tile map answering the terrain queries of
// the placement strategies.
package terrain

import (
	"github.com/boljen/go-bitmap"

	"github.com/Da-Krause/settlers-remake/internal/sim/buildings"
	"github.com/Da-Krause/settlers-remake/internal/sim/catalogs"
	"github.com/Da-Krause/settlers-remake/internal/sim/geom"
	"github.com/Da-Krause/settlers-remake/internal/sim/landscape"
)

type deposit struct {
	res    landscape.Resource
	amount int
}

// Grid is a width x height tile map. It is not safe for concurrent
// mutation; once built it may be read from any number of goroutines.
type Grid struct {
	width, height int

	land     []landscape.Type
	occupied bitmap.Bitmap
	trees    bitmap.Bitmap
	stones   bitmap.Bitmap
	deposits []deposit

	buildings [buildings.Count][]geom.Point
	border    []geom.Point
	diggers   []geom.Point
}

// NewGrid returns a grid covered with fill.
func NewGrid(width, height int, fill landscape.Type) *Grid {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	n := width * height
	g := &Grid{
		width:    width,
		height:   height,
		land:     make([]landscape.Type, n),
		occupied: bitmap.New(n),
		trees:    bitmap.New(n),
		stones:   bitmap.New(n),
		deposits: make([]deposit, n),
	}
	for i := range g.land {
		g.land[i] = fill
	}
	return g
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

func (g *Grid) InBounds(p geom.Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < g.width && p.Y < g.height
}

func (g *Grid) idx(p geom.Point) int { return p.Y*g.width + p.X }

// Landscape returns the tile type; out-of-bounds tiles read as water.
func (g *Grid) Landscape(p geom.Point) landscape.Type {
	if !g.InBounds(p) {
		return landscape.Water
	}
	return g.land[g.idx(p)]
}

func (g *Grid) Occupied(p geom.Point) bool {
	return g.InBounds(p) && g.occupied.Get(g.idx(p))
}

func (g *Grid) HasTree(p geom.Point) bool {
	return g.InBounds(p) && g.trees.Get(g.idx(p))
}

func (g *Grid) HasStone(p geom.Point) bool {
	return g.InBounds(p) && g.stones.Get(g.idx(p))
}

func (g *Grid) Resource(p geom.Point) (landscape.Resource, int) {
	if !g.InBounds(p) {
		return landscape.NoResource, 0
	}
	d := g.deposits[g.idx(p)]
	return d.res, d.amount
}

// NearestBuilding returns the closest building of kind by grid distance.
// Ties go to the building registered first.
func (g *Grid) NearestBuilding(kind buildings.Kind, from geom.Point) (geom.Point, int, bool) {
	if !kind.Valid() {
		return geom.Point{}, 0, false
	}
	return nearest(g.buildings[kind], from)
}

func (g *Grid) Border() []geom.Point  { return g.border }
func (g *Grid) Diggers() []geom.Point { return g.diggers }

// Buildings lists the registered positions of kind.
func (g *Grid) Buildings(kind buildings.Kind) []geom.Point {
	if !kind.Valid() {
		return nil
	}
	return g.buildings[kind]
}

func (g *Grid) SetLandscape(p geom.Point, t landscape.Type) {
	if g.InBounds(p) {
		g.land[g.idx(p)] = t
	}
}

func (g *Grid) SetOccupied(p geom.Point, v bool) {
	if g.InBounds(p) {
		g.occupied.Set(g.idx(p), v)
	}
}

// SetTree plants a tree. Trees occupy their tile.
func (g *Grid) SetTree(p geom.Point, v bool) {
	if g.InBounds(p) {
		g.trees.Set(g.idx(p), v)
		g.occupied.Set(g.idx(p), v)
	}
}

// SetStone places a stone. Stones occupy their tile.
func (g *Grid) SetStone(p geom.Point, v bool) {
	if g.InBounds(p) {
		g.stones.Set(g.idx(p), v)
		g.occupied.Set(g.idx(p), v)
	}
}

func (g *Grid) SetResource(p geom.Point, r landscape.Resource, amount int) {
	if !g.InBounds(p) {
		return
	}
	if amount < 0 {
		amount = 0
	}
	g.deposits[g.idx(p)] = deposit{res: r, amount: amount}
}

func (g *Grid) AddBuilding(kind buildings.Kind, at geom.Point) {
	if kind.Valid() {
		g.buildings[kind] = append(g.buildings[kind], at)
	}
}

func (g *Grid) AddBorder(p geom.Point) { g.border = append(g.border, p) }
func (g *Grid) AddDigger(p geom.Point) { g.diggers = append(g.diggers, p) }

// Build occupies the blocked and protected tiles of info around at and
// registers the building.
func (g *Grid) Build(info *catalogs.BuildingInfo, at geom.Point) {
	for _, r := range info.Area() {
		g.SetOccupied(r.Calculate(at), true)
	}
	g.AddBuilding(info.Kind, at)
}

func nearest(pts []geom.Point, from geom.Point) (geom.Point, int, bool) {
	best, bestD, ok := geom.Point{}, 0, false
	for _, p := range pts {
		d := geom.GridDistance(from, p)
		if !ok || d < bestD {
			best, bestD, ok = p, d, true
		}
	}
	return best, bestD, ok
}
