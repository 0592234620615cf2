// Package construction chooses construction sites for the computer player.
//
// A Strategy scores one candidate tile for one building. The Dispatcher
// picks the strategy for a building kind and FindBest runs it over many
// candidates concurrently.
package construction

import (
	"github.com/Da-Krause/settlers-remake/internal/sim/buildings"
	"github.com/Da-Krause/settlers-remake/internal/sim/catalogs"
	"github.com/Da-Krause/settlers-remake/internal/sim/civ"
	"github.com/Da-Krause/settlers-remake/internal/sim/geom"
	"github.com/Da-Krause/settlers-remake/internal/sim/landscape"
)

// Map is the read-only terrain view strategies evaluate against. All methods
// must be safe for concurrent use.
type Map interface {
	Width() int
	Height() int
	InBounds(p geom.Point) bool
	Landscape(p geom.Point) landscape.Type
	Occupied(p geom.Point) bool
	HasTree(p geom.Point) bool
	HasStone(p geom.Point) bool
	Resource(p geom.Point) (landscape.Resource, int)
	// NearestBuilding returns the closest own building of kind and its grid
	// distance from p.
	NearestBuilding(kind buildings.Kind, from geom.Point) (geom.Point, int, bool)
	// Border lists the tiles on the edge of the player's territory.
	Border() []geom.Point
	// Diggers lists the positions of idle ground-levelling workers.
	Diggers() []geom.Point
}

type Reason string

const (
	ReasonOutOfBounds    Reason = "out_of_bounds"
	ReasonOccupied       Reason = "occupied"
	ReasonGround         Reason = "ground"
	ReasonNoResource     Reason = "no_resource"
	ReasonNoTrees        Reason = "no_trees"
	ReasonNoStones       Reason = "no_stones"
	ReasonNoWater        Reason = "no_water"
	ReasonNoSpace        Reason = "no_space"
	ReasonNoPrerequisite Reason = "no_prerequisite"
	ReasonTooFar         Reason = "too_far"
	ReasonNoWine         Reason = "no_wine"
	ReasonNoDiggers      Reason = "no_diggers"
)

// Evaluation is the verdict on one candidate. Score is a cost: lower wins.
type Evaluation struct {
	Accepted bool   `json:"accepted"`
	Score    int    `json:"score,omitempty"`
	Reason   Reason `json:"reason,omitempty"`
}

func Accept(score int) Evaluation { return Evaluation{Accepted: true, Score: score} }
func Reject(r Reason) Evaluation  { return Evaluation{Reason: r} }

// Strategy evaluates candidate anchor tiles for one building. Implementations
// hold no mutable state.
type Strategy interface {
	Name() string
	// Target is the building and civilisation the strategy places.
	Target() (buildings.Kind, civ.Civilisation)
	Evaluate(m Map, at geom.Point) Evaluation
}

// site carries the building geometry shared by every strategy.
type site struct {
	name string
	info *catalogs.BuildingInfo
}

func (s site) Name() string { return s.name }

func (s site) Target() (buildings.Kind, civ.Civilisation) {
	return s.info.Kind, s.info.Civilisation
}

// fits checks that every blocked and protected tile is on the map, free and
// of a ground type the building accepts at that offset.
func (s site) fits(m Map, at geom.Point) (Reason, bool) {
	for _, tiles := range [][]geom.RelativePoint{s.info.Blocked, s.info.Protected} {
		for _, r := range tiles {
			p := r.Calculate(at)
			if !m.InBounds(p) {
				return ReasonOutOfBounds, false
			}
			if m.Occupied(p) {
				return ReasonOccupied, false
			}
			if !s.info.RequiredGroundTypesAt(r.DX, r.DY).Has(m.Landscape(p)) {
				return ReasonGround, false
			}
		}
	}
	return "", true
}

func (s site) workCenter(at geom.Point) geom.Point {
	return s.info.WorkCenter.Calculate(at)
}

// scan visits every in-bounds tile within radius of center.
func scan(m Map, center geom.Point, radius int, visit func(geom.Point)) {
	for y := center.Y - radius; y <= center.Y+radius; y++ {
		for x := center.X - radius; x <= center.X+radius; x++ {
			p := geom.Point{X: x, Y: y}
			if !m.InBounds(p) || geom.GridDistance(center, p) > radius {
				continue
			}
			visit(p)
		}
	}
}

func nearestOf(pts []geom.Point, from geom.Point) (int, bool) {
	best, ok := 0, false
	for _, p := range pts {
		d := geom.GridDistance(from, p)
		if !ok || d < best {
			best, ok = d, true
		}
	}
	return best, ok
}

func plantable(t landscape.Type) bool {
	return t == landscape.Grass || t == landscape.DryGrass
}
