package construction

import (
	"github.com/Da-Krause/settlers-remake/internal/sim/buildings"
	"github.com/Da-Krause/settlers-remake/internal/sim/catalogs"
	"github.com/Da-Krause/settlers-remake/internal/sim/geom"
	"github.com/Da-Krause/settlers-remake/internal/sim/landscape"
	"github.com/Da-Krause/settlers-remake/internal/sim/tuning"
)

// StoneCutter prefers sites with many stones around the work center.
type StoneCutter struct{ site }

func NewStoneCutter(info *catalogs.BuildingInfo) StoneCutter {
	return StoneCutter{site{name: "stone_cutter", info: info}}
}

func (s StoneCutter) Evaluate(m Map, at geom.Point) Evaluation {
	if r, ok := s.fits(m, at); !ok {
		return Reject(r)
	}
	stones := 0
	scan(m, s.workCenter(at), s.info.WorkRadius, func(p geom.Point) {
		if m.HasStone(p) {
			stones++
		}
	})
	if stones == 0 {
		return Reject(ReasonNoStones)
	}
	return Accept(-stones)
}

// LumberJack prefers dense forest around the work center.
type LumberJack struct{ site }

func NewLumberJack(info *catalogs.BuildingInfo) LumberJack {
	return LumberJack{site{name: "lumberjack", info: info}}
}

func (s LumberJack) Evaluate(m Map, at geom.Point) Evaluation {
	if r, ok := s.fits(m, at); !ok {
		return Reject(r)
	}
	trees := 0
	scan(m, s.workCenter(at), s.info.WorkRadius, func(p geom.Point) {
		if m.HasTree(p) {
			trees++
		}
	})
	if trees == 0 {
		return Reject(ReasonNoTrees)
	}
	return Accept(-trees)
}

// Forester plants next to an existing lumberjack, on open grass.
type Forester struct {
	site
	maxDistance int
}

func NewForester(info *catalogs.BuildingInfo, p tuning.Strategies) Forester {
	return Forester{site: site{name: "forester", info: info}, maxDistance: p.ForesterLumberjackRange}
}

func (s Forester) Evaluate(m Map, at geom.Point) Evaluation {
	if r, ok := s.fits(m, at); !ok {
		return Reject(r)
	}
	_, d, ok := m.NearestBuilding(buildings.Lumberjack, at)
	if !ok {
		return Reject(ReasonNoPrerequisite)
	}
	if d > s.maxDistance {
		return Reject(ReasonTooFar)
	}
	free := 0
	scan(m, s.workCenter(at), s.info.WorkRadius, func(p geom.Point) {
		if !m.Occupied(p) && plantable(m.Landscape(p)) {
			free++
		}
	})
	if free == 0 {
		return Reject(ReasonNoSpace)
	}
	return Accept(2*d - free)
}

// NearRequired places a building as close as possible to the nearest
// building it is supplied by.
type NearRequired struct {
	site
	required    buildings.Kind
	maxDistance int
}

func NewNearRequired(info *catalogs.BuildingInfo, required buildings.Kind, p tuning.Strategies) NearRequired {
	return NearRequired{
		site:        site{name: "near_required", info: info},
		required:    required,
		maxDistance: p.NearRequiredMaxDistance,
	}
}

// Required is the prerequisite building kind.
func (s NearRequired) Required() buildings.Kind { return s.required }

func (s NearRequired) Evaluate(m Map, at geom.Point) Evaluation {
	if r, ok := s.fits(m, at); !ok {
		return Reject(r)
	}
	_, d, ok := m.NearestBuilding(s.required, at)
	if !ok {
		return Reject(ReasonNoPrerequisite)
	}
	if d > s.maxDistance {
		return Reject(ReasonTooFar)
	}
	return Accept(d)
}

// Military pushes towers and castles towards the territory border.
type Military struct {
	site
	maxDistance int
}

func NewMilitary(info *catalogs.BuildingInfo, p tuning.Strategies) Military {
	return Military{site: site{name: "military", info: info}, maxDistance: p.BorderMaxDistance}
}

func (s Military) Evaluate(m Map, at geom.Point) Evaluation {
	if r, ok := s.fits(m, at); !ok {
		return Reject(r)
	}
	d, ok := nearestOf(m.Border(), at)
	if !ok || d > s.maxDistance {
		return Reject(ReasonTooFar)
	}
	return Accept(d)
}

// Farm wants as much free farmland as possible around the work center.
type Farm struct {
	site
	minSpace int
}

func NewFarm(info *catalogs.BuildingInfo, p tuning.Strategies) Farm {
	return Farm{site: site{name: "farm", info: info}, minSpace: p.MinFarmSpace}
}

func (s Farm) Evaluate(m Map, at geom.Point) Evaluation {
	if r, ok := s.fits(m, at); !ok {
		return Reject(r)
	}
	free := 0
	scan(m, s.workCenter(at), s.info.WorkRadius, func(p geom.Point) {
		if !m.Occupied(p) && plantable(m.Landscape(p)) {
			free++
		}
	})
	if free == 0 || free < s.minSpace {
		return Reject(ReasonNoSpace)
	}
	return Accept(-free)
}

// Winegrower plants vines on free grass; mountain slopes count double.
type Winegrower struct{ site }

func NewWinegrower(info *catalogs.BuildingInfo) Winegrower {
	return Winegrower{site{name: "winegrower", info: info}}
}

func (s Winegrower) Evaluate(m Map, at geom.Point) Evaluation {
	if r, ok := s.fits(m, at); !ok {
		return Reject(r)
	}
	value := 0
	scan(m, s.workCenter(at), s.info.WorkRadius, func(p geom.Point) {
		if m.Occupied(p) {
			return
		}
		switch m.Landscape(p) {
		case landscape.MountainBorder:
			value += 2
		case landscape.Grass, landscape.DryGrass:
			value++
		}
	})
	if value == 0 {
		return Reject(ReasonNoSpace)
	}
	return Accept(-value)
}

// Mine looks for the richest deposit of one resource under and around the
// anchor tile.
type Mine struct {
	site
	resource landscape.Resource
	radius   int
}

func NewMine(info *catalogs.BuildingInfo, r landscape.Resource, p tuning.Strategies) Mine {
	return Mine{site: site{name: "mine", info: info}, resource: r, radius: p.MineSearchRadius}
}

// Resource is the deposit type the mine digs for.
func (s Mine) Resource() landscape.Resource { return s.resource }

func (s Mine) Evaluate(m Map, at geom.Point) Evaluation {
	if r, ok := s.fits(m, at); !ok {
		return Reject(r)
	}
	amount := 0
	scan(m, at, s.radius, func(p geom.Point) {
		if r, n := m.Resource(p); r == s.resource {
			amount += n
		}
	})
	if amount == 0 {
		return Reject(ReasonNoResource)
	}
	return Accept(-amount)
}

// WaterWorks needs water within reach of the work center.
type WaterWorks struct{ site }

func NewWaterWorks(info *catalogs.BuildingInfo) WaterWorks {
	return WaterWorks{site{name: "water_works", info: info}}
}

func (s WaterWorks) Evaluate(m Map, at geom.Point) Evaluation {
	if r, ok := s.fits(m, at); !ok {
		return Reject(r)
	}
	water := 0
	scan(m, s.workCenter(at), s.info.WorkRadius, func(p geom.Point) {
		if m.Landscape(p).IsWater() {
			water++
		}
	})
	if water == 0 {
		return Reject(ReasonNoWater)
	}
	return Accept(-water)
}

// Fisher needs fish in the water around the work center.
type Fisher struct{ site }

func NewFisher(info *catalogs.BuildingInfo) Fisher {
	return Fisher{site{name: "fisher", info: info}}
}

func (s Fisher) Evaluate(m Map, at geom.Point) Evaluation {
	if r, ok := s.fits(m, at); !ok {
		return Reject(r)
	}
	water, fish := 0, 0
	scan(m, s.workCenter(at), s.info.WorkRadius, func(p geom.Point) {
		if !m.Landscape(p).IsWater() {
			return
		}
		water++
		if r, n := m.Resource(p); r == landscape.Fish {
			fish += n
		}
	})
	if water == 0 {
		return Reject(ReasonNoWater)
	}
	if fish == 0 {
		return Reject(ReasonNoResource)
	}
	return Accept(-fish)
}

// Temple is only worth building once wine is produced; it sits close to
// the nearest winegrower.
type Temple struct{ site }

func NewTemple(info *catalogs.BuildingInfo) Temple {
	return Temple{site{name: "temple", info: info}}
}

func (s Temple) Evaluate(m Map, at geom.Point) Evaluation {
	if r, ok := s.fits(m, at); !ok {
		return Reject(r)
	}
	_, d, ok := m.NearestBuilding(buildings.Winegrower, at)
	if !ok {
		return Reject(ReasonNoWine)
	}
	return Accept(d)
}

// BigTemple joins existing temples when there are any and otherwise goes
// where the diggers are.
type BigTemple struct{ site }

func NewBigTemple(info *catalogs.BuildingInfo) BigTemple {
	return BigTemple{site{name: "big_temple", info: info}}
}

// Sites near a temple always beat sites chosen by digger distance.
const bigTempleFallbackPenalty = 1000

func (s BigTemple) Evaluate(m Map, at geom.Point) Evaluation {
	if r, ok := s.fits(m, at); !ok {
		return Reject(r)
	}
	if _, d, ok := m.NearestBuilding(buildings.Temple, at); ok {
		return Accept(d)
	}
	d, ok := nearestOf(m.Diggers(), at)
	if !ok {
		return Reject(ReasonNoDiggers)
	}
	return Accept(bigTempleFallbackPenalty + d)
}

// NearDiggers is the catch-all: build where the workforce already is.
type NearDiggers struct{ site }

func NewNearDiggers(info *catalogs.BuildingInfo) NearDiggers {
	return NearDiggers{site{name: "near_diggers", info: info}}
}

func (s NearDiggers) Evaluate(m Map, at geom.Point) Evaluation {
	if r, ok := s.fits(m, at); !ok {
		return Reject(r)
	}
	d, ok := nearestOf(m.Diggers(), at)
	if !ok {
		return Reject(ReasonNoDiggers)
	}
	return Accept(d)
}

// BorderDefence places a tower next to the threatened stretch of border.
type BorderDefence struct {
	site
	threatened  []geom.Point
	maxDistance int
}

func NewBorderDefence(info *catalogs.BuildingInfo, threatened []geom.Point, p tuning.Strategies) BorderDefence {
	return BorderDefence{
		site:        site{name: "border_defence", info: info},
		threatened:  append([]geom.Point(nil), threatened...),
		maxDistance: p.BorderMaxDistance,
	}
}

func (s BorderDefence) Evaluate(m Map, at geom.Point) Evaluation {
	if r, ok := s.fits(m, at); !ok {
		return Reject(r)
	}
	d, ok := nearestOf(s.threatened, at)
	if !ok || d > s.maxDistance {
		return Reject(ReasonTooFar)
	}
	return Accept(d)
}
