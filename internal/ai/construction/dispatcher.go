package construction

import (
	"fmt"

	"github.com/Da-Krause/settlers-remake/internal/sim/buildings"
	"github.com/Da-Krause/settlers-remake/internal/sim/catalogs"
	"github.com/Da-Krause/settlers-remake/internal/sim/civ"
	"github.com/Da-Krause/settlers-remake/internal/sim/geom"
	"github.com/Da-Krause/settlers-remake/internal/sim/landscape"
	"github.com/Da-Krause/settlers-remake/internal/sim/tuning"
)

type use uint8

const (
	useUnset use = iota
	useStoneCutter
	useLumberJack
	useForester
	useNearRequired
	useMilitary
	useFarm
	useWinegrower
	useMine
	useWaterWorks
	useTemple
	useBigTemple
	useFisher
	useNearDiggers
)

type rule struct {
	use      use
	required buildings.Kind
	resource landscape.Resource
}

func near(k buildings.Kind) rule     { return rule{use: useNearRequired, required: k} }
func mine(r landscape.Resource) rule { return rule{use: useMine, resource: r} }
func fallback() rule                 { return rule{use: useNearDiggers} }
func dedicated(u use) rule           { return rule{use: u} }

// rules routes every kind explicitly. A kind added to buildings without an
// entry here is caught by TestDispatcher_EveryKindRouted.
var rules = [buildings.Count]rule{
	buildings.StoneCutter: dedicated(useStoneCutter),
	buildings.Forester:    dedicated(useForester),
	buildings.Lumberjack:  dedicated(useLumberJack),
	buildings.Sawmill:     near(buildings.Lumberjack),

	buildings.CoalMine:    mine(landscape.Coal),
	buildings.IronMine:    mine(landscape.IronOre),
	buildings.GoldMine:    mine(landscape.GoldOre),
	buildings.SulfurMine:  fallback(),
	buildings.GemMine:     fallback(),
	buildings.GoldMelt:    near(buildings.GoldMine),
	buildings.IronMelt:    near(buildings.IronMine),
	buildings.ToolSmith:   near(buildings.IronMelt),
	buildings.WeaponSmith: near(buildings.IronMelt),

	buildings.Farm:           dedicated(useFarm),
	buildings.PigFarm:        near(buildings.Farm),
	buildings.Mill:           near(buildings.Farm),
	buildings.Waterworks:     dedicated(useWaterWorks),
	buildings.Slaughterhouse: near(buildings.PigFarm),
	buildings.Baker:          near(buildings.Mill),
	buildings.Fisher:         dedicated(useFisher),
	buildings.Winegrower:     dedicated(useWinegrower),
	buildings.CharcoalBurner: fallback(),
	buildings.DonkeyFarm:     fallback(),
	buildings.Beekeeper:      fallback(),
	buildings.Meadmaker:      fallback(),

	buildings.SmallLivinghouse:  fallback(),
	buildings.MediumLivinghouse: fallback(),
	buildings.BigLivinghouse:    fallback(),

	buildings.LookoutTower: fallback(),
	buildings.Tower:        dedicated(useMilitary),
	buildings.BigTower:     dedicated(useMilitary),
	buildings.Castle:       dedicated(useMilitary),
	buildings.Hospital:     fallback(),
	buildings.Barrack:      near(buildings.WeaponSmith),
	buildings.GongHall:     fallback(),

	buildings.Dockyard: fallback(),
	buildings.Harbor:   fallback(),
	buildings.Stock:    near(buildings.GoldMelt),

	buildings.Temple:    dedicated(useTemple),
	buildings.BigTemple: dedicated(useBigTemple),
	buildings.Alchemist: fallback(),

	buildings.MarketPlace: fallback(),
}

// Prerequisite returns the kind a NearRequired building is placed next to.
func Prerequisite(kind buildings.Kind) (buildings.Kind, bool) {
	if !kind.Valid() || rules[kind].use != useNearRequired {
		return 0, false
	}
	return rules[kind].required, true
}

// Dispatcher hands out placement strategies. It holds no mutable state.
type Dispatcher struct {
	cat    *catalogs.Catalog
	params tuning.Strategies
}

func NewDispatcher(cat *catalogs.Catalog, p tuning.Strategies) *Dispatcher {
	return &Dispatcher{cat: cat, params: p}
}

// StrategyFor returns the placement strategy for kind built by cv. It fails
// with catalogs.ErrUnsupportedCombination when cv cannot build kind.
func (d *Dispatcher) StrategyFor(kind buildings.Kind, cv civ.Civilisation) (Strategy, error) {
	info, err := d.cat.Resolve(kind, cv)
	if err != nil {
		return nil, err
	}
	r := rules[kind]
	switch r.use {
	case useStoneCutter:
		return NewStoneCutter(info), nil
	case useLumberJack:
		return NewLumberJack(info), nil
	case useForester:
		return NewForester(info, d.params), nil
	case useNearRequired:
		return NewNearRequired(info, r.required, d.params), nil
	case useMilitary:
		return NewMilitary(info, d.params), nil
	case useFarm:
		return NewFarm(info, d.params), nil
	case useWinegrower:
		return NewWinegrower(info), nil
	case useMine:
		return NewMine(info, r.resource, d.params), nil
	case useWaterWorks:
		return NewWaterWorks(info), nil
	case useTemple:
		return NewTemple(info), nil
	case useBigTemple:
		return NewBigTemple(info), nil
	case useFisher:
		return NewFisher(info), nil
	case useNearDiggers:
		return NewNearDiggers(info), nil
	}
	return nil, fmt.Errorf("no placement rule for %s", kind)
}

// BorderDefence returns the strategy the defensive planner uses to put a
// tower next to threatened border tiles.
func (d *Dispatcher) BorderDefence(cv civ.Civilisation, threatened []geom.Point) (Strategy, error) {
	info, err := d.cat.Resolve(buildings.Tower, cv)
	if err != nil {
		return nil, err
	}
	return NewBorderDefence(info, threatened, d.params), nil
}
