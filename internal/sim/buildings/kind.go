// Package buildings holds the closed set of building kinds a player can
// construct, together with the static facts that do not depend on decoded
// definition data: eligible civilisations, the military set and menu
// categories.
package buildings

import (
	"fmt"
	"strings"

	"github.com/Da-Krause/settlers-remake/internal/sim/civ"
)

// Kind is a building kind. Its value is the stable ordinal used for
// array-indexed lookup.
type Kind uint8

const (
	StoneCutter Kind = iota
	Forester
	Lumberjack
	Sawmill

	CoalMine
	IronMine
	GoldMine
	SulfurMine
	GemMine
	GoldMelt
	IronMelt
	ToolSmith
	WeaponSmith

	Farm
	PigFarm
	Mill
	Waterworks
	Slaughterhouse
	Baker
	Fisher
	Winegrower
	CharcoalBurner
	DonkeyFarm
	Beekeeper
	Meadmaker

	SmallLivinghouse
	MediumLivinghouse
	BigLivinghouse

	LookoutTower
	Tower
	BigTower
	Castle
	Hospital
	Barrack
	GongHall

	Dockyard
	Harbor
	Stock

	Temple
	BigTemple
	Alchemist

	MarketPlace

	// Count is the number of building kinds.
	Count = int(MarketPlace) + 1
)

type kindMeta struct {
	name     string
	civs     []civ.Civilisation
	category Category
}

var meta = [Count]kindMeta{
	StoneCutter: {name: "STONE_CUTTER", category: CategoryNormal},
	Forester:    {name: "FORESTER", category: CategoryNormal},
	Lumberjack:  {name: "LUMBERJACK", category: CategoryNormal},
	Sawmill:     {name: "SAWMILL", category: CategoryNormal},

	CoalMine:    {name: "COALMINE", category: CategoryNormal},
	IronMine:    {name: "IRON_MINE", category: CategoryNormal},
	GoldMine:    {name: "GOLDMINE", category: CategoryNormal},
	SulfurMine:  {name: "SULFUR_MINE", category: CategoryNormal, civs: []civ.Civilisation{civ.Asians, civ.Amazons}},
	GemMine:     {name: "GEM_MINE", category: CategoryNormal, civs: []civ.Civilisation{civ.Egyptians, civ.Amazons}},
	GoldMelt:    {name: "GOLD_MELT", category: CategoryNormal},
	IronMelt:    {name: "IRON_MELT", category: CategoryNormal},
	ToolSmith:   {name: "TOOL_SMITH", category: CategoryNormal},
	WeaponSmith: {name: "WEAPON_SMITH", category: CategoryNormal},

	Farm:           {name: "FARM", category: CategoryFood},
	PigFarm:        {name: "PIG_FARM", category: CategoryFood},
	Mill:           {name: "MILL", category: CategoryFood},
	Waterworks:     {name: "WATERWORKS", category: CategoryFood},
	Slaughterhouse: {name: "SLAUGHTERHOUSE", category: CategoryFood},
	Baker:          {name: "BAKER", category: CategoryFood},
	Fisher:         {name: "FISHER", category: CategoryFood},
	Winegrower:     {name: "WINEGROWER", category: CategoryFood, civs: []civ.Civilisation{civ.Romans}},
	CharcoalBurner: {name: "CHARCOAL_BURNER", category: CategoryNormal, civs: []civ.Civilisation{civ.Romans}},
	DonkeyFarm:     {name: "DONKEY_FARM", category: CategoryFood},
	Beekeeper:      {name: "BEEKEEPER", category: CategoryFood, civs: []civ.Civilisation{civ.Amazons}},
	Meadmaker:      {name: "MEADMAKER", category: CategoryFood, civs: []civ.Civilisation{civ.Amazons}},

	SmallLivinghouse:  {name: "SMALL_LIVINGHOUSE", category: CategorySocial},
	MediumLivinghouse: {name: "MEDIUM_LIVINGHOUSE", category: CategorySocial},
	BigLivinghouse:    {name: "BIG_LIVINGHOUSE", category: CategorySocial},

	LookoutTower: {name: "LOOKOUT_TOWER", category: CategoryMilitary},
	Tower:        {name: "TOWER", category: CategoryMilitary},
	BigTower:     {name: "BIG_TOWER", category: CategoryMilitary},
	Castle:       {name: "CASTLE", category: CategoryMilitary},
	Hospital:     {name: "HOSPITAL", category: CategoryMilitary},
	Barrack:      {name: "BARRACK", category: CategoryMilitary},
	GongHall:     {name: "GONG_HALL", category: CategoryMilitary, civs: []civ.Civilisation{civ.Amazons}},

	Dockyard: {name: "DOCKYARD", category: CategorySocial},
	Harbor:   {name: "HARBOR", category: CategorySocial},
	Stock:    {name: "STOCK", category: CategorySocial},

	Temple:    {name: "TEMPLE", category: CategorySocial},
	BigTemple: {name: "BIG_TEMPLE", category: CategorySocial},
	Alchemist: {name: "ALCHEMIST", category: CategorySocial, civs: []civ.Civilisation{civ.Amazons}},

	MarketPlace: {name: "MARKET_PLACE", category: CategorySocial},
}

var all = func() [Count]Kind {
	var out [Count]Kind
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}()

// All returns every kind in declaration order.
func All() []Kind {
	out := all
	return out[:]
}

func (k Kind) Valid() bool { return int(k) < Count }

func (k Kind) String() string {
	if k.Valid() {
		return meta[k].name
	}
	return fmt.Sprintf("BUILDING(%d)", k)
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(b []byte) error {
	v, ok := ParseKind(string(b))
	if !ok {
		return fmt.Errorf("unknown building kind %q", b)
	}
	*k = v
	return nil
}

func ParseKind(s string) (Kind, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i := range meta {
		if meta[i].name == s {
			return Kind(i), true
		}
	}
	return 0, false
}

// RequiredCivilisations returns the civilisations that may construct k. A
// kind that declares none is available to every civilisation.
func (k Kind) RequiredCivilisations() []civ.Civilisation {
	if !k.Valid() {
		return nil
	}
	if len(meta[k].civs) == 0 {
		return civ.All()
	}
	return append([]civ.Civilisation(nil), meta[k].civs...)
}

func (k Kind) AvailableFor(c civ.Civilisation) bool {
	for _, rc := range k.RequiredCivilisations() {
		if rc == c {
			return true
		}
	}
	return false
}

// IsMilitary reports whether k belongs to the garrison set the defence AI
// considers.
func (k Kind) IsMilitary() bool {
	switch k {
	case Tower, BigTower, Castle:
		return true
	}
	return false
}

func (k Kind) Category() Category {
	if !k.Valid() {
		return CategoryNormal
	}
	return meta[k].category
}
