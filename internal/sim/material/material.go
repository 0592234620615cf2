package material

import (
	"fmt"
	"strings"
)

type Material uint8

const (
	Plank Material = iota
	Stone
	Trunk
	Coal
	IronOre
	GoldOre
	Iron
	Gold
	Crop
	Flour
	Bread
	Pig
	Meat
	Fish
	Water
	Wine
	Sword
	Bow
	Spear
	Blade
	Axe
	Saw
	Pick
	Hammer
	Scythe
	FishingRod
	Gems
	Sulfur
	Honey
	Mead
	Keg
	GunPowder

	Count = int(GunPowder) + 1
)

var names = [Count]string{
	"PLANK", "STONE", "TRUNK", "COAL", "IRONORE", "GOLDORE", "IRON", "GOLD",
	"CROP", "FLOUR", "BREAD", "PIG", "MEAT", "FISH", "WATER", "WINE",
	"SWORD", "BOW", "SPEAR", "BLADE", "AXE", "SAW", "PICK", "HAMMER",
	"SCYTHE", "FISHINGROD", "GEMS", "SULFUR", "HONEY", "MEAD", "KEG", "GUN_POWDER",
}

func (m Material) String() string {
	if int(m) < Count {
		return names[m]
	}
	return fmt.Sprintf("MATERIAL(%d)", m)
}

func (m Material) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Material) UnmarshalText(b []byte) error {
	v, ok := Parse(string(b))
	if !ok {
		return fmt.Errorf("unknown material %q", b)
	}
	*m = v
	return nil
}

func Parse(s string) (Material, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i, n := range names {
		if n == s {
			return Material(i), true
		}
	}
	return 0, false
}
