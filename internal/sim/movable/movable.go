package movable

import (
	"fmt"
	"strings"
)

// Type is a settler kind that can man a building.
type Type uint8

const (
	None Type = iota
	Bearer
	StoneCutter
	Forester
	Lumberjack
	Sawmiller
	Miner
	Melter
	Smith
	Farmer
	PigFarmer
	Miller
	Waterworker
	Slaughterer
	Baker
	Fisherman
	Winegrower
	CharcoalBurner
	DonkeyFarmer
	Beekeeper
	Meadmaker
	Healer
	Dockworker
	Alchemist
	Soldier

	Count = int(Soldier) + 1
)

var names = [Count]string{
	"NONE", "BEARER", "STONECUTTER", "FORESTER", "LUMBERJACK", "SAWMILLER",
	"MINER", "MELTER", "SMITH", "FARMER", "PIG_FARMER", "MILLER", "WATERWORKER",
	"SLAUGHTERER", "BAKER", "FISHERMAN", "WINEGROWER", "CHARCOAL_BURNER",
	"DONKEY_FARMER", "BEEKEEPER", "MEADMAKER", "HEALER", "DOCKWORKER",
	"ALCHEMIST", "SOLDIER",
}

func (t Type) String() string {
	if int(t) < Count {
		return names[t]
	}
	return fmt.Sprintf("MOVABLE(%d)", t)
}

func (t Type) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *Type) UnmarshalText(b []byte) error {
	v, ok := Parse(string(b))
	if !ok {
		return fmt.Errorf("unknown movable type %q", b)
	}
	*t = v
	return nil
}

func Parse(s string) (Type, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i, n := range names {
		if n == s {
			return Type(i), true
		}
	}
	return None, false
}
