package landscape

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Type uint8

const (
	Grass Type = iota
	DryGrass
	Desert
	Sand
	Mountain
	MountainBorder
	Snow
	Water
	River
	Moor
	Mud
	Flattened
	Road

	Count = int(Road) + 1
)

var typeNames = [Count]string{
	Grass:          "GRASS",
	DryGrass:       "DRY_GRASS",
	Desert:         "DESERT",
	Sand:           "SAND",
	Mountain:       "MOUNTAIN",
	MountainBorder: "MOUNTAINBORDER",
	Snow:           "SNOW",
	Water:          "WATER",
	River:          "RIVER",
	Moor:           "MOOR",
	Mud:            "MUD",
	Flattened:      "FLATTENED",
	Road:           "ROAD",
}

func (t Type) String() string {
	if int(t) < Count {
		return typeNames[t]
	}
	return fmt.Sprintf("LANDSCAPE(%d)", t)
}

func (t Type) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *Type) UnmarshalText(b []byte) error {
	v, ok := ParseType(string(b))
	if !ok {
		return fmt.Errorf("unknown landscape type %q", b)
	}
	*t = v
	return nil
}

func ParseType(s string) (Type, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i, n := range typeNames {
		if n == s {
			return Type(i), true
		}
	}
	return 0, false
}

// IsWater reports landscapes fishers and waterworks draw from.
func (t Type) IsWater() bool { return t == Water || t == River }

// Set is an immutable bit set of landscape types.
type Set uint32

// MountainTypes is the ground a mine anchor cell must rest on.
var MountainTypes = Of(Mountain, MountainBorder)

func Of(types ...Type) Set {
	var s Set
	for _, t := range types {
		s |= 1 << t
	}
	return s
}

func (s Set) Has(t Type) bool { return s&(1<<t) != 0 }

func (s Set) Len() int {
	n := 0
	for v := s; v != 0; v &= v - 1 {
		n++
	}
	return n
}

// Types lists members in declaration order.
func (s Set) Types() []Type {
	out := make([]Type, 0, s.Len())
	for i := 0; i < Count; i++ {
		if s.Has(Type(i)) {
			out = append(out, Type(i))
		}
	}
	return out
}

func (s Set) String() string {
	names := make([]string, 0, s.Len())
	for _, t := range s.Types() {
		names = append(names, t.String())
	}
	return "{" + strings.Join(names, ",") + "}"
}

func (s Set) MarshalJSON() ([]byte, error) {
	var b strings.Builder
	b.WriteByte('[')
	for i, t := range s.Types() {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%q", t.String())
	}
	b.WriteByte(']')
	return []byte(b.String()), nil
}

// UnmarshalJSON reads the list form MarshalJSON writes.
func (s *Set) UnmarshalJSON(b []byte) error {
	var types []Type
	if err := json.Unmarshal(b, &types); err != nil {
		return err
	}
	*s = Of(types...)
	return nil
}
