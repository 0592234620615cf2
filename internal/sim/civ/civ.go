package civ

import (
	"fmt"
	"strings"
)

// Civilisation is a playable faction.
type Civilisation uint8

const (
	Romans Civilisation = iota
	Egyptians
	Asians
	Amazons

	Count = int(Amazons) + 1
)

var names = [Count]string{"ROMANS", "EGYPTIANS", "ASIANS", "AMAZONS"}

var all = [Count]Civilisation{Romans, Egyptians, Asians, Amazons}

// All returns every civilisation in ordinal order.
func All() []Civilisation {
	out := all
	return out[:]
}

func (c Civilisation) String() string {
	if int(c) < Count {
		return names[c]
	}
	return fmt.Sprintf("CIVILISATION(%d)", c)
}

func (c Civilisation) Valid() bool { return int(c) < Count }

func (c Civilisation) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Civilisation) UnmarshalText(b []byte) error {
	v, ok := Parse(string(b))
	if !ok {
		return fmt.Errorf("unknown civilisation %q", b)
	}
	*c = v
	return nil
}

func Parse(s string) (Civilisation, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i, n := range names {
		if n == s {
			return Civilisation(i), true
		}
	}
	return 0, false
}
