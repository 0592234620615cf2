package landscape

import (
	"fmt"
	"strings"
)

// Resource is a deposit that can lie under a tile.
type Resource uint8

const (
	NoResource Resource = iota
	Coal
	IronOre
	GoldOre
	Gemstone
	Brimstone
	Fish

	ResourceCount = int(Fish) + 1
)

var resourceNames = [ResourceCount]string{
	NoResource: "NOTHING",
	Coal:       "COAL",
	IronOre:    "IRONORE",
	GoldOre:    "GOLDORE",
	Gemstone:   "GEMSTONE",
	Brimstone:  "BRIMSTONE",
	Fish:       "FISH",
}

func (r Resource) String() string {
	if int(r) < ResourceCount {
		return resourceNames[r]
	}
	return fmt.Sprintf("RESOURCE(%d)", r)
}

func (r Resource) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *Resource) UnmarshalText(b []byte) error {
	v, ok := ParseResource(string(b))
	if !ok {
		return fmt.Errorf("unknown resource %q", b)
	}
	*r = v
	return nil
}

func ParseResource(s string) (Resource, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i, n := range resourceNames {
		if n == s {
			return Resource(i), true
		}
	}
	return 0, false
}
