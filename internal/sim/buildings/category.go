package buildings

import (
	"fmt"
	"strings"
)

// Category groups kinds for the building menus.
type Category uint8

const (
	CategoryNormal Category = iota
	CategoryFood
	CategoryMilitary
	CategorySocial
)

func (c Category) String() string {
	switch c {
	case CategoryNormal:
		return "NORMAL"
	case CategoryFood:
		return "FOOD"
	case CategoryMilitary:
		return "MILITARY"
	case CategorySocial:
		return "SOCIAL"
	default:
		return "UNKNOWN"
	}
}

func (c Category) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Category) UnmarshalText(b []byte) error {
	v, ok := ParseCategory(string(b))
	if !ok {
		return fmt.Errorf("unknown category %q", b)
	}
	*c = v
	return nil
}

func ParseCategory(s string) (Category, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for c := CategoryNormal; c <= CategorySocial; c++ {
		if c.String() == s {
			return c, true
		}
	}
	return 0, false
}

// InCategory lists the kinds of a menu category in declaration order.
func InCategory(c Category) []Kind {
	var out []Kind
	for _, k := range All() {
		if k.Category() == c {
			out = append(out, k)
		}
	}
	return out
}
