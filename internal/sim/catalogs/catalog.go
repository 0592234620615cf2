package catalogs

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/Da-Krause/settlers-remake/internal/sim/buildings"
	"github.com/Da-Krause/settlers-remake/internal/sim/civ"
	"github.com/Da-Krause/settlers-remake/internal/sim/geom"
	"github.com/Da-Krause/settlers-remake/internal/sim/jobs"
	"github.com/Da-Krause/settlers-remake/internal/sim/landscape"
)

var (
	// ErrUnsupportedCombination: the civilisation may not construct the kind.
	ErrUnsupportedCombination = errors.New("unsupported building/civilisation combination")
	// ErrNoEligibleCivilisation: a kind has an empty eligible set. Correct
	// definitions never produce it.
	ErrNoEligibleCivilisation = errors.New("building kind has no eligible civilisation")
)

type slot struct {
	once sync.Once
	info *BuildingInfo
	err  error
}

// Catalog resolves BuildingInfo records lazily, once per (kind,
// civilisation), and serves them to any number of goroutines.
type Catalog struct {
	src      DefinitionSource
	eligible [buildings.Count][]civ.Civilisation
	slots    [buildings.Count][civ.Count]slot

	loads atomic.Int64
}

type Option func(*Catalog)

// WithEligibility replaces the eligible civilisations of every kind.
func WithEligibility(fn func(buildings.Kind) []civ.Civilisation) Option {
	return func(c *Catalog) {
		for _, k := range buildings.All() {
			c.eligible[k] = append([]civ.Civilisation(nil), fn(k)...)
		}
	}
}

func New(src DefinitionSource, opts ...Option) *Catalog {
	c := &Catalog{src: src}
	for _, k := range buildings.All() {
		c.eligible[k] = k.RequiredCivilisations()
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Eligible returns the civilisations that may construct kind.
func (c *Catalog) Eligible(kind buildings.Kind) []civ.Civilisation {
	if !kind.Valid() {
		return nil
	}
	return append([]civ.Civilisation(nil), c.eligible[kind]...)
}

func (c *Catalog) isEligible(kind buildings.Kind, cv civ.Civilisation) bool {
	if !kind.Valid() || !cv.Valid() {
		return false
	}
	for _, e := range c.eligible[kind] {
		if e == cv {
			return true
		}
	}
	return false
}

// Resolve returns the record for (kind, cv). The definition source is not
// consulted for ineligible pairs. A failed load is remembered and reported to
// every later caller.
func (c *Catalog) Resolve(kind buildings.Kind, cv civ.Civilisation) (*BuildingInfo, error) {
	if !c.isEligible(kind, cv) {
		return nil, fmt.Errorf("%w: %s/%s", ErrUnsupportedCombination, kind, cv)
	}
	s := &c.slots[kind][cv]
	s.once.Do(func() {
		c.loads.Add(1)
		def, err := c.src.LoadDefinition(kind, cv)
		if err != nil {
			s.err = fmt.Errorf("load %s/%s: %w", kind, cv, err)
			return
		}
		s.info = newBuildingInfo(kind, cv, def)
	})
	return s.info, s.err
}

// Preload resolves every eligible pair and returns the first failure.
func (c *Catalog) Preload() error {
	for _, k := range buildings.All() {
		for _, cv := range c.eligible[k] {
			if _, err := c.Resolve(k, cv); err != nil {
				return err
			}
		}
	}
	return nil
}

// Loads reports how many times the definition source has been queried.
func (c *Catalog) Loads() int64 { return c.loads.Load() }

// Digest identifies the definition data when the source can name it.
func (c *Catalog) Digest() string {
	if d, ok := c.src.(interface{ Digest() string }); ok {
		return d.Digest()
	}
	return ""
}

func (c *Catalog) first(kind buildings.Kind) (*BuildingInfo, error) {
	if !kind.Valid() || len(c.eligible[kind]) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoEligibleCivilisation, kind)
	}
	return c.Resolve(kind, c.eligible[kind][0])
}

func (c *Catalog) ConstructionMaterialCount(kind buildings.Kind, cv civ.Civilisation) (int, error) {
	info, err := c.Resolve(kind, cv)
	if err != nil {
		return 0, err
	}
	return info.ConstructionMaterials(), nil
}

// IsMine answers for the kind as a whole by looking at its first eligible
// civilisation.
func (c *Catalog) IsMine(kind buildings.Kind) (bool, error) {
	info, err := c.first(kind)
	if err != nil {
		return false, err
	}
	return info.Mine, nil
}

func (c *Catalog) NeedsFlattenedGround(kind buildings.Kind, cv civ.Civilisation) (bool, error) {
	info, err := c.Resolve(kind, cv)
	if err != nil {
		return false, err
	}
	return info.NeedsFlattenedGround(), nil
}

func (c *Catalog) RequiredGroundTypesAt(kind buildings.Kind, cv civ.Civilisation, dx, dy int) (landscape.Set, error) {
	info, err := c.Resolve(kind, cv)
	if err != nil {
		return 0, err
	}
	return info.RequiredGroundTypesAt(dx, dy), nil
}

// RequestStacks returns the request stacks of the first eligible
// civilisation, for callers that do not care about civilisation.
func (c *Catalog) RequestStacks(kind buildings.Kind) ([]RelativeStack, error) {
	info, err := c.first(kind)
	if err != nil {
		return nil, err
	}
	return info.RequestStacks, nil
}

// BuildingArea is the set of tiles no other building may use.
func (c *Catalog) BuildingArea(kind buildings.Kind, cv civ.Civilisation) ([]geom.RelativePoint, error) {
	info, err := c.Resolve(kind, cv)
	if err != nil {
		return nil, err
	}
	return info.Protected, nil
}

// FindJob looks a job up by name in the worker graph of (kind, cv).
func (c *Catalog) FindJob(kind buildings.Kind, cv civ.Civilisation, name string) (jobs.Job, error) {
	info, err := c.Resolve(kind, cv)
	if err != nil {
		return nil, err
	}
	j, err := jobs.FindByName(info.StartJob, name)
	if err != nil {
		return nil, fmt.Errorf("%s/%s: %w", kind, cv, err)
	}
	return j, nil
}

func (c *Catalog) LandscapeConstraint(kind buildings.Kind, cv civ.Civilisation) (LandscapeConstraint, error) {
	info, err := c.Resolve(kind, cv)
	if err != nil {
		return LandscapeConstraint{}, err
	}
	return LandscapeConstraint{
		Allowed:              info.GroundTypes,
		NeedsFlattenedGround: info.NeedsFlattenedGround(),
	}, nil
}
