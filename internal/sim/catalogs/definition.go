package catalogs

import (
	"errors"
	"fmt"

	"github.com/Da-Krause/settlers-remake/internal/sim/buildings"
	"github.com/Da-Krause/settlers-remake/internal/sim/civ"
	"github.com/Da-Krause/settlers-remake/internal/sim/geom"
	"github.com/Da-Krause/settlers-remake/internal/sim/jobs"
	"github.com/Da-Krause/settlers-remake/internal/sim/landscape"
	"github.com/Da-Krause/settlers-remake/internal/sim/material"
	"github.com/Da-Krause/settlers-remake/internal/sim/movable"
)

var ErrDefinitionNotFound = errors.New("building definition not found")

// DefinitionSource supplies decoded building records. A catalog calls
// LoadDefinition at most once per eligible (kind, civilisation) pair.
type DefinitionSource interface {
	LoadDefinition(kind buildings.Kind, c civ.Civilisation) (Definition, error)
}

// ImageLink is an opaque image handle passed through to renderers.
type ImageLink string

type RelativeStack struct {
	At       geom.RelativePoint `json:"at"`
	Material material.Material  `json:"material"`
}

type ConstructionStack struct {
	RelativeStack
	Required int `json:"required"`
}

// RequiredForBuild is the amount of the material consumed by construction.
func (s ConstructionStack) RequiredForBuild() int { return s.Required }

type Bricklayer struct {
	At        geom.RelativePoint `json:"at"`
	Direction string             `json:"direction"`
}

type OccupierPlace struct {
	At      geom.RelativePoint `json:"at"`
	Kind    string             `json:"kind"` // "INFANTRY","BOWMAN"
	InTower bool               `json:"in_tower,omitempty"`
}

// Definition is one fully decoded building record. The job graph is owned by
// the source; catalogs only keep the reference.
type Definition struct {
	Door      geom.RelativePoint
	Blocked   []geom.RelativePoint
	Protected []geom.RelativePoint

	ConstructionStacks []ConstructionStack
	RequestStacks      []RelativeStack
	OfferStacks        []RelativeStack

	StartJob   jobs.Job
	Worker     movable.Type
	WorkRadius int
	WorkCenter geom.RelativePoint

	Mine        bool
	GroundTypes landscape.Set

	Flag           geom.RelativePoint
	Bricklayers    []Bricklayer
	BuildMarks     []geom.RelativePoint
	OccupierPlaces []OccupierPlace
	ViewDistance   int

	GUIImage    ImageLink
	Images      []ImageLink
	BuildImages []ImageLink
}

// MapSource serves definitions from memory.
type MapSource map[buildings.Kind]map[civ.Civilisation]Definition

func (m MapSource) LoadDefinition(kind buildings.Kind, c civ.Civilisation) (Definition, error) {
	if d, ok := m[kind][c]; ok {
		return d, nil
	}
	return Definition{}, fmt.Errorf("%w: %s/%s", ErrDefinitionNotFound, kind, c)
}
