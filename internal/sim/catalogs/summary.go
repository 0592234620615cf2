package catalogs

import (
	"github.com/Da-Krause/settlers-remake/internal/sim/buildings"
	"github.com/Da-Krause/settlers-remake/internal/sim/civ"
	"github.com/Da-Krause/settlers-remake/internal/sim/geom"
	"github.com/Da-Krause/settlers-remake/internal/sim/jobs"
	"github.com/Da-Krause/settlers-remake/internal/sim/landscape"
	"github.com/Da-Krause/settlers-remake/internal/sim/movable"
)

// Summary is the JSON view of a BuildingInfo served to tools and clients.
type Summary struct {
	Kind         buildings.Kind     `json:"kind"`
	Civilisation civ.Civilisation   `json:"civilisation"`
	Category     buildings.Category `json:"category"`
	Military     bool               `json:"military,omitempty"`
	Mine         bool               `json:"mine,omitempty"`

	Door      geom.RelativePoint   `json:"door"`
	Flag      geom.RelativePoint   `json:"flag"`
	Blocked   []geom.RelativePoint `json:"blocked"`
	Protected []geom.RelativePoint `json:"protected"`

	ConstructionStacks    []ConstructionStack `json:"construction_stacks"`
	RequestStacks         []RelativeStack     `json:"request_stacks,omitempty"`
	OfferStacks           []RelativeStack     `json:"offer_stacks,omitempty"`
	ConstructionMaterials int                 `json:"construction_materials"`

	Worker               movable.Type       `json:"worker"`
	WorkRadius           int                `json:"work_radius"`
	WorkCenter           geom.RelativePoint `json:"work_center"`
	Jobs                 []string           `json:"jobs,omitempty"`
	GroundTypes          landscape.Set      `json:"ground_types"`
	NeedsFlattenedGround bool               `json:"needs_flattened_ground"`
	FootprintCells       int                `json:"footprint_cells"`

	ViewDistance   int             `json:"view_distance"`
	OccupierPlaces []OccupierPlace `json:"occupier_places,omitempty"`
	GUIImage       ImageLink       `json:"gui_image,omitempty"`
}

func (b *BuildingInfo) Summary() Summary {
	s := Summary{
		Kind:                  b.Kind,
		Civilisation:          b.Civilisation,
		Category:              b.Kind.Category(),
		Military:              b.Kind.IsMilitary(),
		Mine:                  b.Mine,
		Door:                  b.Door,
		Flag:                  b.Flag,
		Blocked:               b.Blocked,
		Protected:             b.Protected,
		ConstructionStacks:    b.ConstructionStacks,
		RequestStacks:         b.RequestStacks,
		OfferStacks:           b.OfferStacks,
		ConstructionMaterials: b.constructionMaterials,
		Worker:                b.Worker,
		WorkRadius:            b.WorkRadius,
		WorkCenter:            b.WorkCenter,
		GroundTypes:           b.GroundTypes,
		NeedsFlattenedGround:  b.NeedsFlattenedGround(),
		FootprintCells:        b.footprint.Len(),
		ViewDistance:          b.ViewDistance,
		OccupierPlaces:        b.OccupierPlaces,
		GUIImage:              b.GUIImage,
	}
	for _, j := range jobs.Reachable(b.StartJob) {
		s.Jobs = append(s.Jobs, j.Name())
	}
	return s
}
