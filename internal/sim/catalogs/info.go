package catalogs

import (
	"github.com/Da-Krause/settlers-remake/internal/sim/buildings"
	"github.com/Da-Krause/settlers-remake/internal/sim/civ"
	"github.com/Da-Krause/settlers-remake/internal/sim/geom"
	"github.com/Da-Krause/settlers-remake/internal/sim/landscape"
)

// BuildingInfo is the resolved record of one (kind, civilisation) pair. It is
// built once and never modified; callers must treat the slices as read-only.
type BuildingInfo struct {
	Kind         buildings.Kind
	Civilisation civ.Civilisation
	Definition

	blocked   geom.PointSet
	protected geom.PointSet
	footprint *geom.Footprint

	constructionMaterials int
}

func newBuildingInfo(kind buildings.Kind, c civ.Civilisation, def Definition) *BuildingInfo {
	def.Blocked = cloneSlice(def.Blocked)
	def.Protected = cloneSlice(def.Protected)
	def.ConstructionStacks = cloneSlice(def.ConstructionStacks)
	def.RequestStacks = cloneSlice(def.RequestStacks)
	def.OfferStacks = cloneSlice(def.OfferStacks)
	def.Bricklayers = cloneSlice(def.Bricklayers)
	def.BuildMarks = cloneSlice(def.BuildMarks)
	def.OccupierPlaces = cloneSlice(def.OccupierPlaces)
	def.Images = cloneSlice(def.Images)
	def.BuildImages = cloneSlice(def.BuildImages)

	info := &BuildingInfo{
		Kind:         kind,
		Civilisation: c,
		Definition:   def,
		blocked:      geom.NewPointSet(def.Blocked),
		protected:    geom.NewPointSet(def.Protected),
		footprint:    geom.NewFootprint(def.Protected),
	}
	if def.Mine {
		info.footprint = info.footprint.WithCenter()
	}
	for _, s := range def.ConstructionStacks {
		info.constructionMaterials += s.RequiredForBuild()
	}
	return info
}

// ConstructionMaterials is the total amount of material consumed while the
// building is constructed.
func (b *BuildingInfo) ConstructionMaterials() int { return b.constructionMaterials }

// Footprint is the protected area as a bit-mask. Mines additionally reserve
// their anchor cell.
func (b *BuildingInfo) Footprint() *geom.Footprint { return b.footprint }

func (b *BuildingInfo) IsMine() bool { return b.Mine }

func (b *BuildingInfo) IsBlocked(p geom.RelativePoint) bool   { return b.blocked.Contains(p) }
func (b *BuildingInfo) IsProtected(p geom.RelativePoint) bool { return b.protected.Contains(p) }

// NeedsFlattenedGround is false for mines, which stand on natural terrain.
func (b *BuildingInfo) NeedsFlattenedGround() bool { return !b.Mine }

// RequiredGroundTypesAt returns the terrain allowed under the offset
// (dx, dy). A mine's anchor cell must be mountain whatever its declared
// ground types are; every other cell follows the declared set.
func (b *BuildingInfo) RequiredGroundTypesAt(dx, dy int) landscape.Set {
	if dx == 0 && dy == 0 && b.Mine {
		return landscape.MountainTypes
	}
	return b.GroundTypes
}

// Area lists blocked and protected tiles, blocked first.
func (b *BuildingInfo) Area() []geom.RelativePoint {
	out := make([]geom.RelativePoint, 0, len(b.Blocked)+len(b.Protected))
	out = append(out, b.Blocked...)
	return append(out, b.Protected...)
}

// AllStacks lists construction, request and offer stacks in that order.
func (b *BuildingInfo) AllStacks() []RelativeStack {
	out := make([]RelativeStack, 0, len(b.ConstructionStacks)+len(b.RequestStacks)+len(b.OfferStacks))
	for _, s := range b.ConstructionStacks {
		out = append(out, s.RelativeStack)
	}
	out = append(out, b.RequestStacks...)
	return append(out, b.OfferStacks...)
}

// LandscapeConstraint is what the map editor enforces under a placed
// building.
type LandscapeConstraint struct {
	Allowed              landscape.Set
	NeedsFlattenedGround bool
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	return append([]T(nil), in...)
}
