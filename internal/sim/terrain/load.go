package terrain

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Da-Krause/settlers-remake/internal/sim/buildings"
	"github.com/Da-Krause/settlers-remake/internal/sim/geom"
	"github.com/Da-Krause/settlers-remake/internal/sim/landscape"
)

type pointYAML [2]int

func (p pointYAML) point() geom.Point { return geom.Point{X: p[0], Y: p[1]} }

type areaYAML struct {
	Type string    `yaml:"type"`
	From pointYAML `yaml:"from"`
	To   pointYAML `yaml:"to"`
}

type depositYAML struct {
	At     pointYAML `yaml:"at"`
	Type   string    `yaml:"type"`
	Amount int       `yaml:"amount"`
}

type buildingYAML struct {
	Kind string    `yaml:"kind"`
	At   pointYAML `yaml:"at"`
}

// mapYAML is the on-disk map. Landscape comes either from an RLE string
// covering every tile or from a fill type plus rectangles painted in order.
type mapYAML struct {
	Width        int            `yaml:"width"`
	Height       int            `yaml:"height"`
	Fill         string         `yaml:"fill,omitempty"`
	LandscapeRLE string         `yaml:"landscape_rle,omitempty"`
	Areas        []areaYAML     `yaml:"areas,omitempty"`
	Trees        []pointYAML    `yaml:"trees,omitempty"`
	Stones       []pointYAML    `yaml:"stones,omitempty"`
	Occupied     []pointYAML    `yaml:"occupied,omitempty"`
	Resources    []depositYAML  `yaml:"resources,omitempty"`
	Buildings    []buildingYAML `yaml:"buildings,omitempty"`
	Border       []pointYAML    `yaml:"border,omitempty"`
	Diggers      []pointYAML    `yaml:"diggers,omitempty"`
}

func Load(path string) (*Grid, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	g, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

func Parse(raw []byte) (*Grid, error) {
	var m mapYAML
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	if m.Width <= 0 || m.Height <= 0 {
		return nil, fmt.Errorf("bad map size %dx%d", m.Width, m.Height)
	}

	fill := landscape.Grass
	if m.Fill != "" {
		t, ok := landscape.ParseType(m.Fill)
		if !ok {
			return nil, fmt.Errorf("unknown fill %q", m.Fill)
		}
		fill = t
	}
	g := NewGrid(m.Width, m.Height, fill)

	if m.LandscapeRLE != "" {
		tiles, err := DecodeLandscape(m.LandscapeRLE, m.Width*m.Height)
		if err != nil {
			return nil, fmt.Errorf("landscape_rle: %w", err)
		}
		copy(g.land, tiles)
	}
	for _, a := range m.Areas {
		t, ok := landscape.ParseType(a.Type)
		if !ok {
			return nil, fmt.Errorf("unknown landscape %q", a.Type)
		}
		for y := min(a.From[1], a.To[1]); y <= max(a.From[1], a.To[1]); y++ {
			for x := min(a.From[0], a.To[0]); x <= max(a.From[0], a.To[0]); x++ {
				g.SetLandscape(geom.Point{X: x, Y: y}, t)
			}
		}
	}

	for _, p := range m.Trees {
		g.SetTree(p.point(), true)
	}
	for _, p := range m.Stones {
		g.SetStone(p.point(), true)
	}
	for _, p := range m.Occupied {
		g.SetOccupied(p.point(), true)
	}
	for _, d := range m.Resources {
		r, ok := landscape.ParseResource(d.Type)
		if !ok {
			return nil, fmt.Errorf("unknown resource %q", d.Type)
		}
		g.SetResource(d.At.point(), r, d.Amount)
	}
	for _, b := range m.Buildings {
		k, ok := buildings.ParseKind(b.Kind)
		if !ok {
			return nil, fmt.Errorf("unknown building %q", b.Kind)
		}
		g.AddBuilding(k, b.At.point())
	}
	for _, p := range m.Border {
		g.AddBorder(p.point())
	}
	for _, p := range m.Diggers {
		g.AddDigger(p.point())
	}
	return g, nil
}

// Save writes g in the form Load reads, with the landscape as RLE.
func (g *Grid) Save(path string) error {
	m := mapYAML{
		Width:        g.width,
		Height:       g.height,
		LandscapeRLE: EncodeLandscape(g.land),
	}
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			p := geom.Point{X: x, Y: y}
			i := g.idx(p)
			tree, stone := g.trees.Get(i), g.stones.Get(i)
			if tree {
				m.Trees = append(m.Trees, pointYAML{x, y})
			}
			if stone {
				m.Stones = append(m.Stones, pointYAML{x, y})
			}
			// Trees and stones occupy their tile on load.
			if g.occupied.Get(i) && !tree && !stone {
				m.Occupied = append(m.Occupied, pointYAML{x, y})
			}
			if d := g.deposits[i]; d.res != landscape.NoResource {
				m.Resources = append(m.Resources, depositYAML{At: pointYAML{x, y}, Type: d.res.String(), Amount: d.amount})
			}
		}
	}
	for _, k := range buildings.All() {
		for _, at := range g.buildings[k] {
			m.Buildings = append(m.Buildings, buildingYAML{Kind: k.String(), At: pointYAML{at.X, at.Y}})
		}
	}
	for _, p := range g.border {
		m.Border = append(m.Border, pointYAML{p.X, p.Y})
	}
	for _, p := range g.diggers {
		m.Diggers = append(m.Diggers, pointYAML{p.X, p.Y})
	}
	raw, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}
