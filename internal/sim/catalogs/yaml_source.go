package catalogs

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Da-Krause/settlers-remake/internal/sim/buildings"
	"github.com/Da-Krause/settlers-remake/internal/sim/civ"
	"github.com/Da-Krause/settlers-remake/internal/sim/geom"
	"github.com/Da-Krause/settlers-remake/internal/sim/jobs"
	"github.com/Da-Krause/settlers-remake/internal/sim/landscape"
	"github.com/Da-Krause/settlers-remake/internal/sim/material"
	"github.com/Da-Krause/settlers-remake/internal/sim/movable"
)

//go:embed data/buildings.yaml
var defaultDefinitions []byte

type pointYAML []int

func (p pointYAML) rel() geom.RelativePoint { return geom.Rel(p[0], p[1]) }

func points(in []pointYAML) []geom.RelativePoint {
	out := make([]geom.RelativePoint, 0, len(in))
	for _, p := range in {
		out = append(out, p.rel())
	}
	return out
}

type shapeYAML struct {
	Door        pointYAML   `yaml:"door"`
	Flag        pointYAML   `yaml:"flag"`
	Blocked     []pointYAML `yaml:"blocked"`
	Protected   []pointYAML `yaml:"protected"`
	StackSlots  []pointYAML `yaml:"stack_slots"`
	BuildMarks  []pointYAML `yaml:"build_marks"`
	Bricklayers []struct {
		At        pointYAML `yaml:"at"`
		Direction string    `yaml:"direction"`
	} `yaml:"bricklayers"`
}

type jobGraphYAML struct {
	Start string `yaml:"start"`
	Jobs  []struct {
		Name    string `yaml:"name"`
		Success string `yaml:"success"`
		Failure string `yaml:"failure"`
	} `yaml:"jobs"`
}

type stackYAML struct {
	Material string    `yaml:"material"`
	Count    int       `yaml:"count"`
	At       pointYAML `yaml:"at"`
}

type occupierYAML struct {
	At      pointYAML `yaml:"at"`
	Kind    string    `yaml:"kind"`
	InTower bool      `yaml:"in_tower"`
}

// recordYAML is one building record. Civilisation overlays are decoded on
// top of a copy of the base record, so they only replace the keys they set.
type recordYAML struct {
	Shape        string         `yaml:"shape"`
	Door         pointYAML      `yaml:"door"`
	Mine         bool           `yaml:"mine"`
	Worker       string         `yaml:"worker"`
	JobGraph     string         `yaml:"job_graph"`
	WorkRadius   int            `yaml:"work_radius"`
	WorkCenter   pointYAML      `yaml:"work_center"`
	Ground       []string       `yaml:"ground"`
	Construction []stackYAML    `yaml:"construction"`
	Requests     []stackYAML    `yaml:"requests"`
	Offers       []stackYAML    `yaml:"offers"`
	ViewDistance int            `yaml:"view_distance"`
	GUIImage     string         `yaml:"gui_image"`
	Images       []string       `yaml:"images"`
	BuildImages  []string       `yaml:"build_images"`
	Occupiers    []occupierYAML `yaml:"occupiers"`
}

type buildingYAML struct {
	recordYAML    `yaml:",inline"`
	Civilisations map[string]yaml.Node `yaml:"civilisations"`
}

type documentYAML struct {
	Version   int                     `yaml:"version"`
	Defaults  yaml.Node               `yaml:"defaults"`
	Shapes    map[string]shapeYAML    `yaml:"shapes"`
	JobGraphs map[string]jobGraphYAML `yaml:"job_graphs"`
	Buildings map[string]yaml.Node    `yaml:"buildings"`
}

// YAMLSource serves definitions from a buildings.yaml document: shapes, job
// graph templates, one base record per kind and per-civilisation overlays.
type YAMLSource struct {
	digest    string
	shapes    map[string]shapeYAML
	jobGraphs map[string]jobGraphYAML
	records   map[buildings.Kind]map[civ.Civilisation]recordYAML
}

// DefaultSource returns the definitions compiled into the binary.
func DefaultSource() (*YAMLSource, error) {
	return NewYAMLSource(defaultDefinitions)
}

func LoadYAMLFile(path string) (*YAMLSource, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewYAMLSource(raw)
}

// Load builds a catalog from path, or from the compiled-in definitions when
// path is empty.
func Load(path string) (*Catalog, error) {
	var (
		src *YAMLSource
		err error
	)
	if strings.TrimSpace(path) == "" {
		src, err = DefaultSource()
	} else {
		src, err = LoadYAMLFile(path)
	}
	if err != nil {
		return nil, err
	}
	return New(src), nil
}

func NewYAMLSource(raw []byte) (*YAMLSource, error) {
	if err := validateDocument(raw); err != nil {
		return nil, fmt.Errorf("buildings.yaml: %w", err)
	}
	var doc documentYAML
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("buildings.yaml: %w", err)
	}
	sum := sha256.Sum256(raw)
	s := &YAMLSource{
		digest:    hex.EncodeToString(sum[:]),
		shapes:    doc.Shapes,
		jobGraphs: doc.JobGraphs,
		records:   map[buildings.Kind]map[civ.Civilisation]recordYAML{},
	}

	var defaults recordYAML
	if !doc.Defaults.IsZero() {
		if err := doc.Defaults.Decode(&defaults); err != nil {
			return nil, fmt.Errorf("buildings.yaml: defaults: %w", err)
		}
	}

	names := make([]string, 0, len(doc.Buildings))
	for name := range doc.Buildings {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		kind, ok := buildings.ParseKind(name)
		if !ok {
			return nil, fmt.Errorf("buildings.yaml: unknown building %q", name)
		}
		node := doc.Buildings[name]
		b := buildingYAML{recordYAML: defaults}
		if err := node.Decode(&b); err != nil {
			return nil, fmt.Errorf("buildings.yaml: %s: %w", name, err)
		}
		perCiv := map[civ.Civilisation]recordYAML{}
		for _, cv := range civ.All() {
			perCiv[cv] = b.recordYAML
		}
		for civName, overlay := range b.Civilisations {
			cv, ok := civ.Parse(civName)
			if !ok {
				return nil, fmt.Errorf("buildings.yaml: %s: unknown civilisation %q", name, civName)
			}
			rec := b.recordYAML
			if err := overlay.Decode(&rec); err != nil {
				return nil, fmt.Errorf("buildings.yaml: %s/%s: %w", name, civName, err)
			}
			perCiv[cv] = rec
		}
		for cv, rec := range perCiv {
			if err := s.check(rec); err != nil {
				return nil, fmt.Errorf("buildings.yaml: %s/%s: %w", name, cv, err)
			}
		}
		s.records[kind] = perCiv
	}
	return s, nil
}

// check rejects dangling references up front so LoadDefinition only fails
// for pairs the document does not describe.
func (s *YAMLSource) check(rec recordYAML) error {
	if _, ok := s.shapes[rec.Shape]; !ok {
		return fmt.Errorf("unknown shape %q", rec.Shape)
	}
	if rec.JobGraph != "" {
		if _, err := s.buildJobGraph(rec.JobGraph); err != nil {
			return err
		}
	}
	_, err := s.decode(rec)
	return err
}

func (s *YAMLSource) Digest() string { return s.digest }

func (s *YAMLSource) LoadDefinition(kind buildings.Kind, cv civ.Civilisation) (Definition, error) {
	rec, ok := s.records[kind][cv]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %s/%s", ErrDefinitionNotFound, kind, cv)
	}
	return s.decode(rec)
}

func (s *YAMLSource) decode(rec recordYAML) (Definition, error) {
	shape, ok := s.shapes[rec.Shape]
	if !ok {
		return Definition{}, fmt.Errorf("unknown shape %q", rec.Shape)
	}

	def := Definition{
		Door:         shape.Door.rel(),
		Blocked:      points(shape.Blocked),
		Protected:    points(shape.Protected),
		BuildMarks:   points(shape.BuildMarks),
		Mine:         rec.Mine,
		WorkRadius:   rec.WorkRadius,
		ViewDistance: rec.ViewDistance,
		GUIImage:     ImageLink(rec.GUIImage),
	}
	if len(rec.Door) == 2 {
		def.Door = rec.Door.rel()
	}
	if len(shape.Flag) == 2 {
		def.Flag = shape.Flag.rel()
	}
	if len(rec.WorkCenter) == 2 {
		def.WorkCenter = rec.WorkCenter.rel()
	}
	for _, b := range shape.Bricklayers {
		def.Bricklayers = append(def.Bricklayers, Bricklayer{At: b.At.rel(), Direction: b.Direction})
	}
	for _, o := range rec.Occupiers {
		def.OccupierPlaces = append(def.OccupierPlaces, OccupierPlace{At: o.At.rel(), Kind: o.Kind, InTower: o.InTower})
	}
	for _, img := range rec.Images {
		def.Images = append(def.Images, ImageLink(img))
	}
	for _, img := range rec.BuildImages {
		def.BuildImages = append(def.BuildImages, ImageLink(img))
	}

	if rec.Worker != "" {
		w, ok := movable.Parse(rec.Worker)
		if !ok {
			return Definition{}, fmt.Errorf("unknown worker %q", rec.Worker)
		}
		def.Worker = w
	}
	for _, g := range rec.Ground {
		t, ok := landscape.ParseType(g)
		if !ok {
			return Definition{}, fmt.Errorf("unknown ground type %q", g)
		}
		def.GroundTypes |= landscape.Of(t)
	}

	slots := newSlotAllocator(points(shape.StackSlots), rec)
	for _, st := range rec.Construction {
		rs, err := slots.place(st)
		if err != nil {
			return Definition{}, fmt.Errorf("construction: %w", err)
		}
		count := st.Count
		if count == 0 {
			count = 1
		}
		def.ConstructionStacks = append(def.ConstructionStacks, ConstructionStack{RelativeStack: rs, Required: count})
	}
	for _, st := range rec.Requests {
		rs, err := slots.place(st)
		if err != nil {
			return Definition{}, fmt.Errorf("requests: %w", err)
		}
		def.RequestStacks = append(def.RequestStacks, rs)
	}
	for _, st := range rec.Offers {
		rs, err := slots.place(st)
		if err != nil {
			return Definition{}, fmt.Errorf("offers: %w", err)
		}
		def.OfferStacks = append(def.OfferStacks, rs)
	}

	if rec.JobGraph != "" {
		start, err := s.buildJobGraph(rec.JobGraph)
		if err != nil {
			return Definition{}, err
		}
		def.StartJob = start
	}
	return def, nil
}

// buildJobGraph assembles a fresh graph for the named template. Job names
// must be unique within a template.
func (s *YAMLSource) buildJobGraph(name string) (*jobs.Node, error) {
	g, ok := s.jobGraphs[name]
	if !ok {
		return nil, fmt.Errorf("unknown job graph %q", name)
	}
	nodes := make(map[string]*jobs.Node, len(g.Jobs))
	for _, j := range g.Jobs {
		if _, dup := nodes[j.Name]; dup {
			return nil, fmt.Errorf("job graph %s: duplicate job %q", name, j.Name)
		}
		nodes[j.Name] = jobs.NewNode(j.Name)
	}
	ref := func(to string) (*jobs.Node, error) {
		if to == "" {
			return nil, nil
		}
		n, ok := nodes[to]
		if !ok {
			return nil, fmt.Errorf("job graph %s: unknown job %q", name, to)
		}
		return n, nil
	}
	for _, j := range g.Jobs {
		success, err := ref(j.Success)
		if err != nil {
			return nil, err
		}
		failure, err := ref(j.Failure)
		if err != nil {
			return nil, err
		}
		nodes[j.Name].Link(success, failure)
	}
	start, ok := nodes[g.Start]
	if !ok {
		return nil, fmt.Errorf("job graph %s: unknown start job %q", name, g.Start)
	}
	return start, nil
}

// slotAllocator hands out shape stack slots in order, skipping slots taken
// by stacks with an explicit position.
type slotAllocator struct {
	free []geom.RelativePoint
}

func newSlotAllocator(slots []geom.RelativePoint, rec recordYAML) *slotAllocator {
	taken := map[geom.RelativePoint]bool{}
	for _, list := range [][]stackYAML{rec.Construction, rec.Requests, rec.Offers} {
		for _, st := range list {
			if len(st.At) == 2 {
				taken[st.At.rel()] = true
			}
		}
	}
	a := &slotAllocator{}
	for _, p := range slots {
		if !taken[p] {
			a.free = append(a.free, p)
		}
	}
	return a
}

func (a *slotAllocator) place(st stackYAML) (RelativeStack, error) {
	m, ok := material.Parse(st.Material)
	if !ok {
		return RelativeStack{}, fmt.Errorf("unknown material %q", st.Material)
	}
	if len(st.At) == 2 {
		return RelativeStack{At: st.At.rel(), Material: m}, nil
	}
	if len(a.free) == 0 {
		return RelativeStack{}, fmt.Errorf("no free stack slot for %s", m)
	}
	at := a.free[0]
	a.free = a.free[1:]
	return RelativeStack{At: at, Material: m}, nil
}
