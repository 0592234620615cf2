package terrain

import (
	"path/filepath"
	"testing"

	"github.com/Da-Krause/settlers-remake/internal/sim/buildings"
	"github.com/Da-Krause/settlers-remake/internal/sim/catalogs"
	"github.com/Da-Krause/settlers-remake/internal/sim/civ"
	"github.com/Da-Krause/settlers-remake/internal/sim/geom"
	"github.com/Da-Krause/settlers-remake/internal/sim/landscape"
)

const sampleMap = `
width: 12
height: 8
fill: GRASS
areas:
  - { type: MOUNTAIN, from: [8, 0], to: [11, 3] }
  - { type: WATER, from: [0, 6], to: [3, 7] }
trees: [[1, 1], [2, 1]]
stones: [[5, 5]]
resources:
  - { at: [9, 1], type: COAL, amount: 12 }
buildings:
  - { kind: LUMBERJACK, at: [3, 3] }
  - { kind: LUMBERJACK, at: [10, 6] }
border: [[11, 7]]
diggers: [[6, 4]]
`

func TestParse(t *testing.T) {
	g, err := Parse([]byte(sampleMap))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if g.Width() != 12 || g.Height() != 8 {
		t.Fatalf("unexpected size %dx%d", g.Width(), g.Height())
	}
	if got := g.Landscape(geom.Point{X: 9, Y: 2}); got != landscape.Mountain {
		t.Fatalf("expected mountain, got %s", got)
	}
	if got := g.Landscape(geom.Point{X: 1, Y: 7}); got != landscape.Water {
		t.Fatalf("expected water, got %s", got)
	}
	if got := g.Landscape(geom.Point{X: -1, Y: 0}); got != landscape.Water {
		t.Fatalf("expected out-of-bounds to read as water, got %s", got)
	}
	if !g.HasTree(geom.Point{X: 1, Y: 1}) || !g.Occupied(geom.Point{X: 1, Y: 1}) {
		t.Fatalf("expected an occupying tree at (1,1)")
	}
	if !g.HasStone(geom.Point{X: 5, Y: 5}) || g.HasTree(geom.Point{X: 5, Y: 5}) {
		t.Fatalf("expected only a stone at (5,5)")
	}
	if r, n := g.Resource(geom.Point{X: 9, Y: 1}); r != landscape.Coal || n != 12 {
		t.Fatalf("expected COAL x12, got %s x%d", r, n)
	}
	at, d, ok := g.NearestBuilding(buildings.Lumberjack, geom.Point{X: 9, Y: 6})
	if !ok || at != (geom.Point{X: 10, Y: 6}) || d != 1 {
		t.Fatalf("unexpected nearest lumberjack %v d=%d ok=%v", at, d, ok)
	}
	if _, _, ok := g.NearestBuilding(buildings.Farm, geom.Point{}); ok {
		t.Fatalf("expected no farm")
	}
	if len(g.Border()) != 1 || len(g.Diggers()) != 1 {
		t.Fatalf("unexpected border/diggers %v %v", g.Border(), g.Diggers())
	}
}

func TestParse_Rejects(t *testing.T) {
	cases := map[string]string{
		"size":     "width: 0\nheight: 3\n",
		"fill":     "width: 2\nheight: 2\nfill: LAVA\n",
		"resource": "width: 2\nheight: 2\nresources:\n  - { at: [0, 0], type: OIL, amount: 1 }\n",
		"building": "width: 2\nheight: 2\nbuildings:\n  - { kind: PYRAMID, at: [0, 0] }\n",
		"rle":      "width: 2\nheight: 2\nlandscape_rle: AAE=\n",
	}
	for name, raw := range cases {
		if _, err := Parse([]byte(raw)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestLandscapeRLE_RoundTrip(t *testing.T) {
	in := []landscape.Type{landscape.Grass, landscape.Grass, landscape.Water}
	for i := 0; i < 50; i++ {
		in = append(in, landscape.Mountain)
	}
	in = append(in, landscape.Road, landscape.Sand, landscape.Sand)

	out, err := DecodeLandscape(EncodeLandscape(in), len(in))
	if err != nil {
		t.Fatalf("DecodeLandscape: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("len mismatch: got %d want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("mismatch at %d: got %s want %s", i, out[i], in[i])
		}
	}
	if _, err := DecodeLandscape(EncodeLandscape(in), len(in)-1); err == nil {
		t.Fatalf("expected error when runs exceed the tile count")
	}
}

func TestSaveLoad(t *testing.T) {
	g, err := Parse([]byte(sampleMap))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	path := filepath.Join(t.TempDir(), "map.yaml")
	if err := g.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			p := geom.Point{X: x, Y: y}
			if g.Landscape(p) != back.Landscape(p) || g.Occupied(p) != back.Occupied(p) ||
				g.HasTree(p) != back.HasTree(p) || g.HasStone(p) != back.HasStone(p) {
				t.Fatalf("tile %v differs after reload", p)
			}
		}
	}
	if len(back.Buildings(buildings.Lumberjack)) != 2 {
		t.Fatalf("expected two lumberjacks, got %v", back.Buildings(buildings.Lumberjack))
	}
}

func TestBuild_OccupiesArea(t *testing.T) {
	src, err := catalogs.DefaultSource()
	if err != nil {
		t.Fatalf("DefaultSource: %v", err)
	}
	info, err := catalogs.New(src).Resolve(buildings.SmallLivinghouse, civ.Romans)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	g := NewGrid(10, 10, landscape.Grass)
	at := geom.Point{X: 4, Y: 4}
	g.Build(info, at)
	for _, r := range info.Area() {
		if !g.Occupied(r.Calculate(at)) {
			t.Fatalf("expected %v occupied", r.Calculate(at))
		}
	}
	if g.Occupied(geom.Point{X: 0, Y: 0}) {
		t.Fatalf("unexpected occupancy far away")
	}
	if got := g.Buildings(buildings.SmallLivinghouse); len(got) != 1 || got[0] != at {
		t.Fatalf("unexpected registry %v", got)
	}
}

func TestSave_KeepsTreeStoneAndRichDeposit(t *testing.T) {
	g := NewGrid(4, 4, landscape.Grass)
	both := geom.Point{X: 1, Y: 1}
	g.SetTree(both, true)
	g.SetStone(both, true)
	g.SetOccupied(geom.Point{X: 2, Y: 2}, true)
	g.SetResource(geom.Point{X: 3, Y: 3}, landscape.Coal, 1000)

	path := filepath.Join(t.TempDir(), "map.yaml")
	if err := g.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !back.HasTree(both) || !back.HasStone(both) {
		t.Fatalf("expected tree and stone at %v, got tree=%v stone=%v", both, back.HasTree(both), back.HasStone(both))
	}
	if !back.Occupied(geom.Point{X: 2, Y: 2}) {
		t.Fatalf("expected plain occupancy to survive")
	}
	if r, n := back.Resource(geom.Point{X: 3, Y: 3}); r != landscape.Coal || n != 1000 {
		t.Fatalf("expected 1000 coal, got %d %v", n, r)
	}
}
