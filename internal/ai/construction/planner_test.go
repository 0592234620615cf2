package construction

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Da-Krause/settlers-remake/internal/sim/buildings"
	"github.com/Da-Krause/settlers-remake/internal/sim/civ"
	"github.com/Da-Krause/settlers-remake/internal/sim/geom"
	"github.com/Da-Krause/settlers-remake/internal/sim/landscape"
	"github.com/Da-Krause/settlers-remake/internal/sim/terrain"
)

type scripted map[geom.Point]Evaluation

func (s scripted) Name() string { return "scripted" }

func (s scripted) Target() (buildings.Kind, civ.Civilisation) {
	return buildings.Stock, civ.Egyptians
}

func (s scripted) Evaluate(_ Map, at geom.Point) Evaluation {
	if ev, ok := s[at]; ok {
		return ev
	}
	return Reject(ReasonOccupied)
}

type recordingSink struct {
	mu  sync.Mutex
	got []Placement
}

func (r *recordingSink) RecordPlacement(p Placement) {
	r.mu.Lock()
	r.got = append(r.got, p)
	r.mu.Unlock()
}

func TestFindBest_LowestScoreLowestIndex(t *testing.T) {
	m := terrain.NewGrid(8, 8, landscape.Grass)
	s := scripted{
		pt(0, 0): Accept(3),
		pt(1, 0): Accept(1),
		pt(2, 0): Accept(1),
		pt(3, 0): Reject(ReasonGround),
	}
	candidates := []geom.Point{pt(0, 0), pt(1, 0), pt(2, 0), pt(3, 0), pt(4, 0)}
	for _, workers := range []int{0, 1, 2, 16} {
		got, err := FindBest(context.Background(), s, m, candidates, workers)
		if err != nil {
			t.Fatalf("workers=%d: %v", workers, err)
		}
		if got.At != pt(1, 0) || got.Score != 1 {
			t.Fatalf("workers=%d: expected (1,0) score 1, got %v score %d", workers, got.At, got.Score)
		}
		if got.Candidates != 5 || got.Accepted != 3 {
			t.Fatalf("workers=%d: unexpected counts %+v", workers, got)
		}
		if got.Rejections[ReasonGround] != 1 || got.Rejections[ReasonOccupied] != 1 {
			t.Fatalf("workers=%d: unexpected rejections %v", workers, got.Rejections)
		}
		if got.Kind != buildings.Stock || got.Civilisation != civ.Egyptians || got.Strategy != "scripted" {
			t.Fatalf("workers=%d: unexpected target %+v", workers, got)
		}
	}
}

func TestFindBest_NoPlacement(t *testing.T) {
	m := terrain.NewGrid(4, 4, landscape.Grass)
	_, err := FindBest(context.Background(), scripted{}, m, []geom.Point{pt(0, 0), pt(1, 1)}, 2)
	if !errors.Is(err, ErrNoPlacement) {
		t.Fatalf("expected ErrNoPlacement, got %v", err)
	}
	_, err = FindBest(context.Background(), scripted{}, m, nil, 2)
	if !errors.Is(err, ErrNoPlacement) {
		t.Fatalf("expected ErrNoPlacement for no candidates, got %v", err)
	}
}

func TestFindBest_Cancelled(t *testing.T) {
	m := terrain.NewGrid(4, 4, landscape.Grass)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := FindBest(ctx, scripted{pt(0, 0): Accept(0)}, m, AllTiles(m), 4)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestPlanner_Sink(t *testing.T) {
	m := terrain.NewGrid(4, 4, landscape.Grass)
	sink := &recordingSink{}
	p := Planner{Workers: 3, Sink: sink}

	if _, err := p.FindBest(context.Background(), scripted{}, m, AllTiles(m)); !errors.Is(err, ErrNoPlacement) {
		t.Fatalf("expected ErrNoPlacement, got %v", err)
	}
	got, err := p.FindBest(context.Background(), scripted{pt(2, 3): Accept(-4)}, m, AllTiles(m))
	if err != nil {
		t.Fatalf("FindBest: %v", err)
	}
	if len(sink.got) != 1 || sink.got[0].At != got.At || got.At != pt(2, 3) {
		t.Fatalf("expected exactly the successful placement to be recorded, got %+v", sink.got)
	}
}

func TestFindBest_RealStrategy(t *testing.T) {
	g := terrain.NewGrid(30, 30, landscape.Grass)
	for x := 15; x <= 19; x++ {
		g.SetTree(pt(x, 15), true)
	}
	s := strategy(t, buildings.Lumberjack, civ.Romans)
	got, err := FindBest(context.Background(), s, g, AllTiles(g), 4)
	if err != nil {
		t.Fatalf("FindBest: %v", err)
	}
	ev := s.Evaluate(g, got.At)
	if !ev.Accepted || ev.Score != -5 || got.Score != -5 {
		t.Fatalf("expected a site reaching all five trees, got %+v (%+v)", got, ev)
	}
	again, _ := FindBest(context.Background(), s, g, AllTiles(g), 1)
	if again.At != got.At {
		t.Fatalf("result depends on worker count: %v vs %v", got.At, again.At)
	}
}

func TestAround(t *testing.T) {
	m := terrain.NewGrid(10, 10, landscape.Grass)
	pts := Around(m, pt(0, 0), 1)
	// (0,0), (1,0), (0,1), (1,1); (-1,*) and (*,-1) are off the map.
	if len(pts) != 4 {
		t.Fatalf("expected 4 tiles, got %v", pts)
	}
	if len(AllTiles(m)) != 100 {
		t.Fatalf("expected 100 tiles")
	}
}
