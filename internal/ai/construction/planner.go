package construction

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/Da-Krause/settlers-remake/internal/sim/buildings"
	"github.com/Da-Krause/settlers-remake/internal/sim/civ"
	"github.com/Da-Krause/settlers-remake/internal/sim/geom"
)

var ErrNoPlacement = errors.New("no acceptable construction site")

// Placement is the outcome of one planning run.
type Placement struct {
	Kind         buildings.Kind   `json:"kind"`
	Civilisation civ.Civilisation `json:"civilisation"`
	Strategy     string           `json:"strategy"`
	At           geom.Point       `json:"at"`
	Score        int              `json:"score"`

	Candidates int            `json:"candidates"`
	Accepted   int            `json:"accepted"`
	Rejections map[Reason]int `json:"rejections,omitempty"`

	// Area is the search area the candidates came from; nil means the whole map.
	Area *SearchArea `json:"area,omitempty"`
}

// SearchArea is a disc of candidate tiles around Center.
type SearchArea struct {
	Center geom.Point `json:"center"`
	Radius int        `json:"radius"`
}

// Candidates lists the tiles of a on m. A nil area covers every tile.
func (a *SearchArea) Candidates(m Map) []geom.Point {
	if a == nil {
		return AllTiles(m)
	}
	return Around(m, a.Center, a.Radius)
}

// DecisionSink receives every successful placement.
type DecisionSink interface {
	RecordPlacement(p Placement)
}

type Planner struct {
	// Workers evaluating candidates. Zero means GOMAXPROCS.
	Workers int
	Sink    DecisionSink
	// Area is copied into every placement so a run can be repeated.
	Area *SearchArea
}

// FindBest evaluates candidates with the given number of workers and
// returns the accepted candidate with the lowest score.
func FindBest(ctx context.Context, s Strategy, m Map, candidates []geom.Point, workers int) (Placement, error) {
	return Planner{Workers: workers}.FindBest(ctx, s, m, candidates)
}

// FindBest evaluates every candidate concurrently. Ties go to the candidate
// listed first, so the result does not depend on scheduling.
func (p Planner) FindBest(ctx context.Context, s Strategy, m Map, candidates []geom.Point) (Placement, error) {
	kind, cv := s.Target()
	out := Placement{
		Kind:         kind,
		Civilisation: cv,
		Strategy:     s.Name(),
		Candidates:   len(candidates),
		Area:         p.Area,
	}
	if err := ctx.Err(); err != nil {
		return out, err
	}
	if len(candidates) == 0 {
		return out, ErrNoPlacement
	}

	workers := p.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(candidates) {
		workers = len(candidates)
	}

	evals := make([]Evaluation, len(candidates))
	idx := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idx {
				evals[i] = s.Evaluate(m, candidates[i])
			}
		}()
	}
feed:
	for i := range candidates {
		select {
		case idx <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(idx)
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return out, err
	}

	best := -1
	for i, ev := range evals {
		if !ev.Accepted {
			if out.Rejections == nil {
				out.Rejections = map[Reason]int{}
			}
			out.Rejections[ev.Reason]++
			continue
		}
		out.Accepted++
		if best < 0 || ev.Score < evals[best].Score {
			best = i
		}
	}
	if best < 0 {
		return out, ErrNoPlacement
	}
	out.At = candidates[best]
	out.Score = evals[best].Score
	if p.Sink != nil {
		p.Sink.RecordPlacement(out)
	}
	return out, nil
}

// Around lists the in-bounds tiles within radius of center, row by row.
func Around(m Map, center geom.Point, radius int) []geom.Point {
	var out []geom.Point
	scan(m, center, radius, func(p geom.Point) { out = append(out, p) })
	return out
}

// AllTiles lists every tile of m row by row.
func AllTiles(m Map) []geom.Point {
	out := make([]geom.Point, 0, m.Width()*m.Height())
	for y := 0; y < m.Height(); y++ {
		for x := 0; x < m.Width(); x++ {
			out = append(out, geom.Point{X: x, Y: y})
		}
	}
	return out
}
