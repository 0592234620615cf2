package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Da-Krause/settlers-remake/internal/ai/construction"
	persistlog "github.com/Da-Krause/settlers-remake/internal/persistence/log"
	"github.com/Da-Krause/settlers-remake/internal/sim/catalogs"
	"github.com/Da-Krause/settlers-remake/internal/sim/terrain"
	"github.com/Da-Krause/settlers-remake/internal/sim/tuning"
)

// replay re-evaluates logged placement decisions against the map they were
// made on and fails on the first decision the current catalog and tuning
// would not reproduce.
func main() {
	var (
		mapPath     = flag.String("map", "", "map yaml the decisions were made on")
		dataDir     = flag.String("data", "./data", "runtime data directory holding decisions/")
		catalogPath = flag.String("catalog", "", "path to buildings.yaml (default: compiled-in definitions)")
		tuningPath  = flag.String("tuning", "", "path to tuning.yaml (default: built-in defaults)")
		search      = flag.Bool("search", false, "also rerun the logged search area and compare the chosen site")
	)
	flag.Parse()

	if *mapPath == "" {
		fmt.Fprintln(os.Stderr, "missing -map")
		os.Exit(2)
	}

	grid, err := terrain.Load(*mapPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load map:", err)
		os.Exit(1)
	}
	tune, err := tuning.Load(*tuningPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load tuning:", err)
		os.Exit(1)
	}
	cat, err := catalogs.Load(*catalogPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load catalog:", err)
		os.Exit(1)
	}
	r := replayer{
		disp:    construction.NewDispatcher(cat, tune.Strategies),
		grid:    grid,
		search:  *search,
		workers: tune.Planner.Workers,
	}

	files, err := persistlog.Files(filepath.Join(*dataDir, "decisions"), "placements")
	if err != nil {
		fmt.Fprintln(os.Stderr, "list decisions:", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "no decision files found in", *dataDir)
		os.Exit(1)
	}

	for _, path := range files {
		if err := r.replayFile(path); err != nil {
			fmt.Fprintln(os.Stderr, "replay:", err)
			os.Exit(1)
		}
	}
	fmt.Printf("replay ok: checked=%d decisions\n", r.checked)
}

type replayer struct {
	disp    *construction.Dispatcher
	grid    *terrain.Grid
	search  bool
	workers int

	checked int
}

func (r *replayer) replayFile(path string) error {
	return persistlog.ReadLines(path, func(line []byte) error {
		var e persistlog.PlacementEntry
		if err := json.Unmarshal(line, &e); err != nil {
			return fmt.Errorf("%s: unmarshal: %w", filepath.Base(path), err)
		}
		if err := r.verify(e.Placement); err != nil {
			return fmt.Errorf("%s at %s: %w", filepath.Base(path), e.RecordedAt, err)
		}
		r.checked++
		return nil
	})
}

func (r *replayer) verify(p construction.Placement) error {
	s, err := r.disp.StrategyFor(p.Kind, p.Civilisation)
	if err != nil {
		return err
	}
	if s.Name() != p.Strategy {
		return fmt.Errorf("%s/%s: strategy changed: got=%s want=%s", p.Kind, p.Civilisation, s.Name(), p.Strategy)
	}
	ev := s.Evaluate(r.grid, p.At)
	if !ev.Accepted {
		return fmt.Errorf("%s/%s: site %s now rejected (%s)", p.Kind, p.Civilisation, p.At, ev.Reason)
	}
	if ev.Score != p.Score {
		return fmt.Errorf("%s/%s: score mismatch at %s: got=%d want=%d", p.Kind, p.Civilisation, p.At, ev.Score, p.Score)
	}
	if !r.search {
		return nil
	}
	best, err := construction.FindBest(context.Background(), s, r.grid, p.Area.Candidates(r.grid), r.workers)
	if err != nil {
		return err
	}
	if best.At != p.At {
		return fmt.Errorf("%s/%s: search picks %s, log has %s", p.Kind, p.Civilisation, best.At, p.At)
	}
	return nil
}
