package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Da-Krause/settlers-remake/internal/ai/construction"
	"github.com/Da-Krause/settlers-remake/internal/persistence/indexdb"
	persistlog "github.com/Da-Krause/settlers-remake/internal/persistence/log"
	"github.com/Da-Krause/settlers-remake/internal/render/preview"
	"github.com/Da-Krause/settlers-remake/internal/sim/buildings"
	"github.com/Da-Krause/settlers-remake/internal/sim/catalogs"
	"github.com/Da-Krause/settlers-remake/internal/sim/civ"
	"github.com/Da-Krause/settlers-remake/internal/sim/geom"
	"github.com/Da-Krause/settlers-remake/internal/sim/terrain"
	"github.com/Da-Krause/settlers-remake/internal/sim/tuning"
	"github.com/Da-Krause/settlers-remake/internal/sim/validation"
)

var errViolations = errors.New("catalog has violations")

func parsePair(kind, cv string) (buildings.Kind, civ.Civilisation, error) {
	k, ok := buildings.ParseKind(kind)
	if !ok {
		return 0, 0, fmt.Errorf("unknown building kind %q", kind)
	}
	c, ok := civ.Parse(cv)
	if !ok {
		return 0, 0, fmt.Errorf("unknown civilisation %q", cv)
	}
	return k, c, nil
}

func runValidate(w io.Writer, catalogPath string, asJSON bool) error {
	cat, err := catalogs.Load(catalogPath)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	rep, err := validation.Check(cat)
	if err != nil {
		return err
	}
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			return err
		}
	} else {
		printValidationReport(w, cat.Digest(), rep)
	}
	if !rep.OK() {
		return fmt.Errorf("%w: %d", errViolations, len(rep.Violations))
	}
	return nil
}

func runDump(w io.Writer, catalogPath, kind, cv string) error {
	cat, err := catalogs.Load(catalogPath)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	var kinds []buildings.Kind
	if kind == "" {
		kinds = buildings.All()
	} else {
		k, ok := buildings.ParseKind(kind)
		if !ok {
			return fmt.Errorf("unknown building kind %q", kind)
		}
		kinds = []buildings.Kind{k}
	}

	var out []catalogs.Summary
	for _, k := range kinds {
		civs := cat.Eligible(k)
		if cv != "" {
			c, ok := civ.Parse(cv)
			if !ok {
				return fmt.Errorf("unknown civilisation %q", cv)
			}
			civs = []civ.Civilisation{c}
		}
		for _, c := range civs {
			info, err := cat.Resolve(k, c)
			if err != nil {
				return err
			}
			out = append(out, info.Summary())
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if len(out) == 1 {
		return enc.Encode(out[0])
	}
	return enc.Encode(out)
}

func loadDispatcher(catalogPath, tuningPath string) (*catalogs.Catalog, *construction.Dispatcher, tuning.Tuning, error) {
	tune, err := tuning.Load(tuningPath)
	if err != nil {
		return nil, nil, tune, fmt.Errorf("load tuning: %w", err)
	}
	cat, err := catalogs.Load(catalogPath)
	if err != nil {
		return nil, nil, tune, fmt.Errorf("load catalog: %w", err)
	}
	return cat, construction.NewDispatcher(cat, tune.Strategies), tune, nil
}

func runStrategy(w io.Writer, catalogPath, tuningPath, kind, cv string) error {
	_, d, _, err := loadDispatcher(catalogPath, tuningPath)
	if err != nil {
		return err
	}
	k, c, err := parsePair(kind, cv)
	if err != nil {
		return err
	}
	s, err := d.StrategyFor(k, c)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, strategyLine(k, c, s))
	return nil
}

func runStrategyTable(w io.Writer, catalogPath, tuningPath string) error {
	cat, d, _, err := loadDispatcher(catalogPath, tuningPath)
	if err != nil {
		return err
	}
	for _, k := range buildings.All() {
		for _, c := range cat.Eligible(k) {
			s, err := d.StrategyFor(k, c)
			if err != nil {
				return err
			}
			fmt.Fprintln(w, strategyLine(k, c, s))
		}
	}
	return nil
}

func strategyLine(k buildings.Kind, c civ.Civilisation, s construction.Strategy) string {
	line := fmt.Sprintf("%-18s %-10s %s", k, c, s.Name())
	if req, ok := construction.Prerequisite(k); ok {
		line += " near=" + req.String()
	}
	if m, ok := s.(construction.Mine); ok {
		line += " resource=" + m.Resource().String()
	}
	return line
}

func runPreview(w io.Writer, catalogPath, kind, cv, out string, cell int) error {
	cat, err := catalogs.Load(catalogPath)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	k, c, err := parsePair(kind, cv)
	if err != nil {
		return err
	}
	info, err := cat.Resolve(k, c)
	if err != nil {
		return err
	}
	if out == "" {
		out = strings.ToLower(fmt.Sprintf("%s_%s.png", k, c))
	}
	if err := preview.SavePNG(out, info, preview.Options{Cell: cell}); err != nil {
		return err
	}
	fmt.Fprintf(w, "wrote %s\n", out)
	return nil
}

type placeOptions struct {
	Catalog, Tuning    string
	Kind, Civilisation string
	MapPath            string
	Center             *geom.Point
	Radius             int
	DataDir, DBPath    string
	Mark               bool
}

func runPlace(ctx context.Context, w io.Writer, o placeOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cat, d, tune, err := loadDispatcher(o.Catalog, o.Tuning)
	if err != nil {
		return err
	}
	k, c, err := parsePair(o.Kind, o.Civilisation)
	if err != nil {
		return err
	}
	grid, err := terrain.Load(o.MapPath)
	if err != nil {
		return fmt.Errorf("load map: %w", err)
	}
	s, err := d.StrategyFor(k, c)
	if err != nil {
		return err
	}

	var sinks persistlog.MultiSink
	if o.DataDir != "" {
		dl := persistlog.NewDecisionLogger(o.DataDir)
		defer dl.Close()
		sinks = append(sinks, dl)
	}
	if o.DBPath != "" {
		idx, err := indexdb.OpenSQLite(o.DBPath)
		if err != nil {
			return fmt.Errorf("open index: %w", err)
		}
		defer idx.Close()
		sinks = append(sinks, idx)
	}

	var area *construction.SearchArea
	if o.Center != nil {
		r := o.Radius
		if r <= 0 {
			r = tune.Planner.SearchRadius
		}
		area = &construction.SearchArea{Center: *o.Center, Radius: r}
	}

	p := construction.Planner{Workers: tune.Planner.Workers, Sink: sinks, Area: area}
	best, err := p.FindBest(ctx, s, grid, area.Candidates(grid))
	if err != nil {
		return err
	}
	printPlacement(w, best)

	if o.Mark {
		info, err := cat.Resolve(k, c)
		if err != nil {
			return err
		}
		grid.Build(info, best.At)
		if err := grid.Save(o.MapPath); err != nil {
			return fmt.Errorf("save map: %w", err)
		}
	}
	return nil
}

func runIndex(w io.Writer, catalogPath, tuningPath, dbPath string) error {
	tune, err := tuning.Load(tuningPath)
	if err != nil {
		return fmt.Errorf("load tuning: %w", err)
	}
	cat, err := catalogs.Load(catalogPath)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	rep, err := validation.Check(cat)
	if err != nil {
		return err
	}

	idx, err := indexdb.OpenSQLite(dbPath)
	if err != nil {
		return fmt.Errorf("open index: %w", err)
	}
	if err := idx.UpsertCatalog(cat, tune); err != nil {
		_ = idx.Close()
		return err
	}
	idx.RecordValidation(cat.Digest(), rep)
	if err := idx.Close(); err != nil {
		return err
	}
	fmt.Fprintf(w, "indexed %d records (%d violations) into %s\n", rep.Checked, len(rep.Violations), dbPath)
	return nil
}
