package main

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Da-Krause/settlers-remake/internal/ai/construction"
	"github.com/Da-Krause/settlers-remake/internal/persistence/indexdb"
	"github.com/Da-Krause/settlers-remake/internal/sim/buildings"
	"github.com/Da-Krause/settlers-remake/internal/sim/catalogs"
	"github.com/Da-Krause/settlers-remake/internal/sim/civ"
	"github.com/Da-Krause/settlers-remake/internal/sim/geom"
	"github.com/Da-Krause/settlers-remake/internal/sim/tuning"
)

func seedIndex(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.sqlite")
	idx, err := indexdb.OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	cat, err := catalogs.Load("")
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	if err := idx.UpsertCatalog(cat, tuning.Defaults()); err != nil {
		t.Fatalf("UpsertCatalog: %v", err)
	}
	for i := 0; i < 3; i++ {
		idx.RecordPlacement(construction.Placement{
			Kind:         buildings.Fisher,
			Civilisation: civ.Asians,
			Strategy:     "fisher",
			At:           geom.Point{X: i, Y: 1},
			Score:        -i,
		})
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func lines(buf *bytes.Buffer) []map[string]any {
	var out []map[string]any
	for _, l := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if l == "" {
			continue
		}
		var m map[string]any
		_ = json.Unmarshal([]byte(l), &m)
		out = append(out, m)
	}
	return out
}

func TestRunQuery(t *testing.T) {
	db := seedIndex(t)

	var buf bytes.Buffer
	if err := runQuery(&buf, db, "catalogs", dbQuery{}); err != nil {
		t.Fatalf("catalogs: %v", err)
	}
	if got := lines(&buf); len(got) != 2 || got[0]["name"] != "buildings" || got[1]["name"] != "tuning" {
		t.Fatalf("unexpected catalogs %v", got)
	}

	buf.Reset()
	if err := runQuery(&buf, db, "buildings", dbQuery{Kind: "CASTLE", Civilisation: "ROMANS"}); err != nil {
		t.Fatalf("buildings: %v", err)
	}
	if got := lines(&buf); len(got) != 1 || got[0]["construction_materials"].(float64) != 16 {
		t.Fatalf("unexpected buildings %v", got)
	}

	buf.Reset()
	if err := runQuery(&buf, db, "placements", dbQuery{Limit: 2}); err != nil {
		t.Fatalf("placements: %v", err)
	}
	got := lines(&buf)
	if len(got) != 2 || got[0]["x"].(float64) != 2 {
		t.Fatalf("expected the two newest placements first, got %v", got)
	}

	buf.Reset()
	if err := runQuery(&buf, db, "violations", dbQuery{}); err != nil {
		t.Fatalf("violations: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no violations, got %s", buf.String())
	}

	if err := runQuery(&buf, db, "agents", dbQuery{}); err == nil {
		t.Fatalf("expected unknown query error")
	}
}
