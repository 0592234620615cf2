package indexdb

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/Da-Krause/settlers-remake/internal/ai/construction"
	"github.com/Da-Krause/settlers-remake/internal/sim/buildings"
	"github.com/Da-Krause/settlers-remake/internal/sim/catalogs"
	"github.com/Da-Krause/settlers-remake/internal/sim/civ"
	"github.com/Da-Krause/settlers-remake/internal/sim/geom"
	"github.com/Da-Krause/settlers-remake/internal/sim/tuning"
	"github.com/Da-Krause/settlers-remake/internal/sim/validation"
)

func openTemp(t *testing.T) (*SQLiteIndex, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "index.sqlite")
	idx, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	return idx, path
}

func reopen(t *testing.T, path string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSQLiteIndex_UpsertCatalog(t *testing.T) {
	src, err := catalogs.DefaultSource()
	if err != nil {
		t.Fatalf("DefaultSource: %v", err)
	}
	cat := catalogs.New(src)

	idx, path := openTemp(t)
	if err := idx.UpsertCatalog(cat, tuning.Defaults()); err != nil {
		t.Fatalf("UpsertCatalog: %v", err)
	}
	// Upserting twice replaces rows instead of failing on the primary key.
	if err := idx.UpsertCatalog(cat, tuning.Defaults()); err != nil {
		t.Fatalf("UpsertCatalog again: %v", err)
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db := reopen(t, path)

	var digest string
	if err := db.QueryRow(`SELECT digest FROM catalogs WHERE name='buildings'`).Scan(&digest); err != nil {
		t.Fatalf("query catalogs: %v", err)
	}
	if digest != cat.Digest() {
		t.Fatalf("expected digest %q, got %q", cat.Digest(), digest)
	}
	var tuneDigest string
	if err := db.QueryRow(`SELECT digest FROM catalogs WHERE name='tuning'`).Scan(&tuneDigest); err != nil {
		t.Fatalf("query tuning: %v", err)
	}
	if len(tuneDigest) != 64 {
		t.Fatalf("expected sha256 hex digest, got %q", tuneDigest)
	}

	want := 0
	for _, k := range buildings.All() {
		want += len(cat.Eligible(k))
	}
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM building_infos`).Scan(&n); err != nil {
		t.Fatalf("count building_infos: %v", err)
	}
	if n != want {
		t.Fatalf("expected %d building rows, got %d", want, n)
	}

	var mine, materials int
	if err := db.QueryRow(
		`SELECT mine, construction_materials FROM building_infos WHERE kind=? AND civilisation=?`,
		buildings.Castle.String(), civ.Romans.String(),
	).Scan(&mine, &materials); err != nil {
		t.Fatalf("query castle: %v", err)
	}
	if mine != 0 || materials != 16 {
		t.Fatalf("unexpected castle row mine=%d materials=%d", mine, materials)
	}
	if err := db.QueryRow(
		`SELECT mine FROM building_infos WHERE kind=? AND civilisation=?`,
		buildings.CoalMine.String(), civ.Asians.String(),
	).Scan(&mine); err != nil {
		t.Fatalf("query coal mine: %v", err)
	}
	if mine != 1 {
		t.Fatalf("expected coal mine flagged as mine")
	}
}

func TestSQLiteIndex_RecordPlacementAndValidation(t *testing.T) {
	idx, path := openTemp(t)

	idx.RecordPlacement(construction.Placement{
		Kind:         buildings.Sawmill,
		Civilisation: civ.Romans,
		Strategy:     "near_required",
		At:           geom.Point{X: 12, Y: 7},
		Score:        4,
		Candidates:   100,
		Accepted:     9,
		Rejections:   map[construction.Reason]int{construction.ReasonOccupied: 91},
	})
	idx.RecordValidation("abc", validation.Report{Checked: 1, Violations: []validation.Violation{
		{Kind: buildings.Stock, Civilisation: civ.Romans, Rule: validation.RuleDoor, Detail: "first"},
	}})
	// A second run for the same digest replaces the first.
	idx.RecordValidation("abc", validation.Report{Checked: 1, Violations: []validation.Violation{
		{Kind: buildings.Stock, Civilisation: civ.Romans, Rule: validation.RuleDoor, Detail: "second"},
		{Kind: buildings.Stock, Civilisation: civ.Romans, Rule: validation.RuleStack, Detail: "third"},
	}})
	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	// Recording after Close is a no-op.
	idx.RecordPlacement(construction.Placement{})

	db := reopen(t, path)

	var kind, cv, strategy, raw string
	var x, y, score, candidates, accepted int
	if err := db.QueryRow(
		`SELECT kind, civilisation, strategy, x, y, score, candidates, accepted, raw_json FROM placements`,
	).Scan(&kind, &cv, &strategy, &x, &y, &score, &candidates, &accepted, &raw); err != nil {
		t.Fatalf("query placements: %v", err)
	}
	if kind != "SAWMILL" || cv != "ROMANS" || strategy != "near_required" {
		t.Fatalf("unexpected placement target %s/%s %s", kind, cv, strategy)
	}
	if x != 12 || y != 7 || score != 4 || candidates != 100 || accepted != 9 {
		t.Fatalf("unexpected placement row x=%d y=%d score=%d c=%d a=%d", x, y, score, candidates, accepted)
	}
	if raw == "" {
		t.Fatalf("expected raw json")
	}

	rows, err := db.Query(`SELECT rule, detail FROM violations WHERE digest='abc' ORDER BY seq`)
	if err != nil {
		t.Fatalf("query violations: %v", err)
	}
	defer rows.Close()
	var details []string
	for rows.Next() {
		var rule, detail string
		if err := rows.Scan(&rule, &detail); err != nil {
			t.Fatalf("scan: %v", err)
		}
		details = append(details, detail)
	}
	if len(details) != 2 || details[0] != "second" || details[1] != "third" {
		t.Fatalf("expected the latest run only, got %v", details)
	}
}

func TestSQLiteIndex_QueueDrops(t *testing.T) {
	idx := &SQLiteIndex{ch: make(chan req, 1)}

	idx.RecordPlacement(construction.Placement{})
	idx.RecordPlacement(construction.Placement{})
	idx.RecordValidation("d", validation.Report{})
	idx.RecordValidation("", validation.Report{})

	st := idx.Stats()
	if st.QueueDepth != 1 || st.QueueCapacity != 1 {
		t.Fatalf("unexpected queue stats %+v", st)
	}
	if st.DropPlacementTotal != 1 || st.DropValidationTotal != 1 {
		t.Fatalf("unexpected drop counters %+v", st)
	}

	var nilIdx *SQLiteIndex
	nilIdx.RecordPlacement(construction.Placement{})
	if nilIdx.Stats() != (Stats{}) {
		t.Fatalf("expected zero stats for nil index")
	}
}
