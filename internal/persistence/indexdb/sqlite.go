package indexdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Da-Krause/settlers-remake/internal/ai/construction"
	"github.com/Da-Krause/settlers-remake/internal/sim/buildings"
	"github.com/Da-Krause/settlers-remake/internal/sim/catalogs"
	"github.com/Da-Krause/settlers-remake/internal/sim/tuning"
	"github.com/Da-Krause/settlers-remake/internal/sim/validation"
)

// SQLiteIndex is a queryable read model of the catalog and of the planner's
// decisions. It is never read back by the planner.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool

	dropPlacement  atomic.Uint64
	dropValidation atomic.Uint64
}

type reqKind int

const (
	reqPlacement reqKind = iota + 1
	reqValidation
)

type req struct {
	kind reqKind

	placement  placementRow
	validation validationRow
}

type placementRow struct {
	RecordedAt string
	Placement  construction.Placement
}

type validationRow struct {
	Digest     string
	RecordedAt string
	Report     validation.Report
}

// Stats reports queue pressure. Dropped writes are not retried.
type Stats struct {
	QueueDepth          int    `json:"queue_depth"`
	QueueCapacity       int    `json:"queue_capacity"`
	DropPlacementTotal  uint64 `json:"drop_placement_total"`
	DropValidationTotal uint64 `json:"drop_validation_total"`
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, 4096),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS catalogs (
			name TEXT PRIMARY KEY,
			digest TEXT NOT NULL,
			json TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS building_infos (
			kind TEXT NOT NULL,
			civilisation TEXT NOT NULL,
			digest TEXT NOT NULL,
			category TEXT NOT NULL,
			mine INTEGER NOT NULL,
			construction_materials INTEGER NOT NULL,
			footprint_cells INTEGER NOT NULL,
			work_radius INTEGER NOT NULL,
			json TEXT NOT NULL,
			PRIMARY KEY (kind, civilisation)
		);`,
		`CREATE TABLE IF NOT EXISTS placements (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			recorded_at TEXT NOT NULL,
			kind TEXT NOT NULL,
			civilisation TEXT NOT NULL,
			strategy TEXT NOT NULL,
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			score INTEGER NOT NULL,
			candidates INTEGER NOT NULL,
			accepted INTEGER NOT NULL,
			raw_json TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_placements_kind ON placements(kind, civilisation);`,
		`CREATE TABLE IF NOT EXISTS violations (
			digest TEXT NOT NULL,
			seq INTEGER NOT NULL,
			kind TEXT NOT NULL,
			civilisation TEXT NOT NULL,
			rule TEXT NOT NULL,
			detail TEXT NOT NULL,
			recorded_at TEXT NOT NULL,
			PRIMARY KEY (digest, seq)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteIndex) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		QueueDepth:          len(s.ch),
		QueueCapacity:       cap(s.ch),
		DropPlacementTotal:  s.dropPlacement.Load(),
		DropValidationTotal: s.dropValidation.Load(),
	}
}

// RecordPlacement queues a planner decision. It never blocks the planner.
func (s *SQLiteIndex) RecordPlacement(p construction.Placement) {
	if s == nil || s.closed.Load() {
		return
	}
	r := placementRow{
		RecordedAt: time.Now().UTC().Format(time.RFC3339Nano),
		Placement:  p,
	}
	select {
	case s.ch <- req{kind: reqPlacement, placement: r}:
	default:
		s.dropPlacement.Add(1)
	}
}

// RecordValidation queues the violations found for a catalog digest,
// replacing the previous run for the same digest.
func (s *SQLiteIndex) RecordValidation(digest string, rep validation.Report) {
	if s == nil || s.closed.Load() || digest == "" {
		return
	}
	r := validationRow{
		Digest:     digest,
		RecordedAt: time.Now().UTC().Format(time.RFC3339Nano),
		Report:     rep,
	}
	select {
	case s.ch <- req{kind: reqValidation, validation: r}:
	default:
		s.dropValidation.Add(1)
	}
}

// UpsertCatalog stores the catalog digest, the tuning in effect and one row
// per resolved (kind, civilisation) pair. It runs synchronously in its own
// transaction.
func (s *SQLiteIndex) UpsertCatalog(cat *catalogs.Catalog, tune tuning.Tuning) error {
	if s == nil {
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	digest := cat.Digest()

	type kv struct {
		name   string
		digest string
		json   []byte
	}
	var rows []kv

	var summaries []catalogs.Summary
	for _, k := range buildings.All() {
		for _, cv := range cat.Eligible(k) {
			info, err := cat.Resolve(k, cv)
			if err != nil {
				return err
			}
			summaries = append(summaries, info.Summary())
		}
	}
	if b, err := json.Marshal(summaries); err == nil {
		rows = append(rows, kv{name: "buildings", digest: digest, json: b})
	}
	if b, err := json.Marshal(tune); err == nil {
		rows = append(rows, kv{name: "tuning", digest: tune.Digest(), json: b})
	}

	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1')`); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO catalogs(name,digest,json,updated_at) VALUES(?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if r.name == "" || r.digest == "" || len(r.json) == 0 {
			continue
		}
		if _, err := stmt.Exec(r.name, r.digest, string(r.json), now); err != nil {
			return err
		}
	}

	info, err := tx.Prepare(`INSERT OR REPLACE INTO building_infos(kind,civilisation,digest,category,mine,construction_materials,footprint_cells,work_radius,json) VALUES(?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer info.Close()
	for _, sm := range summaries {
		b, err := json.Marshal(sm)
		if err != nil {
			return err
		}
		if _, err := info.Exec(
			sm.Kind.String(),
			sm.Civilisation.String(),
			digest,
			sm.Category.String(),
			boolInt(sm.Mine),
			sm.ConstructionMaterials,
			sm.FootprintCells,
			sm.WorkRadius,
			string(b),
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertPlacement, _ := s.db.Prepare(`INSERT INTO placements(recorded_at,kind,civilisation,strategy,x,y,score,candidates,accepted,raw_json) VALUES(?,?,?,?,?,?,?,?,?,?)`)
	clearViolations, _ := s.db.Prepare(`DELETE FROM violations WHERE digest=?`)
	insertViolation, _ := s.db.Prepare(`INSERT OR REPLACE INTO violations(digest,seq,kind,civilisation,rule,detail,recorded_at) VALUES(?,?,?,?,?,?,?)`)
	defer func() {
		for _, st := range []*sql.Stmt{insertPlacement, clearViolations, insertViolation} {
			if st != nil {
				_ = st.Close()
			}
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 500
		commitMaxWait = 2 * time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	flushIfNeeded := func() {
		if tx == nil {
			return
		}
		if opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait {
			commit()
		}
	}

	for r := range s.ch {
		begin()
		if tx == nil {
			continue
		}
		switch r.kind {
		case reqPlacement:
			p := r.placement.Placement
			raw, _ := json.Marshal(p)
			if insertPlacement != nil {
				if _, err := tx.Stmt(insertPlacement).Exec(
					r.placement.RecordedAt,
					p.Kind.String(),
					p.Civilisation.String(),
					p.Strategy,
					p.At.X, p.At.Y,
					p.Score,
					p.Candidates,
					p.Accepted,
					string(raw),
				); err != nil {
					rollback()
					continue
				}
				opCount++
			}

		case reqValidation:
			v := r.validation
			if clearViolations == nil || insertViolation == nil {
				continue
			}
			if _, err := tx.Stmt(clearViolations).Exec(v.Digest); err != nil {
				rollback()
				continue
			}
			opCount++
			for i, vi := range v.Report.Violations {
				if _, err := tx.Stmt(insertViolation).Exec(
					v.Digest, i,
					vi.Kind.String(),
					vi.Civilisation.String(),
					vi.Rule,
					vi.Detail,
					v.RecordedAt,
				); err != nil {
					rollback()
					break
				}
				opCount++
			}
		}
		flushIfNeeded()
	}

	commit()
}
