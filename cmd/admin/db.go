package main

import (
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

const dbUsage = "usage: admin db [-data ./data|-db PATH] [-limit N] [-kind K] [-civ C] catalogs|buildings|placements|violations"

type dbQuery struct {
	Limit        int
	Kind         string
	Civilisation string
}

func dbCmd(args []string) {
	fs := flag.NewFlagSet("db", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	dbPath := fs.String("db", "", "sqlite db path (optional)")
	limit := fs.Int("limit", 20, "result limit")
	kind := fs.String("kind", "", "building kind filter")
	cv := fs.String("civ", "", "civilisation filter")
	_ = fs.Parse(args)

	q := "catalogs"
	if fs.NArg() > 0 {
		q = strings.TrimSpace(fs.Arg(0))
	}

	path := strings.TrimSpace(*dbPath)
	if path == "" {
		path = filepath.Join(*dataDir, "index", "catalog.sqlite")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	defer db.Close()

	err = runQuery(os.Stdout, db, q, dbQuery{
		Limit:        *limit,
		Kind:         strings.ToUpper(strings.TrimSpace(*kind)),
		Civilisation: strings.ToUpper(strings.TrimSpace(*cv)),
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		if strings.HasPrefix(err.Error(), "unknown query") {
			fmt.Fprintln(os.Stderr, dbUsage)
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func runQuery(w io.Writer, db *sql.DB, q string, f dbQuery) error {
	if f.Limit <= 0 {
		f.Limit = 20
	}
	switch q {
	case "catalogs":
		rows, err := db.Query(`SELECT name,digest,updated_at FROM catalogs ORDER BY name`)
		if err != nil {
			return fmt.Errorf("query: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var r struct {
				Name      string `json:"name"`
				Digest    string `json:"digest"`
				UpdatedAt string `json:"updated_at"`
			}
			if err := rows.Scan(&r.Name, &r.Digest, &r.UpdatedAt); err != nil {
				return fmt.Errorf("scan: %w", err)
			}
			printJSON(w, r)
		}
		return rows.Err()

	case "buildings":
		rows, err := db.Query(`SELECT kind,civilisation,category,mine,construction_materials,footprint_cells,work_radius
			FROM building_infos
			WHERE (?='' OR kind=?) AND (?='' OR civilisation=?)
			ORDER BY kind,civilisation LIMIT ?`, f.Kind, f.Kind, f.Civilisation, f.Civilisation, f.Limit)
		if err != nil {
			return fmt.Errorf("query: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var r struct {
				Kind                  string `json:"kind"`
				Civilisation          string `json:"civilisation"`
				Category              string `json:"category"`
				Mine                  bool   `json:"mine"`
				ConstructionMaterials int    `json:"construction_materials"`
				FootprintCells        int    `json:"footprint_cells"`
				WorkRadius            int    `json:"work_radius"`
			}
			if err := rows.Scan(&r.Kind, &r.Civilisation, &r.Category, &r.Mine, &r.ConstructionMaterials, &r.FootprintCells, &r.WorkRadius); err != nil {
				return fmt.Errorf("scan: %w", err)
			}
			printJSON(w, r)
		}
		return rows.Err()

	case "placements":
		rows, err := db.Query(`SELECT id,recorded_at,kind,civilisation,strategy,x,y,score,candidates,accepted
			FROM placements
			WHERE (?='' OR kind=?) AND (?='' OR civilisation=?)
			ORDER BY id DESC LIMIT ?`, f.Kind, f.Kind, f.Civilisation, f.Civilisation, f.Limit)
		if err != nil {
			return fmt.Errorf("query: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var r struct {
				ID           int64  `json:"id"`
				RecordedAt   string `json:"recorded_at"`
				Kind         string `json:"kind"`
				Civilisation string `json:"civilisation"`
				Strategy     string `json:"strategy"`
				X            int    `json:"x"`
				Y            int    `json:"y"`
				Score        int    `json:"score"`
				Candidates   int    `json:"candidates"`
				Accepted     int    `json:"accepted"`
			}
			if err := rows.Scan(&r.ID, &r.RecordedAt, &r.Kind, &r.Civilisation, &r.Strategy, &r.X, &r.Y, &r.Score, &r.Candidates, &r.Accepted); err != nil {
				return fmt.Errorf("scan: %w", err)
			}
			printJSON(w, r)
		}
		return rows.Err()

	case "violations":
		rows, err := db.Query(`SELECT digest,kind,civilisation,rule,detail
			FROM violations
			WHERE (?='' OR kind=?) AND (?='' OR civilisation=?)
			ORDER BY digest,seq LIMIT ?`, f.Kind, f.Kind, f.Civilisation, f.Civilisation, f.Limit)
		if err != nil {
			return fmt.Errorf("query: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var r struct {
				Digest       string `json:"digest"`
				Kind         string `json:"kind"`
				Civilisation string `json:"civilisation"`
				Rule         string `json:"rule"`
				Detail       string `json:"detail"`
			}
			if err := rows.Scan(&r.Digest, &r.Kind, &r.Civilisation, &r.Rule, &r.Detail); err != nil {
				return fmt.Errorf("scan: %w", err)
			}
			printJSON(w, r)
		}
		return rows.Err()
	}
	return fmt.Errorf("unknown query: %s", q)
}

func printJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
