package main

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/Da-Krause/settlers-remake/internal/persistence/indexdb"
	"github.com/Da-Krause/settlers-remake/internal/sim/catalogs"
	"github.com/Da-Krause/settlers-remake/internal/transport/ws"
)

func metricsHandler(cat *catalogs.Catalog, srv *ws.Server, idx *indexdb.SQLiteIndex) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")

		// Minimal Prometheus exposition format.
		fmt.Fprintf(rw, "# HELP settlers_catalog_loads_total Definition source loads.\n")
		fmt.Fprintf(rw, "# TYPE settlers_catalog_loads_total counter\n")
		fmt.Fprintf(rw, "settlers_catalog_loads_total{digest=%q} %d\n", short(cat.Digest()), cat.Loads())

		fmt.Fprintf(rw, "# HELP settlers_ws_sessions Open query sessions.\n")
		fmt.Fprintf(rw, "# TYPE settlers_ws_sessions gauge\n")
		fmt.Fprintf(rw, "settlers_ws_sessions %d\n", srv.Sessions())

		writeIndexMetrics(rw, idx)
	}
}

func writeIndexMetrics(rw http.ResponseWriter, idx *indexdb.SQLiteIndex) {
	if idx == nil {
		return
	}
	s := idx.Stats()

	fmt.Fprintf(rw, "# HELP settlers_index_queue_depth Current index writer queue depth.\n")
	fmt.Fprintf(rw, "# TYPE settlers_index_queue_depth gauge\n")
	fmt.Fprintf(rw, "settlers_index_queue_depth %d\n", s.QueueDepth)

	fmt.Fprintf(rw, "# HELP settlers_index_queue_capacity Index writer queue capacity.\n")
	fmt.Fprintf(rw, "# TYPE settlers_index_queue_capacity gauge\n")
	fmt.Fprintf(rw, "settlers_index_queue_capacity %d\n", s.QueueCapacity)

	fmt.Fprintf(rw, "# HELP settlers_index_dropped_total Writes dropped because the queue was full.\n")
	fmt.Fprintf(rw, "# TYPE settlers_index_dropped_total counter\n")
	fmt.Fprintf(rw, "settlers_index_dropped_total{kind=%q} %d\n", "placement", s.DropPlacementTotal)
	fmt.Fprintf(rw, "settlers_index_dropped_total{kind=%q} %d\n", "validation", s.DropValidationTotal)
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
