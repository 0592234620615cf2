package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/Da-Krause/settlers-remake/internal/ai/construction"
	persistlog "github.com/Da-Krause/settlers-remake/internal/persistence/log"
	"github.com/Da-Krause/settlers-remake/internal/sim/catalogs"
	"github.com/Da-Krause/settlers-remake/internal/sim/tuning"
	"github.com/Da-Krause/settlers-remake/internal/sim/validation"
	"github.com/Da-Krause/settlers-remake/internal/transport/ws"
)

func main() {
	var (
		addr        = flag.String("addr", ":8080", "http listen address")
		dataDir     = flag.String("data", "./data", "runtime data directory")
		catalogPath = flag.String("catalog", "", "path to buildings.yaml (default: compiled-in definitions)")
		tuningPath  = flag.String("tuning", "", "path to tuning.yaml (default: built-in defaults)")
		disableDB   = flag.Bool("disable_db", false, "disable the sqlite read model")
		allowBad    = flag.Bool("allow_violations", false, "serve a catalog that fails validation")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	tune, err := tuning.Load(*tuningPath)
	if err != nil {
		logger.Fatalf("load tuning: %v", err)
	}
	cat, err := catalogs.Load(*catalogPath)
	if err != nil {
		logger.Fatalf("load catalog: %v", err)
	}
	if err := cat.Preload(); err != nil {
		logger.Fatalf("preload catalog: %v", err)
	}
	rep, err := validation.Check(cat)
	if err != nil {
		logger.Fatalf("validate catalog: %v", err)
	}
	for _, v := range rep.Violations {
		logger.Printf("violation: %s", v)
	}
	if !rep.OK() && !*allowBad {
		logger.Fatalf("catalog has %d violations", len(rep.Violations))
	}
	logger.Printf("catalog digest=%s records=%d tuning=%s", short(cat.Digest()), rep.Checked, short(tune.Digest()))

	audit := persistlog.NewAuditLogger(*dataDir)
	defer audit.Close()
	if err := audit.WriteValidation(cat.Digest(), rep); err != nil {
		logger.Printf("audit log: %v", err)
	}

	// Optional read model; the query service never reads it back.
	idx, err := openRuntimeIndex(*dataDir, *disableDB)
	if err != nil {
		logger.Fatalf("open index backend: %v", err)
	}
	if idx != nil {
		defer idx.Close()
		if err := idx.UpsertCatalog(cat, tune); err != nil {
			logger.Printf("index backend: upsert catalog: %v", err)
		}
		idx.RecordValidation(cat.Digest(), rep)
	}

	opts := []ws.Option{ws.WithTuningDigest(tune.Digest())}
	if idx != nil {
		opts = append(opts, ws.WithValidationRecorder(idx))
	}
	disp := construction.NewDispatcher(cat, tune.Strategies)
	wsSrv := ws.NewServer(cat, disp, logger, opts...)

	ctx, cancel := signalContext()
	defer cancel()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", metricsHandler(cat, wsSrv, idx))
	mux.HandleFunc("/admin/v1/catalog", func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(map[string]any{
			"digest":        cat.Digest(),
			"tuning_digest": tune.Digest(),
			"loads":         cat.Loads(),
			"checked":       rep.Checked,
			"violations":    rep.Violations,
		})
	})
	if envBool("SR_ENABLE_PPROF_HTTP", false) {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	} else {
		logger.Printf("pprof endpoints disabled (SR_ENABLE_PPROF_HTTP=false)")
	}
	mux.HandleFunc("/v1/ws", wsSrv.Handler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func short(digest string) string {
	if len(digest) > 12 {
		return digest[:12]
	}
	return digest
}

func indexPath(dataDir string) string {
	return filepath.Join(dataDir, "index", "catalog.sqlite")
}
