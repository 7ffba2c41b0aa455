package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"tilecolony/internal/persistence/indexdb"
	persistlog "tilecolony/internal/persistence/log"
	"tilecolony/internal/persistence/snapshot"
	"tilecolony/internal/sim/catalogs"
	"tilecolony/internal/sim/tuning"
	"tilecolony/internal/sim/world"
	"tilecolony/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		worldID    = flag.String("world", "colony_1", "world id")
		seed       = flag.Int64("seed", 1337, "world seed (fresh worlds only)")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite index (tick/event/snapshot metadata)")

		snapPath   = flag.String("snapshot", "", "path to snapshot to load (optional)")
		loadLatest = flag.Bool("load_latest_snapshot", true, "resume from latest snapshot in data dir when -snapshot is empty")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		logger.Fatalf("load catalogs: %v", err)
	}

	worldDir := filepath.Join(*dataDir, "worlds", *worldID)
	if err := os.MkdirAll(worldDir, 0o755); err != nil {
		logger.Fatalf("mkdir %s: %v", worldDir, err)
	}

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", tp)
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}

	cfg := world.ConfigFromTuning(*worldID, tune)
	if cfg.Seed == 0 {
		cfg.Seed = *seed
	}

	w, err := world.New(cfg, cats)
	if err != nil {
		logger.Fatalf("create world: %v", err)
	}

	// Resume.
	snapDir := filepath.Join(worldDir, "snapshots")
	resumePath := strings.TrimSpace(*snapPath)
	if resumePath == "" && *loadLatest {
		if p, tick, err := snapshot.Latest(snapDir); err != nil {
			logger.Fatalf("scan snapshots: %v", err)
		} else if p != "" {
			logger.Printf("resuming from %s (tick %d)", p, tick)
			resumePath = p
		}
	}
	if resumePath != "" {
		snap, err := snapshot.Read(resumePath)
		if err != nil {
			logger.Fatalf("read snapshot: %v", err)
		}
		if err := w.ImportSnapshot(snap); err != nil {
			logger.Fatalf("import snapshot: %v", err)
		}
	}

	// Persistence: JSONL tick log is the source of truth; sqlite indexes it.
	tickLog := persistlog.NewTickLogger(worldDir)
	defer tickLog.Close()

	var idx *indexdb.SQLiteIndex
	if !*disableDB {
		idx, err = indexdb.OpenSQLite(filepath.Join(worldDir, "index.db"))
		if err != nil {
			logger.Fatalf("open index db: %v", err)
		}
		defer idx.Close()
		if err := idx.UpsertCatalogs(*configDir, cats, tune); err != nil {
			logger.Printf("upsert catalogs: %v", err)
		}
		w.SetTickLogger(teeTickLogger{tickLog, idx})
	} else {
		w.SetTickLogger(tickLog)
	}

	// Off-thread snapshot writer.
	snapCh := make(chan world.SnapshotRequest, 2)
	w.SetSnapshotSink(snapCh)
	go func() {
		for req := range snapCh {
			snap := req.Snap
			path := snapshot.PathFor(snapDir, req.Tick)
			if err := snapshot.Write(path, snap); err != nil {
				logger.Printf("write snapshot %s: %v", path, err)
				continue
			}
			if idx != nil {
				idx.RecordSnapshot(path, snap)
			}
			logger.Printf("snapshot written: %s", path)
		}
	}()

	ctx, cancel := signalContext()
	defer cancel()

	go w.Run(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusOK)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metricsz", func(rw http.ResponseWriter, _ *http.Request) {
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(w.Metrics())
	})
	mux.HandleFunc("/v1/ws", ws.NewServer(w, logger).Handler())

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
		close(snapCh)
	}()

	logger.Printf("world %s listening on %s (seed %d, %d Hz)", cfg.ID, *addr, cfg.Seed, cfg.TickRateHz)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

// teeTickLogger fans a tick entry to the JSONL log and the sqlite index.
type teeTickLogger struct {
	jsonl *persistlog.TickLogger
	idx   *indexdb.SQLiteIndex
}

func (t teeTickLogger) WriteTick(entry world.TickLogEntry) error {
	if err := t.jsonl.WriteTick(entry); err != nil {
		return err
	}
	return t.idx.WriteTick(entry)
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
