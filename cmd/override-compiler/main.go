// cmd/override-compiler/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"pipeline-compiler/internal/common/config"
	"pipeline-compiler/internal/common/database"
	commonerrors "pipeline-compiler/internal/common/errors"
	commonhttp "pipeline-compiler/internal/common/http"
	"pipeline-compiler/internal/common/logger"
	"pipeline-compiler/internal/common/observability"
	"pipeline-compiler/internal/common/validation"
	"pipeline-compiler/internal/engine/compiler"
	"pipeline-compiler/internal/engine/option"
	"pipeline-compiler/internal/engine/selection"
	"pipeline-compiler/pkg/catalog"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	taskID := flag.String("task", "", "Task identifier to compile (one-shot mode)")
	instanceID := flag.String("instance", "", "Task instance holding persisted selections")
	selectionsPath := flag.String("selections", "", "Path to a selection document JSON file")
	serve := flag.Bool("serve", false, "Run the HTTP override service instead of a one-shot compile")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Load catalogs ---
	cat := catalog.New(log)
	if !cfg.Catalog.DisableBuiltin {
		if err := cat.Merge(catalog.Builtin(), true); err != nil {
			zapLog.Fatal("builtin catalog invalid", zap.Error(err))
		}
	}

	docs, err := catalog.LoadDir(cfg.Catalog.ProjectDir)
	if err != nil {
		zapLog.Fatal("project catalog load failed", zap.Error(err))
	}
	for _, doc := range docs {
		if err := cat.Merge(doc, false); err != nil {
			zapLog.Fatal("project catalog invalid", zap.Error(err))
		}
	}

	if cfg.Catalog.ProjectURL != "" {
		client := commonhttp.NewClient(config.GetDuration(cfg.Catalog.FetchTimeout))
		var remote *catalog.Document
		err = retryWithBackoff(func() error {
			var err error
			remote, err = catalog.FetchURL(ctx, cfg.Catalog.ProjectURL, client)
			return err
		}, 3, 2*time.Second, zapLog, "remote catalog fetch")
		if err != nil {
			// The local catalogs are still usable without the remote one.
			zapLog.Warn("remote catalog unavailable, continuing without it", zap.Error(err))
		} else if err := cat.Merge(remote, false); err != nil {
			zapLog.Fatal("remote catalog invalid", zap.Error(err))
		}
	}

	zapLog.Info("catalogs loaded",
		zap.Int("tasks", len(cat.TaskIDs())),
		zap.Int("options", len(cat.OptionIDs())),
	)

	comp := compiler.New(cat, compiler.Mode(cfg.Compiler.OutputMode), log)

	// --- Redis selection store (serve mode, or one-shot with -instance) ---
	var store *selection.RedisStore
	if cfg.Selections.Source == "redis" {
		var rdb *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			rdb, err = database.NewRedis(cfg.Redis)
			if err != nil {
				return err
			}
			return rdb.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer rdb.Close()
		store = selection.NewRedisStore(rdb, cfg.Selections.KeyPrefix, log)
		zapLog.Info("Redis connected successfully")
	}

	if *serve {
		runServer(ctx, cfg, cat, comp, store, obs, log, zapLog)
		return
	}

	if *taskID == "" {
		fmt.Fprintln(os.Stderr, "usage: override-compiler -task <id> [-selections file.json | -instance <id>]")
		os.Exit(2)
	}

	selections, err := loadSelections(ctx, cfg, cat, store, *selectionsPath, *instanceID, log)
	if err != nil {
		zapLog.Fatal("selections load failed", zap.Error(err))
	}

	start := time.Now()
	out := comp.Compile(*taskID, selections)
	obs.RecordCompile(ctx, cfg.Compiler.OutputMode)
	obs.RecordCompileDuration(ctx, time.Since(start), cfg.Compiler.OutputMode)

	encoded, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		zapLog.Fatal("override encode failed", zap.Error(err))
	}
	fmt.Println(string(encoded))
}

func loadSelections(ctx context.Context, cfg *config.Config, cat *catalog.Catalog, store *selection.RedisStore, path, instanceID string, log logger.Logger) (option.Store, error) {
	if path == "" {
		path = cfg.Selections.File
	}

	switch {
	case path != "":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		doc, err := selection.LoadFile(data)
		if err != nil {
			return nil, err
		}
		// Surface mismatches the engine would otherwise skip silently.
		if result := validation.ValidateSelections(doc, cat.Options()); !result.Valid {
			for _, msg := range result.GetErrorMessages() {
				log.Warn("selection document issue", map[string]interface{}{"issue": msg})
			}
		}
		return doc, nil

	case store != nil && instanceID != "":
		return store.Load(ctx, instanceID)

	default:
		return option.MapStore{}, nil
	}
}

func runServer(ctx context.Context, cfg *config.Config, cat *catalog.Catalog, comp *compiler.Compiler, store *selection.RedisStore, obs *observability.Observability, log logger.Logger, zapLog *zap.Logger) {
	errHandler := commonerrors.NewErrorHandler(log)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/debug/pprof/", http.DefaultServeMux)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})

	mux.HandleFunc("GET /v1/tasks/{id}/override", func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		taskID := r.PathValue("id")
		instanceID := r.URL.Query().Get("instance")

		reqLog := log.WithFields(map[string]interface{}{
			"requestId": requestID,
			"task":      taskID,
			"instance":  instanceID,
		})
		reqLog.Info("compiling override", nil)

		selections := option.Store(option.MapStore{})
		if store != nil && instanceID != "" {
			loaded, err := store.Load(r.Context(), instanceID)
			if err != nil {
				stdErr := errHandler.Handle(err)
				writeJSON(w, commonerrors.HTTPStatus(stdErr.Code), stdErr)
				return
			}
			selections = loaded
		}

		start := time.Now()
		out := comp.Compile(taskID, selections)
		obs.RecordCompile(r.Context(), cfg.Compiler.OutputMode)
		obs.RecordCompileDuration(r.Context(), time.Since(start), cfg.Compiler.OutputMode)

		writeJSON(w, http.StatusOK, out)
	})

	mux.HandleFunc("GET /v1/tasks", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"tasks": cat.TaskIDs(),
		})
	})

	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: mux,
	}

	go func() {
		zapLog.Info("override service listening", zap.String("addr", cfg.Server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	zapLog.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("shutdown failed", zap.Error(err))
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
