package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/openrelief/fieldsync/internal/config"
	"github.com/openrelief/fieldsync/internal/database"
	"github.com/openrelief/fieldsync/internal/identity"
	"github.com/openrelief/fieldsync/internal/media"
	"github.com/openrelief/fieldsync/internal/netmon"
	"github.com/openrelief/fieldsync/internal/remote"
	"github.com/openrelief/fieldsync/internal/services"
	"github.com/openrelief/fieldsync/internal/store"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Local record store
	localDB, err := database.NewSQLite(cfg.LocalDBPath)
	if err != nil {
		logger.Fatal("failed to open local store", zap.Error(err))
	}
	defer localDB.Close()
	stores := store.NewSQLiteStores(localDB)

	// Remote store
	pool, err := database.NewRemotePool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect remote store", zap.Error(err))
	}
	defer pool.Close()
	remoteStore := remote.NewPostgresStore(pool, cfg.RemoteCallTimeout)
	if err := remoteStore.EnsureSchema(ctx); err != nil {
		logger.Fatal("failed to prepare remote store", zap.Error(err))
	}

	// Media pipeline
	var pipeline media.Pipeline
	if cfg.MinioEndpoint != "" {
		pipeline, err = media.NewMinioPipeline(media.ObjectStoreConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
		if err != nil {
			logger.Fatal("failed to initialize media pipeline", zap.Error(err))
		}
	}

	// Connectivity
	monitor := netmon.NewManual(netmon.State{})
	prober := netmon.NewProber(monitor, cfg.ProbeURL, cfg.ProbeInterval, func() netmon.Technology {
		return netmon.Technology(cfg.Technology)
	})
	go prober.Run(ctx)

	idProvider := identity.NewTokenFileProvider(cfg.TokenPath, cfg.JWTSecret)

	var attachments *services.AttachmentEngine
	if pipeline != nil {
		attachments = services.NewAttachmentEngine(services.AttachmentEngineConfig{
			Incidents:         stores.Incidents,
			Pipeline:          pipeline,
			Remote:            remoteStore,
			Monitor:           monitor,
			Logger:            logger,
			MaxUploadAttempts: cfg.MaxUploadAttempts,
		})
	}

	orchestrator := services.NewOrchestrator(services.OrchestratorConfig{
		Incidents:         stores.Incidents,
		AidRequests:       stores.AidRequests,
		ShelterSites:      stores.ShelterSites,
		Volunteers:        stores.Volunteers,
		Remote:            remoteStore,
		Monitor:           monitor,
		Identity:          idProvider,
		Attachments:       attachments,
		Logger:            logger,
		SyncInterval:      cfg.SyncInterval,
		ReconnectDebounce: cfg.ReconnectDebounce,
	})
	orchestrator.Start(ctx)

	// Control API
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	router.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"status":  orchestrator.LastStatus(),
			"network": netmon.Classify(monitor.Current()).String(),
		})
	})

	router.Post("/sync", func(w http.ResponseWriter, r *http.Request) {
		result, err := orchestrator.FullSync(r.Context())
		if err != nil {
			logger.Error("manual sync failed", zap.Error(err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, result)
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: router,
	}

	// graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down agent")
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		server.Shutdown(shutdownCtx)
	}()

	logger.Info("starting field sync agent", zap.String("port", cfg.ServerPort))
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}

	logger.Info("agent stopped")
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
