package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"watchhive/api"
	"watchhive/config"
	"watchhive/handlers"
	"watchhive/internal/database"
	"watchhive/services/accounts"
	"watchhive/services/lists"
	"watchhive/services/metadata"
	"watchhive/services/progress"
	"watchhive/services/recommend"
	"watchhive/services/sessions"
	"watchhive/services/watched"
	"watchhive/services/watchlist"
)

func main() {
	portOverride := flag.Int("port", 0, "override server port from config")
	flag.Parse()

	configPath := os.Getenv("WATCHHIVE_CONFIG")
	if configPath == "" {
		configPath = filepath.Join("data", "settings.json")
	}

	cfgManager := config.NewManager(configPath)
	settings, err := cfgManager.Load()
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}

	if settings.Log.File != "" {
		logDir := filepath.Dir(settings.Log.File)
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			log.Printf("[main] could not create log directory %s: %v", logDir, err)
		} else {
			fileWriter := &lumberjack.Logger{
				Filename:   settings.Log.File,
				MaxSize:    settings.Log.MaxSize,
				MaxBackups: settings.Log.MaxBackups,
				MaxAge:     settings.Log.MaxAge,
				Compress:   settings.Log.Compress,
			}
			log.SetOutput(io.MultiWriter(os.Stdout, fileWriter))
			log.SetFlags(log.LstdFlags | log.Lshortfile)
			log.Printf("[main] logging to %s", settings.Log.File)
		}
	}

	if *portOverride > 0 {
		settings.Server.Port = *portOverride
	}

	db, err := database.NewDB(database.Config{DatabasePath: settings.Database.Path})
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	conn := db.Connection()
	accountRepo := database.NewAccountRepository(conn)
	progressRepo := database.NewProgressRepository(conn)
	watchedRepo := database.NewWatchedRepository(conn)
	watchlistRepo := database.NewWatchlistRepository(conn)
	listsRepo := database.NewListsRepository(conn)

	metadataSvc := metadata.NewService(metadata.Config{
		APIKey:         settings.Metadata.TMDBAPIKey,
		Language:       settings.Metadata.Language,
		RequestTimeout: time.Duration(settings.Metadata.RequestTimeoutSeconds) * time.Second,
	})

	accountsSvc := accounts.NewService(accountRepo)
	sessionsSvc := sessions.NewService(time.Duration(settings.Sessions.TTLHours) * time.Hour)
	defer sessionsSvc.Close()

	progressSvc := progress.NewService(metadataSvc, progressRepo, watchedRepo)
	watchedSvc := watched.NewService(watchedRepo)
	watchlistSvc := watchlist.NewService(watchlistRepo)
	listsSvc := lists.NewService(listsRepo)
	recommendSvc := recommend.NewService(metadataSvc)

	router := api.NewRouter()
	api.Register(router, api.Handlers{
		Auth:      handlers.NewAuthHandler(accountsSvc, sessionsSvc),
		Progress:  handlers.NewProgressHandler(progressSvc),
		Watched:   handlers.NewWatchedHandler(watchedSvc),
		Watchlist: handlers.NewWatchlistHandler(watchlistSvc),
		Lists:     handlers.NewListsHandler(listsSvc),
		Recommend: handlers.NewRecommendHandler(recommendSvc),
	}, sessionsSvc)

	addr := fmt.Sprintf("%s:%d", settings.Server.Host, settings.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("[main] listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)
	<-shutdownChan
	log.Println("[main] shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[main] forced shutdown: %v", err)
	}
	log.Println("[main] stopped")
}
