package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fernwick/ember/internal/backup"
	"github.com/fernwick/ember/internal/database"
	"github.com/fernwick/ember/internal/logging"
	"github.com/fernwick/ember/internal/push"
	"github.com/fernwick/ember/internal/server"
	"github.com/fernwick/ember/internal/store"
)

func main() {
	// Optional .env for local development; environment wins over file values.
	godotenv.Load()

	logger := logging.Setup(os.Getenv("EMBER_LOG_LEVEL"))

	port := os.Getenv("EMBER_PORT")
	if port == "" {
		port = "8080"
	}
	dbPath := os.Getenv("EMBER_DB_PATH")
	if dbPath == "" {
		dbPath = "ember.db"
	}
	backupDir := os.Getenv("EMBER_BACKUP_DIR")
	if backupDir == "" {
		backupDir = "backups"
	}

	db, err := database.Open(dbPath)
	if err != nil {
		logger.Error("open database", "path", dbPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	settingsStore := store.NewSettingsStore(db)
	pushCfg, err := loadVAPIDKeys(settingsStore)
	if err != nil {
		logger.Error("configure push keys", "error", err)
		os.Exit(1)
	}

	srv := server.New(db, pushCfg, backup.Config{Dir: backupDir}, logger)

	cfg, err := srv.SettingsStore().GetSettings()
	if err != nil {
		logger.Error("load settings", "error", err)
		os.Exit(1)
	}
	if err := srv.TaskStore().EnsureSystemTasks(cfg.WakeUpTime, cfg.BedTime); err != nil {
		logger.Error("seed system tasks", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if sched := srv.PushScheduler(); sched != nil {
		sched.Start(ctx)
		defer sched.Stop()
	}

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("Ember running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

// loadVAPIDKeys reads the web push keypair from settings, generating and
// persisting one on first run.
func loadVAPIDKeys(ss *store.SettingsStore) (push.Config, error) {
	pub, pubOK, err := ss.Get(store.SettingVAPIDPublicKey)
	if err != nil {
		return push.Config{}, err
	}
	priv, privOK, err := ss.Get(store.SettingVAPIDPrivateKey)
	if err != nil {
		return push.Config{}, err
	}
	if pubOK && privOK {
		return push.Config{VAPIDPublicKey: pub, VAPIDPrivateKey: priv}, nil
	}

	pub, priv, err = push.GenerateVAPIDKeys()
	if err != nil {
		return push.Config{}, err
	}
	if err := ss.Set(store.SettingVAPIDPublicKey, pub); err != nil {
		return push.Config{}, err
	}
	if err := ss.Set(store.SettingVAPIDPrivateKey, priv); err != nil {
		return push.Config{}, err
	}
	return push.Config{VAPIDPublicKey: pub, VAPIDPrivateKey: priv}, nil
}
