// Package server wires the stores, handlers, reminder scheduler, and
// websocket hub into an http.Handler.
package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/fernwick/ember/internal/backup"
	"github.com/fernwick/ember/internal/handler"
	"github.com/fernwick/ember/internal/middleware"
	"github.com/fernwick/ember/internal/push"
	"github.com/fernwick/ember/internal/schedule"
	"github.com/fernwick/ember/internal/store"
	ws "github.com/fernwick/ember/internal/websocket"
)

type Server struct {
	db  *sql.DB
	hub *ws.Hub

	taskH     *handler.TaskHandler
	energyH   *handler.EnergyHandler
	settingsH *handler.SettingsHandler
	pushH     *handler.PushHandler
	backupH   *handler.BackupHandler

	taskStore     *store.TaskStore
	settingsStore *store.SettingsStore
	pushStore     *store.PushStore

	pushScheduler *push.Scheduler
	logger        *slog.Logger
}

func New(db *sql.DB, pushCfg push.Config, backupCfg backup.Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	taskStore := store.NewTaskStore(db)
	settingsStore := store.NewSettingsStore(db)
	pushStore := store.NewPushStore(db)

	resolver := schedule.NewResolver(push.NewStoreGateway(pushStore), logger.With("component", "schedule"))

	var pushSvc *push.Service
	var pushSched *push.Scheduler
	if pushCfg.VAPIDPublicKey != "" && pushCfg.VAPIDPrivateKey != "" {
		pushSvc = push.NewService(pushCfg.VAPIDPublicKey, pushCfg.VAPIDPrivateKey)
		pushSched = push.NewScheduler(pushSvc, pushStore, settingsStore, logger.With("component", "push"))
	}

	backupSvc := backup.NewService(backupCfg, taskStore, settingsStore, logger.With("component", "backup"))

	return &Server{
		db:            db,
		hub:           hub,
		taskH:         handler.NewTaskHandler(taskStore, settingsStore, resolver, hub, logger.With("component", "task")),
		energyH:       handler.NewEnergyHandler(taskStore, settingsStore, logger.With("component", "energy")),
		settingsH:     handler.NewSettingsHandler(settingsStore, taskStore, resolver, hub, logger.With("component", "settings")),
		pushH:         handler.NewPushHandler(pushStore, settingsStore, pushSvc, logger.With("component", "push_handler")),
		backupH:       handler.NewBackupHandler(backupSvc, hub, logger.With("component", "backup_handler")),
		taskStore:     taskStore,
		settingsStore: settingsStore,
		pushStore:     pushStore,
		pushScheduler: pushSched,
		logger:        logger,
	}
}

// TaskStore returns the task store for startup seeding.
func (s *Server) TaskStore() *store.TaskStore {
	return s.taskStore
}

// SettingsStore returns the settings store for startup configuration.
func (s *Server) SettingsStore() *store.SettingsStore {
	return s.settingsStore
}

// PushScheduler returns the notification scheduler, or nil when push is not
// configured.
func (s *Server) PushScheduler() *push.Scheduler {
	return s.pushScheduler
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)

	// Task API routes
	mux.HandleFunc("POST /api/tasks", s.taskH.Create)
	mux.HandleFunc("GET /api/tasks", s.taskH.List)
	mux.HandleFunc("GET /api/tasks/today", s.taskH.Today)
	mux.HandleFunc("GET /api/tasks/day/{day}", s.taskH.ForDay)
	mux.HandleFunc("GET /api/tasks/{id}", s.taskH.Get)
	mux.HandleFunc("PUT /api/tasks/{id}", s.taskH.Update)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.taskH.Delete)
	mux.HandleFunc("POST /api/tasks/{id}/toggle", s.taskH.Toggle)
	mux.HandleFunc("GET /api/tasks/{id}/stats", s.taskH.Stats)

	// Energy API routes
	mux.HandleFunc("GET /api/energy/today", s.energyH.Today)
	mux.HandleFunc("GET /api/energy/day/{day}", s.energyH.ForDay)

	// Settings API routes
	mux.HandleFunc("GET /api/settings", s.settingsH.Get)
	mux.HandleFunc("PUT /api/settings", s.settingsH.Update)

	// Push notification API routes
	mux.HandleFunc("GET /api/push/vapid-key", s.pushH.PublicKey)
	mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
	mux.HandleFunc("POST /api/push/unsubscribe", s.pushH.Unsubscribe)
	mux.HandleFunc("POST /api/push/test", s.pushH.TestNotification)

	// Backup API routes
	mux.HandleFunc("POST /api/backup", s.backupH.Snapshot)
	mux.HandleFunc("POST /api/backup/export", s.backupH.Export)
	mux.HandleFunc("POST /api/backup/restore", s.backupH.Restore)

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
