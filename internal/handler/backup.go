package handler

import (
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/fernwick/ember/internal/backup"
	"github.com/fernwick/ember/internal/websocket"
)

type BackupHandler struct {
	service *backup.Service
	hub     *websocket.Hub
	logger  *slog.Logger
}

func NewBackupHandler(svc *backup.Service, hub *websocket.Hub, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{service: svc, hub: hub, logger: logger}
}

type backupRequest struct {
	Passphrase string `json:"passphrase"`
	Data       string `json:"data,omitempty"` // base64 snapshot, restore only
}

// Export streams an encrypted snapshot as a download.
func (h *BackupHandler) Export(w http.ResponseWriter, r *http.Request) {
	var req backupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Passphrase == "" {
		writeError(w, http.StatusBadRequest, "passphrase is required")
		return
	}

	data, err := h.service.Export(req.Passphrase)
	if err != nil {
		h.logger.Error("export snapshot", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to export backup")
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="ember-backup.json.enc"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Restore replaces tasks and settings from an uploaded snapshot.
func (h *BackupHandler) Restore(w http.ResponseWriter, r *http.Request) {
	var req backupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Passphrase == "" || req.Data == "" {
		writeError(w, http.StatusBadRequest, "passphrase and data are required")
		return
	}

	data, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		writeError(w, http.StatusBadRequest, "data must be base64")
		return
	}

	if err := h.service.Restore(data, req.Passphrase); err != nil {
		h.logger.Error("restore snapshot", "error", err)
		writeError(w, http.StatusBadRequest, "failed to restore backup")
		return
	}

	if h.hub != nil {
		h.hub.Broadcast(websocket.NewMessage("backup", "restored", "", nil))
	}
	w.WriteHeader(http.StatusNoContent)
}

// Snapshot writes an encrypted snapshot to the local backup directory.
func (h *BackupHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	var req backupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Passphrase == "" {
		writeError(w, http.StatusBadRequest, "passphrase is required")
		return
	}

	path, err := h.service.WriteLocal(req.Passphrase)
	if err != nil {
		h.logger.Error("write snapshot", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to write backup")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"file": filepath.Base(path)})
}
