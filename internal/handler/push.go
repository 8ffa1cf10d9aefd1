package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/fernwick/ember/internal/push"
	"github.com/fernwick/ember/internal/store"
)

type PushHandler struct {
	pushStore     *store.PushStore
	settingsStore *store.SettingsStore
	service       *push.Service // nil when push is not configured
	logger        *slog.Logger
}

func NewPushHandler(ps *store.PushStore, ss *store.SettingsStore, svc *push.Service, logger *slog.Logger) *PushHandler {
	return &PushHandler{pushStore: ps, settingsStore: ss, service: svc, logger: logger}
}

// PublicKey returns the server's VAPID public key for the service worker.
func (h *PushHandler) PublicKey(w http.ResponseWriter, r *http.Request) {
	key, ok, err := h.settingsStore.Get(store.SettingVAPIDPublicKey)
	if err != nil {
		h.logger.Error("get vapid public key", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get public key")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "push not configured")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"public_key": key})
}

type subscribeRequest struct {
	Endpoint   string `json:"endpoint"`
	DeviceName string `json:"device_name"`
	Keys       struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

func (h *PushHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Endpoint == "" || req.Keys.P256dh == "" || req.Keys.Auth == "" {
		writeError(w, http.StatusBadRequest, "endpoint and keys are required")
		return
	}

	sub, err := h.pushStore.CreateSubscription(req.Endpoint, req.Keys.P256dh, req.Keys.Auth, req.DeviceName)
	if err != nil {
		h.logger.Error("create subscription", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save subscription")
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

type unsubscribeRequest struct {
	Endpoint string `json:"endpoint"`
}

func (h *PushHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	var req unsubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Endpoint == "" {
		writeError(w, http.StatusBadRequest, "endpoint is required")
		return
	}

	if err := h.pushStore.DeleteByEndpoint(req.Endpoint); err != nil {
		h.logger.Error("delete subscription", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete subscription")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// TestNotification sends a test push to every registered subscription so the
// user can verify their browser setup. Expired subscriptions found along the
// way are pruned.
func (h *PushHandler) TestNotification(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeError(w, http.StatusServiceUnavailable, "push not configured")
		return
	}

	subs, err := h.pushStore.ListSubscriptions()
	if err != nil {
		h.logger.Error("list subscriptions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list subscriptions")
		return
	}
	if len(subs) == 0 {
		writeError(w, http.StatusNotFound, "no subscriptions registered")
		return
	}

	payload := push.Payload{
		Title: "Ember",
		Body:  "Notifications are working!",
		Tag:   "test",
	}

	sent := 0
	for _, sub := range subs {
		if err := h.service.Send(&sub, payload); err != nil {
			if errors.Is(err, push.ErrExpired) {
				h.pushStore.DeleteByEndpoint(sub.Endpoint)
				continue
			}
			h.logger.Error("send test notification", "endpoint", sub.Endpoint, "error", err)
			continue
		}
		sent++
	}

	writeJSON(w, http.StatusOK, map[string]int{"sent": sent})
}
