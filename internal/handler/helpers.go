package handler

import (
	"encoding/json"
	"net/http"
	"time"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// validClock reports whether s is a well-formed "HH:MM" 24-hour time.
func validClock(s string) bool {
	_, err := time.Parse("15:04", s)
	return err == nil
}
