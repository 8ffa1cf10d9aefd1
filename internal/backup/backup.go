// Package backup produces and restores encrypted snapshots of the task
// collection and settings. A snapshot is a JSON document sealed with
// AES-256-GCM under an Argon2id-derived key; the passphrase never touches
// disk.
package backup

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fernwick/ember/internal/model"
	"github.com/fernwick/ember/internal/store"
)

const (
	snapshotVersion = 1
	filePrefix      = "ember-backup-"
	fileSuffix      = ".json.enc"
)

// Snapshot is the plaintext layout of a backup payload.
type Snapshot struct {
	Version   int            `json:"version"`
	CreatedAt time.Time      `json:"created_at"`
	Tasks     []model.Task   `json:"tasks"`
	Settings  model.Settings `json:"settings"`
}

// Config holds backup service configuration.
type Config struct {
	Dir       string // directory for local snapshot files; empty disables WriteLocal
	KeepCount int    // snapshots retained after pruning; <= 0 means keep 10
}

type Service struct {
	cfg           Config
	taskStore     *store.TaskStore
	settingsStore *store.SettingsStore
	logger        *slog.Logger
}

func NewService(cfg Config, ts *store.TaskStore, ss *store.SettingsStore, logger *slog.Logger) *Service {
	if cfg.KeepCount <= 0 {
		cfg.KeepCount = 10
	}
	return &Service{cfg: cfg, taskStore: ts, settingsStore: ss, logger: logger}
}

// Export serializes the full task collection and settings and seals the
// result with the passphrase.
func (s *Service) Export(passphrase string) ([]byte, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("passphrase is required")
	}

	tasks, err := s.taskStore.List()
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	cfg, err := s.settingsStore.GetSettings()
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}

	plaintext, err := json.Marshal(Snapshot{
		Version:   snapshotVersion,
		CreatedAt: time.Now().UTC(),
		Tasks:     tasks,
		Settings:  cfg,
	})
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return Encrypt(plaintext, passphrase)
}

// Restore decrypts a snapshot and replaces the task collection and settings
// with its contents. A wrong passphrase or corrupted payload fails before
// anything is touched.
func (s *Service) Restore(data []byte, passphrase string) error {
	plaintext, err := Decrypt(data, passphrase)
	if err != nil {
		return err
	}

	var snap Snapshot
	if err := json.Unmarshal(plaintext, &snap); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Version != snapshotVersion {
		return fmt.Errorf("unsupported snapshot version %d", snap.Version)
	}

	if err := s.taskStore.ReplaceAll(snap.Tasks); err != nil {
		return fmt.Errorf("restore tasks: %w", err)
	}
	if err := s.settingsStore.SetSettings(snap.Settings); err != nil {
		return fmt.Errorf("restore settings: %w", err)
	}

	s.logger.Info("snapshot restored", "tasks", len(snap.Tasks), "created_at", snap.CreatedAt)
	return nil
}

// WriteLocal exports a snapshot to the configured directory and prunes old
// files beyond the retention count. Returns the written file path.
func (s *Service) WriteLocal(passphrase string) (string, error) {
	if s.cfg.Dir == "" {
		return "", fmt.Errorf("backup directory not configured")
	}
	if err := os.MkdirAll(s.cfg.Dir, 0700); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}

	data, err := s.Export(passphrase)
	if err != nil {
		return "", err
	}

	name := filePrefix + time.Now().UTC().Format("2006-01-02T150405Z") + fileSuffix
	path := filepath.Join(s.cfg.Dir, name)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	if err := s.prune(); err != nil {
		s.logger.Warn("prune old snapshots", "error", err)
	}
	return path, nil
}

// prune deletes the oldest snapshot files beyond KeepCount. The timestamped
// filenames sort chronologically, so lexicographic order is enough.
func (s *Service) prune() error {
	entries, err := os.ReadDir(s.cfg.Dir)
	if err != nil {
		return err
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), filePrefix) && strings.HasSuffix(e.Name(), fileSuffix) {
			names = append(names, e.Name())
		}
	}
	if len(names) <= s.cfg.KeepCount {
		return nil
	}

	sort.Strings(names)
	for _, name := range names[:len(names)-s.cfg.KeepCount] {
		if err := os.Remove(filepath.Join(s.cfg.Dir, name)); err != nil {
			return err
		}
	}
	return nil
}
