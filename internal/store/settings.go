package store

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/fernwick/ember/internal/model"
)

// Settings keys.
const (
	SettingDarkMode         = "dark_mode"
	SettingNotifications    = "notifications"
	SettingUserName         = "user_name"
	SettingDailyEnergyLimit = "daily_energy_limit"
	SettingWakeUpTime       = "wake_up_time"
	SettingBedTime          = "bed_time"
	SettingVAPIDPublicKey   = "vapid_public_key"
	SettingVAPIDPrivateKey  = "vapid_private_key"
)

type SettingsStore struct {
	db *sql.DB
}

func NewSettingsStore(db *sql.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

func (s *SettingsStore) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, true, nil
}

func (s *SettingsStore) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}

// GetSettings returns the typed settings record, with defaults filled in for
// any key not yet stored.
func (s *SettingsStore) GetSettings() (model.Settings, error) {
	out := model.DefaultSettings()

	rows, err := s.db.Query(`SELECT key, value FROM settings`)
	if err != nil {
		return out, fmt.Errorf("get settings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return out, fmt.Errorf("scan setting: %w", err)
		}
		switch key {
		case SettingDarkMode:
			out.DarkMode = value == "true"
		case SettingNotifications:
			out.Notifications = value == "true"
		case SettingUserName:
			out.UserName = value
		case SettingDailyEnergyLimit:
			if n, err := strconv.Atoi(value); err == nil {
				out.DailyEnergyLimit = n
			}
		case SettingWakeUpTime:
			out.WakeUpTime = value
		case SettingBedTime:
			out.BedTime = value
		}
	}
	return out, rows.Err()
}

// SetSettings persists the full typed settings record.
func (s *SettingsStore) SetSettings(cfg model.Settings) error {
	pairs := []struct{ key, value string }{
		{SettingDarkMode, strconv.FormatBool(cfg.DarkMode)},
		{SettingNotifications, strconv.FormatBool(cfg.Notifications)},
		{SettingUserName, cfg.UserName},
		{SettingDailyEnergyLimit, strconv.Itoa(cfg.DailyEnergyLimit)},
		{SettingWakeUpTime, cfg.WakeUpTime},
		{SettingBedTime, cfg.BedTime},
	}
	for _, p := range pairs {
		if err := s.Set(p.key, p.value); err != nil {
			return err
		}
	}
	return nil
}
