package model

import "time"

type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Settings holds the user-tunable preferences persisted in the settings table.
type Settings struct {
	DarkMode         bool   `json:"dark_mode"`
	Notifications    bool   `json:"notifications"`
	UserName         string `json:"user_name"`
	DailyEnergyLimit int    `json:"daily_energy_limit"`
	WakeUpTime       string `json:"wake_up_time"` // "HH:MM"
	BedTime          string `json:"bed_time"`     // "HH:MM"
}

// DefaultSettings are applied for any key missing from the settings table.
func DefaultSettings() Settings {
	return Settings{
		Notifications:    true,
		DailyEnergyLimit: 20,
		WakeUpTime:       "06:00",
		BedTime:          "22:00",
	}
}
