package model

import "time"

// Trigger kinds for scheduled reminder notifications.
const (
	TriggerOneShot = "one_shot"
	TriggerDaily   = "daily"
	TriggerWeekly  = "weekly"
)

type PushSubscription struct {
	ID         int64     `json:"id"`
	Endpoint   string    `json:"endpoint"`
	P256dhKey  string    `json:"p256dh_key"`
	AuthKey    string    `json:"auth_key"`
	DeviceName string    `json:"device_name"`
	CreatedAt  time.Time `json:"created_at"`
}

// Trigger is a registered reminder for a task. One-shot triggers carry an
// absolute FireAt; daily triggers carry Hour/Minute; weekly triggers carry
// Weekday (0 = Sunday, matching time.Weekday) plus Hour/Minute.
type Trigger struct {
	ID        int64      `json:"id"`
	TaskID    string     `json:"task_id"`
	Kind      string     `json:"kind"`
	Weekday   int        `json:"weekday"`
	Hour      int        `json:"hour"`
	Minute    int        `json:"minute"`
	FireAt    *time.Time `json:"fire_at,omitempty"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	CreatedAt time.Time  `json:"created_at"`
}
