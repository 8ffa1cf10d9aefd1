package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/fernwick/ember/internal/model"
)

// PushStore persists push subscriptions, registered notification triggers,
// and the sent-notification log used for deduplication.
type PushStore struct {
	db *sql.DB
}

func NewPushStore(db *sql.DB) *PushStore {
	return &PushStore{db: db}
}

// --- Subscription methods ---

const subscriptionCols = `id, endpoint, p256dh_key, auth_key, device_name, created_at`

func scanSubscription(scanner interface{ Scan(...any) error }) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	err := scanner.Scan(&sub.ID, &sub.Endpoint, &sub.P256dhKey, &sub.AuthKey, &sub.DeviceName, &sub.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *PushStore) CreateSubscription(endpoint, p256dh, auth, deviceName string) (*model.PushSubscription, error) {
	_, err := s.db.Exec(
		`INSERT INTO push_subscriptions (endpoint, p256dh_key, auth_key, device_name) VALUES (?, ?, ?, ?)
		 ON CONFLICT(endpoint) DO UPDATE SET p256dh_key = excluded.p256dh_key, auth_key = excluded.auth_key, device_name = excluded.device_name`,
		endpoint, p256dh, auth, deviceName,
	)
	if err != nil {
		return nil, fmt.Errorf("insert subscription: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+subscriptionCols+` FROM push_subscriptions WHERE endpoint = ?`, endpoint)
	sub, err := scanSubscription(row)
	if err != nil {
		return nil, fmt.Errorf("get subscription: %w", err)
	}
	return sub, nil
}

func (s *PushStore) ListSubscriptions() ([]model.PushSubscription, error) {
	rows, err := s.db.Query(`SELECT ` + subscriptionCols + ` FROM push_subscriptions ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []model.PushSubscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

func (s *PushStore) DeleteByEndpoint(endpoint string) error {
	_, err := s.db.Exec(`DELETE FROM push_subscriptions WHERE endpoint = ?`, endpoint)
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	return nil
}

// --- Trigger methods ---

const triggerCols = `id, task_id, kind, weekday, hour, minute, fire_at, title, body, created_at`

func scanTrigger(scanner interface{ Scan(...any) error }) (*model.Trigger, error) {
	var t model.Trigger
	var fireAt sql.NullTime

	err := scanner.Scan(&t.ID, &t.TaskID, &t.Kind, &t.Weekday, &t.Hour, &t.Minute, &fireAt, &t.Title, &t.Body, &t.CreatedAt)
	if err != nil {
		return nil, err
	}

	if fireAt.Valid {
		t.FireAt = &fireAt.Time
	}
	return &t, nil
}

func (s *PushStore) CreateTrigger(t model.Trigger) (*model.Trigger, error) {
	var fireAt sql.NullTime
	if t.FireAt != nil {
		fireAt = sql.NullTime{Time: t.FireAt.UTC(), Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO notification_triggers (task_id, kind, weekday, hour, minute, fire_at, title, body) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TaskID, t.Kind, t.Weekday, t.Hour, t.Minute, fireAt, t.Title, t.Body,
	)
	if err != nil {
		return nil, fmt.Errorf("insert trigger: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+triggerCols+` FROM notification_triggers WHERE id = ?`, id)
	return scanTrigger(row)
}

func (s *PushStore) ListTriggers() ([]model.Trigger, error) {
	rows, err := s.db.Query(`SELECT ` + triggerCols + ` FROM notification_triggers ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list triggers: %w", err)
	}
	defer rows.Close()

	var triggers []model.Trigger
	for rows.Next() {
		t, err := scanTrigger(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trigger: %w", err)
		}
		triggers = append(triggers, *t)
	}
	return triggers, rows.Err()
}

func (s *PushStore) ListTriggersByTask(taskID string) ([]model.Trigger, error) {
	rows, err := s.db.Query(`SELECT `+triggerCols+` FROM notification_triggers WHERE task_id = ? ORDER BY id ASC`, taskID)
	if err != nil {
		return nil, fmt.Errorf("list triggers by task: %w", err)
	}
	defer rows.Close()

	var triggers []model.Trigger
	for rows.Next() {
		t, err := scanTrigger(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trigger: %w", err)
		}
		triggers = append(triggers, *t)
	}
	return triggers, rows.Err()
}

func (s *PushStore) DeleteTrigger(id int64) error {
	_, err := s.db.Exec(`DELETE FROM notification_triggers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete trigger: %w", err)
	}
	return nil
}

// DeleteTriggersForTask removes every trigger registered for the task.
func (s *PushStore) DeleteTriggersForTask(taskID string) error {
	_, err := s.db.Exec(`DELETE FROM notification_triggers WHERE task_id = ?`, taskID)
	if err != nil {
		return fmt.Errorf("delete triggers for task: %w", err)
	}
	return nil
}

// --- Sent-notification log ---

// WasSent reports whether the trigger already fired on the given date key.
func (s *PushStore) WasSent(triggerID int64, dateKey string) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM sent_notifications WHERE trigger_id = ? AND fired_on = ?`,
		triggerID, dateKey,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check sent: %w", err)
	}
	return count > 0, nil
}

// RecordSent marks the trigger as fired on the given date key.
func (s *PushStore) RecordSent(triggerID int64, dateKey string) error {
	_, err := s.db.Exec(
		`INSERT INTO sent_notifications (trigger_id, fired_on) VALUES (?, ?)
		 ON CONFLICT(trigger_id, fired_on) DO NOTHING`,
		triggerID, dateKey,
	)
	if err != nil {
		return fmt.Errorf("record sent: %w", err)
	}
	return nil
}

// CleanupSent prunes sent-log rows older than the cutoff.
func (s *PushStore) CleanupSent(before time.Time) error {
	_, err := s.db.Exec(`DELETE FROM sent_notifications WHERE created_at < ?`, before.UTC())
	if err != nil {
		return fmt.Errorf("cleanup sent: %w", err)
	}
	return nil
}
