package push

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/fernwick/ember/internal/dateutil"
	"github.com/fernwick/ember/internal/model"
	"github.com/fernwick/ember/internal/store"
)

const (
	tickInterval = 60 * time.Second
	// A trigger whose time passed more than this long ago is skipped rather
	// than delivered absurdly late (e.g. after the service was down).
	fireGrace = 10 * time.Minute

	sentRetention = 30 * 24 * time.Hour
)

// Scheduler periodically scans registered triggers and delivers the ones
// that are due. Delivery failures are logged and never propagate; expired
// subscriptions are pruned.
type Scheduler struct {
	mu       sync.RWMutex
	service  *Service
	push     *store.PushStore
	settings *store.SettingsStore
	interval time.Duration
	logger   *slog.Logger
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewScheduler creates a trigger delivery scheduler.
func NewScheduler(svc *Service, pushStore *store.PushStore, settingsStore *store.SettingsStore, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		service:  svc,
		push:     pushStore,
		settings: settingsStore,
		interval: tickInterval,
		logger:   logger,
	}
}

// Start begins the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick(time.Now())
			}
		}
	}()
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (s *Scheduler) tick(now time.Time) {
	cfg, err := s.settings.GetSettings()
	if err != nil {
		s.logger.Error("load settings", "error", err)
		return
	}
	if !cfg.Notifications {
		return
	}

	triggers, err := s.push.ListTriggers()
	if err != nil {
		s.logger.Error("list triggers", "error", err)
		return
	}

	for _, trigger := range triggers {
		at, ok := dueAt(trigger, now)
		if !ok || at.After(now) || now.Sub(at) > fireGrace {
			continue
		}

		dateKey := dateutil.Key(at)
		sent, err := s.push.WasSent(trigger.ID, dateKey)
		if err != nil {
			s.logger.Error("check sent", "trigger_id", trigger.ID, "error", err)
			continue
		}
		if sent {
			continue
		}

		s.deliver(trigger)

		if err := s.push.RecordSent(trigger.ID, dateKey); err != nil {
			s.logger.Error("record sent", "trigger_id", trigger.ID, "error", err)
		}
		if trigger.Kind == model.TriggerOneShot {
			if err := s.push.DeleteTrigger(trigger.ID); err != nil {
				s.logger.Error("delete one-shot trigger", "trigger_id", trigger.ID, "error", err)
			}
		}
	}

	if err := s.push.CleanupSent(now.Add(-sentRetention)); err != nil {
		s.logger.Error("cleanup sent log", "error", err)
	}
}

// deliver sends the trigger's payload to every subscription, best-effort.
func (s *Scheduler) deliver(trigger model.Trigger) {
	subs, err := s.push.ListSubscriptions()
	if err != nil {
		s.logger.Error("list subscriptions", "trigger_id", trigger.ID, "error", err)
		return
	}

	payload := Payload{
		Title:  trigger.Title,
		Body:   trigger.Body,
		TaskID: trigger.TaskID,
		Tag:    "task-" + trigger.TaskID,
	}

	for _, sub := range subs {
		if err := s.service.Send(&sub, payload); err != nil {
			if errors.Is(err, ErrExpired) {
				s.push.DeleteByEndpoint(sub.Endpoint)
				s.logger.Info("pruned expired subscription", "endpoint", sub.Endpoint)
			} else {
				s.logger.Error("send reminder", "trigger_id", trigger.ID, "error", err)
			}
		}
	}
}

// dueAt returns the trigger's occurrence time on now's calendar day, or the
// stored fire time for one-shots. ok is false when the trigger has no
// occurrence today (wrong weekday, or a one-shot missing its fire time).
func dueAt(trigger model.Trigger, now time.Time) (time.Time, bool) {
	switch trigger.Kind {
	case model.TriggerOneShot:
		if trigger.FireAt == nil {
			return time.Time{}, false
		}
		return trigger.FireAt.In(now.Location()), true

	case model.TriggerDaily:
		return time.Date(now.Year(), now.Month(), now.Day(), trigger.Hour, trigger.Minute, 0, 0, now.Location()), true

	case model.TriggerWeekly:
		if int(now.Weekday()) != trigger.Weekday {
			return time.Time{}, false
		}
		return time.Date(now.Year(), now.Month(), now.Day(), trigger.Hour, trigger.Minute, 0, 0, now.Location()), true
	}
	return time.Time{}, false
}
