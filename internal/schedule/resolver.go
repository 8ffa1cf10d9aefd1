// Package schedule translates a task's repeat rule and time-of-day into
// reminder trigger registrations, and keeps the registered set in sync as
// the task changes.
package schedule

import (
	"log/slog"
	"time"

	"github.com/fernwick/ember/internal/dateutil"
	"github.com/fernwick/ember/internal/model"
	"github.com/fernwick/ember/internal/repeat"
)

// Payload is the notification content attached to every trigger. TaskID is
// carried so triggers can be cancelled by owning task later.
type Payload struct {
	Title  string
	Body   string
	TaskID string
}

// Gateway is the notification system the resolver drives. Implementations
// own delivery; the resolver owns the policy of which triggers exist.
type Gateway interface {
	ScheduleOneShot(p Payload, at time.Time) (int64, error)
	ScheduleDaily(p Payload, hour, minute int) (int64, error)
	ScheduleWeekly(p Payload, weekday time.Weekday, hour, minute int) (int64, error)
	CancelAllForTask(taskID string) error
}

// Resolver reconciles a task's desired trigger set against the gateway.
type Resolver struct {
	gateway Gateway
	logger  *slog.Logger
}

func NewResolver(gateway Gateway, logger *slog.Logger) *Resolver {
	return &Resolver{gateway: gateway, logger: logger}
}

const genericBody = "It's time for your scheduled task!"

func payloadFor(task *model.Task) Payload {
	body := task.Description
	if body == "" {
		body = genericBody
	}
	return Payload{Title: task.Title, Body: body, TaskID: task.ID}
}

// Sync cancels every trigger registered for the task, then registers the
// desired set: a single one-shot when the task has no repeat days, a single
// daily trigger when all seven days are selected, and one weekly trigger per
// selected day otherwise. Registration failures are logged per trigger and
// never stop the remaining registrations; Sync itself never reports them to
// the caller, so a failed reminder cannot fail a task mutation.
func (r *Resolver) Sync(task *model.Task, now time.Time) {
	if err := r.gateway.CancelAllForTask(task.ID); err != nil {
		r.logger.Error("cancel triggers", "task_id", task.ID, "error", err)
	}

	hour, minute := dateutil.ParseClock(task.Time)
	payload := payloadFor(task)
	days := repeat.Normalize(task.RepeatDays)

	switch {
	case len(days) == 0:
		at := nextOccurrence(now, hour, minute)
		if _, err := r.gateway.ScheduleOneShot(payload, at); err != nil {
			r.logger.Error("schedule one-shot", "task_id", task.ID, "at", at, "error", err)
		}

	case len(days) == 7:
		if _, err := r.gateway.ScheduleDaily(payload, hour, minute); err != nil {
			r.logger.Error("schedule daily", "task_id", task.ID, "error", err)
		}

	default:
		for _, day := range days {
			wd, ok := repeat.Weekday(day)
			if !ok {
				continue
			}
			if _, err := r.gateway.ScheduleWeekly(payload, wd, hour, minute); err != nil {
				r.logger.Error("schedule weekly", "task_id", task.ID, "day", day, "error", err)
				continue
			}
		}
	}
}

// Cancel removes every trigger for the task without re-registering. Used on
// deletion and when notifications are disabled.
func (r *Resolver) Cancel(taskID string) {
	if err := r.gateway.CancelAllForTask(taskID); err != nil {
		r.logger.Error("cancel triggers", "task_id", taskID, "error", err)
	}
}

// nextOccurrence returns the next future time-of-day: today if hour:minute
// has not yet passed, else the same time tomorrow.
func nextOccurrence(now time.Time, hour, minute int) time.Time {
	at := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !at.After(now) {
		at = at.AddDate(0, 0, 1)
	}
	return at
}
