package push

import (
	"time"

	"github.com/fernwick/ember/internal/model"
	"github.com/fernwick/ember/internal/schedule"
	"github.com/fernwick/ember/internal/store"
)

// StoreGateway implements schedule.Gateway on top of the trigger table.
// Registering a trigger only records it durably; the Scheduler delivers it
// when due. Handles are trigger row ids.
type StoreGateway struct {
	push *store.PushStore
}

func NewStoreGateway(pushStore *store.PushStore) *StoreGateway {
	return &StoreGateway{push: pushStore}
}

func (g *StoreGateway) ScheduleOneShot(p schedule.Payload, at time.Time) (int64, error) {
	t, err := g.push.CreateTrigger(model.Trigger{
		TaskID: p.TaskID,
		Kind:   model.TriggerOneShot,
		FireAt: &at,
		Title:  p.Title,
		Body:   p.Body,
	})
	if err != nil {
		return 0, err
	}
	return t.ID, nil
}

func (g *StoreGateway) ScheduleDaily(p schedule.Payload, hour, minute int) (int64, error) {
	t, err := g.push.CreateTrigger(model.Trigger{
		TaskID: p.TaskID,
		Kind:   model.TriggerDaily,
		Hour:   hour,
		Minute: minute,
		Title:  p.Title,
		Body:   p.Body,
	})
	if err != nil {
		return 0, err
	}
	return t.ID, nil
}

func (g *StoreGateway) ScheduleWeekly(p schedule.Payload, weekday time.Weekday, hour, minute int) (int64, error) {
	t, err := g.push.CreateTrigger(model.Trigger{
		TaskID:  p.TaskID,
		Kind:    model.TriggerWeekly,
		Weekday: int(weekday),
		Hour:    hour,
		Minute:  minute,
		Title:   p.Title,
		Body:    p.Body,
	})
	if err != nil {
		return 0, err
	}
	return t.ID, nil
}

func (g *StoreGateway) CancelAllForTask(taskID string) error {
	return g.push.DeleteTriggersForTask(taskID)
}
