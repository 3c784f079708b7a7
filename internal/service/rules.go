package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"roomhub/internal/logger"
	"roomhub/internal/models"
	"roomhub/internal/repository"
)

// RuleEngine evaluates sensor and schedule triggers against one report.
// Schedules have no timer of their own: they are checked when a report arrives
// for a room holding one of their action devices.
type RuleEngine struct {
	automations repository.AutomationRepo
	devices     repository.DeviceRepo
	rooms       repository.RoomRepo
	dispatcher  Dispatcher
	guard       FiringGuard
	loc         *time.Location
	now         func() time.Time
	log         *logger.Logger
}

func NewRuleEngine(automations repository.AutomationRepo, devices repository.DeviceRepo, rooms repository.RoomRepo,
	dispatcher Dispatcher, guard FiringGuard, loc *time.Location, now func() time.Time, log *logger.Logger) *RuleEngine {
	return &RuleEngine{
		automations: automations,
		devices:     devices,
		rooms:       rooms,
		dispatcher:  dispatcher,
		guard:       guard,
		loc:         loc,
		now:         now,
		log:         log,
	}
}

// Evaluate runs every relevant automation concurrently and returns once all
// dispatches are handed off.
func (e *RuleEngine) Evaluate(ctx context.Context, readings map[string]any, devices []models.Device) error {
	ids := make([]string, len(devices))
	inRoom := make(map[string]models.Device, len(devices))
	for i, d := range devices {
		ids[i] = d.ID
		inRoom[d.ID] = d
	}

	autos, err := e.automations.ListForEvaluation(ctx, ids)
	if err != nil {
		return fmt.Errorf("list automations: %w", err)
	}
	if len(autos) == 0 {
		return nil
	}

	now := e.now().In(e.loc)
	var wg sync.WaitGroup
	for _, a := range autos {
		wg.Add(1)
		go func(a models.Automation) {
			defer wg.Done()
			if e.satisfied(ctx, a, readings, inRoom, now) {
				e.fire(ctx, a)
			}
		}(a)
	}
	wg.Wait()
	return nil
}

func (e *RuleEngine) satisfied(ctx context.Context, a models.Automation, readings map[string]any, inRoom map[string]models.Device, now time.Time) bool {
	switch t := a.Trigger.(type) {
	case models.ScheduleTrigger:
		if now.Hour()*60+now.Minute() != t.StartMinute {
			return false
		}
		if e.guard != nil && !e.guard.Acquire(ctx, a.ID, now.Truncate(time.Minute)) {
			e.log.Debugw("automation_deduplicated", "automation_id", a.ID)
			return false
		}
		return true
	case models.SensorTrigger:
		dev, ok := inRoom[t.DeviceID]
		if !ok {
			return false
		}
		raw, ok := reportValue(readings, dev.Type)
		if !ok {
			return false
		}
		value, ok := numeric(raw)
		if !ok {
			e.log.Debugw("reading_not_numeric", "automation_id", a.ID, "device_id", dev.ID, "value", raw)
			return false
		}
		return t.Operator.Compare(value, t.Threshold)
	default:
		return false
	}
}

// fire dispatches every action in order. Actions whose device or room cannot be
// resolved, or whose room has no address, are skipped.
func (e *RuleEngine) fire(ctx context.Context, a models.Automation) {
	e.log.Infow("automation_fired", "automation_id", a.ID, "kind", models.KindOf(a.Trigger), "actions", len(a.Actions))
	for _, act := range a.Actions {
		dev, err := e.devices.GetByID(ctx, act.DeviceID)
		if err != nil {
			e.log.Warnw("action_device_unresolved", "automation_id", a.ID, "device_id", act.DeviceID, "error", err)
			continue
		}
		room, err := e.rooms.GetByID(ctx, dev.RoomID)
		if err != nil {
			e.log.Warnw("action_room_unresolved", "automation_id", a.ID, "room_id", dev.RoomID, "error", err)
			continue
		}
		if !room.HasAddress() {
			continue
		}
		e.dispatcher.Dispatch(ctx, room, DispatchCommand{
			DeviceID: act.DeviceID,
			Command:  act.Command,
			Duration: actionDuration(act, a.Trigger),
		})
	}
}

// actionDuration is the explicit action duration, else the schedule window, else 0.
func actionDuration(act models.Action, t models.Trigger) int {
	if act.HasDuration() {
		return *act.Duration
	}
	if st, ok := t.(models.ScheduleTrigger); ok {
		return st.WindowSeconds()
	}
	return 0
}
