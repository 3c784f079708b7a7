package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"roomhub/internal/models"
	"roomhub/internal/repository"

	"github.com/google/uuid"
)

type AutomationService struct {
	automations repository.AutomationRepo
	devices     repository.DeviceRepo
	sync        ConfigSync
	now         func() time.Time
}

func NewAutomationService(automations repository.AutomationRepo, devices repository.DeviceRepo, sync ConfigSync, now func() time.Time) *AutomationService {
	return &AutomationService{automations: automations, devices: devices, sync: sync, now: now}
}

func (s *AutomationService) List(ctx context.Context) ([]models.Automation, error) {
	return s.automations.List(ctx)
}

func (s *AutomationService) Get(ctx context.Context, id string) (models.Automation, error) {
	a, err := s.automations.GetByID(ctx, id)
	if err != nil {
		return models.Automation{}, mapRepoErr(err, "automation", id)
	}
	return a, nil
}

// Create assigns a new id, stores the automation and pushes fresh configs.
func (s *AutomationService) Create(ctx context.Context, a models.Automation) (models.Automation, error) {
	a.ID = uuid.NewString()
	saved, err := s.store(ctx, a)
	if err != nil {
		return models.Automation{}, err
	}
	s.sync.Push(ctx, saved)
	return saved, nil
}

// Update replaces an existing automation. The id in the path wins over the body.
func (s *AutomationService) Update(ctx context.Context, id string, a models.Automation) (models.Automation, error) {
	prev, err := s.automations.GetByID(ctx, id)
	if err != nil {
		return models.Automation{}, mapRepoErr(err, "automation", id)
	}
	a.ID = id
	saved, err := s.store(ctx, a)
	if err != nil {
		return models.Automation{}, err
	}
	// rooms the previous version touched need a refresh too
	s.sync.Push(ctx, saved, prev)
	return saved, nil
}

// store validates, resolves and persists a. Config push is left to the caller.
func (s *AutomationService) store(ctx context.Context, a models.Automation) (models.Automation, error) {
	a.Name = strings.TrimSpace(a.Name)
	if err := validateAutomation(a); err != nil {
		return models.Automation{}, err
	}
	if err := s.resolveDevices(ctx, a); err != nil {
		return models.Automation{}, err
	}

	a.UpdatedAt = s.now().UTC()
	if err := s.automations.Save(ctx, a); err != nil {
		return models.Automation{}, fmt.Errorf("%w: save automation %s: %v", ErrPersistence, a.ID, err)
	}
	return a, nil
}

func validateAutomation(a models.Automation) error {
	switch t := a.Trigger.(type) {
	case models.SensorTrigger:
		if t.DeviceID == "" {
			return validationf("sensor trigger needs a device")
		}
		if !t.Operator.Valid() {
			return validationf("unknown operator %q", t.Operator)
		}
	case models.ScheduleTrigger:
		if t.StartMinute < 0 || t.StartMinute >= models.MinutesPerDay {
			return validationf("schedule start out of range")
		}
		if t.EndMinute != nil && (*t.EndMinute < 0 || *t.EndMinute >= models.MinutesPerDay) {
			return validationf("schedule end out of range")
		}
		for _, d := range t.DaysOfWeek {
			if d < 0 || d > 6 {
				return validationf("day of week %d out of range 0..6", d)
			}
		}
	case nil:
		return validationf("trigger is required")
	}

	if len(a.Actions) == 0 {
		return validationf("at least one action is required")
	}
	for i, act := range a.Actions {
		if act.DeviceID == "" {
			return validationf("action %d needs a device", i)
		}
		if !act.Command.Valid() {
			return validationf("action %d: unknown command %q", i, act.Command)
		}
		if act.Duration != nil && *act.Duration < 0 {
			return validationf("action %d: negative duration", i)
		}
		if act.SecondaryShutoff != nil && act.SecondaryShutoff.DeviceID == "" {
			return validationf("action %d: shutoff needs a device", i)
		}
	}
	return nil
}

// resolveDevices checks every referenced device exists.
func (s *AutomationService) resolveDevices(ctx context.Context, a models.Automation) error {
	ids := a.DeviceIDs()
	for _, act := range a.Actions {
		if act.SecondaryShutoff != nil {
			ids = append(ids, act.SecondaryShutoff.DeviceID)
		}
	}
	for _, id := range ids {
		if _, err := s.devices.GetByID(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%w: device %q", ErrNotFound, id)
			}
			return fmt.Errorf("resolve device %s: %w", id, err)
		}
	}
	return nil
}
