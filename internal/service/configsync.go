package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"roomhub/internal/logger"
	"roomhub/internal/models"
	"roomhub/internal/repository"
)

type ConfigSyncService struct {
	rooms       repository.RoomRepo
	devices     repository.DeviceRepo
	automations repository.AutomationRepo
	pusher      ConfigPusher
	tasks       *Tasks
	timeout     time.Duration
	log         *logger.Logger
}

func NewConfigSyncService(rooms repository.RoomRepo, devices repository.DeviceRepo, automations repository.AutomationRepo,
	pusher ConfigPusher, tasks *Tasks, timeout time.Duration, log *logger.Logger) *ConfigSyncService {
	return &ConfigSyncService{
		rooms:       rooms,
		devices:     devices,
		automations: automations,
		pusher:      pusher,
		tasks:       tasks,
		timeout:     timeout,
		log:         log,
	}
}

// Pull builds the snapshot a room controller runs on. Automations are ordered by
// id and devices by id, so repeated pulls without mutation are identical.
func (s *ConfigSyncService) Pull(ctx context.Context, roomID string) (models.RoomConfig, error) {
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return models.RoomConfig{}, mapRepoErr(err, "room", roomID)
	}
	devices, err := s.devices.ListByRoom(ctx, roomID)
	if err != nil {
		return models.RoomConfig{}, fmt.Errorf("list devices of room %s: %w", roomID, err)
	}

	known := make(map[string]models.Device, len(devices))
	cfg := models.RoomConfig{
		RoomID:      room.ID,
		RoomName:    room.Name,
		Address:     room.Address,
		Devices:     make([]models.ConfigDevice, 0, len(devices)),
		Automations: []models.ConfigAutomation{},
	}
	ids := make([]string, 0, len(devices))
	for _, d := range devices {
		known[d.ID] = d
		ids = append(ids, d.ID)
		cfg.Devices = append(cfg.Devices, models.ConfigDevice{ID: d.ID, Name: d.Name, Pin: d.Pin, Type: d.Type})
	}

	autos, err := s.automations.ListForRoomConfig(ctx, ids)
	if err != nil {
		return models.RoomConfig{}, fmt.Errorf("list automations of room %s: %w", roomID, err)
	}
	sort.Slice(autos, func(i, j int) bool { return autos[i].ID < autos[j].ID })

	lookup := func(id string) (models.Device, bool) {
		if d, ok := known[id]; ok {
			return d, true
		}
		d, err := s.devices.GetByID(ctx, id)
		if err != nil {
			return models.Device{}, false
		}
		known[id] = d
		return d, true
	}

	for _, a := range autos {
		if ca, ok := normalize(a, lookup); ok {
			cfg.Automations = append(cfg.Automations, ca)
		}
	}
	return cfg, nil
}

// normalize flattens an automation for the controller. Only the first action is
// surfaced. It reports false when the trigger cannot be expressed.
func normalize(a models.Automation, lookup func(string) (models.Device, bool)) (models.ConfigAutomation, bool) {
	ca := models.ConfigAutomation{ID: a.ID, Active: a.Active, Kind: models.KindOf(a.Trigger)}

	switch t := a.Trigger.(type) {
	case models.SensorTrigger:
		dev, ok := lookup(t.DeviceID)
		if !ok {
			return models.ConfigAutomation{}, false
		}
		ca.Condition = &models.ConfigCondition{
			DeviceID:   dev.ID,
			DeviceType: dev.Type,
			Threshold:  t.Threshold,
			Operator:   t.Operator,
		}
	case models.ScheduleTrigger:
		sch := &models.ConfigSchedule{
			StartHour:   t.StartMinute / 60,
			StartMinute: t.StartMinute % 60,
			DaysOfWeek:  t.DaysOfWeek,
		}
		if sch.DaysOfWeek == nil {
			sch.DaysOfWeek = []int{}
		}
		if t.EndMinute != nil {
			h, m := *t.EndMinute/60, *t.EndMinute%60
			sch.EndHour, sch.EndMinute = &h, &m
		}
		ca.Schedule = sch
	default:
		return models.ConfigAutomation{}, false
	}

	if len(a.Actions) > 0 {
		act := a.Actions[0]
		ca.Action = &models.ConfigAction{
			DeviceID: act.DeviceID,
			Command:  strings.ToUpper(string(act.Command)),
			Duration: actionDuration(act, a.Trigger),
		}
		if so := act.SecondaryShutoff; so != nil {
			if dev, ok := lookup(so.DeviceID); ok {
				ca.ShutoffCondition = &models.ConfigCondition{
					DeviceID:   dev.ID,
					DeviceType: dev.Type,
					Threshold:  so.Threshold,
					Operator:   models.OpLess,
				}
			}
		}
	}
	return ca, true
}

// Push resolves the rooms touched by the trigger device and every action device,
// then uploads a fresh snapshot to each addressed room in the background. Each
// room is pushed once even when several automations touch it. Failures are
// logged per room and never undo the mutation that caused them.
func (s *ConfigSyncService) Push(ctx context.Context, autos ...models.Automation) []string {
	roomIDs := make(map[string]struct{})
	for _, a := range autos {
		for _, id := range a.DeviceIDs() {
			dev, err := s.devices.GetByID(ctx, id)
			if err != nil {
				s.log.Warnw("push_device_unresolved", "automation_id", a.ID, "device_id", id, "error", err)
				continue
			}
			roomIDs[dev.RoomID] = struct{}{}
		}
	}

	scheduled := make([]string, 0, len(roomIDs))
	for id := range roomIDs {
		scheduled = append(scheduled, id)
	}
	sort.Strings(scheduled)

	out := scheduled[:0]
	for _, roomID := range scheduled {
		room, err := s.rooms.GetByID(ctx, roomID)
		if err != nil {
			s.log.Warnw("push_room_unresolved", "room_id", roomID, "error", err)
			continue
		}
		if !room.HasAddress() {
			continue
		}
		out = append(out, roomID)
		s.tasks.Go(ctx, "config_push", s.timeout, func(ctx context.Context) error {
			cfg, err := s.Pull(ctx, room.ID)
			if err != nil {
				return err
			}
			return s.pusher.PushConfig(ctx, room.Address, cfg)
		}, "room_id", roomID)
	}
	return out
}
