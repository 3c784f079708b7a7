package service

import (
	"context"
	"fmt"

	"roomhub/internal/logger"
	"roomhub/internal/models"
	"roomhub/internal/repository"
)

const (
	defaultHistoryLimit = 100
	maxHistoryLimit     = 1000

	stateValueOn  = 100
	stateValueOff = 0
)

type DeviceControlService struct {
	devices    repository.DeviceRepo
	rooms      repository.RoomRepo
	points     repository.DataPointRepo
	dispatcher Dispatcher
	log        *logger.Logger
}

func NewDeviceControlService(devices repository.DeviceRepo, rooms repository.RoomRepo, points repository.DataPointRepo,
	dispatcher Dispatcher, log *logger.Logger) *DeviceControlService {
	return &DeviceControlService{devices: devices, rooms: rooms, points: points, dispatcher: dispatcher, log: log}
}

// Command records the requested state and forwards it to the device's room.
// No data point is written; readings only come from controllers. A room that
// cannot be resolved leaves the state recorded and nothing dispatched.
func (s *DeviceControlService) Command(ctx context.Context, deviceID string, cmd models.Command, duration *int) (models.Device, error) {
	if !cmd.Valid() {
		return models.Device{}, validationf("unknown command %q", cmd)
	}
	if duration != nil && *duration < 0 {
		return models.Device{}, validationf("negative duration")
	}

	dev, err := s.devices.GetByID(ctx, deviceID)
	if err != nil {
		return models.Device{}, mapRepoErr(err, "device", deviceID)
	}

	state := models.DeviceState{On: cmd == models.CommandOn, Value: stateValueOff}
	if state.On {
		state.Value = stateValueOn
	}
	if err := s.devices.UpdateState(ctx, dev.ID, state); err != nil {
		return models.Device{}, fmt.Errorf("%w: update state of %s: %v", ErrPersistence, dev.ID, err)
	}
	dev.State = state

	room, err := s.rooms.GetByID(ctx, dev.RoomID)
	if err != nil {
		s.log.Warnw("command_room_unresolved", "device_id", dev.ID, "room_id", dev.RoomID, "error", err)
		return dev, nil
	}
	d := 0
	if duration != nil {
		d = *duration
	}
	s.dispatcher.Dispatch(ctx, room, DispatchCommand{DeviceID: dev.ID, Command: cmd, Duration: d})
	return dev, nil
}

// History lists readings of one device newest first.
func (s *DeviceControlService) History(ctx context.Context, f models.DataFilter) ([]models.DeviceDataPoint, error) {
	if f.DeviceID == "" {
		return nil, validationf("device id is required")
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.From.After(f.To) {
		return nil, validationf("invalid time range: from must be <= to")
	}
	switch {
	case f.Limit < 0:
		return nil, validationf("limit must be positive")
	case f.Limit == 0:
		f.Limit = defaultHistoryLimit
	case f.Limit > maxHistoryLimit:
		f.Limit = maxHistoryLimit
	}

	if _, err := s.devices.GetByID(ctx, f.DeviceID); err != nil {
		return nil, mapRepoErr(err, "device", f.DeviceID)
	}
	return s.points.List(ctx, f)
}
