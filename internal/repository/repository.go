package repository

import (
	"context"
	"database/sql"
	"errors"

	"roomhub/internal/models"
)

// ErrNotFound is returned when a lookup by id matches no row.
var ErrNotFound = errors.New("record not found")

type RoomRepo interface {
	GetByID(ctx context.Context, id string) (models.Room, error)
	Upsert(ctx context.Context, r models.Room) error
}

type DeviceRepo interface {
	ListByRoom(ctx context.Context, roomID string) ([]models.Device, error)
	GetByID(ctx context.Context, id string) (models.Device, error)
	UpdateState(ctx context.Context, id string, state models.DeviceState) error
	Upsert(ctx context.Context, d models.Device) error
}

type AutomationRepo interface {
	// ListForEvaluation returns active automations a report from a room holding
	// deviceIDs must evaluate: sensor triggers on one of the devices, and schedule
	// triggers with at least one action on one of the devices.
	ListForEvaluation(ctx context.Context, deviceIDs []string) ([]models.Automation, error)
	// ListForRoomConfig returns active automations whose trigger device or any
	// action device is one of deviceIDs.
	ListForRoomConfig(ctx context.Context, deviceIDs []string) ([]models.Automation, error)
	List(ctx context.Context) ([]models.Automation, error)
	GetByID(ctx context.Context, id string) (models.Automation, error)
	Save(ctx context.Context, a models.Automation) error
}

type DataPointRepo interface {
	InsertBatch(ctx context.Context, points []models.DeviceDataPoint) error
	List(ctx context.Context, f models.DataFilter) ([]models.DeviceDataPoint, error)
}

type Repository struct {
	Rooms       RoomRepo
	Devices     DeviceRepo
	Automations AutomationRepo
	DataPoints  DataPointRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Rooms:       NewRoomSQLite(db),
		Devices:     NewDeviceSQLite(db),
		Automations: NewAutomationSQLite(db),
		DataPoints:  NewDataPointSQLite(db),
	}
}
