package repository

import (
	"context"
	"database/sql"
	"errors"

	"roomhub/internal/models"
)

type DeviceSQLite struct {
	db *sql.DB
}

func NewDeviceSQLite(db *sql.DB) *DeviceSQLite { return &DeviceSQLite{db: db} }

const (
	deviceColumns = `id, name, type, subtype, room_id, owner_id, pin, state_on, state_value`

	selectDevicesByRoomSQL = `SELECT ` + deviceColumns + ` FROM devices WHERE room_id = ? ORDER BY id`
	selectDeviceSQL        = `SELECT ` + deviceColumns + ` FROM devices WHERE id = ?`

	updateDeviceStateSQL = `UPDATE devices SET state_on = ?, state_value = ? WHERE id = ?`

	upsertDeviceSQL = `
		INSERT INTO devices (` + deviceColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name=excluded.name,
			type=excluded.type,
			subtype=excluded.subtype,
			room_id=excluded.room_id,
			owner_id=excluded.owner_id,
			pin=excluded.pin,
			state_on=excluded.state_on,
			state_value=excluded.state_value
	`
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDevice(s rowScanner) (models.Device, error) {
	var d models.Device
	err := s.Scan(&d.ID, &d.Name, &d.Type, &d.Subtype, &d.RoomID, &d.OwnerID, &d.Pin, &d.State.On, &d.State.Value)
	return d, err
}

// ListByRoom returns the room's devices ordered by id, empty when there are none.
func (r *DeviceSQLite) ListByRoom(ctx context.Context, roomID string) ([]models.Device, error) {
	rows, err := r.db.QueryContext(ctx, selectDevicesByRoomSQL, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Device
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *DeviceSQLite) GetByID(ctx context.Context, id string) (models.Device, error) {
	d, err := scanDevice(r.db.QueryRowContext(ctx, selectDeviceSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Device{}, ErrNotFound
	}
	if err != nil {
		return models.Device{}, err
	}
	return d, nil
}

func (r *DeviceSQLite) UpdateState(ctx context.Context, id string, state models.DeviceState) error {
	res, err := r.db.ExecContext(ctx, updateDeviceStateSQL, state.On, state.Value, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *DeviceSQLite) Upsert(ctx context.Context, d models.Device) error {
	_, err := r.db.ExecContext(ctx, upsertDeviceSQL,
		d.ID, d.Name, d.Type, d.Subtype, d.RoomID, d.OwnerID, d.Pin, d.State.On, d.State.Value)
	return err
}
