package repository

import (
	"context"
	"database/sql"
	"errors"

	"roomhub/internal/models"
)

type RoomSQLite struct {
	db *sql.DB
}

func NewRoomSQLite(db *sql.DB) *RoomSQLite { return &RoomSQLite{db: db} }

const (
	selectRoomSQL = `SELECT id, name, address FROM rooms WHERE id = ?`

	upsertRoomSQL = `
		INSERT INTO rooms (id, name, address) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name=excluded.name, address=excluded.address
	`
)

// GetByID returns ErrNotFound when the room does not exist.
func (r *RoomSQLite) GetByID(ctx context.Context, id string) (models.Room, error) {
	var room models.Room
	err := r.db.QueryRowContext(ctx, selectRoomSQL, id).Scan(&room.ID, &room.Name, &room.Address)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Room{}, ErrNotFound
	}
	if err != nil {
		return models.Room{}, err
	}
	return room, nil
}

func (r *RoomSQLite) Upsert(ctx context.Context, room models.Room) error {
	_, err := r.db.ExecContext(ctx, upsertRoomSQL, room.ID, room.Name, room.Address)
	return err
}
