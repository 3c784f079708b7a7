package repository_test

import (
	"errors"
	"regexp"
	"testing"

	"roomhub/internal/models"
	"roomhub/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
)

var deviceCols = []string{"id", "name", "type", "subtype", "room_id", "owner_id", "pin", "state_on", "state_value"}

func TestDeviceSQLite_ListByRoom(t *testing.T) {
	db, mock := newMock(t)
	repo := repository.NewDeviceSQLite(db)

	rows := sqlmock.NewRows(deviceCols).
		AddRow("d1", "Thermo", "temperature", "", "r1", "u1", 4, false, 0.0).
		AddRow("d2", "Fan", "actuator", "fan", "r1", "u1", 5, true, 100.0)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, type, subtype, room_id, owner_id, pin, state_on, state_value FROM devices WHERE room_id = ? ORDER BY id`)).
		WithArgs("r1").
		WillReturnRows(rows)

	got, err := repo.ListByRoom(testCtx(t), "r1")
	if err != nil {
		t.Fatalf("ListByRoom: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 devices, got %d", len(got))
	}
	if got[0].Type != models.DeviceTemperature || got[0].Pin != 4 {
		t.Fatalf("unexpected first device: %+v", got[0])
	}
	if got[1].Subtype != "fan" || !got[1].State.On || got[1].State.Value != 100 {
		t.Fatalf("unexpected second device: %+v", got[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestDeviceSQLite_GetByID_NotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := repository.NewDeviceSQLite(db)

	mock.ExpectQuery("FROM devices WHERE id = ?").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(deviceCols))

	_, err := repo.GetByID(testCtx(t), "missing")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestDeviceSQLite_UpdateState(t *testing.T) {
	db, mock := newMock(t)
	repo := repository.NewDeviceSQLite(db)

	q := regexp.QuoteMeta(`UPDATE devices SET state_on = ?, state_value = ? WHERE id = ?`)
	mock.ExpectExec(q).WithArgs(true, 100.0, "d2").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs(false, 0.0, "ghost").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.UpdateState(testCtx(t), "d2", models.DeviceState{On: true, Value: 100}); err != nil {
		t.Fatalf("UpdateState: %v", err)
	}
	if err := repo.UpdateState(testCtx(t), "ghost", models.DeviceState{}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("want ErrNotFound for unknown device, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestRoomSQLite_GetByID(t *testing.T) {
	db, mock := newMock(t)
	repo := repository.NewRoomSQLite(db)

	q := regexp.QuoteMeta(`SELECT id, name, address FROM rooms WHERE id = ?`)
	mock.ExpectQuery(q).WithArgs("r1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "address"}).AddRow("r1", "Kitchen", "10.0.0.5"))
	mock.ExpectQuery(q).WithArgs("r2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "address"}))

	room, err := repo.GetByID(testCtx(t), "r1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if room.Name != "Kitchen" || !room.HasAddress() {
		t.Fatalf("unexpected room: %+v", room)
	}
	if _, err := repo.GetByID(testCtx(t), "r2"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}
