package repository_test

import (
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"roomhub/internal/models"
	"roomhub/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
)

var (
	automationCols = []string{"id", "name", "active", "trigger_kind", "trigger_device_id", "trigger_operator",
		"trigger_threshold", "schedule_start", "schedule_end", "schedule_days", "updated_at"}
	actionCols = []string{"automation_id", "device_id", "command", "duration_s", "shutoff_device_id", "shutoff_threshold"}
)

func TestAutomationSQLite_ListForEvaluation_EmptyIDsSkipsQuery(t *testing.T) {
	db, mock := newMock(t)
	repo := repository.NewAutomationSQLite(db)

	got, err := repo.ListForEvaluation(testCtx(t), nil)
	if err != nil || got != nil {
		t.Fatalf("want (nil, nil), got (%v, %v)", got, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestAutomationSQLite_ListForEvaluation_DecodesTriggersAndActions(t *testing.T) {
	db, mock := newMock(t)
	repo := repository.NewAutomationSQLite(db)

	ts := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM automations a\s+WHERE a.active = 1 AND \(\s+\(a.trigger_kind = 'sensor'`).
		WithArgs("d1", "d2", "d1", "d2").
		WillReturnRows(sqlmock.NewRows(automationCols).
			AddRow("a1", "hot", true, "sensor", "d1", ">", 25.0, nil, nil, nil, ts).
			AddRow("a2", "morning", true, "schedule", nil, nil, nil, 1410, 15, "[1,2,3]", ts))

	mock.ExpectQuery(`FROM automation_actions WHERE automation_id IN \(\?, \?\)`).
		WithArgs("a1", "a2").
		WillReturnRows(sqlmock.NewRows(actionCols).
			AddRow("a1", "d2", "on", nil, "d1", 22.5).
			AddRow("a1", "d3", "off", 30, nil, nil).
			AddRow("a2", "d2", "on", nil, nil, nil))

	got, err := repo.ListForEvaluation(testCtx(t), []string{"d1", "d2"})
	if err != nil {
		t.Fatalf("ListForEvaluation: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 automations, got %d", len(got))
	}

	st, ok := got[0].Trigger.(models.SensorTrigger)
	if !ok || st.DeviceID != "d1" || st.Operator != models.OpGreater || st.Threshold != 25 {
		t.Fatalf("unexpected sensor trigger: %#v", got[0].Trigger)
	}
	if len(got[0].Actions) != 2 {
		t.Fatalf("want 2 actions on a1, got %d", len(got[0].Actions))
	}
	first := got[0].Actions[0]
	if first.DeviceID != "d2" || first.Duration != nil || first.SecondaryShutoff == nil || first.SecondaryShutoff.Threshold != 22.5 {
		t.Fatalf("unexpected first action: %+v", first)
	}
	if d := got[0].Actions[1].Duration; d == nil || *d != 30 {
		t.Fatalf("want duration 30 on second action, got %v", d)
	}

	sch, ok := got[1].Trigger.(models.ScheduleTrigger)
	if !ok || sch.StartMinute != 1410 || sch.EndMinute == nil || *sch.EndMinute != 15 || len(sch.DaysOfWeek) != 3 {
		t.Fatalf("unexpected schedule trigger: %#v", got[1].Trigger)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestAutomationSQLite_GetByID_NotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := repository.NewAutomationSQLite(db)

	mock.ExpectQuery(`FROM automations a WHERE a.id = \?`).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(automationCols))

	if _, err := repo.GetByID(testCtx(t), "nope"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestAutomationSQLite_Save_ReplacesActionsInTx(t *testing.T) {
	db, mock := newMock(t)
	repo := repository.NewAutomationSQLite(db)

	isUTC := sqlmockArgumentFunc(func(v driver.Value) bool {
		tm, ok := v.(time.Time)
		return ok && tm.Location() == time.UTC
	})

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO automations`).
		WithArgs("a1", "hot", true, "sensor", "d1", ">", 25.0, nil, nil, nil, isUTC).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM automation_actions WHERE automation_id = ?`)).
		WithArgs("a1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`INSERT INTO automation_actions`).
		WithArgs("a1", 0, "d2", "on", 60, "d1", 22.5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO automation_actions`).
		WithArgs("a1", 1, "d3", "off", nil, nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Save(testCtx(t), models.Automation{
		ID:      "a1",
		Name:    "hot",
		Active:  true,
		Trigger: models.SensorTrigger{DeviceID: "d1", Operator: models.OpGreater, Threshold: 25},
		Actions: []models.Action{
			{DeviceID: "d2", Command: models.CommandOn, Duration: intPtr(60), SecondaryShutoff: &models.Shutoff{DeviceID: "d1", Threshold: 22.5}},
			{DeviceID: "d3", Command: models.CommandOff},
		},
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestAutomationSQLite_Save_RollsBackOnActionFailure(t *testing.T) {
	db, mock := newMock(t)
	repo := repository.NewAutomationSQLite(db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO automations`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM automation_actions`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO automation_actions`).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.Save(testCtx(t), models.Automation{
		ID:      "a2",
		Active:  true,
		Trigger: models.ScheduleTrigger{StartMinute: 480, EndMinute: intPtr(510)},
		Actions: []models.Action{{DeviceID: "d2", Command: models.CommandOn}},
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestAutomationSQLite_Save_RejectsNilTrigger(t *testing.T) {
	db, mock := newMock(t)
	repo := repository.NewAutomationSQLite(db)

	if err := repo.Save(testCtx(t), models.Automation{ID: "a3"}); err == nil {
		t.Fatalf("expected error for missing trigger")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}
