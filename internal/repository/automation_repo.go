package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"roomhub/internal/models"
)

type AutomationSQLite struct {
	db *sql.DB
}

func NewAutomationSQLite(db *sql.DB) *AutomationSQLite { return &AutomationSQLite{db: db} }

const (
	automationColumns = `a.id, a.name, a.active, a.trigger_kind, a.trigger_device_id, a.trigger_operator,
		a.trigger_threshold, a.schedule_start, a.schedule_end, a.schedule_days, a.updated_at`

	selectAutomationSQL  = `SELECT ` + automationColumns + ` FROM automations a WHERE a.id = ?`
	selectAutomationsSQL = `SELECT ` + automationColumns + ` FROM automations a ORDER BY a.id`

	selectActionsSQL = `
		SELECT automation_id, device_id, command, duration_s, shutoff_device_id, shutoff_threshold
		FROM automation_actions WHERE automation_id IN (%s)
		ORDER BY automation_id, position
	`

	upsertAutomationSQL = `
		INSERT INTO automations (id, name, active, trigger_kind, trigger_device_id, trigger_operator,
			trigger_threshold, schedule_start, schedule_end, schedule_days, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name=excluded.name,
			active=excluded.active,
			trigger_kind=excluded.trigger_kind,
			trigger_device_id=excluded.trigger_device_id,
			trigger_operator=excluded.trigger_operator,
			trigger_threshold=excluded.trigger_threshold,
			schedule_start=excluded.schedule_start,
			schedule_end=excluded.schedule_end,
			schedule_days=excluded.schedule_days,
			updated_at=excluded.updated_at
	`

	deleteActionsSQL = `DELETE FROM automation_actions WHERE automation_id = ?`

	insertActionSQL = `
		INSERT INTO automation_actions (automation_id, position, device_id, command, duration_s,
			shutoff_device_id, shutoff_threshold)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
)

// placeholders returns "?, ?, ..." with n markers.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func toArgs(ids []string) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

func (r *AutomationSQLite) ListForEvaluation(ctx context.Context, deviceIDs []string) ([]models.Automation, error) {
	if len(deviceIDs) == 0 {
		return nil, nil
	}
	in := placeholders(len(deviceIDs))
	q := `SELECT ` + automationColumns + ` FROM automations a
		WHERE a.active = 1 AND (
			(a.trigger_kind = 'sensor' AND a.trigger_device_id IN (` + in + `))
			OR (a.trigger_kind = 'schedule' AND EXISTS (
				SELECT 1 FROM automation_actions x WHERE x.automation_id = a.id AND x.device_id IN (` + in + `)))
		)
		ORDER BY a.id`
	args := append(toArgs(deviceIDs), toArgs(deviceIDs)...)
	return r.list(ctx, q, args)
}

func (r *AutomationSQLite) ListForRoomConfig(ctx context.Context, deviceIDs []string) ([]models.Automation, error) {
	if len(deviceIDs) == 0 {
		return nil, nil
	}
	in := placeholders(len(deviceIDs))
	q := `SELECT ` + automationColumns + ` FROM automations a
		WHERE a.active = 1 AND (
			a.trigger_device_id IN (` + in + `)
			OR EXISTS (
				SELECT 1 FROM automation_actions x WHERE x.automation_id = a.id AND x.device_id IN (` + in + `))
		)
		ORDER BY a.id`
	args := append(toArgs(deviceIDs), toArgs(deviceIDs)...)
	return r.list(ctx, q, args)
}

// List returns every automation, active or not, ordered by id.
func (r *AutomationSQLite) List(ctx context.Context) ([]models.Automation, error) {
	return r.list(ctx, selectAutomationsSQL, nil)
}

func (r *AutomationSQLite) GetByID(ctx context.Context, id string) (models.Automation, error) {
	rows, err := r.db.QueryContext(ctx, selectAutomationSQL, id)
	if err != nil {
		return models.Automation{}, err
	}
	out, err := r.collect(ctx, rows)
	if err != nil {
		return models.Automation{}, err
	}
	if len(out) == 0 {
		return models.Automation{}, ErrNotFound
	}
	return out[0], nil
}

// Save inserts or replaces the automation and its actions in one transaction.
func (r *AutomationSQLite) Save(ctx context.Context, a models.Automation) error {
	row, err := encodeTrigger(a.Trigger)
	if err != nil {
		return err
	}
	updated := a.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin automation tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, upsertAutomationSQL,
		a.ID, a.Name, a.Active, row.kind, row.deviceID, row.operator,
		row.threshold, row.start, row.end, row.days, updated.UTC(),
	); err != nil {
		return fmt.Errorf("upsert automation %s: %w", a.ID, err)
	}
	if _, err := tx.ExecContext(ctx, deleteActionsSQL, a.ID); err != nil {
		return fmt.Errorf("clear actions of %s: %w", a.ID, err)
	}
	for i, act := range a.Actions {
		var (
			duration         sql.NullInt64
			shutoffDevice    sql.NullString
			shutoffThreshold sql.NullFloat64
		)
		if act.Duration != nil {
			duration = sql.NullInt64{Int64: int64(*act.Duration), Valid: true}
		}
		if act.SecondaryShutoff != nil {
			shutoffDevice = sql.NullString{String: act.SecondaryShutoff.DeviceID, Valid: true}
			shutoffThreshold = sql.NullFloat64{Float64: act.SecondaryShutoff.Threshold, Valid: true}
		}
		if _, err := tx.ExecContext(ctx, insertActionSQL,
			a.ID, i, act.DeviceID, string(act.Command), duration, shutoffDevice, shutoffThreshold,
		); err != nil {
			return fmt.Errorf("insert action %d of %s: %w", i, a.ID, err)
		}
	}
	return tx.Commit()
}

func (r *AutomationSQLite) list(ctx context.Context, q string, args []any) ([]models.Automation, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return r.collect(ctx, rows)
}

// collect scans automation rows and then loads all their actions with one query.
// rows are closed before the second query since the pool holds a single connection.
func (r *AutomationSQLite) collect(ctx context.Context, rows *sql.Rows) ([]models.Automation, error) {
	out, err := scanAutomations(rows)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	if err := r.attachActions(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func scanAutomations(rows *sql.Rows) ([]models.Automation, error) {
	defer rows.Close()
	var out []models.Automation
	for rows.Next() {
		a, err := scanAutomation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanAutomation(s rowScanner) (models.Automation, error) {
	var (
		a   models.Automation
		row triggerRow
	)
	if err := s.Scan(&a.ID, &a.Name, &a.Active, &row.kind, &row.deviceID, &row.operator,
		&row.threshold, &row.start, &row.end, &row.days, &a.UpdatedAt); err != nil {
		return models.Automation{}, err
	}
	t, err := row.decode()
	if err != nil {
		return models.Automation{}, fmt.Errorf("automation %s: %w", a.ID, err)
	}
	a.Trigger = t
	a.UpdatedAt = a.UpdatedAt.UTC()
	return a, nil
}

func (r *AutomationSQLite) attachActions(ctx context.Context, autos []models.Automation) error {
	ids := make([]string, len(autos))
	index := make(map[string]int, len(autos))
	for i, a := range autos {
		ids[i] = a.ID
		index[a.ID] = i
	}

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(selectActionsSQL, placeholders(len(ids))), toArgs(ids)...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			automationID  string
			act           models.Action
			duration      sql.NullInt64
			shutoffDevice sql.NullString
			shutoffValue  sql.NullFloat64
		)
		if err := rows.Scan(&automationID, &act.DeviceID, &act.Command, &duration, &shutoffDevice, &shutoffValue); err != nil {
			return err
		}
		if duration.Valid {
			d := int(duration.Int64)
			act.Duration = &d
		}
		if shutoffDevice.Valid {
			act.SecondaryShutoff = &models.Shutoff{DeviceID: shutoffDevice.String, Threshold: shutoffValue.Float64}
		}
		if i, ok := index[automationID]; ok {
			autos[i].Actions = append(autos[i].Actions, act)
		}
	}
	return rows.Err()
}

// triggerRow is the flattened storage shape of a Trigger.
type triggerRow struct {
	kind      string
	deviceID  sql.NullString
	operator  sql.NullString
	threshold sql.NullFloat64
	start     sql.NullInt64
	end       sql.NullInt64
	days      sql.NullString
}

var errUnknownTrigger = errors.New("unknown trigger kind")

func encodeTrigger(t models.Trigger) (triggerRow, error) {
	switch t := t.(type) {
	case models.SensorTrigger:
		return triggerRow{
			kind:      models.TriggerSensor,
			deviceID:  sql.NullString{String: t.DeviceID, Valid: true},
			operator:  sql.NullString{String: string(t.Operator), Valid: true},
			threshold: sql.NullFloat64{Float64: t.Threshold, Valid: true},
		}, nil
	case models.ScheduleTrigger:
		days, err := json.Marshal(t.DaysOfWeek)
		if err != nil {
			return triggerRow{}, err
		}
		row := triggerRow{
			kind:  models.TriggerSchedule,
			start: sql.NullInt64{Int64: int64(t.StartMinute), Valid: true},
			days:  sql.NullString{String: string(days), Valid: true},
		}
		if t.EndMinute != nil {
			row.end = sql.NullInt64{Int64: int64(*t.EndMinute), Valid: true}
		}
		return row, nil
	default:
		return triggerRow{}, errUnknownTrigger
	}
}

func (row triggerRow) decode() (models.Trigger, error) {
	switch row.kind {
	case models.TriggerSensor:
		return models.SensorTrigger{
			DeviceID:  row.deviceID.String,
			Operator:  models.Operator(row.operator.String),
			Threshold: row.threshold.Float64,
		}, nil
	case models.TriggerSchedule:
		st := models.ScheduleTrigger{StartMinute: int(row.start.Int64)}
		if row.end.Valid {
			end := int(row.end.Int64)
			st.EndMinute = &end
		}
		if row.days.Valid && row.days.String != "" && row.days.String != "null" {
			if err := json.Unmarshal([]byte(row.days.String), &st.DaysOfWeek); err != nil {
				return nil, fmt.Errorf("decode days of week: %w", err)
			}
		}
		return st, nil
	default:
		return nil, fmt.Errorf("%w %q", errUnknownTrigger, row.kind)
	}
}
