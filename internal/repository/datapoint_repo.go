package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"roomhub/internal/models"

	"github.com/google/uuid"
)

type DataPointSQLite struct {
	db *sql.DB
}

func NewDataPointSQLite(db *sql.DB) *DataPointSQLite { return &DataPointSQLite{db: db} }

const insertDataPointsPrefix = `INSERT INTO device_data (id, device_id, sensor_type, value, unit, recorded_at, meta) VALUES `

// InsertBatch writes all points with a single multi-row INSERT, so the batch
// is stored entirely or not at all. Missing ids and timestamps are filled in
// on the caller's slice.
func (r *DataPointSQLite) InsertBatch(ctx context.Context, points []models.DeviceDataPoint) error {
	if len(points) == 0 {
		return nil
	}

	rowsSQL := make([]string, 0, len(points))
	args := make([]any, 0, len(points)*7)
	now := time.Now().UTC()
	for i := range points {
		p := &points[i]
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		if p.RecordedAt.IsZero() {
			p.RecordedAt = now
		}

		var metaPtr *string
		if len(p.Metadata) > 0 {
			if b, err := json.Marshal(p.Metadata); err == nil {
				s := string(b)
				metaPtr = &s
			}
		}

		rowsSQL = append(rowsSQL, "(?, ?, ?, ?, ?, ?, ?)")
		args = append(args, p.ID, p.DeviceID, p.SensorType, p.Value, p.Unit, p.RecordedAt.UTC(), metaPtr)
	}

	_, err := r.db.ExecContext(ctx, insertDataPointsPrefix+strings.Join(rowsSQL, ", "), args...)
	return err
}

// List returns points of one device within [From, To], newest first.
func (r *DataPointSQLite) List(ctx context.Context, f models.DataFilter) ([]models.DeviceDataPoint, error) {
	conds := []string{"device_id = ?"}
	args := []any{f.DeviceID}

	if !f.From.IsZero() {
		conds = append(conds, "recorded_at >= ?")
		args = append(args, f.From.UTC())
	}
	if !f.To.IsZero() {
		conds = append(conds, "recorded_at <= ?")
		args = append(args, f.To.UTC())
	}

	q := `SELECT id, device_id, sensor_type, value, unit, recorded_at, meta FROM device_data WHERE ` +
		strings.Join(conds, " AND ") + ` ORDER BY recorded_at DESC`
	if f.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.DeviceDataPoint, 0, 64)
	for rows.Next() {
		var p models.DeviceDataPoint
		var metaStr sql.NullString
		if err := rows.Scan(&p.ID, &p.DeviceID, &p.SensorType, &p.Value, &p.Unit, &p.RecordedAt, &metaStr); err != nil {
			return nil, err
		}
		p.RecordedAt = p.RecordedAt.UTC()
		if metaStr.Valid && metaStr.String != "" {
			// malformed metadata is dropped rather than failing the listing
			_ = json.Unmarshal([]byte(metaStr.String), &p.Metadata)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
