package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"roomhub/internal/logger"
	"roomhub/internal/models"
	"roomhub/internal/repository"

	"github.com/google/uuid"
)

type IngestService struct {
	devices     repository.DeviceRepo
	points      repository.DataPointRepo
	rules       Rules
	sink        DataSink
	tasks       *Tasks
	sinkTimeout time.Duration
	now         func() time.Time
	log         *logger.Logger
}

func NewIngestService(devices repository.DeviceRepo, points repository.DataPointRepo, rules Rules,
	sink DataSink, tasks *Tasks, sinkTimeout time.Duration, now func() time.Time, log *logger.Logger) *IngestService {
	return &IngestService{
		devices:     devices,
		points:      points,
		rules:       rules,
		sink:        sink,
		tasks:       tasks,
		sinkTimeout: sinkTimeout,
		now:         now,
		log:         log,
	}
}

// Report stores the matched readings of a room and then evaluates its rules.
// The returned status reflects persistence only; actuation outcomes never change it.
func (s *IngestService) Report(ctx context.Context, roomID string, readings map[string]any) (models.IngestStatus, error) {
	if roomID == "" {
		return models.StatusError, validationf("room id is required")
	}

	devices, err := s.devices.ListByRoom(ctx, roomID)
	if err != nil {
		return models.StatusError, fmt.Errorf("list devices of room %s: %w", roomID, err)
	}
	if len(devices) == 0 {
		s.log.Infow("report_no_devices", "room_id", roomID)
		return models.StatusNoDevices, nil
	}

	points := s.buildPoints(roomID, readings, devices)
	if len(points) > 0 {
		if err := s.points.InsertBatch(ctx, points); err != nil {
			return models.StatusError, fmt.Errorf("%w: store %d readings of room %s: %v", ErrPersistence, len(points), roomID, err)
		}
		s.publish(ctx, roomID, points)
	}

	if err := s.rules.Evaluate(ctx, readings, devices); err != nil {
		s.log.Warnw("rule_evaluation_failed", "room_id", roomID, "error", err)
	}
	return models.StatusReceived, nil
}

// buildPoints keeps one point per report key whose translated type matches a device
// of the room; the first device of that type wins. Keys are walked in sorted order.
func (s *IngestService) buildPoints(roomID string, readings map[string]any, devices []models.Device) []models.DeviceDataPoint {
	byType := make(map[models.DeviceType]models.Device, len(devices))
	for _, d := range devices {
		if _, seen := byType[d.Type]; !seen {
			byType[d.Type] = d
		}
	}

	keys := make([]string, 0, len(readings))
	for k := range readings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	now := s.now().UTC()
	points := make([]models.DeviceDataPoint, 0, len(keys))
	for _, key := range keys {
		t := CanonicalType(key)
		dev, ok := byType[t]
		if !ok {
			continue
		}
		value, ok := stringify(readings[key])
		if !ok {
			s.log.Debugw("reading_skipped", "room_id", roomID, "key", key)
			continue
		}
		points = append(points, models.DeviceDataPoint{
			ID:         uuid.NewString(),
			DeviceID:   dev.ID,
			SensorType: string(t),
			Value:      value,
			Unit:       unitFor(t),
			RecordedAt: now,
			Metadata:   map[string]string{"room_id": roomID, "key": key},
		})
	}
	return points
}

func (s *IngestService) publish(ctx context.Context, roomID string, points []models.DeviceDataPoint) {
	if s.sink == nil {
		return
	}
	s.tasks.Go(ctx, "telemetry_publish", s.sinkTimeout, func(ctx context.Context) error {
		return s.sink.Publish(ctx, roomID, points)
	}, "room_id", roomID, "points", len(points))
}

// stringify renders a decoded JSON value the way it is stored. Null is rejected.
func stringify(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case json.Number:
		return x.String(), true
	case bool:
		return strconv.FormatBool(x), true
	case int:
		return strconv.Itoa(x), true
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return "", false
		}
		return string(b), true
	}
}

// numeric coerces a raw reading for comparison. Booleans, and their stored
// string forms, count as 1 and 0.
func numeric(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		x = strings.TrimSpace(x)
		switch x {
		case "true":
			return 1, true
		case "false":
			return 0, true
		}
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}
