package telemetry

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"roomhub/internal/logger"
	"roomhub/internal/models"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

const (
	influxMeasurement = "device_data"
	influxPingTimeout = 5 * time.Second
)

type InfluxConfig struct {
	URL    string
	Token  string
	Org    string
	Bucket string
}

// pointWriter is the non-blocking part of api.WriteAPI.
type pointWriter interface {
	WritePoint(point *write.Point)
}

// InfluxSink writes numeric readings as device_data points. Non-numeric values are skipped.
type InfluxSink struct {
	writer pointWriter
}

func NewInfluxSink(w pointWriter) *InfluxSink {
	return &InfluxSink{writer: w}
}

func (s *InfluxSink) Publish(_ context.Context, roomID string, points []models.DeviceDataPoint) error {
	for _, p := range points {
		v, ok := numericValue(p.Value)
		if !ok {
			continue
		}
		s.writer.WritePoint(write.NewPoint(
			influxMeasurement,
			map[string]string{"device_id": p.DeviceID, "room_id": roomID, "sensor_type": p.SensorType},
			map[string]interface{}{"value": v},
			p.RecordedAt,
		))
	}
	return nil
}

func numericValue(s string) (float64, bool) {
	switch s {
	case "true":
		return 1, true
	case "false":
		return 0, true
	}
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

// ConnectInflux pings the server and returns a sink on its async write API.
// The close func flushes pending points.
func ConnectInflux(ctx context.Context, cfg InfluxConfig, log *logger.Logger) (*InfluxSink, func(), error) {
	client := influxdb2.NewClient(cfg.URL, cfg.Token)

	pctx, cancel := context.WithTimeout(ctx, influxPingTimeout)
	defer cancel()
	healthy, err := client.Ping(pctx)
	if err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("ping influxdb %s: %w", cfg.URL, err)
	}
	if !healthy {
		client.Close()
		return nil, nil, fmt.Errorf("influxdb %s not healthy", cfg.URL)
	}

	writeAPI := client.WriteAPI(cfg.Org, cfg.Bucket)
	go func() {
		for err := range writeAPI.Errors() {
			log.Warnw("influx_write_failed", "error", err)
		}
	}()

	closeFn := func() {
		writeAPI.Flush()
		client.Close()
	}
	return NewInfluxSink(writeAPI), closeFn, nil
}
