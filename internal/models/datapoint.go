package models

import "time"

// DeviceDataPoint is one immutable, timestamped sensor reading.
type DeviceDataPoint struct {
	ID         string            `json:"id"`
	DeviceID   string            `json:"device_id"`
	SensorType string            `json:"sensor_type"`
	Value      string            `json:"value"`
	Unit       string            `json:"unit,omitempty"`
	RecordedAt time.Time         `json:"recorded_at"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// IngestStatus is the only thing a sensor report ever gets back.
type IngestStatus string

const (
	StatusNoDevices IngestStatus = "no-devices"
	StatusReceived  IngestStatus = "received"
	StatusError     IngestStatus = "error"
)

// DataFilter narrows a data point history query.
type DataFilter struct {
	DeviceID string
	From     time.Time // inclusive; zero means no lower bound
	To       time.Time // inclusive; zero means no upper bound
	Limit    int
}
