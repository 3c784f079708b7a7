// Package telemetry mirrors stored data points to external systems.
package telemetry

import (
	"context"
	"errors"

	"roomhub/internal/models"
)

// Sink receives data points that are already persisted.
type Sink interface {
	Publish(ctx context.Context, roomID string, points []models.DeviceDataPoint) error
}

// Multi fans out to every sink and joins their errors.
type Multi []Sink

func (m Multi) Publish(ctx context.Context, roomID string, points []models.DeviceDataPoint) error {
	var errs []error
	for _, s := range m {
		if err := s.Publish(ctx, roomID, points); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
