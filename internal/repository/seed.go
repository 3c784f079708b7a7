package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"roomhub/internal/models"
)

// Fixture is a provisioning snapshot: the rooms and devices an operator has bound.
type Fixture struct {
	Rooms   []models.Room   `json:"rooms"`
	Devices []models.Device `json:"devices"`
}

// LoadFixture reads a Fixture from a JSON file.
func LoadFixture(path string) (Fixture, error) {
	var f Fixture
	raw, err := os.ReadFile(path)
	if err != nil {
		return f, fmt.Errorf("read fixture: %w", err)
	}
	if err := json.Unmarshal(raw, &f); err != nil {
		return f, fmt.Errorf("decode fixture %s: %w", path, err)
	}
	return f, nil
}

// Apply upserts rooms before devices so device foreign keys resolve.
func (f Fixture) Apply(ctx context.Context, repo *Repository) error {
	for _, r := range f.Rooms {
		if err := repo.Rooms.Upsert(ctx, r); err != nil {
			return fmt.Errorf("seed room %s: %w", r.ID, err)
		}
	}
	for _, d := range f.Devices {
		if err := repo.Devices.Upsert(ctx, d); err != nil {
			return fmt.Errorf("seed device %s: %w", d.ID, err)
		}
	}
	return nil
}
