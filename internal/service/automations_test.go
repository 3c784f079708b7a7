package service

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"sync"
	"testing"
	"time"

	"roomhub/internal/models"
)

type recordingSync struct {
	mu     sync.Mutex
	pushes [][]string
}

func (r *recordingSync) Pull(context.Context, string) (models.RoomConfig, error) {
	return models.RoomConfig{}, nil
}

func (r *recordingSync) Push(_ context.Context, autos ...models.Automation) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for _, a := range autos {
		ids = append(ids, a.DeviceIDs()...)
	}
	sort.Strings(ids)
	r.pushes = append(r.pushes, ids)
	return nil
}

var automationNow = time.Date(2025, 6, 2, 9, 15, 0, 0, time.UTC)

func newAutomationService(store *fakeStore) (*AutomationService, *recordingSync) {
	rs := &recordingSync{}
	repos := store.repos()
	return NewAutomationService(repos.Automations, repos.Devices, rs, fixedClock(automationNow)), rs
}

func TestAutomationCreate_Validation(t *testing.T) {
	cases := map[string]models.Automation{
		"no trigger": {
			Actions: []models.Action{{DeviceID: "fan1", Command: models.CommandOn}},
		},
		"bad operator": {
			Trigger: models.SensorTrigger{DeviceID: "temp1", Operator: "~"},
			Actions: []models.Action{{DeviceID: "fan1", Command: models.CommandOn}},
		},
		"no actions": {
			Trigger: models.ScheduleTrigger{StartMinute: 60},
		},
		"bad command": {
			Trigger: models.ScheduleTrigger{StartMinute: 60},
			Actions: []models.Action{{DeviceID: "fan1", Command: "toggle"}},
		},
		"start out of range": {
			Trigger: models.ScheduleTrigger{StartMinute: 1440},
			Actions: []models.Action{{DeviceID: "fan1", Command: models.CommandOn}},
		},
		"bad weekday": {
			Trigger: models.ScheduleTrigger{StartMinute: 60, DaysOfWeek: []int{7}},
			Actions: []models.Action{{DeviceID: "fan1", Command: models.CommandOn}},
		},
		"negative duration": {
			Trigger: models.ScheduleTrigger{StartMinute: 60},
			Actions: []models.Action{{DeviceID: "fan1", Command: models.CommandOn, Duration: intPtr(-1)}},
		},
	}
	for name, a := range cases {
		store := homeStore()
		svc, rs := newAutomationService(store)
		if _, err := svc.Create(context.Background(), a); !errors.Is(err, ErrValidation) {
			t.Fatalf("%s: want ErrValidation, got %v", name, err)
		}
		if store.saveCalls != 0 || len(rs.pushes) != 0 {
			t.Fatalf("%s: nothing should be saved or pushed", name)
		}
	}
}

func TestAutomationCreate_UnknownDevice(t *testing.T) {
	store := homeStore()
	svc, _ := newAutomationService(store)

	_, err := svc.Create(context.Background(), models.Automation{
		Trigger: models.SensorTrigger{DeviceID: "temp1", Operator: models.OpGreater, Threshold: 30},
		Actions: []models.Action{{DeviceID: "fan1", Command: models.CommandOn, SecondaryShutoff: &models.Shutoff{DeviceID: "gone", Threshold: 20}}},
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if store.saveCalls != 0 {
		t.Fatalf("nothing should be saved")
	}
}

func TestAutomationCreate_SavesAndPushes(t *testing.T) {
	store := homeStore()
	svc, rs := newAutomationService(store)

	got, err := svc.Create(context.Background(), models.Automation{
		Name:    "  hot lab ",
		Active:  true,
		Trigger: models.SensorTrigger{DeviceID: "temp1", Operator: models.OpGreater, Threshold: 30},
		Actions: []models.Action{{DeviceID: "lamp2", Command: models.CommandOn}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got.ID == "" || got.Name != "hot lab" || !got.UpdatedAt.Equal(automationNow) {
		t.Fatalf("unexpected automation: %+v", got)
	}
	if _, ok := store.autos[got.ID]; !ok {
		t.Fatalf("automation not stored")
	}
	if !reflect.DeepEqual(rs.pushes, [][]string{{"lamp2", "temp1"}}) {
		t.Fatalf("pushes = %v", rs.pushes)
	}
}

func TestAutomationCreate_PersistenceFailure(t *testing.T) {
	store := homeStore()
	store.saveErr = errors.New("locked")
	svc, rs := newAutomationService(store)

	_, err := svc.Create(context.Background(), models.Automation{
		Trigger: models.ScheduleTrigger{StartMinute: 60},
		Actions: []models.Action{{DeviceID: "fan1", Command: models.CommandOn}},
	})
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("want ErrPersistence, got %v", err)
	}
	if len(rs.pushes) != 0 {
		t.Fatalf("failed save must not push")
	}
}

func TestAutomationUpdate(t *testing.T) {
	store := homeStore().addAutomation(models.Automation{
		ID: "a1", Active: true,
		Trigger: models.ScheduleTrigger{StartMinute: 60},
		Actions: []models.Action{{DeviceID: "siren3", Command: models.CommandOn}},
	})
	svc, rs := newAutomationService(store)

	if _, err := svc.Update(context.Background(), "missing", models.Automation{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}

	got, err := svc.Update(context.Background(), "a1", models.Automation{
		ID:      "ignored",
		Active:  false,
		Trigger: models.ScheduleTrigger{StartMinute: 120},
		Actions: []models.Action{{DeviceID: "fan1", Command: models.CommandOff}},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.ID != "a1" || store.autos["a1"].Active {
		t.Fatalf("unexpected stored automation: %+v", store.autos["a1"])
	}
	// the previous version's rooms are refreshed with the new ones
	if !reflect.DeepEqual(rs.pushes, [][]string{{"fan1", "siren3"}}) {
		t.Fatalf("pushes = %v", rs.pushes)
	}
}

func TestAutomationGet(t *testing.T) {
	store := homeStore().addAutomation(models.Automation{ID: "a1", Trigger: models.ScheduleTrigger{}})
	svc, _ := newAutomationService(store)

	if _, err := svc.Get(context.Background(), "a1"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if _, err := svc.Get(context.Background(), "zz"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	all, err := svc.List(context.Background())
	if err != nil || len(all) != 1 {
		t.Fatalf("List = (%v, %v)", all, err)
	}
}
