package service

import (
	"context"
	"time"

	"roomhub/internal/logger"
	"roomhub/internal/models"
	"roomhub/internal/repository"
)

// Ingest accepts raw sensor reports from room controllers.
type Ingest interface {
	Report(ctx context.Context, roomID string, readings map[string]any) (models.IngestStatus, error)
}

// Rules evaluates the automations a report makes relevant and dispatches their actions.
type Rules interface {
	Evaluate(ctx context.Context, readings map[string]any, devices []models.Device) error
}

// ConfigSync serves and pushes per-room controller snapshots.
type ConfigSync interface {
	Pull(ctx context.Context, roomID string) (models.RoomConfig, error)
	// Push schedules a best-effort snapshot upload to every addressed room the
	// automations touch and returns their ids.
	Push(ctx context.Context, autos ...models.Automation) []string
}

// Automations is the mutation path for rules.
type Automations interface {
	List(ctx context.Context) ([]models.Automation, error)
	Get(ctx context.Context, id string) (models.Automation, error)
	Create(ctx context.Context, a models.Automation) (models.Automation, error)
	Update(ctx context.Context, id string, a models.Automation) (models.Automation, error)
}

// DeviceControl covers manual actuation and reading history.
type DeviceControl interface {
	Command(ctx context.Context, deviceID string, cmd models.Command, duration *int) (models.Device, error)
	History(ctx context.Context, f models.DataFilter) ([]models.DeviceDataPoint, error)
}

// Dispatcher sends an actuator command without reporting the outcome.
type Dispatcher interface {
	Dispatch(ctx context.Context, room models.Room, cmd DispatchCommand)
}

// ConfigPusher uploads one snapshot to a room controller.
type ConfigPusher interface {
	PushConfig(ctx context.Context, address string, cfg models.RoomConfig) error
}

// FiringGuard admits at most one firing per automation per minute when enabled.
type FiringGuard interface {
	Acquire(ctx context.Context, automationID string, minute time.Time) bool
}

// DataSink receives data points after they were stored.
type DataSink interface {
	Publish(ctx context.Context, roomID string, points []models.DeviceDataPoint) error
}

type Service struct {
	Ingest
	Rules
	ConfigSync
	Automations
	DeviceControl
}

// Deps carries the collaborators and settings that are not repositories.
type Deps struct {
	Dispatcher  Dispatcher
	Pusher      ConfigPusher
	Tasks       *Tasks
	Guard       FiringGuard // nil disables deduplication
	Sink        DataSink    // nil disables telemetry
	Location    *time.Location
	Now         func() time.Time
	PushTimeout time.Duration
	SinkTimeout time.Duration
	Log         *logger.Logger
}

func (d *Deps) defaults() {
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	if d.Tasks == nil {
		d.Tasks = NewTasks(d.Log)
	}
	if d.Location == nil {
		d.Location = time.Local
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.PushTimeout <= 0 {
		d.PushTimeout = 5 * time.Second
	}
	if d.SinkTimeout <= 0 {
		d.SinkTimeout = 5 * time.Second
	}
}

func NewService(repos *repository.Repository, deps Deps) *Service {
	deps.defaults()

	rules := NewRuleEngine(repos.Automations, repos.Devices, repos.Rooms, deps.Dispatcher, deps.Guard, deps.Location, deps.Now, deps.Log)
	cfgSync := NewConfigSyncService(repos.Rooms, repos.Devices, repos.Automations, deps.Pusher, deps.Tasks, deps.PushTimeout, deps.Log)

	return &Service{
		Ingest:        NewIngestService(repos.Devices, repos.DataPoints, rules, deps.Sink, deps.Tasks, deps.SinkTimeout, deps.Now, deps.Log),
		Rules:         rules,
		ConfigSync:    cfgSync,
		Automations:   NewAutomationService(repos.Automations, repos.Devices, cfgSync, deps.Now),
		DeviceControl: NewDeviceControlService(repos.Devices, repos.Rooms, repos.DataPoints, deps.Dispatcher, deps.Log),
	}
}
