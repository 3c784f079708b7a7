package handlers

import (
	"context"
	"net/http"

	"roomhub/internal/models"
	"roomhub/internal/relay"
	"roomhub/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockIngest struct {
	status       models.IngestStatus
	err          error
	calls        int
	lastRoomID   string
	lastReadings map[string]any
}

func (m *mockIngest) Report(ctx context.Context, roomID string, readings map[string]any) (models.IngestStatus, error) {
	m.calls++
	m.lastRoomID = roomID
	m.lastReadings = readings
	return m.status, m.err
}

type mockConfigSync struct {
	cfg        models.RoomConfig
	err        error
	lastRoomID string
}

func (m *mockConfigSync) Pull(ctx context.Context, roomID string) (models.RoomConfig, error) {
	m.lastRoomID = roomID
	return m.cfg, m.err
}

func (m *mockConfigSync) Push(ctx context.Context, autos ...models.Automation) []string {
	return nil
}

type mockAutomations struct {
	list    []models.Automation
	one     models.Automation
	err     error
	lastIn  models.Automation
	lastID  string
	created int
	updated int
}

func (m *mockAutomations) List(ctx context.Context) ([]models.Automation, error) {
	return m.list, m.err
}
func (m *mockAutomations) Get(ctx context.Context, id string) (models.Automation, error) {
	m.lastID = id
	return m.one, m.err
}
func (m *mockAutomations) Create(ctx context.Context, a models.Automation) (models.Automation, error) {
	m.created++
	m.lastIn = a
	a.ID = "auto-new"
	return a, m.err
}
func (m *mockAutomations) Update(ctx context.Context, id string, a models.Automation) (models.Automation, error) {
	m.updated++
	m.lastID = id
	m.lastIn = a
	a.ID = id
	return a, m.err
}

type mockDeviceControl struct {
	device       models.Device
	points       []models.DeviceDataPoint
	err          error
	lastID       string
	lastCommand  models.Command
	lastDuration *int
	lastFilter   models.DataFilter
}

func (m *mockDeviceControl) Command(ctx context.Context, deviceID string, cmd models.Command, duration *int) (models.Device, error) {
	m.lastID = deviceID
	m.lastCommand = cmd
	m.lastDuration = duration
	return m.device, m.err
}
func (m *mockDeviceControl) History(ctx context.Context, f models.DataFilter) ([]models.DeviceDataPoint, error) {
	m.lastFilter = f
	return m.points, m.err
}

type mockCameras struct {
	status relay.Status
	err    error
	served int
}

func (m *mockCameras) ServeWS(w http.ResponseWriter, r *http.Request) {
	m.served++
	w.WriteHeader(http.StatusSwitchingProtocols)
}
func (m *mockCameras) Status(ctx context.Context, cameraID string) (relay.Status, error) {
	st := m.status
	st.CameraID = cameraID
	return st, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service, cams CameraRelay) *gin.Engine {
	h := NewHandler(s, cams, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes("")
}
