package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"roomhub/internal/models"
	"roomhub/internal/repository"
)

// fakeStore is an in-memory stand-in for every repository. Safe for concurrent use.
type fakeStore struct {
	mu      sync.Mutex
	rooms   map[string]models.Room
	devices map[string]models.Device
	autos   map[string]models.Automation
	points  []models.DeviceDataPoint

	insertErr   error
	saveErr     error
	insertCalls int
	saveCalls   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		rooms:   map[string]models.Room{},
		devices: map[string]models.Device{},
		autos:   map[string]models.Automation{},
	}
}

func (s *fakeStore) addRoom(r models.Room) *fakeStore {
	s.rooms[r.ID] = r
	return s
}

func (s *fakeStore) addDevice(d models.Device) *fakeStore {
	s.devices[d.ID] = d
	return s
}

func (s *fakeStore) addAutomation(a models.Automation) *fakeStore {
	s.autos[a.ID] = a
	return s
}

func (s *fakeStore) repos() *repository.Repository {
	return &repository.Repository{
		Rooms:       fakeRooms{s},
		Devices:     fakeDevices{s},
		Automations: fakeAutos{s},
		DataPoints:  fakePoints{s},
	}
}

type fakeRooms struct{ s *fakeStore }

func (f fakeRooms) GetByID(_ context.Context, id string) (models.Room, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	r, ok := f.s.rooms[id]
	if !ok {
		return models.Room{}, repository.ErrNotFound
	}
	return r, nil
}

func (f fakeRooms) Upsert(_ context.Context, r models.Room) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.rooms[r.ID] = r
	return nil
}

type fakeDevices struct{ s *fakeStore }

func (f fakeDevices) ListByRoom(_ context.Context, roomID string) ([]models.Device, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []models.Device
	for _, d := range f.s.devices {
		if d.RoomID == roomID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f fakeDevices) GetByID(_ context.Context, id string) (models.Device, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	d, ok := f.s.devices[id]
	if !ok {
		return models.Device{}, repository.ErrNotFound
	}
	return d, nil
}

func (f fakeDevices) UpdateState(_ context.Context, id string, st models.DeviceState) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	d, ok := f.s.devices[id]
	if !ok {
		return repository.ErrNotFound
	}
	d.State = st
	f.s.devices[id] = d
	return nil
}

func (f fakeDevices) Upsert(_ context.Context, d models.Device) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.devices[d.ID] = d
	return nil
}

type fakeAutos struct{ s *fakeStore }

func (f fakeAutos) pick(match func(a models.Automation) bool) []models.Automation {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []models.Automation
	for _, a := range f.s.autos {
		if match(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func actsOn(a models.Automation, set map[string]bool) bool {
	for _, act := range a.Actions {
		if set[act.DeviceID] {
			return true
		}
	}
	return false
}

func toSet(ids []string) map[string]bool {
	m := make(map[string]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

func (f fakeAutos) ListForEvaluation(_ context.Context, ids []string) ([]models.Automation, error) {
	set := toSet(ids)
	return f.pick(func(a models.Automation) bool {
		if !a.Active {
			return false
		}
		switch t := a.Trigger.(type) {
		case models.SensorTrigger:
			return set[t.DeviceID]
		case models.ScheduleTrigger:
			return actsOn(a, set)
		}
		return false
	}), nil
}

func (f fakeAutos) ListForRoomConfig(_ context.Context, ids []string) ([]models.Automation, error) {
	set := toSet(ids)
	return f.pick(func(a models.Automation) bool {
		if !a.Active {
			return false
		}
		if st, ok := a.Trigger.(models.SensorTrigger); ok && set[st.DeviceID] {
			return true
		}
		return actsOn(a, set)
	}), nil
}

func (f fakeAutos) List(_ context.Context) ([]models.Automation, error) {
	return f.pick(func(models.Automation) bool { return true }), nil
}

func (f fakeAutos) GetByID(_ context.Context, id string) (models.Automation, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	a, ok := f.s.autos[id]
	if !ok {
		return models.Automation{}, repository.ErrNotFound
	}
	return a, nil
}

func (f fakeAutos) Save(_ context.Context, a models.Automation) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.saveCalls++
	if f.s.saveErr != nil {
		return f.s.saveErr
	}
	f.s.autos[a.ID] = a
	return nil
}

type fakePoints struct{ s *fakeStore }

func (f fakePoints) InsertBatch(_ context.Context, points []models.DeviceDataPoint) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.insertCalls++
	if f.s.insertErr != nil {
		return f.s.insertErr
	}
	f.s.points = append(f.s.points, points...)
	return nil
}

func (f fakePoints) List(_ context.Context, flt models.DataFilter) ([]models.DeviceDataPoint, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []models.DeviceDataPoint
	for i := len(f.s.points) - 1; i >= 0; i-- {
		if f.s.points[i].DeviceID == flt.DeviceID {
			out = append(out, f.s.points[i])
		}
		if len(out) == flt.Limit {
			break
		}
	}
	return out, nil
}

type dispatched struct {
	Room models.Room
	Cmd  DispatchCommand
}

type fakeDispatcher struct {
	mu    sync.Mutex
	calls []dispatched
}

func (f *fakeDispatcher) Dispatch(_ context.Context, room models.Room, cmd DispatchCommand) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, dispatched{Room: room, Cmd: cmd})
}

func (f *fakeDispatcher) snapshot() []dispatched {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]dispatched, len(f.calls))
	copy(out, f.calls)
	sort.Slice(out, func(i, j int) bool { return out[i].Cmd.DeviceID < out[j].Cmd.DeviceID })
	return out
}

type pushed struct {
	Address string
	Config  models.RoomConfig
}

type fakePusher struct {
	mu    sync.Mutex
	err   error
	calls []pushed
}

func (f *fakePusher) PushConfig(_ context.Context, address string, cfg models.RoomConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, pushed{Address: address, Config: cfg})
	return f.err
}

func (f *fakePusher) addresses() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.Address)
	}
	sort.Strings(out)
	return out
}

// fakeGuard admits the first Acquire per automation and minute.
type fakeGuard struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (g *fakeGuard) Acquire(_ context.Context, id string, minute time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.seen == nil {
		g.seen = map[string]bool{}
	}
	key := id + minute.Format("200601021504")
	if g.seen[key] {
		return false
	}
	g.seen[key] = true
	return true
}

type fakeSink struct {
	mu     sync.Mutex
	err    error
	rooms  []string
	points int
	ids    []string
}

func (f *fakeSink) Publish(_ context.Context, roomID string, points []models.DeviceDataPoint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rooms = append(f.rooms, roomID)
	f.points += len(points)
	for _, p := range points {
		f.ids = append(f.ids, p.ID)
	}
	return f.err
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func intPtr(v int) *int { return &v }

func waitTasks(tasks *Tasks) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = tasks.Wait(ctx)
}
