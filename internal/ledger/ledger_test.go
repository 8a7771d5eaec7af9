// ABOUTME: Shared test fixtures for the ledger controller.
// ABOUTME: Provides an in-memory fake remote store and a fixed clock.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/harperreed/haul/internal/localstore"
	"github.com/harperreed/haul/internal/models"
	"github.com/harperreed/haul/internal/remote"
)

var (
	testNow = time.Date(2025, 6, 10, 14, 0, 0, 0, time.Local)
	errTest = errors.New("test error")
)

// fakeStore is an in-memory remote.Store with controllable failures.
type fakeStore struct {
	mu        sync.Mutex
	fields    []*models.Field
	loads     []*models.Load
	insertErr error
	deleteErr error
	listErr   error
	nextID    int
	events    chan remote.Event

	// insertGate, when set, holds InsertLoad in flight until closed.
	insertGate chan struct{}
}

func newFakeStore(fields []*models.Field, loads []*models.Load) *fakeStore {
	return &fakeStore{
		fields: fields,
		loads:  loads,
		events: make(chan remote.Event, 16),
	}
}

func (s *fakeStore) ListActiveFields(ctx context.Context) ([]*models.Field, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]*models.Field, 0, len(s.fields))
	for _, f := range s.fields {
		if f.IsActive {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *fakeStore) ListFields(ctx context.Context) ([]*models.Field, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]*models.Field(nil), s.fields...), nil
}

func (s *fakeStore) CreateField(ctx context.Context, name, color string, targetLoads int) (*models.Field, error) {
	return nil, fmt.Errorf("not implemented")
}

func (s *fakeStore) UpdateField(ctx context.Context, id, name, color string) (*models.Field, error) {
	return nil, fmt.Errorf("not implemented")
}

func (s *fakeStore) DeactivateField(ctx context.Context, id string) error {
	return fmt.Errorf("not implemented")
}

func (s *fakeStore) ListLoads(ctx context.Context) ([]*models.Load, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]*models.Load(nil), s.loads...), nil
}

func (s *fakeStore) InsertLoad(ctx context.Context, fieldID, driver string) (*models.Load, error) {
	if s.insertGate != nil {
		<-s.insertGate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return nil, s.insertErr
	}
	s.nextID++
	l := &models.Load{
		ID:        fmt.Sprintf("perm-%d", s.nextID),
		FieldID:   fieldID,
		Driver:    driver,
		CreatedAt: testNow,
	}
	s.loads = append(s.loads, l)
	return l, nil
}

func (s *fakeStore) DeleteLoad(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	for i, l := range s.loads {
		if l.ID == id {
			s.loads = append(s.loads[:i], s.loads[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *fakeStore) VerifyPIN(ctx context.Context, driver, pin string) (bool, error) {
	return pin == "1234", nil
}

func (s *fakeStore) Subscribe(ctx context.Context) (<-chan remote.Event, func(), error) {
	return s.events, func() {}, nil
}

func (s *fakeStore) Close() error { return nil }

func testFields() []*models.Field {
	base := testNow.Add(-48 * time.Hour)
	return []*models.Field{
		{ID: "fa", Name: "Field A", Color: "#f00", TargetLoads: 5, IsActive: true, CreatedAt: base},
		{ID: "fb", Name: "Field B", Color: "#0f0", TargetLoads: 5, IsActive: true, CreatedAt: base.Add(time.Minute)},
		{ID: "fc", Name: "Field C", Color: "#00f", TargetLoads: 5, IsActive: true, CreatedAt: base.Add(2 * time.Minute)},
		{ID: "fd", Name: "Field D", Color: "#ff0", TargetLoads: 5, IsActive: true, CreatedAt: base.Add(3 * time.Minute)},
	}
}

// seedLoads builds n loads for one driver/field at minute offsets today.
func seedLoads(driver, fieldID string, n int) []*models.Load {
	loads := make([]*models.Load, 0, n)
	for i := 0; i < n; i++ {
		loads = append(loads, &models.Load{
			ID:        fmt.Sprintf("%s-%s-%d", driver, fieldID, i),
			FieldID:   fieldID,
			Driver:    driver,
			CreatedAt: testNow.Add(time.Duration(i-n) * time.Minute),
		})
	}
	return loads
}

type testEnv struct {
	ctrl  *Controller
	store *fakeStore
	local *localstore.Store
}

func newTestEnv(t *testing.T, store *fakeStore, driver string) *testEnv {
	t.Helper()

	local, err := localstore.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open local store: %v", err)
	}
	t.Cleanup(func() { _ = local.Close() })

	return newTestEnvWith(t, store, local, driver)
}

func newTestEnvWith(t *testing.T, store *fakeStore, local *localstore.Store, driver string) *testEnv {
	t.Helper()

	ctrl, err := New(Config{
		Store:   store,
		Local:   local,
		Driver:  driver,
		Drivers: []string{"ABRI", "HEINE"},
		Now:     func() time.Time { return testNow },
	})
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	if err := ctrl.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	return &testEnv{ctrl: ctrl, store: store, local: local}
}

func (e *testEnv) ledgerIDs() []string {
	e.ctrl.mu.Lock()
	defer e.ctrl.mu.Unlock()
	ids := make([]string, 0, len(e.ctrl.loads))
	for _, l := range e.ctrl.loads {
		ids = append(ids, l.ID)
	}
	return ids
}

func idSet(ids []string) map[string]bool {
	m := make(map[string]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

func sameIDSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	sa := idSet(a)
	for _, id := range b {
		if !sa[id] {
			return false
		}
	}
	return true
}
