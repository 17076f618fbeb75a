package catalog

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salon-booking-bot/internal/domain"
	catalogRepo "salon-booking-bot/internal/infra/storage/catalog"
)

type fakeRepo struct {
	services map[int64]*domain.Service
	staff    map[int64]*domain.Staff
	nextID   int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		services: make(map[int64]*domain.Service),
		staff:    make(map[int64]*domain.Staff),
	}
}

func (f *fakeRepo) ListServices(_ context.Context, activeOnly bool) ([]*domain.Service, error) {
	var out []*domain.Service
	for _, svc := range f.services {
		if activeOnly && !svc.Active {
			continue
		}
		out = append(out, svc)
	}
	return out, nil
}

func (f *fakeRepo) GetService(_ context.Context, id int64) (*domain.Service, error) {
	svc, ok := f.services[id]
	if !ok {
		return nil, catalogRepo.ErrServiceNotFound
	}
	return svc, nil
}

func (f *fakeRepo) CreateService(_ context.Context, s *domain.Service) (*domain.Service, error) {
	f.nextID++
	created := *s
	created.ID = f.nextID
	created.Active = true
	f.services[created.ID] = &created
	return &created, nil
}

func (f *fakeRepo) SetServiceActive(_ context.Context, id int64, active bool) error {
	svc, ok := f.services[id]
	if !ok {
		return catalogRepo.ErrServiceNotFound
	}
	svc.Active = active
	return nil
}

func (f *fakeRepo) ListStaff(_ context.Context, activeOnly bool) ([]*domain.Staff, error) {
	var out []*domain.Staff
	for _, st := range f.staff {
		if activeOnly && !st.Active {
			continue
		}
		out = append(out, st)
	}
	return out, nil
}

func (f *fakeRepo) GetStaff(_ context.Context, id int64) (*domain.Staff, error) {
	st, ok := f.staff[id]
	if !ok {
		return nil, catalogRepo.ErrStaffNotFound
	}
	return st, nil
}

func (f *fakeRepo) ListStaffForService(_ context.Context, serviceID int64) ([]*domain.Staff, error) {
	var out []*domain.Staff
	for _, st := range f.staff {
		if st.Active && st.Performs(serviceID) {
			out = append(out, st)
		}
	}
	return out, nil
}

func (f *fakeRepo) CreateStaff(_ context.Context, s *domain.Staff) (*domain.Staff, error) {
	f.nextID++
	created := *s
	created.ID = f.nextID
	created.Active = true
	f.staff[created.ID] = &created
	return &created, nil
}

func (f *fakeRepo) SetStaffActive(_ context.Context, id int64, active bool) error {
	st, ok := f.staff[id]
	if !ok {
		return catalogRepo.ErrStaffNotFound
	}
	st.Active = active
	return nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func TestAddService(t *testing.T) {
	svc := NewService(newFakeRepo(), nopLogger{})

	created, err := svc.AddService(context.Background(), "  Стрижка  ", 1500, 60)

	require.NoError(t, err)
	assert.Equal(t, "Стрижка", created.Name)
	assert.Equal(t, int64(1500), created.Price)
	assert.True(t, created.Active)
}

func TestAddService_Validation(t *testing.T) {
	svc := NewService(newFakeRepo(), nopLogger{})

	tests := []struct {
		name     string
		svcName  string
		price    int64
		duration int
	}{
		{name: "empty name", svcName: "   ", price: 1000, duration: 60},
		{name: "too long name", svcName: strings.Repeat("a", domain.MaxServiceNameLength+1), price: 1000, duration: 60},
		{name: "zero price", svcName: "Стрижка", price: 0, duration: 60},
		{name: "negative price", svcName: "Стрижка", price: -5, duration: 60},
		{name: "zero duration", svcName: "Стрижка", price: 1000, duration: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddService(context.Background(), tt.svcName, tt.price, tt.duration)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestDeactivateAndActivateService(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nopLogger{})

	created, err := svc.AddService(context.Background(), "Маникюр", 1200, 60)
	require.NoError(t, err)

	require.NoError(t, svc.DeactivateService(context.Background(), created.ID))
	assert.False(t, repo.services[created.ID].Active)

	// Повторная деактивация идемпотентна
	require.NoError(t, svc.DeactivateService(context.Background(), created.ID))

	require.NoError(t, svc.ActivateService(context.Background(), created.ID))
	assert.True(t, repo.services[created.ID].Active)
}

func TestDeactivateService_NotFound(t *testing.T) {
	svc := NewService(newFakeRepo(), nopLogger{})

	err := svc.DeactivateService(context.Background(), 42)

	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestListServices_ActiveOnly(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nopLogger{})

	first, err := svc.AddService(context.Background(), "Стрижка", 1500, 60)
	require.NoError(t, err)
	_, err = svc.AddService(context.Background(), "Окрашивание", 3500, 120)
	require.NoError(t, err)

	require.NoError(t, svc.DeactivateService(context.Background(), first.ID))

	active, err := svc.ListServices(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	all, err := svc.ListServices(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestGetService_IncludesInactive(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nopLogger{})

	created, err := svc.AddService(context.Background(), "Стрижка", 1500, 60)
	require.NoError(t, err)
	require.NoError(t, svc.DeactivateService(context.Background(), created.ID))

	got, err := svc.GetService(context.Background(), created.ID)

	require.NoError(t, err)
	assert.False(t, got.Active)
}

func TestAddStaff(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nopLogger{})

	service, err := svc.AddService(context.Background(), "Стрижка", 1500, 60)
	require.NoError(t, err)

	staff, err := svc.AddStaff(context.Background(), "Анна", []int64{service.ID})

	require.NoError(t, err)
	assert.True(t, staff.Performs(service.ID))
	assert.True(t, staff.Active)
}

func TestAddStaff_UnknownService(t *testing.T) {
	svc := NewService(newFakeRepo(), nopLogger{})

	_, err := svc.AddStaff(context.Background(), "Анна", []int64{99})

	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestStaffForService(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nopLogger{})

	service, err := svc.AddService(context.Background(), "Стрижка", 1500, 60)
	require.NoError(t, err)
	other, err := svc.AddService(context.Background(), "Маникюр", 1200, 60)
	require.NoError(t, err)

	anna, err := svc.AddStaff(context.Background(), "Анна", []int64{service.ID})
	require.NoError(t, err)
	_, err = svc.AddStaff(context.Background(), "Мария", []int64{other.ID})
	require.NoError(t, err)

	performers, err := svc.StaffForService(context.Background(), service.ID)

	require.NoError(t, err)
	require.Len(t, performers, 1)
	assert.Equal(t, anna.ID, performers[0].ID)
}

func TestSetStaffActive_HidesFromStaffForService(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nopLogger{})

	service, err := svc.AddService(context.Background(), "Стрижка", 1500, 60)
	require.NoError(t, err)
	staff, err := svc.AddStaff(context.Background(), "Анна", []int64{service.ID})
	require.NoError(t, err)

	require.NoError(t, svc.SetStaffActive(context.Background(), staff.ID, false))

	performers, err := svc.StaffForService(context.Background(), service.ID)
	require.NoError(t, err)
	assert.Empty(t, performers)
}
