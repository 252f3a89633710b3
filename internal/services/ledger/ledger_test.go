package ledger

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/fleet-ledger/internal/entitlement"
	"github.com/magabrotheeeer/fleet-ledger/internal/models"
)

type EntryRepoMock struct{ mock.Mock }

func (m *EntryRepoMock) CreateEntry(ctx context.Context, entry models.Entry) (int, error) {
	args := m.Called(ctx, entry)
	return args.Int(0), args.Error(1)
}

func (m *EntryRepoMock) ReadEntry(ctx context.Context, id int, username string) (*models.Entry, error) {
	args := m.Called(ctx, id, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Entry), args.Error(1)
}

func (m *EntryRepoMock) UpdateEntry(ctx context.Context, entry models.Entry, id int, username string) (int, error) {
	args := m.Called(ctx, entry, id, username)
	return args.Int(0), args.Error(1)
}

func (m *EntryRepoMock) RemoveEntry(ctx context.Context, id int, username string) (int, error) {
	args := m.Called(ctx, id, username)
	return args.Int(0), args.Error(1)
}

func (m *EntryRepoMock) ListEntries(ctx context.Context, username string, since time.Time, limit, offset int) ([]*models.Entry, error) {
	args := m.Called(ctx, username, since, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Entry), args.Error(1)
}

type VehicleRepoMock struct{ mock.Mock }

func (m *VehicleRepoMock) CreateVehicle(ctx context.Context, v models.Vehicle) (int, error) {
	args := m.Called(ctx, v)
	return args.Int(0), args.Error(1)
}

func (m *VehicleRepoMock) GetVehicle(ctx context.Context, id int, username string) (*models.Vehicle, error) {
	args := m.Called(ctx, id, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}

func (m *VehicleRepoMock) ListActiveVehicles(ctx context.Context, username string) ([]*models.Vehicle, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Vehicle), args.Error(1)
}

func (m *VehicleRepoMock) CountActiveVehicles(ctx context.Context, username string) (int, error) {
	args := m.Called(ctx, username)
	return args.Int(0), args.Error(1)
}

func (m *VehicleRepoMock) DeactivateVehicle(ctx context.Context, id int, username string) (int, error) {
	args := m.Called(ctx, id, username)
	return args.Int(0), args.Error(1)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}

func (m *CacheMock) Set(key string, value any, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *CacheMock) Invalidate(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testVehicle() *models.Vehicle {
	return &models.Vehicle{
		ID:                  7,
		Username:            "driver1",
		Name:                "gazelle",
		MileageKmPerLiter:   10,
		EarningMode:         models.EarningPerDistance,
		EarningRate:         15,
		MonthlyLoanPayment:  15000,
		MonthlyDriverSalary: 12000,
		MonthlyMaintenance:  3000,
		IsActive:            true,
	}
}

func TestCreateEntry_DerivesFinancials(t *testing.T) {
	entryRepo := new(EntryRepoMock)
	vehicleRepo := new(VehicleRepoMock)
	cache := new(CacheMock)
	svc := New(entryRepo, vehicleRepo, cache, discardLogger())

	vehicleRepo.On("GetVehicle", mock.Anything, 7, "driver1").Return(testVehicle(), nil)
	entryRepo.On("CreateEntry", mock.Anything, mock.MatchedBy(func(e models.Entry) bool {
		return e.FuelConsumed == 10 &&
			e.FuelCost == 1000 &&
			e.TripEarnings == 1500 &&
			e.AmortizedFixedCosts == 1000 &&
			e.NetProfit == e.TripEarnings-e.TotalExpenses
	})).Return(42, nil)
	cache.On("Set", "entry:42", mock.Anything, time.Hour).Return(nil)

	id, err := svc.CreateEntry(context.Background(), "driver1", models.EntryRequest{
		VehicleID:         7,
		EntryDate:         "2026-01-15",
		DistanceTravelled: 100,
		FuelPrice:         100,
	})
	require.NoError(t, err)
	assert.Equal(t, 42, id)
	entryRepo.AssertExpectations(t)
}

func TestCreateEntry_RejectsFutureDate(t *testing.T) {
	svc := New(new(EntryRepoMock), new(VehicleRepoMock), new(CacheMock), discardLogger())

	future := time.Now().UTC().AddDate(0, 0, 2).Format("2006-01-02")
	_, err := svc.CreateEntry(context.Background(), "driver1", models.EntryRequest{
		VehicleID:         7,
		EntryDate:         future,
		DistanceTravelled: 100,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "future")
}

func TestCreateEntry_CacheFailureNotFatal(t *testing.T) {
	entryRepo := new(EntryRepoMock)
	vehicleRepo := new(VehicleRepoMock)
	cache := new(CacheMock)
	svc := New(entryRepo, vehicleRepo, cache, discardLogger())

	vehicleRepo.On("GetVehicle", mock.Anything, 7, "driver1").Return(testVehicle(), nil)
	entryRepo.On("CreateEntry", mock.Anything, mock.Anything).Return(42, nil)
	cache.On("Set", "entry:42", mock.Anything, time.Hour).Return(assert.AnError)

	id, err := svc.CreateEntry(context.Background(), "driver1", models.EntryRequest{
		VehicleID:         7,
		EntryDate:         "2026-01-15",
		DistanceTravelled: 100,
		FuelPrice:         100,
	})
	require.NoError(t, err)
	assert.Equal(t, 42, id)
}

func TestReadEntry_CacheHit(t *testing.T) {
	entryRepo := new(EntryRepoMock)
	cache := new(CacheMock)
	svc := New(entryRepo, new(VehicleRepoMock), cache, discardLogger())

	cached := &models.Entry{ID: 42, Username: "driver1", NetProfit: 500}
	cache.On("Get", "entry:42", mock.Anything).Run(func(args mock.Arguments) {
		ptr := args.Get(1).(**models.Entry)
		*ptr = cached
	}).Return(true, nil)

	entry, err := svc.ReadEntry(context.Background(), 42, "driver1")
	require.NoError(t, err)
	assert.Equal(t, cached, entry)
	entryRepo.AssertNotCalled(t, "ReadEntry", mock.Anything, mock.Anything, mock.Anything)
}

func TestReadEntry_CacheMissFallsThrough(t *testing.T) {
	entryRepo := new(EntryRepoMock)
	cache := new(CacheMock)
	svc := New(entryRepo, new(VehicleRepoMock), cache, discardLogger())

	stored := &models.Entry{ID: 42, Username: "driver1", NetProfit: 500}
	cache.On("Get", "entry:42", mock.Anything).Return(false, nil)
	entryRepo.On("ReadEntry", mock.Anything, 42, "driver1").Return(stored, nil)
	cache.On("Set", "entry:42", stored, time.Hour).Return(nil)

	entry, err := svc.ReadEntry(context.Background(), 42, "driver1")
	require.NoError(t, err)
	assert.Equal(t, stored, entry)
	cache.AssertExpectations(t)
}

func TestRemoveEntry_InvalidatesCache(t *testing.T) {
	entryRepo := new(EntryRepoMock)
	cache := new(CacheMock)
	svc := New(entryRepo, new(VehicleRepoMock), cache, discardLogger())

	cache.On("Invalidate", "entry:42").Return(nil)
	entryRepo.On("RemoveEntry", mock.Anything, 42, "driver1").Return(1, nil)

	count, err := svc.RemoveEntry(context.Background(), 42, "driver1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	cache.AssertExpectations(t)
}

func TestCreateVehicle_EnforcesPlanLimit(t *testing.T) {
	vehicleRepo := new(VehicleRepoMock)
	svc := New(new(EntryRepoMock), vehicleRepo, new(CacheMock), discardLogger())

	limits := entitlement.LimitsFor(entitlement.PlanTrial)
	vehicleRepo.On("CountActiveVehicles", mock.Anything, "driver1").Return(limits.MaxVehicles, nil)

	_, err := svc.CreateVehicle(context.Background(), "driver1", limits, models.VehicleRequest{
		Name:              "gazelle",
		MileageKmPerLiter: 10,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vehicle limit reached")
	vehicleRepo.AssertNotCalled(t, "CreateVehicle", mock.Anything, mock.Anything)
}

func TestCreateVehicle_BelowLimit(t *testing.T) {
	vehicleRepo := new(VehicleRepoMock)
	svc := New(new(EntryRepoMock), vehicleRepo, new(CacheMock), discardLogger())

	vehicleRepo.On("CountActiveVehicles", mock.Anything, "driver1").Return(0, nil)
	vehicleRepo.On("CreateVehicle", mock.Anything, mock.MatchedBy(func(v models.Vehicle) bool {
		return v.Username == "driver1" && v.IsActive
	})).Return(7, nil)

	id, err := svc.CreateVehicle(context.Background(), "driver1", entitlement.LimitsFor(entitlement.PlanBasic), models.VehicleRequest{
		Name:              "gazelle",
		MileageKmPerLiter: 10,
		EarningMode:       models.EarningPerDistance,
		EarningRate:       15,
	})
	require.NoError(t, err)
	assert.Equal(t, 7, id)
}

func TestListEntries_BoundedByHistoryWindow(t *testing.T) {
	entryRepo := new(EntryRepoMock)
	svc := New(entryRepo, new(VehicleRepoMock), new(CacheMock), discardLogger())

	limits := entitlement.LimitsFor(entitlement.PlanBasic)
	entryRepo.On("ListEntries", mock.Anything, "driver1", mock.MatchedBy(func(since time.Time) bool {
		oldest := time.Now().UTC().AddDate(0, 0, -limits.TripHistoryDays)
		return !since.After(oldest)
	}), 50, 0).Return([]*models.Entry{}, nil)

	_, err := svc.ListEntries(context.Background(), "driver1", limits, 50, 0)
	require.NoError(t, err)
	entryRepo.AssertExpectations(t)
}
