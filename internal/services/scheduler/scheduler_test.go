package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/fleet-ledger/internal/models"
	"github.com/magabrotheeeer/fleet-ledger/internal/services/reconcile"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) ListUsernames(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockReconciler struct {
	mock.Mock
}

func (m *MockReconciler) Run(ctx context.Context, username string, now time.Time) (*reconcile.Report, error) {
	args := m.Called(ctx, username, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reconcile.Report), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestService_runReconcilePass(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(*MockUserRepository, *MockReconciler)
	}{
		{
			name: "no accounts to reconcile",
			setupMocks: func(r *MockUserRepository, _ *MockReconciler) {
				r.On("ListUsernames", mock.Anything).Return([]string{}, nil).Once()
			},
		},
		{
			name: "list accounts error",
			setupMocks: func(r *MockUserRepository, _ *MockReconciler) {
				r.On("ListUsernames", mock.Anything).Return(nil, errors.New("db error")).Once()
			},
		},
		{
			name: "nothing settled - no notice published",
			setupMocks: func(r *MockUserRepository, rec *MockReconciler) {
				r.On("ListUsernames", mock.Anything).Return([]string{"driver1"}, nil).Once()
				rec.On("Run", mock.Anything, "driver1", mock.AnythingOfType("time.Time")).
					Return(&reconcile.Report{SettledCount: 0}, nil).Once()
				// GetUserByUsername не вызывается, публикации нет
			},
		},
		{
			name: "reconcile error does not stop the pass",
			setupMocks: func(r *MockUserRepository, rec *MockReconciler) {
				r.On("ListUsernames", mock.Anything).Return([]string{"driver1", "driver2"}, nil).Once()
				rec.On("Run", mock.Anything, "driver1", mock.AnythingOfType("time.Time")).
					Return(nil, errors.New("reconcile error")).Once()
				rec.On("Run", mock.Anything, "driver2", mock.AnythingOfType("time.Time")).
					Return(&reconcile.Report{SettledCount: 0}, nil).Once()
			},
		},
		{
			name: "notice build error is logged and skipped",
			setupMocks: func(r *MockUserRepository, rec *MockReconciler) {
				r.On("ListUsernames", mock.Anything).Return([]string{"driver1"}, nil).Once()
				rec.On("Run", mock.Anything, "driver1", mock.AnythingOfType("time.Time")).
					Return(&reconcile.Report{
						SettledCount: 2,
						SettledDates: []time.Time{time.Now().UTC()},
					}, nil).Once()
				r.On("GetUserByUsername", mock.Anything, "driver1").
					Return(nil, errors.New("user not found")).Once()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			rec := new(MockReconciler)
			service := New(repo, rec, newNoopLogger())

			tt.setupMocks(repo, rec)

			service.runReconcilePass(context.Background(), nil)

			repo.AssertExpectations(t)
			rec.AssertExpectations(t)
		})
	}
}

func TestService_buildNotice(t *testing.T) {
	repo := new(MockUserRepository)
	rec := new(MockReconciler)
	service := New(repo, rec, newNoopLogger())

	settled := []time.Time{
		time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC),
	}
	repo.On("GetUserByUsername", mock.Anything, "driver1").Return(&models.User{
		Username: "driver1",
		Email:    "driver1@example.com",
	}, nil).Once()

	notice, err := service.buildNotice(context.Background(), "driver1", &reconcile.Report{
		SettledCount: 2,
		SettledDates: settled,
		Correctable:  []time.Time{time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)},
	})

	assert.NoError(t, err)
	assert.Equal(t, "driver1@example.com", notice.Email)
	assert.Equal(t, "driver1", notice.Username)
	assert.Equal(t, settled, notice.SettledDates)
	assert.Equal(t, 1, notice.CorrectableCount)

	repo.AssertExpectations(t)
}

func TestService_New(t *testing.T) {
	repo := new(MockUserRepository)
	rec := new(MockReconciler)
	logger := newNoopLogger()

	service := New(repo, rec, logger)

	assert.NotNil(t, service)
	assert.Equal(t, repo, service.users)
	assert.Equal(t, rec, service.reconciler)
	assert.Equal(t, logger, service.log)
}
