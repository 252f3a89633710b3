package scan

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/fleet-ledger/internal/entitlement"
	"github.com/magabrotheeeer/fleet-ledger/internal/http/middlewarectx"
	"github.com/magabrotheeeer/fleet-ledger/internal/services/reconcile"
)

// MockService реализует интерфейс scan.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Run(ctx context.Context, username string, now time.Time) (*reconcile.Report, error) {
	args := m.Called(ctx, username, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reconcile.Report), args.Error(1)
}

func TestScanHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	report := &reconcile.Report{
		Plan:                 entitlement.PlanBasic,
		CorrectionWindowDays: 7,
		Correctable: []time.Time{
			time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 1, 11, 0, 0, 0, 0, time.UTC),
		},
		SettledDates: []time.Time{
			time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC),
		},
		SettledCount: 1,
	}

	tests := []struct {
		name           string
		username       string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:     "успешная сверка журнала",
			username: "testuser",
			setupMock: func(m *MockService) {
				m.On("Run", mock.Anything, "testuser", mock.AnythingOfType("time.Time")).
					Return(report, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody: `{"status":"OK","data":{
				"plan":"basic",
				"correction_window_days":7,
				"correctable":["2026-01-10T00:00:00Z","2026-01-11T00:00:00Z"],
				"settled_dates":["2026-01-03T00:00:00Z"],
				"settled_count":1}}`,
		},
		{
			name:           "отсутствует авторизация",
			username:       "",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"status":"Error","error":"unauthorized"}`,
		},
		{
			name:     "ошибка сервиса",
			username: "testuser",
			setupMock: func(m *MockService) {
				m.On("Run", mock.Anything, "testuser", mock.AnythingOfType("time.Time")).
					Return(nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"could not reconcile ledger"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/reconcile/scan", nil)

			ctx := context.WithValue(req.Context(), middlewarectx.User, tt.username)
			ctx = context.WithValue(ctx, middleware.RequestIDKey, "req-id")
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
			mockService.AssertExpectations(t)
		})
	}
}
