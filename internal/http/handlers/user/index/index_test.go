package index

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/rbenzing/slimbooks-app/internal/http/middlewarectx"
	"github.com/rbenzing/slimbooks-app/internal/models"
	userservice "github.com/rbenzing/slimbooks-app/internal/services/user"
	"github.com/rbenzing/slimbooks-app/internal/session"
)

// MockService реализует интерфейс index.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) List(ctx context.Context, page int) (*userservice.ListPage, error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*userservice.ListPage), args.Error(1)
}

// MockSessions реализует интерфейс index.Sessions
type MockSessions struct {
	mock.Mock
}

func (m *MockSessions) PopFlash(ctx context.Context, sid string) (session.Flash, error) {
	args := m.Called(ctx, sid)
	return args.Get(0).(session.Flash), args.Error(1)
}
func (m *MockSessions) SetFlashError(ctx context.Context, sid, msg string) error {
	return m.Called(ctx, sid, msg).Error(0)
}

// MockRenderer реализует интерфейс view.Renderer
type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) Render(_ http.ResponseWriter, name string, data map[string]any) error {
	return m.Called(name, data).Error(0)
}

func withSession(r *http.Request, sid string) *http.Request {
	ctx := context.WithValue(r.Context(), middlewarectx.SID, sid)
	return r.WithContext(ctx)
}

func TestIndexHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		url            string
		setupMocks     func(*MockService, *MockSessions, *MockRenderer)
		expectedStatus int
		expectedLoc    string
	}{
		{
			name: "успешный список",
			url:  "/users?page=2",
			setupMocks: func(s *MockService, sess *MockSessions, r *MockRenderer) {
				s.On("List", mock.Anything, 2).Return(&userservice.ListPage{
					Users:      []*models.User{{ID: 1, Email: "a@b.c"}},
					Total:      45,
					TotalPages: 3,
					Page:       2,
				}, nil).Once()
				sess.On("PopFlash", mock.Anything, "sid-1").Return(session.Flash{}, nil).Once()
				r.On("Render", "users_list", mock.MatchedBy(func(data map[string]any) bool {
					return data["totalUsers"] == 45 && data["totalPages"] == 3 && data["page"] == 2
				})).Return(nil).Once()
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "некорректный номер страницы поднимается до первой",
			url:  "/users?page=abc",
			setupMocks: func(s *MockService, sess *MockSessions, r *MockRenderer) {
				s.On("List", mock.Anything, 1).Return(&userservice.ListPage{
					Users: []*models.User{}, Page: 1,
				}, nil).Once()
				sess.On("PopFlash", mock.Anything, "sid-1").Return(session.Flash{}, nil).Once()
				r.On("Render", "users_list", mock.Anything).Return(nil).Once()
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "ошибка сервиса ведет на дашборд",
			url:  "/users",
			setupMocks: func(s *MockService, sess *MockSessions, _ *MockRenderer) {
				s.On("List", mock.Anything, 1).Return(nil, errors.New("db error")).Once()
				sess.On("SetFlashError", mock.Anything, "sid-1", "Could not load users").Return(nil).Once()
			},
			expectedStatus: http.StatusSeeOther,
			expectedLoc:    "/dashboard",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			mockSessions := new(MockSessions)
			mockRenderer := new(MockRenderer)
			tt.setupMocks(mockService, mockSessions, mockRenderer)

			handler := New(logger, mockService, mockSessions, mockRenderer)

			req := withSession(httptest.NewRequest(http.MethodGet, tt.url, nil), "sid-1")
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedLoc != "" {
				assert.Equal(t, tt.expectedLoc, w.Header().Get("Location"))
			}
			mockService.AssertExpectations(t)
			mockSessions.AssertExpectations(t)
			mockRenderer.AssertExpectations(t)
		})
	}
}
