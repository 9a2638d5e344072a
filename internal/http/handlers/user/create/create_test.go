package create

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/rbenzing/slimbooks-app/internal/http/middlewarectx"
	"github.com/rbenzing/slimbooks-app/internal/models"
	userservice "github.com/rbenzing/slimbooks-app/internal/services/user"
)

// MockService реализует интерфейс create.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Create(ctx context.Context, form models.UserForm) (int64, error) {
	args := m.Called(ctx, form)
	return args.Get(0).(int64), args.Error(1)
}

// MockSessions реализует интерфейс create.Sessions
type MockSessions struct {
	mock.Mock
}

func (m *MockSessions) SetFlashError(ctx context.Context, sid, msg string) error {
	return m.Called(ctx, sid, msg).Error(0)
}
func (m *MockSessions) SetFlashSuccess(ctx context.Context, sid, msg string) error {
	return m.Called(ctx, sid, msg).Error(0)
}
func (m *MockSessions) SetFormData(ctx context.Context, sid string, form map[string]string) error {
	return m.Called(ctx, sid, form).Error(0)
}

func postForm(form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/users/create", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	ctx := context.WithValue(req.Context(), middlewarectx.SID, "sid-1")
	return req.WithContext(ctx)
}

func validForm() url.Values {
	return url.Values{
		"first_name": {"Ivan"},
		"last_name":  {"Petrov"},
		"email":      {"ivan@example.com"},
		"role_id":    {"2"},
	}
}

func TestCreateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name        string
		form        url.Values
		setupMocks  func(*MockService, *MockSessions)
		expectedLoc string
	}{
		{
			name: "успешное создание",
			form: validForm(),
			setupMocks: func(s *MockService, sess *MockSessions) {
				s.On("Create", mock.Anything, models.UserForm{
					FirstName: "Ivan",
					LastName:  "Petrov",
					Email:     "ivan@example.com",
					RoleID:    "2",
				}).Return(int64(7), nil).Once()
				sess.On("SetFlashSuccess", mock.Anything, "sid-1", "User created, activation email sent").Return(nil).Once()
			},
			expectedLoc: "/users",
		},
		{
			name: "пустая почта не проходит валидацию",
			form: url.Values{
				"first_name": {"Ivan"},
				"last_name":  {"Petrov"},
				"role_id":    {"2"},
			},
			setupMocks: func(_ *MockService, sess *MockSessions) {
				sess.On("SetFlashError", mock.Anything, "sid-1", "field Email is a required field").Return(nil).Once()
				sess.On("SetFormData", mock.Anything, "sid-1", mock.Anything).Return(nil).Once()
			},
			expectedLoc: "/users/create",
		},
		{
			name: "почта занята",
			form: validForm(),
			setupMocks: func(s *MockService, sess *MockSessions) {
				s.On("Create", mock.Anything, mock.Anything).Return(int64(0), userservice.ErrEmailTaken).Once()
				sess.On("SetFlashError", mock.Anything, "sid-1", "email is already in use").Return(nil).Once()
				sess.On("SetFormData", mock.Anything, "sid-1", mock.MatchedBy(func(data map[string]string) bool {
					return data["email"] == "ivan@example.com"
				})).Return(nil).Once()
			},
			expectedLoc: "/users/create",
		},
		{
			name: "системный сбой без деталей",
			form: validForm(),
			setupMocks: func(s *MockService, sess *MockSessions) {
				s.On("Create", mock.Anything, mock.Anything).Return(int64(0), errors.New("db error")).Once()
				sess.On("SetFlashError", mock.Anything, "sid-1", "Could not create user").Return(nil).Once()
				sess.On("SetFormData", mock.Anything, "sid-1", mock.Anything).Return(nil).Once()
			},
			expectedLoc: "/users/create",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			mockSessions := new(MockSessions)
			tt.setupMocks(mockService, mockSessions)

			handler := New(logger, mockService, mockSessions, false)

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, postForm(tt.form))

			assert.Equal(t, http.StatusSeeOther, w.Code)
			assert.Equal(t, tt.expectedLoc, w.Header().Get("Location"))
			mockService.AssertExpectations(t)
			mockSessions.AssertExpectations(t)
		})
	}
}

func TestCreateHandler_DetailedErrors(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	mockService := new(MockService)
	mockSessions := new(MockSessions)
	mockService.On("Create", mock.Anything, mock.Anything).Return(int64(0), errors.New("db error")).Once()
	mockSessions.On("SetFlashError", mock.Anything, "sid-1", "Could not create user: db error").Return(nil).Once()
	mockSessions.On("SetFormData", mock.Anything, "sid-1", mock.Anything).Return(nil).Once()

	handler := New(logger, mockService, mockSessions, true)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, postForm(validForm()))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/users/create", w.Header().Get("Location"))
	mockService.AssertExpectations(t)
	mockSessions.AssertExpectations(t)
}
