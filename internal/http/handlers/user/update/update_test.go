package update

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

// MockService реализует интерфейс update.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Update(ctx context.Context, id int64, form models.UserForm) error {
	return m.Called(ctx, id, form).Error(0)
}

// MockSessions реализует интерфейс update.Sessions
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

func postForm(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
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

func TestUpdateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name        string
		url         string
		form        url.Values
		setupMocks  func(*MockService, *MockSessions)
		expectedLoc string
	}{
		{
			name: "успешное обновление",
			url:  "/users/edit?id=7",
			form: validForm(),
			setupMocks: func(s *MockService, sess *MockSessions) {
				s.On("Update", mock.Anything, int64(7), models.UserForm{
					FirstName: "Ivan",
					LastName:  "Petrov",
					Email:     "ivan@example.com",
					RoleID:    "2",
				}).Return(nil).Once()
				sess.On("SetFlashSuccess", mock.Anything, "sid-1", "User updated").Return(nil).Once()
			},
			expectedLoc: "/users",
		},
		{
			name: "некорректный идентификатор",
			url:  "/users/edit?id=abc",
			form: validForm(),
			setupMocks: func(_ *MockService, sess *MockSessions) {
				sess.On("SetFlashError", mock.Anything, "sid-1", "Invalid user id").Return(nil).Once()
			},
			expectedLoc: "/users",
		},
		{
			name: "отказ возвращает на форму проверенной записи",
			url:  "/users/edit?id=7",
			form: validForm(),
			setupMocks: func(s *MockService, sess *MockSessions) {
				s.On("Update", mock.Anything, int64(7), mock.Anything).Return(userservice.ErrEmailTaken).Once()
				sess.On("SetFlashError", mock.Anything, "sid-1", "email is already in use").Return(nil).Once()
				sess.On("SetFormData", mock.Anything, "sid-1", mock.Anything).Return(nil).Once()
			},
			expectedLoc: "/users/edit?id=7",
		},
		{
			name: "запись отсутствует",
			url:  "/users/edit?id=7",
			form: validForm(),
			setupMocks: func(s *MockService, sess *MockSessions) {
				s.On("Update", mock.Anything, int64(7), mock.Anything).Return(userservice.ErrNotFound).Once()
				sess.On("SetFlashError", mock.Anything, "sid-1", "User not found").Return(nil).Once()
			},
			expectedLoc: "/users",
		},
		{
			name: "ошибка валидации",
			url:  "/users/edit?id=7",
			form: url.Values{
				"first_name": {"Ivan"},
				"last_name":  {"Petrov"},
				"email":      {"not-an-email"},
				"role_id":    {"2"},
			},
			setupMocks: func(_ *MockService, sess *MockSessions) {
				sess.On("SetFlashError", mock.Anything, "sid-1", "field Email must be a valid email address").Return(nil).Once()
				sess.On("SetFormData", mock.Anything, "sid-1", mock.MatchedBy(func(data map[string]string) bool {
					return data["email"] == "not-an-email"
				})).Return(nil).Once()
			},
			expectedLoc: "/users/edit?id=7",
		},
		{
			name: "системный сбой",
			url:  "/users/edit?id=7",
			form: validForm(),
			setupMocks: func(s *MockService, sess *MockSessions) {
				s.On("Update", mock.Anything, int64(7), mock.Anything).Return(errors.New("db error")).Once()
				sess.On("SetFlashError", mock.Anything, "sid-1", "Could not update user").Return(nil).Once()
				sess.On("SetFormData", mock.Anything, "sid-1", mock.Anything).Return(nil).Once()
			},
			expectedLoc: "/users/edit?id=7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			mockSessions := new(MockSessions)
			tt.setupMocks(mockService, mockSessions)

			handler := New(logger, mockService, mockSessions, false)

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, postForm(tt.url, tt.form))

			assert.Equal(t, http.StatusSeeOther, w.Code)
			assert.Equal(t, tt.expectedLoc, w.Header().Get("Location"))
			mockService.AssertExpectations(t)
			mockSessions.AssertExpectations(t)
		})
	}
}
