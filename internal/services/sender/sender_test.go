package sender

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/rbenzing/slimbooks-app/internal/lib/smtp"
	"github.com/rbenzing/slimbooks-app/internal/models"
)

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Connect() (smtp.Client, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(smtp.Client), args.Error(1)
}

func (m *MockTransport) GetSMTPUser() string {
	args := m.Called()
	return args.String(0)
}

type MockSMTPClient struct {
	mock.Mock
}

func (m *MockSMTPClient) Mail(from string) error {
	return m.Called(from).Error(0)
}

func (m *MockSMTPClient) Rcpt(to string) error {
	return m.Called(to).Error(0)
}

func (m *MockSMTPClient) Data() (io.WriteCloser, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.WriteCloser), args.Error(1)
}

func (m *MockSMTPClient) Close() error {
	return m.Called().Error(0)
}

func (m *MockSMTPClient) Quit() error {
	return m.Called().Error(0)
}

type MockSMTPWriter struct {
	mock.Mock
	written []byte
}

func (m *MockSMTPWriter) Write(p []byte) (n int, err error) {
	m.written = append(m.written, p...)
	args := m.Called(p)
	return args.Int(0), args.Error(1)
}

func (m *MockSMTPWriter) Close() error {
	return m.Called().Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestSenderService_SendActivationEmail(t *testing.T) {
	task := models.ActivationTask{
		Email:     "new@example.com",
		FirstName: "Ivan",
		Token:     "signed-token",
	}
	body, err := json.Marshal(task)
	assert.NoError(t, err)

	tests := []struct {
		name          string
		body          []byte
		setupMocks    func(*MockTransport) *MockSMTPWriter
		expectedError bool
	}{
		{
			name: "успешная отправка письма активации",
			body: body,
			setupMocks: func(tr *MockTransport) *MockSMTPWriter {
				mockClient := new(MockSMTPClient)
				mockWriter := new(MockSMTPWriter)

				tr.On("GetSMTPUser").Return("admin@slimbooks.local")
				tr.On("Connect").Return(mockClient, nil).Once()
				mockClient.On("Mail", "admin@slimbooks.local").Return(nil).Once()
				mockClient.On("Rcpt", "new@example.com").Return(nil).Once()
				mockClient.On("Data").Return(mockWriter, nil).Once()
				mockWriter.On("Write", mock.AnythingOfType("[]uint8")).Return(100, nil).Once()
				mockWriter.On("Close").Return(nil).Once()
				mockClient.On("Quit").Return(nil).Once()
				mockClient.On("Close").Return(nil).Once()
				return mockWriter
			},
		},
		{
			name: "некорректное тело сообщения",
			body: []byte("not-json"),
			setupMocks: func(_ *MockTransport) *MockSMTPWriter {
				return nil
			},
			expectedError: true,
		},
		{
			name: "SMTP-сервер недоступен",
			body: body,
			setupMocks: func(tr *MockTransport) *MockSMTPWriter {
				tr.On("GetSMTPUser").Return("admin@slimbooks.local")
				tr.On("Connect").Return(nil, errors.New("connection refused")).Once()
				return nil
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockTransport := new(MockTransport)
			mockWriter := tt.setupMocks(mockTransport)

			service := NewSenderService(mockTransport, "http://localhost:8080/", newNoopLogger())
			err := service.SendActivationEmail(tt.body)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				// Ссылка активации собирается из базового адреса без двойного слэша.
				assert.True(t, strings.Contains(string(mockWriter.written),
					"http://localhost:8080/activate?token=signed-token"))
			}
			mockTransport.AssertExpectations(t)
		})
	}
}
