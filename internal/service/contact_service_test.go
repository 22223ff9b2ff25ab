package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/hunt-api/internal/domain/entity"
	apperrors "github.com/yourusername/hunt-api/internal/pkg/errors"
)

// MockContactRepository реализует repository.ContactRepository
type MockContactRepository struct {
	mock.Mock
}

func (m *MockContactRepository) Create(ctx context.Context, message *entity.ContactMessage) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockContactRepository) List(ctx context.Context, limit, offset int) ([]entity.ContactMessage, int64, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.ContactMessage), args.Get(1).(int64), args.Error(2)
}

// notifyingEmailService сигналит в канал при отправке уведомления
type notifyingEmailService struct {
	sent chan *entity.ContactMessage
}

func (s *notifyingEmailService) SendContactNotification(ctx context.Context, message *entity.ContactMessage) error {
	s.sent <- message
	return nil
}

func (s *notifyingEmailService) SendHuntCompleted(ctx context.Context, toEmail, username string) error {
	return nil
}

func TestContactService_Submit(t *testing.T) {
	// Arrange
	contactRepo := new(MockContactRepository)
	contactRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.ContactMessage")).Return(nil)
	email := &notifyingEmailService{sent: make(chan *entity.ContactMessage, 1)}
	svc := NewContactService(contactRepo, email)

	// Act: поля с пробелами по краям
	message, err := svc.Submit(context.Background(), "  Jamie  ", " jamie@example.com ", "", "  Do you do group hunts?  ")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Jamie", message.Name)
	assert.Equal(t, "jamie@example.com", message.Email)
	assert.Equal(t, "Do you do group hunts?", message.Message)
	contactRepo.AssertExpectations(t)

	// Уведомление уходит асинхронно после сохранения
	select {
	case sent := <-email.sent:
		assert.Equal(t, "jamie@example.com", sent.Email)
	case <-time.After(2 * time.Second):
		t.Fatal("уведомление о сообщении не было отправлено")
	}
}

func TestContactService_SubmitValidation(t *testing.T) {
	svc := NewContactService(new(MockContactRepository), &NoopEmailService{})

	tests := []struct {
		name    string
		sender  string
		email   string
		message string
	}{
		{"пустое имя", "", "a@b.com", "hello"},
		{"пустой email", "Jamie", "", "hello"},
		{"пустое сообщение", "Jamie", "a@b.com", ""},
		{"одни пробелы", "   ", "a@b.com", "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), tt.sender, tt.email, "", tt.message)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}

func TestContactService_ListClampsPagination(t *testing.T) {
	contactRepo := new(MockContactRepository)
	// page=0 превращается в page=1, pageSize=1000 обрезается до 100
	contactRepo.On("List", mock.Anything, 100, 0).Return([]entity.ContactMessage{}, int64(0), nil)
	svc := NewContactService(contactRepo, &NoopEmailService{})

	_, _, err := svc.List(context.Background(), 0, 1000)

	require.NoError(t, err)
	contactRepo.AssertExpectations(t)
}
