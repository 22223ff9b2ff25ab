package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"

	"github.com/yourusername/hunt-api/internal/domain/entity"
)

// EmailService sends transactional emails.
type EmailService interface {
	SendContactNotification(ctx context.Context, message *entity.ContactMessage) error
	SendHuntCompleted(ctx context.Context, toEmail, username string) error
}

// NoopEmailService is used when email sending is disabled.
type NoopEmailService struct{}

func (s *NoopEmailService) SendContactNotification(ctx context.Context, message *entity.ContactMessage) error {
	log.Printf("[EmailService] noop contact notification from=%s", message.Email)
	return nil
}

func (s *NoopEmailService) SendHuntCompleted(ctx context.Context, toEmail, username string) error {
	log.Printf("[EmailService] noop hunt completed email to=%s", toEmail)
	return nil
}

// ResendEmailService sends emails via Resend REST API.
type ResendEmailService struct {
	from   string
	inbox  string // адрес бизнеса для уведомлений о контактной форме
	client *resend.Client
}

func NewResendEmailService(apiKey, from, inbox string) (*ResendEmailService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend api key is required")
	}
	if from == "" {
		return nil, fmt.Errorf("email from is required")
	}
	if inbox == "" {
		return nil, fmt.Errorf("contact inbox address is required")
	}
	return &ResendEmailService{
		from:   from,
		inbox:  inbox,
		client: resend.NewClient(apiKey),
	}, nil
}

// SendContactNotification пересылает сообщение контактной формы на почту бизнеса
func (s *ResendEmailService) SendContactNotification(ctx context.Context, message *entity.ContactMessage) error {
	if message == nil || message.Email == "" {
		return fmt.Errorf("contact message with sender email is required")
	}

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{s.inbox},
		ReplyTo: message.Email,
		Subject: fmt.Sprintf("New contact form message from %s", message.Name),
		Text: fmt.Sprintf("Name: %s\nEmail: %s\nPhone: %s\n\n%s",
			message.Name, message.Email, message.Phone, message.Message),
	}

	return s.sendWithRetry(ctx, params, "contact-"+message.ID)
}

// SendHuntCompleted отправляет участнику письмо о завершении квеста
func (s *ResendEmailService) SendHuntCompleted(ctx context.Context, toEmail, username string) error {
	if toEmail == "" {
		return fmt.Errorf("toEmail is required")
	}

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{toEmail},
		Subject: "You completed the hunt!",
		Text:    fmt.Sprintf("Congratulations, %s! You found every location and completed the hunt.", username),
		Html:    fmt.Sprintf("<p>Congratulations, <strong>%s</strong>!</p><p>You found every location and completed the hunt.</p>", username),
	}

	return s.sendWithRetry(ctx, params, "")
}

func (s *ResendEmailService) sendWithRetry(ctx context.Context, params *resend.SendEmailRequest, idempotencyKey string) error {
	options := &resend.SendEmailOptions{}
	if strings.TrimSpace(idempotencyKey) != "" {
		options.IdempotencyKey = strings.TrimSpace(idempotencyKey)
	}

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		_, err := s.client.Emails.SendWithOptions(ctx, params, options)
		if err == nil {
			return nil
		}
		lastErr = err

		if wait, ok := resendRetryDelay(err, attempt); ok {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
				continue
			}
		}

		return fmt.Errorf("resend send failed: %w", err)
	}

	return fmt.Errorf("resend send failed after retries: %w", lastErr)
}

func resendRetryDelay(err error, attempt int) (time.Duration, bool) {
	var rateLimitErr *resend.RateLimitError
	if errors.As(err, &rateLimitErr) {
		if seconds, convErr := strconv.Atoi(strings.TrimSpace(rateLimitErr.RetryAfter)); convErr == nil && seconds > 0 {
			if seconds > 30 {
				seconds = 30
			}
			return time.Duration(seconds) * time.Second, true
		}
		return time.Duration(attempt+1) * time.Second, true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && (netErr.Timeout() || netErr.Temporary()) {
		return time.Duration(attempt+1) * 500 * time.Millisecond, true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "temporar") {
		return time.Duration(attempt+1) * 500 * time.Millisecond, true
	}

	return 0, false
}
