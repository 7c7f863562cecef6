package email

import (
	"context"
	"fmt"

	gomail "gopkg.in/gomail.v2"
)

// Service sends transactional email on behalf of the application.
type Service interface {
	SendWelcome(ctx context.Context, to string, name string) error
	SendDigest(ctx context.Context, to string, subject string, htmlBody string) error
	SendCustom(ctx context.Context, to string, subject string, content string) error
}

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type service struct {
	dialer *gomail.Dialer
	from   string
}

func NewService(cfg Config) Service {
	return &service{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *service) SendWelcome(ctx context.Context, to string, name string) error {
	body := fmt.Sprintf("<p>Hi %s,</p><p>Welcome to Probook. Your workspace is ready.</p>", name)
	return s.send(ctx, to, "Welcome to Probook", body)
}

func (s *service) SendDigest(ctx context.Context, to string, subject string, htmlBody string) error {
	return s.send(ctx, to, subject, htmlBody)
}

func (s *service) SendCustom(ctx context.Context, to string, subject string, content string) error {
	return s.send(ctx, to, subject, content)
}

func (s *service) send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}
