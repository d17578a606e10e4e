// Package mailer implementa ports.Mailer sobre SMTP (gomail) o solo sobre el log.
package mailer

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/jhoicas/Gestion-api/internal/application/ports"
)

var (
	_ ports.Mailer = (*SMTPMailer)(nil)
	_ ports.Mailer = (*LogMailer)(nil)
)

// SMTPConfig servidor y remitente.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
}

// SMTPMailer envía cada mensaje en su propia conexión SMTP.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
	name   string
}

// NewSMTPMailer construye el sender.
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
		name:   cfg.FromName,
	}
}

// Build arma el mensaje MIME: texto plano con alternativa HTML si la hay.
func (s *SMTPMailer) Build(m ports.Message) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", s.from, s.name)
	if m.ToName != "" {
		msg.SetAddressHeader("To", m.To, m.ToName)
	} else {
		msg.SetHeader("To", m.To)
	}
	msg.SetHeader("Subject", m.Subject)
	switch {
	case m.Text != "" && m.HTML != "":
		msg.SetBody("text/plain", m.Text)
		msg.AddAlternative("text/html", m.HTML)
	case m.HTML != "":
		msg.SetBody("text/html", m.HTML)
	default:
		msg.SetBody("text/plain", m.Text)
	}
	return msg
}

// Send entrega el mensaje. gomail no acepta contexto: si ctx vence antes, se devuelve su
// error y el envío en curso termina en segundo plano.
func (s *SMTPMailer) Send(ctx context.Context, m ports.Message) error {
	msg := s.Build(m)
	done := make(chan error, 1)
	go func() { done <- s.dialer.DialAndSend(msg) }()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LogMailer registra el mensaje en lugar de enviarlo (desarrollo, SMTP sin configurar).
type LogMailer struct {
	log zerolog.Logger
}

// NewLogMailer construye el sender de solo log.
func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (l *LogMailer) Send(_ context.Context, m ports.Message) error {
	l.log.Info().Str("to", m.To).Str("subject", m.Subject).Str("text", m.Text).Msg("email (solo log)")
	return nil
}
