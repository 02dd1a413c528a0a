// Package email implementa ports.EmailSender sobre SMTP (gomail) y un sender que solo registra.
package email

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/jhoicas/flota-api/internal/application/ports"
	"github.com/jhoicas/flota-api/pkg/config"
)

var (
	_ ports.EmailSender = (*SMTPSender)(nil)
	_ ports.EmailSender = (*LogSender)(nil)
)

// dialer lo que SMTPSender usa de gomail.Dialer.
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPSender envía texto plano por SMTP. Una conexión por mensaje.
type SMTPSender struct {
	from   string
	dialer dialer
	log    zerolog.Logger
}

// NewSMTPSender construye el sender con la configuración SMTP.
func NewSMTPSender(cfg config.SMTPConfig, log zerolog.Logger) *SMTPSender {
	return &SMTPSender{
		from:   cfg.From,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		log:    log,
	}
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	s.log.Debug().Str("to", to).Str("subject", subject).Msg("email enviado")
	return nil
}

// LogSender registra el correo en lugar de enviarlo (SMTP deshabilitado, desarrollo).
type LogSender struct {
	log zerolog.Logger
}

func NewLogSender(log zerolog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, to, subject, body string) error {
	s.log.Info().Str("to", to).Str("subject", subject).Str("body", body).Msg("email (smtp deshabilitado)")
	return nil
}

// New elige el sender según cfg.Enabled.
func New(cfg config.SMTPConfig, log zerolog.Logger) ports.EmailSender {
	if cfg.Enabled {
		return NewSMTPSender(cfg, log)
	}
	return NewLogSender(log)
}
