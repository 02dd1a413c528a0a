package email

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/jhoicas/flota-api/pkg/config"
)

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	if d.err != nil {
		return d.err
	}
	d.sent = append(d.sent, m...)
	return nil
}

func TestSMTPSender_ArmaMensaje(t *testing.T) {
	d := &fakeDialer{}
	s := &SMTPSender{from: "no-reply@flota.local", dialer: d, log: zerolog.Nop()}

	require.NoError(t, s.Send(context.Background(), "ana@acme.co", "Hola", "cuerpo"))
	require.Len(t, d.sent, 1)
	assert.Equal(t, []string{"ana@acme.co"}, d.sent[0].GetHeader("To"))
	assert.Equal(t, []string{"Hola"}, d.sent[0].GetHeader("Subject"))
	assert.Equal(t, []string{"no-reply@flota.local"}, d.sent[0].GetHeader("From"))
}

func TestSMTPSender_PropagaError(t *testing.T) {
	s := &SMTPSender{dialer: &fakeDialer{err: errors.New("conexión rechazada")}, log: zerolog.Nop()}

	err := s.Send(context.Background(), "ana@acme.co", "Hola", "cuerpo")
	assert.ErrorContains(t, err, "conexión rechazada")
}

func TestSMTPSender_ContextoCancelado(t *testing.T) {
	d := &fakeDialer{}
	s := &SMTPSender{dialer: d, log: zerolog.Nop()}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Send(ctx, "ana@acme.co", "Hola", "cuerpo"), context.Canceled)
	assert.Empty(t, d.sent)
}

func TestNew_SegunConfiguracion(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	s := New(config.SMTPConfig{Enabled: false}, log)
	require.IsType(t, &LogSender{}, s)
	require.NoError(t, s.Send(context.Background(), "ana@acme.co", "Asunto", "cuerpo"))
	assert.Contains(t, buf.String(), "ana@acme.co")

	assert.IsType(t, &SMTPSender{}, New(config.SMTPConfig{Enabled: true, Host: "smtp", Port: 587}, log))
}
