package mailer_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Gestion-api/internal/application/ports"
	"github.com/jhoicas/Gestion-api/internal/infrastructure/mailer"
)

func TestSMTPMailer_BuildConAlternativaHTML(t *testing.T) {
	s := mailer.NewSMTPMailer(mailer.SMTPConfig{Host: "localhost", Port: 25, From: "no-reply@gestion.test", FromName: "Gestion"})
	msg := s.Build(ports.Message{To: "cliente@example.com", ToName: "Cliente", Subject: "Hola", Text: "texto", HTML: "<p>html</p>"})

	var buf bytes.Buffer
	_, err := msg.WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()
	assert.Contains(t, raw, "Subject: Hola")
	assert.Contains(t, raw, "cliente@example.com")
	assert.Contains(t, raw, "text/plain")
	assert.Contains(t, raw, "text/html")
}

func TestSMTPMailer_SendRespetaElContexto(t *testing.T) {
	// puerto 1 en localhost: la conexión falla o queda colgada; en ambos casos no hay envío
	s := mailer.NewSMTPMailer(mailer.SMTPConfig{Host: "127.0.0.1", Port: 1, From: "a@b.test"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.Send(ctx, ports.Message{To: "x@y.test", Subject: "s", Text: "t"})
	assert.Error(t, err)
}

func TestLogMailer_RegistraElMensaje(t *testing.T) {
	var buf bytes.Buffer
	m := mailer.NewLogMailer(zerolog.New(&buf))
	require.NoError(t, m.Send(context.Background(), ports.Message{To: "x@y.test", Subject: "Asunto"}))
	assert.Contains(t, buf.String(), "Asunto")
	assert.Contains(t, buf.String(), "x@y.test")
}
