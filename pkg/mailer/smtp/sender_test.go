package smtp

import (
	"context"
	"errors"
	"net/textproto"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendio/invoicemail/pkg/mailer"
)

func validConfig() Config {
	return Config{
		Host:     "smtp.example.com",
		Port:     587,
		Username: "billing@example.com",
		Password: "app-password",
		Timeout:  30 * time.Second,
	}
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{
			name:   "missing host",
			modify: func(c *Config) { c.Host = "" },
			errMsg: "Host is required",
		},
		{
			name:   "zero port",
			modify: func(c *Config) { c.Port = 0 },
			errMsg: "Port must be between",
		},
		{
			name:   "port out of range",
			modify: func(c *Config) { c.Port = 70000 },
			errMsg: "Port must be between",
		},
		{
			name:   "missing username",
			modify: func(c *Config) { c.Username = "" },
			errMsg: "Username is required",
		},
		{
			name:   "missing password",
			modify: func(c *Config) { c.Password = "" },
			errMsg: "Password is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.modify(&cfg)

			s, err := New(cfg)
			require.Error(t, err)
			require.Nil(t, s)
			assert.ErrorIs(t, err, mailer.ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestNew_DefaultsTimeout(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Timeout = 0

	s, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, s.config.Timeout)
}

func TestMustNew_PanicsOnInvalidConfig(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		MustNew(Config{})
	})

	assert.NotPanics(t, func() {
		MustNew(validConfig())
	})
}

func TestGmailConfig(t *testing.T) {
	t.Parallel()

	cfg := GmailConfig("me@gmail.com", "abcd efgh ijkl mnop")
	assert.Equal(t, "smtp.gmail.com", cfg.Host)
	assert.Equal(t, 587, cfg.Port)
	assert.Equal(t, "me@gmail.com", cfg.Username)
	assert.Equal(t, 30*time.Second, cfg.Timeout)

	s, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, s.ValidateConfig())
}

func TestSender_ValidateConfig(t *testing.T) {
	t.Parallel()

	s := MustNew(validConfig())
	require.NoError(t, s.ValidateConfig())
}

func TestSender_Send_CancelledContext(t *testing.T) {
	t.Parallel()

	s := MustNew(validConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Send(ctx, &mailer.Email{
		From:    "billing@example.com",
		To:      []string{"customer@example.com"},
		Subject: "Factura #ORD-1",
		HTML:    "<p>hola</p>",
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestSender_Send_InvalidAddresses(t *testing.T) {
	t.Parallel()

	s := MustNew(validConfig())

	t.Run("bad sender", func(t *testing.T) {
		t.Parallel()
		err := s.Send(context.Background(), &mailer.Email{
			From:    "not an address",
			To:      []string{"customer@example.com"},
			Subject: "Factura",
			HTML:    "<p>hola</p>",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid sender address")
	})

	t.Run("bad recipient", func(t *testing.T) {
		t.Parallel()
		err := s.Send(context.Background(), &mailer.Email{
			From:    "billing@example.com",
			To:      []string{"@@@"},
			Subject: "Factura",
			HTML:    "<p>hola</p>",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid recipient address")
	})
}

func TestSender_Send_ConnectionRefused(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = 1 // nothing listens here
	cfg.Timeout = 500 * time.Millisecond

	s := MustNew(cfg)
	err := s.Send(context.Background(), &mailer.Email{
		From:    "billing@example.com",
		To:      []string{"customer@example.com"},
		Subject: "Factura #ORD-1",
		HTML:    "<p>hola</p>",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, mailer.ErrSendFailed)
	assert.Contains(t, err.Error(), "failed to connect to SMTP relay")
}

func TestCompose_EnvelopeAndHeaders(t *testing.T) {
	t.Parallel()

	s := MustNew(validConfig())

	raw, from, rcpts, err := s.compose(&mailer.Email{
		From:    "Vendio <billing@example.com>",
		To:      []string{"Ana García <ana@example.com>"},
		CC:      []string{"copy@example.com"},
		BCC:     []string{"archive@example.com"},
		ReplyTo: "soporte@example.com",
		Subject: "Factura #ORD-42",
		HTML:    "<p>Adjuntamos su factura.</p>",
		Headers: map[string]string{"X-Order-ID": "ORD-42"},
		Tags:    mailer.SimpleTags("invoice"),
		Attachments: []mailer.Attachment{
			{Filename: "Factura_ORD-42.pdf", ContentType: "application/pdf", Content: []byte("%PDF-1.4 fake")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "billing@example.com", from)
	assert.ElementsMatch(t, []string{"ana@example.com", "copy@example.com", "archive@example.com"}, rcpts)

	msg := string(raw)
	assert.Contains(t, msg, "Subject: ")
	assert.Contains(t, msg, "X-Order-Id: ORD-42")
	assert.Contains(t, msg, "X-Tags: invoice")
	assert.Contains(t, msg, "Message-Id: <")
	assert.Contains(t, msg, `filename="Factura_ORD-42.pdf"`)
	// BCC goes on the envelope only, never into the headers.
	assert.NotContains(t, msg, "archive@example.com")
}

func TestClassify_SMTPStatus(t *testing.T) {
	t.Parallel()

	cause := &textproto.Error{Code: 535, Msg: "5.7.8 Username and Password not accepted"}
	err := classify(errors.Join(errors.New("authentication failed"), cause))

	require.ErrorIs(t, err, mailer.ErrSendFailed)
	var sendErr *mailer.SendError
	require.ErrorAs(t, err, &sendErr)
	assert.Equal(t, 535, sendErr.Code)
	assert.False(t, sendErr.Temporary())

	transient := classify(&textproto.Error{Code: 421, Msg: "4.7.0 Try again later"})
	require.ErrorIs(t, transient, mailer.ErrSendFailed)
	require.ErrorAs(t, transient, &sendErr)
	assert.True(t, sendErr.Temporary())

	// Failures without an SMTP status still classify as transport errors.
	plain := classify(errors.New("failed to start TLS: handshake aborted"))
	require.ErrorIs(t, plain, mailer.ErrSendFailed)
}

func TestBareAddress(t *testing.T) {
	t.Parallel()

	got, err := bareAddress("José Núñez <jose@example.com>")
	require.NoError(t, err)
	assert.Equal(t, "jose@example.com", got)

	got, err = bareAddress("jose@example.com")
	require.NoError(t, err)
	assert.Equal(t, "jose@example.com", got)

	_, err = bareAddress("not an address")
	require.Error(t, err)
}
