package smtp

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	jwemail "github.com/jordan-wright/email"

	"github.com/vendio/invoicemail/pkg/logger"
	"github.com/vendio/invoicemail/pkg/mailer"
)

// Sender implements mailer.Sender over SMTP with mandatory STARTTLS.
// Thread-safe: each Send owns its own connection for its lifetime.
type Sender struct {
	config Config
	auth   smtp.Auth
	log    *slog.Logger
}

// Option configures the sender.
type Option func(*Sender)

// WithLogger sets the structured logger used for transport events.
func WithLogger(log *slog.Logger) Option {
	return func(s *Sender) {
		if log != nil {
			s.log = log
		}
	}
}

// New creates an SMTP-backed sender. All fields are validated up front so
// a misconfigured service fails at startup, not on the first send.
func New(cfg Config, opts ...Option) (*Sender, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("%w: Host is required", mailer.ErrInvalidConfig)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("%w: Port must be between 1 and 65535", mailer.ErrInvalidConfig)
	}
	if cfg.Username == "" {
		return nil, fmt.Errorf("%w: Username is required", mailer.ErrInvalidConfig)
	}
	if cfg.Password == "" {
		return nil, fmt.Errorf("%w: Password is required", mailer.ErrInvalidConfig)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	s := &Sender{
		config: cfg,
		auth:   smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host),
		log:    logger.NewNope(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// MustNew creates an SMTP sender that panics on invalid config.
// Fail fast during initialization rather than letting a broken service start.
func MustNew(cfg Config, opts ...Option) *Sender {
	s, err := New(cfg, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// ValidateConfig re-checks the fields the pipeline depends on. The
// zero-value Sender is unusable, but config loaded from environment can
// legitimately be incomplete in dev setups.
func (s *Sender) ValidateConfig() error {
	if s.config.Host == "" {
		return fmt.Errorf("%w: relay host is empty", mailer.ErrInvalidConfig)
	}
	if s.config.Username == "" {
		return fmt.Errorf("%w: relay username is empty", mailer.ErrInvalidConfig)
	}
	return nil
}

// Send composes the MIME message and transmits it in one SMTP transaction.
// The attachment buffers inside email are only read during this call and
// never retained afterwards.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "smtp configuration",
		slog.String("host", s.config.Host),
		slog.Int("port", s.config.Port),
		slog.String("username", s.config.Username),
	)

	raw, from, rcpts, err := s.compose(email)
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
	s.log.InfoContext(ctx, "connecting to SMTP relay", slog.String("addr", addr))

	if err := s.transmit(ctx, addr, from, rcpts, raw); err != nil {
		return classify(err)
	}
	return nil
}

// compose builds the raw MIME message and extracts the envelope addresses.
func (s *Sender) compose(email *mailer.Email) (raw []byte, from string, rcpts []string, err error) {
	e := jwemail.NewEmail()
	e.From = email.From
	e.To = email.To
	e.Cc = email.CC
	e.Bcc = email.BCC
	e.Subject = email.Subject
	e.HTML = []byte(email.HTML)
	if email.Text != "" {
		e.Text = []byte(email.Text)
	}
	if email.ReplyTo != "" {
		e.ReplyTo = []string{email.ReplyTo}
	}

	e.Headers.Set("Message-ID", fmt.Sprintf("<%s@%s>", uuid.NewString(), s.config.Host))
	for k, v := range email.Headers {
		e.Headers.Set(k, v)
	}
	if len(email.Tags) > 0 {
		names := make([]string, 0, len(email.Tags))
		for name := range email.Tags {
			names = append(names, name)
		}
		e.Headers.Set("X-Tags", strings.Join(names, ","))
	}

	for _, att := range email.Attachments {
		a, attErr := e.Attach(bytes.NewReader(att.Content), att.Filename, att.ContentType)
		if attErr != nil {
			return nil, "", nil, fmt.Errorf("attach %s: %w", att.Filename, attErr)
		}
		if att.ContentID != "" {
			a.HTMLRelated = true
			a.Header.Set("Content-ID", fmt.Sprintf("<%s>", att.ContentID))
		}
	}

	raw, err = e.Bytes()
	if err != nil {
		return nil, "", nil, fmt.Errorf("encode message: %w", err)
	}

	from, err = bareAddress(email.From)
	if err != nil {
		return nil, "", nil, fmt.Errorf("invalid sender address %q: %w", email.From, err)
	}
	for _, list := range [][]string{email.To, email.CC, email.BCC} {
		for _, r := range list {
			addr, addrErr := bareAddress(r)
			if addrErr != nil {
				return nil, "", nil, fmt.Errorf("invalid recipient address %q: %w", r, addrErr)
			}
			rcpts = append(rcpts, addr)
		}
	}

	return raw, from, rcpts, nil
}

// transmit performs the SMTP transaction under a single deadline shared by
// dial, TLS upgrade, auth and data transfer. An encrypted channel is
// mandatory: relays without STARTTLS are rejected.
func (s *Sender) transmit(ctx context.Context, addr, from string, rcpts []string, raw []byte) error {
	deadline := time.Now().Add(s.config.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	conn, err := net.DialTimeout("tcp", addr, time.Until(deadline))
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP relay: %w", err)
	}
	defer func() { _ = conn.Close() }()
	_ = conn.SetDeadline(deadline)

	c, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer func() { _ = c.Close() }()

	if ok, _ := c.Extension("STARTTLS"); !ok {
		return fmt.Errorf("relay %s does not offer STARTTLS", addr)
	}
	if err := c.StartTLS(&tls.Config{ServerName: s.config.Host}); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	if err := c.Auth(s.auth); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	if err := c.Mail(from); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	for _, rcpt := range rcpts {
		if err := c.Rcpt(rcpt); err != nil {
			return fmt.Errorf("failed to set recipient %s: %w", rcpt, err)
		}
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("failed to open data writer: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	// Quit errors are non-fatal: the message was already accepted and some
	// relays close the connection right after DATA.
	_ = c.Quit()
	return nil
}

// classify marks every transmit failure as a transport error and surfaces
// the relay's status code so callers can tell an authentication rejection
// (535) from a full mailbox (552) without parsing error strings.
func classify(err error) error {
	var tp *textproto.Error
	if errors.As(err, &tp) {
		return errors.Join(mailer.ErrSendFailed, err, &mailer.SendError{Code: tp.Code, Msg: tp.Msg})
	}
	return errors.Join(mailer.ErrSendFailed, err)
}

// bareAddress extracts the addr-spec from an RFC 5322 address, e.g.
// "Ana García <ana@example.com>" → "ana@example.com".
func bareAddress(s string) (string, error) {
	a, err := mail.ParseAddress(s)
	if err != nil {
		return "", err
	}
	return a.Address, nil
}
