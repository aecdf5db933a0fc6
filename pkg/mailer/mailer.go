package mailer

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	texttemplate "text/template"

	"github.com/vendio/invoicemail/pkg/logger"
)

// Mailer provides high-level email sending with template rendering.
// It is immutable after creation; concurrent use is safe.
type Mailer struct {
	sender   Sender
	renderer *Renderer
	pdf      PDFGenerator
	log      *slog.Logger
	config   Config
}

// Option configures a Mailer.
type Option func(*Mailer)

// WithLogger sets the structured logger. Defaults to a no-op logger.
func WithLogger(log *slog.Logger) Option {
	return func(m *Mailer) {
		if log != nil {
			m.log = log
		}
	}
}

// WithPDFGenerator sets the generator used for invoice attachments.
// Required for SendInvoice.
func WithPDFGenerator(gen PDFGenerator) Option {
	return func(m *Mailer) {
		m.pdf = gen
	}
}

// New creates a new Mailer with the given sender and renderer.
func New(sender Sender, renderer *Renderer, cfg Config, opts ...Option) *Mailer {
	m := &Mailer{
		sender:   sender,
		renderer: renderer,
		config:   cfg,
		log:      logger.NewNope(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SendParams contains parameters for sending a templated email.
type SendParams struct {
	To       string // Single recipient (most common case)
	Template string // Template filename (e.g., "invoice.md")
	Data     any    // Template data

	// Optional overrides
	Subject     string       // Override template subject
	Layout      string       // Override default layout
	From        string       // Override default sender
	ReplyTo     string       // Reply-to address
	CC          []string     // Carbon copy
	BCC         []string     // Blind carbon copy
	Tags        Tags         // Provider tags
	Attachments []Attachment // Binary attachments
}

// Send renders a template and sends an email.
// Subject resolution: params.Subject > template metadata > config fallback.
func (m *Mailer) Send(ctx context.Context, params SendParams) error {
	if params.To == "" {
		return errors.Join(ErrInvalidInput, errors.New("recipient address is required"))
	}

	layout := params.Layout
	if layout == "" {
		layout = m.config.DefaultLayout
	}

	result, err := m.renderer.Render(layout, params.Template, params.Data)
	if err != nil {
		return err
	}

	subject, err := m.resolveSubject(params.Subject, result, params.Data)
	if err != nil {
		return err
	}

	email := &Email{
		To:          []string{params.To},
		Subject:     subject,
		HTML:        result.HTML,
		Text:        result.Text,
		From:        params.From,
		ReplyTo:     params.ReplyTo,
		CC:          params.CC,
		BCC:         params.BCC,
		Tags:        params.Tags,
		Attachments: params.Attachments,
	}
	if email.From == "" {
		email.From = Recipient(m.config.SenderName, m.config.SenderEmail)
	}

	if err := m.sender.Send(ctx, email); err != nil {
		return errors.Join(ErrSendFailed, err)
	}

	return nil
}

// SendRaw sends a pre-built email without template rendering.
func (m *Mailer) SendRaw(ctx context.Context, email *Email) error {
	if len(email.To) == 0 {
		return errors.Join(ErrInvalidInput, errors.New("recipient address is required"))
	}
	if email.Subject == "" {
		return errors.Join(ErrInvalidInput, errors.New("subject is required"))
	}
	if email.HTML == "" {
		return errors.Join(ErrInvalidInput, errors.New("HTML body is required"))
	}
	if email.From == "" {
		email.From = Recipient(m.config.SenderName, m.config.SenderEmail)
	}

	if err := m.sender.Send(ctx, email); err != nil {
		return errors.Join(ErrSendFailed, err)
	}

	return nil
}

// resolveSubject picks the subject (override > metadata > fallback) and
// expands {{.Field}} placeholders against the template data.
func (m *Mailer) resolveSubject(override string, result *RenderResult, data any) (string, error) {
	subject := override
	if subject == "" {
		if fromMeta, ok := result.Metadata["Subject"].(string); ok {
			subject = fromMeta
		} else {
			subject = m.config.FallbackSubject
		}
	}
	return m.processSubject(subject, data)
}

func (m *Mailer) processSubject(subject string, data any) (string, error) {
	tmpl, err := texttemplate.New("subject").Parse(subject)
	if err != nil {
		return "", errors.Join(ErrRenderFailed, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", errors.Join(ErrRenderFailed, err)
	}

	return buf.String(), nil
}
