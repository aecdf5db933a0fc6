package mailer

import (
	"context"

	"github.com/vendio/invoicemail/pkg/invoice"
)

// Sender defines the minimal interface that email providers must implement.
// It accepts a fully-prepared Email and handles the actual delivery.
type Sender interface {
	// Send delivers an email message.
	// The Email must have To, Subject, and HTML already set.
	// Returns an error if delivery fails.
	Send(ctx context.Context, email *Email) error
}

// ConfigValidator is optionally implemented by senders whose configuration
// can become incomplete after construction (e.g. loaded from environment).
// The invoice pipeline checks it before any rendering work happens.
type ConfigValidator interface {
	ValidateConfig() error
}

// Document is a readable, explicitly released binary payload. Release
// returns the backing buffer to its owner; the bytes must not be read after
// Release, and Release must not run until transmission has completed.
type Document interface {
	Bytes() []byte
	Release()
}

// PDFGenerator produces the invoice PDF attached to outgoing messages.
type PDFGenerator interface {
	GenerateInvoicePDF(ctx context.Context, inv *invoice.Invoice) (Document, error)
}
