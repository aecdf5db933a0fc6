package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vendio/invoicemail/pkg/invoice"
)

// InvoiceData is the model passed to the invoice template.
type InvoiceData struct {
	OrderID      string
	Number       string
	Date         string
	CustomerName string
	Items        []InvoiceItemData
	Subtotal     string
	Tax          string
	Total        string
	PaymentURL   string
	Notes        string
}

// InvoiceItemData is one rendered line of the invoice.
type InvoiceItemData struct {
	Description string
	Quantity    int
	UnitPrice   string
	Total       string
}

// SendInvoice renders, generates and transmits the invoice email for one
// completed purchase: HTML body plus a PDF attachment named
// "Factura_<orderID>.pdf". The call is synchronous and never retries;
// failures come back classified (ErrInvalidInput, ErrIncompleteData,
// ErrInvalidConfig, ErrTemplateNotFound, ErrSendFailed, ErrUnknown) with
// the underlying cause joined in.
func (m *Mailer) SendInvoice(ctx context.Context, inv *invoice.Invoice, recipientEmail, recipientName string) error {
	// Fail-fast preconditions, checked in order. No rendering or transport
	// work happens until all of them pass.
	if inv == nil {
		return m.fail(ctx, "", recipientEmail,
			errors.Join(ErrInvalidInput, errors.New("invoice is required")))
	}
	if strings.TrimSpace(recipientEmail) == "" {
		return m.fail(ctx, inv.OrderID, recipientEmail,
			errors.Join(ErrInvalidInput, errors.New("recipient address is required")))
	}
	if err := inv.Complete(); err != nil {
		return m.fail(ctx, inv.OrderID, recipientEmail, errors.Join(ErrIncompleteData, err))
	}
	if err := m.config.Validate(); err != nil {
		return m.fail(ctx, inv.OrderID, recipientEmail, err)
	}
	if v, ok := m.sender.(ConfigValidator); ok {
		if err := v.ValidateConfig(); err != nil {
			return m.fail(ctx, inv.OrderID, recipientEmail, err)
		}
	}
	if m.pdf == nil {
		return m.fail(ctx, inv.OrderID, recipientEmail,
			fmt.Errorf("%w: no PDF generator configured", ErrInvalidConfig))
	}

	m.log.InfoContext(ctx, "sending invoice email",
		slog.String("order_id", inv.OrderID),
		slog.String("recipient", recipientEmail),
	)
	m.log.InfoContext(ctx, "mailer configuration",
		slog.String("sender", Recipient(m.config.SenderName, m.config.SenderEmail)),
		slog.String("template", m.config.InvoiceTemplate),
		slog.Duration("send_timeout", m.config.SendTimeout),
	)

	result, err := m.renderer.Render(m.config.DefaultLayout, m.config.InvoiceTemplate, invoiceData(inv))
	if err != nil {
		return m.fail(ctx, inv.OrderID, recipientEmail, err)
	}
	m.log.InfoContext(ctx, "invoice body rendered",
		slog.String("order_id", inv.OrderID),
		slog.Int("html_length", len(result.HTML)),
	)

	doc, err := m.pdf.GenerateInvoicePDF(ctx, inv)
	if err != nil {
		return m.fail(ctx, inv.OrderID, recipientEmail, errors.Join(ErrUnknown, err))
	}
	// The attachment references the document buffer directly; release must
	// stay deferred so it runs only after the transport call has returned.
	defer doc.Release()
	m.log.InfoContext(ctx, "invoice PDF generated",
		slog.String("order_id", inv.OrderID),
		slog.Int("pdf_bytes", len(doc.Bytes())),
	)

	subject, err := m.invoiceSubject(inv, result)
	if err != nil {
		return m.fail(ctx, inv.OrderID, recipientEmail, err)
	}

	email := &Email{
		From:    Recipient(m.config.SenderName, m.config.SenderEmail),
		To:      []string{Recipient(recipientName, recipientEmail)},
		Subject: subject,
		HTML:    result.HTML,
		Text:    result.Text,
		Tags:    SimpleTags("invoice"),
		Attachments: []Attachment{{
			Filename:    fmt.Sprintf("Factura_%s.pdf", inv.OrderID),
			ContentType: "application/pdf",
			Content:     doc.Bytes(),
		}},
	}

	sendCtx, cancel := context.WithTimeout(ctx, m.config.SendTimeout)
	defer cancel()

	if err := m.sender.Send(sendCtx, email); err != nil {
		return m.fail(ctx, inv.OrderID, recipientEmail, errors.Join(ErrSendFailed, err))
	}

	m.log.InfoContext(ctx, "invoice email sent",
		slog.String("order_id", inv.OrderID),
		slog.String("recipient", recipientEmail),
	)
	return nil
}

// invoiceSubject resolves the subject from template metadata, falling back
// to the configured subject plus the order id so the identifier is always
// present.
func (m *Mailer) invoiceSubject(inv *invoice.Invoice, result *RenderResult) (string, error) {
	if fromMeta, ok := result.Metadata["Subject"].(string); ok && fromMeta != "" {
		return m.processSubject(fromMeta, invoiceData(inv))
	}
	return fmt.Sprintf("%s #%s", m.config.FallbackSubject, inv.OrderID), nil
}

// fail logs the classified failure with full detail before propagating it.
func (m *Mailer) fail(ctx context.Context, orderID, recipient string, err error) error {
	m.log.ErrorContext(ctx, "invoice email failed",
		slog.String("order_id", orderID),
		slog.String("recipient", recipient),
		slog.String("classification", Classify(err)),
		slog.Any("error", err),
	)
	return err
}

// invoiceData flattens the aggregate into template-friendly strings.
func invoiceData(inv *invoice.Invoice) InvoiceData {
	items := make([]InvoiceItemData, len(inv.Items))
	for i, it := range inv.Items {
		items[i] = InvoiceItemData{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   inv.FormatAmount(it.UnitPrice),
			Total:       inv.FormatAmount(it.Total()),
		}
	}

	data := InvoiceData{
		OrderID:    inv.OrderID,
		Number:     inv.Number,
		Items:      items,
		Subtotal:   inv.FormatAmount(inv.Subtotal()),
		Tax:        inv.FormatAmount(inv.TaxAmount()),
		Total:      inv.FormatAmount(inv.Total()),
		PaymentURL: inv.PaymentURL,
		Notes:      inv.Notes,
	}
	if inv.Customer != nil {
		data.CustomerName = inv.Customer.Name
	}
	if !inv.IssuedAt.IsZero() {
		data.Date = inv.IssuedAt.Format("02/01/2006")
	}
	return data
}
