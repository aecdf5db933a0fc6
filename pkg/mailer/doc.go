// Package mailer sends transactional invoice emails: a rendered HTML body
// plus a generated PDF attachment, delivered through a pluggable provider.
//
// # Architecture
//
// The package consists of four cooperating pieces:
//
//   - Sender: interface that delivery providers implement (smtp, resend,
//     DevSender for local development)
//   - Renderer: converts markdown templates with YAML frontmatter to HTML,
//     searching an ordered list of template directories
//   - PDFGenerator: produces the invoice PDF as an explicitly released Document
//   - Mailer: the pipeline combining the three
//
// # Sending an invoice
//
//	sender := smtp.MustNew(smtpCfg)
//	renderer := mailer.NewRenderer(templates.FS)
//	gen := pdf.NewGenerator(pdf.Company{Name: "Vendio S.L."})
//
//	m := mailer.New(sender, renderer, cfg,
//		mailer.WithLogger(log),
//		mailer.WithPDFGenerator(gen),
//	)
//
//	err := m.SendInvoice(ctx, inv, "ana@example.com", "Ana García")
//
// SendInvoice is strictly sequential: validate, render, generate PDF,
// compose, transmit, log. Every failure is classified by a sentinel error
// (ErrInvalidInput, ErrIncompleteData, ErrInvalidConfig,
// ErrTemplateNotFound, ErrSendFailed, ErrUnknown) with the underlying cause
// joined in, and logged with full detail before propagation. The mailer
// never retries; callers that want retries can inspect
// SendError.Temporary().
//
// The PDF attachment references a pooled buffer owned by the generator. The
// buffer is released in a deferred call registered right after generation,
// so it stays readable for the whole transport call and is returned to the
// pool unconditionally afterwards, including on failure.
//
// # Generic sends
//
// Send renders any named template and delivers it; SendRaw delivers a
// pre-built Email. Both share the renderer and error taxonomy.
package mailer
