// Command send-invoice renders an invoice and emails it with a PDF
// attachment. The invoice arrives as JSON on a file or stdin; transport
// and sender identity come from the environment (see .env support in
// pkg/config).
//
// Usage:
//
//	send-invoice -invoice order.json -to customer@example.com
//	cat order.json | send-invoice -to customer@example.com -name "Ana García"
//	send-invoice -invoice order.json -to ana@example.com -dev -out ./outbox
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/vendio/invoicemail/pkg/config"
	"github.com/vendio/invoicemail/pkg/invoice"
	"github.com/vendio/invoicemail/pkg/logger"
	"github.com/vendio/invoicemail/pkg/mailer"
	"github.com/vendio/invoicemail/pkg/mailer/smtp"
	"github.com/vendio/invoicemail/pkg/pdf"
	"github.com/vendio/invoicemail/templates"
)

func main() {
	var (
		invoicePath = flag.String("invoice", "-", "path to invoice JSON, '-' for stdin")
		to          = flag.String("to", "", "recipient email address (required)")
		name        = flag.String("name", "", "recipient display name")
		dev         = flag.Bool("dev", false, "write the email to disk instead of sending")
		outDir      = flag.String("out", "./outbox", "output directory for -dev mode")
	)
	flag.Parse()

	if *to == "" {
		fmt.Fprintln(os.Stderr, "error: -to is required")
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Sentry is enabled by setting SENTRY_DSN; without it this degrades to
	// plain stdout JSON logging.
	var sentryCfg logger.SentryConfig
	config.MustLoad(&sentryCfg)
	log := logger.NewWithSentry(sentryCfg, logger.OrderIDExtractor)

	inv, err := readInvoice(*invoicePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	var mailerCfg mailer.Config
	config.MustLoad(&mailerCfg)

	var company pdf.Company
	config.MustLoad(&company)

	var sender mailer.Sender
	if *dev {
		sender = mailer.NewDevSender(*outDir)
	} else {
		var smtpCfg smtp.Config
		config.MustLoad(&smtpCfg)
		sender = smtp.MustNew(smtpCfg, smtp.WithLogger(log))
	}

	m := mailer.New(sender, mailer.NewRenderer(templates.FS), mailerCfg,
		mailer.WithLogger(log),
		mailer.WithPDFGenerator(pdf.NewGenerator(company)),
	)

	ctx = logger.WithOrderID(ctx, inv.OrderID)
	if err := m.SendInvoice(ctx, inv, *to, *name); err != nil {
		fmt.Fprintf(os.Stderr, "error (%s): %v\n", mailer.Classify(err), err)
		os.Exit(1)
	}

	fmt.Printf("invoice %s sent to %s\n", inv.OrderID, *to)
}

func readInvoice(path string) (*invoice.Invoice, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open invoice file: %w", err)
		}
		defer f.Close()
		r = f
	}

	var inv invoice.Invoice
	if err := json.NewDecoder(r).Decode(&inv); err != nil {
		return nil, fmt.Errorf("decode invoice JSON: %w", err)
	}
	return &inv, nil
}
