package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/vendio/invoicemail/pkg/invoice"
	"github.com/vendio/invoicemail/pkg/mailer"
)

// Company identifies the seller printed on every invoice.
type Company struct {
	Name         string `env:"COMPANY_NAME"`
	TaxID        string `env:"COMPANY_TAX_ID"`
	AddressLine1 string `env:"COMPANY_ADDRESS_LINE1"`
	AddressLine2 string `env:"COMPANY_ADDRESS_LINE2"`
	Email        string `env:"COMPANY_EMAIL"`
}

// Generator renders invoice aggregates into PDF documents. It is stateless
// apart from the seller identity and safe for concurrent use.
type Generator struct {
	company Company
}

// NewGenerator creates a PDF generator for the given seller.
func NewGenerator(company Company) *Generator {
	return &Generator{company: company}
}

// GenerateInvoicePDF draws the invoice into a pooled buffer. The returned
// document must be released by the caller once the bytes are no longer
// needed; until then they remain valid for reading.
func (g *Generator) GenerateInvoicePDF(ctx context.Context, inv *invoice.Invoice) (mailer.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f := fpdf.New("P", "mm", "A4", "")
	tr := f.UnicodeTranslatorFromDescriptor("") // core fonts are cp1252
	f.SetTitle(fmt.Sprintf("Factura %s", inv.OrderID), true)
	f.AddPage()

	g.drawHeader(f, tr, inv)
	g.drawBillTo(f, tr, inv)
	g.drawItems(f, tr, inv)
	g.drawTotals(f, tr, inv)
	if inv.PaymentURL != "" {
		if err := g.drawPaymentQR(f, tr, inv.PaymentURL); err != nil {
			return nil, fmt.Errorf("payment QR: %w", err)
		}
	}
	if inv.Notes != "" {
		f.Ln(8)
		f.SetFont("Helvetica", "I", 9)
		f.MultiCell(0, 5, tr(inv.Notes), "", "L", false)
	}

	out := newBuffer()
	if err := f.Output(out.buf); err != nil {
		out.Release()
		return nil, fmt.Errorf("render PDF: %w", err)
	}
	return out, nil
}

func (g *Generator) drawHeader(f *fpdf.Fpdf, tr func(string) string, inv *invoice.Invoice) {
	f.SetFont("Helvetica", "B", 18)
	f.Cell(120, 10, tr(g.company.Name))

	f.SetFont("Helvetica", "B", 14)
	f.CellFormat(0, 10, tr(fmt.Sprintf("Factura %s", inv.Number)), "", 1, "R", false, 0, "")

	f.SetFont("Helvetica", "", 9)
	for _, line := range []string{g.company.TaxID, g.company.AddressLine1, g.company.AddressLine2, g.company.Email} {
		if line != "" {
			f.CellFormat(0, 4.5, tr(line), "", 1, "L", false, 0, "")
		}
	}

	f.Ln(2)
	f.CellFormat(0, 5, tr(fmt.Sprintf("Pedido: %s", inv.OrderID)), "", 1, "L", false, 0, "")
	if !inv.IssuedAt.IsZero() {
		f.CellFormat(0, 5, tr(fmt.Sprintf("Fecha: %s", inv.IssuedAt.Format("02/01/2006"))), "", 1, "L", false, 0, "")
	}
	f.Ln(4)
}

func (g *Generator) drawBillTo(f *fpdf.Fpdf, tr func(string) string, inv *invoice.Invoice) {
	c := inv.Customer
	f.SetFont("Helvetica", "B", 10)
	f.CellFormat(0, 6, "Facturar a", "", 1, "L", false, 0, "")
	f.SetFont("Helvetica", "", 9)
	for _, line := range []string{c.Name, c.TaxID, c.AddressLine1, c.AddressLine2, c.Email} {
		if line != "" {
			f.CellFormat(0, 4.5, tr(line), "", 1, "L", false, 0, "")
		}
	}
	f.Ln(6)
}

func (g *Generator) drawItems(f *fpdf.Fpdf, tr func(string) string, inv *invoice.Invoice) {
	const (
		descW = 95.0
		qtyW  = 20.0
		unitW = 35.0
		totW  = 40.0
		rowH  = 7.0
	)

	f.SetFont("Helvetica", "B", 9)
	f.SetFillColor(235, 235, 235)
	f.CellFormat(descW, rowH, tr("Descripción"), "1", 0, "L", true, 0, "")
	f.CellFormat(qtyW, rowH, "Cant.", "1", 0, "C", true, 0, "")
	f.CellFormat(unitW, rowH, "Precio", "1", 0, "R", true, 0, "")
	f.CellFormat(totW, rowH, "Importe", "1", 1, "R", true, 0, "")

	f.SetFont("Helvetica", "", 9)
	for _, it := range inv.Items {
		f.CellFormat(descW, rowH, tr(it.Description), "1", 0, "L", false, 0, "")
		f.CellFormat(qtyW, rowH, strconv.Itoa(it.Quantity), "1", 0, "C", false, 0, "")
		f.CellFormat(unitW, rowH, tr(inv.FormatAmount(it.UnitPrice)), "1", 0, "R", false, 0, "")
		f.CellFormat(totW, rowH, tr(inv.FormatAmount(it.Total())), "1", 1, "R", false, 0, "")
	}
}

func (g *Generator) drawTotals(f *fpdf.Fpdf, tr func(string) string, inv *invoice.Invoice) {
	const (
		labelW = 150.0
		valueW = 40.0
		rowH   = 6.0
	)

	f.SetFont("Helvetica", "", 9)
	f.CellFormat(labelW, rowH, "Subtotal", "", 0, "R", false, 0, "")
	f.CellFormat(valueW, rowH, tr(inv.FormatAmount(inv.Subtotal())), "1", 1, "R", false, 0, "")

	f.CellFormat(labelW, rowH, tr(fmt.Sprintf("IVA (%.0f%%)", inv.TaxRate*100)), "", 0, "R", false, 0, "")
	f.CellFormat(valueW, rowH, tr(inv.FormatAmount(inv.TaxAmount())), "1", 1, "R", false, 0, "")

	f.SetFont("Helvetica", "B", 10)
	f.CellFormat(labelW, rowH, "Total", "", 0, "R", false, 0, "")
	f.CellFormat(valueW, rowH, tr(inv.FormatAmount(inv.Total())), "1", 1, "R", false, 0, "")
}

func (g *Generator) drawPaymentQR(f *fpdf.Fpdf, tr func(string) string, url string) error {
	png, err := qrcode.Encode(url, qrcode.Medium, 256)
	if err != nil {
		return err
	}

	opt := fpdf.ImageOptions{ImageType: "PNG"}
	f.RegisterImageOptionsReader("payment-qr", opt, bytes.NewReader(png))

	f.Ln(8)
	y := f.GetY()
	f.ImageOptions("payment-qr", 10, y, 28, 28, false, opt, 0, "")
	f.SetXY(42, y+10)
	f.SetFont("Helvetica", "", 8)
	f.CellFormat(0, 5, tr("Escanee para pagar online"), "", 1, "L", false, 0, "")
	f.SetY(y + 30)
	return f.Error()
}
