package invoice

import (
	"errors"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	// ErrNoItems indicates the invoice has no line items loaded.
	ErrNoItems = errors.New("invoice has no line items")

	// ErrNoCustomer indicates the invoice has no customer loaded.
	ErrNoCustomer = errors.New("invoice has no customer")
)

// Invoice is the aggregate for one completed purchase. It arrives fully
// loaded from the caller; nothing in this module fetches relations.
type Invoice struct {
	OrderID    string     `json:"order_id"`
	Number     string     `json:"number"`
	IssuedAt   time.Time  `json:"issued_at"`
	Currency   string     `json:"currency"`
	Items      []LineItem `json:"items"`
	Customer   *Customer  `json:"customer"`
	TaxRate    float64    `json:"tax_rate"` // e.g. 0.21 for 21%
	PaymentURL string     `json:"payment_url,omitempty"`
	Notes      string     `json:"notes,omitempty"`
}

// LineItem is a single purchased position. Amounts are in minor currency
// units (cents) to avoid float accumulation errors.
type LineItem struct {
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"` // minor units
}

// Total returns the line total in minor units.
func (li LineItem) Total() int64 {
	return int64(li.Quantity) * li.UnitPrice
}

// Customer is the billing recipient of the invoice.
type Customer struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	AddressLine1 string `json:"address_line1,omitempty"`
	AddressLine2 string `json:"address_line2,omitempty"`
	TaxID        string `json:"tax_id,omitempty"`
}

// Complete reports whether both required relations are loaded.
// Items are checked before the customer so callers get stable ordering.
func (i *Invoice) Complete() error {
	if len(i.Items) == 0 {
		return ErrNoItems
	}
	if i.Customer == nil {
		return ErrNoCustomer
	}
	return nil
}

// Subtotal returns the sum of all line totals in minor units.
func (i *Invoice) Subtotal() int64 {
	var sum int64
	for _, it := range i.Items {
		sum += it.Total()
	}
	return sum
}

// TaxAmount returns the tax portion in minor units, rounded half up.
func (i *Invoice) TaxAmount() int64 {
	return int64(float64(i.Subtotal())*i.TaxRate + 0.5)
}

// Total returns subtotal plus tax in minor units.
func (i *Invoice) Total() int64 {
	return i.Subtotal() + i.TaxAmount()
}

// printer formats grouped decimal amounts. Spanish grouping matches the
// invoice locale used by the default templates.
var printer = message.NewPrinter(language.Spanish)

// FormatAmount renders an amount in minor units as a human-readable string
// with the invoice currency, e.g. "1.234,50 EUR".
func (i *Invoice) FormatAmount(minor int64) string {
	cur := i.Currency
	if cur == "" {
		cur = "EUR"
	}
	return printer.Sprintf("%.2f %s", float64(minor)/100, cur)
}
