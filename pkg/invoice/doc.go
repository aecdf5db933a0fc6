// Package invoice defines the purchase aggregate the mailer operates on.
//
// An Invoice carries its line items and customer fully loaded; the package
// only validates completeness and computes totals. All monetary values are
// in minor currency units (cents).
package invoice
