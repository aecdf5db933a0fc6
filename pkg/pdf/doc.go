// Package pdf generates invoice PDF documents: seller header, bill-to
// block, line-item table, totals and an optional payment-link QR code.
// Output lands in pooled buffers that callers release explicitly once the
// bytes have been transmitted.
package pdf
