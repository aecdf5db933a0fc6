package mailer

import (
	"fmt"
	"regexp"
	"time"
)

// Config holds mailer configuration.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	SenderName      string        `env:"MAILER_FROM_NAME"`
	SenderEmail     string        `env:"MAILER_FROM_EMAIL,required"`
	FallbackSubject string        `env:"MAILER_FALLBACK_SUBJECT" envDefault:"Factura"`
	DefaultLayout   string        `env:"MAILER_DEFAULT_LAYOUT" envDefault:"base.html"`
	InvoiceTemplate string        `env:"MAILER_INVOICE_TEMPLATE" envDefault:"invoice.md"`
	SendTimeout     time.Duration `env:"MAILER_SEND_TIMEOUT" envDefault:"30s"`
}

// emailRegex is a simple regex for validating email addresses.
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Validate checks the fields the pipeline cannot operate without.
func (c Config) Validate() error {
	if c.SenderEmail == "" || !emailRegex.MatchString(c.SenderEmail) {
		return fmt.Errorf("%w: SenderEmail must be a valid email address", ErrInvalidConfig)
	}
	return nil
}
