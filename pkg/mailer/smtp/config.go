package smtp

import "time"

// Config holds SMTP relay configuration.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	Host     string `env:"SMTP_HOST,required"`
	Port     int    `env:"SMTP_PORT" envDefault:"587"`
	Username string `env:"SMTP_USERNAME,required"`
	Password string `env:"SMTP_PASSWORD,required"`
	// Timeout bounds the whole transaction: dial, TLS upgrade, auth and
	// data transfer share one deadline.
	Timeout time.Duration `env:"SMTP_TIMEOUT" envDefault:"30s"`
}

// GmailConfig returns a Config preconfigured for the Gmail relay. The
// password must be an app password, not the account password; see
// docs/gmail-smtp.md for setup and troubleshooting.
func GmailConfig(username, appPassword string) Config {
	return Config{
		Host:     "smtp.gmail.com",
		Port:     587,
		Username: username,
		Password: appPassword,
		Timeout:  30 * time.Second,
	}
}
