// Package smtp provides an SMTP implementation of mailer.Sender.
//
// The sender speaks plain SMTP upgraded with STARTTLS; relays that do not
// offer the extension are rejected before authentication, so credentials
// never travel over an unencrypted channel. Each Send runs one complete
// transaction (dial, EHLO, STARTTLS, AUTH PLAIN, MAIL, RCPT, DATA, QUIT)
// under a single deadline derived from the configured timeout and the
// caller's context, whichever expires first.
//
// Messages are composed with github.com/jordan-wright/email, which handles
// multipart MIME encoding including binary attachments. Relay rejections
// carrying an SMTP status code surface as *mailer.SendError so callers can
// distinguish e.g. bad credentials (535) from a full mailbox (552).
//
// Usage:
//
//	sender := smtp.MustNew(smtp.GmailConfig("me@gmail.com", appPassword))
//	m, err := mailer.New(sender, renderer, cfg)
package smtp
