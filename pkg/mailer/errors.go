package mailer

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput indicates a missing invoice or blank recipient address.
	ErrInvalidInput = errors.New("invalid input")

	// ErrIncompleteData indicates the invoice relations are not fully loaded.
	ErrIncompleteData = errors.New("incomplete invoice data")

	// ErrInvalidConfig indicates incomplete mail configuration.
	ErrInvalidConfig = errors.New("invalid mail configuration")

	// ErrTemplateNotFound indicates the template file was not found in any
	// of the searched locations.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrLayoutNotFound indicates the layout file was not found.
	ErrLayoutNotFound = errors.New("layout not found")

	// ErrRenderFailed indicates template rendering failed.
	ErrRenderFailed = errors.New("failed to render template")

	// ErrSendFailed indicates the transport rejected or failed the message.
	ErrSendFailed = errors.New("failed to send email")

	// ErrUnknown wraps failures outside the known taxonomy. The original
	// cause is always joined so diagnostics survive propagation.
	ErrUnknown = errors.New("unknown mailer error")

	// ErrInvalidFrontmatter indicates invalid YAML frontmatter.
	ErrInvalidFrontmatter = errors.New("invalid frontmatter")
)

// SendError carries the SMTP status returned by the remote relay, e.g.
// 535 (authentication rejected), 421 (service unavailable), 550 (mailbox
// unavailable) or 552 (quota exceeded).
type SendError struct {
	Msg  string
	Code int
}

func (e *SendError) Error() string {
	return fmt.Sprintf("smtp %d: %s", e.Code, e.Msg)
}

// Temporary reports whether the status is a 4xx transient failure. Callers
// that want retries can use this; the mailer itself never retries.
func (e *SendError) Temporary() bool {
	return e.Code >= 400 && e.Code < 500
}

// Classify maps an error to its stable taxonomy label for structured logs.
func Classify(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrIncompleteData):
		return "incomplete_data"
	case errors.Is(err, ErrInvalidConfig):
		return "configuration_error"
	case errors.Is(err, ErrTemplateNotFound), errors.Is(err, ErrLayoutNotFound):
		return "template_not_found"
	case errors.Is(err, ErrSendFailed):
		return "transport_error"
	case errors.Is(err, ErrRenderFailed):
		return "render_error"
	default:
		return "unknown_error"
	}
}
