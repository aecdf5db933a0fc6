package mailer

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "success"},
		{"invalid input", errors.Join(ErrInvalidInput, errors.New("invoice is required")), "invalid_input"},
		{"incomplete data", fmt.Errorf("%w: no items", ErrIncompleteData), "incomplete_data"},
		{"configuration", fmt.Errorf("%w: SenderEmail", ErrInvalidConfig), "configuration_error"},
		{"template not found", fmt.Errorf("%w: invoice.md", ErrTemplateNotFound), "template_not_found"},
		{"layout not found", fmt.Errorf("%w: base.html", ErrLayoutNotFound), "template_not_found"},
		{"transport", errors.Join(ErrSendFailed, &SendError{Code: 535, Msg: "auth"}), "transport_error"},
		{"render", fmt.Errorf("%w: bad data", ErrRenderFailed), "render_error"},
		{"unknown", errors.New("something else"), "unknown_error"},
		{"wrapped unknown", errors.Join(ErrUnknown, errors.New("panic in generator")), "unknown_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestSendError(t *testing.T) {
	t.Parallel()

	err := &SendError{Code: 535, Msg: "5.7.8 Username and Password not accepted"}
	assert.Equal(t, "smtp 535: 5.7.8 Username and Password not accepted", err.Error())
	assert.False(t, err.Temporary())

	assert.True(t, (&SendError{Code: 421, Msg: "try later"}).Temporary())
	assert.True(t, (&SendError{Code: 452, Msg: "mailbox full"}).Temporary())
	assert.False(t, (&SendError{Code: 552, Msg: "quota exceeded"}).Temporary())
}
