package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTemplate(t *testing.T) {
	t.Parallel()

	t.Run("frontmatter and body", func(t *testing.T) {
		t.Parallel()

		tmpl, err := ParseTemplate([]byte("---\nSubject: Factura\nPriority: high\n---\n# Hola\n"))
		require.NoError(t, err)
		assert.Equal(t, "Factura", tmpl.Metadata["Subject"])
		assert.Equal(t, "high", tmpl.Metadata["Priority"])
		assert.Equal(t, "# Hola\n", tmpl.Body)
	})

	t.Run("no frontmatter", func(t *testing.T) {
		t.Parallel()

		tmpl, err := ParseTemplate([]byte("# Hola\n"))
		require.NoError(t, err)
		assert.Empty(t, tmpl.Metadata)
		assert.Equal(t, "# Hola\n", tmpl.Body)
	})

	t.Run("empty frontmatter", func(t *testing.T) {
		t.Parallel()

		tmpl, err := ParseTemplate([]byte("---\n---\nbody\n"))
		require.NoError(t, err)
		assert.Empty(t, tmpl.Metadata)
		assert.Equal(t, "body\n", tmpl.Body)
	})

	t.Run("crlf line endings", func(t *testing.T) {
		t.Parallel()

		tmpl, err := ParseTemplate([]byte("---\r\nSubject: Factura\r\n---\r\nbody\r\n"))
		require.NoError(t, err)
		assert.Equal(t, "Factura", tmpl.Metadata["Subject"])
		assert.Equal(t, "body\r\n", tmpl.Body)
	})

	t.Run("unterminated frontmatter", func(t *testing.T) {
		t.Parallel()

		_, err := ParseTemplate([]byte("---\nSubject: Factura\n"))
		require.ErrorIs(t, err, ErrInvalidFrontmatter)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		t.Parallel()

		_, err := ParseTemplate([]byte("---\n\t:bad\n---\nbody\n"))
		require.ErrorIs(t, err, ErrInvalidFrontmatter)
	})

	t.Run("only opening delimiter", func(t *testing.T) {
		t.Parallel()

		_, err := ParseTemplate([]byte("---"))
		require.ErrorIs(t, err, ErrInvalidFrontmatter)
	})
}
