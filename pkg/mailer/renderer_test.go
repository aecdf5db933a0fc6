package mailer

import (
	"sync"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_Render(t *testing.T) {
	t.Parallel()

	r := NewRenderer(fstest.MapFS{
		"welcome.md":        {Data: []byte("---\nSubject: Bienvenido\n---\n# Hola {{.Name}}\n")},
		"layouts/base.html": {Data: []byte(`<html><body>{{.Content}}</body></html>`)},
	})

	result, err := r.Render("base.html", "welcome.md", map[string]string{"Name": "Ana"})
	require.NoError(t, err)

	assert.Contains(t, result.HTML, "<html><body>")
	assert.Contains(t, result.HTML, "<h1>Hola Ana</h1>")
	assert.Contains(t, result.Text, "# Hola Ana")
	assert.Equal(t, "Bienvenido", result.Metadata["Subject"])
}

func TestRenderer_PipeTables(t *testing.T) {
	t.Parallel()

	r := NewRenderer(fstest.MapFS{
		"items.md": {Data: []byte(`| Descripción | Importe |
|---|---|
| Envío | 3,50 EUR |
`)},
		"layouts/base.html": {Data: []byte(`{{.Content}}`)},
	})

	result, err := r.Render("base.html", "items.md", nil)
	require.NoError(t, err)
	assert.Contains(t, result.HTML, "<table>")
	assert.Contains(t, result.HTML, "<th>Descripción</th>")
	assert.Contains(t, result.HTML, "<td>3,50 EUR</td>")
	assert.NotContains(t, result.HTML, "| Descripción |")
}

func TestRenderer_SearchesDirsInOrder(t *testing.T) {
	t.Parallel()

	r := NewRendererWithConfig(fstest.MapFS{
		"emails/invoice.md": {Data: []byte("from emails dir\n")},
		"shared/invoice.md": {Data: []byte("from shared dir\n")},
		"layouts/base.html": {Data: []byte(`{{.Content}}`)},
	}, RendererConfig{TemplateDirs: []string{"emails", "shared"}})

	result, err := r.Render("base.html", "invoice.md", nil)
	require.NoError(t, err)
	assert.Contains(t, result.HTML, "from emails dir")
}

func TestRenderer_FallsBackToLaterDir(t *testing.T) {
	t.Parallel()

	r := NewRendererWithConfig(fstest.MapFS{
		"shared/invoice.md": {Data: []byte("from shared dir\n")},
		"layouts/base.html": {Data: []byte(`{{.Content}}`)},
	}, RendererConfig{TemplateDirs: []string{"emails", "shared"}})

	result, err := r.Render("base.html", "invoice.md", nil)
	require.NoError(t, err)
	assert.Contains(t, result.HTML, "from shared dir")
}

func TestRenderer_TemplateNotFoundListsLocations(t *testing.T) {
	t.Parallel()

	r := NewRendererWithConfig(fstest.MapFS{
		"layouts/base.html": {Data: []byte(`{{.Content}}`)},
	}, RendererConfig{TemplateDirs: []string{"emails", "shared"}})

	_, err := r.Render("base.html", "missing.md", nil)
	require.ErrorIs(t, err, ErrTemplateNotFound)
	assert.Contains(t, err.Error(), "emails/missing.md")
	assert.Contains(t, err.Error(), "shared/missing.md")
}

func TestRenderer_LayoutNotFound(t *testing.T) {
	t.Parallel()

	r := NewRenderer(fstest.MapFS{
		"welcome.md": {Data: []byte("hola\n")},
	})

	_, err := r.Render("missing.html", "welcome.md", nil)
	require.ErrorIs(t, err, ErrLayoutNotFound)
}

func TestRenderer_RenderFailedOnBadData(t *testing.T) {
	t.Parallel()

	r := NewRenderer(fstest.MapFS{
		"welcome.md":        {Data: []byte("{{.Name.Missing}}\n")},
		"layouts/base.html": {Data: []byte(`{{.Content}}`)},
	})

	_, err := r.Render("base.html", "welcome.md", map[string]string{"Name": "Ana"})
	require.ErrorIs(t, err, ErrRenderFailed)
}

func TestRenderer_ConcurrentRenders(t *testing.T) {
	t.Parallel()

	r := NewRenderer(templatesFS())

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := r.Render("base.html", "invoice.md", invoiceData(completeInvoice()))
			assert.NoError(t, err)
			assert.NotEmpty(t, result.HTML)
		}()
	}
	wg.Wait()
}
