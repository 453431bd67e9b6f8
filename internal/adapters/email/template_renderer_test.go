package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateRenderer_Confirmation(t *testing.T) {
	r := NewTemplateRenderer()

	subject, html, text, err := r.Render("confirmation", map[string]string{
		"ConferenceName": "GopherCon 2026",
	})
	require.NoError(t, err)
	assert.Equal(t, "You created a new Conference!", subject)
	assert.Contains(t, html, "GopherCon 2026")
	assert.Contains(t, text, "GopherCon 2026")
}

func TestTemplateRenderer_UnknownTemplate(t *testing.T) {
	r := NewTemplateRenderer()
	_, _, _, err := r.Render("missing", nil)
	require.Error(t, err)
}
