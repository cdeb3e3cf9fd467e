package texts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPostTemplateSubstitution(t *testing.T) {

	txt := NewTexts()
	doc := txt.WithVals("post.md", map[string]string{
		"date":       "2024-03-01T09:30:00Z",
		"title":      "Hello <b>world</b>",
		"visibility": "unlisted",
		"sensitive":  "false",
		"content":    "Hello <b>world</b>",
	})

	assert.Contains(t, doc, "date: 2024-03-01T09:30:00Z")
	assert.Contains(t, doc, `title: "Hello <b>world</b>"`)
	assert.Contains(t, doc, "visibility: unlisted")
	assert.Contains(t, doc, "sensitive: false")
	// Markup passes through unescaped
	assert.Contains(t, doc, "\nHello <b>world</b>")
	assert.NotContains(t, doc, "{{")
}

func TestGetUnknownSnippet(t *testing.T) {
	txt := NewTexts()
	assert.Equal(t, "", txt.Get("no-such-snippet.md"))
}
