package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractText(t *testing.T) {
	got := ExtractText("<p>My <em>dearest</em>,</p><p>I miss you.</p>")
	assert.Equal(t, "My dearest , I miss you.", got)
}

func TestExtractTextSkipsScripts(t *testing.T) {
	got := ExtractText("<p>Hello</p><script>alert(1)</script>")
	assert.Equal(t, "Hello", got)
}

func TestCreatePreviewShortContentUnchanged(t *testing.T) {
	assert.Equal(t, "A short note", CreatePreview("<p>A short note</p>"))
}

func TestCreatePreviewBreaksAtWordBoundary(t *testing.T) {
	long := strings.Repeat("remember ", 40)
	preview := CreatePreview("<p>" + long + "</p>")

	assert.LessOrEqual(t, len(preview), previewLength+3)
	assert.True(t, strings.HasSuffix(preview, "..."))
	assert.False(t, strings.Contains(preview, "rememb..."), "should not cut inside a word")
}

func TestNormalizeQuery(t *testing.T) {
	assert.Equal(t, "bookshop", NormalizeQuery("  BookShop  "))
	assert.Equal(t, "", NormalizeQuery("   "))
}
