package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_PlainTextExtensions(t *testing.T) {
	for _, ext := range []string{".txt", ".csv", ".md", ".json"} {
		t.Run(ext, func(t *testing.T) {
			text, err := Parse("file"+ext, []byte("hello world"), nil)
			require.NoError(t, err)
			assert.Equal(t, "hello world", text)
		})
	}
}

func TestParse_UnknownExtensionFallsBack(t *testing.T) {
	text, err := Parse("file.exe", []byte("binary-ish content"), nil)
	require.NoError(t, err)
	assert.Equal(t, "binary-ish content", text)
}

func TestParse_HTML(t *testing.T) {
	html := `<html><head><style>body{color:red}</style></head><body><script>alert(1)</script><p>Hello <b>World</b></p></body></html>`
	text, err := Parse("page.html", []byte(html), nil)
	require.NoError(t, err)
	assert.Contains(t, text, "Hello")
	assert.Contains(t, text, "World")
	assert.NotContains(t, text, "alert")
	assert.NotContains(t, text, "color:red")
}

func TestUnsupportedFileType(t *testing.T) {
	t.Run("allowed_extension", func(t *testing.T) {
		assert.NoError(t, UnsupportedFileType("doc.pdf"))
	})

	t.Run("disallowed_extension", func(t *testing.T) {
		err := UnsupportedFileType("malware.exe")
		assert.Error(t, err)
	})
}

func TestDecodeUTF8_ReplacesInvalidBytes(t *testing.T) {
	invalid := []byte{0xff, 0xfe, 'h', 'i'}
	text := decodeUTF8(invalid)
	assert.Contains(t, text, "hi")
}

func TestAlphabeticRatio(t *testing.T) {
	assert.InDelta(t, 1.0, alphabeticRatio("hello"), 0.01)
	assert.InDelta(t, 0.0, alphabeticRatio("12345"), 0.01)
	assert.Equal(t, float64(0), alphabeticRatio(""))
}

func TestFixWordSpacing(t *testing.T) {
	assert.Equal(t, "hello World", fixWordSpacing("helloWorld"))
	assert.Equal(t, "abc 123", fixWordSpacing("abc123"))
}

func TestCleanPDFText_DropsLowAlphabeticLongLines(t *testing.T) {
	text := "This is a normal sentence with plenty of letters.\n" +
		"0000000000000000000000000000000000000000000\n" +
		"short\n"
	cleaned := cleanPDFText(text)
	assert.Contains(t, cleaned, "normal sentence")
	assert.Contains(t, cleaned, "short")
	assert.NotContains(t, cleaned, "0000000000000000000000000000000000000000000")
}
