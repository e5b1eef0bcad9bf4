package parser

import (
	"bytes"
	"html"
	"regexp"
	"strings"

	"github.com/nguyenthenguyen/docx"

	"github.com/helixrag/ragengine/internal/errs"
)

// parseDOCX extracts paragraphs and joins them with a blank line, matching
// the double-newline paragraph convention the chunker's Paragraph strategy
// expects.
func parseDOCX(data []byte) (string, error) {
	reader, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", errs.Wrap(errs.KindUnsupportedFile, "open docx", err)
	}
	defer reader.Close()

	// GetContent returns the raw word/document.xml markup: end each
	// paragraph (</w:p>) with a newline, then strip the remaining tags.
	content := reader.Editable().GetContent()
	content = regexp.MustCompile(`</w:p>`).ReplaceAllString(content, "\n")
	content = html.UnescapeString(regexp.MustCompile(`<[^>]*>`).ReplaceAllString(content, ""))
	paragraphs := strings.Split(content, "\n")

	var cleaned []string
	for _, p := range paragraphs {
		if t := strings.TrimSpace(p); t != "" {
			cleaned = append(cleaned, t)
		}
	}
	return strings.Join(cleaned, "\n\n"), nil
}
