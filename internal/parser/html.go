package parser

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// parseHTML strips <script>/<style> sections and tags using the tokenizer,
// then collapses whitespace.
func parseHTML(data []byte) string {
	tokenizer := html.NewTokenizer(bytes.NewReader(data))

	var sb strings.Builder
	skipDepth := 0

	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return collapseWhitespace(sb.String())
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := tokenizer.Token()
			if tok.DataAtom == atom.Script || tok.DataAtom == atom.Style {
				if tt == html.StartTagToken {
					skipDepth++
				}
				continue
			}
		case html.EndTagToken:
			tok := tokenizer.Token()
			if tok.DataAtom == atom.Script || tok.DataAtom == atom.Style {
				if skipDepth > 0 {
					skipDepth--
				}
				continue
			}
		case html.TextToken:
			if skipDepth == 0 {
				sb.WriteString(tokenizer.Token().Data)
				sb.WriteString(" ")
			}
		}
	}
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
