package parser

import (
	"bytes"
	"regexp"
	"sort"
	"strings"
	"unicode"

	pdf "github.com/ledongthuc/pdf"

	"github.com/helixrag/ragengine/internal/errs"
)

// parsePDF tries the primary extractor (GetPlainText) and falls back to a
// row-bucketed glyph-position extractor if the primary yields nothing.
// Fails with UnextractablePDF if both return empty/whitespace text: the
// engine must not silently accept a scanned PDF as an empty document.
func parsePDF(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", errs.Wrap(errs.KindUnextractablePDF, "open pdf", err)
	}

	text, err := primaryExtract(r)
	if err == nil && strings.TrimSpace(text) != "" {
		return cleanPDFText(text), nil
	}

	text = secondaryExtract(r)
	if strings.TrimSpace(text) == "" {
		return "", errs.New(errs.KindUnextractablePDF, "pdf text extraction produced no content")
	}
	return cleanPDFText(text), nil
}

func primaryExtract(r *pdf.Reader) (string, error) {
	b, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(b); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// secondaryExtract rebuilds text by bucketing glyphs into rows using
// their y position (3pt tolerance) and ordering each row by x, then fixing word spacing across
// glyph-run boundaries that GetTextByRow leaves concatenated.
func secondaryExtract(r *pdf.Reader) string {
	const tolerance = 3.0
	var sb strings.Builder

	numPages := r.NumPage()
	for p := 1; p <= numPages; p++ {
		page := r.Page(p)
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}

		type row struct {
			y     float64
			words []pdf.Text
		}
		var buckets []row
		for _, rr := range rows {
			for _, word := range rr.Content {
				placed := false
				for i := range buckets {
					if abs(buckets[i].y-float64(word.Y)) <= tolerance {
						buckets[i].words = append(buckets[i].words, word)
						placed = true
						break
					}
				}
				if !placed {
					buckets = append(buckets, row{y: float64(word.Y), words: []pdf.Text{word}})
				}
			}
		}

		sort.Slice(buckets, func(i, j int) bool { return buckets[i].y > buckets[j].y })
		for _, b := range buckets {
			sort.Slice(b.words, func(i, j int) bool { return b.words[i].X < b.words[j].X })
			var line strings.Builder
			for _, w := range b.words {
				line.WriteString(w.S)
			}
			sb.WriteString(fixWordSpacing(line.String()))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// wordSpacingBoundary matches a lowercase→uppercase or letter↔digit
// transition where the glyph extractor dropped the intervening space.
var wordSpacingBoundary = regexp.MustCompile(`([a-z])([A-Z])|([a-zA-Z])(\d)|(\d)([a-zA-Z])`)

func fixWordSpacing(s string) string {
	return wordSpacingBoundary.ReplaceAllString(s, "$1$3$5 $2$4$6")
}

// pdfNoiseMarkers strips raw PDF object/stream markers that sometimes leak
// through extraction on malformed documents.
var pdfNoiseMarkers = regexp.MustCompile(`(?m)^(stream|endstream|xref|obj|endobj)\b.*$`)

// cleanPDFText strips PDF stream/xref/obj markers, control characters and
// non-printables, and drops lines with under 30% alphabetic content unless
// the line is short (heading-like).
//
// The 30%-alphabetic heuristic can misfire on numeric tables (e.g. a
// financial statement page), which would be dropped wholesale; this is a
// known, accepted tradeoff carried over unchanged.
func cleanPDFText(text string) string {
	text = pdfNoiseMarkers.ReplaceAllString(text, "")
	text = stripControlChars(text)

	lines := strings.Split(text, "\n")
	var kept []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if len(trimmed) <= 40 || alphabeticRatio(trimmed) >= 0.3 {
			kept = append(kept, trimmed)
		}
	}
	return strings.Join(kept, "\n")
}

func stripControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) || !unicode.IsPrint(r) {
			return -1
		}
		return r
	}, s)
}

func alphabeticRatio(s string) float64 {
	if len(s) == 0 {
		return 0
	}
	var alpha int
	for _, r := range s {
		if unicode.IsLetter(r) {
			alpha++
		}
	}
	return float64(alpha) / float64(len([]rune(s)))
}
