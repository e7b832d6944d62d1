// Package ingest turns raw source material (PDF files, HTML pages, plain
// text) into chunked documents ready for embedding.
package ingest

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
)

var whitespaceRegex = regexp.MustCompile(`[ \t]+`)

// ExtractText extracts plain text from the given payload based on its
// content type. Unknown types are treated as plain text.
func ExtractText(contentType string, payload []byte) (string, error) {
	switch {
	case strings.Contains(contentType, "application/pdf"):
		return ExtractPDFText(payload)
	case strings.Contains(contentType, "text/html"):
		return ExtractHTMLText(bytes.NewReader(payload))
	default:
		return normalizeText(string(payload)), nil
	}
}

// ExtractPDFText extracts text from a PDF payload page by page.
func ExtractPDFText(payload []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	var b strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n\n")
	}

	result := normalizeText(b.String())
	if result == "" {
		return "", fmt.Errorf("no extractable text in pdf")
	}
	return result, nil
}

// ExtractHTMLText strips markup and boilerplate elements from an HTML page,
// keeping paragraph structure.
func ExtractHTMLText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("failed to parse html: %w", err)
	}

	doc.Find("script, style, nav, footer, header, noscript, iframe").Remove()

	var b strings.Builder
	doc.Find("h1, h2, h3, h4, p, li, blockquote").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text != "" {
			b.WriteString(text)
			b.WriteString("\n\n")
		}
	})

	// Fallback for pages without semantic markup
	if b.Len() == 0 {
		return normalizeText(doc.Find("body").Text()), nil
	}
	return normalizeText(b.String()), nil
}

func normalizeText(text string) string {
	text = whitespaceRegex.ReplaceAllString(text, " ")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
