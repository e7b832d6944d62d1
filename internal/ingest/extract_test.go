package ingest

import (
	"strings"
	"testing"
)

func TestExtractHTMLText(t *testing.T) {
	html := `<html><head><title>Acme</title><style>.x{}</style></head>
	<body>
	<nav>Home | About</nav>
	<h1>Brand Guidelines</h1>
	<p>Always use a professional tone.</p>
	<script>alert("hi")</script>
	<ul><li>Prefer the term widget.</li></ul>
	<footer>Copyright</footer>
	</body></html>`

	text, err := ExtractHTMLText(strings.NewReader(html))
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}

	for _, want := range []string{"Brand Guidelines", "Always use a professional tone.", "Prefer the term widget."} {
		if !strings.Contains(text, want) {
			t.Fatalf("extracted text missing %q:\n%s", want, text)
		}
	}
	for _, unwanted := range []string{"alert(", ".x{}", "Home | About", "Copyright"} {
		if strings.Contains(text, unwanted) {
			t.Fatalf("extracted text contains boilerplate %q:\n%s", unwanted, text)
		}
	}
}

func TestExtractHTMLTextFallbackBody(t *testing.T) {
	html := `<html><body>Raw text without semantic markup</body></html>`

	text, err := ExtractHTMLText(strings.NewReader(html))
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if !strings.Contains(text, "Raw text without semantic markup") {
		t.Fatalf("fallback extraction failed: %q", text)
	}
}

func TestExtractTextPlain(t *testing.T) {
	text, err := ExtractText("text/plain", []byte("  spaced   out\ttext  \n\nnext line  "))
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if strings.Contains(text, "  ") {
		t.Fatalf("whitespace not normalized: %q", text)
	}
	if !strings.Contains(text, "spaced out text") {
		t.Fatalf("unexpected normalization: %q", text)
	}
}

func TestExtractPDFTextRejectsGarbage(t *testing.T) {
	if _, err := ExtractPDFText([]byte("not a pdf")); err == nil {
		t.Fatal("expected error for non-pdf payload")
	}
}
