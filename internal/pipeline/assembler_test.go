package pipeline

import (
	"errors"
	"strings"
	"testing"

	"brandguard-platform/models"
)

func testProfile() models.ClientProfile {
	return models.ClientProfile{
		ClientID:         "acme",
		BrandVoice:       "Professional, technical, solution-oriented",
		Tone:             "Direct and authoritative",
		Lexicon:          []string{"widget", "gas sponsorship"},
		AvoidTerms:       []string{"amazing", "game-changing"},
		DeliverableTypes: []string{"product_update", "blog_post"},
	}
}

func testPassages() []models.RetrievedPassage {
	return []models.RetrievedPassage{
		{DocID: "d1", Content: "Widgets ship weekly.", Score: 0.91},
		{DocID: "d2", Content: "Widget batching reduces cost.", Score: 0.72},
	}
}

func TestAssemblePromptDeterministicOrder(t *testing.T) {
	prompt, err := AssemblePrompt(testProfile(), "product_update", testPassages(), "announce shipping")
	if err != nil {
		t.Fatalf("assemble failed: %v", err)
	}

	// Section order is part of the contract: header, voice, lexicon, avoid
	// terms, context passages, task.
	markers := []string{
		"You are writing product_update content for acme.",
		"- Voice: Professional, technical, solution-oriented",
		"- Tone: Direct and authoritative",
		"- Required terms: widget, gas sponsorship",
		"- Avoid these terms entirely: amazing, game-changing",
		"[Source: d1] Widgets ship weekly.",
		"[Source: d2] Widget batching reduces cost.",
		"TASK: announce shipping",
	}
	pos := -1
	for _, marker := range markers {
		idx := strings.Index(prompt, marker)
		if idx < 0 {
			t.Fatalf("prompt missing %q\nprompt:\n%s", marker, prompt)
		}
		if idx <= pos {
			t.Fatalf("marker %q out of order", marker)
		}
		pos = idx
	}

	again, err := AssemblePrompt(testProfile(), "product_update", testPassages(), "announce shipping")
	if err != nil {
		t.Fatalf("assemble failed: %v", err)
	}
	if prompt != again {
		t.Fatal("assembly is not deterministic for identical input")
	}
}

func TestAssemblePromptLexiconEnforcement(t *testing.T) {
	prompt, err := AssemblePrompt(testProfile(), "blog_post", testPassages(), "write a post")
	if err != nil {
		t.Fatalf("assemble failed: %v", err)
	}

	for _, term := range testProfile().Lexicon {
		if !strings.Contains(prompt, term) {
			t.Fatalf("prompt missing lexicon term %q", term)
		}
	}
	for _, term := range testProfile().AvoidTerms {
		if !strings.Contains(prompt, term) {
			t.Fatalf("prompt does not instruct avoidance of %q", term)
		}
	}
}

func TestAssemblePromptEmptyLexiconSections(t *testing.T) {
	profile := testProfile()
	profile.Lexicon = nil
	profile.AvoidTerms = nil

	prompt, err := AssemblePrompt(profile, "blog_post", testPassages(), "write a post")
	if err != nil {
		t.Fatalf("assemble failed: %v", err)
	}
	if strings.Contains(prompt, "Required terms:") {
		t.Fatal("empty lexicon should omit the required terms line")
	}
	if strings.Contains(prompt, "Avoid these terms") {
		t.Fatal("empty avoid set should omit the avoid line")
	}
}

func TestAssemblePromptUnsupportedDeliverable(t *testing.T) {
	_, err := AssemblePrompt(testProfile(), "press_release", testPassages(), "write")
	if !errors.Is(err, ErrUnsupportedDeliverable) {
		t.Fatalf("expected ErrUnsupportedDeliverable, got %v", err)
	}
}

func TestAssemblePromptRefusesEmptyPassages(t *testing.T) {
	_, err := AssemblePrompt(testProfile(), "blog_post", nil, "write")
	if !errors.Is(err, ErrInsufficientContext) {
		t.Fatalf("expected ErrInsufficientContext, got %v", err)
	}
}
