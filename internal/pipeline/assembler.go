package pipeline

import (
	"fmt"
	"strings"

	"brandguard-platform/models"
)

// AssemblePrompt combines the client profile, deliverable type, retrieved
// passages and user query into a single generation prompt. Section order is
// fixed — voice/tone header, lexicon requirements, forbidden terms,
// deliverable instruction, passages tagged with their doc id, then the
// query — so the output is byte-stable for identical inputs.
func AssemblePrompt(profile models.ClientProfile, deliverableType string, passages []models.RetrievedPassage, query string) (string, error) {
	if !profile.SupportsDeliverable(deliverableType) {
		return "", fmt.Errorf("%w: %q not in supported set for client %s",
			ErrUnsupportedDeliverable, deliverableType, profile.ClientID)
	}
	if len(passages) == 0 {
		return "", ErrInsufficientContext
	}

	var b strings.Builder

	fmt.Fprintf(&b, "You are writing %s content for %s.\n\n", deliverableType, profile.ClientID)

	b.WriteString("BRAND VOICE REQUIREMENTS:\n")
	fmt.Fprintf(&b, "- Voice: %s\n", profile.BrandVoice)
	fmt.Fprintf(&b, "- Tone: %s\n", profile.Tone)
	if len(profile.Lexicon) > 0 {
		fmt.Fprintf(&b, "- Required terms: %s\n", strings.Join(profile.Lexicon, ", "))
	}
	if len(profile.AvoidTerms) > 0 {
		fmt.Fprintf(&b, "- Avoid these terms entirely: %s\n", strings.Join(profile.AvoidTerms, ", "))
	}

	b.WriteString("\nCONTEXT FROM CLIENT DOCUMENTS:\n")
	for _, passage := range passages {
		fmt.Fprintf(&b, "[Source: %s] %s\n\n", passage.DocID, passage.Content)
	}

	fmt.Fprintf(&b, "TASK: %s\n\n", query)
	b.WriteString("Generate content that strictly follows the brand voice and uses only information from the provided context.")

	return b.String(), nil
}
