package pipeline

import "errors"

var (
	// ErrUnsupportedDeliverable is returned when the requested deliverable
	// type is not in the client profile's supported set.
	ErrUnsupportedDeliverable = errors.New("unsupported deliverable type")

	// ErrInsufficientContext is the anti-hallucination gate: retrieval found
	// zero passages for the tenant, so no prompt is built and the generative
	// model is never called.
	ErrInsufficientContext = errors.New("insufficient context: no grounding documents for client")
)
