// Package pipeline implements the tenant-scoped retrieval-and-assembly flow:
// validate client, embed query, tenant-filtered search, prompt assembly,
// generation. All state lives in injected collaborators; a Pipeline itself is
// stateless per request.
package pipeline

import (
	"context"
	"fmt"

	"brandguard-platform/internal/ai"
	"brandguard-platform/internal/docstore"
	"brandguard-platform/internal/logger"
	"brandguard-platform/internal/registry"
	"brandguard-platform/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const (
	DefaultTopK        = 3
	DefaultMaxTokens   = 300
	DefaultTemperature = 0.3
)

type Pipeline struct {
	registry  registry.Registry
	store     docstore.Store
	embedder  ai.Embedder
	completer ai.Completer
}

func New(reg registry.Registry, store docstore.Store, embedder ai.Embedder, completer ai.Completer) *Pipeline {
	return &Pipeline{
		registry:  reg,
		store:     store,
		embedder:  embedder,
		completer: completer,
	}
}

// Retrieve validates the client, embeds the query and runs a tenant-filtered
// search. Unknown clients fail before any embedding work. Retrieval is a
// deterministic local read: errors surface, nothing is retried.
func (p *Pipeline) Retrieve(ctx context.Context, query, clientID string, topK int) ([]models.RetrievedPassage, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	if _, err := p.registry.Get(ctx, clientID); err != nil {
		return nil, err
	}

	queryEmbedding, err := p.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	passages, err := p.store.Search(ctx, queryEmbedding, clientID, topK)
	if err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}
	return passages, nil
}

// GenerateContent runs the full pipeline and returns the completion together
// with the doc ids it was grounded on. Sources always come from retrieval,
// never from the model's own output. Zero retrieved passages abort the
// request with ErrInsufficientContext before any model call.
func (p *Pipeline) GenerateContent(ctx context.Context, req models.GenerationRequest) (models.GenerationResult, error) {
	tracer := otel.Tracer("pipeline")
	ctx, span := tracer.Start(ctx, "pipeline.generate_content")
	defer span.End()

	span.SetAttributes(
		attribute.String("tenant.id", req.ClientID),
		attribute.String("deliverable.type", req.DeliverableType),
	)

	if req.TopK <= 0 {
		req.TopK = DefaultTopK
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = DefaultMaxTokens
	}
	temperature := float32(DefaultTemperature)
	if req.Temperature != nil {
		temperature = *req.Temperature
	}

	profile, err := p.registry.Get(ctx, req.ClientID)
	if err != nil {
		return models.GenerationResult{}, err
	}

	// Reject unsupported deliverables before spending embedding work.
	if !profile.SupportsDeliverable(req.DeliverableType) {
		return models.GenerationResult{}, fmt.Errorf("%w: %q not in supported set for client %s",
			ErrUnsupportedDeliverable, req.DeliverableType, profile.ClientID)
	}

	queryEmbedding, err := p.embedder.Embed(ctx, req.Query)
	if err != nil {
		return models.GenerationResult{}, fmt.Errorf("embed query: %w", err)
	}

	passages, err := p.store.Search(ctx, queryEmbedding, req.ClientID, req.TopK)
	if err != nil {
		return models.GenerationResult{}, fmt.Errorf("search documents: %w", err)
	}

	span.SetAttributes(attribute.Int("retrieval.passages", len(passages)))

	if len(passages) == 0 {
		logger.Warn("no grounding documents for client", "client_id", req.ClientID)
		return models.GenerationResult{}, ErrInsufficientContext
	}

	prompt, err := AssemblePrompt(profile, req.DeliverableType, passages, req.Query)
	if err != nil {
		return models.GenerationResult{}, err
	}

	content, tokensUsed, err := p.completer.Complete(ctx, prompt, req.MaxTokens, temperature)
	if err != nil {
		return models.GenerationResult{}, err
	}

	sources := make([]string, 0, len(passages))
	for _, passage := range passages {
		sources = append(sources, passage.DocID)
	}

	span.SetAttributes(attribute.Int("gemini.tokens_used", tokensUsed))

	return models.GenerationResult{
		Content:         content,
		Sources:         sources,
		ClientID:        req.ClientID,
		DeliverableType: req.DeliverableType,
		TokensUsed:      tokensUsed,
	}, nil
}
