package engine

import (
	"context"
	"fmt"

	"github.com/insightloop/insightloop/pkg/domain"
)

// PersonaGenerationExecutor delegates to the externally owned persona
// service. The core only owns the contract: config in, generated ids out.
type PersonaGenerationExecutor struct {
	personas domain.PersonaService
}

func NewPersonaGenerationExecutor(personas domain.PersonaService) *PersonaGenerationExecutor {
	return &PersonaGenerationExecutor{
		personas: personas,
	}
}

func (e *PersonaGenerationExecutor) Execute(ctx context.Context, node domain.Node, executionContext *domain.ExecutionContext) (domain.NodeResult, error) {
	count := 1
	if raw, exists := node.Config["count"]; exists {
		parsed, ok := configInt(raw)
		if !ok {
			return nil, fmt.Errorf("persona count must be a number, got %T", raw)
		}

		count = parsed
	}

	prompt, _ := node.ConfigString("prompt")

	personaIDs, err := e.personas.GeneratePersonas(ctx, domain.GeneratePersonasParams{
		ProjectID: executionContext.ProjectID,
		Count:     count,
		Prompt:    prompt,
	})
	if err != nil {
		return nil, fmt.Errorf("generating personas: %w", err)
	}

	return domain.NodeResult{
		"status":                "completed",
		"generated_persona_ids": personaIDs,
		"persona_count":         len(personaIDs),
	}, nil
}

// FocusGroupExecutor runs a discussion among the personas listed in the node
// config via the externally owned discussion service.
type FocusGroupExecutor struct {
	discussions domain.DiscussionService
}

func NewFocusGroupExecutor(discussions domain.DiscussionService) *FocusGroupExecutor {
	return &FocusGroupExecutor{
		discussions: discussions,
	}
}

func (e *FocusGroupExecutor) Execute(ctx context.Context, node domain.Node, executionContext *domain.ExecutionContext) (domain.NodeResult, error) {
	personaIDs, _ := node.ConfigStringSlice("persona_ids")
	topic, _ := node.ConfigString("topic")

	result, err := e.discussions.RunDiscussion(ctx, domain.RunDiscussionParams{
		ProjectID:  executionContext.ProjectID,
		PersonaIDs: personaIDs,
		Topic:      topic,
	})
	if err != nil {
		return nil, fmt.Errorf("running discussion: %w", err)
	}

	return domain.NodeResult{
		"status":            "completed",
		"discussion_id":     result.DiscussionID,
		"response_count":    result.ResponseCount,
		"participant_count": len(personaIDs),
	}, nil
}

func configInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
