package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fairsailau/conganew/internal/core/domain"
	"github.com/fairsailau/conganew/internal/core/ports/driven"
)

// buildPrompt renders the conversion request as a single instruction. The
// model must answer with a bare JSON object so parseSuggestion can read it
// back regardless of provider.
func buildPrompt(req driven.FallbackRequest) string {
	var b strings.Builder
	b.WriteString("You convert Conga Composer merge tags to ")
	if req.TargetDialectHint != "" {
		b.WriteString(req.TargetDialectHint)
	} else {
		b.WriteString("Box DocGen (handlebars)")
	}
	b.WriteString(" syntax.\n")
	b.WriteString("Convert exactly one tag. Answer with a JSON object of the form\n")
	b.WriteString(`{"suggestion": "<converted tag>", "confidence": <0.0-1.0>}`)
	b.WriteString("\nand nothing else. Use a confidence of 0 if you cannot convert the tag.\n\n")
	if req.ContextBefore != "" {
		fmt.Fprintf(&b, "Text before the tag: %q\n", req.ContextBefore)
	}
	if req.ContextAfter != "" {
		fmt.Fprintf(&b, "Text after the tag: %q\n", req.ContextAfter)
	}
	fmt.Fprintf(&b, "Tag: %s\n", req.RawTagText)
	return b.String()
}

// suggestionPayload is the JSON object the prompt asks the model to emit.
type suggestionPayload struct {
	Suggestion string  `json:"suggestion"`
	Confidence float64 `json:"confidence"`
}

// parseSuggestion extracts the suggestion object from a model answer.
// Models occasionally wrap the JSON in prose or code fences, so the parse
// starts at the first brace and ends at the last. A zero confidence or an
// empty suggestion is an explicit decline (domain.ErrLowConfidence).
func parseSuggestion(answer string) (*driven.FallbackResponse, error) {
	start := strings.Index(answer, "{")
	end := strings.LastIndex(answer, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in model answer")
	}

	var payload suggestionPayload
	if err := json.Unmarshal([]byte(answer[start:end+1]), &payload); err != nil {
		return nil, fmt.Errorf("parse model answer: %w", err)
	}

	if payload.Confidence <= 0 || strings.TrimSpace(payload.Suggestion) == "" {
		return nil, domain.ErrLowConfidence
	}

	return &driven.FallbackResponse{
		SuggestedText: strings.TrimSpace(payload.Suggestion),
		Confidence:    payload.Confidence,
	}, nil
}
