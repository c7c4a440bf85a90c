package driven

import "context"

// FallbackRequest asks the AI fallback for a target-dialect suggestion
// for one tag the grammar could not convert.
type FallbackRequest struct {
	// RawTagText is the exact unconverted tag, delimiters included
	RawTagText string

	// ContextBefore / ContextAfter are short windows of surrounding
	// document text that help the model infer intent
	ContextBefore string
	ContextAfter  string

	// TargetDialectHint names the output syntax the suggestion must use
	TargetDialectHint string
}

// FallbackResponse is the adapter's suggestion. A confidence of 0 or an
// empty suggestion is a decline.
type FallbackResponse struct {
	SuggestedText string
	Confidence    float64
}

// AIFallback is the driven port for AI-assisted tag conversion. The
// converter treats every failure mode (error, timeout, low confidence,
// decline) identically: it passes the raw tag through unresolved.
type AIFallback interface {
	// SuggestConversion proposes target-dialect text for one raw tag.
	// Implementations must honor ctx cancellation; the converter bounds
	// each call with a timeout.
	SuggestConversion(ctx context.Context, req FallbackRequest) (*FallbackResponse, error)

	// Ping verifies the adapter is reachable and configured
	Ping(ctx context.Context) error

	// Close releases underlying resources
	Close() error
}
