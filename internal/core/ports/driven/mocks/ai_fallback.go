package mocks

import (
	"context"

	"github.com/fairsailau/conganew/internal/core/ports/driven"
)

// AIFallback is a function-field mock of the AI fallback port.
type AIFallback struct {
	SuggestConversionFn func(ctx context.Context, req driven.FallbackRequest) (*driven.FallbackResponse, error)
	PingFn              func(ctx context.Context) error
	CloseFn             func() error

	// Requests records every suggestion request for assertions
	Requests []driven.FallbackRequest
}

var _ driven.AIFallback = (*AIFallback)(nil)

func (m *AIFallback) SuggestConversion(ctx context.Context, req driven.FallbackRequest) (*driven.FallbackResponse, error) {
	m.Requests = append(m.Requests, req)
	if m.SuggestConversionFn != nil {
		return m.SuggestConversionFn(ctx, req)
	}
	return nil, nil
}

func (m *AIFallback) Ping(ctx context.Context) error {
	if m.PingFn != nil {
		return m.PingFn(ctx)
	}
	return nil
}

func (m *AIFallback) Close() error {
	if m.CloseFn != nil {
		return m.CloseFn()
	}
	return nil
}
