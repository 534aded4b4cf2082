package upsell

import (
	"context"
	"errors"
)

// ErrNoProvider is returned when the upsell slot is read outside a provider scope.
var ErrNoProvider = errors.New("upsell: no source in context; mount the upsell provider first")

type ctxKey struct{}

// NewContext publishes src to everything below ctx.
func NewContext(ctx context.Context, src *Source) context.Context {
	return context.WithValue(ctx, ctxKey{}, src)
}

// FromContext returns the source published by NewContext, or ErrNoProvider.
func FromContext(ctx context.Context) (*Source, error) {
	src, ok := ctx.Value(ctxKey{}).(*Source)
	if !ok || src == nil {
		return nil, ErrNoProvider
	}
	return src, nil
}
