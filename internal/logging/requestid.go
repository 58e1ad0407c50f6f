package logging

import (
	"context"

	"github.com/google/uuid"
)

// NewRequestID returns a random request ID.
func NewRequestID() string {
	return uuid.NewString()
}

// WithNewRequestID attaches a fresh request ID to ctx and returns both.
func WithNewRequestID(ctx context.Context) (context.Context, string) {
	id := NewRequestID()
	return WithRequestID(ctx, id), id
}
