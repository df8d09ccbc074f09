package id

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// Generator creates opaque IDs used to correlate the log lines of one
// pipeline run.
type Generator interface {
	NewRunID() (string, error)
}

type RandomGenerator struct{}

func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{}
}

func (g *RandomGenerator) NewRunID() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	return hex.EncodeToString(buf), nil
}

type ctxKey struct{}

// WithRunID stores a run id on the context for log correlation.
func WithRunID(ctx context.Context, runID string) context.Context {
	if runID == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, runID)
}

// RunIDFromContext returns the run id carried by ctx, if any.
func RunIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxKey{}).(string); ok {
		return v
	}
	return ""
}
