package services

import "context"

type contextKey string

const (
	runIDKey     contextKey = "run_id"
	stageKey     contextKey = "stage"
	clipIndexKey contextKey = "clip_index"
)

// WithRunID annotates context with the pipeline run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the pipeline run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStage annotates context with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(stageKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithClipIndex annotates context with the zero-based index of the clip
// currently being processed.
func WithClipIndex(ctx context.Context, index int) context.Context {
	return context.WithValue(ctx, clipIndexKey, index)
}

// ClipIndexFromContext extracts the clip index if present.
func ClipIndexFromContext(ctx context.Context) (int, bool) {
	if v, ok := ctx.Value(clipIndexKey).(int); ok {
		return v, true
	}
	return 0, false
}
