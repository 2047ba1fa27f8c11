package utils

import (
	"context"
	"log/slog"

	copilot "github.com/github/copilot-sdk/go"
)

// SessionLogger returns a copilot session handler that forwards events to
// slog at debug level, tagged with the judge that owns the session.
func SessionLogger(judgeName string) func(event copilot.SessionEvent) {
	return func(event copilot.SessionEvent) {
		if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
			return
		}

		attrs := []any{
			"judge", judgeName,
			"type", event.Type,
		}

		attrs = addIf(attrs, "content", event.Data.Content)
		attrs = addIf(attrs, "deltaContent", event.Data.DeltaContent)
		attrs = addIf(attrs, "reasoningText", event.Data.ReasoningText)

		slog.Debug("Judge session event", attrs...)
	}
}

func addIf[T any](attrs []any, name string, v *T) []any {
	if v != nil {
		attrs = append(attrs, name, *v)
	}
	return attrs
}
