package logging

import "log/slog"

// Standardized structured logging keys.
const (
	// FieldComponent names the subsystem emitting the record.
	FieldComponent = "component"
	// FieldComicID carries the library item identifier.
	FieldComicID = "comic_id"
	// FieldPage carries a zero-based page index.
	FieldPage = "page"
	// FieldHash carries a content digest (full, never truncated).
	FieldHash = "hash"
)

// Error wraps an error for structured output, tolerating nil.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}
