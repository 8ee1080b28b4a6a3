package logger

import (
	"log/slog"
	"strconv"
	"time"
)

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Errors groups multiple non-nil errors under the key "errors".
// If all errors are nil, it returns an empty Attr.
func Errors(errs ...error) slog.Attr {
	as := make([]slog.Attr, 0, len(errs))
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Index records the target index name under the key "index".
func Index(name string) slog.Attr {
	return slog.String("index", name)
}

// Operation records the store operation under the key "operation".
func Operation(name string) slog.Attr {
	return slog.String("operation", name)
}

// Count records a document count under the key "count".
func Count(n int) slog.Attr {
	return slog.Int("count", n)
}

// DocumentID records a document identifier under the key "document_id".
// If id is empty, it returns an empty Attr.
func DocumentID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("document_id", id)
}

// Message records an engine diagnostic under the key "message".
func Message(msg string) slog.Attr {
	return slog.String("message", msg)
}

// Duration records a duration under the key "duration".
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}
