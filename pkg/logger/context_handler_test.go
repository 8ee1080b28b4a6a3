package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/searchkit/pkg/logger"
)

type commandKey struct{}

func TestNewContextHandler(t *testing.T) {
	t.Run("no extractors returns the wrapped handler", func(t *testing.T) {
		base := slog.NewJSONHandler(&bytes.Buffer{}, nil)
		assert.Same(t, base, logger.NewContextHandler(base, nil))
	})

	t.Run("attributes survive WithAttrs and WithGroup", func(t *testing.T) {
		buf := &bytes.Buffer{}
		h := logger.NewContextHandler(slog.NewJSONHandler(buf, nil), func(ctx context.Context) (slog.Attr, bool) {
			v, ok := ctx.Value(commandKey{}).(string)
			return slog.String("command", v), ok
		})

		log := slog.New(h).With(slog.String("static", "yes")).WithGroup("op")
		ctx := context.WithValue(context.Background(), commandKey{}, "find")
		log.InfoContext(ctx, "done", slog.Int("count", 2))

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "yes", entry["static"])
		op, ok := entry["op"].(map[string]any)
		require.True(t, ok, buf.String())
		assert.Equal(t, "find", op["command"])
		assert.Equal(t, float64(2), op["count"])
	})

	t.Run("missing value adds nothing", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf), logger.WithContextValue("command", commandKey{}))
		log.InfoContext(context.Background(), "done")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.NotContains(t, entry, "command")
	})
}
