package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestFromContextReturnsInjectedLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).With().Str("component", "test").Logger()

	ctx := IntoContext(context.Background(), logger)
	ctxLogger := FromContext(ctx)
	ctxLogger.Info().Msg("hello")

	assert.Contains(t, buf.String(), `"component":"test"`)
	assert.Contains(t, buf.String(), "hello")
}

func TestFromContextFallsBackToNop(t *testing.T) {
	assert.Equal(t, zerolog.Nop(), FromContext(context.Background()))
	assert.Equal(t, zerolog.Nop(), FromContext(nil))
}
