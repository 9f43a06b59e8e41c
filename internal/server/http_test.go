package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizdeck/quizdeck/internal/logging"
)

func TestRequestLoggerMiddlewareStampsRouteMetadata(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqLogger := logging.FromContext(r.Context())
		reqLogger.Info().Msg("handled")
		w.WriteHeader(http.StatusNoContent)
	})
	handler := requestLoggerMiddleware(logger)(inner)

	r := httptest.NewRequest(http.MethodGet, "/v1/ping", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, buf.String(), `"method":"GET"`)
	assert.Contains(t, buf.String(), `"path":"/v1/ping"`)
	assert.Contains(t, buf.String(), "handled")
}
