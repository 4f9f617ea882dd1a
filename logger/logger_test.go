package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"checkout-service/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestID_FromContextValue(t *testing.T) {
	ctx := logger.WithRequestID(context.Background(), "req-42")

	assert.Equal(t, "req-42", logger.RequestID(ctx))
	assert.Equal(t, "unknown", logger.RequestID(context.Background()))
}

func TestRequestID_FromGinContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/", nil)
	c.Set(logger.RequestIDKey, "req-gin")

	assert.Equal(t, "req-gin", logger.RequestID(c))
}

func TestNew_TeesJSONToExtraWriter(t *testing.T) {
	var buf bytes.Buffer
	l, err := logger.New("production", &buf)
	require.NoError(t, err)

	l.Info("payment intent created")
	_ = l.Sync()

	line := strings.TrimSpace(buf.String())
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "payment intent created", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.Contains(t, entry, "timestamp")
}
