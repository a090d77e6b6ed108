package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostelbooking/internal/pkg/apperror"
)

func record(fn func(c *gin.Context)) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	fn(c)
	return w
}

func TestError_Envelope(t *testing.T) {
	w := record(func(c *gin.Context) {
		Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking id")
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, map[string]any{"code": "VALIDATION_ERROR", "message": "Invalid booking id"}, body["error"])
}

func TestErrorWithDetails_IncludesDetails(t *testing.T) {
	w := record(func(c *gin.Context) {
		ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", map[string]string{"method": "required"})
	})

	var body ErrorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, map[string]any{"method": "required"}, body.Error.Details)
}

func TestFromError(t *testing.T) {
	busy := apperror.New(apperror.KindConcurrency, "LOCK_TIMEOUT", "row is locked")

	w := record(func(c *gin.Context) { FromError(c, busy) })
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), `"code":"LOCK_TIMEOUT"`)

	w = record(func(c *gin.Context) { FromError(c, errors.New("dial tcp: refused")) })
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
	assert.NotContains(t, w.Body.String(), "refused")
}
