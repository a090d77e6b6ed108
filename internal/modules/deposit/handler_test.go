package deposit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"hostelbooking/internal/domain"
	"hostelbooking/internal/gateway"
	"hostelbooking/internal/middleware"
	"hostelbooking/internal/pkg/jwt"
)

func doRequest(r http.Handler, token, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_DepositFlow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f := newFixture(t, domain.Booking{})
	tokens := jwt.New("deposit-secret", time.Hour)
	token, err := tokens.GenerateToken(f.student.ID, "student")
	require.NoError(t, err)

	r := gin.New()
	NewHandler(f.svc).RegisterRoutes(r.Group("/api/v1", middleware.JWTAuth(tokens)))

	f.gateway.On("Verify", mock.Anything, "pay_777").Return(gateway.Verification{
		Reference: "pay_777", Success: true, Status: "captured", AmountMinor: 300,
	}, nil).Once()

	w := doRequest(r, token, http.MethodPost, "/api/v1/deposits", gin.H{"reference": "pay_777"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = doRequest(r, token, http.MethodPost, "/api/v1/deposits", gin.H{"reference": "pay_777"})
	require.Equal(t, http.StatusOK, w.Code, "replay returns the stored deposit")

	w = doRequest(r, token, http.MethodPost, "/api/v1/deposits", gin.H{"reference": "pay_778", "deposit_type": "withdrawal"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	for _, amount := range []int64{0, -5} {
		w = doRequest(r, token, http.MethodPost, fmt.Sprintf("/api/v1/bookings/%d/apply-deposit", f.booking.ID), gin.H{"amount": amount})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_AMOUNT")
	}

	w = doRequest(r, token, http.MethodPost, fmt.Sprintf("/api/v1/bookings/%d/apply-deposit", f.booking.ID), gin.H{"amount": 1000})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "INSUFFICIENT_BALANCE")

	w = doRequest(r, token, http.MethodPost, fmt.Sprintf("/api/v1/bookings/%d/apply-deposit", f.booking.ID), gin.H{"amount": 250})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doRequest(r, token, http.MethodGet, "/api/v1/deposits/me", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data Statement `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(50), body.Data.Balance)
	assert.Len(t, body.Data.Deposits, 2)
}
