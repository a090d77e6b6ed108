package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostelbooking/internal/config"
	"hostelbooking/internal/domain"
	"hostelbooking/internal/gateway"
	"hostelbooking/internal/modules/scheduler"
	"hostelbooking/internal/pkg/jwt"
	"hostelbooking/internal/repository"
	"hostelbooking/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
	binding.EnableDecoderDisallowUnknownFields = true
}

type E2ETestSuite struct {
	router *gin.Engine
	store  *repository.Store
	tokens *jwt.Service
	room   domain.Room

	studentToken string
	staffToken   string
	adminToken   string
}

type TestResponse struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   *ErrorDetail           `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type stubGateway map[string]gateway.Verification

func (g stubGateway) Verify(_ context.Context, ref string) (gateway.Verification, error) {
	v, ok := g[ref]
	if !ok {
		return gateway.Verification{Reference: ref, Status: "failed"}, nil
	}
	return v, nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test_secret_key_32_characters_min"
	cfg.JWT.TTL = time.Hour
	cfg.Booking.Fee = 50
	cfg.Booking.PaymentWindow = 7 * 24 * time.Hour
	cfg.Booking.AutoCancelGrace = 7 * 24 * time.Hour
	cfg.Booking.SweepBatchSize = 100
	cfg.Scheduler.Tick = time.Minute
	cfg.Scheduler.MarkOverdue = 24 * time.Hour
	cfg.Scheduler.AutoCancel = 24 * time.Hour
	cfg.Scheduler.NoShow = 24 * time.Hour
	cfg.Scheduler.Reconcile = 30 * time.Minute
	return cfg
}

func setupTestSuite(t *testing.T) *E2ETestSuite {
	t.Helper()

	store := testutil.NewStore(t)
	cfg := testConfig()
	log, _ := logtest.NewNullLogger()

	gw := stubGateway{
		"pay_top_up": {Reference: "pay_top_up", Success: true, Status: "captured", AmountMinor: 400, Currency: "INR"},
	}
	a := newApp(cfg, log, store, gw, nil)
	t.Cleanup(a.hub.Close)

	room, _ := testutil.SeedRoom(t, store, testutil.RoomOpts{MaxOccupancy: 2})
	student := testutil.SeedUser(t, store, "Aigerim", domain.GenderFemale)
	staff := seedUser(t, store, "desk", domain.RoleStaff)
	admin := seedUser(t, store, "root", domain.RoleAdmin)

	s := &E2ETestSuite{
		router: a.router,
		store:  store,
		tokens: jwt.New(cfg.JWT.Secret, cfg.JWT.TTL),
		room:   room,
	}
	s.studentToken = s.token(t, student)
	s.staffToken = s.token(t, staff)
	s.adminToken = s.token(t, admin)
	return s
}

func seedUser(t *testing.T, store *repository.Store, name string, role domain.UserRole) domain.User {
	t.Helper()
	u := domain.User{Email: name + "@hostel.test", Name: name, Role: role}
	require.NoError(t, store.Users().Create(context.Background(), &u))
	return u
}

func (s *E2ETestSuite) token(t *testing.T, u domain.User) string {
	t.Helper()
	tok, err := s.tokens.GenerateToken(u.ID, string(u.Role))
	require.NoError(t, err)
	return tok
}

func (s *E2ETestSuite) makeRequest(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) TestResponse {
	t.Helper()
	var resp TestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func bookingOf(t *testing.T, resp TestResponse) map[string]interface{} {
	t.Helper()
	b, ok := resp.Data["booking"].(map[string]interface{})
	require.True(t, ok, "response has no booking: %+v", resp.Data)
	return b
}

func TestE2E_Health(t *testing.T) {
	s := setupTestSuite(t)

	w := s.makeRequest(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ok"`)
}

func TestE2E_AuthRequired(t *testing.T) {
	s := setupTestSuite(t)

	w := s.makeRequest(t, http.MethodGet, "/api/v1/bookings/me", nil, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	resp := parseResponse(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, "AUTH_HEADER_MISSING", resp.Error.Code)

	w = s.makeRequest(t, http.MethodGet, "/api/v1/bookings/me", nil, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestE2E_BookingPaymentFlow(t *testing.T) {
	s := setupTestSuite(t)

	// Create
	w := s.makeRequest(t, http.MethodPost, "/api/v1/bookings", map[string]interface{}{
		"room_id":        s.room.ID,
		"booking_type":   "semester",
		"check_in_date":  "2030-01-10",
		"check_out_date": "2030-05-10",
	}, s.studentToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	b := bookingOf(t, parseResponse(t, w))
	assert.Equal(t, "pending", b["status"])
	assert.Equal(t, float64(900), b["amount_due"])
	assert.Equal(t, float64(50), b["booking_fee"])
	id := int64(b["id"].(float64))
	base := "/api/v1/bookings/" + jsonInt(id)

	// A second active booking is refused.
	w = s.makeRequest(t, http.MethodPost, "/api/v1/bookings", map[string]interface{}{
		"room_id":        s.room.ID,
		"booking_type":   "semester",
		"check_in_date":  "2030-02-10",
		"check_out_date": "2030-06-10",
	}, s.studentToken)
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	// Only staff confirm.
	w = s.makeRequest(t, http.MethodPatch, base+"/confirm", nil, s.studentToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.makeRequest(t, http.MethodPatch, base+"/confirm", nil, s.staffToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "confirmed", bookingOf(t, parseResponse(t, w))["status"])

	// Booking fee leaves amount_due alone.
	w = s.makeRequest(t, http.MethodPost, base+"/booking-fee", map[string]interface{}{"method": "card"}, s.studentToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	b = bookingOf(t, parseResponse(t, w))
	assert.Equal(t, true, b["booking_fee_paid"])
	assert.Equal(t, float64(900), b["amount_due"])

	// Deposit credit, registered twice.
	w = s.makeRequest(t, http.MethodPost, "/api/v1/deposits", map[string]interface{}{"reference": "pay_top_up"}, s.studentToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = s.makeRequest(t, http.MethodPost, "/api/v1/deposits", map[string]interface{}{"reference": "pay_top_up"}, s.studentToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.makeRequest(t, http.MethodPost, base+"/apply-deposit", map[string]interface{}{"amount": 400}, s.studentToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	b = bookingOf(t, parseResponse(t, w))
	assert.Equal(t, float64(500), b["amount_due"])
	assert.Equal(t, "partial", b["payment_status"])

	w = s.makeRequest(t, http.MethodGet, "/api/v1/deposits/me", nil, s.studentToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), parseResponse(t, w).Data["balance"])

	// Desk payment cannot exceed the due amount.
	w = s.makeRequest(t, http.MethodPost, base+"/payments", map[string]interface{}{"amount": 600, "method": "cash"}, s.staffToken)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "AMOUNT_EXCEEDS_DUE", parseResponse(t, w).Error.Code)

	w = s.makeRequest(t, http.MethodPost, base+"/payments", map[string]interface{}{"amount": 500, "method": "cash"}, s.staffToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	b = bookingOf(t, parseResponse(t, w))
	assert.Equal(t, "paid", b["payment_status"])
	assert.Equal(t, float64(0), b["amount_due"])

	w = s.makeRequest(t, http.MethodGet, base+"/payments", nil, s.studentToken)
	require.Equal(t, http.StatusOK, w.Code)
	payments, ok := parseResponse(t, w).Data["payments"].([]interface{})
	require.True(t, ok)
	assert.Len(t, payments, 3)

	// Paid but the stay has not started.
	w = s.makeRequest(t, http.MethodPatch, base+"/check-in", nil, s.staffToken)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "TOO_EARLY", parseResponse(t, w).Error.Code)

	w = s.makeRequest(t, http.MethodGet, "/api/v1/bookings/me", nil, s.studentToken)
	require.Equal(t, http.StatusOK, w.Code)
	list, ok := parseResponse(t, w).Data["bookings"].([]interface{})
	require.True(t, ok)
	assert.Len(t, list, 1)
}

func TestE2E_CancelReleasesRoom(t *testing.T) {
	s := setupTestSuite(t)

	w := s.makeRequest(t, http.MethodPost, "/api/v1/bookings", map[string]interface{}{
		"room_id":        s.room.ID,
		"booking_type":   "semester",
		"check_in_date":  "2030-01-10",
		"check_out_date": "2030-05-10",
	}, s.studentToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := int64(bookingOf(t, parseResponse(t, w))["id"].(float64))

	room, err := s.store.Rooms().GetByID(context.Background(), s.room.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, room.CurrentOccupancy)

	w = s.makeRequest(t, http.MethodPatch, "/api/v1/bookings/"+jsonInt(id)+"/cancel", map[string]interface{}{"reason": "changed plans"}, s.studentToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "cancelled", bookingOf(t, parseResponse(t, w))["status"])

	room, err = s.store.Rooms().GetByID(context.Background(), s.room.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, room.CurrentOccupancy)
}

func TestE2E_AdminSweeps(t *testing.T) {
	s := setupTestSuite(t)

	w := s.makeRequest(t, http.MethodGet, "/api/v1/admin/sweeps", nil, s.staffToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.makeRequest(t, http.MethodGet, "/api/v1/admin/sweeps", nil, s.adminToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	jobs, ok := parseResponse(t, w).Data["jobs"].([]interface{})
	require.True(t, ok)
	assert.Len(t, jobs, 4)

	w = s.makeRequest(t, http.MethodPost, "/api/v1/admin/sweeps/"+scheduler.JobReconcileOccupancy, nil, s.adminToken)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.makeRequest(t, http.MethodPost, "/api/v1/admin/sweeps/nope", nil, s.adminToken)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNewApp_AcceptsLogrusLogger(t *testing.T) {
	store := testutil.NewStore(t)
	a := newApp(testConfig(), logrus.New(), store, stubGateway{}, nil)
	t.Cleanup(a.hub.Close)
	assert.NotNil(t, a.scheduler)
	assert.Len(t, a.scheduler.Jobs(), 4)
}

func jsonInt(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
