package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xdrive-logistics-api-server/config"
	"xdrive-logistics-api-server/internal/api/routes"
	"xdrive-logistics-api-server/internal/auth"
	"xdrive-logistics-api-server/internal/jobs"
	"xdrive-logistics-api-server/internal/models"
	"xdrive-logistics-api-server/internal/socket"
	"xdrive-logistics-api-server/internal/store"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	auth.Init("test-secret", time.Hour)
	os.Exit(m.Run())
}

type testEnv struct {
	router *gin.Engine
	store  *store.Memory
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st := store.NewMemory()
	cfg := config.Config{
		CORS: config.CORSConfig{AllowedOrigins: []string{"*"}},
	}
	router := routes.SetupRouter(cfg, nil, st, nil, socket.NewHub())
	return &testEnv{router: router, store: st}
}

func tokenFor(t *testing.T, userID string, role auth.Role, companyID string) string {
	t.Helper()
	token, err := auth.GenerateJWT(userID, userID+"@xdrive.test", role, companyID)
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reqBody *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(raw)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) seedJob(t *testing.T, job models.Job) {
	t.Helper()
	now := time.Now()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
		job.StatusUpdatedAt = now
	}
	require.NoError(t, e.store.CreateJob(context.Background(), &job))
}

func (e *testEnv) seedBid(t *testing.T, bid models.Bid) {
	t.Helper()
	now := time.Now()
	if bid.CreatedAt.IsZero() {
		bid.CreatedAt = now
		bid.UpdatedAt = now
	}
	require.NoError(t, e.store.CreateBid(context.Background(), &bid))
}

func openJob() models.Job {
	return models.Job{
		JobID:            "JOB-TEST01",
		PostedByUserID:   "USR-BROKER1",
		PostingCompanyID: "CMP-BROKER",
		Status:           jobs.MarketOpen,
	}
}

func assignedJob() models.Job {
	job := openJob()
	job.Status = jobs.MarketAssigned
	job.FulfillmentStatus = jobs.Allocated
	job.AssignedCompanyID = "CMP-CARRIER"
	job.AcceptedBidID = "BID-WIN"
	job.AssignedDriverID = "USR-DRIVER1"
	return job
}

func TestRequestsWithoutTokenAreRejected(t *testing.T) {
	env := newTestEnv(t)

	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/jobs"},
		{http.MethodPost, "/api/v1/jobs"},
		{http.MethodGet, "/api/v1/jobs/JOB-TEST01/bids"},
		{http.MethodPost, "/api/v1/jobs/JOB-TEST01/status"},
		{http.MethodGet, "/api/v1/vehicles"},
	} {
		w := env.do(t, tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", tc.method, tc.path)
	}
}

func TestCreateJob(t *testing.T) {
	env := newTestEnv(t)
	brokerToken := tokenFor(t, "USR-BROKER1", auth.RoleBroker, "CMP-BROKER")
	driverToken := tokenFor(t, "USR-DRIVER1", auth.RoleDriver, "CMP-CARRIER")

	payload := gin.H{
		"pickupAddress":   gin.H{"fullText": "12 Dock Rd, Newark, NJ", "latitude": 40.73, "longitude": -74.17},
		"deliveryAddress": gin.H{"fullText": "500 Market St, Philadelphia, PA", "latitude": 39.95, "longitude": -75.16},
		"pickupWindow":    "2026-09-01T08:00Z/2026-09-01T12:00Z",
		"cargo":           gin.H{"description": "Palletized beverages", "weightTonnes": 4.2},
	}

	// Drivers cannot post jobs.
	w := env.do(t, http.MethodPost, "/api/v1/jobs", driverToken, payload)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/jobs", brokerToken, payload)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created models.Job
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.JobID)
	assert.Equal(t, jobs.MarketOpen, created.Status)
	assert.Equal(t, "CMP-BROKER", created.PostingCompanyID)

	// Missing required fields are a 400.
	w = env.do(t, http.MethodPost, "/api/v1/jobs", brokerToken, gin.H{"pickupWindow": "whenever"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResolveBidEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.seedJob(t, openJob())
	env.seedBid(t, models.Bid{
		BidID:        "BID-ONE",
		JobID:        "JOB-TEST01",
		BidderUserID: "USR-CARRIER1",
		CompanyID:    "CMP-CARRIER",
		Amount:       1000,
		Currency:     "USD",
		Status:       models.BidSubmitted,
	})

	posterToken := tokenFor(t, "USR-BROKER1", auth.RoleCompanyAdmin, "CMP-BROKER")
	carrierToken := tokenFor(t, "USR-CARRIER1", auth.RoleCompanyAdmin, "CMP-CARRIER")

	// The bidding carrier cannot resolve its own bid.
	w := env.do(t, http.MethodPost, "/api/v1/jobs/JOB-TEST01/bids", carrierToken,
		gin.H{"bidId": "BID-ONE", "action": "accept"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Unknown action is a 400.
	w = env.do(t, http.MethodPost, "/api/v1/jobs/JOB-TEST01/bids", posterToken,
		gin.H{"bidId": "BID-ONE", "action": "approve"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/jobs/JOB-TEST01/bids", posterToken,
		gin.H{"bidId": "BID-ONE", "action": "accept"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	job, err := env.store.FindJob(context.Background(), "JOB-TEST01")
	require.NoError(t, err)
	assert.Equal(t, jobs.MarketAssigned, job.Status)
	assert.Equal(t, "BID-ONE", job.AcceptedBidID)

	// Resolving again on the now-assigned job is a 400.
	w = env.do(t, http.MethodPost, "/api/v1/jobs/JOB-TEST01/bids", posterToken,
		gin.H{"bidId": "BID-ONE", "action": "accept"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Cannot manage bids on a job with status 'assigned'")
}

func TestGetJobBidsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.seedJob(t, openJob())
	env.seedBid(t, models.Bid{
		BidID:        "BID-ONE",
		JobID:        "JOB-TEST01",
		BidderUserID: "USR-CARRIER1",
		CompanyID:    "CMP-CARRIER",
		Amount:       1000,
		Currency:     "USD",
		Status:       models.BidSubmitted,
	})

	posterToken := tokenFor(t, "USR-BROKER1", auth.RoleCompanyAdmin, "CMP-BROKER")
	carrierToken := tokenFor(t, "USR-CARRIER1", auth.RoleCompanyAdmin, "CMP-CARRIER")

	w := env.do(t, http.MethodGet, "/api/v1/jobs/JOB-TEST01/bids", posterToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var bids []models.Bid
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bids))
	assert.Len(t, bids, 1)

	// Carriers cannot see competing bids.
	w = env.do(t, http.MethodGet, "/api/v1/jobs/JOB-TEST01/bids", carrierToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/jobs/JOB-MISSING/bids", posterToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubmitBidEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.seedJob(t, openJob())

	carrierToken := tokenFor(t, "USR-CARRIER1", auth.RoleCompanyAdmin, "CMP-CARRIER")

	w := env.do(t, http.MethodPost, "/api/v1/marketplace/jobs/JOB-TEST01/bids", carrierToken,
		gin.H{"amount": 1250.0, "message": "Reefer available same day"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var bid models.Bid
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bid))
	assert.Equal(t, models.BidSubmitted, bid.Status)
	assert.Equal(t, "USD", bid.Currency)

	// Zero or missing amount fails binding.
	w = env.do(t, http.MethodPost, "/api/v1/marketplace/jobs/JOB-TEST01/bids", carrierToken,
		gin.H{"amount": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateStatusEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.seedJob(t, assignedJob())

	driverToken := tokenFor(t, "USR-DRIVER1", auth.RoleDriver, "CMP-CARRIER")
	strangerToken := tokenFor(t, "USR-OTHER", auth.RoleDriver, "CMP-OTHER")

	// A driver who is not assigned to the job gets a 403.
	w := env.do(t, http.MethodPost, "/api/v1/jobs/JOB-TEST01/status", strangerToken,
		gin.H{"status": "ON_MY_WAY_TO_PICKUP"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/jobs/JOB-TEST01/status", driverToken,
		gin.H{"status": "ON_MY_WAY_TO_PICKUP", "notes": "Rolling out"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Status  string     `json:"status"`
		Message string     `json:"message"`
		Job     models.Job `json:"job"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, jobs.OnMyWayToPickup, resp.Job.FulfillmentStatus)

	// Skipping a step returns 400 with the legal next states.
	w = env.do(t, http.MethodPost, "/api/v1/jobs/JOB-TEST01/status", driverToken,
		gin.H{"status": "DELIVERED"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var errResp struct {
		Error            string                   `json:"error"`
		ValidTransitions []jobs.FulfillmentStatus `json:"validTransitions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
	assert.Equal(t, []jobs.FulfillmentStatus{jobs.OnSitePickup, jobs.Cancelled}, errResp.ValidTransitions)

	// Missing status field fails binding.
	w = env.do(t, http.MethodPost, "/api/v1/jobs/JOB-TEST01/status", driverToken, gin.H{"notes": "no status"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/jobs/JOB-MISSING/status", driverToken,
		gin.H{"status": "ON_MY_WAY_TO_PICKUP"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStatusHistoryEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.seedJob(t, assignedJob())

	driverToken := tokenFor(t, "USR-DRIVER1", auth.RoleDriver, "CMP-CARRIER")
	posterToken := tokenFor(t, "USR-BROKER1", auth.RoleCompanyAdmin, "CMP-BROKER")
	strangerToken := tokenFor(t, "USR-OTHER", auth.RoleBroker, "CMP-OTHER")

	for _, status := range []string{"ON_MY_WAY_TO_PICKUP", "ON_SITE_PICKUP"} {
		w := env.do(t, http.MethodPost, "/api/v1/jobs/JOB-TEST01/status", driverToken, gin.H{"status": status})
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := env.do(t, http.MethodGet, "/api/v1/jobs/JOB-TEST01/status", posterToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var events []models.StatusEvent
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &events))
	require.Len(t, events, 2)
	assert.Equal(t, jobs.OnMyWayToPickup, events[0].Status)
	assert.Equal(t, jobs.OnSitePickup, events[1].Status)

	w = env.do(t, http.MethodGet, "/api/v1/jobs/JOB-TEST01/status", strangerToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestJobVisibilityScopes(t *testing.T) {
	env := newTestEnv(t)
	env.seedJob(t, openJob())
	other := assignedJob()
	other.JobID = "JOB-TEST02"
	other.PostedByUserID = "USR-OTHER"
	other.PostingCompanyID = "CMP-OTHER"
	env.seedJob(t, other)

	posterToken := tokenFor(t, "USR-BROKER1", auth.RoleCompanyAdmin, "CMP-BROKER")
	adminToken := tokenFor(t, "USR-ADMIN1", auth.RoleAdmin, "")
	driverToken := tokenFor(t, "USR-DRIVER1", auth.RoleDriver, "CMP-CARRIER")

	w := env.do(t, http.MethodGet, "/api/v1/jobs", posterToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.Job
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "JOB-TEST01", list[0].JobID)

	w = env.do(t, http.MethodGet, "/api/v1/jobs", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 2)

	// Drivers see only their assignments.
	w = env.do(t, http.MethodGet, "/api/v1/jobs", driverToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "JOB-TEST02", list[0].JobID)

	// Marketplace board shows only open jobs.
	w = env.do(t, http.MethodGet, "/api/v1/marketplace/jobs", driverToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "JOB-TEST01", list[0].JobID)
}

func TestCancelJobEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.seedJob(t, openJob())

	posterToken := tokenFor(t, "USR-BROKER1", auth.RoleCompanyAdmin, "CMP-BROKER")

	w := env.do(t, http.MethodPost, "/api/v1/jobs/JOB-TEST01/cancel", posterToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	job, err := env.store.FindJob(context.Background(), "JOB-TEST01")
	require.NoError(t, err)
	assert.Equal(t, jobs.MarketCancelled, job.Status)

	// Cancelling twice is a 400: the job is no longer open.
	w = env.do(t, http.MethodPost, "/api/v1/jobs/JOB-TEST01/cancel", posterToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
