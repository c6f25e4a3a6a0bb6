package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nodepanel/pkg/logger"
	"nodepanel/pkg/model"
	"nodepanel/pkg/report"
	"nodepanel/pkg/store"
)

func reportServer(t *testing.T, st store.Store, now time.Time) *httptest.Server {
	t.Helper()
	rec := report.NewReconciler(st)
	rec.Now = func() time.Time { return now }
	mux := http.NewServeMux()
	NewReportHandler(rec, logger.NewNop()).RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func seedReportNode(t *testing.T, st store.Store) model.Node {
	t.Helper()
	n, err := st.CreateNode(model.Node{
		UserEmail:      "owner@example.com",
		Name:           "tokyo-1",
		MaxConnections: 50,
		MaxTraffic:     1000,
		TierBandwidth:  100,
		ResetCycle:     15,
		ResetDate:      time.Date(2024, time.July, 15, 0, 0, 0, 0, time.UTC),
		ValidUntil:     time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC),
		ReportToken:    "secret-token",
	})
	require.NoError(t, err)
	return n
}

func postReport(t *testing.T, url string, body map[string]interface{}) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url+"/api/v1/node/report", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func validBody() map[string]interface{} {
	return map[string]interface{}{
		"node_name":         "tokyo-1",
		"email":             "owner@example.com",
		"token":             "secret-token",
		"current_bandwidth": 80,
		"reported_traffic":  100,
		"connection_count":  10,
		"status":            "online",
	}
}

func TestReportEndpointSuccess(t *testing.T) {
	st := store.NewMemoryStore()
	node := seedReportNode(t, st)
	now := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)
	srv := reportServer(t, st, now)

	resp := postReport(t, srv.URL, validBody())
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result report.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, 100.0, result.UsedTraffic)
	assert.Equal(t, 1000.0, result.MaxTraffic)
	assert.True(t, result.ResetDate.Equal(node.ResetDate))
}

func TestReportEndpointMissingFields(t *testing.T) {
	st := store.NewMemoryStore()
	seedReportNode(t, st)
	srv := reportServer(t, st, time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC))

	body := validBody()
	delete(body, "token")
	resp := postReport(t, srv.URL, body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body = validBody()
	body["status"] = "resting"
	resp = postReport(t, srv.URL, body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body = validBody()
	body["reported_traffic"] = -5
	resp = postReport(t, srv.URL, body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReportEndpointUnknownNode(t *testing.T) {
	st := store.NewMemoryStore()
	srv := reportServer(t, st, time.Now())

	resp := postReport(t, srv.URL, validBody())
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestReportEndpointForbidden(t *testing.T) {
	st := store.NewMemoryStore()
	seedReportNode(t, st)
	srv := reportServer(t, st, time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC))

	body := validBody()
	body["token"] = "wrong"
	resp := postReport(t, srv.URL, body)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestReportEndpointExpiredNode(t *testing.T) {
	st := store.NewMemoryStore()
	node := seedReportNode(t, st)
	node.ValidUntil = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, st.SaveNode(node))
	srv := reportServer(t, st, time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC))

	resp := postReport(t, srv.URL, validBody())
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestReportEndpointZeroValuesAccepted(t *testing.T) {
	// Zero is a legal value for every numeric field; only absence or
	// negatives are rejected.
	st := store.NewMemoryStore()
	seedReportNode(t, st)
	srv := reportServer(t, st, time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC))

	body := validBody()
	body["current_bandwidth"] = 0
	body["reported_traffic"] = 0
	body["connection_count"] = 0
	resp := postReport(t, srv.URL, body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
