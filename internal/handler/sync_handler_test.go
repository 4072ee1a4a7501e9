package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profpocket/pocket-api/internal/middleware"
	"github.com/profpocket/pocket-api/internal/models"
	"github.com/profpocket/pocket-api/internal/service"
)

type memoryLedger struct {
	rows []models.ChangeRow
}

func (m *memoryLedger) Append(_ context.Context, rows []models.ChangeRow) error {
	m.rows = append(m.rows, rows...)
	return nil
}

func (m *memoryLedger) ListSince(_ context.Context, userID string, since int64) ([]models.ChangeRow, error) {
	var out []models.ChangeRow
	for _, row := range m.rows {
		if row.UserID == userID && row.UpdatedAt > since {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *memoryLedger) ListAll(ctx context.Context, userID string) ([]models.ChangeRow, error) {
	return m.ListSince(ctx, userID, -1)
}

func authedContext(t *testing.T, method, target string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	c.Request = httptest.NewRequest(method, target, reader)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.ContextUserKey, &models.JWTClaims{
		UID:              "usr-1",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "usr-1"},
	})
	return c, rec
}

func syncHandlerForTest(ledger *memoryLedger) *SyncHandler {
	return NewSyncHandler(service.NewSyncService(ledger, nil, nil, nil))
}

func TestSyncHandlerPush(t *testing.T) {
	ledger := &memoryLedger{}
	h := syncHandlerForTest(ledger)

	c, rec := authedContext(t, http.MethodPost, "/sync/push", models.PushRequest{Changes: []models.PushChange{
		{ClientID: "school|sch-1|100", Entity: models.EntitySchool, EntityID: "sch-1", Op: models.OpUpsert, Payload: json.RawMessage(`{"id":"sch-1"}`), UpdatedAt: 100},
	}})

	h.Push(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.PushResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"school|sch-1|100"}, resp.AcceptedIDs)
	assert.Len(t, ledger.rows, 1)
}

func TestSyncHandlerPushRequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/sync/push", bytes.NewReader([]byte(`{"changes":[]}`)))

	syncHandlerForTest(&memoryLedger{}).Push(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSyncHandlerPushRejectsMalformedBody(t *testing.T) {
	c, rec := authedContext(t, http.MethodPost, "/sync/push", nil)
	c.Request = httptest.NewRequest(http.MethodPost, "/sync/push", bytes.NewReader([]byte(`{`)))

	syncHandlerForTest(&memoryLedger{}).Push(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSyncHandlerPullRoundTrip(t *testing.T) {
	ledger := &memoryLedger{rows: []models.ChangeRow{
		{ID: "a", UserID: "usr-1", Entity: "school", EntityID: "sch-1", Op: "upsert", Payload: json.RawMessage(`{"id":"sch-1"}`), UpdatedAt: 150},
		{ID: "b", UserID: "usr-2", Entity: "school", EntityID: "sch-9", Op: "upsert", Payload: json.RawMessage(`{"id":"sch-9"}`), UpdatedAt: 150},
	}}
	h := syncHandlerForTest(ledger)

	c, rec := authedContext(t, http.MethodGet, "/sync/pull?since=100", nil)
	h.Pull(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.PullResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	// Only the caller's ledger rows come back.
	require.Len(t, resp.Changes, 1)
	assert.Equal(t, "sch-1", resp.Changes[0].EntityID)
	assert.Positive(t, resp.ServerNow)
}

func TestSyncHandlerPullRejectsBadSince(t *testing.T) {
	c, rec := authedContext(t, http.MethodGet, "/sync/pull?since=yesterday", nil)

	syncHandlerForTest(&memoryLedger{}).Pull(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
