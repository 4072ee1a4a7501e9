package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profpocket/pocket-api/internal/insight"
	"github.com/profpocket/pocket-api/internal/models"
	"github.com/profpocket/pocket-api/internal/service"
)

func insightHandlerForTest(ledger *memoryLedger, now func() time.Time) *InsightHandler {
	svc := service.NewInsightService(ledger, insight.New(now), nil, nil, nil)
	return NewInsightHandler(svc)
}

func TestInsightHandlerProject(t *testing.T) {
	h := insightHandlerForTest(&memoryLedger{}, nil)

	c, rec := authedContext(t, http.MethodPost, "/insights/project", models.ProjectionRequest{
		Evolutions: []float64{4, 5, 6, 7, 7, 8},
	})
	h.Project(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.ProjectionResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Recommendation)
}

func TestInsightHandlerClassReport(t *testing.T) {
	now := func() time.Time { return time.Date(2024, time.May, 20, 12, 0, 0, 0, time.UTC) }
	nowMS := now().UnixMilli()

	classPayload, _ := json.Marshal(models.ClassGroup{ID: "cls-1", SchoolID: "sch-1", Name: "Guitar A", UpdatedAt: nowMS})
	ledger := &memoryLedger{rows: []models.ChangeRow{
		{ID: "a", UserID: "usr-1", Entity: "class", EntityID: "cls-1", Op: "upsert", Payload: classPayload, UpdatedAt: nowMS},
	}}
	h := insightHandlerForTest(ledger, now)

	c, rec := authedContext(t, http.MethodGet, "/insights/class/cls-1", nil)
	c.Params = append(c.Params, gin.Param{Key: "classId", Value: "cls-1"})
	h.ClassReport(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var report models.ClassReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "cls-1", report.ClassID)
	assert.Equal(t, "Guitar A", report.ClassName)
}

func TestInsightHandlerClassReportUnknownClass(t *testing.T) {
	h := insightHandlerForTest(&memoryLedger{}, nil)

	c, rec := authedContext(t, http.MethodGet, "/insights/class/missing", nil)
	c.Params = append(c.Params, gin.Param{Key: "classId", Value: "missing"})
	h.ClassReport(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
