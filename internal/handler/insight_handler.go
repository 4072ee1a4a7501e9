package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/profpocket/pocket-api/internal/models"
	"github.com/profpocket/pocket-api/internal/service"
	appErrors "github.com/profpocket/pocket-api/pkg/errors"
	"github.com/profpocket/pocket-api/pkg/response"
)

// InsightHandler wires the optional online insight endpoints.
type InsightHandler struct {
	service *service.InsightService
}

// NewInsightHandler creates a new handler.
func NewInsightHandler(svc *service.InsightService) *InsightHandler {
	return &InsightHandler{service: svc}
}

// Project godoc
// @Summary Project a score series
// @Description Smooth an evolution-score series and recommend a next step
// @Tags Insights
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.ProjectionRequest true "Score series, oldest first"
// @Success 200 {object} models.ProjectionResult
// @Failure 400 {object} response.Envelope
// @Router /insights/project [post]
func (h *InsightHandler) Project(c *gin.Context) {
	var req models.ProjectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid projection payload"))
		return
	}

	c.JSON(http.StatusOK, h.service.Project(req))
}

// ClassReport godoc
// @Summary Class report from the ledger
// @Description Materialize the caller's ledger and summarise one class
// @Tags Insights
// @Produce json
// @Security BearerAuth
// @Param classId path string true "Class ID"
// @Success 200 {object} models.ClassReport
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /insights/class/{classId} [get]
func (h *InsightHandler) ClassReport(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	classID := c.Param("classId")
	if classID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "classId is required"))
		return
	}

	report, cached, err := h.service.ClassReport(c.Request.Context(), userID, classID)
	if err != nil {
		response.Error(c, err)
		return
	}

	if cached {
		c.Header("X-Cache", "HIT")
	}
	c.JSON(http.StatusOK, report)
}
