package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/profpocket/pocket-api/internal/models"
	"github.com/profpocket/pocket-api/internal/service"
	appErrors "github.com/profpocket/pocket-api/pkg/errors"
	"github.com/profpocket/pocket-api/pkg/response"
)

// SyncHandler wires the change-ledger endpoints to the sync service.
// Success payloads are returned bare, not enveloped: the offline clients
// depend on the documented {acceptedIds} / {changes, serverNow} shapes.
type SyncHandler struct {
	service *service.SyncService
}

// NewSyncHandler creates a new handler.
func NewSyncHandler(svc *service.SyncService) *SyncHandler {
	return &SyncHandler{service: svc}
}

// Push godoc
// @Summary Push pending changes
// @Description Append the client's pending change queue to the ledger
// @Tags Sync
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.PushRequest true "Pending changes, oldest first"
// @Success 200 {object} models.PushResponse
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /sync/push [post]
func (h *SyncHandler) Push(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.PushRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid push payload"))
		return
	}

	res, err := h.service.Push(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// Pull godoc
// @Summary Pull changes since a watermark
// @Description Return ledger rows strictly newer than the since watermark
// @Tags Sync
// @Produce json
// @Security BearerAuth
// @Param since query int false "Watermark in epoch milliseconds"
// @Success 200 {object} models.PullResponse
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /sync/pull [get]
func (h *SyncHandler) Pull(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	since := int64(0)
	if raw := c.Query("since"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "since must be a non-negative epoch-ms integer"))
			return
		}
		since = parsed
	}

	res, err := h.service.Pull(c.Request.Context(), userID, since)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}
