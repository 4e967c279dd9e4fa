package handlers

import (
	"errors"
	"net/http"

	"hive/models"
	joinrequest "hive/services/joinrequest"
	"hive/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// JoinRequestHandler serves join requests and the owner's decisions.
type JoinRequestHandler struct {
	Requests joinrequest.JoinRequestService
}

func joinRequestErrorStatus(c *gin.Context, err error, logger *zap.Logger, action string) {
	switch {
	case errors.Is(err, joinrequest.ErrNotFound),
		errors.Is(err, joinrequest.ErrServiceNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, joinrequest.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, joinrequest.ErrOwnService),
		errors.Is(err, joinrequest.ErrServiceClosed),
		errors.Is(err, joinrequest.ErrAlreadyMatched):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, joinrequest.ErrDuplicatePending),
		errors.Is(err, joinrequest.ErrNotPending),
		errors.Is(err, joinrequest.ErrCapacityExceeded):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Error(action, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// CreateJoinRequestHandler handles POST /api/join-requests.
func (h *JoinRequestHandler) CreateJoinRequestHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var payload models.JoinRequestCreate
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	request, err := h.Requests.Create(userID, payload)
	if err != nil {
		joinRequestErrorStatus(c, err, utils.GetLogger(), "Failed to create join request")
		return
	}
	c.JSON(http.StatusCreated, request)
}

// GetJoinRequestHandler handles GET /api/join-requests/:id.
func (h *JoinRequestHandler) GetJoinRequestHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	request, err := h.Requests.GetByID(c.Param("id"), userID)
	if err != nil {
		joinRequestErrorStatus(c, err, utils.GetLogger(), "Failed to fetch join request")
		return
	}
	c.JSON(http.StatusOK, request)
}

// ListServiceJoinRequestsHandler handles GET /api/services/:id/join-requests.
func (h *JoinRequestHandler) ListServiceJoinRequestsHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	page, limit := pagination(c)
	requests, total, err := h.Requests.ListByService(c.Param("id"), userID, page, limit)
	if err != nil {
		joinRequestErrorStatus(c, err, utils.GetLogger(), "Failed to list join requests")
		return
	}
	c.JSON(http.StatusOK, listResponse(requests, total, page, limit))
}

// ListMyJoinRequestsHandler handles GET /api/join-requests.
func (h *JoinRequestHandler) ListMyJoinRequestsHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	page, limit := pagination(c)
	status := models.JoinRequestStatus(c.Query("status"))
	requests, total, err := h.Requests.ListByUser(userID, status, page, limit)
	if err != nil {
		joinRequestErrorStatus(c, err, utils.GetLogger(), "Failed to list join requests")
		return
	}
	c.JSON(http.StatusOK, listResponse(requests, total, page, limit))
}

// CancelJoinRequestHandler handles POST /api/join-requests/:id/cancel.
func (h *JoinRequestHandler) CancelJoinRequestHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	request, err := h.Requests.Cancel(c.Param("id"), userID)
	if err != nil {
		joinRequestErrorStatus(c, err, utils.GetLogger(), "Failed to cancel join request")
		return
	}
	c.JSON(http.StatusOK, request)
}

// DecideJoinRequestHandler handles PUT /api/join-requests/:id.
func (h *JoinRequestHandler) DecideJoinRequestHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var payload models.JoinRequestUpdate
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	request, err := h.Requests.UpdateStatus(c.Param("id"), userID, payload)
	if err != nil {
		joinRequestErrorStatus(c, err, utils.GetLogger(), "Failed to decide join request")
		return
	}
	c.JSON(http.StatusOK, request)
}
