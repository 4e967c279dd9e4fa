package handlers

import (
	"errors"
	"net/http"

	"hive/models"
	service "hive/services/service"
	"hive/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ServiceHandler serves service listings and the completion protocol.
type ServiceHandler struct {
	Services service.ServiceService
}

func serviceErrorStatus(c *gin.Context, err error, logger *zap.Logger, action string) {
	var transitionErr *service.InvalidTransitionError
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrOwnService),
		errors.Is(err, service.ErrPastDeadline):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrCapacityExceeded),
		errors.Is(err, service.ErrNotDeletable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Error(action, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// CreateServiceHandler handles POST /api/services.
func (h *ServiceHandler) CreateServiceHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var payload models.ServiceCreate
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	svc, err := h.Services.Create(userID, payload)
	if err != nil {
		serviceErrorStatus(c, err, utils.GetLogger(), "Failed to create service")
		return
	}
	c.JSON(http.StatusCreated, svc)
}

// GetServiceHandler handles GET /api/services/:id.
func (h *ServiceHandler) GetServiceHandler(c *gin.Context) {
	svc, err := h.Services.GetByID(c.Param("id"))
	if err != nil {
		serviceErrorStatus(c, err, utils.GetLogger(), "Failed to fetch service")
		return
	}
	c.JSON(http.StatusOK, svc)
}

// ListServicesHandler handles GET /api/services.
func (h *ServiceHandler) ListServicesHandler(c *gin.Context) {
	var filters models.ServiceFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filters: " + err.Error()})
		return
	}

	page, limit := pagination(c)
	services, total, err := h.Services.List(filters, page, limit)
	if err != nil {
		serviceErrorStatus(c, err, utils.GetLogger(), "Failed to list services")
		return
	}
	c.JSON(http.StatusOK, listResponse(services, total, page, limit))
}

// UpdateServiceHandler handles PUT /api/services/:id.
func (h *ServiceHandler) UpdateServiceHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var payload models.ServiceUpdate
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	svc, err := h.Services.Update(c.Param("id"), userID, payload)
	if err != nil {
		serviceErrorStatus(c, err, utils.GetLogger(), "Failed to update service")
		return
	}
	c.JSON(http.StatusOK, svc)
}

// DeleteServiceHandler handles DELETE /api/services/:id.
func (h *ServiceHandler) DeleteServiceHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.Services.Delete(c.Param("id"), userID); err != nil {
		serviceErrorStatus(c, err, utils.GetLogger(), "Failed to delete service")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Service deleted"})
}

// MatchServiceHandler handles POST /api/services/:id/match.
func (h *ServiceHandler) MatchServiceHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	svc, err := h.Services.Match(c.Param("id"), userID)
	if err != nil {
		serviceErrorStatus(c, err, utils.GetLogger(), "Failed to match service")
		return
	}
	c.JSON(http.StatusOK, svc)
}

// ConfirmCompletionHandler handles POST /api/services/:id/confirm.
func (h *ServiceHandler) ConfirmCompletionHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	svc, err := h.Services.ConfirmCompletion(c.Param("id"), userID)
	if err != nil {
		serviceErrorStatus(c, err, utils.GetLogger(), "Failed to confirm completion")
		return
	}
	c.JSON(http.StatusOK, svc)
}

// CancelServiceHandler handles POST /api/services/:id/cancel.
func (h *ServiceHandler) CancelServiceHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	svc, err := h.Services.Cancel(c.Param("id"), userID)
	if err != nil {
		serviceErrorStatus(c, err, utils.GetLogger(), "Failed to cancel service")
		return
	}
	c.JSON(http.StatusOK, svc)
}

// ServiceParticipantsHandler handles GET /api/services/:id/participants.
func (h *ServiceHandler) ServiceParticipantsHandler(c *gin.Context) {
	participants, err := h.Services.Participants(c.Param("id"))
	if err != nil {
		serviceErrorStatus(c, err, utils.GetLogger(), "Failed to fetch participants")
		return
	}
	c.JSON(http.StatusOK, gin.H{"participants": participants})
}
