package handlers

import (
	"net/http"
	"time"

	"hive/models"
	service "hive/services/service"
	timebank "hive/services/timebank"
	transaction "hive/services/transaction"
	user "hive/services/user"
	"hive/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler serves the moderation surface.
type AdminHandler struct {
	Engine       timebank.TimeBankService
	Transactions transaction.TransactionService
	Users        user.UserService
	Services     service.ServiceService
}

// ListLedgerEntriesHandler handles GET /api/admin/timebank/entries.
func (h *AdminHandler) ListLedgerEntriesHandler(c *gin.Context) {
	page, limit := pagination(c)
	entries, total, err := h.Engine.History(page, limit)
	if err != nil {
		utils.GetLogger().Error("Failed to list ledger entries", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, listResponse(entries, total, page, limit))
}

// ListLedgerFailuresHandler handles GET /api/admin/timebank/failures.
func (h *AdminHandler) ListLedgerFailuresHandler(c *gin.Context) {
	page, limit := pagination(c)
	failures, total, err := h.Engine.Failures(page, limit)
	if err != nil {
		utils.GetLogger().Error("Failed to list ledger failures", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, listResponse(failures, total, page, limit))
}

// ListAllTransactionsHandler handles GET /api/admin/transactions.
func (h *AdminHandler) ListAllTransactionsHandler(c *gin.Context) {
	page, limit := pagination(c)
	txs, total, err := h.Transactions.ListAll(page, limit)
	if err != nil {
		utils.GetLogger().Error("Failed to list transactions", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, listResponse(txs, total, page, limit))
}

// ListUsersHandler handles GET /api/admin/users.
func (h *AdminHandler) ListUsersHandler(c *gin.Context) {
	users, err := h.Users.ListAll()
	if err != nil {
		utils.GetLogger().Error("Failed to list users", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// UpdateUserRoleHandler handles PUT /api/admin/users/:id/role.
func (h *AdminHandler) UpdateUserRoleHandler(c *gin.Context) {
	var payload struct {
		Role models.UserRole `json:"role" binding:"required,oneof=user moderator admin"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	usr, err := h.Users.UpdateRole(c.Param("id"), payload.Role)
	if err != nil {
		userErrorStatus(c, err, utils.GetLogger(), "Failed to update role")
		return
	}
	c.JSON(http.StatusOK, usr)
}

// TriggerSweepHandler handles POST /api/admin/services/sweep-expired.
func (h *AdminHandler) TriggerSweepHandler(c *gin.Context) {
	expired, err := h.Services.SweepExpired(time.Now())
	if err != nil {
		utils.GetLogger().Error("Expiry sweep failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"expired": expired})
}
