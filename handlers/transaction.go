package handlers

import (
	"errors"
	"net/http"

	"hive/models"
	transaction "hive/services/transaction"
	"hive/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TransactionHandler serves bilateral exchange records.
type TransactionHandler struct {
	Transactions transaction.TransactionService
}

func transactionErrorStatus(c *gin.Context, err error, logger *zap.Logger, action string) {
	var transitionErr *transaction.InvalidTransitionError
	switch {
	case errors.Is(err, transaction.ErrNotFound),
		errors.Is(err, transaction.ErrServiceNotFound),
		errors.Is(err, transaction.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, transaction.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, transaction.ErrNoApprovedRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Error(action, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// CreateTransactionHandler handles POST /api/transactions.
func (h *TransactionHandler) CreateTransactionHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var payload models.TransactionCreate
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	tx, err := h.Transactions.Create(userID, payload)
	if err != nil {
		transactionErrorStatus(c, err, utils.GetLogger(), "Failed to create transaction")
		return
	}
	c.JSON(http.StatusCreated, tx)
}

// GetTransactionHandler handles GET /api/transactions/:id.
func (h *TransactionHandler) GetTransactionHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	tx, err := h.Transactions.GetByID(c.Param("id"), userID)
	if err != nil {
		transactionErrorStatus(c, err, utils.GetLogger(), "Failed to fetch transaction")
		return
	}
	c.JSON(http.StatusOK, tx)
}

// ListMyTransactionsHandler handles GET /api/transactions.
func (h *TransactionHandler) ListMyTransactionsHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	page, limit := pagination(c)
	txs, total, err := h.Transactions.ListByUser(userID, page, limit)
	if err != nil {
		transactionErrorStatus(c, err, utils.GetLogger(), "Failed to list transactions")
		return
	}
	c.JSON(http.StatusOK, listResponse(txs, total, page, limit))
}

// ListServiceTransactionsHandler handles GET /api/services/:id/transactions.
func (h *TransactionHandler) ListServiceTransactionsHandler(c *gin.Context) {
	page, limit := pagination(c)
	txs, total, err := h.Transactions.ListByService(c.Param("id"), page, limit)
	if err != nil {
		transactionErrorStatus(c, err, utils.GetLogger(), "Failed to list service transactions")
		return
	}
	c.JSON(http.StatusOK, listResponse(txs, total, page, limit))
}

// UpdateTransactionHandler handles PUT /api/transactions/:id.
func (h *TransactionHandler) UpdateTransactionHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var payload models.TransactionUpdate
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	tx, err := h.Transactions.UpdateStatus(c.Param("id"), userID, payload)
	if err != nil {
		transactionErrorStatus(c, err, utils.GetLogger(), "Failed to update transaction")
		return
	}
	c.JSON(http.StatusOK, tx)
}

// ConfirmTransactionHandler handles POST /api/transactions/:id/confirm.
func (h *TransactionHandler) ConfirmTransactionHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	tx, err := h.Transactions.ConfirmCompletion(c.Param("id"), userID)
	if err != nil {
		transactionErrorStatus(c, err, utils.GetLogger(), "Failed to confirm transaction")
		return
	}
	c.JSON(http.StatusOK, tx)
}
