package handlers

import (
	"errors"
	"net/http"

	timebank "hive/services/timebank"
	"hive/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TimeBankHandler serves the balance and history surface.
type TimeBankHandler struct {
	Engine timebank.TimeBankService
}

// BalanceHandler handles GET /api/timebank/balance.
func (h *TimeBankHandler) BalanceHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	statement, err := h.Engine.StatementFor(userID)
	if err != nil {
		var ledgerErr *timebank.LedgerError
		if errors.As(err, &ledgerErr) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		utils.GetLogger().Error("Failed to build statement", zap.String("userID", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, statement)
}
