package handlers

import (
	"errors"
	"net/http"

	"hive/models"
	user "hive/services/user"
	"hive/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserHandler serves profile and account management.
type UserHandler struct {
	Users user.UserService
}

func userErrorStatus(c *gin.Context, err error, logger *zap.Logger, action string) {
	switch {
	case errors.Is(err, user.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, user.ErrUsernameTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, user.ErrWrongPassword):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error(action, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// GetMeHandler handles GET /api/users/me.
func (h *UserHandler) GetMeHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	usr, err := h.Users.GetByID(userID, true)
	if err != nil {
		userErrorStatus(c, err, utils.GetLogger(), "Failed to fetch profile")
		return
	}
	c.JSON(http.StatusOK, usr)
}

// GetUserByIDHandler handles GET /api/users/:id with privacy filtering.
func (h *UserHandler) GetUserByIDHandler(c *gin.Context) {
	usr, err := h.Users.GetByID(c.Param("id"), false)
	if err != nil {
		userErrorStatus(c, err, utils.GetLogger(), "Failed to fetch user")
		return
	}
	c.JSON(http.StatusOK, usr)
}

// GetUserByUsernameHandler handles GET /api/users/username/:username.
func (h *UserHandler) GetUserByUsernameHandler(c *gin.Context) {
	usr, err := h.Users.GetByUsername(c.Param("username"))
	if err != nil {
		userErrorStatus(c, err, utils.GetLogger(), "Failed to fetch user")
		return
	}
	c.JSON(http.StatusOK, usr)
}

// UpdateProfileHandler handles PUT /api/users/me.
func (h *UserHandler) UpdateProfileHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var payload models.UserUpdate
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	usr, err := h.Users.UpdateProfile(userID, payload)
	if err != nil {
		userErrorStatus(c, err, utils.GetLogger(), "Failed to update profile")
		return
	}
	c.JSON(http.StatusOK, usr)
}

// UpdateSettingsHandler handles PUT /api/users/me/settings.
func (h *UserHandler) UpdateSettingsHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var payload models.UserSettingsUpdate
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	usr, err := h.Users.UpdateSettings(userID, payload)
	if err != nil {
		userErrorStatus(c, err, utils.GetLogger(), "Failed to update settings")
		return
	}
	c.JSON(http.StatusOK, usr)
}

// ChangePasswordHandler handles PUT /api/users/me/password.
func (h *UserHandler) ChangePasswordHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var payload struct {
		CurrentPassword string `json:"current_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if err := h.Users.ChangePassword(userID, payload.CurrentPassword, payload.NewPassword); err != nil {
		userErrorStatus(c, err, utils.GetLogger(), "Failed to change password")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated; please log in again"})
}

// DeactivateHandler handles DELETE /api/users/me.
func (h *UserHandler) DeactivateHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.Users.Deactivate(userID); err != nil {
		userErrorStatus(c, err, utils.GetLogger(), "Failed to deactivate account")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Account deactivated"})
}
