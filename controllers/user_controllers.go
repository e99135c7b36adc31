package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/pc-cafe/services"
	"github.com/yeremiapane/pc-cafe/utils"
)

type UserController struct {
	Users *services.UserService
}

func NewUserController(users *services.UserService) *UserController {
	return &UserController{Users: users}
}

// GetProfile -> caller's profile with seat and remaining time
func (uc *UserController) GetProfile(c *gin.Context) {
	cl, err := claims(c)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	profile, err := uc.Users.Profile(c.Request.Context(), cl.UserID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Profile data retrieved successfully", profile)
}

func (uc *UserController) GetAllUsers(c *gin.Context) {
	users, err := uc.Users.ListUsers(c.Request.Context())
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All users", users)
}

func (uc *UserController) ChangePassword(c *gin.Context) {
	cl, err := claims(c)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	var req struct {
		CurrentPassword string `json:"currentPassword" binding:"required"`
		NewPassword     string `json:"newPassword" binding:"required"`
	}
	if err := bindJSON(c, &req, false); err != nil {
		utils.RespondAppError(c, err)
		return
	}

	if err := uc.Users.ChangePassword(c.Request.Context(), cl.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Password changed", nil)
}

func (uc *UserController) ResetPassword(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	if err := uc.Users.ResetPassword(c.Request.Context(), id); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Password reset to default", nil)
}
