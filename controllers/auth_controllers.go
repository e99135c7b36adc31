package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/pc-cafe/services"
	"github.com/yeremiapane/pc-cafe/utils"
)

type AuthController struct {
	Auth  *services.AuthService
	Seats *services.SeatService
}

func NewAuthController(auth *services.AuthService, seats *services.SeatService) *AuthController {
	return &AuthController{Auth: auth, Seats: seats}
}

// CheckRegisterID -> {exists}
func (ac *AuthController) CheckRegisterID(c *gin.Context) {
	exists, err := ac.Auth.RegisterIDExists(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "ok", gin.H{"exists": exists})
}

func (ac *AuthController) Register(c *gin.Context) {
	var req struct {
		RegisterID string  `json:"registerid" binding:"required"`
		Password   string  `json:"password" binding:"required"`
		Name       string  `json:"name" binding:"required"`
		Address    *string `json:"address"`
		Role       string  `json:"role"`
		AdminCode  string  `json:"adminCode"`
	}
	if err := bindJSON(c, &req, false); err != nil {
		utils.RespondAppError(c, err)
		return
	}

	user, err := ac.Auth.Register(c.Request.Context(), services.RegisterInput{
		RegisterID: req.RegisterID,
		Password:   req.Password,
		Name:       req.Name,
		Address:    req.Address,
		Role:       req.Role,
		AdminCode:  req.AdminCode,
	})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "User registered", gin.H{
		"id":         user.ID,
		"registerid": user.RegisterID,
		"role":       user.Role,
	})
}

func (ac *AuthController) Login(c *gin.Context) {
	var req struct {
		RegisterID string `json:"registerid" binding:"required"`
		Password   string `json:"password" binding:"required"`
		SeatNumber *uint  `json:"seatNumber"`
	}
	if err := bindJSON(c, &req, false); err != nil {
		utils.RespondAppError(c, err)
		return
	}

	result, err := ac.Auth.Login(c.Request.Context(), req.RegisterID, req.Password, req.SeatNumber)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Login successful", result)
}

// Logout releases the caller's seat and stores the reported remaining time.
func (ac *AuthController) Logout(c *gin.Context) {
	cl, err := claims(c)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	var req struct {
		RemainingTime *int64 `json:"remainingTime"`
	}
	if err := bindJSON(c, &req, true); err != nil {
		utils.RespondAppError(c, err)
		return
	}

	seat, err := ac.Seats.Logout(c.Request.Context(), cl.UserID, req.RemainingTime)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Logged out", gin.H{"releasedSeat": seat})
}
