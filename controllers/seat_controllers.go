package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/pc-cafe/models"
	"github.com/yeremiapane/pc-cafe/services"
	"github.com/yeremiapane/pc-cafe/utils"
)

type SeatController struct {
	Seats *services.SeatService
}

func NewSeatController(seats *services.SeatService) *SeatController {
	return &SeatController{Seats: seats}
}

// GetSeats -> [{number, occupied}]
func (sc *SeatController) GetSeats(c *gin.Context) {
	seats, err := sc.Seats.ListSeats(c.Request.Context())
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of seats", seats)
}

// GetSeatDetails -> seats with the bound user's identity and remaining time
func (sc *SeatController) GetSeatDetails(c *gin.Context) {
	seats, err := sc.Seats.ListSeatDetails(c.Request.Context())
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of seats", seats)
}

func (sc *SeatController) ForceLogout(c *gin.Context) {
	number, err := paramID(c, "seatNumber")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	previous, err := sc.Seats.ForceLogout(c.Request.Context(), number)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Seat released", gin.H{
		"seatNumber": number,
		"userId":     previous.UserID,
	})
}

func (sc *SeatController) ChargeTime(c *gin.Context) {
	number, err := paramID(c, "seatNumber")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	var req struct {
		Hours *int `json:"hours" binding:"required,gt=0"`
	}
	if err := bindJSON(c, &req, false); err != nil {
		utils.RespondAppError(c, err)
		return
	}

	user, err := sc.Seats.ChargeTime(c.Request.Context(), number, *req.Hours)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Time charged", timeResponse(user, &number))
}

func (sc *SeatController) RemoveTime(c *gin.Context) {
	number, err := paramID(c, "seatNumber")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	var req struct {
		Minutes *int `json:"minutes" binding:"required,gt=0"`
	}
	if err := bindJSON(c, &req, false); err != nil {
		utils.RespondAppError(c, err)
		return
	}

	user, err := sc.Seats.RemoveTime(c.Request.Context(), number, *req.Minutes)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Time removed", timeResponse(user, &number))
}

// PurchaseTime adds one of the fixed hour packages to the caller.
func (sc *SeatController) PurchaseTime(c *gin.Context) {
	cl, err := claims(c)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	var req struct {
		Hours         *int   `json:"hours" binding:"required"`
		PaymentMethod string `json:"paymentMethod" binding:"required,paymentmethod"`
	}
	if err := bindJSON(c, &req, false); err != nil {
		utils.RespondAppError(c, err)
		return
	}

	user, err := sc.Seats.PurchaseTime(c.Request.Context(), cl.UserID, *req.Hours, models.PaymentMethod(req.PaymentMethod))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Time purchased", timeResponse(user, nil))
}

func timeResponse(user *models.User, seat *uint) gin.H {
	data := gin.H{
		"userId":        user.ID,
		"registerid":    user.RegisterID,
		"remainingTime": user.RemainingTime,
	}
	if seat != nil {
		data["seatNumber"] = *seat
	}
	return data
}
