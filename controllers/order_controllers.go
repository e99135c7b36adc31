package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/pc-cafe/models"
	"github.com/yeremiapane/pc-cafe/services"
	"github.com/yeremiapane/pc-cafe/utils"
)

type OrderController struct {
	Orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{Orders: orders}
}

func (oc *OrderController) CreateOrder(c *gin.Context) {
	cl, err := claims(c)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	var req struct {
		MenuID        *uint  `json:"menuId" binding:"required"`
		Quantity      *int   `json:"quantity" binding:"required,gt=0"`
		PaymentMethod string `json:"paymentMethod" binding:"required,paymentmethod"`
		SeatNumber    *uint  `json:"seatNumber" binding:"required"`
	}
	if err := bindJSON(c, &req, false); err != nil {
		utils.RespondAppError(c, err)
		return
	}

	order, err := oc.Orders.Create(c.Request.Context(), cl, services.CreateOrderInput{
		MenuID:        *req.MenuID,
		Quantity:      *req.Quantity,
		PaymentMethod: models.PaymentMethod(req.PaymentMethod),
		SeatNumber:    *req.SeatNumber,
	})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Order created", gin.H{
		"id":         order.ID,
		"status":     order.Status,
		"seatNumber": order.SeatNumber,
	})
}

// GetOrders -> all orders for admins, own orders otherwise
func (oc *OrderController) GetOrders(c *gin.Context) {
	cl, err := claims(c)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	orders, err := oc.Orders.List(c.Request.Context(), cl)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

func (oc *OrderController) GetOrder(c *gin.Context) {
	cl, err := claims(c)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	order, err := oc.Orders.Get(c.Request.Context(), cl, id)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	var req struct {
		Status string `json:"status" binding:"required,orderstatus"`
	}
	if err := bindJSON(c, &req, false); err != nil {
		utils.RespondAppError(c, err)
		return
	}

	order, err := oc.Orders.UpdateStatus(c.Request.Context(), id, models.OrderStatus(req.Status))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order status updated", gin.H{
		"id":     order.ID,
		"status": order.Status,
	})
}
