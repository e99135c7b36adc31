package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yeremiapane/pc-cafe/hub"
	"github.com/yeremiapane/pc-cafe/metrics"
	"github.com/yeremiapane/pc-cafe/models"
	"github.com/yeremiapane/pc-cafe/utils"
)

type CreateOrderInput struct {
	MenuID        uint
	Quantity      int
	PaymentMethod models.PaymentMethod
	SeatNumber    uint
}

type OrderService struct {
	db         *gorm.DB
	seats      *SeatService
	events     Broadcaster
	permissive bool
}

func NewOrderService(db *gorm.DB, seats *SeatService, events Broadcaster, permissive bool) *OrderService {
	return &OrderService{db: db, seats: seats, events: broadcasterOrNoop(events), permissive: permissive}
}

// Create places an order for the caller. The caller's bound seat takes
// precedence over in.SeatNumber.
func (s *OrderService) Create(ctx context.Context, caller *utils.CustomClaims, in CreateOrderInput) (*models.Order, error) {
	if in.Quantity <= 0 {
		return nil, utils.BadRequest("quantity must be greater than 0")
	}
	if !in.PaymentMethod.Valid() {
		return nil, utils.BadRequest("paymentMethod must be card or cash")
	}

	var menu models.Menu
	if err := s.db.WithContext(ctx).First(&menu, in.MenuID).Error; err != nil {
		if utils.IsNotFound(err) {
			return nil, utils.BadRequest("menu not found")
		}
		return nil, utils.Internal("failed to load menu", err)
	}

	seatNumber := in.SeatNumber
	bound, err := s.seats.SeatForUser(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	if bound != nil {
		seatNumber = bound.Number
	} else if !s.seats.ValidSeat(seatNumber) {
		return nil, utils.BadRequest("invalid seat number")
	}

	order := models.Order{
		SeatNumber:    seatNumber,
		UserID:        caller.UserID,
		UserName:      caller.Name,
		MenuID:        menu.ID,
		MenuName:      menu.Name,
		Quantity:      in.Quantity,
		Status:        models.OrderStatusPending,
		PaymentMethod: in.PaymentMethod,
	}
	if err := s.db.WithContext(ctx).Create(&order).Error; err != nil {
		return nil, utils.Internal("failed to create order", err)
	}

	metrics.OrdersCreatedTotal.WithLabelValues(string(order.PaymentMethod)).Inc()
	utils.InfoLogger.Printf("Order %d created: seat %d, %dx %s", order.ID, order.SeatNumber, order.Quantity, order.MenuName)
	s.events.Broadcast(hub.EventOrderCreate, order)
	return &order, nil
}

// List returns orders newest first. Admins see all orders with the
// orderer's registerid; everyone else sees their own.
func (s *OrderService) List(ctx context.Context, caller *utils.CustomClaims) ([]models.OrderView, error) {
	var rows []models.OrderView
	if err := s.viewQuery(ctx, caller).Scan(&rows).Error; err != nil {
		return nil, utils.Internal("failed to load orders", err)
	}
	if rows == nil {
		rows = []models.OrderView{}
	}
	return rows, nil
}

// Get returns one order visible to caller.
func (s *OrderService) Get(ctx context.Context, caller *utils.CustomClaims, id uint) (*models.OrderView, error) {
	var rows []models.OrderView
	if err := s.viewQuery(ctx, caller).Where("orders.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, utils.Internal("failed to load order", err)
	}
	if len(rows) == 0 {
		return nil, utils.NotFound("order not found")
	}
	return &rows[0], nil
}

func (s *OrderService) viewQuery(ctx context.Context, caller *utils.CustomClaims) *gorm.DB {
	isAdmin := caller.Role == models.RoleAdmin

	registerCol := "'' AS register_id"
	if isAdmin {
		registerCol = "COALESCE(users.register_id, '') AS register_id"
	}

	q := s.db.WithContext(ctx).
		Table("orders").
		Select(fmt.Sprintf(
			"orders.id, orders.seat_number, orders.user_id, %s, orders.user_name, "+
				"orders.menu_id, orders.menu_name, COALESCE(menus.price, 0) AS price, "+
				"orders.quantity, orders.status, orders.payment_method, orders.created_at",
			registerCol,
		)).
		Joins("LEFT JOIN menus ON menus.id = orders.menu_id")

	if isAdmin {
		q = q.Joins("LEFT JOIN users ON users.id = orders.user_id")
	} else {
		q = q.Where("orders.user_id = ?", caller.UserID)
	}
	return q.Order("orders.created_at DESC").Order("orders.id DESC")
}

// UpdateStatus moves an order to status, enforcing the transition table
// unless the service was built permissive.
func (s *OrderService) UpdateStatus(ctx context.Context, id uint, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, utils.BadRequest("status must be pending, processing, completed or cancelled")
	}

	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(lockingUpdate()).First(&order, id).Error; err != nil {
			if utils.IsNotFound(err) {
				return utils.NotFound("order not found")
			}
			return err
		}
		if order.Status == status {
			return nil
		}
		if !s.permissive && !order.Status.CanTransitionTo(status) {
			return utils.Conflict(fmt.Sprintf("cannot change order status from %s to %s", order.Status, status))
		}
		if err := tx.Model(&order).Update("status", status).Error; err != nil {
			return err
		}
		order.Status = status
		return nil
	})
	if err != nil {
		return nil, wrapErr("failed to update order", err)
	}

	s.events.Broadcast(hub.EventOrderUpdate, order)
	return &order, nil
}
