package models

import (
	"time"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// orderTransitions lists the forward moves allowed from each status.
// completed and cancelled are terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCompleted, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusCompleted, OrderStatusCancelled},
	OrderStatusCompleted:  nil,
	OrderStatusCancelled:  nil,
}

func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// CanTransitionTo reports whether next is reachable from s. Staying on the
// same status is always allowed.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s == next {
		return next.Valid()
	}
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type PaymentMethod string

const (
	PaymentCard PaymentMethod = "card"
	PaymentCash PaymentMethod = "cash"
)

func (p PaymentMethod) Valid() bool {
	return p == PaymentCard || p == PaymentCash
}

// Order keeps UserName and MenuName as snapshots taken at creation time.
type Order struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	SeatNumber    uint          `gorm:"not null" json:"seatNumber"`
	UserID        uint          `gorm:"not null;index" json:"userId"`
	User          *User         `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	UserName      string        `gorm:"type:varchar(50);not null" json:"userName"`
	MenuID        uint          `gorm:"not null;index" json:"menuId"`
	Menu          *Menu         `gorm:"foreignKey:MenuID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	MenuName      string        `gorm:"type:varchar(100);not null" json:"menuName"`
	Quantity      int           `gorm:"not null" json:"quantity"`
	Status        OrderStatus   `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	PaymentMethod PaymentMethod `gorm:"type:varchar(10);not null" json:"paymentMethod"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"-"`
}

// OrderView is the joined row returned by order listings.
type OrderView struct {
	ID            uint          `json:"id"`
	SeatNumber    uint          `json:"seatNumber"`
	UserID        uint          `json:"userId"`
	RegisterID    string        `json:"registerid,omitempty"`
	UserName      string        `json:"userName"`
	MenuID        uint          `json:"menuId"`
	MenuName      string        `json:"menuName"`
	Price         int64         `json:"price"`
	Quantity      int           `json:"quantity"`
	Status        OrderStatus   `json:"status"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	CreatedAt     time.Time     `json:"createdAt"`
}
