package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/yeremiapane/pc-cafe/models"
	"github.com/yeremiapane/pc-cafe/utils"
)

const topMenuLimit = 5

type SeatStats struct {
	Total    int64 `json:"total"`
	Occupied int64 `json:"occupied"`
}

type OrderStats struct {
	Total      int64 `json:"total"`
	Today      int64 `json:"today"`
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Completed  int64 `json:"completed"`
	Cancelled  int64 `json:"cancelled"`
}

type RevenueStats struct {
	Total int64 `json:"total"`
	Today int64 `json:"today"`
}

type TopMenu struct {
	MenuID   uint   `json:"menuId"`
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
}

// DashboardStats is the admin console's summary card set.
type DashboardStats struct {
	TotalUsers int64        `json:"totalUsers"`
	Seats      SeatStats    `json:"seats"`
	Orders     OrderStats   `json:"orders"`
	Revenue    RevenueStats `json:"revenue"`
	TopMenus   []TopMenu    `json:"topMenus"`
}

type StatsService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{db: db, now: time.Now}
}

func (s *StatsService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	db := s.db.WithContext(ctx)
	now := s.now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var stats DashboardStats

	if err := db.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, utils.Internal("failed to count users", err)
	}
	if err := db.Model(&models.Seat{}).Count(&stats.Seats.Total).Error; err != nil {
		return nil, utils.Internal("failed to count seats", err)
	}
	if err := db.Model(&models.Seat{}).Where("user_id IS NOT NULL").Count(&stats.Seats.Occupied).Error; err != nil {
		return nil, utils.Internal("failed to count seats", err)
	}

	if err := db.Model(&models.Order{}).Count(&stats.Orders.Total).Error; err != nil {
		return nil, utils.Internal("failed to count orders", err)
	}
	if err := db.Model(&models.Order{}).Where("created_at >= ?", startOfDay).Count(&stats.Orders.Today).Error; err != nil {
		return nil, utils.Internal("failed to count orders", err)
	}

	var byStatus []struct {
		Status models.OrderStatus
		Count  int64
	}
	if err := db.Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&byStatus).Error; err != nil {
		return nil, utils.Internal("failed to count orders", err)
	}
	for _, row := range byStatus {
		switch row.Status {
		case models.OrderStatusPending:
			stats.Orders.Pending = row.Count
		case models.OrderStatusProcessing:
			stats.Orders.Processing = row.Count
		case models.OrderStatusCompleted:
			stats.Orders.Completed = row.Count
		case models.OrderStatusCancelled:
			stats.Orders.Cancelled = row.Count
		}
	}

	var err error
	if stats.Revenue.Total, err = s.revenue(db, time.Time{}); err != nil {
		return nil, err
	}
	if stats.Revenue.Today, err = s.revenue(db, startOfDay); err != nil {
		return nil, err
	}

	stats.TopMenus = []TopMenu{}
	if err := db.Model(&models.Order{}).
		Select("menu_id, MAX(menu_name) AS name, SUM(quantity) AS quantity").
		Where("status <> ?", models.OrderStatusCancelled).
		Group("menu_id").
		Order("SUM(quantity) DESC").Order("menu_id").
		Limit(topMenuLimit).
		Scan(&stats.TopMenus).Error; err != nil {
		return nil, utils.Internal("failed to rank menus", err)
	}

	return &stats, nil
}

// revenue sums completed orders at the current menu price, optionally only
// those created at or after since.
func (s *StatsService) revenue(db *gorm.DB, since time.Time) (int64, error) {
	q := db.Table("orders").
		Joins("JOIN menus ON menus.id = orders.menu_id").
		Where("orders.status = ?", models.OrderStatusCompleted)
	if !since.IsZero() {
		q = q.Where("orders.created_at >= ?", since)
	}

	var total int64
	if err := q.Select("COALESCE(SUM(orders.quantity * menus.price), 0)").Row().Scan(&total); err != nil {
		return 0, utils.Internal("failed to sum revenue", err)
	}
	return total, nil
}
