package services

import (
	"context"
	"fmt"
	"math"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yeremiapane/pc-cafe/hub"
	"github.com/yeremiapane/pc-cafe/metrics"
	"github.com/yeremiapane/pc-cafe/models"
	"github.com/yeremiapane/pc-cafe/utils"
)

// maxChargeHours keeps hours*3600 inside int64.
const maxChargeHours int64 = math.MaxInt64 / 3600

// SeatService owns the seat <-> user binding and every write to a user's
// remaining time except the metering tick.
type SeatService struct {
	db        *gorm.DB
	seatCount int
	events    Broadcaster
}

func NewSeatService(db *gorm.DB, seatCount int, events Broadcaster) *SeatService {
	return &SeatService{db: db, seatCount: seatCount, events: broadcasterOrNoop(events)}
}

// SeatSummary is the public view of a seat.
type SeatSummary struct {
	Number   uint `json:"number"`
	Occupied bool `json:"occupied"`
}

// SeatDetail is the admin view of a seat.
type SeatDetail struct {
	models.Seat
	RemainingTime *int64 `json:"remainingTime"`
}

type TimeUpdate struct {
	UserID        uint   `json:"userId"`
	SeatNumber    *uint  `json:"seatNumber,omitempty"`
	RemainingTime int64  `json:"remainingTime"`
	Reason        string `json:"reason"`
}

func (s *SeatService) ValidSeat(number uint) bool {
	return number >= 1 && int(number) <= s.seatCount
}

func (s *SeatService) ListSeats(ctx context.Context) ([]SeatSummary, error) {
	var seats []models.Seat
	if err := s.db.WithContext(ctx).Order("number").Find(&seats).Error; err != nil {
		return nil, utils.Internal("failed to load seats", err)
	}
	out := make([]SeatSummary, 0, len(seats))
	for _, seat := range seats {
		out = append(out, SeatSummary{Number: seat.Number, Occupied: seat.Occupied()})
	}
	return out, nil
}

func (s *SeatService) ListSeatDetails(ctx context.Context) ([]SeatDetail, error) {
	var rows []SeatDetail
	err := s.db.WithContext(ctx).
		Table("seats").
		Select("seats.number, seats.register_id, seats.user_id, seats.user_name, users.remaining_time").
		Joins("LEFT JOIN users ON users.id = seats.user_id").
		Order("seats.number").
		Scan(&rows).Error
	if err != nil {
		return nil, utils.Internal("failed to load seats", err)
	}
	return rows, nil
}

// SeatForUser returns the seat bound to userID, or nil when the user is not seated.
func (s *SeatService) SeatForUser(ctx context.Context, userID uint) (*models.Seat, error) {
	var seats []models.Seat
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Limit(1).Find(&seats).Error; err != nil {
		return nil, utils.Internal("failed to load seat", err)
	}
	if len(seats) == 0 {
		return nil, nil
	}
	return &seats[0], nil
}

// BindSeat seats user at number. Any other seat the user holds is released
// in the same transaction; a seat held by someone else is taken over.
func (s *SeatService) BindSeat(ctx context.Context, user *models.User, number uint) (*models.Seat, error) {
	if !s.ValidSeat(number) {
		return nil, utils.BadRequest("invalid seat number")
	}

	var seat models.Seat
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockSeat(tx, number, &seat); err != nil {
			return err
		}
		if err := tx.Model(&models.Seat{}).
			Where("user_id = ? AND number <> ?", user.ID, number).
			Updates(models.ReleaseColumns()).Error; err != nil {
			return err
		}
		if err := tx.Model(&seat).Updates(models.BindingColumns(user)).Error; err != nil {
			return err
		}
		seat.Bind(user)
		return nil
	})
	if err != nil {
		return nil, wrapErr("failed to bind seat", err)
	}

	utils.InfoLogger.Printf("Seat %d bound to %s", seat.Number, user.RegisterID)
	s.events.Broadcast(hub.EventSeatUpdate, seat)
	s.refreshOccupancy(ctx)
	return &seat, nil
}

// Logout releases the caller's seat and, when remainingTime is given,
// stores it on the user row (clamped at 0). It returns the released seat
// number, if any.
func (s *SeatService) Logout(ctx context.Context, userID uint, remainingTime *int64) (*uint, error) {
	var released *uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seats []models.Seat
		if err := tx.Where("user_id = ?", userID).Find(&seats).Error; err != nil {
			return err
		}
		if len(seats) > 0 {
			if err := tx.Model(&models.Seat{}).
				Where("user_id = ?", userID).
				Updates(models.ReleaseColumns()).Error; err != nil {
				return err
			}
			n := seats[0].Number
			released = &n
		}
		if remainingTime != nil {
			value := *remainingTime
			if value < 0 {
				value = 0
			}
			if err := tx.Model(&models.User{}).
				Where("id = ?", userID).
				Update("remaining_time", value).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, wrapErr("failed to log out", err)
	}

	if released != nil {
		s.events.Broadcast(hub.EventSeatUpdate, models.Seat{Number: *released})
		s.refreshOccupancy(ctx)
	}
	return released, nil
}

// ForceLogout releases a seat on an admin's behalf.
func (s *SeatService) ForceLogout(ctx context.Context, number uint) (*models.Seat, error) {
	if !s.ValidSeat(number) {
		return nil, utils.NotFound("seat not found")
	}

	var seat models.Seat
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockSeat(tx, number, &seat); err != nil {
			return err
		}
		if !seat.Occupied() {
			return utils.BadRequest("seat is not occupied")
		}
		return tx.Model(&models.Seat{}).
			Where("number = ?", number).
			Updates(models.ReleaseColumns()).Error
	})
	if err != nil {
		return nil, wrapErr("failed to release seat", err)
	}

	previous := seat
	seat.Release()
	utils.InfoLogger.Printf("Seat %d force-released (was %s)", number, derefString(previous.RegisterID))
	s.events.Broadcast(hub.EventSeatUpdate, seat)
	s.refreshOccupancy(ctx)
	return &previous, nil
}

// ChargeTime adds hours to the user seated at number.
func (s *SeatService) ChargeTime(ctx context.Context, number uint, hours int) (*models.User, error) {
	if hours <= 0 {
		return nil, utils.BadRequest("hours must be a positive number")
	}
	if int64(hours) > maxChargeHours {
		return nil, utils.BadRequest(fmt.Sprintf("hours must be at most %d", maxChargeHours))
	}
	delta := int64(hours) * 3600
	user, err := s.adjustSeatTime(ctx, number, saturatingAdd(delta), "admin_charge")
	if err == nil {
		metrics.TimePurchasedSeconds.WithLabelValues("admin_charge").Add(float64(delta))
	}
	return user, err
}

// RemoveTime subtracts minutes from the user seated at number, never below 0.
func (s *SeatService) RemoveTime(ctx context.Context, number uint, minutes int) (*models.User, error) {
	if minutes <= 0 {
		return nil, utils.BadRequest("minutes must be a positive number")
	}
	delta := int64(math.MaxInt64)
	if int64(minutes) <= math.MaxInt64/60 {
		delta = int64(minutes) * 60
	}
	return s.adjustSeatTime(ctx, number, floorSubtract(delta), "admin_remove")
}

func (s *SeatService) adjustSeatTime(ctx context.Context, number uint, expr clause.Expr, reason string) (*models.User, error) {
	if !s.ValidSeat(number) {
		return nil, utils.NotFound("seat not found")
	}

	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seat models.Seat
		if err := lockSeat(tx, number, &seat); err != nil {
			return err
		}
		if !seat.Occupied() {
			return utils.BadRequest("no user is seated at this seat")
		}
		if err := tx.Model(&models.User{}).
			Where("id = ?", *seat.UserID).
			Update("remaining_time", expr).Error; err != nil {
			return err
		}
		if err := tx.First(&user, *seat.UserID).Error; err != nil {
			if utils.IsNotFound(err) {
				return utils.NotFound("user not found")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, wrapErr("failed to adjust time", err)
	}

	s.events.Broadcast(hub.EventTimeUpdate, TimeUpdate{
		UserID:        user.ID,
		SeatNumber:    &number,
		RemainingTime: user.RemainingTime,
		Reason:        reason,
	})
	return &user, nil
}

// PurchaseTime adds one of the fixed packages to the caller's own time.
func (s *SeatService) PurchaseTime(ctx context.Context, userID uint, hours int, method models.PaymentMethod) (*models.User, error) {
	seconds, ok := models.HoursToSeconds(hours)
	if !ok {
		return nil, utils.BadRequest("unsupported time package")
	}
	if !method.Valid() {
		return nil, utils.BadRequest("paymentMethod must be card or cash")
	}

	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("id = ?", userID).
			Update("remaining_time", saturatingAdd(seconds))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return utils.NotFound("user not found")
		}
		return tx.First(&user, userID).Error
	})
	if err != nil {
		return nil, wrapErr("failed to purchase time", err)
	}

	metrics.TimePurchasedSeconds.WithLabelValues("purchase_" + string(method)).Add(float64(seconds))
	utils.InfoLogger.Printf("User %s purchased %dh (%s)", user.RegisterID, hours, method)
	s.events.Broadcast(hub.EventTimeUpdate, TimeUpdate{
		UserID:        user.ID,
		RemainingTime: user.RemainingTime,
		Reason:        "purchase",
	})
	return &user, nil
}

func (s *SeatService) refreshOccupancy(ctx context.Context) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Seat{}).Where("user_id IS NOT NULL").Count(&n).Error; err != nil {
		return
	}
	metrics.SeatsOccupied.Set(float64(n))
}

// lockSeat loads a seat row for update inside tx.
func lockSeat(tx *gorm.DB, number uint, seat *models.Seat) error {
	err := tx.Clauses(lockingUpdate()).First(seat, "number = ?", number).Error
	if utils.IsNotFound(err) {
		return utils.NotFound("seat not found")
	}
	return err
}

// lockingUpdate is SELECT ... FOR UPDATE; sqlite ignores it.
func lockingUpdate() clause.Locking {
	return clause.Locking{Strength: "UPDATE"}
}

// saturatingAdd is remaining_time + delta, capped at MaxInt64.
func saturatingAdd(delta int64) clause.Expr {
	return gorm.Expr("CASE WHEN remaining_time > ? THEN ? ELSE remaining_time + ? END",
		int64(math.MaxInt64)-delta, int64(math.MaxInt64), delta)
}

// floorSubtract is remaining_time - delta, never below zero.
func floorSubtract(delta int64) clause.Expr {
	return gorm.Expr("CASE WHEN remaining_time > ? THEN remaining_time - ? ELSE 0 END", delta, delta)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
