package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/yeremiapane/pc-cafe/models"
	"github.com/yeremiapane/pc-cafe/utils"
)

// Profile is the public view of a user.
type Profile struct {
	ID            uint    `json:"id"`
	RegisterID    string  `json:"registerid"`
	Name          string  `json:"name"`
	Address       *string `json:"address"`
	Role          string  `json:"role"`
	RemainingTime int64   `json:"remainingTime"`
	SeatNumber    *uint   `json:"seatNumber"`
}

func NewProfile(user *models.User, seat *models.Seat) Profile {
	p := Profile{
		ID:            user.ID,
		RegisterID:    user.RegisterID,
		Name:          user.Name,
		Address:       user.Address,
		Role:          user.Role,
		RemainingTime: user.RemainingTime,
	}
	if seat != nil {
		n := seat.Number
		p.SeatNumber = &n
	}
	return p
}

type UserService struct {
	db            *gorm.DB
	seats         *SeatService
	bcryptCost    int
	resetPassword string
}

func NewUserService(db *gorm.DB, seats *SeatService, bcryptCost int, resetPassword string) *UserService {
	return &UserService{db: db, seats: seats, bcryptCost: bcryptCost, resetPassword: resetPassword}
}

func (s *UserService) Profile(ctx context.Context, userID uint) (*Profile, error) {
	user, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	seat, err := s.seats.SeatForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	p := NewProfile(user, seat)
	return &p, nil
}

// ListUsers returns every user, newest first.
func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&users).Error; err != nil {
		return nil, utils.Internal("failed to load users", err)
	}
	return users, nil
}

func (s *UserService) ChangePassword(ctx context.Context, userID uint, current, next string) error {
	user, err := s.find(ctx, userID)
	if err != nil {
		return err
	}
	if !utils.CheckPassword(user.Password, current) {
		return utils.BadRequest("current password is incorrect")
	}
	return s.setPassword(ctx, userID, next)
}

// ResetPassword sets the configured default password on userID.
func (s *UserService) ResetPassword(ctx context.Context, userID uint) error {
	if _, err := s.find(ctx, userID); err != nil {
		return err
	}
	if err := s.setPassword(ctx, userID, s.resetPassword); err != nil {
		return err
	}
	utils.InfoLogger.Printf("Password reset for user %d", userID)
	return nil
}

func (s *UserService) setPassword(ctx context.Context, userID uint, password string) error {
	if err := utils.ValidatePassword(password); err != nil {
		return err
	}
	hash, err := utils.HashPassword(password, s.bcryptCost)
	if err != nil {
		return utils.Internal("failed to hash password", err)
	}
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("password", hash).Error; err != nil {
		return utils.Internal("failed to update password", err)
	}
	return nil
}

func (s *UserService) find(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if utils.IsNotFound(err) {
			return nil, utils.NotFound("user not found")
		}
		return nil, utils.Internal("failed to load user", err)
	}
	return &user, nil
}
