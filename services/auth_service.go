package services

import (
	"context"
	"crypto/subtle"
	"strings"

	"gorm.io/gorm"

	"github.com/yeremiapane/pc-cafe/models"
	"github.com/yeremiapane/pc-cafe/utils"
)

type AuthService struct {
	db         *gorm.DB
	tokens     *utils.TokenManager
	seats      *SeatService
	adminCode  string
	bcryptCost int
	// compared against on unknown ids so both failure paths cost a bcrypt check
	dummyHash  string
}

func NewAuthService(db *gorm.DB, tokens *utils.TokenManager, seats *SeatService, adminCode string, bcryptCost int) *AuthService {
	dummy, _ := utils.HashPassword("pc-cafe-unknown-user", bcryptCost)
	return &AuthService{
		db:         db,
		tokens:     tokens,
		seats:      seats,
		adminCode:  adminCode,
		bcryptCost: bcryptCost,
		dummyHash:  dummy,
	}
}

type RegisterInput struct {
	RegisterID string
	Password   string
	Name       string
	Address    *string
	Role       string
	AdminCode  string
}

type LoginResult struct {
	Token string  `json:"token"`
	User  Profile `json:"user"`
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.RegisterID = strings.TrimSpace(in.RegisterID)
	in.Name = strings.TrimSpace(in.Name)
	if in.RegisterID == "" || in.Password == "" || in.Name == "" {
		return nil, utils.BadRequest("registerid, password and name are required")
	}

	if err := utils.ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	role := in.Role
	if role == "" {
		role = models.RoleUser
	}
	if !models.ValidRole(role) {
		return nil, utils.BadRequest("role must be user or admin")
	}
	if role == models.RoleAdmin &&
		subtle.ConstantTimeCompare([]byte(in.AdminCode), []byte(s.adminCode)) != 1 {
		return nil, utils.BadRequest("invalid admin code")
	}

	exists, err := s.RegisterIDExists(ctx, in.RegisterID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, utils.Conflict("registerid already in use")
	}

	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, utils.Internal("failed to hash password", err)
	}

	user := models.User{
		RegisterID: in.RegisterID,
		Password:   hash,
		Name:       in.Name,
		Address:    in.Address,
		Role:       role,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if utils.IsDuplicateKey(err) {
			return nil, utils.Conflict("registerid already in use")
		}
		return nil, utils.Internal("failed to create user", err)
	}

	utils.InfoLogger.Printf("Registered %s (%s)", user.RegisterID, user.Role)
	return &user, nil
}

func (s *AuthService) RegisterIDExists(ctx context.Context, registerID string) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("register_id = ?", registerID).
		Count(&n).Error; err != nil {
		return false, utils.Internal("failed to check registerid", err)
	}
	return n > 0, nil
}

// Login verifies credentials, issues a token and, for non-admin users,
// binds seatNumber when given.
func (s *AuthService) Login(ctx context.Context, registerID, password string, seatNumber *uint) (*LoginResult, error) {
	invalid := utils.Unauthenticated("invalid credentials")

	var user models.User
	err := s.db.WithContext(ctx).Where("register_id = ?", registerID).First(&user).Error
	if err != nil {
		if utils.IsNotFound(err) {
			utils.CheckPassword(s.dummyHash, password)
			return nil, invalid
		}
		return nil, utils.Internal("failed to load user", err)
	}
	if !utils.CheckPassword(user.Password, password) {
		return nil, invalid
	}

	var seat *models.Seat
	if seatNumber != nil && !user.IsAdmin() {
		seat, err = s.seats.BindSeat(ctx, &user, *seatNumber)
		if err != nil {
			return nil, err
		}
	} else {
		seat, err = s.seats.SeatForUser(ctx, user.ID)
		if err != nil {
			return nil, err
		}
	}

	token, err := s.tokens.GenerateToken(user.ID, user.RegisterID, user.Name, user.Role)
	if err != nil {
		return nil, utils.Internal("failed to issue token", err)
	}

	return &LoginResult{Token: token, User: NewProfile(&user, seat)}, nil
}
