package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	RegisterID    string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"registerid"`
	Password      string    `gorm:"type:varchar(255);not null" json:"-"`
	Name          string    `gorm:"type:varchar(50);not null" json:"name"`
	Address       *string   `gorm:"type:varchar(255)" json:"address"`
	Role          string    `gorm:"type:varchar(10);not null;default:'user'" json:"role"`
	RemainingTime int64     `gorm:"not null;default:0" json:"remainingTime"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"-"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}
