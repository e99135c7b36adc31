package models

import "time"

type Menu struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	Price     int64     `gorm:"not null" json:"price"`
	Category  string    `gorm:"type:varchar(50);not null;default:''" json:"category"`
	ImagePath *string   `gorm:"type:varchar(255)" json:"imagePath"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
}
