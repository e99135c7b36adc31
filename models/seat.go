package models

import "time"

// Seat is a numbered station. RegisterID, UserID and UserName are written
// and cleared together; a seat is either fully bound or fully empty.
type Seat struct {
	Number     uint      `gorm:"primaryKey;autoIncrement:false" json:"number"`
	RegisterID *string   `gorm:"type:varchar(50)" json:"registerid"`
	UserID     *uint     `gorm:"index" json:"userId"`
	UserName   *string   `gorm:"type:varchar(50)" json:"userName"`
	UpdatedAt  time.Time `json:"-"`
}

func (s Seat) Occupied() bool {
	return s.UserID != nil
}

// Bind sets the occupant triple on the in-memory row.
func (s *Seat) Bind(user *User) {
	registerID, userID, name := user.RegisterID, user.ID, user.Name
	s.RegisterID = &registerID
	s.UserID = &userID
	s.UserName = &name
}

// Release clears the occupant triple on the in-memory row.
func (s *Seat) Release() {
	s.RegisterID = nil
	s.UserID = nil
	s.UserName = nil
}

// BindingColumns is the column set written by a bind.
func BindingColumns(user *User) map[string]interface{} {
	return map[string]interface{}{
		"register_id": user.RegisterID,
		"user_id":     user.ID,
		"user_name":   user.Name,
	}
}

// ReleaseColumns is the column set written by a release.
func ReleaseColumns() map[string]interface{} {
	return map[string]interface{}{
		"register_id": nil,
		"user_id":     nil,
		"user_name":   nil,
	}
}
