package entities

import "time"

// User models a registered telegram user.
type User struct {
	ID         uint      `gorm:"primaryKey"`
	TelegramID int64     `gorm:"type:bigint;uniqueIndex;not null"`
	FullName   string    `gorm:"type:text;not null"`
	IsAdmin    bool      `gorm:"not null;default:false;index"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (User) TableName() string {
	return "users"
}
