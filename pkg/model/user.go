package model

import "time"

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:128" json:"email"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"isAdmin"`
	Verified     bool      `json:"verified"`
	VerifyCode   string    `gorm:"size:64" json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
