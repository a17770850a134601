package domain

import "time"

// User is an account known to the identity provider.
type User struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Name              string    `gorm:"not null" json:"name"`
	Email             string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash      string    `gorm:"column:password;not null" json:"-"`
	Role              Role      `gorm:"type:varchar(16);not null" json:"role"`
	IsVerified        bool      `gorm:"not null;default:false" json:"is_verified"`
	VerificationToken *string   `gorm:"index" json:"-"`
	CreatedAt         time.Time `json:"created_at"`
}

func (User) TableName() string { return "users" }

// Principal is the authenticated caller attached to every request.
type Principal struct {
	ID   uint `json:"id"`
	Role Role `json:"role"`
}
