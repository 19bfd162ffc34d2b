// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// DefaultStatus is assigned to every freshly created user.
const DefaultStatus = "I am new!"

// User represents a registered account. Posts is the has-many side of the
// post ownership relation; the creator foreign key on Post is the single
// source of truth for which posts a user owns.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"unique;not null" json:"email"`
	Name      string    `gorm:"not null" json:"name"`
	Password  string    `gorm:"not null" json:"-"`
	Status    string    `gorm:"not null;default:''" json:"status"`
	Posts     []Post    `gorm:"foreignKey:UserID" json:"posts,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
