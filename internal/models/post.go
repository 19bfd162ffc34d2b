package models

import (
	"time"
)

// Post is an image-attached feed entry owned by exactly one user.
// ImageURL names an artifact on disk that exists for as long as the post
// does; replacing or deleting the post schedules removal of the artifact.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	ImageURL  string    `gorm:"not null" json:"imageUrl"`
	UserID    uint      `gorm:"not null;index" json:"creator_id"`
	User      User      `gorm:"foreignKey:UserID" json:"creator"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreatorSummary is the trimmed creator representation returned alongside
// a freshly created post.
type CreatorSummary struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}
