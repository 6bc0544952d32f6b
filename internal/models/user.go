package models

import (
	"time"
)

// User is a projection of the identity service's user record. The messaging
// core only reads and serves it; account lifecycle lives elsewhere.
type User struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Username     string     `gorm:"uniqueIndex;not null" json:"username"`
	ProfileImage string     `json:"profile_image"`
	Status       string     `json:"status"`
	IsOnline     bool       `gorm:"default:false" json:"is_online"`
	LastSeen     *time.Time `json:"last_seen"`

	Messages []Message `gorm:"foreignKey:SenderID" json:"-"`
}

type UserResponse struct {
	ID           uint       `json:"id"`
	Username     string     `json:"username"`
	ProfileImage string     `json:"profile_image"`
	Status       string     `json:"status"`
	IsOnline     bool       `json:"is_online"`
	LastSeen     *time.Time `json:"last_seen"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:           u.ID,
		Username:     u.Username,
		ProfileImage: u.ProfileImage,
		Status:       u.Status,
		IsOnline:     u.IsOnline,
		LastSeen:     u.LastSeen,
	}
}
