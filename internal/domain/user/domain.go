package user

import (
	"time"
)

type User struct {
	ID              int64     `json:"id"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	Password        string    `json:"-"`
	ProfileImageURL string    `json:"profile_image_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Stats is the aggregate shown on the profile page.
type Stats struct {
	TotalPosts int64     `json:"totalPosts"`
	TotalViews int64     `json:"totalViews"`
	JoinDate   time.Time `json:"joinDate"`
}
