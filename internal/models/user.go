package models

import "time"

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// UserProfile is keyed 1:1 with User by ID.
type UserProfile struct {
	ID                 string    `json:"id"`
	Email              string    `json:"email"`
	Username           string    `json:"username"`
	TrustPoints        int       `json:"trust_points"`
	VerificationsCount int       `json:"verifications_count"`
	CreatedAt          time.Time `json:"created_at"`
	AvatarURL          *string   `json:"avatar_url,omitempty"`
}

// Session exists between a successful sign-in and the next sign-out.
type Session struct {
	User        User   `json:"user"`
	AccessToken string `json:"access_token"`
}

// Credentials is the email/password pair checked on sign-in.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
