package model

import "time"

const (
	ProviderEmail  = "email"
	ProviderGoogle = "google"
)

// User represents an account, optionally linked to an external identity
type User struct {
	ID           int64      `db:"id" json:"id"`
	Username     string     `db:"username" json:"username"`
	Email        string     `db:"email" json:"email"`
	PasswordHash *string    `db:"password_hash" json:"-"`
	FirebaseUID  *string    `db:"firebase_uid" json:"firebase_uid,omitempty"`
	Provider     string     `db:"provider" json:"provider"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
}

// UserProvider links a user to one identity provider account
type UserProvider struct {
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	Provider    string    `db:"provider" json:"provider"`
	ProviderUID *string   `db:"provider_uid" json:"provider_uid,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Identity is what a verified bearer credential tells us about the caller
type Identity struct {
	UID      string
	Email    string
	Provider string
}
