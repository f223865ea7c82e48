package domain

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID              string
	Email           string
	PasswordHash    string
	Role            string
	FirstName       string
	LastName        string
	PhoneNumber     string
	IsEmailVerified bool
	IsPhoneVerified bool
	LastLogin       *time.Time
	LastLoginIP     string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
