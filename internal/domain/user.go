package domain

import "time"

// User is the authenticated profile fetched from the API.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	IsStaff   bool      `json:"is_staff"`
	KYCStatus string    `json:"kyc_status,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Location is the last-known geolocation cached locally between runs.
type Location struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	SavedAt   time.Time `json:"saved_at"`
}
