package models

import "time"

type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Provider is the business profile of a user offering stays.
type Provider struct {
	ID            int64     `json:"id" yaml:"id"`
	UserID        int64     `json:"user_id" yaml:"user_id"`
	DisplayName   string    `json:"display_name" yaml:"display_name"`
	BusinessType  string    `json:"business_type" yaml:"business_type"`
	City          string    `json:"city" yaml:"city"`
	Country       string    `json:"country" yaml:"country"`
	IsVerified    bool      `json:"is_verified" yaml:"is_verified"`
	KYCStatus     string    `json:"kyc_status" yaml:"kyc_status"`
	AverageRating float64   `json:"average_rating" yaml:"-"`
	TotalReviews  int       `json:"total_reviews" yaml:"-"`
	TotalBookings int       `json:"total_bookings" yaml:"-"`
	CreatedAt     time.Time `json:"created_at" yaml:"-"`
	UpdatedAt     time.Time `json:"updated_at" yaml:"-"`
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID int64
	Role   string
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }
func (a Actor) IsProvider() bool { return a.Role == RoleProvider }
