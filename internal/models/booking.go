package models

import "time"

// Booking is a guest's reservation of one room for a half-open date range
// [CheckIn, CheckOut).
type Booking struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	ProviderID int64     `json:"provider_id"`
	RoomKind   RoomKind  `json:"room_type"`
	RoomID     int64     `json:"room_id"`
	RoomName   string    `json:"room_name,omitempty"`
	CheckIn    time.Time `json:"-"`
	CheckOut   time.Time `json:"-"`
	TotalPrice int64     `json:"total_price"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Version    int64     `json:"version"`
}

// Nights returns the number of nights covered by the booking.
func (b *Booking) Nights() int64 {
	return NightsBetween(b.CheckIn, b.CheckOut)
}

// Overlaps reports whether the booking's range intersects [checkIn, checkOut).
func (b *Booking) Overlaps(checkIn, checkOut time.Time) bool {
	return b.CheckIn.Before(checkOut) && b.CheckOut.After(checkIn)
}

// IsActive reports whether the booking still holds its room.
func (b *Booking) IsActive() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// IsTerminal reports whether no further transition is possible.
func IsTerminal(status string) bool {
	switch status {
	case StatusCancelled, StatusCompleted, StatusRejected:
		return true
	default:
		return false
	}
}
