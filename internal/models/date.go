package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateOf truncates t to midnight UTC of its calendar day in t's location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD value into a UTC calendar date.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return t, nil
}

// FormatDate renders a calendar date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// NightsBetween counts whole nights between two calendar dates.
func NightsBetween(checkIn, checkOut time.Time) int64 {
	return int64(DateOf(checkOut).Sub(DateOf(checkIn)).Hours() / 24)
}

type bookingJSON struct {
	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`
	Nights   int64  `json:"nights"`
}

// MarshalJSON renders check-in/check-out as plain dates.
func (b Booking) MarshalJSON() ([]byte, error) {
	type plain Booking
	return json.Marshal(struct {
		plain
		bookingJSON
	}{
		plain: plain(b),
		bookingJSON: bookingJSON{
			CheckIn:  FormatDate(b.CheckIn),
			CheckOut: FormatDate(b.CheckOut),
			Nights:   b.Nights(),
		},
	})
}

// UnmarshalJSON reads the form written by MarshalJSON.
func (b *Booking) UnmarshalJSON(data []byte) error {
	type plain Booking
	var aux struct {
		*plain
		bookingJSON
	}
	aux.plain = (*plain)(b)
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	var err error
	if aux.bookingJSON.CheckIn != "" {
		if b.CheckIn, err = ParseDate(aux.bookingJSON.CheckIn); err != nil {
			return err
		}
	}
	if aux.bookingJSON.CheckOut != "" {
		if b.CheckOut, err = ParseDate(aux.bookingJSON.CheckOut); err != nil {
			return err
		}
	}
	return nil
}
