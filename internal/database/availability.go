package database

import (
	"context"
	"fmt"
	"time"

	"bstn/internal/domain"
	"bstn/internal/models"
	"bstn/internal/registry"
)

// overlapFilter matches active bookings of one room kind that intersect the
// half-open range [check_in, check_out). Dates are stored as YYYY-MM-DD so
// string comparison orders them chronologically.
const overlapFilter = `room_kind = ? AND status IN (?, ?) AND check_in < ? AND check_out > ?`

func overlapArgs(kind models.RoomKind, checkIn, checkOut time.Time) []interface{} {
	return []interface{}{
		string(kind), models.StatusPending, models.StatusConfirmed,
		models.FormatDate(checkOut), models.FormatDate(checkIn),
	}
}

// AvailableRooms returns the rooms of a kind not held by any active booking
// overlapping [checkIn, checkOut), with their parent stays loaded. The rooms'
// is_available flag is not consulted.
func (db *DB) AvailableRooms(ctx context.Context, tag models.RoomKind, checkIn, checkOut time.Time) ([]models.Room, error) {
	kind, ok := registry.Get(tag)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidRoomType, tag)
	}
	query := roomWithStaySelect(kind) +
		` WHERE r.id NOT IN (SELECT room_id FROM bookings WHERE ` + overlapFilter + `) ORDER BY r.id`

	rows, err := db.QueryContext(ctx, query, overlapArgs(kind.Tag, checkIn, checkOut)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query available %s: %w", kind.RoomTable, err)
	}
	return collectRooms(kind, rows)
}

// IsRoomAvailable reports whether no active booking holds the room for any
// night of [checkIn, checkOut).
func (db *DB) IsRoomAvailable(ctx context.Context, tag models.RoomKind, roomID int64, checkIn, checkOut time.Time) (bool, error) {
	var count int
	args := append(overlapArgs(tag, checkIn, checkOut), roomID)
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE `+overlapFilter+` AND room_id = ?`, args...,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check availability: %w", err)
	}
	return count == 0, nil
}
