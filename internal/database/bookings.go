package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bstn/internal/domain"
	"bstn/internal/models"
)

const bookingColumns = `id, user_id, provider_id, room_kind, room_id, check_in, check_out,
	total_price, status, created_at, updated_at, version`

func scanBooking(row scanner) (*models.Booking, error) {
	var b models.Booking
	var kind, checkIn, checkOut string
	err := row.Scan(
		&b.ID, &b.UserID, &b.ProviderID, &kind, &b.RoomID, &checkIn, &checkOut,
		&b.TotalPrice, &b.Status, &b.CreatedAt, &b.UpdatedAt, &b.Version,
	)
	if err != nil {
		return nil, err
	}
	b.RoomKind = models.RoomKind(kind)
	if b.CheckIn, err = models.ParseDate(checkIn); err != nil {
		return nil, fmt.Errorf("booking %d: %w", b.ID, err)
	}
	if b.CheckOut, err = models.ParseDate(checkOut); err != nil {
		return nil, fmt.Errorf("booking %d: %w", b.ID, err)
	}
	return &b, nil
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...interface{}) ([]*models.Booking, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	bookings := []*models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// CreateBookingWithLock re-checks the room for overlapping active bookings and
// inserts the booking inside one write transaction, so two concurrent creates
// for the same room and range cannot both commit. Returns
// domain.ErrRoomUnavailable when the range is taken.
func (db *DB) CreateBookingWithLock(ctx context.Context, booking *models.Booking) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var overlapping int
	args := append(overlapArgs(booking.RoomKind, booking.CheckIn, booking.CheckOut), booking.RoomID)
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE `+overlapFilter+` AND room_id = ?`, args...,
	).Scan(&overlapping)
	if err != nil {
		return fmt.Errorf("failed to check availability in tx: %w", err)
	}
	if overlapping > 0 {
		return domain.ErrRoomUnavailable
	}

	status := booking.Status
	if status == "" {
		status = models.StatusPending
	}
	now := time.Now().UTC()
	result, err := tx.ExecContext(ctx, `INSERT INTO bookings (
				user_id, provider_id, room_kind, room_id, check_in, check_out,
				total_price, status, created_at, updated_at, version
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)`,
		booking.UserID,
		booking.ProviderID,
		string(booking.RoomKind),
		booking.RoomID,
		models.FormatDate(booking.CheckIn),
		models.FormatDate(booking.CheckOut),
		booking.TotalPrice,
		status,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert booking in tx: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id in tx: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit booking: %w", err)
	}

	booking.ID = id
	booking.Status = status
	booking.CreatedAt = now
	booking.UpdatedAt = now
	booking.Version = 1
	return nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	b, err := scanBooking(db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("booking %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return b, nil
}

// TransitionBookingStatus moves a booking to status `to` only if its current
// status is one of `from`. The check and the write are one statement, so of two
// racing transitions exactly one wins; the other gets domain.ErrInvalidTransition.
func (db *DB) TransitionBookingStatus(ctx context.Context, id int64, from []string, to string) (*models.Booking, error) {
	if len(from) == 0 {
		return nil, fmt.Errorf("transition to %s: %w", to, domain.ErrInvalidTransition)
	}
	query := `UPDATE bookings SET status = ?, updated_at = ?, version = version + 1
              WHERE id = ? AND status IN (` + placeholders(len(from)) + `)`
	args := append([]interface{}{to, time.Now().UTC(), id}, stringArgs(from)...)

	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read affected rows: %w", err)
	}

	current, err := db.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, fmt.Errorf("booking %d is %s, cannot become %s: %w",
			id, current.Status, to, domain.ErrInvalidTransition)
	}
	return current, nil
}

// CompleteFinishedBookings marks every CONFIRMED booking whose check_out is
// before today as COMPLETED in one statement and returns the bookings it moved.
// Running it again for the same day moves nothing.
func (db *DB) CompleteFinishedBookings(ctx context.Context, today time.Time) ([]*models.Booking, error) {
	rows, err := db.QueryContext(ctx,
		`UPDATE bookings SET status = ?, updated_at = ?, version = version + 1
         WHERE status = ? AND check_out < ?
         RETURNING id`,
		models.StatusCompleted, time.Now().UTC(), models.StatusConfirmed, models.FormatDate(today),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to complete bookings: %w", err)
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan completed booking id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete bookings: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return db.queryBookings(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id IN (`+placeholders(len(ids))+`) ORDER BY id`, args...)
}

// GetUserBookings returns a guest's bookings, newest first.
func (db *DB) GetUserBookings(ctx context.Context, userID int64) ([]*models.Booking, error) {
	return db.queryBookings(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
}

// GetProviderBookings returns the bookings on a provider's rooms, newest first.
func (db *DB) GetProviderBookings(ctx context.Context, providerID int64) ([]*models.Booking, error) {
	return db.queryBookings(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE provider_id = ? ORDER BY created_at DESC, id DESC`, providerID)
}

// ListBookings returns every booking, newest first.
func (db *DB) ListBookings(ctx context.Context) ([]*models.Booking, error) {
	return db.queryBookings(ctx, `SELECT `+bookingColumns+` FROM bookings ORDER BY created_at DESC, id DESC`)
}
