package database

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"bstn/internal/domain"
	"bstn/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcurrentBooking(t *testing.T) {
	logger := zerolog.Nop()
	db, err := NewDB(filepath.Join(t.TempDir(), "concurrency.db"), &logger)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	p := seedProvider(t, db, "owner")
	hotel := seedStay(t, db, models.KindHotel, p.ID, "Grand", "Hanoi")
	room := seedRoom(t, db, models.KindHotel, hotel.Base().ID, "101", 100)

	checkIn, checkOut := mustDate(t, "2025-06-10"), mustDate(t, "2025-06-12")

	const numGoroutines = 10
	var wg sync.WaitGroup
	results := make(chan error, numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			booking := &models.Booking{
				UserID:     userID,
				ProviderID: p.ID,
				RoomKind:   models.KindHotel,
				RoomID:     room.Base().ID,
				CheckIn:    checkIn,
				CheckOut:   checkOut,
				TotalPrice: 200,
			}
			results <- db.CreateBookingWithLock(ctx, booking)
		}(int64(i + 1))
	}

	wg.Wait()
	close(results)

	successCount, unavailableCount := 0, 0
	for err := range results {
		switch {
		case err == nil:
			successCount++
		case errors.Is(err, domain.ErrRoomUnavailable):
			unavailableCount++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, successCount, "only one overlapping booking may commit")
	assert.Equal(t, numGoroutines-1, unavailableCount)

	bookings, err := db.GetProviderBookings(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, bookings, 1)
}

func TestConcurrentTransitions(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	b := f.book(t, 1, "2025-06-10", "2025-06-12", "")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	targets := []string{models.StatusConfirmed, models.StatusRejected}
	for i, to := range targets {
		wg.Add(1)
		go func(i int, to string) {
			defer wg.Done()
			_, errs[i] = f.db.TransitionBookingStatus(ctx, b.ID, []string{models.StatusPending}, to)
		}(i, to)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		}
	}
	assert.Equal(t, 1, wins)
}
