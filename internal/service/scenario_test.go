package service

import (
	"context"
	"testing"
	"time"

	"bstn/internal/database"
	"bstn/internal/events"
	"bstn/internal/models"
	"bstn/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }
func (c *clock) Set(day string) { c.now = date(day).Add(9 * time.Hour) }

type fixture struct {
	db       *database.DB
	bookings *BookingService
	search   *AvailabilityService
	listings *ListingService
	clock    *clock
	guest    models.Actor
	owner    models.Actor
	stranger models.Actor
	roomID   int64
	hotelID  int64
	seen     []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	db, err := database.NewDB(":memory:", testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	users := map[string]*models.User{
		"guest":    {Username: "guest", Role: models.RoleGuest},
		"owner":    {Username: "owner", Role: models.RoleProvider},
		"stranger": {Username: "stranger", Role: models.RoleProvider},
	}
	for _, u := range users {
		require.NoError(t, db.CreateOrUpdateUser(ctx, u))
	}
	ownerProfile := &models.Provider{UserID: users["owner"].ID, DisplayName: "Lakeside Stays"}
	require.NoError(t, db.CreateOrUpdateProvider(ctx, ownerProfile))
	require.NoError(t, db.CreateOrUpdateProvider(ctx, &models.Provider{UserID: users["stranger"].ID, DisplayName: "Other"}))

	hotel := &models.Hotel{StayBase: models.StayBase{ProviderID: ownerProfile.ID, Name: "Lakeside", City: "Pokhara", IsActive: true}}
	require.NoError(t, db.CreateStay(ctx, hotel))
	room := &models.HotelRoom{RoomBase: models.RoomBase{StayID: hotel.ID, Name: "R", PricePerNight: 100, IsAvailable: true}}
	require.NoError(t, db.CreateRoom(ctx, room))

	f := &fixture{
		db:       db,
		clock:    &clock{},
		guest:    models.Actor{UserID: users["guest"].ID, Role: models.RoleGuest},
		owner:    models.Actor{UserID: users["owner"].ID, Role: models.RoleProvider},
		stranger: models.Actor{UserID: users["stranger"].ID, Role: models.RoleProvider},
		roomID:   room.ID,
		hotelID:  hotel.ID,
	}
	f.clock.Set("2025-05-25")

	bus := events.NewEventBus(testLogger())
	bus.Subscribe(events.AllEvents, func(e *events.Event) error {
		f.seen = append(f.seen, e.Type)
		return nil
	})
	cache := repository.NewMemoryCacheRepository()

	f.bookings = NewBookingService(db, bus, nil, testLogger(), WithClock(f.clock.Now), WithCache(cache, 0, 0))
	f.search = NewAvailabilityService(db, cache, time.Minute, testLogger())
	f.listings = NewListingService(db, cache, testLogger())
	return f
}

func TestBookingLifecycleScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first, err := f.bookings.Create(ctx, f.guest, "hotel", f.roomID, date("2025-06-01"), date("2025-06-04"))
	require.NoError(t, err)
	assert.Equal(t, int64(300), first.TotalPrice)
	assert.Equal(t, models.StatusPending, first.Status)

	_, err = f.bookings.Create(ctx, f.guest, "hotel", f.roomID, date("2025-06-03"), date("2025-06-05"))
	assert.ErrorIs(t, err, ErrRoomUnavailable)

	_, err = f.bookings.Confirm(ctx, f.stranger, first.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	confirmed, err := f.bookings.Confirm(ctx, f.owner, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, confirmed.Status)

	_, err = f.bookings.Reject(ctx, f.owner, first.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	f.clock.Set("2025-06-05")
	n, err := f.bookings.AutoComplete(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = f.bookings.AutoComplete(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	done, err := f.bookings.GetBooking(ctx, f.guest, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, done.Status)
	assert.Equal(t, int64(300), done.TotalPrice)

	assert.Equal(t, []string{
		events.EventBookingCreated,
		events.EventBookingConfirmed,
		events.EventBookingCompleted,
	}, f.seen)
}

func TestCancelDeadline(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	b, err := f.bookings.Create(ctx, f.guest, "hotel", f.roomID, date("2025-06-01"), date("2025-06-04"))
	require.NoError(t, err)
	_, err = f.bookings.Confirm(ctx, f.owner, b.ID)
	require.NoError(t, err)

	f.clock.Set("2025-06-01")
	_, err = f.bookings.Cancel(ctx, f.guest, b.ID)
	assert.ErrorIs(t, err, ErrTooLate)

	f.clock.Set("2025-05-31")
	cancelled, err := f.bookings.Cancel(ctx, f.guest, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)

	// the range is free again
	_, err = f.bookings.Create(ctx, f.guest, "hotel", f.roomID, date("2025-06-02"), date("2025-06-03"))
	assert.NoError(t, err)
}

func TestSearchReflectsBookings(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	in, out := date("2025-06-01"), date("2025-06-04")

	stays, err := f.search.SearchStays(ctx, in, out, "", "pokhara")
	require.NoError(t, err)
	require.Len(t, stays, 1)
	assert.Equal(t, "Lakeside", stays[0].Name)
	assert.Equal(t, int64(100), stays[0].PricePerNight)

	_, err = f.bookings.Create(ctx, f.guest, "hotel", f.roomID, date("2025-06-03"), date("2025-06-06"))
	require.NoError(t, err)

	stays, err = f.search.SearchStays(ctx, in, out, "", "pokhara")
	require.NoError(t, err)
	assert.Empty(t, stays)

	// back-to-back stays do not overlap
	rooms, err := f.search.AvailableRooms(ctx, "hotel", date("2025-06-06"), date("2025-06-08"))
	require.NoError(t, err)
	assert.Len(t, rooms, 1)
}

func TestSearchSeesNewListings(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	in, out := date("2025-06-01"), date("2025-06-04")

	stays, err := f.search.SearchStays(ctx, in, out, "hotel", "")
	require.NoError(t, err)
	require.Len(t, stays, 1)
	assert.Equal(t, 1, stays[0].AvailableRoomCount)

	_, err = f.listings.CreateRoom(ctx, f.owner, "hotel", f.hotelID,
		&models.HotelRoom{RoomBase: models.RoomBase{Name: "R2", PricePerNight: 120}})
	require.NoError(t, err)

	rooms, err := f.search.AvailableRooms(ctx, "hotel", in, out)
	require.NoError(t, err)
	assert.Len(t, rooms, 2)

	stays, err = f.search.SearchStays(ctx, in, out, "hotel", "")
	require.NoError(t, err)
	require.Len(t, stays, 1)
	assert.Equal(t, len(rooms), stays[0].AvailableRoomCount)

	hilltop, err := f.listings.CreateStay(ctx, f.owner, "hotel",
		&models.Hotel{StayBase: models.StayBase{Name: "Hilltop", City: "Pokhara", IsActive: true}})
	require.NoError(t, err)
	_, err = f.listings.CreateRoom(ctx, f.owner, "hotel", hilltop.Base().ID,
		&models.HotelRoom{RoomBase: models.RoomBase{Name: "H1", PricePerNight: 90}})
	require.NoError(t, err)

	stays, err = f.search.SearchStays(ctx, in, out, "hotel", "")
	require.NoError(t, err)
	assert.Len(t, stays, 2)
}

func TestMyBookingsCompletesPastStays(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	b, err := f.bookings.Create(ctx, f.guest, "hotel", f.roomID, date("2025-06-01"), date("2025-06-02"))
	require.NoError(t, err)
	_, err = f.bookings.Confirm(ctx, f.owner, b.ID)
	require.NoError(t, err)

	f.clock.Set("2025-06-03")
	list, err := f.bookings.MyBookings(ctx, f.guest)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.StatusCompleted, list[0].Status)

	owned, err := f.bookings.ProviderBookings(ctx, f.owner, b.ProviderID)
	require.NoError(t, err)
	assert.Len(t, owned, 1)
}
