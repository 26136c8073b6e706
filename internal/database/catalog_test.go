package database

import (
	"context"
	"testing"

	"bstn/internal/domain"
	"bstn/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStayCRUD(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	p := seedProvider(t, db, "owner")

	resort := &models.Resort{}
	resort.ProviderID = p.ID
	resort.Name = "Blue Lagoon"
	resort.City = "Da Nang"
	resort.StarRating = 5
	resort.NumPools = 3
	resort.AllInclusive = true
	require.NoError(t, db.CreateStay(ctx, resort))
	require.NotZero(t, resort.ID)

	got, err := db.GetStay(ctx, models.KindResort, resort.ID)
	require.NoError(t, err)
	r, ok := got.(*models.Resort)
	require.True(t, ok)
	assert.Equal(t, "Blue Lagoon", r.Name)
	assert.Equal(t, p.ID, r.ProviderID)
	assert.Equal(t, 5, r.StarRating)
	assert.Equal(t, 3, r.NumPools)
	assert.True(t, r.AllInclusive)

	_, err = db.GetStay(ctx, models.KindHotel, resort.ID)
	assert.ErrorIs(t, err, domain.ErrStayNotFound, "kinds live in separate tables")

	seedStay(t, db, models.KindResort, p.ID, "Second", "Hue")
	stays, err := db.ListStays(ctx, models.KindResort)
	require.NoError(t, err)
	assert.Len(t, stays, 2)

	stays, err = db.ListStays(ctx, models.KindHomeStay)
	require.NoError(t, err)
	assert.Empty(t, stays)

	_, err = db.ListStays(ctx, "castle")
	assert.ErrorIs(t, err, domain.ErrInvalidRoomType)
}

func TestStayWithoutProvider(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	stay := seedStay(t, db, models.KindHomeStay, 0, "Orphan", "Sapa")
	got, err := db.GetStay(ctx, models.KindHomeStay, stay.Base().ID)
	require.NoError(t, err)
	assert.Zero(t, got.Base().ProviderID)
}

func TestRoomCRUD(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	p := seedProvider(t, db, "owner")
	hotel := seedStay(t, db, models.KindHotel, p.ID, "Grand", "Hanoi")

	room := &models.HotelRoom{Category: "deluxe"}
	room.StayID = hotel.Base().ID
	room.Name = "101"
	room.PricePerNight = 120
	room.HasAC = true
	require.NoError(t, db.CreateRoom(ctx, room))

	got, err := db.GetRoom(ctx, models.KindHotel, room.ID)
	require.NoError(t, err)
	hr, ok := got.(*models.HotelRoom)
	require.True(t, ok)
	assert.Equal(t, "deluxe", hr.Category)
	assert.Equal(t, int64(120), hr.PricePerNight)
	assert.True(t, hr.HasAC)
	require.NotNil(t, hr.Hotel)
	assert.Equal(t, "Grand", hr.Hotel.Name)

	providerID, ok := models.RoomProvider(got)
	assert.True(t, ok)
	assert.Equal(t, p.ID, providerID)

	_, err = db.GetRoom(ctx, models.KindResort, room.ID)
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)

	seedRoom(t, db, models.KindHotel, hotel.Base().ID, "102", 150)
	other := seedStay(t, db, models.KindHotel, p.ID, "Other", "Hue")
	seedRoom(t, db, models.KindHotel, other.Base().ID, "A1", 90)

	rooms, err := db.ListRooms(ctx, models.KindHotel, hotel.Base().ID)
	require.NoError(t, err)
	assert.Len(t, rooms, 2)

	rooms, err = db.ListRooms(ctx, models.KindHotel, 0)
	require.NoError(t, err)
	assert.Len(t, rooms, 3)
}

func TestCreateRoomRequiresStay(t *testing.T) {
	db := setupTestDB(t)
	room := models.NewRoom(models.KindResort)
	room.Base().StayID = 42
	room.Base().Name = "Villa"
	err := db.CreateRoom(context.Background(), room)
	assert.ErrorIs(t, err, domain.ErrStayNotFound)
}
