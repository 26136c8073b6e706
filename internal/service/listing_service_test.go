package service

import (
	"context"
	"testing"

	"bstn/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestListingService_Stays(t *testing.T) {
	ctx := context.Background()

	t.Run("ListResolvesTag", func(t *testing.T) {
		repo := new(mockCatalog)
		repo.On("ListStays", ctx, models.KindHomeStay).Return([]models.Stay{&models.HomeStay{}}, nil).Once()
		svc := NewListingService(repo, nil, testLogger())

		stays, err := svc.ListStays(ctx, "home_stay")
		require.NoError(t, err)
		assert.Len(t, stays, 1)

		_, err = svc.ListStays(ctx, "boat")
		assert.ErrorIs(t, err, ErrInvalidRoomType)
	})

	t.Run("ProviderOwnsNewStay", func(t *testing.T) {
		repo := new(mockCatalog)
		repo.On("GetProviderByUserID", ctx, owner.UserID).Return(&models.Provider{ID: 7}, nil).Once()
		repo.On("CreateStay", ctx, mock.Anything).Return(nil).Once()
		svc := NewListingService(repo, nil, testLogger())

		stay := &models.Resort{StayBase: models.StayBase{Name: "  Sunrise  ", ProviderID: 99}}
		created, err := svc.CreateStay(ctx, owner, "resort", stay)
		require.NoError(t, err)
		assert.Equal(t, int64(7), created.Base().ProviderID)
		assert.Equal(t, "Sunrise", created.Base().Name)
	})

	t.Run("AdminKeepsProvider", func(t *testing.T) {
		repo := new(mockCatalog)
		repo.On("CreateStay", ctx, mock.Anything).Return(nil).Once()
		svc := NewListingService(repo, nil, testLogger())

		stay := &models.Hotel{StayBase: models.StayBase{Name: "Grand", ProviderID: 3}}
		created, err := svc.CreateStay(ctx, admin, "hotel", stay)
		require.NoError(t, err)
		assert.Equal(t, int64(3), created.Base().ProviderID)
		repo.AssertNotCalled(t, "GetProviderByUserID", mock.Anything, mock.Anything)
	})

	t.Run("Validation", func(t *testing.T) {
		svc := NewListingService(new(mockCatalog), nil, testLogger())

		_, err := svc.CreateStay(ctx, admin, "hotel", &models.Resort{StayBase: models.StayBase{Name: "x"}})
		assert.ErrorIs(t, err, ErrValidation)

		_, err = svc.CreateStay(ctx, admin, "hotel", &models.Hotel{})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("GuestForbidden", func(t *testing.T) {
		repo := new(mockCatalog)
		repo.On("GetProviderByUserID", ctx, guest.UserID).Return(nil, ErrNotFound).Once()
		svc := NewListingService(repo, nil, testLogger())

		_, err := svc.CreateStay(ctx, guest, "hotel", &models.Hotel{StayBase: models.StayBase{Name: "Mine"}})
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestListingService_Rooms(t *testing.T) {
	ctx := context.Background()
	hotel := &models.Hotel{StayBase: models.StayBase{ID: 4, ProviderID: 7, Name: "Grand"}}

	t.Run("ListChecksStay", func(t *testing.T) {
		repo := new(mockCatalog)
		repo.On("GetStay", ctx, models.KindHotel, int64(5)).Return(nil, ErrStayNotFound).Once()
		svc := NewListingService(repo, nil, testLogger())

		_, err := svc.ListRooms(ctx, "hotel", 5)
		assert.ErrorIs(t, err, ErrStayNotFound)
	})

	t.Run("OwnerCreatesRoom", func(t *testing.T) {
		repo := new(mockCatalog)
		repo.On("GetStay", ctx, models.KindHotel, int64(4)).Return(hotel, nil).Once()
		repo.On("GetProviderByUserID", ctx, owner.UserID).Return(&models.Provider{ID: 7}, nil).Once()
		repo.On("CreateRoom", ctx, mock.Anything).Return(nil).Once()
		svc := NewListingService(repo, nil, testLogger())

		room := &models.HotelRoom{RoomBase: models.RoomBase{Name: "Deluxe", PricePerNight: 120}, Category: "deluxe"}
		created, err := svc.CreateRoom(ctx, owner, "hotelroom", 4, room)
		require.NoError(t, err)
		assert.Equal(t, int64(4), created.Base().StayID)
		provider, ok := models.RoomProvider(created)
		assert.True(t, ok)
		assert.Equal(t, int64(7), provider)
	})

	t.Run("OtherProviderForbidden", func(t *testing.T) {
		repo := new(mockCatalog)
		repo.On("GetStay", ctx, models.KindHotel, int64(4)).Return(hotel, nil).Once()
		repo.On("GetProviderByUserID", ctx, stranger.UserID).Return(&models.Provider{ID: 8}, nil).Once()
		svc := NewListingService(repo, nil, testLogger())

		_, err := svc.CreateRoom(ctx, stranger, "hotel", 4, &models.HotelRoom{RoomBase: models.RoomBase{Name: "A"}})
		assert.ErrorIs(t, err, ErrForbidden)
		repo.AssertNotCalled(t, "CreateRoom", mock.Anything, mock.Anything)
	})

	t.Run("InvalidRoom", func(t *testing.T) {
		repo := new(mockCatalog)
		repo.On("GetStay", ctx, models.KindHotel, int64(4)).Return(hotel, nil)
		svc := NewListingService(repo, nil, testLogger())

		_, err := svc.CreateRoom(ctx, admin, "hotel", 4, &models.ResortRoom{RoomBase: models.RoomBase{Name: "A"}})
		assert.ErrorIs(t, err, ErrValidation)

		_, err = svc.CreateRoom(ctx, admin, "hotel", 4, &models.HotelRoom{RoomBase: models.RoomBase{Name: "A", PricePerNight: -1}})
		assert.ErrorIs(t, err, ErrValidation)
	})
}
