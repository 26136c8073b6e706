package service

import (
	"context"
	"io"
	"time"

	"bstn/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
)

func testLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

func date(s string) time.Time {
	t, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

// fixedClock returns a clock pinned to noon of the given day.
func fixedClock(day string) func() time.Time {
	t := date(day).Add(12 * time.Hour)
	return func() time.Time { return t }
}

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) GetRoom(ctx context.Context, kind models.RoomKind, id int64) (models.Room, error) {
	args := m.Called(ctx, kind, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.Room), args.Error(1)
}
func (m *mockRepo) AvailableRooms(ctx context.Context, kind models.RoomKind, in, out time.Time) ([]models.Room, error) {
	args := m.Called(ctx, kind, in, out)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Room), args.Error(1)
}
func (m *mockRepo) CreateBookingWithLock(ctx context.Context, b *models.Booking) error {
	return m.Called(ctx, b).Error(0)
}
func (m *mockRepo) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockRepo) TransitionBookingStatus(ctx context.Context, id int64, from []string, to string) (*models.Booking, error) {
	args := m.Called(ctx, id, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockRepo) CompleteFinishedBookings(ctx context.Context, today time.Time) ([]*models.Booking, error) {
	args := m.Called(ctx, today)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}
func (m *mockRepo) GetUserBookings(ctx context.Context, id int64) ([]*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}
func (m *mockRepo) GetProviderBookings(ctx context.Context, id int64) ([]*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}
func (m *mockRepo) ListBookings(ctx context.Context) ([]*models.Booking, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}
func (m *mockRepo) GetProvider(ctx context.Context, id int64) (*models.Provider, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Provider), args.Error(1)
}
func (m *mockRepo) GetProviderByUserID(ctx context.Context, id int64) (*models.Provider, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Provider), args.Error(1)
}

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) CreateStay(ctx context.Context, s models.Stay) error {
	return m.Called(ctx, s).Error(0)
}
func (m *mockCatalog) GetStay(ctx context.Context, kind models.RoomKind, id int64) (models.Stay, error) {
	args := m.Called(ctx, kind, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.Stay), args.Error(1)
}
func (m *mockCatalog) ListStays(ctx context.Context, kind models.RoomKind) ([]models.Stay, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Stay), args.Error(1)
}
func (m *mockCatalog) CreateRoom(ctx context.Context, r models.Room) error {
	return m.Called(ctx, r).Error(0)
}
func (m *mockCatalog) ListRooms(ctx context.Context, kind models.RoomKind, stayID int64) ([]models.Room, error) {
	args := m.Called(ctx, kind, stayID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Room), args.Error(1)
}
func (m *mockCatalog) GetProviderByUserID(ctx context.Context, id int64) (*models.Provider, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Provider), args.Error(1)
}

type mockEventBus struct {
	mock.Mock
}

func (m *mockEventBus) PublishJSON(et string, p interface{}) error { return m.Called(et, p).Error(0) }

type mockWorker struct {
	mock.Mock
}

func (m *mockWorker) EnqueueTask(ctx context.Context, tt string, bid int64, b *models.Booking, s string) error {
	return m.Called(ctx, tt, bid, b, s).Error(0)
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Generation(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
func (m *mockCache) BumpGeneration(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
func (m *mockCache) GetSearch(ctx context.Context, key string) ([]byte, bool, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.Bool(1), args.Error(2)
}
func (m *mockCache) SetSearch(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}
func (m *mockCache) CheckRateLimit(ctx context.Context, actorID int64, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, actorID, limit, window)
	return args.Bool(0), args.Error(1)
}

func hotelRoom(id, stayID, providerID, price int64, city string) *models.HotelRoom {
	hotel := &models.Hotel{StayBase: models.StayBase{ID: stayID, ProviderID: providerID, Name: "Hotel", City: city}}
	return &models.HotelRoom{
		RoomBase: models.RoomBase{ID: id, StayID: stayID, Name: "Room", PricePerNight: price},
		Hotel:    hotel,
	}
}
