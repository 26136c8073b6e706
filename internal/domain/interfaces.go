package domain

import (
	"context"
	"time"

	"bstn/internal/models"
)

// Repository is the persistence surface used by the booking and availability services.
type Repository interface {
	GetRoom(ctx context.Context, kind models.RoomKind, id int64) (models.Room, error)
	AvailableRooms(ctx context.Context, kind models.RoomKind, checkIn, checkOut time.Time) ([]models.Room, error)

	CreateBookingWithLock(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	TransitionBookingStatus(ctx context.Context, id int64, from []string, to string) (*models.Booking, error)
	CompleteFinishedBookings(ctx context.Context, today time.Time) ([]*models.Booking, error)
	GetUserBookings(ctx context.Context, userID int64) ([]*models.Booking, error)
	GetProviderBookings(ctx context.Context, providerID int64) ([]*models.Booking, error)
	ListBookings(ctx context.Context) ([]*models.Booking, error)

	GetProvider(ctx context.Context, id int64) (*models.Provider, error)
	GetProviderByUserID(ctx context.Context, userID int64) (*models.Provider, error)
}

// CatalogRepository stores stays, rooms and providers.
type CatalogRepository interface {
	CreateStay(ctx context.Context, stay models.Stay) error
	GetStay(ctx context.Context, kind models.RoomKind, id int64) (models.Stay, error)
	ListStays(ctx context.Context, kind models.RoomKind) ([]models.Stay, error)
	CreateRoom(ctx context.Context, room models.Room) error
	ListRooms(ctx context.Context, kind models.RoomKind, stayID int64) ([]models.Room, error)
	GetProviderByUserID(ctx context.Context, userID int64) (*models.Provider, error)
}

// CacheRepository backs the stay search cache and the per-actor booking rate limit.
type CacheRepository interface {
	// Generation returns the current search cache generation. Bumping it
	// orphans every entry written under an older generation.
	Generation(ctx context.Context) (int64, error)
	BumpGeneration(ctx context.Context) error
	GetSearch(ctx context.Context, key string) ([]byte, bool, error)
	SetSearch(ctx context.Context, key string, value []byte, ttl time.Duration) error
	CheckRateLimit(ctx context.Context, actorID int64, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// LedgerWriter mirrors bookings into an external spreadsheet.
type LedgerWriter interface {
	UpsertBooking(ctx context.Context, booking *models.Booking) error
	UpdateBookingStatus(ctx context.Context, bookingID int64, status string) error
}

type SyncWorker interface {
	EnqueueTask(ctx context.Context, taskType string, bookingID int64, booking *models.Booking, status string) error
}

type AvailabilityService interface {
	AvailableRooms(ctx context.Context, tag string, checkIn, checkOut time.Time) ([]models.AvailableRoom, error)
	SearchStays(ctx context.Context, checkIn, checkOut time.Time, tag, city string) ([]models.StaySummary, error)
}

type BookingService interface {
	Today() time.Time
	Create(ctx context.Context, actor models.Actor, tag string, roomID int64, checkIn, checkOut time.Time) (*models.Booking, error)
	Cancel(ctx context.Context, actor models.Actor, id int64) (*models.Booking, error)
	Confirm(ctx context.Context, actor models.Actor, id int64) (*models.Booking, error)
	Reject(ctx context.Context, actor models.Actor, id int64) (*models.Booking, error)
	AutoComplete(ctx context.Context) (int64, error)
	GetBooking(ctx context.Context, actor models.Actor, id int64) (*models.Booking, error)
	MyBookings(ctx context.Context, actor models.Actor) ([]*models.Booking, error)
	ProviderBookings(ctx context.Context, actor models.Actor, providerID int64) ([]*models.Booking, error)
	ListBookings(ctx context.Context, actor models.Actor) ([]*models.Booking, error)
}

type ListingService interface {
	ListStays(ctx context.Context, tag string) ([]models.Stay, error)
	CreateStay(ctx context.Context, actor models.Actor, tag string, stay models.Stay) (models.Stay, error)
	ListRooms(ctx context.Context, tag string, stayID int64) ([]models.Room, error)
	CreateRoom(ctx context.Context, actor models.Actor, tag string, stayID int64, room models.Room) (models.Room, error)
}
