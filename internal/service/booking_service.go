package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bstn/internal/domain"
	"bstn/internal/events"
	"bstn/internal/metrics"
	"bstn/internal/models"
	"bstn/internal/registry"

	"github.com/rs/zerolog"
)

type BookingService struct {
	repo       domain.Repository
	eventBus   domain.EventPublisher
	syncWorker domain.SyncWorker
	cache      domain.CacheRepository
	rateLimit  int
	rateWindow time.Duration
	location   *time.Location
	now        func() time.Time
	logger     *zerolog.Logger
}

// BookingOption customizes a BookingService.
type BookingOption func(*BookingService)

// WithClock replaces the wall clock used to decide "today".
func WithClock(now func() time.Time) BookingOption {
	return func(s *BookingService) { s.now = now }
}

// WithLocation sets the time zone in which "today" is evaluated.
func WithLocation(loc *time.Location) BookingOption {
	return func(s *BookingService) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithCache attaches the search cache, invalidated on every booking change,
// and the booking rate limiter. A non-positive limit disables rate limiting.
func WithCache(cache domain.CacheRepository, limit int, window time.Duration) BookingOption {
	return func(s *BookingService) {
		s.cache = cache
		s.rateLimit = limit
		s.rateWindow = window
	}
}

func NewBookingService(
	repo domain.Repository,
	eventBus domain.EventPublisher,
	syncWorker domain.SyncWorker,
	logger *zerolog.Logger,
	opts ...BookingOption,
) *BookingService {
	s := &BookingService{
		repo:       repo,
		eventBus:   eventBus,
		syncWorker: syncWorker,
		location:   time.UTC,
		now:        time.Now,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rateWindow <= 0 {
		s.rateWindow = models.RateLimitWindow * time.Second
	}
	return s
}

// Today is the current calendar date in the service's time zone.
func (s *BookingService) Today() time.Time {
	return models.DateOf(s.now().In(s.location))
}

// Create books a room for [checkIn, checkOut) as a PENDING booking owned by
// the actor. The overlap check and the insert run in one transaction.
func (s *BookingService) Create(
	ctx context.Context,
	actor models.Actor,
	tag string,
	roomID int64,
	checkIn, checkOut time.Time,
) (*models.Booking, error) {
	if err := s.checkRateLimit(ctx, actor); err != nil {
		return nil, err
	}

	kind, err := registry.Resolve(tag)
	if err != nil {
		return nil, err
	}

	room, err := s.repo.GetRoom(ctx, kind.Tag, roomID)
	if err != nil {
		return nil, err
	}

	checkIn, checkOut = models.DateOf(checkIn), models.DateOf(checkOut)
	if err := ValidateStayDates(checkIn, checkOut, s.Today()); err != nil {
		return nil, err
	}

	providerID, ok := models.RoomProvider(room)
	if !ok {
		s.logger.Error().
			Str("room_type", string(kind.Tag)).
			Int64("room_id", roomID).
			Msg("room has no provider linked")
		return nil, ErrNoProviderLinked
	}

	booking := &models.Booking{
		UserID:     actor.UserID,
		ProviderID: providerID,
		RoomKind:   kind.Tag,
		RoomID:     room.Base().ID,
		RoomName:   room.Base().Name,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		TotalPrice: room.Base().PricePerNight * models.NightsBetween(checkIn, checkOut),
		Status:     models.StatusPending,
	}
	if err := s.repo.CreateBookingWithLock(ctx, booking); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("booking_id", booking.ID).
		Int64("user_id", actor.UserID).
		Str("room_type", string(kind.Tag)).
		Int64("room_id", booking.RoomID).
		Msg("booking created")

	s.afterChange(ctx, events.EventBookingCreated, booking, models.TaskUpsert, models.RoleGuest, actor.UserID)
	return booking, nil
}

// Cancel lets the guest drop a pending or confirmed booking before its
// check-in day.
func (s *BookingService) Cancel(ctx context.Context, actor models.Actor, id int64) (*models.Booking, error) {
	booking, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.UserID != actor.UserID {
		return nil, ErrForbidden
	}
	if !booking.IsActive() {
		return nil, fmt.Errorf("%w: booking is %s", ErrInvalidTransition, booking.Status)
	}
	if !s.Today().Before(booking.CheckIn) {
		return nil, ErrTooLate
	}

	updated, err := s.repo.TransitionBookingStatus(ctx, id, models.ActiveStatuses, models.StatusCancelled)
	if err != nil {
		return nil, err
	}
	s.afterChange(ctx, events.EventBookingCancelled, updated, models.TaskUpdateStatus, models.RoleGuest, actor.UserID)
	return updated, nil
}

func (s *BookingService) Confirm(ctx context.Context, actor models.Actor, id int64) (*models.Booking, error) {
	return s.decide(ctx, actor, id, models.StatusConfirmed, events.EventBookingConfirmed)
}

func (s *BookingService) Reject(ctx context.Context, actor models.Actor, id int64) (*models.Booking, error) {
	return s.decide(ctx, actor, id, models.StatusRejected, events.EventBookingRejected)
}

// decide applies a provider's answer to a pending booking.
func (s *BookingService) decide(ctx context.Context, actor models.Actor, id int64, to, eventType string) (*models.Booking, error) {
	provider, err := s.actorProvider(ctx, actor)
	if err != nil {
		return nil, err
	}

	booking, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.ProviderID != provider.ID {
		return nil, ErrForbidden
	}
	if booking.Status != models.StatusPending {
		return nil, fmt.Errorf("%w: booking is %s", ErrInvalidTransition, booking.Status)
	}

	updated, err := s.repo.TransitionBookingStatus(ctx, id, []string{models.StatusPending}, to)
	if err != nil {
		return nil, err
	}
	s.afterChange(ctx, eventType, updated, models.TaskUpdateStatus, models.RoleProvider, actor.UserID)
	return updated, nil
}

// AutoComplete moves every confirmed booking whose check-out day has passed
// to COMPLETED and returns how many moved. Running it again changes nothing.
func (s *BookingService) AutoComplete(ctx context.Context) (int64, error) {
	completed, err := s.repo.CompleteFinishedBookings(ctx, s.Today())
	if err != nil {
		return 0, fmt.Errorf("auto-complete bookings: %w", err)
	}
	if len(completed) == 0 {
		return 0, nil
	}

	for _, b := range completed {
		s.afterChange(ctx, events.EventBookingCompleted, b, models.TaskUpdateStatus, "system", 0)
	}
	metrics.AddCompleted(int64(len(completed)))
	s.logger.Info().Int("count", len(completed)).Msg("bookings auto-completed")
	return int64(len(completed)), nil
}

// GetBooking returns one booking to its guest, its provider or an admin.
func (s *BookingService) GetBooking(ctx context.Context, actor models.Actor, id int64) (*models.Booking, error) {
	booking, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.IsAdmin() || booking.UserID == actor.UserID {
		return booking, nil
	}

	provider, err := s.repo.GetProviderByUserID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrForbidden
		}
		return nil, err
	}
	if provider.ID != booking.ProviderID {
		return nil, ErrForbidden
	}
	return booking, nil
}

// MyBookings lists the actor's own bookings, newest first.
func (s *BookingService) MyBookings(ctx context.Context, actor models.Actor) ([]*models.Booking, error) {
	s.sweep(ctx)
	return s.repo.GetUserBookings(ctx, actor.UserID)
}

// ProviderBookings lists the bookings of a provider profile, newest first.
// Only the profile's owner or an admin may read them.
func (s *BookingService) ProviderBookings(ctx context.Context, actor models.Actor, providerID int64) ([]*models.Booking, error) {
	if !actor.IsAdmin() {
		provider, err := s.actorProvider(ctx, actor)
		if err != nil {
			return nil, err
		}
		if provider.ID != providerID {
			return nil, ErrForbidden
		}
	} else if _, err := s.repo.GetProvider(ctx, providerID); err != nil {
		return nil, err
	}

	s.sweep(ctx)
	return s.repo.GetProviderBookings(ctx, providerID)
}

// ListBookings lists every booking for an admin.
func (s *BookingService) ListBookings(ctx context.Context, actor models.Actor) ([]*models.Booking, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	return s.repo.ListBookings(ctx)
}

// sweep runs AutoComplete ahead of a status-dependent read. A failure only
// leaves stale statuses, so the read goes on.
func (s *BookingService) sweep(ctx context.Context) {
	if _, err := s.AutoComplete(ctx); err != nil {
		s.logger.Error().Err(err).Msg("auto-complete before read failed")
	}
}

// actorProvider loads the provider profile of the actor; an actor without
// one is forbidden.
func (s *BookingService) actorProvider(ctx context.Context, actor models.Actor) (*models.Provider, error) {
	provider, err := s.repo.GetProviderByUserID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: provider profile required", ErrForbidden)
		}
		return nil, err
	}
	return provider, nil
}

func (s *BookingService) checkRateLimit(ctx context.Context, actor models.Actor) error {
	if s.cache == nil || s.rateLimit <= 0 {
		return nil
	}
	allowed, err := s.cache.CheckRateLimit(ctx, actor.UserID, s.rateLimit, s.rateWindow)
	if err != nil {
		s.logger.Warn().Err(err).Int64("user_id", actor.UserID).Msg("booking rate limit check failed")
		return nil
	}
	if !allowed {
		return ErrRateLimited
	}
	return nil
}

// afterChange fans a committed booking change out to events, the ledger and
// the search cache. Failures are logged; the change itself already stands.
func (s *BookingService) afterChange(
	ctx context.Context,
	eventType string,
	booking *models.Booking,
	taskType string,
	changedBy string,
	changedByID int64,
) {
	s.publishEvent(eventType, booking, changedBy, changedByID)
	s.enqueueSync(ctx, booking, taskType)

	if s.cache != nil {
		if err := s.cache.BumpGeneration(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("search cache invalidation failed")
		}
	}
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, changedBy string, changedByID int64) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:   booking.ID,
		UserID:      booking.UserID,
		ProviderID:  booking.ProviderID,
		RoomType:    string(booking.RoomKind),
		RoomID:      booking.RoomID,
		CheckIn:     models.FormatDate(booking.CheckIn),
		CheckOut:    models.FormatDate(booking.CheckOut),
		TotalPrice:  booking.TotalPrice,
		Status:      booking.Status,
		ChangedBy:   changedBy,
		ChangedByID: changedByID,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}

func (s *BookingService) enqueueSync(ctx context.Context, booking *models.Booking, taskType string) {
	if s.syncWorker == nil {
		return
	}

	var status string
	if taskType == models.TaskUpdateStatus {
		status = booking.Status
	}

	if err := s.syncWorker.EnqueueTask(ctx, taskType, booking.ID, booking, status); err != nil {
		s.logger.Error().Err(err).Int64("booking_id", booking.ID).Str("task", taskType).Msg("ledger enqueue error")
	}
}
