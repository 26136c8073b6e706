package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"bstn/internal/domain"
	"bstn/internal/metrics"
	"bstn/internal/models"
	"bstn/internal/registry"

	"github.com/rs/zerolog"
)

// ValidateStayDates checks a requested stay window: check-out after check-in
// and check-in not before today.
func ValidateStayDates(checkIn, checkOut, today time.Time) error {
	checkIn, checkOut, today = models.DateOf(checkIn), models.DateOf(checkOut), models.DateOf(today)
	if !checkOut.After(checkIn) {
		return fmt.Errorf("%w: check_out must be after check_in", ErrInvalidDateRange)
	}
	if checkIn.Before(today) {
		return fmt.Errorf("%w: check_in cannot be in the past", ErrInvalidDateRange)
	}
	return nil
}

// AvailabilityService answers which rooms and stays are free for a date range.
type AvailabilityService struct {
	repo     domain.Repository
	cache    domain.CacheRepository
	cacheTTL time.Duration
	logger   *zerolog.Logger
}

// NewAvailabilityService builds the service. cache may be nil, in which case
// every search hits the store.
func NewAvailabilityService(
	repo domain.Repository,
	cache domain.CacheRepository,
	cacheTTL time.Duration,
	logger *zerolog.Logger,
) *AvailabilityService {
	if cacheTTL <= 0 {
		cacheTTL = models.DefaultSearchCacheTTL * time.Second
	}
	return &AvailabilityService{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// AvailableRooms lists free rooms of one kind, or of every kind when tag is
// empty, each labelled with its kind.
func (s *AvailabilityService) AvailableRooms(ctx context.Context, tag string, checkIn, checkOut time.Time) ([]models.AvailableRoom, error) {
	kinds, err := registry.Scope(tag)
	if err != nil {
		return nil, err
	}

	result := make([]models.AvailableRoom, 0)
	for _, kind := range kinds {
		rooms, err := s.repo.AvailableRooms(ctx, kind.Tag, checkIn, checkOut)
		if err != nil {
			return nil, fmt.Errorf("available %s rooms: %w", kind.Tag, err)
		}
		for _, room := range rooms {
			entry := models.AvailableRoom{RoomType: kind.Tag, Room: room}
			if stay := room.Stay(); stay != nil {
				entry.StayName = stay.Base().Name
			}
			result = append(result, entry)
		}
	}
	return result, nil
}

// SearchStays groups free rooms by their parent stay. Stays appear in the
// order their first free room was seen; the summary price is that room's
// nightly price.
func (s *AvailabilityService) SearchStays(ctx context.Context, checkIn, checkOut time.Time, tag, city string) ([]models.StaySummary, error) {
	kinds, err := registry.Scope(tag)
	if err != nil {
		return nil, err
	}

	key, cached := s.cachedSearch(ctx, kinds, checkIn, checkOut, city)
	if cached != nil {
		return cached, nil
	}

	type stayKey struct {
		kind models.RoomKind
		id   int64
	}
	index := make(map[stayKey]int)
	result := make([]models.StaySummary, 0)

	for _, kind := range kinds {
		rooms, err := s.repo.AvailableRooms(ctx, kind.Tag, checkIn, checkOut)
		if err != nil {
			return nil, fmt.Errorf("available %s rooms: %w", kind.Tag, err)
		}
		for _, room := range rooms {
			stay := room.Stay()
			if stay == nil {
				continue
			}
			base := stay.Base()
			if city != "" && !strings.EqualFold(base.City, city) {
				continue
			}

			k := stayKey{kind: kind.Tag, id: base.ID}
			if i, ok := index[k]; ok {
				result[i].AvailableRoomCount++
				continue
			}
			index[k] = len(result)
			result = append(result, models.StaySummary{
				ID:                 base.ID,
				Type:               kind.Tag,
				Name:               base.Name,
				City:               base.City,
				PricePerNight:      room.Base().PricePerNight,
				AvailableRoomCount: 1,
			})
		}
	}

	s.storeSearch(ctx, key, result)
	return result, nil
}

func searchKey(gen int64, kinds []registry.Kind, checkIn, checkOut time.Time, city string) string {
	tags := make([]string, len(kinds))
	for i, k := range kinds {
		tags[i] = string(k.Tag)
	}
	return fmt.Sprintf("%d:%s:%s:%s:%s",
		gen,
		models.FormatDate(checkIn),
		models.FormatDate(checkOut),
		strings.Join(tags, ","),
		strings.ToLower(city),
	)
}

// cachedSearch returns the key the result should be stored under and the
// cached result, if any. An empty key means caching is off for this call.
func (s *AvailabilityService) cachedSearch(
	ctx context.Context,
	kinds []registry.Kind,
	checkIn, checkOut time.Time,
	city string,
) (string, []models.StaySummary) {
	if s.cache == nil {
		return "", nil
	}

	gen, err := s.cache.Generation(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("search cache generation unavailable")
		return "", nil
	}
	key := searchKey(gen, kinds, checkIn, checkOut, city)

	data, ok, err := s.cache.GetSearch(ctx, key)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("search cache read failed")
		return key, nil
	}
	if !ok {
		metrics.IncSearchCache(false)
		return key, nil
	}

	var result []models.StaySummary
	if err := json.Unmarshal(data, &result); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("search cache entry corrupted")
		return key, nil
	}
	metrics.IncSearchCache(true)
	return key, result
}

func (s *AvailabilityService) storeSearch(ctx context.Context, key string, result []models.StaySummary) {
	if s.cache == nil || key == "" {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.cache.SetSearch(ctx, key, data, s.cacheTTL); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("search cache write failed")
	}
}
