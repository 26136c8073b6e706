package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bstn/internal/domain"
	"bstn/internal/models"
	"bstn/internal/registry"

	"github.com/rs/zerolog"
)

// ListingService manages the stay and room catalog of each kind.
// New stays and rooms change search results, so every create invalidates the
// search cache when one is set.
type ListingService struct {
	repo   domain.CatalogRepository
	cache  domain.CacheRepository
	logger *zerolog.Logger
}

// NewListingService builds the service; cache may be nil.
func NewListingService(repo domain.CatalogRepository, cache domain.CacheRepository, logger *zerolog.Logger) *ListingService {
	return &ListingService{repo: repo, cache: cache, logger: logger}
}

func (s *ListingService) ListStays(ctx context.Context, tag string) ([]models.Stay, error) {
	kind, err := registry.Resolve(tag)
	if err != nil {
		return nil, err
	}
	return s.repo.ListStays(ctx, kind.Tag)
}

// CreateStay stores a stay owned by the acting provider. An admin may create
// a stay on behalf of any provider named in the stay itself.
func (s *ListingService) CreateStay(ctx context.Context, actor models.Actor, tag string, stay models.Stay) (models.Stay, error) {
	kind, err := registry.Resolve(tag)
	if err != nil {
		return nil, err
	}
	if stay == nil || stay.Kind() != kind.Tag {
		return nil, fmt.Errorf("%w: expected a %s", ErrValidation, kind.StayLabel)
	}

	base := stay.Base()
	base.Name = strings.TrimSpace(base.Name)
	if base.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if base.TotalRooms < 0 {
		return nil, fmt.Errorf("%w: total_rooms cannot be negative", ErrValidation)
	}

	if !actor.IsAdmin() {
		provider, err := s.provider(ctx, actor)
		if err != nil {
			return nil, err
		}
		base.ProviderID = provider.ID
	}

	if err := s.repo.CreateStay(ctx, stay); err != nil {
		return nil, err
	}
	s.invalidateSearch(ctx)
	s.logger.Info().
		Str("stay_type", string(kind.Tag)).
		Int64("stay_id", base.ID).
		Int64("provider_id", base.ProviderID).
		Msg("stay created")
	return stay, nil
}

// ListRooms lists the rooms of one stay.
func (s *ListingService) ListRooms(ctx context.Context, tag string, stayID int64) ([]models.Room, error) {
	kind, err := registry.Resolve(tag)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.GetStay(ctx, kind.Tag, stayID); err != nil {
		return nil, err
	}
	return s.repo.ListRooms(ctx, kind.Tag, stayID)
}

// CreateRoom adds a room to a stay. Only the stay's provider or an admin may.
func (s *ListingService) CreateRoom(
	ctx context.Context,
	actor models.Actor,
	tag string,
	stayID int64,
	room models.Room,
) (models.Room, error) {
	kind, err := registry.Resolve(tag)
	if err != nil {
		return nil, err
	}
	if room == nil || room.Kind() != kind.Tag {
		return nil, fmt.Errorf("%w: expected a %s", ErrValidation, strings.ToLower(kind.Label))
	}

	stay, err := s.repo.GetStay(ctx, kind.Tag, stayID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		provider, err := s.provider(ctx, actor)
		if err != nil {
			return nil, err
		}
		if stay.Base().ProviderID != provider.ID {
			return nil, ErrForbidden
		}
	}

	base := room.Base()
	base.Name = strings.TrimSpace(base.Name)
	switch {
	case base.Name == "":
		return nil, fmt.Errorf("%w: room_name is required", ErrValidation)
	case base.PricePerNight < 0:
		return nil, fmt.Errorf("%w: price_per_night cannot be negative", ErrValidation)
	case base.MaxGuests < 0:
		return nil, fmt.Errorf("%w: max_guest_per_room cannot be negative", ErrValidation)
	}
	base.StayID = stay.Base().ID

	if err := s.repo.CreateRoom(ctx, room); err != nil {
		return nil, err
	}
	s.invalidateSearch(ctx)
	room.SetStay(stay)
	s.logger.Info().
		Str("room_type", string(kind.Tag)).
		Int64("room_id", base.ID).
		Int64("stay_id", base.StayID).
		Msg("room created")
	return room, nil
}

func (s *ListingService) invalidateSearch(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.BumpGeneration(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("search cache invalidation failed")
	}
}

func (s *ListingService) provider(ctx context.Context, actor models.Actor) (*models.Provider, error) {
	provider, err := s.repo.GetProviderByUserID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: provider profile required", ErrForbidden)
		}
		return nil, err
	}
	return provider, nil
}
