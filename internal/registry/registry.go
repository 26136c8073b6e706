// Package registry resolves room type tags to the storage and labels of each
// independently modelled room kind.
package registry

import (
	"fmt"
	"strings"

	"bstn/internal/domain"
	"bstn/internal/models"
)

// Kind describes one room kind: its canonical tag, the tables its rooms and
// stays live in, and the path segment its stays are listed under.
type Kind struct {
	Tag       models.RoomKind
	Label     string
	StayLabel string
	RoomTable string
	StayTable string
	StayPath  string
}

// NewRoom returns an empty room of this kind.
func (k Kind) NewRoom() models.Room { return models.NewRoom(k.Tag) }

// NewStay returns an empty stay of this kind.
func (k Kind) NewStay() models.Stay { return models.NewStay(k.Tag) }

func (k Kind) String() string { return string(k.Tag) }

var kinds = []Kind{
	{
		Tag:       models.KindHotel,
		Label:     "Hotel room",
		StayLabel: "Hotel",
		RoomTable: "hotel_rooms",
		StayTable: "hotels",
		StayPath:  "hotels",
	},
	{
		Tag:       models.KindResort,
		Label:     "Resort room",
		StayLabel: "Resort",
		RoomTable: "resort_rooms",
		StayTable: "resorts",
		StayPath:  "resorts",
	},
	{
		Tag:       models.KindHomeStay,
		Label:     "Homestay room",
		StayLabel: "Homestay",
		RoomTable: "homestay_rooms",
		StayTable: "homestays",
		StayPath:  "homestay",
	},
}

var aliases = map[string]models.RoomKind{
	"hotel":        models.KindHotel,
	"hotelroom":    models.KindHotel,
	"hotel_room":   models.KindHotel,
	"hotels":       models.KindHotel,
	"resort":       models.KindResort,
	"resortroom":   models.KindResort,
	"resort_room":  models.KindResort,
	"resorts":      models.KindResort,
	"homestay":     models.KindHomeStay,
	"home_stay":    models.KindHomeStay,
	"homestayroom": models.KindHomeStay,
	"homestays":    models.KindHomeStay,
}

// All returns every kind in the fixed order hotel, resort, homestay.
func All() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

// Resolve maps a case-insensitive tag or synonym to its kind.
func Resolve(tag string) (Kind, error) {
	key := strings.ToLower(strings.TrimSpace(tag))
	if kind, ok := aliases[key]; ok {
		return MustGet(kind), nil
	}
	return Kind{}, fmt.Errorf("%w: %q", domain.ErrInvalidRoomType, tag)
}

// Scope resolves an optional tag: empty means every kind.
func Scope(tag string) ([]Kind, error) {
	if strings.TrimSpace(tag) == "" {
		return All(), nil
	}
	kind, err := Resolve(tag)
	if err != nil {
		return nil, err
	}
	return []Kind{kind}, nil
}

// Get returns the kind registered for a canonical tag.
func Get(tag models.RoomKind) (Kind, bool) {
	for _, k := range kinds {
		if k.Tag == tag {
			return k, true
		}
	}
	return Kind{}, false
}

// MustGet is Get for tags known at compile time.
func MustGet(tag models.RoomKind) Kind {
	k, ok := Get(tag)
	if !ok {
		panic(fmt.Sprintf("registry: unknown room kind %q", tag))
	}
	return k
}
