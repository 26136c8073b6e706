package models

import "time"

// Room is one bookable unit of a stay. Each kind lives in its own table and
// references exactly one parent stay of the matching kind.
type Room interface {
	Kind() RoomKind
	Base() *RoomBase
	// Stay returns the parent stay, nil when it was not loaded.
	Stay() Stay
	// SetStay attaches the loaded parent stay.
	SetStay(Stay)
	// Variant is the hotel room category or the resort villa type.
	Variant() string
	SetVariant(string)
}

// RoomBase holds the fields shared by every room type.
type RoomBase struct {
	ID            int64     `json:"id" yaml:"id"`
	StayID        int64     `json:"stay_id" yaml:"stay_id"`
	Name          string    `json:"room_name" yaml:"room_name"`
	MaxGuests     int       `json:"max_guest_per_room" yaml:"max_guest_per_room"`
	PricePerNight int64     `json:"price_per_night" yaml:"price_per_night"`
	Utils         string    `json:"room_utils" yaml:"room_utils"`
	Amenities     string    `json:"amenities" yaml:"amenities"`
	IsAvailable   bool      `json:"is_available" yaml:"is_available"`
	HasAC         bool      `json:"has_ac" yaml:"has_ac"`
	HasHeating    bool      `json:"has_heating" yaml:"has_heating"`
	CreatedAt     time.Time `json:"created_at" yaml:"-"`
	UpdatedAt     time.Time `json:"updated_at" yaml:"-"`
}

type HotelRoom struct {
	RoomBase `yaml:",inline"`
	Category string `json:"category" yaml:"category"`
	Hotel    *Hotel `json:"-" yaml:"-"`
}

func (r *HotelRoom) Kind() RoomKind { return KindHotel }
func (r *HotelRoom) Base() *RoomBase { return &r.RoomBase }
func (r *HotelRoom) Variant() string { return r.Category }
func (r *HotelRoom) SetVariant(v string) { r.Category = v }

func (r *HotelRoom) Stay() Stay {
	if r.Hotel == nil {
		return nil
	}
	return r.Hotel
}

func (r *HotelRoom) SetStay(s Stay) {
	if h, ok := s.(*Hotel); ok {
		r.Hotel = h
	}
}

type ResortRoom struct {
	RoomBase  `yaml:",inline"`
	VillaType string  `json:"villa_type" yaml:"villa_type"`
	Resort    *Resort `json:"-" yaml:"-"`
}

func (r *ResortRoom) Kind() RoomKind { return KindResort }
func (r *ResortRoom) Base() *RoomBase { return &r.RoomBase }
func (r *ResortRoom) Variant() string { return r.VillaType }
func (r *ResortRoom) SetVariant(v string) { r.VillaType = v }

func (r *ResortRoom) Stay() Stay {
	if r.Resort == nil {
		return nil
	}
	return r.Resort
}

func (r *ResortRoom) SetStay(s Stay) {
	if rs, ok := s.(*Resort); ok {
		r.Resort = rs
	}
}

type HomeStayRoom struct {
	RoomBase `yaml:",inline"`
	HomeStay *HomeStay `json:"-" yaml:"-"`
}

func (r *HomeStayRoom) Kind() RoomKind { return KindHomeStay }
func (r *HomeStayRoom) Base() *RoomBase { return &r.RoomBase }
func (r *HomeStayRoom) Variant() string { return "" }
func (r *HomeStayRoom) SetVariant(string) {}

func (r *HomeStayRoom) Stay() Stay {
	if r.HomeStay == nil {
		return nil
	}
	return r.HomeStay
}

func (r *HomeStayRoom) SetStay(s Stay) {
	if h, ok := s.(*HomeStay); ok {
		r.HomeStay = h
	}
}

// NewRoom returns an empty room of the given kind, or nil for an unknown kind.
func NewRoom(kind RoomKind) Room {
	switch kind {
	case KindHotel:
		return &HotelRoom{}
	case KindResort:
		return &ResortRoom{}
	case KindHomeStay:
		return &HomeStayRoom{}
	default:
		return nil
	}
}

// RoomProvider resolves the provider owning a room through its parent stay.
// The second result is false when the stay is not loaded or has no provider.
func RoomProvider(r Room) (int64, bool) {
	stay := r.Stay()
	if stay == nil {
		return 0, false
	}
	id := stay.Base().ProviderID
	return id, id != 0
}

// AvailableRoom is a free room labelled with its kind.
type AvailableRoom struct {
	RoomType RoomKind `json:"room_type"`
	StayName string   `json:"stay_name"`
	Room     Room     `json:"room"`
}
