package models

import "time"

// RoomKind is the canonical tag of one of the independently modelled room types.
type RoomKind string

const (
	KindHotel    RoomKind = "hotel"
	KindResort   RoomKind = "resort"
	KindHomeStay RoomKind = "homestay"
)

// Stay is a property owned by a provider: a hotel, resort or homestay.
type Stay interface {
	Kind() RoomKind
	Base() *StayBase
	// Attributes returns the type-specific attribute block.
	Attributes() interface{}
}

// StayBase holds the fields shared by every stay type.
type StayBase struct {
	ID           int64     `json:"id" yaml:"id"`
	ProviderID   int64     `json:"provider_id" yaml:"provider_id"`
	Name         string    `json:"name" yaml:"name"`
	Description  string    `json:"description" yaml:"description"`
	TotalRooms   int       `json:"total_rooms" yaml:"total_rooms"`
	CheckInTime  string    `json:"check_in_time" yaml:"check_in_time"`
	CheckOutTime string    `json:"check_out_time" yaml:"check_out_time"`
	Address      string    `json:"address" yaml:"address"`
	City         string    `json:"city" yaml:"city"`
	Country      string    `json:"country" yaml:"country"`
	Latitude     float64   `json:"latitude" yaml:"latitude"`
	Longitude    float64   `json:"longitude" yaml:"longitude"`
	HasWifi      bool      `json:"has_wifi" yaml:"has_wifi"`
	HasParking   bool      `json:"has_parking" yaml:"has_parking"`
	HasKitchen   bool      `json:"has_kitchen" yaml:"has_kitchen"`
	PetsAllowed  bool      `json:"pets_allowed" yaml:"pets_allowed"`
	IsActive     bool      `json:"is_active" yaml:"is_active"`
	CreatedAt    time.Time `json:"created_at" yaml:"-"`
	UpdatedAt    time.Time `json:"updated_at" yaml:"-"`
}

type HotelAttributes struct {
	StarRating      int  `json:"star_rating" yaml:"star_rating"`
	HasRoomService  bool `json:"has_room_service" yaml:"has_room_service"`
	HasReception24h bool `json:"has_24h_reception" yaml:"has_24h_reception"`
	HasElevator     bool `json:"has_elevator" yaml:"has_elevator"`
	HasRestaurant   bool `json:"has_restaurant" yaml:"has_restaurant"`
	AllowsWalkIn    bool `json:"allows_walk_in" yaml:"allows_walk_in"`
}

type ResortAttributes struct {
	StarRating          int    `json:"star_rating" yaml:"star_rating"`
	NumPools            int    `json:"num_pools" yaml:"num_pools"`
	HasSpa              bool   `json:"has_spa" yaml:"has_spa"`
	HasGym              bool   `json:"has_gym" yaml:"has_gym"`
	DiningType          string `json:"dining_type" yaml:"dining_type"`
	Activities          string `json:"activities" yaml:"activities"`
	AllInclusive        bool   `json:"all_inclusive" yaml:"all_inclusive"`
	AllInclusiveDetails string `json:"all_inclusive_details" yaml:"all_inclusive_details"`
}

type HomeStayAttributes struct {
	HostLivesOnProperty bool   `json:"host_lives_on_property" yaml:"host_lives_on_property"`
	SharedWithHost      bool   `json:"shared_with_host" yaml:"shared_with_host"`
	Meals               string `json:"meals" yaml:"meals"`
	HouseRules          string `json:"house_rules" yaml:"house_rules"`
	FamilyFriendly      bool   `json:"family_friendly" yaml:"family_friendly"`
	SmokingAllowed      bool   `json:"smoking_allowed" yaml:"smoking_allowed"`
}

type Hotel struct {
	StayBase        `yaml:",inline"`
	HotelAttributes `yaml:",inline"`
}

func (h *Hotel) Kind() RoomKind { return KindHotel }
func (h *Hotel) Base() *StayBase { return &h.StayBase }
func (h *Hotel) Attributes() interface{} { return &h.HotelAttributes }

type Resort struct {
	StayBase         `yaml:",inline"`
	ResortAttributes `yaml:",inline"`
}

func (r *Resort) Kind() RoomKind { return KindResort }
func (r *Resort) Base() *StayBase { return &r.StayBase }
func (r *Resort) Attributes() interface{} { return &r.ResortAttributes }

type HomeStay struct {
	StayBase           `yaml:",inline"`
	HomeStayAttributes `yaml:",inline"`
}

func (h *HomeStay) Kind() RoomKind { return KindHomeStay }
func (h *HomeStay) Base() *StayBase { return &h.StayBase }
func (h *HomeStay) Attributes() interface{} { return &h.HomeStayAttributes }

// NewStay returns an empty stay of the given kind, or nil for an unknown kind.
func NewStay(kind RoomKind) Stay {
	switch kind {
	case KindHotel:
		return &Hotel{}
	case KindResort:
		return &Resort{}
	case KindHomeStay:
		return &HomeStay{}
	default:
		return nil
	}
}

// StaySummary is one row of a stay search: a stay with at least one free room.
type StaySummary struct {
	ID                 int64    `json:"id"`
	Type               RoomKind `json:"type"`
	Name               string   `json:"name"`
	City               string   `json:"city"`
	PricePerNight      int64    `json:"price_per_night"`
	AvailableRoomCount int      `json:"available_room_count"`
}
