package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestBooking_NightsAndOverlap(t *testing.T) {
	b := &Booking{CheckIn: date(t, "2025-06-10"), CheckOut: date(t, "2025-06-13")}
	assert.Equal(t, int64(3), b.Nights())

	t.Run("Intersecting", func(t *testing.T) {
		assert.True(t, b.Overlaps(date(t, "2025-06-12"), date(t, "2025-06-15")))
		assert.True(t, b.Overlaps(date(t, "2025-06-09"), date(t, "2025-06-11")))
		assert.True(t, b.Overlaps(date(t, "2025-06-11"), date(t, "2025-06-12")))
	})

	t.Run("BackToBack", func(t *testing.T) {
		assert.False(t, b.Overlaps(date(t, "2025-06-13"), date(t, "2025-06-15")))
		assert.False(t, b.Overlaps(date(t, "2025-06-08"), date(t, "2025-06-10")))
	})
}

func TestBooking_Statuses(t *testing.T) {
	assert.True(t, (&Booking{Status: StatusPending}).IsActive())
	assert.True(t, (&Booking{Status: StatusConfirmed}).IsActive())
	assert.False(t, (&Booking{Status: StatusRejected}).IsActive())

	for _, s := range []string{StatusCancelled, StatusCompleted, StatusRejected} {
		assert.True(t, IsTerminal(s), s)
	}
	assert.False(t, IsTerminal(StatusPending))
	assert.False(t, IsTerminal(StatusConfirmed))
}

func TestBooking_MarshalJSON(t *testing.T) {
	b := Booking{
		ID:         7,
		RoomKind:   KindResort,
		RoomID:     3,
		CheckIn:    date(t, "2025-06-10"),
		CheckOut:   date(t, "2025-06-12"),
		TotalPrice: 400,
		Status:     StatusPending,
	}
	data, err := json.Marshal(&b)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "2025-06-10", out["check_in"])
	assert.Equal(t, "2025-06-12", out["check_out"])
	assert.Equal(t, float64(2), out["nights"])
	assert.Equal(t, "resort", out["room_type"])
	assert.Equal(t, float64(400), out["total_price"])

	var back Booking
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, b.CheckIn, back.CheckIn)
	assert.Equal(t, b.CheckOut, back.CheckOut)
	assert.Equal(t, KindResort, back.RoomKind)
	assert.Equal(t, int64(400), back.TotalPrice)
}

func TestBooking_UnmarshalJSON(t *testing.T) {
	t.Run("InsidePayload", func(t *testing.T) {
		type payload struct {
			Booking *Booking `json:"booking"`
			Status  string   `json:"status"`
		}
		in := payload{
			Booking: &Booking{ID: 9, CheckIn: date(t, "2025-07-01"), CheckOut: date(t, "2025-07-05"), Version: 2},
			Status:  StatusConfirmed,
		}
		data, err := json.Marshal(in)
		require.NoError(t, err)

		var out payload
		require.NoError(t, json.Unmarshal(data, &out))
		require.NotNil(t, out.Booking)
		assert.Equal(t, int64(9), out.Booking.ID)
		assert.Equal(t, int64(4), out.Booking.Nights())
		assert.Equal(t, int64(2), out.Booking.Version)
	})

	t.Run("MissingDates", func(t *testing.T) {
		var b Booking
		require.NoError(t, json.Unmarshal([]byte(`{"id":3}`), &b))
		assert.Equal(t, int64(3), b.ID)
		assert.True(t, b.CheckIn.IsZero())
	})

	t.Run("BadDate", func(t *testing.T) {
		var b Booking
		assert.Error(t, json.Unmarshal([]byte(`{"check_in":"01/07/2025"}`), &b))
	})
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-06-01")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, d.Location())
	assert.Equal(t, "2025-06-01", FormatDate(d))

	_, err = ParseDate("01/06/2025")
	assert.Error(t, err)
	_, err = ParseDate("")
	assert.Error(t, err)
}

func TestDateOf(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	tm := time.Date(2025, 6, 1, 23, 30, 0, 0, loc)
	assert.Equal(t, "2025-06-01", FormatDate(DateOf(tm)))
}

func TestRoomProvider(t *testing.T) {
	for _, kind := range []RoomKind{KindHotel, KindResort, KindHomeStay} {
		t.Run(string(kind), func(t *testing.T) {
			room := NewRoom(kind)
			require.NotNil(t, room)
			assert.Equal(t, kind, room.Kind())

			_, ok := RoomProvider(room)
			assert.False(t, ok, "no stay loaded")

			stay := NewStay(kind)
			require.NotNil(t, stay)
			room.SetStay(stay)
			_, ok = RoomProvider(room)
			assert.False(t, ok, "stay without provider")

			stay.Base().ProviderID = 42
			id, ok := RoomProvider(room)
			assert.True(t, ok)
			assert.Equal(t, int64(42), id)
		})
	}

	assert.Nil(t, NewRoom("villa"))
	assert.Nil(t, NewStay("villa"))
}

func TestRoomVariant(t *testing.T) {
	hotel := NewRoom(KindHotel)
	hotel.SetVariant("deluxe")
	assert.Equal(t, "deluxe", hotel.Variant())

	resort := NewRoom(KindResort)
	resort.SetVariant("beach")
	assert.Equal(t, "beach", resort.Variant())

	home := NewRoom(KindHomeStay)
	home.SetVariant("ignored")
	assert.Equal(t, "", home.Variant())
}

func TestStayJSONFlattensAttributes(t *testing.T) {
	h := &Hotel{}
	h.Name = "Grand"
	h.StarRating = 5
	data, err := json.Marshal(h)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "Grand", out["name"])
	assert.Equal(t, float64(5), out["star_rating"])
}
