package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"bstn/internal/domain"
	"bstn/internal/models"
	"bstn/internal/registry"
	"bstn/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type createBookingRequest struct {
	RoomType string `json:"room_type"`
	RoomID   int64  `json:"room_id"`
	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`
}

func requireActor(w http.ResponseWriter, r *http.Request) (models.Actor, bool) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
	}
	return actor, ok
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// parseDate reads a YYYY-MM-DD value; name is used in the error message.
func parseDate(name, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("%s is required", name)
	}
	d, err := models.ParseDate(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s format; expected YYYY-MM-DD", name)
	}
	return d, nil
}

// stayWindow parses and validates the check_in/check_out query parameters.
func (s *HTTPServer) stayWindow(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	q := r.URL.Query()
	checkIn, err := parseDate("check_in", q.Get("check_in"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return time.Time{}, time.Time{}, false
	}
	checkOut, err := parseDate("check_out", q.Get("check_out"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return time.Time{}, time.Time{}, false
	}
	if err := service.ValidateStayDates(checkIn, checkOut, s.svc.Bookings.Today()); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return time.Time{}, time.Time{}, false
	}
	return checkIn, checkOut, true
}

func (s *HTTPServer) handleAvailableRooms(w http.ResponseWriter, r *http.Request) {
	checkIn, checkOut, ok := s.stayWindow(w, r)
	if !ok {
		return
	}

	rooms, err := s.svc.Availability.AvailableRooms(r.Context(), r.URL.Query().Get("room_type"), checkIn, checkOut)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(rooms), "results": rooms})
}

func (s *HTTPServer) handleSearchStays(w http.ResponseWriter, r *http.Request) {
	checkIn, checkOut, ok := s.stayWindow(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	stays, err := s.svc.Availability.SearchStays(r.Context(), checkIn, checkOut, q.Get("room_type"), q.Get("city"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(stays), "results": stays})
}

func (s *HTTPServer) handleListStays(w http.ResponseWriter, r *http.Request) {
	stays, err := s.svc.Listings.ListStays(r.Context(), r.PathValue("stay"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": stays})
}

func (s *HTTPServer) handleCreateStay(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	kind, err := registry.Resolve(r.PathValue("stay"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	stay := kind.NewStay()
	if err := json.NewDecoder(r.Body).Decode(stay); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	created, err := s.svc.Listings.CreateStay(r.Context(), actor, string(kind.Tag), stay)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *HTTPServer) handleListRooms(w http.ResponseWriter, r *http.Request) {
	stayID, ok := pathID(w, r)
	if !ok {
		return
	}
	rooms, err := s.svc.Listings.ListRooms(r.Context(), r.PathValue("stay"), stayID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": rooms})
}

func (s *HTTPServer) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	stayID, ok := pathID(w, r)
	if !ok {
		return
	}
	kind, err := registry.Resolve(r.PathValue("stay"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	room := kind.NewRoom()
	if err := json.NewDecoder(r.Body).Decode(room); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	created, err := s.svc.Listings.CreateRoom(r.Context(), actor, string(kind.Tag), stayID, room)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *HTTPServer) handleListBookings(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	bookings, err := s.svc.Bookings.ListBookings(r.Context(), actor)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": bookings})
}

func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var body createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(body.RoomType) == "" || body.RoomID <= 0 {
		writeError(w, http.StatusBadRequest, "room_type and room_id are required")
		return
	}
	checkIn, err := parseDate("check_in", body.CheckIn)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	checkOut, err := parseDate("check_out", body.CheckOut)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	booking, err := s.svc.Bookings.Create(r.Context(), actor, body.RoomType, body.RoomID, checkIn, checkOut)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

func (s *HTTPServer) handleMyBookings(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	bookings, err := s.svc.Bookings.MyBookings(r.Context(), actor)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": bookings})
}

func (s *HTTPServer) handleProviderBookings(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	providerID, ok := pathID(w, r)
	if !ok {
		return
	}
	bookings, err := s.svc.Bookings.ProviderBookings(r.Context(), actor, providerID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": bookings})
}

func (s *HTTPServer) handleProviderExport(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	providerID, ok := pathID(w, r)
	if !ok {
		return
	}
	bookings, err := s.svc.Bookings.ProviderBookings(r.Context(), actor, providerID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	provider := &models.Provider{ID: providerID}
	if s.svc.Providers != nil {
		provider, err = s.svc.Providers.GetProvider(r.Context(), providerID)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
	}

	var buf bytes.Buffer
	if err := s.svc.Exporter.WriteProviderBookings(&buf, provider, bookings); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", s.svc.Exporter.FileName(provider)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *HTTPServer) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	booking, err := s.svc.Bookings.GetBooking(r.Context(), actor, id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

type transitionFunc func(svc domain.BookingService, ctx context.Context, actor models.Actor, id int64) (*models.Booking, error)

// transition serves the cancel, confirm and reject actions.
func (s *HTTPServer) transition(apply transitionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		booking, err := apply(s.svc.Bookings, r.Context(), actor, id)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, booking)
	}
}
