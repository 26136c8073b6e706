package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bstn/internal/domain"
	"bstn/internal/models"
	"bstn/internal/registry"
)

var roomFields = []string{
	"id", "stay_id", "name", "variant", "max_guests", "price_per_night", "utils", "amenities",
	"is_available", "has_ac", "has_heating", "created_at", "updated_at",
}

func roomDest(b *models.RoomBase, variant *string) []interface{} {
	return []interface{}{
		&b.ID, &b.StayID, &b.Name, variant, &b.MaxGuests, &b.PricePerNight, &b.Utils, &b.Amenities,
		&b.IsAvailable, &b.HasAC, &b.HasHeating, &b.CreatedAt, &b.UpdatedAt,
	}
}

// roomWithStaySelect selects rooms of a kind joined with their parent stay.
func roomWithStaySelect(kind registry.Kind) string {
	return fmt.Sprintf(`SELECT %s, %s FROM %s r JOIN %s s ON s.id = r.stay_id`,
		columns("r.", roomFields), columns("s.", stayFields), kind.RoomTable, kind.StayTable)
}

func scanRoomWithStay(kind registry.Kind, row scanner) (models.Room, error) {
	room := kind.NewRoom()
	stay := kind.NewStay()
	var variant string
	var s stayScan

	dest := append(roomDest(room.Base(), &variant), s.dest(stay.Base())...)
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan %s: %w", kind.Label, err)
	}
	if err := s.apply(stay); err != nil {
		return nil, err
	}
	room.SetVariant(variant)
	room.SetStay(stay)
	return room, nil
}

func collectRooms(kind registry.Kind, rows *sql.Rows) ([]models.Room, error) {
	defer rows.Close()
	rooms := []models.Room{}
	for rows.Next() {
		room, err := scanRoomWithStay(kind, rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", kind.RoomTable, err)
	}
	return rooms, nil
}

// CreateRoom inserts a room under its parent stay and sets its ID.
func (db *DB) CreateRoom(ctx context.Context, room models.Room) error {
	kind, ok := registry.Get(room.Kind())
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrInvalidRoomType, room.Kind())
	}
	b := room.Base()
	if _, err := db.GetStay(ctx, kind.Tag, b.StayID); err != nil {
		return err
	}

	now := time.Now().UTC()
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		kind.RoomTable, columns("", roomFields[1:]), placeholders(len(roomFields)-1))
	result, err := db.ExecContext(ctx, query,
		b.StayID, b.Name, room.Variant(), b.MaxGuests, b.PricePerNight, b.Utils, b.Amenities,
		b.IsAvailable, b.HasAC, b.HasHeating, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", kind.Label, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	b.ID = id
	b.CreatedAt = now
	b.UpdatedAt = now
	return nil
}

// GetRoom returns a room of the given kind with its parent stay loaded.
func (db *DB) GetRoom(ctx context.Context, tag models.RoomKind, id int64) (models.Room, error) {
	kind, ok := registry.Get(tag)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidRoomType, tag)
	}
	room, err := scanRoomWithStay(kind, db.QueryRowContext(ctx, roomWithStaySelect(kind)+` WHERE r.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s %d: %w", kind.Label, id, domain.ErrRoomNotFound)
	}
	return room, err
}

// ListRooms returns the rooms of one stay, or of every stay of the kind when
// stayID is zero.
func (db *DB) ListRooms(ctx context.Context, tag models.RoomKind, stayID int64) ([]models.Room, error) {
	kind, ok := registry.Get(tag)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidRoomType, tag)
	}
	query := roomWithStaySelect(kind)
	var args []interface{}
	if stayID != 0 {
		query += ` WHERE r.stay_id = ?`
		args = append(args, stayID)
	}
	rows, err := db.QueryContext(ctx, query+` ORDER BY r.id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", kind.RoomTable, err)
	}
	return collectRooms(kind, rows)
}
