package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"bstn/internal/domain"
	"bstn/internal/models"
	"bstn/internal/registry"
)

var stayFields = []string{
	"id", "provider_id", "name", "description", "total_rooms", "check_in_time", "check_out_time",
	"address", "city", "country", "latitude", "longitude", "has_wifi", "has_parking", "has_kitchen",
	"pets_allowed", "is_active", "attributes", "created_at", "updated_at",
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func columns(prefix string, fields []string) string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = prefix + f
	}
	return strings.Join(out, ", ")
}

// stayScan collects the columns of a stay row that need post-processing.
type stayScan struct {
	provider sql.NullInt64
	attrs    string
}

func (s *stayScan) dest(b *models.StayBase) []interface{} {
	return []interface{}{
		&b.ID, &s.provider, &b.Name, &b.Description, &b.TotalRooms, &b.CheckInTime, &b.CheckOutTime,
		&b.Address, &b.City, &b.Country, &b.Latitude, &b.Longitude, &b.HasWifi, &b.HasParking, &b.HasKitchen,
		&b.PetsAllowed, &b.IsActive, &s.attrs, &b.CreatedAt, &b.UpdatedAt,
	}
}

func (s *stayScan) apply(stay models.Stay) error {
	stay.Base().ProviderID = s.provider.Int64
	if s.attrs == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(s.attrs), stay.Attributes()); err != nil {
		return fmt.Errorf("failed to decode stay attributes: %w", err)
	}
	return nil
}

func nullableID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}

// CreateStay inserts a stay into the table of its kind and sets its ID.
func (db *DB) CreateStay(ctx context.Context, stay models.Stay) error {
	kind, ok := registry.Get(stay.Kind())
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrInvalidRoomType, stay.Kind())
	}
	attrs, err := json.Marshal(stay.Attributes())
	if err != nil {
		return fmt.Errorf("failed to encode stay attributes: %w", err)
	}

	b := stay.Base()
	now := time.Now().UTC()
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		kind.StayTable, columns("", stayFields[1:]), placeholders(len(stayFields)-1))
	result, err := db.ExecContext(ctx, query,
		nullableID(b.ProviderID), b.Name, b.Description, b.TotalRooms, b.CheckInTime, b.CheckOutTime,
		b.Address, b.City, b.Country, b.Latitude, b.Longitude, b.HasWifi, b.HasParking, b.HasKitchen,
		b.PetsAllowed, b.IsActive, string(attrs), now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", kind.StayLabel, err)
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

// GetStay returns one stay of the given kind.
func (db *DB) GetStay(ctx context.Context, tag models.RoomKind, id int64) (models.Stay, error) {
	kind, ok := registry.Get(tag)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidRoomType, tag)
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = ?`, columns("", stayFields), kind.StayTable)
	stay, err := scanStay(kind, db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s %d: %w", kind.StayLabel, id, domain.ErrStayNotFound)
	}
	if err != nil {
		return nil, err
	}
	return stay, nil
}

// ListStays returns all stays of the given kind ordered by id.
func (db *DB) ListStays(ctx context.Context, tag models.RoomKind) ([]models.Stay, error) {
	kind, ok := registry.Get(tag)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidRoomType, tag)
	}
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY id`, columns("", stayFields), kind.StayTable)
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", kind.StayTable, err)
	}
	defer rows.Close()

	stays := []models.Stay{}
	for rows.Next() {
		stay, err := scanStay(kind, rows)
		if err != nil {
			return nil, err
		}
		stays = append(stays, stay)
	}
	return stays, rows.Err()
}

func scanStay(kind registry.Kind, row scanner) (models.Stay, error) {
	stay := kind.NewStay()
	var s stayScan
	if err := row.Scan(s.dest(stay.Base())...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan %s: %w", kind.StayLabel, err)
	}
	if err := s.apply(stay); err != nil {
		return nil, err
	}
	return stay, nil
}
