package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bstn/internal/domain"
	"bstn/internal/models"
)

// CreateOrUpdateUser inserts the user or refreshes the profile of an existing
// username. user.ID is set on return.
func (db *DB) CreateOrUpdateUser(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (username, full_name, phone, role, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?)
              ON CONFLICT(username) DO UPDATE SET
                full_name = excluded.full_name,
                phone = excluded.phone,
                role = excluded.role,
                updated_at = excluded.updated_at
              RETURNING id`
	role := user.Role
	if role == "" {
		role = models.RoleGuest
	}
	now := time.Now().UTC()
	err := db.QueryRowContext(ctx, query, user.Username, user.FullName, user.Phone, role, now, now).
		Scan(&user.ID)
	if err != nil {
		return fmt.Errorf("failed to create or update user: %w", err)
	}
	user.Role = role
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	return nil
}

func (db *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	err := db.QueryRowContext(ctx,
		`SELECT id, username, full_name, phone, role, created_at, updated_at FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Username, &u.FullName, &u.Phone, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

const providerColumns = `id, user_id, display_name, business_type, city, country, is_verified,
	kyc_status, average_rating, total_reviews, total_bookings, created_at, updated_at`

// CreateOrUpdateProvider stores the provider profile of provider.UserID.
// Rating and booking counters are not touched.
func (db *DB) CreateOrUpdateProvider(ctx context.Context, p *models.Provider) error {
	query := `INSERT INTO providers (user_id, display_name, business_type, city, country, is_verified, kyc_status, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
              ON CONFLICT(user_id) DO UPDATE SET
                display_name = excluded.display_name,
                business_type = excluded.business_type,
                city = excluded.city,
                country = excluded.country,
                is_verified = excluded.is_verified,
                kyc_status = excluded.kyc_status,
                updated_at = excluded.updated_at
              RETURNING id`
	kyc := p.KYCStatus
	if kyc == "" {
		kyc = "pending"
	}
	now := time.Now().UTC()
	err := db.QueryRowContext(ctx, query,
		p.UserID, p.DisplayName, p.BusinessType, p.City, p.Country, p.IsVerified, kyc, now, now,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("failed to create or update provider: %w", err)
	}
	p.KYCStatus = kyc
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	return nil
}

func (db *DB) GetProvider(ctx context.Context, id int64) (*models.Provider, error) {
	return db.queryProvider(ctx, `SELECT `+providerColumns+` FROM providers WHERE id = ?`, id)
}

// GetProviderByUserID returns the provider profile linked to a user, or
// domain.ErrNotFound when the user has none.
func (db *DB) GetProviderByUserID(ctx context.Context, userID int64) (*models.Provider, error) {
	return db.queryProvider(ctx, `SELECT `+providerColumns+` FROM providers WHERE user_id = ?`, userID)
}

func (db *DB) queryProvider(ctx context.Context, query string, arg int64) (*models.Provider, error) {
	var p models.Provider
	err := db.QueryRowContext(ctx, query, arg).Scan(
		&p.ID, &p.UserID, &p.DisplayName, &p.BusinessType, &p.City, &p.Country, &p.IsVerified,
		&p.KYCStatus, &p.AverageRating, &p.TotalReviews, &p.TotalBookings, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("provider: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get provider: %w", err)
	}
	return &p, nil
}
