package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"bstn/internal/models"
	"bstn/internal/registry"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

// Store is the persistence surface the seed is applied to.
type Store interface {
	CreateOrUpdateUser(ctx context.Context, user *models.User) error
	CreateOrUpdateProvider(ctx context.Context, p *models.Provider) error
	CreateStay(ctx context.Context, stay models.Stay) error
	ListStays(ctx context.Context, kind models.RoomKind) ([]models.Stay, error)
	CreateRoom(ctx context.Context, room models.Room) error
}

// Catalog is the content of a seed file: accounts, provider profiles and the
// stays they own with their rooms.
type Catalog struct {
	Users []UserEntry `yaml:"users"`
	Stays []StayEntry `yaml:"stays"`
}

type UserEntry struct {
	Username string           `yaml:"username"`
	FullName string           `yaml:"full_name"`
	Phone    string           `yaml:"phone"`
	Role     string           `yaml:"role"`
	Provider *models.Provider `yaml:"provider"`
}

// StayEntry is one stay. Type-specific attributes sit next to the common
// fields; Owner names the provider user by username.
type StayEntry struct {
	Kind  models.RoomKind
	Owner string
	Stay  models.Stay
	Rooms []models.Room
}

type stayHeader struct {
	Type  string          `yaml:"type"`
	Owner string          `yaml:"owner"`
	Rooms []yaml.MapSlice `yaml:"rooms"`
}

func (e *StayEntry) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var head stayHeader
	if err := unmarshal(&head); err != nil {
		return err
	}
	kind, err := registry.Resolve(head.Type)
	if err != nil {
		return err
	}

	stay := models.NewStay(kind.Tag)
	if err := unmarshal(stay); err != nil {
		return fmt.Errorf("%s: %w", kind.StayLabel, err)
	}

	rooms := make([]models.Room, 0, len(head.Rooms))
	for i, raw := range head.Rooms {
		data, err := yaml.Marshal(raw)
		if err != nil {
			return err
		}
		room := models.NewRoom(kind.Tag)
		if err := yaml.Unmarshal(data, room); err != nil {
			return fmt.Errorf("%s %q room %d: %w", kind.StayLabel, stay.Base().Name, i, err)
		}
		rooms = append(rooms, room)
	}

	e.Kind = kind.Tag
	e.Owner = head.Owner
	e.Stay = stay
	e.Rooms = rooms
	return nil
}

// Load reads and parses a seed file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return &c, nil
}

// Result counts what Apply wrote.
type Result struct {
	Users     int
	Providers int
	Stays     int
	Rooms     int
}

// Apply upserts users and providers, then creates every stay that its owner
// does not already have under the same name. Re-applying a seed is a no-op
// for stays and their rooms.
func (c *Catalog) Apply(ctx context.Context, store Store, logger *zerolog.Logger) (Result, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	var res Result

	providers := make(map[string]int64, len(c.Users))
	for _, u := range c.Users {
		user := &models.User{Username: u.Username, FullName: u.FullName, Phone: u.Phone, Role: u.Role}
		if user.Username == "" {
			return res, errors.New("catalog user without username")
		}
		if u.Provider != nil && user.Role == "" {
			user.Role = models.RoleProvider
		}
		if err := store.CreateOrUpdateUser(ctx, user); err != nil {
			return res, err
		}
		res.Users++

		if u.Provider == nil {
			continue
		}
		p := *u.Provider
		p.ID = 0
		p.UserID = user.ID
		if p.DisplayName == "" {
			p.DisplayName = user.FullName
		}
		if err := store.CreateOrUpdateProvider(ctx, &p); err != nil {
			return res, err
		}
		providers[user.Username] = p.ID
		res.Providers++
	}

	existing := make(map[models.RoomKind]map[string]bool)
	for _, entry := range c.Stays {
		names, ok := existing[entry.Kind]
		if !ok {
			stays, err := store.ListStays(ctx, entry.Kind)
			if err != nil {
				return res, err
			}
			names = make(map[string]bool, len(stays))
			for _, s := range stays {
				names[stayKey(s.Base().ProviderID, s.Base().Name)] = true
			}
			existing[entry.Kind] = names
		}

		base := entry.Stay.Base()
		if entry.Owner != "" {
			providerID, ok := providers[entry.Owner]
			if !ok {
				return res, fmt.Errorf("stay %q: owner %q is not a catalog provider", base.Name, entry.Owner)
			}
			base.ProviderID = providerID
		}
		key := stayKey(base.ProviderID, base.Name)
		if names[key] {
			logger.Debug().Str("stay", base.Name).Str("type", string(entry.Kind)).Msg("stay already seeded")
			continue
		}

		base.ID = 0
		if base.TotalRooms == 0 {
			base.TotalRooms = len(entry.Rooms)
		}
		if err := store.CreateStay(ctx, entry.Stay); err != nil {
			return res, err
		}
		names[key] = true
		res.Stays++

		for _, room := range entry.Rooms {
			rb := room.Base()
			rb.ID = 0
			rb.StayID = base.ID
			room.SetStay(entry.Stay)
			if err := store.CreateRoom(ctx, room); err != nil {
				return res, err
			}
			res.Rooms++
		}
	}

	logger.Info().
		Int("users", res.Users).
		Int("providers", res.Providers).
		Int("stays", res.Stays).
		Int("rooms", res.Rooms).
		Msg("catalog applied")
	return res, nil
}

func stayKey(providerID int64, name string) string {
	return fmt.Sprintf("%d/%s", providerID, strings.ToLower(strings.TrimSpace(name)))
}
