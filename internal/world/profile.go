package world

import (
	"context"
	"sync"

	"github.com/farmgame/client/internal/geom"
	"github.com/farmgame/client/internal/movement"
)

// PlayerData is the player's persisted record.
type PlayerData struct {
	Profile     string
	IsNewPlayer bool
	MapName     string
	Position    geom.Vec2
	Facing      geom.Vec2
	MoveSpeed   float64
}

// NewPlayerData returns the record of a player who has never played.
func NewPlayerData(profile string) *PlayerData {
	return &PlayerData{
		Profile:     profile,
		IsNewPlayer: true,
		Facing:      geom.Down,
		MoveSpeed:   movement.DefaultSpeed,
	}
}

// ProfileStore loads and saves player records. LoadProfile returns nil, nil
// for a profile that was never saved.
type ProfileStore interface {
	LoadProfile(ctx context.Context, name string) (*PlayerData, error)
	SaveProfile(ctx context.Context, data *PlayerData) error
}

// MemoryProfiles keeps profiles for the lifetime of the process.
type MemoryProfiles struct {
	mu       sync.Mutex
	profiles map[string]PlayerData
	saves    int
}

func NewMemoryProfiles() *MemoryProfiles {
	return &MemoryProfiles{profiles: make(map[string]PlayerData)}
}

func (m *MemoryProfiles) LoadProfile(_ context.Context, name string) (*PlayerData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.profiles[name]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (m *MemoryProfiles) SaveProfile(_ context.Context, data *PlayerData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[data.Profile] = *data
	m.saves++
	return nil
}

// Saves counts successful SaveProfile calls.
func (m *MemoryProfiles) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
