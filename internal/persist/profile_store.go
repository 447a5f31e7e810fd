package persist

import (
	"context"

	"github.com/farmgame/client/internal/geom"
	"github.com/farmgame/client/internal/world"
)

// ProfileStore adapts ProfileRepo to world.ProfileStore.
type ProfileStore struct {
	repo *ProfileRepo
}

func NewProfileStore(repo *ProfileRepo) *ProfileStore {
	return &ProfileStore{repo: repo}
}

func (s *ProfileStore) LoadProfile(ctx context.Context, name string) (*world.PlayerData, error) {
	row, err := s.repo.Load(ctx, name)
	if err != nil || row == nil {
		return nil, err
	}
	return RowToPlayerData(row), nil
}

func (s *ProfileStore) SaveProfile(ctx context.Context, data *world.PlayerData) error {
	return s.repo.Save(ctx, PlayerDataToRow(data))
}

func RowToPlayerData(row *ProfileRow) *world.PlayerData {
	d := &world.PlayerData{
		Profile:     row.Name,
		IsNewPlayer: row.IsNew,
		MapName:     row.MapName,
		Position:    geom.Vec2{X: row.PosX, Y: row.PosY},
		Facing:      geom.Vec2{X: row.FacingX, Y: row.FacingY},
		MoveSpeed:   row.MoveSpeed,
	}
	if d.Facing.IsZero() {
		d.Facing = geom.Down
	}
	return d
}

func PlayerDataToRow(d *world.PlayerData) *ProfileRow {
	return &ProfileRow{
		Name:      d.Profile,
		IsNew:     d.IsNewPlayer,
		MapName:   d.MapName,
		PosX:      d.Position.X,
		PosY:      d.Position.Y,
		FacingX:   d.Facing.X,
		FacingY:   d.Facing.Y,
		MoveSpeed: d.MoveSpeed,
	}
}
