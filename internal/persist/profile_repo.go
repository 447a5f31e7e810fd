package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// ProfileRow is one saved player profile.
type ProfileRow struct {
	Name      string
	IsNew     bool
	MapName   string
	PosX      float64
	PosY      float64
	FacingX   float64
	FacingY   float64
	MoveSpeed float64
	UpdatedAt time.Time
}

type ProfileRepo struct {
	db *DB
}

func NewProfileRepo(db *DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

// Load returns the named profile, or nil, nil if it has never been saved.
func (r *ProfileRepo) Load(ctx context.Context, name string) (*ProfileRow, error) {
	row := &ProfileRow{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT name, is_new, map_name, pos_x, pos_y, facing_x, facing_y, move_speed, updated_at
		 FROM player_profiles WHERE name = $1`, name,
	).Scan(
		&row.Name, &row.IsNew, &row.MapName, &row.PosX, &row.PosY,
		&row.FacingX, &row.FacingY, &row.MoveSpeed, &row.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load profile %s: %w", name, err)
	}
	return row, nil
}

// Save upserts row.
func (r *ProfileRepo) Save(ctx context.Context, row *ProfileRow) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO player_profiles (name, is_new, map_name, pos_x, pos_y, facing_x, facing_y, move_speed, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
		 ON CONFLICT (name) DO UPDATE SET
		   is_new = EXCLUDED.is_new,
		   map_name = EXCLUDED.map_name,
		   pos_x = EXCLUDED.pos_x,
		   pos_y = EXCLUDED.pos_y,
		   facing_x = EXCLUDED.facing_x,
		   facing_y = EXCLUDED.facing_y,
		   move_speed = EXCLUDED.move_speed,
		   updated_at = now()`,
		row.Name, row.IsNew, row.MapName, row.PosX, row.PosY,
		row.FacingX, row.FacingY, row.MoveSpeed,
	)
	if err != nil {
		return fmt.Errorf("save profile %s: %w", row.Name, err)
	}
	return nil
}

// Delete removes the named profile. Missing profiles are not an error.
func (r *ProfileRepo) Delete(ctx context.Context, name string) error {
	if _, err := r.db.Pool.Exec(ctx, `DELETE FROM player_profiles WHERE name = $1`, name); err != nil {
		return fmt.Errorf("delete profile %s: %w", name, err)
	}
	return nil
}
