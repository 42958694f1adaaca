package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"calbot/internal/domain"
	"calbot/internal/domain/entities"
	"calbot/internal/ports/output"
)

var _ output.UserRepository = (*UserRepository)(nil)

// UserRepository stores per-guild time zone preferences.
type UserRepository struct {
	db DB
}

func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindPreference(ctx context.Context, userID, guildID string) (*entities.UserPreference, error) {
	p, err := scanPreference(r.db.QueryRow(ctx, `
		SELECT id, user_id, guild_id, user_time_zone, event_time_zone, active, created_at, updated_at
		FROM user_preferences
		WHERE user_id = $1 AND guild_id = $2 AND active`,
		userID, guildID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrPreferenceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user preference: %w: %w", domain.ErrPersistenceFailure, err)
	}
	return p, nil
}

func (r *UserRepository) UpsertPreference(ctx context.Context, pref *entities.UserPreference) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO user_preferences (user_id, guild_id, user_time_zone, event_time_zone, active)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, guild_id) DO UPDATE
		SET user_time_zone = EXCLUDED.user_time_zone,
			event_time_zone = EXCLUDED.event_time_zone,
			active = EXCLUDED.active,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`,
		pref.UserID, pref.GuildID, pref.UserTimeZone, pref.EventTimeZone, pref.Active)
	if err := row.Scan(&pref.ID, &pref.CreatedAt, &pref.UpdatedAt); err != nil {
		return fmt.Errorf("upsert user preference: %w: %w", domain.ErrPersistenceFailure, err)
	}
	return nil
}
