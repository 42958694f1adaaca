package output

import (
	"context"

	"calbot/internal/domain/entities"
)

type UserRepository interface {
	FindPreference(ctx context.Context, userID, guildID string) (*entities.UserPreference, error)
	UpsertPreference(ctx context.Context, pref *entities.UserPreference) error
}
