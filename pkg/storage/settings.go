package storage

import (
	"context"

	"domaincheck/pkg/domain"
)

// SettingsStorage defines persistence operations for typed admin settings.
type SettingsStorage interface {
	// Settings returns all settings.
	Settings(ctx context.Context) ([]domain.Setting, error)
	// Setting fetches one setting by key.
	Setting(ctx context.Context, key string) (*domain.Setting, error)
	// UpdateSetting stores a new value for an existing setting. The value
	// must already be validated against the setting type.
	UpdateSetting(ctx context.Context, key string, value string) error
}
