package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/suhanarda/greengrocer/internal/settings"
)

// SettingsRepo implements settings.Store.
type SettingsRepo struct {
	db *sqlx.DB
}

var _ settings.Store = (*SettingsRepo)(nil)

var getSettingQuery = `SELECT value FROM settings WHERE key = ?`

func (r *SettingsRepo) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	if err := r.db.GetContext(ctx, &value, getSettingQuery, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("sqlite: setting %q not found", key)
		}
		return "", fmt.Errorf("sqlite: get setting %q: %w", key, err)
	}
	return value, nil
}

var putSettingQuery = `
	INSERT INTO settings (key, value) VALUES (?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value`

func (r *SettingsRepo) PutSetting(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, putSettingQuery, key, value)
	if err != nil {
		return fmt.Errorf("sqlite: put setting %q: %w", key, err)
	}
	return nil
}
