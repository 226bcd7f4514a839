package storage

import (
	"context"
	"fmt"

	"contas/internal/core"
)

// GetSettings returns the single settings record seeded by the initial
// migration.
func (r *Repository) GetSettings(ctx context.Context) (core.AppSettings, error) {
	var s core.AppSettings
	err := r.db.QueryRowContext(ctx,
		`SELECT base_year_legacy_sheets, currency FROM settings WHERE id = 1`).
		Scan(&s.BaseYearForLegacySheets, &s.Currency)
	if err != nil {
		return core.AppSettings{}, fmt.Errorf("get settings: %w", err)
	}
	return s, nil
}

func (r *Repository) SaveSettings(ctx context.Context, s core.AppSettings) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE settings SET base_year_legacy_sheets = ?, currency = ? WHERE id = 1`,
		s.BaseYearForLegacySheets, s.Currency)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
