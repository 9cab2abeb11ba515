package storage

import (
	"context"
	"fmt"

	"github.com/chronofin/chronofin/internal/model"
	"github.com/chronofin/chronofin/internal/service"
)

// GetPreferences reads the preference rows into a typed view. Missing or
// malformed values fall back to defaults rather than failing, so a partial
// preferences table never breaks scheduling or aggregation.
func (s *SQLiteStorage) GetPreferences(ctx context.Context) (service.Preferences, error) {
	prefs := service.Preferences{
		TransferLayout: model.TransferCombine,
		GroupBy:        model.GroupByDay,
	}

	if err := validateContext(ctx); err != nil {
		return prefs, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM preferences`)
	if err != nil {
		return prefs, fmt.Errorf("failed to query preferences: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return prefs, fmt.Errorf("failed to scan preference: %w", err)
		}

		switch key {
		case service.PrefRequireConfirmation:
			prefs.RequireConfirmation = value == "true"
		case service.PrefUpdateDateOnConfirm:
			prefs.UpdateDateOnConfirm = value == "true"
		case service.PrefIncludeTransfersInTotals:
			prefs.IncludeTransfersInTotals = value == "true"
		case service.PrefTransferLayout:
			if layout, err := model.ParseTransferLayout(value); err == nil {
				prefs.TransferLayout = layout
			}
		case service.PrefGroupBy:
			if groupBy, err := model.ParseGroupBy(value); err == nil {
				prefs.GroupBy = groupBy
			}
		}
	}
	if err := rows.Err(); err != nil {
		return prefs, fmt.Errorf("failed to iterate preferences: %w", err)
	}

	return prefs, nil
}

// SetPreference writes a single preference value.
func (s *SQLiteStorage) SetPreference(ctx context.Context, key, value string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(key, "key"); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO preferences (key, value) VALUES (?, ?)`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set preference %s: %w", key, err)
	}

	s.notifyChange()
	return nil
}
