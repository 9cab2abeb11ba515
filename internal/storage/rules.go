package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/chronofin/chronofin/internal/common"
	"github.com/chronofin/chronofin/internal/model"
)

const ruleColumns = `id, name, frequency, start_date, end_date, occurrence_count, rule, created_at`

// SaveRecurringRule inserts or replaces a recurring rule.
func (s *SQLiteStorage) SaveRecurringRule(ctx context.Context, rule *model.RecurringRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRule(rule); err != nil {
		return err
	}

	createdAt := rule.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	var endDate any
	if rule.EndDate != nil {
		endDate = *rule.EndDate
	}
	var count any
	if rule.Count != nil {
		count = *rule.Count
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO recurring_rules (
			id, name, frequency, start_date, end_date, occurrence_count, rule, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rule.ID,
		rule.Name,
		string(rule.Frequency),
		rule.StartDate,
		endDate,
		count,
		rule.RuleString,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save recurring rule %s: %w", rule.ID, err)
	}

	s.notifyChange()
	return nil
}

// GetRecurringRule returns a single recurring rule by id.
func (s *SQLiteStorage) GetRecurringRule(ctx context.Context, id string) (*model.RecurringRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s FROM recurring_rules WHERE id = ?`, ruleColumns), id)

	rule, err := scanRule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("recurring rule %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return rule, nil
}

// GetRecurringRules returns all recurring rules, oldest first.
func (s *SQLiteStorage) GetRecurringRules(ctx context.Context) ([]model.RecurringRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT %s FROM recurring_rules ORDER BY created_at ASC`, ruleColumns))
	if err != nil {
		return nil, fmt.Errorf("failed to query recurring rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rules []model.RecurringRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recurring rule: %w", err)
		}
		rules = append(rules, *rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recurring rules: %w", err)
	}
	return rules, nil
}

func scanRule(row rowScanner) (*model.RecurringRule, error) {
	var rule model.RecurringRule
	var frequency string
	var endDate sql.NullTime
	var count sql.NullInt64

	err := row.Scan(
		&rule.ID,
		&rule.Name,
		&frequency,
		&rule.StartDate,
		&endDate,
		&count,
		&rule.RuleString,
		&rule.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	rule.Frequency = model.Frequency(frequency)
	if endDate.Valid {
		rule.EndDate = &endDate.Time
	}
	if count.Valid {
		c := int(count.Int64)
		rule.Count = &c
	}
	return &rule, nil
}
