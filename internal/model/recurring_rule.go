package model

import (
	"fmt"
	"time"
)

// Frequency enumerates supported recurrence frequencies.
type Frequency string

// Recurrence frequencies. Biweekly is modeled downstream as weekly with
// an interval of 2.
const (
	FrequencyDaily    Frequency = "daily"
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
	FrequencyYearly   Frequency = "yearly"
)

// ParseFrequency converts a string to a Frequency.
func ParseFrequency(s string) (Frequency, error) {
	switch Frequency(s) {
	case FrequencyDaily, FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly, FrequencyYearly:
		return Frequency(s), nil
	default:
		return "", fmt.Errorf("unknown frequency: %q", s)
	}
}

// RecurringRule describes a recurrence schedule for generated transactions.
// EndDate and Count are mutually exclusive; at most one is set.
type RecurringRule struct {
	StartDate  time.Time
	EndDate    *time.Time
	Count      *int
	CreatedAt  time.Time
	ID         string
	Name       string
	RuleString string // RFC-5545 serialization with its DTSTART header
	Frequency  Frequency
}
