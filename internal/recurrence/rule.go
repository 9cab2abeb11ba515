// Package recurrence converts declarative recurrence parameters into
// RFC-5545 rules and answers occurrence queries against them.
package recurrence

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/chronofin/chronofin/internal/model"
	"github.com/chronofin/chronofin/internal/service"
)

// Rule construction errors.
var (
	// ErrConflictingBounds is returned when both an end date and an
	// occurrence count are supplied. The two are mutually exclusive in
	// the rule encoding; supplying both is a caller error, neither wins.
	ErrConflictingBounds = errors.New("end date and count are mutually exclusive")
	// ErrUnknownFrequency is returned for a frequency outside the
	// supported set.
	ErrUnknownFrequency = errors.New("unknown frequency")
)

// frequencyOption maps a Frequency to its rrule frequency and interval.
// Biweekly is weekly with interval 2.
func frequencyOption(freq model.Frequency) (rrule.Frequency, int, error) {
	switch freq {
	case model.FrequencyDaily:
		return rrule.DAILY, 1, nil
	case model.FrequencyWeekly:
		return rrule.WEEKLY, 1, nil
	case model.FrequencyBiweekly:
		return rrule.WEEKLY, 2, nil
	case model.FrequencyMonthly:
		return rrule.MONTHLY, 1, nil
	case model.FrequencyYearly:
		return rrule.YEARLY, 1, nil
	default:
		return 0, 0, fmt.Errorf("%w: %q", ErrUnknownFrequency, freq)
	}
}

// BuildRRuleString constructs the serialized recurrence rule for the given
// parameters. The serialization carries its DTSTART header inline with the
// rule body, e.g.
//
//	DTSTART:20240115T000000Z
//	RRULE:FREQ=MONTHLY
//
// end and count are mutually exclusive; passing both returns
// ErrConflictingBounds.
func BuildRRuleString(freq model.Frequency, start time.Time, end *time.Time, count *int) (string, error) {
	if end != nil && count != nil {
		return "", ErrConflictingBounds
	}

	rfreq, interval, err := frequencyOption(freq)
	if err != nil {
		return "", err
	}

	opt := rrule.ROption{
		Freq:     rfreq,
		Interval: interval,
		Dtstart:  start.Truncate(time.Second),
	}
	if end != nil {
		opt.Until = end.Truncate(time.Second)
	}
	if count != nil {
		opt.Count = *count
	}

	// Validate the option set before serializing it.
	if _, err := rrule.NewRRule(opt); err != nil {
		return "", fmt.Errorf("failed to build rule: %w", err)
	}

	return opt.String(), nil
}

// parseRule parses a serialized rule, trying the robust set parser first
// (which preserves the DTSTART header) and falling back to the plain rule
// parser, which loses the header and anchors the rule at "now".
func parseRule(text string) (*rrule.RRule, error) {
	set, setErr := rrule.StrToRRuleSet(text)
	if setErr == nil {
		if r := set.GetRRule(); r != nil {
			return r, nil
		}
		setErr = errors.New("no RRULE component in rule set")
	}

	r, err := rrule.StrToRRule(ruleBody(text))
	if err != nil {
		return nil, fmt.Errorf("failed to parse rule %q: %w (set parser: %v)", text, err, setErr)
	}
	return r, nil
}

// ruleBody strips the rule string down to the bare RRULE value for the
// fallback parser.
func ruleBody(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(line, "RRULE:"); ok {
			return rest
		}
	}
	return strings.TrimSpace(text)
}

// CountOccurrencesBetween returns the number of occurrences of freq landing
// in [start, end] inclusive, anchored at start. Returns 0 when end precedes
// start.
func CountOccurrencesBetween(start, end time.Time, freq model.Frequency) (int, error) {
	if end.Before(start) {
		return 0, nil
	}

	rfreq, interval, err := frequencyOption(freq)
	if err != nil {
		return 0, err
	}

	r, err := rrule.NewRRule(rrule.ROption{
		Freq:     rfreq,
		Interval: interval,
		Dtstart:  start.Truncate(time.Second),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to build rule: %w", err)
	}

	return len(r.Between(start.Truncate(time.Second), end.Truncate(time.Second), true)), nil
}

// NextAbsoluteOccurrence returns the first occurrence strictly after anchor
// that falls within rng. When anchor precedes rng.Start the search includes
// rng.Start itself, so the first in-range occurrence is not skipped; when
// anchor is inside the range the search excludes anchor, so an occurrence
// already materialized at anchor is not returned again. Returns nil when no
// occurrence fits.
//
// Only the first rule string is consulted.
func NextAbsoluteOccurrence(ruleStrings []string, rng service.DateRange, anchor time.Time) (*time.Time, error) {
	if len(ruleStrings) == 0 {
		return nil, nil
	}
	if anchor.After(rng.End) {
		return nil, nil
	}

	r, err := parseRule(ruleStrings[0])
	if err != nil {
		return nil, err
	}

	var next time.Time
	if anchor.Before(rng.Start) {
		next = r.After(rng.Start, true)
	} else {
		next = r.After(anchor, false)
	}

	if next.IsZero() || next.After(rng.End) {
		return nil, nil
	}
	return &next, nil
}
