// Package datetext converts the natural-language date phrases shown on the
// listing site into absolute timestamps.
package datetext

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	timeRe = regexp.MustCompile(`(\d{1,2}):(\d{2})`)
	dayRe  = regexp.MustCompile(`^\d{1,2}`)
)

// Normalizer resolves date phrases against an immutable month-name table.
type Normalizer struct {
	months    map[string]time.Month
	today     string
	yesterday string
}

// New creates a Normalizer for a custom locale table.
func New(months map[string]time.Month, today, yesterday string) *Normalizer {
	return &Normalizer{months: months, today: today, yesterday: yesterday}
}

// Russian returns a Normalizer for the phrases the site actually renders:
// "Сегодня в 12:34", "Вчера в 22:00", "15 ноября в 12:34".
func Russian() *Normalizer {
	return New(map[string]time.Month{
		"января":   time.January,
		"февраля":  time.February,
		"марта":    time.March,
		"апреля":   time.April,
		"мая":      time.May,
		"июня":     time.June,
		"июля":     time.July,
		"августа":  time.August,
		"сентября": time.September,
		"октября":  time.October,
		"ноября":   time.November,
		"декабря":  time.December,
	}, "сегодня", "вчера")
}

// Normalize resolves a date phrase to an absolute timestamp relative to now.
// It returns an error when the phrase carries no valid HH:MM token, and
// (nil, nil) when the day number or month word cannot be resolved.
//
// The phrase never encodes a year, so every shape uses now's year. Near a
// year boundary a phrase like "31 декабря" resolves into the wrong year;
// the site gives us nothing to disambiguate with.
func (n *Normalizer) Normalize(phrase string, now time.Time) (*time.Time, error) {
	phrase = strings.ToLower(strings.TrimSpace(phrase))

	m := timeRe.FindStringSubmatch(phrase)
	if m == nil {
		return nil, fmt.Errorf("no HH:MM token in date phrase %q", phrase)
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour > 23 || minute > 59 {
		return nil, fmt.Errorf("invalid time token %q in date phrase %q", m[0], phrase)
	}

	switch {
	case strings.Contains(phrase, n.today):
		t := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
		return &t, nil
	case strings.Contains(phrase, n.yesterday):
		y := now.AddDate(0, 0, -1)
		t := time.Date(y.Year(), y.Month(), y.Day(), hour, minute, 0, 0, now.Location())
		return &t, nil
	}

	dayToken := dayRe.FindString(phrase)
	if dayToken == "" {
		return nil, nil
	}
	day, _ := strconv.Atoi(dayToken)

	fields := strings.Fields(phrase)
	if len(fields) < 2 {
		return nil, nil
	}
	month, ok := n.months[fields[1]]
	if !ok {
		return nil, nil
	}

	t := time.Date(now.Year(), month, day, hour, minute, 0, 0, now.Location())
	return &t, nil
}
