// Package model defines the domain types used across the application.
package model

import (
	"strconv"
	"time"
)

// Advertisement represents one classified ad extracted from the listing
// page. PostedAt and Description stay nil until the ad's own page has been
// fetched; after that they are never touched again.
type Advertisement struct {
	ID             int64
	URL            string // relative path, the site origin is prepended on use
	Title          string
	Price          int64
	Address        string
	ApproxDateText string // raw date snippet from the listing view, kept for audit
	PostedAt       *time.Time
	Description    *string
	CreatedAt      time.Time
}

// FullURL returns the absolute detail-page URL for the given site origin.
func (a *Advertisement) FullURL(origin string) string {
	return origin + a.URL
}

// FormattedPrice returns the price with space-separated thousands groups,
// e.g. 8350000 -> "8 350 000".
func (a *Advertisement) FormattedPrice() string {
	s := strconv.FormatInt(a.Price, 10)
	if len(s) <= 3 {
		return s
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ' ')
		}
		out = append(out, c)
	}
	return string(out)
}

// Subscriber is a Telegram user who receives new-ad notifications.
type Subscriber struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
	ChatID    int64
	CreatedAt time.Time
}
