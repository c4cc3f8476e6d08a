// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/86.0.4240.183 Safari/537.36"

// Config holds the application configuration.
type Config struct {
	TelegramBotToken string
	ListingURL       string
	SiteOrigin       string
	DatabasePath     string
	LogLevel         string
	UserAgent        string
	PollInterval     time.Duration
	ItemDelay        time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	listingURL := os.Getenv("LISTING_URL")
	if listingURL == "" {
		return nil, fmt.Errorf("LISTING_URL is required")
	}

	origin := os.Getenv("SITE_ORIGIN")
	if origin == "" {
		origin = "https://www.avito.ru"
	}

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "./data/bot.db"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	userAgent := os.Getenv("USER_AGENT")
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	pollInterval, err := durationEnv("POLL_INTERVAL_SECONDS", 120, time.Second)
	if err != nil {
		return nil, err
	}

	itemDelay, err := durationEnv("ITEM_DELAY_MS", 500, time.Millisecond)
	if err != nil {
		return nil, err
	}

	return &Config{
		TelegramBotToken: token,
		ListingURL:       listingURL,
		SiteOrigin:       origin,
		DatabasePath:     dbPath,
		LogLevel:         logLevel,
		UserAgent:        userAgent,
		PollInterval:     pollInterval,
		ItemDelay:        itemDelay,
	}, nil
}

func durationEnv(key string, def int, unit time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return time.Duration(def) * unit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive integer", key, raw)
	}
	return time.Duration(n) * unit, nil
}
