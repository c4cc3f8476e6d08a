package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		want    *Config
		wantErr bool
	}{
		{
			name:    "missing token",
			env:     map[string]string{"LISTING_URL": "https://www.avito.ru/x"},
			wantErr: true,
		},
		{
			name:    "missing listing url",
			env:     map[string]string{"TELEGRAM_BOT_TOKEN": "test-token"},
			wantErr: true,
		},
		{
			name: "required only, defaults applied",
			env: map[string]string{
				"TELEGRAM_BOT_TOKEN": "test-token",
				"LISTING_URL":        "https://www.avito.ru/x",
			},
			want: &Config{
				TelegramBotToken: "test-token",
				ListingURL:       "https://www.avito.ru/x",
				SiteOrigin:       "https://www.avito.ru",
				DatabasePath:     "./data/bot.db",
				LogLevel:         "info",
				UserAgent:        defaultUserAgent,
				PollInterval:     120 * time.Second,
				ItemDelay:        500 * time.Millisecond,
			},
		},
		{
			name: "everything overridden",
			env: map[string]string{
				"TELEGRAM_BOT_TOKEN":    "test-token",
				"LISTING_URL":           "https://avito.test/kvartiry",
				"SITE_ORIGIN":           "https://avito.test",
				"DATABASE_PATH":         "/tmp/ads.db",
				"LOG_LEVEL":             "debug",
				"USER_AGENT":            "CustomAgent/2.0",
				"POLL_INTERVAL_SECONDS": "30",
				"ITEM_DELAY_MS":         "100",
			},
			want: &Config{
				TelegramBotToken: "test-token",
				ListingURL:       "https://avito.test/kvartiry",
				SiteOrigin:       "https://avito.test",
				DatabasePath:     "/tmp/ads.db",
				LogLevel:         "debug",
				UserAgent:        "CustomAgent/2.0",
				PollInterval:     30 * time.Second,
				ItemDelay:        100 * time.Millisecond,
			},
		},
		{
			name: "invalid poll interval",
			env: map[string]string{
				"TELEGRAM_BOT_TOKEN":    "test-token",
				"LISTING_URL":           "https://www.avito.ru/x",
				"POLL_INTERVAL_SECONDS": "soon",
			},
			wantErr: true,
		},
		{
			name: "non-positive item delay",
			env: map[string]string{
				"TELEGRAM_BOT_TOKEN": "test-token",
				"LISTING_URL":        "https://www.avito.ru/x",
				"ITEM_DELAY_MS":      "0",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{
				"TELEGRAM_BOT_TOKEN", "LISTING_URL", "SITE_ORIGIN", "DATABASE_PATH",
				"LOG_LEVEL", "USER_AGENT", "POLL_INTERVAL_SECONDS", "ITEM_DELAY_MS",
			} {
				t.Setenv(key, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			got, err := Load()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
