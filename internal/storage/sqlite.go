package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration.

	"avito_bot/internal/model"
	"avito_bot/migrations"
)

const timeLayout = "2006-01-02T15:04:05Z"

// SQLite implements Storage backed by a SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at dsn and runs pending migrations.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=OFF"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("disable foreign keys: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// CreateAd inserts an ad. On an id conflict only price and posted_at are
// refreshed, matching how the listing itself behaves: sellers edit the
// price and bump the date, everything else is fixed at creation.
func (s *SQLite) CreateAd(ctx context.Context, ad *model.Advertisement) error {
	now := time.Now().UTC().Format(timeLayout)

	var postedAt *string
	if ad.PostedAt != nil {
		v := ad.PostedAt.UTC().Format(timeLayout)
		postedAt = &v
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ads (id, url, title, price, address, approx_date_text, posted_at, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET price = excluded.price, posted_at = excluded.posted_at`,
		ad.ID, ad.URL, ad.Title, ad.Price, ad.Address, ad.ApproxDateText, postedAt, ad.Description, now,
	)
	if err != nil {
		return fmt.Errorf("insert ad: %w", err)
	}
	ad.CreatedAt, _ = time.Parse(timeLayout, now)
	return nil
}

// GetAd returns a single ad by its id.
func (s *SQLite) GetAd(ctx context.Context, id int64) (*model.Advertisement, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, url, title, price, address, approx_date_text, posted_at, description, created_at
		 FROM ads WHERE id = ?`, id,
	)
	return scanAd(row)
}

// AdExists reports whether an ad with the given id has been stored.
func (s *SQLite) AdExists(ctx context.Context, id int64) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM ads WHERE id = ?`, id,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check ad exists: %w", err)
	}
	return count > 0, nil
}

// ListRecentAds returns the most recently stored ads, newest first.
func (s *SQLite) ListRecentAds(ctx context.Context, limit int) ([]model.Advertisement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, url, title, price, address, approx_date_text, posted_at, description, created_at
		 FROM ads ORDER BY created_at DESC, id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent ads: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ads []model.Advertisement
	for rows.Next() {
		ad, err := scanAd(rows)
		if err != nil {
			return nil, err
		}
		ads = append(ads, *ad)
	}
	return ads, rows.Err()
}

// CreateSubscriber registers a subscriber. Re-registering an existing id
// is a no-op.
func (s *SQLite) CreateSubscriber(ctx context.Context, sub *model.Subscriber) error {
	now := time.Now().UTC().Format(timeLayout)
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO subscribers (id, username, first_name, last_name, chat_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sub.ID, sub.Username, sub.FirstName, sub.LastName, sub.ChatID, now,
	)
	if err != nil {
		return fmt.Errorf("insert subscriber: %w", err)
	}
	return nil
}

// ListSubscribers returns every registered subscriber.
func (s *SQLite) ListSubscribers(ctx context.Context) ([]model.Subscriber, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, username, first_name, last_name, chat_id, created_at
		 FROM subscribers ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query subscribers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var subs []model.Subscriber
	for rows.Next() {
		var sub model.Subscriber
		var created sql.NullString
		if err := rows.Scan(&sub.ID, &sub.Username, &sub.FirstName, &sub.LastName, &sub.ChatID, &created); err != nil {
			return nil, fmt.Errorf("scan subscriber: %w", err)
		}
		if created.Valid {
			sub.CreatedAt, _ = time.Parse(timeLayout, created.String)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

type scannable interface {
	Scan(dest ...any) error
}

func scanAd(row scannable) (*model.Advertisement, error) {
	var ad model.Advertisement
	var postedAt, description, created sql.NullString
	err := row.Scan(&ad.ID, &ad.URL, &ad.Title, &ad.Price, &ad.Address, &ad.ApproxDateText, &postedAt, &description, &created)
	if err != nil {
		return nil, fmt.Errorf("scan ad: %w", err)
	}
	if postedAt.Valid {
		t, _ := time.Parse(timeLayout, postedAt.String)
		ad.PostedAt = &t
	}
	if description.Valid {
		ad.Description = &description.String
	}
	if created.Valid {
		ad.CreatedAt, _ = time.Parse(timeLayout, created.String)
	}
	return &ad, nil
}
