package shopdesk

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/eringen/shopdesk/locale"
)

const (
	settingSite          = "site"
	settingLastPublished = "last_published_at"
)

// GetSetting returns the raw value stored under key, or "" if none.
func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return v, err
}

// SetSetting upserts a raw setting.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

// DefaultSiteSettings is returned before any settings have been saved.
func DefaultSiteSettings(siteName string) SiteSettings {
	return SiteSettings{
		SiteName:    locale.Text{locale.Default: siteName},
		Address:     locale.Text{},
		SocialLinks: map[string]string{},
		Currency:    "VND",
	}
}

// GetSiteSettings returns the stored site settings, falling back to defaults.
func (s *Store) GetSiteSettings(ctx context.Context, siteName string) (SiteSettings, error) {
	raw, err := s.GetSetting(ctx, settingSite)
	if err != nil {
		return SiteSettings{}, err
	}
	settings := DefaultSiteSettings(siteName)
	if raw == "" {
		return settings, nil
	}
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return SiteSettings{}, err
	}
	if settings.SocialLinks == nil {
		settings.SocialLinks = map[string]string{}
	}
	if settings.Address == nil {
		settings.Address = locale.Text{}
	}
	return settings, nil
}

// SaveSiteSettings replaces the site settings record.
func (s *Store) SaveSiteSettings(ctx context.Context, settings SiteSettings) error {
	b, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	return s.SetSetting(ctx, settingSite, string(b))
}

// LastPublished returns when the site was last published, or the zero time.
func (s *Store) LastPublished(ctx context.Context) (time.Time, error) {
	v, err := s.GetSetting(ctx, settingLastPublished)
	if err != nil || v == "" {
		return time.Time{}, err
	}
	return parseTime(v), nil
}

// MarkPublished records t as the last publish time.
func (s *Store) MarkPublished(ctx context.Context, t time.Time) error {
	return s.SetSetting(ctx, settingLastPublished, formatTime(t))
}
