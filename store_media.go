package shopdesk

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

const mediaColumns = `id, filename, original_name, url, mime_type, width, height, size, alt, uploaded_at`

func scanMedia(row rowScanner) (MediaAsset, error) {
	var m MediaAsset
	var id, uploaded string
	if err := row.Scan(&id, &m.Filename, &m.OriginalName, &m.URL, &m.MimeType, &m.Width, &m.Height, &m.Size, &m.Alt, &uploaded); err != nil {
		return MediaAsset{}, err
	}
	m.ID = uuid.MustParse(id)
	m.UploadedAt = parseTime(uploaded)
	return m, nil
}

// CreateMedia records an uploaded asset.
func (s *Store) CreateMedia(ctx context.Context, m MediaAsset) (MediaAsset, error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.UploadedAt.IsZero() {
		m.UploadedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO media_assets (`+mediaColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID.String(), m.Filename, m.OriginalName, m.URL, m.MimeType, m.Width, m.Height, m.Size, m.Alt, formatTime(m.UploadedAt))
	if isUniqueViolation(err) {
		return MediaAsset{}, fmt.Errorf("media filename %q: %w", m.Filename, ErrSlugTaken)
	}
	if err != nil {
		return MediaAsset{}, err
	}
	return m, nil
}

// GetMedia returns a media asset by ID.
func (s *Store) GetMedia(ctx context.Context, id uuid.UUID) (MediaAsset, error) {
	m, err := scanMedia(s.db.QueryRowContext(ctx, `SELECT `+mediaColumns+` FROM media_assets WHERE id = ?`, id.String()))
	return m, notFound(err, ErrNotFound)
}

// ListMedia returns media assets, newest first.
func (s *Store) ListMedia(ctx context.Context) ([]MediaAsset, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+mediaColumns+` FROM media_assets ORDER BY uploaded_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []MediaAsset{}
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// UpdateMediaAlt sets the alt text of an asset.
func (s *Store) UpdateMediaAlt(ctx context.Context, id uuid.UUID, alt string) (MediaAsset, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE media_assets SET alt = ? WHERE id = ?`, alt, id.String())
	if err != nil {
		return MediaAsset{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return MediaAsset{}, ErrNotFound
	}
	return s.GetMedia(ctx, id)
}

// DeleteMedia removes an asset record and detaches it from products and
// blog covers. The caller removes the file.
func (s *Store) DeleteMedia(ctx context.Context, id uuid.UUID) (MediaAsset, error) {
	m, err := s.GetMedia(ctx, id)
	if err != nil {
		return MediaAsset{}, err
	}
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM product_media WHERE media_id = ?`, id.String()); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `UPDATE blog_posts SET cover_media_id = NULL WHERE cover_media_id = ?`, id.String()); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM media_assets WHERE id = ?`, id.String())
		return err
	})
	if err != nil {
		return MediaAsset{}, err
	}
	return m, nil
}

// MediaFilenameExists reports whether filename is already recorded.
func (s *Store) MediaFilenameExists(ctx context.Context, filename string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM media_assets WHERE filename = ?`, filename).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

// CountMedia returns the number of media assets.
func (s *Store) CountMedia(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM media_assets`).Scan(&n)
	return n, err
}
