package shopdesk

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/eringen/shopdesk/locale"
)

const postColumns = `id, slug, cover_media_id, tags, published, published_at, created_at, updated_at`

func scanPost(row rowScanner) (BlogPost, error) {
	var p BlogPost
	var id, tags, created, updated string
	var cover, publishedAt sql.NullString
	var published int
	if err := row.Scan(&id, &p.Slug, &cover, &tags, &published, &publishedAt, &created, &updated); err != nil {
		return BlogPost{}, err
	}
	p.ID = uuid.MustParse(id)
	if cover.Valid {
		if cid, err := uuid.Parse(cover.String); err == nil {
			p.CoverMediaID = &cid
		}
	}
	if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil {
		return BlogPost{}, fmt.Errorf("post %s tags: %w", id, err)
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	p.Published = published == 1
	if publishedAt.Valid {
		t := parseTime(publishedAt.String)
		p.PublishedAt = &t
	}
	p.CreatedAt = parseTime(created)
	p.UpdatedAt = parseTime(updated)
	return p, nil
}

func nullUUID(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return id.String()
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

// stampPublished sets PublishedAt the first time a post is published and
// keeps it afterwards.
func stampPublished(p *BlogPost, now time.Time) {
	if p.Published && p.PublishedAt == nil {
		p.PublishedAt = &now
	}
}

// CreatePost inserts a blog post and its translations in one transaction.
func (s *Store) CreatePost(ctx context.Context, p BlogPost) (BlogPost, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := s.now()
	p.CreatedAt, p.UpdatedAt = now, now
	stampPublished(&p, now)
	tags, err := json.Marshal(nonNilStrings(p.Tags))
	if err != nil {
		return BlogPost{}, err
	}
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO blog_posts (`+postColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID.String(), p.Slug, nullUUID(p.CoverMediaID), string(tags), boolInt(p.Published),
			nullTime(p.PublishedAt), formatTime(now), formatTime(now))
		if isUniqueViolation(err) {
			return fmt.Errorf("post slug %q: %w", p.Slug, ErrSlugTaken)
		}
		if err != nil {
			return err
		}
		return writePostTranslations(ctx, tx, p)
	})
	if err != nil {
		return BlogPost{}, err
	}
	return s.GetPost(ctx, p.ID)
}

// UpdatePost replaces a blog post and its translations in one transaction.
func (s *Store) UpdatePost(ctx context.Context, p BlogPost) (BlogPost, error) {
	existing, err := s.GetPost(ctx, p.ID)
	if err != nil {
		return BlogPost{}, err
	}
	p.PublishedAt = existing.PublishedAt
	p.UpdatedAt = s.now()
	stampPublished(&p, p.UpdatedAt)
	tags, err := json.Marshal(nonNilStrings(p.Tags))
	if err != nil {
		return BlogPost{}, err
	}
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `UPDATE blog_posts SET slug = ?, cover_media_id = ?, tags = ?, published = ?, published_at = ?, updated_at = ? WHERE id = ?`,
			p.Slug, nullUUID(p.CoverMediaID), string(tags), boolInt(p.Published), nullTime(p.PublishedAt),
			formatTime(p.UpdatedAt), p.ID.String())
		if isUniqueViolation(err) {
			return fmt.Errorf("post slug %q: %w", p.Slug, ErrSlugTaken)
		}
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM blog_post_translations WHERE post_id = ?`, p.ID.String()); err != nil {
			return err
		}
		return writePostTranslations(ctx, tx, p)
	})
	if err != nil {
		return BlogPost{}, err
	}
	return s.GetPost(ctx, p.ID)
}

func writePostTranslations(ctx context.Context, tx *sql.Tx, p BlogPost) error {
	for loc, tr := range p.Translations {
		if _, err := tx.ExecContext(ctx, `INSERT INTO blog_post_translations (post_id, locale, title, summary, content) VALUES (?, ?, ?, ?, ?)`,
			p.ID.String(), string(loc), tr.Title, tr.Summary, tr.Content); err != nil {
			return err
		}
	}
	return nil
}

// GetPost returns a blog post with its translations.
func (s *Store) GetPost(ctx context.Context, id uuid.UUID) (BlogPost, error) {
	p, err := scanPost(s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM blog_posts WHERE id = ?`, id.String()))
	if err != nil {
		return BlogPost{}, notFound(err, ErrNotFound)
	}
	if err := s.loadPostTranslations(ctx, &p); err != nil {
		return BlogPost{}, err
	}
	return p, nil
}

// GetPublishedPostBySlug returns a published post by slug.
func (s *Store) GetPublishedPostBySlug(ctx context.Context, slug string) (BlogPost, error) {
	p, err := scanPost(s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM blog_posts WHERE slug = ? AND published = 1`, slug))
	if err != nil {
		return BlogPost{}, notFound(err, ErrNotFound)
	}
	if err := s.loadPostTranslations(ctx, &p); err != nil {
		return BlogPost{}, err
	}
	return p, nil
}

// ListPosts returns posts, newest first. With publishedOnly set, drafts are
// skipped and posts are ordered by publish date.
func (s *Store) ListPosts(ctx context.Context, publishedOnly bool) ([]BlogPost, error) {
	q := `SELECT ` + postColumns + ` FROM blog_posts`
	if publishedOnly {
		q += ` WHERE published = 1 ORDER BY published_at DESC`
	} else {
		q += ` ORDER BY created_at DESC`
	}
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	posts := []BlogPost{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		posts = append(posts, p)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range posts {
		if err := s.loadPostTranslations(ctx, &posts[i]); err != nil {
			return nil, err
		}
	}
	return posts, nil
}

// DeletePost removes a post. Translations cascade.
func (s *Store) DeletePost(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM blog_posts WHERE id = ?`, id.String())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountPosts returns the number of posts and how many are published.
func (s *Store) CountPosts(ctx context.Context) (total, published int, err error) {
	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(published), 0) FROM blog_posts`).Scan(&total, &published)
	return total, published, err
}

func (s *Store) loadPostTranslations(ctx context.Context, p *BlogPost) error {
	p.Translations = make(map[locale.Locale]PostTranslation)
	rows, err := s.db.QueryContext(ctx, `SELECT locale, title, summary, content FROM blog_post_translations WHERE post_id = ?`, p.ID.String())
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var loc string
		var tr PostTranslation
		if err := rows.Scan(&loc, &tr.Title, &tr.Summary, &tr.Content); err != nil {
			return err
		}
		p.Translations[locale.Locale(loc)] = tr
	}
	return rows.Err()
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
