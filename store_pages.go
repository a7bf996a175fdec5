package shopdesk

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/eringen/shopdesk/locale"
	"github.com/eringen/shopdesk/sections"
)

const pageColumns = `id, slug, names, published, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPage(row rowScanner) (Page, error) {
	var p Page
	var id, names, created, updated string
	var published int
	if err := row.Scan(&id, &p.Slug, &names, &published, &created, &updated); err != nil {
		return Page{}, err
	}
	p.ID = uuid.MustParse(id)
	if err := json.Unmarshal([]byte(names), &p.Names); err != nil {
		return Page{}, fmt.Errorf("page %s names: %w", id, err)
	}
	p.Published = published == 1
	p.CreatedAt = parseTime(created)
	p.UpdatedAt = parseTime(updated)
	return p, nil
}

// CreatePage inserts a new page. The slug must be unique.
func (s *Store) CreatePage(ctx context.Context, p Page) (Page, error) {
	return s.CreatePageWithSections(ctx, p)
}

// CreatePageWithSections inserts p and appends secs to it in one
// transaction. Either everything is written or nothing is.
func (s *Store) CreatePageWithSections(ctx context.Context, p Page, secs ...sections.Section) (Page, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := s.now()
	p.CreatedAt, p.UpdatedAt = now, now
	names, err := json.Marshal(p.Names)
	if err != nil {
		return Page{}, err
	}
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO pages (`+pageColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
			p.ID.String(), p.Slug, string(names), boolInt(p.Published), formatTime(now), formatTime(now))
		if isUniqueViolation(err) {
			return fmt.Errorf("page slug %q: %w", p.Slug, ErrSlugTaken)
		}
		if err != nil {
			return err
		}
		for _, sec := range secs {
			sec.PageID = p.ID
			if _, err := appendSection(ctx, tx, sec); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Page{}, err
	}
	return p, nil
}

// GetPage returns a page by ID.
func (s *Store) GetPage(ctx context.Context, id uuid.UUID) (Page, error) {
	p, err := scanPage(s.db.QueryRowContext(ctx, `SELECT `+pageColumns+` FROM pages WHERE id = ?`, id.String()))
	return p, notFound(err, ErrNotFound)
}

// GetPageBySlug returns a page by slug regardless of published status.
func (s *Store) GetPageBySlug(ctx context.Context, slug string) (Page, error) {
	p, err := scanPage(s.db.QueryRowContext(ctx, `SELECT `+pageColumns+` FROM pages WHERE slug = ?`, slug))
	return p, notFound(err, ErrNotFound)
}

// ListPages returns every page ordered by slug.
func (s *Store) ListPages(ctx context.Context) ([]Page, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+pageColumns+` FROM pages ORDER BY slug`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pages := []Page{}
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// UpdatePage saves slug, names and published flag of an existing page.
func (s *Store) UpdatePage(ctx context.Context, p Page) (Page, error) {
	names, err := json.Marshal(p.Names)
	if err != nil {
		return Page{}, err
	}
	p.UpdatedAt = s.now()
	res, err := s.db.ExecContext(ctx, `UPDATE pages SET slug = ?, names = ?, published = ?, updated_at = ? WHERE id = ?`,
		p.Slug, string(names), boolInt(p.Published), formatTime(p.UpdatedAt), p.ID.String())
	if isUniqueViolation(err) {
		return Page{}, fmt.Errorf("page slug %q: %w", p.Slug, ErrSlugTaken)
	}
	if err != nil {
		return Page{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Page{}, ErrNotFound
	}
	return s.GetPage(ctx, p.ID)
}

// SetPagePublished toggles the published flag of a page.
func (s *Store) SetPagePublished(ctx context.Context, id uuid.UUID, published bool) (Page, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE pages SET published = ?, updated_at = ? WHERE id = ?`,
		boolInt(published), formatTime(s.now()), id.String())
	if err != nil {
		return Page{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Page{}, ErrNotFound
	}
	return s.GetPage(ctx, id)
}

// DeletePage removes a page together with all of its sections.
func (s *Store) DeletePage(ctx context.Context, id uuid.UUID) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM page_sections WHERE page_id = ?`, id.String()); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM pages WHERE id = ?`, id.String())
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// CountSections returns the number of sections per locale for a page.
func (s *Store) CountSections(ctx context.Context, pageID uuid.UUID) (map[locale.Locale]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT locale, COUNT(*) FROM page_sections WHERE page_id = ? GROUP BY locale`, pageID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[locale.Locale]int)
	for rows.Next() {
		var loc string
		var n int
		if err := rows.Scan(&loc, &n); err != nil {
			return nil, err
		}
		out[locale.Locale(loc)] = n
	}
	return out, rows.Err()
}

// --- sections.Repository ---

const sectionColumns = `id, page_id, locale, section_type, position, is_enabled, config_json, created_at, updated_at`

func scanSection(row rowScanner) (sections.Section, error) {
	var sec sections.Section
	var id, pageID, loc, typ, cfg, created, updated string
	var enabled int
	if err := row.Scan(&id, &pageID, &loc, &typ, &sec.Position, &enabled, &cfg, &created, &updated); err != nil {
		return sections.Section{}, err
	}
	sec.ID = uuid.MustParse(id)
	sec.PageID = uuid.MustParse(pageID)
	sec.Locale = locale.Locale(loc)
	sec.Type = sections.Type(typ)
	sec.Enabled = enabled == 1
	sec.CreatedAt = parseTime(created)
	sec.UpdatedAt = parseTime(updated)
	config, err := sections.DecodeConfig(sec.Type, json.RawMessage(cfg))
	if err != nil {
		return sections.Section{}, fmt.Errorf("section %s: %w", id, err)
	}
	sec.Config = config
	return sec, nil
}

// PageExists reports whether a page with id exists.
func (s *Store) PageExists(ctx context.Context, pageID uuid.UUID) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM pages WHERE id = ?`, pageID.String()).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

// ListSections returns the sections of a page in one locale ordered by position.
func (s *Store) ListSections(ctx context.Context, pageID uuid.UUID, loc locale.Locale) ([]sections.Section, error) {
	return listSections(ctx, s.db, pageID, loc)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func listSections(ctx context.Context, q querier, pageID uuid.UUID, loc locale.Locale) ([]sections.Section, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+sectionColumns+` FROM page_sections WHERE page_id = ? AND locale = ? ORDER BY position, created_at`,
		pageID.String(), string(loc))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []sections.Section{}
	for rows.Next() {
		sec, err := scanSection(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sec)
	}
	return out, rows.Err()
}

// GetSection returns a section by ID.
func (s *Store) GetSection(ctx context.Context, id uuid.UUID) (sections.Section, error) {
	sec, err := scanSection(s.db.QueryRowContext(ctx, `SELECT `+sectionColumns+` FROM page_sections WHERE id = ?`, id.String()))
	return sec, notFound(err, sections.ErrSectionNotFound)
}

// AppendSections inserts secs at the tail of their (page, locale) lists in a
// single transaction and returns them with their assigned positions.
func (s *Store) AppendSections(ctx context.Context, secs ...sections.Section) ([]sections.Section, error) {
	out := make([]sections.Section, 0, len(secs))
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, sec := range secs {
			sec, err := appendSection(ctx, tx, sec)
			if err != nil {
				return err
			}
			out = append(out, sec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func appendSection(ctx context.Context, tx *sql.Tx, sec sections.Section) (sections.Section, error) {
	var exists int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM pages WHERE id = ?`, sec.PageID.String()).Scan(&exists)
	if err == sql.ErrNoRows {
		return sec, sections.ErrPageNotFound
	}
	if err != nil {
		return sec, err
	}
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM page_sections WHERE page_id = ? AND locale = ?`,
		sec.PageID.String(), string(sec.Locale)).Scan(&sec.Position); err != nil {
		return sec, err
	}
	cfg, err := sections.EncodeConfig(sec.Config)
	if err != nil {
		return sec, err
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO page_sections (`+sectionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sec.ID.String(), sec.PageID.String(), string(sec.Locale), string(sec.Type), sec.Position,
		boolInt(sec.Enabled), string(cfg), formatTime(sec.CreatedAt), formatTime(sec.UpdatedAt))
	return sec, err
}

// UpdateSection saves the config and enabled flag of a section. Type,
// locale and position are not writable here.
func (s *Store) UpdateSection(ctx context.Context, sec sections.Section) error {
	cfg, err := sections.EncodeConfig(sec.Config)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE page_sections SET config_json = ?, is_enabled = ?, updated_at = ? WHERE id = ?`,
		string(cfg), boolInt(sec.Enabled), formatTime(sec.UpdatedAt), sec.ID.String())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sections.ErrSectionNotFound
	}
	return nil
}

// DeleteSection removes a section and renumbers its remaining siblings so
// positions stay dense.
func (s *Store) DeleteSection(ctx context.Context, id uuid.UUID) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var pageID, loc string
		err := tx.QueryRowContext(ctx, `SELECT page_id, locale FROM page_sections WHERE id = ?`, id.String()).Scan(&pageID, &loc)
		if err != nil {
			return notFound(err, sections.ErrSectionNotFound)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM page_sections WHERE id = ?`, id.String()); err != nil {
			return err
		}
		remaining, err := listSections(ctx, tx, uuid.MustParse(pageID), locale.Locale(loc))
		if err != nil {
			return err
		}
		return writePositions(ctx, tx, sections.Compact(remaining))
	})
}

// SetPositions renumbers a (page, locale) list to follow ids. Either every
// position is written or none is.
func (s *Store) SetPositions(ctx context.Context, pageID uuid.UUID, loc locale.Locale, ids []uuid.UUID) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		current, err := listSections(ctx, tx, pageID, loc)
		if err != nil {
			return err
		}
		ordered, _, err := sections.ApplyOrder(current, ids)
		if err != nil {
			return err
		}
		return writePositions(ctx, tx, ordered)
	})
}

func writePositions(ctx context.Context, tx *sql.Tx, secs []sections.Section) error {
	stmt, err := tx.PrepareContext(ctx, `UPDATE page_sections SET position = ? WHERE id = ?`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, sec := range secs {
		if _, err := stmt.ExecContext(ctx, sec.Position, sec.ID.String()); err != nil {
			return err
		}
	}
	return nil
}
