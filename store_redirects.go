package shopdesk

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

const redirectColumns = `id, from_path, to_path, status_code, active, created_at, updated_at`

// maxRedirectHops bounds chain resolution.
const maxRedirectHops = 10

func scanRedirect(row rowScanner) (Redirect, error) {
	var r Redirect
	var id, created, updated string
	var active int
	if err := row.Scan(&id, &r.FromPath, &r.ToPath, &r.StatusCode, &active, &created, &updated); err != nil {
		return Redirect{}, err
	}
	r.ID = uuid.MustParse(id)
	r.Active = active == 1
	r.CreatedAt = parseTime(created)
	r.UpdatedAt = parseTime(updated)
	return r, nil
}

// CreateRedirect inserts a redirect after checking that it does not close a
// loop with the existing active redirects.
func (s *Store) CreateRedirect(ctx context.Context, r Redirect) (Redirect, error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	now := s.now()
	r.CreatedAt, r.UpdatedAt = now, now
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := checkRedirectLoop(ctx, tx, r); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO redirects (`+redirectColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			r.ID.String(), r.FromPath, r.ToPath, r.StatusCode, boolInt(r.Active), formatTime(now), formatTime(now))
		if isUniqueViolation(err) {
			return fmt.Errorf("redirect from %q: %w", r.FromPath, ErrSlugTaken)
		}
		return err
	})
	if err != nil {
		return Redirect{}, err
	}
	return r, nil
}

// UpdateRedirect saves a redirect, re-running the loop check.
func (s *Store) UpdateRedirect(ctx context.Context, r Redirect) (Redirect, error) {
	r.UpdatedAt = s.now()
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := checkRedirectLoop(ctx, tx, r); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `UPDATE redirects SET from_path = ?, to_path = ?, status_code = ?, active = ?, updated_at = ? WHERE id = ?`,
			r.FromPath, r.ToPath, r.StatusCode, boolInt(r.Active), formatTime(r.UpdatedAt), r.ID.String())
		if isUniqueViolation(err) {
			return fmt.Errorf("redirect from %q: %w", r.FromPath, ErrSlugTaken)
		}
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return Redirect{}, err
	}
	return s.GetRedirect(ctx, r.ID)
}

// checkRedirectLoop follows active redirects from r.ToPath and fails if the
// chain returns to r.FromPath.
func checkRedirectLoop(ctx context.Context, tx *sql.Tx, r Redirect) error {
	if !r.Active {
		return nil
	}
	if r.FromPath == r.ToPath {
		return ErrRedirectLoop
	}
	seen := map[string]bool{r.FromPath: true}
	next := r.ToPath
	for range maxRedirectHops {
		if seen[next] {
			return ErrRedirectLoop
		}
		seen[next] = true
		var to string
		err := tx.QueryRowContext(ctx, `SELECT to_path FROM redirects WHERE from_path = ? AND active = 1 AND id != ?`,
			next, r.ID.String()).Scan(&to)
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return err
		}
		next = to
	}
	return ErrRedirectLoop
}

// GetRedirect returns a redirect by ID.
func (s *Store) GetRedirect(ctx context.Context, id uuid.UUID) (Redirect, error) {
	r, err := scanRedirect(s.db.QueryRowContext(ctx, `SELECT `+redirectColumns+` FROM redirects WHERE id = ?`, id.String()))
	return r, notFound(err, ErrNotFound)
}

// ListRedirects returns every redirect ordered by source path.
func (s *Store) ListRedirects(ctx context.Context) ([]Redirect, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+redirectColumns+` FROM redirects ORDER BY from_path`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Redirect{}
	for rows.Next() {
		r, err := scanRedirect(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteRedirect removes a redirect.
func (s *Store) DeleteRedirect(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM redirects WHERE id = ?`, id.String())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ResolveRedirect follows active redirects starting at path and returns the
// final target with the status code of the first hop.
func (s *Store) ResolveRedirect(ctx context.Context, path string) (string, int, error) {
	status := 0
	current := path
	for range maxRedirectHops {
		var to string
		var code int
		err := s.db.QueryRowContext(ctx, `SELECT to_path, status_code FROM redirects WHERE from_path = ? AND active = 1`, current).Scan(&to, &code)
		if err == sql.ErrNoRows {
			break
		}
		if err != nil {
			return "", 0, err
		}
		if status == 0 {
			status = code
		}
		current = to
	}
	if status == 0 {
		return "", 0, ErrNotFound
	}
	return current, status, nil
}
