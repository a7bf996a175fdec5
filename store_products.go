package shopdesk

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/eringen/shopdesk/locale"
)

const productColumns = `id, slug, sku, price_minor, currency, stock, active, created_at, updated_at`

func scanProduct(row rowScanner) (Product, error) {
	var p Product
	var id, created, updated string
	var active int
	if err := row.Scan(&id, &p.Slug, &p.SKU, &p.PriceMinor, &p.Currency, &p.Stock, &active, &created, &updated); err != nil {
		return Product{}, err
	}
	p.ID = uuid.MustParse(id)
	p.Active = active == 1
	p.CreatedAt = parseTime(created)
	p.UpdatedAt = parseTime(updated)
	return p, nil
}

// CreateProduct inserts a product with its translations, media and links in
// one transaction.
func (s *Store) CreateProduct(ctx context.Context, p Product) (Product, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := s.now()
	p.CreatedAt, p.UpdatedAt = now, now
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO products (`+productColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID.String(), p.Slug, p.SKU, p.PriceMinor, p.Currency, p.Stock, boolInt(p.Active),
			formatTime(now), formatTime(now))
		if isUniqueViolation(err) {
			return fmt.Errorf("product slug %q or sku %q: %w", p.Slug, p.SKU, ErrSlugTaken)
		}
		if err != nil {
			return err
		}
		return writeProductChildren(ctx, tx, p)
	})
	if err != nil {
		return Product{}, err
	}
	return s.GetProduct(ctx, p.ID)
}

// UpdateProduct replaces every field of a product, including its child rows,
// in one transaction.
func (s *Store) UpdateProduct(ctx context.Context, p Product) (Product, error) {
	p.UpdatedAt = s.now()
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE products SET slug = ?, sku = ?, price_minor = ?, currency = ?, stock = ?, active = ?, updated_at = ? WHERE id = ?`,
			p.Slug, p.SKU, p.PriceMinor, p.Currency, p.Stock, boolInt(p.Active), formatTime(p.UpdatedAt), p.ID.String())
		if isUniqueViolation(err) {
			return fmt.Errorf("product slug %q or sku %q: %w", p.Slug, p.SKU, ErrSlugTaken)
		}
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		for _, table := range []string{"product_translations", "product_media", "product_links"} {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE product_id = ?`, p.ID.String()); err != nil {
				return err
			}
		}
		return writeProductChildren(ctx, tx, p)
	})
	if err != nil {
		return Product{}, err
	}
	return s.GetProduct(ctx, p.ID)
}

func writeProductChildren(ctx context.Context, tx *sql.Tx, p Product) error {
	for loc, tr := range p.Translations {
		if _, err := tx.ExecContext(ctx, `INSERT INTO product_translations (product_id, locale, name, description) VALUES (?, ?, ?, ?)`,
			p.ID.String(), string(loc), tr.Name, tr.Description); err != nil {
			return err
		}
	}
	for i, id := range p.MediaIDs {
		if _, err := tx.ExecContext(ctx, `INSERT INTO product_media (product_id, media_id, position) VALUES (?, ?, ?)`,
			p.ID.String(), id.String(), i); err != nil {
			return err
		}
	}
	for i, l := range p.Links {
		if _, err := tx.ExecContext(ctx, `INSERT INTO product_links (product_id, position, label, url) VALUES (?, ?, ?, ?)`,
			p.ID.String(), i, l.Label, l.URL); err != nil {
			return err
		}
	}
	return nil
}

// GetProduct returns a product with its translations, media and links.
func (s *Store) GetProduct(ctx context.Context, id uuid.UUID) (Product, error) {
	p, err := scanProduct(s.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id.String()))
	if err != nil {
		return Product{}, notFound(err, ErrNotFound)
	}
	if err := s.loadProductChildren(ctx, &p); err != nil {
		return Product{}, err
	}
	return p, nil
}

// GetProductBySlug returns a product by slug.
func (s *Store) GetProductBySlug(ctx context.Context, slug string) (Product, error) {
	p, err := scanProduct(s.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE slug = ?`, slug))
	if err != nil {
		return Product{}, notFound(err, ErrNotFound)
	}
	if err := s.loadProductChildren(ctx, &p); err != nil {
		return Product{}, err
	}
	return p, nil
}

// ListProducts returns products ordered by newest first. With activeOnly set,
// inactive products are skipped.
func (s *Store) ListProducts(ctx context.Context, activeOnly bool) ([]Product, error) {
	q := `SELECT ` + productColumns + ` FROM products`
	if activeOnly {
		q += ` WHERE active = 1`
	}
	q += ` ORDER BY created_at DESC, slug`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	products := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range products {
		if err := s.loadProductChildren(ctx, &products[i]); err != nil {
			return nil, err
		}
	}
	return products, nil
}

// DeleteProduct removes a product. Child rows cascade.
func (s *Store) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id.String())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) loadProductChildren(ctx context.Context, p *Product) error {
	p.Translations = make(map[locale.Locale]ProductTranslation)
	p.MediaIDs = []uuid.UUID{}
	p.Links = []ProductLink{}

	rows, err := s.db.QueryContext(ctx, `SELECT locale, name, description FROM product_translations WHERE product_id = ?`, p.ID.String())
	if err != nil {
		return err
	}
	for rows.Next() {
		var loc string
		var tr ProductTranslation
		if err := rows.Scan(&loc, &tr.Name, &tr.Description); err != nil {
			rows.Close()
			return err
		}
		p.Translations[locale.Locale(loc)] = tr
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = s.db.QueryContext(ctx, `SELECT media_id FROM product_media WHERE product_id = ? ORDER BY position`, p.ID.String())
	if err != nil {
		return err
	}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		p.MediaIDs = append(p.MediaIDs, uuid.MustParse(id))
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = s.db.QueryContext(ctx, `SELECT label, url FROM product_links WHERE product_id = ? ORDER BY position`, p.ID.String())
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var l ProductLink
		if err := rows.Scan(&l.Label, &l.URL); err != nil {
			return err
		}
		p.Links = append(p.Links, l)
	}
	return rows.Err()
}

// CountProducts returns the total number of products.
func (s *Store) CountProducts(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n)
	return n, err
}
