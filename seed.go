package shopdesk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/eringen/shopdesk/locale"
	"github.com/eringen/shopdesk/sections"
)

// SeedFile is the YAML document accepted by Seed.
//
//	pages:
//	  - slug: home
//	    names: {vi: Trang chủ, en: Home}
//	    published: true
//	    sections:
//	      vi:
//	        - type: hero
//	          config: {heading: Xin chào}
type SeedFile struct {
	Pages []SeedPage `yaml:"pages"`
}

// SeedPage is a page with its sections grouped by locale.
type SeedPage struct {
	Slug      string                          `yaml:"slug"`
	Names     locale.Text                     `yaml:"names"`
	Published bool                            `yaml:"published"`
	Sections  map[locale.Locale][]SeedSection `yaml:"sections"`
}

// SeedSection is one section entry. An empty Config uses the type defaults.
type SeedSection struct {
	Type    sections.Type  `yaml:"type"`
	Enabled *bool          `yaml:"enabled"`
	Config  map[string]any `yaml:"config"`
}

// SeedResult counts what Seed wrote.
type SeedResult struct {
	Pages    int
	Sections int
	Skipped  int
}

// Seed loads pages and sections from r. Every section of a page is
// validated before anything is written, and a page is stored together with
// its sections in one transaction. Pages whose slug already exists are
// skipped so a seed file can be applied repeatedly.
func (a *App) Seed(ctx context.Context, r io.Reader) (SeedResult, error) {
	var f SeedFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return SeedResult{}, fmt.Errorf("seed: decode: %w", err)
	}
	var res SeedResult
	for _, sp := range f.Pages {
		page := Page{Slug: sp.Slug, Names: sp.Names.Clean(), Published: sp.Published}
		if page.Slug == "" {
			page.Slug = Slugify(page.Names.Get(locale.Default))
		}
		if err := page.Validate(); err != nil {
			return res, fmt.Errorf("seed: page %q: %w", page.Slug, err)
		}
		for loc := range sp.Sections {
			if !loc.Valid() {
				return res, fmt.Errorf("seed: page %q: %w: %q", page.Slug, locale.ErrUnsupported, loc)
			}
		}
		page.ID = uuid.New()
		secs, err := a.prepareSeedSections(page, sp.Sections)
		if err != nil {
			return res, err
		}
		_, err = a.Store.CreatePageWithSections(ctx, page, secs...)
		if errors.Is(err, ErrSlugTaken) {
			a.Logger.Info("seed: page exists, skipping", zap.String("slug", page.Slug))
			res.Skipped++
			continue
		}
		if err != nil {
			return res, fmt.Errorf("seed: page %q: %w", page.Slug, err)
		}
		res.Pages++
		res.Sections += len(secs)
	}
	a.Cache.Invalidate()
	return res, nil
}

// prepareSeedSections validates the sections of page in locale order.
func (a *App) prepareSeedSections(page Page, byLocale map[locale.Locale][]SeedSection) ([]sections.Section, error) {
	var out []sections.Section
	for _, loc := range locale.All {
		for i, ss := range byLocale[loc] {
			in := sections.CreateInput{PageID: page.ID, Locale: loc, Type: ss.Type, Enabled: ss.Enabled}
			if len(ss.Config) > 0 {
				raw, err := json.Marshal(ss.Config)
				if err != nil {
					return nil, fmt.Errorf("seed: page %q %s section %d: %w", page.Slug, loc, i, err)
				}
				in.Config = raw
			}
			sec, err := a.Sections.Prepare(in)
			if err != nil {
				return nil, fmt.Errorf("seed: page %q %s section %d: %w", page.Slug, loc, i, err)
			}
			out = append(out, sec)
		}
	}
	return out, nil
}
