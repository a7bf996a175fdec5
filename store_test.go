package shopdesk

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/eringen/shopdesk/locale"
	"github.com/eringen/shopdesk/sections"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "data", "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func createTestPage(t *testing.T, s *Store, slug string) Page {
	t.Helper()
	p, err := s.CreatePage(context.Background(), Page{Slug: slug, Names: locale.Text{locale.VI: "Trang " + slug}})
	if err != nil {
		t.Fatalf("CreatePage failed: %v", err)
	}
	return p
}

func appendRichText(t *testing.T, s *Store, pageID uuid.UUID, loc locale.Locale, body string) sections.Section {
	t.Helper()
	now := time.Now().UTC()
	out, err := s.AppendSections(context.Background(), sections.Section{
		ID:        uuid.New(),
		PageID:    pageID,
		Locale:    loc,
		Type:      sections.TypeRichText,
		Enabled:   true,
		Config:    sections.RichTextConfig{Body: body},
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("AppendSections failed: %v", err)
	}
	return out[0]
}

func positions(t *testing.T, s *Store, pageID uuid.UUID, loc locale.Locale) map[uuid.UUID]int {
	t.Helper()
	secs, err := s.ListSections(context.Background(), pageID, loc)
	if err != nil {
		t.Fatalf("ListSections failed: %v", err)
	}
	out := make(map[uuid.UUID]int, len(secs))
	for i, sec := range secs {
		if sec.Position != i {
			t.Fatalf("section %d has position %d, want dense ordering", i, sec.Position)
		}
		out[sec.ID] = sec.Position
	}
	return out
}

func TestNewStore(t *testing.T) {
	s := setupTestStore(t)
	if s.db == nil {
		t.Fatal("db should not be nil")
	}
}

func TestCreateAndGetPage(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	p := createTestPage(t, s, "about")
	got, err := s.GetPage(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPage failed: %v", err)
	}
	if got.Slug != "about" {
		t.Errorf("Slug = %q, want %q", got.Slug, "about")
	}
	if got.Names.Get(locale.VI) != "Trang about" {
		t.Errorf("Names[vi] = %q", got.Names.Get(locale.VI))
	}
	if got.Published {
		t.Error("new page should not be published")
	}

	bySlug, err := s.GetPageBySlug(ctx, "about")
	if err != nil {
		t.Fatalf("GetPageBySlug failed: %v", err)
	}
	if bySlug.ID != p.ID {
		t.Errorf("GetPageBySlug returned %s, want %s", bySlug.ID, p.ID)
	}

	if _, err := s.GetPage(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetPage(missing) error = %v, want ErrNotFound", err)
	}
}

func TestCreatePageDuplicateSlug(t *testing.T) {
	s := setupTestStore(t)
	createTestPage(t, s, "home")
	_, err := s.CreatePage(context.Background(), Page{Slug: "home", Names: locale.Text{locale.VI: "x"}})
	if !errors.Is(err, ErrSlugTaken) {
		t.Fatalf("error = %v, want ErrSlugTaken", err)
	}
}

func TestUpdatePageAndPublish(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	p := createTestPage(t, s, "about")

	p.Slug = "about-us"
	p.Names = locale.Text{locale.VI: "Giới thiệu", locale.EN: "About us"}
	updated, err := s.UpdatePage(ctx, p)
	if err != nil {
		t.Fatalf("UpdatePage failed: %v", err)
	}
	if updated.Slug != "about-us" || updated.Names.Get(locale.EN) != "About us" {
		t.Errorf("UpdatePage = %+v", updated)
	}

	published, err := s.SetPagePublished(ctx, p.ID, true)
	if err != nil {
		t.Fatalf("SetPagePublished failed: %v", err)
	}
	if !published.Published {
		t.Error("page should be published")
	}

	if _, err := s.SetPagePublished(ctx, uuid.New(), true); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetPagePublished(missing) error = %v, want ErrNotFound", err)
	}
}

func TestListPages(t *testing.T) {
	s := setupTestStore(t)
	createTestPage(t, s, "faq")
	createTestPage(t, s, "about")

	pages, err := s.ListPages(context.Background())
	if err != nil {
		t.Fatalf("ListPages failed: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(pages))
	}
	if pages[0].Slug != "about" {
		t.Errorf("first page = %q, want about (ordered by slug)", pages[0].Slug)
	}
}

func TestAppendSectionsAssignsTailPositions(t *testing.T) {
	s := setupTestStore(t)
	p := createTestPage(t, s, "home")

	a := appendRichText(t, s, p.ID, locale.VI, "a")
	b := appendRichText(t, s, p.ID, locale.VI, "b")
	en := appendRichText(t, s, p.ID, locale.EN, "en")

	if a.Position != 0 || b.Position != 1 {
		t.Errorf("positions = %d, %d; want 0, 1", a.Position, b.Position)
	}
	if en.Position != 0 {
		t.Errorf("en position = %d, want 0 (locales are independent)", en.Position)
	}

	got, err := s.GetSection(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("GetSection failed: %v", err)
	}
	cfg, ok := got.Config.(sections.RichTextConfig)
	if !ok {
		t.Fatalf("config type = %T, want RichTextConfig", got.Config)
	}
	if cfg.Body != "b" {
		t.Errorf("Body = %q, want b", cfg.Body)
	}

	counts, err := s.CountSections(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("CountSections failed: %v", err)
	}
	if counts[locale.VI] != 2 || counts[locale.EN] != 1 || counts[locale.KO] != 0 {
		t.Errorf("counts = %v", counts)
	}
}

func TestAppendSectionsMissingPage(t *testing.T) {
	s := setupTestStore(t)
	_, err := s.AppendSections(context.Background(), sections.Section{
		ID:     uuid.New(),
		PageID: uuid.New(),
		Locale: locale.VI,
		Type:   sections.TypeRichText,
		Config: sections.RichTextConfig{Body: "x"},
	})
	if !errors.Is(err, sections.ErrPageNotFound) {
		t.Fatalf("error = %v, want ErrPageNotFound", err)
	}
}

func TestUpdateSection(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	p := createTestPage(t, s, "home")
	sec := appendRichText(t, s, p.ID, locale.VI, "old")

	sec.Config = sections.RichTextConfig{Heading: "H", Body: "new"}
	sec.Enabled = false
	if err := s.UpdateSection(ctx, sec); err != nil {
		t.Fatalf("UpdateSection failed: %v", err)
	}
	got, err := s.GetSection(ctx, sec.ID)
	if err != nil {
		t.Fatalf("GetSection failed: %v", err)
	}
	if got.Enabled {
		t.Error("section should be disabled")
	}
	if cfg := got.Config.(sections.RichTextConfig); cfg.Body != "new" || cfg.Heading != "H" {
		t.Errorf("config = %+v", cfg)
	}

	sec.ID = uuid.New()
	if err := s.UpdateSection(ctx, sec); !errors.Is(err, sections.ErrSectionNotFound) {
		t.Errorf("UpdateSection(missing) error = %v, want ErrSectionNotFound", err)
	}
}

func TestSetPositions(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	p := createTestPage(t, s, "home")
	a := appendRichText(t, s, p.ID, locale.VI, "a")
	b := appendRichText(t, s, p.ID, locale.VI, "b")
	c := appendRichText(t, s, p.ID, locale.VI, "c")

	if err := s.SetPositions(ctx, p.ID, locale.VI, []uuid.UUID{c.ID, a.ID, b.ID}); err != nil {
		t.Fatalf("SetPositions failed: %v", err)
	}
	got := positions(t, s, p.ID, locale.VI)
	if got[c.ID] != 0 || got[a.ID] != 1 || got[b.ID] != 2 {
		t.Errorf("positions = %v", got)
	}
}

func TestSetPositionsRejectsPartialOrder(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	p := createTestPage(t, s, "home")
	a := appendRichText(t, s, p.ID, locale.VI, "a")
	b := appendRichText(t, s, p.ID, locale.VI, "b")

	cases := map[string][]uuid.UUID{
		"missing":   {b.ID},
		"duplicate": {b.ID, b.ID},
		"foreign":   {b.ID, uuid.New()},
	}
	for name, ids := range cases {
		t.Run(name, func(t *testing.T) {
			err := s.SetPositions(ctx, p.ID, locale.VI, ids)
			if !errors.Is(err, sections.ErrOrderMismatch) {
				t.Fatalf("error = %v, want ErrOrderMismatch", err)
			}
			got := positions(t, s, p.ID, locale.VI)
			if got[a.ID] != 0 || got[b.ID] != 1 {
				t.Errorf("positions changed after failed reorder: %v", got)
			}
		})
	}
}

func TestDeleteSectionCompacts(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	p := createTestPage(t, s, "home")
	a := appendRichText(t, s, p.ID, locale.VI, "a")
	b := appendRichText(t, s, p.ID, locale.VI, "b")
	c := appendRichText(t, s, p.ID, locale.VI, "c")

	if err := s.DeleteSection(ctx, b.ID); err != nil {
		t.Fatalf("DeleteSection failed: %v", err)
	}
	got := positions(t, s, p.ID, locale.VI)
	if len(got) != 2 || got[a.ID] != 0 || got[c.ID] != 1 {
		t.Errorf("positions = %v", got)
	}

	d := appendRichText(t, s, p.ID, locale.VI, "d")
	if d.Position != 2 {
		t.Errorf("append after delete got position %d, want 2", d.Position)
	}

	if err := s.DeleteSection(ctx, b.ID); !errors.Is(err, sections.ErrSectionNotFound) {
		t.Errorf("DeleteSection(again) error = %v, want ErrSectionNotFound", err)
	}
}

func TestDeletePageRemovesSections(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	p := createTestPage(t, s, "home")
	sec := appendRichText(t, s, p.ID, locale.VI, "a")
	appendRichText(t, s, p.ID, locale.EN, "b")

	if err := s.DeletePage(ctx, p.ID); err != nil {
		t.Fatalf("DeletePage failed: %v", err)
	}
	if _, err := s.GetSection(ctx, sec.ID); !errors.Is(err, sections.ErrSectionNotFound) {
		t.Errorf("section should be gone, got %v", err)
	}
	if ok, _ := s.PageExists(ctx, p.ID); ok {
		t.Error("page should be gone")
	}
	if err := s.DeletePage(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeletePage(again) error = %v, want ErrNotFound", err)
	}
}

func TestSectionServiceOnStore(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	svc := sections.NewService(s)
	p := createTestPage(t, s, "home")

	hero, err := svc.Create(ctx, sections.CreateInput{PageID: p.ID, Locale: locale.VI, Type: sections.TypeHero,
		Config: json.RawMessage(`{"heading":"Xin chào"}`)})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	faq, err := svc.Create(ctx, sections.CreateInput{PageID: p.ID, Locale: locale.VI, Type: sections.TypeFAQ})
	if err != nil {
		t.Fatalf("Create(default config) failed: %v", err)
	}

	toggled, err := svc.Toggle(ctx, hero.ID)
	if err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if toggled.Enabled {
		t.Error("Toggle should disable an enabled section")
	}

	copied, err := svc.CopyLocale(ctx, p.ID, locale.VI, locale.EN)
	if err != nil {
		t.Fatalf("CopyLocale failed: %v", err)
	}
	if len(copied) != 2 || copied[0].Type != sections.TypeHero || copied[1].Type != sections.TypeFAQ {
		t.Fatalf("copied = %+v", copied)
	}
	if copied[0].ID == hero.ID {
		t.Error("copies must get new IDs")
	}

	reordered, err := svc.Reorder(ctx, p.ID, locale.VI, []uuid.UUID{faq.ID, hero.ID})
	if err != nil {
		t.Fatalf("Reorder failed: %v", err)
	}
	if reordered[0].ID != faq.ID || reordered[1].ID != hero.ID {
		t.Errorf("reordered = %v", sections.IDs(reordered))
	}

	en, err := svc.List(ctx, p.ID, locale.EN)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if en[0].Type != sections.TypeHero {
		t.Error("reordering vi must not affect en")
	}
}

func TestCreatePageWithSections(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()
	section := func(id uuid.UUID, body string) sections.Section {
		return sections.Section{
			ID: id, Locale: locale.VI, Type: sections.TypeRichText, Enabled: true,
			Config: sections.RichTextConfig{Body: body}, CreatedAt: now, UpdatedAt: now,
		}
	}

	p, err := s.CreatePageWithSections(ctx, Page{Slug: "about", Names: locale.Text{locale.VI: "Giới thiệu"}},
		section(uuid.New(), "a"), section(uuid.New(), "b"))
	if err != nil {
		t.Fatalf("CreatePageWithSections failed: %v", err)
	}
	secs, err := s.ListSections(ctx, p.ID, locale.VI)
	if err != nil {
		t.Fatal(err)
	}
	if len(secs) != 2 || secs[0].Position != 0 || secs[1].Position != 1 || secs[1].PageID != p.ID {
		t.Errorf("sections = %+v, want two at positions 0 and 1", secs)
	}

	dup := uuid.New()
	_, err = s.CreatePageWithSections(ctx, Page{Slug: "broken", Names: locale.Text{locale.VI: "Hỏng"}},
		section(dup, "a"), section(dup, "b"))
	if err == nil {
		t.Fatal("expected duplicate section id to fail")
	}
	if _, err := s.GetPageBySlug(ctx, "broken"); !errors.Is(err, ErrNotFound) {
		t.Errorf("page written despite failed section insert: %v", err)
	}
}
