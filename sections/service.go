package sections

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/eringen/shopdesk/locale"
)

var (
	ErrSectionNotFound  = errors.New("sections: section not found")
	ErrPageNotFound     = errors.New("sections: page not found")
	ErrOrderMismatch    = errors.New("sections: order does not match current sections")
	ErrUnknownType      = errors.New("sections: unknown section type")
	ErrInvalidConfig    = errors.New("sections: invalid config")
	ErrInvalidPosition  = errors.New("sections: invalid position")
	ErrSameLocale       = errors.New("sections: source and target locale are the same")
	ErrUnsupportedWrite = errors.New("sections: config of unsupported type cannot be edited")
)

// Repository persists sections. Implementations must keep positions within
// (page, locale) dense: AppendSections writes at the tail, DeleteSection
// compacts the remaining siblings, and SetPositions renumbers atomically.
type Repository interface {
	PageExists(ctx context.Context, pageID uuid.UUID) (bool, error)
	ListSections(ctx context.Context, pageID uuid.UUID, loc locale.Locale) ([]Section, error)
	GetSection(ctx context.Context, id uuid.UUID) (Section, error)
	AppendSections(ctx context.Context, secs ...Section) ([]Section, error)
	UpdateSection(ctx context.Context, sec Section) error
	DeleteSection(ctx context.Context, id uuid.UUID) error
	SetPositions(ctx context.Context, pageID uuid.UUID, loc locale.Locale, ids []uuid.UUID) error
}

// Service implements the section-builder operations on top of a Repository.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a Service backed by repo.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// CreateInput describes a new section. A nil Config uses the type defaults
// and a nil Enabled means enabled.
type CreateInput struct {
	PageID  uuid.UUID       `json:"-"`
	Locale  locale.Locale   `json:"-"`
	Type    Type            `json:"section_type"`
	Config  json.RawMessage `json:"config,omitempty"`
	Enabled *bool           `json:"is_enabled,omitempty"`
}

// UpdateInput edits a section in place. Nil fields are left unchanged.
type UpdateInput struct {
	ID      uuid.UUID       `json:"-"`
	Config  json.RawMessage `json:"config,omitempty"`
	Enabled *bool           `json:"is_enabled,omitempty"`
}

// List returns the sections of a page in one locale, ordered by position.
// A locale without sections yields an empty list.
func (s *Service) List(ctx context.Context, pageID uuid.UUID, loc locale.Locale) ([]Section, error) {
	if !loc.Valid() {
		return nil, locale.ErrUnsupported
	}
	secs, err := s.repo.ListSections(ctx, pageID, loc)
	if err != nil {
		return nil, err
	}
	if secs == nil {
		secs = []Section{}
	}
	return Sorted(secs), nil
}

// Get returns a single section.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Section, error) {
	return s.repo.GetSection(ctx, id)
}

// Create appends a new section at the tail of its (page, locale) list.
func (s *Service) Create(ctx context.Context, in CreateInput) (Section, error) {
	sec, err := s.Prepare(in)
	if err != nil {
		return Section{}, err
	}
	ok, err := s.repo.PageExists(ctx, in.PageID)
	if err != nil {
		return Section{}, err
	}
	if !ok {
		return Section{}, ErrPageNotFound
	}
	created, err := s.repo.AppendSections(ctx, sec)
	if err != nil {
		return Section{}, err
	}
	return created[0], nil
}

// Prepare validates in and builds the section Create would append, without
// touching the repository. The position is assigned when it is stored.
func (s *Service) Prepare(in CreateInput) (Section, error) {
	if !in.Locale.Valid() {
		return Section{}, locale.ErrUnsupported
	}
	if !in.Type.Known() {
		return Section{}, fmt.Errorf("%w: %q", ErrUnknownType, in.Type)
	}
	var cfg Config
	if len(in.Config) == 0 || string(in.Config) == "null" {
		cfg = EditorFor(in.Type).NewConfig()
	} else {
		var err error
		cfg, err = DecodeConfig(in.Type, in.Config)
		if err != nil {
			return Section{}, err
		}
	}
	enabled := true
	if in.Enabled != nil {
		enabled = *in.Enabled
	}
	now := s.now()
	return Section{
		ID:        uuid.New(),
		PageID:    in.PageID,
		Locale:    in.Locale,
		Type:      in.Type,
		Enabled:   enabled,
		Config:    cfg,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Update replaces the config and/or enabled flag of a section. The type and
// position never change.
func (s *Service) Update(ctx context.Context, in UpdateInput) (Section, error) {
	sec, err := s.repo.GetSection(ctx, in.ID)
	if err != nil {
		return Section{}, err
	}
	if len(in.Config) > 0 && string(in.Config) != "null" {
		if !sec.Type.Known() {
			return Section{}, ErrUnsupportedWrite
		}
		cfg, err := DecodeConfig(sec.Type, in.Config)
		if err != nil {
			return Section{}, err
		}
		sec.Config = cfg
	}
	if in.Enabled != nil {
		sec.Enabled = *in.Enabled
	}
	sec.UpdatedAt = s.now()
	if err := s.repo.UpdateSection(ctx, sec); err != nil {
		return Section{}, err
	}
	return sec, nil
}

// Toggle flips the enabled flag of one section.
func (s *Service) Toggle(ctx context.Context, id uuid.UUID) (Section, error) {
	sec, err := s.repo.GetSection(ctx, id)
	if err != nil {
		return Section{}, err
	}
	sec.Enabled = !sec.Enabled
	sec.UpdatedAt = s.now()
	if err := s.repo.UpdateSection(ctx, sec); err != nil {
		return Section{}, err
	}
	return sec, nil
}

// Delete removes a section; the repository closes the gap it leaves.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteSection(ctx, id)
}

// Reorder persists ids as the new order of a (page, locale) list and returns
// the reordered sections. If persisting fails the stored order is unchanged.
func (s *Service) Reorder(ctx context.Context, pageID uuid.UUID, loc locale.Locale, ids []uuid.UUID) ([]Section, error) {
	current, err := s.List(ctx, pageID, loc)
	if err != nil {
		return nil, err
	}
	ordered, changed, err := ApplyOrder(current, ids)
	if err != nil {
		return nil, err
	}
	if !changed {
		return ordered, nil
	}
	if err := s.repo.SetPositions(ctx, pageID, loc, ids); err != nil {
		return nil, fmt.Errorf("reorder sections: %w", err)
	}
	return ordered, nil
}

// Move relocates one section to index to within its list.
func (s *Service) Move(ctx context.Context, id uuid.UUID, to int) ([]Section, error) {
	sec, err := s.repo.GetSection(ctx, id)
	if err != nil {
		return nil, err
	}
	current, err := s.List(ctx, sec.PageID, sec.Locale)
	if err != nil {
		return nil, err
	}
	ids, err := MoveID(IDs(current), id, to)
	if err != nil {
		return nil, err
	}
	return s.Reorder(ctx, sec.PageID, sec.Locale, ids)
}

// CopyLocale appends copies of every section in from to the tail of to,
// keeping their relative order.
func (s *Service) CopyLocale(ctx context.Context, pageID uuid.UUID, from, to locale.Locale) ([]Section, error) {
	if from == to {
		return nil, ErrSameLocale
	}
	if !to.Valid() {
		return nil, locale.ErrUnsupported
	}
	ok, err := s.repo.PageExists(ctx, pageID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrPageNotFound
	}
	src, err := s.List(ctx, pageID, from)
	if err != nil {
		return nil, err
	}
	if len(src) == 0 {
		return s.List(ctx, pageID, to)
	}
	now := s.now()
	clones := make([]Section, len(src))
	for i, sec := range src {
		clones[i] = Section{
			ID:        uuid.New(),
			PageID:    pageID,
			Locale:    to,
			Type:      sec.Type,
			Enabled:   sec.Enabled,
			Config:    sec.Config,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	if _, err := s.repo.AppendSections(ctx, clones...); err != nil {
		return nil, err
	}
	return s.List(ctx, pageID, to)
}
