package sections

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/eringen/shopdesk/locale"
)

// MemoryRepository is an in-process Repository for service tests.
type MemoryRepository struct {
	mu       sync.RWMutex
	pages    map[uuid.UUID]struct{}
	sections map[uuid.UUID]Section
}

// NewMemoryRepository returns an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		pages:    make(map[uuid.UUID]struct{}),
		sections: make(map[uuid.UUID]Section),
	}
}

// AddPage registers a page so sections can be attached to it.
func (m *MemoryRepository) AddPage(id uuid.UUID) {
	m.mu.Lock()
	m.pages[id] = struct{}{}
	m.mu.Unlock()
}

func (m *MemoryRepository) PageExists(_ context.Context, pageID uuid.UUID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.pages[pageID]
	return ok, nil
}

func (m *MemoryRepository) ListSections(_ context.Context, pageID uuid.UUID, loc locale.Locale) ([]Section, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Sorted(m.siblings(pageID, loc)), nil
}

func (m *MemoryRepository) siblings(pageID uuid.UUID, loc locale.Locale) []Section {
	var out []Section
	for _, s := range m.sections {
		if s.PageID == pageID && s.Locale == loc {
			out = append(out, s)
		}
	}
	return out
}

func (m *MemoryRepository) GetSection(_ context.Context, id uuid.UUID) (Section, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sections[id]
	if !ok {
		return Section{}, ErrSectionNotFound
	}
	return s, nil
}

func (m *MemoryRepository) AppendSections(_ context.Context, secs ...Section) ([]Section, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Section, 0, len(secs))
	for _, s := range secs {
		if _, ok := m.pages[s.PageID]; !ok {
			return nil, ErrPageNotFound
		}
	}
	for _, s := range secs {
		s.Position = len(m.siblings(s.PageID, s.Locale))
		m.sections[s.ID] = s
		out = append(out, s)
	}
	return out, nil
}

func (m *MemoryRepository) UpdateSection(_ context.Context, sec Section) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.sections[sec.ID]
	if !ok {
		return ErrSectionNotFound
	}
	cur.Enabled = sec.Enabled
	cur.Config = sec.Config
	cur.UpdatedAt = sec.UpdatedAt
	m.sections[sec.ID] = cur
	return nil
}

func (m *MemoryRepository) DeleteSection(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sec, ok := m.sections[id]
	if !ok {
		return ErrSectionNotFound
	}
	delete(m.sections, id)
	for _, s := range Compact(m.siblings(sec.PageID, sec.Locale)) {
		m.sections[s.ID] = s
	}
	return nil
}

func (m *MemoryRepository) SetPositions(_ context.Context, pageID uuid.UUID, loc locale.Locale, ids []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ordered, _, err := ApplyOrder(m.siblings(pageID, loc), ids)
	if err != nil {
		return err
	}
	for _, s := range ordered {
		m.sections[s.ID] = s
	}
	return nil
}
