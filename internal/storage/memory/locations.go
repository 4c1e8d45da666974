package memory

import (
	"strings"
	"sync"

	"github.com/filaops/core/internal/core"
)

// LocationStore is an in-memory core.LocationRepository.
type LocationStore struct {
	mu        sync.RWMutex
	locations map[core.ID]core.Location
	codeIndex map[string]core.ID
	defaultID core.ID
}

// NewLocationStore builds an empty LocationStore.
func NewLocationStore() *LocationStore {
	return &LocationStore{
		locations: make(map[core.ID]core.Location),
		codeIndex: make(map[string]core.ID),
	}
}

func (s *LocationStore) Create(loc core.Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.codeIndex[strings.ToLower(loc.Code)]; exists {
		return core.NewFieldError(core.ErrValidation, core.CodeDuplicateSKU, "location code already in use: "+loc.Code, "code")
	}
	s.locations[loc.ID] = loc
	s.codeIndex[strings.ToLower(loc.Code)] = loc.ID
	if loc.Default {
		s.defaultID = loc.ID
	}
	return nil
}

func (s *LocationStore) Get(id core.ID) (core.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	loc, ok := s.locations[id]
	if !ok {
		return core.Location{}, core.NewFieldError(core.ErrNotFound, core.CodeUnknownLocation, "unknown location", "location_id")
	}
	return loc, nil
}

func (s *LocationStore) GetByCode(code string) (core.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.codeIndex[strings.ToLower(code)]
	if !ok {
		return core.Location{}, core.NewFieldError(core.ErrNotFound, core.CodeUnknownLocation, "unknown location: "+code, "code")
	}
	return s.locations[id], nil
}

func (s *LocationStore) GetDefault() (core.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	loc, ok := s.locations[s.defaultID]
	if !ok {
		return core.Location{}, core.NewFieldError(core.ErrNotFound, core.CodeUnknownLocation, "no default location configured", "location_id")
	}
	return loc, nil
}

func (s *LocationStore) List() ([]core.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Location, 0, len(s.locations))
	for _, loc := range s.locations {
		out = append(out, loc)
	}
	return out, nil
}
