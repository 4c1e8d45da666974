// Package memory provides in-memory repository implementations for
// every storage-agnostic interface in the module, used by the demo CLI
// and by package tests: a slice of records plus an index map per
// entity, made concurrency-safe with a RWMutex since this module's
// services write concurrently rather than load once and only read.
package memory

import (
	"strings"
	"sync"

	"github.com/filaops/core/internal/core"
	"github.com/filaops/core/internal/itemmaster"
)

// ItemStore is an in-memory itemmaster.Repository.
type ItemStore struct {
	mu            sync.RWMutex
	items         map[core.ID]itemmaster.Item
	skuIndex      map[string]core.ID // lower-cased sku -> id
	seqCounters   map[string]int
	materialTypes map[string]itemmaster.MaterialType
	colors        map[string]itemmaster.Color
}

// NewItemStore builds an empty ItemStore.
func NewItemStore() *ItemStore {
	return &ItemStore{
		items:         make(map[core.ID]itemmaster.Item),
		skuIndex:      make(map[string]core.ID),
		seqCounters:   make(map[string]int),
		materialTypes: make(map[string]itemmaster.MaterialType),
		colors:        make(map[string]itemmaster.Color),
	}
}

// SeedMaterialType registers a material type for lookup by code. The
// error return exists so callers can treat this and
// postgres.ItemRepository.SeedMaterialType through one interface; this
// implementation never fails.
func (s *ItemStore) SeedMaterialType(mt itemmaster.MaterialType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.materialTypes[strings.ToLower(mt.Code)] = mt
	return nil
}

// SeedColor registers a color for lookup by code.
func (s *ItemStore) SeedColor(c itemmaster.Color) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.colors[strings.ToLower(c.Code)] = c
	return nil
}

func (s *ItemStore) Create(item itemmaster.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(item.SKU)
	if _, exists := s.skuIndex[key]; exists {
		return core.ErrDuplicateSKU(item.SKU)
	}
	s.items[item.ID] = item
	s.skuIndex[key] = item.ID
	return nil
}

func (s *ItemStore) Update(item itemmaster.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[item.ID]; !exists {
		return core.ErrItemNotFound(item.SKU)
	}
	s.items[item.ID] = item
	return nil
}

func (s *ItemStore) Get(id core.ID) (itemmaster.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, exists := s.items[id]
	if !exists {
		return itemmaster.Item{}, core.ErrItemNotFound(id.String())
	}
	return item, nil
}

func (s *ItemStore) GetBySKU(sku string) (itemmaster.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, exists := s.skuIndex[strings.ToLower(sku)]
	if !exists {
		return itemmaster.Item{}, core.ErrItemNotFound(sku)
	}
	return s.items[id], nil
}

func (s *ItemStore) List(f itemmaster.Filter) ([]itemmaster.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []itemmaster.Item
	for _, item := range s.items {
		if f.Kind != nil && item.Kind != *f.Kind {
			continue
		}
		if f.Active != nil && item.Active != *f.Active {
			continue
		}
		if f.LowStockOf != nil {
			onHand, ok := f.LowStockOf(item)
			if !ok || onHand.GreaterThan(item.ReorderPoint) {
				continue
			}
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *ItemStore) NextSKUSeq(prefix string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seqCounters[prefix]++
	return s.seqCounters[prefix], nil
}

func (s *ItemStore) GetMaterialType(code string) (itemmaster.MaterialType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	mt, ok := s.materialTypes[strings.ToLower(code)]
	if !ok {
		return itemmaster.MaterialType{}, core.NewFieldError(core.ErrNotFound, core.CodeUnknownMaterialType, "unknown material type: "+code, "material_type_code")
	}
	return mt, nil
}

func (s *ItemStore) GetColor(code string) (itemmaster.Color, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.colors[strings.ToLower(code)]
	if !ok {
		return itemmaster.Color{}, core.NewFieldError(core.ErrNotFound, core.CodeUnknownColor, "unknown color: "+code, "color_code")
	}
	return c, nil
}
