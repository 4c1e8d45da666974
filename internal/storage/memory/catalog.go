package memory

import (
	"strings"
	"sync"
	"time"

	"github.com/filaops/core/internal/catalog"
	"github.com/filaops/core/internal/core"
)

// CatalogStore is an in-memory catalog.Repository.
type CatalogStore struct {
	mu          sync.RWMutex
	boms        map[core.ID]catalog.BOM
	bomLines    map[core.ID][]catalog.BOMLine // bom id -> lines
	routings    map[core.ID]catalog.Routing
	operations  map[core.ID][]catalog.Operation // routing id -> ops
	workCenters map[core.ID]catalog.WorkCenter
	wcCodeIndex map[string]core.ID
}

// NewCatalogStore builds an empty CatalogStore.
func NewCatalogStore() *CatalogStore {
	return &CatalogStore{
		boms:        make(map[core.ID]catalog.BOM),
		bomLines:    make(map[core.ID][]catalog.BOMLine),
		routings:    make(map[core.ID]catalog.Routing),
		operations:  make(map[core.ID][]catalog.Operation),
		workCenters: make(map[core.ID]catalog.WorkCenter),
		wcCodeIndex: make(map[string]core.ID),
	}
}

func (s *CatalogStore) CreateBOM(b catalog.BOM) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.boms[b.ID] = b
	return nil
}

func (s *CatalogStore) CreateBOMLines(lines []catalog.BOMLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range lines {
		s.bomLines[l.BOMID] = append(s.bomLines[l.BOMID], l)
	}
	return nil
}

func (s *CatalogStore) BOMsForParent(parentItemID core.ID) ([]catalog.BOM, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []catalog.BOM
	for _, b := range s.boms {
		if b.ParentItemID == parentItemID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *CatalogStore) BOMLinesForBOM(bomID core.ID) ([]catalog.BOMLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]catalog.BOMLine, len(s.bomLines[bomID]))
	copy(out, s.bomLines[bomID])
	return out, nil
}

func (s *CatalogStore) DeactivateBOM(id core.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.boms[id]
	if !ok {
		return core.NewError(core.ErrNotFound, core.CodeCatalogInconsistency, "unknown bom")
	}
	b.Active = false
	s.boms[id] = b
	return nil
}

func (s *CatalogStore) CreateRouting(r catalog.Routing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routings[r.ID] = r
	return nil
}

func (s *CatalogStore) CreateOperations(ops []catalog.Operation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, op := range ops {
		s.operations[op.RoutingID] = append(s.operations[op.RoutingID], op)
	}
	return nil
}

func (s *CatalogStore) RoutingsForParent(parentItemID core.ID) ([]catalog.Routing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []catalog.Routing
	for _, r := range s.routings {
		if r.ParentItemID == parentItemID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *CatalogStore) OperationsForRouting(routingID core.ID) ([]catalog.Operation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]catalog.Operation, len(s.operations[routingID]))
	copy(out, s.operations[routingID])
	return out, nil
}

func (s *CatalogStore) DeactivateRouting(id core.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.routings[id]
	if !ok {
		return core.NewError(core.ErrNotFound, core.CodeCatalogInconsistency, "unknown routing")
	}
	r.Active = false
	s.routings[id] = r
	return nil
}

func (s *CatalogStore) CreateWorkCenter(wc catalog.WorkCenter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workCenters[wc.ID] = wc
	s.wcCodeIndex[strings.ToLower(wc.Code)] = wc.ID
	return nil
}

func (s *CatalogStore) GetWorkCenter(id core.ID) (catalog.WorkCenter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wc, ok := s.workCenters[id]
	if !ok {
		return catalog.WorkCenter{}, core.NewError(core.ErrNotFound, core.CodeCatalogInconsistency, "unknown work center")
	}
	return wc, nil
}

func (s *CatalogStore) GetWorkCenterByCode(code string) (catalog.WorkCenter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.wcCodeIndex[strings.ToLower(code)]
	if !ok {
		return catalog.WorkCenter{}, core.NewError(core.ErrNotFound, core.CodeCatalogInconsistency, "unknown work center: "+code)
	}
	return s.workCenters[id], nil
}

func (s *CatalogStore) AllActiveBOMsAt(asOf time.Time) ([]catalog.BOM, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []catalog.BOM
	for _, b := range s.boms {
		if !b.Active {
			continue
		}
		if b.EffectiveFrom.After(asOf) {
			continue
		}
		if b.EffectiveTo != nil && !b.EffectiveTo.After(asOf) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (s *CatalogStore) AllActiveRoutingsAt(asOf time.Time) ([]catalog.Routing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []catalog.Routing
	for _, r := range s.routings {
		if r.Active {
			out = append(out, r)
		}
	}
	return out, nil
}
