package memory

import (
	"strings"
	"sync"

	"github.com/filaops/core/internal/core"
	"github.com/filaops/core/internal/production"
)

// ProductionStore is an in-memory production.Repository.
type ProductionStore struct {
	mu            sync.RWMutex
	orders        map[core.ID]production.Order
	codeIndex     map[string]core.ID
	byLineIndex   map[core.ID]core.ID // sales order line id -> production order id
	reservations  map[core.ID]production.MaterialReservation
}

// NewProductionStore builds an empty ProductionStore.
func NewProductionStore() *ProductionStore {
	return &ProductionStore{
		orders:       make(map[core.ID]production.Order),
		codeIndex:    make(map[string]core.ID),
		byLineIndex:  make(map[core.ID]core.ID),
		reservations: make(map[core.ID]production.MaterialReservation),
	}
}

func (s *ProductionStore) Create(o production.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.codeIndex[strings.ToLower(o.Code)]; exists {
		return core.NewFieldError(core.ErrValidation, core.CodeDuplicateSKU, "production order code already in use: "+o.Code, "code")
	}
	s.orders[o.ID] = o
	s.codeIndex[strings.ToLower(o.Code)] = o.ID
	if o.SalesOrderLine != nil {
		s.byLineIndex[*o.SalesOrderLine] = o.ID
	}
	return nil
}

func (s *ProductionStore) Update(o production.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.orders[o.ID]; !exists {
		return core.NewFieldError(core.ErrNotFound, core.CodeUnknownOrder, "unknown production order", "id")
	}
	s.orders[o.ID] = o
	if o.SalesOrderLine != nil {
		s.byLineIndex[*o.SalesOrderLine] = o.ID
	}
	return nil
}

func (s *ProductionStore) Get(id core.ID) (production.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return production.Order{}, core.NewFieldError(core.ErrNotFound, core.CodeUnknownOrder, "unknown production order", "id")
	}
	return o, nil
}

func (s *ProductionStore) GetByCode(code string) (production.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.codeIndex[strings.ToLower(code)]
	if !ok {
		return production.Order{}, core.NewFieldError(core.ErrNotFound, core.CodeUnknownOrder, "unknown production order: "+code, "code")
	}
	return s.orders[id], nil
}

func (s *ProductionStore) ChildrenOf(parentID core.ID) ([]production.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []production.Order
	for _, o := range s.orders {
		if o.ParentOrderID != nil && *o.ParentOrderID == parentID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *ProductionStore) FindBySalesOrderLine(lineID core.ID) (production.Order, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byLineIndex[lineID]
	if !ok {
		return production.Order{}, false, nil
	}
	return s.orders[id], true, nil
}

func (s *ProductionStore) SaveMaterialReservation(mr production.MaterialReservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reservations[mr.ID] = mr
	return nil
}

func (s *ProductionStore) MaterialReservationsForOrder(poID core.ID) ([]production.MaterialReservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []production.MaterialReservation
	for _, mr := range s.reservations {
		if mr.ProductionOrderID == poID {
			out = append(out, mr)
		}
	}
	return out, nil
}

func (s *ProductionStore) DeleteMaterialReservation(id core.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.reservations, id)
	return nil
}
