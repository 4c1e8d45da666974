package memory

import (
	"strings"
	"sync"

	"github.com/filaops/core/internal/core"
	"github.com/filaops/core/internal/sales"
)

// SalesStore is an in-memory sales.Repository.
type SalesStore struct {
	mu          sync.RWMutex
	orders      map[core.ID]sales.Order
	numberIndex map[string]core.ID
	lines       map[core.ID][]sales.Line // order id -> lines
	lineByID    map[core.ID]core.ID      // line id -> order id
}

// NewSalesStore builds an empty SalesStore.
func NewSalesStore() *SalesStore {
	return &SalesStore{
		orders:      make(map[core.ID]sales.Order),
		numberIndex: make(map[string]core.ID),
		lines:       make(map[core.ID][]sales.Line),
		lineByID:    make(map[core.ID]core.ID),
	}
}

func (s *SalesStore) Create(o sales.Order, lines []sales.Line) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.numberIndex[strings.ToLower(o.Number)]; exists {
		return core.NewFieldError(core.ErrValidation, core.CodeDuplicateSKU, "sales order number already in use: "+o.Number, "number")
	}
	s.orders[o.ID] = o
	s.numberIndex[strings.ToLower(o.Number)] = o.ID
	s.lines[o.ID] = append([]sales.Line{}, lines...)
	for _, l := range lines {
		s.lineByID[l.ID] = o.ID
	}
	return nil
}

func (s *SalesStore) Get(id core.ID) (sales.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return sales.Order{}, core.NewFieldError(core.ErrNotFound, core.CodeUnknownOrder, "unknown sales order", "id")
	}
	return o, nil
}

func (s *SalesStore) GetByNumber(number string) (sales.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.numberIndex[strings.ToLower(number)]
	if !ok {
		return sales.Order{}, core.NewFieldError(core.ErrNotFound, core.CodeUnknownOrder, "unknown sales order: "+number, "number")
	}
	return s.orders[id], nil
}

func (s *SalesStore) LinesForOrder(orderID core.ID) ([]sales.Line, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]sales.Line, len(s.lines[orderID]))
	copy(out, s.lines[orderID])
	return out, nil
}

func (s *SalesStore) UpdateStatus(id core.ID, status sales.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return core.NewFieldError(core.ErrNotFound, core.CodeUnknownOrder, "unknown sales order", "id")
	}
	o.Status = status
	s.orders[id] = o
	return nil
}

func (s *SalesStore) UpdateLineAllocation(lineID core.ID, qtyAllocated core.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	orderID, ok := s.lineByID[lineID]
	if !ok {
		return core.NewError(core.ErrNotFound, core.CodeUnknownOrder, "unknown sales order line")
	}
	lines := s.lines[orderID]
	for i, l := range lines {
		if l.ID == lineID {
			lines[i].QtyAllocated = qtyAllocated
			return nil
		}
	}
	return core.NewError(core.ErrNotFound, core.CodeUnknownOrder, "unknown sales order line")
}

func (s *SalesStore) ConfirmedLines() ([]sales.Line, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []sales.Line
	for id, o := range s.orders {
		if o.Status != sales.StatusConfirmed {
			continue
		}
		out = append(out, s.lines[id]...)
	}
	return out, nil
}
