package memory

import (
	"strings"
	"sync"

	"github.com/filaops/core/internal/core"
	"github.com/filaops/core/internal/purchasing"
)

// PurchasingStore is an in-memory purchasing.Repository.
type PurchasingStore struct {
	mu          sync.RWMutex
	orders      map[core.ID]purchasing.PurchaseOrder
	codeIndex   map[string]core.ID
	lines       map[core.ID][]purchasing.POLine // po id -> lines
	lineOrder   map[core.ID]core.ID             // line id -> po id
}

// NewPurchasingStore builds an empty PurchasingStore.
func NewPurchasingStore() *PurchasingStore {
	return &PurchasingStore{
		orders:    make(map[core.ID]purchasing.PurchaseOrder),
		codeIndex: make(map[string]core.ID),
		lines:     make(map[core.ID][]purchasing.POLine),
		lineOrder: make(map[core.ID]core.ID),
	}
}

func (s *PurchasingStore) Create(po purchasing.PurchaseOrder, lines []purchasing.POLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.codeIndex[strings.ToLower(po.Code)]; exists {
		return core.NewFieldError(core.ErrValidation, core.CodeDuplicateSKU, "purchase order code already in use: "+po.Code, "code")
	}
	s.orders[po.ID] = po
	s.codeIndex[strings.ToLower(po.Code)] = po.ID
	s.lines[po.ID] = append([]purchasing.POLine{}, lines...)
	for _, l := range lines {
		s.lineOrder[l.ID] = po.ID
	}
	return nil
}

func (s *PurchasingStore) Get(id core.ID) (purchasing.PurchaseOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	po, ok := s.orders[id]
	if !ok {
		return purchasing.PurchaseOrder{}, core.NewFieldError(core.ErrNotFound, core.CodeUnknownOrder, "unknown purchase order", "id")
	}
	return po, nil
}

func (s *PurchasingStore) GetByCode(code string) (purchasing.PurchaseOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.codeIndex[strings.ToLower(code)]
	if !ok {
		return purchasing.PurchaseOrder{}, core.NewFieldError(core.ErrNotFound, core.CodeUnknownOrder, "unknown purchase order: "+code, "code")
	}
	return s.orders[id], nil
}

func (s *PurchasingStore) LinesForOrder(poID core.ID) ([]purchasing.POLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]purchasing.POLine, len(s.lines[poID]))
	copy(out, s.lines[poID])
	return out, nil
}

func (s *PurchasingStore) UpdateStatus(id core.ID, status purchasing.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	po, ok := s.orders[id]
	if !ok {
		return core.NewFieldError(core.ErrNotFound, core.CodeUnknownOrder, "unknown purchase order", "id")
	}
	po.Status = status
	s.orders[id] = po
	return nil
}

func (s *PurchasingStore) ReceiveLine(lineID core.ID, qty core.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	poID, ok := s.lineOrder[lineID]
	if !ok {
		return core.NewError(core.ErrNotFound, core.CodeUnknownOrder, "unknown purchase order line")
	}
	lines := s.lines[poID]
	for i, l := range lines {
		if l.ID == lineID {
			lines[i].QtyReceived = lines[i].QtyReceived.Add(qty)
			return nil
		}
	}
	return core.NewError(core.ErrNotFound, core.CodeUnknownOrder, "unknown purchase order line")
}

func (s *PurchasingStore) OpenLinesForItem(itemID core.ID) ([]purchasing.POLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []purchasing.POLine
	for poID, lines := range s.lines {
		po := s.orders[poID]
		if po.Status == purchasing.StatusCancelled || po.Status == purchasing.StatusReceived {
			continue
		}
		for _, l := range lines {
			if l.ItemID == itemID && l.QtyReceived.LessThan(l.QtyOrdered) {
				out = append(out, l)
			}
		}
	}
	return out, nil
}
