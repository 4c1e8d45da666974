package sales

import "github.com/filaops/core/internal/core"

// Service implements sales order creation and status/allocation updates.
type Service struct {
	repo Repository
}

// New builds a sales Service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateOrder persists a new draft sales order with its lines.
func (s *Service) CreateOrder(o Order, lines []Line) (Order, error) {
	if _, err := s.repo.GetByNumber(o.Number); err == nil {
		return Order{}, core.NewFieldError(core.ErrValidation, core.CodeDuplicateSKU, "sales order number already in use: "+o.Number, "number")
	}
	o.ID = core.NewID()
	o.Status = StatusDraft
	for i, l := range lines {
		if l.QtyOrdered.IsZero() || l.QtyOrdered.IsNegative() {
			return Order{}, core.NewFieldError(core.ErrValidation, core.CodeNegativeQuantity, "qty_ordered must be positive", "qty_ordered")
		}
		lines[i].ID = core.NewID()
		lines[i].OrderID = o.ID
		lines[i].Seq = i + 1
	}
	if err := s.repo.Create(o, lines); err != nil {
		return Order{}, err
	}
	return o, nil
}

// Confirm transitions a draft order to confirmed, making its lines
// visible to MRP demand collection.
func (s *Service) Confirm(id core.ID) error {
	o, err := s.repo.Get(id)
	if err != nil {
		return err
	}
	if o.Status != StatusDraft {
		return core.NewFieldError(core.ErrValidation, core.CodeInvalidTransition, "only a draft order can be confirmed", "status")
	}
	return s.repo.UpdateStatus(id, StatusConfirmed)
}

// Cancel marks a sales order cancelled.
func (s *Service) Cancel(id core.ID) error {
	return s.repo.UpdateStatus(id, StatusCancelled)
}
