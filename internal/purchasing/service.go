package purchasing

import "github.com/filaops/core/internal/core"

// Service implements purchase-order creation and receipt progression.
type Service struct {
	repo Repository
}

// New builds a purchasing Service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreatePO persists a new draft purchase order with its lines.
func (s *Service) CreatePO(po PurchaseOrder, lines []POLine) (PurchaseOrder, error) {
	if _, err := s.repo.GetByCode(po.Code); err == nil {
		return PurchaseOrder{}, core.NewFieldError(core.ErrValidation, core.CodeDuplicateSKU, "purchase order code already in use: "+po.Code, "code")
	}
	po.ID = core.NewID()
	po.Status = StatusDraft
	for i := range lines {
		lines[i].ID = core.NewID()
		lines[i].PurchaseOrderID = po.ID
	}
	if err := s.repo.Create(po, lines); err != nil {
		return PurchaseOrder{}, err
	}
	return po, nil
}

// Order transitions a draft PO to ordered.
func (s *Service) Order(id core.ID) error {
	po, err := s.repo.Get(id)
	if err != nil {
		return err
	}
	if po.Status != StatusDraft {
		return core.NewFieldError(core.ErrValidation, core.CodeInvalidTransition, "only a draft purchase order can be ordered", "status")
	}
	return s.repo.UpdateStatus(id, StatusOrdered)
}

// ReceiveLine records receipt of qty against a line and advances the
// parent order's status per the aggregate receipt progression:
// qty_received is monotonically non-decreasing and status follows
// receipt progress.
func (s *Service) ReceiveLine(poID, lineID core.ID, qty core.Decimal) error {
	po, err := s.repo.Get(poID)
	if err != nil {
		return err
	}
	if po.Status != StatusOrdered && po.Status != StatusPartial {
		return core.NewFieldError(core.ErrValidation, core.CodeInvalidTransition, "purchase order is not open for receipt", "status")
	}
	if qty.IsNegative() {
		return core.NewFieldError(core.ErrValidation, core.CodeNegativeQuantity, "received qty must not be negative", "qty")
	}
	if err := s.repo.ReceiveLine(lineID, qty); err != nil {
		return err
	}

	lines, err := s.repo.LinesForOrder(poID)
	if err != nil {
		return err
	}
	allReceived := true
	anyReceived := false
	for _, l := range lines {
		if l.QtyReceived.LessThan(l.QtyOrdered) {
			allReceived = false
		}
		if l.QtyReceived.IsPositive() {
			anyReceived = true
		}
	}
	switch {
	case allReceived:
		return s.repo.UpdateStatus(poID, StatusReceived)
	case anyReceived:
		return s.repo.UpdateStatus(poID, StatusPartial)
	default:
		return nil
	}
}

// Cancel marks a purchase order cancelled.
func (s *Service) Cancel(id core.ID) error {
	return s.repo.UpdateStatus(id, StatusCancelled)
}
