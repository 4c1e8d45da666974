package ledger

import (
	"sort"
	"sync"

	"github.com/filaops/core/internal/core"
)

// Service is the public contract for inventory movement: post,
// available, transfer, reserve, release, consume. It is the only
// component allowed to mutate balance state; every other component
// calls through it.
type Service struct {
	store  Store
	clock  core.Clock
	config core.Config

	mu      sync.Mutex // guards locks map construction only
	locks   map[streamKey]*sync.Mutex
}

type streamKey struct {
	item     core.ID
	location core.ID
}

// New builds a ledger Service over the given Store.
func New(store Store, clock core.Clock, config core.Config) *Service {
	return &Service{
		store:  store,
		clock:  clock,
		config: config,
		locks:  make(map[streamKey]*sync.Mutex),
	}
}

func (s *Service) lockFor(itemID, locationID core.ID) *sync.Mutex {
	key := streamKey{itemID, locationID}
	s.mu.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	s.mu.Unlock()
	return l
}

// lockOrdered acquires the locks for one or two streams in
// (item_id ASC, location_id ASC) order to avoid deadlock.
func (s *Service) lockOrdered(a, b streamKey) (unlock func()) {
	la := s.lockFor(a.item, a.location)
	if a == b {
		la.Lock()
		return la.Unlock
	}
	lb := s.lockFor(b.item, b.location)
	first, second := la, lb
	if !streamLess(a, b) {
		first, second = lb, la
	}
	first.Lock()
	second.Lock()
	return func() {
		second.Unlock()
		first.Unlock()
	}
}

func streamLess(a, b streamKey) bool {
	if a.item != b.item {
		return a.item.String() < b.item.String()
	}
	return a.location.String() < b.location.String()
}

// Balance recomputes the derived (item, location) view by scanning the
// transaction log: on_hand/reserved are always the signed sum of the
// log, never a separately-trusted cache.
func (s *Service) Balance(itemID, locationID core.ID) (Balance, error) {
	txns, err := s.store.TxnsByStream(itemID, locationID)
	if err != nil {
		return Balance{}, core.Wrap(core.ErrInternal, core.CodeLedgerCorruption, "failed reading ledger stream", err)
	}
	bal := Balance{ItemID: itemID, LocationID: locationID}
	for _, t := range txns {
		bal.OnHand = bal.OnHand.Add(t.Quantity.Mul(core.NewDecimalFromInt(t.Kind.onHandEffect())))
		bal.Reserved = bal.Reserved.Add(t.Quantity.Abs().Mul(core.NewDecimalFromInt(t.Kind.reservedEffect())))
	}
	return bal, nil
}

// Available returns on_hand - reserved for (item, location).
func (s *Service) Available(itemID, locationID core.ID) (core.Decimal, error) {
	bal, err := s.Balance(itemID, locationID)
	if err != nil {
		return core.Zero, err
	}
	return bal.Available(), nil
}

// Post atomically appends a transaction and advances the derived
// balance. Idempotency: a retried post with the same client-supplied
// key returns the original Txn ID without re-applying.
func (s *Service) Post(in PostInput) (core.ID, error) {
	if !in.Kind.valid() {
		return core.ID{}, core.NewError(core.ErrValidation, core.CodeInvalidTransition, "unknown transaction kind")
	}
	if in.IdempotencyKey != "" {
		if existing, found, err := s.store.FindByIdempotencyKey(in.IdempotencyKey); err != nil {
			return core.ID{}, core.Wrap(core.ErrInternal, core.CodeLedgerCorruption, "idempotency lookup failed", err)
		} else if found {
			return existing.ID, nil
		}
	}

	key := streamKey{in.ItemID, in.LocationID}
	unlock := s.lockOrdered(key, key)
	defer unlock()

	return s.postLocked(in)
}

// Transfer posts an atomic paired transfer_out/transfer_in.
func (s *Service) Transfer(itemID, from, to core.ID, qty core.Decimal, refKind string, refID core.ID) error {
	a := streamKey{itemID, from}
	b := streamKey{itemID, to}
	unlock := s.lockOrdered(a, b)
	defer unlock()

	if _, err := s.postLocked(PostInput{
		ItemID: itemID, LocationID: from, Quantity: qty.Neg(), Kind: KindTransferOut,
		RefKind: refKind, RefID: refID,
	}); err != nil {
		return err
	}
	if _, err := s.postLocked(PostInput{
		ItemID: itemID, LocationID: to, Quantity: qty, Kind: KindTransferIn,
		RefKind: refKind, RefID: refID,
	}); err != nil {
		return err
	}
	return nil
}

// postLocked is Post's body without re-acquiring the stream lock, used by
// callers (Transfer, Reserve, Consume) that already hold it.
func (s *Service) postLocked(in PostInput) (core.ID, error) {
	bal, err := s.Balance(in.ItemID, in.LocationID)
	if err != nil {
		return core.ID{}, err
	}
	onHandDelta := in.Quantity.Mul(core.NewDecimalFromInt(in.Kind.onHandEffect()))
	newOnHand := bal.OnHand.Add(onHandDelta)
	if newOnHand.IsNegative() {
		if in.Kind != KindAdjustment {
			return core.ID{}, core.NewError(core.ErrBusinessRule, core.CodeInsufficientStock, "insufficient on_hand for posting")
		}
		if !in.AllowNegative && !s.config.InventoryAllowNegativeOnHand {
			return core.ID{}, core.NewError(core.ErrValidation, core.CodeNegativeNotAllowed, "negative on_hand adjustment requires the explicit allow_negative flag")
		}
	}
	reservedDelta := in.Quantity.Abs().Mul(core.NewDecimalFromInt(in.Kind.reservedEffect()))
	newReserved := bal.Reserved.Add(reservedDelta)
	if newReserved.IsNegative() {
		return core.ID{}, core.NewError(core.ErrBusinessRule, core.CodeInsufficientReserve, "release/consume exceeds active reservations")
	}
	if newReserved.GreaterThan(newOnHand) && !s.config.InventoryAllowOversell {
		return core.ID{}, core.NewError(core.ErrBusinessRule, core.CodeInsufficientStock, "reservation would exceed on_hand")
	}
	txn := Txn{
		ID: core.NewID(), ItemID: in.ItemID, LocationID: in.LocationID,
		Quantity: in.Quantity, Kind: in.Kind, RefKind: in.RefKind, RefID: in.RefID,
		IdempotencyKey: in.IdempotencyKey, CreatedBy: in.CreatedBy,
		CreatedAt: s.clock.Now(),
	}
	if err := s.store.AppendTxn(txn); err != nil {
		return core.ID{}, core.Wrap(core.ErrInternal, core.CodeLedgerCorruption, "failed to append transaction", err)
	}
	return txn.ID, nil
}

// Reserve claims qty of on-hand inventory for ref, returning a
// ReservationId the caller uses for Release/Consume.
func (s *Service) Reserve(itemID, locationID core.ID, qty core.Decimal, refKind string, refID core.ID) (core.ID, error) {
	key := streamKey{itemID, locationID}
	unlock := s.lockOrdered(key, key)
	defer unlock()

	if _, err := s.postLocked(PostInput{ItemID: itemID, LocationID: locationID, Quantity: qty, Kind: KindReservation, RefKind: refKind, RefID: refID}); err != nil {
		return core.ID{}, err
	}
	res := Reservation{ID: core.NewID(), ItemID: itemID, LocationID: locationID, Quantity: qty, RefKind: refKind, RefID: refID, Active: true}
	if err := s.store.SaveReservation(res); err != nil {
		return core.ID{}, core.Wrap(core.ErrInternal, core.CodeLedgerCorruption, "failed to save reservation", err)
	}
	return res.ID, nil
}

// Release releases the remaining quantity of a reservation back to
// available.
func (s *Service) Release(reservationID core.ID) error {
	res, found, err := s.store.GetReservation(reservationID)
	if err != nil {
		return core.Wrap(core.ErrInternal, core.CodeLedgerCorruption, "failed to load reservation", err)
	}
	if !found || !res.Active {
		return core.NewError(core.ErrNotFound, core.CodeUnknownReservation, "reservation not found or inactive")
	}

	key := streamKey{res.ItemID, res.LocationID}
	unlock := s.lockOrdered(key, key)
	defer unlock()

	if res.Quantity.IsPositive() {
		if _, err := s.postLocked(PostInput{ItemID: res.ItemID, LocationID: res.LocationID, Quantity: res.Quantity, Kind: KindReservationRelease, RefKind: res.RefKind, RefID: res.RefID}); err != nil {
			return err
		}
	}
	res.Quantity = core.Zero
	res.Active = false
	if err := s.store.UpdateReservation(res); err != nil {
		return core.Wrap(core.ErrInternal, core.CodeLedgerCorruption, "failed to update reservation", err)
	}
	return nil
}

// Consume draws down a reservation by qty, posting a consumption
// transaction. Partial consume is allowed; over-consume fails.
func (s *Service) Consume(reservationID core.ID, qty core.Decimal) error {
	res, found, err := s.store.GetReservation(reservationID)
	if err != nil {
		return core.Wrap(core.ErrInternal, core.CodeLedgerCorruption, "failed to load reservation", err)
	}
	if !found || !res.Active {
		return core.NewError(core.ErrNotFound, core.CodeUnknownReservation, "reservation not found or inactive")
	}
	if qty.GreaterThan(res.Quantity) {
		return core.NewError(core.ErrBusinessRule, core.CodeInsufficientReserve, "consume exceeds reservation balance")
	}

	key := streamKey{res.ItemID, res.LocationID}
	unlock := s.lockOrdered(key, key)
	defer unlock()

	if _, err := s.postLocked(PostInput{ItemID: res.ItemID, LocationID: res.LocationID, Quantity: qty.Neg(), Kind: KindConsumption, RefKind: res.RefKind, RefID: res.RefID}); err != nil {
		return err
	}
	res.Quantity = res.Quantity.Sub(qty)
	if res.Quantity.IsZero() {
		res.Active = false
	}
	if err := s.store.UpdateReservation(res); err != nil {
		return core.Wrap(core.ErrInternal, core.CodeLedgerCorruption, "failed to update reservation", err)
	}
	return nil
}

// ActiveReservations returns the currently active reservations for an
// (item, location), sorted by ID for deterministic iteration.
func (s *Service) ActiveReservations(itemID, locationID core.ID) ([]Reservation, error) {
	all, err := s.store.ReservationsByStream(itemID, locationID)
	if err != nil {
		return nil, core.Wrap(core.ErrInternal, core.CodeLedgerCorruption, "failed to list reservations", err)
	}
	var active []Reservation
	for _, r := range all {
		if r.Active {
			active = append(active, r)
		}
	}
	sort.Slice(active, func(i, j int) bool { return active[i].ID.String() < active[j].ID.String() })
	return active, nil
}

// History returns the full ordered transaction history for (item,
// location), used by the traceability contract.
func (s *Service) History(itemID, locationID core.ID) ([]Txn, error) {
	txns, err := s.store.TxnsByStream(itemID, locationID)
	if err != nil {
		return nil, core.Wrap(core.ErrInternal, core.CodeLedgerCorruption, "failed to read history", err)
	}
	return txns, nil
}

// TraceForward finds every transaction whose RefKind/RefID chains
// forward from the given reference — e.g. "what consumed this receipt's
// material".
func (s *Service) TraceForward(refKind string, refID core.ID) ([]Txn, error) {
	all, err := s.store.AllTxns()
	if err != nil {
		return nil, core.Wrap(core.ErrInternal, core.CodeLedgerCorruption, "failed to scan ledger", err)
	}
	var out []Txn
	for _, t := range all {
		if t.RefKind == refKind && t.RefID == refID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
