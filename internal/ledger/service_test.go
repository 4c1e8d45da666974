package ledger_test

import (
	"testing"

	"github.com/filaops/core/internal/core"
	"github.com/filaops/core/internal/ledger"
	"github.com/filaops/core/internal/storage/memory"
)

func newService() *ledger.Service {
	return ledger.New(memory.NewLedgerStore(), core.SystemClock{}, core.DefaultConfig())
}

func TestPostReceiptIncreasesOnHand(t *testing.T) {
	svc := newService()
	item, loc := core.NewID(), core.NewID()

	if _, err := svc.Post(ledger.PostInput{ItemID: item, LocationID: loc, Quantity: core.MustDecimal("10"), Kind: ledger.KindReceipt, RefKind: "test", RefID: core.NewID()}); err != nil {
		t.Fatalf("Post receipt: %v", err)
	}
	bal, err := svc.Balance(item, loc)
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if !bal.OnHand.Equal(core.MustDecimal("10")) {
		t.Errorf("on_hand = %s, want 10", bal.OnHand)
	}
	if !bal.Available().Equal(core.MustDecimal("10")) {
		t.Errorf("available = %s, want 10", bal.Available())
	}
}

func TestPostIssueDecreasesOnHandAndRejectsOverdraw(t *testing.T) {
	svc := newService()
	item, loc := core.NewID(), core.NewID()
	mustPost(t, svc, item, loc, "10", ledger.KindReceipt)

	if _, err := svc.Post(ledger.PostInput{ItemID: item, LocationID: loc, Quantity: core.MustDecimal("-15"), Kind: ledger.KindIssue}); err == nil {
		t.Fatal("expected InsufficientStock issuing more than on_hand")
	}
	if _, err := svc.Post(ledger.PostInput{ItemID: item, LocationID: loc, Quantity: core.MustDecimal("-4"), Kind: ledger.KindIssue}); err != nil {
		t.Fatalf("Post issue: %v", err)
	}
	bal, _ := svc.Balance(item, loc)
	if !bal.OnHand.Equal(core.MustDecimal("6")) {
		t.Errorf("on_hand after issue = %s, want 6", bal.OnHand)
	}
}

func TestIdempotentPostReturnsSameTxnID(t *testing.T) {
	svc := newService()
	item, loc := core.NewID(), core.NewID()
	in := ledger.PostInput{ItemID: item, LocationID: loc, Quantity: core.MustDecimal("5"), Kind: ledger.KindReceipt, IdempotencyKey: "order-42"}

	id1, err := svc.Post(in)
	if err != nil {
		t.Fatalf("first Post: %v", err)
	}
	id2, err := svc.Post(in)
	if err != nil {
		t.Fatalf("second Post: %v", err)
	}
	if id1 != id2 {
		t.Errorf("retried post with same key returned different txn ids: %s vs %s", id1, id2)
	}
	bal, _ := svc.Balance(item, loc)
	if !bal.OnHand.Equal(core.MustDecimal("5")) {
		t.Errorf("on_hand after duplicate post = %s, want 5 (posted once)", bal.OnHand)
	}
}

func TestReserveReduceAvailableNotOnHand(t *testing.T) {
	svc := newService()
	item, loc := core.NewID(), core.NewID()
	mustPost(t, svc, item, loc, "100", ledger.KindReceipt)

	resID, err := svc.Reserve(item, loc, core.MustDecimal("40"), "production_order", core.NewID())
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	bal, _ := svc.Balance(item, loc)
	if !bal.OnHand.Equal(core.MustDecimal("100")) {
		t.Errorf("on_hand after reserve = %s, want 100", bal.OnHand)
	}
	if !bal.Reserved.Equal(core.MustDecimal("40")) {
		t.Errorf("reserved = %s, want 40", bal.Reserved)
	}
	if !bal.Available().Equal(core.MustDecimal("60")) {
		t.Errorf("available = %s, want 60", bal.Available())
	}

	if err := svc.Release(resID); err != nil {
		t.Fatalf("Release: %v", err)
	}
	bal, _ = svc.Balance(item, loc)
	if !bal.Reserved.IsZero() {
		t.Errorf("reserved after release = %s, want 0", bal.Reserved)
	}
	if !bal.Available().Equal(core.MustDecimal("100")) {
		t.Errorf("available after release = %s, want 100", bal.Available())
	}
}

func TestConsumePartialThenOverConsumeFails(t *testing.T) {
	svc := newService()
	item, loc := core.NewID(), core.NewID()
	mustPost(t, svc, item, loc, "100", ledger.KindReceipt)

	resID, err := svc.Reserve(item, loc, core.MustDecimal("40"), "production_order", core.NewID())
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if err := svc.Consume(resID, core.MustDecimal("25")); err != nil {
		t.Fatalf("Consume: %v", err)
	}
	bal, _ := svc.Balance(item, loc)
	if !bal.OnHand.Equal(core.MustDecimal("75")) {
		t.Errorf("on_hand after partial consume = %s, want 75", bal.OnHand)
	}
	if !bal.Reserved.Equal(core.MustDecimal("15")) {
		t.Errorf("reserved after partial consume = %s, want 15", bal.Reserved)
	}

	if err := svc.Consume(resID, core.MustDecimal("16")); err == nil {
		t.Fatal("expected InsufficientReservation consuming past the reservation's remaining balance")
	}
}

func TestTransferMovesQuantityBetweenLocations(t *testing.T) {
	svc := newService()
	item, from, to := core.NewID(), core.NewID(), core.NewID()
	mustPost(t, svc, item, from, "30", ledger.KindReceipt)

	if err := svc.Transfer(item, from, to, core.MustDecimal("10"), "transfer", core.NewID()); err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	fromBal, _ := svc.Balance(item, from)
	toBal, _ := svc.Balance(item, to)
	if !fromBal.OnHand.Equal(core.MustDecimal("20")) {
		t.Errorf("from on_hand = %s, want 20", fromBal.OnHand)
	}
	if !toBal.OnHand.Equal(core.MustDecimal("10")) {
		t.Errorf("to on_hand = %s, want 10", toBal.OnHand)
	}
}

func TestReleaseUnknownReservationFails(t *testing.T) {
	svc := newService()
	if err := svc.Release(core.NewID()); err == nil {
		t.Fatal("expected UnknownReservation releasing a reservation that was never created")
	}
}

func mustPost(t *testing.T, svc *ledger.Service, item, loc core.ID, qty string, kind ledger.Kind) {
	t.Helper()
	if _, err := svc.Post(ledger.PostInput{ItemID: item, LocationID: loc, Quantity: core.MustDecimal(qty), Kind: kind}); err != nil {
		t.Fatalf("Post(%s, %s): %v", kind, qty, err)
	}
}
