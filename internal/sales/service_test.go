package sales_test

import (
	"testing"
	"time"

	"github.com/filaops/core/internal/core"
	"github.com/filaops/core/internal/sales"
	"github.com/filaops/core/internal/storage/memory"
)

func TestCreateOrderAssignsLineSeqAndDraftStatus(t *testing.T) {
	svc := sales.New(memory.NewSalesStore())
	itemID := core.NewID()

	order, err := svc.CreateOrder(sales.Order{Number: "SO-1001", RequestedDate: time.Now().AddDate(0, 0, 7)}, []sales.Line{
		{ItemID: itemID, QtyOrdered: core.MustDecimal("5")},
		{ItemID: itemID, QtyOrdered: core.MustDecimal("3")},
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if order.Status != sales.StatusDraft {
		t.Errorf("status = %s, want draft", order.Status)
	}
	if order.ID.IsZero() {
		t.Error("expected a non-zero order id")
	}
}

func TestCreateOrderRejectsDuplicateNumber(t *testing.T) {
	svc := sales.New(memory.NewSalesStore())
	itemID := core.NewID()

	if _, err := svc.CreateOrder(sales.Order{Number: "SO-2001"}, []sales.Line{{ItemID: itemID, QtyOrdered: core.MustDecimal("1")}}); err != nil {
		t.Fatalf("first CreateOrder: %v", err)
	}
	_, err := svc.CreateOrder(sales.Order{Number: "SO-2001"}, []sales.Line{{ItemID: itemID, QtyOrdered: core.MustDecimal("1")}})
	if err == nil {
		t.Fatal("expected an error creating a second order with the same number")
	}
}

func TestCreateOrderRejectsNonPositiveLineQty(t *testing.T) {
	svc := sales.New(memory.NewSalesStore())
	itemID := core.NewID()

	_, err := svc.CreateOrder(sales.Order{Number: "SO-3001"}, []sales.Line{{ItemID: itemID, QtyOrdered: core.Zero}})
	if err == nil {
		t.Fatal("expected an error for a zero qty_ordered line")
	}

	_, err = svc.CreateOrder(sales.Order{Number: "SO-3002"}, []sales.Line{{ItemID: itemID, QtyOrdered: core.MustDecimal("-1")}})
	if err == nil {
		t.Fatal("expected an error for a negative qty_ordered line")
	}
}

func TestConfirmOnlyAllowedFromDraft(t *testing.T) {
	store := memory.NewSalesStore()
	svc := sales.New(store)
	itemID := core.NewID()

	order, err := svc.CreateOrder(sales.Order{Number: "SO-4001"}, []sales.Line{{ItemID: itemID, QtyOrdered: core.MustDecimal("1")}})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if err := svc.Confirm(order.ID); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	got, err := store.Get(order.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != sales.StatusConfirmed {
		t.Errorf("status = %s, want confirmed", got.Status)
	}

	if err := svc.Confirm(order.ID); err == nil {
		t.Fatal("expected an error confirming an already-confirmed order")
	}
}

func TestConfirmedLinesExcludesDraftAndCancelled(t *testing.T) {
	store := memory.NewSalesStore()
	svc := sales.New(store)
	itemID := core.NewID()

	confirmed, err := svc.CreateOrder(sales.Order{Number: "SO-5001"}, []sales.Line{{ItemID: itemID, QtyOrdered: core.MustDecimal("1")}})
	if err != nil {
		t.Fatalf("CreateOrder confirmed: %v", err)
	}
	if err := svc.Confirm(confirmed.ID); err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	draft, err := svc.CreateOrder(sales.Order{Number: "SO-5002"}, []sales.Line{{ItemID: itemID, QtyOrdered: core.MustDecimal("1")}})
	if err != nil {
		t.Fatalf("CreateOrder draft: %v", err)
	}
	_ = draft

	cancelled, err := svc.CreateOrder(sales.Order{Number: "SO-5003"}, []sales.Line{{ItemID: itemID, QtyOrdered: core.MustDecimal("1")}})
	if err != nil {
		t.Fatalf("CreateOrder cancelled: %v", err)
	}
	if err := svc.Cancel(cancelled.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	lines, err := store.ConfirmedLines()
	if err != nil {
		t.Fatalf("ConfirmedLines: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("got %d confirmed lines, want 1 (draft and cancelled orders should be excluded)", len(lines))
	}
	if lines[0].OrderID != confirmed.ID {
		t.Errorf("confirmed line belongs to order %v, want %v", lines[0].OrderID, confirmed.ID)
	}
}

func TestLineNeedDateFallsBackToOrderRequestedDate(t *testing.T) {
	requested := time.Now().AddDate(0, 0, 14)
	order := sales.Order{RequestedDate: requested}
	line := sales.Line{}
	if !line.NeedDate(order).Equal(requested) {
		t.Errorf("need date = %v, want order requested date %v", line.NeedDate(order), requested)
	}

	override := time.Now().AddDate(0, 0, 3)
	line.NeedDateOverride = &override
	if !line.NeedDate(order).Equal(override) {
		t.Errorf("need date = %v, want override %v", line.NeedDate(order), override)
	}
}
