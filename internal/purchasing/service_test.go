package purchasing_test

import (
	"testing"
	"time"

	"github.com/filaops/core/internal/core"
	"github.com/filaops/core/internal/purchasing"
	"github.com/filaops/core/internal/storage/memory"
)

func newPOWorld() (*purchasing.Service, *memory.PurchasingStore) {
	store := memory.NewPurchasingStore()
	return purchasing.New(store), store
}

func TestCreatePORejectsDuplicateCode(t *testing.T) {
	svc, _ := newPOWorld()
	itemID := core.NewID()

	if _, err := svc.CreatePO(purchasing.PurchaseOrder{Code: "PO-1001"}, []purchasing.POLine{
		{ItemID: itemID, QtyOrdered: core.MustDecimal("10"), ExpectedDate: time.Now().AddDate(0, 0, 5)},
	}); err != nil {
		t.Fatalf("first CreatePO: %v", err)
	}
	_, err := svc.CreatePO(purchasing.PurchaseOrder{Code: "PO-1001"}, nil)
	if err == nil {
		t.Fatal("expected an error creating a second PO with the same code")
	}
}

func TestOrderOnlyAllowedFromDraft(t *testing.T) {
	svc, store := newPOWorld()
	po, err := svc.CreatePO(purchasing.PurchaseOrder{Code: "PO-2001"}, []purchasing.POLine{
		{ItemID: core.NewID(), QtyOrdered: core.MustDecimal("5")},
	})
	if err != nil {
		t.Fatalf("CreatePO: %v", err)
	}
	if err := svc.Order(po.ID); err != nil {
		t.Fatalf("Order: %v", err)
	}
	got, err := store.Get(po.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != purchasing.StatusOrdered {
		t.Errorf("status = %s, want ordered", got.Status)
	}

	if err := svc.Order(po.ID); err == nil {
		t.Fatal("expected an error ordering an already-ordered PO")
	}
}

func TestReceiveLineAdvancesToPartialThenReceived(t *testing.T) {
	svc, store := newPOWorld()
	itemID := core.NewID()
	po, err := svc.CreatePO(purchasing.PurchaseOrder{Code: "PO-3001"}, []purchasing.POLine{
		{ItemID: itemID, QtyOrdered: core.MustDecimal("10")},
		{ItemID: itemID, QtyOrdered: core.MustDecimal("5")},
	})
	if err != nil {
		t.Fatalf("CreatePO: %v", err)
	}
	if err := svc.Order(po.ID); err != nil {
		t.Fatalf("Order: %v", err)
	}
	lines, err := store.LinesForOrder(po.ID)
	if err != nil {
		t.Fatalf("LinesForOrder: %v", err)
	}

	if err := svc.ReceiveLine(po.ID, lines[0].ID, core.MustDecimal("10")); err != nil {
		t.Fatalf("ReceiveLine first: %v", err)
	}
	got, err := store.Get(po.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != purchasing.StatusPartial {
		t.Errorf("status after receiving line 1 fully = %s, want partial (line 2 still open)", got.Status)
	}

	if err := svc.ReceiveLine(po.ID, lines[1].ID, core.MustDecimal("5")); err != nil {
		t.Fatalf("ReceiveLine second: %v", err)
	}
	got, err = store.Get(po.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != purchasing.StatusReceived {
		t.Errorf("status after both lines fully received = %s, want received", got.Status)
	}
}

func TestReceiveLineAccumulatesPartialQuantities(t *testing.T) {
	svc, store := newPOWorld()
	itemID := core.NewID()
	po, err := svc.CreatePO(purchasing.PurchaseOrder{Code: "PO-4001"}, []purchasing.POLine{
		{ItemID: itemID, QtyOrdered: core.MustDecimal("10")},
	})
	if err != nil {
		t.Fatalf("CreatePO: %v", err)
	}
	if err := svc.Order(po.ID); err != nil {
		t.Fatalf("Order: %v", err)
	}
	lines, _ := store.LinesForOrder(po.ID)

	if err := svc.ReceiveLine(po.ID, lines[0].ID, core.MustDecimal("4")); err != nil {
		t.Fatalf("ReceiveLine 1: %v", err)
	}
	if err := svc.ReceiveLine(po.ID, lines[0].ID, core.MustDecimal("6")); err != nil {
		t.Fatalf("ReceiveLine 2: %v", err)
	}

	after, _ := store.LinesForOrder(po.ID)
	if !after[0].QtyReceived.Equal(core.MustDecimal("10")) {
		t.Errorf("qty received = %s, want 10 (4 then 6 accumulated)", after[0].QtyReceived)
	}
	po, err = store.Get(po.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if po.Status != purchasing.StatusReceived {
		t.Errorf("status = %s, want received", po.Status)
	}
}

func TestReceiveLineRejectedBeforeOrdering(t *testing.T) {
	svc, store := newPOWorld()
	po, err := svc.CreatePO(purchasing.PurchaseOrder{Code: "PO-5001"}, []purchasing.POLine{
		{ItemID: core.NewID(), QtyOrdered: core.MustDecimal("10")},
	})
	if err != nil {
		t.Fatalf("CreatePO: %v", err)
	}
	lines, _ := store.LinesForOrder(po.ID)

	if err := svc.ReceiveLine(po.ID, lines[0].ID, core.MustDecimal("1")); err == nil {
		t.Fatal("expected an error receiving against a draft (not yet ordered) PO")
	}
}

func TestOpenLinesForItemExcludesReceivedAndCancelled(t *testing.T) {
	svc, store := newPOWorld()
	itemID := core.NewID()

	open, err := svc.CreatePO(purchasing.PurchaseOrder{Code: "PO-6001"}, []purchasing.POLine{
		{ItemID: itemID, QtyOrdered: core.MustDecimal("10")},
	})
	if err != nil {
		t.Fatalf("CreatePO open: %v", err)
	}
	if err := svc.Order(open.ID); err != nil {
		t.Fatalf("Order open: %v", err)
	}

	received, err := svc.CreatePO(purchasing.PurchaseOrder{Code: "PO-6002"}, []purchasing.POLine{
		{ItemID: itemID, QtyOrdered: core.MustDecimal("5")},
	})
	if err != nil {
		t.Fatalf("CreatePO received: %v", err)
	}
	if err := svc.Order(received.ID); err != nil {
		t.Fatalf("Order received: %v", err)
	}
	recvLines, _ := store.LinesForOrder(received.ID)
	if err := svc.ReceiveLine(received.ID, recvLines[0].ID, core.MustDecimal("5")); err != nil {
		t.Fatalf("ReceiveLine: %v", err)
	}

	cancelled, err := svc.CreatePO(purchasing.PurchaseOrder{Code: "PO-6003"}, []purchasing.POLine{
		{ItemID: itemID, QtyOrdered: core.MustDecimal("7")},
	})
	if err != nil {
		t.Fatalf("CreatePO cancelled: %v", err)
	}
	if err := svc.Cancel(cancelled.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	openLines, err := store.OpenLinesForItem(itemID)
	if err != nil {
		t.Fatalf("OpenLinesForItem: %v", err)
	}
	if len(openLines) != 1 {
		t.Fatalf("got %d open lines, want 1 (fully-received and cancelled POs excluded)", len(openLines))
	}
	if !openLines[0].QtyOrdered.Equal(core.MustDecimal("10")) {
		t.Errorf("open line qty ordered = %s, want 10", openLines[0].QtyOrdered)
	}
}
