// Package blocking answers "why can't this ship/produce?" for a sales
// or production order: it classifies blocking/warning issues and
// proposes prioritized resolution actions, deriving a structured report
// from a snapshot of orders and inventory the way a scheduling
// critical-path analysis derives its report from a task graph.
package blocking

import (
	"time"

	"github.com/filaops/core/internal/core"
)

// IssueType is the closed taxonomy of blocking/warning conditions.
type IssueType string

const (
	IssueProductionIncomplete IssueType = "production_incomplete"
	IssueProductionMissing    IssueType = "production_missing"
	IssueMaterialShortage     IssueType = "material_shortage"
	IssuePurchasePending      IssueType = "purchase_pending"
	IssueInventoryReserved    IssueType = "inventory_reserved"
	IssueQualityHold          IssueType = "quality_hold"
)

// Severity is blocking (prevents progress) or warning (informational).
type Severity string

const (
	SeverityBlocking Severity = "blocking"
	SeverityWarning  Severity = "warning"
)

func (t IssueType) severity() Severity {
	switch t {
	case IssueProductionIncomplete, IssueProductionMissing, IssueMaterialShortage, IssueQualityHold:
		return SeverityBlocking
	default:
		return SeverityWarning
	}
}

// ActionType is the closed set of suggested resolutions, ranked by
// ActionPriority (lower = more urgent).
type ActionType string

const (
	ActionExpeditePO         ActionType = "expedite_purchase_order"
	ActionCreateMissingPO    ActionType = "create_purchase_order"
	ActionCompleteProduction ActionType = "complete_production"
	ActionCreateProduction   ActionType = "create_production_order"
	ActionReassignReservation ActionType = "reassign_reservation"
)

// ActionPriority returns the fixed urgency rank for an action type:
// expedite existing PO > create missing PO > complete in-flight
// production > create missing production > reassign reservation.
// Lower is more urgent.
func ActionPriority(a ActionType) int {
	switch a {
	case ActionExpeditePO:
		return 0
	case ActionCreateMissingPO:
		return 1
	case ActionCompleteProduction:
		return 2
	case ActionCreateProduction:
		return 3
	case ActionReassignReservation:
		return 4
	default:
		return 99
	}
}

// Action is a suggested resolution step, deep-linkable via
// ReferenceType/ReferenceID.
type Action struct {
	Type          ActionType
	ReferenceType string
	ReferenceID   core.ID
	Detail        string
}

// Issue is one classified blocking/warning condition against a line or material.
type Issue struct {
	Type          IssueType
	Severity      Severity
	ItemID        core.ID
	ReferenceType string
	ReferenceID   core.ID
	Detail        string
}

// Analysis is the structured report returned by both entry points: a
// can-proceed flag, an issue count, an estimated ready date, a
// per-line or per-material breakdown, and a prioritized list of
// suggested resolution actions.
type Analysis struct {
	CanProceed       bool
	IssueCount       int
	EstimatedReady   time.Time
	Issues           []Issue
	Actions          []Action
}
