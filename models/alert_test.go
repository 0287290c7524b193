package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateStock(t *testing.T) {
	// Above minimum: whatever alert exists should be resolved.
	d := EvaluateStock(&Part{QtyOnHand: 6, QtyMinimum: 5})
	assert.True(t, d.Resolve)

	// At the minimum counts as low stock.
	d = EvaluateStock(&Part{QtyOnHand: 5, QtyMinimum: 5})
	assert.False(t, d.Resolve)
	assert.Equal(t, AlertLowStock, d.Type)
	assert.Equal(t, PriorityHigh, d.Priority)

	d = EvaluateStock(&Part{QtyOnHand: 1, QtyMinimum: 5})
	assert.Equal(t, AlertLowStock, d.Type)

	d = EvaluateStock(&Part{QtyOnHand: 0, QtyMinimum: 5})
	assert.Equal(t, AlertOutOfStock, d.Type)
	assert.Equal(t, PriorityCritical, d.Priority)
}

func TestPlanStockAlertIsIdempotent(t *testing.T) {
	p := &Part{QtyOnHand: 0, QtyMinimum: 5}

	first := PlanStockAlert(p, nil)
	assert.True(t, first.Create)
	assert.Equal(t, AlertOutOfStock, first.Type)
	assert.Empty(t, first.ResolveTypes)

	// Running the reconciliation again with the alert already open must be
	// a no-op: nothing created, nothing resolved.
	second := PlanStockAlert(p, []AlertType{first.Type})
	assert.False(t, second.Create)
	assert.Empty(t, second.ResolveTypes)
}

func TestPlanStockAlertSeverityChange(t *testing.T) {
	// The part recovers from zero to low stock: the AGOTADO alert is
	// replaced by a single STOCK_BAJO one.
	p := &Part{QtyOnHand: 2, QtyMinimum: 5}

	plan := PlanStockAlert(p, []AlertType{AlertOutOfStock})
	assert.True(t, plan.Create)
	assert.Equal(t, AlertLowStock, plan.Type)
	assert.Equal(t, []AlertType{AlertOutOfStock}, plan.ResolveTypes)

	again := PlanStockAlert(p, []AlertType{AlertLowStock})
	assert.False(t, again.Create)
	assert.Empty(t, again.ResolveTypes)
}

func TestPlanStockAlertRecovery(t *testing.T) {
	p := &Part{QtyOnHand: 9, QtyMinimum: 5}

	plan := PlanStockAlert(p, []AlertType{AlertLowStock})
	assert.False(t, plan.Create)
	assert.Equal(t, []AlertType{AlertLowStock}, plan.ResolveTypes)

	// Healthy part with nothing open: nothing to do at all.
	clean := PlanStockAlert(p, nil)
	assert.False(t, clean.Create)
	assert.Empty(t, clean.ResolveTypes)
}

func TestAlertTransitions(t *testing.T) {
	cases := []struct {
		from AlertStatus
		to   AlertStatus
		ok   bool
	}{
		{AlertNew, AlertInProgress, true},
		{AlertNew, AlertResolved, true},
		{AlertNew, AlertArchived, false},
		{AlertInProgress, AlertResolved, true},
		{AlertInProgress, AlertInProgress, false},
		{AlertResolved, AlertArchived, true},
		{AlertResolved, AlertInProgress, false},
		{AlertArchived, AlertResolved, false},
	}
	for _, tc := range cases {
		a := Alert{Status: tc.from}
		assert.Equal(t, tc.ok, a.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}
