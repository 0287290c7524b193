package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestTransitions(t *testing.T) {
	cases := []struct {
		from RequestStatus
		to   RequestStatus
		ok   bool
	}{
		{RequestPending, RequestApproved, true},
		{RequestPending, RequestRejected, true},
		{RequestPending, RequestDelivered, false},
		{RequestApproved, RequestDelivered, true},
		{RequestApproved, RequestCancelled, true},
		{RequestApproved, RequestPartialReturn, true},
		{RequestDelivered, RequestInvoiced, true},
		{RequestDelivered, RequestPartialReturn, true},
		{RequestDelivered, RequestCancelled, true},
		{RequestPartialReturn, RequestPartialReturn, true},
		{RequestPartialReturn, RequestCancelled, true},
		{RequestInvoiced, RequestCancelled, false},
		{RequestRejected, RequestApproved, false},
		{RequestCancelled, RequestDelivered, false},
	}
	for _, tc := range cases {
		r := PartsRequest{Status: tc.from}
		assert.Equal(t, tc.ok, r.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestRequestItemValidateApproval(t *testing.T) {
	it := RequestItem{QtyRequested: 5}

	assert.NoError(t, it.ValidateApproval(0))
	assert.NoError(t, it.ValidateApproval(5))
	assert.ErrorIs(t, it.ValidateApproval(6), ErrInvalidQuantity)
	assert.ErrorIs(t, it.ValidateApproval(-1), ErrInvalidQuantity)
}

func TestRequestItemValidateDelivery(t *testing.T) {
	it := RequestItem{QtyRequested: 5, QtyApproved: 3}

	assert.NoError(t, it.ValidateDelivery(3))
	assert.NoError(t, it.ValidateDelivery(0))
	assert.ErrorIs(t, it.ValidateDelivery(4), ErrInvalidQuantity)
}

func TestRequestItemReturnableQty(t *testing.T) {
	// Before delivery the cap is what was approved.
	it := RequestItem{QtyRequested: 5, QtyApproved: 4}
	assert.Equal(t, 4, it.ReturnableQty())

	// After delivery the cap is what was delivered.
	it.QtyDelivered = 3
	assert.Equal(t, 3, it.ReturnableQty())

	it.QtyReturned = 2
	assert.Equal(t, 1, it.ReturnableQty())
}

func TestRequestItemValidateReturn(t *testing.T) {
	it := RequestItem{QtyRequested: 5, QtyApproved: 4, QtyDelivered: 3, QtyReturned: 1}

	assert.NoError(t, it.ValidateReturn(2))
	assert.ErrorIs(t, it.ValidateReturn(3), ErrInvalidQuantity)
	assert.ErrorIs(t, it.ValidateReturn(0), ErrInvalidQuantity)
}

func TestRequestItemBillableQty(t *testing.T) {
	it := RequestItem{QtyDelivered: 4, QtyReturned: 1}
	assert.Equal(t, 3, it.BillableQty())
}
