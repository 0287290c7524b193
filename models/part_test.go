package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPart(onHand, reserved, minimum int) *Part {
	return &Part{Code: "FIL-001", Name: "Filtro de aceite",
		QtyOnHand: onHand, QtyReserved: reserved, QtyMinimum: minimum}
}

func TestPartAvailable(t *testing.T) {
	p := newPart(10, 4, 5)
	assert.Equal(t, 6, p.Available())
}

func TestPartReserve(t *testing.T) {
	p := newPart(10, 4, 5)

	require.NoError(t, p.Reserve(6))
	assert.Equal(t, 10, p.QtyOnHand)
	assert.Equal(t, 10, p.QtyReserved)
	assert.Equal(t, 0, p.Available())

	err := p.Reserve(1)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	err = p.Reserve(0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	err = p.Reserve(-3)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestPartReleaseFailsLoudlyOnOverRelease(t *testing.T) {
	p := newPart(10, 4, 5)

	require.NoError(t, p.Release(3))
	assert.Equal(t, 1, p.QtyReserved)

	// Releasing more than is reserved must not clamp to zero.
	err := p.Release(2)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	assert.Equal(t, 1, p.QtyReserved)
}

func TestPartReceive(t *testing.T) {
	p := newPart(2, 0, 5)
	require.NoError(t, p.Receive(8))
	assert.Equal(t, 10, p.QtyOnHand)

	assert.ErrorIs(t, p.Receive(0), ErrInvalidQuantity)
}

func TestPartSettle(t *testing.T) {
	p := newPart(10, 6, 5)

	require.NoError(t, p.Settle(4))
	assert.Equal(t, 6, p.QtyOnHand)
	assert.Equal(t, 2, p.QtyReserved)

	// More than reserved.
	err := p.Settle(3)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	assert.Equal(t, 6, p.QtyOnHand)
	assert.Equal(t, 2, p.QtyReserved)
}

func TestSettleBlockedAfterReservationRelease(t *testing.T) {
	// 3 units reserved for an open invoice line. If a return releases part
	// of that reservation, the settlement for the full line must refuse
	// instead of going negative.
	p := newPart(5, 3, 2)
	require.NoError(t, p.Release(1))

	err := p.Settle(3)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	assert.Equal(t, 5, p.QtyOnHand)
	assert.Equal(t, 2, p.QtyReserved)
}

func TestPartSetOnHand(t *testing.T) {
	p := newPart(10, 4, 5)

	require.NoError(t, p.SetOnHand(7))
	assert.Equal(t, 7, p.QtyOnHand)
	assert.Equal(t, 4, p.QtyReserved)

	// Cannot drop below the reservation.
	err := p.SetOnHand(3)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	assert.Equal(t, 7, p.QtyOnHand)

	assert.ErrorIs(t, p.SetOnHand(-1), ErrInvalidQuantity)
}
