package booking

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuel-nexus/service-backoffice/internal/domain"
)

func newTestBooking(t *testing.T) *Booking {
	t.Helper()
	bk, err := NewBooking(uuid.New(), uuid.New(), domain.FuelTypeGas, 60, nil, "")
	require.NoError(t, err)
	return bk
}

func TestNewBooking(t *testing.T) {
	bk := newTestBooking(t)

	assert.Equal(t, StatusPending, bk.Status())
	assert.Equal(t, int64(1), bk.Version())
	assert.True(t, strings.HasPrefix(bk.BookingNumber(), "FB-"))
	assert.Len(t, bk.BookingNumber(), 9)
}

func TestNewBooking_Validation(t *testing.T) {
	future := time.Now().Add(24 * time.Hour)

	tests := []struct {
		name       string
		customerID uuid.UUID
		productID  uuid.UUID
		fuelType   domain.FuelType
		quantity   float64
		date       *time.Time
	}{
		{"missing customer", uuid.Nil, uuid.New(), domain.FuelTypeGas, 10, nil},
		{"missing product", uuid.New(), uuid.Nil, domain.FuelTypeGas, 10, nil},
		{"invalid fuel type", uuid.New(), uuid.New(), domain.FuelType("DIESEL"), 10, nil},
		{"zero quantity", uuid.New(), uuid.New(), domain.FuelTypeGas, 0, nil},
		{"negative quantity", uuid.New(), uuid.New(), domain.FuelTypeLiquid, -5, nil},
		{"future booking date", uuid.New(), uuid.New(), domain.FuelTypeGas, 10, &future},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBooking(tt.customerID, tt.productID, tt.fuelType, tt.quantity, tt.date, "")
			require.Error(t, err)
			assert.True(t, domain.IsValidation(err))
		})
	}
}

func TestNewBooking_PastBookingDateAccepted(t *testing.T) {
	past := time.Now().Add(-48 * time.Hour)
	bk, err := NewBooking(uuid.New(), uuid.New(), domain.FuelTypeLiquid, 25, &past, "backfill")
	require.NoError(t, err)
	assert.Equal(t, past.UTC().Unix(), bk.BookingDate().Unix())
}

func TestBooking_Confirm(t *testing.T) {
	bk := newTestBooking(t)

	require.NoError(t, bk.Confirm())
	assert.Equal(t, StatusConfirmed, bk.Status())

	// Confirming twice is an invalid transition.
	err := bk.Confirm()
	require.Error(t, err)
	assert.True(t, domain.IsInvalidState(err))
}

func TestBooking_MarkDelivered(t *testing.T) {
	bk := newTestBooking(t)

	// PENDING -> DELIVERED is not allowed.
	err := bk.MarkDelivered()
	require.Error(t, err)
	assert.True(t, domain.IsInvalidState(err))

	require.NoError(t, bk.Confirm())
	require.NoError(t, bk.MarkDelivered())
	assert.Equal(t, StatusDelivered, bk.Status())
	require.NotNil(t, bk.DeliveredAt())
}

func TestBooking_Cancel(t *testing.T) {
	bk := newTestBooking(t)

	require.NoError(t, bk.Cancel("customer changed mind"))
	assert.Equal(t, StatusCancelled, bk.Status())
	assert.Equal(t, "customer changed mind", bk.CancelNote())
	require.NotNil(t, bk.CancelledAt())
}

func TestBooking_CancelConfirmed(t *testing.T) {
	bk := newTestBooking(t)
	require.NoError(t, bk.Confirm())
	require.NoError(t, bk.Cancel("out of stock"))
	assert.Equal(t, StatusCancelled, bk.Status())
}

func TestBooking_TerminalStatesRejectTransitions(t *testing.T) {
	delivered := newTestBooking(t)
	require.NoError(t, delivered.Confirm())
	require.NoError(t, delivered.MarkDelivered())

	cancelled := newTestBooking(t)
	require.NoError(t, cancelled.Cancel(""))

	for _, bk := range []*Booking{delivered, cancelled} {
		assert.True(t, bk.Status().IsTerminal())
		assert.Error(t, bk.Confirm())
		assert.Error(t, bk.MarkDelivered())
		assert.Error(t, bk.Cancel("too late"))
	}
}

func TestBookingStatus_Transitions(t *testing.T) {
	assert.True(t, StatusPending.CanTransitionTo(StatusConfirmed))
	assert.True(t, StatusPending.CanTransitionTo(StatusCancelled))
	assert.False(t, StatusPending.CanTransitionTo(StatusDelivered))

	assert.True(t, StatusConfirmed.CanTransitionTo(StatusDelivered))
	assert.True(t, StatusConfirmed.CanTransitionTo(StatusCancelled))
	assert.False(t, StatusConfirmed.CanTransitionTo(StatusPending))

	assert.False(t, StatusDelivered.CanTransitionTo(StatusCancelled))
	assert.False(t, StatusCancelled.CanTransitionTo(StatusPending))
}

func TestParseBookingStatus(t *testing.T) {
	status, err := ParseBookingStatus("CONFIRMED")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, status)

	_, err = ParseBookingStatus("confirmed")
	assert.Error(t, err)

	_, err = ParseBookingStatus("SHIPPED")
	assert.Error(t, err)
}

func TestBooking_IncrementVersion(t *testing.T) {
	bk := newTestBooking(t)
	bk.IncrementVersion()
	assert.Equal(t, int64(2), bk.Version())
}
