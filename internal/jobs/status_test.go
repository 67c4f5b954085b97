package jobs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHappyPathTransitions(t *testing.T) {
	path := []FulfillmentStatus{
		Allocated,
		OnMyWayToPickup,
		OnSitePickup,
		PickedUp,
		OnMyWayToDelivery,
		OnSiteDelivery,
		Delivered,
	}
	for i := 0; i < len(path)-1; i++ {
		assert.True(t, IsValidTransition(path[i], path[i+1]),
			"expected %s -> %s to be allowed", path[i], path[i+1])
	}
}

func TestNoSkippingSteps(t *testing.T) {
	assert.False(t, IsValidTransition(Allocated, PickedUp))
	assert.False(t, IsValidTransition(Allocated, Delivered))
	assert.False(t, IsValidTransition(OnMyWayToPickup, OnMyWayToDelivery))
	assert.False(t, IsValidTransition(PickedUp, Delivered))
}

func TestNoGoingBackwards(t *testing.T) {
	assert.False(t, IsValidTransition(PickedUp, OnSitePickup))
	assert.False(t, IsValidTransition(OnSiteDelivery, OnMyWayToDelivery))
	assert.False(t, IsValidTransition(OnMyWayToPickup, Allocated))
}

func TestCancelAllowedFromEveryNonTerminalStatus(t *testing.T) {
	for from, targets := range ValidTransitions {
		if IsTerminal(from) {
			continue
		}
		assert.Contains(t, targets, Cancelled, "expected %s to allow cancellation", from)
	}
}

func TestTerminalStatusesHaveNoExits(t *testing.T) {
	assert.True(t, IsTerminal(Delivered))
	assert.True(t, IsTerminal(Cancelled))
	assert.Empty(t, ValidTransitions[Delivered])
	assert.Empty(t, ValidTransitions[Cancelled])

	for _, to := range []FulfillmentStatus{
		Allocated, OnMyWayToPickup, OnSitePickup, PickedUp,
		OnMyWayToDelivery, OnSiteDelivery, Delivered, Cancelled,
	} {
		assert.False(t, IsValidTransition(Delivered, to))
		assert.False(t, IsValidTransition(Cancelled, to))
	}
}

func TestAllowedTargets(t *testing.T) {
	assert.Equal(t, []FulfillmentStatus{OnSitePickup, Cancelled}, AllowedTargets(OnMyWayToPickup))

	// Terminal statuses return an empty, non-nil slice.
	targets := AllowedTargets(Delivered)
	assert.NotNil(t, targets)
	assert.Empty(t, targets)
}

func TestValidFulfillmentStatus(t *testing.T) {
	assert.True(t, ValidFulfillmentStatus(PickedUp))
	assert.False(t, ValidFulfillmentStatus("LOADING"))
	assert.False(t, ValidFulfillmentStatus(""))
}

func TestMarketStatusAfter(t *testing.T) {
	assert.Equal(t, MarketCompleted, MarketStatusAfter(Delivered, MarketAssigned))
	assert.Equal(t, MarketCancelled, MarketStatusAfter(Cancelled, MarketAssigned))
	assert.Equal(t, MarketAssigned, MarketStatusAfter(PickedUp, MarketAssigned))
	assert.Equal(t, MarketAssigned, MarketStatusAfter(OnMyWayToDelivery, MarketAssigned))
}
