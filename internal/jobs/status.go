package jobs

// MarketStatus is the marketplace lifecycle of a job: whether it is
// still open for bidding, awarded to a carrier, or finished. It is a
// separate state space from FulfillmentStatus, which tracks the
// physical movement of the freight once a carrier has been assigned.
type MarketStatus string

const (
	MarketOpen      MarketStatus = "open"
	MarketAssigned  MarketStatus = "assigned"
	MarketCompleted MarketStatus = "completed"
	MarketCancelled MarketStatus = "cancelled"
)

// FulfillmentStatus is the driver-facing lifecycle of an assigned job.
type FulfillmentStatus string

const (
	Allocated         FulfillmentStatus = "ALLOCATED"
	OnMyWayToPickup   FulfillmentStatus = "ON_MY_WAY_TO_PICKUP"
	OnSitePickup      FulfillmentStatus = "ON_SITE_PICKUP"
	PickedUp          FulfillmentStatus = "PICKED_UP"
	OnMyWayToDelivery FulfillmentStatus = "ON_MY_WAY_TO_DELIVERY"
	OnSiteDelivery    FulfillmentStatus = "ON_SITE_DELIVERY"
	Delivered         FulfillmentStatus = "DELIVERED"
	Cancelled         FulfillmentStatus = "CANCELLED"
)

// ValidTransitions defines the allowed fulfillment moves. The graph is
// directional with no cycles; DELIVERED and CANCELLED are terminal.
var ValidTransitions = map[FulfillmentStatus][]FulfillmentStatus{
	Allocated:         {OnMyWayToPickup, Cancelled},
	OnMyWayToPickup:   {OnSitePickup, Cancelled},
	OnSitePickup:      {PickedUp, Cancelled},
	PickedUp:          {OnMyWayToDelivery, Cancelled},
	OnMyWayToDelivery: {OnSiteDelivery, Cancelled},
	OnSiteDelivery:    {Delivered, Cancelled},
	Delivered:         {},
	Cancelled:         {},
}

// IsValidTransition reports whether moving from one fulfillment status
// to another is allowed by the transition table.
func IsValidTransition(from, to FulfillmentStatus) bool {
	for _, t := range ValidTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// AllowedTargets returns the legal next statuses from the given one.
// The result is never nil so it serializes as an empty JSON array for
// terminal statuses.
func AllowedTargets(from FulfillmentStatus) []FulfillmentStatus {
	targets := ValidTransitions[from]
	out := make([]FulfillmentStatus, len(targets))
	copy(out, targets)
	return out
}

// IsTerminal reports whether the status has no outgoing transitions.
func IsTerminal(s FulfillmentStatus) bool {
	return len(ValidTransitions[s]) == 0
}

// ValidFulfillmentStatus reports whether s names a known status.
func ValidFulfillmentStatus(s FulfillmentStatus) bool {
	switch s {
	case Allocated, OnMyWayToPickup, OnSitePickup, PickedUp,
		OnMyWayToDelivery, OnSiteDelivery, Delivered, Cancelled:
		return true
	default:
		return false
	}
}

// MarketStatusAfter maps a fulfillment transition onto the marketplace
// status. Reaching DELIVERED completes the job and CANCELLED cancels
// it; every other move leaves the marketplace status untouched.
func MarketStatusAfter(f FulfillmentStatus, current MarketStatus) MarketStatus {
	switch f {
	case Delivered:
		return MarketCompleted
	case Cancelled:
		return MarketCancelled
	default:
		return current
	}
}
