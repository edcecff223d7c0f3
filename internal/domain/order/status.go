package order

import "fmt"

// ErrInvalidStatus is returned for a status value outside the enumerated set.
var ErrInvalidStatus = fmt.Errorf("invalid order status")

// Status is the order lifecycle state. The active group (pending through
// delivered) is presumed to still require its reserved stock; the inactive
// group (canceled, returned) is not.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusInDelivery Status = "in_delivery"
	StatusDelivered  Status = "delivered"
	StatusCanceled   Status = "canceled"
	StatusReturned   Status = "returned"
)

var validStatuses = map[Status]bool{
	StatusPending:    true,
	StatusConfirmed:  true,
	StatusInDelivery: true,
	StatusDelivered:  true,
	StatusCanceled:   true,
	StatusReturned:   true,
}

// ParseStatus validates a raw status string.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !validStatuses[st] {
		return "", ErrInvalidStatus
	}
	return st, nil
}

// IsActive reports whether orders in this status hold their stock.
func (s Status) IsActive() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusInDelivery, StatusDelivered:
		return true
	}
	return false
}

// Effect is the stock side effect a status transition requires.
type Effect int

const (
	// EffectNone: status write only.
	EffectNone Effect = iota
	// EffectReserve: re-reserve all items before the status change commits.
	EffectReserve
	// EffectRelease: release all items and flip stockReserved to false.
	EffectRelease
)

// TransitionEffect decides the stock side effect of moving an order to a new
// status. reserved is the order's current stockReserved flag, which is
// authoritative: an inactive->active move with the reservation still held
// (or the reverse) changes status only.
//
// Terminal statuses are deliberately re-enterable: un-canceling an order goes
// through EffectReserve and fails like any other checkout would when stock
// has since been taken.
func TransitionEffect(reserved bool, to Status) Effect {
	switch {
	case to.IsActive() && !reserved:
		return EffectReserve
	case !to.IsActive() && reserved:
		return EffectRelease
	}
	return EffectNone
}
