// Package plan holds the static policy table mapping commercial plans to
// activation limits, seat bounds, and license key prefixes.
package plan

import "errors"

// Type is the commercial tier of a license.
type Type string

const (
	Pro        Type = "pro"
	Team       Type = "team"
	Enterprise Type = "enterprise"
)

var ErrUnknownPlan = errors.New("unknown_plan")

// ErrInvalidSeatCount reports a seat count outside the plan's bounds. It
// carries the bounds so the purchaser sees them before money changes hands.
type ErrInvalidSeatCount struct {
	Plan      Type
	Requested int
	Min       int
	Max       int
}

func (e *ErrInvalidSeatCount) Error() string {
	return "invalid_seat_count"
}

type policy struct {
	prefix             string
	maxActivations     int
	activationsPerSeat int
	defaultSeats       int
	minSeats           int
	maxSeats           int
	seatBased          bool
}

var policies = map[Type]policy{
	Pro: {
		prefix:         "DPRO",
		maxActivations: 3,
		defaultSeats:   1,
	},
	Team: {
		prefix:             "DTEAM",
		activationsPerSeat: 2,
		defaultSeats:       5,
		minSeats:           3,
		maxSeats:           100,
		seatBased:          true,
	},
	Enterprise: {
		prefix:             "DENT",
		activationsPerSeat: 3,
		defaultSeats:       10,
		minSeats:           10,
		maxSeats:           1000,
		seatBased:          true,
	},
}

// Valid reports whether t is a known plan.
func Valid(t Type) bool {
	_, ok := policies[t]
	return ok
}

// IsSeatBased reports whether the plan's capacity scales with a seat count.
func IsSeatBased(t Type) bool {
	return policies[t].seatBased
}

// PrefixFor returns the license key prefix for a plan.
func PrefixFor(t Type) (string, error) {
	p, ok := policies[t]
	if !ok {
		return "", ErrUnknownPlan
	}
	return p.prefix, nil
}

// MaxActivationsFor computes the effective device activation cap. For
// seat-based plans the cap is the per-seat multiplier times the seat count
// and must be recomputed whenever the seat count changes.
func MaxActivationsFor(t Type, seatCount int) (int, error) {
	p, ok := policies[t]
	if !ok {
		return 0, ErrUnknownPlan
	}
	if !p.seatBased {
		return p.maxActivations, nil
	}
	if seatCount <= 0 {
		seatCount = p.defaultSeats
	}
	return p.activationsPerSeat * seatCount, nil
}

// ValidateSeatCount resolves a requested seat count against the plan's
// bounds. A zero request selects the plan default; pro plans have no seat
// concept and always resolve to one seat.
func ValidateSeatCount(t Type, requested int) (int, error) {
	p, ok := policies[t]
	if !ok {
		return 0, ErrUnknownPlan
	}
	if !p.seatBased {
		return 1, nil
	}
	if requested == 0 {
		return p.defaultSeats, nil
	}
	if requested < p.minSeats || requested > p.maxSeats {
		return 0, &ErrInvalidSeatCount{Plan: t, Requested: requested, Min: p.minSeats, Max: p.maxSeats}
	}
	return requested, nil
}
