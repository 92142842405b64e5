/*
Package granttime implements the grant-time encoding used for leave quantities.

PURPOSE:
  A leave-time quantity is stored as a single fractional number where the
  integer part counts whole days and the fractional part encodes working
  hours and an optional half-hour:

    1 day      = 8 working hours = 1.0
    1 hour     = 1/8             = 0.125
    30 minutes = 1/16            = 0.0625

  The same encoding is used by policy definitions (fixed grant time), manual
  grants, and flexible per-request grants, so the codec lives in one place.

PRECISION:
  Values are held as decimal.Decimal. Encoding is exact. Decoding is a lossy
  one-way reconstruction: any remainder finer than a half-hour is silently
  truncated. This matches the wire format's historical behavior and must be
  preserved for compatibility (known precision loss, not a bug to fix).

UNSET SEMANTICS:
  A zero or negative total is "not set", never "zero leave". Encode collapses
  (0,0,0) to an unset Value; callers should check IsSet before persisting.

SEE ALSO:
  - overtime.go: Display-only overtime hour derivation
  - policy package: MinuteGrant flag gating the 30-minute increment
*/
package granttime

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidDays is returned when the day component is negative.
	ErrInvalidDays = errors.New("days must be a non-negative integer")

	// ErrInvalidHours is returned when the hour component is outside [0,7].
	// Eight hours roll into one day and must be entered as a day.
	ErrInvalidHours = errors.New("hours must be between 0 and 7")

	// ErrInvalidMinutes is returned when the minute component is not 0 or 30.
	ErrInvalidMinutes = errors.New("minutes must be 0 or 30")

	// ErrMinuteNotAllowed is returned when a 30-minute increment is supplied
	// for a policy that does not allow minute granularity.
	ErrMinuteNotAllowed = errors.New("minute granularity not allowed by policy")
)

var (
	oneHour     = decimal.New(125, -3) // 0.125
	halfHour    = decimal.New(625, -4) // 0.0625
	hoursPerDay = decimal.NewFromInt(8)
)

// =============================================================================
// VALUE - Stored representation of a leave-time quantity
// =============================================================================

// Value is a grant-time quantity. The zero Value is unset.
type Value struct {
	d   decimal.Decimal
	set bool
}

// None returns an unset Value.
func None() Value { return Value{} }

// FromDecimal wraps an already-encoded quantity. Non-positive inputs
// collapse to unset.
func FromDecimal(d decimal.Decimal) Value {
	if !d.IsPositive() {
		return Value{}
	}
	return Value{d: d, set: true}
}

// FromFloat wraps an already-encoded quantity arriving as a float
// (e.g. from JSON). Non-positive inputs collapse to unset.
func FromFloat(f float64) Value {
	return FromDecimal(decimal.NewFromFloat(f))
}

func (v Value) IsSet() bool              { return v.set }
func (v Value) Decimal() decimal.Decimal { return v.d }
func (v Value) Equal(o Value) bool       { return v.set == o.set && v.d.Equal(o.d) }

// Float64 returns the wire representation. Unset values are 0.
func (v Value) Float64() float64 {
	f, _ := v.d.Float64()
	return f
}

// =============================================================================
// ENCODE / DECODE
// =============================================================================

// Encode converts a (days, hours, minutes) triple into a Value.
// hours must be in [0,7]; minutes must be 0 or 30. A total of zero
// returns an unset Value with no error.
func Encode(days, hours, minutes int) (Value, error) {
	if days < 0 {
		return Value{}, ErrInvalidDays
	}
	if hours < 0 || hours > 7 {
		return Value{}, ErrInvalidHours
	}
	if minutes != 0 && minutes != 30 {
		return Value{}, ErrInvalidMinutes
	}

	total := decimal.NewFromInt(int64(days)).
		Add(oneHour.Mul(decimal.NewFromInt(int64(hours))))
	if minutes == 30 {
		total = total.Add(halfHour)
	}

	return FromDecimal(total), nil
}

// EncodeForPolicy is Encode with the policy's minute-granularity rule
// applied: a 30-minute increment is rejected when minuteGrant is false.
func EncodeForPolicy(days, hours, minutes int, minuteGrant bool) (Value, error) {
	if minutes == 30 && !minuteGrant {
		return Value{}, ErrMinuteNotAllowed
	}
	return Encode(days, hours, minutes)
}

// ValidateGranularity checks an already-encoded quantity (e.g. a flexible
// per-request amount arriving on the wire) against the policy's
// minute-granularity gate: a value containing a half-hour component is
// rejected when minuteGrant is false. Unset values pass.
func ValidateGranularity(v Value, minuteGrant bool) error {
	if minuteGrant || !v.set {
		return nil
	}
	if _, _, minutes := Decode(v); minutes == 30 {
		return ErrMinuteNotAllowed
	}
	return nil
}

// Decode splits a Value back into (days, hours, minutes).
// Remainders finer than a half-hour are truncated, not rounded.
// Unset values decode to (0, 0, 0).
func Decode(v Value) (days, hours, minutes int) {
	if !v.set {
		return 0, 0, 0
	}

	d := v.d.Floor()
	days = int(d.IntPart())

	remainder := v.d.Sub(d)
	hours = int(remainder.Mul(hoursPerDay).Floor().IntPart())

	leftover := remainder.Sub(oneHour.Mul(decimal.NewFromInt(int64(hours))))
	if leftover.Cmp(halfHour) >= 0 {
		minutes = 30
	}
	return days, hours, minutes
}

// =============================================================================
// FORMATTING
// =============================================================================

// Format renders a Value as a short human-readable string, e.g. "2d 3h 30m".
// Zero components are omitted; an unset Value renders as "-".
func Format(v Value) string {
	if !v.set {
		return "-"
	}
	days, hours, minutes := Decode(v)

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}
