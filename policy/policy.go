/*
Package policy defines vacation policy configuration and its validation.

PURPOSE:
  A VacationPolicy is a leave-type configuration: how time is granted
  (on request, manually by an admin, or on a recurring schedule), how much
  is granted, whether the amount is fixed or chosen per request, how many
  approvers a request needs, and the validity window of resulting grants.

INVARIANTS:
  - A fixed policy (FlexibleGrant == false) must carry a positive grant
    time; a flexible policy carries none (the amount is supplied
    per-request instead).
  - REPEAT_GRANT policies must carry a repeat configuration.
  - The 30-minute grant increment is only usable when MinuteGrant is set.

Validation is a pure rule check returning sentinel-wrapped field errors;
message presentation is left to callers.
*/
package policy

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/warden/hr-engine/granttime"
)

// =============================================================================
// ENUMS
// =============================================================================

// GrantMethod describes how a policy's time is granted.
type GrantMethod string

const (
	GrantOnRequest GrantMethod = "ON_REQUEST"   // employee-initiated request
	GrantManual    GrantMethod = "MANUAL_GRANT" // admin-initiated grant
	GrantRepeat    GrantMethod = "REPEAT_GRANT" // system-scheduled recurring grant
)

// VacationType distinguishes policy variants. Overtime policies require a
// start/end time on requests instead of a whole-day date.
type VacationType string

const (
	TypeRegular  VacationType = "REGULAR"
	TypeOvertime VacationType = "OVERTIME"
)

// RepeatUnit is the recurrence unit for REPEAT_GRANT policies.
type RepeatUnit string

const (
	RepeatMonthly  RepeatUnit = "MONTHLY"
	RepeatYearly   RepeatUnit = "YEARLY"
	RepeatSpecific RepeatUnit = "SPECIFIC"
)

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

var (
	ErrNameRequired        = errors.New("policy name is required")
	ErrInvalidGrantMethod  = errors.New("invalid grant method")
	ErrInvalidVacationType = errors.New("invalid vacation type")
	ErrGrantTimeRequired   = errors.New("fixed policy requires a positive grant time")
	ErrGrantTimeForbidden  = errors.New("flexible policy must not carry a grant time")
	ErrRepeatConfigMissing = errors.New("repeat-grant policy requires a repeat configuration")
	ErrInvalidRepeatConfig = errors.New("invalid repeat configuration")
	ErrNegativeApprovers   = errors.New("approval required count must be non-negative")
)

// FieldError ties a validation failure to the field that caused it, so
// presentation layers can resolve messages separately from the rule.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string { return fmt.Sprintf("%s: %v", e.Field, e.Err) }
func (e *FieldError) Unwrap() error { return e.Err }

// =============================================================================
// POLICY
// =============================================================================

// RepeatConfig holds the recurrence settings of a REPEAT_GRANT policy.
type RepeatConfig struct {
	Unit           RepeatUnit
	Interval       int
	SpecificMonths int // for RepeatSpecific: month of year (1-12)
	SpecificDays   int // for RepeatSpecific: day of month (1-31)
	FirstGrantDate *time.Time
	Recurring      bool
	MaxGrantCount  int // 0 = unlimited
}

// Policy is a leave-type configuration. Once grants reference a policy it
// should be treated as immutable; that is enforced at the admin surface,
// not here.
type Policy struct {
	ID                    string
	Name                  string
	Desc                  string
	VacationType          VacationType
	GrantMethod           GrantMethod
	GrantTime             granttime.Value // unset when FlexibleGrant
	FlexibleGrant         bool            // amount chosen per-request
	MinuteGrant           bool            // 30-minute increments allowed
	ApprovalRequiredCount int
	EffectiveType         string
	ExpirationType        string
	Repeat                *RepeatConfig
	CreatedAt             time.Time
}

// IsOvertime reports whether requests against this policy are
// time-bounded (start/end clock times) rather than date-only.
func (p *Policy) IsOvertime() bool {
	return strings.EqualFold(string(p.VacationType), string(TypeOvertime))
}

// Validate checks the policy's configuration rules. The first violated
// rule is returned as a FieldError.
func (p *Policy) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return &FieldError{Field: "vacation_policy_name", Err: ErrNameRequired}
	}

	switch p.VacationType {
	case TypeRegular, TypeOvertime:
	default:
		return &FieldError{Field: "vacation_type", Err: ErrInvalidVacationType}
	}

	switch p.GrantMethod {
	case GrantOnRequest, GrantManual, GrantRepeat:
	default:
		return &FieldError{Field: "grant_method", Err: ErrInvalidGrantMethod}
	}

	if p.ApprovalRequiredCount < 0 {
		return &FieldError{Field: "approval_required_count", Err: ErrNegativeApprovers}
	}

	if p.FlexibleGrant {
		if p.GrantTime.IsSet() {
			return &FieldError{Field: "grant_time", Err: ErrGrantTimeForbidden}
		}
	} else if !p.GrantTime.IsSet() {
		return &FieldError{Field: "grant_time", Err: ErrGrantTimeRequired}
	}

	if p.GrantMethod == GrantRepeat {
		if p.Repeat == nil {
			return &FieldError{Field: "repeat_unit", Err: ErrRepeatConfigMissing}
		}
		if err := p.Repeat.validate(); err != nil {
			return err
		}
	}

	return nil
}

func (rc *RepeatConfig) validate() error {
	switch rc.Unit {
	case RepeatMonthly, RepeatYearly:
		if rc.Interval < 1 {
			return &FieldError{Field: "repeat_interval", Err: ErrInvalidRepeatConfig}
		}
	case RepeatSpecific:
		if rc.SpecificMonths < 1 || rc.SpecificMonths > 12 {
			return &FieldError{Field: "specific_months", Err: ErrInvalidRepeatConfig}
		}
		if rc.SpecificDays < 1 || rc.SpecificDays > 31 {
			return &FieldError{Field: "specific_days", Err: ErrInvalidRepeatConfig}
		}
	default:
		return &FieldError{Field: "repeat_unit", Err: ErrInvalidRepeatConfig}
	}
	if rc.MaxGrantCount < 0 {
		return &FieldError{Field: "max_grant_count", Err: ErrInvalidRepeatConfig}
	}
	return nil
}

// =============================================================================
// Y/N FLAGS - wire representation of booleans
// =============================================================================

// YN renders a bool in the wire format's Y/N convention.
func YN(b bool) string {
	if b {
		return "Y"
	}
	return "N"
}

// IsYes parses the wire format's Y/N convention. Anything but "Y" is false.
func IsYes(s string) bool { return s == "Y" }
