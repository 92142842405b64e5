package policy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warden/hr-engine/granttime"
	"github.com/warden/hr-engine/policy"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func fixedPolicy() policy.Policy {
	return policy.Policy{
		ID:                    "pol-1",
		Name:                  "Annual Leave",
		VacationType:          policy.TypeRegular,
		GrantMethod:           policy.GrantOnRequest,
		GrantTime:             granttime.FromFloat(1),
		ApprovalRequiredCount: 1,
	}
}

// =============================================================================
// VALIDATION TESTS
// =============================================================================

func TestPolicy_Validate_Valid(t *testing.T) {
	p := fixedPolicy()
	assert.NoError(t, p.Validate())
}

func TestPolicy_Validate_NameRequired(t *testing.T) {
	// GIVEN: A policy with a blank name
	// WHEN: Validating
	// THEN: ErrNameRequired tied to the name field

	p := fixedPolicy()
	p.Name = "   "

	err := p.Validate()
	assert.ErrorIs(t, err, policy.ErrNameRequired)

	var fieldErr *policy.FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "vacation_policy_name", fieldErr.Field)
}

func TestPolicy_Validate_EnumFields(t *testing.T) {
	p := fixedPolicy()
	p.VacationType = "SABBATICAL"
	assert.ErrorIs(t, p.Validate(), policy.ErrInvalidVacationType)

	p = fixedPolicy()
	p.GrantMethod = "WISHFUL_THINKING"
	assert.ErrorIs(t, p.Validate(), policy.ErrInvalidGrantMethod)

	p = fixedPolicy()
	p.ApprovalRequiredCount = -1
	assert.ErrorIs(t, p.Validate(), policy.ErrNegativeApprovers)
}

func TestPolicy_Validate_FixedNeedsGrantTime(t *testing.T) {
	// GIVEN: A fixed (non-flexible) policy without a grant time
	// WHEN: Validating
	// THEN: ErrGrantTimeRequired

	p := fixedPolicy()
	p.GrantTime = granttime.None()

	assert.ErrorIs(t, p.Validate(), policy.ErrGrantTimeRequired)
}

func TestPolicy_Validate_FlexibleForbidsGrantTime(t *testing.T) {
	// GIVEN: A flexible policy that also carries a fixed grant time
	// WHEN: Validating
	// THEN: ErrGrantTimeForbidden (the amount comes per-request)

	p := fixedPolicy()
	p.FlexibleGrant = true

	assert.ErrorIs(t, p.Validate(), policy.ErrGrantTimeForbidden)

	p.GrantTime = granttime.None()
	assert.NoError(t, p.Validate())
}

func TestPolicy_Validate_RepeatGrantNeedsConfig(t *testing.T) {
	// GIVEN: A REPEAT_GRANT policy without recurrence settings
	// WHEN: Validating
	// THEN: ErrRepeatConfigMissing

	p := fixedPolicy()
	p.GrantMethod = policy.GrantRepeat

	assert.ErrorIs(t, p.Validate(), policy.ErrRepeatConfigMissing)
}

func TestPolicy_Validate_RepeatConfigRules(t *testing.T) {
	p := fixedPolicy()
	p.GrantMethod = policy.GrantRepeat

	// Monthly needs a positive interval
	p.Repeat = &policy.RepeatConfig{Unit: policy.RepeatMonthly}
	assert.ErrorIs(t, p.Validate(), policy.ErrInvalidRepeatConfig)

	p.Repeat = &policy.RepeatConfig{Unit: policy.RepeatMonthly, Interval: 1}
	assert.NoError(t, p.Validate())

	// SPECIFIC needs a month-of-year and day-of-month
	p.Repeat = &policy.RepeatConfig{Unit: policy.RepeatSpecific, SpecificMonths: 13, SpecificDays: 1}
	assert.ErrorIs(t, p.Validate(), policy.ErrInvalidRepeatConfig)

	p.Repeat = &policy.RepeatConfig{Unit: policy.RepeatSpecific, SpecificMonths: 1, SpecificDays: 1}
	assert.NoError(t, p.Validate())

	// Unknown unit
	p.Repeat = &policy.RepeatConfig{Unit: "WEEKLY", Interval: 1}
	assert.ErrorIs(t, p.Validate(), policy.ErrInvalidRepeatConfig)
}

// =============================================================================
// OVERTIME CLASSIFICATION
// =============================================================================

func TestPolicy_IsOvertime_CaseInsensitive(t *testing.T) {
	p := fixedPolicy()
	assert.False(t, p.IsOvertime())

	p.VacationType = "OVERTIME"
	assert.True(t, p.IsOvertime())

	p.VacationType = "overtime"
	assert.True(t, p.IsOvertime())
}

// =============================================================================
// Y/N FLAG TESTS
// =============================================================================

func TestYNFlags(t *testing.T) {
	assert.Equal(t, "Y", policy.YN(true))
	assert.Equal(t, "N", policy.YN(false))
	assert.True(t, policy.IsYes("Y"))
	assert.False(t, policy.IsYes("N"))
	assert.False(t, policy.IsYes("y"))
	assert.False(t, policy.IsYes(""))
}
