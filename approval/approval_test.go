package approval_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warden/hr-engine/approval"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func twoApproverChain() approval.Chain {
	return approval.NewChain(
		[]string{"manager", "director"},
		[]string{"appr-1", "appr-2"},
	)
}

var actedAt = time.Date(2025, time.June, 2, 10, 0, 0, 0, time.UTC)

// =============================================================================
// CHAIN ORDERING TESTS
// =============================================================================

func TestChain_Current_FirstPendingSlot(t *testing.T) {
	// GIVEN: A fresh two-approver chain
	// WHEN: Asking for the current approver
	// THEN: It is the order-1 slot

	chain := twoApproverChain()

	current := chain.Current()
	require.NotNil(t, current)
	assert.Equal(t, "manager", current.ApproverID)
	assert.Equal(t, 1, current.Order)
}

func TestChain_Current_SkipsApprovedSlots(t *testing.T) {
	// GIVEN: The first approver already approved
	// WHEN: Asking for the current approver
	// THEN: It advances to the order-2 slot

	chain := twoApproverChain()
	_, err := chain.Approve("manager", actedAt)
	require.NoError(t, err)

	current := chain.Current()
	require.NotNil(t, current)
	assert.Equal(t, "director", current.ApproverID)
}

func TestChain_InitialStatus(t *testing.T) {
	// GIVEN: Chains with and without approver slots
	// WHEN: Reading the submission-time status
	// THEN: PROGRESS with slots, PENDING without

	assert.Equal(t, approval.GrantProgress, twoApproverChain().InitialStatus())
	assert.Equal(t, approval.GrantPending, approval.Chain{}.InitialStatus())
}

// =============================================================================
// APPROVAL TRANSITION TESTS
// =============================================================================

func TestChain_Approve_SequentialToApproved(t *testing.T) {
	// GIVEN: A two-approver chain
	// WHEN: Both approvers approve in order
	// THEN: First approval keeps PROGRESS, second yields APPROVED

	chain := twoApproverChain()

	status, err := chain.Approve("manager", actedAt)
	require.NoError(t, err)
	assert.Equal(t, approval.GrantProgress, status)

	status, err = chain.Approve("director", actedAt)
	require.NoError(t, err)
	assert.Equal(t, approval.GrantApproved, status)

	assert.Nil(t, chain.Current(), "chain should be exhausted")
	for _, slot := range chain {
		assert.Equal(t, approval.StatusApproved, slot.Status)
		assert.NotNil(t, slot.ApprovalDate)
	}
}

func TestChain_Approve_OutOfOrderRejected(t *testing.T) {
	// GIVEN: A fresh two-approver chain
	// WHEN: The second approver tries to act first
	// THEN: ErrNotCurrentApprover, and nothing changes

	chain := twoApproverChain()

	_, err := chain.Approve("director", actedAt)
	assert.ErrorIs(t, err, approval.ErrNotCurrentApprover)
	assert.Equal(t, approval.StatusPending, chain[0].Status)
	assert.Equal(t, approval.StatusPending, chain[1].Status)
}

func TestChain_Approve_MissingActor(t *testing.T) {
	// GIVEN: A fresh chain
	// WHEN: Approving with an empty actor id
	// THEN: ErrMissingActor

	chain := twoApproverChain()
	_, err := chain.Approve("", actedAt)
	assert.ErrorIs(t, err, approval.ErrMissingActor)
}

func TestChain_Approve_ExhaustedChain(t *testing.T) {
	// GIVEN: A fully approved chain
	// WHEN: Anyone tries to act again
	// THEN: ErrNoCurrentApprover

	chain := twoApproverChain()
	_, _ = chain.Approve("manager", actedAt)
	_, _ = chain.Approve("director", actedAt)

	_, err := chain.Approve("director", actedAt)
	assert.ErrorIs(t, err, approval.ErrNoCurrentApprover)
}

// =============================================================================
// REJECTION TRANSITION TESTS
// =============================================================================

func TestChain_Reject_TerminatesWithoutAdvancing(t *testing.T) {
	// GIVEN: A two-approver chain
	// WHEN: The first approver rejects with a reason
	// THEN: REJECTED, the second slot stays PENDING, no current approver

	chain := twoApproverChain()

	status, err := chain.Reject("manager", "conflicts with release week", actedAt)
	require.NoError(t, err)
	assert.Equal(t, approval.GrantRejected, status)

	assert.Equal(t, approval.StatusRejected, chain[0].Status)
	assert.Equal(t, "conflicts with release week", chain[0].RejectionReason)
	assert.Equal(t, approval.StatusPending, chain[1].Status)
	assert.Nil(t, chain.Current(), "terminated chain has no current approver")

	info := chain.RejectionInfo()
	require.NotNil(t, info)
	assert.Equal(t, "manager", info.ApproverID)
}

func TestChain_Reject_BlankReasonNoOp(t *testing.T) {
	// GIVEN: A fresh chain
	// WHEN: Rejecting with a whitespace-only reason
	// THEN: ErrBlankRejectionReason, and the slot is untouched

	chain := twoApproverChain()

	_, err := chain.Reject("manager", "   \t\n", actedAt)
	assert.ErrorIs(t, err, approval.ErrBlankRejectionReason)
	assert.Equal(t, approval.StatusPending, chain[0].Status)
}

func TestChain_Reject_OutOfOrderRejected(t *testing.T) {
	// GIVEN: A fresh two-approver chain
	// WHEN: The second approver tries to reject first
	// THEN: ErrNotCurrentApprover

	chain := twoApproverChain()

	_, err := chain.Reject("director", "too busy", actedAt)
	assert.ErrorIs(t, err, approval.ErrNotCurrentApprover)
}

// =============================================================================
// TERMINAL STATUS TESTS
// =============================================================================

func TestGrantStatus_IsTerminal(t *testing.T) {
	assert.False(t, approval.GrantPending.IsTerminal())
	assert.False(t, approval.GrantProgress.IsTerminal())
	assert.True(t, approval.GrantApproved.IsTerminal())
	assert.True(t, approval.GrantRejected.IsTerminal())
	assert.True(t, approval.GrantCanceled.IsTerminal())
}
