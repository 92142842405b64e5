package vacation_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warden/hr-engine/approval"
	"github.com/warden/hr-engine/granttime"
	"github.com/warden/hr-engine/policy"
	"github.com/warden/hr-engine/store/sqlite"
	"github.com/warden/hr-engine/vacation"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestService(t *testing.T) (*vacation.Service, *sqlite.Store) {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return vacation.NewService(store, nil), store
}

// seedOrg creates a requester plus two approver-flagged users.
func seedOrg(t *testing.T, store *sqlite.Store) {
	ctx := context.Background()
	users := []sqlite.User{
		{ID: "alice", Name: "Alice"},
		{ID: "bob", Name: "Bob", Approver: true},
		{ID: "carol", Name: "Carol", Approver: true},
	}
	for _, u := range users {
		require.NoError(t, store.SaveUser(ctx, u))
	}
}

func seedPolicy(t *testing.T, store *sqlite.Store, p policy.Policy) {
	require.NoError(t, store.SavePolicy(context.Background(), &p))
}

func annualLeave(required int) policy.Policy {
	return policy.Policy{
		ID:                    "annual",
		Name:                  "Annual Leave",
		VacationType:          policy.TypeRegular,
		GrantMethod:           policy.GrantOnRequest,
		GrantTime:             granttime.FromFloat(1),
		ApprovalRequiredCount: required,
	}
}

func submitInput(approvers ...string) vacation.SubmitInput {
	return vacation.SubmitInput{
		UserID:           "alice",
		PolicyID:         "annual",
		Desc:             "family trip",
		ApproverIDs:      approvers,
		RequestStartTime: time.Date(2025, time.July, 7, 9, 0, 0, 0, time.Local),
	}
}

// =============================================================================
// SUBMISSION TESTS
// =============================================================================

func TestSubmit_BuildsChainAndStartsProgress(t *testing.T) {
	// GIVEN: A policy requiring two approvers and a pool of two
	// WHEN: Alice submits naming bob then carol
	// THEN: The grant is PROGRESS with bob as current approver

	svc, store := newTestService(t)
	seedOrg(t, store)
	seedPolicy(t, store, annualLeave(2))

	result, err := svc.Submit(context.Background(), submitInput("bob", "carol"))
	require.NoError(t, err)
	assert.False(t, result.ReducedApproverCount)
	assert.Equal(t, approval.GrantProgress, result.Grant.Status)

	// Reload through the store to check persistence
	grant, err := store.GetGrant(context.Background(), result.Grant.ID)
	require.NoError(t, err)
	require.NotNil(t, grant)
	require.Len(t, grant.Approvers, 2)
	assert.Equal(t, "bob", grant.Approvers[0].ApproverID)
	assert.Equal(t, 1, grant.Approvers[0].Order)
	assert.Equal(t, "carol", grant.Approvers[1].ApproverID)

	current := grant.CurrentApprover()
	require.NotNil(t, current)
	assert.Equal(t, "bob", current.ApproverID)
	assert.Equal(t, "Bob", current.ApproverName)
}

func TestSubmit_FixedPolicyIgnoresRequestedAmount(t *testing.T) {
	// GIVEN: A fixed one-day policy
	// WHEN: The request tries to sneak in a larger amount
	// THEN: The stored grant carries the policy's own value

	svc, store := newTestService(t)
	seedOrg(t, store)
	seedPolicy(t, store, annualLeave(1))

	in := submitInput("bob")
	in.GrantTime = granttime.FromFloat(5)

	result, err := svc.Submit(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, result.Grant.GrantTime.Equal(granttime.FromFloat(1)))
}

func TestSubmit_FlexiblePolicyRequiresAmount(t *testing.T) {
	// GIVEN: A flexible policy
	// WHEN: Submitting without an amount, then with one
	// THEN: First fails, second stores the requested amount

	svc, store := newTestService(t)
	seedOrg(t, store)

	p := annualLeave(1)
	p.FlexibleGrant = true
	p.GrantTime = granttime.None()
	seedPolicy(t, store, p)

	_, err := svc.Submit(context.Background(), submitInput("bob"))
	assert.ErrorIs(t, err, vacation.ErrGrantTimeRequired)

	in := submitInput("bob")
	in.GrantTime = granttime.FromFloat(0.5)
	result, err := svc.Submit(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, result.Grant.GrantTime.Equal(granttime.FromFloat(0.5)))
}

func TestSubmit_FlexibleMinuteGateEnforced(t *testing.T) {
	// GIVEN: A flexible policy without minute granularity
	// WHEN: The requested amount carries a half-hour component
	// THEN: Rejected; a whole-hour amount passes, and so does the
	//       half-hour once the policy allows minutes

	svc, store := newTestService(t)
	seedOrg(t, store)

	p := annualLeave(1)
	p.FlexibleGrant = true
	p.GrantTime = granttime.None()
	seedPolicy(t, store, p)

	in := submitInput("bob")
	in.GrantTime = granttime.FromFloat(0.5625) // 4h 30m
	_, err := svc.Submit(context.Background(), in)
	assert.ErrorIs(t, err, granttime.ErrMinuteNotAllowed)

	in = submitInput("bob")
	in.GrantTime = granttime.FromFloat(0.5) // 4h
	_, err = svc.Submit(context.Background(), in)
	require.NoError(t, err)

	p.MinuteGrant = true
	seedPolicy(t, store, p)

	in = submitInput("bob")
	in.GrantTime = granttime.FromFloat(0.5625)
	_, err = svc.Submit(context.Background(), in)
	assert.NoError(t, err)
}

func TestSubmit_WrongApproverCountRejected(t *testing.T) {
	// GIVEN: A policy requiring two approvers and a pool of two
	// WHEN: Only one approver is named
	// THEN: ApproverCountError carrying the actual requirement

	svc, store := newTestService(t)
	seedOrg(t, store)
	seedPolicy(t, store, annualLeave(2))

	_, err := svc.Submit(context.Background(), submitInput("bob"))
	var countErr *vacation.ApproverCountError
	require.ErrorAs(t, err, &countErr)
	assert.Equal(t, 2, countErr.Required)
	assert.Equal(t, 1, countErr.Chosen)
}

func TestSubmit_BlankApproverNeverBecomesSlot(t *testing.T) {
	// GIVEN: A one-approver policy
	// WHEN: The chosen list carries bob plus a whitespace-only entry
	// THEN: Only bob gets a slot, and his sole approval finalizes the
	//       grant

	svc, store := newTestService(t)
	seedOrg(t, store)
	seedPolicy(t, store, annualLeave(1))

	result, err := svc.Submit(context.Background(), submitInput("bob", " "))
	require.NoError(t, err)
	require.Len(t, result.Grant.Approvers, 1)
	assert.Equal(t, "bob", result.Grant.Approvers[0].ApproverID)

	grant, err := svc.Approve(context.Background(),
		result.Grant.Approvers[0].ApprovalID, "bob")
	require.NoError(t, err)
	assert.Equal(t, approval.GrantApproved, grant.Status)
}

func TestSubmit_SmallPoolReducesRequirement(t *testing.T) {
	// GIVEN: A policy requiring three approvers but only two in the pool
	// WHEN: Two approvers are named
	// THEN: Submission succeeds with the reduction flagged as a warning

	svc, store := newTestService(t)
	seedOrg(t, store)
	seedPolicy(t, store, annualLeave(3))

	result, err := svc.Submit(context.Background(), submitInput("bob", "carol"))
	require.NoError(t, err)
	assert.True(t, result.ReducedApproverCount)
	assert.Equal(t, approval.GrantProgress, result.Grant.Status)
	assert.Len(t, result.Grant.Approvers, 2)
}

func TestSubmit_AutoApprovalSkipsChain(t *testing.T) {
	// GIVEN: A requester flagged for auto-approval
	// WHEN: Submitting with no approvers
	// THEN: No chain is built and the grant starts PENDING

	svc, store := newTestService(t)
	seedOrg(t, store)
	seedPolicy(t, store, annualLeave(2))
	require.NoError(t, store.SaveUser(context.Background(),
		sqlite.User{ID: "dave", Name: "Dave", AutoApproval: true}))

	in := submitInput()
	in.UserID = "dave"

	result, err := svc.Submit(context.Background(), in)
	require.NoError(t, err)
	assert.Empty(t, result.Grant.Approvers)
	assert.Equal(t, approval.GrantPending, result.Grant.Status)
}

func TestSubmit_UnknownUserOrPolicy(t *testing.T) {
	svc, store := newTestService(t)
	seedOrg(t, store)
	seedPolicy(t, store, annualLeave(1))

	in := submitInput("bob")
	in.UserID = "ghost"
	_, err := svc.Submit(context.Background(), in)
	assert.ErrorIs(t, err, vacation.ErrUserNotFound)

	in = submitInput("bob")
	in.PolicyID = "ghost"
	_, err = svc.Submit(context.Background(), in)
	assert.ErrorIs(t, err, vacation.ErrPolicyNotFound)
}

func TestSubmit_ManualPolicyNotRequestable(t *testing.T) {
	// GIVEN: A MANUAL_GRANT policy
	// WHEN: An employee tries to request against it
	// THEN: ErrNotRequestable

	svc, store := newTestService(t)
	seedOrg(t, store)

	p := annualLeave(0)
	p.GrantMethod = policy.GrantManual
	seedPolicy(t, store, p)

	_, err := svc.Submit(context.Background(), submitInput())
	assert.ErrorIs(t, err, vacation.ErrNotRequestable)
}

func TestSubmit_OvertimeNeedsEndTime(t *testing.T) {
	// GIVEN: An overtime policy
	// WHEN: Submitting without an end time, then with one
	// THEN: First fails with ErrTimeRangeRequired

	svc, store := newTestService(t)
	seedOrg(t, store)

	p := annualLeave(1)
	p.VacationType = policy.TypeOvertime
	seedPolicy(t, store, p)

	_, err := svc.Submit(context.Background(), submitInput("bob"))
	assert.ErrorIs(t, err, vacation.ErrTimeRangeRequired)

	in := submitInput("bob")
	end := in.RequestStartTime.Add(4 * time.Hour)
	in.RequestEndTime = &end
	_, err = svc.Submit(context.Background(), in)
	assert.NoError(t, err)
}

func TestSubmit_IdempotentReplay(t *testing.T) {
	// GIVEN: A submission with an explicit idempotency key
	// WHEN: The same submission is replayed
	// THEN: The original grant is returned, no duplicate created

	svc, store := newTestService(t)
	seedOrg(t, store)
	seedPolicy(t, store, annualLeave(1))

	in := submitInput("bob")
	in.IdempotencyKey = "retry-7"

	first, err := svc.Submit(context.Background(), in)
	require.NoError(t, err)

	second, err := svc.Submit(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, first.Grant.ID, second.Grant.ID)

	grants, err := store.ListGrantsByUser(context.Background(), "alice")
	require.NoError(t, err)
	assert.Len(t, grants, 1)
}

// =============================================================================
// APPROVAL LIFECYCLE TESTS
// =============================================================================

func TestApprove_SequentialChainToApproved(t *testing.T) {
	// GIVEN: A submitted request with a two-approver chain
	// WHEN: Bob approves, then carol
	// THEN: PROGRESS after bob, APPROVED after carol

	svc, store := newTestService(t)
	seedOrg(t, store)
	seedPolicy(t, store, annualLeave(2))

	result, err := svc.Submit(context.Background(), submitInput("bob", "carol"))
	require.NoError(t, err)

	grant, err := svc.Approve(context.Background(),
		result.Grant.Approvers[0].ApprovalID, "bob")
	require.NoError(t, err)
	assert.Equal(t, approval.GrantProgress, grant.Status)

	grant, err = svc.Approve(context.Background(),
		result.Grant.Approvers[1].ApprovalID, "carol")
	require.NoError(t, err)
	assert.Equal(t, approval.GrantApproved, grant.Status)

	// Persisted state matches
	reloaded, err := store.GetGrant(context.Background(), result.Grant.ID)
	require.NoError(t, err)
	assert.Equal(t, approval.GrantApproved, reloaded.Status)
	assert.Equal(t, approval.StatusApproved, reloaded.Approvers[0].Status)
	assert.Equal(t, approval.StatusApproved, reloaded.Approvers[1].Status)
	assert.NotNil(t, reloaded.Approvers[0].ApprovalDate)
}

func TestApprove_OutOfOrderForbidden(t *testing.T) {
	// GIVEN: A two-approver chain with bob first
	// WHEN: Carol tries to approve her own slot before bob acted
	// THEN: ErrNotCurrentApprover, nothing persisted

	svc, store := newTestService(t)
	seedOrg(t, store)
	seedPolicy(t, store, annualLeave(2))

	result, err := svc.Submit(context.Background(), submitInput("bob", "carol"))
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(),
		result.Grant.Approvers[1].ApprovalID, "carol")
	assert.ErrorIs(t, err, approval.ErrNotCurrentApprover)

	reloaded, err := store.GetGrant(context.Background(), result.Grant.ID)
	require.NoError(t, err)
	assert.Equal(t, approval.GrantProgress, reloaded.Status)
	assert.Equal(t, approval.StatusPending, reloaded.Approvers[1].Status)
}

func TestApprove_QuotedSlotMustBeCurrent(t *testing.T) {
	// GIVEN: A two-approver chain with bob first
	// WHEN: Bob acts while quoting carol's approval id
	// THEN: ErrNotCurrentApprover, nothing persisted

	svc, store := newTestService(t)
	seedOrg(t, store)
	seedPolicy(t, store, annualLeave(2))

	result, err := svc.Submit(context.Background(), submitInput("bob", "carol"))
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(),
		result.Grant.Approvers[1].ApprovalID, "bob")
	assert.ErrorIs(t, err, approval.ErrNotCurrentApprover)

	reloaded, err := store.GetGrant(context.Background(), result.Grant.ID)
	require.NoError(t, err)
	assert.Equal(t, approval.StatusPending, reloaded.Approvers[0].Status)
	assert.Equal(t, approval.StatusPending, reloaded.Approvers[1].Status)
}

func TestReject_TerminalWithReason(t *testing.T) {
	// GIVEN: A two-approver chain
	// WHEN: Bob rejects with a reason
	// THEN: REJECTED immediately; carol's slot stays PENDING and nobody
	//       can act afterwards

	svc, store := newTestService(t)
	seedOrg(t, store)
	seedPolicy(t, store, annualLeave(2))

	result, err := svc.Submit(context.Background(), submitInput("bob", "carol"))
	require.NoError(t, err)

	grant, err := svc.Reject(context.Background(),
		result.Grant.Approvers[0].ApprovalID, "bob", "blackout period")
	require.NoError(t, err)
	assert.Equal(t, approval.GrantRejected, grant.Status)

	reloaded, err := store.GetGrant(context.Background(), result.Grant.ID)
	require.NoError(t, err)
	assert.Equal(t, approval.GrantRejected, reloaded.Status)
	assert.Equal(t, approval.StatusPending, reloaded.Approvers[1].Status)

	info := reloaded.Approvers.RejectionInfo()
	require.NotNil(t, info)
	assert.Equal(t, "blackout period", info.RejectionReason)

	// Rejection is terminal
	_, err = svc.Approve(context.Background(),
		result.Grant.Approvers[1].ApprovalID, "carol")
	assert.ErrorIs(t, err, vacation.ErrNotInProgress)
}

func TestReject_BlankReasonChangesNothing(t *testing.T) {
	// GIVEN: A request in progress
	// WHEN: Rejecting with a whitespace-only reason
	// THEN: ErrBlankRejectionReason and the grant stays PROGRESS

	svc, store := newTestService(t)
	seedOrg(t, store)
	seedPolicy(t, store, annualLeave(1))

	result, err := svc.Submit(context.Background(), submitInput("bob"))
	require.NoError(t, err)

	_, err = svc.Reject(context.Background(),
		result.Grant.Approvers[0].ApprovalID, "bob", "  ")
	assert.ErrorIs(t, err, approval.ErrBlankRejectionReason)

	reloaded, err := store.GetGrant(context.Background(), result.Grant.ID)
	require.NoError(t, err)
	assert.Equal(t, approval.GrantProgress, reloaded.Status)
}

func TestApprove_MissingIdsArePreconditionFailures(t *testing.T) {
	svc, store := newTestService(t)
	seedOrg(t, store)

	_, err := svc.Approve(context.Background(), "", "bob")
	assert.ErrorIs(t, err, approval.ErrMissingActor)

	_, err = svc.Approve(context.Background(), "appr-1", "")
	assert.ErrorIs(t, err, approval.ErrMissingActor)

	_, err = svc.Approve(context.Background(), "no-such-approval", "bob")
	assert.ErrorIs(t, err, vacation.ErrGrantNotFound)
}

// =============================================================================
// CANCELLATION TESTS
// =============================================================================

func TestCancel_RequesterWithdraws(t *testing.T) {
	// GIVEN: A request in progress
	// WHEN: The requester cancels
	// THEN: CANCELED, and approvers can no longer act

	svc, store := newTestService(t)
	seedOrg(t, store)
	seedPolicy(t, store, annualLeave(1))

	result, err := svc.Submit(context.Background(), submitInput("bob"))
	require.NoError(t, err)

	grant, err := svc.Cancel(context.Background(), result.Grant.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, approval.GrantCanceled, grant.Status)

	_, err = svc.Approve(context.Background(),
		result.Grant.Approvers[0].ApprovalID, "bob")
	assert.ErrorIs(t, err, vacation.ErrNotInProgress)
}

func TestCancel_OnlyRequester(t *testing.T) {
	svc, store := newTestService(t)
	seedOrg(t, store)
	seedPolicy(t, store, annualLeave(1))

	result, err := svc.Submit(context.Background(), submitInput("bob"))
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), result.Grant.ID, "bob")
	assert.ErrorIs(t, err, vacation.ErrNotRequester)
}

func TestCancel_TerminalGrantRefused(t *testing.T) {
	// GIVEN: A fully approved request
	// WHEN: The requester tries to cancel it
	// THEN: ErrAlreadyFinalized

	svc, store := newTestService(t)
	seedOrg(t, store)
	seedPolicy(t, store, annualLeave(1))

	result, err := svc.Submit(context.Background(), submitInput("bob"))
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(),
		result.Grant.Approvers[0].ApprovalID, "bob")
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), result.Grant.ID, "alice")
	assert.ErrorIs(t, err, vacation.ErrAlreadyFinalized)
}

// =============================================================================
// MANUAL GRANT TESTS
// =============================================================================

func TestManualGrant_ImmediatelyApproved(t *testing.T) {
	// GIVEN: A MANUAL_GRANT policy with a fixed amount
	// WHEN: An admin issues a grant
	// THEN: APPROVED immediately with no approval chain

	svc, store := newTestService(t)
	seedOrg(t, store)

	p := annualLeave(0)
	p.ID = "comp-days"
	p.GrantMethod = policy.GrantManual
	p.GrantTime = granttime.FromFloat(2)
	seedPolicy(t, store, p)

	grantDate := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	grant, err := svc.ManualGrant(context.Background(), vacation.ManualGrantInput{
		UserID:    "alice",
		PolicyID:  "comp-days",
		GrantDate: &grantDate,
		GrantDesc: "release crunch compensation",
	})
	require.NoError(t, err)
	assert.Equal(t, approval.GrantApproved, grant.Status)
	assert.Empty(t, grant.Approvers)
	assert.True(t, grant.GrantTime.Equal(granttime.FromFloat(2)))
}

func TestManualGrant_RequestablePolicyRefused(t *testing.T) {
	svc, store := newTestService(t)
	seedOrg(t, store)
	seedPolicy(t, store, annualLeave(1))

	_, err := svc.ManualGrant(context.Background(), vacation.ManualGrantInput{
		UserID:   "alice",
		PolicyID: "annual",
	})
	assert.ErrorIs(t, err, vacation.ErrNotManuallyGrantable)
}

func TestRevoke_RemovesGrant(t *testing.T) {
	svc, store := newTestService(t)
	seedOrg(t, store)
	seedPolicy(t, store, annualLeave(1))

	result, err := svc.Submit(context.Background(), submitInput("bob"))
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(context.Background(), result.Grant.ID))

	grant, err := store.GetGrant(context.Background(), result.Grant.ID)
	require.NoError(t, err)
	assert.Nil(t, grant)

	assert.ErrorIs(t, svc.Revoke(context.Background(), result.Grant.ID),
		vacation.ErrGrantNotFound)
}

// =============================================================================
// STATS TESTS
// =============================================================================

func TestUserStats(t *testing.T) {
	// GIVEN: One approved one-day request and one rejected request
	// WHEN: Computing alice's stats
	// THEN: Counts, 50% approval rate, and one acquired day

	svc, store := newTestService(t)
	seedOrg(t, store)
	seedPolicy(t, store, annualLeave(1))

	first, err := svc.Submit(context.Background(), submitInput("bob"))
	require.NoError(t, err)
	_, err = svc.Approve(context.Background(),
		first.Grant.Approvers[0].ApprovalID, "bob")
	require.NoError(t, err)

	second, err := svc.Submit(context.Background(), submitInput("carol"))
	require.NoError(t, err)
	_, err = svc.Reject(context.Background(),
		second.Grant.Approvers[0].ApprovalID, "carol", "coverage gap")
	require.NoError(t, err)

	stats, err := svc.UserStats(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalRequestCount)
	assert.Equal(t, 2, stats.CurrentMonthRequestCount)
	assert.Equal(t, 1, stats.ApprovedCount)
	assert.Equal(t, 1, stats.RejectedCount)
	assert.InDelta(t, 0.5, stats.ApprovalRate, 1e-9)
	assert.True(t, stats.AcquiredVacationTime.Equal(granttime.FromFloat(1)))
}
