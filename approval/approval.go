/*
Package approval implements the multi-step vacation approval workflow.

PURPOSE:
  A submitted vacation request carries an ordered chain of approver slots.
  Approvers act strictly in order: at most one slot is PENDING at a time
  (the "current approver"), and only that user may approve or reject.

STATE MACHINE:
  Request (grant) statuses:

    PENDING ──▶ PROGRESS ──▶ APPROVED
       │            │
       │            └──────▶ REJECTED   (terminal, not resumable)
       │
       └───▶ CANCELED  (requester action, from PENDING or PROGRESS)

  Approving the last slot in the chain approves the whole request;
  approving an earlier slot advances the current approver and leaves the
  request in PROGRESS. A rejection terminates the request immediately;
  later slots are left untouched in PENDING.

KEY COMPONENTS:
  Approver / Chain:   The ordered approver slots
  RequiredCount:      How many approvers a submission must name
  ValidateApprovers:  Submission-time approver list validation
  Chain.Approve/Reject: The sequential transitions

SEE ALSO:
  - vacation package: Persists chains and grant statuses
*/
package approval

import (
	"errors"
	"sort"
	"time"
)

// =============================================================================
// STATUSES
// =============================================================================

// Status is the state of a single approver slot.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// GrantStatus is the state of the whole request.
type GrantStatus string

const (
	GrantPending  GrantStatus = "PENDING"
	GrantProgress GrantStatus = "PROGRESS"
	GrantApproved GrantStatus = "APPROVED"
	GrantRejected GrantStatus = "REJECTED"
	GrantCanceled GrantStatus = "CANCELED"
)

// IsTerminal reports whether a grant status permits no further transitions.
func (s GrantStatus) IsTerminal() bool {
	return s == GrantApproved || s == GrantRejected || s == GrantCanceled
}

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

var (
	// ErrNoCurrentApprover is returned when acting on a chain with no
	// PENDING slot left (already fully approved or rejected).
	ErrNoCurrentApprover = errors.New("no current approver")

	// ErrNotCurrentApprover is returned when the acting user is not the
	// lowest-order pending approver.
	ErrNotCurrentApprover = errors.New("user is not the current approver")

	// ErrMissingActor is returned when the acting user id or approval id
	// is unresolved. Callers treat this as a precondition failure and
	// make no state change.
	ErrMissingActor = errors.New("approval id or actor id not resolved")

	// ErrBlankRejectionReason is returned when a rejection carries an
	// empty or whitespace-only reason.
	ErrBlankRejectionReason = errors.New("rejection reason must not be blank")
)

// =============================================================================
// APPROVER CHAIN
// =============================================================================

// Approver is one slot in the ordered approval chain.
type Approver struct {
	ApprovalID      string
	ApproverID      string
	ApproverName    string
	Order           int // 1-based position in the chain
	Status          Status
	ApprovalDate    *time.Time
	RejectionReason string
}

// Chain is an ordered approval sequence. Slots are evaluated strictly by
// Order; exactly one slot is PENDING while the request is in PROGRESS.
type Chain []Approver

// NewChain builds a chain from approver ids, assigning 1-based orders in
// list position. All slots start PENDING.
func NewChain(approverIDs []string, approvalIDs []string) Chain {
	chain := make(Chain, len(approverIDs))
	for i, id := range approverIDs {
		approvalID := ""
		if i < len(approvalIDs) {
			approvalID = approvalIDs[i]
		}
		chain[i] = Approver{
			ApprovalID: approvalID,
			ApproverID: id,
			Order:      i + 1,
			Status:     StatusPending,
		}
	}
	return chain
}

// sortByOrder normalizes slot ordering in place.
func (c Chain) sortByOrder() {
	sort.SliceStable(c, func(i, j int) bool { return c[i].Order < c[j].Order })
}

// Current returns the current approver: the lowest-order slot still
// PENDING. Returns nil when the chain is exhausted or terminated.
func (c Chain) Current() *Approver {
	c.sortByOrder()
	for i := range c {
		if c[i].Status == StatusRejected {
			return nil
		}
		if c[i].Status == StatusPending {
			return &c[i]
		}
	}
	return nil
}

// RejectionInfo returns the (at most one) rejected slot, for rendering
// the rejection reason. Nil when nothing was rejected.
func (c Chain) RejectionInfo() *Approver {
	for i := range c {
		if c[i].Status == StatusRejected {
			return &c[i]
		}
	}
	return nil
}

// InitialStatus is the request status at submission time: PROGRESS when
// at least one approver exists, PENDING otherwise.
func (c Chain) InitialStatus() GrantStatus {
	if len(c) > 0 {
		return GrantProgress
	}
	return GrantPending
}

// =============================================================================
// TRANSITIONS
// =============================================================================

// Approve marks the current approver's slot APPROVED and returns the
// resulting request status: APPROVED when the last slot acted, PROGRESS
// otherwise. The actor must be the current approver.
func (c Chain) Approve(actorID string, at time.Time) (GrantStatus, error) {
	if actorID == "" {
		return "", ErrMissingActor
	}
	current := c.Current()
	if current == nil {
		return "", ErrNoCurrentApprover
	}
	if current.ApproverID != actorID {
		return "", ErrNotCurrentApprover
	}

	current.Status = StatusApproved
	current.ApprovalDate = &at

	if c.Current() == nil {
		return GrantApproved, nil
	}
	return GrantProgress, nil
}

// Reject marks the current approver's slot REJECTED with the given reason
// and terminates the request: the chain does not advance, and later slots
// stay PENDING. A blank reason is a precondition failure and changes
// nothing.
func (c Chain) Reject(actorID, reason string, at time.Time) (GrantStatus, error) {
	if actorID == "" {
		return "", ErrMissingActor
	}
	if isBlank(reason) {
		return "", ErrBlankRejectionReason
	}
	current := c.Current()
	if current == nil {
		return "", ErrNoCurrentApprover
	}
	if current.ApproverID != actorID {
		return "", ErrNotCurrentApprover
	}

	current.Status = StatusRejected
	current.ApprovalDate = &at
	current.RejectionReason = reason

	return GrantRejected, nil
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}
