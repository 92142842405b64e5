/*
service.go - Vacation request and grant lifecycle

REQUEST FLOW:
  1. Submit: resolve required approvers, derive grant time from the
     policy (fixed) or the request (flexible), build the chain, persist.
  2. Approve: the current approver signs off; the last signature
     finalizes the grant as APPROVED.
  3. Reject: terminal immediately, with a mandatory reason. Later
     approvers are never consulted.
  4. Cancel: the requester withdraws a non-terminal request.

IDEMPOTENCY:
  Every submission carries an idempotency key (client-supplied or
  generated). Re-submitting with a known key returns the existing grant
  instead of creating a duplicate. The original UI relied on disabling
  the submit button; the key closes that gap properly.

APPROVER RESOLUTION:
  The requester's pool may be smaller than the policy's declared
  requirement. The requirement shrinks to the pool size; the reduction is
  reported back as a warning, never an error.
*/
package vacation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/warden/hr-engine/approval"
	"github.com/warden/hr-engine/granttime"
	"github.com/warden/hr-engine/policy"
)

// Service orchestrates the vacation grant lifecycle against a Store.
type Service struct {
	Store Store
	Log   *logrus.Logger
}

// NewService creates a vacation service. A nil logger falls back to the
// logrus standard logger.
func NewService(store Store, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{Store: store, Log: log}
}

// =============================================================================
// SUBMISSION
// =============================================================================

// Submit creates a vacation request against an ON_REQUEST policy.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*SubmitResult, error) {
	if in.UserID == "" || in.PolicyID == "" {
		return nil, ErrUserNotFound
	}

	// Idempotent replay: a known key returns the original grant.
	if in.IdempotencyKey != "" {
		existing, err := s.Store.GetGrantByIdempotencyKey(ctx, in.IdempotencyKey)
		if err != nil {
			return nil, fmt.Errorf("idempotency lookup failed: %w", err)
		}
		if existing != nil {
			return &SubmitResult{Grant: existing}, nil
		}
	}

	exists, err := s.Store.UserExists(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("user lookup failed: %w", err)
	}
	if !exists {
		return nil, ErrUserNotFound
	}

	pol, err := s.Store.GetPolicy(ctx, in.PolicyID)
	if err != nil {
		return nil, fmt.Errorf("policy lookup failed: %w", err)
	}
	if pol == nil {
		return nil, ErrPolicyNotFound
	}
	if pol.GrantMethod != policy.GrantOnRequest {
		return nil, ErrNotRequestable
	}

	grantTime, err := resolveGrantTime(pol, in.GrantTime)
	if err != nil {
		return nil, err
	}

	if pol.IsOvertime() && in.RequestEndTime == nil {
		return nil, ErrTimeRangeRequired
	}

	approvalCtx, err := s.Store.GetApprovalContext(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("approver lookup failed: %w", err)
	}

	// The same filtered list feeds validation and chain construction; a
	// blank entry must not count in one and become a slot in the other.
	chosen := approval.NonBlank(in.ApproverIDs)
	res := approval.ValidateApprovers(chosen, pol.ApprovalRequiredCount,
		approvalCtx.MaxAvailable, approvalCtx.AutoApproval)
	if !res.Valid {
		return nil, &ApproverCountError{Required: res.Required, Chosen: len(chosen)}
	}

	var chain approval.Chain
	if !approvalCtx.AutoApproval && res.Required > 0 {
		approvalIDs := make([]string, len(chosen))
		for i := range chosen {
			approvalIDs[i] = uuid.NewString()
		}
		chain = approval.NewChain(chosen, approvalIDs)
	}

	key := in.IdempotencyKey
	if key == "" {
		key = uuid.NewString()
	}

	start := in.RequestStartTime
	grant := &Grant{
		ID:               uuid.NewString(),
		UserID:           in.UserID,
		PolicyID:         in.PolicyID,
		GrantTime:        grantTime,
		RequestStartTime: &start,
		RequestEndTime:   in.RequestEndTime,
		Desc:             in.Desc,
		RequestDesc:      in.RequestDesc,
		Status:           chain.InitialStatus(),
		IdempotencyKey:   key,
		CreateDate:       time.Now(),
		Approvers:        chain,
	}

	if err := s.Store.SaveGrant(ctx, grant); err != nil {
		s.Log.WithError(err).WithField("user_id", in.UserID).Error("grant submission failed")
		return nil, fmt.Errorf("failed to save grant: %w", err)
	}

	return &SubmitResult{Grant: grant, ReducedApproverCount: res.Reduced}, nil
}

// resolveGrantTime picks the stored grant time: the policy's own value
// for fixed policies (any request-supplied value is ignored), the
// request's value for flexible policies. A flexible amount must respect
// the policy's minute-granularity gate.
func resolveGrantTime(pol *policy.Policy, requested granttime.Value) (granttime.Value, error) {
	if !pol.FlexibleGrant {
		return pol.GrantTime, nil
	}
	if !requested.IsSet() {
		return granttime.None(), ErrGrantTimeRequired
	}
	if err := granttime.ValidateGranularity(requested, pol.MinuteGrant); err != nil {
		return granttime.None(), err
	}
	return requested, nil
}

// =============================================================================
// APPROVAL TRANSITIONS
// =============================================================================

// Approve records the current approver's sign-off. approvalID addresses
// the acting slot; approverID must match the current approver.
func (s *Service) Approve(ctx context.Context, approvalID, approverID string) (*Grant, error) {
	grant, err := s.loadActionable(ctx, approvalID, approverID)
	if err != nil {
		return nil, err
	}

	next, err := grant.Approvers.Approve(approverID, time.Now())
	if err != nil {
		return nil, err
	}

	return s.persistTransition(ctx, grant, approverID, next)
}

// Reject records a rejection with a mandatory reason and terminates the
// grant. A blank reason changes nothing.
func (s *Service) Reject(ctx context.Context, approvalID, approverID, reason string) (*Grant, error) {
	grant, err := s.loadActionable(ctx, approvalID, approverID)
	if err != nil {
		return nil, err
	}

	next, err := grant.Approvers.Reject(approverID, reason, time.Now())
	if err != nil {
		return nil, err
	}

	return s.persistTransition(ctx, grant, approverID, next)
}

func (s *Service) loadActionable(ctx context.Context, approvalID, approverID string) (*Grant, error) {
	if approvalID == "" || approverID == "" {
		return nil, approval.ErrMissingActor
	}

	grant, err := s.Store.GetGrantByApprovalID(ctx, approvalID)
	if err != nil {
		return nil, fmt.Errorf("grant lookup failed: %w", err)
	}
	if grant == nil {
		return nil, ErrGrantNotFound
	}
	if grant.Status != approval.GrantProgress {
		return nil, ErrNotInProgress
	}

	// The quoted approval id must address the slot whose turn it is; a
	// later approver cannot act early by quoting someone else's slot.
	if current := grant.Approvers.Current(); current != nil && current.ApprovalID != approvalID {
		return nil, approval.ErrNotCurrentApprover
	}
	return grant, nil
}

func (s *Service) persistTransition(ctx context.Context, grant *Grant, approverID string, next approval.GrantStatus) (*Grant, error) {
	for _, a := range grant.Approvers {
		if a.ApproverID == approverID {
			if err := s.Store.UpdateApprover(ctx, grant.ID, a); err != nil {
				s.Log.WithError(err).WithField("grant_id", grant.ID).Error("approver update failed")
				return nil, fmt.Errorf("failed to update approver: %w", err)
			}
		}
	}

	if next != grant.Status {
		if err := s.Store.UpdateGrantStatus(ctx, grant.ID, next); err != nil {
			s.Log.WithError(err).WithField("grant_id", grant.ID).Error("status update failed")
			return nil, fmt.Errorf("failed to update grant status: %w", err)
		}
		grant.Status = next
	}

	return grant, nil
}

// Cancel withdraws a non-terminal request. Only the requester may cancel.
func (s *Service) Cancel(ctx context.Context, grantID, userID string) (*Grant, error) {
	grant, err := s.Store.GetGrant(ctx, grantID)
	if err != nil {
		return nil, fmt.Errorf("grant lookup failed: %w", err)
	}
	if grant == nil {
		return nil, ErrGrantNotFound
	}
	if grant.UserID != userID {
		return nil, ErrNotRequester
	}
	if grant.Status.IsTerminal() {
		return nil, ErrAlreadyFinalized
	}

	if err := s.Store.UpdateGrantStatus(ctx, grantID, approval.GrantCanceled); err != nil {
		return nil, fmt.Errorf("failed to cancel grant: %w", err)
	}
	grant.Status = approval.GrantCanceled
	return grant, nil
}

// =============================================================================
// MANUAL GRANTS
// =============================================================================

// ManualGrant issues an admin grant with no approval chain. Fixed
// policies copy their own grant time verbatim; flexible policies take the
// supplied amount.
func (s *Service) ManualGrant(ctx context.Context, in ManualGrantInput) (*Grant, error) {
	exists, err := s.Store.UserExists(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("user lookup failed: %w", err)
	}
	if !exists {
		return nil, ErrUserNotFound
	}

	pol, err := s.Store.GetPolicy(ctx, in.PolicyID)
	if err != nil {
		return nil, fmt.Errorf("policy lookup failed: %w", err)
	}
	if pol == nil {
		return nil, ErrPolicyNotFound
	}
	if pol.GrantMethod != policy.GrantManual {
		return nil, ErrNotManuallyGrantable
	}

	grantTime, err := resolveGrantTime(pol, in.GrantTime)
	if err != nil {
		return nil, err
	}

	grant := &Grant{
		ID:         uuid.NewString(),
		UserID:     in.UserID,
		PolicyID:   in.PolicyID,
		GrantTime:  grantTime,
		GrantDate:  in.GrantDate,
		ExpiryDate: in.ExpiryDate,
		Desc:       in.GrantDesc,
		Status:     approval.GrantApproved,
		CreateDate: time.Now(),
	}

	if err := s.Store.SaveGrant(ctx, grant); err != nil {
		s.Log.WithError(err).WithField("user_id", in.UserID).Error("manual grant failed")
		return nil, fmt.Errorf("failed to save grant: %w", err)
	}
	return grant, nil
}

// Revoke removes a grant entirely.
func (s *Service) Revoke(ctx context.Context, grantID string) error {
	grant, err := s.Store.GetGrant(ctx, grantID)
	if err != nil {
		return fmt.Errorf("grant lookup failed: %w", err)
	}
	if grant == nil {
		return ErrGrantNotFound
	}
	return s.Store.DeleteGrant(ctx, grantID)
}

// =============================================================================
// QUERIES
// =============================================================================

// ListByUser returns a user's grants, newest first.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]Grant, error) {
	return s.Store.ListGrantsByUser(ctx, userID)
}

// ListByApprover returns grants awaiting (or historically involving) the
// given approver, optionally filtered by status.
func (s *Service) ListByApprover(ctx context.Context, approverID string, status approval.GrantStatus) ([]Grant, error) {
	return s.Store.ListGrantsByApprover(ctx, approverID, status)
}

// UserStats aggregates a user's request history.
func (s *Service) UserStats(ctx context.Context, userID string) (*Stats, error) {
	grants, err := s.Store.ListGrantsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := &Stats{}
	now := time.Now()
	acquired := granttime.None()

	for _, g := range grants {
		stats.TotalRequestCount++
		if g.CreateDate.Year() == now.Year() && g.CreateDate.Month() == now.Month() {
			stats.CurrentMonthRequestCount++
		}
		switch g.Status {
		case approval.GrantPending:
			stats.PendingCount++
		case approval.GrantProgress:
			stats.ProgressCount++
		case approval.GrantApproved:
			stats.ApprovedCount++
			acquired = granttime.FromDecimal(acquired.Decimal().Add(g.GrantTime.Decimal()))
		case approval.GrantRejected:
			stats.RejectedCount++
		case approval.GrantCanceled:
			stats.CanceledCount++
		}
	}

	if decided := stats.ApprovedCount + stats.RejectedCount; decided > 0 {
		stats.ApprovalRate = float64(stats.ApprovedCount) / float64(decided)
	}
	stats.AcquiredVacationTime = acquired

	return stats, nil
}
