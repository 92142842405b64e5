/*
Package vacation orchestrates the vacation request and grant lifecycle.

PURPOSE:
  Ties together the policy rules, the grant-time codec, and the approval
  workflow against a persistence backend:

    Submit ──▶ approver chain built, grant persisted (PROGRESS/PENDING)
    Approve ──▶ chain advances; last approver finalizes the grant
    Reject ──▶ grant terminates immediately with a reason
    Cancel ──▶ requester withdraws a non-terminal request
    ManualGrant ──▶ admin-issued grant, no approval chain

WIRE FORMATS:
  Dates travel as "2006-01-02" and combined timestamps as
  "2006-01-02T15:04:05" (local time, no offset marker). These exact
  literal formats are load-bearing for backend compatibility.

SEE ALSO:
  - service.go: The Service implementation
  - approval package: Chain transitions
  - store/sqlite: The Store implementation
*/
package vacation

import (
	"context"
	"time"

	"github.com/warden/hr-engine/approval"
	"github.com/warden/hr-engine/granttime"
	"github.com/warden/hr-engine/policy"
)

// Wire time formats. Timestamps are local with no timezone marker.
const (
	DateFormat      = "2006-01-02"
	TimestampFormat = "2006-01-02T15:04:05"
)

// =============================================================================
// GRANT - one leave application or admin-issued grant
// =============================================================================

// Grant is one vacation grant: either a submitted request working through
// its approval chain, or a manual grant issued by an administrator.
type Grant struct {
	ID               string
	UserID           string
	PolicyID         string
	GrantTime        granttime.Value
	GrantDate        *time.Time
	ExpiryDate       *time.Time
	RequestStartTime *time.Time
	RequestEndTime   *time.Time
	Desc             string
	RequestDesc      string
	Status           approval.GrantStatus
	IdempotencyKey   string
	CreateDate       time.Time
	Approvers        approval.Chain
}

// CurrentApprover returns the current approver slot, nil when the grant
// is terminal or has no chain.
func (g *Grant) CurrentApprover() *approval.Approver {
	if g.Status != approval.GrantProgress {
		return nil
	}
	return g.Approvers.Current()
}

// =============================================================================
// SERVICE INPUTS / OUTPUTS
// =============================================================================

// SubmitInput is a vacation request submission.
type SubmitInput struct {
	UserID           string
	PolicyID         string
	Desc             string
	ApproverIDs      []string // list position = approval order (1-based)
	RequestStartTime time.Time
	RequestEndTime   *time.Time // required for overtime policies
	RequestDesc      string
	GrantTime        granttime.Value // flexible policies only
	IdempotencyKey   string          // generated when empty
}

// SubmitResult is the outcome of a submission.
type SubmitResult struct {
	Grant *Grant

	// ReducedApproverCount is set when the requester's approver pool was
	// smaller than the policy's declared requirement. A warning, not an
	// error.
	ReducedApproverCount bool
}

// ManualGrantInput is an admin-issued grant.
type ManualGrantInput struct {
	UserID     string
	PolicyID   string
	GrantTime  granttime.Value // ignored for fixed policies
	GrantDate  *time.Time
	ExpiryDate *time.Time
	GrantDesc  string
}

// ApprovalContext describes the requester's approver situation, supplied
// by the store at submission time.
type ApprovalContext struct {
	MaxAvailable int
	AutoApproval bool
}

// Stats summarizes a user's request history.
type Stats struct {
	TotalRequestCount        int
	CurrentMonthRequestCount int
	PendingCount             int
	ProgressCount            int
	ApprovedCount            int
	RejectedCount            int
	CanceledCount            int
	ApprovalRate             float64 // approved / (approved + rejected), 0 when undefined
	AcquiredVacationTime     granttime.Value
}

// =============================================================================
// STORE - persistence contract the service depends on
// =============================================================================

// Store is the persistence interface the vacation service requires.
// Implemented by store/sqlite.
type Store interface {
	GetPolicy(ctx context.Context, id string) (*policy.Policy, error)
	UserExists(ctx context.Context, id string) (bool, error)
	GetApprovalContext(ctx context.Context, userID string) (*ApprovalContext, error)

	SaveGrant(ctx context.Context, g *Grant) error
	GetGrant(ctx context.Context, id string) (*Grant, error)
	GetGrantByApprovalID(ctx context.Context, approvalID string) (*Grant, error)
	GetGrantByIdempotencyKey(ctx context.Context, key string) (*Grant, error)
	UpdateGrantStatus(ctx context.Context, grantID string, status approval.GrantStatus) error
	UpdateApprover(ctx context.Context, grantID string, a approval.Approver) error
	DeleteGrant(ctx context.Context, grantID string) error

	ListGrantsByUser(ctx context.Context, userID string) ([]Grant, error)
	ListGrantsByApprover(ctx context.Context, approverID string, status approval.GrantStatus) ([]Grant, error)
}
