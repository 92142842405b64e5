package vacation

import (
	"errors"
	"fmt"

	"github.com/warden/hr-engine/granttime"
)

// =============================================================================
// SENTINEL ERRORS - use with errors.Is()
// =============================================================================

var (
	// ErrPolicyNotFound is returned when a referenced policy doesn't exist.
	ErrPolicyNotFound = errors.New("vacation policy not found")

	// ErrUserNotFound is returned when a referenced user doesn't exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrGrantNotFound is returned when a referenced grant doesn't exist.
	ErrGrantNotFound = errors.New("vacation grant not found")

	// ErrNotRequestable is returned when submitting against a policy whose
	// grant method is not ON_REQUEST.
	ErrNotRequestable = errors.New("policy is not requestable")

	// ErrNotManuallyGrantable is returned when issuing a manual grant
	// against a policy whose grant method is not MANUAL_GRANT.
	ErrNotManuallyGrantable = errors.New("policy is not manually grantable")

	// ErrGrantTimeRequired is returned when a flexible policy request or
	// grant carries no positive grant time.
	ErrGrantTimeRequired = errors.New("grant time is required for flexible policies")

	// ErrTimeRangeRequired is returned when an overtime-type request has
	// no end time.
	ErrTimeRangeRequired = errors.New("overtime requests require start and end times")

	// ErrNotInProgress is returned when approving or rejecting a grant
	// that is not awaiting approval.
	ErrNotInProgress = errors.New("grant is not awaiting approval")

	// ErrNotRequester is returned when a cancellation is attempted by
	// someone other than the requester.
	ErrNotRequester = errors.New("only the requester may cancel")

	// ErrAlreadyFinalized is returned when acting on a terminal grant.
	ErrAlreadyFinalized = errors.New("grant is already finalized")
)

// ApproverCountError reports an approver list that does not match the
// resolved requirement.
type ApproverCountError struct {
	Required int
	Chosen   int
}

func (e *ApproverCountError) Error() string {
	return fmt.Sprintf("approver count mismatch: need exactly %d, got %d", e.Required, e.Chosen)
}

// IsClientError reports whether the error stems from invalid client input
// rather than a server-side failure.
func IsClientError(err error) bool {
	var countErr *ApproverCountError
	return errors.Is(err, ErrNotRequestable) ||
		errors.Is(err, ErrNotManuallyGrantable) ||
		errors.Is(err, ErrGrantTimeRequired) ||
		errors.Is(err, ErrTimeRangeRequired) ||
		errors.Is(err, ErrNotInProgress) ||
		errors.Is(err, ErrNotRequester) ||
		errors.Is(err, ErrAlreadyFinalized) ||
		errors.Is(err, granttime.ErrMinuteNotAllowed) ||
		errors.As(err, &countErr)
}

// IsNotFound reports whether the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPolicyNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrGrantNotFound)
}
