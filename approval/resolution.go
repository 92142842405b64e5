/*
resolution.go - Required-approver resolution at submission time

PURPOSE:
  A policy declares how many approvers a request needs
  (approval_required_count). The requester's eligible-approver pool may be
  smaller than that. The actual requirement is the minimum of the two:
  a pool shortage reduces the requirement rather than blocking submission,
  but the reduction is surfaced as a warning.

VALIDATION RULE:
  A submission's approver list is valid iff one of:
    - the request is auto-approved (no human approval at all), or
    - the actual required count is zero, or
    - exactly actualRequiredCount distinct, non-empty approver ids were
      chosen, in order (list position = approval order).
*/
package approval

// RequiredCount resolves how many approver slots a submission must fill.
// Negative inputs are treated as zero.
func RequiredCount(policyRequired, maxAvailable int) int {
	if policyRequired < 0 {
		policyRequired = 0
	}
	if maxAvailable < 0 {
		maxAvailable = 0
	}
	if maxAvailable < policyRequired {
		return maxAvailable
	}
	return policyRequired
}

// NonBlank filters out blank (empty or whitespace-only) ids, preserving
// order. Submission validation and chain construction must both run on
// this filtered list, or a blank entry would count differently in the
// two places.
func NonBlank(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !isBlank(id) {
			out = append(out, id)
		}
	}
	return out
}

// Resolution is the outcome of validating a chosen approver list.
type Resolution struct {
	Valid    bool
	Required int  // actual required count after pool reduction
	Reduced  bool // pool was smaller than the policy's declared count
}

// ValidateApprovers checks a chosen approver list against the policy's
// requirement and the requester's pool size. Blank entries are ignored;
// duplicate ids invalidate the list.
func ValidateApprovers(chosen []string, policyRequired, maxAvailable int, autoApproval bool) Resolution {
	required := RequiredCount(policyRequired, maxAvailable)
	res := Resolution{
		Required: required,
		Reduced:  required < policyRequired,
	}

	if autoApproval || required == 0 {
		res.Valid = true
		return res
	}

	ids := NonBlank(chosen)
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return res // duplicate approver, invalid
		}
		seen[id] = true
	}

	res.Valid = len(ids) == required
	return res
}
