/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication, decoupling the
  internal domain model from the external contract. Field names follow
  the wire conventions the frontend depends on: snake_case, Y/N flags,
  "2006-01-02" dates, and "2006-01-02T15:04:05" local timestamps.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

SEE ALSO:
  - handlers.go: Uses these types
  - vacation/types.go: Wire time format constants
*/
package api

import (
	"time"

	"github.com/warden/hr-engine/granttime"
	"github.com/warden/hr-engine/policy"
	"github.com/warden/hr-engine/store/sqlite"
	"github.com/warden/hr-engine/vacation"
)

// =============================================================================
// POLICIES
// =============================================================================

// PolicyDTO represents a vacation policy in API responses.
type PolicyDTO struct {
	VacationPolicyID      string   `json:"vacation_policy_id"`
	VacationPolicyName    string   `json:"vacation_policy_name"`
	VacationPolicyDesc    string   `json:"vacation_policy_desc,omitempty"`
	VacationType          string   `json:"vacation_type"`
	GrantMethod           string   `json:"grant_method"`
	GrantTime             float64  `json:"grant_time"`
	GrantTimeStr          string   `json:"grant_time_str"`
	IsFlexibleGrant       string   `json:"is_flexible_grant"`
	MinuteGrantYN         string   `json:"minute_grant_yn"`
	ApprovalRequiredCount int      `json:"approval_required_count"`
	EffectiveType         string   `json:"effective_type,omitempty"`
	ExpirationType        string   `json:"expiration_type,omitempty"`
	RepeatUnit            *string  `json:"repeat_unit,omitempty"`
	RepeatInterval        *int     `json:"repeat_interval,omitempty"`
	SpecificMonths        *int     `json:"specific_months,omitempty"`
	SpecificDays          *int     `json:"specific_days,omitempty"`
	FirstGrantDate        *string  `json:"first_grant_date,omitempty"`
	IsRecurring           *string  `json:"is_recurring,omitempty"`
	MaxGrantCount         *int     `json:"max_grant_count,omitempty"`
}

// CreatePolicyRequest is the request to create a policy.
type CreatePolicyRequest struct {
	VacationPolicyName    string  `json:"vacation_policy_name"`
	VacationPolicyDesc    string  `json:"vacation_policy_desc"`
	VacationType          string  `json:"vacation_type"`
	GrantMethod           string  `json:"grant_method"`
	GrantTime             float64 `json:"grant_time"`
	IsFlexibleGrant       string  `json:"is_flexible_grant"`
	MinuteGrantYN         string  `json:"minute_grant_yn"`
	ApprovalRequiredCount int     `json:"approval_required_count"`
	EffectiveType         string  `json:"effective_type"`
	ExpirationType        string  `json:"expiration_type"`
	RepeatUnit            *string `json:"repeat_unit,omitempty"`
	RepeatInterval        *int    `json:"repeat_interval,omitempty"`
	SpecificMonths        *int    `json:"specific_months,omitempty"`
	SpecificDays          *int    `json:"specific_days,omitempty"`
	FirstGrantDate        *string `json:"first_grant_date,omitempty"`
	IsRecurring           string  `json:"is_recurring,omitempty"`
	MaxGrantCount         *int    `json:"max_grant_count,omitempty"`
}

// =============================================================================
// USERS & DEPARTMENTS
// =============================================================================

// UserDTO represents a user in API responses.
type UserDTO struct {
	UserID         string `json:"user_id"`
	UserName       string `json:"user_name"`
	Email          string `json:"email,omitempty"`
	DepartmentID   string `json:"department_id,omitempty"`
	ApproverYN     string `json:"approver_yn"`
	AutoApprovalYN string `json:"auto_approval_yn"`
	HireDate       string `json:"hire_date,omitempty"`
}

// CreateUserRequest is the request to create a user.
type CreateUserRequest struct {
	UserID         string `json:"user_id"`
	UserName       string `json:"user_name"`
	Email          string `json:"email"`
	DepartmentID   string `json:"department_id"`
	ApproverYN     string `json:"approver_yn"`
	AutoApprovalYN string `json:"auto_approval_yn"`
	HireDate       string `json:"hire_date"`
}

// DepartmentDTO represents a department.
type DepartmentDTO struct {
	DepartmentID   string `json:"department_id"`
	DepartmentName string `json:"department_name"`
	ParentID       string `json:"parent_id,omitempty"`
}

// ApproverPoolDTO describes the requester's eligible approvers.
type ApproverPoolDTO struct {
	Approvers         []UserDTO `json:"approvers"`
	MaxAvailableCount int       `json:"max_available_count"`
	IsAutoApproval    bool      `json:"is_auto_approval"`
}

// AssignPoliciesRequest assigns policies to a user.
type AssignPoliciesRequest struct {
	VacationPolicyIDs []string `json:"vacation_policy_ids"`
}

// =============================================================================
// VACATION REQUESTS & GRANTS
// =============================================================================

// SubmitVacationRequest is a vacation request submission.
type SubmitVacationRequest struct {
	UserID           string   `json:"user_id"`
	PolicyID         string   `json:"policy_id"`
	Desc             string   `json:"desc"`
	ApproverIDs      []string `json:"approver_ids"`
	RequestStartTime string   `json:"request_start_time"`
	RequestEndTime   *string  `json:"request_end_time"`
	RequestDesc      string   `json:"request_desc"`
	GrantTime        *float64 `json:"grant_time,omitempty"`
	IdempotencyKey   string   `json:"idempotency_key,omitempty"`
}

// SubmitVacationResponse is returned after a submission.
type SubmitVacationResponse struct {
	VacationGrantID      string `json:"vacation_grant_id"`
	GrantStatus          string `json:"grant_status"`
	ReducedApproverCount bool   `json:"reduced_approver_count,omitempty"`
}

// ApproveRequest identifies the acting approver.
type ApproveRequest struct {
	ApprovalID string `json:"approval_id"`
	ApproverID string `json:"approver_id"`
}

// RejectRequest identifies the acting approver and carries the reason.
type RejectRequest struct {
	ApprovalID      string `json:"approval_id"`
	ApproverID      string `json:"approver_id"`
	RejectionReason string `json:"rejection_reason"`
}

// CancelRequest identifies the requester withdrawing a request.
type CancelRequest struct {
	UserID string `json:"user_id"`
}

// ManualGrantRequest is an admin-issued grant.
type ManualGrantRequest struct {
	UserID           string   `json:"user_id"`
	VacationPolicyID string   `json:"vacation_policy_id"`
	GrantTime        *float64 `json:"grant_time,omitempty"`
	GrantDate        *string  `json:"grant_date"`
	ExpiryDate       *string  `json:"expiry_date"`
	GrantDesc        string   `json:"grant_desc"`
}

// ApproverDTO is one slot in a grant's approval chain.
type ApproverDTO struct {
	ApprovalID      string  `json:"approval_id"`
	ApproverID      string  `json:"approver_id"`
	ApproverName    string  `json:"approver_name"`
	ApprovalOrder   int     `json:"approval_order"`
	ApprovalStatus  string  `json:"approval_status"`
	ApprovalDate    *string `json:"approval_date"`
	RejectionReason string  `json:"rejection_reason,omitempty"`
}

// GrantDTO represents a vacation grant with its approval chain.
type GrantDTO struct {
	VacationGrantID     string        `json:"vacation_grant_id"`
	UserID              string        `json:"user_id"`
	PolicyID            string        `json:"policy_id"`
	GrantTime           float64       `json:"grant_time"`
	GrantTimeStr        string        `json:"grant_time_str"`
	GrantDate           *string       `json:"grant_date"`
	ExpiryDate          *string       `json:"expiry_date"`
	RequestStartTime    *string       `json:"request_start_time"`
	RequestEndTime      *string       `json:"request_end_time"`
	Desc                string        `json:"desc,omitempty"`
	RequestDesc         string        `json:"request_desc,omitempty"`
	GrantStatus         string        `json:"grant_status"`
	CreateDate          string        `json:"create_date"`
	CurrentApproverID   *string       `json:"current_approver_id"`
	CurrentApproverName *string       `json:"current_approver_name"`
	RejectionReason     *string       `json:"rejection_reason,omitempty"`
	Approvers           []ApproverDTO `json:"approvers"`
}

// StatsDTO summarizes a user's request history.
type StatsDTO struct {
	TotalRequestCount        int     `json:"total_request_count"`
	CurrentMonthRequestCount int     `json:"current_month_request_count"`
	PendingCount             int     `json:"pending_count"`
	ProgressCount            int     `json:"progress_count"`
	ApprovedCount            int     `json:"approved_count"`
	RejectedCount            int     `json:"rejected_count"`
	CanceledCount            int     `json:"canceled_count"`
	ApprovalRate             float64 `json:"approval_rate"`
	AcquiredVacationTime     float64 `json:"acquired_vacation_time"`
	AcquiredVacationTimeStr  string  `json:"acquired_vacation_time_str"`
}

// =============================================================================
// WORK LOGS
// =============================================================================

// WorkLogDTO is one work-history entry.
type WorkLogDTO struct {
	WorkLogID string `json:"work_log_id"`
	UserID    string `json:"user_id"`
	WorkCode  string `json:"work_code"`
	WorkDate  string `json:"work_date"`
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`
	Desc      string `json:"desc,omitempty"`
}

// CreateWorkLogRequest records a work-history entry.
type CreateWorkLogRequest struct {
	UserID    string `json:"user_id"`
	WorkCode  string `json:"work_code"`
	WorkDate  string `json:"work_date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Desc      string `json:"desc"`
}

// HolidayDTO is one company holiday.
type HolidayDTO struct {
	HolidayID   string `json:"holiday_id"`
	HolidayName string `json:"holiday_name"`
	HolidayDate string `json:"holiday_date"`
}

// CreateHolidayRequest registers a company holiday.
type CreateHolidayRequest struct {
	HolidayName string `json:"holiday_name"`
	HolidayDate string `json:"holiday_date"`
}

// OvertimeHoursDTO is the derived overtime duration.
type OvertimeHoursDTO struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Hours     int    `json:"hours"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toPolicyDTO(p policy.Policy) PolicyDTO {
	dto := PolicyDTO{
		VacationPolicyID:      p.ID,
		VacationPolicyName:    p.Name,
		VacationPolicyDesc:    p.Desc,
		VacationType:          string(p.VacationType),
		GrantMethod:           string(p.GrantMethod),
		GrantTime:             p.GrantTime.Float64(),
		GrantTimeStr:          granttime.Format(p.GrantTime),
		IsFlexibleGrant:       policy.YN(p.FlexibleGrant),
		MinuteGrantYN:         policy.YN(p.MinuteGrant),
		ApprovalRequiredCount: p.ApprovalRequiredCount,
		EffectiveType:         p.EffectiveType,
		ExpirationType:        p.ExpirationType,
	}
	if p.Repeat != nil {
		unit := string(p.Repeat.Unit)
		recurring := policy.YN(p.Repeat.Recurring)
		dto.RepeatUnit = &unit
		dto.RepeatInterval = &p.Repeat.Interval
		dto.SpecificMonths = &p.Repeat.SpecificMonths
		dto.SpecificDays = &p.Repeat.SpecificDays
		dto.IsRecurring = &recurring
		dto.MaxGrantCount = &p.Repeat.MaxGrantCount
		if p.Repeat.FirstGrantDate != nil {
			d := p.Repeat.FirstGrantDate.Format(vacation.DateFormat)
			dto.FirstGrantDate = &d
		}
	}
	return dto
}

func toUserDTO(u sqlite.User) UserDTO {
	dto := UserDTO{
		UserID:         u.ID,
		UserName:       u.Name,
		Email:          u.Email,
		DepartmentID:   u.DepartmentID,
		ApproverYN:     policy.YN(u.Approver),
		AutoApprovalYN: policy.YN(u.AutoApproval),
	}
	if u.HireDate != nil {
		dto.HireDate = u.HireDate.Format(vacation.DateFormat)
	}
	return dto
}

func toGrantDTO(g vacation.Grant) GrantDTO {
	dto := GrantDTO{
		VacationGrantID:  g.ID,
		UserID:           g.UserID,
		PolicyID:         g.PolicyID,
		GrantTime:        g.GrantTime.Float64(),
		GrantTimeStr:     granttime.Format(g.GrantTime),
		GrantDate:        formatDate(g.GrantDate),
		ExpiryDate:       formatDate(g.ExpiryDate),
		RequestStartTime: formatTimestamp(g.RequestStartTime),
		RequestEndTime:   formatTimestamp(g.RequestEndTime),
		Desc:             g.Desc,
		RequestDesc:      g.RequestDesc,
		GrantStatus:      string(g.Status),
		CreateDate:       g.CreateDate.Format(time.RFC3339),
		Approvers:        make([]ApproverDTO, 0, len(g.Approvers)),
	}

	if current := g.CurrentApprover(); current != nil {
		dto.CurrentApproverID = &current.ApproverID
		dto.CurrentApproverName = &current.ApproverName
	}
	if rejected := g.Approvers.RejectionInfo(); rejected != nil {
		dto.RejectionReason = &rejected.RejectionReason
	}

	for _, a := range g.Approvers {
		dto.Approvers = append(dto.Approvers, ApproverDTO{
			ApprovalID:      a.ApprovalID,
			ApproverID:      a.ApproverID,
			ApproverName:    a.ApproverName,
			ApprovalOrder:   a.Order,
			ApprovalStatus:  string(a.Status),
			ApprovalDate:    formatTimestamp(a.ApprovalDate),
			RejectionReason: a.RejectionReason,
		})
	}
	return dto
}

func toGrantDTOs(grants []vacation.Grant) []GrantDTO {
	dtos := make([]GrantDTO, len(grants))
	for i, g := range grants {
		dtos[i] = toGrantDTO(g)
	}
	return dtos
}

func toHolidayDTO(h sqlite.Holiday) HolidayDTO {
	return HolidayDTO{
		HolidayID:   h.ID,
		HolidayName: h.Name,
		HolidayDate: h.Date.Format(vacation.DateFormat),
	}
}

func toWorkLogDTO(w sqlite.WorkLog) WorkLogDTO {
	return WorkLogDTO{
		WorkLogID: w.ID,
		UserID:    w.UserID,
		WorkCode:  w.WorkCode,
		WorkDate:  w.WorkDate.Format(vacation.DateFormat),
		StartTime: w.StartTime,
		EndTime:   w.EndTime,
		Desc:      w.Desc,
	}
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(vacation.DateFormat)
	return &s
}

func formatTimestamp(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(vacation.TimestampFormat)
	return &s
}
