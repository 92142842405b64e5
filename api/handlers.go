/*
handlers.go - HTTP API handlers for the HR vacation engine

PURPOSE:
  Exposes policies, users, departments, vacation requests/grants, and
  work logs via REST. Handles HTTP request/response and JSON
  serialization, delegating the lifecycle rules to the vacation service.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input, precondition failures
  - 403: Acting user is not the current approver
  - 404: Resource not found
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/warden/hr-engine/approval"
	"github.com/warden/hr-engine/granttime"
	"github.com/warden/hr-engine/policy"
	"github.com/warden/hr-engine/store/sqlite"
	"github.com/warden/hr-engine/vacation"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     *sqlite.Store
	Vacations *vacation.Service
	Log       *logrus.Logger
}

// NewHandler creates a handler around the given store.
func NewHandler(store *sqlite.Store, log *logrus.Logger) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{
		Store:     store,
		Vacations: vacation.NewService(store, log),
		Log:       log,
	}
}

// =============================================================================
// POLICY HANDLERS
// =============================================================================

// ListPolicies returns all vacation policies.
func (h *Handler) ListPolicies(w http.ResponseWriter, r *http.Request) {
	policies, err := h.Store.ListPolicies(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list policies", err)
		return
	}

	dtos := make([]PolicyDTO, len(policies))
	for i, p := range policies {
		dtos[i] = toPolicyDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetPolicy returns a single policy.
func (h *Handler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, err := h.Store.GetPolicy(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get policy", err)
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "Policy not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toPolicyDTO(*p))
}

// CreatePolicy creates a vacation policy.
func (h *Handler) CreatePolicy(w http.ResponseWriter, r *http.Request) {
	h.savePolicy(w, r, uuid.NewString(), http.StatusCreated)
}

// UpdatePolicy replaces a policy's configuration.
func (h *Handler) UpdatePolicy(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	existing, err := h.Store.GetPolicy(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get policy", err)
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "Policy not found", nil)
		return
	}
	h.savePolicy(w, r, id, http.StatusOK)
}

func (h *Handler) savePolicy(w http.ResponseWriter, r *http.Request, id string, status int) {
	var req CreatePolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	p := policy.Policy{
		ID:                    id,
		Name:                  req.VacationPolicyName,
		Desc:                  req.VacationPolicyDesc,
		VacationType:          policy.VacationType(req.VacationType),
		GrantMethod:           policy.GrantMethod(req.GrantMethod),
		FlexibleGrant:         policy.IsYes(req.IsFlexibleGrant),
		MinuteGrant:           policy.IsYes(req.MinuteGrantYN),
		ApprovalRequiredCount: req.ApprovalRequiredCount,
		EffectiveType:         req.EffectiveType,
		ExpirationType:        req.ExpirationType,
	}
	if !p.FlexibleGrant {
		p.GrantTime = granttime.FromFloat(req.GrantTime)
	}

	if req.RepeatUnit != nil {
		rc := &policy.RepeatConfig{
			Unit:      policy.RepeatUnit(*req.RepeatUnit),
			Recurring: policy.IsYes(req.IsRecurring),
		}
		if req.RepeatInterval != nil {
			rc.Interval = *req.RepeatInterval
		}
		if req.SpecificMonths != nil {
			rc.SpecificMonths = *req.SpecificMonths
		}
		if req.SpecificDays != nil {
			rc.SpecificDays = *req.SpecificDays
		}
		if req.MaxGrantCount != nil {
			rc.MaxGrantCount = *req.MaxGrantCount
		}
		if req.FirstGrantDate != nil {
			if t, err := time.Parse(vacation.DateFormat, *req.FirstGrantDate); err == nil {
				rc.FirstGrantDate = &t
			}
		}
		p.Repeat = rc
	}

	if err := p.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid policy", err)
		return
	}

	if err := h.Store.SavePolicy(r.Context(), &p); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save policy", err)
		return
	}
	writeJSON(w, status, map[string]any{"vacation_policy_id": p.ID})
}

// DeletePolicy removes a policy.
func (h *Handler) DeletePolicy(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Store.DeletePolicy(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete policy", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"vacation_policy_id": id})
}

// =============================================================================
// USER & DEPARTMENT HANDLERS
// =============================================================================

// ListUsers returns all users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Store.ListUsers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list users", err)
		return
	}

	dtos := make([]UserDTO, len(users))
	for i, u := range users {
		dtos[i] = toUserDTO(u)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetUser returns a single user.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	u, err := h.Store.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get user", err)
		return
	}
	if u == nil {
		writeError(w, http.StatusNotFound, "User not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(*u))
}

// CreateUser creates a user.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.UserID == "" || req.UserName == "" {
		writeError(w, http.StatusBadRequest, "user_id and user_name are required", nil)
		return
	}

	u := sqlite.User{
		ID:           req.UserID,
		Name:         req.UserName,
		Email:        req.Email,
		DepartmentID: req.DepartmentID,
		Approver:     policy.IsYes(req.ApproverYN),
		AutoApproval: policy.IsYes(req.AutoApprovalYN),
	}
	if req.HireDate != "" {
		t, err := time.Parse(vacation.DateFormat, req.HireDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid hire_date format (use YYYY-MM-DD)", err)
			return
		}
		u.HireDate = &t
	}

	if err := h.Store.SaveUser(r.Context(), u); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save user", err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserDTO(u))
}

// DeleteUser removes a user.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Store.DeleteUser(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete user", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user_id": id})
}

// GetApproverPool returns the user's eligible approvers together with
// the pool size and auto-approval flag used by submission validation.
func (h *Handler) GetApproverPool(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	approvers, err := h.Store.ListEligibleApprovers(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list approvers", err)
		return
	}
	approvalCtx, err := h.Store.GetApprovalContext(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to resolve approval context", err)
		return
	}

	dtos := make([]UserDTO, len(approvers))
	for i, u := range approvers {
		dtos[i] = toUserDTO(u)
	}
	writeJSON(w, http.StatusOK, ApproverPoolDTO{
		Approvers:         dtos,
		MaxAvailableCount: approvalCtx.MaxAvailable,
		IsAutoApproval:    approvalCtx.AutoApproval,
	})
}

// ListDepartments returns all departments.
func (h *Handler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.Store.ListDepartments(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list departments", err)
		return
	}

	dtos := make([]DepartmentDTO, len(departments))
	for i, d := range departments {
		dtos[i] = DepartmentDTO{DepartmentID: d.ID, DepartmentName: d.Name, ParentID: d.ParentID}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateDepartment creates a department.
func (h *Handler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	var req DepartmentDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.DepartmentName == "" {
		writeError(w, http.StatusBadRequest, "department_name is required", nil)
		return
	}

	d := sqlite.Department{ID: req.DepartmentID, Name: req.DepartmentName, ParentID: req.ParentID}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}

	if err := h.Store.SaveDepartment(r.Context(), d); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save department", err)
		return
	}
	writeJSON(w, http.StatusCreated, DepartmentDTO{DepartmentID: d.ID, DepartmentName: d.Name, ParentID: d.ParentID})
}

// DeleteDepartment removes a department.
func (h *Handler) DeleteDepartment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Store.DeleteDepartment(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete department", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"department_id": id})
}

// =============================================================================
// POLICY ASSIGNMENT HANDLERS
// =============================================================================

// AssignPolicies links policies to a user.
func (h *Handler) AssignPolicies(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var req AssignPoliciesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	for _, policyID := range req.VacationPolicyIDs {
		if err := h.Store.AssignPolicy(r.Context(), uuid.NewString(), userID, policyID); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to assign policy", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user_id":                      userID,
		"assigned_vacation_policy_ids": req.VacationPolicyIDs,
	})
}

// RevokePolicy unlinks a policy from a user.
func (h *Handler) RevokePolicy(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	policyID := chi.URLParam(r, "policyID")

	if err := h.Store.RevokePolicy(r.Context(), userID, policyID); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to revoke policy", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user_id":            userID,
		"vacation_policy_id": policyID,
	})
}

// ListUserPolicies returns a user's assigned policies, optionally
// filtered by grant_method.
func (h *Handler) ListUserPolicies(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	method := policy.GrantMethod(r.URL.Query().Get("grant_method"))

	policies, err := h.Store.ListUserPolicies(r.Context(), userID, method)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list user policies", err)
		return
	}

	dtos := make([]PolicyDTO, len(policies))
	for i, p := range policies {
		dtos[i] = toPolicyDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// VACATION REQUEST HANDLERS
// =============================================================================

// SubmitVacation submits a vacation request.
func (h *Handler) SubmitVacation(w http.ResponseWriter, r *http.Request) {
	var req SubmitVacationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	startTime, err := time.Parse(vacation.TimestampFormat, req.RequestStartTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request_start_time (use YYYY-MM-DDTHH:mm:ss)", err)
		return
	}

	in := vacation.SubmitInput{
		UserID:           req.UserID,
		PolicyID:         req.PolicyID,
		Desc:             req.Desc,
		ApproverIDs:      req.ApproverIDs,
		RequestStartTime: startTime,
		RequestDesc:      req.RequestDesc,
		IdempotencyKey:   req.IdempotencyKey,
	}
	if req.RequestEndTime != nil {
		endTime, err := time.Parse(vacation.TimestampFormat, *req.RequestEndTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request_end_time (use YYYY-MM-DDTHH:mm:ss)", err)
			return
		}
		in.RequestEndTime = &endTime
	}
	if req.GrantTime != nil {
		in.GrantTime = granttime.FromFloat(*req.GrantTime)
	}

	result, err := h.Vacations.Submit(r.Context(), in)
	if err != nil {
		h.writeDomainError(w, "Failed to submit vacation request", err)
		return
	}

	writeJSON(w, http.StatusCreated, SubmitVacationResponse{
		VacationGrantID:      result.Grant.ID,
		GrantStatus:          string(result.Grant.Status),
		ReducedApproverCount: result.ReducedApproverCount,
	})
}

// ApproveVacation records the current approver's sign-off.
func (h *Handler) ApproveVacation(w http.ResponseWriter, r *http.Request) {
	var req ApproveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	grant, err := h.Vacations.Approve(r.Context(), req.ApprovalID, req.ApproverID)
	if err != nil {
		h.writeDomainError(w, "Failed to approve request", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"approval_id":  req.ApprovalID,
		"grant_status": string(grant.Status),
	})
}

// RejectVacation records a rejection with its mandatory reason.
func (h *Handler) RejectVacation(w http.ResponseWriter, r *http.Request) {
	var req RejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	grant, err := h.Vacations.Reject(r.Context(), req.ApprovalID, req.ApproverID, req.RejectionReason)
	if err != nil {
		h.writeDomainError(w, "Failed to reject request", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"approval_id":  req.ApprovalID,
		"grant_status": string(grant.Status),
	})
}

// CancelVacation withdraws a request on behalf of the requester.
func (h *Handler) CancelVacation(w http.ResponseWriter, r *http.Request) {
	grantID := chi.URLParam(r, "id")

	var req CancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	grant, err := h.Vacations.Cancel(r.Context(), grantID, req.UserID)
	if err != nil {
		h.writeDomainError(w, "Failed to cancel request", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"vacation_grant_id": grant.ID,
		"grant_status":      string(grant.Status),
	})
}

// ManualGrant issues an admin grant.
func (h *Handler) ManualGrant(w http.ResponseWriter, r *http.Request) {
	var req ManualGrantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	in := vacation.ManualGrantInput{
		UserID:    req.UserID,
		PolicyID:  req.VacationPolicyID,
		GrantDesc: req.GrantDesc,
	}
	if req.GrantTime != nil {
		in.GrantTime = granttime.FromFloat(*req.GrantTime)
	}
	if req.GrantDate != nil {
		if t, err := time.Parse(vacation.DateFormat, *req.GrantDate); err == nil {
			in.GrantDate = &t
		}
	}
	if req.ExpiryDate != nil {
		if t, err := time.Parse(vacation.DateFormat, *req.ExpiryDate); err == nil {
			in.ExpiryDate = &t
		}
	}

	grant, err := h.Vacations.ManualGrant(r.Context(), in)
	if err != nil {
		h.writeDomainError(w, "Failed to issue grant", err)
		return
	}
	writeJSON(w, http.StatusCreated, toGrantDTO(*grant))
}

// RevokeGrant removes a grant entirely.
func (h *Handler) RevokeGrant(w http.ResponseWriter, r *http.Request) {
	grantID := chi.URLParam(r, "id")

	if err := h.Vacations.Revoke(r.Context(), grantID); err != nil {
		h.writeDomainError(w, "Failed to revoke grant", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"vacation_grant_id": grantID})
}

// GetGrant returns a single grant with its approval chain.
func (h *Handler) GetGrant(w http.ResponseWriter, r *http.Request) {
	grantID := chi.URLParam(r, "id")

	grant, err := h.Store.GetGrant(r.Context(), grantID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get grant", err)
		return
	}
	if grant == nil {
		writeError(w, http.StatusNotFound, "Grant not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toGrantDTO(*grant))
}

// ListUserVacations returns a user's grants.
func (h *Handler) ListUserVacations(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	grants, err := h.Vacations.ListByUser(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list vacations", err)
		return
	}
	writeJSON(w, http.StatusOK, toGrantDTOs(grants))
}

// ListApproverVacations returns grants involving an approver, optionally
// filtered by status.
func (h *Handler) ListApproverVacations(w http.ResponseWriter, r *http.Request) {
	approverID := chi.URLParam(r, "id")
	status := approval.GrantStatus(r.URL.Query().Get("status"))

	grants, err := h.Vacations.ListByApprover(r.Context(), approverID, status)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list vacations", err)
		return
	}
	writeJSON(w, http.StatusOK, toGrantDTOs(grants))
}

// UserVacationStats returns a user's request statistics.
func (h *Handler) UserVacationStats(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	stats, err := h.Vacations.UserStats(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute stats", err)
		return
	}
	writeJSON(w, http.StatusOK, StatsDTO{
		TotalRequestCount:        stats.TotalRequestCount,
		CurrentMonthRequestCount: stats.CurrentMonthRequestCount,
		PendingCount:             stats.PendingCount,
		ProgressCount:            stats.ProgressCount,
		ApprovedCount:            stats.ApprovedCount,
		RejectedCount:            stats.RejectedCount,
		CanceledCount:            stats.CanceledCount,
		ApprovalRate:             stats.ApprovalRate,
		AcquiredVacationTime:     stats.AcquiredVacationTime.Float64(),
		AcquiredVacationTimeStr:  granttime.Format(stats.AcquiredVacationTime),
	})
}

// DeriveOvertime returns the derived whole-hour overtime duration for a
// start/end clock-time pair. Display-only.
func (h *Handler) DeriveOvertime(w http.ResponseWriter, r *http.Request) {
	start := r.URL.Query().Get("start")
	end := r.URL.Query().Get("end")

	writeJSON(w, http.StatusOK, OvertimeHoursDTO{
		StartTime: start,
		EndTime:   end,
		Hours:     granttime.DeriveOvertimeHours(start, end),
	})
}

// =============================================================================
// HOLIDAY HANDLERS
// =============================================================================

// ListHolidays returns company holidays, optionally narrowed to a year.
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	year := 0
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid year", err)
			return
		}
		year = parsed
	}

	holidays, err := h.Store.ListHolidays(r.Context(), year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list holidays", err)
		return
	}

	dtos := make([]HolidayDTO, len(holidays))
	for i, hd := range holidays {
		dtos[i] = toHolidayDTO(hd)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateHoliday registers a company holiday.
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req CreateHolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.HolidayName == "" {
		writeError(w, http.StatusBadRequest, "holiday_name is required", nil)
		return
	}
	date, err := time.Parse(vacation.DateFormat, req.HolidayDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid holiday_date format (use YYYY-MM-DD)", err)
		return
	}

	holiday := sqlite.Holiday{
		ID:   uuid.NewString(),
		Name: req.HolidayName,
		Date: date,
	}
	if err := h.Store.SaveHoliday(r.Context(), holiday); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save holiday", err)
		return
	}
	writeJSON(w, http.StatusCreated, toHolidayDTO(holiday))
}

// DeleteHoliday removes a holiday.
func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Store.DeleteHoliday(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete holiday", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"holiday_id": id})
}

// =============================================================================
// WORK LOG HANDLERS
// =============================================================================

// CreateWorkLog records a work-history entry.
func (h *Handler) CreateWorkLog(w http.ResponseWriter, r *http.Request) {
	var req CreateWorkLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.UserID == "" || req.WorkCode == "" {
		writeError(w, http.StatusBadRequest, "user_id and work_code are required", nil)
		return
	}

	workDate, err := time.Parse(vacation.DateFormat, req.WorkDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid work_date format (use YYYY-MM-DD)", err)
		return
	}

	entry := sqlite.WorkLog{
		ID:        uuid.NewString(),
		UserID:    req.UserID,
		WorkCode:  req.WorkCode,
		WorkDate:  workDate,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Desc:      req.Desc,
	}
	if err := h.Store.SaveWorkLog(r.Context(), entry); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save work log", err)
		return
	}
	writeJSON(w, http.StatusCreated, toWorkLogDTO(entry))
}

// ListWorkLogs returns a user's work-history entries for a period.
func (h *Handler) ListWorkLogs(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	from, err := time.Parse(vacation.DateFormat, r.URL.Query().Get("start_date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date (use YYYY-MM-DD)", err)
		return
	}
	to, err := time.Parse(vacation.DateFormat, r.URL.Query().Get("end_date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_date (use YYYY-MM-DD)", err)
		return
	}

	logs, err := h.Store.ListWorkLogs(r.Context(), userID, from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list work logs", err)
		return
	}

	dtos := make([]WorkLogDTO, len(logs))
	for i, l := range logs {
		dtos[i] = toWorkLogDTO(l)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// DeleteWorkLog removes a work-history entry.
func (h *Handler) DeleteWorkLog(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Store.DeleteWorkLog(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete work log", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"work_log_id": id})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

// writeDomainError maps domain errors onto HTTP statuses.
func (h *Handler) writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case vacation.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, approval.ErrNotCurrentApprover):
		writeError(w, http.StatusForbidden, message, err)
	case vacation.IsClientError(err),
		errors.Is(err, approval.ErrMissingActor),
		errors.Is(err, approval.ErrBlankRejectionReason),
		errors.Is(err, approval.ErrNoCurrentApprover):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		h.Log.WithError(err).Error(message)
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
