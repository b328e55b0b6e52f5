/*
handlers.go - HTTP API handlers for the leave management engine

PURPOSE:
  Exposes the leave engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Employees:
    GET    /api/employees                       List all employees
    POST   /api/employees                       Create/update employee
    GET    /api/employees/{id}                  Get employee details
    GET    /api/employees/{id}/balances         Balance snapshots per leave type
    GET    /api/employees/{id}/balances/{type}  Single balance snapshot
    GET    /api/employees/{id}/requests         List requests
    POST   /api/employees/{id}/requests         Open a leave request
    POST   /api/employees/{id}/accruals/{type}  Credit one accrual

  Requests:
    GET    /api/requests/pending        Approval queue
    GET    /api/requests/{id}           Get one request
    POST   /api/requests/{id}/submit    Submit a draft
    POST   /api/requests/{id}/approve   Approve (manager)
    POST   /api/requests/{id}/reject    Reject with reason (manager)
    POST   /api/requests/{id}/cancel    Cancel (owner)

  Calendar:
    GET    /api/teams/{managerId}/calendar  Team absence feed
    GET    /api/holidays                    Public holidays for a year

  Reference data:
    GET    /api/leave-types             List leave types
    POST   /api/leave-types             Insert or update a leave type
    POST   /api/admin/accrue            Manual accrual credit (admin form)

TENANCY:
  Every endpoint is scoped by the X-Org-ID header. Identity and
  authentication live upstream; this layer trusts the header the same
  way it would trust claims from a verified gateway token.

ERROR HANDLING:
  Domain errors map to HTTP status via writeServiceError:
  - 400: Validation errors, empty periods, malformed input
  - 404: Unknown request, employee, or leave type
  - 409: Lifecycle conflicts (approve a non-pending request, ...)
  - 422: Insufficient balance
  - 500: Consistency violations and internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - leave/service.go: Lifecycle logic the handlers delegate to
*/
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/Toumasadio2/PME-SI/leave"
)

// orgHeader carries the tenant scope on every API call.
const orgHeader = "X-Org-ID"

// defaultOrg keeps single-tenant deployments working without the header.
const defaultOrg = leave.OrgID("default")

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     leave.Store
	Service   *leave.Service
	Projector *leave.Projector
}

// NewHandler creates a new handler around the given store.
func NewHandler(store leave.Store) *Handler {
	return &Handler{
		Store:     store,
		Service:   leave.NewService(store),
		Projector: leave.NewProjector(store),
	}
}

func orgFrom(r *http.Request) leave.OrgID {
	if v := r.Header.Get(orgHeader); v != "" {
		return leave.OrgID(v)
	}
	return defaultOrg
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees in the org.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context(), orgFrom(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := leave.EmployeeID(chi.URLParam(r, "id"))

	emp, err := h.Store.GetEmployee(r.Context(), orgFrom(r), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// CreateEmployee creates or updates an employee record.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	emp := leave.Employee{
		ID:        leave.EmployeeID(req.ID),
		OrgID:     orgFrom(r),
		Name:      req.Name,
		Email:     req.Email,
		ManagerID: leave.EmployeeID(req.ManagerID),
		Active:    active,
	}
	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

// =============================================================================
// BALANCE HANDLERS
// =============================================================================

// GetBalances returns the employee's balance per leave type for a year.
// Entries are created lazily, so a fresh employee sees zeroed rows for
// every leave type rather than an empty list.
func (h *Handler) GetBalances(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	org := orgFrom(r)
	employee := leave.EmployeeID(chi.URLParam(r, "id"))

	year := time.Now().Year()
	if v := r.URL.Query().Get("year"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid year", err)
			return
		}
		year = parsed
	}

	if _, err := h.Store.GetEmployee(ctx, org, employee); err != nil {
		writeServiceError(w, err)
		return
	}

	types, err := h.Store.ListLeaveTypes(ctx, org)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list leave types", err)
		return
	}

	dtos := make([]BalanceDTO, 0, len(types))
	for _, lt := range types {
		snap, err := h.Service.GetBalance(ctx, org, employee, lt.ID, year)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to get balance", err)
			return
		}
		dtos = append(dtos, toBalanceDTO(lt.ID, year, snap))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetBalance returns the employee's balance for a single leave type.
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	org := orgFrom(r)
	employee := leave.EmployeeID(chi.URLParam(r, "id"))
	leaveType := leave.LeaveTypeID(chi.URLParam(r, "type"))

	year := time.Now().Year()
	if v := r.URL.Query().Get("year"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid year", err)
			return
		}
		year = parsed
	}

	if _, err := h.Store.GetEmployee(ctx, org, employee); err != nil {
		writeServiceError(w, err)
		return
	}
	if _, err := h.Store.GetLeaveType(ctx, org, leaveType); err != nil {
		writeServiceError(w, err)
		return
	}

	snap, err := h.Service.GetBalance(ctx, org, employee, leaveType, year)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceDTO(leaveType, year, snap))
}

// =============================================================================
// REQUEST HANDLERS
// =============================================================================

// CreateRequest opens a leave request for the employee in the URL.
func (h *Handler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	employee := leave.EmployeeID(chi.URLParam(r, "id"))

	var body CreateLeaveRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	start, err := time.Parse("2006-01-02", body.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date format (use YYYY-MM-DD)", err)
		return
	}
	end, err := time.Parse("2006-01-02", body.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_date format (use YYYY-MM-DD)", err)
		return
	}

	req, err := h.Service.CreateRequest(r.Context(), leave.CreateParams{
		OrgID:        orgFrom(r),
		EmployeeID:   employee,
		LeaveTypeID:  leave.LeaveTypeID(body.LeaveTypeID),
		StartDate:    start,
		EndDate:      end,
		StartHalfDay: body.StartHalfDay,
		EndHalfDay:   body.EndHalfDay,
		Reason:       body.Reason,
		AutoSubmit:   body.Submit,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRequestDTO(req))
}

// ListRequests returns the employee's request history, newest first.
func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	employee := leave.EmployeeID(chi.URLParam(r, "id"))

	requests, err := h.Store.ListRequestsByEmployee(r.Context(), orgFrom(r), employee)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list requests", err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTOs(requests))
}

// GetRequest returns a single request.
func (h *Handler) GetRequest(w http.ResponseWriter, r *http.Request) {
	id := leave.RequestID(chi.URLParam(r, "id"))

	req, err := h.Service.GetRequest(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTO(req))
}

// ListPendingRequests returns the approval queue, oldest first.
func (h *Handler) ListPendingRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.Store.ListPendingRequests(r.Context(), orgFrom(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get pending requests", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"requests": toRequestDTOs(requests)})
}

// SubmitRequest moves a draft into the approval workflow.
func (h *Handler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	id := leave.RequestID(chi.URLParam(r, "id"))

	req, err := h.Service.SubmitDraft(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTO(req))
}

// ApproveRequest approves a pending request.
func (h *Handler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	id := leave.RequestID(chi.URLParam(r, "id"))

	var body DecideRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	req, err := h.Service.Approve(r.Context(), id, body.ApproverID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTO(req))
}

// RejectRequest rejects a pending request. A reason is mandatory.
func (h *Handler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	id := leave.RequestID(chi.URLParam(r, "id"))

	var body DecideRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	req, err := h.Service.Reject(r.Context(), id, body.ApproverID, body.Reason)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTO(req))
}

// CancelRequest cancels a request, releasing any reserved or consumed days.
func (h *Handler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	id := leave.RequestID(chi.URLParam(r, "id"))

	req, err := h.Service.Cancel(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTO(req))
}

// =============================================================================
// CALENDAR HANDLERS
// =============================================================================

// GetTeamCalendar returns the absence feed for a manager's direct reports.
// Defaults to a window of one month back to three months ahead.
func (h *Handler) GetTeamCalendar(w http.ResponseWriter, r *http.Request) {
	manager := leave.EmployeeID(chi.URLParam(r, "managerId"))

	now := time.Now()
	from := now.AddDate(0, -1, 0)
	to := now.AddDate(0, 3, 0)

	if v := r.URL.Query().Get("from"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid from date (use YYYY-MM-DD)", err)
			return
		}
		from = parsed
	}
	if v := r.URL.Query().Get("to"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid to date (use YYYY-MM-DD)", err)
			return
		}
		to = parsed
	}

	events, err := h.Projector.TeamEvents(r.Context(), orgFrom(r), manager, from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build team calendar", err)
		return
	}

	dtos := make([]TeamEventDTO, len(events))
	for i, e := range events {
		dtos[i] = toTeamEventDTO(e)
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": dtos})
}

// ListHolidays returns the public holidays for a year.
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	year := time.Now().Year()
	if v := r.URL.Query().Get("year"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid year", err)
			return
		}
		year = parsed
	}

	table := leave.FixedHolidayTable()
	dtos := make([]HolidayDTO, len(table))
	for i, hol := range table {
		date := time.Date(year, hol.Month, hol.Day, 0, 0, 0, 0, time.UTC)
		dtos[i] = HolidayDTO{Date: date.Format("2006-01-02"), Name: hol.Name}
	}
	writeJSON(w, http.StatusOK, map[string]any{"holidays": dtos})
}

// =============================================================================
// REFERENCE DATA HANDLERS
// =============================================================================

// ListLeaveTypes returns all leave types in the org.
func (h *Handler) ListLeaveTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.Store.ListLeaveTypes(r.Context(), orgFrom(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list leave types", err)
		return
	}

	dtos := make([]LeaveTypeDTO, len(types))
	for i, p := range types {
		dtos[i] = toLeaveTypeDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateLeaveType inserts or updates a leave type for the org.
func (h *Handler) CreateLeaveType(w http.ResponseWriter, r *http.Request) {
	var body LeaveTypeDTO
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if body.ID == "" || body.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}

	policy := leave.Policy{
		ID:               leave.LeaveTypeID(body.ID),
		Code:             body.Code,
		Name:             body.Name,
		IsPaid:           body.IsPaid,
		RequiresApproval: body.RequiresApproval,
		MaxDaysPerYear:   body.MaxDaysPerYear,
		AccrualRate:      body.AccrualRate,
		Color:            body.Color,
	}
	if err := h.Store.SaveLeaveType(r.Context(), orgFrom(r), policy); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save leave type", err)
		return
	}
	writeJSON(w, http.StatusCreated, toLeaveTypeDTO(policy))
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// TriggerAccrual credits one accrual to an employee's balance. With no
// amount in the body, the leave type's accrual rate applies.
func (h *Handler) TriggerAccrual(w http.ResponseWriter, r *http.Request) {
	var body AccrueRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if body.EmployeeID == "" || body.LeaveTypeID == "" {
		writeError(w, http.StatusBadRequest, "employee_id and leave_type_id are required", nil)
		return
	}
	year := body.Year
	if year == 0 {
		year = time.Now().Year()
	}

	acquired, err := h.Service.Accrue(r.Context(), orgFrom(r),
		leave.EmployeeID(body.EmployeeID), leave.LeaveTypeID(body.LeaveTypeID),
		year, body.Amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"employee_id":   body.EmployeeID,
		"leave_type_id": body.LeaveTypeID,
		"year":          year,
		"acquired":      acquired,
	})
}

// AccrueEmployee credits one accrual for the employee and leave type in
// the URL. The body is optional; without an amount, the leave type's
// accrual rate applies.
func (h *Handler) AccrueEmployee(w http.ResponseWriter, r *http.Request) {
	employee := leave.EmployeeID(chi.URLParam(r, "id"))
	leaveType := leave.LeaveTypeID(chi.URLParam(r, "type"))

	var body struct {
		Amount *decimal.Decimal `json:"amount,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	year := time.Now().Year()
	if v := r.URL.Query().Get("year"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid year", err)
			return
		}
		year = parsed
	}

	acquired, err := h.Service.Accrue(r.Context(), orgFrom(r), employee, leaveType, year, body.Amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"employee_id":   string(employee),
		"leave_type_id": string(leaveType),
		"year":          year,
		"acquired":      acquired,
	})
}

// =============================================================================
// HELPERS
// =============================================================================

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

// writeServiceError maps domain errors onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case leave.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Not found", err)
	case errors.Is(err, leave.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "Invalid state transition", err)
	case errors.Is(err, leave.ErrInsufficientBalance):
		writeError(w, http.StatusUnprocessableEntity, "Insufficient balance", err)
	case leave.IsClientError(err):
		writeError(w, http.StatusBadRequest, "Invalid request", err)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}
