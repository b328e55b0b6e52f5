/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

DECIMAL FIELDS:
  Day counts and balance figures are serialized as JSON strings
  ("2.5", not 2.5) to preserve exact decimal semantics end to end.
  shopspring/decimal marshals that way by default.

VALIDATION:
  Validation is done in handlers and the domain layer, not in DTOs.
  DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - leave/types.go: Domain model these map from
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Toumasadio2/PME-SI/leave"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	ManagerID string `json:"manager_id,omitempty"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at,omitempty"`
}

// CreateEmployeeRequest is the request to create or update an employee.
type CreateEmployeeRequest struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	ManagerID string `json:"manager_id"`
	Active    *bool  `json:"active,omitempty"`
}

// LeaveTypeDTO represents a leave type in API responses.
type LeaveTypeDTO struct {
	ID               string           `json:"id"`
	Code             string           `json:"code"`
	Name             string           `json:"name"`
	IsPaid           bool             `json:"is_paid"`
	RequiresApproval bool             `json:"requires_approval"`
	MaxDaysPerYear   *decimal.Decimal `json:"max_days_per_year,omitempty"`
	AccrualRate      decimal.Decimal  `json:"accrual_rate"`
	Color            string           `json:"color"`
}

// CreateLeaveRequestDTO is the request body to open a leave request.
type CreateLeaveRequestDTO struct {
	LeaveTypeID  string `json:"leave_type_id"`
	StartDate    string `json:"start_date"` // YYYY-MM-DD
	EndDate      string `json:"end_date"`   // YYYY-MM-DD
	StartHalfDay bool   `json:"start_half_day"`
	EndHalfDay   bool   `json:"end_half_day"`
	Reason       string `json:"reason,omitempty"`
	Submit       bool   `json:"submit"`
}

// LeaveRequestDTO represents a leave request in API responses.
type LeaveRequestDTO struct {
	ID              string          `json:"id"`
	EmployeeID      string          `json:"employee_id"`
	LeaveTypeID     string          `json:"leave_type_id"`
	StartDate       string          `json:"start_date"`
	EndDate         string          `json:"end_date"`
	StartHalfDay    bool            `json:"start_half_day"`
	EndHalfDay      bool            `json:"end_half_day"`
	DaysCount       decimal.Decimal `json:"days_count"`
	Reason          string          `json:"reason,omitempty"`
	Status          string          `json:"status"`
	ApproverID      string          `json:"approver_id,omitempty"`
	ApprovedAt      *string         `json:"approved_at,omitempty"`
	RejectionReason string          `json:"rejection_reason,omitempty"`
	CreatedAt       string          `json:"created_at,omitempty"`
}

// DecideRequestDTO is the body for approve/reject actions.
type DecideRequestDTO struct {
	ApproverID string `json:"approver_id"`
	Reason     string `json:"reason,omitempty"`
}

// BalanceDTO represents one ledger entry for an employee.
type BalanceDTO struct {
	LeaveTypeID string          `json:"leave_type_id"`
	Year        int             `json:"year"`
	Acquired    decimal.Decimal `json:"acquired"`
	CarriedOver decimal.Decimal `json:"carried_over"`
	Taken       decimal.Decimal `json:"taken"`
	Pending     decimal.Decimal `json:"pending"`
	Available   decimal.Decimal `json:"available"`
}

// TeamEventDTO is one entry in the team calendar feed. End is exclusive,
// matching the convention of calendar frontends.
type TeamEventDTO struct {
	RequestID string `json:"request_id"`
	Title     string `json:"title"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Color     string `json:"color"`
	Status    string `json:"status"`
}

// HolidayDTO is a public holiday occurrence.
type HolidayDTO struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

// AccrueRequestDTO is the body for a manual accrual.
type AccrueRequestDTO struct {
	EmployeeID  string           `json:"employee_id"`
	LeaveTypeID string           `json:"leave_type_id"`
	Year        int              `json:"year"`
	Amount      *decimal.Decimal `json:"amount,omitempty"` // nil = policy accrual rate
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

func toEmployeeDTO(e leave.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:        string(e.ID),
		Name:      e.Name,
		Email:     e.Email,
		ManagerID: string(e.ManagerID),
		Active:    e.Active,
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
	}
}

func toLeaveTypeDTO(p leave.Policy) LeaveTypeDTO {
	return LeaveTypeDTO{
		ID:               string(p.ID),
		Code:             p.Code,
		Name:             p.Name,
		IsPaid:           p.IsPaid,
		RequiresApproval: p.RequiresApproval,
		MaxDaysPerYear:   p.MaxDaysPerYear,
		AccrualRate:      p.AccrualRate,
		Color:            p.Color,
	}
}

func toRequestDTO(r *leave.Request) LeaveRequestDTO {
	dto := LeaveRequestDTO{
		ID:              string(r.ID),
		EmployeeID:      string(r.EmployeeID),
		LeaveTypeID:     string(r.LeaveTypeID),
		StartDate:       r.StartDate.Format("2006-01-02"),
		EndDate:         r.EndDate.Format("2006-01-02"),
		StartHalfDay:    r.StartHalfDay,
		EndHalfDay:      r.EndHalfDay,
		DaysCount:       r.DaysCount,
		Reason:          r.Reason,
		Status:          string(r.Status),
		ApproverID:      r.ApproverID,
		RejectionReason: r.RejectionReason,
		CreatedAt:       r.CreatedAt.Format(time.RFC3339),
	}
	if r.ApprovedAt != nil {
		s := r.ApprovedAt.Format(time.RFC3339)
		dto.ApprovedAt = &s
	}
	return dto
}

func toRequestDTOs(rs []leave.Request) []LeaveRequestDTO {
	dtos := make([]LeaveRequestDTO, len(rs))
	for i := range rs {
		dtos[i] = toRequestDTO(&rs[i])
	}
	return dtos
}

func toBalanceDTO(leaveType leave.LeaveTypeID, year int, s leave.Snapshot) BalanceDTO {
	return BalanceDTO{
		LeaveTypeID: string(leaveType),
		Year:        year,
		Acquired:    s.Acquired,
		CarriedOver: s.CarriedOver,
		Taken:       s.Taken,
		Pending:     s.Pending,
		Available:   s.Available,
	}
}

func toTeamEventDTO(e leave.TeamEvent) TeamEventDTO {
	return TeamEventDTO{
		RequestID: string(e.RequestID),
		Title:     e.EmployeeLabel + " - " + e.LeaveTypeLabel,
		Start:     e.Start.Format("2006-01-02"),
		End:       e.End.Format("2006-01-02"),
		Color:     e.Color,
		Status:    string(e.Status),
	}
}
