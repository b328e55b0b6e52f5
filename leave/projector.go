/*
projector.go - Team calendar projection

PURPOSE:
  Read-only query turning a manager's reports' leave requests into
  calendar-ready events. Thin by design: it composes directory and
  request queries, never touches the ledger.

EVENT SHAPE:
  End dates are exclusive (start + n days), the convention calendar
  frontends expect: a one-day leave on March 10 renders as
  [2024-03-10, 2024-03-11).

  Only PENDING and APPROVED requests project; drafts, rejections and
  cancellations don't belong on a team calendar.
*/
package leave

import (
	"context"
	"sort"
	"time"
)

// TeamEvent is one calendar entry for a manager's team view.
type TeamEvent struct {
	RequestID      RequestID
	EmployeeID     EmployeeID
	EmployeeLabel  string
	LeaveTypeLabel string
	Color          string
	Start          time.Time
	End            time.Time // exclusive
	Status         RequestStatus
}

// Projector builds team calendar views from the store.
type Projector struct {
	store Store
}

// NewProjector creates a team calendar projector.
func NewProjector(store Store) *Projector {
	return &Projector{store: store}
}

// TeamEvents returns the PENDING and APPROVED requests of the manager's
// active direct reports overlapping [from, to], ordered by start date.
// The result is finite and the query is restartable: same inputs, same
// events, no state.
func (p *Projector) TeamEvents(ctx context.Context, org OrgID, manager EmployeeID, from, to time.Time) ([]TeamEvent, error) {
	reports, err := p.store.ListDirectReports(ctx, org, manager)
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, nil
	}

	names := make(map[EmployeeID]string, len(reports))
	ids := make([]EmployeeID, 0, len(reports))
	for _, e := range reports {
		if !e.Active {
			continue
		}
		names[e.ID] = e.Name
		ids = append(ids, e.ID)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	types, err := p.store.ListLeaveTypes(ctx, org)
	if err != nil {
		return nil, err
	}
	typeByID := make(map[LeaveTypeID]Policy, len(types))
	for _, t := range types {
		typeByID[t.ID] = t
	}

	requests, err := p.store.ListRequestsOverlapping(ctx, org, ids, from, to,
		[]RequestStatus{StatusPending, StatusApproved})
	if err != nil {
		return nil, err
	}

	events := make([]TeamEvent, 0, len(requests))
	for _, r := range requests {
		policy := typeByID[r.LeaveTypeID]
		events = append(events, TeamEvent{
			RequestID:      r.ID,
			EmployeeID:     r.EmployeeID,
			EmployeeLabel:  names[r.EmployeeID],
			LeaveTypeLabel: policy.Name,
			Color:          policy.Color,
			Start:          r.StartDate,
			End:            r.EndDate.AddDate(0, 0, 1),
			Status:         r.Status,
		})
	}

	sort.Slice(events, func(i, j int) bool {
		if events[i].Start.Equal(events[j].Start) {
			return events[i].RequestID < events[j].RequestID
		}
		return events[i].Start.Before(events[j].Start)
	})

	return events, nil
}
