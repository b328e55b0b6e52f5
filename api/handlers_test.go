/*
handlers_test.go - HTTP-level tests for the leave API

Tests exercise the full router against an in-memory store, asserting the
status code mapping and the JSON payloads for the request lifecycle.
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Toumasadio2/PME-SI/leave"
	"github.com/Toumasadio2/PME-SI/store/sqlite"
)

const testOrg = "acme"

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestServer(t *testing.T) (*httptest.Server, *leave.Service) {
	t.Helper()

	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	cap25 := decimal.NewFromInt(25)
	require.NoError(t, store.SaveLeaveType(ctx, testOrg, leave.Policy{
		ID: "pto", Code: "CP", Name: "Congés payés",
		IsPaid: true, RequiresApproval: true,
		MaxDaysPerYear: &cap25,
		AccrualRate:    decimal.RequireFromString("2.08"),
		Color:          "#3B82F6",
	}))
	require.NoError(t, store.SaveEmployee(ctx, leave.Employee{
		ID: "mgr-1", OrgID: testOrg, Name: "Claire Fontaine", Active: true,
	}))
	require.NoError(t, store.SaveEmployee(ctx, leave.Employee{
		ID: "emp-1", OrgID: testOrg, Name: "Ahmed Ziani", ManagerID: "mgr-1", Active: true,
	}))

	handler := NewHandler(store)
	srv := httptest.NewServer(NewRouter(handler))
	t.Cleanup(srv.Close)

	return srv, handler.Service
}

func doJSON(t *testing.T, srv *httptest.Server, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Org-ID", testOrg)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func fundPTO(t *testing.T, svc *leave.Service, amount string) {
	t.Helper()
	d := decimal.RequireFromString(amount)
	_, err := svc.Accrue(context.Background(), testOrg, "emp-1", "pto", 2025, &d)
	require.NoError(t, err)
}

func createBody(submit bool) map[string]any {
	return map[string]any{
		"leave_type_id": "pto",
		"start_date":    "2025-06-02",
		"end_date":      "2025-06-06",
		"reason":        "vacances",
		"submit":        submit,
	}
}

// =============================================================================
// LIFECYCLE FLOW
// =============================================================================

func TestAPI_CreateApproveFlow(t *testing.T) {
	// GIVEN: A funded employee
	// WHEN: Creating, then approving a request over HTTP
	// THEN: 201 then 200, and the balance reflects the approval

	srv, svc := newTestServer(t)
	fundPTO(t, svc, "20")

	resp, created := doJSON(t, srv, http.MethodPost, "/api/employees/emp-1/requests", createBody(true))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "PENDING", created["status"])
	assert.Equal(t, "5", created["days_count"])

	id := created["id"].(string)
	resp, approved := doJSON(t, srv, http.MethodPost, "/api/requests/"+id+"/approve",
		map[string]any{"approver_id": "mgr-1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "APPROVED", approved["status"])
	assert.Equal(t, "mgr-1", approved["approver_id"])

	resp, _ = doJSON(t, srv, http.MethodGet, "/api/employees/emp-1/balances?year=2025", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPI_CreateDraftThenSubmit(t *testing.T) {
	srv, svc := newTestServer(t)
	fundPTO(t, svc, "20")

	resp, created := doJSON(t, srv, http.MethodPost, "/api/employees/emp-1/requests", createBody(false))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "DRAFT", created["status"])

	id := created["id"].(string)
	resp, submitted := doJSON(t, srv, http.MethodPost, "/api/requests/"+id+"/submit", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "PENDING", submitted["status"])
}

func TestAPI_RejectRequiresReason(t *testing.T) {
	srv, svc := newTestServer(t)
	fundPTO(t, svc, "20")

	_, created := doJSON(t, srv, http.MethodPost, "/api/employees/emp-1/requests", createBody(true))
	id := created["id"].(string)

	resp, _ := doJSON(t, srv, http.MethodPost, "/api/requests/"+id+"/reject",
		map[string]any{"approver_id": "mgr-1"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, rejected := doJSON(t, srv, http.MethodPost, "/api/requests/"+id+"/reject",
		map[string]any{"approver_id": "mgr-1", "reason": "période chargée"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "REJECTED", rejected["status"])
	assert.Equal(t, "période chargée", rejected["rejection_reason"])
}

func TestAPI_CancelApproved(t *testing.T) {
	srv, svc := newTestServer(t)
	fundPTO(t, svc, "20")

	_, created := doJSON(t, srv, http.MethodPost, "/api/employees/emp-1/requests", createBody(true))
	id := created["id"].(string)
	doJSON(t, srv, http.MethodPost, "/api/requests/"+id+"/approve", map[string]any{"approver_id": "mgr-1"})

	resp, cancelled := doJSON(t, srv, http.MethodPost, "/api/requests/"+id+"/cancel", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "CANCELLED", cancelled["status"])

	snap, err := svc.GetBalance(context.Background(), testOrg, "emp-1", "pto", 2025)
	require.NoError(t, err)
	assert.True(t, snap.Taken.IsZero())
}

// =============================================================================
// ERROR STATUS MAPPING
// =============================================================================

func TestAPI_InsufficientBalance_Returns422(t *testing.T) {
	srv, svc := newTestServer(t)
	fundPTO(t, svc, "2")

	resp, body := doJSON(t, srv, http.MethodPost, "/api/employees/emp-1/requests", createBody(true))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "Insufficient balance", body["error"])
}

func TestAPI_DoubleDecision_Returns409(t *testing.T) {
	srv, svc := newTestServer(t)
	fundPTO(t, svc, "20")

	_, created := doJSON(t, srv, http.MethodPost, "/api/employees/emp-1/requests", createBody(true))
	id := created["id"].(string)

	resp, _ := doJSON(t, srv, http.MethodPost, "/api/requests/"+id+"/approve", map[string]any{"approver_id": "mgr-1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, srv, http.MethodPost, "/api/requests/"+id+"/approve", map[string]any{"approver_id": "mgr-1"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAPI_EmptyPeriod_Returns400(t *testing.T) {
	srv, svc := newTestServer(t)
	fundPTO(t, svc, "20")

	body := createBody(true)
	body["start_date"] = "2025-06-07" // Saturday
	body["end_date"] = "2025-06-08"   // Sunday

	resp, _ := doJSON(t, srv, http.MethodPost, "/api/employees/emp-1/requests", body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_UnknownRequest_Returns404(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, _ := doJSON(t, srv, http.MethodGet, "/api/requests/no-such-id", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, srv, http.MethodGet, "/api/employees/ghost/balances", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_UnknownLeaveType_Returns404(t *testing.T) {
	srv, _ := newTestServer(t)

	body := createBody(true)
	body["leave_type_id"] = "nope"

	resp, _ := doJSON(t, srv, http.MethodPost, "/api/employees/emp-1/requests", body)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// =============================================================================
// READ ENDPOINTS
// =============================================================================

func TestAPI_Balances_ListsEveryLeaveType(t *testing.T) {
	srv, svc := newTestServer(t)
	fundPTO(t, svc, "10")

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/employees/emp-1/balances?year=2025", nil)
	require.NoError(t, err)
	req.Header.Set("X-Org-ID", testOrg)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var balances []BalanceDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&balances))
	require.Len(t, balances, 1)
	assert.Equal(t, "pto", balances[0].LeaveTypeID)
	assert.True(t, decimal.NewFromInt(10).Equal(balances[0].Available))
}

func TestAPI_TeamCalendar(t *testing.T) {
	srv, svc := newTestServer(t)
	fundPTO(t, svc, "20")

	_, err := svc.CreateRequest(context.Background(), leave.CreateParams{
		OrgID: testOrg, EmployeeID: "emp-1", LeaveTypeID: "pto",
		StartDate:  time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2025, time.June, 4, 0, 0, 0, 0, time.UTC),
		AutoSubmit: true,
	})
	require.NoError(t, err)

	resp, body := doJSON(t, srv, http.MethodGet,
		"/api/teams/mgr-1/calendar?from=2025-06-01&to=2025-06-30", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	events := body["events"].([]any)
	require.Len(t, events, 1)
	event := events[0].(map[string]any)
	assert.Equal(t, "2025-06-02", event["start"])
	assert.Equal(t, "2025-06-05", event["end"], "end date is exclusive")
	assert.Equal(t, "Ahmed Ziani - Congés payés", event["title"])
}

func TestAPI_Holidays(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := doJSON(t, srv, http.MethodGet, "/api/holidays?year=2025", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	holidays := body["holidays"].([]any)
	assert.Len(t, holidays, 8)
	first := holidays[0].(map[string]any)
	assert.Equal(t, "2025-01-01", first["date"])
}

func TestAPI_AdminAccrue(t *testing.T) {
	srv, svc := newTestServer(t)

	resp, body := doJSON(t, srv, http.MethodPost, "/api/admin/accrue", map[string]any{
		"employee_id":   "emp-1",
		"leave_type_id": "pto",
		"year":          2025,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "2.08", fmt.Sprintf("%v", body["acquired"]))

	snap, err := svc.GetBalance(context.Background(), testOrg, "emp-1", "pto", 2025)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("2.08").Equal(snap.Acquired))
}

func TestAPI_SingleBalance(t *testing.T) {
	srv, svc := newTestServer(t)
	fundPTO(t, svc, "12.5")

	resp, body := doJSON(t, srv, http.MethodGet, "/api/employees/emp-1/balances/pto?year=2025", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "pto", body["leave_type_id"])
	assert.Equal(t, "12.5", body["available"])

	resp, _ = doJSON(t, srv, http.MethodGet, "/api/employees/emp-1/balances/nope?year=2025", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_EmployeeAccrual(t *testing.T) {
	srv, svc := newTestServer(t)

	// No body: the leave type's accrual rate applies.
	resp, body := doJSON(t, srv, http.MethodPost, "/api/employees/emp-1/accruals/pto?year=2025", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "2.08", fmt.Sprintf("%v", body["acquired"]))

	// Explicit amount overrides the rate.
	resp, body = doJSON(t, srv, http.MethodPost, "/api/employees/emp-1/accruals/pto?year=2025",
		map[string]any{"amount": "5"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "7.08", fmt.Sprintf("%v", body["acquired"]))

	snap, err := svc.GetBalance(context.Background(), testOrg, "emp-1", "pto", 2025)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("7.08").Equal(snap.Acquired))
}

func TestAPI_CreateLeaveType(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := doJSON(t, srv, http.MethodPost, "/api/leave-types", map[string]any{
		"id": "rtt", "code": "RTT", "name": "RTT",
		"is_paid": true, "requires_approval": true,
		"accrual_rate": "0.83", "color": "#10B981",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "rtt", body["id"])

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/leave-types", nil)
	require.NoError(t, err)
	req.Header.Set("X-Org-ID", testOrg)
	raw, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer raw.Body.Close()
	var types []LeaveTypeDTO
	require.NoError(t, json.NewDecoder(raw.Body).Decode(&types))
	assert.Len(t, types, 2)
}

// =============================================================================
// SCHEDULER
// =============================================================================

func TestAccrualScheduler_RunNow_Dedupes(t *testing.T) {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	require.NoError(t, store.SaveLeaveType(ctx, "default", leave.Policy{
		ID: "pto", Code: "CP", Name: "Congés payés",
		RequiresApproval: true,
		AccrualRate:      decimal.RequireFromString("2.08"),
	}))
	require.NoError(t, store.SaveLeaveType(ctx, "default", leave.Policy{
		ID: "sick", Code: "MAL", Name: "Arrêt maladie",
		AccrualRate: decimal.Zero,
	}))
	require.NoError(t, store.SaveEmployee(ctx, leave.Employee{
		ID: "emp-1", OrgID: "default", Name: "Ahmed", Active: true,
	}))
	require.NoError(t, store.SaveEmployee(ctx, leave.Employee{
		ID: "emp-gone", OrgID: "default", Name: "Parti", Active: false,
	}))

	scheduler := NewAccrualScheduler(store)
	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

	// Two sweeps of the same month credit once
	scheduler.RunNow(now)
	scheduler.RunNow(now)

	svc := leave.NewService(store)
	snap, err := svc.GetBalance(ctx, "default", "emp-1", "pto", 2025)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("2.08").Equal(snap.Acquired))

	// Inactive employees and zero-rate leave types get nothing
	gone, err := svc.GetBalance(ctx, "default", "emp-gone", "pto", 2025)
	require.NoError(t, err)
	assert.True(t, gone.Acquired.IsZero())

	sick, err := svc.GetBalance(ctx, "default", "emp-1", "sick", 2025)
	require.NoError(t, err)
	assert.True(t, sick.Acquired.IsZero())

	// Next month credits again
	scheduler.RunNow(time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC))
	snap, err = svc.GetBalance(ctx, "default", "emp-1", "pto", 2025)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("4.16").Equal(snap.Acquired))
}
