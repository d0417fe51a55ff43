package authz

import (
	"testing"

	"github.com/ticketflow/ticketflow/internal/domain"
)

func strPtr(s string) *string { return &s }

func employee(id int64) *domain.User {
	return &domain.User{
		ID:         id,
		Username:   "emp",
		Role:       "Software Engineer",
		Department: strPtr("Engineering"),
	}
}

func manager(id int64, depts ...domain.Department) *domain.User {
	return &domain.User{
		ID:                 id,
		Username:           "mgr",
		Role:               "Department Manager",
		IsManager:          true,
		ManagedDepartments: depts,
	}
}

func ticketBy(creator int64, dept domain.Department, status domain.TicketStatus) *domain.Ticket {
	return &domain.Ticket{ID: 1, CreatedBy: creator, Department: dept, Status: status}
}

func TestCanView(t *testing.T) {
	hrTicket := ticketBy(7, domain.DepartmentHR, domain.TicketStatusOpen)

	if !CanView(employee(7), hrTicket) {
		t.Error("creator must see own ticket")
	}
	if CanView(employee(8), hrTicket) {
		t.Error("unrelated employee must not see the ticket")
	}
	if !CanView(manager(9, domain.DepartmentHR), hrTicket) {
		t.Error("HR manager must see HR ticket")
	}
	if CanView(manager(9, domain.DepartmentFinance), hrTicket) {
		t.Error("finance manager must not see HR ticket")
	}
	if CanView(manager(9), hrTicket) {
		t.Error("manager with no managed departments sees nothing")
	}
	if CanView(nil, hrTicket) || CanView(employee(7), nil) {
		t.Error("nil user or ticket never passes")
	}

	// The flag is authoritative: a manager-sounding role without the flag
	// grants no department visibility.
	titled := employee(8)
	titled.Role = "Senior HR Executive"
	if CanView(titled, hrTicket) {
		t.Error("role title alone must not grant visibility")
	}
}

func TestCanEditWindow(t *testing.T) {
	creator := employee(7)

	if !CanEdit(creator, ticketBy(7, domain.DepartmentHR, domain.TicketStatusOpen)) {
		t.Error("creator edits own OPEN ticket")
	}
	if CanEdit(creator, ticketBy(7, domain.DepartmentHR, domain.TicketStatusClosed)) {
		t.Error("plain employee cannot edit own CLOSED ticket")
	}
	if CanEdit(creator, ticketBy(7, domain.DepartmentHR, domain.TicketStatusInProgress)) {
		t.Error("plain employee cannot edit own IN_PROGRESS ticket")
	}

	// A manager-classified creator is not bound by the OPEN window.
	titled := employee(7)
	titled.Role = "Finance Manager"
	if !CanEdit(titled, ticketBy(7, domain.DepartmentHR, domain.TicketStatusClosed)) {
		t.Error("manager-classified creator edits own CLOSED ticket")
	}

	mgr := manager(9, domain.DepartmentHR)
	if !CanEdit(mgr, ticketBy(7, domain.DepartmentHR, domain.TicketStatusClosed)) {
		t.Error("department manager edits CLOSED ticket in managed department")
	}
	if CanEdit(mgr, ticketBy(7, domain.DepartmentFinance, domain.TicketStatusOpen)) {
		t.Error("manager cannot edit outside managed departments")
	}
}

func TestIsManagerRole(t *testing.T) {
	cases := []struct {
		name string
		user *domain.User
		want bool
	}{
		{"nil user", nil, false},
		{"explicit flag", &domain.User{IsManager: true}, true},
		{"keyword in title", &domain.User{Role: "Senior HR Executive"}, true},
		{"lowercase keyword", &domain.User{Role: "finance manager"}, true},
		{"manager department", &domain.User{Role: "Clerk", Department: strPtr("Finance")}, true},
		{"department casing must match", &domain.User{Role: "Clerk", Department: strPtr("FINANCE")}, false},
		{"plain employee", &domain.User{Role: "Software Engineer", Department: strPtr("Engineering")}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsManagerRole(tc.user); got != tc.want {
				t.Errorf("IsManagerRole = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestScope(t *testing.T) {
	emp := employee(7)
	scope := Scope(emp, false)
	if scope.CreatedBy == nil || *scope.CreatedBy != 7 || scope.Empty {
		t.Errorf("employee scope = %+v, want own tickets", scope)
	}

	mgr := manager(9, domain.DepartmentHR, domain.DepartmentFinance)
	scope = Scope(mgr, false)
	if scope.CreatedBy != nil || len(scope.Departments) != 2 {
		t.Errorf("manager scope = %+v, want department set", scope)
	}

	// myTickets forces the personal scope even for managers.
	scope = Scope(mgr, true)
	if scope.CreatedBy == nil || *scope.CreatedBy != 9 || len(scope.Departments) != 0 {
		t.Errorf("manager myTickets scope = %+v, want own tickets", scope)
	}

	scope = Scope(manager(9), false)
	if !scope.Empty {
		t.Errorf("manager with no departments must get the empty scope, got %+v", scope)
	}
}
