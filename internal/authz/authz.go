// Package authz holds the visibility and edit predicates for tickets. All
// functions are pure: they never touch storage and never fail.
package authz

import (
	"strings"

	"github.com/ticketflow/ticketflow/internal/domain"
)

// managerRoleKeywords classifies free-text roles. Role is an uncontrolled
// string ("Senior HR Executive", "Finance Manager", ...), so manager-like
// titles are detected by substring match on the uppercased value.
var managerRoleKeywords = []string{"MANAGER", "ADMIN", "HR", "FINANCE", "EXECUTIVE"}

// managerDepartments are the department spellings that imply a manager
// seat. The mixed casing is deliberate: it matches the legacy data exactly.
var managerDepartments = []string{"HR", "Finance", "ADMIN"}

// CanView reports whether user may see ticket: the creator always can, and a
// manager can when the ticket's department is in their managed set.
func CanView(user *domain.User, ticket *domain.Ticket) bool {
	if user == nil || ticket == nil {
		return false
	}
	if ticket.CreatedBy == user.ID {
		return true
	}
	return user.IsManager && managesDepartment(user, ticket.Department)
}

// CanEdit reports whether user may modify ticket. Visibility rules apply
// unchanged; additionally, an identity not classified as a manager may only
// edit tickets still in their OPEN (or RE_OPEN) window.
func CanEdit(user *domain.User, ticket *domain.Ticket) bool {
	if !CanView(user, ticket) {
		return false
	}
	if IsManagerRole(user) {
		return true
	}
	return ticket.Status == domain.TicketStatusOpen || ticket.Status == domain.TicketStatusReopened
}

// IsManagerRole applies the legacy manager classification: the explicit
// flag, a manager-like keyword in the role string, or a manager department.
// The strict IsManager flag alone governs which rows are visible; this
// heuristic only decides whether the employee edit window applies, matching
// how the two checks diverge in the reference behavior.
func IsManagerRole(user *domain.User) bool {
	if user == nil {
		return false
	}
	if user.IsManager {
		return true
	}
	role := strings.ToUpper(user.Role)
	for _, keyword := range managerRoleKeywords {
		if strings.Contains(role, keyword) {
			return true
		}
	}
	if user.Department != nil {
		for _, dept := range managerDepartments {
			if *user.Department == dept {
				return true
			}
		}
	}
	return false
}

// TicketScope is the row predicate a listing or aggregation query must apply
// before any caller-supplied filters.
type TicketScope struct {
	// CreatedBy restricts to tickets created by this user when non-nil.
	CreatedBy *int64
	// Departments restricts to these departments when non-empty.
	Departments []domain.Department
	// Empty marks a scope that matches nothing: a manager with no managed
	// departments sees an empty set, not an error.
	Empty bool
}

// Scope derives the visible ticket set for user. With myTicketsOnly the
// scope is always the user's own tickets; otherwise non-managers see only
// their own tickets and managers see their managed departments.
func Scope(user *domain.User, myTicketsOnly bool) TicketScope {
	if myTicketsOnly || !user.IsManager {
		id := user.ID
		return TicketScope{CreatedBy: &id}
	}
	if len(user.ManagedDepartments) == 0 {
		return TicketScope{Empty: true}
	}
	return TicketScope{Departments: user.ManagedDepartments}
}

func managesDepartment(user *domain.User, dept domain.Department) bool {
	for _, managed := range user.ManagedDepartments {
		if managed == dept {
			return true
		}
	}
	return false
}
