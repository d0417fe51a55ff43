package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusOnHold     TicketStatus = "ON_HOLD"
	TicketStatusCancelled  TicketStatus = "CANCELLED"
	TicketStatusClosed     TicketStatus = "CLOSED"

	// TicketStatusReopened is accepted on input as an alias of OPEN. It is
	// never persisted; the status column only holds the five values above.
	TicketStatusReopened TicketStatus = "RE_OPEN"
)

// ValidStatus reports whether s is a persistable status value.
func ValidStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusOnHold,
		TicketStatusCancelled, TicketStatusClosed:
		return true
	}
	return false
}

// NormalizeStatus maps the RE_OPEN alias to OPEN and leaves everything else
// untouched.
func NormalizeStatus(s TicketStatus) TicketStatus {
	if s == TicketStatusReopened {
		return TicketStatusOpen
	}
	return s
}

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
)

// ValidPriority reports whether p is an enumerated priority.
func ValidPriority(p TicketPriority) bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh:
		return true
	}
	return false
}

// Department enumerates the units tickets are routed to.
type Department string

const (
	DepartmentAdmin   Department = "ADMIN"
	DepartmentFinance Department = "FINANCE"
	DepartmentHR      Department = "HR"
)

// ValidDepartment reports whether d is an enumerated department.
func ValidDepartment(d Department) bool {
	switch d {
	case DepartmentAdmin, DepartmentFinance, DepartmentHR:
		return true
	}
	return false
}

// Ticket is the aggregate for help requests.
type Ticket struct {
	ID          int64
	Subject     string
	Description string
	Department  Department
	Priority    TicketPriority
	Status      TicketStatus
	Category    *string
	Subcategory *string
	Comment     *string
	Attachments []Attachment
	CreatedBy   int64
	Author      *User
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
