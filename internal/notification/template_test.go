package notification

import (
	"strings"
	"testing"

	"github.com/ticketflow/ticketflow/internal/domain"
)

func baseTicket() domain.Ticket {
	return domain.Ticket{
		ID:          42,
		Subject:     "[Payments - Reimbursement] claim pending",
		Description: "Travel claim has not been paid out.",
		Department:  domain.DepartmentFinance,
		Priority:    domain.TicketPriorityHigh,
		Status:      domain.TicketStatusOpen,
	}
}

func TestTicketChangesWording(t *testing.T) {
	before := baseTicket()
	after := before
	after.Status = domain.TicketStatusClosed
	after.Priority = domain.TicketPriorityLow
	after.Department = domain.DepartmentAdmin

	changes := TicketChanges(&before, &after)
	want := []string{
		"Status changed from OPEN to CLOSED",
		"Priority changed from HIGH to LOW",
		"Department changed from FINANCE to ADMIN",
	}
	if len(changes) != len(want) {
		t.Fatalf("changes = %v, want %v", changes, want)
	}
	for i := range want {
		if changes[i] != want[i] {
			t.Errorf("changes[%d] = %q, want %q", i, changes[i], want[i])
		}
	}
}

func TestTicketChangesOmitsUnchanged(t *testing.T) {
	before := baseTicket()
	after := before

	if changes := TicketChanges(&before, &after); len(changes) != 0 {
		t.Errorf("identical snapshots produced changes: %v", changes)
	}

	after.Subject = "different"
	after.Description = "also different"
	changes := TicketChanges(&before, &after)
	if len(changes) != 2 || changes[0] != "Subject updated" || changes[1] != "Description updated" {
		t.Errorf("changes = %v", changes)
	}
}

func TestTicketChangesComment(t *testing.T) {
	comment := "looking into it"
	empty := ""

	before := baseTicket()
	after := before
	after.Comment = &comment
	changes := TicketChanges(&before, &after)
	if len(changes) != 1 || changes[0] != "Comment added/updated" {
		t.Errorf("new comment: changes = %v", changes)
	}

	// Clearing a comment is not announced.
	before.Comment = &comment
	after = before
	after.Comment = &empty
	if changes := TicketChanges(&before, &after); len(changes) != 0 {
		t.Errorf("cleared comment: changes = %v", changes)
	}
}

func TestTicketUpdatedEmail(t *testing.T) {
	before := baseTicket()
	after := before
	after.Status = domain.TicketStatusInProgress
	actor := domain.User{Name: "Rahul Verma", Username: "finance_manager"}

	email := TicketUpdatedEmail(&before, &after, &actor)

	if !strings.HasPrefix(email.Subject, "Ticket Updated: ") {
		t.Errorf("subject = %q", email.Subject)
	}
	if !strings.Contains(email.TextBody, "Status changed from OPEN to IN_PROGRESS") {
		t.Errorf("text body missing change line:\n%s", email.TextBody)
	}
	if !strings.Contains(email.HTMLBody, "Status changed from OPEN to IN_PROGRESS") {
		t.Error("html body missing change line")
	}
	if !strings.Contains(email.TextBody, "Rahul Verma (finance_manager)") {
		t.Errorf("text body missing actor:\n%s", email.TextBody)
	}
}

func TestTicketCreatedEmailEscapesHTML(t *testing.T) {
	ticket := baseTicket()
	ticket.Description = `<script>alert("x")</script>`
	actor := domain.User{Name: "John Doe", Username: "john_doe"}

	email := TicketCreatedEmail(&ticket, &actor)

	if strings.Contains(email.HTMLBody, "<script>") {
		t.Error("html body must escape user content")
	}
	if !strings.Contains(email.Subject, ticket.Subject) {
		t.Errorf("subject = %q", email.Subject)
	}
}
