package notification

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/ticketflow/ticketflow/internal/domain"
)

// Email is a rendered message ready for the mailer.
type Email struct {
	Subject  string
	HTMLBody string
	TextBody string
}

// TicketChanges lists the human-readable change lines between two snapshots.
// The wording is load-bearing: clients and mail filters match on these exact
// phrases.
func TicketChanges(before, after *domain.Ticket) []string {
	var changes []string

	if before.Status != after.Status {
		changes = append(changes, fmt.Sprintf("Status changed from %s to %s", before.Status, after.Status))
	}
	if before.Priority != after.Priority {
		changes = append(changes, fmt.Sprintf("Priority changed from %s to %s", before.Priority, after.Priority))
	}
	if before.Department != after.Department {
		changes = append(changes, fmt.Sprintf("Department changed from %s to %s", before.Department, after.Department))
	}
	if before.Subject != after.Subject {
		changes = append(changes, "Subject updated")
	}
	if before.Description != after.Description {
		changes = append(changes, "Description updated")
	}
	if !stringPtrEqual(before.Comment, after.Comment) && after.Comment != nil && *after.Comment != "" {
		changes = append(changes, "Comment added/updated")
	}

	return changes
}

// TicketCreatedEmail renders the department notification for a new ticket.
func TicketCreatedEmail(ticket *domain.Ticket, actor *domain.User) Email {
	var htmlRows, textLines []string
	row := func(label, value string) {
		htmlRows = append(htmlRows, fmt.Sprintf(
			`<tr><td style="padding: 8px; font-weight: bold; width: 150px;">%s:</td><td style="padding: 8px;">%s</td></tr>`,
			label, html.EscapeString(value)))
		textLines = append(textLines, fmt.Sprintf("%s: %s", label, value))
	}

	row("Ticket ID", fmt.Sprintf("#%d", ticket.ID))
	row("Subject", ticket.Subject)
	row("Description", ticket.Description)
	row("Department", string(ticket.Department))
	row("Priority", string(ticket.Priority))
	row("Status", string(ticket.Status))
	if ticket.Category != nil && *ticket.Category != "" {
		row("Category", *ticket.Category)
	}
	if ticket.Subcategory != nil && *ticket.Subcategory != "" {
		row("Subcategory", *ticket.Subcategory)
	}
	row("Created By", fmt.Sprintf("%s (%s)", actor.Name, actor.Username))
	row("Created At", ticket.CreatedAt.Format(time.RFC1123))
	if len(ticket.Attachments) > 0 {
		names := make([]string, 0, len(ticket.Attachments))
		for _, att := range ticket.Attachments {
			names = append(names, att.Name)
		}
		row("Attachments", strings.Join(names, ", "))
	}

	return Email{
		Subject:  fmt.Sprintf("New Ticket Created: %s", ticket.Subject),
		HTMLBody: wrapHTML("New Ticket Created", htmlRows, nil),
		TextBody: wrapText("New Ticket Created", textLines, nil),
	}
}

// TicketUpdatedEmail renders the department notification for an update,
// enumerating exactly the fields that changed.
func TicketUpdatedEmail(before, after *domain.Ticket, actor *domain.User) Email {
	changes := TicketChanges(before, after)

	var htmlRows, textLines []string
	row := func(label, value string) {
		htmlRows = append(htmlRows, fmt.Sprintf(
			`<tr><td style="padding: 8px; font-weight: bold; width: 150px;">%s:</td><td style="padding: 8px;">%s</td></tr>`,
			label, html.EscapeString(value)))
		textLines = append(textLines, fmt.Sprintf("%s: %s", label, value))
	}

	row("Ticket ID", fmt.Sprintf("#%d", after.ID))
	row("Subject", after.Subject)
	row("Department", string(after.Department))
	row("Priority", string(after.Priority))
	row("Status", string(after.Status))
	row("Updated By", fmt.Sprintf("%s (%s)", actor.Name, actor.Username))
	row("Updated At", after.UpdatedAt.Format(time.RFC1123))

	return Email{
		Subject:  fmt.Sprintf("Ticket Updated: %s", after.Subject),
		HTMLBody: wrapHTML("Ticket Updated", htmlRows, changes),
		TextBody: wrapText("Ticket Updated", textLines, changes),
	}
}

func wrapHTML(title string, rows, changes []string) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">`)
	fmt.Fprintf(&b, `<h2 style="color: #333; border-bottom: 2px solid #007bff; padding-bottom: 10px;">%s</h2>`, title)
	b.WriteString(`<div style="background-color: #f8f9fa; padding: 20px; border-radius: 5px; margin: 20px 0;">`)
	b.WriteString(`<table style="width: 100%; border-collapse: collapse;">`)
	for _, row := range rows {
		b.WriteString(row)
	}
	b.WriteString(`</table></div>`)
	if len(changes) > 0 {
		b.WriteString(`<div style="background-color: #fff3cd; padding: 20px; border-radius: 5px; margin: 20px 0;">`)
		b.WriteString(`<h3 style="color: #856404; margin-top: 0;">Changes Made</h3><ul style="margin: 0; padding-left: 20px;">`)
		for _, change := range changes {
			fmt.Fprintf(&b, `<li style="margin: 5px 0;">%s</li>`, html.EscapeString(change))
		}
		b.WriteString(`</ul></div>`)
	}
	b.WriteString(`<p style="color: #666; font-size: 14px; margin-top: 30px;">This is an automated notification from the TicketFlow system.</p>`)
	b.WriteString(`</div>`)
	return b.String()
}

func wrapText(title string, lines, changes []string) string {
	var b strings.Builder
	b.WriteString(title + "\n\n")
	for _, line := range lines {
		b.WriteString(line + "\n")
	}
	if len(changes) > 0 {
		b.WriteString("\nChanges Made:\n")
		for _, change := range changes {
			b.WriteString("- " + change + "\n")
		}
	}
	b.WriteString("\nThis is an automated notification from the TicketFlow system.\n")
	return b.String()
}

func stringPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
