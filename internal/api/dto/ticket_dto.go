package dto

import (
	"time"

	"github.com/ticketflow/ticketflow/internal/domain"
)

// CreateTicketRequest payload. Files carry descriptors returned by the
// upload endpoint.
type CreateTicketRequest struct {
	Subject     string                `json:"subject"`
	Description string                `json:"description"`
	Department  domain.Department     `json:"department"`
	Priority    domain.TicketPriority `json:"priority"`
	Category    *string               `json:"category"`
	Subcategory *string               `json:"subcategory"`
	Comment     *string               `json:"comment"`
	Files       []domain.Attachment   `json:"files"`
}

// UpdateTicketRequest is a partial patch; omitted fields stay unchanged.
type UpdateTicketRequest struct {
	Subject       *string                `json:"subject"`
	Description   *string                `json:"description"`
	Department    *domain.Department     `json:"department"`
	Priority      *domain.TicketPriority `json:"priority"`
	Status        *domain.TicketStatus   `json:"status"`
	Category      *string                `json:"category"`
	Subcategory   *string                `json:"subcategory"`
	Comment       *string                `json:"comment"`
	FilesToDelete []string               `json:"filesToDelete"`
	NewFiles      []domain.Attachment    `json:"newFiles"`
}

// UserSummary is the author block embedded in ticket responses.
type UserSummary struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Username   string  `json:"username"`
	Role       string  `json:"role"`
	Department *string `json:"department"`
}

// TicketResponse mirrors the stored ticket plus its author.
type TicketResponse struct {
	ID          int64                 `json:"id"`
	Subject     string                `json:"subject"`
	Description string                `json:"description"`
	Department  domain.Department     `json:"department"`
	Priority    domain.TicketPriority `json:"priority"`
	Status      domain.TicketStatus   `json:"status"`
	Category    *string               `json:"category"`
	Subcategory *string               `json:"subcategory"`
	Comment     *string               `json:"comment"`
	Files       []domain.Attachment   `json:"files"`
	CreatedBy   int64                 `json:"createdBy"`
	CreatedAt   time.Time             `json:"createdAt"`
	UpdatedAt   time.Time             `json:"updatedAt"`
	User        *UserSummary          `json:"user,omitempty"`
}

// UploadResponse returns the stored descriptors of a batch plus per-file
// rejections.
type UploadResponse struct {
	Files  []domain.Attachment `json:"files"`
	Errors []UploadError       `json:"errors,omitempty"`
}

// UploadError reports a single rejected file.
type UploadError struct {
	FileName string `json:"fileName"`
	Reason   string `json:"reason"`
}
