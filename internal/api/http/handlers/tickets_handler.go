package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/ticketflow/ticketflow/internal/api/dto"
	"github.com/ticketflow/ticketflow/internal/auth"
	"github.com/ticketflow/ticketflow/internal/domain"
	"github.com/ticketflow/ticketflow/internal/service"
	apperrors "github.com/ticketflow/ticketflow/pkg/util/errorutil"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// ListTickets GET /api/tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	input := service.ListTicketsInput{
		MyTickets: c.Query("myTickets") == "true",
		Page:      parseInt(c.Query("page"), 1),
		Limit:     parseInt(c.Query("limit"), 10),
	}
	if v := c.Query("department"); v != "" {
		dept := domain.Department(v)
		input.Department = &dept
	}
	if v := c.Query("priority"); v != "" {
		priority := domain.TicketPriority(v)
		input.Priority = &priority
	}
	if v := c.Query("status"); v != "" {
		status := domain.TicketStatus(v)
		input.Status = &status
	}
	if v := c.Query("search"); v != "" {
		input.Search = &v
	}

	tickets, pageInfo, err := h.service.List(c.Context(), user, input)
	if err != nil {
		return err
	}

	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i]))
	}
	return c.JSON(fiber.Map{
		"tickets":    items,
		"pagination": pageInfo,
	})
}

// CreateTicket POST /api/tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.Create(c.Context(), user, service.CreateTicketInput{
		Subject:     req.Subject,
		Description: req.Description,
		Department:  req.Department,
		Priority:    req.Priority,
		Category:    req.Category,
		Subcategory: req.Subcategory,
		Comment:     req.Comment,
		Files:       req.Files,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"ticket": ticketResponse(ticket)})
}

// GetTicket GET /api/tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseTicketID(c)
	if err != nil {
		return err
	}

	ticket, err := h.service.Get(c.Context(), user, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"ticket": ticketResponse(ticket)})
}

// UpdateTicket PUT /api/tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseTicketID(c)
	if err != nil {
		return err
	}

	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.Update(c.Context(), user, id, service.UpdateTicketInput{
		Subject:       req.Subject,
		Description:   req.Description,
		Department:    req.Department,
		Priority:      req.Priority,
		Status:        req.Status,
		Category:      req.Category,
		Subcategory:   req.Subcategory,
		Comment:       req.Comment,
		FilesToDelete: req.FilesToDelete,
		NewFiles:      req.NewFiles,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"ticket": ticketResponse(ticket)})
}

// UploadFiles POST /api/tickets/upload. An optional ticket_id counts the
// target ticket's existing attachments toward the batch cap.
func (h *TicketsHandler) UploadFiles(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	form, err := c.MultipartForm()
	if err != nil {
		return apperrors.NewValidationError("No files uploaded", nil)
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		return apperrors.NewValidationError("No files uploaded", nil)
	}

	currentCount := 0
	if raw := c.Query("ticket_id"); raw != "" {
		ticketID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return apperrors.NewValidationError("invalid ticket_id", nil)
		}
		ticket, err := h.service.Get(c.Context(), user, ticketID)
		if err != nil {
			return err
		}
		currentCount = len(ticket.Attachments)
	}

	files := make([]service.UploadFile, 0, len(headers))
	for _, header := range headers {
		src, err := header.Open()
		if err != nil {
			return apperrors.NewValidationError("unreadable file: "+header.Filename, nil)
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			return apperrors.NewValidationError("unreadable file: "+header.Filename, nil)
		}
		files = append(files, service.UploadFile{
			Name:     header.Filename,
			MimeType: header.Header.Get("Content-Type"),
			Data:     data,
		})
	}

	stored, issues, err := h.service.UploadAttachments(c.Context(), user, currentCount, files)
	if err != nil {
		return err
	}

	resp := dto.UploadResponse{Files: stored}
	for _, issue := range issues {
		resp.Errors = append(resp.Errors, dto.UploadError{FileName: issue.FileName, Reason: issue.Reason})
	}
	return c.JSON(resp)
}

// GetFileURL GET /api/tickets/file/+. The key is a storage path and may
// contain slashes, hence the wildcard segment.
func (h *TicketsHandler) GetFileURL(c *fiber.Ctx) error {
	if _, ok := auth.UserFromContext(c); !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	key := c.Params("+")
	url, err := h.service.DownloadURL(c.Context(), key)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"downloadUrl": url})
}

func parseTicketID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid ticket id", nil)
	}
	return id, nil
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func ticketResponse(ticket *domain.Ticket) dto.TicketResponse {
	files := ticket.Attachments
	if files == nil {
		files = []domain.Attachment{}
	}
	resp := dto.TicketResponse{
		ID:          ticket.ID,
		Subject:     ticket.Subject,
		Description: ticket.Description,
		Department:  ticket.Department,
		Priority:    ticket.Priority,
		Status:      ticket.Status,
		Category:    ticket.Category,
		Subcategory: ticket.Subcategory,
		Comment:     ticket.Comment,
		Files:       files,
		CreatedBy:   ticket.CreatedBy,
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
	}
	if ticket.Author != nil {
		resp.User = &dto.UserSummary{
			ID:         ticket.Author.ID,
			Name:       ticket.Author.Name,
			Username:   ticket.Author.Username,
			Role:       ticket.Author.Role,
			Department: ticket.Author.Department,
		}
	}
	return resp
}
