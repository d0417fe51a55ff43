package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ticketflow/ticketflow/internal/auth"
	"github.com/ticketflow/ticketflow/internal/service"
	apperrors "github.com/ticketflow/ticketflow/pkg/util/errorutil"
)

// DashboardHandler serves aggregated ticket statistics.
type DashboardHandler struct {
	service *service.TicketService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(ticketService *service.TicketService) *DashboardHandler {
	return &DashboardHandler{service: ticketService}
}

// Stats GET /api/dashboard/stats. Counts cover exactly the tickets the caller
// could see in a listing.
func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	stats, err := h.service.Stats(c.Context(), user, c.Query("myTickets") == "true")
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"stats": stats})
}
