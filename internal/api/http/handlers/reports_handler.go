package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/service-orders/internal/api/dto"
	"github.com/spec-kit/service-orders/internal/service"
)

// ReportsHandler serves the dashboard and the executive summary.
type ReportsHandler struct {
	reports *service.ReportService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reportService *service.ReportService) *ReportsHandler {
	return &ReportsHandler{reports: reportService}
}

// Dashboard GET /dashboard.
func (h *ReportsHandler) Dashboard(c *fiber.Ctx) error {
	counts, err := h.reports.Counts(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.DashboardResponse{Open: counts.Open, Closed: counts.Closed, Total: counts.Total})
}

// Summary GET /ia/resumo.
func (h *ReportsHandler) Summary(c *fiber.Ctx) error {
	text, err := h.reports.Summary(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.SummaryResponse{Text: text})
}
