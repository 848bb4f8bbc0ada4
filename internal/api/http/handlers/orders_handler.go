package handlers

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/service-orders/internal/api/dto"
	"github.com/spec-kit/service-orders/internal/auth"
	"github.com/spec-kit/service-orders/internal/domain"
	"github.com/spec-kit/service-orders/internal/events"
	"github.com/spec-kit/service-orders/internal/repository"
	"github.com/spec-kit/service-orders/internal/service"
	apperrors "github.com/spec-kit/service-orders/pkg/util/errorutil"
)

// OrdersHandler manages service order endpoints.
type OrdersHandler struct {
	service   *service.OrderService
	validator *validator.Validate
}

// NewOrdersHandler constructs handler.
func NewOrdersHandler(orderService *service.OrderService) *OrdersHandler {
	return &OrdersHandler{service: orderService, validator: validator.New()}
}

// ListOrders GET /os.
func (h *OrdersHandler) ListOrders(c *fiber.Ctx) error {
	filter, err := parseOrderQuery(c)
	if err != nil {
		return err
	}
	orders, err := h.service.ListOrders(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		items = append(items, dto.NewOrderResponse(&orders[i]))
	}
	return c.JSON(items)
}

// GetOrder GET /os/:id.
func (h *OrdersHandler) GetOrder(c *fiber.Ctx) error {
	order, err := h.service.GetOrder(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewOrderResponse(order))
}

// CreateOrder POST /os.
func (h *OrdersHandler) CreateOrder(c *fiber.Ctx) error {
	var req dto.CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload(err)
	}
	if err := h.validator.Struct(req); err != nil {
		return validationFailed(err)
	}

	input := service.OrderCreateInput{
		Description:   req.Description,
		Sector:        req.Sector,
		Technician:    req.Technician,
		Requester:     req.Requester,
		Priority:      req.Priority,
		Status:        req.Status,
		Type:          req.Type,
		Notes:         req.Notes,
		Deadline:      req.Deadline.Ptr(),
		ExecutionDate: req.ExecutionDate.Ptr(),
	}
	if req.Duration != nil {
		input.Duration = int(*req.Duration)
	}

	order, err := h.service.CreateOrder(c.UserContext(), actorFrom(c), input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewOrderResponse(order))
}

// UpdateOrder PUT /os/:id.
func (h *OrdersHandler) UpdateOrder(c *fiber.Ctx) error {
	var req dto.UpdateOrderRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return invalidPayload(err)
		}
	}
	order, err := h.service.UpdateOrder(c.UserContext(), actorFrom(c), c.Params("id"), req.Patch())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewOrderResponse(order))
}

// ListHistory GET /os/:id/historico.
func (h *OrdersHandler) ListHistory(c *fiber.Ctx) error {
	entries, err := h.service.ListHistory(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.OrderHistoryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.NewOrderHistoryResponse(entry))
	}
	return c.JSON(items)
}

func parseOrderQuery(c *fiber.Ctx) (repository.OrderFilter, error) {
	filter := repository.OrderFilter{}
	for _, part := range splitQuery(c.Query("status")) {
		status, err := domain.ParseOrderStatus(part)
		if err != nil {
			return filter, apperrors.NewValidationError("invalid status filter", map[string]any{"status": part})
		}
		filter.Statuses = append(filter.Statuses, status)
	}
	for _, part := range splitQuery(c.Query("type")) {
		typ, err := domain.ParseOrderType(part)
		if err != nil {
			return filter, apperrors.NewValidationError("invalid type filter", map[string]any{"type": part})
		}
		filter.Types = append(filter.Types, typ)
	}
	for _, part := range splitQuery(c.Query("priority")) {
		priority, err := domain.ParseOrderPriority(part)
		if err != nil {
			return filter, apperrors.NewValidationError("invalid priority filter", map[string]any{"priority": part})
		}
		filter.Priorities = append(filter.Priorities, priority)
	}
	if sector := strings.TrimSpace(c.Query("sector")); sector != "" {
		filter.Sector = &sector
	}
	return filter, nil
}

func splitQuery(raw string) []string {
	var parts []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

func actorFrom(c *fiber.Ctx) events.Actor {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return events.Actor{}
	}
	return events.Actor{Identity: principal.Identity, Role: principal.Role}
}

func invalidPayload(err error) error {
	return apperrors.NewValidationError("invalid payload", map[string]any{"cause": err.Error()})
}

func validationFailed(err error) error {
	details := map[string]any{}
	if fieldErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range fieldErrors {
			details[strings.ToLower(fe.Field())] = fe.Tag()
		}
	} else {
		details["cause"] = err.Error()
	}
	return apperrors.NewValidationError("validation error", details)
}
