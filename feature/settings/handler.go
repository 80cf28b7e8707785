package settings

import (
	"errors"
	"strings"

	"company-manager/core/backend"
	"company-manager/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the active company setting.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// SelectRequest is the body of a selection request.
type SelectRequest struct {
	CompanyID string `json:"empresa_id"`
}

// RegisterRoutes registers the settings routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/settings/active-company")
	group.Get("/", h.HandleCurrent)
	group.Post("/", h.HandleSelect)
	group.Delete("/", h.HandleClear)
	group.Post("/auto", h.HandleAutoSelect)
}

// portalError maps a portal failure to a response.
func (h *Handler) portalError(c *fiber.Ctx, err error) error {
	logger.WithRayID(h.service.logger, c).Error("Portal request failed", zap.Error(err))
	if backend.IsUnauthorized(err) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "portal session expired"})
	}
	return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
}

// HandleCurrent returns the active company.
// @Summary Get Active Company
// @Description Returns the company selected for the portal session.
// @Tags settings
// @Produce json
// @Success 200 {object} reconcile.Company "Active company"
// @Failure 404 {object} map[string]string "No company selected"
// @Failure 502 {object} map[string]string "Portal error"
// @Router /settings/active-company [get]
func (h *Handler) HandleCurrent(c *fiber.Ctx) error {
	company, err := h.service.Current(c.Context())
	if err != nil {
		return h.portalError(c, err)
	}
	if company == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no company selected"})
	}
	return c.JSON(company)
}

// HandleSelect selects the active company.
// @Summary Select Active Company
// @Description Makes a company from the catalogue active for the portal session.
// @Tags settings
// @Accept json
// @Produce json
// @Param body body SelectRequest true "Company to select"
// @Success 200 {object} map[string]interface{} "Selected company"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 404 {object} map[string]string "Unknown company"
// @Failure 502 {object} map[string]string "Portal error"
// @Router /settings/active-company [post]
func (h *Handler) HandleSelect(c *fiber.Ctx) error {
	var req SelectRequest
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.CompanyID) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "empresa_id is required"})
	}

	company, err := h.service.Select(c.Context(), strings.TrimSpace(req.CompanyID))
	if errors.Is(err, ErrUnknownCompany) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		return h.portalError(c, err)
	}
	return c.JSON(fiber.Map{"message": "company selected", "empresa": company})
}

// HandleClear clears the active company.
// @Summary Clear Active Company
// @Description Removes the company selection of the portal session.
// @Tags settings
// @Produce json
// @Success 200 {object} map[string]string "Cleared"
// @Failure 502 {object} map[string]string "Portal error"
// @Router /settings/active-company [delete]
func (h *Handler) HandleClear(c *fiber.Ctx) error {
	if err := h.service.Clear(c.Context()); err != nil {
		return h.portalError(c, err)
	}
	return c.JSON(fiber.Map{"message": "company selection cleared"})
}

// HandleAutoSelect selects the first company by name when none is active.
// @Summary Auto-select Active Company
// @Description Selects the first company in name order when the session has none. Runs once per server.
// @Tags settings
// @Produce json
// @Success 200 {object} map[string]interface{} "Selection outcome"
// @Failure 502 {object} map[string]string "Portal error"
// @Router /settings/active-company/auto [post]
func (h *Handler) HandleAutoSelect(c *fiber.Ctx) error {
	company, selected, err := h.service.AutoSelect(c.Context())
	if err != nil {
		return h.portalError(c, err)
	}
	return c.JSON(fiber.Map{"selected": selected, "empresa": company})
}
