package companies

import (
	"errors"
	"strconv"

	"company-manager/core/logger"
	"company-manager/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the company catalogue.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the companies routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/companies")
	group.Get("/", h.HandleList)
	group.Get("/status", h.HandleStatus)
	group.Post("/reconcile", h.HandleReconcile)
	group.Get("/:code", h.HandleGet)
}

// HandleList lists the reconciled catalogue.
// @Summary List Companies
// @Description Returns one page of the reconciled company catalogue, ordered by short name.
// @Tags companies
// @Produce json
// @Param skip query int false "Records to skip"
// @Param limit query int false "Page size (max 1000)"
// @Param search query string false "Matches short name, legal name, CNPJ or code"
// @Success 200 {object} ListPage "Company page"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /companies [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	params := ListParams{
		Skip:   c.QueryInt("skip", 0),
		Limit:  c.QueryInt("limit", 100),
		Search: c.Query("search"),
	}
	page, err := h.service.List(c.Context(), params)
	if err != nil {
		l.Error("Company listing failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(page)
}

// HandleGet returns a single company by code.
// @Summary Get Company
// @Description Returns the company with the given business code.
// @Tags companies
// @Produce json
// @Param code path int true "Company code (codigo)"
// @Success 200 {object} reconcile.Company "Company"
// @Failure 400 {object} map[string]string "Invalid code"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /companies/{code} [get]
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	code, err := strconv.ParseInt(c.Params("code"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "code must be an integer"})
	}

	company, err := h.service.Get(c.Context(), code)
	if errors.Is(err, ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "company not found"})
	}
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Company lookup failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(company)
}

// HandleReconcile runs a reconciliation against the portal.
// @Summary Reconcile Companies
// @Description Reconciles the portal's company listing. Without force a fresh cached result is returned.
// @Tags companies
// @Produce json
// @Param force query boolean false "Bypass the result cache"
// @Success 200 {object} Summary "Reconciliation summary"
// @Failure 502 {object} Summary "Portal unreachable"
// @Router /companies/reconcile [post]
func (h *Handler) HandleReconcile(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	force := c.QueryBool("force", false)
	l.Info("Triggering company reconciliation", zap.Bool("force", force))

	_, summary := h.service.Reconcile(c.Context(), force)
	if summary.Status == reconcile.StatusFailed {
		return c.Status(fiber.StatusBadGateway).JSON(summary)
	}
	return c.JSON(summary)
}

// HandleStatus returns the latest reconciliation summary.
// @Summary Reconciliation Status
// @Description Returns the summary of the latest reconciliation run.
// @Tags companies
// @Produce json
// @Success 200 {object} Summary "Reconciliation summary"
// @Failure 404 {object} map[string]string "No reconciliation yet"
// @Router /companies/status [get]
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	summary, err := h.service.Status(c.Context())
	if errors.Is(err, ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no reconciliation has run yet"})
	}
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Status lookup failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(summary)
}
