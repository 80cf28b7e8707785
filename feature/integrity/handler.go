package integrity

import (
	"errors"

	"company-manager/core/logger"
	"company-manager/feature/integrity/checks"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for integrity checks.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the integrity routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/integrity")
	group.Get("/", h.HandleIntegrityCheck)
	group.Get("/structure", h.HandleStructureCheck)
	group.Get("/snapshots", h.HandleSnapshotsCheck)
	group.Get("/schema", h.HandleSchemaCheck)
	group.Get("/catalogue", h.HandleCatalogueCheck)
}

// checkError maps a failed check to a response. Disabled sinks are not
// server faults.
func (h *Handler) checkError(c *fiber.Ctx, err error) error {
	if errors.Is(err, checks.ErrStorageDisabled) || errors.Is(err, checks.ErrDatabaseDisabled) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}

// HandleIntegrityCheck triggers all integrity checks.
// @Summary Run All Integrity Checks
// @Description Performs all available integrity checks (Structure, Snapshots, Schema, Catalogue).
// @Tags integrity
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "Combined Report"
// @Router /integrity [get]
func (h *Handler) HandleIntegrityCheck(c *fiber.Ctx) error {
	logger.WithRayID(h.service.logger, c).Info("Triggering all integrity checks")
	return c.JSON(h.service.CheckAll(c.Context()))
}

// HandleStructureCheck checks and optionally fixes structure.
// @Summary Check Structure
// @Description Checks if the snapshot folder exists in the storage bucket. Optionally fixes missing folders.
// @Tags integrity
// @Accept json
// @Produce json
// @Param fix query boolean false "Fix missing folders"
// @Success 200 {object} map[string]interface{} "Structure Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Failure 503 {object} map[string]string "Storage not configured"
// @Router /integrity/structure [get]
func (h *Handler) HandleStructureCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	fix := c.Query("fix") == "true"

	missing, err := h.service.CheckStructure(c.Context())
	if err != nil {
		l.Error("Structure check failed", zap.Error(err))
		return h.checkError(c, err)
	}

	if len(missing) > 0 {
		l.Warn("Missing folders detected", zap.Strings("missing", missing))

		if fix {
			l.Info("Attempting to fix missing folders")
			if err := h.service.FixStructure(c.Context(), missing); err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error":   "Failed to fix structure",
					"details": err.Error(),
					"missing": missing,
				})
			}
			return c.JSON(fiber.Map{
				"status": "fixed",
				"fixed":  missing,
			})
		}
	}

	return c.JSON(fiber.Map{
		"status":  "checked",
		"missing": missing,
	})
}

// HandleSnapshotsCheck checks snapshot files.
// @Summary Check Snapshots
// @Description Verify that the latest catalogue snapshot is present in storage.
// @Tags integrity
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "Snapshot Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Failure 503 {object} map[string]string "Storage not configured"
// @Router /integrity/snapshots [get]
func (h *Handler) HandleSnapshotsCheck(c *fiber.Ctx) error {
	missing, err := h.service.CheckSnapshots(c.Context())
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Snapshot check failed", zap.Error(err))
		return h.checkError(c, err)
	}

	return c.JSON(fiber.Map{
		"status":  "checked",
		"missing": missing,
	})
}

// HandleSchemaCheck checks the catalogue database schema.
// @Summary Check Database Schema
// @Description Checks if the catalogue tables match the expected models.
// @Tags integrity
// @Accept json
// @Produce json
// @Success 200 {object} checks.SchemaReport "Schema Check Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Failure 503 {object} map[string]string "Database not configured"
// @Router /integrity/schema [get]
func (h *Handler) HandleSchemaCheck(c *fiber.Ctx) error {
	report, err := h.service.CheckSchema()
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Schema check failed", zap.Error(err))
		return h.checkError(c, err)
	}
	return c.JSON(report)
}

// HandleCatalogueCheck compares the stored catalogue with the latest run.
// @Summary Check Catalogue
// @Description Compares the stored company count with the latest reconciliation snapshot and reports duplicate portal ids.
// @Tags integrity
// @Accept json
// @Produce json
// @Success 200 {object} checks.CatalogueReport "Catalogue Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Failure 503 {object} map[string]string "Database not configured"
// @Router /integrity/catalogue [get]
func (h *Handler) HandleCatalogueCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	report, err := h.service.CheckCatalogue(c.Context())
	if err != nil {
		l.Error("Catalogue check failed", zap.Error(err))
		return h.checkError(c, err)
	}
	if !report.Matched {
		l.Warn("Catalogue issues detected", zap.Strings("issues", report.Issues))
	}
	return c.JSON(report)
}
