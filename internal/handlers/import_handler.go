package handlers

import (
	"errors"
	"fmt"

	"katalog/internal/middleware"
	"katalog/internal/models"
	"katalog/internal/services"
	"katalog/internal/spreadsheet"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const uploadField = "file"

// ImportHandler runs reconciliation batches from uploaded spreadsheets.
type ImportHandler struct {
	reconciler *services.Reconciler
	maxBytes   int64
}

// NewImportHandler creates an ImportHandler accepting uploads up to maxBytes.
func NewImportHandler(reconciler *services.Reconciler, maxBytes int64) *ImportHandler {
	return &ImportHandler{
		reconciler: reconciler,
		maxBytes:   maxBytes,
	}
}

// RegisterRoutes registers one upload route per reconciliation mode.
func (h *ImportHandler) RegisterRoutes(router fiber.Router) {
	importRoutes := router.Group("/imports")
	importRoutes.Post("/delete", h.handle(models.ModeDeleteByCode))
	importRoutes.Post("/upsert", h.handle(models.ModeUpsert))
	importRoutes.Post("/recount", h.handle(models.ModeRecount))
}

func (h *ImportHandler) handle(mode models.ReconcileMode) fiber.Handler {
	return func(c *fiber.Ctx) error {
		logger := middleware.Logger(c).With(zap.String("mode", string(mode)))

		header, err := c.FormFile(uploadField)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": fmt.Sprintf("A spreadsheet must be uploaded in the %q field", uploadField),
				"error":   err.Error(),
			})
		}
		if header.Size > h.maxBytes {
			return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
				"message": fmt.Sprintf("File exceeds the %d byte upload limit", h.maxBytes),
			})
		}

		file, err := header.Open()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Could not open uploaded file",
				"error":   err.Error(),
			})
		}
		defer file.Close()

		batch, err := spreadsheet.Read(header.Filename, file)
		if err != nil {
			logger.Warn("rejected upload", zap.String("file", header.Filename), zap.Error(err))
			status := fiber.StatusBadRequest
			if errors.Is(err, spreadsheet.ErrUnsupportedFormat) {
				status = fiber.StatusUnsupportedMediaType
			}
			return c.Status(status).JSON(fiber.Map{
				"message": "Could not read uploaded file",
				"error":   err.Error(),
			})
		}

		report, err := h.reconciler.Reconcile(c.UserContext(), mode, batch)
		if err != nil {
			body := fiber.Map{
				"message": "Reconciliation failed",
				"error":   err.Error(),
			}
			if report != nil {
				body["report"] = report
			}
			return c.Status(statusFor(err)).JSON(body)
		}
		return c.JSON(report)
	}
}
