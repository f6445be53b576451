package handlers

import (
	"bytes"

	"katalog/internal/services"
	"katalog/internal/spreadsheet"

	"github.com/gofiber/fiber/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler serves the catalog as a downloadable spreadsheet.
type ExportHandler struct {
	service *services.ProductService
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(service *services.ProductService) *ExportHandler {
	return &ExportHandler{service: service}
}

// RegisterRoutes registers the export routes with the Fiber app.
func (h *ExportHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/exports/products", h.HandleExportProducts)
}

// HandleExportProducts writes the catalog as csv (default) or xlsx.
func (h *ExportHandler) HandleExportProducts(c *fiber.Ctx) error {
	format := c.Query("format", "csv")
	if format != "csv" && format != "xlsx" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "format must be csv or xlsx",
		})
	}

	products, err := h.service.ListProducts(c.UserContext(), c.QueryBool("include_inactive"))
	if err != nil {
		return respondError(c, "Could not export products", err)
	}

	var buf bytes.Buffer
	if format == "xlsx" {
		err = spreadsheet.WriteXLSX(&buf, products)
	} else {
		err = spreadsheet.WriteCSV(&buf, products)
	}
	if err != nil {
		return respondError(c, "Could not export products", err)
	}

	c.Attachment("products." + format)
	if format == "xlsx" {
		c.Set(fiber.HeaderContentType, xlsxContentType)
	} else {
		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	}
	return c.Send(buf.Bytes())
}
