package handlers

import (
	"fmt"

	"katalog/internal/middleware"
	"katalog/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service: service,
	}
}

// RegisterRoutes registers the product routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/code/:code", h.HandleGetProductByCode)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Patch("/:id", h.HandleUpdateProduct)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
}

// HandleGetProducts lists the catalog. With q it searches active products by
// name or code; otherwise include_inactive=true lists inactive rows too.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if term := c.Query("q"); term != "" {
		products, err := h.service.Search(ctx, term)
		if err != nil {
			middleware.Logger(c).Error("product search failed", zap.String("q", term), zap.Error(err))
			return respondError(c, "Could not search products", err)
		}
		return c.JSON(products)
	}

	products, err := h.service.ListProducts(ctx, c.QueryBool("include_inactive"))
	if err != nil {
		middleware.Logger(c).Error("product list failed", zap.Error(err))
		return respondError(c, "Could not retrieve products", err)
	}
	return c.JSON(products)
}

// HandleGetProductByID retrieves a single product, active or not.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Product ID must be a positive integer",
		})
	}

	product, err := h.service.GetProduct(c.UserContext(), uint(id))
	if err != nil {
		return respondError(c, "Could not retrieve product", err)
	}
	if product == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": fmt.Sprintf("Product with ID %d not found", id),
		})
	}
	return c.JSON(product)
}

// HandleGetProductByCode retrieves the active product holding a code.
func (h *ProductHandler) HandleGetProductByCode(c *fiber.Ctx) error {
	code := c.Params("code")
	product, err := h.service.GetProductByCode(c.UserContext(), code)
	if err != nil {
		return respondError(c, "Could not retrieve product", err)
	}
	if product == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": fmt.Sprintf("No active product with code %s", code),
		})
	}
	return c.JSON(product)
}

// HandleCreateProduct creates a product from a JSON object.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var data map[string]any
	if err := c.BodyParser(&data); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	product, err := h.service.CreateProduct(c.UserContext(), data)
	if err != nil {
		return respondError(c, "Could not create product", err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct applies a partial update. Unknown keys are ignored.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Product ID must be a positive integer",
		})
	}

	var data map[string]any
	if err := c.BodyParser(&data); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	product, err := h.service.UpdateProduct(c.UserContext(), uint(id), data)
	if err != nil {
		return respondError(c, "Could not update product", err)
	}
	if product == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": fmt.Sprintf("Product with ID %d not found", id),
		})
	}
	return c.JSON(product)
}

// HandleDeleteProduct soft-deletes a product.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Product ID must be a positive integer",
		})
	}

	deleted, err := h.service.DeleteProduct(c.UserContext(), uint(id))
	if err != nil {
		return respondError(c, "Could not delete product", err)
	}
	if !deleted {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": fmt.Sprintf("Product with ID %d not found", id),
		})
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Product %d deleted successfully", id),
	})
}
