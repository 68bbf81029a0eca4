package main

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MikeMC777/ordenes-checkout/internal/httpx"
	"github.com/MikeMC777/ordenes-checkout/internal/listing"
	"github.com/MikeMC777/ordenes-checkout/internal/product"
)

func writeProductError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, product.ErrNotFound):
		httpx.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, product.ErrInvalidPrice),
		errors.Is(err, product.ErrInvalidStock),
		errors.Is(err, product.ErrQueryTooShort),
		errors.Is(err, listing.ErrUnknownSortField):
		httpx.Error(c, http.StatusBadRequest, err.Error())
	default:
		logger.Error("product request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		httpx.InternalError(c)
	}
}

func filterFromQuery(c *gin.Context) product.Filter {
	f := product.Filter{
		NameContains: c.Query("name"),
		Category:     strings.TrimSpace(c.Query("category")),
		Page:         httpx.PageFromQuery(c),
		Sort:         httpx.SortFromQuery(c),
	}
	if raw := c.Query("ids"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				f.IDs = append(f.IDs, id)
			}
		}
	}
	return f
}

// listOnlyHandler godoc
// @Summary List active products
// @Tags    products
// @Produce json
// @Param   page      query    int    false "Page (1-based)"
// @Param   limit     query    int    false "Page size (max 100)"
// @Param   ids       query    string false "Comma separated ids"
// @Param   name      query    string false "Name contains"
// @Param   category  query    string false "Exact category"
// @Param   sortField query    string false "createdAt|updatedAt|name|price|stock|category"
// @Param   sortOrder query    string false "ASC|DESC"
// @Success 200       {object} product.ListResponse
// @Failure 400       {object} httpx.ErrorBody
// @Router  /products [get]
func listOnlyHandler(svc *product.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		f := filterFromQuery(c)
		items, total, err := svc.List(c.Request.Context(), f)
		if err != nil {
			writeProductError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, product.ListResponse{
			Products:   items,
			Pagination: listing.NewPagination(f.Page, total),
		})
	}
}

// searchHandler godoc
// @Summary Search products by name or description
// @Tags    products
// @Produce json
// @Param   q     query    string true  "Query (min 2 chars)"
// @Param   page  query    int    false "Page (1-based)"
// @Param   limit query    int    false "Page size (max 100)"
// @Success 200   {object} product.ListResponse
// @Failure 400   {object} httpx.ErrorBody
// @Router  /products/search [get]
func searchHandler(svc *product.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := strings.TrimSpace(c.Query("q"))
		f := filterFromQuery(c)
		items, total, err := svc.Search(c.Request.Context(), q, f)
		if err != nil {
			writeProductError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, product.ListResponse{
			Q:          q,
			Products:   items,
			Pagination: listing.NewPagination(f.Page, total),
		})
	}
}

// getProductHandler godoc
// @Summary Get a product
// @Tags    products
// @Produce json
// @Param   id  path     string true "Product ID"
// @Success 200 {object} product.Product
// @Failure 404 {object} httpx.ErrorBody
// @Router  /products/{id} [get]
func getProductHandler(svc *product.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeProductError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// createProductHandler godoc
// @Summary  Create a product
// @Tags     products
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    body body     product.CreateProductRequest true "Product"
// @Success  201  {object} product.Product
// @Failure  400  {object} httpx.ErrorBody
// @Failure  401  {object} httpx.ErrorBody
// @Router   /products [post]
func createProductHandler(svc *product.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req product.CreateProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.Error(c, http.StatusBadRequest, "invalid payload: "+err.Error())
			return
		}
		p, err := svc.Create(c.Request.Context(), req)
		if err != nil {
			writeProductError(c, logger, err)
			return
		}
		c.JSON(http.StatusCreated, p)
	}
}

// updateProductHandler godoc
// @Summary  Partially update a product
// @Tags     products
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    id   path     string                       true "Product ID"
// @Param    body body     product.UpdateProductRequest true "Fields to change"
// @Success  200  {object} product.Product
// @Failure  400  {object} httpx.ErrorBody
// @Failure  404  {object} httpx.ErrorBody
// @Router   /products/{id} [put]
func updateProductHandler(svc *product.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req product.UpdateProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.Error(c, http.StatusBadRequest, "invalid payload: "+err.Error())
			return
		}
		p, err := svc.Update(c.Request.Context(), c.Param("id"), req)
		if err != nil {
			writeProductError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// deleteProductHandler godoc
// @Summary  Deactivate a product
// @Tags     products
// @Security BearerAuth
// @Param    id  path string true "Product ID"
// @Success  204
// @Failure  404 {object} httpx.ErrorBody
// @Router   /products/{id} [delete]
func deleteProductHandler(svc *product.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
			writeProductError(c, logger, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

type pinger interface {
	Ping(ctx context.Context) error
}

func healthHandler(db pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			if err := db.Ping(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func registerRoutes(r *gin.Engine, svc *product.Service, logger *zap.Logger, adminHash string, db pinger) {
	r.GET("/healthz", healthHandler(db))

	r.GET("/products", listOnlyHandler(svc, logger))
	r.GET("/products/search", searchHandler(svc, logger))
	r.GET("/products/:id", getProductHandler(svc, logger))

	admin := r.Group("/products", httpx.AdminOnly(adminHash))
	admin.POST("", createProductHandler(svc, logger))
	admin.PUT("/:id", updateProductHandler(svc, logger))
	admin.DELETE("/:id", deleteProductHandler(svc, logger))
}
