package main

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/ordenes-checkout/internal/httpx"
	"github.com/MikeMC777/ordenes-checkout/internal/listing"
	"github.com/MikeMC777/ordenes-checkout/internal/order"
)

// writeOrderError maps service errors to status codes. Storage failures
// answer with the opaque body; the service already logged the cause.
func writeOrderError(c *gin.Context, err error) {
	var (
		notFound     *order.ProductNotFoundError
		outOfStock   *order.OutOfStockError
		insufficient *order.InsufficientStockError
		badQty       *order.InvalidQuantityError
	)
	switch {
	case errors.Is(err, order.ErrEmptyCart),
		errors.Is(err, order.ErrInvalidStatus),
		errors.Is(err, listing.ErrUnknownSortField),
		errors.As(err, &badQty):
		httpx.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, order.ErrNotFound), errors.As(err, &notFound):
		httpx.Error(c, http.StatusNotFound, err.Error())
	case errors.As(err, &outOfStock), errors.As(err, &insufficient):
		httpx.Error(c, http.StatusConflict, err.Error())
	default:
		httpx.InternalError(c)
	}
}

// createOrderHandler godoc
// @Summary     Place an order
// @Description Validates the cart, reserves stock and stores the priced order atomically.
// @Tags        orders
// @Accept      json
// @Produce     json
// @Param       body body     order.CreateOrderRequest true "Customer and cart"
// @Success     201  {object} order.Summary
// @Failure     400  {object} httpx.ErrorBody
// @Failure     404  {object} httpx.ErrorBody
// @Failure     409  {object} httpx.ErrorBody
// @Failure     500  {object} httpx.ErrorBody
// @Router      /orders [post]
func createOrderHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.Error(c, http.StatusBadRequest, "invalid payload: "+err.Error())
			return
		}
		sum, err := svc.PlaceOrder(c.Request.Context(), req.Customer(), req.Cart())
		if err != nil {
			writeOrderError(c, err)
			return
		}
		c.JSON(http.StatusCreated, sum)
	}
}

// listOrdersHandler godoc
// @Summary List orders
// @Tags    orders
// @Produce json
// @Param   page      query    int    false "Page (1-based)"
// @Param   limit     query    int    false "Page size (max 100)"
// @Param   id        query    string false "Order id contains"
// @Param   name      query    string false "Customer name contains"
// @Param   email     query    string false "Customer email contains"
// @Param   status    query    string false "Exact status"
// @Param   sortField query    string false "createdAt|updatedAt|totalAmount|name|email|status"
// @Param   sortOrder query    string false "ASC|DESC"
// @Security BearerAuth
// @Success 200       {object} order.ListResponse
// @Failure 400       {object} httpx.ErrorBody
// @Failure 401       {object} httpx.ErrorBody
// @Router  /orders [get]
func listOrdersHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		f := order.Filter{
			IDContains:    c.Query("id"),
			NameContains:  c.Query("name"),
			EmailContains: c.Query("email"),
			Page:          httpx.PageFromQuery(c),
			Sort:          httpx.SortFromQuery(c),
		}
		if s := strings.TrimSpace(c.Query("status")); s != "" {
			st, err := order.ParseStatus(s)
			if err != nil {
				writeOrderError(c, err)
				return
			}
			f.Status = st
		}
		orders, total, err := svc.ListOrders(c.Request.Context(), f)
		if err != nil {
			writeOrderError(c, err)
			return
		}
		c.JSON(http.StatusOK, order.ListResponse{
			Orders:     orders,
			Pagination: listing.NewPagination(f.Page, total),
		})
	}
}

// getOrderHandler godoc
// @Summary Get an order with its items
// @Tags    orders
// @Produce json
// @Param   id  path     string true "Order ID"
// @Success 200 {object} order.Order
// @Failure 404 {object} httpx.ErrorBody
// @Router  /orders/{id} [get]
func getOrderHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := svc.GetOrder(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeOrderError(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// getOrderItemsHandler godoc
// @Summary Get the line items of an order
// @Tags    orders
// @Produce json
// @Param   id  path     string true "Order ID"
// @Success 200 {array}  order.Item
// @Failure 404 {object} httpx.ErrorBody
// @Router  /orders/{id}/items [get]
func getOrderItemsHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := svc.GetOrder(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeOrderError(c, err)
			return
		}
		c.JSON(http.StatusOK, o.Items)
	}
}

// updateOrderStatusHandler godoc
// @Summary  Overwrite the status of an order
// @Tags     orders
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    id   path     string                    true "Order ID"
// @Param    body body     order.UpdateStatusRequest true "New status"
// @Success  200  {object} order.Order
// @Failure  400  {object} httpx.ErrorBody
// @Failure  401  {object} httpx.ErrorBody
// @Failure  404  {object} httpx.ErrorBody
// @Router   /orders/{id}/status [patch]
func updateOrderStatusHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.UpdateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.Error(c, http.StatusBadRequest, "invalid payload: "+err.Error())
			return
		}
		st, err := order.ParseStatus(req.Status)
		if err != nil {
			writeOrderError(c, err)
			return
		}
		id := c.Param("id")
		if err := svc.SetStatus(c.Request.Context(), id, st); err != nil {
			writeOrderError(c, err)
			return
		}
		o, err := svc.GetOrder(c.Request.Context(), id)
		if err != nil {
			writeOrderError(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
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

func registerRoutes(r *gin.Engine, svc *order.Service, adminHash string, db pinger) {
	r.GET("/healthz", healthHandler(db))

	r.POST("/orders", createOrderHandler(svc))
	r.GET("/orders", httpx.AdminOnly(adminHash), listOrdersHandler(svc))
	r.GET("/orders/:id", getOrderHandler(svc))
	r.GET("/orders/:id/items", getOrderItemsHandler(svc))
	r.PATCH("/orders/:id/status", httpx.AdminOnly(adminHash), updateOrderStatusHandler(svc))
}
