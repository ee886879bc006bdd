package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"shop-service/internal/auth"
	"shop-service/internal/domain"
	"shop-service/internal/infra/idempotency"
	"shop-service/internal/infra/ws"
	"shop-service/internal/services"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	service *services.ShopService
	tokens  *auth.Tokens
	idem    *idempotency.Store
	hub     *ws.Hub
}

func NewHandler(s *services.ShopService, tokens *auth.Tokens) *Handler {
	return &Handler{service: s, tokens: tokens}
}

// SetIdempotencyStore enables replay of checkout responses by Idempotency-Key.
func (h *Handler) SetIdempotencyStore(s *idempotency.Store) { h.idem = s }

func (h *Handler) SetHub(hub *ws.Hub) { h.hub = hub }

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	api := r.Group("/api")
	api.POST("/login", h.Login)
	api.POST("/register", h.Register)
	api.GET("/products", h.ListProducts)
	api.GET("/products/:id", h.GetProduct)

	authed := api.Group("", h.RequireAuth())
	authed.GET("/cart", h.GetCart)
	authed.POST("/cart/items", h.AddCartItem)
	authed.PUT("/cart/items/:productId", h.UpdateCartItem)
	authed.DELETE("/cart/items/:productId", h.RemoveCartItem)
	authed.POST("/checkout", h.Checkout)
	authed.GET("/orders", h.ListOrders)
	authed.GET("/orders/:id", h.GetOrder)
	authed.GET("/orders/:id/receipt", h.GetReceipt)
	authed.POST("/orders/:id/receipt/print", h.PrintReceipt)
	authed.GET("/orders/:id/invoice", h.GetInvoice)
	authed.GET("/ws/orders", h.StreamOrders)

	admin := authed.Group("/admin", h.RequireAdmin())
	admin.POST("/products", h.CreateProduct)
	admin.PATCH("/products/:id", h.UpdateProduct)
	admin.POST("/products/:id/stock", h.AdjustStock)
	admin.PUT("/orders/:id/status", h.UpdateOrderStatus)
	admin.GET("/invoices", h.ListInvoices)
	admin.GET("/orders/:id/invoice/text", h.InvoiceText)
	admin.GET("/export/products", h.ExportProducts)
	admin.GET("/export/orders", h.ExportOrders)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func idParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: name + " must be a positive integer"})
		return 0, false
	}
	return id, true
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	user, err := h.service.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	token, err := h.tokens.Issue(*user)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, LoginResponse{Token: token, User: *user})
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	user, err := h.service.Register(c.Request.Context(), services.Registration{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Address:  req.Address,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *Handler) ListProducts(c *gin.Context) {
	products, err := h.service.ListProducts(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	p, err := h.service.GetProduct(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) GetCart(c *gin.Context) {
	view, err := h.service.CartView(c.Request.Context(), userID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) AddCartItem(c *gin.Context) {
	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	view, err := h.service.CartAdd(c.Request.Context(), userID(c), req.ProductID, req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) UpdateCartItem(c *gin.Context) {
	productID, ok := idParam(c, "productId")
	if !ok {
		return
	}
	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	view, err := h.service.CartUpdate(c.Request.Context(), userID(c), productID, *req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) RemoveCartItem(c *gin.Context) {
	productID, ok := idParam(c, "productId")
	if !ok {
		return
	}
	view, err := h.service.CartRemove(c.Request.Context(), userID(c), productID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Checkout replays the stored response when the request repeats an
// Idempotency-Key the same user already completed.
func (h *Handler) Checkout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	uid := userID(c)

	key := idempotency.Key(c.Request)
	if h.idem == nil || key == "" {
		status, body := h.checkout(ctx, uid, req)
		c.Data(status, "application/json; charset=utf-8", body)
		return
	}

	scoped := fmt.Sprintf("%d:%s", uid, key)
	prev, err := h.idem.Begin(ctx, scoped)
	if err != nil {
		writeError(c, err)
		return
	}
	if prev != nil {
		c.Header("Idempotent-Replayed", "true")
		c.Data(prev.Status, "application/json; charset=utf-8", prev.Body)
		return
	}

	status, body := h.checkout(ctx, uid, req)
	if status >= http.StatusInternalServerError {
		err = h.idem.Release(context.Background(), scoped)
	} else {
		err = h.idem.Complete(context.Background(), scoped, status, body)
	}
	if err != nil {
		log.Printf("idempotency store for key %s: %v", scoped, err)
	}
	c.Data(status, "application/json; charset=utf-8", body)
}

func (h *Handler) checkout(ctx context.Context, uid uint64, req CheckoutRequest) (int, []byte) {
	var (
		status  = http.StatusCreated
		payload any
	)
	res, err := h.service.Checkout(ctx, uid, services.CheckoutRequest{Method: req.PaymentMethod, Credential: req.PaymentDetails})
	if err != nil {
		status, payload = errorResponse(err)
	} else {
		payload = res
	}
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("encode checkout response: %v", err)
		return http.StatusInternalServerError, []byte(`{"error":"internal server error"}`)
	}
	return status, body
}

func (h *Handler) ListOrders(c *gin.Context) {
	orders, err := h.service.ListOrders(c.Request.Context(), userID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	order, err := h.service.GetOrder(c.Request.Context(), userID(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) GetReceipt(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	doc, err := h.service.GetReceipt(c.Request.Context(), userID(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *Handler) PrintReceipt(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	text, err := h.service.PrintReceipt(c.Request.Context(), userID(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.String(http.StatusOK, text)
}

func (h *Handler) GetInvoice(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	doc, err := h.service.GetInvoice(c.Request.Context(), userID(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// StreamOrders upgrades to a websocket that pushes order and payment events.
func (h *Handler) StreamOrders(c *gin.Context) {
	if h.hub == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, ErrorResponse{Error: "live order tracking is disabled"})
		return
	}
	h.hub.Serve(c.Writer, c.Request, userID(c), role(c) == domain.RoleAdmin)
}

func (h *Handler) CreateProduct(c *gin.Context) {
	var req services.NewProduct
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.service.CreateProduct(c.Request.Context(), userID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var patch domain.ProductPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.service.UpdateProduct(c.Request.Context(), userID(c), id, patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) AdjustStock(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.service.AdjustStock(c.Request.Context(), userID(c), id, req.Delta)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	order, err := h.service.UpdateOrderStatus(c.Request.Context(), userID(c), id, req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) ListInvoices(c *gin.Context) {
	docs, err := h.service.ListInvoices(c.Request.Context(), userID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

func (h *Handler) InvoiceText(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	text, err := h.service.InvoiceText(c.Request.Context(), userID(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.String(http.StatusOK, text)
}

func (h *Handler) ExportProducts(c *gin.Context) {
	h.export(c, "products.xlsx", h.service.ExportProducts)
}

func (h *Handler) ExportOrders(c *gin.Context) {
	h.export(c, "orders.xlsx", h.service.ExportOrders)
}

func (h *Handler) export(c *gin.Context, filename string, write func(context.Context, uint64, io.Writer) error) {
	var buf bytes.Buffer
	if err := write(c.Request.Context(), userID(c), &buf); err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
