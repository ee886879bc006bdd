package http

import "shop-service/internal/domain"

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string          `json:"token"`
	User  domain.UserInfo `json:"user"`
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Address  string `json:"address"`
}

type AddCartItemRequest struct {
	ProductID uint64 `json:"productId" binding:"required"`
	Quantity  int64  `json:"quantity" binding:"required,min=1"`
}

// UpdateCartItemRequest allows zero, which removes the line.
type UpdateCartItemRequest struct {
	Quantity *int64 `json:"quantity" binding:"required"`
}

type CheckoutRequest struct {
	PaymentMethod  string `json:"paymentMethod" binding:"required"`
	PaymentDetails string `json:"paymentDetails"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type AdjustStockRequest struct {
	Delta int64 `json:"delta"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	OrderID uint64 `json:"orderId,omitempty"`
}
