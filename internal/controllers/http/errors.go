package http

import (
	"errors"
	"log"
	"net/http"

	"shop-service/internal/domain"
	"shop-service/internal/infra/idempotency"

	"github.com/gin-gonic/gin"
)

// errorResponse maps an error to its HTTP status and body. Unclassified
// errors are logged and hidden behind a generic message.
func errorResponse(err error) (int, ErrorResponse) {
	var perr *domain.PaymentError
	switch {
	case errors.As(err, &perr):
		return http.StatusPaymentRequired, ErrorResponse{Error: err.Error(), OrderID: perr.OrderID}
	case errors.Is(err, domain.ErrAuthentication):
		return http.StatusUnauthorized, ErrorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrAuthorization):
		return http.StatusForbidden, ErrorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, ErrorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrReceiptAlreadyPrinted), errors.Is(err, idempotency.ErrInFlight):
		return http.StatusConflict, ErrorResponse{Error: err.Error()}
	}
	log.Printf("internal error: %v", err)
	return http.StatusInternalServerError, ErrorResponse{Error: "internal server error"}
}

func writeError(c *gin.Context, err error) {
	status, body := errorResponse(err)
	c.AbortWithStatusJSON(status, body)
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
}
