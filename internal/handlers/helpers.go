package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"vistream/internal/services"
	"vistream/internal/verification"
)

// Единое отображение ошибок верификации в HTTP-ответы. Остаток попыток
// наружу не сообщаем; неожиданные ошибки схлопываются в generic 500.
func verifyErrorJSON(c *gin.Context, err error) {
	switch {
	case errors.Is(err, verification.ErrCodeNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"error": "no pending verification for this email"})
	case errors.Is(err, verification.ErrCodeExpired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "code expired, please request a new one"})
	case errors.Is(err, verification.ErrTooManyAttempts):
		c.JSON(http.StatusBadRequest, gin.H{"error": "too many attempts, please request a new code"})
	case errors.Is(err, verification.ErrCodeInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid code"})
	case errors.Is(err, services.ErrResendThrottled):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests, try later"})
	case errors.Is(err, services.ErrDeliveryFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to deliver the code, please retry"})
	case errors.Is(err, services.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "verification failed"})
	}
}
