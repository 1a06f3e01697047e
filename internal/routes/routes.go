package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vistream/internal/handlers"
)

func SetupRoutes(
	r *gin.Engine,
	verifyHandler *handlers.VerifyHandler,
	passwordHandler *handlers.PasswordHandler,
) *gin.Engine {

	// ---- public: весь поток подтверждения email
	r.POST("/register", verifyHandler.RegisterViewer)
	r.POST("/register/creator", verifyHandler.RegisterCreator)
	r.POST("/register/confirm", verifyHandler.ConfirmRegistration)
	r.POST("/register/resend", verifyHandler.ResendCode)
	r.GET("/register/pending", verifyHandler.PendingStatus)

	// PASSWORD
	pw := r.Group("/password")
	{
		pw.POST("/change", passwordHandler.RequestChange)
		pw.POST("/confirm", passwordHandler.ConfirmChange)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}
