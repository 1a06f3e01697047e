package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"vistream/internal/models"
	"vistream/internal/services"
	"vistream/internal/verification"
)

type PasswordHandler struct {
	Verification services.VerificationService
	Accounts     services.AccountService
}

func NewPasswordHandler(verificationSvc services.VerificationService, accounts services.AccountService) *PasswordHandler {
	return &PasswordHandler{Verification: verificationSvc, Accounts: accounts}
}

// @Summary      Запрос смены пароля
// @Description  Отправляет код подтверждения; новый пароль применяется только после подтверждения.
// @Tags         Password
// @Router       /password/change [post]
func (h *PasswordHandler) RequestChange(c *gin.Context) {
	var req struct {
		Email       string `json:"email" binding:"required,email"`
		NewPassword string `json:"new_password" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email := verification.NormalizeEmail(req.Email)
	user, err := h.Accounts.GetUserByEmail(email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "password change failed"})
		return
	}
	if user == nil {
		// существование учётки не раскрываем
		log.Printf("[password][request] no account for submitted email")
		c.JSON(http.StatusAccepted, gin.H{"message": "If the account exists, a code has been sent"})
		return
	}

	hash, err := h.Accounts.HashPassword(req.NewPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "password change failed"})
		return
	}

	payload := models.PendingPayload{NewPassword: &models.PasswordChange{
		UserID:          user.ID,
		NewPasswordHash: hash,
	}}
	if err := h.Verification.RequestCode(email, models.PurposePasswordChange, payload); err != nil {
		verifyErrorJSON(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "If the account exists, a code has been sent"})
}

func (h *PasswordHandler) ConfirmChange(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
		Code  string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Verification.ConfirmPasswordChange(req.Email, req.Code); err != nil {
		verifyErrorJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}
