package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vistream/internal/models"
	"vistream/internal/services"
	"vistream/internal/verification"
)

type VerifyHandler struct {
	Verification services.VerificationService
	Accounts     services.AccountService
}

func NewVerifyHandler(verificationSvc services.VerificationService, accounts services.AccountService) *VerifyHandler {
	return &VerifyHandler{Verification: verificationSvc, Accounts: accounts}
}

// @Summary      Регистрация зрителя
// @Description  Принимает анкету, отправляет код подтверждения на email. Учётка создаётся только после подтверждения кода.
// @Tags         Register
// @Accept       json
// @Produce      json
// @Param        body  body      object  true  "email, display_name, password"
// @Success      202   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /register [post]
func (h *VerifyHandler) RegisterViewer(c *gin.Context) {
	var req struct {
		Email       string `json:"email" binding:"required,email"`
		DisplayName string `json:"display_name" binding:"required"`
		Password    string `json:"password" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email := verification.NormalizeEmail(req.Email)
	if !h.rejectTaken(c, email) {
		return
	}

	hash, err := h.Accounts.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}

	payload := models.PendingPayload{Viewer: &models.ViewerRegistration{
		Email:        email,
		DisplayName:  req.DisplayName,
		PasswordHash: hash,
	}}
	if err := h.Verification.RequestCode(email, models.PurposeRegisterViewer, payload); err != nil {
		verifyErrorJSON(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "Verification code sent"})
}

// @Summary      Регистрация автора
// @Description  То же, что /register, плюс название канала. Новый канал уходит на модерацию.
// @Tags         Register
// @Router       /register/creator [post]
func (h *VerifyHandler) RegisterCreator(c *gin.Context) {
	var req struct {
		Email       string `json:"email" binding:"required,email"`
		DisplayName string `json:"display_name" binding:"required"`
		ChannelName string `json:"channel_name" binding:"required"`
		Password    string `json:"password" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email := verification.NormalizeEmail(req.Email)
	if !h.rejectTaken(c, email) {
		return
	}

	hash, err := h.Accounts.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}

	payload := models.PendingPayload{Creator: &models.CreatorRegistration{
		Email:        email,
		DisplayName:  req.DisplayName,
		ChannelName:  req.ChannelName,
		PasswordHash: hash,
	}}
	if err := h.Verification.RequestCode(email, models.PurposeRegisterCreator, payload); err != nil {
		verifyErrorJSON(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "Verification code sent"})
}

// @Summary      Подтверждение регистрации
// @Description  Сверяет код; при успехе создаёт учётку и возвращает access-токен.
// @Tags         Register
// @Router       /register/confirm [post]
func (h *VerifyHandler) ConfirmRegistration(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
		Code  string `json:"code" binding:"required"`
		Role  string `json:"role" binding:"required,oneof=viewer creator"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	purpose := models.PurposeRegisterViewer
	if req.Role == "creator" {
		purpose = models.PurposeRegisterCreator
	}

	user, token, err := h.Verification.ConfirmRegistration(req.Email, req.Code, purpose)
	if err != nil {
		verifyErrorJSON(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Registration confirmed",
		"user":         user, // PasswordHash наружу не уходит (json:"-")
		"access_token": token,
	})
}

// ResendCode — перевыдача кода по ожидающей заявке (анкету повторно не просим).
func (h *VerifyHandler) ResendCode(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Verification.ResendCode(req.Email); err != nil {
		verifyErrorJSON(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "Verification code sent"})
}

// PendingStatus — есть ли живой код для email (для UX повторной выдачи).
func (h *VerifyHandler) PendingStatus(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"pending": h.Verification.HasPending(email)})
}

// Возвращает false, если email уже занят и ответ отправлен.
func (h *VerifyHandler) rejectTaken(c *gin.Context, email string) bool {
	taken, err := h.Accounts.EmailTaken(email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return false
	}
	if taken {
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		return false
	}
	return true
}
