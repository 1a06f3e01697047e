package app

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vistream/internal/config"
	"vistream/internal/handlers"
	"vistream/internal/repositories"
	"vistream/internal/routes"
	"vistream/internal/services"
	"vistream/internal/verification"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	_ "vistream/docs"
)

func Run() {
	cfg := config.LoadConfig()

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatal("Ошибка подключения к БД: ", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Ошибка закрытия БД: %v", err)
		}
	}()

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)

	// === Services ===
	emailService := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
	)

	// Telegram-алерты админам (опционально)
	var telegram *services.TelegramService
	if cfg.Telegram.Enabled && cfg.Telegram.BotToken != "" {
		telegram, err = services.NewTelegramService(cfg.Telegram.BotToken, cfg.Telegram.AdminChatID)
		if err != nil {
			log.Printf("[app] telegram alerts disabled: %v", err)
			telegram = nil
		}
	}

	accountService := services.NewAccountService(
		userRepo,
		emailService,
		telegram,
		cfg.Auth.JWTSecret,
		cfg.Auth.AccessTokenTTL,
	)

	// Хранилище кодов живёт в памяти процесса; фоновая чистка стартует
	// здесь и останавливается при выключении, а не при импорте пакета.
	store := verification.NewStore(
		cfg.Verification.CodeTTL,
		cfg.Verification.MaxAttempts,
		cfg.Verification.SweepInterval,
	)
	store.Start()
	defer store.Stop()

	verificationService := services.NewVerificationService(
		store,
		emailService,
		accountService,
		cfg.Verification.ResendWindow,
		cfg.Verification.MaxResends,
	)

	// === Handlers ===
	verifyHandler := handlers.NewVerifyHandler(verificationService, accountService)
	passwordHandler := handlers.NewPasswordHandler(verificationService, accountService)

	// === Gin ===
	router := gin.Default()
	router.Use(corsMiddleware())

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.SetupRoutes(router, verifyHandler, passwordHandler)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{Addr: listenAddr, Handler: router}

	go func() {
		log.Printf("Сервер запущен на %s", listenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Ошибка запуска сервера: ", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	log.Println("Останавливаем сервер...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Ошибка остановки сервера: %v", err)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
