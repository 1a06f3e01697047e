package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"vistream/internal/authz"
	"vistream/internal/models"
	"vistream/internal/repositories"
)

var ErrEmailTaken = errors.New("email already registered")

// Claims — полезная нагрузка access-токена, выдаваемого после подтверждения.
type Claims struct {
	UserID int `json:"user_id"`
	RoleID int `json:"role_id"`
	jwt.RegisteredClaims
}

// AccountService — внешний коллаборатор верификации: долговременные учётки
// и выдача сессионного токена. Вызывается только после accepted=true.
type AccountService interface {
	EmailTaken(email string) (bool, error)
	GetUserByEmail(email string) (*models.User, error)
	HashPassword(plain string) (string, error)
	FinalizeRegistration(payload models.PendingPayload) (*models.User, string, error)
	FinalizePasswordChange(change *models.PasswordChange) error
}

type accountService struct {
	repo           repositories.UserRepository
	emailService   EmailService
	telegram       *TelegramService // может быть nil
	jwtSecret      []byte
	accessTokenTTL time.Duration
}

func NewAccountService(
	repo repositories.UserRepository,
	emailService EmailService,
	telegram *TelegramService,
	jwtSecret string,
	accessTokenTTL time.Duration,
) AccountService {
	if accessTokenTTL <= 0 {
		accessTokenTTL = 15 * time.Minute
	}
	return &accountService{
		repo:           repo,
		emailService:   emailService,
		telegram:       telegram,
		jwtSecret:      []byte(jwtSecret),
		accessTokenTTL: accessTokenTTL,
	}
}

func (s *accountService) EmailTaken(email string) (bool, error) {
	return s.repo.ExistsByEmail(email)
}

func (s *accountService) GetUserByEmail(email string) (*models.User, error) {
	return s.repo.GetByEmail(email)
}

func (s *accountService) HashPassword(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("bcrypt generate: %w", err)
	}
	return string(h), nil
}

// FinalizeRegistration — создаёт учётку из отложенного payload и выдаёт
// access-токен. Повторная проверка занятости email закрывает гонку между
// выдачей кода и подтверждением.
func (s *accountService) FinalizeRegistration(payload models.PendingPayload) (*models.User, string, error) {
	user, err := s.userFromPayload(payload)
	if err != nil {
		return nil, "", err
	}

	taken, err := s.repo.ExistsByEmail(user.Email)
	if err != nil {
		return nil, "", err
	}
	if taken {
		return nil, "", ErrEmailTaken
	}

	if err := s.repo.Create(user); err != nil {
		return nil, "", err
	}

	token, err := s.issueAccessToken(user)
	if err != nil {
		return nil, "", err
	}

	// Приветствие и алерт админам — best effort, регистрацию не валим.
	if s.emailService != nil {
		if err := s.emailService.SendWelcomeEmail(user.Email, user.DisplayName); err != nil {
			log.Printf("[account][finalize] warning: welcome email to %s failed: %v", user.Email, err)
		}
	}
	if authz.IsCreator(user.RoleID) {
		total, cErr := s.repo.GetCountByRole(authz.RoleCreator)
		if cErr != nil {
			log.Printf("[account][finalize] warning: creator count failed: %v", cErr)
		}
		log.Printf("[account][finalize] creator signup: id=%d total_creators=%d", user.ID, total)
		if err := s.telegram.NotifyCreatorSignup(user, total); err != nil {
			log.Printf("[account][finalize] warning: creator signup alert failed: %v", err)
		}
	}

	log.Printf("[account][finalize] user created: id=%d role=%d", user.ID, user.RoleID)
	return user, token, nil
}

func (s *accountService) FinalizePasswordChange(change *models.PasswordChange) error {
	if change == nil {
		return fmt.Errorf("password change payload is nil")
	}
	if err := s.repo.UpdatePassword(change.UserID, change.NewPasswordHash); err != nil {
		return err
	}
	log.Printf("[account][password] updated for user_id=%d", change.UserID)
	return nil
}

func (s *accountService) userFromPayload(payload models.PendingPayload) (*models.User, error) {
	switch {
	case payload.Viewer != nil:
		return &models.User{
			Email:        payload.Viewer.Email,
			DisplayName:  payload.Viewer.DisplayName,
			PasswordHash: payload.Viewer.PasswordHash,
			RoleID:       authz.RoleViewer,
		}, nil
	case payload.Creator != nil:
		channel := payload.Creator.ChannelName
		return &models.User{
			Email:        payload.Creator.Email,
			DisplayName:  payload.Creator.DisplayName,
			ChannelName:  &channel,
			PasswordHash: payload.Creator.PasswordHash,
			RoleID:       authz.RoleCreator,
		}, nil
	default:
		return nil, fmt.Errorf("payload carries no registration data")
	}
}

func (s *accountService) issueAccessToken(user *models.User) (string, error) {
	claims := &Claims{
		UserID: user.ID,
		RoleID: user.RoleID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.accessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}
