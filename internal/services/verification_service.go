package services

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"vistream/internal/models"
	"vistream/internal/verification"
)

var (
	ErrDeliveryFailed  = errors.New("failed to deliver verification code")
	ErrResendThrottled = errors.New("resend throttled")
)

// Настройки троттлинга выдачи (перекрываются конфигом).
const (
	defaultMaxResends   = 3
	defaultResendWindow = 10 * time.Minute
)

// NotificationSender — канал доставки кода. Ретраев здесь нет: при сбое
// доставки клиент сам запрашивает повторную отправку.
type NotificationSender interface {
	SendVerificationCode(email, code string, purpose models.Purpose) error
}

type VerificationService interface {
	RequestCode(email string, purpose models.Purpose, payload models.PendingPayload) error
	ResendCode(email string) error
	HasPending(email string) bool
	ConfirmRegistration(email, code string, purpose models.Purpose) (*models.User, string, error)
	ConfirmPasswordChange(email, code string) error
}

type verificationService struct {
	store    *verification.Store
	sender   NotificationSender
	accounts AccountService

	resendWindow time.Duration
	maxResends   int

	// Журнал выдач для троттлинга. Отдельный от стора ресурс: стор владеет
	// только записями email -> код.
	mu       sync.Mutex
	issueLog map[string][]time.Time
	now      func() time.Time
}

func NewVerificationService(
	store *verification.Store,
	sender NotificationSender,
	accounts AccountService,
	resendWindow time.Duration,
	maxResends int,
) VerificationService {
	if resendWindow <= 0 {
		resendWindow = defaultResendWindow
	}
	if maxResends <= 0 {
		maxResends = defaultMaxResends
	}
	return &verificationService{
		store:        store,
		sender:       sender,
		accounts:     accounts,
		resendWindow: resendWindow,
		maxResends:   maxResends,
		issueLog:     make(map[string][]time.Time),
		now:          time.Now,
	}
}

// RequestCode — выдать код и отправить его. При сбое доставки уже
// сохранённая запись остаётся на месте: клиент запрашивает повтор,
// перевыдача её перезапишет.
func (s *verificationService) RequestCode(email string, purpose models.Purpose, payload models.PendingPayload) error {
	if err := s.checkThrottle(email); err != nil {
		return err
	}

	code, err := s.store.Issue(email, purpose, payload)
	if err != nil {
		return err
	}
	s.recordIssue(email)

	if err := s.sender.SendVerificationCode(verification.NormalizeEmail(email), code, purpose); err != nil {
		log.Printf("[verify][issue] delivery failed: purpose=%s err=%v", purpose, err)
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	log.Printf("[verify][issue] code sent: purpose=%s", purpose)
	return nil
}

// ResendCode — свежий код по существующей заявке (payload повторно не нужен).
func (s *verificationService) ResendCode(email string) error {
	if err := s.checkThrottle(email); err != nil {
		return err
	}

	code, purpose, err := s.store.Reissue(email)
	if err != nil {
		return err
	}
	s.recordIssue(email)

	if err := s.sender.SendVerificationCode(verification.NormalizeEmail(email), code, purpose); err != nil {
		log.Printf("[verify][resend] delivery failed: purpose=%s err=%v", purpose, err)
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	log.Printf("[verify][resend] code sent: purpose=%s", purpose)
	return nil
}

func (s *verificationService) HasPending(email string) bool {
	return s.store.PeekValid(email)
}

// ConfirmRegistration — сверка кода и создание учётки из отложенного payload.
func (s *verificationService) ConfirmRegistration(email, code string, purpose models.Purpose) (*models.User, string, error) {
	payload, err := s.store.Challenge(email, code, purpose)
	if err != nil {
		return nil, "", err
	}

	user, token, err := s.accounts.FinalizeRegistration(payload)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *verificationService) ConfirmPasswordChange(email, code string) error {
	payload, err := s.store.Challenge(email, code, models.PurposePasswordChange)
	if err != nil {
		return err
	}
	return s.accounts.FinalizePasswordChange(payload.NewPassword)
}

func (s *verificationService) checkThrottle(email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := verification.NormalizeEmail(email)
	cutoff := s.now().Add(-s.resendWindow)

	recent := s.issueLog[key][:0]
	for _, t := range s.issueLog[key] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}
	if len(recent) == 0 {
		delete(s.issueLog, key)
	} else {
		s.issueLog[key] = recent
	}

	if len(recent) >= s.maxResends {
		return ErrResendThrottled
	}
	return nil
}

func (s *verificationService) recordIssue(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := verification.NormalizeEmail(email)
	s.issueLog[key] = append(s.issueLog[key], s.now())
}
