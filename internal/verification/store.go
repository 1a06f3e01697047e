package verification

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"vistream/internal/models"
	"vistream/internal/utils"
)

var (
	ErrCodeNotFound    = errors.New("verification code not found")
	ErrCodeExpired     = errors.New("verification code expired")
	ErrTooManyAttempts = errors.New("too many attempts")
	ErrCodeInvalid     = errors.New("verification code invalid")
)

const (
	codeDigits = 6

	DefaultCodeTTL       = 5 * time.Minute
	DefaultMaxAttempts   = 3
	DefaultSweepInterval = 5 * time.Minute
)

// Store — единственный владелец отображения email -> VerificationRecord.
// Все операции сериализуются одним мьютексом: рабочее множество крошечное,
// шардирование не нужно.
type Store struct {
	mu      sync.Mutex
	records map[string]*models.VerificationRecord

	codeTTL       time.Duration
	maxAttempts   int
	sweepInterval time.Duration

	now func() time.Time // подменяется в тестах

	stop    chan struct{}
	done    chan struct{}
	started bool
}

func NewStore(codeTTL time.Duration, maxAttempts int, sweepInterval time.Duration) *Store {
	if codeTTL <= 0 {
		codeTTL = DefaultCodeTTL
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if sweepInterval <= 0 {
		sweepInterval = DefaultSweepInterval
	}
	return &Store{
		records:       make(map[string]*models.VerificationRecord),
		codeTTL:       codeTTL,
		maxAttempts:   maxAttempts,
		sweepInterval: sweepInterval,
		now:           time.Now,
	}
}

// NormalizeEmail — email сравниваем без регистра и внешних пробелов.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Issue — генерирует код, безусловно перезаписывая прежнюю запись для этого
// email (старый код сверяется с новым хэшем и даёт ErrCodeInvalid).
// Возвращает код открытым текстом ровно один раз — для доставки; в памяти
// остаётся только bcrypt-хэш.
func (s *Store) Issue(email string, purpose models.Purpose, payload models.PendingPayload) (string, error) {
	if err := payload.MatchesPurpose(purpose); err != nil {
		return "", err
	}

	code, err := utils.GenerateNumericCode(codeDigits)
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("bcrypt generate: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.records[NormalizeEmail(email)] = &models.VerificationRecord{
		Email:        NormalizeEmail(email),
		CodeHash:     string(hash),
		Purpose:      purpose,
		Payload:      payload,
		IssuedAt:     now,
		ExpiresAt:    now.Add(s.codeTTL),
		AttemptsUsed: 0,
	}
	return code, nil
}

// Reissue — свежий код для уже ожидающей записи: назначение и payload
// сохраняются, код, срок действия и счётчик попыток сбрасываются.
// Без живой записи перевыдавать нечего — клиент начинает заново.
func (s *Store) Reissue(email string) (string, models.Purpose, error) {
	code, err := utils.GenerateNumericCode(codeDigits)
	if err != nil {
		return "", "", fmt.Errorf("generate code: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", "", fmt.Errorf("bcrypt generate: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := NormalizeEmail(email)
	rec, ok := s.records[key]
	if !ok {
		return "", "", ErrCodeNotFound
	}
	if s.expired(rec) {
		delete(s.records, key)
		return "", "", ErrCodeExpired
	}

	now := s.now()
	s.records[key] = &models.VerificationRecord{
		Email:        key,
		CodeHash:     string(hash),
		Purpose:      rec.Purpose,
		Payload:      rec.Payload,
		IssuedAt:     now,
		ExpiresAt:    now.Add(s.codeTTL),
		AttemptsUsed: 0,
	}
	return code, rec.Purpose, nil
}

// PeekValid — есть ли живая (не истёкшая) запись. Истёкшую запись
// попутно удаляем.
func (s *Store) PeekValid(email string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := NormalizeEmail(email)
	rec, ok := s.records[key]
	if !ok {
		return false
	}
	if s.expired(rec) {
		delete(s.records, key)
		return false
	}
	return true
}

// Challenge — сверка предъявленного кода. Порядок проверок фиксирован:
// наличие записи -> срок действия -> потолок попыток -> назначение -> код.
// Потолок сверяется со счётчиком ДО этой попытки, то есть терпим ровно
// maxAttempts неверных вводов, а следующий отклоняем не сравнивая код.
func (s *Store) Challenge(email, submittedCode string, expected models.Purpose) (models.PendingPayload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := NormalizeEmail(email)
	rec, ok := s.records[key]
	if !ok {
		return models.PendingPayload{}, ErrCodeNotFound
	}
	if s.expired(rec) {
		delete(s.records, key)
		return models.PendingPayload{}, ErrCodeExpired
	}
	if rec.AttemptsUsed >= s.maxAttempts {
		delete(s.records, key)
		return models.PendingPayload{}, ErrTooManyAttempts
	}
	// Код, выданный для другого назначения, не раскрываем: снаружи это
	// неотличимо от отсутствия записи. Попытку не тратим.
	if expected != "" && rec.Purpose != expected {
		return models.PendingPayload{}, ErrCodeNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(rec.CodeHash), []byte(submittedCode)); err != nil {
		rec.AttemptsUsed++
		return models.PendingPayload{}, ErrCodeInvalid
	}

	// Успех: запись одноразовая.
	delete(s.records, key)
	return rec.Payload, nil
}

// Sweep — удаляет все истёкшие записи; повторный запуск безопасен.
// Чисто гигиеническая операция против брошенных регистраций.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, rec := range s.records {
		if s.expired(rec) {
			delete(s.records, key)
			removed++
		}
	}
	return removed
}

// Len — количество живых записей (для диагностики и тестов).
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Start — запускает фоновую чистку. Явный жизненный цикл вместо таймера,
// стартующего при импорте пакета: тесты зовут Sweep() синхронно.
func (s *Store) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				s.Sweep()
			}
		}
	}()
}

// Stop — останавливает фоновую чистку и дожидается выхода горутины.
func (s *Store) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	stop, done := s.stop, s.done
	s.mu.Unlock()

	close(stop)
	<-done
}

// Запись невалидна начиная ровно с ExpiresAt.
func (s *Store) expired(rec *models.VerificationRecord) bool {
	return !s.now().Before(rec.ExpiresAt)
}
