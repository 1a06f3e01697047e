package models

import (
	"fmt"
	"time"
)

// Purpose — контекст, для которого выдан код подтверждения.
type Purpose string

const (
	PurposeRegisterViewer  Purpose = "register_viewer"
	PurposeRegisterCreator Purpose = "register_creator"
	PurposePasswordChange  Purpose = "password_change"
)

func (p Purpose) Valid() bool {
	switch p {
	case PurposeRegisterViewer, PurposeRegisterCreator, PurposePasswordChange:
		return true
	}
	return false
}

// ViewerRegistration — данные регистрации зрителя, сохраняются только после подтверждения.
type ViewerRegistration struct {
	Email        string `json:"email"`
	DisplayName  string `json:"display_name"`
	PasswordHash string `json:"-"`
}

// CreatorRegistration — данные регистрации автора (плюс название канала).
type CreatorRegistration struct {
	Email        string `json:"email"`
	DisplayName  string `json:"display_name"`
	ChannelName  string `json:"channel_name"`
	PasswordHash string `json:"-"`
}

// PasswordChange — отложенная смена пароля; применяется после подтверждения кода.
type PasswordChange struct {
	UserID          int    `json:"user_id"`
	NewPasswordHash string `json:"-"`
}

// PendingPayload — ровно одно из полей должно быть заполнено, и оно
// обязано соответствовать Purpose записи (проверяется перед выдачей кода).
type PendingPayload struct {
	Viewer      *ViewerRegistration
	Creator     *CreatorRegistration
	NewPassword *PasswordChange
}

// MatchesPurpose — проверка формы payload против назначения кода.
func (p PendingPayload) MatchesPurpose(purpose Purpose) error {
	switch purpose {
	case PurposeRegisterViewer:
		if p.Viewer == nil || p.Creator != nil || p.NewPassword != nil {
			return fmt.Errorf("payload does not match purpose %s", purpose)
		}
	case PurposeRegisterCreator:
		if p.Creator == nil || p.Viewer != nil || p.NewPassword != nil {
			return fmt.Errorf("payload does not match purpose %s", purpose)
		}
	case PurposePasswordChange:
		if p.NewPassword == nil || p.Viewer != nil || p.Creator != nil {
			return fmt.Errorf("payload does not match purpose %s", purpose)
		}
	default:
		return fmt.Errorf("unknown purpose %q", purpose)
	}
	return nil
}

// VerificationRecord — одна живая запись на email.
// Храним только bcrypt-хэш кода (CodeHash), TTL и счётчик попыток.
type VerificationRecord struct {
	Email        string
	CodeHash     string
	Purpose      Purpose
	Payload      PendingPayload
	IssuedAt     time.Time
	ExpiresAt    time.Time
	AttemptsUsed int
}
