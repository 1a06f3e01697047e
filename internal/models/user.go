package models

import "time"

type User struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	ChannelName  *string   `json:"channel_name,omitempty"` // только для авторов
	PasswordHash string    `json:"-"`                      // не отдаём наружу
	RoleID       int       `json:"role_id"`
	CreatedAt    time.Time `json:"created_at"`
}
