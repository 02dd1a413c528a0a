package dto

import "time"

// CreateAPIKeyRequest alta de una API key.
type CreateAPIKeyRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

// APIKeyResponse API key enmascarada ("..." + últimos 8 caracteres).
type APIKeyResponse struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Key        string     `json:"key"`
	Active     bool       `json:"active"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	UsageCount int64      `json:"usage_count"`
}

// APIKeyCreatedResponse incluye el secreto completo; solo se devuelve al crearla.
type APIKeyCreatedResponse struct {
	APIKeyResponse
	PlainKey string `json:"plain_key"`
}
