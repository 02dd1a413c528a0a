package entity

import "time"

// APIKeyPrefix prefijo visible de toda API key generada.
const APIKeyPrefix = "bai_"

// APIKey credencial de larga duración de un usuario. El secreto solo se muestra al crearla;
// se persiste su hash SHA-256 y los últimos caracteres para mostrarla enmascarada.
type APIKey struct {
	ID         string
	UserID     string
	Name       string
	KeyHash    string
	KeySuffix  string
	Active     bool
	CreatedAt  time.Time
	LastUsedAt *time.Time
	UsageCount int64
}

// Masked representación truncada de la key.
func (k *APIKey) Masked() string {
	return "..." + k.KeySuffix
}

// Clone devuelve una copia independiente.
func (k *APIKey) Clone() *APIKey {
	if k == nil {
		return nil
	}
	cp := *k
	if k.LastUsedAt != nil {
		t := *k.LastUsedAt
		cp.LastUsedAt = &t
	}
	return &cp
}
