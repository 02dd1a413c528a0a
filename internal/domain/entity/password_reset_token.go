package entity

import "time"

// PasswordResetTTL vigencia de un token de recuperación.
const PasswordResetTTL = time.Hour

// PasswordResetToken token de un solo uso para restablecer la contraseña.
type PasswordResetToken struct {
	ID        string
	Token     string
	Email     string
	ExpiresAt time.Time
	Consumed  bool
	CreatedAt time.Time
}

// IsValid: no consumido y no vencido (el instante exacto de expiración todavía es válido).
func (t *PasswordResetToken) IsValid(now time.Time) bool {
	return !t.Consumed && !now.After(t.ExpiresAt)
}
