package repository

import (
	"context"
	"time"

	"github.com/jhoicas/flota-api/internal/domain/entity"
)

// APIKeyRepository puerto de persistencia de API keys.
type APIKeyRepository interface {
	Create(ctx context.Context, k *entity.APIKey) error
	Update(ctx context.Context, k *entity.APIKey) error
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) error
	GetByID(ctx context.Context, id string) (*entity.APIKey, error)
	GetByHash(ctx context.Context, hash string) (*entity.APIKey, error)
	ListByUser(ctx context.Context, userID string) ([]*entity.APIKey, error)
	// Touch registra un uso: last_used_at = at, usage_count + 1.
	Touch(ctx context.Context, id string, at time.Time) error
}

// PasswordResetRepository puerto de persistencia de tokens de recuperación.
type PasswordResetRepository interface {
	Create(ctx context.Context, t *entity.PasswordResetToken) error
	GetByToken(ctx context.Context, token string) (*entity.PasswordResetToken, error)
	// GetByTokenForUpdate bloquea el token hasta el fin de la transacción.
	GetByTokenForUpdate(ctx context.Context, token string) (*entity.PasswordResetToken, error)
	MarkConsumed(ctx context.Context, id string) error
	DeleteByEmail(ctx context.Context, email string) error
	// DeletePurgeable borra los tokens vencidos antes de now o ya consumidos.
	DeletePurgeable(ctx context.Context, now time.Time) (int64, error)
}
