package usecase

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jhoicas/flota-api/internal/application/access"
	"github.com/jhoicas/flota-api/internal/application/dto"
	"github.com/jhoicas/flota-api/internal/domain"
	"github.com/jhoicas/flota-api/internal/domain/entity"
	"github.com/jhoicas/flota-api/internal/domain/repository"
)

const (
	apiKeyRandomBytes = 32
	apiKeySuffixLen   = 8
	apiKeyMaxAttempts = 5
)

// APIKeyUseCase API keys del usuario autenticado y su validación como credencial.
type APIKeyUseCase struct {
	keys        repository.APIKeyRepository
	users       repository.UserRepository
	companies   repository.CompanyRepository
	resolver    *access.Resolver
	validations *prometheus.CounterVec
}

// NewAPIKeyUseCase construye el caso de uso. validations (label "result") puede ser nil.
func NewAPIKeyUseCase(
	keys repository.APIKeyRepository,
	users repository.UserRepository,
	companies repository.CompanyRepository,
	resolver *access.Resolver,
	validations *prometheus.CounterVec,
) *APIKeyUseCase {
	return &APIKeyUseCase{keys: keys, users: users, companies: companies, resolver: resolver, validations: validations}
}

// HashAPIKey digest con el que se persiste y busca una key.
func HashAPIKey(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}

func generateAPIKey() (string, error) {
	buf := make([]byte, apiKeyRandomBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generar api key: %w", err)
	}
	return entity.APIKeyPrefix + base64.RawURLEncoding.EncodeToString(buf), nil
}

// Create genera una key nueva. El secreto completo solo se devuelve en esta respuesta.
func (uc *APIKeyUseCase) Create(ctx context.Context, email string, in dto.CreateAPIKeyRequest) (*dto.APIKeyCreatedResponse, error) {
	name := strings.TrimSpace(in.Name)
	if err := required("name", name); err != nil {
		return nil, err
	}
	actor, err := uc.resolver.Resolve(ctx, email, "")
	if err != nil {
		return nil, err
	}
	var plain string
	var key *entity.APIKey
	for attempt := 0; attempt < apiKeyMaxAttempts; attempt++ {
		plain, err = generateAPIKey()
		if err != nil {
			return nil, err
		}
		hash := HashAPIKey(plain)
		existing, err := uc.keys.GetByHash(ctx, hash)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			continue
		}
		key = &entity.APIKey{
			ID:        uuid.New().String(),
			UserID:    actor.User.ID,
			Name:      name,
			KeyHash:   hash,
			KeySuffix: plain[len(plain)-apiKeySuffixLen:],
			Active:    true,
			CreatedAt: entity.Now(),
		}
		break
	}
	if key == nil {
		return nil, fmt.Errorf("generar api key: sin valor único tras %d intentos", apiKeyMaxAttempts)
	}
	if err := uc.keys.Create(ctx, key); err != nil {
		return nil, err
	}
	return &dto.APIKeyCreatedResponse{APIKeyResponse: *APIKeyToResponse(key), PlainKey: plain}, nil
}

// List keys del usuario autenticado (enmascaradas).
func (uc *APIKeyUseCase) List(ctx context.Context, email string) ([]dto.APIKeyResponse, error) {
	actor, err := uc.resolver.Resolve(ctx, email, "")
	if err != nil {
		return nil, err
	}
	list, err := uc.keys.ListByUser(ctx, actor.User.ID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.APIKeyResponse, 0, len(list))
	for _, k := range list {
		out = append(out, *APIKeyToResponse(k))
	}
	return out, nil
}

// SetActive activa o revoca una key propia.
func (uc *APIKeyUseCase) SetActive(ctx context.Context, email, id string, active bool) (*dto.APIKeyResponse, error) {
	key, err := uc.owned(ctx, email, id)
	if err != nil {
		return nil, err
	}
	key.Active = active
	if err := uc.keys.Update(ctx, key); err != nil {
		return nil, err
	}
	return APIKeyToResponse(key), nil
}

// Delete elimina una key propia.
func (uc *APIKeyUseCase) Delete(ctx context.Context, email, id string) error {
	key, err := uc.owned(ctx, email, id)
	if err != nil {
		return err
	}
	return uc.keys.Delete(ctx, key.ID)
}

func (uc *APIKeyUseCase) owned(ctx context.Context, email, id string) (*entity.APIKey, error) {
	actor, err := uc.resolver.Resolve(ctx, email, "")
	if err != nil {
		return nil, err
	}
	key, err := uc.keys.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if key == nil {
		return nil, fmt.Errorf("%w: api key %s", domain.ErrNotFound, id)
	}
	if key.UserID != actor.User.ID {
		return nil, fmt.Errorf("%w: la api key pertenece a otro usuario", domain.ErrForbidden)
	}
	return key, nil
}

// Validate autentica una key: debe existir, estar activa y su dueño y su empresa principal
// también. Registra el uso (último acceso y contador) y devuelve el email del dueño.
func (uc *APIKeyUseCase) Validate(ctx context.Context, plain string) (string, error) {
	email, err := uc.validate(ctx, strings.TrimSpace(plain))
	if uc.validations != nil {
		result := "ok"
		if err != nil {
			result = "rejected"
		}
		uc.validations.WithLabelValues(result).Inc()
	}
	return email, err
}

func (uc *APIKeyUseCase) validate(ctx context.Context, plain string) (string, error) {
	if !strings.HasPrefix(plain, entity.APIKeyPrefix) {
		return "", domain.ErrUnauthorized
	}
	key, err := uc.keys.GetByHash(ctx, HashAPIKey(plain))
	if err != nil {
		return "", err
	}
	if key == nil || !key.Active {
		return "", domain.ErrUnauthorized
	}
	owner, err := uc.users.GetByID(ctx, key.UserID)
	if err != nil {
		return "", err
	}
	if owner == nil || !owner.Active {
		return "", domain.ErrUnauthorized
	}
	company, err := uc.companies.GetByID(ctx, owner.CompanyID)
	if err != nil {
		return "", err
	}
	if company == nil || !company.Active {
		return "", domain.ErrUnauthorized
	}
	if err := uc.keys.Touch(ctx, key.ID, entity.Now()); err != nil {
		return "", err
	}
	return owner.Email, nil
}

// APIKeyToResponse mapea la entidad a su DTO enmascarado.
func APIKeyToResponse(k *entity.APIKey) *dto.APIKeyResponse {
	if k == nil {
		return nil
	}
	return &dto.APIKeyResponse{
		ID:         k.ID,
		Name:       k.Name,
		Key:        k.Masked(),
		Active:     k.Active,
		CreatedAt:  k.CreatedAt,
		LastUsedAt: k.LastUsedAt,
		UsageCount: k.UsageCount,
	}
}
