package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/jhoicas/flota-api/internal/domain"
	"github.com/jhoicas/flota-api/internal/domain/entity"
	"github.com/jhoicas/flota-api/internal/domain/repository"
)

var (
	_ repository.APIKeyRepository        = (*APIKeyRepo)(nil)
	_ repository.PasswordResetRepository = (*ResetTokenRepo)(nil)
)

// APIKeyRepo implementación en memoria de APIKeyRepository.
type APIKeyRepo struct{ v view }

func (r *APIKeyRepo) Create(_ context.Context, k *entity.APIKey) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.users[k.UserID]; !ok {
			return fmt.Errorf("%w: usuario %s inexistente", domain.ErrConflict, k.UserID)
		}
		for _, other := range st.apiKeys {
			if other.ID == k.ID || other.KeyHash == k.KeyHash {
				return fmt.Errorf("%w: api key duplicada", domain.ErrConflict)
			}
		}
		st.apiKeys[k.ID] = k.Clone()
		return nil
	})
}

func (r *APIKeyRepo) Update(_ context.Context, k *entity.APIKey) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.apiKeys[k.ID]; !ok {
			return fmt.Errorf("%w: api key %s", domain.ErrNotFound, k.ID)
		}
		st.apiKeys[k.ID] = k.Clone()
		return nil
	})
}

func (r *APIKeyRepo) Delete(_ context.Context, id string) error {
	return r.v.write(func(st *state) error {
		delete(st.apiKeys, id)
		return nil
	})
}

func (r *APIKeyRepo) DeleteByUser(_ context.Context, userID string) error {
	return r.v.write(func(st *state) error {
		for id, k := range st.apiKeys {
			if k.UserID == userID {
				delete(st.apiKeys, id)
			}
		}
		return nil
	})
}

func (r *APIKeyRepo) GetByID(_ context.Context, id string) (*entity.APIKey, error) {
	var out *entity.APIKey
	err := r.v.read(func(st *state) error {
		out = st.apiKeys[id].Clone()
		return nil
	})
	return out, err
}

func (r *APIKeyRepo) GetByHash(_ context.Context, hash string) (*entity.APIKey, error) {
	var out *entity.APIKey
	err := r.v.read(func(st *state) error {
		for _, k := range st.apiKeys {
			if k.KeyHash == hash {
				out = k.Clone()
				return nil
			}
		}
		return nil
	})
	return out, err
}

// ListByUser más recientes primero.
func (r *APIKeyRepo) ListByUser(_ context.Context, userID string) ([]*entity.APIKey, error) {
	out := []*entity.APIKey{}
	err := r.v.read(func(st *state) error {
		for _, k := range st.apiKeys {
			if k.UserID == userID {
				out = append(out, k.Clone())
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *entity.APIKey) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, err
}

func (r *APIKeyRepo) Touch(_ context.Context, id string, at time.Time) error {
	return r.v.write(func(st *state) error {
		k, ok := st.apiKeys[id]
		if !ok {
			return nil
		}
		t := at
		k.LastUsedAt = &t
		k.UsageCount++
		return nil
	})
}

// ResetTokenRepo implementación en memoria de PasswordResetRepository.
type ResetTokenRepo struct{ v view }

func (r *ResetTokenRepo) Create(_ context.Context, t *entity.PasswordResetToken) error {
	cp := *t
	return r.v.write(func(st *state) error {
		for _, other := range st.resetTokens {
			if other.Token == t.Token {
				return fmt.Errorf("%w: token duplicado", domain.ErrConflict)
			}
		}
		st.resetTokens[t.ID] = &cp
		return nil
	})
}

func (r *ResetTokenRepo) GetByToken(_ context.Context, token string) (*entity.PasswordResetToken, error) {
	var out *entity.PasswordResetToken
	err := r.v.read(func(st *state) error {
		for _, t := range st.resetTokens {
			if t.Token == token {
				cp := *t
				out = &cp
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *ResetTokenRepo) GetByTokenForUpdate(ctx context.Context, token string) (*entity.PasswordResetToken, error) {
	return r.GetByToken(ctx, token)
}

func (r *ResetTokenRepo) MarkConsumed(_ context.Context, id string) error {
	return r.v.write(func(st *state) error {
		t, ok := st.resetTokens[id]
		if !ok {
			return fmt.Errorf("%w: token %s", domain.ErrNotFound, id)
		}
		t.Consumed = true
		return nil
	})
}

func (r *ResetTokenRepo) DeleteByEmail(_ context.Context, email string) error {
	return r.v.write(func(st *state) error {
		for id, t := range st.resetTokens {
			if strings.EqualFold(t.Email, email) {
				delete(st.resetTokens, id)
			}
		}
		return nil
	})
}

func (r *ResetTokenRepo) DeletePurgeable(_ context.Context, now time.Time) (int64, error) {
	var n int64
	err := r.v.write(func(st *state) error {
		for id, t := range st.resetTokens {
			if t.Consumed || now.After(t.ExpiresAt) {
				delete(st.resetTokens, id)
				n++
			}
		}
		return nil
	})
	return n, err
}
