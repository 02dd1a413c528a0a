package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/flota-api/internal/domain/entity"
	"github.com/jhoicas/flota-api/internal/domain/repository"
)

var (
	_ repository.APIKeyRepository        = (*APIKeyRepo)(nil)
	_ repository.PasswordResetRepository = (*PasswordResetRepo)(nil)
)

const apiKeyColumns = `id, user_id, name, key_hash, key_suffix, active, created_at, last_used_at, usage_count`

// APIKeyRepo API keys en PostgreSQL. Solo se guarda el hash SHA-256 de la clave.
type APIKeyRepo struct {
	q Querier
}

func NewAPIKeyRepository(q Querier) *APIKeyRepo {
	return &APIKeyRepo{q: q}
}

func scanAPIKey(row scanner) (*entity.APIKey, error) {
	var k entity.APIKey
	err := row.Scan(&k.ID, &k.UserID, &k.Name, &k.KeyHash, &k.KeySuffix, &k.Active, &k.CreatedAt,
		&k.LastUsedAt, &k.UsageCount)
	if err != nil {
		return nil, err
	}
	return &k, nil
}

func (r *APIKeyRepo) Create(ctx context.Context, k *entity.APIKey) error {
	query := `
		INSERT INTO api_keys (` + apiKeyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		k.ID, k.UserID, k.Name, k.KeyHash, k.KeySuffix, k.Active, k.CreatedAt, k.LastUsedAt, k.UsageCount,
	)
	return wrapWrite(err, "insert api key")
}

func (r *APIKeyRepo) Update(ctx context.Context, k *entity.APIKey) error {
	tag, err := r.q.Exec(ctx, `UPDATE api_keys SET name = $2, active = $3 WHERE id = $1`, k.ID, k.Name, k.Active)
	return expectRow(tag, err, "update api key", k.ID)
}

func (r *APIKeyRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM api_keys WHERE id = $1`, id)
	return wrapWrite(err, "delete api key")
}

func (r *APIKeyRepo) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM api_keys WHERE user_id = $1`, userID)
	return wrapWrite(err, "delete user api keys")
}

func (r *APIKeyRepo) GetByID(ctx context.Context, id string) (*entity.APIKey, error) {
	if !isUUID(id) {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+apiKeyColumns+` FROM api_keys WHERE id = $1`, id)
}

func (r *APIKeyRepo) GetByHash(ctx context.Context, hash string) (*entity.APIKey, error) {
	return r.getOne(ctx, `SELECT `+apiKeyColumns+` FROM api_keys WHERE key_hash = $1`, hash)
}

func (r *APIKeyRepo) getOne(ctx context.Context, query string, arg any) (*entity.APIKey, error) {
	k, err := scanAPIKey(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get api key: %w", err)
	}
	return k, nil
}

func (r *APIKeyRepo) ListByUser(ctx context.Context, userID string) ([]*entity.APIKey, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+apiKeyColumns+` FROM api_keys WHERE user_id = $1 ORDER BY created_at DESC, id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	out, err := collect(rows, scanAPIKey)
	if err != nil {
		return nil, fmt.Errorf("scan api keys: %w", err)
	}
	return out, nil
}

func (r *APIKeyRepo) Touch(ctx context.Context, id string, at time.Time) error {
	_, err := r.q.Exec(ctx,
		`UPDATE api_keys SET last_used_at = $2, usage_count = usage_count + 1 WHERE id = $1`, id, at)
	return wrapWrite(err, "touch api key")
}

const resetColumns = `id, token, email, expires_at, consumed, created_at`

// PasswordResetRepo tokens de recuperación de contraseña en PostgreSQL.
type PasswordResetRepo struct {
	q Querier
}

func NewPasswordResetRepository(q Querier) *PasswordResetRepo {
	return &PasswordResetRepo{q: q}
}

func scanResetToken(row scanner) (*entity.PasswordResetToken, error) {
	var t entity.PasswordResetToken
	if err := row.Scan(&t.ID, &t.Token, &t.Email, &t.ExpiresAt, &t.Consumed, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *PasswordResetRepo) Create(ctx context.Context, t *entity.PasswordResetToken) error {
	_, err := r.q.Exec(ctx, `INSERT INTO password_reset_tokens (`+resetColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		t.ID, t.Token, t.Email, t.ExpiresAt, t.Consumed, t.CreatedAt)
	return wrapWrite(err, "insert reset token")
}

func (r *PasswordResetRepo) GetByToken(ctx context.Context, token string) (*entity.PasswordResetToken, error) {
	return r.getOne(ctx, `SELECT `+resetColumns+` FROM password_reset_tokens WHERE token = $1`, token)
}

func (r *PasswordResetRepo) GetByTokenForUpdate(ctx context.Context, token string) (*entity.PasswordResetToken, error) {
	return r.getOne(ctx, `SELECT `+resetColumns+` FROM password_reset_tokens WHERE token = $1 FOR UPDATE`, token)
}

func (r *PasswordResetRepo) getOne(ctx context.Context, query, token string) (*entity.PasswordResetToken, error) {
	t, err := scanResetToken(r.q.QueryRow(ctx, query, token))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get reset token: %w", err)
	}
	return t, nil
}

func (r *PasswordResetRepo) MarkConsumed(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `UPDATE password_reset_tokens SET consumed = TRUE WHERE id = $1`, id)
	return expectRow(tag, err, "consume reset token", id)
}

func (r *PasswordResetRepo) DeleteByEmail(ctx context.Context, email string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM password_reset_tokens WHERE lower(email) = lower($1)`, email)
	return wrapWrite(err, "delete reset tokens")
}

func (r *PasswordResetRepo) DeletePurgeable(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM password_reset_tokens WHERE consumed OR expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("purge reset tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
