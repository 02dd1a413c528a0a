package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/flota-api/internal/domain/entity"
	"github.com/jhoicas/flota-api/internal/domain/repository"
	"github.com/jhoicas/flota-api/internal/domain/search"
)

var _ repository.UserRepository = (*UserRepo)(nil)

const userColumns = `id, email, password_hash, name, role, company_id, active, photo_ref, email_notifications,
	created_at, updated_at,
	ARRAY(SELECT uc.company_id::text FROM user_companies uc WHERE uc.user_id = users.id ORDER BY uc.created_at, uc.company_id)`

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios.
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

func scanUser(row scanner) (*entity.User, error) {
	var u entity.User
	var role string
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &role, &u.CompanyID, &u.Active,
		&u.PhotoRef, &u.EmailNotifications, &u.CreatedAt, &u.UpdatedAt, &u.SecondaryCompanyIDs)
	if err != nil {
		return nil, err
	}
	u.Role = entity.Role(role)
	return &u, nil
}

// Create persiste el usuario y sus empresas secundarias.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, name, role, company_id, active, photo_ref,
			email_notifications, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		u.ID, u.Email, u.PasswordHash, u.Name, string(u.Role), u.CompanyID, u.Active, u.PhotoRef,
		u.EmailNotifications, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return wrapWrite(err, "insert user")
	}
	return r.linkCompanies(ctx, u)
}

// Update reemplaza los datos y el conjunto de empresas secundarias.
func (r *UserRepo) Update(ctx context.Context, u *entity.User) error {
	query := `
		UPDATE users
		SET email = $2, password_hash = $3, name = $4, role = $5, company_id = $6, active = $7,
			photo_ref = $8, email_notifications = $9, updated_at = $10
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		u.ID, u.Email, u.PasswordHash, u.Name, string(u.Role), u.CompanyID, u.Active,
		u.PhotoRef, u.EmailNotifications, u.UpdatedAt,
	)
	if err := expectRow(tag, err, "update user", u.ID); err != nil {
		return err
	}
	keep := u.SecondaryCompanyIDs
	if keep == nil {
		keep = []string{}
	}
	if _, err := r.q.Exec(ctx,
		`DELETE FROM user_companies WHERE user_id = $1 AND NOT (company_id::text = ANY($2::text[]))`,
		u.ID, keep); err != nil {
		return wrapWrite(err, "unlink user companies")
	}
	return r.linkCompanies(ctx, u)
}

func (r *UserRepo) linkCompanies(ctx context.Context, u *entity.User) error {
	if len(u.SecondaryCompanyIDs) == 0 {
		return nil
	}
	query := `
		INSERT INTO user_companies (user_id, company_id, created_at)
		SELECT $1, c::uuid, $3 FROM unnest($2::text[]) AS c
		ON CONFLICT DO NOTHING`
	_, err := r.q.Exec(ctx, query, u.ID, u.SecondaryCompanyIDs, u.UpdatedAt)
	return wrapWrite(err, "link user companies")
}

// Delete borra al usuario; user_companies y api_keys caen en cascada.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	return wrapWrite(err, "delete user")
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if !isUUID(id) {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower(btrim($1))`, email)
}

func (r *UserRepo) getOne(ctx context.Context, query string, arg any) (*entity.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (r *UserRepo) Search(ctx context.Context, companyID string, q search.Query[*entity.User]) (search.Result[*entity.User], error) {
	return paginate(ctx, r.q, "users", userColumns, &tenantScope{column: "company_id", value: companyID}, q, scanUser)
}

func (r *UserRepo) SearchAll(ctx context.Context, q search.Query[*entity.User]) (search.Result[*entity.User], error) {
	return paginate(ctx, r.q, "users", userColumns, nil, q, scanUser)
}

// CountActiveAdmins bloquea las filas contadas para serializar la regla del último ADMIN.
func (r *UserRepo) CountActiveAdmins(ctx context.Context) (int, error) {
	query := `
		SELECT count(*) FROM (
			SELECT id FROM users WHERE role = $1 AND active FOR UPDATE
		) admins`
	var n int
	if err := r.q.QueryRow(ctx, query, string(entity.RoleAdmin)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count active admins: %w", err)
	}
	return n, nil
}
