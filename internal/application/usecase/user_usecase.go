package usecase

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/flota-api/internal/application/access"
	"github.com/jhoicas/flota-api/internal/application/audit"
	"github.com/jhoicas/flota-api/internal/application/dto"
	"github.com/jhoicas/flota-api/internal/application/ports"
	"github.com/jhoicas/flota-api/internal/domain"
	"github.com/jhoicas/flota-api/internal/domain/entity"
	"github.com/jhoicas/flota-api/internal/domain/repository"
	"github.com/jhoicas/flota-api/internal/domain/search"
)

// UserUseCase administración de usuarios (requiere canManageUsers) y perfil propio.
type UserUseCase struct {
	tx       repository.TxRunner
	users    repository.UserRepository
	resolver *access.Resolver
	audit    *audit.Recorder
	hasher   ports.PasswordHasher
	tokens   ports.TokenIssuer
	blobs    ports.BlobStore
	log      zerolog.Logger
}

// NewUserUseCase construye el caso de uso.
func NewUserUseCase(
	tx repository.TxRunner,
	users repository.UserRepository,
	resolver *access.Resolver,
	recorder *audit.Recorder,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	blobs ports.BlobStore,
	log zerolog.Logger,
) *UserUseCase {
	return &UserUseCase{
		tx:       tx,
		users:    users,
		resolver: resolver,
		audit:    recorder,
		hasher:   hasher,
		tokens:   tokens,
		blobs:    blobs,
		log:      log,
	}
}

func emailConflict(email string) error {
	return fmt.Errorf("%w: el email %s ya está registrado", domain.ErrConflict, email)
}

func parseRole(s string) (entity.Role, error) {
	role, ok := entity.ParseRole(s)
	if !ok {
		return "", fmt.Errorf("%w: rol desconocido %q", domain.ErrValidation, s)
	}
	return role, nil
}

// ensureNotLastAdmin falla si target es el último ADMIN activo del sistema.
// CountActiveAdmins bloquea las filas de los ADMIN hasta el fin de la transacción.
func ensureNotLastAdmin(ctx context.Context, users repository.UserRepository, target *entity.User, action string) error {
	if !target.IsActiveAdmin() {
		return nil
	}
	n, err := users.CountActiveAdmins(ctx)
	if err != nil {
		return err
	}
	if n <= 1 {
		return fmt.Errorf("%w: no se puede %s al último ADMIN activo", domain.ErrConflict, action)
	}
	return nil
}

// Create alta de usuario en la empresa resuelta.
func (uc *UserUseCase) Create(ctx context.Context, email, companySel string, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	in.Email = NormalizeEmail(in.Email)
	in.Name = CleanText(in.Name)
	if err := required("email", in.Email); err != nil {
		return nil, err
	}
	if err := required("name", in.Name); err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}
	role, err := parseRole(in.Role)
	if err != nil {
		return nil, err
	}
	actor, err := uc.resolver.Resolve(ctx, email, companySel)
	if err != nil {
		return nil, err
	}
	if err := actor.Require(access.ManageUsers); err != nil {
		return nil, err
	}
	hash, err := uc.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	now := entity.Now()
	user := &entity.User{
		ID:           uuid.New().String(),
		Email:        in.Email,
		PasswordHash: hash,
		Name:         in.Name,
		Role:         role,
		CompanyID:    actor.CompanyID,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err = uc.tx.Run(ctx, func(repos repository.Repositories) error {
		existing, err := repos.Users.GetByEmail(ctx, user.Email)
		if err != nil {
			return err
		}
		if existing != nil {
			return emailConflict(user.Email)
		}
		return repos.Users.Create(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	out := UserToResponse(user)
	uc.record(ctx, actor.Email(), entity.AuditCreate, nil, out, "usuario creado")
	return out, nil
}

// GetByID usuario de la empresa resuelta.
func (uc *UserUseCase) GetByID(ctx context.Context, email, companySel, id string) (*dto.UserResponse, error) {
	actor, err := uc.resolver.Resolve(ctx, email, companySel)
	if err != nil {
		return nil, err
	}
	if err := actor.Require(access.ManageUsers); err != nil {
		return nil, err
	}
	u, err := loadUser(ctx, uc.users, actor, id)
	if err != nil {
		return nil, err
	}
	return UserToResponse(u), nil
}

// Search usuarios cuya empresa principal es la resuelta.
func (uc *UserUseCase) Search(ctx context.Context, email, companySel string, criteria search.UserCriteria) (*dto.UserListResponse, error) {
	actor, err := uc.resolver.Resolve(ctx, email, companySel)
	if err != nil {
		return nil, err
	}
	if err := actor.Require(access.ManageUsers); err != nil {
		return nil, err
	}
	return toUserList(uc.users.Search(ctx, actor.CompanyID, criteria.Query()))
}

// ListCompany usuarios de la empresa resuelta; disponible para cualquier rol.
func (uc *UserUseCase) ListCompany(ctx context.Context, email, companySel string, criteria search.UserCriteria) (*dto.UserListResponse, error) {
	actor, err := uc.resolver.Resolve(ctx, email, companySel)
	if err != nil {
		return nil, err
	}
	return toUserList(uc.users.Search(ctx, actor.CompanyID, criteria.Query()))
}

// SearchAll usuarios de todas las empresas. Solo ADMIN.
func (uc *UserUseCase) SearchAll(ctx context.Context, email string, criteria search.UserCriteria) (*dto.UserListResponse, error) {
	actor, err := uc.resolver.Resolve(ctx, email, "")
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: solo un ADMIN lista usuarios de todas las empresas", domain.ErrForbidden)
	}
	return toUserList(uc.users.SearchAll(ctx, criteria.Query()))
}

func toUserList(res search.Result[*entity.User], err error) (*dto.UserListResponse, error) {
	if err != nil {
		return nil, err
	}
	items := make([]dto.UserResponse, 0, len(res.Items))
	for _, u := range res.Items {
		items = append(items, *UserToResponse(u))
	}
	return &dto.UserListResponse{Items: items, Page: pageOf(res)}, nil
}

// Info datos y permisos de un usuario. Sin email devuelve los del propio usuario; consultar a
// otro usuario requiere ADMIN.
func (uc *UserUseCase) Info(ctx context.Context, email string, in dto.UserInfoRequest) (*dto.UserInfoResponse, error) {
	actor, err := uc.resolver.Resolve(ctx, email, "")
	if err != nil {
		return nil, err
	}
	target := actor.User
	if wanted := NormalizeEmail(in.Email); wanted != "" && wanted != NormalizeEmail(actor.User.Email) {
		if !actor.IsAdmin() {
			return nil, fmt.Errorf("%w: solo un ADMIN consulta a otros usuarios", domain.ErrForbidden)
		}
		target, err = uc.users.GetByEmail(ctx, wanted)
		if err != nil {
			return nil, err
		}
		if target == nil {
			return nil, fmt.Errorf("%w: usuario %s", domain.ErrNotFound, wanted)
		}
	}
	return &dto.UserInfoResponse{
		UserResponse: *UserToResponse(target),
		Permissions:  PermissionsOf(target.Role),
	}, nil
}

// PermissionsOf permisos que concede un rol.
func PermissionsOf(role entity.Role) dto.PermissionsResponse {
	caps := role.Capabilities()
	return dto.PermissionsResponse{
		CanCreate:          caps.CanCreate,
		CanEdit:            caps.CanEdit,
		CanDelete:          caps.CanDelete,
		CanManageUsers:     caps.CanManageUsers,
		CanManageCompanies: caps.CanManageCompanies,
		IsAdmin:            role == entity.RoleAdmin,
	}
}

// Update edita nombre y email de un usuario de la empresa resuelta.
func (uc *UserUseCase) Update(ctx context.Context, email, companySel, id string, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	in.Email = NormalizeEmail(in.Email)
	in.Name = CleanText(in.Name)
	if err := required("email", in.Email); err != nil {
		return nil, err
	}
	if err := required("name", in.Name); err != nil {
		return nil, err
	}
	return uc.adminMutate(ctx, email, companySel, id, "usuario actualizado", func(repos repository.Repositories, _ *access.Actor, u *entity.User) error {
		if u.Email != in.Email {
			if err := ensureEmailFree(ctx, repos.Users, in.Email, u.ID); err != nil {
				return err
			}
		}
		u.Name = in.Name
		u.Email = in.Email
		return nil
	})
}

// ChangeRole cambia el rol; el último ADMIN activo no puede ser degradado.
func (uc *UserUseCase) ChangeRole(ctx context.Context, email, companySel, id, roleName string) (*dto.UserResponse, error) {
	role, err := parseRole(roleName)
	if err != nil {
		return nil, err
	}
	return uc.adminMutate(ctx, email, companySel, id, "rol cambiado a "+string(role), func(repos repository.Repositories, _ *access.Actor, u *entity.User) error {
		if role != entity.RoleAdmin {
			if err := ensureNotLastAdmin(ctx, repos.Users, u, "degradar"); err != nil {
				return err
			}
		}
		u.Role = role
		return nil
	})
}

// SetActive activa o desactiva un usuario. Nadie se desactiva a sí mismo y el último
// ADMIN activo no puede desactivarse.
func (uc *UserUseCase) SetActive(ctx context.Context, email, companySel, id string, active bool) (*dto.UserResponse, error) {
	note := "usuario activado"
	if !active {
		note = "usuario desactivado"
	}
	return uc.adminMutate(ctx, email, companySel, id, note, func(repos repository.Repositories, actor *access.Actor, u *entity.User) error {
		if !active {
			if u.ID == actor.User.ID {
				return fmt.Errorf("%w: no puede desactivar su propio usuario", domain.ErrValidation)
			}
			if err := ensureNotLastAdmin(ctx, repos.Users, u, "desactivar"); err != nil {
				return err
			}
		}
		u.Active = active
		return nil
	})
}

func (uc *UserUseCase) adminMutate(ctx context.Context, email, companySel, id, note string, apply func(repository.Repositories, *access.Actor, *entity.User) error) (*dto.UserResponse, error) {
	actor, err := uc.resolver.Resolve(ctx, email, companySel)
	if err != nil {
		return nil, err
	}
	if err := actor.Require(access.ManageUsers); err != nil {
		return nil, err
	}
	var before, after *dto.UserResponse
	err = uc.tx.Run(ctx, func(repos repository.Repositories) error {
		u, err := loadUser(ctx, repos.Users, actor, id)
		if err != nil {
			return err
		}
		before = UserToResponse(u)
		if err := apply(repos, actor, u); err != nil {
			return err
		}
		u.UpdatedAt = entity.Now()
		if err := repos.Users.Update(ctx, u); err != nil {
			return err
		}
		after = UserToResponse(u)
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.record(ctx, actor.Email(), entity.AuditUpdate, before, after, note)
	return after, nil
}

// Remove elimina un usuario junto con sus API keys, vínculos secundarios y foto.
func (uc *UserUseCase) Remove(ctx context.Context, email, companySel, id string) error {
	actor, err := uc.resolver.Resolve(ctx, email, companySel)
	if err != nil {
		return err
	}
	if err := actor.Require(access.ManageUsers, access.Delete); err != nil {
		return err
	}
	var removed *entity.User
	err = uc.tx.Run(ctx, func(repos repository.Repositories) error {
		u, err := loadUser(ctx, repos.Users, actor, id)
		if err != nil {
			return err
		}
		if u.ID == actor.User.ID {
			return fmt.Errorf("%w: no puede eliminar su propio usuario", domain.ErrValidation)
		}
		if err := ensureNotLastAdmin(ctx, repos.Users, u, "eliminar"); err != nil {
			return err
		}
		if err := repos.APIKeys.DeleteByUser(ctx, u.ID); err != nil {
			return err
		}
		removed = u
		return repos.Users.Delete(ctx, u.ID)
	})
	if err != nil {
		return err
	}
	discardBlobs(ctx, uc.blobs, uc.log, []string{removed.PhotoRef})
	uc.record(ctx, actor.Email(), entity.AuditDelete, UserToResponse(removed), nil, "usuario eliminado")
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Perfil propio
// ──────────────────────────────────────────────────────────────────────────────

// Profile datos del usuario autenticado.
func (uc *UserUseCase) Profile(ctx context.Context, email string) (*dto.UserResponse, error) {
	actor, err := uc.resolver.Resolve(ctx, email, "")
	if err != nil {
		return nil, err
	}
	return UserToResponse(actor.User), nil
}

// UpdateProfile cambia el nombre visible.
func (uc *UserUseCase) UpdateProfile(ctx context.Context, email string, in dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	name := CleanText(in.Name)
	if err := required("name", name); err != nil {
		return nil, err
	}
	return uc.selfMutate(ctx, email, "perfil actualizado", func(_ repository.Repositories, u *entity.User) error {
		u.Name = name
		return nil
	})
}

// UpdateEmail cambia el email propio verificando la contraseña actual y emite un token nuevo.
func (uc *UserUseCase) UpdateEmail(ctx context.Context, email string, in dto.UpdateEmailRequest) (*dto.UpdateEmailResponse, error) {
	newEmail := NormalizeEmail(in.NewEmail)
	if err := required("new_email", newEmail); err != nil {
		return nil, err
	}
	out, err := uc.selfMutate(ctx, email, "email actualizado", func(repos repository.Repositories, u *entity.User) error {
		if !uc.hasher.Verify(in.CurrentPassword, u.PasswordHash) {
			return fmt.Errorf("%w: la contraseña actual es incorrecta", domain.ErrValidation)
		}
		if newEmail == u.Email {
			return nil
		}
		if err := ensureEmailFree(ctx, repos.Users, newEmail, u.ID); err != nil {
			return err
		}
		u.Email = newEmail
		return nil
	})
	if err != nil {
		return nil, err
	}
	token, err := uc.tokens.Issue(out.Email)
	if err != nil {
		return nil, err
	}
	return &dto.UpdateEmailResponse{Token: token, User: *out}, nil
}

// ChangePassword cambia la contraseña propia; la nueva debe ser distinta de la actual.
func (uc *UserUseCase) ChangePassword(ctx context.Context, email string, in dto.ChangePasswordRequest) error {
	if err := validatePassword(in.NewPassword); err != nil {
		return err
	}
	if in.NewPassword == in.CurrentPassword {
		return fmt.Errorf("%w: la nueva contraseña debe ser distinta de la actual", domain.ErrValidation)
	}
	hash, err := uc.hasher.Hash(in.NewPassword)
	if err != nil {
		return err
	}
	_, err = uc.selfMutate(ctx, email, "contraseña cambiada", func(_ repository.Repositories, u *entity.User) error {
		if !uc.hasher.Verify(in.CurrentPassword, u.PasswordHash) {
			return fmt.Errorf("%w: la contraseña actual es incorrecta", domain.ErrValidation)
		}
		u.PasswordHash = hash
		return nil
	})
	return err
}

// SetNotifications preferencia de avisos por correo.
func (uc *UserUseCase) SetNotifications(ctx context.Context, email string, enabled bool) (*dto.UserResponse, error) {
	return uc.selfMutate(ctx, email, "notificaciones actualizadas", func(_ repository.Repositories, u *entity.User) error {
		u.EmailNotifications = enabled
		return nil
	})
}

// UploadPhoto reemplaza la foto de perfil.
func (uc *UserUseCase) UploadPhoto(ctx context.Context, email string, photo ports.Upload) (*dto.UserResponse, error) {
	if len(photo.Data) == 0 {
		return nil, fmt.Errorf("%w: archivo vacío", domain.ErrValidation)
	}
	refs, err := storeUploads(ctx, uc.blobs, uc.log, []ports.Upload{photo})
	if err != nil {
		return nil, err
	}
	var previous string
	out, err := uc.selfMutate(ctx, email, "foto de perfil actualizada", func(_ repository.Repositories, u *entity.User) error {
		previous = u.PhotoRef
		u.PhotoRef = refs[0]
		return nil
	})
	if err != nil {
		discardBlobs(ctx, uc.blobs, uc.log, refs)
		return nil, err
	}
	discardBlobs(ctx, uc.blobs, uc.log, []string{previous})
	return out, nil
}

// DeletePhoto elimina la foto de perfil.
func (uc *UserUseCase) DeletePhoto(ctx context.Context, email string) (*dto.UserResponse, error) {
	var previous string
	out, err := uc.selfMutate(ctx, email, "foto de perfil eliminada", func(_ repository.Repositories, u *entity.User) error {
		if u.PhotoRef == "" {
			return fmt.Errorf("%w: el usuario no tiene foto", domain.ErrNotFound)
		}
		previous = u.PhotoRef
		u.PhotoRef = ""
		return nil
	})
	if err != nil {
		return nil, err
	}
	discardBlobs(ctx, uc.blobs, uc.log, []string{previous})
	return out, nil
}

// PhotoOf devuelve la referencia de la foto de perfil del usuario autenticado.
func (uc *UserUseCase) PhotoOf(ctx context.Context, email string) (string, error) {
	actor, err := uc.resolver.Resolve(ctx, email, "")
	if err != nil {
		return "", err
	}
	if actor.User.PhotoRef == "" {
		return "", fmt.Errorf("%w: el usuario no tiene foto", domain.ErrNotFound)
	}
	return actor.User.PhotoRef, nil
}

func (uc *UserUseCase) selfMutate(ctx context.Context, email, note string, apply func(repository.Repositories, *entity.User) error) (*dto.UserResponse, error) {
	actor, err := uc.resolver.Resolve(ctx, email, "")
	if err != nil {
		return nil, err
	}
	var before, after *dto.UserResponse
	err = uc.tx.Run(ctx, func(repos repository.Repositories) error {
		u, err := repos.Users.GetByID(ctx, actor.User.ID)
		if err != nil {
			return err
		}
		if u == nil {
			return fmt.Errorf("%w: usuario %s", domain.ErrNotFound, email)
		}
		before = UserToResponse(u)
		if err := apply(repos, u); err != nil {
			return err
		}
		u.UpdatedAt = entity.Now()
		if err := repos.Users.Update(ctx, u); err != nil {
			return err
		}
		after = UserToResponse(u)
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.record(ctx, actor.Email(), entity.AuditUpdate, before, after, note)
	return after, nil
}

func (uc *UserUseCase) record(ctx context.Context, actorEmail string, action entity.AuditAction, before, after *dto.UserResponse, note string) {
	ref := after
	if ref == nil {
		ref = before
	}
	e := audit.Entry{
		Action:     action,
		Kind:       entity.KindUser,
		EntityID:   ref.ID,
		ActorEmail: actorEmail,
		CompanyID:  ref.CompanyID,
		Note:       note,
	}
	if before != nil {
		e.Before = before
	}
	if after != nil {
		e.After = after
	}
	uc.audit.Record(ctx, e)
}

func ensureEmailFree(ctx context.Context, users repository.UserRepository, email, selfID string) error {
	other, err := users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if other != nil && other.ID != selfID {
		return emailConflict(email)
	}
	return nil
}

// loadUser carga un usuario cuya empresa principal sea la del actor.
func loadUser(ctx context.Context, repo repository.UserRepository, actor *access.Actor, id string) (*entity.User, error) {
	u, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("%w: usuario %s", domain.ErrNotFound, id)
	}
	if err := actor.EnsureSameTenant(u.CompanyID); err != nil {
		return nil, err
	}
	return u, nil
}

// UserToResponse mapea la entidad a su DTO (sin hash de contraseña).
func UserToResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	secondary := slices.Clone(u.SecondaryCompanyIDs)
	if secondary == nil {
		secondary = []string{}
	}
	return &dto.UserResponse{
		ID:                  u.ID,
		Email:               u.Email,
		Name:                u.Name,
		Role:                string(u.Role),
		CompanyID:           u.CompanyID,
		SecondaryCompanyIDs: secondary,
		Active:              u.Active,
		PhotoRef:            u.PhotoRef,
		EmailNotifications:  u.EmailNotifications,
		CreatedAt:           u.CreatedAt,
		UpdatedAt:           u.UpdatedAt,
	}
}
