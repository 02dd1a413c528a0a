package auth

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/jhoicas/flota-api/internal/application/audit"
	"github.com/jhoicas/flota-api/internal/application/dto"
	"github.com/jhoicas/flota-api/internal/application/ports"
	"github.com/jhoicas/flota-api/internal/application/usecase"
	"github.com/jhoicas/flota-api/internal/domain"
	"github.com/jhoicas/flota-api/internal/domain/entity"
	"github.com/jhoicas/flota-api/internal/domain/repository"
)

// ResetConfig datos para armar el enlace del correo de recuperación.
type ResetConfig struct {
	BaseURL string // ej. https://app.ejemplo.com/reset-password
	AppName string
}

// AuthUseCase casos de uso de autenticación: registro, login y recuperación de contraseña.
type AuthUseCase struct {
	tx       repository.TxRunner
	repos    repository.Repositories
	hasher   ports.PasswordHasher
	tokens   ports.TokenIssuer
	mailer   ports.EmailSender
	audit    *audit.Recorder
	resetCfg ResetConfig
	failures *prometheus.CounterVec
	log      zerolog.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthUseCase construye el caso de uso. failures (label "reason") puede ser nil.
func NewAuthUseCase(
	tx repository.TxRunner,
	repos repository.Repositories,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	mailer ports.EmailSender,
	recorder *audit.Recorder,
	resetCfg ResetConfig,
	failures *prometheus.CounterVec,
	log zerolog.Logger,
) *AuthUseCase {
	return &AuthUseCase{
		tx:       tx,
		repos:    repos,
		hasher:   hasher,
		tokens:   tokens,
		mailer:   mailer,
		audit:    recorder,
		resetCfg: resetCfg,
		failures: failures,
		log:      log,
	}
}

// Login verifica email, contraseña, usuario activo y empresa principal activa. Cualquier
// fallo se reporta como domain.ErrInvalidCredentials; el motivo real solo va al log y a métricas.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	email := usecase.NormalizeEmail(in.Email)
	user, reason, err := uc.checkLogin(ctx, email, in.Password)
	if err != nil {
		return nil, err
	}
	if reason != "" {
		if uc.failures != nil {
			uc.failures.WithLabelValues(reason).Inc()
		}
		uc.log.Info().Str("email", email).Str("reason", reason).Msg("login rechazado")
		return nil, domain.ErrInvalidCredentials
	}
	token, err := uc.tokens.Issue(user.Email)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{Token: token, User: *usecase.UserToResponse(user)}, nil
}

func (uc *AuthUseCase) checkLogin(ctx context.Context, email, password string) (*entity.User, string, error) {
	user, err := uc.repos.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		// Se compara igual contra un hash fijo para que el tiempo de respuesta no delate el email.
		uc.hasher.Verify(password, uc.dummy())
		return nil, "unknown_user", nil
	}
	if !uc.hasher.Verify(password, user.PasswordHash) {
		return nil, "bad_password", nil
	}
	if !user.Active {
		return nil, "inactive_user", nil
	}
	company, err := uc.repos.Companies.GetByID(ctx, user.CompanyID)
	if err != nil {
		return nil, "", err
	}
	if company == nil || !company.Active {
		return nil, "inactive_company", nil
	}
	return user, "", nil
}

func (uc *AuthUseCase) dummy() string {
	uc.dummyOnce.Do(func() {
		h, err := uc.hasher.Hash(uuid.NewString())
		if err != nil {
			uc.log.Warn().Err(err).Msg("no se pudo generar el hash de referencia")
			return
		}
		uc.dummyHash = h
	})
	return uc.dummyHash
}

// Register crea atómicamente una empresa y su usuario ADMIN, y devuelve la sesión iniciada.
func (uc *AuthUseCase) Register(ctx context.Context, in dto.RegisterRequest) (*dto.LoginResponse, error) {
	email := usecase.NormalizeEmail(in.Email)
	companyName := usecase.CleanText(in.CompanyName)
	name := usecase.CleanText(in.Name)
	for _, f := range [][2]string{{"company_name", companyName}, {"name", name}, {"email", email}} {
		if f[1] == "" {
			return nil, fmt.Errorf("%w: %s es requerido", domain.ErrValidation, f[0])
		}
	}
	if len(in.Password) < usecase.MinPasswordLength {
		return nil, fmt.Errorf("%w: la contraseña debe tener al menos %d caracteres", domain.ErrValidation, usecase.MinPasswordLength)
	}
	hash, err := uc.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	now := entity.Now()
	company := &entity.Company{
		ID:        uuid.New().String(),
		Name:      companyName,
		TaxID:     usecase.CleanText(in.TaxID),
		Phone:     in.Phone,
		Email:     usecase.CleanText(in.CompanyEmail),
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	user := &entity.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         entity.RoleAdmin,
		CompanyID:    company.ID,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err = uc.tx.Run(ctx, func(repos repository.Repositories) error {
		existingUser, err := repos.Users.GetByEmail(ctx, email)
		if err != nil {
			return err
		}
		if existingUser != nil {
			return fmt.Errorf("%w: el email %s ya está registrado", domain.ErrConflict, email)
		}
		existingCompany, err := repos.Companies.GetByName(ctx, companyName)
		if err != nil {
			return err
		}
		if existingCompany != nil {
			return fmt.Errorf("%w: ya existe una empresa con el nombre %s", domain.ErrConflict, companyName)
		}
		if err := repos.Companies.Create(ctx, company); err != nil {
			return err
		}
		return repos.Users.Create(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	userOut := usecase.UserToResponse(user)
	uc.audit.Record(ctx, audit.Entry{
		Action:     entity.AuditCreate,
		Kind:       entity.KindCompany,
		EntityID:   company.ID,
		ActorEmail: email,
		CompanyID:  company.ID,
		After:      usecase.CompanyToResponse(company),
		Note:       "registro",
	})
	uc.audit.Record(ctx, audit.Entry{
		Action:     entity.AuditCreate,
		Kind:       entity.KindUser,
		EntityID:   user.ID,
		ActorEmail: email,
		CompanyID:  company.ID,
		After:      userOut,
		Note:       "registro",
	})

	token, err := uc.tokens.Issue(user.Email)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{Token: token, User: *userOut}, nil
}

// RequestPasswordReset reemplaza cualquier token pendiente del email por uno nuevo (1h) y lo
// envía por correo. Si el correo falla se devuelve domain.ErrDependency para que el usuario reintente.
func (uc *AuthUseCase) RequestPasswordReset(ctx context.Context, in dto.PasswordResetRequest) error {
	email := usecase.NormalizeEmail(in.Email)
	user, err := uc.repos.Users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("%w: usuario %s", domain.ErrNotFound, email)
	}
	if !user.Active {
		return fmt.Errorf("%w: usuario inactivo", domain.ErrForbidden)
	}
	now := entity.Now()
	tok := &entity.PasswordResetToken{
		ID:        uuid.New().String(),
		Token:     uuid.New().String(),
		Email:     user.Email,
		ExpiresAt: now.Add(entity.PasswordResetTTL),
		CreatedAt: now,
	}
	err = uc.tx.Run(ctx, func(repos repository.Repositories) error {
		if err := repos.ResetTokens.DeleteByEmail(ctx, user.Email); err != nil {
			return err
		}
		return repos.ResetTokens.Create(ctx, tok)
	})
	if err != nil {
		return err
	}

	subject := "Recuperación de contraseña"
	if uc.resetCfg.AppName != "" {
		subject += " - " + uc.resetCfg.AppName
	}
	if err := uc.mailer.Send(ctx, user.Email, subject, uc.resetBody(user.Name, tok.Token)); err != nil {
		uc.log.Error().Err(err).Str("email", user.Email).Msg("envío de correo de recuperación")
		return fmt.Errorf("%w: no se pudo enviar el correo de recuperación", domain.ErrDependency)
	}
	return nil
}

func (uc *AuthUseCase) resetBody(name, token string) string {
	link := token
	if uc.resetCfg.BaseURL != "" {
		link = uc.resetCfg.BaseURL + "?token=" + url.QueryEscape(token)
	}
	return fmt.Sprintf("Hola %s,\n\nRecibimos una solicitud para restablecer su contraseña.\n"+
		"Use el siguiente enlace dentro de la próxima hora:\n\n%s\n\n"+
		"Si usted no lo solicitó, ignore este mensaje.\n", name, link)
}

// ValidateResetToken indica si el token existe, no fue usado y no venció.
func (uc *AuthUseCase) ValidateResetToken(ctx context.Context, token string) (bool, error) {
	t, err := uc.repos.ResetTokens.GetByToken(ctx, strings.TrimSpace(token))
	if err != nil {
		return false, err
	}
	return t != nil && t.IsValid(entity.Now()), nil
}

// RedeemPasswordReset cambia la contraseña y marca el token como usado en la misma transacción.
func (uc *AuthUseCase) RedeemPasswordReset(ctx context.Context, in dto.PasswordResetConfirmRequest) error {
	if len(in.NewPassword) < usecase.MinPasswordLength {
		return fmt.Errorf("%w: la contraseña debe tener al menos %d caracteres", domain.ErrValidation, usecase.MinPasswordLength)
	}
	hash, err := uc.hasher.Hash(in.NewPassword)
	if err != nil {
		return err
	}
	var before, after *dto.UserResponse
	err = uc.tx.Run(ctx, func(repos repository.Repositories) error {
		t, err := repos.ResetTokens.GetByTokenForUpdate(ctx, strings.TrimSpace(in.Token))
		if err != nil {
			return err
		}
		if t == nil || !t.IsValid(entity.Now()) {
			return fmt.Errorf("%w: token inválido o expirado", domain.ErrValidation)
		}
		user, err := repos.Users.GetByEmail(ctx, t.Email)
		if err != nil {
			return err
		}
		if user == nil {
			return fmt.Errorf("%w: usuario %s", domain.ErrNotFound, t.Email)
		}
		before = usecase.UserToResponse(user)
		user.PasswordHash = hash
		user.UpdatedAt = entity.Now()
		if err := repos.Users.Update(ctx, user); err != nil {
			return err
		}
		after = usecase.UserToResponse(user)
		return repos.ResetTokens.MarkConsumed(ctx, t.ID)
	})
	if err != nil {
		return err
	}
	uc.audit.Record(ctx, audit.Entry{
		Action:     entity.AuditUpdate,
		Kind:       entity.KindUser,
		EntityID:   after.ID,
		ActorEmail: after.Email,
		CompanyID:  after.CompanyID,
		Before:     before,
		After:      after,
		Note:       "contraseña restablecida",
	})
	return nil
}

// PurgeResetTokens borra tokens vencidos o usados. Lo invoca el scheduler.
func (uc *AuthUseCase) PurgeResetTokens(ctx context.Context) (int64, error) {
	return uc.repos.ResetTokens.DeletePurgeable(ctx, entity.Now())
}
