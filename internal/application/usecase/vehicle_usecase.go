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

// VehicleUseCase flujos de vehículos: toda operación pasa por el resolver de tenant y las
// mutaciones se ejecutan en una transacción y se auditan después del commit.
type VehicleUseCase struct {
	tx       repository.TxRunner
	vehicles repository.VehicleRepository
	resolver *access.Resolver
	audit    *audit.Recorder
	blobs    ports.BlobStore
	mailer   ports.EmailSender
	log      zerolog.Logger
}

// NewVehicleUseCase construye el caso de uso.
func NewVehicleUseCase(
	tx repository.TxRunner,
	vehicles repository.VehicleRepository,
	resolver *access.Resolver,
	recorder *audit.Recorder,
	blobs ports.BlobStore,
	mailer ports.EmailSender,
	log zerolog.Logger,
) *VehicleUseCase {
	return &VehicleUseCase{
		tx:       tx,
		vehicles: vehicles,
		resolver: resolver,
		audit:    recorder,
		blobs:    blobs,
		mailer:   mailer,
		log:      log,
	}
}

func validateVehicle(in *dto.VehicleRequest) error {
	in.Plate = entity.NormalizePlate(in.Plate)
	in.Model = CleanText(in.Model)
	in.Brand = CleanText(in.Brand)
	in.Notes = CleanText(in.Notes)
	if err := required("plate", in.Plate); err != nil {
		return err
	}
	if err := required("model", in.Model); err != nil {
		return err
	}
	if err := required("brand", in.Brand); err != nil {
		return err
	}
	if in.Mileage < 0 {
		return fmt.Errorf("%w: mileage no puede ser negativo", domain.ErrValidation)
	}
	if in.Mileage > entity.MaxMileage {
		return fmt.Errorf("%w: mileage no puede superar %d", domain.ErrValidation, entity.MaxMileage)
	}
	if in.Price != nil && in.Price.IsNegative() {
		return fmt.Errorf("%w: price no puede ser negativo", domain.ErrValidation)
	}
	if in.Price != nil && in.Price.GreaterThan(entity.MaxPrice) {
		return fmt.Errorf("%w: price no puede superar %s", domain.ErrValidation, entity.MaxPrice)
	}
	return nil
}

func plateConflict(plate string) error {
	return fmt.Errorf("%w: ya existe un vehículo con la placa %s en la empresa", domain.ErrConflict, plate)
}

// Create registra un vehículo en la empresa resuelta. Las fotos se guardan antes de la
// transacción y se descartan si ésta falla.
func (uc *VehicleUseCase) Create(ctx context.Context, email, companySel string, in dto.VehicleRequest, photos []ports.Upload) (*dto.VehicleResponse, error) {
	if err := validateVehicle(&in); err != nil {
		return nil, err
	}
	actor, err := uc.resolver.Resolve(ctx, email, companySel)
	if err != nil {
		return nil, err
	}
	if err := actor.Require(access.Create); err != nil {
		return nil, err
	}

	refs, err := storeUploads(ctx, uc.blobs, uc.log, photos)
	if err != nil {
		return nil, err
	}
	now := entity.Now()
	v := &entity.Vehicle{
		ID:        uuid.New().String(),
		CompanyID: actor.CompanyID,
		Plate:     in.Plate,
		Mileage:   in.Mileage,
		Model:     in.Model,
		Brand:     in.Brand,
		Price:     in.Price,
		Notes:     in.Notes,
		Photos:    refs,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = uc.tx.Run(ctx, func(repos repository.Repositories) error {
		existing, err := repos.Vehicles.GetByPlate(ctx, actor.CompanyID, v.Plate)
		if err != nil {
			return err
		}
		if existing != nil {
			return plateConflict(v.Plate)
		}
		return repos.Vehicles.Create(ctx, v)
	})
	if err != nil {
		discardBlobs(ctx, uc.blobs, uc.log, refs)
		return nil, err
	}

	out := VehicleToResponse(v)
	uc.audit.Record(ctx, audit.Entry{
		Action:     entity.AuditCreate,
		Kind:       entity.KindVehicle,
		EntityID:   v.ID,
		ActorEmail: actor.Email(),
		CompanyID:  v.CompanyID,
		After:      out,
		Note:       "vehículo creado",
	})
	if actor.User.EmailNotifications {
		uc.notifyCreated(ctx, actor.User, v)
	}
	return out, nil
}

// notifyCreated aviso best-effort al usuario que registró el vehículo.
func (uc *VehicleUseCase) notifyCreated(ctx context.Context, user *entity.User, v *entity.Vehicle) {
	if uc.mailer == nil {
		return
	}
	subject := "Nuevo vehículo registrado: " + v.Plate
	body := fmt.Sprintf("Hola %s,\n\nSe registró el vehículo %s %s con placa %s y %d km.\n",
		user.Name, v.Brand, v.Model, v.Plate, v.Mileage)
	if err := uc.mailer.Send(context.WithoutCancel(ctx), user.Email, subject, body); err != nil {
		uc.log.Warn().Err(err).Str("vehicle_id", v.ID).Msg("notificación de vehículo no enviada")
	}
}

// Update reemplaza los datos del vehículo y agrega las fotos nuevas al final.
func (uc *VehicleUseCase) Update(ctx context.Context, email, companySel, id string, in dto.VehicleRequest, photos []ports.Upload) (*dto.VehicleResponse, error) {
	if err := validateVehicle(&in); err != nil {
		return nil, err
	}
	actor, err := uc.resolver.Resolve(ctx, email, companySel)
	if err != nil {
		return nil, err
	}
	if err := actor.Require(access.Edit); err != nil {
		return nil, err
	}

	refs, err := storeUploads(ctx, uc.blobs, uc.log, photos)
	if err != nil {
		return nil, err
	}
	var before, after *dto.VehicleResponse
	err = uc.tx.Run(ctx, func(repos repository.Repositories) error {
		v, err := loadVehicle(ctx, repos.Vehicles, actor, id)
		if err != nil {
			return err
		}
		if v.Plate != in.Plate {
			other, err := repos.Vehicles.GetByPlate(ctx, v.CompanyID, in.Plate)
			if err != nil {
				return err
			}
			if other != nil && other.ID != v.ID {
				return plateConflict(in.Plate)
			}
		}
		before = VehicleToResponse(v)
		v.Plate = in.Plate
		v.Mileage = in.Mileage
		v.Model = in.Model
		v.Brand = in.Brand
		v.Price = in.Price
		v.Notes = in.Notes
		v.Photos = append(v.Photos, refs...)
		v.UpdatedAt = entity.Now()
		if err := repos.Vehicles.Update(ctx, v); err != nil {
			return err
		}
		after = VehicleToResponse(v)
		return nil
	})
	if err != nil {
		discardBlobs(ctx, uc.blobs, uc.log, refs)
		return nil, err
	}
	uc.audit.Record(ctx, audit.Entry{
		Action:     entity.AuditUpdate,
		Kind:       entity.KindVehicle,
		EntityID:   after.ID,
		ActorEmail: actor.Email(),
		CompanyID:  after.CompanyID,
		Before:     before,
		After:      after,
		Note:       "vehículo actualizado",
	})
	return after, nil
}

// Delete elimina el vehículo y, tras el commit, sus fotos.
func (uc *VehicleUseCase) Delete(ctx context.Context, email, companySel, id string) error {
	actor, err := uc.resolver.Resolve(ctx, email, companySel)
	if err != nil {
		return err
	}
	if err := actor.Require(access.Delete); err != nil {
		return err
	}
	var removed *entity.Vehicle
	err = uc.tx.Run(ctx, func(repos repository.Repositories) error {
		v, err := loadVehicle(ctx, repos.Vehicles, actor, id)
		if err != nil {
			return err
		}
		removed = v
		return repos.Vehicles.Delete(ctx, v.ID)
	})
	if err != nil {
		return err
	}
	discardBlobs(ctx, uc.blobs, uc.log, removed.Photos)
	uc.audit.Record(ctx, audit.Entry{
		Action:     entity.AuditDelete,
		Kind:       entity.KindVehicle,
		EntityID:   removed.ID,
		ActorEmail: actor.Email(),
		CompanyID:  removed.CompanyID,
		Before:     VehicleToResponse(removed),
		Note:       "vehículo eliminado",
	})
	return nil
}

// RemovePhoto quita una foto del vehículo.
func (uc *VehicleUseCase) RemovePhoto(ctx context.Context, email, companySel, id, ref string) (*dto.VehicleResponse, error) {
	actor, err := uc.resolver.Resolve(ctx, email, companySel)
	if err != nil {
		return nil, err
	}
	if err := actor.Require(access.Edit); err != nil {
		return nil, err
	}
	var before, after *dto.VehicleResponse
	err = uc.tx.Run(ctx, func(repos repository.Repositories) error {
		v, err := loadVehicle(ctx, repos.Vehicles, actor, id)
		if err != nil {
			return err
		}
		idx := slices.Index(v.Photos, ref)
		if idx < 0 {
			return fmt.Errorf("%w: foto %s", domain.ErrNotFound, ref)
		}
		before = VehicleToResponse(v)
		v.Photos = slices.Delete(v.Photos, idx, idx+1)
		v.UpdatedAt = entity.Now()
		if err := repos.Vehicles.Update(ctx, v); err != nil {
			return err
		}
		after = VehicleToResponse(v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	discardBlobs(ctx, uc.blobs, uc.log, []string{ref})
	uc.audit.Record(ctx, audit.Entry{
		Action:     entity.AuditUpdate,
		Kind:       entity.KindVehicle,
		EntityID:   after.ID,
		ActorEmail: actor.Email(),
		CompanyID:  after.CompanyID,
		Before:     before,
		After:      after,
		Note:       "foto eliminada",
	})
	return after, nil
}

// GetByID obtiene un vehículo de la empresa resuelta.
func (uc *VehicleUseCase) GetByID(ctx context.Context, email, companySel, id string) (*dto.VehicleResponse, error) {
	actor, err := uc.resolver.Resolve(ctx, email, companySel)
	if err != nil {
		return nil, err
	}
	v, err := loadVehicle(ctx, uc.vehicles, actor, id)
	if err != nil {
		return nil, err
	}
	return VehicleToResponse(v), nil
}

// GetByPlate busca por placa dentro de la empresa resuelta.
func (uc *VehicleUseCase) GetByPlate(ctx context.Context, email, companySel, plate string) (*dto.VehicleResponse, error) {
	actor, err := uc.resolver.Resolve(ctx, email, companySel)
	if err != nil {
		return nil, err
	}
	v, err := uc.vehicles.GetByPlate(ctx, actor.CompanyID, entity.NormalizePlate(plate))
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, fmt.Errorf("%w: vehículo con placa %s", domain.ErrNotFound, plate)
	}
	return VehicleToResponse(v), nil
}

// Search aplica filtros, orden y paginación sobre los vehículos de la empresa resuelta.
func (uc *VehicleUseCase) Search(ctx context.Context, email, companySel string, criteria search.VehicleCriteria) (*dto.VehicleListResponse, error) {
	actor, err := uc.resolver.Resolve(ctx, email, companySel)
	if err != nil {
		return nil, err
	}
	res, err := uc.vehicles.Search(ctx, actor.CompanyID, criteria.Query())
	if err != nil {
		return nil, err
	}
	return toVehicleList(res), nil
}

// ListAll todos los vehículos de la empresa resuelta, más recientes primero.
func (uc *VehicleUseCase) ListAll(ctx context.Context, email, companySel string) ([]dto.VehicleResponse, error) {
	actor, err := uc.resolver.Resolve(ctx, email, companySel)
	if err != nil {
		return nil, err
	}
	out := []dto.VehicleResponse{}
	criteria := search.VehicleCriteria{Sorting: search.Sorting{Size: search.MaxPageSize}}
	for {
		res, err := uc.vehicles.Search(ctx, actor.CompanyID, criteria.Query())
		if err != nil {
			return nil, err
		}
		for _, v := range res.Items {
			out = append(out, *VehicleToResponse(v))
		}
		if len(res.Items) == 0 || (criteria.Page+1)*res.Size >= res.Total {
			return out, nil
		}
		criteria.Page++
	}
}

// PublicGetByID consulta pública (sin autenticación).
func (uc *VehicleUseCase) PublicGetByID(ctx context.Context, id string) (*dto.VehicleResponse, error) {
	v, err := uc.vehicles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, fmt.Errorf("%w: vehículo %s", domain.ErrNotFound, id)
	}
	return VehicleToResponse(v), nil
}

// PublicGetByPlate consulta pública por placa en cualquier empresa.
func (uc *VehicleUseCase) PublicGetByPlate(ctx context.Context, plate string) (*dto.VehicleResponse, error) {
	v, err := uc.vehicles.FindByPlate(ctx, entity.NormalizePlate(plate))
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, fmt.Errorf("%w: vehículo con placa %s", domain.ErrNotFound, plate)
	}
	return VehicleToResponse(v), nil
}

// loadVehicle carga el vehículo y verifica que pertenezca a la empresa del actor.
func loadVehicle(ctx context.Context, repo repository.VehicleRepository, actor *access.Actor, id string) (*entity.Vehicle, error) {
	v, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, fmt.Errorf("%w: vehículo %s", domain.ErrNotFound, id)
	}
	if err := actor.EnsureSameTenant(v.CompanyID); err != nil {
		return nil, err
	}
	return v, nil
}

func toVehicleList(res search.Result[*entity.Vehicle]) *dto.VehicleListResponse {
	items := make([]dto.VehicleResponse, 0, len(res.Items))
	for _, v := range res.Items {
		items = append(items, *VehicleToResponse(v))
	}
	return &dto.VehicleListResponse{Items: items, Page: pageOf(res)}
}

// VehicleToResponse mapea la entidad a su DTO (también usado como snapshot de auditoría).
func VehicleToResponse(v *entity.Vehicle) *dto.VehicleResponse {
	if v == nil {
		return nil
	}
	photos := slices.Clone(v.Photos)
	if photos == nil {
		photos = []string{}
	}
	return &dto.VehicleResponse{
		ID:        v.ID,
		CompanyID: v.CompanyID,
		Plate:     v.Plate,
		Mileage:   v.Mileage,
		Model:     v.Model,
		Brand:     v.Brand,
		Price:     v.Price,
		Notes:     v.Notes,
		Photos:    photos,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}
