package repository

import "context"

// Repositories conjunto de repositorios atados a una misma unidad de trabajo.
type Repositories struct {
	Companies   CompanyRepository
	Users       UserRepository
	Vehicles    VehicleRepository
	Audit       AuditRepository
	APIKeys     APIKeyRepository
	ResetTokens PasswordResetRepository
}

// TxRunner ejecuta fn dentro de una transacción: si fn devuelve error se descarta todo.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos Repositories) error) error
}
