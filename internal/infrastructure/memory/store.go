// Package memory implementa los repositorios sobre un estado en memoria. Las transacciones se
// serializan con un mutex y trabajan sobre una copia que reemplaza al estado solo en el commit.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/flota-api/internal/domain/entity"
	"github.com/jhoicas/flota-api/internal/domain/repository"
)

var _ repository.TxRunner = (*Store)(nil)

type state struct {
	companies   map[string]*entity.Company
	users       map[string]*entity.User
	vehicles    map[string]*entity.Vehicle
	audit       []*entity.AuditEntry
	apiKeys     map[string]*entity.APIKey
	resetTokens map[string]*entity.PasswordResetToken
}

func newState() *state {
	return &state{
		companies:   map[string]*entity.Company{},
		users:       map[string]*entity.User{},
		vehicles:    map[string]*entity.Vehicle{},
		apiKeys:     map[string]*entity.APIKey{},
		resetTokens: map[string]*entity.PasswordResetToken{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for id, v := range s.companies {
		c.companies[id] = v.Clone()
	}
	for id, v := range s.users {
		c.users[id] = v.Clone()
	}
	for id, v := range s.vehicles {
		c.vehicles[id] = v.Clone()
	}
	for id, v := range s.apiKeys {
		c.apiKeys[id] = v.Clone()
	}
	for id, v := range s.resetTokens {
		t := *v
		c.resetTokens[id] = &t
	}
	// las entradas de auditoría son inmutables
	c.audit = append(c.audit, s.audit...)
	return c
}

// Store almacén en memoria. Seguro para uso concurrente.
type Store struct {
	mu sync.RWMutex
	st *state
}

// New crea un almacén vacío.
func New() *Store {
	return &Store{st: newState()}
}

// Run ejecuta fn en una transacción serializada. Si fn falla, el estado no cambia.
// fn no debe usar los repositorios de Repositories(): el lock ya está tomado.
func (s *Store) Run(ctx context.Context, fn func(repos repository.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(s.bind(work)); err != nil {
		return err
	}
	s.st = work
	return nil
}

// Repositories repositorios fuera de transacción: cada operación es atómica por sí sola.
func (s *Store) Repositories() repository.Repositories {
	return s.bind(nil)
}

func (s *Store) bind(tx *state) repository.Repositories {
	v := view{store: s, tx: tx}
	return repository.Repositories{
		Companies:   &CompanyRepo{v},
		Users:       &UserRepo{v},
		Vehicles:    &VehicleRepo{v},
		Audit:       &AuditRepo{v},
		APIKeys:     &APIKeyRepo{v},
		ResetTokens: &ResetTokenRepo{v},
	}
}

// view resuelve sobre qué estado opera un repositorio: la copia de la transacción o el
// estado compartido bajo lock.
type view struct {
	store *Store
	tx    *state
}

func (v view) read(fn func(*state) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.store.mu.RLock()
	defer v.store.mu.RUnlock()
	return fn(v.store.st)
}

func (v view) write(fn func(*state) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	return fn(v.store.st)
}
